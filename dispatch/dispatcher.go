// Package dispatch implements the persistence router: it turns save
// requests into archive writes. The hop from dispatcher to archive is a
// storage-internal transfer, so it goes directly to the archive's mailbox
// rather than back through the hub.
package dispatch

import (
	"time"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/message"
)

// Dispatcher routes OpSavePhoto to the archive. Other operations it has
// historically acknowledged are accepted and dropped for forward
// compatibility.
type Dispatcher struct {
	deps component.Dependencies
}

var _ component.Actor = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher.
func NewDispatcher(deps component.Dependencies) *Dispatcher {
	return &Dispatcher{deps: deps}
}

// Name returns the dispatcher's registered component name.
func (d *Dispatcher) Name() string { return config.DispatcherName }

// HandleMessage routes by operation.
func (d *Dispatcher) HandleMessage(msg message.Message) error {
	log := d.deps.GetLoggerWithComponent(d.Name())

	switch msg.Operation {
	case message.OpSavePhoto:
		point, ok := msg.Params.(*message.PhotoPoint)
		if !ok {
			log.Error("save request without a point payload", "source", msg.Source)
			return nil
		}

		out := message.New(d.Name(), config.ArchiveName, message.OpAddPhoto,
			&message.PhotoPoint{Lat: point.Lat, Lon: point.Lon})
		if err := d.deps.Registry.Send(out); err != nil {
			log.Error("archive unreachable, record dropped",
				"lat", point.Lat, "lon", point.Lon, "error", err)
			return nil
		}
		log.Info("photo routed to archive", "lat", point.Lat, "lon", point.Lon)

	case message.OpChangeOrbit, message.OpStatusReport, message.OpPostPhoto:
		// Acknowledged and dropped: responses and orbit traffic pass the
		// dispatcher in some deployments but carry nothing to persist.

	default:
		log.Debug("unknown operation ignored", "operation", string(msg.Operation))
	}
	return nil
}

// OnTick is a no-op; the dispatcher is purely message-driven.
func (d *Dispatcher) OnTick(time.Time) error { return nil }
