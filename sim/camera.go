// Package sim provides in-process stand-ins for the external collaborators:
// a camera that answers capture requests with deterministic ground-track
// points, and a renderer that records what it is told to draw. Both are
// ordinary actors; cmd/groundctl and the integration-style tests run them on
// the shared runtime.
package sim

import (
	"math"
	"time"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/message"
)

// Camera answers OpRequestPhoto with an OpPostPhoto carrying the next point
// on a simulated ground track. Replies go back through the security hub.
type Camera struct {
	deps component.Dependencies
	step int
}

var _ component.Actor = (*Camera)(nil)

// NewCamera creates a camera.
func NewCamera(deps component.Dependencies) *Camera {
	return &Camera{deps: deps}
}

// Name returns the camera's registered component name.
func (c *Camera) Name() string { return config.CameraName }

// HandleMessage answers capture requests; other operations are ignored.
func (c *Camera) HandleMessage(msg message.Message) error {
	log := c.deps.GetLoggerWithComponent(c.Name())

	if msg.Operation != message.OpRequestPhoto {
		log.Debug("unknown operation ignored", "operation", string(msg.Operation))
		return nil
	}

	lat, lon := c.nextPoint()
	log.Info("photo captured", "lat", lat, "lon", lon)

	hub, ok := c.deps.Registry.Lookup(config.SecurityMonitorName)
	if !ok {
		log.Error("security hub mailbox not found, capture dropped")
		return nil
	}

	post := message.New(c.Name(), config.OpticsControlName, message.OpPostPhoto,
		&message.PhotoPoint{Lat: lat, Lon: lon},
		message.WithExtra(msg.Extra),
		message.WithSignature(msg.Signature))
	if err := hub.Put(post); err != nil {
		log.Error("capture delivery failed", "error", err)
		return nil
	}

	// Every capture is also offered for persistence.
	save := message.New(c.Name(), config.DispatcherName, message.OpSavePhoto,
		&message.PhotoPoint{Lat: lat, Lon: lon},
		message.WithExtra(msg.Extra),
		message.WithSignature(msg.Signature))
	if err := hub.Put(save); err != nil {
		log.Error("save request delivery failed", "error", err)
	}
	return nil
}

// OnTick is a no-op; the camera only reacts to requests.
func (c *Camera) OnTick(time.Time) error { return nil }

// nextPoint walks a fixed inclined ground track so repeated captures sweep
// the map deterministically.
func (c *Camera) nextPoint() (lat, lon float64) {
	theta := float64(c.step) * 2 * math.Pi / 36
	lat = 51.6 * math.Sin(theta)
	lon = math.Mod(float64(c.step)*10, 360) - 180
	c.step++
	return lat, lon
}
