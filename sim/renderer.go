package sim

import (
	"sync"
	"time"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/message"
)

// Renderer consumes render traffic and records it. It produces nothing the
// core consumes; the recorded state exists for tests and operator logs.
type Renderer struct {
	deps component.Dependencies

	mu     sync.Mutex
	points []message.PhotoPoint
	zones  map[int]message.ZoneSpec
}

var _ component.Actor = (*Renderer)(nil)

// NewRenderer creates a renderer.
func NewRenderer(deps component.Dependencies) *Renderer {
	return &Renderer{
		deps:  deps,
		zones: make(map[int]message.ZoneSpec),
	}
}

// Name returns the renderer's registered component name.
func (r *Renderer) Name() string { return config.RendererName }

// HandleMessage records render operations.
func (r *Renderer) HandleMessage(msg message.Message) error {
	log := r.deps.GetLoggerWithComponent(r.Name())

	switch msg.Operation {
	case message.OpUpdatePhotoMap:
		point, ok := msg.Params.(*message.PhotoPoint)
		if !ok {
			log.Error("update_photo_map without a point payload", "source", msg.Source)
			return nil
		}
		r.mu.Lock()
		r.points = append(r.points, *point)
		r.mu.Unlock()
		log.Info("point plotted", "lat", point.Lat, "lon", point.Lon)

	case message.OpDrawZone:
		spec, ok := msg.Params.(*message.ZoneSpec)
		if !ok {
			log.Error("draw_restricted_zone without a zone payload", "source", msg.Source)
			return nil
		}
		r.mu.Lock()
		r.zones[spec.ID] = *spec
		r.mu.Unlock()
		log.Info("zone drawn", "zone_id", spec.ID)

	case message.OpClearZone:
		ref, ok := msg.Params.(*message.ZoneID)
		if !ok {
			log.Error("clear_restricted_zone without a zone id", "source", msg.Source)
			return nil
		}
		r.mu.Lock()
		delete(r.zones, ref.ID)
		r.mu.Unlock()
		log.Info("zone cleared", "zone_id", ref.ID)

	default:
		log.Debug("unknown operation ignored", "operation", string(msg.Operation))
	}
	return nil
}

// OnTick is a no-op; the renderer only reacts to messages.
func (r *Renderer) OnTick(time.Time) error { return nil }

// Points returns the plotted points in arrival order.
func (r *Renderer) Points() []message.PhotoPoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]message.PhotoPoint, len(r.points))
	copy(out, r.points)
	return out
}

// Zones returns the zones currently drawn.
func (r *Renderer) Zones() map[int]message.ZoneSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[int]message.ZoneSpec, len(r.zones))
	for id, z := range r.zones {
		out[id] = z
	}
	return out
}
