package security

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/errors"
	"github.com/c360/groundctl/message"
	"github.com/c360/groundctl/metric"
)

// Denial reasons, used as log attributes and metric labels.
const (
	denyPolicy   = "policy"
	denyGeofence = "geofence"
)

// Hub is the security monitor: the single routing chokepoint. All zone state
// and the violation counters are owned by the hub and mutated only inside
// its own tick, so no locking is needed.
type Hub struct {
	deps component.Dependencies

	zones      map[int]RestrictedZone
	policies   []Policy
	violations map[string]int // per-user violation count

	metrics *hubMetrics
}

var _ component.Actor = (*Hub)(nil)

// NewHub creates a security hub with the default allow-all policy and no
// zones. Zones arrive as OpAddZone messages (cmd loads the configured
// defaults through the hub at startup, same path as runtime additions).
func NewHub(deps component.Dependencies) *Hub {
	h := &Hub{
		deps:       deps,
		zones:      make(map[int]RestrictedZone),
		policies:   AllowAll(),
		violations: make(map[string]int),
	}
	h.metrics = newHubMetrics(deps.MetricsRegistry)
	return h
}

// Name returns the hub's registered component name.
func (h *Hub) Name() string { return config.SecurityMonitorName }

// Zones returns a snapshot of the active zone table. Safe to call from other
// goroutines only before Start or after Stop; tests use it that way.
func (h *Hub) Zones() map[int]RestrictedZone {
	out := make(map[int]RestrictedZone, len(h.zones))
	for id, z := range h.zones {
		out[id] = z
	}
	return out
}

// Violations returns the per-user violation counts. Same access rules as
// Zones.
func (h *Hub) Violations() map[string]int {
	out := make(map[string]int, len(h.violations))
	for u, n := range h.violations {
		out[u] = n
	}
	return out
}

// HandleMessage validates the message and routes it only on allow. A denial
// is a silent drop: the routee never learns the message existed.
func (h *Hub) HandleMessage(msg message.Message) error {
	h.metrics.validated()
	if !h.validate(msg) {
		return nil
	}
	h.route(msg)
	return nil
}

// OnTick is a no-op; the hub is purely message-driven.
func (h *Hub) OnTick(time.Time) error { return nil }

// validate applies policy matching, then the geofence gate for rendered
// capture points. Returns false on deny.
func (h *Hub) validate(msg message.Message) bool {
	log := h.deps.GetLoggerWithComponent(h.Name())

	matched := false
	for _, p := range h.policies {
		if p.Matches(msg) {
			matched = true
			break
		}
	}
	if !matched {
		h.metrics.denied(denyPolicy)
		log.Warn("message denied by policy",
			"source", msg.Source,
			"destination", msg.Destination,
			"operation", string(msg.Operation))
		return false
	}

	// Geofence applies only to capture points headed for the renderer.
	if msg.Destination == config.RendererName && msg.Operation == message.OpUpdatePhotoMap {
		point, ok := msg.Params.(*message.PhotoPoint)
		if !ok {
			h.metrics.denied(denyGeofence)
			log.Error("update_photo_map without a point payload", "source", msg.Source)
			return false
		}
		for _, zone := range h.zones {
			if zone.Contains(point.Lat, point.Lon) {
				user := msg.User()
				h.violations[user]++
				h.metrics.denied(denyGeofence)
				log.Error("restricted zone violation",
					"zone_id", zone.ID,
					"user", user,
					"lat", point.Lat,
					"lon", point.Lon)
				return false
			}
		}
	}

	return true
}

// route applies zone management locally and forwards everything else to the
// destination mailbox.
func (h *Hub) route(msg message.Message) {
	log := h.deps.GetLoggerWithComponent(h.Name())

	switch msg.Operation {
	case message.OpAddZone:
		spec, ok := msg.Params.(*message.ZoneSpec)
		if !ok {
			log.Error("add_restricted_zone without a zone payload", "source", msg.Source)
			return
		}
		zone := zoneFromSpec(*spec)
		h.zones[zone.ID] = zone
		h.metrics.zonesActive(len(h.zones))
		log.Info("restricted zone added", "zone_id", zone.ID)

		draw := zone.Spec()
		h.forward(message.New(h.Name(), config.RendererName, message.OpDrawZone, &draw))

	case message.OpRemoveZone:
		ref, ok := msg.Params.(*message.ZoneID)
		if !ok {
			log.Error("remove_restricted_zone without a zone id", "source", msg.Source)
			return
		}
		if _, exists := h.zones[ref.ID]; !exists {
			log.Debug("remove for unknown zone ignored", "zone_id", ref.ID)
			return
		}
		delete(h.zones, ref.ID)
		h.metrics.zonesActive(len(h.zones))
		log.Info("restricted zone removed", "zone_id", ref.ID)

		h.forward(message.New(h.Name(), config.RendererName, message.OpClearZone, &message.ZoneID{ID: ref.ID}))

	default:
		h.forward(msg)
	}
}

// forward puts the message in its destination mailbox. A missing mailbox is
// a routing failure: logged, dropped, no retry. Renderer-bound traffic is
// also mirrored to the NATS bridge so enabled deployments publish it.
func (h *Hub) forward(msg message.Message) {
	log := h.deps.GetLoggerWithComponent(h.Name())
	if msg.Destination == config.RendererName {
		h.mirrorRender(msg)
	}
	if err := h.deps.Registry.Send(msg); err != nil {
		if errors.Is(err, errors.ErrMailboxNotFound) {
			h.metrics.routingFailed()
			log.Error("destination not found", "destination", msg.Destination, "operation", string(msg.Operation))
			return
		}
		log.Error("forward failed", "destination", msg.Destination, "error", err)
		return
	}
	h.metrics.routed()
	log.Debug("message routed", "destination", msg.Destination, "operation", string(msg.Operation))
}

// mirrorRender duplicates a renderer-bound message into the bridge's mailbox.
// An absent bridge mailbox means no bridge is deployed, not an error.
func (h *Hub) mirrorRender(msg message.Message) {
	bridge, ok := h.deps.Registry.Lookup(config.NATSBridgeName)
	if !ok {
		return
	}
	if err := bridge.Put(msg); err != nil {
		h.deps.GetLoggerWithComponent(h.Name()).Error("render mirror failed", "error", err)
	}
}

type hubMetrics struct {
	messagesValidated prometheus.Counter
	messagesRouted    prometheus.Counter
	denials           *prometheus.CounterVec
	routingFailures   prometheus.Counter
	activeZones       prometheus.Gauge
}

func newHubMetrics(registry *metric.MetricsRegistry) *hubMetrics {
	if registry == nil {
		return nil
	}

	m := &hubMetrics{
		messagesValidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundctl", Subsystem: "security",
			Name: "messages_validated_total", Help: "Messages inspected by the hub",
		}),
		messagesRouted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundctl", Subsystem: "security",
			Name: "messages_routed_total", Help: "Messages forwarded to a destination mailbox",
		}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "groundctl", Subsystem: "security",
			Name: "denials_total", Help: "Denied messages by reason",
		}, []string{"reason"}),
		routingFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundctl", Subsystem: "security",
			Name: "routing_failures_total", Help: "Messages dropped because the destination mailbox was absent",
		}),
		activeZones: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundctl", Subsystem: "security",
			Name: "zones_active", Help: "Restricted zones currently installed",
		}),
	}

	name := config.SecurityMonitorName
	if registry.RegisterCounter(name, "messages_validated", m.messagesValidated) != nil ||
		registry.RegisterCounter(name, "messages_routed", m.messagesRouted) != nil ||
		registry.RegisterCounterVec(name, "denials", m.denials) != nil ||
		registry.RegisterCounter(name, "routing_failures", m.routingFailures) != nil ||
		registry.RegisterGauge(name, "zones_active", m.activeZones) != nil {
		return nil
	}
	return m
}

func (m *hubMetrics) validated() {
	if m == nil {
		return
	}
	m.messagesValidated.Inc()
}

func (m *hubMetrics) routed() {
	if m == nil {
		return
	}
	m.messagesRouted.Inc()
}

func (m *hubMetrics) denied(reason string) {
	if m == nil {
		return
	}
	m.denials.WithLabelValues(reason).Inc()
}

func (m *hubMetrics) routingFailed() {
	if m == nil {
		return
	}
	m.routingFailures.Inc()
}

func (m *hubMetrics) zonesActive(n int) {
	if m == nil {
		return
	}
	m.activeZones.Set(float64(n))
}
