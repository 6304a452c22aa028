// Package optics implements the capture scheduler: a priority-ordered,
// rate-limited queue of photo requests. Captures leave through the security
// hub, never directly to the camera, so every dispatch is policy-checked.
package optics

import (
	"sort"
	"strconv"
	"time"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/message"
)

// captureRequest is one pending capture, held until the rate limiter lets it
// dispatch.
type captureRequest struct {
	source    string
	timestamp *time.Time
	priority  int
	signature string
}

// Scheduler is the optics control actor. All state is mutated only inside
// the owning runtime's tick, so no locking is needed.
type Scheduler struct {
	deps component.Dependencies

	pending      []captureRequest
	interval     time.Duration
	lastDispatch time.Time
	busy         bool

	metrics *schedulerMetrics
}

var _ component.Actor = (*Scheduler)(nil)
var _ component.ControlHandler = (*Scheduler)(nil)

// NewScheduler creates a scheduler with the configured initial interval.
// The rate limiter starts armed: the first dispatch waits a full interval
// from construction.
func NewScheduler(deps component.Dependencies, intervalSeconds float64) *Scheduler {
	s := &Scheduler{
		deps:         deps,
		interval:     secondsToDuration(intervalSeconds),
		lastDispatch: time.Now(),
	}
	s.metrics = newSchedulerMetrics(deps.MetricsRegistry)
	return s
}

// Name returns the scheduler's registered component name.
func (s *Scheduler) Name() string { return config.OpticsControlName }

// HandleMessage dispatches by operation. Unknown operations are logged at
// debug and ignored.
func (s *Scheduler) HandleMessage(msg message.Message) error {
	switch msg.Operation {
	case message.OpRequestPhoto:
		s.handleRequestPhoto(msg)
	case message.OpPostPhoto:
		s.handlePostPhoto(msg)
	case message.OpSetPhotoInterval:
		s.handleSetInterval(msg)
	case message.OpGetStatus:
		s.handleGetStatus(msg)
	default:
		s.deps.GetLoggerWithComponent(s.Name()).Debug("unknown operation ignored",
			"operation", string(msg.Operation), "source", msg.Source)
	}
	return nil
}

// OnTick dispatches the head request when the camera is free, the queue is
// non-empty, and the configured interval has elapsed since the last dispatch.
func (s *Scheduler) OnTick(now time.Time) error {
	if s.busy || len(s.pending) == 0 {
		return nil
	}
	if now.Sub(s.lastDispatch) < s.interval {
		return nil
	}

	req := s.pending[0]
	s.pending = s.pending[1:]
	s.lastDispatch = now
	s.metrics.queueDepth(len(s.pending))
	s.metrics.dispatched()

	log := s.deps.GetLoggerWithComponent(s.Name())
	log.Info("dispatching capture request", "requested_by", req.source, "priority", req.priority)

	out := message.New(s.Name(), config.CameraName, message.OpRequestPhoto,
		&message.CaptureRequest{Timestamp: req.timestamp},
		message.WithExtra(map[string]string{"priority": strconv.Itoa(req.priority)}),
		message.WithSignature(req.signature))
	s.sendViaHub(out)
	return nil
}

// HandleControl mirrors pause/resume into the busy flag and implements
// clear_queue.
func (s *Scheduler) HandleControl(msg message.ControlMessage) {
	log := s.deps.GetLoggerWithComponent(s.Name())
	switch msg.Op {
	case message.ControlPause:
		s.busy = true
	case message.ControlResume:
		s.busy = false
	case message.ControlClearQueue:
		s.pending = nil
		s.metrics.queueDepth(0)
		log.Info("capture queue cleared")
	}
}

func (s *Scheduler) handleRequestPhoto(msg message.Message) {
	log := s.deps.GetLoggerWithComponent(s.Name())
	log.Info("capture request received", "source", msg.Source)

	priority, ok := msg.Priority()
	if !ok {
		log.Error("malformed priority, using default", "raw", msg.Extra["priority"])
	}

	req := captureRequest{
		source:    msg.Source,
		priority:  priority,
		signature: msg.Signature,
	}
	if cr, ok := msg.Params.(*message.CaptureRequest); ok {
		req.timestamp = cr.Timestamp
	}

	s.pending = append(s.pending, req)
	// Stable sort keeps arrival order within equal priorities.
	sort.SliceStable(s.pending, func(i, j int) bool {
		return s.pending[i].priority > s.pending[j].priority
	})
	s.metrics.queueDepth(len(s.pending))
	log.Debug("request queued", "queue_depth", len(s.pending), "priority", priority)
}

// handlePostPhoto re-routes a captured point through the hub to the
// renderer. This hop is the one the hub's geofence check inspects.
func (s *Scheduler) handlePostPhoto(msg message.Message) {
	point, ok := msg.Params.(*message.PhotoPoint)
	if !ok {
		s.deps.GetLoggerWithComponent(s.Name()).Error("post_photo without a point payload",
			"source", msg.Source)
		return
	}

	out := message.New(s.Name(), config.RendererName, message.OpUpdatePhotoMap,
		&message.PhotoPoint{Lat: point.Lat, Lon: point.Lon},
		message.WithExtra(msg.Extra),
		message.WithSignature(msg.Signature))
	s.sendViaHub(out)
	s.deps.GetLoggerWithComponent(s.Name()).Debug("captured point sent for rendering",
		"lat", point.Lat, "lon", point.Lon)
}

// handleSetInterval accepts values in [0.5, 30.0] seconds inclusive;
// anything else is rejected and the prior interval is retained.
func (s *Scheduler) handleSetInterval(msg message.Message) {
	log := s.deps.GetLoggerWithComponent(s.Name())
	change, ok := msg.Params.(*message.IntervalChange)
	if !ok {
		log.Error("set_photo_interval without an interval payload", "source", msg.Source)
		return
	}

	if change.Seconds < config.MinPhotoInterval || change.Seconds > config.MaxPhotoInterval {
		s.metrics.intervalRejected()
		log.Error("interval out of range, prior interval retained",
			"requested", change.Seconds,
			"min", config.MinPhotoInterval,
			"max", config.MaxPhotoInterval)
		return
	}

	old := s.interval
	s.interval = secondsToDuration(change.Seconds)
	log.Info("capture interval changed", "old_seconds", old.Seconds(), "new_seconds", change.Seconds)
}

// handleGetStatus replies directly to the requester's mailbox, bypassing the
// hub: the reply is addressed to whoever asked, not routed traffic.
func (s *Scheduler) handleGetStatus(msg message.Message) {
	log := s.deps.GetLoggerWithComponent(s.Name())
	reply := message.New(s.Name(), msg.Source, message.OpStatusReport,
		&message.StatusReport{
			QueueDepth:      len(s.pending),
			Busy:            s.busy,
			IntervalSeconds: s.interval.Seconds(),
			LastDispatch:    s.lastDispatch,
		},
		message.WithSignature("status_"+s.Name()))

	if err := s.deps.Registry.Send(reply); err != nil {
		log.Error("status reply failed", "requester", msg.Source, "error", err)
		return
	}
	log.Debug("status sent", "requester", msg.Source)
}

// sendViaHub places a message in the security hub's mailbox regardless of
// its final destination, keeping the hub the routing chokepoint.
func (s *Scheduler) sendViaHub(msg message.Message) {
	hub, ok := s.deps.Registry.Lookup(config.SecurityMonitorName)
	if !ok {
		s.deps.GetLoggerWithComponent(s.Name()).Error("security hub mailbox not found",
			"operation", string(msg.Operation))
		return
	}
	if err := hub.Put(msg); err != nil {
		s.deps.GetLoggerWithComponent(s.Name()).Error("send via hub failed", "error", err)
	}
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
