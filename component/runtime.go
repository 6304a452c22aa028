package component

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/groundctl/errors"
	"github.com/c360/groundctl/mailbox"
	"github.com/c360/groundctl/message"
	"github.com/c360/groundctl/metric"
)

// Actor is the behavior a component plugs into a Runtime. HandleMessage is
// called once per data message in arrival order; OnTick is called once per
// loop pass when the component is not paused. Both run on the runtime's
// single goroutine, so actors need no internal locking for state they only
// touch from these callbacks.
type Actor interface {
	Name() string
	HandleMessage(msg message.Message) error
	OnTick(now time.Time) error
}

// ControlHandler is an optional extension for actors that need to observe
// control commands beyond the lifecycle transitions the runtime applies
// itself (clear_queue, or mirroring pause state into domain flags).
type ControlHandler interface {
	HandleControl(msg message.ControlMessage)
}

// Runtime drives one actor: it owns the actor's data and control mailboxes,
// registers them under the actor's name, and runs the tick loop. Lifecycle
// follows created -> running <-> paused -> stopped; stop is terminal and is
// observed at the top of the next tick.
type Runtime struct {
	actor   Actor
	deps    Dependencies
	mailbox *mailbox.Mailbox
	control *mailbox.ControlMailbox

	state      atomic.Int32
	errorCount atomic.Int64
	startedAt  time.Time

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex

	metrics *runtimeMetrics
}

var _ LifecycleComponent = (*Runtime)(nil)

// NewRuntime creates a runtime for the actor and registers its mailboxes in
// the dependency registry. Registration happens here, before Start, so other
// components can resolve the name as soon as construction finishes.
func NewRuntime(actor Actor, deps Dependencies) *Runtime {
	r := &Runtime{
		actor:   actor,
		deps:    deps,
		mailbox: mailbox.NewMailbox(),
		control: mailbox.NewControlMailbox(),
	}
	r.state.Store(int32(StateCreated))

	if deps.Registry != nil {
		deps.Registry.Register(actor.Name(), r.mailbox)
		deps.Registry.RegisterControl(actor.Name(), r.control)
	}

	r.metrics = newRuntimeMetrics(actor.Name(), deps.MetricsRegistry)
	return r
}

// Name returns the actor's registered name.
func (r *Runtime) Name() string {
	return r.actor.Name()
}

// Mailbox exposes the data mailbox, mainly for tests and for components that
// reply directly to a runtime they constructed.
func (r *Runtime) Mailbox() *mailbox.Mailbox {
	return r.mailbox
}

// State returns the current lifecycle state.
func (r *Runtime) State() State {
	return State(r.state.Load())
}

// Initialize validates the runtime's dependencies.
func (r *Runtime) Initialize() error {
	if r.deps.Registry == nil {
		return errors.WrapFatal(errors.ErrMissingConfig,
			"Runtime", "Initialize", "mailbox registry is required")
	}
	if r.actor == nil {
		return errors.WrapFatal(errors.ErrMissingConfig,
			"Runtime", "Initialize", "actor is required")
	}
	return nil
}

// Start launches the tick loop. Calling Start on a running or stopped
// runtime returns an error.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.State() {
	case StateRunning, StatePaused:
		return errors.Wrap(errors.ErrAlreadyStarted, "Runtime", "Start", r.Name())
	case StateStopped:
		return errors.Wrap(errors.ErrAlreadyStopped, "Runtime", "Start", r.Name())
	}

	loopCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.startedAt = time.Now()
	r.state.Store(int32(StateRunning))

	go r.loop(loopCtx)

	r.deps.GetLoggerWithComponent(r.Name()).Info("component started")
	return nil
}

// Stop requests shutdown and waits up to timeout for the loop to exit.
// It is safe to call on a runtime that was never started.
func (r *Runtime) Stop(timeout time.Duration) error {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	if done == nil {
		r.state.Store(int32(StateStopped))
		return nil
	}

	cancel()
	select {
	case <-done:
		r.deps.GetLoggerWithComponent(r.Name()).Info("component stopped")
		return nil
	case <-time.After(timeout):
		return errors.WrapTransient(
			fmt.Errorf("loop did not exit within %v", timeout),
			"Runtime", "Stop", r.Name())
	}
}

// Health reports the runtime's current health.
func (r *Runtime) Health() HealthStatus {
	state := r.State()
	var uptime time.Duration
	if !r.startedAt.IsZero() {
		uptime = time.Since(r.startedAt)
	}
	return HealthStatus{
		Healthy:    state == StateRunning || state == StatePaused,
		State:      state.String(),
		LastCheck:  time.Now(),
		ErrorCount: int(r.errorCount.Load()),
		Uptime:     uptime,
	}
}

// loop is the single goroutine driving the actor. Each pass drains the data
// mailbox, applies pending control commands, ticks the actor, then yields.
// Mailboxes are drained even while paused so a paused component never
// becomes a routing bottleneck.
func (r *Runtime) loop(ctx context.Context) {
	defer close(r.done)
	defer r.state.Store(int32(StateStopped))

	log := r.deps.GetLoggerWithComponent(r.Name())
	interval := r.deps.tickInterval()

	for {
		if ctx.Err() != nil {
			return
		}

		for {
			msg, ok := r.mailbox.TryGet()
			if !ok {
				break
			}
			r.dispatch(log, msg)
		}

		stop := false
		for {
			ctl, ok := r.control.TryGet()
			if !ok {
				break
			}
			switch ctl.Op {
			case message.ControlStop:
				stop = true
			case message.ControlPause:
				r.state.Store(int32(StatePaused))
				log.Info("component paused")
			case message.ControlResume:
				r.state.Store(int32(StateRunning))
				log.Info("component resumed")
			}
			if h, ok := r.actor.(ControlHandler); ok {
				h.HandleControl(ctl)
			}
		}
		if stop {
			return
		}

		if r.State() != StatePaused {
			if err := r.actor.OnTick(time.Now()); err != nil {
				r.errorCount.Add(1)
				r.metrics.errors()
				log.Error("tick failed", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// dispatch delivers one message to the actor, converting panics into logged
// errors so one bad message cannot take the loop down.
func (r *Runtime) dispatch(log *slog.Logger, msg message.Message) {
	defer func() {
		if rec := recover(); rec != nil {
			r.errorCount.Add(1)
			r.metrics.errors()
			log.Error("handler panicked",
				"operation", string(msg.Operation),
				"message_id", msg.ID,
				"panic", fmt.Sprintf("%v", rec))
		}
	}()

	r.metrics.received()
	if err := r.actor.HandleMessage(msg); err != nil {
		r.errorCount.Add(1)
		r.metrics.errors()
		log.Error("handler failed",
			"operation", string(msg.Operation),
			"message_id", msg.ID,
			"error", err)
	}
}

// runtimeMetrics holds the per-component counters. A nil receiver (nil
// metrics registry) disables all recording.
type runtimeMetrics struct {
	messagesReceived prometheus.Counter
	handlerErrors    prometheus.Counter
}

func newRuntimeMetrics(name string, registry *metric.MetricsRegistry) *runtimeMetrics {
	if registry == nil {
		return nil
	}

	m := &runtimeMetrics{
		messagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "groundctl",
			Subsystem:   "component",
			Name:        "messages_received_total",
			Help:        "Data messages delivered to the actor",
			ConstLabels: prometheus.Labels{"component": name},
		}),
		handlerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "groundctl",
			Subsystem:   "component",
			Name:        "handler_errors_total",
			Help:        "Handler errors and recovered panics",
			ConstLabels: prometheus.Labels{"component": name},
		}),
	}

	// Registration failures (duplicate names in tests) just disable metrics.
	if err := registry.RegisterCounter(name, "messages_received", m.messagesReceived); err != nil {
		return nil
	}
	if err := registry.RegisterCounter(name, "handler_errors", m.handlerErrors); err != nil {
		return nil
	}
	return m
}

func (m *runtimeMetrics) received() {
	if m == nil {
		return
	}
	m.messagesReceived.Inc()
}

func (m *runtimeMetrics) errors() {
	if m == nil {
		return
	}
	m.handlerErrors.Inc()
}
