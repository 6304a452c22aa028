// Package natsbridge connects the in-process substrate to external
// collaborators over NATS. Inbound commands on the command subject go
// through the command gate; messages delivered to the bridge's own mailbox
// (render traffic) are mirrored out as JSON on per-operation subjects.
//
// The bridge is optional: with a nil connection it still runs as a
// component but publishes and receives nothing.
package natsbridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360/groundctl/command"
	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/errors"
	"github.com/c360/groundctl/message"
)

// NATS subjects.
const (
	// SubjectCommand carries inbound commands from external submitters.
	SubjectCommand = "groundctl.command"
	// SubjectRenderPrefix prefixes outbound render traffic; the operation
	// name is appended (groundctl.render.update_photo_map).
	SubjectRenderPrefix = "groundctl.render."
)

// InboundCommand is the JSON body expected on SubjectCommand.
type InboundCommand struct {
	User      string    `json:"user"`
	Role      int       `json:"role"`
	Operation string    `json:"operation"`
	Args      []float64 `json:"args,omitempty"`
}

// Bridge is both a lifecycle component and the actor behind the nats_bridge
// mailbox. It keeps one command gate per submitting user so signature
// counters stay per-session.
type Bridge struct {
	deps component.Dependencies
	cfg  *config.Config
	conn *nats.Conn

	runtime *component.Runtime
	sub     *nats.Subscription

	gatesMu sync.Mutex
	gates   map[string]*command.Gate
}

var _ component.LifecycleComponent = (*Bridge)(nil)
var _ component.Actor = (*Bridge)(nil)

// NewBridge creates the bridge. conn may be nil to disable NATS entirely.
func NewBridge(deps component.Dependencies, cfg *config.Config, conn *nats.Conn) *Bridge {
	b := &Bridge{
		deps:  deps,
		cfg:   cfg,
		conn:  conn,
		gates: make(map[string]*command.Gate),
	}
	b.runtime = component.NewRuntime(b, deps)
	return b
}

// Name returns the bridge's registered component name.
func (b *Bridge) Name() string { return config.NATSBridgeName }

// Initialize validates dependencies.
func (b *Bridge) Initialize() error {
	if b.cfg == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "Bridge", "Initialize", "config is required")
	}
	return b.runtime.Initialize()
}

// Start subscribes to the command subject and starts the mailbox loop.
func (b *Bridge) Start(ctx context.Context) error {
	if b.conn != nil {
		sub, err := b.conn.Subscribe(SubjectCommand, b.handleInbound)
		if err != nil {
			return errors.WrapTransient(err, "Bridge", "Start", "command subscription")
		}
		b.sub = sub
		b.deps.GetLoggerWithComponent(b.Name()).Info("command subject subscribed", "subject", SubjectCommand)
	} else {
		b.deps.GetLoggerWithComponent(b.Name()).Info("no NATS connection, bridge disabled")
	}

	return b.runtime.Start(ctx)
}

// Stop drains the subscription and stops the mailbox loop.
func (b *Bridge) Stop(timeout time.Duration) error {
	if b.sub != nil {
		if err := b.sub.Unsubscribe(); err != nil {
			b.deps.GetLoggerWithComponent(b.Name()).Error("unsubscribe failed", "error", err)
		}
		b.sub = nil
	}
	return b.runtime.Stop(timeout)
}

// Health reports the underlying runtime's health.
func (b *Bridge) Health() component.HealthStatus {
	return b.runtime.Health()
}

// HandleMessage mirrors a message from the bridge's mailbox onto NATS.
func (b *Bridge) HandleMessage(msg message.Message) error {
	if b.conn == nil {
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return errors.WrapInvalid(err, "Bridge", "HandleMessage", "message encode")
	}

	subject := SubjectRenderPrefix + string(msg.Operation)
	if err := b.conn.Publish(subject, data); err != nil {
		return errors.WrapTransient(err, "Bridge", "HandleMessage", "publish")
	}

	b.deps.GetLoggerWithComponent(b.Name()).Debug("message published",
		"subject", subject, "operation", string(msg.Operation))
	return nil
}

// OnTick is a no-op; the bridge is driven by its mailbox and subscription.
func (b *Bridge) OnTick(time.Time) error { return nil }

// handleInbound decodes one external command and submits it through the
// gate. Runs on the NATS delivery goroutine, hence the gate map lock.
func (b *Bridge) handleInbound(m *nats.Msg) {
	log := b.deps.GetLoggerWithComponent(b.Name())

	var in InboundCommand
	if err := json.Unmarshal(m.Data, &in); err != nil {
		log.Error("malformed inbound command dropped", "error", err)
		return
	}
	if in.User == "" {
		log.Error("inbound command without a user dropped")
		return
	}

	gate := b.gateFor(in.User, config.Role(in.Role))
	err := gate.Submit(command.Command{Name: in.Operation, Args: in.Args})
	if err != nil {
		// Denials and invalid arguments are already logged by the gate.
		log.Debug("inbound command rejected", "user", in.User, "operation", in.Operation)
		return
	}
	log.Info("inbound command accepted", "user", in.User, "operation", in.Operation)
}

// gateFor returns the session gate for a user, creating it on first use.
func (b *Bridge) gateFor(user string, role config.Role) *command.Gate {
	b.gatesMu.Lock()
	defer b.gatesMu.Unlock()

	if g, ok := b.gates[user]; ok {
		return g
	}
	g := command.NewGate(b.deps, b.cfg, command.User{Name: user, Role: role})
	b.gates[user] = g
	return g
}
