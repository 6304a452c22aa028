// Package command implements the gate between external command submitters
// and the message bus: role permission checks, per-operation argument
// validation, and command-file parsing. Every emitted message is addressed
// through the security hub.
package command

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/errors"
	"github.com/c360/groundctl/message"
	"github.com/c360/groundctl/metric"
)

// Command is one parsed external command.
type Command struct {
	Name string
	Args []float64
}

// User identifies a command submitter and their privilege level.
type User struct {
	Name string
	Role config.Role
}

// Gate validates and translates commands into messages placed in the
// security hub's mailbox. It keeps a per-session counter used only to build
// correlation signatures.
type Gate struct {
	deps    component.Dependencies
	cfg     *config.Config
	user    User
	counter int

	metrics *gateMetrics
}

// NewGate creates a gate for one user session.
func NewGate(deps component.Dependencies, cfg *config.Config, user User) *Gate {
	g := &Gate{
		deps: deps,
		cfg:  cfg,
		user: user,
	}
	g.metrics = newGateMetrics(deps.MetricsRegistry, user.Name)
	return g
}

// source is the component name the gate's messages carry.
func (g *Gate) source() string {
	return "client_" + g.user.Name
}

// Submit checks permissions, validates arguments, and on success places
// exactly one message in the hub's mailbox. A permission denial emits
// nothing and returns ErrPermissionDenied; an argument violation emits
// nothing and returns ErrInvalidArgument.
func (g *Gate) Submit(cmd Command) error {
	log := g.deps.GetLoggerWithComponent("command_gate")

	if !g.cfg.Allowed(g.user.Role, cmd.Name) {
		g.metrics.outcome("permission_denied")
		log.Warn("permission denied",
			"user", g.user.Name,
			"role", g.user.Role.String(),
			"command", cmd.Name)
		return errors.Wrap(errors.ErrPermissionDenied, "Gate", "Submit", cmd.Name)
	}

	msg, err := g.build(cmd)
	if err != nil {
		g.metrics.outcome("invalid")
		log.Error("command rejected", "command", cmd.Name, "error", err)
		return err
	}

	hub, ok := g.deps.Registry.Lookup(config.SecurityMonitorName)
	if !ok {
		g.metrics.outcome("invalid")
		return errors.WrapTransient(errors.ErrMailboxNotFound, "Gate", "Submit", "hub lookup")
	}
	if err := hub.Put(msg); err != nil {
		g.metrics.outcome("invalid")
		return errors.WrapTransient(err, "Gate", "Submit", "hub delivery")
	}

	g.counter++
	g.metrics.outcome("emitted")
	log.Info("command emitted",
		"user", g.user.Name,
		"command", cmd.Name,
		"signature", msg.Signature)
	return nil
}

// build validates command arguments and constructs the message. The counter
// is not consumed here; Submit increments it only after delivery.
func (g *Gate) build(cmd Command) (message.Message, error) {
	extra := map[string]string{
		"user": g.user.Name,
		"role": fmt.Sprintf("%d", int(g.user.Role)),
	}

	switch cmd.Name {
	case config.CmdMakePhoto:
		if len(cmd.Args) != 0 {
			return message.Message{}, errors.WrapInvalid(errors.ErrInvalidArgument,
				"Gate", "build", "MAKE PHOTO takes no arguments")
		}
		extra["priority"] = "1"
		return message.New(g.source(), config.OpticsControlName, message.OpRequestPhoto,
			&message.CaptureRequest{},
			message.WithExtra(extra),
			message.WithSignature(g.signature("photo"))), nil

	case config.CmdOrbit:
		if len(cmd.Args) != 3 {
			return message.Message{}, errors.WrapInvalid(errors.ErrInvalidArgument,
				"Gate", "build", "ORBIT takes altitude, raan, inclination")
		}
		altitude := cmd.Args[0]
		if altitude < config.MinOrbitAltitude || altitude > config.MaxOrbitAltitude {
			return message.Message{}, errors.WrapInvalid(errors.ErrInvalidArgument,
				"Gate", "build",
				fmt.Sprintf("altitude %.0f outside [%.0f, %.0f]",
					altitude, config.MinOrbitAltitude, config.MaxOrbitAltitude))
		}
		return message.New(g.source(), config.OrbitControlName, message.OpChangeOrbit,
			&message.OrbitChange{Altitude: altitude, RAAN: cmd.Args[1], Inclination: cmd.Args[2]},
			message.WithExtra(extra),
			message.WithSignature(g.signature("orbit"))), nil

	case config.CmdAddZone:
		if len(cmd.Args) != 5 {
			return message.Message{}, errors.WrapInvalid(errors.ErrInvalidArgument,
				"Gate", "build", "ADD ZONE takes id and two corners")
		}
		id := int(cmd.Args[0])
		if id <= 0 || float64(id) != cmd.Args[0] {
			return message.Message{}, errors.WrapInvalid(errors.ErrInvalidArgument,
				"Gate", "build", "zone id must be a positive integer")
		}
		lat1, lon1, lat2, lon2 := cmd.Args[1], cmd.Args[2], cmd.Args[3], cmd.Args[4]
		spec := &message.ZoneSpec{
			ID:            id,
			LatMin:        min(lat1, lat2),
			LonMin:        min(lon1, lon2),
			LatMax:        max(lat1, lat2),
			LonMax:        max(lon1, lon2),
			SeverityLevel: 3,
			Description:   "added by " + g.user.Name,
		}
		return message.New(g.source(), config.SecurityMonitorName, message.OpAddZone,
			spec,
			message.WithExtra(extra),
			message.WithSignature(g.signature("addzone"))), nil

	case config.CmdRemoveZone:
		if len(cmd.Args) != 1 {
			return message.Message{}, errors.WrapInvalid(errors.ErrInvalidArgument,
				"Gate", "build", "REMOVE ZONE takes one id")
		}
		id := int(cmd.Args[0])
		if id <= 0 || float64(id) != cmd.Args[0] {
			return message.Message{}, errors.WrapInvalid(errors.ErrInvalidArgument,
				"Gate", "build", "zone id must be a positive integer")
		}
		return message.New(g.source(), config.SecurityMonitorName, message.OpRemoveZone,
			&message.ZoneID{ID: id},
			message.WithExtra(extra),
			message.WithSignature(g.signature("removezone"))), nil

	default:
		return message.Message{}, errors.WrapInvalid(errors.ErrUnknownCommand, "Gate", "build", cmd.Name)
	}
}

// signature builds the correlation token for the next emitted message.
func (g *Gate) signature(kind string) string {
	return fmt.Sprintf("%s_%s_%d", kind, g.user.Name, g.counter)
}

type gateMetrics struct {
	submissions *prometheus.CounterVec
}

func newGateMetrics(registry *metric.MetricsRegistry, user string) *gateMetrics {
	if registry == nil {
		return nil
	}

	m := &gateMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "groundctl",
			Subsystem:   "command",
			Name:        "submissions_total",
			Help:        "Command submissions by outcome",
			ConstLabels: prometheus.Labels{"user": user},
		}, []string{"outcome"}),
	}

	if registry.RegisterCounterVec("command_gate_"+user, "submissions", m.submissions) != nil {
		return nil
	}
	return m
}

func (m *gateMetrics) outcome(o string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(o).Inc()
}
