// Package component provides the actor runtime every groundctl component is
// built on: a data mailbox, a control mailbox, and a cooperative tick loop
// that drains both and yields. Components implement the small Actor
// interface; the Runtime owns the loop, lifecycle state, and error recovery.
package component

import (
	"context"
	"time"
)

// State represents the current lifecycle state of a component
type State int32

const (
	// StateCreated indicates the component was created but not started
	StateCreated State = iota
	// StateRunning indicates the component's tick loop is active
	StateRunning
	// StatePaused indicates time-driven work is suspended; mailboxes
	// are still drained so the component cannot become a bottleneck
	StatePaused
	// StateStopped is terminal
	StateStopped
	// StateFailed indicates the component failed during a lifecycle operation
	StateFailed
)

// String returns a string representation of the component state
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LifecycleComponent defines components that support full lifecycle
// management following the unified pattern:
//   - Initialize() error                  // Setup/create only, NO context
//   - Start(ctx context.Context) error    // Start with context passed through
//   - Stop(timeout time.Duration) error   // Cooperative stop with timeout
type LifecycleComponent interface {
	Name() string
	Initialize() error
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

// HealthStatus describes the current health state of a component
type HealthStatus struct {
	Healthy    bool          `json:"healthy"`
	State      string        `json:"state"`
	LastCheck  time.Time     `json:"last_check"`
	ErrorCount int           `json:"error_count"`
	Uptime     time.Duration `json:"uptime"`
}
