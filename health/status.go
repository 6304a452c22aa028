// Package health turns per-component runtime health into a serializable
// status tree. A Monitor holds the latest probe of every component;
// cmd/groundctl refreshes it periodically and serves the aggregate on
// /healthz.
package health

import (
	"fmt"
	"time"

	"github.com/c360/groundctl/component"
)

// Status is the health of one component, or of the whole system when it
// carries sub-statuses.
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"` // "healthy", "degraded", "unhealthy"
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
	Metrics     *Metrics  `json:"metrics,omitempty"`
}

// Metrics carries the runtime counters behind a status.
type Metrics struct {
	Uptime       time.Duration `json:"uptime"`
	ErrorCount   int           `json:"error_count"`
	LastActivity time.Time     `json:"last_activity,omitempty"`
}

// IsHealthy returns true if the status is healthy.
func (s Status) IsHealthy() bool { return s.Status == "healthy" }

// IsDegraded returns true if the status is degraded.
func (s Status) IsDegraded() bool { return s.Status == "degraded" }

// IsUnhealthy returns true if the status is unhealthy.
func (s Status) IsUnhealthy() bool { return s.Status == "unhealthy" }

// NewHealthy creates a healthy status.
func NewHealthy(component, message string) Status {
	return Status{
		Component: component,
		Healthy:   true,
		Status:    "healthy",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewDegraded creates a degraded status.
func NewDegraded(component, message string) Status {
	return Status{
		Component: component,
		Status:    "degraded",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewUnhealthy creates an unhealthy status.
func NewUnhealthy(component, message string) Status {
	return Status{
		Component: component,
		Status:    "unhealthy",
		Message:   message,
		Timestamp: time.Now(),
	}
}

// FromComponentHealth converts a runtime health snapshot into a Status. A
// paused component is degraded rather than unhealthy: its mailboxes are
// still drained, only time-driven work is suspended.
func FromComponentHealth(name string, ch component.HealthStatus) Status {
	var status Status
	switch {
	case ch.State == component.StatePaused.String():
		status = NewDegraded(name, "paused")
	case ch.Healthy:
		status = NewHealthy(name, "running")
	default:
		status = NewUnhealthy(name, fmt.Sprintf("state %s", ch.State))
	}

	status.Metrics = &Metrics{
		Uptime:       ch.Uptime,
		ErrorCount:   ch.ErrorCount,
		LastActivity: ch.LastCheck,
	}
	return status
}

// Aggregate rolls sub-statuses up into one status: unhealthy if any
// sub-status is unhealthy, degraded if any is degraded, healthy otherwise.
func Aggregate(component string, subStatuses []Status) Status {
	if len(subStatuses) == 0 {
		return NewHealthy(component, "no components registered")
	}

	hasUnhealthy := false
	hasDegraded := false
	for _, sub := range subStatuses {
		if sub.IsUnhealthy() {
			hasUnhealthy = true
		} else if sub.IsDegraded() {
			hasDegraded = true
		}
	}

	var status Status
	switch {
	case hasUnhealthy:
		status = NewUnhealthy(component, "one or more components are unhealthy")
	case hasDegraded:
		status = NewDegraded(component, "one or more components are degraded")
	default:
		status = NewHealthy(component, "all components are healthy")
	}

	status.SubStatuses = make([]Status, len(subStatuses))
	copy(status.SubStatuses, subStatuses)
	return status
}
