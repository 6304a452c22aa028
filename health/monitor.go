package health

import (
	"sync"
	"time"

	"github.com/c360/groundctl/component"
)

// Reporter is implemented by components that expose a runtime health
// snapshot. The actor Runtime and the NATS bridge both qualify.
type Reporter interface {
	Health() component.HealthStatus
}

// Monitor holds the latest health status of every probed component. Safe
// for concurrent use: the probe loop writes while the HTTP handler reads.
type Monitor struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{statuses: make(map[string]Status)}
}

// Update records the status for a named component.
func (m *Monitor) Update(name string, status Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status.Component = name
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}
	m.statuses[name] = status
}

// Probe refreshes the monitor from every component that reports health.
// Components without a health snapshot are skipped.
func (m *Monitor) Probe(components []component.LifecycleComponent) {
	for _, c := range components {
		if r, ok := c.(Reporter); ok {
			m.Update(c.Name(), FromComponentHealth(c.Name(), r.Health()))
		}
	}
}

// Get retrieves the status for a named component.
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status, exists := m.statuses[name]
	return status, exists
}

// GetAll returns a copy of all current statuses.
func (m *Monitor) GetAll() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]Status, len(m.statuses))
	for name, status := range m.statuses {
		result[name] = status
	}
	return result
}

// AggregateHealth rolls every tracked status up into one system status.
func (m *Monitor) AggregateHealth(systemName string) Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subStatuses := make([]Status, 0, len(m.statuses))
	for _, status := range m.statuses {
		subStatuses = append(subStatuses, status)
	}
	return Aggregate(systemName, subStatuses)
}

// Count returns the number of components being tracked.
func (m *Monitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.statuses)
}
