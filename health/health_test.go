package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/message"
)

func TestAggregateRules(t *testing.T) {
	tests := []struct {
		name string
		subs []Status
		want string
	}{
		{"empty", nil, "healthy"},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, "healthy"},
		{"one degraded", []Status{NewHealthy("a", ""), NewDegraded("b", "paused")}, "degraded"},
		{"unhealthy wins", []Status{NewDegraded("a", ""), NewUnhealthy("b", "dead")}, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate("system", tt.subs)
			assert.Equal(t, tt.want, got.Status)
			assert.Len(t, got.SubStatuses, len(tt.subs))
		})
	}
}

func TestFromComponentHealth(t *testing.T) {
	running := FromComponentHealth("hub", component.HealthStatus{
		Healthy:    true,
		State:      component.StateRunning.String(),
		ErrorCount: 2,
		Uptime:     time.Minute,
	})
	assert.True(t, running.IsHealthy())
	require.NotNil(t, running.Metrics)
	assert.Equal(t, 2, running.Metrics.ErrorCount)
	assert.Equal(t, time.Minute, running.Metrics.Uptime)

	paused := FromComponentHealth("scheduler", component.HealthStatus{
		State: component.StatePaused.String(),
	})
	assert.True(t, paused.IsDegraded(), "paused components still drain mail")

	failed := FromComponentHealth("bridge", component.HealthStatus{
		State: component.StateFailed.String(),
	})
	assert.True(t, failed.IsUnhealthy())
}

func TestMonitorTracksLatestStatus(t *testing.T) {
	m := NewMonitor()
	assert.Equal(t, 0, m.Count())

	m.Update("hub", NewHealthy("hub", "running"))
	m.Update("hub", NewUnhealthy("hub", "stopped"))

	got, ok := m.Get("hub")
	require.True(t, ok)
	assert.True(t, got.IsUnhealthy(), "later update replaces the earlier one")
	assert.Equal(t, 1, m.Count())

	m.Update("scheduler", NewHealthy("scheduler", "running"))
	all := m.GetAll()
	assert.Len(t, all, 2)

	agg := m.AggregateHealth("system")
	assert.True(t, agg.IsUnhealthy())
}

type idleActor struct{ name string }

func (a *idleActor) Name() string                        { return a.name }
func (a *idleActor) HandleMessage(message.Message) error { return nil }
func (a *idleActor) OnTick(time.Time) error              { return nil }

func TestMonitorProbesRunningComponents(t *testing.T) {
	deps := component.Dependencies{TickInterval: time.Millisecond}
	rt := component.NewRuntime(&idleActor{name: "probe_target"}, deps)
	require.NoError(t, rt.Start(context.Background()))
	defer rt.Stop(time.Second)

	m := NewMonitor()
	m.Probe([]component.LifecycleComponent{rt})

	got, ok := m.Get("probe_target")
	require.True(t, ok)
	assert.True(t, got.IsHealthy())
}
