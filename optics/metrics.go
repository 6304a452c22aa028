package optics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/metric"
)

type schedulerMetrics struct {
	depth             prometheus.Gauge
	dispatches        prometheus.Counter
	rejectedIntervals prometheus.Counter
}

func newSchedulerMetrics(registry *metric.MetricsRegistry) *schedulerMetrics {
	if registry == nil {
		return nil
	}

	m := &schedulerMetrics{
		depth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundctl", Subsystem: "optics",
			Name: "queue_depth", Help: "Pending capture requests",
		}),
		dispatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundctl", Subsystem: "optics",
			Name: "dispatches_total", Help: "Capture requests dispatched to the camera",
		}),
		rejectedIntervals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundctl", Subsystem: "optics",
			Name: "rejected_intervals_total", Help: "Interval changes rejected as out of range",
		}),
	}

	name := config.OpticsControlName
	if registry.RegisterGauge(name, "queue_depth", m.depth) != nil ||
		registry.RegisterCounter(name, "dispatches", m.dispatches) != nil ||
		registry.RegisterCounter(name, "rejected_intervals", m.rejectedIntervals) != nil {
		return nil
	}
	return m
}

func (m *schedulerMetrics) queueDepth(n int) {
	if m == nil {
		return
	}
	m.depth.Set(float64(n))
}

func (m *schedulerMetrics) dispatched() {
	if m == nil {
		return
	}
	m.dispatches.Inc()
}

func (m *schedulerMetrics) intervalRejected() {
	if m == nil {
		return
	}
	m.rejectedIntervals.Inc()
}
