package storage

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/config"
	"github.com/c360/groundctl/message"
	"github.com/c360/groundctl/metric"
)

// Archive is the actor that owns the photo log. Write failures are logged
// and the component keeps running; persistence is best effort.
type Archive struct {
	deps component.Dependencies
	log  *PhotoLog

	metrics *archiveMetrics
}

var _ component.Actor = (*Archive)(nil)

// NewArchive creates the archive around an opened photo log.
func NewArchive(deps component.Dependencies, photoLog *PhotoLog) *Archive {
	a := &Archive{
		deps: deps,
		log:  photoLog,
	}
	a.metrics = newArchiveMetrics(deps.MetricsRegistry)
	a.metrics.nextIndex(photoLog.NextIndex())
	return a
}

// Name returns the archive's registered component name.
func (a *Archive) Name() string { return config.ArchiveName }

// HandleMessage appends OpAddPhoto records; everything else is ignored.
func (a *Archive) HandleMessage(msg message.Message) error {
	logger := a.deps.GetLoggerWithComponent(a.Name())

	if msg.Operation != message.OpAddPhoto {
		logger.Debug("unknown operation ignored", "operation", string(msg.Operation))
		return nil
	}

	point, ok := msg.Params.(*message.PhotoPoint)
	if !ok {
		logger.Error("add_photo without a point payload", "source", msg.Source)
		return nil
	}

	index, err := a.log.Append(point.Lat, point.Lon)
	if err != nil {
		logger.Error("photo record write failed", "lat", point.Lat, "lon", point.Lon, "error", err)
		return nil
	}

	a.metrics.written()
	a.metrics.nextIndex(a.log.NextIndex())
	logger.Info("photo saved", "index", index, "lat", point.Lat, "lon", point.Lon)
	return nil
}

// OnTick is a no-op; the archive is purely message-driven.
func (a *Archive) OnTick(time.Time) error { return nil }

type archiveMetrics struct {
	recordsWritten prometheus.Counter
	next           prometheus.Gauge
}

func newArchiveMetrics(registry *metric.MetricsRegistry) *archiveMetrics {
	if registry == nil {
		return nil
	}

	m := &archiveMetrics{
		recordsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "groundctl", Subsystem: "archive",
			Name: "records_written_total", Help: "Records appended to the photo log",
		}),
		next: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "groundctl", Subsystem: "archive",
			Name: "next_index", Help: "Next sequence index the log will assign",
		}),
	}

	if registry.RegisterCounter(config.ArchiveName, "records_written", m.recordsWritten) != nil ||
		registry.RegisterGauge(config.ArchiveName, "next_index", m.next) != nil {
		return nil
	}
	return m
}

func (m *archiveMetrics) written() {
	if m == nil {
		return
	}
	m.recordsWritten.Inc()
}

func (m *archiveMetrics) nextIndex(n int32) {
	if m == nil {
		return
	}
	m.next.Set(float64(n))
}
