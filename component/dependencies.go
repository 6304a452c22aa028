package component

import (
	"log/slog"
	"time"

	"github.com/c360/groundctl/mailbox"
	"github.com/c360/groundctl/metric"
)

// DefaultTickInterval is the inter-tick yield used when Dependencies does
// not override it. Tests shrink it for determinism.
const DefaultTickInterval = 10 * time.Millisecond

// Dependencies provides all external dependencies needed by components.
// Components receive this structure rather than individual fields.
type Dependencies struct {
	Registry        *mailbox.Registry       // Mailbox directory (required)
	MetricsRegistry *metric.MetricsRegistry // Metrics registry (can be nil)
	Logger          *slog.Logger            // Structured logger (can be nil, defaults to slog.Default())
	TickInterval    time.Duration           // Inter-tick yield (0 means DefaultTickInterval)
}

// GetLogger returns the configured logger or a default logger if none is provided
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// GetLoggerWithComponent returns a logger configured with component context
func (d *Dependencies) GetLoggerWithComponent(componentName string) *slog.Logger {
	return d.GetLogger().With("component", componentName)
}

// tickInterval resolves the effective tick interval.
func (d *Dependencies) tickInterval() time.Duration {
	if d.TickInterval > 0 {
		return d.TickInterval
	}
	return DefaultTickInterval
}
