// Package engine orchestrates component lifecycles: initialize everything,
// start in registration order, stop in reverse.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360/groundctl/component"
	"github.com/c360/groundctl/errors"
)

// Engine owns an ordered list of lifecycle components. Order matters: leaf
// components (archive, renderer) register before the ones that send to them,
// and shutdown runs in reverse so producers stop before their consumers.
type Engine struct {
	components []component.LifecycleComponent
	logger     *slog.Logger
	started    bool
}

// New creates an empty engine.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger.With("component", "engine")}
}

// Add appends a component to the start order. Must be called before Start.
func (e *Engine) Add(c component.LifecycleComponent) {
	e.components = append(e.components, c)
}

// Components returns the registered components in start order.
func (e *Engine) Components() []component.LifecycleComponent {
	return e.components
}

// Initialize initializes every component, stopping at the first failure.
func (e *Engine) Initialize() error {
	for _, c := range e.components {
		if err := c.Initialize(); err != nil {
			return errors.Wrap(err, "Engine", "Initialize", c.Name())
		}
	}
	return nil
}

// Start starts components in order. On failure the already started
// components are stopped in reverse before the error is returned.
func (e *Engine) Start(ctx context.Context) error {
	if e.started {
		return errors.Wrap(errors.ErrAlreadyStarted, "Engine", "Start", "engine")
	}

	for i, c := range e.components {
		if err := c.Start(ctx); err != nil {
			e.logger.Error("component failed to start, rolling back", "component", c.Name(), "error", err)
			e.stopRange(i-1, 5*time.Second)
			return errors.Wrap(err, "Engine", "Start", c.Name())
		}
		e.logger.Debug("component started", "component", c.Name())
	}

	e.started = true
	e.logger.Info("engine started", "components", len(e.components))
	return nil
}

// Stop stops components in reverse order, giving each the full timeout.
// All components are attempted even when one fails; errors are aggregated.
func (e *Engine) Stop(timeout time.Duration) error {
	err := e.stopRange(len(e.components)-1, timeout)
	e.started = false
	if err != nil {
		return err
	}
	e.logger.Info("engine stopped")
	return nil
}

func (e *Engine) stopRange(from int, timeout time.Duration) error {
	var failed []string
	for i := from; i >= 0; i-- {
		c := e.components[i]
		if err := c.Stop(timeout); err != nil {
			e.logger.Error("component stop failed", "component", c.Name(), "error", err)
			failed = append(failed, c.Name())
			continue
		}
		e.logger.Debug("component stopped", "component", c.Name())
	}
	if len(failed) > 0 {
		return errors.WrapTransient(
			fmt.Errorf("%d component(s) failed to stop: %v", len(failed), failed),
			"Engine", "Stop", "shutdown")
	}
	return nil
}
