package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jwebster45206/monologue-engine/pkg/events"
	"github.com/jwebster45206/monologue-engine/pkg/state"
)

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithRand sets the randomness source for prompts, sampling, fallbacks and resets.
func WithRand(rng state.Rand) Option {
	return func(c *Controller) { c.rng = rng }
}

// WithSink sets where presentation events are published.
func WithSink(sink events.Sink) Option {
	return func(c *Controller) { c.sink = sink }
}

// WithSleep replaces the delay between cycles. sleep must return ctx.Err() when ctx ends first.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Controller) { c.sleep = sleep }
}

func WithSessionID(id string) Option {
	return func(c *Controller) { c.sessionID = id }
}

// WithGenerationTimeout bounds a single generation call. Zero disables the bound.
func WithGenerationTimeout(d time.Duration) Option {
	return func(c *Controller) { c.generationTimeout = d }
}

// WithClock overrides the time source used for event and status timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
