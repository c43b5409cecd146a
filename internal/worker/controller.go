package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jwebster45206/monologue-engine/internal/logger"
	"github.com/jwebster45206/monologue-engine/internal/services"
	"github.com/jwebster45206/monologue-engine/pkg/chat"
	"github.com/jwebster45206/monologue-engine/pkg/coherence"
	"github.com/jwebster45206/monologue-engine/pkg/events"
	"github.com/jwebster45206/monologue-engine/pkg/prompts"
	"github.com/jwebster45206/monologue-engine/pkg/state"
	"github.com/jwebster45206/monologue-engine/pkg/textfilter"
)

var (
	// ErrStopped is returned by Run once Stop has been called.
	ErrStopped = errors.New("controller stopped")
	// ErrAlreadyRunning is returned when Run is called while another Run is active.
	ErrAlreadyRunning = errors.New("controller already running")
)

// Generator streams one reply for a prompt.
type Generator interface {
	Generate(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerationOptions, onToken func(string)) error
}

var _ Generator = (*services.Session)(nil)

// Controller drives the monologue: one generation cycle at a time, each
// followed by a delay, until madness reaches its maximum.
type Controller struct {
	gen               Generator
	evaluator         *coherence.Evaluator
	builder           *prompts.ContextBuilder
	rng               state.Rand
	sink              events.Sink
	log               *slog.Logger
	sleep             func(ctx context.Context, d time.Duration) error
	now               func() time.Time
	sessionID         string
	generationTimeout time.Duration

	// mu guards everything below, including every use of rng.
	mu             sync.Mutex
	ns             *state.NarrativeState
	running        bool
	stopped        bool
	paused         bool
	generating     bool
	exhausted      bool
	retryCount     int
	lastErr        string
	lastGeneration time.Time
	// epoch changes on Reset so an in-flight result from before it is dropped.
	epoch uint64

	wake     chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a controller over ns. The narrative state must not be
// mutated by anyone else once handed over.
func New(gen Generator, ns *state.NarrativeState, opts ...Option) *Controller {
	c := &Controller{
		gen:   gen,
		ns:    ns,
		sink:  events.Discard,
		log:   slog.Default(),
		sleep: sleepContext,
		now:   time.Now,

		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	if c.sink == nil {
		c.sink = events.Discard
	}
	c.log = logger.WithSessionID(c.log, c.sessionID)
	c.evaluator = coherence.NewEvaluator(ns.Protagonist)
	c.builder = prompts.NewContextBuilder(c.rng)

	return c
}

func (c *Controller) SessionID() string {
	return c.sessionID
}

// Run is the task loop. It returns ErrStopped after Stop, ctx.Err() on
// cancellation and services.ErrModelNotLoaded when the generator was never
// loaded. Transient generation errors are retried, never returned.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.generating = false
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-c.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	c.log.Info("Controller starting", "target_generations", c.Status().TargetGenerationCount)
	c.publishStatus()

	for {
		if ctx.Err() != nil {
			return c.exitErr(ctx)
		}

		if !c.runnable() {
			c.log.Debug("Controller idle")
			select {
			case <-c.wake:
				continue
			case <-ctx.Done():
				return c.exitErr(ctx)
			}
		}

		delay, err := c.cycle(ctx)
		if err != nil {
			return err
		}

		if !c.runnable() {
			continue
		}
		if err := c.sleep(ctx, delay); err != nil {
			return c.exitErr(ctx)
		}
	}
}

func (c *Controller) isStopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// exitErr reports why the loop ended.
func (c *Controller) exitErr(ctx context.Context) error {
	if c.isStopped() {
		c.log.Info("Controller stopped")
		return ErrStopped
	}
	c.log.Info("Controller cancelled", "reason", context.Cause(ctx))
	return ctx.Err()
}

// runnable reports whether a cycle may start now.
func (c *Controller) runnable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.stopped && !c.paused && !c.exhausted && !c.ns.Complete()
}

// cycle runs one generation and applies its result. It returns the delay
// before the next cycle, or an error that ends the loop.
func (c *Controller) cycle(ctx context.Context) (time.Duration, error) {
	c.mu.Lock()
	epoch := c.epoch
	c.generating = true
	userContext, reset := c.builder.BuildContext(c.ns)
	// read after BuildContext: a hard reset zeroes madness
	madness := c.ns.MadnessLevel
	opts := prompts.SamplingFor(madness, c.rng)
	var seedWords []string
	if reset {
		c.epoch++
		epoch = c.epoch
		seedWords = textfilter.Words(c.ns.SeedText)
	}
	status := c.statusLocked()
	c.mu.Unlock()

	if reset {
		c.log.Info("Too many failures, resetting to seed", "target_generations", status.TargetGenerationCount)
		c.publish(events.Event{Type: events.EventTypeNarrativeReset, Words: seedWords, Status: &status})
	} else {
		c.publish(events.Event{Type: events.EventTypeStatusUpdated, Status: &status})
	}

	messages := chat.NewPrompt(prompts.BuildSystemPrompt(madness), userContext)
	c.log.Debug("Generation cycle starting",
		"madness", madness,
		"context_length", chat.TotalLength(messages),
		"max_tokens", opts.MaxTokens,
		"temperature", opts.Temperature,
		"top_p", opts.TopP,
		"repetition_penalty", opts.RepetitionPenalty)

	start := c.now()
	raw, err := c.generate(ctx, messages, opts)

	if ctx.Err() != nil || c.isStopped() {
		// cancelled or stopped while the call was in flight
		c.log.Debug("Discarding generation after cancellation")
		return 0, c.exitErr(ctx)
	}

	if err != nil {
		return c.fail(err, epoch)
	}

	return c.apply(raw, epoch, madness, c.now().Sub(start)), nil
}

// generate runs the call detached from loop cancellation so an in-flight
// request completes; the caller discards the result if the loop ended.
func (c *Controller) generate(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerationOptions) (string, error) {
	genCtx := context.WithoutCancel(ctx)
	if c.generationTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(genCtx, c.generationTimeout)
		defer cancel()
	}

	var raw strings.Builder
	err := c.gen.Generate(genCtx, messages, opts, func(token string) {
		raw.WriteString(token)
	})
	return raw.String(), err
}

// fail records a generation error and decides whether to retry.
func (c *Controller) fail(err error, epoch uint64) (time.Duration, error) {
	c.mu.Lock()
	c.generating = false
	if c.epoch != epoch {
		status := c.statusLocked()
		c.mu.Unlock()
		c.log.Debug("Discarding failed generation from before reset", "error", err)
		c.publish(events.Event{Type: events.EventTypeStatusUpdated, Status: &status})
		return 0, nil
	}

	c.lastErr = err.Error()
	fatal := errors.Is(err, services.ErrModelNotLoaded)
	retry := !fatal && !c.paused && !c.stopped && c.retryCount < MaxRetries
	if retry {
		c.retryCount++
	} else if !fatal && !c.paused {
		c.exhausted = true
	}
	status := c.statusLocked()
	c.mu.Unlock()

	log := logger.WithError(c.log, err)
	c.publish(events.Event{Type: events.EventTypeGenerationFailed, Error: err.Error(), Status: &status})

	switch {
	case fatal:
		log.Error("Generation capability not loaded, stopping")
		return 0, fmt.Errorf("generation failed: %w", err)
	case retry:
		log.Error("Generation failed, retrying", "retry", status.RetryCount, "max_retries", MaxRetries, "delay", RetryDelay)
		return RetryDelay, nil
	default:
		log.Error("Generation failed, not retrying", "retry_count", status.RetryCount, "paused", status.Paused)
		return 0, nil
	}
}

// apply scores the raw reply and updates the narrative.
func (c *Controller) apply(raw string, epoch uint64, madness float64, took time.Duration) time.Duration {
	c.mu.Lock()
	c.generating = false
	if c.epoch != epoch {
		status := c.statusLocked()
		c.mu.Unlock()
		c.log.Debug("Discarding generation from before reset")
		c.publish(events.Event{Type: events.EventTypeStatusUpdated, Status: &status})
		return 0
	}

	c.retryCount = 0
	c.lastErr = ""
	c.exhausted = false

	fragment := strings.TrimSpace(raw)
	fallback := utf8.RuneCountInString(fragment) < MinFragmentLength
	if fallback {
		fragment = prompts.FallbackPhrase(madness, c.rng)
	}

	cleaned := textfilter.Sanitize(fragment)
	score := c.evaluator.Score(cleaned)
	threshold := Threshold(madness)
	accepted := ShouldAccept(score, madness, utf8.RuneCountInString(cleaned))

	complete := false
	if accepted {
		increment := c.ns.BaseIncrement() * MadnessMultiplier(c.ns.MadnessLevel)
		c.ns.Accept(cleaned, score)
		complete = c.ns.AdvanceMadness(increment)
		c.lastGeneration = c.now()
	} else {
		c.ns.Reject()
	}
	status := c.statusLocked()
	c.mu.Unlock()

	c.log.Info("Generation evaluated",
		"generation", status.GenerationCount,
		"score", score,
		"threshold", threshold,
		"accepted", accepted,
		"fallback", fallback,
		"madness", status.MadnessLevel,
		"quality", status.CoherenceScore,
		"duration", took)

	if accepted {
		c.publish(events.Event{Type: events.EventTypeFragmentAccepted, Words: textfilter.Words(cleaned), Status: &status})
	} else {
		c.log.Warn("Rejected low-quality generation",
			"score", score,
			"threshold", threshold,
			"consecutive_failures", status.ConsecutiveFailures)
		c.publish(events.Event{Type: events.EventTypeStatusUpdated, Status: &status})
	}

	if complete {
		c.log.Info("Monologue complete", "generations", status.GenerationCount)
	}
	return NextDelay(score)
}

// Pause stops new cycles from starting. An in-flight generation still completes.
func (c *Controller) Pause() {
	c.mu.Lock()
	changed := !c.paused
	c.paused = true
	c.mu.Unlock()

	if changed {
		c.log.Info("Controller paused")
		c.publishStatus()
	}
}

// Resume lifts a pause. It also clears an exhausted retry budget.
func (c *Controller) Resume() {
	c.mu.Lock()
	changed := c.paused || c.exhausted
	c.paused = false
	if c.exhausted {
		c.exhausted = false
		c.retryCount = 0
		c.lastErr = ""
	}
	c.mu.Unlock()

	if changed {
		c.log.Info("Controller resumed")
		c.publishStatus()
	}
	c.signal()
}

// TogglePause flips between paused and running and reports whether it is now paused.
func (c *Controller) TogglePause() bool {
	c.mu.Lock()
	c.paused = !c.paused
	paused := c.paused
	if !paused && c.exhausted {
		c.exhausted = false
		c.retryCount = 0
		c.lastErr = ""
	}
	c.mu.Unlock()

	if paused {
		c.log.Info("Controller paused")
	} else {
		c.log.Info("Controller resumed")
		c.signal()
	}
	c.publishStatus()
	return paused
}

// Reset restores the seed narrative and restarts progression.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.ns.Reset(c.rng)
	c.epoch++
	c.retryCount = 0
	c.lastErr = ""
	c.exhausted = false
	c.lastGeneration = time.Time{}
	seedWords := textfilter.Words(c.ns.SeedText)
	status := c.statusLocked()
	c.mu.Unlock()

	c.log.Info("Narrative reset", "target_generations", status.TargetGenerationCount)
	c.publish(events.Event{Type: events.EventTypeNarrativeReset, Words: seedWords, Status: &status})
	c.signal()
}

// Stop ends Run permanently. A result still in flight is discarded.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.mu.Lock()
		c.stopped = true
		c.mu.Unlock()
		close(c.stopCh)
	})
}

// Status returns a snapshot for status displays.
func (c *Controller) Status() events.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

// FullText returns the accumulated monologue.
func (c *Controller) FullText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ns.FullText
}

// Snapshot returns a copy of the narrative state.
func (c *Controller) Snapshot() state.NarrativeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.ns
}

func (c *Controller) statusLocked() events.Status {
	s := events.Status{
		MadnessLevel:          c.ns.MadnessLevel,
		CoherenceScore:        c.ns.RoundedQuality(),
		GenerationCount:       c.ns.GenerationCount,
		TargetGenerationCount: c.ns.TargetGenerationCount,
		ConsecutiveFailures:   c.ns.ConsecutiveFailures,
		Paused:                c.paused,
		Generating:            c.generating,
		Complete:              c.ns.Complete(),
		Error:                 c.lastErr,
		RetryCount:            c.retryCount,
		MaxRetries:            MaxRetries,
		Severity:              state.Severity(c.ns.MadnessLevel),
		LastGeneration:        c.lastGeneration,
	}
	s.State = s.DisplayState()
	return s
}

func (c *Controller) publishStatus() {
	status := c.Status()
	c.publish(events.Event{Type: events.EventTypeStatusUpdated, Status: &status})
}

func (c *Controller) publish(e events.Event) {
	e.SessionID = c.sessionID
	if e.Time.IsZero() {
		e.Time = c.now()
	}
	c.sink.Publish(e)
}

// signal wakes an idle loop without blocking.
func (c *Controller) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
