package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/monologue-engine/internal/config"
	"github.com/jwebster45206/monologue-engine/internal/logger"
	"github.com/jwebster45206/monologue-engine/internal/services"
	"github.com/jwebster45206/monologue-engine/internal/worker"
	"github.com/jwebster45206/monologue-engine/pkg/events"
	"github.com/jwebster45206/monologue-engine/pkg/state"
	"github.com/jwebster45206/monologue-engine/pkg/textfilter"
)

const defaultLogFile = "monologue.log"

func main() {
	// Logs go to a file so they never draw over the UI.
	if os.Getenv("LOG_FILE") == "" {
		_ = os.Setenv("LOG_FILE", defaultLogFile)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, closer, err := logger.Setup(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	llmService, err := services.NewLLMService(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create LLM service: %v\n", err)
		os.Exit(1)
	}

	session := services.NewSession(llmService, cfg.ModelName, log)
	fmt.Printf("Loading model %s via %s...\n", cfg.ModelName, cfg.LLMProvider)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), cfg.ModelLoadTimeout)
	err = session.Load(loadCtx)
	loadCancel()
	if err != nil {
		log.Error("Failed to load model", "error", err, "model", cfg.ModelName)
		fmt.Fprintf(os.Stderr, "Failed to load model %s: %v\n", cfg.ModelName, err)
		_ = closer.Close()
		os.Exit(1)
	}

	relay := make(chan events.Event, 256)
	done := make(chan struct{})
	sink := events.SinkFunc(func(e events.Event) {
		select {
		case relay <- e:
		case <-done:
		}
	})

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	ns := state.NewNarrativeState(state.DefaultNarrative, rng)
	ctrl := worker.New(session, ns,
		worker.WithLogger(log),
		worker.WithRand(rng),
		worker.WithSink(sink),
		worker.WithGenerationTimeout(cfg.GenerationTimeout),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(NewConsoleUI(ctrl, relay, textfilter.Words(ns.SeedText)), tea.WithAltScreen())

	runErr := make(chan error, 1)
	go func() {
		err := ctrl.Run(ctx)
		runErr <- err
		if err != nil && !errors.Is(err, worker.ErrStopped) && !errors.Is(err, context.Canceled) {
			p.Send(loopExitedMsg{err: err})
		}
	}()

	_, uiErr := p.Run()

	ctrl.Stop()
	close(done)
	cancel()

	if err := <-runErr; err != nil && !errors.Is(err, worker.ErrStopped) && !errors.Is(err, context.Canceled) {
		log.Error("Progression loop failed", "error", err)
		fmt.Fprintf(os.Stderr, "Monologue stopped: %v\n", err)
		_ = closer.Close()
		os.Exit(1)
	}
	if uiErr != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", uiErr)
		_ = closer.Close()
		os.Exit(1)
	}
}
