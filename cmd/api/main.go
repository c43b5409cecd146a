package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/monologue-engine/internal/config"
	"github.com/jwebster45206/monologue-engine/internal/handlers"
	"github.com/jwebster45206/monologue-engine/internal/logger"
	"github.com/jwebster45206/monologue-engine/internal/middleware"
	"github.com/jwebster45206/monologue-engine/internal/services"
	eventbus "github.com/jwebster45206/monologue-engine/internal/services/events"
	"github.com/jwebster45206/monologue-engine/internal/worker"
	"github.com/jwebster45206/monologue-engine/pkg/events"
	"github.com/jwebster45206/monologue-engine/pkg/state"
)

func main() {
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

	if err := run(cfg, log); err != nil {
		log.Error("Monologue engine exited", "error", err)
		_ = closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	sessionID := uuid.NewString()
	log.Info("Starting Monologue Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName,
		"session_id", sessionID)

	llmService, err := services.NewLLMService(cfg, log)
	if err != nil {
		return err
	}
	session := services.NewSession(llmService, cfg.ModelName, log)

	// Optional event broadcasting
	var (
		redisService *services.RedisService
		sink         events.Sink = events.Discard
		pinger       handlers.Pinger
	)
	if cfg.RedisURL != "" {
		redisService, err = services.NewRedisService(cfg.RedisURL, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisService.Close(); err != nil {
				log.Error("Error closing redis connection", "error", err)
			}
		}()

		waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err = redisService.WaitForConnection(waitCtx, 10, 2*time.Second)
		waitCancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Redis connection established successfully")

		sink = eventbus.NewBroadcaster(redisService.GetClient(), log)
		pinger = redisService
	} else {
		log.Info("REDIS_URL not set, event streaming disabled")
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	ns := state.NewNarrativeState(state.DefaultNarrative, rng)
	ctrl := worker.New(session, ns,
		worker.WithLogger(log),
		worker.WithRand(rng),
		worker.WithSink(sink),
		worker.WithSessionID(sessionID),
		worker.WithGenerationTimeout(cfg.GenerationTimeout),
	)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(session, pinger, log)
	mux.Handle("/health", healthHandler)

	statusHandler := handlers.NewStatusHandler(ctrl, log)
	mux.Handle("/v1/status", statusHandler)
	mux.Handle("/v1/transcript", statusHandler)

	mux.Handle("/v1/control/", handlers.NewControlHandler(ctrl, log))

	if redisService != nil {
		mux.Handle("/v1/events", handlers.NewEventsHandler(redisService.GetClient(), sessionID, log))
	}

	handler := middleware.Logger(log, mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the events stream stays open.
		IdleTimeout: 60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Model load and the loop run in the background so /health reports
	// loading while a pull is in progress.
	loopErr := make(chan error, 1)
	go func() {
		loadCtx, loadCancel := context.WithTimeout(ctx, cfg.ModelLoadTimeout)
		err := session.Load(loadCtx)
		loadCancel()
		if err != nil {
			loopErr <- fmt.Errorf("failed to load model %s: %w", cfg.ModelName, err)
			return
		}
		loopErr <- ctrl.Run(ctx)
	}()

	var exitErr error
	select {
	case <-ctx.Done():
		log.Info("Server is shutting down...")
	case err := <-serverErr:
		exitErr = fmt.Errorf("server failed: %w", err)
	case err := <-loopErr:
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, worker.ErrStopped) {
			exitErr = err
		}
	}

	ctrl.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
	return exitErr
}
