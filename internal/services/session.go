package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jwebster45206/monologue-engine/pkg/chat"
)

// ErrModelNotLoaded is returned by Generate before a successful Load.
var ErrModelNotLoaded = errors.New("model not loaded")

// Session owns the generation backend for the lifetime of the application.
// One Session is shared by every controller run, so a reset never reloads the model.
type Session struct {
	llm       LLMService
	modelName string
	logger    *slog.Logger

	loadMu sync.Mutex // serialises Load
	mu     sync.RWMutex
	loaded bool
}

// NewSession wraps llm without loading anything.
func NewSession(llm LLMService, modelName string, logger *slog.Logger) *Session {
	return &Session{
		llm:       llm,
		modelName: modelName,
		logger:    logger,
	}
}

// Load initialises the model once. Later calls return immediately.
func (s *Session) Load(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.Ready() {
		return nil
	}

	s.logger.Info("Loading model", "model", s.modelName)
	if err := s.llm.InitModel(ctx, s.modelName); err != nil {
		return fmt.Errorf("failed to load model %s: %w", s.modelName, err)
	}

	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("Model loaded", "model", s.modelName)
	return nil
}

// Ready reports whether Load has succeeded.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Session) ModelName() string {
	return s.modelName
}

// Generate streams one reply. It fails with ErrModelNotLoaded before Load.
func (s *Session) Generate(ctx context.Context, messages []chat.ChatMessage, opts chat.GenerationOptions, onToken func(string)) error {
	if !s.Ready() {
		return ErrModelNotLoaded
	}
	if err := opts.Validate(); err != nil {
		return fmt.Errorf("invalid generation options: %w", err)
	}
	return s.llm.ChatStream(ctx, messages, opts, onToken)
}
