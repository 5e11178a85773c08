package hint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/abhisek/quizplay/internal/llm"
	"github.com/abhisek/quizplay/internal/quiz"
)

// ErrDisabled is returned when no LLM provider is configured.
var ErrDisabled = errors.New("hints are not configured")

// Config holds hint generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the settings used by the play screen.
func DefaultConfig() Config {
	return Config{MaxTokens: 128, Temperature: 0.4}
}

// Service asks the LLM for one-sentence hints and caches them per question.
type Service struct {
	provider llm.Provider
	cfg      Config

	mu    sync.Mutex
	cache map[string]string
}

// NewService creates a hint service. A nil provider yields a service whose
// Hint always returns ErrDisabled.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg, cache: make(map[string]string)}
}

// Enabled reports whether hints can be requested.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

type hintOutput struct {
	Hint string `json:"hint"`
}

// Hint returns a hint for q. Only the prompt and the visible choices are
// sent; the answer key never leaves this process.
func (s *Service) Hint(ctx context.Context, q quiz.Question) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	s.mu.Lock()
	cached, ok := s.cache[q.ID()]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	req := llm.Prompt(systemPrompt, buildUserMessage(q))
	req.Schema = Schema
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, "hint"), req)
	if err != nil {
		return "", fmt.Errorf("generate hint: %w", err)
	}

	var out hintOutput
	if err := resp.Decode(&out); err != nil {
		return "", fmt.Errorf("parse hint response: %w", err)
	}
	text := strings.TrimSpace(out.Hint)

	s.mu.Lock()
	s.cache[q.ID()] = text
	s.mu.Unlock()
	return text, nil
}
