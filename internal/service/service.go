// Package service implements the server side of the conversation flow:
// thread management, the run proxy and the per-thread run slot.
package service

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/myrsple/azv-bot/internal/adapter/assistant"
	"github.com/myrsple/azv-bot/internal/config"
	"github.com/myrsple/azv-bot/internal/policy"
	"github.com/myrsple/azv-bot/internal/repository"
)

// Admitter decides whether a user message may be posted.
type Admitter interface {
	Evaluate(ctx context.Context, content string) (policy.Decision, error)
}

type Service struct {
	provider assistant.Provider
	store    repository.Store
	admitter Admitter
	config   *config.Config
	clock    clockwork.Clock
}

// New creates a Service. A nil admitter only rejects empty messages.
func New(provider assistant.Provider, store repository.Store, admitter Admitter, cfg *config.Config) *Service {
	return &Service{
		provider: provider,
		store:    store,
		admitter: admitter,
		config:   cfg,
		clock:    clockwork.NewRealClock(),
	}
}

// WithClock replaces the clock used for slot claims and the monitor.
func (s *Service) WithClock(clock clockwork.Clock) *Service {
	s.clock = clock
	return s
}
