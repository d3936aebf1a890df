package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/myrsple/azv-bot/internal/domain"
)

// CreateThread creates a provider thread and records it in the ledger.
func (s *Service) CreateThread(ctx context.Context) (domain.Thread, error) {
	thread, err := s.provider.CreateThread(ctx)
	if err != nil {
		log.Error().Err(err).Str("op", "CreateThread").Msg("provider call failed")
		return domain.Thread{}, err
	}

	if err := s.store.CreateThread(ctx, thread.ID, time.Unix(thread.CreatedAt, 0)); err != nil {
		// The slot claim records unknown threads, so a missed row is recoverable.
		log.Warn().Err(err).Str("thread_id", thread.ID).Msg("failed to record thread")
	}
	s.logEvent(ctx, thread.ID, "", domain.EventTypeThreadCreated, domain.ThreadCreatedPayload{ThreadID: thread.ID})

	return thread, nil
}
