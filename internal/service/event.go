package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/myrsple/azv-bot/internal/domain"
)

// recordEvent records an event to the store.
func (s *Service) recordEvent(ctx context.Context, threadID, runID string, eventType domain.EventType, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &domain.Event{
		EventID:  "evt_" + uuid.New().String()[:8],
		ThreadID: threadID,
		RunID:    runID,
		Ts:       s.clock.Now().UnixMilli(),
		Type:     eventType,
		Payload:  payloadBytes,
	}

	return s.store.CreateEvent(ctx, event)
}

// logEvent records an event and only logs a failure; the ledger never blocks a request.
func (s *Service) logEvent(ctx context.Context, threadID, runID string, eventType domain.EventType, payload interface{}) {
	if err := s.recordEvent(ctx, threadID, runID, eventType, payload); err != nil {
		log.Warn().Err(err).
			Str("thread_id", threadID).
			Str("run_id", runID).
			Str("type", string(eventType)).
			Msg("failed to record event")
	}
}

// GetRunEvents returns the ledger events of a thread's run, oldest first.
func (s *Service) GetRunEvents(ctx context.Context, threadID, runID string, afterTs int64, limit int) ([]domain.Event, error) {
	events, err := s.store.GetEvents(ctx, threadID, runID, afterTs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}
