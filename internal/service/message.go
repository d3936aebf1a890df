package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/myrsple/azv-bot/internal/domain"
)

// PostMessage appends a user message to a thread.
// The thread must not have a run in flight.
func (s *Service) PostMessage(ctx context.Context, threadID, content string) (domain.ThreadMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.ThreadMessage{}, domain.ErrEmptyContent
	}

	if s.admitter != nil {
		decision, err := s.admitter.Evaluate(ctx, content)
		if err != nil {
			return domain.ThreadMessage{}, fmt.Errorf("failed to evaluate message policy: %w", err)
		}
		if !decision.Allowed() {
			s.logEvent(ctx, threadID, "", domain.EventTypeMessageRejected, domain.MessageRejectedPayload{Reason: decision.Reason})
			return domain.ThreadMessage{}, &domain.PolicyViolation{Reason: decision.Reason}
		}
	}

	slot, err := s.store.GetRunSlot(ctx, threadID)
	if err != nil {
		return domain.ThreadMessage{}, fmt.Errorf("failed to get run slot: %w", err)
	}
	if slot.Held() {
		return domain.ThreadMessage{}, domain.ErrRunInFlight
	}

	msg, err := s.provider.CreateMessage(ctx, threadID, content)
	if err != nil {
		log.Error().Err(err).Str("op", "CreateMessage").Str("thread_id", threadID).Msg("provider call failed")
		return domain.ThreadMessage{}, err
	}

	s.logEvent(ctx, threadID, "", domain.EventTypeMessagePosted, domain.MessagePostedPayload{
		MessageID: msg.ID,
		Length:    len([]rune(content)),
	})
	return msg, nil
}

// ListMessages returns the thread's messages as the provider orders them.
func (s *Service) ListMessages(ctx context.Context, threadID string) (domain.MessageList, error) {
	list, err := s.provider.ListMessages(ctx, threadID)
	if err != nil {
		log.Error().Err(err).Str("op", "ListMessages").Str("thread_id", threadID).Msg("provider call failed")
		return domain.MessageList{}, err
	}
	return list, nil
}
