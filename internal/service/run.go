package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/myrsple/azv-bot/internal/domain"
)

// StartRun runs the configured assistant over a thread.
// It holds the thread's run slot until the run reaches a terminal status.
func (s *Service) StartRun(ctx context.Context, threadID string) (domain.Run, error) {
	assistantID := s.config.OpenAI.AssistantID
	if assistantID == "" {
		return domain.Run{}, &domain.ConfigurationError{Key: "OPENAI_ASSISTANT_ID"}
	}

	claimedAt := s.clock.Now()
	claimed, err := s.store.ClaimRunSlot(ctx, threadID, claimedAt)
	if err != nil {
		return domain.Run{}, fmt.Errorf("failed to claim run slot: %w", err)
	}
	if !claimed {
		return domain.Run{}, domain.ErrRunInFlight
	}

	run, err := s.provider.CreateRun(ctx, threadID, assistantID)
	if err != nil {
		log.Error().Err(err).Str("op", "CreateRun").Str("thread_id", threadID).Msg("provider call failed")
		if _, rerr := s.store.ReleaseRunSlot(context.WithoutCancel(ctx), threadID, ""); rerr != nil {
			log.Warn().Err(rerr).Str("thread_id", threadID).Msg("failed to release run slot")
		}
		return domain.Run{}, err
	}

	if err := s.store.AttachRun(ctx, threadID, run, claimedAt); err != nil {
		// The slot stays pending; the monitor frees it once it goes stale.
		log.Error().Err(err).Str("thread_id", threadID).Str("run_id", run.ID).Msg("failed to attach run to slot")
	}
	s.logEvent(ctx, threadID, run.ID, domain.EventTypeRunStarted, domain.RunStartedPayload{
		AssistantID: run.AssistantID,
		Status:      run.Status,
	})

	if run.Status.IsTerminal() {
		s.finishRun(ctx, threadID, run)
	}
	return run, nil
}

// GetRun fetches a run's current status and records it.
// A terminal status frees the thread's run slot.
func (s *Service) GetRun(ctx context.Context, threadID, runID string) (domain.Run, error) {
	run, err := s.provider.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		log.Error().Err(err).Str("op", "RetrieveRun").Str("thread_id", threadID).Str("run_id", runID).Msg("provider call failed")
		return domain.Run{}, err
	}

	changed, err := s.store.UpdateRunStatus(ctx, run.ID, run.Status, s.clock.Now())
	if err != nil {
		log.Warn().Err(err).Str("run_id", run.ID).Msg("failed to update run status")
	}
	if changed {
		s.logEvent(ctx, threadID, run.ID, domain.EventTypeRunStatus, domain.RunStatusPayload{Status: run.Status})
	}

	if run.Status.IsTerminal() {
		s.finishRun(ctx, threadID, run)
	}
	return run, nil
}

// finishRun releases the slot held by a terminal run. Only the first caller
// to release it records run_finished.
func (s *Service) finishRun(ctx context.Context, threadID string, run domain.Run) {
	released, err := s.store.ReleaseRunSlot(ctx, threadID, run.ID)
	if err != nil {
		log.Warn().Err(err).Str("thread_id", threadID).Str("run_id", run.ID).Msg("failed to release run slot")
		return
	}
	if !released {
		return
	}

	payload := domain.RunFinishedPayload{Status: run.Status}
	if run.LastError != nil {
		payload.Code = run.LastError.Code
		payload.Message = run.LastError.Message
	}
	s.logEvent(ctx, threadID, run.ID, domain.EventTypeRunFinished, payload)

	if run.Status != domain.RunStatusCompleted {
		log.Warn().
			Str("thread_id", threadID).
			Str("run_id", run.ID).
			Str("status", string(run.Status)).
			Str("code", payload.Code).
			Msg("run did not complete")
	}
}
