package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/myrsple/azv-bot/internal/domain"
)

const staleSlotBatch = 100

// RunSlotMonitor periodically frees run slots whose runs were abandoned
// by their client. It returns when ctx is done.
func (s *Service) RunSlotMonitor(ctx context.Context) {
	ticker := s.clock.NewTicker(s.config.Monitor.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.sweepStaleRunSlots(ctx)
		}
	}
}

func (s *Service) sweepStaleRunSlots(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := s.clock.Now().Add(-s.config.Monitor.StaleAfter)
	slots, err := s.store.ListStaleRunSlots(sweepCtx, cutoff, staleSlotBatch)
	if err != nil {
		log.Warn().Err(err).Msg("run slot sweep failed")
		return
	}

	for _, slot := range slots {
		reason, ok := s.resolveStaleSlot(sweepCtx, slot)
		if !ok {
			continue
		}

		released, err := s.store.ReleaseRunSlot(sweepCtx, slot.ThreadID, slot.ActiveRunID)
		if err != nil {
			log.Warn().Err(err).Str("thread_id", slot.ThreadID).Msg("failed to release stale run slot")
			continue
		}
		if !released {
			continue
		}

		log.Info().Str("thread_id", slot.ThreadID).Str("run_id", slot.ActiveRunID).Str("reason", reason).Msg("released stale run slot")
		s.logEvent(sweepCtx, slot.ThreadID, slot.ActiveRunID, domain.EventTypeSlotReleased, domain.SlotReleasedPayload{Reason: reason})
	}
}

// resolveStaleSlot reports whether a stale slot can be freed, and why.
func (s *Service) resolveStaleSlot(ctx context.Context, slot domain.RunSlot) (string, bool) {
	if slot.ActiveRunID == "" {
		return "never_attached", true
	}

	run, err := s.provider.RetrieveRun(ctx, slot.ThreadID, slot.ActiveRunID)
	if err != nil {
		var perr *domain.ProviderError
		if errors.As(err, &perr) && perr.StatusCode == http.StatusNotFound {
			return "unknown_run", true
		}
		log.Warn().Err(err).Str("thread_id", slot.ThreadID).Str("run_id", slot.ActiveRunID).Msg("failed to check stale run")
		return "", false
	}

	if !run.Status.IsTerminal() {
		return "", false
	}
	if _, err := s.store.UpdateRunStatus(ctx, run.ID, run.Status, s.clock.Now()); err != nil {
		log.Warn().Err(err).Str("run_id", run.ID).Msg("failed to update run status")
	}
	return "run_" + string(run.Status), true
}
