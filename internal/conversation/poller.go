package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/myrsple/azv-bot/internal/domain"
)

// Poller drives a run to a terminal status at a fixed interval.
type Poller struct {
	backend  Backend
	clock    clockwork.Clock
	interval time.Duration
	maxWait  time.Duration
}

// NewPoller creates a Poller. maxWait of zero waits until the run ends or
// the context is cancelled.
func NewPoller(backend Backend, clock clockwork.Clock, interval, maxWait time.Duration) *Poller {
	return &Poller{
		backend:  backend,
		clock:    clock,
		interval: interval,
		maxWait:  maxWait,
	}
}

// Await polls until run reaches a terminal status and returns it. Any
// terminal status ends the loop; telling completed from failed is the
// caller's job.
func (p *Poller) Await(ctx context.Context, run domain.Run) (domain.Run, error) {
	var deadline time.Time
	if p.maxWait > 0 {
		deadline = p.clock.Now().Add(p.maxWait)
	}

	for !run.Status.IsTerminal() {
		timer := p.clock.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return run, ctx.Err()
		case <-timer.Chan():
		}

		next, err := p.backend.GetRun(ctx, run.ThreadID, run.ID)
		if err != nil {
			return run, fmt.Errorf("failed to poll run %s: %w", run.ID, err)
		}
		if next.ThreadID == "" {
			next.ThreadID = run.ThreadID
		}
		run = next

		if !run.Status.IsTerminal() && !deadline.IsZero() && !p.clock.Now().Before(deadline) {
			return run, domain.ErrPollDeadline
		}
	}
	return run, nil
}
