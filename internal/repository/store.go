// Package repository defines the local ledger of threads, runs and events.
// Message text is never stored here; the provider owns conversation content.
package repository

import (
	"context"
	"time"

	"github.com/myrsple/azv-bot/internal/domain"
)

// Store defines the interface for ledger persistence.
type Store interface {
	// Thread operations
	CreateThread(ctx context.Context, threadID string, createdAt time.Time) error
	GetRunSlot(ctx context.Context, threadID string) (domain.RunSlot, error)

	// Run slot operations. Claim and release report whether they took effect.
	ClaimRunSlot(ctx context.Context, threadID string, now time.Time) (bool, error)
	AttachRun(ctx context.Context, threadID string, run domain.Run, startedAt time.Time) error
	ReleaseRunSlot(ctx context.Context, threadID, runID string) (bool, error)
	ListStaleRunSlots(ctx context.Context, claimedBefore time.Time, limit int) ([]domain.RunSlot, error)

	// Run operations
	GetRun(ctx context.Context, runID string) (*domain.RunRecord, error)
	UpdateRunStatus(ctx context.Context, runID string, status domain.RunStatus, at time.Time) (bool, error)

	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvents(ctx context.Context, threadID, runID string, afterTs int64, limit int) ([]domain.Event, error)

	// Lifecycle
	Close() error
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
