package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/myrsple/azv-bot/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS threads (
			thread_id TEXT PRIMARY KEY,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			active_run_id TEXT,
			claimed_at INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_threads_claimed ON threads(claimed_at)`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL,
			assistant_id TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_thread ON runs(thread_id, started_at)`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			thread_id TEXT NOT NULL,
			run_id TEXT,
			ts INTEGER NOT NULL,
			type TEXT NOT NULL,
			payload TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateThread records a thread. Recording the same thread twice is a no-op.
func (s *SQLiteStore) CreateThread(ctx context.Context, threadID string, createdAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO threads (thread_id, created_at) VALUES (?, ?) ON CONFLICT(thread_id) DO NOTHING`,
		threadID, createdAt.UTC())
	return err
}

// GetRunSlot returns the thread's run slot. Unknown threads have a free slot.
func (s *SQLiteStore) GetRunSlot(ctx context.Context, threadID string) (domain.RunSlot, error) {
	slot := domain.RunSlot{ThreadID: threadID}
	var activeRunID sql.NullString
	var claimedAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT active_run_id, claimed_at FROM threads WHERE thread_id = ?`,
		threadID).Scan(&activeRunID, &claimedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return slot, nil
	}
	if err != nil {
		return slot, err
	}
	fillSlot(&slot, activeRunID, claimedAt)
	return slot, nil
}

// ClaimRunSlot atomically takes the thread's run slot if it is free.
// Threads unknown to the ledger are recorded on first claim.
func (s *SQLiteStore) ClaimRunSlot(ctx context.Context, threadID string, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO threads (thread_id, created_at, active_run_id, claimed_at) VALUES (?, ?, NULL, ?)
		ON CONFLICT(thread_id) DO UPDATE SET active_run_id = NULL, claimed_at = excluded.claimed_at
		WHERE threads.claimed_at IS NULL`,
		threadID, now.UTC(), now.UnixMilli())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AttachRun binds a started run to the thread's claimed slot and records it.
func (s *SQLiteStore) AttachRun(ctx context.Context, threadID string, run domain.Run, startedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE threads SET active_run_id = ? WHERE thread_id = ? AND claimed_at IS NOT NULL AND active_run_id IS NULL`,
		run.ID, threadID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no pending run slot for thread %s", threadID)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, thread_id, assistant_id, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, threadID, run.AssistantID, run.Status, startedAt.UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// ReleaseRunSlot frees the thread's slot if it is held by runID.
// An empty runID releases a slot that was claimed but never attached.
func (s *SQLiteStore) ReleaseRunSlot(ctx context.Context, threadID, runID string) (bool, error) {
	query := `UPDATE threads SET active_run_id = NULL, claimed_at = NULL WHERE thread_id = ? AND claimed_at IS NOT NULL`
	args := []interface{}{threadID}
	if runID == "" {
		query += ` AND active_run_id IS NULL`
	} else {
		query += ` AND active_run_id = ?`
		args = append(args, runID)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListStaleRunSlots lists held slots claimed before the given time, oldest first.
func (s *SQLiteStore) ListStaleRunSlots(ctx context.Context, claimedBefore time.Time, limit int) ([]domain.RunSlot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT thread_id, active_run_id, claimed_at
		FROM threads
		WHERE claimed_at IS NOT NULL AND claimed_at < ?
		ORDER BY claimed_at ASC
		LIMIT ?`,
		claimedBefore.UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RunSlot
	for rows.Next() {
		var slot domain.RunSlot
		var activeRunID sql.NullString
		var claimedAt sql.NullInt64
		if err := rows.Scan(&slot.ThreadID, &activeRunID, &claimedAt); err != nil {
			return nil, err
		}
		fillSlot(&slot, activeRunID, claimedAt)
		out = append(out, slot)
	}
	return out, rows.Err()
}

// GetRun retrieves a run record by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*domain.RunRecord, error) {
	var run domain.RunRecord
	var endedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, thread_id, status, started_at, ended_at FROM runs WHERE run_id = ?`,
		runID).Scan(&run.RunID, &run.ThreadID, &run.Status, &run.StartedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		run.EndedAt = &endedAt.Time
	}
	return &run, nil
}

// UpdateRunStatus stores a new status and reports whether it changed.
// Terminal statuses also stamp ended_at with at.
func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status domain.RunStatus, at time.Time) (bool, error) {
	var endedAt sql.NullTime
	if status.IsTerminal() {
		endedAt = sql.NullTime{Time: at.UTC(), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, ended_at = COALESCE(ended_at, ?) WHERE run_id = ? AND status != ?`,
		status, endedAt, runID, status)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// CreateEvent creates a new event.
func (s *SQLiteStore) CreateEvent(ctx context.Context, event *domain.Event) error {
	payload := ""
	if event.Payload != nil {
		payload = string(event.Payload)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (event_id, thread_id, run_id, ts, type, payload) VALUES (?, ?, ?, ?, ?, ?)`,
		event.EventID, event.ThreadID, nullString(event.RunID), event.Ts, event.Type, payload)
	return err
}

// GetEvents retrieves events for a run of the given thread.
func (s *SQLiteStore) GetEvents(ctx context.Context, threadID, runID string, afterTs int64, limit int) ([]domain.Event, error) {
	query := `SELECT event_id, thread_id, run_id, ts, type, payload FROM events WHERE thread_id = ? AND run_id = ?`
	args := []interface{}{threadID, runID}

	if afterTs > 0 {
		query += ` AND ts > ?`
		args = append(args, afterTs)
	}

	query += ` ORDER BY ts ASC, rowid ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		var eventRunID, payload sql.NullString
		if err := rows.Scan(&event.EventID, &event.ThreadID, &eventRunID, &event.Ts, &event.Type, &payload); err != nil {
			return nil, err
		}
		event.RunID = eventRunID.String
		if payload.Valid && payload.String != "" {
			event.Payload = json.RawMessage(payload.String)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func fillSlot(slot *domain.RunSlot, activeRunID sql.NullString, claimedAt sql.NullInt64) {
	if activeRunID.Valid {
		slot.ActiveRunID = activeRunID.String
	}
	if claimedAt.Valid {
		t := time.UnixMilli(claimedAt.Int64).UTC()
		slot.ClaimedAt = &t
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
