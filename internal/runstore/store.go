// Package runstore is a local SQLite-backed persistence layer for agent runs
// and their step events.
//
// Notes:
// - One row per run, append-only events keyed by run_id.
// - WAL is enabled to support concurrent reads while a run is writing.
package runstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	p := filepath.Clean(strings.TrimSpace(path))
	if p == "" {
		return nil, errors.New("missing db path")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type Run struct {
	RunID     string `json:"run_id"`
	Objective string `json:"objective"`
	Model     string `json:"model"`

	// Status is one of "running" | "completed" | "canceled" | "failed".
	Status    string `json:"status"`
	EndReason string `json:"end_reason"`
	RunError  string `json:"run_error"`

	CreatedAtUnixMs int64 `json:"created_at_unix_ms"`
	UpdatedAtUnixMs int64 `json:"updated_at_unix_ms"`
}

type Event struct {
	ID    int64  `json:"id"`
	RunID string `json:"run_id"`

	// Kind is the loop event name ("run.proposal", "run.outcomes", ...).
	Kind string `json:"kind"`
	// PayloadJSON is the event payload serialized as a JSON object.
	PayloadJSON string `json:"payload_json"`

	CreatedAtUnixMs int64 `json:"created_at_unix_ms"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

func normalizeRunStatus(status string) string {
	status = strings.TrimSpace(status)
	switch status {
	case "running", "completed", "canceled", "failed":
		return status
	default:
		return "running"
	}
}

func (s *Store) CreateRun(ctx context.Context, r Run) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r.RunID = strings.TrimSpace(r.RunID)
	r.Objective = strings.TrimSpace(r.Objective)
	r.Model = strings.TrimSpace(r.Model)
	r.Status = normalizeRunStatus(r.Status)
	r.EndReason = strings.TrimSpace(r.EndReason)
	r.RunError = strings.TrimSpace(r.RunError)
	if r.RunID == "" {
		return errors.New("invalid run")
	}

	now := time.Now().UnixMilli()
	if r.CreatedAtUnixMs <= 0 {
		r.CreatedAtUnixMs = now
	}
	if r.UpdatedAtUnixMs <= 0 {
		r.UpdatedAtUnixMs = r.CreatedAtUnixMs
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO agent_runs(
  run_id, objective, model, status, end_reason, run_error,
  created_at_unix_ms, updated_at_unix_ms
) VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`,
		r.RunID,
		r.Objective,
		r.Model,
		r.Status,
		r.EndReason,
		r.RunError,
		r.CreatedAtUnixMs,
		r.UpdatedAtUnixMs,
	)
	return err
}

func (s *Store) UpdateRunStatus(ctx context.Context, runID string, status string, endReason string, runError string) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return errors.New("invalid request")
	}

	status = normalizeRunStatus(status)
	runError = strings.TrimSpace(runError)
	if status != "failed" {
		runError = ""
	}
	if len(runError) > 600 {
		runError = truncateRunes(runError, 600)
	}

	now := time.Now().UnixMilli()
	res, err := s.db.ExecContext(ctx, `
UPDATE agent_runs
SET status = ?, end_reason = ?, run_error = ?, updated_at_unix_ms = ?
WHERE run_id = ?
`, status, strings.TrimSpace(endReason), runError, now, runID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, errors.New("invalid request")
	}

	var r Run
	err := s.db.QueryRowContext(ctx, `
SELECT run_id, objective, model, status, end_reason, run_error,
       created_at_unix_ms, updated_at_unix_ms
FROM agent_runs
WHERE run_id = ?
`, runID).Scan(
		&r.RunID,
		&r.Objective,
		&r.Model,
		&r.Status,
		&r.EndReason,
		&r.RunError,
		&r.CreatedAtUnixMs,
		&r.UpdatedAtUnixMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// ListRuns returns the most recently updated runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, objective, model, status, end_reason, run_error,
       created_at_unix_ms, updated_at_unix_ms
FROM agent_runs
ORDER BY updated_at_unix_ms DESC, run_id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Run, 0, limit)
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.RunID,
			&r.Objective,
			&r.Model,
			&r.Status,
			&r.EndReason,
			&r.RunError,
			&r.CreatedAtUnixMs,
			&r.UpdatedAtUnixMs,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) AppendEvent(ctx context.Context, runID string, kind string, payload map[string]any) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runID = strings.TrimSpace(runID)
	kind = strings.TrimSpace(kind)
	if runID == "" || kind == "" {
		return 0, errors.New("invalid event")
	}

	payloadJSON := "{}"
	if len(payload) > 0 {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, err
		}
		payloadJSON = string(b)
	}

	now := time.Now().UnixMilli()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO agent_run_events(run_id, kind, payload_json, created_at_unix_ms)
VALUES(?, ?, ?, ?)
`, runID, kind, payloadJSON, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()

	// Keep the run row fresh so ListRuns sorts live runs first.
	_, _ = s.db.ExecContext(ctx, `
UPDATE agent_runs SET updated_at_unix_ms = ? WHERE run_id = ?
`, now, runID)

	return id, nil
}

// ListEvents returns events in ascending insertion order.
func (s *Store) ListEvents(ctx context.Context, runID string, limit int) ([]Event, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return nil, errors.New("invalid request")
	}
	if limit <= 0 {
		limit = 500
	}
	if limit > 2000 {
		limit = 2000
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, run_id, kind, payload_json, created_at_unix_ms
FROM agent_run_events
WHERE run_id = ?
ORDER BY id ASC
LIMIT ?
`, runID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Event, 0, limit)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.RunID, &e.Kind, &e.PayloadJSON, &e.CreatedAtUnixMs); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func initSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("nil db")
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return fmt.Errorf("pragma journal_mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout=3000;`); err != nil {
		return fmt.Errorf("pragma busy_timeout: %w", err)
	}

	const targetVersion = 1

	var v int
	if err := db.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return fmt.Errorf("pragma user_version: %w", err)
	}
	if v >= targetVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS agent_runs (
  run_id TEXT PRIMARY KEY,
  objective TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'running',
  end_reason TEXT NOT NULL DEFAULT '',
  run_error TEXT NOT NULL DEFAULT '',
  created_at_unix_ms INTEGER NOT NULL,
  updated_at_unix_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_agent_runs_updated ON agent_runs(updated_at_unix_ms DESC, run_id DESC);

CREATE TABLE IF NOT EXISTS agent_run_events (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  run_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  payload_json TEXT NOT NULL DEFAULT '{}',
  created_at_unix_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_agent_run_events_run ON agent_run_events(run_id, id ASC);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(fmt.Sprintf(`PRAGMA user_version=%d;`, targetVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n >= max {
			return strings.TrimSpace(s[:i])
		}
		n++
	}
	return strings.TrimSpace(s)
}
