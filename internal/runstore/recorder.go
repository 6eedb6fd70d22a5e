package runstore

import (
	"context"
	"log/slog"
	"strings"
)

// Recorder persists loop events for a single run. Failures are logged and
// swallowed: persistence must never interrupt a run.
type Recorder struct {
	store *Store
	runID string
	log   *slog.Logger
}

func NewRecorder(store *Store, runID string, log *slog.Logger) *Recorder {
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{store: store, runID: strings.TrimSpace(runID), log: log}
}

func (r *Recorder) RunEvent(ctx context.Context, kind string, payload map[string]any) {
	if r == nil || r.store == nil || r.runID == "" {
		return
	}
	if _, err := r.store.AppendEvent(ctx, r.runID, kind, payload); err != nil {
		r.log.Warn("runstore.append_event_failed", "run_id", r.runID, "kind", kind, "error", err)
	}
}
