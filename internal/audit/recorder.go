package audit

import (
	"context"
	"log/slog"
)

// Recorder is the fire-and-forget boundary in front of a Repository: append
// failures are logged and never reach the caller.
type Recorder struct {
	repo Repository
}

// NewRecorder creates a new Recorder.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends rec, swallowing any error.
func (r *Recorder) Record(ctx context.Context, rec Record) {
	if err := r.repo.Append(ctx, &rec); err != nil {
		slog.Warn("audit: failed to record",
			"action", string(rec.Action),
			"actor", rec.ActorID,
			"team", rec.TeamID,
			"outcome", string(rec.Outcome),
			"error", err,
		)
	}
}
