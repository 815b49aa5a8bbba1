package looptomd

import (
	"context"
	"time"
)

// Run represents one export pass over a manifest.
type Run struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
	Exported   int        `json:"exported"`
	Skipped    int        `json:"skipped"`
	Failed     int        `json:"failed"`
}

// RunPage records one exported page within a run. The content hash lets a
// later run skip pages whose content has not changed.
type RunPage struct {
	RunID       string    `json:"runId"`
	WorkspaceID string    `json:"workspaceId"`
	PageID      string    `json:"pageId"`
	SourceURL   string    `json:"sourceUrl"`
	ContentHash string    `json:"contentHash"`
	ExportedAt  time.Time `json:"exportedAt"`
}

// Validate returns an error if the run page contains invalid fields.
func (rp *RunPage) Validate() error {
	if rp.RunID == "" {
		return Errorf(EINVALID, "run page run ID required")
	}
	if rp.WorkspaceID == "" {
		return Errorf(EINVALID, "run page workspace ID required")
	}
	if rp.PageID == "" {
		return Errorf(EINVALID, "run page page ID required")
	}
	return nil
}

// RunService records export runs and their per-page content hashes.
type RunService interface {
	// BeginRun creates a new run and returns it with its ID assigned.
	BeginRun(ctx context.Context) (*Run, error)

	// FinishRun marks the run finished and stores its counters.
	// Returns ENOTFOUND if the run does not exist.
	FinishRun(ctx context.Context, run *Run) error

	// RecordPage records an exported page for a run.
	RecordPage(ctx context.Context, rp *RunPage) error

	// LastContentHash returns the most recently recorded content hash for
	// a page across all runs. Returns ENOTFOUND if the page has never
	// been exported.
	LastContentHash(ctx context.Context, workspaceID, pageID string) (string, error)

	// FindRuns returns the most recent runs, newest first.
	FindRuns(ctx context.Context, limit int) ([]*Run, error)
}
