package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	looptomd "github.com/reggroux/loop-to-markdown"
)

// Compile-time interface verification.
var _ looptomd.RunService = (*RunService)(nil)

// RunService implements looptomd.RunService using SQLite.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// BeginRun creates a new run and returns it with its ID assigned.
func (s *RunService) BeginRun(ctx context.Context) (*looptomd.Run, error) {
	run := &looptomd.Run{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at)
		VALUES (?, ?)
	`, run.ID, run.StartedAt.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}

	return run, nil
}

// FinishRun marks the run finished and stores its counters.
func (s *RunService) FinishRun(ctx context.Context, run *looptomd.Run) error {
	finishedAt := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, exported = ?, skipped = ?, failed = ?
		WHERE id = ?
	`, finishedAt.Format(time.RFC3339), run.Exported, run.Skipped, run.Failed, run.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return looptomd.Errorf(looptomd.ENOTFOUND, "run not found")
	}

	run.FinishedAt = &finishedAt
	return nil
}

// RecordPage records an exported page for a run.
func (s *RunService) RecordPage(ctx context.Context, rp *looptomd.RunPage) error {
	if err := rp.Validate(); err != nil {
		return err
	}

	rp.ExportedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_pages (run_id, workspace_id, page_id, source_url, content_hash, exported_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, workspace_id, page_id) DO UPDATE SET
			source_url = excluded.source_url,
			content_hash = excluded.content_hash,
			exported_at = excluded.exported_at
	`, rp.RunID, rp.WorkspaceID, rp.PageID, rp.SourceURL, rp.ContentHash,
		rp.ExportedAt.Format(time.RFC3339))

	return err
}

// LastContentHash returns the most recently recorded content hash for a page
// across all runs.
func (s *RunService) LastContentHash(ctx context.Context, workspaceID, pageID string) (string, error) {
	var hash string

	err := s.db.QueryRowContext(ctx, `
		SELECT content_hash
		FROM run_pages
		WHERE workspace_id = ? AND page_id = ?
		ORDER BY exported_at DESC, rowid DESC
		LIMIT 1
	`, workspaceID, pageID).Scan(&hash)

	if err == sql.ErrNoRows {
		return "", looptomd.Errorf(looptomd.ENOTFOUND, "page has no export history")
	}
	if err != nil {
		return "", err
	}

	return hash, nil
}

// FindRuns returns the most recent runs, newest first.
func (s *RunService) FindRuns(ctx context.Context, limit int) ([]*looptomd.Run, error) {
	query := `
		SELECT id, started_at, finished_at, exported, skipped, failed
		FROM runs
		ORDER BY started_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*looptomd.Run
	for rows.Next() {
		var run looptomd.Run
		var startedAt string
		var finishedAt sql.NullString

		if err := rows.Scan(&run.ID, &startedAt, &finishedAt,
			&run.Exported, &run.Skipped, &run.Failed); err != nil {
			return nil, err
		}

		run.StartedAt, err = parseRFC3339(startedAt, "started_at")
		if err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			t, err := parseRFC3339(finishedAt.String, "finished_at")
			if err != nil {
				return nil, err
			}
			run.FinishedAt = &t
		}

		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}
