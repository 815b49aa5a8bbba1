package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/reggroux/loop-to-markdown"
)

// Ensure LoggingRunService implements looptomd.RunService.
var _ looptomd.RunService = (*LoggingRunService)(nil)

// LoggingRunService wraps a RunService with logging for run lifecycle events.
type LoggingRunService struct {
	next   looptomd.RunService
	logger *slog.Logger
}

// NewLoggingRunService creates a new LoggingRunService.
func NewLoggingRunService(next looptomd.RunService, logger *slog.Logger) *LoggingRunService {
	return &LoggingRunService{next: next, logger: logger}
}

// BeginRun delegates to the wrapped service and logs the new run ID.
func (s *LoggingRunService) BeginRun(ctx context.Context) (*looptomd.Run, error) {
	run, err := s.next.BeginRun(ctx)
	if err != nil {
		s.logger.Error("begin run", "err", err)
		return nil, err
	}
	s.logger.Info("begin run", "run", run.ID)
	return run, nil
}

// FinishRun delegates to the wrapped service and logs the final counters.
func (s *LoggingRunService) FinishRun(ctx context.Context, run *looptomd.Run) error {
	err := s.next.FinishRun(ctx, run)
	s.logger.Info("finish run",
		"run", run.ID,
		"exported", run.Exported,
		"skipped", run.Skipped,
		"failed", run.Failed,
		"err", err,
	)
	return err
}

// RecordPage delegates to the wrapped service with debug logging.
func (s *LoggingRunService) RecordPage(ctx context.Context, rp *looptomd.RunPage) error {
	err := s.next.RecordPage(ctx, rp)
	s.logger.Debug("record page",
		"workspace", rp.WorkspaceID,
		"page", rp.PageID,
		"hash", rp.ContentHash,
		"err", err,
	)
	return err
}

// LastContentHash delegates to the wrapped service.
func (s *LoggingRunService) LastContentHash(ctx context.Context, workspaceID, pageID string) (string, error) {
	return s.next.LastContentHash(ctx, workspaceID, pageID)
}

// FindRuns delegates to the wrapped service and logs the query duration.
func (s *LoggingRunService) FindRuns(ctx context.Context, limit int) ([]*looptomd.Run, error) {
	begin := time.Now()
	runs, err := s.next.FindRuns(ctx, limit)
	s.logger.Debug("find runs", "count", len(runs), "duration", time.Since(begin), "err", err)
	return runs, err
}
