// Package slog provides logging decorators for looptomd services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/reggroux/loop-to-markdown"
)

// Ensure LoggingManifestStore implements looptomd.ManifestStore.
var _ looptomd.ManifestStore = (*LoggingManifestStore)(nil)

// LoggingManifestStore wraps a ManifestStore with logging.
type LoggingManifestStore struct {
	next   looptomd.ManifestStore
	logger *slog.Logger
}

// NewLoggingManifestStore creates a new LoggingManifestStore.
func NewLoggingManifestStore(next looptomd.ManifestStore, logger *slog.Logger) *LoggingManifestStore {
	return &LoggingManifestStore{next: next, logger: logger}
}

// WriteManifest delegates to the wrapped store and logs the outcome.
func (s *LoggingManifestStore) WriteManifest(ctx context.Context, m *looptomd.Manifest) error {
	begin := time.Now()
	err := s.next.WriteManifest(ctx, m)
	s.logger.Info("write manifest",
		"workspaces", m.TotalWorkspaces,
		"pages", m.TotalPages,
		"duration", time.Since(begin),
		"err", err,
	)
	return err
}

// ReadManifest delegates to the wrapped store and logs the outcome.
func (s *LoggingManifestStore) ReadManifest(ctx context.Context) (*looptomd.Manifest, error) {
	begin := time.Now()
	m, err := s.next.ReadManifest(ctx)
	attrs := []any{"duration", time.Since(begin), "err", err}
	if m != nil {
		attrs = append(attrs, "workspaces", m.TotalWorkspaces, "pages", m.TotalPages)
	}
	s.logger.Info("read manifest", attrs...)
	return m, err
}
