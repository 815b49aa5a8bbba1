package mock

import (
	"context"

	looptomd "github.com/reggroux/loop-to-markdown"
)

var _ looptomd.Converter = (*Converter)(nil)

// Converter is a mock implementation of looptomd.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ looptomd.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of looptomd.Extractor.
type Extractor struct {
	ExtractFn func(html string, pageURL string) (*looptomd.ExtractResult, error)
}

func (e *Extractor) Extract(html string, pageURL string) (*looptomd.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}

var _ looptomd.PageWriter = (*PageWriter)(nil)

// PageWriter is a mock implementation of looptomd.PageWriter.
type PageWriter struct {
	WritePageFn func(ctx context.Context, ws *looptomd.Workspace, page *looptomd.Page, breadcrumb []string, markdown string) (string, error)
}

func (w *PageWriter) WritePage(ctx context.Context, ws *looptomd.Workspace, page *looptomd.Page, breadcrumb []string, markdown string) (string, error) {
	return w.WritePageFn(ctx, ws, page, breadcrumb, markdown)
}

var _ looptomd.ManifestStore = (*ManifestStore)(nil)

// ManifestStore is a mock implementation of looptomd.ManifestStore.
type ManifestStore struct {
	WriteManifestFn func(ctx context.Context, m *looptomd.Manifest) error
	ReadManifestFn  func(ctx context.Context) (*looptomd.Manifest, error)
}

func (s *ManifestStore) WriteManifest(ctx context.Context, m *looptomd.Manifest) error {
	return s.WriteManifestFn(ctx, m)
}

func (s *ManifestStore) ReadManifest(ctx context.Context) (*looptomd.Manifest, error) {
	return s.ReadManifestFn(ctx)
}

var _ looptomd.RunService = (*RunService)(nil)

// RunService is a mock implementation of looptomd.RunService.
type RunService struct {
	BeginRunFn        func(ctx context.Context) (*looptomd.Run, error)
	FinishRunFn       func(ctx context.Context, run *looptomd.Run) error
	RecordPageFn      func(ctx context.Context, rp *looptomd.RunPage) error
	LastContentHashFn func(ctx context.Context, workspaceID, pageID string) (string, error)
	FindRunsFn        func(ctx context.Context, limit int) ([]*looptomd.Run, error)
}

func (s *RunService) BeginRun(ctx context.Context) (*looptomd.Run, error) {
	return s.BeginRunFn(ctx)
}

func (s *RunService) FinishRun(ctx context.Context, run *looptomd.Run) error {
	return s.FinishRunFn(ctx, run)
}

func (s *RunService) RecordPage(ctx context.Context, rp *looptomd.RunPage) error {
	return s.RecordPageFn(ctx, rp)
}

func (s *RunService) LastContentHash(ctx context.Context, workspaceID, pageID string) (string, error) {
	return s.LastContentHashFn(ctx, workspaceID, pageID)
}

func (s *RunService) FindRuns(ctx context.Context, limit int) ([]*looptomd.Run, error) {
	return s.FindRunsFn(ctx, limit)
}
