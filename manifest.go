package looptomd

import (
	"context"
	"time"
)

// Diagnostic warnings attached to a manifest. These are operating conditions,
// not errors: an empty manifest is a valid terminal state when the host UI
// has changed beyond recognition.
const (
	WarnNoWorkspaces = "no workspaces discovered; the UI layout may have changed, adjust locator strategies"
	WarnNoLinkedPages = "no pages with a navigable location were discovered; export will rely on activation"
)

// Manifest is the serializable result of one discovery pass.
type Manifest struct {
	GeneratedAt     time.Time    `json:"generatedAt"`
	TotalWorkspaces int          `json:"totalWorkspaces"`
	TotalPages      int          `json:"totalPages"`
	Workspaces      []*Workspace `json:"workspaces"`
	Warnings        []string     `json:"warnings,omitempty"`
}

// Recount recomputes the manifest's total counters from its workspaces.
func (m *Manifest) Recount() {
	m.TotalWorkspaces = len(m.Workspaces)
	m.TotalPages = 0
	for _, ws := range m.Workspaces {
		m.TotalPages += len(ws.Pages)
	}
}

// LinkedPages returns the number of pages carrying a navigable location.
func (m *Manifest) LinkedPages() int {
	var n int
	for _, ws := range m.Workspaces {
		for _, p := range ws.Pages {
			if p.URL != nil && *p.URL != "" {
				n++
			}
		}
	}
	return n
}

// ManifestStore persists and loads manifests.
type ManifestStore interface {
	// WriteManifest atomically replaces the stored manifest.
	WriteManifest(ctx context.Context, m *Manifest) error

	// ReadManifest loads the stored manifest.
	// Returns ENOTFOUND if no manifest has been written.
	ReadManifest(ctx context.Context) (*Manifest, error)
}
