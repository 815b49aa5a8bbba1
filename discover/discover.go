// Package discover implements the hierarchical content discovery engine.
// It enumerates top-level workspaces, forces each workspace's virtualized
// page outline to fully render, infers nesting depths, and resolves the
// flat depth-annotated node sequence into a forest, producing a manifest.
//
// Discovery degrades instead of failing: lookup misses cascade, stale
// elements are skipped, a failed workspace is recorded on its manifest
// entry, and a pass always yields a manifest even when it found nothing.
package discover

import (
	"context"
	"fmt"
	"net/url"
	"time"

	looptomd "github.com/reggroux/loop-to-markdown"
)

// DefaultStepTimeout is the hard deadline for opening and materializing one
// workspace outline.
const DefaultStepTimeout = 90 * time.Second

// Discoverer runs discovery passes against a single driver session. The
// session is exclusively owned by the pass for its duration; operations
// execute strictly sequentially and element handles never outlive a
// navigation boundary.
type Discoverer struct {
	Driver  looptomd.Driver
	BaseURL string

	// Strategies overrides the locator strategies.
	// The zero value uses DefaultStrategies.
	Strategies Strategies

	// PassBudget bounds materialization passes per outline.
	// Defaults to DefaultPassBudget.
	PassBudget int

	// EntryWait bounds each cascade entry's lookup.
	EntryWait time.Duration

	// StepTimeout is the hard deadline for one workspace's open and
	// materialization step. Defaults to DefaultStepTimeout.
	StepTimeout time.Duration

	// CaptureWindow is how long the network fallback keeps collecting
	// responses after the forced reload. Defaults to 5s.
	CaptureWindow time.Duration

	// Now returns the manifest timestamp. Defaults to time.Now.
	Now func() time.Time

	stratCache *Strategies
}

// ProgressType indicates the type of progress event.
type ProgressType int

// Progress event types.
const (
	ProgressStarted ProgressType = iota
	ProgressWorkspaceDone
	ProgressWorkspaceFailed
	ProgressFinished
)

// ProgressEvent reports progress during a discovery pass.
type ProgressEvent struct {
	Type      ProgressType
	Workspace string
	Completed int
	Total     int
	Pages     int
	Err       error
}

// ProgressFunc is a callback for reporting discovery progress.
type ProgressFunc func(event ProgressEvent)

// Discover runs one full discovery pass and returns the manifest. The pass
// always completes and always returns a manifest, even an empty one; all
// degradation is recorded as data (workspace error fields, warnings). The
// only returned errors are context cancellation.
func (d *Discoverer) Discover(ctx context.Context, progress ProgressFunc) (*looptomd.Manifest, error) {
	workspaces := d.discoverWorkspaces(ctx)
	if len(workspaces) == 0 {
		// DOM-based discovery came up empty: fall back to passively
		// observing structured responses during a forced reload.
		workspaces = d.workspacesFromNetwork(ctx)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: len(workspaces)})
	}

	for i, ws := range workspaces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pages, err := d.discoverOutline(ctx, ws)
		if err != nil {
			// Workspace-level failure: record and move on.
			ws.Err = err.Error()
			ws.Pages = []*looptomd.Page{}
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressWorkspaceFailed,
					Workspace: ws.Title,
					Completed: i + 1,
					Total:     len(workspaces),
					Err:       err,
				})
			}
			continue
		}

		ws.Pages = pages
		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressWorkspaceDone,
				Workspace: ws.Title,
				Completed: i + 1,
				Total:     len(workspaces),
				Pages:     len(pages),
			})
		}
	}

	m := &looptomd.Manifest{
		GeneratedAt: d.now()(),
		Workspaces:  workspaces,
	}
	if m.Workspaces == nil {
		m.Workspaces = []*looptomd.Workspace{}
	}
	m.Recount()

	if m.TotalWorkspaces == 0 {
		m.Warnings = append(m.Warnings, looptomd.WarnNoWorkspaces)
	} else if m.LinkedPages() == 0 {
		m.Warnings = append(m.Warnings, looptomd.WarnNoLinkedPages)
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Total: m.TotalWorkspaces})
	}
	return m, nil
}

// discoverOutline opens one workspace and materializes its page outline into
// depth-annotated, forest-resolved pages.
func (d *Discoverer) discoverOutline(ctx context.Context, ws *looptomd.Workspace) ([]*looptomd.Page, error) {
	stepCtx, cancel := context.WithTimeout(ctx, d.stepTimeout())
	defer cancel()

	if err := d.openWorkspace(stepCtx, ws); err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	scope, _ := d.resolver().First(stepCtx, nil, d.strat().Outline)

	nodes := d.Materialize(stepCtx, scope)
	if err := stepCtx.Err(); err != nil {
		return nil, fmt.Errorf("outline materialization: %w", err)
	}

	pages := d.capturePages(stepCtx, nodes)
	ResolveForest(pages)
	return pages, nil
}

// openWorkspace navigates to the workspace's location, or re-locates and
// activates its entry by label when no static reference exists.
func (d *Discoverer) openWorkspace(ctx context.Context, ws *looptomd.Workspace) error {
	if ws.URL != nil && *ws.URL != "" {
		return d.Driver.Navigate(ctx, *ws.URL, looptomd.WaitStable)
	}

	if err := d.Driver.Navigate(ctx, d.BaseURL, looptomd.WaitStable); err != nil {
		return err
	}

	scope, _ := d.resolver().First(ctx, nil, d.strat().WorkspaceList)
	items, ok := d.resolver().All(ctx, scope, d.strat().WorkspaceItems)
	if !ok {
		return looptomd.Errorf(looptomd.ENOTFOUND, "workspace %q not found for activation", ws.Title)
	}

	for _, item := range items {
		label, err := d.Driver.Label(ctx, item)
		if err != nil {
			continue
		}
		if looptomd.FirstLine(label) == ws.Title {
			return d.Driver.Activate(ctx, item)
		}
	}
	return looptomd.Errorf(looptomd.ENOTFOUND, "workspace %q not found for activation", ws.Title)
}

// capturePages converts visible node elements into immutable page entries.
// Stale or unlabeled rows are skipped, never fatal.
func (d *Discoverer) capturePages(ctx context.Context, nodes []looptomd.Element) []*looptomd.Page {
	ids := newIDAllocator()
	pages := make([]*looptomd.Page, 0, len(nodes))

	for i, node := range nodes {
		label, err := d.Driver.Label(ctx, node)
		if err != nil {
			continue
		}
		title := looptomd.FirstLine(label)
		if title == "" {
			continue
		}

		id := d.domID(ctx, node)
		if id == "" {
			id = looptomd.Slugify(title)
		}

		pages = append(pages, &looptomd.Page{
			ID:    ids.claim(id, i),
			Title: title,
			URL:   d.nodeLocation(ctx, node),
			Depth: d.InferDepth(ctx, node),
		})
	}
	return pages
}

// domID reads the first present stable identifier attribute.
func (d *Discoverer) domID(ctx context.Context, el looptomd.Element) string {
	for _, attr := range d.strat().IDAttrs {
		value, ok, err := d.Driver.Attribute(ctx, el, attr)
		if err == nil && ok && value != "" {
			return value
		}
	}
	return ""
}

// nodeLocation extracts a navigable reference from a row: a link attribute
// on the row itself, else on an inner link element, else nil.
func (d *Discoverer) nodeLocation(ctx context.Context, el looptomd.Element) *string {
	if href, ok, err := d.Driver.Attribute(ctx, el, "href"); err == nil && ok && href != "" {
		return d.absolutize(href)
	}
	if link, ok := d.resolver().First(ctx, el, d.strat().NodeLink); ok {
		if href, ok, err := d.Driver.Attribute(ctx, link, "href"); err == nil && ok && href != "" {
			return d.absolutize(href)
		}
	}
	return nil
}

// absolutize resolves href against the base URL. Unresolvable references
// are dropped rather than propagated.
func (d *Discoverer) absolutize(href string) *string {
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	if ref.IsAbs() {
		s := ref.String()
		return &s
	}
	base, err := url.Parse(d.BaseURL)
	if err != nil {
		return &href
	}
	s := base.ResolveReference(ref).String()
	return &s
}

// idAllocator hands out unique IDs within one scope. Collisions are resolved
// at creation time by suffixing the discovery ordinal, never after the fact.
type idAllocator struct {
	used map[string]bool
}

func newIDAllocator() *idAllocator {
	return &idAllocator{used: make(map[string]bool)}
}

func (a *idAllocator) claim(base string, ordinal int) string {
	candidate := base
	for n := ordinal; a.used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	a.used[candidate] = true
	return candidate
}

func (d *Discoverer) resolver() *Resolver {
	return &Resolver{Driver: d.Driver, EntryWait: d.EntryWait}
}

func (d *Discoverer) strat() Strategies {
	if d.stratCache == nil {
		s := d.Strategies
		if s.OutlineNodes.IsZero() {
			s = DefaultStrategies()
		}
		d.stratCache = &s
	}
	return *d.stratCache
}

func (d *Discoverer) passBudget() int {
	if d.PassBudget > 0 {
		return d.PassBudget
	}
	return DefaultPassBudget
}

func (d *Discoverer) stepTimeout() time.Duration {
	if d.StepTimeout > 0 {
		return d.StepTimeout
	}
	return DefaultStepTimeout
}

func (d *Discoverer) captureWindow() time.Duration {
	if d.CaptureWindow > 0 {
		return d.CaptureWindow
	}
	return 5 * time.Second
}

func (d *Discoverer) now() func() time.Time {
	if d.Now != nil {
		return d.Now
	}
	return time.Now
}
