// Package export renders discovered pages to Markdown and writes them out
// as a hierarchy-mirroring file tree.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/bloom"
	"golang.org/x/time/rate"
)

// Exporter renders the pages of a manifest through a browser session and
// writes their Markdown to a PageWriter. The driver session is owned
// exclusively by the export pass; pages are processed strictly in manifest
// order because element handles and page state never survive navigation.
type Exporter struct {
	Driver    looptomd.Driver
	Extractor looptomd.Extractor
	Converter looptomd.Converter
	Writer    looptomd.PageWriter

	// Runs records export history so unchanged pages can be skipped.
	// Optional; without it every page is exported.
	Runs looptomd.RunService

	// Assets downloads referenced images into the export.
	// Optional; without it image references stay remote.
	Assets *AssetFetcher

	// Limiter paces page navigations against the host.
	// Optional; without it navigations are unpaced.
	Limiter *rate.Limiter

	// Strategies locate outline rows during lazy activation. The zero
	// value uses the discovery defaults.
	Strategies ActivationStrategies

	// RetryDelays configures render retry backoff.
	// Defaults to DefaultRetryDelays.
	RetryDelays []time.Duration

	// Force exports pages even when their content hash is unchanged.
	Force bool

	// Logf receives retry diagnostics. Optional.
	Logf LogFunc
}

// ActivationStrategies bundles the locators needed to reach a page that has
// no navigable URL.
type ActivationStrategies struct {
	Outline      looptomd.LocatorStrategy
	OutlineNodes looptomd.LocatorStrategy
}

// Result holds the outcome of an export pass.
type Result struct {
	Exported int
	Skipped  int
	Failed   int
	Bytes    int
}

// ProgressType indicates the type of progress event.
type ProgressType int

// Progress event types.
const (
	ProgressStarted ProgressType = iota
	ProgressPageExported
	ProgressPageSkipped
	ProgressPageFailed
	ProgressFinished
)

// ProgressEvent reports progress during an export pass.
type ProgressEvent struct {
	Type      ProgressType
	Workspace string
	Page      string
	Path      string
	Completed int
	Total     int
	Err       error
}

// ProgressFunc is a callback for reporting export progress.
type ProgressFunc func(event ProgressEvent)

// Export renders every page of the manifest and writes the results. Page
// failures are contained: a page that cannot be rendered is counted and
// reported, and the pass moves on. The only returned errors are context
// cancellation and run bookkeeping failures.
func (e *Exporter) Export(ctx context.Context, m *looptomd.Manifest, progress ProgressFunc) (*Result, error) {
	var run *looptomd.Run
	if e.Runs != nil {
		var err error
		run, err = e.Runs.BeginRun(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin run: %w", err)
		}
	}

	total := m.TotalPages
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	// Pages shared into several workspaces appear once per workspace;
	// export each location only once.
	seen := bloom.NewFilter(uint(max(total, 64)), 0.01)

	result := &Result{}
	completed := 0

	for _, ws := range m.Workspaces {
		for _, page := range ws.Pages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			completed++

			outcome := e.exportPage(ctx, run, seen, ws, page)
			switch {
			case outcome.err != nil:
				result.Failed++
				if progress != nil {
					progress(ProgressEvent{
						Type:      ProgressPageFailed,
						Workspace: ws.Title,
						Page:      page.Title,
						Completed: completed,
						Total:     total,
						Err:       outcome.err,
					})
				}
			case outcome.skipped:
				result.Skipped++
				if progress != nil {
					progress(ProgressEvent{
						Type:      ProgressPageSkipped,
						Workspace: ws.Title,
						Page:      page.Title,
						Completed: completed,
						Total:     total,
					})
				}
			default:
				result.Exported++
				result.Bytes += outcome.bytes
				if progress != nil {
					progress(ProgressEvent{
						Type:      ProgressPageExported,
						Workspace: ws.Title,
						Page:      page.Title,
						Path:      outcome.path,
						Completed: completed,
						Total:     total,
					})
				}
			}
		}
	}

	if run != nil {
		run.Exported = result.Exported
		run.Skipped = result.Skipped
		run.Failed = result.Failed
		if err := e.Runs.FinishRun(ctx, run); err != nil {
			return nil, fmt.Errorf("finish run: %w", err)
		}
	}

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Total: total})
	}
	return result, nil
}

// pageOutcome holds the outcome of processing a single page.
type pageOutcome struct {
	path    string
	bytes   int
	skipped bool
	err     error
}

func (e *Exporter) exportPage(ctx context.Context, run *looptomd.Run, seen *bloom.Filter, ws *looptomd.Workspace, page *looptomd.Page) pageOutcome {
	if page.URL != nil && *page.URL != "" && seen.Test(*page.URL) {
		return pageOutcome{skipped: true}
	}

	html, location, err := e.renderPage(ctx, ws, page)
	if err != nil {
		return pageOutcome{err: err}
	}
	if page.URL != nil {
		seen.Add(*page.URL)
	} else if location != "" {
		seen.Add(location)
	}

	extracted, err := e.Extractor.Extract(html, location)
	if err != nil {
		return pageOutcome{err: fmt.Errorf("extract: %w", err)}
	}

	breadcrumb := ws.Breadcrumb(page)

	content := extracted.ContentHTML
	if e.Assets != nil {
		// The page file sits under the workspace directory plus one
		// directory per ancestor; assets sit at the export root.
		relPrefix := strings.Repeat("../", len(breadcrumb)) + "_assets/"
		content = e.Assets.Localize(ctx, content, relPrefix)
	}

	markdown, err := e.Converter.Convert(content)
	if err != nil {
		return pageOutcome{err: fmt.Errorf("convert: %w", err)}
	}

	hash := fmt.Sprintf("%016x", xxhash.Sum64String(markdown))

	if e.Runs != nil && !e.Force {
		last, err := e.Runs.LastContentHash(ctx, ws.ID, page.ID)
		if err == nil && last == hash {
			return pageOutcome{skipped: true}
		}
	}

	path, err := e.Writer.WritePage(ctx, ws, page, breadcrumb, markdown)
	if err != nil {
		return pageOutcome{err: fmt.Errorf("write: %w", err)}
	}

	if run != nil {
		rp := &looptomd.RunPage{
			RunID:       run.ID,
			WorkspaceID: ws.ID,
			PageID:      page.ID,
			SourceURL:   location,
			ContentHash: hash,
		}
		if err := e.Runs.RecordPage(ctx, rp); err != nil {
			return pageOutcome{err: fmt.Errorf("record page: %w", err)}
		}
	}

	return pageOutcome{path: path, bytes: len(markdown)}
}

// renderPage brings the page's content on screen and returns its rendered
// HTML along with the location it was rendered at. Pages with a URL are
// navigated to directly; pages without one are reached by re-opening their
// workspace and activating the matching outline row.
func (e *Exporter) renderPage(ctx context.Context, ws *looptomd.Workspace, page *looptomd.Page) (string, string, error) {
	if page.URL != nil && *page.URL != "" {
		html, err := RenderWithRetry(ctx, *page.URL, e.renderURL, e.Logf, e.retryDelays())
		if err != nil {
			return "", "", err
		}
		return html, *page.URL, nil
	}
	return e.renderByActivation(ctx, ws, page)
}

// renderURL navigates to url and returns the rendered HTML.
func (e *Exporter) renderURL(ctx context.Context, url string) (string, error) {
	if err := e.pace(ctx); err != nil {
		return "", err
	}
	if err := e.Driver.Navigate(ctx, url, looptomd.WaitStable); err != nil {
		return "", err
	}
	return e.Driver.HTML(ctx)
}

// renderByActivation reaches a page with no navigable URL: open its
// workspace, find the outline row with the page's title, and activate it.
func (e *Exporter) renderByActivation(ctx context.Context, ws *looptomd.Workspace, page *looptomd.Page) (string, string, error) {
	if ws.URL == nil || *ws.URL == "" {
		return "", "", looptomd.Errorf(looptomd.EUNAVAILABLE,
			"page %q has no location and its workspace has none either", page.Title)
	}

	if err := e.pace(ctx); err != nil {
		return "", "", err
	}
	if err := e.Driver.Navigate(ctx, *ws.URL, looptomd.WaitStable); err != nil {
		return "", "", err
	}

	row, err := e.findRowByTitle(ctx, page.Title)
	if err != nil {
		return "", "", err
	}
	if err := e.Driver.Activate(ctx, row); err != nil {
		return "", "", err
	}

	// Activation re-renders the canvas in place.
	html, err := e.Driver.HTML(ctx)
	if err != nil {
		return "", "", err
	}
	location, err := e.Driver.Location(ctx)
	if err != nil {
		location = ""
	}
	return html, location, nil
}

func (e *Exporter) findRowByTitle(ctx context.Context, title string) (looptomd.Element, error) {
	strat := e.strategies()

	var scope looptomd.Element
	for _, selector := range strat.Outline.Entries {
		if el, ok, err := e.Driver.Find(ctx, nil, selector); err == nil && ok {
			scope = el
			break
		}
	}

	for _, selector := range strat.OutlineNodes.Entries {
		rows, err := e.Driver.FindAll(ctx, scope, selector)
		if err != nil || len(rows) == 0 {
			continue
		}
		for _, row := range rows {
			label, err := e.Driver.Label(ctx, row)
			if err != nil {
				continue
			}
			if looptomd.FirstLine(label) == title {
				return row, nil
			}
		}
	}
	return nil, looptomd.Errorf(looptomd.ENOTFOUND, "outline row %q not found for activation", title)
}

func (e *Exporter) pace(ctx context.Context) error {
	if e.Limiter == nil {
		return nil
	}
	return e.Limiter.Wait(ctx)
}

func (e *Exporter) retryDelays() []time.Duration {
	if e.RetryDelays != nil {
		return e.RetryDelays
	}
	return DefaultRetryDelays()
}

func (e *Exporter) strategies() ActivationStrategies {
	s := e.Strategies
	if len(s.OutlineNodes.Entries) == 0 {
		s = ActivationStrategies{
			Outline: looptomd.LocatorStrategy{
				Name: "outline",
				Entries: []string{
					`[data-automation-id="pageTree"]`,
					`[role="tree"]`,
				},
			},
			OutlineNodes: looptomd.LocatorStrategy{
				Name: "outline-nodes",
				Entries: []string{
					`[data-automation-id="pageTreeItem"]`,
					`[role="treeitem"]`,
				},
			},
		}
	}
	return s
}
