package discover

import (
	"context"
	"sort"
	"time"

	looptomd "github.com/reggroux/loop-to-markdown"
)

// discoverWorkspaces enumerates top-level workspaces from the DOM: resolve
// the workspace list scope via cascade, then item elements within it.
// Unlabeled items are skipped and labels are deduplicated within the pass.
func (d *Discoverer) discoverWorkspaces(ctx context.Context) []*looptomd.Workspace {
	if err := d.Driver.Navigate(ctx, d.BaseURL, looptomd.WaitStable); err != nil {
		// Initial navigation failed; the network fallback gets its own
		// forced reload attempt.
		return nil
	}

	// A missing list scope falls back to probing the whole document.
	scope, _ := d.resolver().First(ctx, nil, d.strat().WorkspaceList)
	items, ok := d.resolver().All(ctx, scope, d.strat().WorkspaceItems)
	if !ok {
		return nil
	}

	ids := newIDAllocator()
	seen := make(map[string]bool)
	var out []*looptomd.Workspace

	for i, item := range items {
		label, err := d.Driver.Label(ctx, item)
		if err != nil {
			// Stale handle; a miss for this one item only.
			continue
		}
		title := looptomd.FirstLine(label)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true

		id := d.domID(ctx, item)
		if id == "" {
			id = looptomd.Slugify(title)
		}

		out = append(out, &looptomd.Workspace{
			ID:    ids.claim(id, i),
			Title: title,
			URL:   d.itemLocation(ctx, item),
		})
	}
	return out
}

// itemLocation reads a workspace entry's navigable reference: an explicit
// link attribute, else nil.
func (d *Discoverer) itemLocation(ctx context.Context, item looptomd.Element) *string {
	if href, ok, err := d.Driver.Attribute(ctx, item, "href"); err == nil && ok && href != "" {
		return d.absolutize(href)
	}
	if link, ok, err := d.Driver.Find(ctx, item, `a[href]`); err == nil && ok {
		if href, ok, err := d.Driver.Attribute(ctx, link, "href"); err == nil && ok && href != "" {
			return d.absolutize(href)
		}
	}
	return nil
}

// Field names recognized by the network-capture fallback. The host API
// changes shapes between deployments; these are the list- and label-bearing
// fields observed so far.
var (
	listFieldNames  = []string{"workspaces", "items", "value", "results", "data"}
	titleFieldNames = []string{"title", "name", "displayName", "label"}
	urlFieldNames   = []string{"url", "webUrl", "href", "link"}
	idFieldNames    = []string{"id", "itemId", "workspaceId"}
)

// workspacesFromNetwork is the fallback discovery path: passively observe
// structured responses during a forced reload and extract candidate entries
// from recognized list-shaped fields. Yields nothing when the traffic offers
// no recognizable signal; that is an expected operating condition.
func (d *Discoverer) workspacesFromNetwork(ctx context.Context) []*looptomd.Workspace {
	ch, stop, err := d.Driver.ObserveResponses(ctx, nil)
	if err != nil {
		return nil
	}
	defer stop()

	// Forced reload with observation active. A navigation failure still
	// leaves whatever responses already arrived worth draining.
	_ = d.Driver.Navigate(ctx, d.BaseURL, looptomd.WaitStable)

	ids := newIDAllocator()
	seen := make(map[string]bool)
	var out []*looptomd.Workspace
	ordinal := 0

	timer := time.NewTimer(d.captureWindow())
	defer timer.Stop()

	for {
		select {
		case resp := <-ch:
			for _, c := range extractCandidates(resp.Body) {
				title := looptomd.FirstLine(c.title)
				if title == "" || seen[title] {
					continue
				}
				seen[title] = true

				id := c.id
				if id == "" {
					id = looptomd.Slugify(title)
				}
				var url *string
				if c.url != "" {
					url = d.absolutize(c.url)
				}
				out = append(out, &looptomd.Workspace{
					ID:    ids.claim(id, ordinal),
					Title: title,
					URL:   url,
				})
				ordinal++
			}
		case <-timer.C:
			return out
		case <-ctx.Done():
			return out
		}
	}
}

// candidate is one potential workspace extracted from a response body.
type candidate struct {
	id    string
	title string
	url   string
}

// extractCandidates walks a decoded JSON body and collects objects found in
// recognized list-shaped fields that carry a label field.
func extractCandidates(body any) []candidate {
	var out []candidate
	walkBody(body, &out, 0)
	return out
}

func walkBody(v any, out *[]candidate, depth int) {
	// Bodies can be arbitrarily deep; cap the walk so a pathological
	// payload cannot stall the pass.
	if depth > 6 {
		return
	}

	switch val := v.(type) {
	case map[string]any:
		for _, field := range listFieldNames {
			list, ok := val[field].([]any)
			if !ok {
				continue
			}
			for _, item := range list {
				obj, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if c, ok := candidateFromObject(obj); ok {
					*out = append(*out, c)
				}
			}
		}

		// Recurse in sorted key order so extraction is deterministic
		// for a fixed set of observed responses.
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkBody(val[k], out, depth+1)
		}

	case []any:
		for _, item := range val {
			walkBody(item, out, depth+1)
		}
	}
}

func candidateFromObject(obj map[string]any) (candidate, bool) {
	var c candidate
	for _, field := range titleFieldNames {
		if s, ok := obj[field].(string); ok && s != "" {
			c.title = s
			break
		}
	}
	if c.title == "" {
		return candidate{}, false
	}
	for _, field := range idFieldNames {
		if s, ok := obj[field].(string); ok && s != "" {
			c.id = s
			break
		}
	}
	for _, field := range urlFieldNames {
		if s, ok := obj[field].(string); ok && s != "" {
			c.url = s
			break
		}
	}
	return c, true
}
