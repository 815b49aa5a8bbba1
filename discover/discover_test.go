package discover_test

import (
	"context"
	"strings"
	"testing"
	"time"

	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/discover"
	"github.com/reggroux/loop-to-markdown/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://loop.example.com/"

// fakeRow describes one outline row served by the fake UI.
type fakeRow struct {
	id    string
	label string
	level string // aria-level, 1-based; empty = absent
	href  string
}

// fakeUI scripts a minimal two-level UI: a workspace list at the base URL
// and a fully rendered outline per workspace URL.
type fakeUI struct {
	workspaces []fakeRow            // label/href of workspace entries
	outlines   map[string][]fakeRow // workspace URL -> rows
	navErrs    map[string]error
	current    string
}

func (u *fakeUI) driver() *mock.Driver {
	return &mock.Driver{
		NavigateFn: func(ctx context.Context, target string, wait looptomd.WaitCondition) error {
			if err := u.navErrs[target]; err != nil {
				return err
			}
			u.current = target
			return nil
		},
		FindFn: func(ctx context.Context, scope looptomd.Element, selector string) (looptomd.Element, bool, error) {
			if selector == `[data-automation-id="workspaceList"]` && u.current == testBaseURL {
				return "workspace-list", true, nil
			}
			if selector == `[data-automation-id="pageTree"]` && u.outlines[u.current] != nil {
				return "outline", true, nil
			}
			return nil, false, nil
		},
		FindAllFn: func(ctx context.Context, scope looptomd.Element, selector string) ([]looptomd.Element, error) {
			switch {
			case selector == `[data-automation-id="workspaceItem"]` && u.current == testBaseURL:
				els := make([]looptomd.Element, len(u.workspaces))
				for i := range u.workspaces {
					els[i] = &u.workspaces[i]
				}
				return els, nil
			case selector == `[data-automation-id="pageTreeItem"]`:
				rows := u.outlines[u.current]
				els := make([]looptomd.Element, len(rows))
				for i := range rows {
					els[i] = &rows[i]
				}
				return els, nil
			}
			return nil, nil
		},
		AttributeFn: func(ctx context.Context, el looptomd.Element, name string) (string, bool, error) {
			row, ok := el.(*fakeRow)
			if !ok {
				return "", false, nil
			}
			switch name {
			case "href":
				return row.href, row.href != "", nil
			case "aria-level":
				return row.level, row.level != "", nil
			case "data-item-id":
				return row.id, row.id != "", nil
			}
			return "", false, nil
		},
		LabelFn: func(ctx context.Context, el looptomd.Element) (string, error) {
			if row, ok := el.(*fakeRow); ok {
				return row.label, nil
			}
			return "", nil
		},
	}
}

func fastDiscoverer(d looptomd.Driver) *discover.Discoverer {
	return &discover.Discoverer{
		Driver:        d,
		BaseURL:       testBaseURL,
		EntryWait:     10 * time.Millisecond,
		PassBudget:    3,
		CaptureWindow: 20 * time.Millisecond,
		Now:           func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestDiscover_builds_manifest_from_dom(t *testing.T) {
	t.Parallel()

	ui := &fakeUI{
		workspaces: []fakeRow{
			{label: "Team Alpha\n12 pages", href: "/workspaces/alpha"},
			{label: "", href: "/workspaces/anonymous"}, // no label: skipped
			{label: "Team Alpha", href: "/workspaces/alpha-dup"}, // duplicate label: skipped
		},
		outlines: map[string][]fakeRow{
			"https://loop.example.com/workspaces/alpha": {
				{label: "Welcome", level: "1", href: "/p/welcome"},
				{label: "Projects", level: "1", href: "/p/projects"},
				{label: "Roadmap", level: "2", href: "/p/roadmap"},
				{label: "Q3", level: "3"},
				{label: "Archive", level: "1", href: "/p/archive"},
			},
		},
	}

	m, err := fastDiscoverer(ui.driver()).Discover(context.Background(), nil)
	require.NoError(t, err)

	require.Equal(t, 1, m.TotalWorkspaces)
	assert.Equal(t, 5, m.TotalPages)
	assert.Empty(t, m.Warnings)

	ws := m.Workspaces[0]
	assert.Equal(t, "Team Alpha", ws.Title)
	assert.Equal(t, "team-alpha", ws.ID)
	require.NotNil(t, ws.URL)
	assert.Equal(t, "https://loop.example.com/workspaces/alpha", *ws.URL)
	assert.Empty(t, ws.Err)

	byID := ws.PageIndex()
	welcome, projects, roadmap, q3 := byID["welcome"], byID["projects"], byID["roadmap"], byID["q3"]
	require.NotNil(t, welcome)
	require.NotNil(t, projects)
	require.NotNil(t, roadmap)
	require.NotNil(t, q3)

	assert.Nil(t, welcome.ParentID)
	require.NotNil(t, roadmap.ParentID)
	assert.Equal(t, projects.ID, *roadmap.ParentID)
	require.NotNil(t, q3.ParentID)
	assert.Equal(t, roadmap.ID, *q3.ParentID)
	assert.Equal(t, []string{"q3"}, roadmap.ChildIDs)

	require.NotNil(t, welcome.URL)
	assert.Equal(t, "https://loop.example.com/p/welcome", *welcome.URL)
	assert.Nil(t, q3.URL, "rows without a link resolve lazily at export")

	assert.Equal(t, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), m.GeneratedAt)
}

func TestDiscover_empty_input_yields_warning_not_error(t *testing.T) {
	t.Parallel()

	m, err := fastDiscoverer(&mock.Driver{}).Discover(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 0, m.TotalWorkspaces)
	assert.Equal(t, 0, m.TotalPages)
	assert.NotNil(t, m.Workspaces)
	assert.Contains(t, m.Warnings, looptomd.WarnNoWorkspaces)
}

func TestDiscover_partial_failure_isolated_to_one_workspace(t *testing.T) {
	t.Parallel()

	ui := &fakeUI{
		workspaces: []fakeRow{
			{label: "Broken", href: "/workspaces/broken"},
			{label: "Healthy", href: "/workspaces/healthy"},
		},
		outlines: map[string][]fakeRow{
			"https://loop.example.com/workspaces/healthy": {
				{label: "Home", level: "1", href: "/p/home"},
			},
		},
		navErrs: map[string]error{
			"https://loop.example.com/workspaces/broken": looptomd.Errorf(looptomd.EUNAVAILABLE, "navigation timed out"),
		},
	}

	var failed []string
	m, err := fastDiscoverer(ui.driver()).Discover(context.Background(), func(e discover.ProgressEvent) {
		if e.Type == discover.ProgressWorkspaceFailed {
			failed = append(failed, e.Workspace)
		}
	})
	require.NoError(t, err)

	require.Equal(t, 2, m.TotalWorkspaces)
	assert.Equal(t, []string{"Broken"}, failed)

	broken := m.Workspaces[0]
	assert.NotEmpty(t, broken.Err)
	assert.Empty(t, broken.Pages)

	healthy := m.Workspaces[1]
	assert.Empty(t, healthy.Err)
	require.Len(t, healthy.Pages, 1)
	assert.Equal(t, "Home", healthy.Pages[0].Title)
}

func TestDiscover_ids_unique_within_scope(t *testing.T) {
	t.Parallel()

	ui := &fakeUI{
		workspaces: []fakeRow{{label: "Docs", href: "/workspaces/docs"}},
		outlines: map[string][]fakeRow{
			"https://loop.example.com/workspaces/docs": {
				{label: "Notes", level: "1"},
				{label: "Notes", level: "1"},
				{label: "Notes", level: "1"},
			},
		},
	}

	m, err := fastDiscoverer(ui.driver()).Discover(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, m.Workspaces[0].Pages, 3)
	seen := make(map[string]bool)
	for _, p := range m.Workspaces[0].Pages {
		assert.False(t, seen[p.ID], "duplicate id %q", p.ID)
		seen[p.ID] = true
		assert.True(t, strings.HasPrefix(p.ID, "notes"))
	}
}

func TestDiscover_dom_identifier_preferred_for_ids(t *testing.T) {
	t.Parallel()

	ui := &fakeUI{
		workspaces: []fakeRow{{label: "Docs", href: "/workspaces/docs"}},
		outlines: map[string][]fakeRow{
			"https://loop.example.com/workspaces/docs": {
				{id: "item-8842", label: "Welcome", level: "1"},
			},
		},
	}

	m, err := fastDiscoverer(ui.driver()).Discover(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, m.Workspaces[0].Pages, 1)
	assert.Equal(t, "item-8842", m.Workspaces[0].Pages[0].ID)
}

func TestDiscover_network_fallback(t *testing.T) {
	t.Parallel()

	responses := make(chan looptomd.Response, 2)
	responses <- looptomd.Response{
		URL: "https://loop.example.com/api/v1/workspaces",
		Body: map[string]any{
			"value": []any{
				map[string]any{"name": "Ops", "id": "ws-ops", "url": "/workspaces/ops"},
				map[string]any{"name": "Ops"}, // duplicate label: skipped
				map[string]any{"irrelevant": true},
			},
		},
	}
	responses <- looptomd.Response{
		URL:  "https://loop.example.com/api/v1/telemetry",
		Body: map[string]any{"count": 3.0},
	}

	driver := &mock.Driver{
		ObserveResponsesFn: func(ctx context.Context, match func(url string) bool) (<-chan looptomd.Response, func(), error) {
			return responses, func() {}, nil
		},
		NavigateFn: func(ctx context.Context, target string, wait looptomd.WaitCondition) error {
			if target == "https://loop.example.com/workspaces/ops" {
				// The fallback workspace opens but shows no outline.
				return nil
			}
			return nil
		},
	}

	m, err := fastDiscoverer(driver).Discover(context.Background(), nil)
	require.NoError(t, err)

	require.Equal(t, 1, m.TotalWorkspaces)
	ws := m.Workspaces[0]
	assert.Equal(t, "Ops", ws.Title)
	assert.Equal(t, "ws-ops", ws.ID)
	require.NotNil(t, ws.URL)
	assert.Equal(t, "https://loop.example.com/workspaces/ops", *ws.URL)

	// No linked pages anywhere: warn, don't fail.
	assert.Contains(t, m.Warnings, looptomd.WarnNoLinkedPages)
}

func TestDiscover_workspace_without_url_activated_by_label(t *testing.T) {
	t.Parallel()

	ui := &fakeUI{
		workspaces: []fakeRow{{label: "Linkless"}},
		outlines:   map[string][]fakeRow{},
	}
	base := ui.driver()

	var activated bool
	inner := base.ActivateFn
	base.ActivateFn = func(ctx context.Context, el looptomd.Element) error {
		if row, ok := el.(*fakeRow); ok && row.label == "Linkless" {
			activated = true
		}
		if inner != nil {
			return inner(ctx, el)
		}
		return nil
	}

	m, err := fastDiscoverer(base).Discover(context.Background(), nil)
	require.NoError(t, err)

	require.Equal(t, 1, m.TotalWorkspaces)
	assert.True(t, activated, "workspace entry re-located and activated by label")
	assert.Empty(t, m.Workspaces[0].Err)
}
