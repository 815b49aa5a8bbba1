package looptomd

// Workspace is one discovered top-level container holding an outline of
// pages. Workspaces and their pages are created once per discovery pass and
// are immutable value objects thereafter; no live element handle survives
// the pass that created them.
type Workspace struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	URL   *string `json:"url"`
	Pages []*Page `json:"pages"`

	// Err records a workspace-level discovery failure. The workspace is
	// still part of the manifest with an empty page list.
	Err string `json:"error,omitempty"`
}

// Validate returns an error if the workspace contains invalid fields.
func (w *Workspace) Validate() error {
	if w.ID == "" {
		return Errorf(EINVALID, "workspace ID required")
	}
	if w.Title == "" {
		return Errorf(EINVALID, "workspace title required")
	}
	return nil
}

// Page is one entry in a workspace's content outline. The set of pages plus
// their ParentID/ChildIDs references forms a forest: no cycles, each child
// points back at its holder, and a child's depth is strictly greater than
// its parent's.
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// URL is the page's navigable reference. Nil when the UI exposed no
	// static link; such pages are resolved lazily by activation during
	// export.
	URL *string `json:"url"`

	// Depth is the zero-based nesting level within the outline.
	Depth int `json:"depth"`

	ParentID *string  `json:"parentId"`
	ChildIDs []string `json:"childIds"`
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.ID == "" {
		return Errorf(EINVALID, "page ID required")
	}
	if p.Title == "" {
		return Errorf(EINVALID, "page title required")
	}
	if p.Depth < 0 {
		return Errorf(EINVALID, "page depth must be non-negative")
	}
	return nil
}

// PageIndex returns a lookup of the workspace's pages by ID.
func (w *Workspace) PageIndex() map[string]*Page {
	idx := make(map[string]*Page, len(w.Pages))
	for _, p := range w.Pages {
		idx[p.ID] = p
	}
	return idx
}

// Breadcrumb returns the titles of the page's ancestors, outermost first,
// ending with the page's own title. Broken parent references terminate the
// walk rather than failing.
func (w *Workspace) Breadcrumb(p *Page) []string {
	idx := w.PageIndex()

	var titles []string
	for cur := p; cur != nil; {
		titles = append(titles, cur.Title)
		if cur.ParentID == nil {
			break
		}
		parent, ok := idx[*cur.ParentID]
		if !ok || parent == cur {
			break
		}
		cur = parent
	}

	// Reverse into outermost-first order.
	for i, j := 0, len(titles)-1; i < j; i, j = i+1, j-1 {
		titles[i], titles[j] = titles[j], titles[i]
	}
	return titles
}
