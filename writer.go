package looptomd

import "context"

// PageWriter writes exported pages to storage.
type PageWriter interface {
	// WritePage stores the Markdown rendering of a page. breadcrumb holds
	// the page's ancestor titles (outermost first, ending with the page's
	// own title) and determines its position in the output tree. It
	// returns the path the page was written to, relative to the writer's
	// root.
	WritePage(ctx context.Context, ws *Workspace, page *Page, breadcrumb []string, markdown string) (string, error)
}
