// Package fs implements filesystem storage for exported pages and manifests.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	looptomd "github.com/reggroux/loop-to-markdown"
)

// Ensure TreeWriter implements looptomd.PageWriter at compile time.
var _ looptomd.PageWriter = (*TreeWriter)(nil)

// TreeWriter writes exported pages as a directory tree mirroring the page
// hierarchy, with atomic update semantics. Pages are written to a temporary
// directory, then moved atomically on Commit.
type TreeWriter struct {
	baseDir string
	name    string

	// Now returns the export timestamp written to frontmatter.
	// Defaults to time.Now.
	Now func() time.Time
}

// NewTreeWriter creates a new TreeWriter.
// baseDir is the parent directory, name is the output directory name.
// Files are written to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewTreeWriter(baseDir, name string) *TreeWriter {
	return &TreeWriter{
		baseDir: baseDir,
		name:    name,
	}
}

func (w *TreeWriter) tempDir() string {
	return filepath.Join(w.baseDir, w.name+".tmp")
}

func (w *TreeWriter) finalDir() string {
	return filepath.Join(w.baseDir, w.name)
}

// WritePage stores the Markdown rendering of a page under the workspace's
// directory, at the position its breadcrumb dictates. Ancestors become
// directories; the page itself becomes a Markdown file.
func (w *TreeWriter) WritePage(ctx context.Context, ws *looptomd.Workspace, page *looptomd.Page, breadcrumb []string, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	relPath := w.pagePath(ws, page, breadcrumb)
	fullPath := filepath.Join(w.tempDir(), relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}

	content := w.formatPage(ws, page, markdown)
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return "", err
	}
	return relPath, nil
}

// pagePath maps a breadcrumb onto a relative file path. The final breadcrumb
// element is the page's own title; everything before it becomes directories.
func (w *TreeWriter) pagePath(ws *looptomd.Workspace, page *looptomd.Page, breadcrumb []string) string {
	parts := []string{looptomd.Slugify(ws.Title)}
	if len(breadcrumb) == 0 {
		breadcrumb = []string{page.Title}
	}
	for _, title := range breadcrumb[:len(breadcrumb)-1] {
		parts = append(parts, looptomd.Slugify(title))
	}
	parts = append(parts, looptomd.Slugify(breadcrumb[len(breadcrumb)-1])+".md")
	return filepath.Join(parts...)
}

// formatPage formats a page with YAML frontmatter.
func (w *TreeWriter) formatPage(ws *looptomd.Workspace, page *looptomd.Page, markdown string) string {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: ")
	b.WriteString(page.Title)
	b.WriteString("\nworkspace: ")
	b.WriteString(ws.Title)
	if page.URL != nil && *page.URL != "" {
		b.WriteString("\nsource: ")
		b.WriteString(*page.URL)
	}
	b.WriteString("\nexported: ")
	b.WriteString(now().Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(markdown)
	return b.String()
}

// AssetDir returns the staging directory for downloaded assets. It lives
// inside the temp directory, so assets participate in the same atomic
// commit as the pages referencing them.
func (w *TreeWriter) AssetDir() string {
	return filepath.Join(w.tempDir(), "_assets")
}

// Commit atomically replaces the final directory with the temp directory.
func (w *TreeWriter) Commit() error {
	if err := os.RemoveAll(w.finalDir()); err != nil {
		return err
	}
	return os.Rename(w.tempDir(), w.finalDir())
}

// Abort removes the temp directory, leaving any previous export untouched.
func (w *TreeWriter) Abort() error {
	return os.RemoveAll(w.tempDir())
}
