package main

import (
	"fmt"
	"io"

	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/fs"
)

// Run executes the tree command.
func (c *TreeCmd) Run(deps *Dependencies) error {
	m, err := deps.Manifests.ReadManifest(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", looptomd.ErrorMessage(err))
		return err
	}

	if c.OPML {
		if err := fs.WriteOPML(deps.Stdout, m); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", looptomd.ErrorMessage(err))
			return err
		}
		return nil
	}

	for _, ws := range m.Workspaces {
		fmt.Fprintln(deps.Stdout, ws.Title)
		if ws.Err != "" {
			fmt.Fprintf(deps.Stdout, "    (discovery failed: %s)\n", ws.Err)
			continue
		}
		printPages(deps.Stdout, ws)
	}

	fmt.Fprintf(deps.Stdout, "\n%d workspaces, %d pages\n", m.TotalWorkspaces, m.TotalPages)

	return nil
}

// printPages renders a workspace's page forest as an indented outline.
// Children print beneath their parent; roots print at the first level.
func printPages(w io.Writer, ws *looptomd.Workspace) {
	idx := ws.PageIndex()

	var walk func(p *looptomd.Page, depth int)
	walk = func(p *looptomd.Page, depth int) {
		marker := " "
		if p.URL == nil || *p.URL == "" {
			marker = "*"
		}
		fmt.Fprintf(w, "%s%s %s\n", indent(depth), marker, p.Title)
		for _, id := range p.ChildIDs {
			if child, ok := idx[id]; ok {
				walk(child, depth+1)
			}
		}
	}

	for _, p := range ws.Pages {
		if p.ParentID == nil {
			walk(p, 1)
		}
	}
}

func indent(depth int) string {
	s := ""
	for range depth {
		s += "    "
	}
	return s
}
