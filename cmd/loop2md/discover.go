package main

import (
	"fmt"

	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/discover"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	progress := func(event discover.ProgressEvent) {
		switch event.Type {
		case discover.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Found %d workspaces\n", event.Total)
		case discover.ProgressWorkspaceDone:
			fmt.Fprintf(deps.Stdout, "  %s: %d pages\n", event.Workspace, event.Pages)
		case discover.ProgressWorkspaceFailed:
			fmt.Fprintf(deps.Stderr, "  skip workspace %s: %v\n", event.Workspace, event.Err)
		case discover.ProgressFinished:
			// Summary printed after the manifest is stored
		}
	}

	m, err := deps.Discoverer.Discover(deps.Ctx, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", looptomd.ErrorMessage(err))
		return err
	}

	if err := deps.Manifests.WriteManifest(deps.Ctx, m); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", looptomd.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Discovered %d workspaces, %d pages (%d linked)\n",
		m.TotalWorkspaces, m.TotalPages, m.LinkedPages())
	for _, w := range m.Warnings {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", w)
	}

	return nil
}
