package main

import (
	"fmt"

	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/export"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	m, err := deps.Manifests.ReadManifest(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", looptomd.ErrorMessage(err))
		return err
	}

	progress := func(event export.ProgressEvent) {
		switch event.Type {
		case export.ProgressStarted:
			fmt.Fprintf(deps.Stdout, "  Exporting %d pages\n", event.Total)
		case export.ProgressPageExported:
			fmt.Fprintf(deps.Stdout, "  [%d/%d] %s\n", event.Completed, event.Total, event.Path)
		case export.ProgressPageFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s/%s: %v\n", event.Workspace, event.Page, event.Err)
		case export.ProgressFinished:
			// Summary printed after the tree is committed
		}
	}

	result, err := deps.Exporter.Export(deps.Ctx, m, progress)
	if err != nil {
		if abortErr := deps.Writer.Abort(); abortErr != nil {
			fmt.Fprintf(deps.Stderr, "error discarding partial export: %v\n", abortErr)
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", looptomd.ErrorMessage(err))
		return err
	}

	if err := deps.Writer.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", looptomd.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %d pages (%s), %d unchanged, %d failed\n",
		result.Exported, export.FormatBytes(result.Bytes), result.Skipped, result.Failed)

	return nil
}
