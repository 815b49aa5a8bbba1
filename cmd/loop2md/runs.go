package main

import (
	"fmt"
	"time"

	looptomd "github.com/reggroux/loop-to-markdown"
)

// Run executes the runs command.
func (c *RunsCmd) Run(deps *Dependencies) error {
	runs, err := deps.Runs.FindRuns(deps.Ctx, c.Limit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", looptomd.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs found. Use 'loop2md export' to start one.")
		return nil
	}

	for _, r := range runs {
		status := "in progress"
		if r.FinishedAt != nil {
			status = fmt.Sprintf("%d exported, %d skipped, %d failed",
				r.Exported, r.Skipped, r.Failed)
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n",
			r.ID, r.StartedAt.Format(time.RFC3339), status)
	}

	return nil
}
