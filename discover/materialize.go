package discover

import (
	"context"

	looptomd "github.com/reggroux/loop-to-markdown"
)

// DefaultPassBudget bounds how many expand/scroll passes materialization may
// spend on one outline.
const DefaultPassBudget = 12

// Materialize forces a virtualized outline to fully render and returns the
// visible node elements. It is a fixed-point search over an externally
// rendered list: each pass expands collapsed rows, re-counts the rendered
// nodes, and scrolls to trigger lazy rendering until the count is positive
// and stable. A stable count of zero is not convergence; it means the
// outline never rendered, and retrying is the only useful move left.
//
// If the pass budget runs out before convergence, whatever is currently
// visible is returned; partial results beat none.
func (d *Discoverer) Materialize(ctx context.Context, scope looptomd.Element) []looptomd.Element {
	var nodes []looptomd.Element
	prev := -1

	for pass := 0; pass < d.passBudget(); pass++ {
		if ctx.Err() != nil {
			break
		}

		d.expandCollapsed(ctx, scope)

		nodes, _ = d.resolver().All(ctx, scope, d.strat().OutlineNodes)
		count := len(nodes)
		if count > 0 && count == prev {
			return nodes
		}
		prev = count

		d.scrollOutline(ctx, scope)
	}

	return nodes
}

// expandCollapsed activates the expand control of every currently collapsed
// row. The expansion flag is inspected rather than trusted to a selector,
// since a flag-carrying selector also matches rows that are already open.
func (d *Discoverer) expandCollapsed(ctx context.Context, scope looptomd.Element) {
	rows, ok := d.resolver().All(ctx, scope, d.strat().ExpandableNodes)
	if !ok {
		return
	}

	for _, row := range rows {
		value, present, err := d.Driver.Attribute(ctx, row, d.strat().ExpandedAttr)
		if err != nil || !present || value != "false" {
			// Already expanded, flagless, or stale; skip this one row.
			continue
		}
		d.expandRow(ctx, row)
	}
}

// expandRow tries the row's inner expand control first and falls back to
// activating the row itself.
func (d *Discoverer) expandRow(ctx context.Context, row looptomd.Element) {
	if control, ok := d.resolver().First(ctx, row, d.strat().ExpandControls); ok {
		if err := d.Driver.Activate(ctx, control); err == nil {
			return
		}
	}
	_ = d.Driver.Activate(ctx, row)
}

// scrollOutline scrolls the outline's scroll container to the bottom to
// trigger lazy rendering, falling back to a viewport scroll.
func (d *Discoverer) scrollOutline(ctx context.Context, scope looptomd.Element) {
	if container, ok := d.resolver().First(ctx, scope, d.strat().ScrollContainer); ok {
		if err := d.Driver.ScrollToBottom(ctx, container); err == nil {
			return
		}
	}
	_ = d.Driver.ScrollToBottom(ctx, nil)
}
