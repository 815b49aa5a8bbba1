package discover

import looptomd "github.com/reggroux/loop-to-markdown"

// Strategies bundles the locator strategies the discovery engine needs.
// All "which selector works today" knowledge lives here; the rest of the
// engine is selector-agnostic.
type Strategies struct {
	// WorkspaceList locates the container listing top-level workspaces.
	WorkspaceList looptomd.LocatorStrategy

	// WorkspaceItems locates individual workspace entries within the list.
	WorkspaceItems looptomd.LocatorStrategy

	// Outline locates the page tree region of an open workspace.
	Outline looptomd.LocatorStrategy

	// OutlineNodes locates the currently rendered page rows of an outline.
	OutlineNodes looptomd.LocatorStrategy

	// ExpandableNodes locates rows that carry an expansion flag. A match
	// is not enough on its own: the flag's value decides whether the row
	// is actually collapsed.
	ExpandableNodes looptomd.LocatorStrategy

	// ExpandControls locates the expand toggle within a row.
	ExpandControls looptomd.LocatorStrategy

	// ScrollContainer locates the outline's scrollable region.
	ScrollContainer looptomd.LocatorStrategy

	// NodeLink locates the navigable link within a page row.
	NodeLink looptomd.LocatorStrategy

	// ExpandedAttr is the attribute holding the row expansion flag.
	ExpandedAttr string

	// LevelAttrs are the attributes checked for an explicit nesting level,
	// in priority order.
	LevelAttrs []string

	// TreeItemAncestor matches the structural ancestor representing a
	// tree item, for level attributes hung above the row itself.
	TreeItemAncestor string

	// NestingGroup matches ancestors that represent one explicit nesting
	// level each.
	NestingGroup string

	// IDAttrs are the attributes checked for a stable DOM identifier,
	// in priority order.
	IDAttrs []string
}

// DefaultStrategies returns locator strategies tuned for Loop-style
// workspace UIs, each cascading from product-specific automation hooks down
// to generic ARIA structure. The most generic entries can match unrelated
// elements; list order is the only ranking (a committed-to limitation).
func DefaultStrategies() Strategies {
	return Strategies{
		WorkspaceList: looptomd.LocatorStrategy{
			Name: "workspace-list",
			Entries: []string{
				`[data-automation-id="workspaceList"]`,
				`nav [role="list"]`,
				`aside nav`,
				`nav`,
			},
		},
		WorkspaceItems: looptomd.LocatorStrategy{
			Name: "workspace-items",
			Entries: []string{
				`[data-automation-id="workspaceItem"]`,
				`[role="listitem"] a[href]`,
				`a[href*="/workspace"]`,
				`a[href]`,
			},
		},
		Outline: looptomd.LocatorStrategy{
			Name: "outline",
			Entries: []string{
				`[data-automation-id="pageTree"]`,
				`[role="tree"]`,
				`aside [role="navigation"]`,
			},
		},
		OutlineNodes: looptomd.LocatorStrategy{
			Name: "outline-nodes",
			Entries: []string{
				`[data-automation-id="pageTreeItem"]`,
				`[role="treeitem"]`,
				`li[data-depth]`,
			},
		},
		ExpandableNodes: looptomd.LocatorStrategy{
			Name: "expandable-nodes",
			Entries: []string{
				`[data-automation-id="pageTreeItem"][aria-expanded]`,
				`[role="treeitem"][aria-expanded]`,
				`li[aria-expanded]`,
			},
		},
		ExpandControls: looptomd.LocatorStrategy{
			Name: "expand-controls",
			Entries: []string{
				`[data-automation-id="expandButton"]`,
				`button[aria-label*="xpand"]`,
				`button`,
				`[role="button"]`,
			},
		},
		ScrollContainer: looptomd.LocatorStrategy{
			Name: "scroll-container",
			Entries: []string{
				`[data-automation-id="pageTreeScroll"]`,
				`[role="tree"]`,
				`[data-is-scrollable="true"]`,
				`main`,
			},
		},
		NodeLink: looptomd.LocatorStrategy{
			Name: "node-link",
			Entries: []string{
				`a[data-automation-id="pageLink"]`,
				`a[href]`,
			},
		},
		ExpandedAttr:     "aria-expanded",
		LevelAttrs:       []string{"aria-level", "data-level", "data-indentation-level"},
		TreeItemAncestor: `[role="treeitem"]`,
		NestingGroup:     `[role="group"]`,
		IDAttrs:          []string{"data-item-id", "data-id", "id"},
	}
}
