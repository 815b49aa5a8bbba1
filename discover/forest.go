package discover

import looptomd "github.com/reggroux/loop-to-markdown"

// ResolveForest assigns ParentID and ChildIDs across a depth-annotated
// sequence of pages in document order, in place. Depths are never mutated
// or renormalized: a first page with depth > 0 simply becomes a root, and
// inconsistent upstream depths yield a forest with multiple roots, which is
// accepted as a best-effort result.
//
// The algorithm is the standard single-pass stack recovery of tree structure
// from an indentation-annotated flat list: pop stack entries at or below the
// current depth, the surviving top (if any) is the parent. O(n) amortized.
func ResolveForest(pages []*looptomd.Page) {
	type frame struct {
		depth int
		page  *looptomd.Page
	}

	var stack []frame
	for _, p := range pages {
		for len(stack) > 0 && stack[len(stack)-1].depth >= p.Depth {
			stack = stack[:len(stack)-1]
		}

		if len(stack) > 0 {
			parent := stack[len(stack)-1].page
			parentID := parent.ID
			p.ParentID = &parentID
			parent.ChildIDs = append(parent.ChildIDs, p.ID)
		} else {
			p.ParentID = nil
		}

		stack = append(stack, frame{depth: p.Depth, page: p})
	}
}
