package discover

import (
	"context"
	"math"
	"strconv"
	"strings"

	looptomd "github.com/reggroux/loop-to-markdown"
)

// indentUnit is the pixel width assumed per nesting level when depth has to
// be estimated from visual indentation.
const indentUnit = 24.0

// InferDepth computes a node's zero-based nesting depth from heterogeneous
// signals, first applicable wins:
//
//  1. an explicit level attribute on the node itself;
//  2. the same attributes on the nearest tree-item ancestor;
//  3. the count of ancestors representing explicit nesting groups;
//  4. visual indentation (the larger of left padding and left margin)
//     divided by the unit indent.
//
// Explicit structural signals are authoritative when present; indentation is
// last because it is theme- and viewport-dependent. Any extraction failure
// defaults the node to depth 0 so one malformed node cannot abort a pass.
func (d *Discoverer) InferDepth(ctx context.Context, node looptomd.Element) int {
	s := d.strat()

	if level, ok := d.levelFromAttrs(ctx, node, s.LevelAttrs); ok {
		return level
	}

	if ancestor, ok, err := d.Driver.Closest(ctx, node, s.TreeItemAncestor); err == nil && ok {
		if level, ok := d.levelFromAttrs(ctx, ancestor, s.LevelAttrs); ok {
			return level
		}
	}

	if n, err := d.Driver.AncestorCount(ctx, node, s.NestingGroup); err == nil && n > 0 {
		return n
	}

	if level, ok := d.levelFromIndent(ctx, node); ok {
		return level
	}

	return 0
}

// levelFromAttrs reads the first parseable level attribute. Level attributes
// (ARIA and Loop's own) are 1-based; normalize to zero-based and clamp.
func (d *Discoverer) levelFromAttrs(ctx context.Context, el looptomd.Element, attrs []string) (int, bool) {
	for _, name := range attrs {
		value, ok, err := d.Driver.Attribute(ctx, el, name)
		if err != nil || !ok {
			continue
		}
		if level, ok := parseLevel(value); ok {
			return level, true
		}
	}
	return 0, false
}

func (d *Discoverer) levelFromIndent(ctx context.Context, el looptomd.Element) (int, bool) {
	padding, padOK := d.pixels(ctx, el, "padding-left")
	margin, marOK := d.pixels(ctx, el, "margin-left")
	if !padOK && !marOK {
		return 0, false
	}

	indent := math.Max(padding, margin)
	if indent <= 0 {
		return 0, false
	}

	level := int(math.Round(indent / indentUnit))
	if level < 0 {
		level = 0
	}
	return level, true
}

func (d *Discoverer) pixels(ctx context.Context, el looptomd.Element, property string) (float64, bool) {
	value, err := d.Driver.Style(ctx, el, property)
	if err != nil {
		return 0, false
	}
	return parsePixels(value)
}

// parseLevel parses a 1-based level attribute value into a zero-based depth.
func parseLevel(value string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	if n <= 1 {
		return 0, true
	}
	return n - 1, true
}

// parsePixels parses a computed style length such as "48px".
func parsePixels(value string) (float64, bool) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "px"))
	if trimmed == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
