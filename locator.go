package looptomd

// LocatorStrategy is an ordered list of selector expressions for locating a
// kind of UI element, most specific first. Cascade resolution tries each
// entry in order and commits to the first that yields a non-empty result;
// results are never merged across entries, since different entries can match
// structurally incompatible DOM shapes.
//
// A LocatorStrategy is a value and must not be mutated after construction.
type LocatorStrategy struct {
	// Name identifies the strategy in logs and diagnostics.
	Name string

	// Entries are selector expressions in priority order.
	Entries []string
}

// IsZero reports whether the strategy has no entries.
func (s LocatorStrategy) IsZero() bool {
	return len(s.Entries) == 0
}
