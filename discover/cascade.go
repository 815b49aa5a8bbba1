package discover

import (
	"context"
	"time"

	looptomd "github.com/reggroux/loop-to-markdown"
)

// DefaultEntryWait bounds how long one strategy entry may wait for a match
// before the cascade advances to the next entry.
const DefaultEntryWait = 2 * time.Second

// Resolver performs cascade resolution: it tries a strategy's selector
// entries in priority order against a scope and commits to the first entry
// that yields a non-empty result. Results are never merged across entries.
//
// Resolution is a read-only probe. A miss (including a driver error or a
// per-entry wait expiring) is a value, not an error, so an unstable DOM
// degrades lookups instead of aborting them.
type Resolver struct {
	Driver looptomd.Driver

	// EntryWait bounds each strategy entry's lookup.
	// Defaults to DefaultEntryWait.
	EntryWait time.Duration
}

// First resolves the strategy to a single element: the first element matched
// by the first productive entry.
func (r *Resolver) First(ctx context.Context, scope looptomd.Element, strategy looptomd.LocatorStrategy) (looptomd.Element, bool) {
	for _, selector := range strategy.Entries {
		if ctx.Err() != nil {
			return nil, false
		}

		entryCtx, cancel := context.WithTimeout(ctx, r.entryWait())
		el, ok, err := r.Driver.Find(entryCtx, scope, selector)
		cancel()
		if err != nil || !ok {
			continue
		}
		return el, true
	}
	return nil, false
}

// All resolves the strategy to a result set: the full match set of the first
// productive entry.
func (r *Resolver) All(ctx context.Context, scope looptomd.Element, strategy looptomd.LocatorStrategy) ([]looptomd.Element, bool) {
	for _, selector := range strategy.Entries {
		if ctx.Err() != nil {
			return nil, false
		}

		entryCtx, cancel := context.WithTimeout(ctx, r.entryWait())
		els, err := r.Driver.FindAll(entryCtx, scope, selector)
		cancel()
		if err != nil || len(els) == 0 {
			continue
		}
		return els, true
	}
	return nil, false
}

func (r *Resolver) entryWait() time.Duration {
	if r.EntryWait > 0 {
		return r.EntryWait
	}
	return DefaultEntryWait
}
