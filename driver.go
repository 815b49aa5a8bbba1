package looptomd

import "context"

// Element is an opaque handle to a UI element resolved by a Driver.
// Handles go stale when the page navigates or re-renders; they must be
// re-resolved rather than retained across those boundaries.
type Element any

// WaitCondition controls how long Navigate blocks before returning control.
type WaitCondition int

// Wait conditions for Navigate.
const (
	// WaitLoad waits for the document load event.
	WaitLoad WaitCondition = iota

	// WaitStable additionally waits for the DOM to stop mutating, which is
	// what SPA frameworks need before their content is observable.
	WaitStable
)

// Response is a structured network response observed by the driver.
type Response struct {
	// URL the response was served from.
	URL string

	// Body is the decoded JSON body. Non-JSON responses are never reported.
	Body any
}

// Driver is the capability contract for a browser page session. It is the
// only component that knows how to talk to the live UI; everything above it
// works in terms of opaque elements and selector expressions.
//
// All operations are bounded by their context; a deadline expiry during a
// lookup is reported as a miss, not an error. A Driver owns exactly one
// logical page session and is not safe for concurrent use.
type Driver interface {
	// Navigate loads target and blocks until the wait condition holds.
	Navigate(ctx context.Context, target string, wait WaitCondition) error

	// Find returns the first element matching selector under scope.
	// A nil scope means the whole document. A normal empty result is
	// (nil, false, nil), never an error.
	Find(ctx context.Context, scope Element, selector string) (Element, bool, error)

	// FindAll returns all elements currently matching selector under scope.
	// An empty result is ([], nil).
	FindAll(ctx context.Context, scope Element, selector string) ([]Element, error)

	// Attribute reads a DOM attribute. The bool reports presence.
	Attribute(ctx context.Context, el Element, name string) (string, bool, error)

	// Label returns the element's display label, preferring an explicit
	// accessible name and falling back to visible text.
	Label(ctx context.Context, el Element) (string, error)

	// Activate performs a click-equivalent action on the element.
	Activate(ctx context.Context, el Element) error

	// ScrollToBottom scrolls el to its bottom. A nil el scrolls the
	// viewport instead.
	ScrollToBottom(ctx context.Context, el Element) error

	// Closest returns the nearest ancestor of el (or el itself) matching
	// selector. A normal empty result is (nil, false, nil).
	Closest(ctx context.Context, el Element, selector string) (Element, bool, error)

	// AncestorCount counts ancestors of el matching selector.
	AncestorCount(ctx context.Context, el Element, selector string) (int, error)

	// Style returns the computed value of a CSS property on el.
	Style(ctx context.Context, el Element, property string) (string, error)

	// ObserveResponses starts passively observing JSON network responses
	// whose URL satisfies match (nil matches everything). The returned stop
	// function ends the observation; the channel is never closed and must
	// be drained with a timeout by the caller.
	ObserveResponses(ctx context.Context, match func(url string) bool) (<-chan Response, func(), error)

	// Location returns the current page URL.
	Location(ctx context.Context) (string, error)

	// HTML returns the current rendered document HTML.
	HTML(ctx context.Context) (string, error)

	// Close releases the underlying browser resources.
	Close() error
}
