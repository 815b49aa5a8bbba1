// Package rod implements the browser driver using Chrome automation.
package rod

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	looptomd "github.com/reggroux/loop-to-markdown"
)

// Ensure Driver implements looptomd.Driver at compile time.
var _ looptomd.Driver = (*Driver)(nil)

// domStableWindow is how long the DOM must stop mutating before a
// WaitStable navigation is considered settled.
const domStableWindow = 300 * time.Millisecond

// Driver is a single browser page session. A Driver is owned by one
// discovery or export pass at a time and its operations execute
// sequentially; it is not safe for concurrent use.
type Driver struct {
	manager *BrowserManager
	page    *rod.Page
}

// NewDriver opens a fresh page in the managed browser. Close must be called
// when the Driver is no longer needed; it closes the page, not the browser.
func NewDriver(bm *BrowserManager) (*Driver, error) {
	page, err := bm.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, looptomd.Errorf(looptomd.EUNAVAILABLE, "opening browser page: %v", err)
	}
	return &Driver{manager: bm, page: page}, nil
}

// Navigate loads the target and blocks until the wait condition holds.
func (d *Driver) Navigate(ctx context.Context, target string, wait looptomd.WaitCondition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	page := d.page.Context(ctx)
	if err := page.Navigate(target); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	if wait == looptomd.WaitStable {
		// SPAs keep rendering long after the load event; wait for the
		// DOM to stop mutating before declaring the page settled.
		if err := page.WaitDOMStable(domStableWindow, 0); err != nil {
			return err
		}
	}

	d.manager.IncrementNavCount()
	return nil
}

// Find returns the first match for selector within scope, or a miss.
// A nil scope searches the whole document.
func (d *Driver) Find(ctx context.Context, scope looptomd.Element, selector string) (looptomd.Element, bool, error) {
	if scope == nil {
		has, el, err := d.page.Context(ctx).Has(selector)
		if err != nil || !has {
			return nil, false, err
		}
		return el, true, nil
	}

	parent, err := asElement(scope)
	if err != nil {
		return nil, false, err
	}
	has, el, err := parent.Context(ctx).Has(selector)
	if err != nil || !has {
		return nil, false, err
	}
	return el, true, nil
}

// FindAll returns all current matches for selector within scope without
// waiting for any to appear. A nil scope searches the whole document.
func (d *Driver) FindAll(ctx context.Context, scope looptomd.Element, selector string) ([]looptomd.Element, error) {
	var els rod.Elements
	var err error
	if scope == nil {
		els, err = d.page.Context(ctx).Elements(selector)
	} else {
		var parent *rod.Element
		parent, err = asElement(scope)
		if err != nil {
			return nil, err
		}
		els, err = parent.Context(ctx).Elements(selector)
	}
	if err != nil {
		return nil, err
	}

	out := make([]looptomd.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out, nil
}

// Attribute reads an attribute value. Absent attributes are a miss, not an
// error.
func (d *Driver) Attribute(ctx context.Context, el looptomd.Element, name string) (string, bool, error) {
	e, err := asElement(el)
	if err != nil {
		return "", false, err
	}
	value, err := e.Context(ctx).Attribute(name)
	if err != nil {
		return "", false, err
	}
	if value == nil {
		return "", false, nil
	}
	return *value, true, nil
}

// Label returns the element's accessible label: aria-label, else title, else
// visible text.
func (d *Driver) Label(ctx context.Context, el looptomd.Element) (string, error) {
	e, err := asElement(el)
	if err != nil {
		return "", err
	}
	e = e.Context(ctx)

	for _, attr := range []string{"aria-label", "title"} {
		value, err := e.Attribute(attr)
		if err != nil {
			return "", err
		}
		if value != nil && strings.TrimSpace(*value) != "" {
			return *value, nil
		}
	}
	return e.Text()
}

// Activate scrolls the element into view and clicks it.
func (d *Driver) Activate(ctx context.Context, el looptomd.Element) error {
	e, err := asElement(el)
	if err != nil {
		return err
	}
	e = e.Context(ctx)
	if err := e.ScrollIntoView(); err != nil {
		return err
	}
	return e.Click(proto.InputMouseButtonLeft, 1)
}

// ScrollToBottom scrolls the element's content to its bottom edge. A nil
// element scrolls the main viewport.
func (d *Driver) ScrollToBottom(ctx context.Context, el looptomd.Element) error {
	if el == nil {
		_, err := d.page.Context(ctx).Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
		return err
	}
	e, err := asElement(el)
	if err != nil {
		return err
	}
	_, err = e.Context(ctx).Eval(`() => { this.scrollTop = this.scrollHeight }`)
	return err
}

// Closest returns the nearest ancestor (or self) matching selector, or a
// miss when no ancestor matches.
func (d *Driver) Closest(ctx context.Context, el looptomd.Element, selector string) (looptomd.Element, bool, error) {
	e, err := asElement(el)
	if err != nil {
		return nil, false, err
	}
	match, err := e.Context(ctx).ElementByJS(rod.Eval(`s => this.closest(s)`, selector))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, false, err
		}
		// A null closest() result surfaces as an eval error; treat any
		// non-context failure as a miss.
		return nil, false, nil
	}
	return match, true, nil
}

// AncestorCount counts ancestors of el matching selector.
func (d *Driver) AncestorCount(ctx context.Context, el looptomd.Element, selector string) (int, error) {
	e, err := asElement(el)
	if err != nil {
		return 0, err
	}
	res, err := e.Context(ctx).Eval(`s => {
		let n = 0
		for (let p = this.parentElement; p; p = p.parentElement) {
			if (p.matches(s)) n++
		}
		return n
	}`, selector)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

// Style returns the computed value of a CSS property.
func (d *Driver) Style(ctx context.Context, el looptomd.Element, property string) (string, error) {
	e, err := asElement(el)
	if err != nil {
		return "", err
	}
	res, err := e.Context(ctx).Eval(`p => getComputedStyle(this).getPropertyValue(p)`, property)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// ObserveResponses starts capturing JSON response bodies for requests whose
// URL satisfies match (nil matches everything). The returned stop function
// ends the capture and must be called.
func (d *Driver) ObserveResponses(ctx context.Context, match func(url string) bool) (<-chan looptomd.Response, func(), error) {
	if err := (proto.NetworkEnable{}).Call(d.page); err != nil {
		return nil, nil, err
	}

	obsCtx, cancel := context.WithCancel(ctx)
	ch := make(chan looptomd.Response, 32)

	go d.page.Context(obsCtx).EachEvent(func(e *proto.NetworkResponseReceived) {
		if !strings.Contains(e.Response.MIMEType, "json") {
			return
		}
		if match != nil && !match(e.Response.URL) {
			return
		}

		body, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(d.page)
		if err != nil {
			return
		}
		var decoded any
		if err := json.Unmarshal([]byte(body.Body), &decoded); err != nil {
			return
		}

		select {
		case ch <- looptomd.Response{URL: e.Response.URL, Body: decoded}:
		default:
			// Slow consumer; drop rather than stall the event loop.
		}
	})()

	stop := func() {
		cancel()
		_ = proto.NetworkDisable{}.Call(d.page)
	}
	return ch, stop, nil
}

// Location returns the page's current URL.
func (d *Driver) Location(ctx context.Context) (string, error) {
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// HTML returns the page's rendered HTML.
func (d *Driver) HTML(ctx context.Context) (string, error) {
	return d.page.Context(ctx).HTML()
}

// Close closes the page session.
func (d *Driver) Close() error {
	return d.page.Close()
}

// asElement unwraps an opaque element handle back into a rod element.
func asElement(el looptomd.Element) (*rod.Element, error) {
	e, ok := el.(*rod.Element)
	if !ok || e == nil {
		return nil, looptomd.Errorf(looptomd.EINTERNAL, "element handle is not a browser element")
	}
	return e, nil
}
