package mock

import (
	"context"

	looptomd "github.com/reggroux/loop-to-markdown"
)

var _ looptomd.Driver = (*Driver)(nil)

// Driver is a mock implementation of looptomd.Driver.
//
// Unset lookup functions behave as misses and unset action functions as
// no-ops, so tests only wire the operations they exercise.
type Driver struct {
	NavigateFn         func(ctx context.Context, target string, wait looptomd.WaitCondition) error
	FindFn             func(ctx context.Context, scope looptomd.Element, selector string) (looptomd.Element, bool, error)
	FindAllFn          func(ctx context.Context, scope looptomd.Element, selector string) ([]looptomd.Element, error)
	AttributeFn        func(ctx context.Context, el looptomd.Element, name string) (string, bool, error)
	LabelFn            func(ctx context.Context, el looptomd.Element) (string, error)
	ActivateFn         func(ctx context.Context, el looptomd.Element) error
	ScrollToBottomFn   func(ctx context.Context, el looptomd.Element) error
	ClosestFn          func(ctx context.Context, el looptomd.Element, selector string) (looptomd.Element, bool, error)
	AncestorCountFn    func(ctx context.Context, el looptomd.Element, selector string) (int, error)
	StyleFn            func(ctx context.Context, el looptomd.Element, property string) (string, error)
	ObserveResponsesFn func(ctx context.Context, match func(url string) bool) (<-chan looptomd.Response, func(), error)
	LocationFn         func(ctx context.Context) (string, error)
	HTMLFn             func(ctx context.Context) (string, error)
	CloseFn            func() error
}

func (d *Driver) Navigate(ctx context.Context, target string, wait looptomd.WaitCondition) error {
	if d.NavigateFn == nil {
		return nil
	}
	return d.NavigateFn(ctx, target, wait)
}

func (d *Driver) Find(ctx context.Context, scope looptomd.Element, selector string) (looptomd.Element, bool, error) {
	if d.FindFn == nil {
		return nil, false, nil
	}
	return d.FindFn(ctx, scope, selector)
}

func (d *Driver) FindAll(ctx context.Context, scope looptomd.Element, selector string) ([]looptomd.Element, error) {
	if d.FindAllFn == nil {
		return nil, nil
	}
	return d.FindAllFn(ctx, scope, selector)
}

func (d *Driver) Attribute(ctx context.Context, el looptomd.Element, name string) (string, bool, error) {
	if d.AttributeFn == nil {
		return "", false, nil
	}
	return d.AttributeFn(ctx, el, name)
}

func (d *Driver) Label(ctx context.Context, el looptomd.Element) (string, error) {
	if d.LabelFn == nil {
		return "", nil
	}
	return d.LabelFn(ctx, el)
}

func (d *Driver) Activate(ctx context.Context, el looptomd.Element) error {
	if d.ActivateFn == nil {
		return nil
	}
	return d.ActivateFn(ctx, el)
}

func (d *Driver) ScrollToBottom(ctx context.Context, el looptomd.Element) error {
	if d.ScrollToBottomFn == nil {
		return nil
	}
	return d.ScrollToBottomFn(ctx, el)
}

func (d *Driver) Closest(ctx context.Context, el looptomd.Element, selector string) (looptomd.Element, bool, error) {
	if d.ClosestFn == nil {
		return nil, false, nil
	}
	return d.ClosestFn(ctx, el, selector)
}

func (d *Driver) AncestorCount(ctx context.Context, el looptomd.Element, selector string) (int, error) {
	if d.AncestorCountFn == nil {
		return 0, nil
	}
	return d.AncestorCountFn(ctx, el, selector)
}

func (d *Driver) Style(ctx context.Context, el looptomd.Element, property string) (string, error) {
	if d.StyleFn == nil {
		return "", nil
	}
	return d.StyleFn(ctx, el, property)
}

func (d *Driver) ObserveResponses(ctx context.Context, match func(url string) bool) (<-chan looptomd.Response, func(), error) {
	if d.ObserveResponsesFn == nil {
		ch := make(chan looptomd.Response)
		return ch, func() {}, nil
	}
	return d.ObserveResponsesFn(ctx, match)
}

func (d *Driver) Location(ctx context.Context) (string, error) {
	if d.LocationFn == nil {
		return "", nil
	}
	return d.LocationFn(ctx)
}

func (d *Driver) HTML(ctx context.Context) (string, error) {
	if d.HTMLFn == nil {
		return "", nil
	}
	return d.HTMLFn(ctx)
}

func (d *Driver) Close() error {
	if d.CloseFn == nil {
		return nil
	}
	return d.CloseFn()
}
