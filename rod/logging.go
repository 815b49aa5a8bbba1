package rod

import (
	"context"
	"log/slog"
	"time"

	looptomd "github.com/reggroux/loop-to-markdown"
)

// Ensure LoggingDriver implements looptomd.Driver.
var _ looptomd.Driver = (*LoggingDriver)(nil)

// LoggingDriver wraps a Driver with debug logging of the operations that
// cross the browser boundary.
type LoggingDriver struct {
	next   looptomd.Driver
	logger *slog.Logger
}

// NewLoggingDriver creates a new LoggingDriver.
func NewLoggingDriver(next looptomd.Driver, logger *slog.Logger) *LoggingDriver {
	return &LoggingDriver{next: next, logger: logger}
}

// Navigate logs the target and wait condition and delegates.
func (d *LoggingDriver) Navigate(ctx context.Context, target string, wait looptomd.WaitCondition) (err error) {
	defer func(begin time.Time) {
		d.logger.Info("navigate",
			"target", target,
			"wait", int(wait),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Navigate(ctx, target, wait)
}

// Find logs the selector and hit/miss outcome and delegates.
func (d *LoggingDriver) Find(ctx context.Context, scope looptomd.Element, selector string) (el looptomd.Element, ok bool, err error) {
	defer func() {
		d.logger.Debug("find", "selector", selector, "found", ok, "err", err)
	}()
	return d.next.Find(ctx, scope, selector)
}

// FindAll logs the selector and match count and delegates.
func (d *LoggingDriver) FindAll(ctx context.Context, scope looptomd.Element, selector string) (els []looptomd.Element, err error) {
	defer func() {
		d.logger.Debug("find_all", "selector", selector, "matches", len(els), "err", err)
	}()
	return d.next.FindAll(ctx, scope, selector)
}

// Attribute delegates to the wrapped driver.
func (d *LoggingDriver) Attribute(ctx context.Context, el looptomd.Element, name string) (string, bool, error) {
	return d.next.Attribute(ctx, el, name)
}

// Label delegates to the wrapped driver.
func (d *LoggingDriver) Label(ctx context.Context, el looptomd.Element) (string, error) {
	return d.next.Label(ctx, el)
}

// Activate logs the click and delegates.
func (d *LoggingDriver) Activate(ctx context.Context, el looptomd.Element) (err error) {
	defer func() {
		d.logger.Debug("activate", "err", err)
	}()
	return d.next.Activate(ctx, el)
}

// ScrollToBottom delegates to the wrapped driver.
func (d *LoggingDriver) ScrollToBottom(ctx context.Context, el looptomd.Element) error {
	return d.next.ScrollToBottom(ctx, el)
}

// Closest delegates to the wrapped driver.
func (d *LoggingDriver) Closest(ctx context.Context, el looptomd.Element, selector string) (looptomd.Element, bool, error) {
	return d.next.Closest(ctx, el, selector)
}

// AncestorCount delegates to the wrapped driver.
func (d *LoggingDriver) AncestorCount(ctx context.Context, el looptomd.Element, selector string) (int, error) {
	return d.next.AncestorCount(ctx, el, selector)
}

// Style delegates to the wrapped driver.
func (d *LoggingDriver) Style(ctx context.Context, el looptomd.Element, property string) (string, error) {
	return d.next.Style(ctx, el, property)
}

// ObserveResponses logs the start of a capture and delegates.
func (d *LoggingDriver) ObserveResponses(ctx context.Context, match func(url string) bool) (<-chan looptomd.Response, func(), error) {
	d.logger.Debug("observe_responses")
	return d.next.ObserveResponses(ctx, match)
}

// Location delegates to the wrapped driver.
func (d *LoggingDriver) Location(ctx context.Context) (string, error) {
	return d.next.Location(ctx)
}

// HTML delegates to the wrapped driver.
func (d *LoggingDriver) HTML(ctx context.Context) (string, error) {
	return d.next.HTML(ctx)
}

// Close delegates to the wrapped driver.
func (d *LoggingDriver) Close() error {
	return d.next.Close()
}
