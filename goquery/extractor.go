// Package goquery implements HTML content extraction using CSS selectors.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	looptomd "github.com/reggroux/loop-to-markdown"
)

// Ensure Extractor implements looptomd.Extractor at compile time.
var _ looptomd.Extractor = (*Extractor)(nil)

// canvasSelectors locate the editable content canvas of a rendered page,
// tried in order from product-specific hooks down to generic document
// structure.
var canvasSelectors = []string{
	`[data-automation-id="canvas"]`,
	`[class*="scriptor"][role="document"]`,
	`[role="document"]`,
	`main`,
	`article`,
}

// titleSelectors locate the page title within the document, tried in order.
var titleSelectors = []string{
	`[data-automation-id="pageTitle"]`,
	`main h1`,
	`h1`,
}

// chromeSelectors match application chrome that must not appear in exported
// content even when it sits inside the canvas element.
var chromeSelectors = []string{
	`nav`,
	`aside`,
	`header[role="banner"]`,
	`[role="toolbar"]`,
	`[role="navigation"]`,
	`[aria-hidden="true"]`,
	`script`,
	`style`,
	`button`,
}

// Extractor extracts the content canvas from rendered page HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses rendered HTML, isolates the content canvas, strips
// application chrome, and resolves relative references against pageURL.
func (e *Extractor) Extract(html string, pageURL string) (*looptomd.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, looptomd.Errorf(looptomd.EINVALID, "failed to parse HTML: %v", err)
	}

	canvas := findCanvas(doc)
	if canvas == nil {
		return nil, looptomd.Errorf(looptomd.ENOTFOUND, "no content canvas found")
	}

	title := findTitle(doc)

	canvas.Find(strings.Join(chromeSelectors, ", ")).Remove()

	if base, err := url.Parse(pageURL); err == nil && base.IsAbs() {
		absolutizeRefs(canvas, base)
	}

	content, err := canvas.Html()
	if err != nil {
		return nil, looptomd.Errorf(looptomd.EINTERNAL, "failed to serialize canvas: %v", err)
	}

	return &looptomd.ExtractResult{
		Title:       title,
		ContentHTML: strings.TrimSpace(content),
	}, nil
}

// findCanvas returns the first canvas selector match that has any text
// content. An empty match usually means the selector hit a structural shell,
// so the cascade keeps going.
func findCanvas(doc *goquery.Document) *goquery.Selection {
	for _, selector := range canvasSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if strings.TrimSpace(sel.Text()) == "" {
			continue
		}
		return sel
	}
	return nil
}

// findTitle returns the page title: the first productive title selector,
// else the document title element.
func findTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		if title := strings.TrimSpace(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// absolutizeRefs resolves relative link and image references within the
// canvas against the page URL. Unparseable references are left untouched.
func absolutizeRefs(canvas *goquery.Selection, base *url.URL) {
	resolve := func(sel *goquery.Selection, attr string) {
		value, exists := sel.Attr(attr)
		if !exists || value == "" || isNonHTTPRef(value) {
			return
		}
		ref, err := url.Parse(value)
		if err != nil || ref.IsAbs() {
			return
		}
		sel.SetAttr(attr, base.ResolveReference(ref).String())
	}

	canvas.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		resolve(sel, "href")
	})
	canvas.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		resolve(sel, "src")
	})
}

// isNonHTTPRef checks if a reference is a non-HTTP scheme that should be
// left alone.
func isNonHTTPRef(ref string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(ref, "javascript:") ||
		strings.HasPrefix(ref, "mailto:") ||
		strings.HasPrefix(ref, "tel:") ||
		strings.HasPrefix(ref, "data:")
}
