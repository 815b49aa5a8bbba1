package looptomd

// ExtractResult holds the extracted content from a rendered page.
type ExtractResult struct {
	// Title is the page title.
	Title string

	// ContentHTML is the page canvas as clean HTML. Application chrome
	// (navigation, sidebars, toolbars) has been removed and relative
	// references have been resolved against the page URL.
	ContentHTML string
}

// Extractor extracts the content canvas from rendered page HTML.
type Extractor interface {
	// Extract processes rendered HTML and returns the canvas content.
	// pageURL is used to resolve relative asset and link references.
	Extract(html string, pageURL string) (*ExtractResult, error)
}
