package goquery_test

import (
	"testing"

	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_ProductCanvasPreferred(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html>
<html>
<head><title>Doc Title</title></head>
<body>
<main>
	<h1>Roadmap</h1>
	<div data-automation-id="canvas">
		<p>Q3 priorities</p>
	</div>
</main>
</body>
</html>`

	result, err := goquery.NewExtractor().Extract(html, "https://loop.example.com/p/roadmap")
	require.NoError(t, err)

	assert.Equal(t, "Roadmap", result.Title)
	assert.Contains(t, result.ContentHTML, "Q3 priorities")
	assert.NotContains(t, result.ContentHTML, "<h1>", "canvas excludes content outside it")
}

func TestExtractor_FallsBackToGenericStructure(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<article><p>Generic article body</p></article>
</body></html>`

	result, err := goquery.NewExtractor().Extract(html, "https://loop.example.com/p/x")
	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "Generic article body")
}

func TestExtractor_SkipsEmptyCanvasMatches(t *testing.T) {
	t.Parallel()

	// The product selector matches a structural shell with no text; the
	// cascade must keep going to the populated article.
	html := `<html><body>
<div data-automation-id="canvas"><div class="placeholder"></div></div>
<article><p>Real content</p></article>
</body></html>`

	result, err := goquery.NewExtractor().Extract(html, "https://loop.example.com/p/x")
	require.NoError(t, err)
	assert.Contains(t, result.ContentHTML, "Real content")
}

func TestExtractor_RemovesChrome(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<main>
	<nav><a href="/other">Other page</a></nav>
	<div role="toolbar"><button>Share</button></div>
	<p>Body text</p>
	<div aria-hidden="true">offscreen helper</div>
	<script>trackView()</script>
</main>
</body></html>`

	result, err := goquery.NewExtractor().Extract(html, "https://loop.example.com/p/x")
	require.NoError(t, err)

	assert.Contains(t, result.ContentHTML, "Body text")
	assert.NotContains(t, result.ContentHTML, "Other page")
	assert.NotContains(t, result.ContentHTML, "Share")
	assert.NotContains(t, result.ContentHTML, "offscreen helper")
	assert.NotContains(t, result.ContentHTML, "trackView")
}

func TestExtractor_AbsolutizesRelativeRefs(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<main>
	<p><a href="/p/welcome">Welcome</a></p>
	<p><a href="https://other.example.com/x">External</a></p>
	<p><a href="mailto:team@example.com">Mail</a></p>
	<img src="../assets/diagram.png">
</main>
</body></html>`

	result, err := goquery.NewExtractor().Extract(html, "https://loop.example.com/ws/alpha/p/roadmap")
	require.NoError(t, err)

	assert.Contains(t, result.ContentHTML, `href="https://loop.example.com/p/welcome"`)
	assert.Contains(t, result.ContentHTML, `href="https://other.example.com/x"`)
	assert.Contains(t, result.ContentHTML, `href="mailto:team@example.com"`)
	assert.Contains(t, result.ContentHTML, `src="https://loop.example.com/ws/alpha/assets/diagram.png"`)
}

func TestExtractor_TitleFallsBackToDocumentTitle(t *testing.T) {
	t.Parallel()

	html := `<html><head><title>Fallback Title</title></head><body>
<article><p>text</p></article>
</body></html>`

	result, err := goquery.NewExtractor().Extract(html, "https://loop.example.com/p/x")
	require.NoError(t, err)
	assert.Equal(t, "Fallback Title", result.Title)
}

func TestExtractor_NoCanvasIsNotFound(t *testing.T) {
	t.Parallel()

	_, err := goquery.NewExtractor().Extract(`<html><body><div></div></body></html>`, "https://loop.example.com/p/x")
	require.Error(t, err)
	assert.Equal(t, looptomd.ENOTFOUND, looptomd.ErrorCode(err))
}
