// Package htmltomarkdown converts HTML content to Markdown.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	looptomd "github.com/reggroux/loop-to-markdown"
)

// Ensure Converter implements looptomd.Converter at compile time.
var _ looptomd.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// excessBlankLines collapses runs of blank lines left behind by stripped
// wrapper elements. Collaborative editors nest content in deep div chains
// that convert to nothing but whitespace.
var excessBlankLines = regexp.MustCompile(`\n{3,}`)

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", looptomd.Errorf(looptomd.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	result = excessBlankLines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result) + "\n", nil
}
