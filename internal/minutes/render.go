package minutes

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// renderer is shared; goldmark.Markdown is safe for concurrent use.
var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderHTML converts a minutes body from markdown to HTML.
func RenderHTML(body string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("render minutes body: %w", err)
	}
	return buf.String(), nil
}
