package web

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// journalMarkdown renders journal documents after HTML-to-Markdown
// conversion. Raw HTML left in the source is dropped, not passed through.
var journalMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote, emoji.Emoji),
	goldmark.WithRendererOptions(html.WithXHTML()),
)

func renderMarkdownHTML(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := journalMarkdown.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(buf.String())
}
