package handlers

import (
	"bytes"
	"html/template"

	"github.com/fostercare-aficionado/chat/internal/models"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)
}

// renderContent turns message content into HTML. Assistant replies are Markdown; user turns are
// shown verbatim.
func (m Main) renderContent(msg models.Message) template.HTML {
	if msg.Role == models.RoleUser {
		return template.HTML(template.HTMLEscapeString(msg.Content))
	}

	var buf bytes.Buffer
	if err := m.markdown.Convert([]byte(msg.Content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(msg.Content))
	}
	// Raw HTML in the source is dropped by the renderer, so the output is safe to embed.
	return template.HTML(buf.String())
}
