// Package format renders snip descriptions to HTML that is safe to embed in a
// page. Every path ends in the same sanitising policy, whatever the format.
package format

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/sakif/snippet-activity/internal/model"
)

// Renderer converts descriptions to sanitised HTML. It is safe for concurrent use.
type Renderer struct {
	markdown goldmark.Markdown
	policy   *bluemonday.Policy
}

func NewRenderer() *Renderer {
	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render returns desc as HTML. An empty description renders as empty HTML.
func (r *Renderer) Render(desc model.Description) (template.HTML, error) {
	if strings.TrimSpace(desc.Text) == "" {
		return "", nil
	}

	var raw string
	switch desc.Format {
	case model.FormatMarkdown:
		var buf bytes.Buffer
		if err := r.markdown.Convert([]byte(desc.Text), &buf); err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}
		raw = buf.String()
	case model.FormatHTML:
		raw = desc.Text
	case model.FormatMoodle:
		// Auto-formatted text: markup is kept, line breaks become <br>.
		raw = "<p>" + newlinesToBreaks(desc.Text) + "</p>"
	case model.FormatPlain:
		raw = "<p>" + newlinesToBreaks(html.EscapeString(desc.Text)) + "</p>"
	default:
		return "", fmt.Errorf("unknown description format %d", desc.Format)
	}

	return template.HTML(r.policy.Sanitize(raw)), nil
}

func newlinesToBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "<br>\n")
}
