package services

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer renders markdown for a terminal of the given width.
type MarkdownRenderer interface {
	Render(content string, width int) (string, error)
}

// GlamourRenderer renders with glamour. Style is a glamour standard style
// name; empty picks one from the terminal background.
type GlamourRenderer struct {
	Style string
}

func NewGlamourRenderer(style string) *GlamourRenderer {
	return &GlamourRenderer{Style: style}
}

func (g *GlamourRenderer) Render(content string, width int) (string, error) {
	styleOpt := glamour.WithAutoStyle()
	if g.Style != "" {
		styleOpt = glamour.WithStandardStyle(g.Style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return r.Render(content)
}

// RenderMarkdown renders content, falling back to the raw text on failure.
func RenderMarkdown(content string, width int, renderer MarkdownRenderer) string {
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content, width)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
