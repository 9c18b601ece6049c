package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownStyle renders without color so descriptions read as plain wrapped text.
const markdownStyle = "notty"

// markdownRenderer renders markdown for the detail pane and recreates the renderer when wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// newMarkdownRenderer constructs an empty renderer; the glamour renderer is built on first use.
func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{}
}

// render converts markdown input into terminal text wrapped at the requested width.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(width, 8)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(markdownStyle),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(rendered, "\n")
}
