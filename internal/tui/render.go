package tui

import (
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/hylla/vitui/internal/session"
)

var (
	mutedColor  = lipgloss.Color("241")
	dimColor    = lipgloss.Color("239")
	accentColor = lipgloss.Color("42")
	activeColor = lipgloss.Color("220")
	errorColor  = lipgloss.Color("196")

	boldStyle     = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(accentColor)
	chipStyle     = lipgloss.NewStyle().Background(lipgloss.Color("220")).Foreground(lipgloss.Color("16"))
	statusStyle   = lipgloss.NewStyle().Foreground(dimColor)
	errTextStyle  = lipgloss.NewStyle().Foreground(errorColor)
	helpStyle     = lipgloss.NewStyle().Foreground(mutedColor)
)

// renderer draws a layoutPlan. It owns the caches that make drawing cheap.
type renderer struct {
	help     help.Model
	markdown *markdownRenderer
}

// newRenderer constructs a renderer with a compact help legend.
func newRenderer() *renderer {
	h := help.New()
	h.ShowAll = false
	return &renderer{help: h, markdown: newMarkdownRenderer()}
}

// render draws the full frame for plan.
func (r *renderer) render(plan layoutPlan, snap session.Snapshot) string {
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		r.renderList(plan.list),
		r.renderDetail(plan.detail),
	)
	body = fitLines(body, plan.bodyHeight)
	frame := body + "\n" + r.renderFooter(plan, snap)

	var overlays []overlay
	if plan.errorBox != nil {
		overlays = append(overlays, overlay{
			content: renderErrorBox(*plan.errorBox),
			x:       plan.errorBox.x,
			y:       plan.errorBox.y,
		})
	}
	if plan.popup != nil {
		overlays = append(overlays, overlay{
			content: renderPopup(*plan.popup),
			x:       plan.popup.x,
			y:       plan.popup.y,
		})
	}
	return overlayOnContent(frame, plan.width, plan.height, overlays...)
}

func (r *renderer) renderList(pane listPane) string {
	inner := max(0, pane.width-2)
	var lines []string
	if pane.empty {
		lines = append(lines, emptyListText)
	}
	for _, row := range pane.rows {
		prefix := "   "
		if row.selected {
			prefix = ">> "
		}
		text := row.title
		if row.done {
			text = doneStyle.Render("DONE ") + text
		}
		line := truncate(prefix+text, inner)
		if row.selected {
			line = selectedStyle.Render(ansi.Strip(line))
		}
		lines = append(lines, line)
	}
	return titledBox(pane.title, lines, pane.width, pane.height, lipgloss.NewStyle())
}

func (r *renderer) renderDetail(pane detailPane) string {
	inner := max(0, pane.width-2)
	if pane.empty {
		return titledBox(detailPaneTitle, hardWrap(emptyDetailText, inner), pane.width, pane.height, lipgloss.NewStyle())
	}
	lines := []string{
		boldStyle.Render("Due Date: ") + pane.due,
		boldStyle.Render("Priority: ") + pane.priority,
		boldStyle.Render("Labels: "),
	}
	if len(pane.labels) == 0 {
		lines = append(lines, "No labels")
	} else {
		chips := make([]string, 0, len(pane.labels))
		for _, label := range pane.labels {
			chips = append(chips, chipStyle.Render(" "+label+" "))
		}
		lines = append(lines, strings.Join(chips, " "))
	}
	lines = append(lines, boldStyle.Render("Description: "))
	if !pane.hasDesc {
		lines = append(lines, "No description")
	} else {
		rendered := r.markdown.render(pane.description, inner)
		lines = append(lines, strings.Split(rendered, "\n")...)
	}
	return titledBox(detailPaneTitle, lines, pane.width, pane.height, lipgloss.NewStyle())
}

func (r *renderer) renderFooter(plan layoutPlan, snap session.Snapshot) string {
	helpBubble := r.help
	helpBubble.SetWidth(max(0, plan.width-2))
	legend := helpStyle.Render(helpBubble.View(plan.legend))

	status := describePage(snap.Page, snap.AtEnd)
	if plan.status != "" {
		style := statusStyle
		if plan.statusIsErr {
			style = errTextStyle
		}
		status = style.Render(plan.status) + statusStyle.Render(" • "+status)
	} else {
		status = statusStyle.Render(status)
	}
	return truncate(legend, plan.width) + "\n" + truncate(status, plan.width)
}

func renderErrorBox(box errorBoxPlan) string {
	lines := hardWrap(box.text, max(0, box.width-2))
	for i, line := range lines {
		pad := max(0, box.width-2-ansi.StringWidth(line))
		lines[i] = strings.Repeat(" ", pad/2) + line
	}
	return titledBox(errorBoxTitle, lines, box.width, box.height, lipgloss.NewStyle().Foreground(errorColor))
}

func renderPopup(p popupPlan) string {
	fieldW := p.width - 2
	borderFor := func(field session.Field) lipgloss.Style {
		if p.active == field {
			return lipgloss.NewStyle().Foreground(activeColor)
		}
		return lipgloss.NewStyle()
	}
	lines := []string{}
	lines = append(lines, strings.Split(titledBox(titleFieldLabel, p.titleLines, fieldW, p.titleRows+2, borderFor(session.FieldTitle)), "\n")...)
	lines = append(lines, strings.Split(titledBox(descriptionLabel, p.descLines, fieldW, p.descRows+2, borderFor(session.FieldDescription)), "\n")...)
	if p.errorLine != "" {
		lines = append(lines, errTextStyle.Render(truncate(p.errorLine, fieldW)))
	}
	return titledBox(p.headingTitle, lines, p.width, p.height, lipgloss.NewStyle().Foreground(accentColor))
}

// titledBox draws a rounded box of exactly width x height cells with title set into the top border.
func titledBox(title string, lines []string, width, height int, border lipgloss.Style) string {
	if width < 2 || height < 2 {
		return fitLines(strings.Join(lines, "\n"), max(0, height))
	}
	inner := width - 2
	top := "─"
	if title != "" && inner > 2 {
		top += truncate(title, inner-2)
	}
	top += strings.Repeat("─", max(0, inner-ansi.StringWidth(top)))

	out := make([]string, 0, height)
	out = append(out, border.Render("╭"+top+"╮"))
	for i := 0; i < height-2; i++ {
		line := ""
		if i < len(lines) {
			line = truncate(lines[i], inner)
		}
		pad := max(0, inner-ansi.StringWidth(line))
		out = append(out, border.Render("│")+line+strings.Repeat(" ", pad)+border.Render("│"))
	}
	out = append(out, border.Render("╰"+strings.Repeat("─", inner)+"╯"))
	return strings.Join(out, "\n")
}

// overlay is one positioned layer drawn over the base frame.
type overlay struct {
	content string
	x, y    int
}

// overlayOnContent composes positioned overlays above base.
func overlayOnContent(base string, width, height int, overlays ...overlay) string {
	if width <= 0 || height <= 0 {
		return base
	}
	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	canvas.Compose(lipgloss.NewLayer(base).X(0).Y(0).Z(0))
	for i, o := range overlays {
		canvas.Compose(lipgloss.NewLayer(o.content).X(o.x).Y(o.y).Z(10 + i))
	}
	return canvas.Render()
}

// fitLines fits content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// truncate shortens s to max display cells, keeping ANSI styling intact.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if ansi.StringWidth(s) <= max {
		return s
	}
	if max <= 1 {
		return ansi.Truncate(s, max, "")
	}
	return ansi.Truncate(s, max, "…")
}
