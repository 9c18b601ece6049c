package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hylla/vitui/internal/domain"
	"github.com/hylla/vitui/internal/session"
	"github.com/mattn/go-runewidth"
)

const (
	footerHeight      = 2
	listWidthPercent  = 65
	popupWidthPercent = 60
	errorBoxWidth     = 60
	errorBoxHeight    = 5
	minTitleRows      = 1
	minDescRows       = 2
	dueDateLayout     = "2006-01-02 15:04"
	composeHeading    = "Enter New Task (Press Enter to Submit, Tab to Switch)"
	emptyListText     = "No tasks available"
	emptyDetailText   = "Press Enter to view task details"
	detailPaneTitle   = "Task Details"
	errorBoxTitle     = "Error"
	pendingStatus     = "working..."
	titleFieldLabel   = "Title"
	descriptionLabel  = "Description"
)

// popupChrome counts the popup border plus both field borders.
const popupChrome = 6

// layoutPlan is a pure description of one frame. Rendering only draws what it says.
type layoutPlan struct {
	width        int
	height       int
	bodyHeight   int
	mode         session.Mode
	list         listPane
	detail       detailPane
	popup        *popupPlan
	cursor       *cursorPos
	errorBox     *errorBoxPlan
	legend       bindingSet
	status       string
	statusIsErr  bool
	composeError string
}

// listPane describes the task list region.
type listPane struct {
	width  int
	height int
	title  string
	empty  bool
	rows   []listRow
}

// listRow is one visible task line.
type listRow struct {
	title    string
	done     bool
	selected bool
}

// detailPane describes the detail region.
type detailPane struct {
	x           int
	width       int
	height      int
	empty       bool
	due         string
	priority    string
	labels      []string
	description string
	hasDesc     bool
}

// popupPlan describes the compose popup geometry and contents.
type popupPlan struct {
	x, y         int
	width        int
	height       int
	textWidth    int
	titleRows    int
	descRows     int
	active       session.Field
	titleLines   []string
	descLines    []string
	errorLine    string
	headingTitle string
}

// cursorPos is an absolute terminal cell.
type cursorPos struct {
	x, y int
}

// errorBoxPlan describes the centred error overlay shown while browsing.
type errorBoxPlan struct {
	x, y   int
	width  int
	height int
	text   string
}

// planLayout computes the frame for one state snapshot. It performs no I/O.
func planLayout(snap session.Snapshot, width, height int) layoutPlan {
	width = max(width, 1)
	height = max(height, 1)
	plan := layoutPlan{
		width:      width,
		height:     height,
		bodyHeight: max(0, height-footerHeight),
		mode:       snap.Mode,
		legend:     newKeyMap().legend(snap.Mode),
	}

	switch {
	case snap.Pending:
		plan.status = pendingStatus
	case snap.Err != "" && snap.Mode != session.ModeBrowsing:
		plan.composeError = snap.Err
	case snap.Err != "":
		plan.status = snap.Err
		plan.statusIsErr = true
	default:
		plan.status = snap.Status
	}

	listWidth := width * listWidthPercent / 100
	plan.list = planList(snap, listWidth, plan.bodyHeight)
	plan.detail = planDetail(snap.Detail, listWidth, width-listWidth, plan.bodyHeight)

	if snap.Mode == session.ModeBrowsing {
		if snap.Err != "" {
			plan.errorBox = planErrorBox(snap.Err, width, height)
		}
		return plan
	}

	plan.popup = planPopup(snap, width, height, plan.composeError)
	plan.cursor = popupCursor(*plan.popup)
	return plan
}

// listTitle names the list pane after its filter and page.
func listTitle(includeDone bool, page int) string {
	title := "Tasks (Undone)"
	if includeDone {
		title = "Tasks (All)"
	}
	if page > 1 {
		title += " · page " + strconv.Itoa(page)
	}
	return title
}

func planList(snap session.Snapshot, width, height int) listPane {
	pane := listPane{
		width:  width,
		height: height,
		title:  listTitle(snap.IncludeDone, snap.Page),
		empty:  len(snap.Items) == 0,
	}
	inner := max(0, height-2)
	start, end := windowBounds(len(snap.Items), snap.Selected, inner)
	for idx := start; idx < end; idx++ {
		task := snap.Items[idx]
		pane.rows = append(pane.rows, listRow{
			title:    task.Title,
			done:     task.Done,
			selected: idx == snap.Selected,
		})
	}
	return pane
}

func planDetail(detail *domain.TaskDetail, x, width, height int) detailPane {
	pane := detailPane{x: x, width: width, height: height}
	if detail == nil {
		pane.empty = true
		return pane
	}
	pane.due = "No due date"
	if detail.HasDueDate() {
		pane.due = detail.DueAt.Format(dueDateLayout)
	}
	pane.priority = "No priority"
	if detail.HasPriority() {
		pane.priority = strconv.Itoa(*detail.Priority)
	}
	for _, label := range detail.Labels {
		if title := strings.TrimSpace(label.Title); title != "" {
			pane.labels = append(pane.labels, title)
		}
	}
	if detail.HasDescription() {
		pane.description = htmlToMarkdown(detail.Description)
		pane.hasDesc = pane.description != ""
	}
	return pane
}

func planErrorBox(text string, width, height int) *errorBoxPlan {
	boxW := min(errorBoxWidth, width)
	boxH := min(errorBoxHeight, height)
	return &errorBoxPlan{
		x:      (width - boxW) / 2,
		y:      (height - boxH) / 2,
		width:  boxW,
		height: boxH,
		text:   text,
	}
}

func planPopup(snap session.Snapshot, width, height int, errLine string) *popupPlan {
	textWidth := max(1, width*popupWidthPercent/100-2)
	titleRows := max(wrappedRows(snap.Title, textWidth), minTitleRows)
	descRows := max(wrappedRows(snap.Description, textWidth), minDescRows)

	extra := 0
	if errLine != "" {
		extra = 1
	}
	limit := max(popupChrome+2+extra, height-2)
	for titleRows+descRows+popupChrome+extra > limit && descRows > 1 {
		descRows--
	}
	for titleRows+descRows+popupChrome+extra > limit && titleRows > 1 {
		titleRows--
	}

	popupW := min(width, textWidth+4)
	popupH := min(height, titleRows+descRows+popupChrome+extra)
	return &popupPlan{
		x:            max(0, (width-popupW)/2),
		y:            max(0, (height-popupH)/2),
		width:        popupW,
		height:       popupH,
		textWidth:    textWidth,
		titleRows:    titleRows,
		descRows:     descRows,
		active:       snap.Field,
		titleLines:   tailLines(hardWrap(snap.Title, textWidth), titleRows),
		descLines:    tailLines(hardWrap(snap.Description, textWidth), descRows),
		errorLine:    errLine,
		headingTitle: composeHeading,
	}
}

// popupCursor places the cursor after the last character of the active field.
func popupCursor(p popupPlan) *cursorPos {
	lines := p.titleLines
	top := p.y + 2
	if p.active == session.FieldDescription {
		lines = p.descLines
		top = p.y + 1 + p.titleRows + 2 + 1
	}
	row, col := 0, 0
	if len(lines) > 0 {
		row = len(lines) - 1
		col = min(runewidth.StringWidth(lines[row]), max(0, p.textWidth-1))
	}
	return &cursorPos{x: p.x + 2 + col, y: top + row}
}

// wrappedRows counts display rows for text hard-wrapped at width. Every logical
// line takes at least one row; a double-width rune never straddles a row break.
func wrappedRows(text string, width int) int {
	if width <= 0 {
		return 0
	}
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		rows += len(wrapLine(line, width))
	}
	return rows
}

// hardWrap splits text into display rows of at most width cells.
func hardWrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		rows = append(rows, wrapLine(line, width)...)
	}
	return rows
}

// wrapLine greedily packs the runes of one logical line into rows of width cells.
// A rune wider than width gets a row of its own.
func wrapLine(line string, width int) []string {
	if line == "" {
		return []string{""}
	}
	var (
		rows []string
		b    strings.Builder
		used int
	)
	for _, r := range line {
		rw := runewidth.RuneWidth(r)
		if used+rw > width && used > 0 {
			rows = append(rows, b.String())
			b.Reset()
			used = 0
		}
		b.WriteRune(r)
		used += rw
	}
	return append(rows, b.String())
}

// tailLines keeps the last n lines so the end of a long buffer stays visible.
func tailLines(lines []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(lines) > n {
		return lines[len(lines)-n:]
	}
	return lines
}

// windowBounds returns an inclusive-exclusive list window that keeps selected visible.
func windowBounds(total, selected, windowSize int) (int, int) {
	if total <= 0 || windowSize <= 0 {
		return 0, 0
	}
	if total <= windowSize {
		return 0, total
	}
	selected = clamp(selected, 0, total-1)
	half := windowSize / 2
	start := max(0, selected-half)
	end := start + windowSize
	if end > total {
		end = total
		start = max(0, end-windowSize)
	}
	return start, end
}

// clamp clamps v into [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// describePage renders the footer page indicator.
func describePage(page int, atEnd bool) string {
	if atEnd {
		return fmt.Sprintf("page %d (end)", page)
	}
	return fmt.Sprintf("page %d", page)
}
