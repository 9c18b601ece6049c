package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hylla/vitui/internal/app"
	"github.com/hylla/vitui/internal/domain"
)

// Mode identifies the active interaction mode.
type Mode int

// ModeBrowsing and related constants define the interaction modes.
const (
	ModeBrowsing Mode = iota
	ModeComposing
	ModeTextEntry
)

// String returns a short label for the mode.
func (m Mode) String() string {
	switch m {
	case ModeBrowsing:
		return "browsing"
	case ModeComposing:
		return "composing"
	case ModeTextEntry:
		return "insert"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Field identifies which compose buffer is active.
type Field int

// FieldTitle and FieldDescription name the two compose buffers.
const (
	FieldTitle Field = iota
	FieldDescription
)

// ActionKind is a logical user intent, independent of the physical key.
type ActionKind int

// ActionQuit and related constants define every action the machine understands.
const (
	ActionNone ActionKind = iota
	ActionQuit
	ActionMoveDown
	ActionMoveUp
	ActionNextPage
	ActionPreviousPage
	ActionToggleFilter
	ActionBeginCreate
	ActionInspect
	ActionRefresh
	ActionCopyLink
	ActionEnterTextMode
	ActionSwitchField
	ActionSubmit
	ActionCancel
	ActionExitTextMode
	ActionInsertText
	ActionInsertNewline
	ActionEraseBackward
)

// Action is one translated input event. Text is only used by ActionInsertText.
type Action struct {
	Kind ActionKind
	Text string
}

// RequestKind identifies side-effecting work the driver must perform.
type RequestKind int

// RequestNone and related constants define the request kinds.
const (
	RequestNone RequestKind = iota
	RequestQuit
	RequestList
	RequestDetail
	RequestCreate
	RequestCopyLink
)

// String returns a short label for the request kind.
func (k RequestKind) String() string {
	switch k {
	case RequestNone:
		return "none"
	case RequestQuit:
		return "quit"
	case RequestList:
		return "list"
	case RequestDetail:
		return "detail"
	case RequestCreate:
		return "create"
	case RequestCopyLink:
		return "copy-link"
	default:
		return fmt.Sprintf("request(%d)", int(k))
	}
}

// refreshReason records why a list request was issued.
type refreshReason int

const (
	refreshInitial refreshReason = iota
	refreshManual
	refreshNextPage
	refreshPreviousPage
	refreshFilter
)

// Request describes work produced by a transition.
type Request struct {
	Kind        RequestKind
	Page        int
	IncludeDone bool
	TaskID      int64
	Create      app.CreateTaskInput

	reason          refreshReason
	prevPage        int
	prevIncludeDone bool
}

// Remote reports whether the request crosses the process boundary.
func (r Request) Remote() bool {
	switch r.Kind {
	case RequestList, RequestDetail, RequestCreate:
		return true
	default:
		return false
	}
}

// Result carries the outcome of one executed request back into the machine.
// Created reports that the server accepted a create; Err then belongs to the
// follow-up refresh.
type Result struct {
	Request Request
	Tasks   []domain.Task
	Detail  domain.TaskDetail
	Created bool
	Err     error
}

// errEmptyTitle is reported when submit runs on a blank title buffer.
var errEmptyTitle = errors.New("task title cannot be empty")

// Machine owns every piece of interaction state for one session.
type Machine struct {
	items       Collection
	detail      *domain.TaskDetail
	mode        Mode
	field       Field
	title       string
	description string
	errMsg      string
	status      string
	pending     bool
	loc         *time.Location
}

// MachineOption configures a machine.
type MachineOption func(*Machine)

// WithLocation sets the zone used to normalize parsed due dates.
func WithLocation(loc *time.Location) MachineOption {
	return func(m *Machine) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// NewMachine constructs a machine in browsing mode with an empty collection.
func NewMachine(opts ...MachineOption) *Machine {
	m := &Machine{
		items: NewCollection(),
		mode:  ModeBrowsing,
		field: FieldTitle,
		loc:   time.Local,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Start returns the initial list request and marks it pending.
func (m *Machine) Start() Request {
	return m.listRequest(refreshInitial, m.items.Page(), m.items.IncludeDone())
}

// Handle applies one action and returns any work the driver must perform.
// While a remote request is pending every action except quit is ignored.
func (m *Machine) Handle(a Action) Request {
	if a.Kind == ActionQuit {
		return Request{Kind: RequestQuit}
	}
	if m.pending || a.Kind == ActionNone {
		return Request{}
	}
	switch m.mode {
	case ModeBrowsing:
		return m.handleBrowsing(a)
	case ModeComposing:
		return m.handleComposing(a)
	case ModeTextEntry:
		return m.handleTextEntry(a)
	default:
		return Request{}
	}
}

// handleBrowsing applies list-navigation actions.
func (m *Machine) handleBrowsing(a Action) Request {
	prevPage, prevDone := m.items.Page(), m.items.IncludeDone()
	switch a.Kind {
	case ActionMoveDown:
		m.clearNotices()
		m.items.SelectNext()
	case ActionMoveUp:
		m.clearNotices()
		m.items.SelectPrevious()
	case ActionNextPage:
		if !m.items.NextPage() {
			m.status = "no more tasks"
			return Request{}
		}
		m.clearNotices()
		return m.pageRequest(refreshNextPage, prevPage, prevDone)
	case ActionPreviousPage:
		m.clearNotices()
		m.items.PreviousPage()
		return m.pageRequest(refreshPreviousPage, prevPage, prevDone)
	case ActionToggleFilter:
		m.clearNotices()
		m.items.ToggleDoneFilter()
		return m.pageRequest(refreshFilter, prevPage, prevDone)
	case ActionRefresh:
		m.clearNotices()
		return m.pageRequest(refreshManual, prevPage, prevDone)
	case ActionBeginCreate:
		m.clearNotices()
		m.title = ""
		m.description = ""
		m.field = FieldTitle
		m.mode = ModeComposing
	case ActionInspect:
		_, task, ok := m.items.Selected()
		if !ok {
			return Request{}
		}
		m.clearNotices()
		m.pending = true
		return Request{Kind: RequestDetail, TaskID: task.ID}
	case ActionCopyLink:
		_, task, ok := m.items.Selected()
		if !ok {
			return Request{}
		}
		m.clearNotices()
		return Request{Kind: RequestCopyLink, TaskID: task.ID}
	}
	return Request{}
}

// handleComposing applies field-level editing actions.
func (m *Machine) handleComposing(a Action) Request {
	switch a.Kind {
	case ActionEnterTextMode:
		m.clearNotices()
		m.mode = ModeTextEntry
	case ActionSwitchField:
		m.clearNotices()
		if m.field == FieldTitle {
			m.field = FieldDescription
		} else {
			m.field = FieldTitle
		}
	case ActionCancel:
		m.clearNotices()
		m.title = ""
		m.description = ""
		m.mode = ModeBrowsing
	case ActionSubmit:
		return m.submit()
	}
	return Request{}
}

// handleTextEntry applies character-level editing actions to the active buffer.
func (m *Machine) handleTextEntry(a Action) Request {
	switch a.Kind {
	case ActionExitTextMode:
		m.clearNotices()
		m.mode = ModeComposing
	case ActionInsertText:
		if a.Text == "" {
			return Request{}
		}
		m.clearNotices()
		if m.field == FieldTitle {
			m.title += strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(a.Text)
		} else {
			m.description += strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(a.Text)
		}
	case ActionInsertNewline:
		if m.field != FieldDescription {
			return Request{}
		}
		m.clearNotices()
		m.description += "\n"
	case ActionEraseBackward:
		m.clearNotices()
		if m.field == FieldTitle {
			m.title = dropLastRune(m.title)
		} else {
			m.description = dropLastRune(m.description)
		}
	}
	return Request{}
}

// submit validates the title buffer and produces a create request.
func (m *Machine) submit() Request {
	if strings.TrimSpace(m.title) == "" {
		m.errMsg = errEmptyTitle.Error()
		return Request{}
	}
	parsed, err := domain.ParseInputIn(m.title, m.loc)
	if err != nil {
		m.errMsg = "input error: " + err.Error()
		return Request{}
	}
	m.clearNotices()
	in := app.CreateTaskInput{
		Title:    parsed.Title,
		Priority: parsed.Priority,
		DueAt:    parsed.DueAt,
	}
	if strings.TrimSpace(m.description) != "" {
		desc := m.description
		in.Description = &desc
	} else if parsed.Description != nil {
		in.Description = parsed.Description
	}
	m.pending = true
	return Request{
		Kind:        RequestCreate,
		Create:      in,
		Page:        m.items.Page(),
		IncludeDone: m.items.IncludeDone(),
	}
}

// Complete folds an executed request's outcome back into state.
func (m *Machine) Complete(res Result) {
	if res.Request.Remote() {
		m.pending = false
	}
	switch res.Request.Kind {
	case RequestList:
		m.completeList(res)
	case RequestDetail:
		if res.Err != nil {
			m.errMsg = fmt.Sprintf("error fetching task details: %v", res.Err)
			return
		}
		detail := res.Detail
		m.detail = &detail
	case RequestCreate:
		if !res.Created {
			m.errMsg = fmt.Sprintf("error creating task: %v", res.Err)
			return
		}
		m.title = ""
		m.description = ""
		m.field = FieldTitle
		m.mode = ModeBrowsing
		if res.Err != nil {
			m.errMsg = fmt.Sprintf("task created; error fetching tasks: %v", res.Err)
			return
		}
		m.applyItems(res.Tasks, res.Request.IncludeDone)
		m.status = "task created"
	case RequestCopyLink:
		if res.Err != nil {
			m.errMsg = fmt.Sprintf("copy link: %v", res.Err)
			return
		}
		m.status = "task link copied"
	}
}

// completeList applies a list refresh, rolling back paging on failure or an empty next page.
func (m *Machine) completeList(res Result) {
	req := res.Request
	if res.Err != nil {
		m.items.restore(req.prevPage, req.prevIncludeDone)
		m.errMsg = fmt.Sprintf("error fetching tasks: %v", res.Err)
		return
	}
	if req.reason == refreshNextPage && len(res.Tasks) == 0 && req.prevPage >= 1 {
		m.items.restore(req.prevPage, req.prevIncludeDone)
		m.items.MarkEnd()
		m.status = "no more tasks"
		return
	}
	m.applyItems(res.Tasks, req.IncludeDone)
}

// applyItems replaces the page and drops a detail record whose task left the page.
func (m *Machine) applyItems(tasks []domain.Task, includeDone bool) {
	m.items.ReplaceItems(tasks, includeDone)
	if m.detail != nil && !m.items.Contains(m.detail.ID) {
		m.detail = nil
	}
}

// pageRequest builds a list request after paging or filter state changed.
func (m *Machine) pageRequest(reason refreshReason, prevPage int, prevDone bool) Request {
	req := m.listRequest(reason, m.items.Page(), m.items.IncludeDone())
	req.prevPage = prevPage
	req.prevIncludeDone = prevDone
	return req
}

// listRequest builds a pending list request.
func (m *Machine) listRequest(reason refreshReason, page int, includeDone bool) Request {
	m.pending = true
	return Request{
		Kind:            RequestList,
		Page:            page,
		IncludeDone:     includeDone,
		reason:          reason,
		prevPage:        page,
		prevIncludeDone: includeDone,
	}
}

// clearNotices drops the transient error and status after a successful action.
func (m *Machine) clearNotices() {
	m.errMsg = ""
	m.status = ""
}

// dropLastRune removes the final rune of s.
func dropLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// Snapshot is an immutable copy of the state the renderer reads.
type Snapshot struct {
	Mode        Mode
	Field       Field
	Items       []domain.Task
	Selected    int
	Page        int
	IncludeDone bool
	AtEnd       bool
	Detail      *domain.TaskDetail
	Title       string
	Description string
	Err         string
	Status      string
	Pending     bool
}

// Snapshot returns the current state for rendering.
func (m *Machine) Snapshot() Snapshot {
	selected, _, _ := m.items.Selected()
	var detail *domain.TaskDetail
	if m.detail != nil {
		d := *m.detail
		d.Labels = append([]domain.Label(nil), m.detail.Labels...)
		detail = &d
	}
	return Snapshot{
		Mode:        m.mode,
		Field:       m.field,
		Items:       m.items.Items(),
		Selected:    selected,
		Page:        m.items.Page(),
		IncludeDone: m.items.IncludeDone(),
		AtEnd:       m.items.AtEnd(),
		Detail:      detail,
		Title:       m.title,
		Description: m.description,
		Err:         m.errMsg,
		Status:      m.status,
		Pending:     m.pending,
	}
}

// Mode returns the active mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// Pending reports whether a remote request is in flight.
func (m *Machine) Pending() bool {
	return m.pending
}
