package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hylla/vitui/internal/app"
	"github.com/hylla/vitui/internal/domain"
)

// fakeService records calls and serves scripted pages.
type fakeService struct {
	pages     map[int][]domain.Task
	detail    domain.TaskDetail
	listErr   error
	detailErr error
	createErr error

	listCalls []int
	created   []app.CreateTaskInput
}

// ListTasks serves the scripted page.
func (f *fakeService) ListTasks(_ context.Context, page int, _ bool) ([]domain.Task, error) {
	f.listCalls = append(f.listCalls, page)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Task(nil), f.pages[page]...), nil
}

// GetTask returns the scripted detail.
func (f *fakeService) GetTask(_ context.Context, id int64) (domain.TaskDetail, error) {
	if f.detailErr != nil {
		return domain.TaskDetail{}, f.detailErr
	}
	detail := f.detail
	detail.ID = id
	return detail, nil
}

// CreateTask records the create input and appends the task to page one.
func (f *fakeService) CreateTask(_ context.Context, in app.CreateTaskInput) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, in)
	if f.pages == nil {
		f.pages = map[int][]domain.Task{}
	}
	f.pages[1] = append(f.pages[1], domain.Task{ID: int64(100 + len(f.created)), Title: in.Title})
	return nil
}

// newStartedMachine builds a machine and completes its initial load.
func newStartedMachine(t *testing.T, svc *fakeService) *Machine {
	t.Helper()
	m := NewMachine(WithLocation(time.UTC))
	req := m.Start()
	if req.Kind != RequestList || req.Page != 1 || req.IncludeDone {
		t.Fatalf("Start() = %#v, want page-1 list without done tasks", req)
	}
	m.Complete(Execute(context.Background(), svc, req))
	return m
}

// act runs one action synchronously through the fake service.
func act(m *Machine, svc *fakeService, kind ActionKind) Request {
	return Run(context.Background(), m, svc, Action{Kind: kind})
}

// typeText enters text mode, types, and leaves text mode.
func typeText(m *Machine, svc *fakeService, text string) {
	act(m, svc, ActionEnterTextMode)
	Run(context.Background(), m, svc, Action{Kind: ActionInsertText, Text: text})
	act(m, svc, ActionExitTextMode)
}

// TestMachineInitialLoad verifies the first page is shown with the cursor on row one.
func TestMachineInitialLoad(t *testing.T) {
	svc := &fakeService{pages: map[int][]domain.Task{1: sampleTasks()}}
	m := newStartedMachine(t, svc)
	snap := m.Snapshot()
	if snap.Mode != ModeBrowsing || snap.Pending {
		t.Fatalf("snapshot mode=%v pending=%v, want browsing idle", snap.Mode, snap.Pending)
	}
	if len(snap.Items) != 2 || snap.Selected != 0 {
		t.Fatalf("snapshot items=%d selected=%d, want 2 0", len(snap.Items), snap.Selected)
	}
}

// TestMachineSubmitCreatesAnnotatedTask verifies the full compose flow end to end.
func TestMachineSubmitCreatesAnnotatedTask(t *testing.T) {
	svc := &fakeService{pages: map[int][]domain.Task{1: nil}}
	m := newStartedMachine(t, svc)

	act(m, svc, ActionBeginCreate)
	if m.Mode() != ModeComposing {
		t.Fatalf("Mode() = %v, want composing", m.Mode())
	}
	typeText(m, svc, "Buy milk !2 due:2024-01-15 {Get whole milk}")
	req := act(m, svc, ActionSubmit)
	if req.Kind != RequestCreate {
		t.Fatalf("submit request = %v, want create", req.Kind)
	}

	if len(svc.created) != 1 {
		t.Fatalf("created = %d tasks, want 1", len(svc.created))
	}
	in := svc.created[0]
	if in.Title != "Buy milk" {
		t.Fatalf("title = %q, want Buy milk", in.Title)
	}
	if in.Priority == nil || *in.Priority != 2 {
		t.Fatalf("priority = %v, want 2", in.Priority)
	}
	wantDue := time.Date(2024, time.January, 15, 23, 59, 59, 0, time.UTC)
	if in.DueAt == nil || !in.DueAt.Equal(wantDue) {
		t.Fatalf("due = %v, want %v", in.DueAt, wantDue)
	}
	if in.Description == nil || *in.Description != "Get whole milk" {
		t.Fatalf("description = %v, want Get whole milk", in.Description)
	}

	snap := m.Snapshot()
	if snap.Mode != ModeBrowsing || snap.Title != "" || snap.Description != "" {
		t.Fatalf("after submit mode=%v title=%q desc=%q, want cleared browsing", snap.Mode, snap.Title, snap.Description)
	}
	if len(snap.Items) != 1 || snap.Items[0].Title != "Buy milk" {
		t.Fatalf("items = %#v, want refreshed page with new task", snap.Items)
	}
	if snap.Status != "task created" {
		t.Fatalf("status = %q, want task created", snap.Status)
	}
}

// TestMachineDescriptionBufferWins verifies the description field overrides inline braces.
func TestMachineDescriptionBufferWins(t *testing.T) {
	svc := &fakeService{}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionBeginCreate)
	typeText(m, svc, "Title {inline}")
	act(m, svc, ActionSwitchField)
	act(m, svc, ActionEnterTextMode)
	Run(context.Background(), m, svc, Action{Kind: ActionInsertText, Text: "first"})
	act(m, svc, ActionInsertNewline)
	Run(context.Background(), m, svc, Action{Kind: ActionInsertText, Text: "second"})
	act(m, svc, ActionExitTextMode)
	act(m, svc, ActionSubmit)

	if len(svc.created) != 1 {
		t.Fatalf("created = %d, want 1", len(svc.created))
	}
	got := svc.created[0].Description
	if got == nil || *got != "first\nsecond" {
		t.Fatalf("description = %v, want buffer text", got)
	}
}

// TestMachineEmptyTitleStaysComposing verifies the empty-title error path.
func TestMachineEmptyTitleStaysComposing(t *testing.T) {
	svc := &fakeService{}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionBeginCreate)
	typeText(m, svc, "   ")
	req := act(m, svc, ActionSubmit)
	if req.Kind != RequestNone {
		t.Fatalf("submit request = %v, want none", req.Kind)
	}
	snap := m.Snapshot()
	if snap.Mode != ModeComposing || snap.Err != "task title cannot be empty" {
		t.Fatalf("mode=%v err=%q, want composing with empty-title error", snap.Mode, snap.Err)
	}
	if len(svc.created) != 0 {
		t.Fatal("no task should be created")
	}
}

// TestMachineParseErrorKeepsBuffers verifies annotation errors surface without losing input.
func TestMachineParseErrorKeepsBuffers(t *testing.T) {
	svc := &fakeService{}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionBeginCreate)
	typeText(m, svc, "Ship it !9")
	act(m, svc, ActionSubmit)
	snap := m.Snapshot()
	if snap.Mode != ModeComposing || snap.Title != "Ship it !9" {
		t.Fatalf("mode=%v title=%q, want composing with buffer intact", snap.Mode, snap.Title)
	}
	if !strings.HasPrefix(snap.Err, "input error: invalid priority") {
		t.Fatalf("err = %q, want input error", snap.Err)
	}
}

// TestMachineCreateFailureKeepsBuffers verifies a transport failure leaves the popup open.
func TestMachineCreateFailureKeepsBuffers(t *testing.T) {
	svc := &fakeService{createErr: errors.New("boom")}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionBeginCreate)
	typeText(m, svc, "Write report")
	act(m, svc, ActionSubmit)
	snap := m.Snapshot()
	if snap.Mode != ModeComposing || snap.Title != "Write report" || snap.Pending {
		t.Fatalf("mode=%v title=%q pending=%v, want composing idle with buffer", snap.Mode, snap.Title, snap.Pending)
	}
	if snap.Err != "error creating task: boom" {
		t.Fatalf("err = %q", snap.Err)
	}
}

// TestMachineRefreshFailureAfterCreateClosesPopup verifies an accepted create is not resubmitted.
func TestMachineRefreshFailureAfterCreateClosesPopup(t *testing.T) {
	svc := &fakeService{pages: map[int][]domain.Task{1: sampleTasks()}}
	m := newStartedMachine(t, svc)
	before := m.Snapshot().Items

	act(m, svc, ActionBeginCreate)
	typeText(m, svc, "Buy milk")
	svc.listErr = errors.New("boom")
	act(m, svc, ActionSubmit)
	svc.listErr = nil

	snap := m.Snapshot()
	if snap.Mode != ModeBrowsing || snap.Title != "" || snap.Pending {
		t.Fatalf("mode=%v title=%q pending=%v, want idle browsing with cleared buffer", snap.Mode, snap.Title, snap.Pending)
	}
	if snap.Err != "task created; error fetching tasks: boom" {
		t.Fatalf("err = %q", snap.Err)
	}
	if len(snap.Items) != len(before) {
		t.Fatalf("items = %d, want previous %d kept", len(snap.Items), len(before))
	}

	if req := act(m, svc, ActionSubmit); req.Kind != RequestNone {
		t.Fatalf("second submit request = %v, want none", req.Kind)
	}
	if len(svc.created) != 1 {
		t.Fatalf("created = %d tasks, want 1", len(svc.created))
	}
}

// TestMachineDescriptionSentAsTyped verifies the description buffer is not trimmed.
func TestMachineDescriptionSentAsTyped(t *testing.T) {
	svc := &fakeService{}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionBeginCreate)
	typeText(m, svc, "Title")
	act(m, svc, ActionSwitchField)
	typeText(m, svc, "  indented\n")
	act(m, svc, ActionSubmit)
	if len(svc.created) != 1 {
		t.Fatalf("created = %d, want 1", len(svc.created))
	}
	if got := svc.created[0].Description; got == nil || *got != "  indented\n" {
		t.Fatalf("description = %v, want buffer as typed", got)
	}
}

// TestMachineBlankDescriptionFallsBackToInline verifies whitespace never overrides braces.
func TestMachineBlankDescriptionFallsBackToInline(t *testing.T) {
	svc := &fakeService{}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionBeginCreate)
	typeText(m, svc, "Title {inline}")
	act(m, svc, ActionSwitchField)
	typeText(m, svc, " \n ")
	act(m, svc, ActionSubmit)
	if got := svc.created[0].Description; got == nil || *got != "inline" {
		t.Fatalf("description = %v, want inline", got)
	}
}

// TestMachineCancelDiscardsBuffers verifies cancel returns to browsing with empty buffers.
func TestMachineCancelDiscardsBuffers(t *testing.T) {
	svc := &fakeService{}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionBeginCreate)
	typeText(m, svc, "draft")
	act(m, svc, ActionCancel)
	snap := m.Snapshot()
	if snap.Mode != ModeBrowsing || snap.Title != "" {
		t.Fatalf("mode=%v title=%q, want browsing with empty buffer", snap.Mode, snap.Title)
	}
	act(m, svc, ActionBeginCreate)
	if got := m.Snapshot().Title; got != "" {
		t.Fatalf("reopened title = %q, want empty", got)
	}
}

// TestMachineTextEntryEditing verifies insert, erase, and newline rules per field.
func TestMachineTextEntryEditing(t *testing.T) {
	svc := &fakeService{}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionBeginCreate)
	act(m, svc, ActionEnterTextMode)
	Run(context.Background(), m, svc, Action{Kind: ActionInsertText, Text: "héllo\nworld"})
	act(m, svc, ActionInsertNewline)
	act(m, svc, ActionEraseBackward)
	if got := m.Snapshot().Title; got != "héllo worl" {
		t.Fatalf("title = %q, want %q", got, "héllo worl")
	}
	for range 20 {
		act(m, svc, ActionEraseBackward)
	}
	if got := m.Snapshot().Title; got != "" {
		t.Fatalf("title = %q, want empty after erasing past start", got)
	}
}

// TestMachineDescriptionNormalizesCarriageReturns verifies pasted line endings become newlines.
func TestMachineDescriptionNormalizesCarriageReturns(t *testing.T) {
	svc := &fakeService{}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionBeginCreate)
	act(m, svc, ActionSwitchField)
	typeText(m, svc, "a\r\nb\rc")
	if got := m.Snapshot().Description; got != "a\nb\nc" {
		t.Fatalf("description = %q, want %q", got, "a\nb\nc")
	}
}

// TestMachineModeTransitions verifies only the documented transitions change mode.
func TestMachineModeTransitions(t *testing.T) {
	svc := &fakeService{}
	m := newStartedMachine(t, svc)

	act(m, svc, ActionEnterTextMode)
	if m.Mode() != ModeBrowsing {
		t.Fatalf("text mode from browsing = %v, want browsing", m.Mode())
	}
	act(m, svc, ActionBeginCreate)
	act(m, svc, ActionEnterTextMode)
	if m.Mode() != ModeTextEntry {
		t.Fatalf("Mode() = %v, want insert", m.Mode())
	}
	act(m, svc, ActionSubmit)
	if m.Mode() != ModeTextEntry {
		t.Fatalf("submit in text entry changed mode to %v", m.Mode())
	}
	act(m, svc, ActionExitTextMode)
	act(m, svc, ActionSwitchField)
	act(m, svc, ActionSwitchField)
	if m.Snapshot().Field != FieldTitle {
		t.Fatal("double switch should return to title field")
	}
	if req := act(m, svc, ActionQuit); req.Kind != RequestQuit {
		t.Fatalf("quit request = %v, want quit", req.Kind)
	}
}

// TestMachineInspectLoadsDetail verifies inspect fetches detail for the selected task.
func TestMachineInspectLoadsDetail(t *testing.T) {
	priority := 3
	svc := &fakeService{
		pages:  map[int][]domain.Task{1: sampleTasks()},
		detail: domain.TaskDetail{Title: "Call mom", Priority: &priority},
	}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionMoveDown)
	req := act(m, svc, ActionInspect)
	if req.Kind != RequestDetail || req.TaskID != 3 {
		t.Fatalf("inspect request = %#v, want detail for task 3", req)
	}
	snap := m.Snapshot()
	if snap.Detail == nil || snap.Detail.ID != 3 {
		t.Fatalf("detail = %#v, want task 3", snap.Detail)
	}
}

// TestMachineInspectEmptyIsNoop verifies inspect without a selection issues no request.
func TestMachineInspectEmptyIsNoop(t *testing.T) {
	svc := &fakeService{}
	m := newStartedMachine(t, svc)
	if req := act(m, svc, ActionInspect); req.Kind != RequestNone {
		t.Fatalf("inspect request = %v, want none", req.Kind)
	}
}

// TestMachineDetailErrorSurfaces verifies a failed detail fetch reports an error.
func TestMachineDetailErrorSurfaces(t *testing.T) {
	svc := &fakeService{pages: map[int][]domain.Task{1: sampleTasks()}, detailErr: errors.New("404")}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionInspect)
	snap := m.Snapshot()
	if snap.Detail != nil || snap.Err != "error fetching task details: 404" {
		t.Fatalf("detail=%v err=%q", snap.Detail, snap.Err)
	}
	act(m, svc, ActionMoveDown)
	if got := m.Snapshot().Err; got != "" {
		t.Fatalf("err = %q, want cleared by next action", got)
	}
}

// TestMachineStaleDetailCleared verifies the detail pane empties when its task leaves the page.
func TestMachineStaleDetailCleared(t *testing.T) {
	svc := &fakeService{pages: map[int][]domain.Task{
		1: {{ID: 1, Title: "one"}},
		2: {{ID: 2, Title: "two"}},
	}}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionInspect)
	if m.Snapshot().Detail == nil {
		t.Fatal("expected detail after inspect")
	}
	act(m, svc, ActionNextPage)
	snap := m.Snapshot()
	if snap.Page != 2 || snap.Detail != nil {
		t.Fatalf("page=%d detail=%v, want page 2 without stale detail", snap.Page, snap.Detail)
	}
}

// TestMachineEmptyNextPageReverts verifies an empty next page keeps the current one.
func TestMachineEmptyNextPageReverts(t *testing.T) {
	svc := &fakeService{pages: map[int][]domain.Task{1: sampleTasks()}}
	m := newStartedMachine(t, svc)
	act(m, svc, ActionNextPage)
	snap := m.Snapshot()
	if snap.Page != 1 || len(snap.Items) != 2 || !snap.AtEnd {
		t.Fatalf("page=%d items=%d atEnd=%v, want page 1 kept and end marked", snap.Page, len(snap.Items), snap.AtEnd)
	}
	if snap.Status != "no more tasks" {
		t.Fatalf("status = %q, want no more tasks", snap.Status)
	}
	calls := len(svc.listCalls)
	if req := act(m, svc, ActionNextPage); req.Kind != RequestNone {
		t.Fatalf("next page at end = %v, want none", req.Kind)
	}
	if len(svc.listCalls) != calls {
		t.Fatal("next page at end should not hit the service")
	}
}

// TestMachinePreviousPageFloor verifies previous page on page one refreshes page one.
func TestMachinePreviousPageFloor(t *testing.T) {
	svc := &fakeService{pages: map[int][]domain.Task{1: sampleTasks()}}
	m := newStartedMachine(t, svc)
	req := act(m, svc, ActionPreviousPage)
	if req.Kind != RequestList || req.Page != 1 {
		t.Fatalf("previous page request = %#v, want page 1 refresh", req)
	}
}

// TestMachineToggleFilterRefreshes verifies the filter toggle refetches with done tasks.
func TestMachineToggleFilterRefreshes(t *testing.T) {
	svc := &fakeService{pages: map[int][]domain.Task{1: sampleTasks()}}
	m := newStartedMachine(t, svc)
	req := act(m, svc, ActionToggleFilter)
	if req.Kind != RequestList || !req.IncludeDone {
		t.Fatalf("toggle request = %#v, want list including done", req)
	}
	if got := len(m.Snapshot().Items); got != 3 {
		t.Fatalf("items = %d, want 3", got)
	}
}

// TestMachineListFailureRestoresPage verifies a failed refresh rolls paging back.
func TestMachineListFailureRestoresPage(t *testing.T) {
	svc := &fakeService{pages: map[int][]domain.Task{1: sampleTasks()}}
	m := newStartedMachine(t, svc)
	svc.listErr = errors.New("offline")
	act(m, svc, ActionToggleFilter)
	snap := m.Snapshot()
	if snap.IncludeDone || snap.Page != 1 {
		t.Fatalf("includeDone=%v page=%d, want rollback", snap.IncludeDone, snap.Page)
	}
	if snap.Err != "error fetching tasks: offline" || len(snap.Items) != 2 {
		t.Fatalf("err=%q items=%d, want error with previous items kept", snap.Err, len(snap.Items))
	}
}

// TestMachinePendingIgnoresInput verifies single-flight behavior.
func TestMachinePendingIgnoresInput(t *testing.T) {
	m := NewMachine()
	m.Start()
	if !m.Pending() {
		t.Fatal("Start() should mark the machine pending")
	}
	if req := m.Handle(Action{Kind: ActionNextPage}); req.Kind != RequestNone {
		t.Fatalf("pending next page = %v, want none", req.Kind)
	}
	if req := m.Handle(Action{Kind: ActionBeginCreate}); req.Kind != RequestNone || m.Mode() != ModeBrowsing {
		t.Fatal("pending begin create should be ignored")
	}
	if req := m.Handle(Action{Kind: ActionQuit}); req.Kind != RequestQuit {
		t.Fatalf("pending quit = %v, want quit", req.Kind)
	}
}

// TestMachineCopyLinkStatus verifies copy-link results are reported.
func TestMachineCopyLinkStatus(t *testing.T) {
	svc := &fakeService{pages: map[int][]domain.Task{1: sampleTasks()}}
	m := newStartedMachine(t, svc)
	req := act(m, svc, ActionCopyLink)
	if req.Kind != RequestCopyLink || req.TaskID != 1 {
		t.Fatalf("copy request = %#v", req)
	}
	m.Complete(Result{Request: req})
	if got := m.Snapshot().Status; got != "task link copied" {
		t.Fatalf("status = %q", got)
	}
	m.Complete(Result{Request: req, Err: errors.New("no clipboard")})
	if got := m.Snapshot().Err; got != "copy link: no clipboard" {
		t.Fatalf("err = %q", got)
	}
}
