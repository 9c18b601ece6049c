package tui

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/vitui/internal/app"
	"github.com/hylla/vitui/internal/session"
)

// Service represents the application operations the terminal client drives.
type Service interface {
	session.Service
	TaskURL(int64) string
}

// errNoTaskURL is reported when copy-link runs without a configured web URL.
var errNoTaskURL = errors.New("no task link available")

// resultMsg carries one executed request back into Update.
type resultMsg struct {
	result session.Result
}

// Model is the bubbletea model for the task browser.
type Model struct {
	svc       Service
	machine   *session.Machine
	keys      keyMap
	renderer  *renderer
	logger    app.Logger
	writeClip func(string) error
	ctx       context.Context
	timeout   time.Duration
	width     int
	height    int
	ready     bool
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	m := Model{
		svc:       svc,
		keys:      newKeyMap(),
		renderer:  newRenderer(),
		logger:    discardLogger{},
		writeClip: clipboard.WriteAll,
		ctx:       context.Background(),
	}
	var machineOpts []session.MachineOption
	for _, opt := range opts {
		if opt != nil {
			opt(&m, &machineOpts)
		}
	}
	m.machine = session.NewMachine(machineOpts...)
	return m
}

// Init starts the initial task load.
func (m Model) Init() tea.Cmd {
	return m.run(m.machine.Start())
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resultMsg:
		m.machine.Complete(msg.result)
		return m, nil

	case tea.KeyPressMsg:
		action := m.keys.translate(m.machine.Mode(), msg)
		return m, m.run(m.machine.Handle(action))

	case tea.PasteMsg:
		if m.machine.Mode() != session.ModeTextEntry {
			return m, nil
		}
		return m, m.run(m.machine.Handle(session.Action{Kind: session.ActionInsertText, Text: msg.Content}))

	default:
		return m, nil
	}
}

// View handles view.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}
	snap := m.machine.Snapshot()
	plan := planLayout(snap, m.width, m.height)
	v := tea.NewView(m.renderer.render(plan, snap))
	v.AltScreen = true
	if plan.cursor != nil && snap.Mode == session.ModeTextEntry {
		v.Cursor = tea.NewCursor(plan.cursor.x, plan.cursor.y)
	}
	return v
}

// run turns a machine request into the command that performs it.
func (m Model) run(req session.Request) tea.Cmd {
	switch req.Kind {
	case session.RequestQuit:
		return tea.Quit
	case session.RequestCopyLink:
		svc, write, logger := m.svc, m.writeClip, m.logger
		return func() tea.Msg {
			url := svc.TaskURL(req.TaskID)
			if url == "" {
				return resultMsg{result: session.Result{Request: req, Err: errNoTaskURL}}
			}
			err := write(url)
			if err != nil {
				logger.Warn("copy task link failed", "task_id", req.TaskID, "err", err)
			}
			return resultMsg{result: session.Result{Request: req, Err: err}}
		}
	}
	if !req.Remote() {
		return nil
	}
	svc, logger := m.svc, m.logger
	ctx, timeout := m.ctx, m.timeout
	return func() tea.Msg {
		runCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		res := session.Execute(runCtx, svc, req)
		if res.Err != nil {
			logger.Debug("request failed", "kind", req.Kind.String(), "err", res.Err)
		}
		return resultMsg{result: res}
	}
}

// discardLogger drops every event.
type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}
