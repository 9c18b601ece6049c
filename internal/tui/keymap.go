package tui

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/key"

	"github.com/hylla/vitui/internal/session"
)

// keyMap holds the fixed key bindings for every interaction mode.
type keyMap struct {
	forceQuit key.Binding

	quit       key.Binding
	moveDown   key.Binding
	moveUp     key.Binding
	nextPage   key.Binding
	prevPage   key.Binding
	toggleDone key.Binding
	taskInfo   key.Binding
	addTask    key.Binding
	reload     key.Binding
	copyLink   key.Binding

	insert      key.Binding
	switchField key.Binding
	submit      key.Binding
	cancel      key.Binding

	exitInsert key.Binding
	erase      key.Binding
	newline    key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		forceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		moveDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		moveUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		nextPage:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
		prevPage:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous page")),
		toggleDone: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle done")),
		taskInfo:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view details")),
		addTask:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		copyLink:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),

		insert:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert")),
		switchField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch input")),
		submit:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		cancel:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		exitInsert: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "exit insert mode")),
		erase:      key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "erase")),
		newline:    key.NewBinding(key.WithKeys("enter", "shift+enter"), key.WithHelp("enter", "newline")),
	}
}

// bindingSet adapts a flat binding list to the help bubble.
type bindingSet []key.Binding

// ShortHelp handles short help.
func (s bindingSet) ShortHelp() []key.Binding {
	return s
}

// FullHelp handles full help.
func (s bindingSet) FullHelp() [][]key.Binding {
	return [][]key.Binding{s}
}

// legend returns the bindings shown in the footer for one mode.
func (k keyMap) legend(mode session.Mode) bindingSet {
	switch mode {
	case session.ModeComposing:
		return bindingSet{k.insert, k.switchField, k.submit, k.cancel}
	case session.ModeTextEntry:
		return bindingSet{k.exitInsert}
	default:
		return bindingSet{
			k.quit, k.moveDown, k.moveUp, k.nextPage, k.prevPage,
			k.toggleDone, k.taskInfo, k.addTask, k.reload, k.copyLink,
		}
	}
}

// translate maps a physical key press to a logical action for the active mode.
func (k keyMap) translate(mode session.Mode, msg tea.KeyPressMsg) session.Action {
	if key.Matches(msg, k.forceQuit) {
		return session.Action{Kind: session.ActionQuit}
	}
	switch mode {
	case session.ModeBrowsing:
		return k.translateBrowsing(msg)
	case session.ModeComposing:
		return k.translateComposing(msg)
	case session.ModeTextEntry:
		return k.translateTextEntry(msg)
	default:
		return session.Action{}
	}
}

func (k keyMap) translateBrowsing(msg tea.KeyPressMsg) session.Action {
	switch {
	case key.Matches(msg, k.quit):
		return session.Action{Kind: session.ActionQuit}
	case key.Matches(msg, k.moveDown):
		return session.Action{Kind: session.ActionMoveDown}
	case key.Matches(msg, k.moveUp):
		return session.Action{Kind: session.ActionMoveUp}
	case key.Matches(msg, k.nextPage):
		return session.Action{Kind: session.ActionNextPage}
	case key.Matches(msg, k.prevPage):
		return session.Action{Kind: session.ActionPreviousPage}
	case key.Matches(msg, k.toggleDone):
		return session.Action{Kind: session.ActionToggleFilter}
	case key.Matches(msg, k.taskInfo):
		return session.Action{Kind: session.ActionInspect}
	case key.Matches(msg, k.addTask):
		return session.Action{Kind: session.ActionBeginCreate}
	case key.Matches(msg, k.reload):
		return session.Action{Kind: session.ActionRefresh}
	case key.Matches(msg, k.copyLink):
		return session.Action{Kind: session.ActionCopyLink}
	default:
		return session.Action{}
	}
}

func (k keyMap) translateComposing(msg tea.KeyPressMsg) session.Action {
	switch {
	case key.Matches(msg, k.insert):
		return session.Action{Kind: session.ActionEnterTextMode}
	case key.Matches(msg, k.switchField):
		return session.Action{Kind: session.ActionSwitchField}
	case key.Matches(msg, k.submit):
		return session.Action{Kind: session.ActionSubmit}
	case key.Matches(msg, k.cancel):
		return session.Action{Kind: session.ActionCancel}
	default:
		return session.Action{}
	}
}

func (k keyMap) translateTextEntry(msg tea.KeyPressMsg) session.Action {
	switch {
	case key.Matches(msg, k.exitInsert):
		return session.Action{Kind: session.ActionExitTextMode}
	case key.Matches(msg, k.erase):
		return session.Action{Kind: session.ActionEraseBackward}
	case key.Matches(msg, k.newline):
		return session.Action{Kind: session.ActionInsertNewline}
	case msg.Text != "":
		return session.Action{Kind: session.ActionInsertText, Text: msg.Text}
	default:
		return session.Action{}
	}
}
