// Package tui implements the terminal list screen for taskdeck.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskdeck/taskdeck/internal/controller"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewList view = iota
	viewConfirmDelete
	viewDetail
)

const keyEsc = "esc"

// RebuildFunc recreates the controller after a config change.
type RebuildFunc func() (*controller.Controller, error)

// Model is the top-level bubbletea model for the task list.
type Model struct {
	ctrl    *controller.Controller
	rebuild RebuildFunc
	timeout time.Duration

	search    textinput.Model
	spin      spinner.Model
	searching bool

	view     view
	width    int
	height   int
	selected int // row index within the visible page
	detail   *task.Task
	notice   controller.Notice
}

// NewModel creates a Model over the given controller. timeout bounds
// each network call issued from the UI.
func NewModel(ctrl *controller.Controller, timeout time.Duration, rebuild RebuildFunc) *Model {
	search := textinput.New()
	search.Placeholder = "search title, description, assignee"
	search.Prompt = "/ "
	search.CharLimit = 120

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = spinnerStyle

	return &Model{
		ctrl:    ctrl,
		rebuild: rebuild,
		timeout: timeout,
		search:  search,
		spin:    spin,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadCmd(m.ctrl.Initialize()))
}

// --- Messages ---

// ReloadMsg is sent by the config watcher to rebuild the controller
// against the updated configuration.
type ReloadMsg struct{}

type loadedMsg struct {
	tok   store.LoadToken
	tasks []task.Task
	err   error
}

type deletedMsg struct {
	target task.Task
	err    error
}

// loadCmd fetches the collection off-loop; the result carries the load
// token so stale responses are discarded by the store.
func (m *Model) loadCmd(tok store.LoadToken) tea.Cmd {
	ctrl := m.ctrl
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		tasks, err := ctrl.Fetch(ctx)
		return loadedMsg{tok: tok, tasks: tasks, err: err}
	}
}

func (m *Model) deleteCmd(target task.Task) tea.Cmd {
	ctrl := m.ctrl
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := ctrl.Delete(ctx, target.ID)
		return deletedMsg{target: target, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.ctrl.FinishLoad(msg.tok, msg.tasks, msg.err)
		m.clampSelected()
		return m, nil
	case deletedMsg:
		m.ctrl.FinishDelete(msg.target, msg.err)
		if n, ok := m.ctrl.TakeNotice(); ok {
			m.notice = n
		}
		m.view = viewList
		m.clampSelected()
		return m, nil
	case ReloadMsg:
		return m.handleReload()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleReload swaps in a controller built from the updated config and
// starts a fresh load.
func (m *Model) handleReload() (tea.Model, tea.Cmd) {
	if m.rebuild == nil {
		return m, nil
	}
	ctrl, err := m.rebuild()
	if err != nil {
		m.notice = controller.Notice{Text: "Config reload failed: " + err.Error(), IsErr: true}
		return m, nil
	}
	m.ctrl = ctrl
	m.ctrl.SetSearchTerm(m.search.Value())
	return m, m.loadCmd(m.ctrl.Initialize())
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys.
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case viewConfirmDelete:
		return m.handleDeleteKey(msg)
	case viewDetail:
		return m.handleDetailKey(msg)
	default:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleListKey(msg)
	}
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = controller.Notice{}

	switch msg.String() {
	case "q", keyEsc:
		if m.search.Value() != "" && msg.String() == keyEsc {
			m.search.SetValue("")
			m.ctrl.SetSearchTerm("")
			m.selected = 0
			return m, nil
		}
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "r":
		return m, m.loadCmd(m.ctrl.Refresh())
	case "j", "down":
		vs := m.ctrl.ViewState()
		if m.selected < len(vs.Tasks)-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	case "n", "right":
		vs := m.ctrl.ViewState()
		if m.ctrl.GoToPage(vs.Page + 1) {
			m.selected = 0
		}
	case "p", "left":
		vs := m.ctrl.ViewState()
		if m.ctrl.GoToPage(vs.Page - 1) {
			m.selected = 0
		}
	case "g":
		m.selected = 0
	case "d":
		if t := m.selectedTask(); t != nil {
			if m.ctrl.RequestDelete(*t) {
				m.view = viewConfirmDelete
			}
		}
	case "enter":
		if t := m.selectedTask(); t != nil {
			m.detail = t
			m.view = viewDetail
		}
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.ctrl.SetSearchTerm("")
		m.selected = 0
		return m, nil
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	// Filtering is local; apply it on every keystroke.
	m.ctrl.SetSearchTerm(m.search.Value())
	m.selected = 0
	return m, cmd
}

func (m *Model) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		target, ok := m.ctrl.StartDelete()
		if !ok {
			m.view = viewList
			return m, nil
		}
		return m, m.deleteCmd(target)
	case "n", "N", keyEsc, "q":
		m.ctrl.CancelDelete()
		m.view = viewList
	}
	return m, nil
}

func (m *Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEsc, "q", "enter":
		m.detail = nil
		m.view = viewList
	}
	return m, nil
}

func (m *Model) selectedTask() *task.Task {
	vs := m.ctrl.ViewState()
	if m.selected >= 0 && m.selected < len(vs.Tasks) {
		t := vs.Tasks[m.selected]
		return &t
	}
	return nil
}

func (m *Model) clampSelected() {
	vs := m.ctrl.ViewState()
	if m.selected >= len(vs.Tasks) {
		m.selected = len(vs.Tasks) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}
