package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"misetui/internal/app"
	"misetui/internal/highlight"
	"misetui/internal/logging"
)

// Model adapts the controller to bubbletea. Every key press, mouse event and
// tick becomes an app.Action; commands returned by the controller run through
// the dispatcher and come back as actions.
type Model struct {
	ctrl *app.Controller
	disp *app.Dispatcher
	ctx  context.Context

	styles *Styles
	hl     *highlight.Highlighter
	help   *helpRenderer

	width  int
	height int
}

// NewModel creates the dashboard model.
func NewModel(ctx context.Context, ctrl *app.Controller, disp *app.Dispatcher) *Model {
	return &Model{
		ctrl:   ctrl,
		disp:   disp,
		ctx:    ctx,
		styles: DefaultStyles(),
		hl:     highlight.New(""),
		help:   newHelpRenderer(),
		width:  100,
		height: 30,
	}
}

// State exposes the dashboard state for rendering and tests.
func (m *Model) State() *app.State {
	return m.ctrl.State
}

// Init starts the initial load and the tick loop.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.disp.Batch(m.ctx, m.ctrl.Init()), TickCmd(TickInterval))
}

// Update handles bubbletea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		cmd := m.apply(app.Tick{})
		if m.ctrl.Quitting() {
			return m, cmd
		}
		return m, tea.Batch(cmd, TickCmd(TickInterval))

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceQuit) {
			logging.Debug("interrupted")
			return m, tea.Quit
		}
		return m, m.apply(actionsFor(m.ctrl.State, msg)...)

	case tea.MouseMsg:
		if a := mouseAction(msg); a != nil {
			return m, m.apply(a)
		}
		return m, nil

	case app.Action:
		return m, m.apply(msg)
	}
	return m, nil
}

// apply feeds actions to the controller in order and schedules the commands
// they produce.
func (m *Model) apply(actions ...app.Action) tea.Cmd {
	var cmds []app.Command
	for _, a := range actions {
		cmds = append(cmds, m.ctrl.Handle(a)...)
		if m.ctrl.Quitting() {
			return tea.Quit
		}
	}
	return m.disp.Batch(m.ctx, cmds)
}
