package ui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misetui/internal/app"
	"misetui/internal/config"
	"misetui/internal/gateway"
	"misetui/internal/model"
)

type stubGateway struct {
	gateway.Gateway
}

func newTestModel() *Model {
	cfg := config.DefaultConfig("")
	ctrl := app.New(cfg, "/work")
	disp := app.NewDispatcher(stubGateway{}, cfg, "")
	return NewModel(context.Background(), ctrl, disp)
}

func TestModelRendersLoadedTools(t *testing.T) {
	m := newTestModel()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m.Update(app.ToolsLoaded{Tools: []model.InstalledTool{
		{Name: "node", Version: "20.1.0", Active: true, Installed: true},
	}})
	m.Update(app.OutdatedLoaded{Tools: []model.OutdatedTool{
		{Name: "node", Current: "20.1.0", Latest: "22.0.0"},
	}})

	view := m.View()
	assert.Contains(t, view, "node")
	assert.Contains(t, view, "↑22.0.0")
	assert.Contains(t, view, "Tools")
}

func TestModelQuitKey(t *testing.T) {
	m := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModelQuitClosesPopupFirst(t *testing.T) {
	m := newTestModel()
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	require.IsType(t, &app.HelpPopup{}, m.State().Popup)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.Nil(t, cmd)
	assert.Nil(t, m.State().Popup)
}

func TestModelForceQuit(t *testing.T) {
	m := newTestModel()
	m.State().Popup = &app.HelpPopup{}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelTickKeepsTicking(t *testing.T) {
	m := newTestModel()
	before := m.State().Spinner
	_, cmd := m.Update(TickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Equal(t, (before+1)%app.SpinnerFrames, m.State().Spinner)
}

func TestModelMouseSelectsTab(t *testing.T) {
	m := newTestModel()
	m.Update(tea.MouseMsg{X: 2, Y: 6, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, app.TabRegistry, m.State().Tab)
}

func TestRenderMatches(t *testing.T) {
	s := DefaultStyles()
	out := renderMatches("python", []int{0, 1}, s.Text, s.Match)
	assert.Contains(t, out, "thon")
	assert.Equal(t, 6, len([]rune(stripped(out))))
}

func TestTruncateAndWidths(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))

	tbl := table{
		headers: []string{"Name", "Description"},
		rows:    [][]cell{plain("node", "JavaScript runtime built on V8 with a long description")},
	}
	widths := columnWidths(tbl, 30)
	assert.LessOrEqual(t, widths[0]+widths[1]+1, 30)
	assert.GreaterOrEqual(t, widths[0], 4)
}

func TestWindowStart(t *testing.T) {
	assert.Equal(t, 0, windowStart(3, 5, 10))
	assert.Equal(t, 0, windowStart(4, 100, 10))
	assert.Equal(t, 45, windowStart(50, 100, 10))
	assert.Equal(t, 90, windowStart(99, 100, 10))
}

// stripped removes ANSI escape sequences.
func stripped(s string) string {
	var out []rune
	esc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			esc = true
		case esc && (r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'):
			esc = false
		case !esc:
			out = append(out, r)
		}
	}
	return string(out)
}
