package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickInterval drives status expiry and the spinner.
const TickInterval = 250 * time.Millisecond

// TickMsg is sent periodically to advance timers.
type TickMsg time.Time

// TickCmd returns a command that sends TickMsg after interval.
func TickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
