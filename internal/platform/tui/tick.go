// Package tui provides the Bubble Tea integration for snakepilot.
// It handles the terminal UI loop, input mapping, and the session flow.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snakepilot/internal/games/snake"
)

// modelIDs hands out ids so messages from a finished game never reach its successor.
var modelIDs atomic.Uint64

// TickMsg is sent to trigger a game simulation tick.
type TickMsg struct {
	ID   uint64 // Model the tick belongs to
	Time time.Time
}

// tickCmd returns a Bubble Tea command that sends a tick for model id after interval.
func tickCmd(id uint64, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{ID: id, Time: t}
	})
}

// stepDoneMsg carries the outcome of a step run off the update loop.
// frame is the screen rendered right after the step.
type stepDoneMsg struct {
	id     uint64
	result snake.StepResult
	frame  string
}
