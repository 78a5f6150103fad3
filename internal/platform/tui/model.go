package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snakepilot/internal/core"
	"github.com/vovakirdan/snakepilot/internal/games/snake"
	"github.com/vovakirdan/snakepilot/internal/storage"
)

// Model is the Bubble Tea model for one snake game.
//
// The game and screen are only touched by Update while no step is in flight.
// Steps run as commands so a slow planner does not block key handling.
type Model struct {
	id         uint64
	ctx        context.Context
	cancel     context.CancelFunc
	game       *snake.Game
	pilot      string
	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	keyMapper  *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState
	frame      string // Last rendered screen, shown while a step runs
	stepping   bool
	pendingW   int
	pendingH   int
	quitting   bool
	backToMenu bool
	scoreSaved bool
}

// NewModel creates a model for game. pilot names who steers and is stored
// with the finished run.
func NewModel(game *snake.Game, pilot string, store *storage.Store, cfg core.RuntimeConfig) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.Tick <= 0 {
		cfg.Tick = core.DefaultConfig().Tick
	}
	ctx, cancel := context.WithCancel(context.Background())

	game.Reset(cfg)
	return Model{
		id:         modelIDs.Add(1),
		ctx:        ctx,
		cancel:     cancel,
		game:       game,
		pilot:      pilot,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:      store,
		config:     cfg,
		keyMapper:  NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		gameState:  game.State(),
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.id, m.config.Tick)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg.Width, msg.Height)

	case TickMsg:
		if msg.ID == m.id {
			return m.handleTick()
		}

	case stepDoneMsg:
		if msg.id == m.id {
			return m.handleStepDone(msg)
		}
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" && !m.stepping {
		m.saveScreenshot()
		return m, nil
	}

	if m.keyMapper.MapKeyToFrame(msg, &m.inputFrame) {
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}

	if m.keyMapper.MapKeyToMenuAction(msg) == MenuActionBack && (m.gameState.GameOver || m.gameState.Paused) {
		m.backToMenu = true
		m.cancel()
	}

	return m, nil
}

// handleResize records the new size, applying it once no step is running.
func (m Model) handleResize(width, height int) (tea.Model, tea.Cmd) {
	m.config.ScreenW = width
	m.config.ScreenH = height
	if m.stepping {
		m.pendingW, m.pendingH = width, height
		return m, nil
	}
	m.screen.Resize(width, height)
	m.game.Resize(width, height)
	return m, nil
}

// handleTick snapshots the input and runs one step off the update loop.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.stepping || m.quitting || m.backToMenu {
		return m, nil
	}

	m.frame = m.render()
	m.stepping = true

	in := m.inputFrame
	m.inputFrame.Clear()

	id, game, screen, ctx := m.id, m.game, m.screen, m.ctx
	return m, func() tea.Msg {
		res := game.Step(ctx, in)
		game.Render(screen)
		return stepDoneMsg{id: id, result: res, frame: RenderScreen(screen)}
	}
}

// handleStepDone records the step result and schedules the next tick.
func (m Model) handleStepDone(msg stepDoneMsg) (tea.Model, tea.Cmd) {
	m.stepping = false
	m.frame = msg.frame

	if m.gameState.GameOver && !msg.result.State.GameOver {
		m.scoreSaved = false
	}
	m.gameState = msg.result.State

	if m.pendingW > 0 {
		m.screen.Resize(m.pendingW, m.pendingH)
		m.game.Resize(m.pendingW, m.pendingH)
		m.pendingW, m.pendingH = 0, 0
	}

	if m.gameState.GameOver && !m.scoreSaved {
		m.saveRun()
		m.scoreSaved = true
	}

	if m.quitting || m.backToMenu {
		return m, nil
	}
	return m, tickCmd(m.id, m.config.Tick)
}

// saveRun stores the finished game. Best effort; the session continues regardless.
func (m Model) saveRun() {
	if m.store == nil {
		return
	}
	snap := m.game.Snapshot()
	stats := m.game.Stats()
	//nolint:errcheck // Best-effort save
	m.store.SaveRun(storage.Run{
		Provider:   m.pilot,
		Score:      snap.Score,
		Cause:      string(snap.Cause),
		Ticks:      int(snap.Tick),
		Decisions:  stats.Decisions,
		Successful: stats.Successful,
		Fallbacks:  stats.Fallbacks,
	})
}

func (m Model) render() string {
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// saveScreenshot saves the current screen to a file.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".snakepilot", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("snake_%s_%s.txt", m.pilot, timestamp))

	//nolint:errcheck // Best-effort save
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.stepping {
		return m.frame
	}
	return m.render()
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// State returns the last known game state.
func (m Model) State() core.GameState {
	return m.gameState
}

// Run starts the Bubble Tea program for a single game.
func Run(game *snake.Game, pilot string, store *storage.Store, cfg core.RuntimeConfig) error {
	model := NewModel(game, pilot, store, cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
