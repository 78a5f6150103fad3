package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snakepilot/internal/config"
	"github.com/vovakirdan/snakepilot/internal/core"
	"github.com/vovakirdan/snakepilot/internal/platform/tui"
	"github.com/vovakirdan/snakepilot/internal/storage"
)

var flagPilot string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Pick a pilot and play",
	Long: `Start the interactive session: choose who steers, watch or play,
then return to the menu to try another pilot.

Controls:
  Arrows/WASD  - Steer (manual pilot)
  Space        - Toggle autopilot
  P            - Pause
  R            - Restart (after game over)
  Esc/B        - Back to menu (paused or game over)
  Tab          - Scores (in menu)
  Ctrl+S       - Save a screenshot
  Q/Ctrl+C     - Quit

Logs go to ~/.snakepilot/snakepilot.log so they do not disturb the screen.

Examples:
  snakepilot play
  snakepilot play --pilot greedy
  snakepilot play --pilot anthropic --speed easy`,
	Run: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPilot, "pilot", "", "Skip the menu and play with this pilot (manual, greedy or a provider)")
}

func runPlay(_ *cobra.Command, _ []string) {
	appCfg := mustLoadConfig()

	logOut, closeLog := openLogFile()
	defer closeLog()
	logger := newLogger(logOut)

	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW: width,
		ScreenH: height,
		Tick:    appCfg.Loop.Tick,
		Seed:    flagSeed,
	}

	store, err := storage.Open(appCfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open run database: %v\n", err)
		store = nil
	}

	newGame := tui.NewGameFactory(appCfg, logger)

	if flagPilot != "" {
		err = playPilot(newGame, appCfg, store, cfg)
	} else {
		err = tui.RunSession(tui.Pilots(true), newGame, appCfg, store, cfg)
	}

	if store != nil {
		store.Close()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// playPilot runs a single game with the pilot named by --pilot.
func playPilot(newGame tui.GameFactory, appCfg config.Config, store *storage.Store, cfg core.RuntimeConfig) error {
	game, err := newGame(flagPilot)
	if err != nil {
		return err
	}
	cfg.Tick = appCfg.TickFor(flagPilot)
	return tui.Run(game, flagPilot, store, cfg)
}

// openLogFile opens ~/.snakepilot/snakepilot.log for appending.
// Falls back to discarding logs when the file cannot be opened.
func openLogFile() (io.Writer, func()) {
	path, err := config.ExpandHome("~/.snakepilot/snakepilot.log")
	if err != nil {
		return io.Discard, func() {}
	}
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(filepath.Dir(path), 0o755)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { f.Close() }
}
