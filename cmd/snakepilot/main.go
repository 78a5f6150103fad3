// snakepilot is a terminal snake game that can be steered by a remote
// language model, a local greedy planner, or the keyboard.
//
// Usage:
//
//	snakepilot play              - Interactive menu: pick a pilot and play
//	snakepilot run               - Headless autopilot run with decision logging
//	snakepilot scores [provider] - Show the best runs
//	snakepilot providers         - List planner providers
//	snakepilot serve             - Start SSH server for remote play
//
// Global flags:
//
//	--config <path>    - Config file (default: ~/.snakepilot/config.yaml)
//	--speed <preset>   - Speed preset: easy, normal, hard, fixed
//	--seed <value>     - RNG seed for reproducible food placement
//	--db <path>        - Run database path (default from config)
//	--log-level <lvl>  - debug, info, warn, error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakepilot/internal/config"

	// Import providers to register them
	_ "github.com/vovakirdan/snakepilot/internal/providers/anthropic"
	_ "github.com/vovakirdan/snakepilot/internal/providers/openai"
)

var (
	// Global flags
	flagConfig   string
	flagSpeed    string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snakepilot",
	Short: "Snake in your terminal, steered by you or a language model",
	Long: `snakepilot plays snake in the terminal. The snake can be steered with
the keyboard, by a local greedy planner, or by a remote text-completion model
that plans several moves at a time. When the model fails, a safe fallback
move keeps the snake away from the walls.

Available commands:
  play       - Interactive pilot menu and game
  run        - Headless autopilot run that logs every decision
  scores     - View the best runs
  providers  - List planner providers
  serve      - Start SSH server for remote play

Examples:
  snakepilot play
  snakepilot run --provider anthropic --http :8090
  snakepilot run --provider greedy --trace run.parquet
  snakepilot scores openai
  snakepilot serve --ssh :2222`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagSpeed, "speed", "", "Speed preset: easy, normal, hard, fixed")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads .env files and the config, then applies global flags.
func loadConfig() (config.Config, error) {
	if err := config.LoadEnv(); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}

	preset, err := config.ParseSpeedPreset(flagSpeed)
	if err != nil {
		return config.Config{}, err
	}
	config.ApplySpeedPreset(&cfg, preset)

	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	return cfg, nil
}

// mustLoadConfig loads the config or exits.
func mustLoadConfig() config.Config {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the application logger writing to w.
func newLogger(w io.Writer) *log.Logger {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "snakepilot",
		Level:           level,
	})
}
