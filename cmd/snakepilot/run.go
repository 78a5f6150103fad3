package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakepilot/internal/config"
	"github.com/vovakirdan/snakepilot/internal/games/snake"
	"github.com/vovakirdan/snakepilot/internal/planner"
	"github.com/vovakirdan/snakepilot/internal/platform/headless"
	"github.com/vovakirdan/snakepilot/internal/spectate"
	"github.com/vovakirdan/snakepilot/internal/storage"
	"github.com/vovakirdan/snakepilot/internal/trace"
)

var (
	flagProvider string
	flagHTTP     string
	flagTrace    string
	flagWatch    bool
	flagMaxTicks int
	flagLinger   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one headless autopilot game",
	Long: `Play one game without a terminal UI. Every planner decision, fallback,
capture and the final result are logged to stderr, and the run is saved to
the run database.

Optional outputs:
  --http  - Serve the spectator API (state, scores, board image, websocket)
  --trace - Write one Parquet row per tick when the run ends
  --watch - Reload tick and planning cadence when the --config file changes

Examples:
  snakepilot run
  snakepilot run --provider greedy --max-ticks 500
  snakepilot run --provider anthropic --http :8090 --linger
  snakepilot run --config ./snakepilot.yaml --watch --trace run.parquet`,
	Run: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagProvider, "provider", "", "Planner provider (default from config)")
	runCmd.Flags().StringVar(&flagHTTP, "http", "", "Spectator API address, e.g. :8090 (disabled if empty)")
	runCmd.Flags().StringVar(&flagTrace, "trace", "", "Write a Parquet tick trace to this path")
	runCmd.Flags().BoolVar(&flagWatch, "watch", false, "Reload --config on change")
	runCmd.Flags().IntVar(&flagMaxTicks, "max-ticks", 0, "Stop after this many ticks (0 = until game over)")
	runCmd.Flags().BoolVar(&flagLinger, "linger", false, "Keep the spectator API up after the game ends")
}

func runRun(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()
	logger := newLogger(os.Stderr)

	provider := flagProvider
	if provider == "" {
		provider = cfg.Planner.Provider
	}

	p, err := planner.New(cfg, provider, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'snakepilot providers' to see available providers.")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Warn("could not open run database", "error", err)
		store = nil
	} else {
		defer store.Close()
	}

	runner := headless.New(p, headless.Options{
		Provider:  provider,
		Board:     snake.BoardFromConfig(cfg.Board),
		Tick:      cfg.TickFor(provider),
		PlanEvery: cfg.Loop.PlanEvery,
		Seed:      flagSeed,
		MaxTicks:  flagMaxTicks,
	}, logger)
	if store != nil {
		runner.WithStore(store)
	}

	var recorder *trace.Recorder
	if flagTrace != "" {
		recorder = trace.NewRecorder(provider)
		runner.WithTrace(recorder)
	}

	serverDone := make(chan error, 1)
	serverCtx, stopServer := context.WithCancel(ctx)
	defer stopServer()
	if flagHTTP != "" {
		hub := spectate.NewHub()
		runner.WithHub(hub)
		var runs spectate.RunSource
		if store != nil {
			runs = store
		}
		srv := spectate.NewServer(hub, runs, logger.With("component", "spectate"))
		go func() {
			err := srv.ListenAndServe(serverCtx, flagHTTP)
			if err != nil {
				logger.Error("spectator API failed", "error", err)
			}
			serverDone <- err
		}()
	} else {
		close(serverDone)
	}

	if flagWatch {
		runner.WithUpdates(watchConfig(ctx, logger))
	}

	run, err := runner.Run(ctx)
	if err != nil {
		logger.Error("could not save run", "error", err)
	}

	if recorder != nil {
		if err := recorder.WriteFile(flagTrace); err != nil {
			logger.Error("could not write trace", "error", err)
		} else {
			logger.Info("trace written", "path", flagTrace, "rows", recorder.Len())
		}
	}

	fmt.Printf("Final score: %d\n", run.Score)
	if run.Decisions > 0 {
		fmt.Printf("AI success rate: %.1f%% (%d/%d decisions, %d fallbacks)\n",
			run.SuccessRate(), run.Successful, run.Decisions, run.Fallbacks)
	}

	if flagHTTP != "" && flagLinger && ctx.Err() == nil {
		logger.Info("game over; spectator API stays up until interrupted", "addr", flagHTTP)
		<-ctx.Done()
	}
	stopServer()
	if err := <-serverDone; err != nil {
		os.Exit(1)
	}
}

// watchConfig reloads --config on change and forwards each valid config.
func watchConfig(ctx context.Context, logger *log.Logger) <-chan config.Config {
	updates := make(chan config.Config, 1)
	if flagConfig == "" {
		logger.Warn("--watch needs --config; live reload disabled")
		return updates
	}

	go func() {
		err := config.Watch(ctx, flagConfig, logger, func(cfg config.Config) {
			preset, _ := config.ParseSpeedPreset(flagSpeed)
			config.ApplySpeedPreset(&cfg, preset)
			select {
			case updates <- cfg:
			default:
				// Replace an update the runner has not picked up yet.
				select {
				case <-updates:
				default:
				}
				updates <- cfg
			}
		})
		if err != nil {
			logger.Error("config watch stopped", "error", err)
		}
	}()
	return updates
}
