// Package headless drives a game without a terminal UI: one goroutine owns
// the game and advances it on a ticker, logging every planner decision.
package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snakepilot/internal/config"
	"github.com/vovakirdan/snakepilot/internal/core"
	"github.com/vovakirdan/snakepilot/internal/games/snake"
	"github.com/vovakirdan/snakepilot/internal/spectate"
	"github.com/vovakirdan/snakepilot/internal/storage"
	"github.com/vovakirdan/snakepilot/internal/trace"
)

// Options configures a headless run.
type Options struct {
	Provider  string // Recorded with the run
	Board     snake.Board
	Tick      time.Duration
	PlanEvery int
	Seed      int64 // Zero draws one from the clock
	MaxTicks  int // Zero runs until game over
}

// Runner advances one game until it ends or the context is cancelled.
type Runner struct {
	opts    Options
	game    *snake.Game
	planner snake.Planner
	logger  *log.Logger

	hub      *spectate.Hub
	recorder *trace.Recorder
	store    *storage.Store
	updates  <-chan config.Config
}

// New creates a runner. The planner steers from the first tick.
func New(planner snake.Planner, opts Options, logger *log.Logger) *Runner {
	if opts.Tick <= 0 {
		opts.Tick = 100 * time.Millisecond
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Runner{
		opts:    opts,
		planner: planner,
		logger:  logger,
		game:    snake.New(opts.Board, snake.Options{PlanEvery: opts.PlanEvery, Autopilot: true}, planner),
	}
}

// WithHub publishes every tick to hub.
func (r *Runner) WithHub(hub *spectate.Hub) *Runner {
	r.hub = hub
	return r
}

// WithTrace records every tick into rec.
func (r *Runner) WithTrace(rec *trace.Recorder) *Runner {
	r.recorder = rec
	return r
}

// WithStore saves the finished run to store.
func (r *Runner) WithStore(store *storage.Store) *Runner {
	r.store = store
	return r
}

// WithUpdates applies tick and cadence changes received on ch between ticks.
func (r *Runner) WithUpdates(ch <-chan config.Config) *Runner {
	r.updates = ch
	return r
}

// Seed is the seed the run plays with; pass it to --seed to replay the run.
func (r *Runner) Seed() int64 {
	return r.opts.Seed
}

// Game exposes the game for inspection.
func (r *Runner) Game() *snake.Game {
	return r.game
}

// Run plays until game over, MaxTicks or ctx cancellation and returns the
// run summary. Cancellation is not an error; the partial run is returned.
func (r *Runner) Run(ctx context.Context) (storage.Run, error) {
	r.game.Reset(core.RuntimeConfig{Seed: r.opts.Seed})
	r.publish()

	r.logger.Info("game started",
		"provider", r.opts.Provider,
		"seed", r.opts.Seed,
		"tick", r.opts.Tick,
		"plan_every", r.opts.PlanEvery,
	)

	ticker := time.NewTicker(r.opts.Tick)
	defer ticker.Stop()

	ticks := 0
loop:
	for {
		select {
		case <-ctx.Done():
			r.logger.Warn("run interrupted", "ticks", ticks)
			break loop
		case cfg := <-r.updates:
			r.apply(cfg, ticker)
		case <-ticker.C:
			res := r.game.Step(ctx, core.NewInputFrame())
			ticks++
			r.logEvents(res)
			r.record(res)
			r.publish()

			if res.State.GameOver {
				break loop
			}
			if r.opts.MaxTicks > 0 && ticks >= r.opts.MaxTicks {
				r.logger.Info("tick limit reached", "ticks", ticks)
				break loop
			}
		}
	}

	return r.finish(ticks)
}

// apply takes the live-reloadable parts of a new config.
func (r *Runner) apply(cfg config.Config, ticker *time.Ticker) {
	tick := cfg.TickFor(r.opts.Provider)
	if tick != r.opts.Tick && tick > 0 {
		r.opts.Tick = tick
		ticker.Reset(tick)
	}
	if cfg.Loop.PlanEvery != r.opts.PlanEvery {
		r.opts.PlanEvery = cfg.Loop.PlanEvery
		r.game.SetPlanEvery(cfg.Loop.PlanEvery)
	}
	r.logger.Info("config reloaded", "tick", r.opts.Tick, "plan_every", r.opts.PlanEvery)
}

func (r *Runner) logEvents(res snake.StepResult) {
	snap := r.game.Snapshot()
	for _, ev := range res.Events {
		switch ev.Kind {
		case snake.EventPlanned:
			r.logger.Debug("decision", "tick", snap.Tick, "move", ev.Dir, "source", sourceOf(res, r.planner))
		case snake.EventFallback:
			r.logger.Warn("using fallback move", "tick", snap.Tick, "move", ev.Dir)
		case snake.EventRejected:
			r.logger.Debug("reversal ignored", "tick", snap.Tick, "move", ev.Dir, "heading", snap.Heading)
		case snake.EventAte:
			r.logger.Info("Food eaten!", "score", ev.Score)
		case snake.EventGameOver:
			r.logger.Info(ev.Cause.Message(), "score", ev.Score)
		}
	}
}

func (r *Runner) record(res snake.StepResult) {
	if r.recorder == nil {
		return
	}
	r.recorder.Record(r.game.Snapshot(), sourceOf(res, r.planner))
}

func (r *Runner) publish() {
	if r.hub == nil {
		return
	}
	r.hub.Publish(spectate.Frame{
		Provider: r.opts.Provider,
		Snapshot: r.game.Snapshot(),
		Stats:    r.game.Stats(),
	})
}

func (r *Runner) finish(ticks int) (storage.Run, error) {
	snap := r.game.Snapshot()
	stats := r.game.Stats()
	run := storage.Run{
		Provider:   r.opts.Provider,
		Score:      snap.Score,
		Cause:      string(snap.Cause),
		Ticks:      ticks,
		Decisions:  stats.Decisions,
		Successful: stats.Successful,
		Fallbacks:  stats.Fallbacks,
	}

	r.logger.Info("run finished",
		"score", run.Score,
		"decisions", run.Decisions,
		"success_rate", fmt.Sprintf("%.1f%%", stats.SuccessRate()),
		"fallbacks", run.Fallbacks,
	)
	if r.hub != nil && (r.hub.Dropped() > 0 || r.hub.Failed() > 0) {
		r.logger.Warn("spectator frames lost", "dropped", r.hub.Dropped(), "unencodable", r.hub.Failed())
	}

	if r.store != nil {
		id, err := r.store.SaveRun(run)
		if err != nil {
			return run, fmt.Errorf("headless: %w", err)
		}
		run.ID = id
	}
	return run, nil
}

// queueReporter is implemented by planners that buffer moves.
type queueReporter interface {
	FromQueue() bool
}

// sourceOf names where this tick's heading came from for logs and traces.
func sourceOf(res snake.StepResult, p snake.Planner) string {
	if res.Source == snake.SourcePlanner {
		if q, ok := p.(queueReporter); ok && q.FromQueue() {
			return trace.SourceQueue
		}
	}
	return string(res.Source)
}
