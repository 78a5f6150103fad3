package headless

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snakepilot/internal/config"
	"github.com/vovakirdan/snakepilot/internal/games/snake"
	"github.com/vovakirdan/snakepilot/internal/planner"
	"github.com/vovakirdan/snakepilot/internal/registry"
	"github.com/vovakirdan/snakepilot/internal/spectate"
	"github.com/vovakirdan/snakepilot/internal/storage"
	"github.com/vovakirdan/snakepilot/internal/trace"
)

type cannedProvider struct{ text string }

func (p cannedProvider) Complete(context.Context, registry.Request) (string, error) {
	return p.text, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestRunUntilWall(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer store.Close()

	hub := spectate.NewHub()
	rec := trace.NewRecorder("canned")
	p := planner.NewBuffered(cannedProvider{text: "RIGHT RIGHT RIGHT RIGHT"}, planner.Options{PlanLength: 10, FallbackMargin: 20}, quietLogger())

	r := New(p, Options{
		Provider:  "canned",
		Board:     snake.DefaultBoard(),
		Tick:      time.Millisecond,
		PlanEvery: 1,
		Seed:      1,
	}, quietLogger()).WithHub(hub).WithTrace(rec).WithStore(store)

	run, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if run.Cause != string(snake.CauseWall) || run.Ticks != 15 {
		t.Errorf("run = %+v, want wall after 15 ticks", run)
	}
	if run.ID == 0 {
		t.Error("run not saved")
	}
	if run.Decisions != 15 || run.Successful != 15 {
		t.Errorf("decisions = %d/%d, want 15/15", run.Successful, run.Decisions)
	}

	frame, ok := hub.Latest()
	if !ok || frame.Snapshot.State != snake.StateGameOver {
		t.Errorf("hub latest = %+v, %v", frame.Snapshot, ok)
	}

	rows := rec.Rows()
	if len(rows) != 15 {
		t.Fatalf("trace rows = %d, want 15", len(rows))
	}
	if rows[0].Source != "planner" || rows[1].Source != trace.SourceQueue {
		t.Errorf("sources = %q, %q; want planner, queue", rows[0].Source, rows[1].Source)
	}

	top, _ := store.TopRuns("canned", 1)
	if len(top) != 1 || top[0].Ticks != 15 {
		t.Errorf("stored runs = %+v", top)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(planner.NewGreedy(20), Options{
		Provider:  planner.GreedyName,
		Board:     snake.DefaultBoard(),
		Tick:      time.Millisecond,
		PlanEvery: 2,
		Seed:      4,
	}, quietLogger())

	time.AfterFunc(30*time.Millisecond, cancel)
	run, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Ticks == 0 {
		t.Error("expected some ticks before cancel")
	}
}

func TestRunMaxTicks(t *testing.T) {
	r := New(planner.NewGreedy(20), Options{
		Provider:  planner.GreedyName,
		Board:     snake.DefaultBoard(),
		Tick:      time.Millisecond,
		PlanEvery: 1,
		Seed:      2,
		MaxTicks:  10,
	}, quietLogger())

	run, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Ticks > 10 {
		t.Errorf("ticks = %d, want at most 10", run.Ticks)
	}
}

func TestNewResolvesSeed(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"unset", 0},
		{"explicit", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			r := New(planner.NewGreedy(20), Options{
				Provider:  planner.GreedyName,
				Board:     snake.DefaultBoard(),
				Tick:      time.Millisecond,
				PlanEvery: 1,
				Seed:      tt.seed,
				MaxTicks:  1,
			}, log.New(&logs))

			got := r.Seed()
			if got == 0 {
				t.Fatal("seed not resolved")
			}
			if tt.seed != 0 && got != tt.seed {
				t.Errorf("seed = %d, want %d", got, tt.seed)
			}

			if _, err := r.Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if want := fmt.Sprintf("seed=%d", got); !strings.Contains(logs.String(), want) {
				t.Errorf("logs missing %q:\n%s", want, logs.String())
			}
		})
	}
}

func TestNewUnsetSeedsDiffer(t *testing.T) {
	opts := Options{Board: snake.DefaultBoard(), Tick: time.Millisecond}
	a := New(planner.NewGreedy(20), opts, quietLogger())
	time.Sleep(time.Microsecond)
	b := New(planner.NewGreedy(20), opts, quietLogger())
	if a.Seed() == b.Seed() {
		t.Errorf("two unseeded runners share seed %d", a.Seed())
	}
}

func TestRunAppliesConfigUpdates(t *testing.T) {
	updates := make(chan config.Config, 1)
	cfg := config.Default()
	cfg.Loop.PlanEvery = 5
	cfg.Loop.Tick = 2 * time.Millisecond
	updates <- cfg

	r := New(planner.NewGreedy(20), Options{
		Provider:  planner.GreedyName,
		Board:     snake.DefaultBoard(),
		Tick:      time.Hour,
		PlanEvery: 1,
		Seed:      3,
		MaxTicks:  3,
	}, quietLogger()).WithUpdates(updates)

	done := make(chan storage.Run, 1)
	go func() {
		run, _ := r.Run(context.Background())
		done <- run
	}()

	select {
	case run := <-done:
		if run.Ticks != 3 {
			t.Errorf("ticks = %d, want 3", run.Ticks)
		}
		// Ticks 0 only: cadence 5 over 3 ticks.
		if run.Decisions != 1 {
			t.Errorf("decisions = %d, want 1", run.Decisions)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not pick up the faster tick")
	}
}
