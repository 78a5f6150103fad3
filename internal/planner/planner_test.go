package planner

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/vovakirdan/snakepilot/internal/config"
	"github.com/vovakirdan/snakepilot/internal/games/snake"
	"github.com/vovakirdan/snakepilot/internal/registry"
)

// fakeProvider replays canned completions and records requests.
type fakeProvider struct {
	replies []string
	err     error
	reqs    []registry.Request
}

func (f *fakeProvider) Complete(_ context.Context, req registry.Request) (string, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

func startSnapshot() snake.Snapshot {
	return snake.Snapshot{
		Head:    snake.Position{X: 0, Y: 0},
		Body:    []snake.Position{{X: -20, Y: 0}, {X: -40, Y: 0}},
		Food:    snake.Position{X: 100, Y: -60},
		Heading: snake.DirRight,
		Bound:   295,
		Step:    20,
		State:   snake.StateRunning,
	}
}

func TestParseMoves(t *testing.T) {
	U, D, L, R := snake.DirUp, snake.DirDown, snake.DirLeft, snake.DirRight
	tests := []struct {
		name  string
		text  string
		limit int
		want  []snake.Direction
	}{
		{"mixed", "UP UP LEFT foo RIGHT", 10, []snake.Direction{U, U, L, R}},
		{"case and punctuation", "up, Down;\nleft. RIGHT!", 10, []snake.Direction{U, D, L, R}},
		{"substrings rejected", "UPWARD LEFTY DOWNS", 10, nil},
		{"capped", "UP UP UP UP", 2, []snake.Direction{U, U}},
		{"empty", "", 10, nil},
		{"no limit", "LEFT LEFT LEFT", 0, []snake.Direction{L, L, L}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMoves(tt.text, tt.limit)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ParseMoves(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestBufferedUsesQueueBeforeCallingProvider(t *testing.T) {
	fp := &fakeProvider{replies: []string{"UP UP LEFT foo RIGHT"}}
	b := NewBuffered(fp, Options{PlanLength: 10, FallbackMargin: 20}, nil)
	snap := startSnapshot()

	d, ok := b.Plan(context.Background(), snap)
	if !ok || d != snake.DirUp {
		t.Fatalf("Plan = %v, %v; want UP, true", d, ok)
	}
	want := []snake.Direction{snake.DirUp, snake.DirLeft, snake.DirRight}
	if got := b.Queued(); !slices.Equal(got, want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}

	for _, w := range want {
		d, ok := b.Plan(context.Background(), snap)
		if !ok || d != w {
			t.Errorf("Plan = %v, %v; want %v", d, ok, w)
		}
		if !b.FromQueue() {
			t.Error("expected answer from queue")
		}
	}
	if len(fp.reqs) != 1 {
		t.Errorf("provider calls = %d, want 1", len(fp.reqs))
	}
}

func TestBufferedRequest(t *testing.T) {
	fp := &fakeProvider{replies: []string{"DOWN"}}
	b := NewBuffered(fp, Options{PlanLength: 10, BodyPreview: 8, MaxTokens: 50, Temperature: 0.1}, nil)
	b.Plan(context.Background(), startSnapshot())

	req := fp.reqs[0]
	if !strings.Contains(req.System, "10 optimal moves") {
		t.Errorf("system prompt = %q", req.System)
	}
	if req.MaxTokens != 50 || req.Temperature != 0.1 {
		t.Errorf("request = %+v", req)
	}
	for _, want := range []string{"Snake head: (0, 0)", "Moving direction: RIGHT", "Food: (100, -60)", "Distance to food: 160", "(go RIGHT)", "(go DOWN)"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBufferedFailures(t *testing.T) {
	tests := []struct {
		name    string
		fp      *fakeProvider
		wantErr error
	}{
		{"transport", &fakeProvider{err: errors.New("connection refused")}, ErrTransport},
		{"no moves", &fakeProvider{replies: []string{"I think you should go north"}}, ErrNoMoves},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffered(tt.fp, Options{PlanLength: 10, FallbackMargin: 20}, nil)
			snap := startSnapshot()

			d, ok := b.Plan(context.Background(), snap)
			if ok {
				t.Fatalf("Plan = %v, true; want false", d)
			}
			if !errors.Is(b.Err(), tt.wantErr) {
				t.Errorf("Err() = %v, want %v", b.Err(), tt.wantErr)
			}

			fb := b.Fallback(snap)
			safe := []snake.Direction{snake.DirUp, snake.DirDown, snake.DirRight}
			if !slices.Contains(safe, fb) {
				t.Errorf("fallback = %v, want one of %v", fb, safe)
			}
		})
	}
}

func TestBufferedReset(t *testing.T) {
	fp := &fakeProvider{replies: []string{"UP LEFT LEFT", "DOWN"}}
	b := NewBuffered(fp, Options{PlanLength: 10}, nil)
	b.Plan(context.Background(), startSnapshot())
	b.Reset()
	if len(b.Queued()) != 0 {
		t.Fatalf("queue after reset = %v", b.Queued())
	}
	d, _ := b.Plan(context.Background(), startSnapshot())
	if d != snake.DirDown || b.Calls() != 2 {
		t.Errorf("Plan after reset = %v (calls %d), want DOWN from a new call", d, b.Calls())
	}
}

func TestSafeFallback(t *testing.T) {
	tests := []struct {
		name    string
		head    snake.Position
		heading snake.Direction
		want    snake.Direction
	}{
		{"center prefers up", snake.Position{X: 0, Y: 0}, snake.DirRight, snake.DirUp},
		{"moving down skips up", snake.Position{X: 0, Y: 0}, snake.DirDown, snake.DirDown},
		{"top wall", snake.Position{X: 0, Y: 280}, snake.DirRight, snake.DirDown},
		{"top wall heading up", snake.Position{X: 0, Y: 280}, snake.DirUp, snake.DirLeft},
		{"top right corner", snake.Position{X: 280, Y: 280}, snake.DirUp, snake.DirLeft},
		{"boxed in keeps heading", snake.Position{X: 0, Y: 0}, snake.DirLeft, snake.DirLeft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bound, margin := 295, 20
			if tt.name == "boxed in keeps heading" {
				bound, margin = 10, 20
			}
			got := SafeFallback(tt.head, tt.heading, bound, margin)
			if got != tt.want {
				t.Errorf("SafeFallback = %v, want %v", got, tt.want)
			}
			if again := SafeFallback(tt.head, tt.heading, bound, margin); again != got {
				t.Errorf("not idempotent: %v then %v", got, again)
			}
		})
	}
}

func TestDangers(t *testing.T) {
	snap := startSnapshot()
	snap.Head = snake.Position{X: 280, Y: 0}
	snap.Body = []snake.Position{{X: 280, Y: 20}, {X: 260, Y: 20}}
	snap.Heading = snake.DirDown

	got := strings.Join(Dangers(snap), "|")
	for _, want := range []string{"RIGHT leads to wall", "UP leads to body collision"} {
		if !strings.Contains(got, want) {
			t.Errorf("Dangers = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "LEFT") {
		t.Errorf("Dangers = %q, LEFT should be clear", got)
	}
}

func TestBuildPromptBodyPreview(t *testing.T) {
	snap := startSnapshot()
	snap.Body = nil
	for i := 1; i <= 12; i++ {
		snap.Body = append(snap.Body, snake.Position{X: -20 * i, Y: 0})
	}
	p := BuildPrompt(snap, 10, 8)
	if !strings.Contains(p, "Segment 8:") || strings.Contains(p, "Segment 9:") {
		t.Error("expected exactly 8 listed segments")
	}
	if !strings.Contains(p, "... and 4 more segments") {
		t.Error("expected overflow line")
	}
}

func TestGreedy(t *testing.T) {
	g := NewGreedy(20)

	t.Run("heads for food", func(t *testing.T) {
		snap := startSnapshot()
		snap.Food = snake.Position{X: 0, Y: 100}
		d, ok := g.Plan(context.Background(), snap)
		if !ok || d != snake.DirUp {
			t.Errorf("Plan = %v, %v; want UP", d, ok)
		}
	})

	t.Run("avoids wall", func(t *testing.T) {
		snap := startSnapshot()
		snap.Head = snake.Position{X: 280, Y: 0}
		snap.Body = []snake.Position{{X: 260, Y: 0}, {X: 240, Y: 0}}
		snap.Food = snake.Position{X: 280, Y: 0}
		d, ok := g.Plan(context.Background(), snap)
		if !ok || d == snake.DirRight || d == snake.DirLeft {
			t.Errorf("Plan = %v, %v; want UP or DOWN", d, ok)
		}
	})

	t.Run("never reverses", func(t *testing.T) {
		snap := startSnapshot()
		snap.Food = snake.Position{X: -200, Y: 0}
		d, _ := g.Plan(context.Background(), snap)
		if d == snake.DirLeft {
			t.Error("greedy reversed into its neck")
		}
	})

	t.Run("survives a long game", func(t *testing.T) {
		game := snake.New(snake.DefaultBoard(), snake.Options{PlanEvery: 1, Autopilot: true}, g)
		game.Reset(testRuntime())
		for range 300 {
			game.Step(context.Background(), emptyFrame())
		}
		if game.State().GameOver && game.State().Score == 0 {
			t.Errorf("greedy died without eating: %+v", game.State())
		}
	})
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()

	p, err := New(cfg, GreedyName, nil)
	if err != nil {
		t.Fatalf("New(greedy): %v", err)
	}
	if _, ok := p.(*Greedy); !ok {
		t.Errorf("New(greedy) = %T", p)
	}

	if _, err := New(cfg, "nope", nil); err == nil {
		t.Error("expected error for unconfigured provider")
	}

	cfg.Providers["unregistered"] = config.ProviderConfig{Model: "m"}
	if _, err := New(cfg, "unregistered", nil); !errors.Is(err, registry.ErrUnknownProvider) {
		t.Errorf("err = %v, want ErrUnknownProvider", err)
	}
}
