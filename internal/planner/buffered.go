package planner

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snakepilot/internal/games/snake"
	"github.com/vovakirdan/snakepilot/internal/registry"
)

// Options tunes a Buffered planner.
type Options struct {
	PlanLength     int // Moves requested per call
	BodyPreview    int // Body segments listed in the prompt
	FallbackMargin int
	MaxTokens      int // Zero leaves the provider default
	Temperature    float64
}

// Buffered asks a remote provider for a sequence of moves and hands them out
// one per decision, calling the provider again only when the queue is empty.
type Buffered struct {
	provider registry.Provider
	opts     Options
	logger   *log.Logger

	queue     []snake.Direction
	fromQueue bool
	lastErr   error
	calls     int
}

// NewBuffered wraps provider. A nil logger discards planner logs.
func NewBuffered(provider registry.Provider, opts Options, logger *log.Logger) *Buffered {
	if opts.PlanLength < 1 {
		opts.PlanLength = 10
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Buffered{provider: provider, opts: opts, logger: logger}
}

// Plan implements snake.Planner. Failures are logged and reported as false.
func (b *Buffered) Plan(ctx context.Context, snap snake.Snapshot) (snake.Direction, bool) {
	if len(b.queue) > 0 {
		d := b.queue[0]
		b.queue = b.queue[1:]
		b.fromQueue = true
		b.lastErr = nil
		return d, true
	}
	b.fromQueue = false

	moves, err := b.request(ctx, snap)
	b.lastErr = err
	if err != nil {
		b.logger.Warn("planner failed", "tick", snap.Tick, "error", err)
		return snake.DirNone, false
	}

	b.queue = moves[1:]
	b.logger.Debug("planned", "tick", snap.Tick, "move", moves[0], "queued", len(b.queue))
	return moves[0], true
}

func (b *Buffered) request(ctx context.Context, snap snake.Snapshot) ([]snake.Direction, error) {
	b.calls++
	text, err := b.provider.Complete(ctx, registry.Request{
		System:      SystemPrompt(b.opts.PlanLength),
		Prompt:      BuildPrompt(snap, b.opts.PlanLength, b.opts.BodyPreview),
		MaxTokens:   b.opts.MaxTokens,
		Temperature: b.opts.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	moves := ParseMoves(text, b.opts.PlanLength)
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMoves, text)
	}
	return moves, nil
}

// Fallback implements snake.Planner.
func (b *Buffered) Fallback(snap snake.Snapshot) snake.Direction {
	return SafeFallback(snap.Head, snap.Heading, snap.Bound, b.opts.FallbackMargin)
}

// Reset drops any queued moves.
func (b *Buffered) Reset() {
	b.queue = nil
	b.fromQueue = false
	b.lastErr = nil
}

// Queued returns a copy of the moves still waiting to be played.
func (b *Buffered) Queued() []snake.Direction {
	return append([]snake.Direction(nil), b.queue...)
}

// FromQueue reports whether the last Plan answer came from the queue.
func (b *Buffered) FromQueue() bool {
	return b.fromQueue
}

// Err returns the error of the last Plan call, if any.
func (b *Buffered) Err() error {
	return b.lastErr
}

// Calls returns how many times the provider was contacted.
func (b *Buffered) Calls() int {
	return b.calls
}
