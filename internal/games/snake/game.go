// Package snake implements the snake game loop: movement, food, collisions
// and the autopilot hand-off to a move planner.
package snake

import (
	"context"
	"math/rand"
	"slices"

	"github.com/vovakirdan/snakepilot/internal/core"
)

// Source names where the heading applied on a tick came from.
type Source string

const (
	SourceNone     Source = ""
	SourceManual   Source = "manual"
	SourcePlanner  Source = "planner"
	SourceFallback Source = "fallback"
)

// EventKind classifies what happened during a tick.
type EventKind int

const (
	EventPlanned  EventKind = iota // planner produced a move
	EventFallback                  // planner failed, fallback move chosen
	EventRejected                  // proposed move was a reversal and ignored
	EventAte                       // food consumed
	EventGameOver
)

// Event is one notable occurrence during a tick.
type Event struct {
	Kind  EventKind
	Dir   Direction
	Score int
	Cause Cause
}

// StepResult is returned by Step.
type StepResult struct {
	State  core.GameState
	Source Source
	Events []Event
}

// Stats counts planner decisions over a game.
type Stats struct {
	Decisions  int `json:"decisions"`  // Planner consultations
	Successful int `json:"successful"` // Consultations that produced a move
	Fallbacks  int `json:"fallbacks"`
	Rejected   int `json:"rejected"` // Reversals proposed and ignored
}

// SuccessRate returns the share of consultations that produced a move, in percent.
func (s Stats) SuccessRate() float64 {
	if s.Decisions == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Decisions) * 100
}

// Options tunes a Game.
type Options struct {
	PlanEvery int  // Consult the planner every N ticks, minimum 1
	Autopilot bool // Start with the planner steering
}

// Game owns the complete snake state. It is not safe for concurrent use;
// one loop goroutine drives it.
type Game struct {
	board     Board
	planner   Planner
	planEvery int
	autopilot bool

	rng   *rand.Rand
	tick  uint64
	score int
	stats Stats

	segments []Position // Head at index 0
	heading  Direction  // Heading of the last move
	nextDir  Direction  // Manual steering buffered for the next move
	food     Position

	state  State
	cause  Cause
	paused bool

	screenW int
	screenH int
}

// New creates a game. planner may be nil for manual-only play.
func New(board Board, opts Options, planner Planner) *Game {
	if opts.PlanEvery < 1 {
		opts.PlanEvery = 1
	}
	return &Game{
		board:     board,
		planner:   planner,
		planEvery: opts.PlanEvery,
		autopilot: opts.Autopilot && planner != nil,
	}
}

// Reset starts a new game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	g.rng = rand.New(rand.NewSource(cfg.Seed))
	g.screenW = cfg.ScreenW
	g.screenH = cfg.ScreenH
	g.tick = 0
	g.score = 0
	g.stats = Stats{}
	g.state = StateRunning
	g.cause = CauseNone
	g.paused = false

	length := max(1, g.board.InitialLength)
	g.segments = make([]Position, length)
	for i := range g.segments {
		g.segments[i] = Position{X: -i * g.board.Step, Y: 0}
	}
	g.heading = DirRight
	g.nextDir = DirRight

	if r, ok := g.planner.(resetter); ok {
		r.Reset()
	}
	g.relocateFood()
}

// Resize records new screen dimensions without touching the game.
func (g *Game) Resize(width, height int) {
	g.screenW = width
	g.screenH = height
}

// SetPlanEvery changes the planner cadence between ticks.
func (g *Game) SetPlanEvery(n int) {
	g.planEvery = max(1, n)
}

// Autopilot reports whether the planner is steering.
func (g *Game) Autopilot() bool {
	return g.autopilot
}

// Stats returns the planner decision counters.
func (g *Game) Stats() Stats {
	return g.stats
}

// Step advances the game by one tick.
func (g *Game) Step(ctx context.Context, in core.InputFrame) StepResult {
	if in.Has(core.ActionRestart) && g.state == StateGameOver {
		g.Reset(core.RuntimeConfig{
			Seed:    g.rng.Int63(),
			ScreenW: g.screenW,
			ScreenH: g.screenH,
		})
		return StepResult{State: g.State()}
	}
	if in.Has(core.ActionAutopilot) && g.planner != nil {
		g.autopilot = !g.autopilot
	}
	if in.Has(core.ActionPause) && g.state == StateRunning {
		g.paused = !g.paused
	}
	if g.state == StateGameOver || g.paused {
		return StepResult{State: g.State()}
	}

	var res StepResult
	if g.autopilot {
		if g.tick%uint64(g.planEvery) == 0 {
			g.consultPlanner(ctx, &res)
		}
	} else {
		g.steer(in, &res)
	}

	g.advance(&res)
	g.tick++

	res.State = g.State()
	return res
}

// steer buffers a manual direction change.
func (g *Game) steer(in core.InputFrame, res *StepResult) {
	dir := DirNone
	switch {
	case in.Has(core.ActionUp):
		dir = DirUp
	case in.Has(core.ActionDown):
		dir = DirDown
	case in.Has(core.ActionLeft):
		dir = DirLeft
	case in.Has(core.ActionRight):
		dir = DirRight
	}
	if dir == DirNone {
		return
	}
	res.Source = SourceManual
	if !g.turn(dir) {
		res.Events = append(res.Events, Event{Kind: EventRejected, Dir: dir})
	}
}

// consultPlanner asks the planner for a move and falls back locally when it
// has none.
func (g *Game) consultPlanner(ctx context.Context, res *StepResult) {
	snap := g.Snapshot()
	g.stats.Decisions++

	dir, ok := g.planner.Plan(ctx, snap)
	if ok && dir.Valid() {
		g.stats.Successful++
		res.Source = SourcePlanner
		res.Events = append(res.Events, Event{Kind: EventPlanned, Dir: dir})
	} else {
		dir = g.planner.Fallback(snap)
		g.stats.Fallbacks++
		res.Source = SourceFallback
		res.Events = append(res.Events, Event{Kind: EventFallback, Dir: dir})
	}

	if !g.turn(dir) {
		g.stats.Rejected++
		res.Events = append(res.Events, Event{Kind: EventRejected, Dir: dir})
	}
}

// turn buffers dir unless it reverses the current heading.
func (g *Game) turn(dir Direction) bool {
	if !dir.Valid() || dir == g.heading.Opposite() {
		return false
	}
	g.nextDir = dir
	return true
}

// advance moves the snake one step and evaluates food and collisions.
func (g *Game) advance(res *StepResult) {
	g.heading = g.nextDir
	head := g.segments[0].Add(g.heading, g.board.Step)
	g.segments = slices.Insert(g.segments, 0, head)

	if Distance(head, g.food) < g.board.CaptureRadius {
		g.score++
		g.relocateFood()
		res.Events = append(res.Events, Event{Kind: EventAte, Score: g.score})
	} else {
		g.segments = g.segments[:len(g.segments)-1]
	}

	switch {
	case !g.board.Inside(head):
		g.endGame(CauseWall, res)
	case g.bitesItself():
		g.endGame(CauseSelf, res)
	}
}

func (g *Game) bitesItself() bool {
	head := g.segments[0]
	for _, seg := range g.segments[1:] {
		if Distance(head, seg) < g.board.CollisionRadius {
			return true
		}
	}
	return false
}

func (g *Game) endGame(cause Cause, res *StepResult) {
	g.state = StateGameOver
	g.cause = cause
	res.Events = append(res.Events, Event{Kind: EventGameOver, Cause: cause, Score: g.score})
}

// relocateFood moves the food to a random grid position inside the food
// margin, avoiding the snake when a free spot turns up within a few draws.
func (g *Game) relocateFood() {
	n := g.board.FoodMargin / g.board.Step
	var p Position
	for range 64 {
		p = Position{
			X: (g.rng.Intn(2*n+1) - n) * g.board.Step,
			Y: (g.rng.Intn(2*n+1) - n) * g.board.Step,
		}
		if !slices.Contains(g.segments, p) {
			break
		}
	}
	g.food = p
}

// State returns the platform-facing game state.
func (g *Game) State() core.GameState {
	return core.GameState{
		Score:    g.score,
		GameOver: g.state == StateGameOver,
		Paused:   g.paused,
		Cause:    string(g.cause),
	}
}
