package snake

import "context"

// Snapshot is a copy of the game state at one tick.
// It is the planner's input and the unit the spectator API streams.
type Snapshot struct {
	Tick    uint64     `json:"tick"`
	Score   int        `json:"score"`
	Head    Position   `json:"head"`
	Body    []Position `json:"body"` // Non-head segments, nearest first
	Food    Position   `json:"food"`
	Heading Direction  `json:"heading"`
	Bound   int        `json:"bound"`
	Step    int        `json:"step"`
	State   State      `json:"state"`
	Cause   Cause      `json:"cause,omitempty"`
}

// Length returns the number of segments including the head.
func (s Snapshot) Length() int {
	return len(s.Body) + 1
}

// Planner chooses autopilot moves.
//
// Plan returns false when it has no usable move; the loop then asks Fallback,
// which must always answer without blocking.
type Planner interface {
	Plan(ctx context.Context, snap Snapshot) (Direction, bool)
	Fallback(snap Snapshot) Direction
}

// resetter is implemented by planners that keep state between calls.
type resetter interface {
	Reset()
}

// Snapshot returns the current state.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:    g.tick,
		Score:   g.score,
		Food:    g.food,
		Heading: g.heading,
		Bound:   g.board.Bound,
		Step:    g.board.Step,
		State:   g.state,
		Cause:   g.cause,
	}
	if len(g.segments) > 0 {
		snap.Head = g.segments[0]
		snap.Body = append([]Position(nil), g.segments[1:]...)
	}
	return snap
}
