package planner

import (
	"context"

	"github.com/vovakirdan/snakepilot/internal/games/snake"
)

// Greedy is an offline planner. It heads for the food along the shortest
// Manhattan path, avoiding walls, the body and moves that lead into a
// pocket smaller than the snake.
type Greedy struct {
	FallbackMargin int
}

// NewGreedy returns a greedy planner using margin for its fallback.
func NewGreedy(margin int) *Greedy {
	return &Greedy{FallbackMargin: margin}
}

// Plan implements snake.Planner. It fails only when every move is fatal.
func (g *Greedy) Plan(_ context.Context, snap snake.Snapshot) (snake.Direction, bool) {
	occupied := make(map[snake.Position]bool, len(snap.Body))
	// The tail moves away on the next step.
	for i, seg := range snap.Body {
		if i == len(snap.Body)-1 {
			break
		}
		occupied[seg] = true
	}

	best := snake.DirNone
	bestRoomy := false
	bestDist := 0
	for _, d := range snake.Directions {
		if d == snap.Heading.Opposite() {
			continue
		}
		next := snap.Head.Add(d, snap.Step)
		if !insideBound(next, snap.Bound) || occupied[next] {
			continue
		}

		roomy := reachable(next, snap, occupied, snap.Length()) >= snap.Length()
		dist := manhattan(next, snap.Food)
		if best == snake.DirNone || (roomy && !bestRoomy) || (roomy == bestRoomy && dist < bestDist) {
			best, bestRoomy, bestDist = d, roomy, dist
		}
	}
	return best, best != snake.DirNone
}

// Fallback implements snake.Planner.
func (g *Greedy) Fallback(snap snake.Snapshot) snake.Direction {
	return SafeFallback(snap.Head, snap.Heading, snap.Bound, g.FallbackMargin)
}

// reachable counts free grid cells reachable from start, stopping at limit.
func reachable(start snake.Position, snap snake.Snapshot, occupied map[snake.Position]bool, limit int) int {
	visited := map[snake.Position]bool{start: true, snap.Head: true}
	queue := []snake.Position{start}
	count := 0

	for len(queue) > 0 && count < limit {
		current := queue[0]
		queue = queue[1:]
		count++

		for _, d := range snake.Directions {
			next := current.Add(d, snap.Step)
			if visited[next] || occupied[next] || !insideBound(next, snap.Bound) {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return count
}

func insideBound(p snake.Position, bound int) bool {
	return p.X >= -bound && p.X <= bound && p.Y >= -bound && p.Y <= bound
}

func manhattan(a, b snake.Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}
