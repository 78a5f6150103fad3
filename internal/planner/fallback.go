package planner

import "github.com/vovakirdan/snakepilot/internal/games/snake"

// SafeFallback picks the first of UP, DOWN, LEFT, RIGHT whose side of the
// board still has at least margin of clearance from the head, skipping the
// reverse of the heading. With no such direction it keeps the heading.
func SafeFallback(head snake.Position, heading snake.Direction, bound, margin int) snake.Direction {
	limit := bound - margin
	for _, d := range snake.Directions {
		if d == heading.Opposite() {
			continue
		}
		var ok bool
		switch d {
		case snake.DirUp:
			ok = head.Y < limit
		case snake.DirDown:
			ok = head.Y > -limit
		case snake.DirLeft:
			ok = head.X > -limit
		case snake.DirRight:
			ok = head.X < limit
		}
		if ok {
			return d
		}
	}
	return heading
}
