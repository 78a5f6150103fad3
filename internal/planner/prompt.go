package planner

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/snakepilot/internal/games/snake"
)

// SystemPrompt returns the system instructions for a plan of n moves.
func SystemPrompt(n int) string {
	return fmt.Sprintf("You are an expert Snake game AI player. Analyze the game state carefully "+
		"and plan a sequence of %d optimal moves to survive and collect food. "+
		"Always respond with exactly %d words separated by spaces: UP, DOWN, LEFT, or RIGHT.", n, n)
}

// BuildPrompt describes the snapshot for a remote planner asking for
// planLength moves. At most bodyPreview body segments are listed.
func BuildPrompt(snap snake.Snapshot, planLength, bodyPreview int) string {
	dx := snap.Food.X - snap.Head.X
	dy := snap.Food.Y - snap.Head.Y

	var b strings.Builder
	fmt.Fprintf(&b, "SNAKE GAME - PLAN %d MOVES\n\n", planLength)

	b.WriteString("CURRENT STATE:\n")
	fmt.Fprintf(&b, "- Snake head: (%d, %d)\n", snap.Head.X, snap.Head.Y)
	fmt.Fprintf(&b, "- Moving direction: %s\n", snap.Heading)
	fmt.Fprintf(&b, "- Food: (%d, %d)\n", snap.Food.X, snap.Food.Y)
	fmt.Fprintf(&b, "- Distance to food: %d units\n", abs(dx)+abs(dy))
	fmt.Fprintf(&b, "- Snake length: %d segments\n", snap.Length())
	fmt.Fprintf(&b, "- Boundaries: x and y must stay within ±%d\n\n", snap.Bound)

	b.WriteString("BODY SEGMENTS:\n")
	b.WriteString(formatBody(snap.Body, bodyPreview))
	b.WriteString("\n\n")

	b.WriteString("DISTANCE TO FOOD:\n")
	fmt.Fprintf(&b, "- Horizontal: %d %s\n", dx, axisHint(dx, snake.DirRight, snake.DirLeft))
	fmt.Fprintf(&b, "- Vertical: %d %s\n\n", dy, axisHint(dy, snake.DirUp, snake.DirDown))

	b.WriteString("IMMEDIATE DANGER CHECK:\n")
	dangers := Dangers(snap)
	if len(dangers) == 0 {
		b.WriteString("No immediate dangers detected\n\n")
	} else {
		b.WriteString(strings.Join(dangers, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString("RULES:\n")
	fmt.Fprintf(&b, "1. Hitting a wall (±%d) or your own body ends the game\n", snap.Bound)
	fmt.Fprintf(&b, "2. Cannot reverse direction (moving %s you cannot go %s)\n", snap.Heading, snap.Heading.Opposite())
	fmt.Fprintf(&b, "3. Each move advances the head %d units\n", snap.Step)
	b.WriteString("4. Reach the food without trapping yourself\n\n")

	fmt.Fprintf(&b, "Respond with exactly %d words separated by spaces, each one of UP DOWN LEFT RIGHT, in the order to move.", planLength)
	return b.String()
}

func formatBody(body []snake.Position, preview int) string {
	if len(body) == 0 {
		return "- No body segments"
	}
	shown := body
	if preview > 0 && len(body) > preview {
		shown = body[:preview]
	}
	lines := make([]string, 0, len(shown)+1)
	for i, seg := range shown {
		lines = append(lines, fmt.Sprintf("- Segment %d: (%d, %d)", i+1, seg.X, seg.Y))
	}
	if rest := len(body) - len(shown); rest > 0 {
		lines = append(lines, fmt.Sprintf("- ... and %d more segments", rest))
	}
	return strings.Join(lines, "\n")
}

func axisHint(delta int, positive, negative snake.Direction) string {
	switch {
	case delta > 0:
		return "(go " + positive.String() + ")"
	case delta < 0:
		return "(go " + negative.String() + ")"
	default:
		return "(aligned)"
	}
}

// Dangers lists the directions that lead into a wall or the body on the
// next step. A wall counts as near when the head is within one step of it.
func Dangers(snap snake.Snapshot) []string {
	var out []string
	edge := snap.Bound - snap.Step
	wall := map[snake.Direction]bool{
		snake.DirRight: snap.Head.X >= edge,
		snake.DirLeft:  snap.Head.X <= -edge,
		snake.DirUp:    snap.Head.Y >= edge,
		snake.DirDown:  snap.Head.Y <= -edge,
	}
	near := snap.Step * 3 / 4
	for _, d := range snake.Directions {
		if wall[d] {
			out = append(out, d.String()+" leads to wall")
		}
		next := snap.Head.Add(d, snap.Step)
		for _, seg := range snap.Body {
			if abs(seg.X-next.X) < near && abs(seg.Y-next.Y) < near {
				out = append(out, d.String()+" leads to body collision")
				break
			}
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
