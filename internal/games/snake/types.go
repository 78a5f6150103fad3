package snake

import (
	"fmt"
	"math"
	"strings"

	"github.com/vovakirdan/snakepilot/internal/config"
)

// Position is a point on the board. The origin is the board center and y
// grows upwards.
type Position struct {
	X, Y int
}

// Add returns p shifted by d scaled by step.
func (p Position) Add(d Direction, step int) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx*step, Y: p.Y + dy*step}
}

// Distance is the Euclidean distance between two positions.
func Distance(a, b Position) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Direction is a heading on the board.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Directions lists the valid headings in fallback priority order.
var Directions = [...]Direction{DirUp, DirDown, DirLeft, DirRight}

// Delta returns the unit vector of the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, 1
	case DirDown:
		return 0, -1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		return DirNone
	}
}

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirRight
}

// String returns the planner token for the direction.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	case DirLeft:
		return "LEFT"
	case DirRight:
		return "RIGHT"
	default:
		return "NONE"
	}
}

// ParseDirection matches a token case-insensitively against the four
// direction names. Anything else is rejected.
func ParseDirection(token string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "UP":
		return DirUp, true
	case "DOWN":
		return DirDown, true
	case "LEFT":
		return DirLeft, true
	case "RIGHT":
		return DirRight, true
	default:
		return DirNone, false
	}
}

// MarshalText encodes the direction as its planner token.
func (d Direction) MarshalText() ([]byte, error) {
	if d != DirNone && !d.Valid() {
		return nil, fmt.Errorf("snake: invalid direction %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText accepts the tokens MarshalText produces.
func (d *Direction) UnmarshalText(text []byte) error {
	if strings.EqualFold(string(text), "NONE") {
		*d = DirNone
		return nil
	}
	dir, ok := ParseDirection(string(text))
	if !ok {
		return fmt.Errorf("snake: unknown direction %q", text)
	}
	*d = dir
	return nil
}

// Board is the playfield geometry.
type Board struct {
	Bound           int
	Step            int
	CaptureRadius   float64
	CollisionRadius float64
	FoodMargin      int
	InitialLength   int
}

// BoardFromConfig converts the YAML board section.
func BoardFromConfig(c config.BoardConfig) Board {
	return Board(c)
}

// DefaultBoard returns the classic 600x600 board.
func DefaultBoard() Board {
	return BoardFromConfig(config.Default().Board)
}

// Inside reports whether p lies within [-Bound, Bound] on both axes.
func (b Board) Inside(p Position) bool {
	return p.X >= -b.Bound && p.X <= b.Bound && p.Y >= -b.Bound && p.Y <= b.Bound
}

// Cells returns how many grid positions fit on one axis.
func (b Board) Cells() int {
	return 2*(b.Bound/b.Step) + 1
}

// State is the game loop state.
type State string

const (
	StateRunning  State = "running"
	StateGameOver State = "game_over"
)

// Cause explains a game over.
type Cause string

const (
	CauseNone Cause = ""
	CauseWall Cause = "wall"
	CauseSelf Cause = "self"
)

// Message returns the player-facing game over line.
func (c Cause) Message() string {
	switch c {
	case CauseWall:
		return "Game Over - Hit Wall!"
	case CauseSelf:
		return "Game Over - Snake bit itself!"
	default:
		return ""
	}
}
