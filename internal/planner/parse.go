package planner

import (
	"strings"
	"unicode"

	"github.com/vovakirdan/snakepilot/internal/games/snake"
)

// ParseMoves extracts direction tokens from free text in order.
// Tokens are split on anything that is not a letter; only exact
// UP, DOWN, LEFT and RIGHT words survive. At most limit moves are kept
// when limit is positive.
func ParseMoves(text string, limit int) []snake.Direction {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var moves []snake.Direction
	for _, f := range fields {
		if d, ok := snake.ParseDirection(f); ok {
			moves = append(moves, d)
			if limit > 0 && len(moves) == limit {
				break
			}
		}
	}
	return moves
}
