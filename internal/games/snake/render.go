package snake

import (
	"fmt"

	"github.com/vovakirdan/snakepilot/internal/core"
)

const (
	hudRows   = 2
	cellWidth = 2

	glyphHead = '@'
	glyphBody = 'o'
	glyphFood = '*'
)

// MinScreen returns the terminal size needed to draw the whole board.
func (g *Game) MinScreen() (width, height int) {
	cells := g.board.Cells()
	return cells*cellWidth + 2, cells + 2 + hudRows
}

// Render draws the current game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	minW, minH := g.MinScreen()
	if dst.Width() < minW || dst.Height() < minH {
		dst.DrawTextCentered(dst.Height()/2-1, "Window too small", core.ColorYellow)
		dst.DrawTextCentered(dst.Height()/2+1, fmt.Sprintf("Need %dx%d", minW, minH), core.ColorGray)
		return
	}

	g.renderHUD(dst)

	field := core.Rect{X: (dst.Width() - minW) / 2, Y: hudRows, W: minW, H: minH - hudRows}
	dst.DrawBox(field, core.ColorGray)

	g.drawCell(dst, field, g.food, glyphFood, core.ColorBrightRed)
	for i := len(g.segments) - 1; i >= 1; i-- {
		g.drawCell(dst, field, g.segments[i], glyphBody, core.ColorGreen)
	}
	if len(g.segments) > 0 {
		g.drawCell(dst, field, g.segments[0], glyphHead, core.ColorBrightGreen)
	}

	g.renderOverlay(dst, field)
}

func (g *Game) renderHUD(dst *core.Screen) {
	dst.DrawTextColored(1, 0, fmt.Sprintf("Score: %d", g.score), core.ColorWhite)

	pilot := "Manual"
	if g.autopilot {
		pilot = "Autopilot"
	}
	dst.DrawTextCentered(0, pilot, core.ColorCyan)

	right := fmt.Sprintf("Heading: %s", g.heading)
	dst.DrawTextColored(dst.Width()-len(right)-1, 0, right, core.ColorWhite)

	for x := range dst.Width() {
		dst.SetColored(x, 1, '─', core.ColorGray)
	}
}

// drawCell maps a board position into the bordered field. Positions outside
// the board are skipped.
func (g *Game) drawCell(dst *core.Screen, field core.Rect, p Position, glyph rune, c core.Color) {
	if !g.board.Inside(p) {
		return
	}
	n := g.board.Bound / g.board.Step
	col := p.X/g.board.Step + n
	row := n - p.Y/g.board.Step
	x := field.X + 1 + col*cellWidth
	y := field.Y + 1 + row
	dst.SetColored(x, y, glyph, c)
}

func (g *Game) renderOverlay(dst *core.Screen, field core.Rect) {
	mid := field.Y + field.H/2
	switch {
	case g.state == StateGameOver:
		dst.DrawTextCentered(mid-1, g.cause.Message(), core.ColorBrightRed)
		dst.DrawTextCentered(mid+1, fmt.Sprintf("Score: %d  R: restart", g.score), core.ColorWhite)
	case g.paused:
		dst.DrawTextCentered(mid, "PAUSED", core.ColorBrightYellow)
	}
}
