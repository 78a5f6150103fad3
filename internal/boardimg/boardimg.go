// Package boardimg draws a game snapshot as a PNG image.
package boardimg

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/vovakirdan/snakepilot/internal/games/snake"
)

// DefaultBlockSize is the pixel size of one board cell before resizing.
const DefaultBlockSize = 20

// MaxSize caps the requested output edge in pixels.
const MaxSize = 2048

// Render draws the snapshot with blockSize pixels per cell.
// A finished game is blurred so the board reads as inactive.
func Render(snap snake.Snapshot, blockSize int) image.Image {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	cells := 1
	if snap.Step > 0 {
		cells = 2*(snap.Bound/snap.Step) + 1
	}
	size := cells * blockSize

	dc := gg.NewContext(size, size)
	dc.SetRGB(0.08, 0.09, 0.11)
	dc.Clear()
	renderGrid(dc, size, blockSize)

	cell := func(p snake.Position) (float64, float64, bool) {
		if snap.Step <= 0 {
			return 0, 0, false
		}
		n := snap.Bound / snap.Step
		col := p.X/snap.Step + n
		row := n - p.Y/snap.Step
		if col < 0 || col >= cells || row < 0 || row >= cells {
			return 0, 0, false
		}
		return float64(col * blockSize), float64(row * blockSize), true
	}

	bs := float64(blockSize)
	if x, y, ok := cell(snap.Food); ok {
		dc.SetRGB(0.9, 0.2, 0.2)
		dc.DrawCircle(x+bs/2, y+bs/2, bs*0.4)
		dc.Fill()
	}

	dc.SetRGB(0.2, 0.65, 0.3)
	for _, seg := range snap.Body {
		if x, y, ok := cell(seg); ok {
			dc.DrawRoundedRectangle(x+1, y+1, bs-2, bs-2, bs/5)
			dc.Fill()
		}
	}
	if x, y, ok := cell(snap.Head); ok {
		dc.SetRGB(0.45, 0.95, 0.45)
		dc.DrawRoundedRectangle(x+1, y+1, bs-2, bs-2, bs/4)
		dc.Fill()
	}

	img := dc.Image()
	if snap.State == snake.StateGameOver {
		return imaging.Blur(img, 2.5)
	}
	return img
}

func renderGrid(dc *gg.Context, size, blockSize int) {
	dc.SetRGB(0.16, 0.17, 0.2)
	dc.SetLineWidth(1)
	for x := 0; x <= size; x += blockSize {
		dc.DrawLine(float64(x), 0, float64(x), float64(size))
		dc.Stroke()
	}
	for y := 0; y <= size; y += blockSize {
		dc.DrawLine(0, float64(y), float64(size), float64(y))
		dc.Stroke()
	}
}

// Resize scales img to a size x size square. A non-positive size returns img.
func Resize(img image.Image, size int) image.Image {
	if size <= 0 {
		return img
	}
	size = min(size, MaxSize)
	return imaging.Resize(img, size, size, imaging.Lanczos)
}

// EncodePNG renders the snapshot, resizes it to size and writes a PNG.
func EncodePNG(w io.Writer, snap snake.Snapshot, size int) error {
	img := Resize(Render(snap, DefaultBlockSize), size)
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("boardimg: encode png: %w", err)
	}
	return nil
}
