package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/dockpeek/internal/geom"
)

// The sketch simulates composition against a 1920px-wide screen, the
// same stand-in the daemon's width cap is usually tuned for.
const previewScreenWidth = 1920

// summarizeStrip describes the composed strip in one line.
func summarizeStrip(cards []geom.Rect, size geom.Size) string {
	if len(cards) == 0 {
		return "no windows"
	}
	c := cards[0]
	return fmt.Sprintf("%d cards • %d×%d px each • strip %d×%d px",
		len(cards), c.Width, c.Height, size.Width, size.Height)
}

// renderStripSketch draws the card layout onto a character canvas, one
// numbered box per window, inside a frame representing the surface.
func renderStripSketch(cards []geom.Rect, size geom.Size, width, height int) []string {
	if size.Width < 1 || size.Height < 1 || width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i, card := range cards {
		drawCardBox(canvas, card, i+1, size.Width, size.Height, width, height)
	}

	drawFrame(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

// drawCardBox maps one card rectangle from strip coordinates onto the
// canvas and draws its outline with the window number centered.
func drawCardBox(canvas [][]rune, card geom.Rect, num, stripW, stripH, canvasW, canvasH int) {
	x1 := card.X * canvasW / stripW
	y1 := card.Y * canvasH / stripH
	x2 := (card.X + card.Width) * canvasW / stripW
	y2 := (card.Y + card.Height) * canvasH / stripH

	// Clamp inside the frame
	if x1 < 1 {
		x1 = 1
	}
	if y1 < 1 {
		y1 = 1
	}
	if x2 >= canvasW-1 {
		x2 = canvasW - 2
	}
	if y2 >= canvasH-1 {
		y2 = canvasH - 2
	}
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = '─'
		canvas[y2][x] = '─'
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = '│'
		canvas[y][x2] = '│'
	}
	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 && centerX > x1 && centerX < x2 {
		label := strconv.Itoa(num)
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawFrame(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
