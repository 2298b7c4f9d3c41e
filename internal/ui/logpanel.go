package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const lineHeight = 16

type Line struct {
	Text     string
	IsUrgent bool
}

// LogPanel shows the newest lines that fit, newest at the bottom.
type LogPanel struct {
	Title  string
	X, Y   int
	Width  int
	Height int

	lines []Line
}

func NewLogPanel(title string, x, y, width, height int) *LogPanel {
	return &LogPanel{Title: title, X: x, Y: y, Width: width, Height: height}
}

func (p *LogPanel) SetLines(lines []Line) {
	p.lines = lines
}

// Capacity is how many lines fit below the title.
func (p *LogPanel) Capacity() int {
	n := (p.Height - lineHeight) / lineHeight
	if n < 0 {
		return 0
	}
	return n
}

func (p *LogPanel) Visible() []Line {
	if n := p.Capacity(); len(p.lines) > n {
		return p.lines[len(p.lines)-n:]
	}
	return p.lines
}

func (p *LogPanel) Draw(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), color.RGBA{20, 20, 30, 200}, false)
	vector.StrokeRect(screen, float32(p.X), float32(p.Y), float32(p.Width), float32(p.Height), 1, color.RGBA{90, 90, 120, 255}, false)
	ebitenutil.DebugPrintAt(screen, p.Title, p.X+5, p.Y)

	for i, l := range p.Visible() {
		y := p.Y + lineHeight*(i+1)
		if l.IsUrgent {
			vector.DrawFilledRect(screen, float32(p.X+1), float32(y), float32(p.Width-2), lineHeight, color.RGBA{120, 0, 0, 255}, false)
		}
		ebitenutil.DebugPrintAt(screen, l.Text, p.X+5, y)
	}
}
