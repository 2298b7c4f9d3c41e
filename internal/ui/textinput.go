package ui

import (
	"image/color"
	"strings"
	"unicode"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// TextInput is a single line box for typing a callsign. Input is upper
// cased and limited to letters and digits.
type TextInput struct {
	Text        string
	Placeholder string
	IsActive    bool
	X, Y        int
	Width       int
	Height      int
	MaxLength   int
	OnSubmit    func(string)
}

func NewTextInput(x, y, width, height int, onSubmit func(string)) *TextInput {
	return &TextInput{
		Placeholder: "callsign",
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		MaxLength:   8,
		OnSubmit:    onSubmit,
	}
}

// Append adds typed characters, dropping anything that cannot appear in a
// callsign.
func (ti *TextInput) Append(chars []rune) {
	for _, r := range chars {
		if len(ti.Text) >= ti.MaxLength {
			return
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			ti.Text += string(unicode.ToUpper(r))
		}
	}
}

func (ti *TextInput) Update() {
	if !ti.IsActive {
		return
	}

	ti.Append(ebiten.AppendInputChars(nil))

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(ti.Text) > 0 {
		ti.Text = ti.Text[:len(ti.Text)-1]
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		ti.Text = ""
		ti.IsActive = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		if ti.OnSubmit != nil {
			ti.OnSubmit(strings.TrimSpace(ti.Text))
		}
		ti.Text = ""
		ti.IsActive = false
	}
}

func (ti *TextInput) Draw(screen *ebiten.Image) {
	x, y, w, h := float32(ti.X), float32(ti.Y), float32(ti.Width), float32(ti.Height)
	bgColor := color.RGBA{50, 50, 50, 255}
	if ti.IsActive {
		bgColor = color.RGBA{80, 80, 80, 255}
	}
	vector.DrawFilledRect(screen, x, y, w, h, bgColor, false)
	vector.StrokeRect(screen, x, y, w, h, 1, color.White, false)

	displayTxt := ti.Text
	switch {
	case ti.IsActive:
		displayTxt += "_"
	case displayTxt == "":
		displayTxt = ti.Placeholder
	}
	ebitenutil.DebugPrintAt(screen, displayTxt, ti.X+5, ti.Y+(ti.Height-16)/2)
}

// IsClicked checks if the mouse click is within the text input bounds
func (ti *TextInput) IsClicked(mouseX, mouseY int) bool {
	return mouseX >= ti.X && mouseX <= ti.X+ti.Width &&
		mouseY >= ti.Y && mouseY <= ti.Y+ti.Height
}
