package gui

import (
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	StatusHeight   = 30
	StatusFontSize = 16
)

var StatusBgColor = rl.DarkGray

type statusKind byte

const (
	statusInfo statusKind = iota
	statusWarning
	statusError
)

var statusColors = [...]rl.Color{
	statusInfo:    rl.SkyBlue,
	statusWarning: rl.Gold,
	statusError:   rl.Red,
}

// statusLine is the last message shown at the bottom of the window.
// It is set from the CPU goroutine as well as the UI loop.
type statusLine struct {
	mu   sync.Mutex
	text string
	kind statusKind
}

func (s *statusLine) set(text string, kind statusKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	s.kind = kind
}

func (s *statusLine) get() (string, rl.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.text, statusColors[s.kind]
}

func (app *ConsoleApp) drawStatus() {
	text, color := app.status.get()
	y := app.height - StatusHeight

	rl.DrawRectangle(0, y, app.width, StatusHeight, StatusBgColor)
	rl.DrawText(text, ToolbarGap, y+(StatusHeight-StatusFontSize)/2, StatusFontSize, color)
}
