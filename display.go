package chip8

import (
	"io"
	"os"
	"sync"
)

// Display abstraction for a display
type Display interface {
	// Boot initializes the component
	Boot() error
	// Render
	Render(Screen, ScreenSettings) error
}

// DummyDisplay is a display that does nothing
type DummyDisplay struct {
}

func NewDummyDisplay() *DummyDisplay {
	return &DummyDisplay{}
}

func (d DummyDisplay) Boot() error {
	return nil
}

func (d DummyDisplay) Render(screen Screen, settings ScreenSettings) error {
	return nil
}

// InMemoryDisplay keeps a copy of the last rendered screen
type InMemoryDisplay struct {
	mu       sync.RWMutex
	screen   Screen
	Settings ScreenSettings
	Renders  int
}

func NewDefaultInMemoryDisplay() *InMemoryDisplay {
	return &InMemoryDisplay{
		screen:   newScreen(SmallScreen.Width, SmallScreen.Height),
		Settings: SmallScreen,
	}
}

// Boot implements Display.
func (d *InMemoryDisplay) Boot() error {
	return nil
}

// Render implements Display.
func (d *InMemoryDisplay) Render(screen Screen, settings ScreenSettings) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.screen = append(d.screen[:0], screen...)
	d.Settings = settings
	d.Renders++

	return nil
}

// Screen returns a copy of the last rendered screen
func (d *InMemoryDisplay) Screen() Screen {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return append(Screen(nil), d.screen...)
}

const ESC = 0x1B

type TerminalDisplay struct {
	terminal        io.Writer
	OnChar, OffChar string
}

func NewDefaultTerminalDisplay() *TerminalDisplay {
	return NewTerminalDisplayWithOutput(os.Stdout)
}

func NewTerminalDisplayWithOutput(out io.Writer) *TerminalDisplay {
	return &TerminalDisplay{
		terminal: out,
		OnChar:   "##",
		OffChar:  "  ",
	}
}

// Boot implements Display.
func (disp *TerminalDisplay) Boot() error {
	_, err := disp.terminal.Write([]byte{
		// Move cursor do start
		ESC, '[', '1', ';', '1', 'H',
		// clear the terminal
		ESC, '[', '2', 'J',
	})

	return err
}

func (disp *TerminalDisplay) Render(screen Screen, settings ScreenSettings) error {
	buff := make([]byte, 0, settings.Width*settings.Height*len(disp.OnChar)+settings.Height*3+8)
	buff = append(buff, ESC, '[', '1', ';', '1', 'H')
	for y := 0; y < settings.Height; y++ {
		for x := 0; x < settings.Width; x++ {
			if screen.Pixel(x, y, settings) {
				buff = append(buff, disp.OnChar...)
			} else {
				buff = append(buff, disp.OffChar...)
			}
		}
		buff = append(buff, '|', '\r', '\n')
	}

	_, err := disp.terminal.Write(buff)
	return err
}
