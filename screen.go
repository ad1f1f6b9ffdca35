package chip8

const (
	DISPLAY_WIDTH  = 64
	DISPLAY_HEIGHT = 32
)

// Screen is the packed representation of the framebuffer handed to displays.
// Every byte holds 8 horizontal pixels, most significant bit first.
type Screen []byte

// ScreenSettings for the console
type ScreenSettings struct {
	Width, Height int
}

var SmallScreen = ScreenSettings{
	Width:  DISPLAY_WIDTH,
	Height: DISPLAY_HEIGHT,
}

func sizeInBytesOfScreen(w, h int) int {
	return (w*h + 7) / 8
}

func newScreen(w, h int) Screen {
	return make(Screen, sizeInBytesOfScreen(w, h))
}

// Pixel reports whether the packed pixel at x, y is on
func (s Screen) Pixel(x, y int, settings ScreenSettings) bool {
	t := y*settings.Width + x
	if t < 0 || t/8 >= len(s) {
		return false
	}

	return s[t/8]&(0b10000000>>(t%8)) > 0
}

// Framebuffer is the monochrome display memory of the machine.
// Cells are indexed as x + y*DISPLAY_WIDTH.
type Framebuffer [DISPLAY_WIDTH * DISPLAY_HEIGHT]bool

func (fb *Framebuffer) Clear() {
	clear(fb[:])
}

// Pixel reports whether the pixel at x, y is on. Coordinates outside the display are off.
func (fb *Framebuffer) Pixel(x, y int) bool {
	if x < 0 || x >= DISPLAY_WIDTH || y < 0 || y >= DISPLAY_HEIGHT {
		return false
	}

	return fb[x+y*DISPLAY_WIDTH]
}

// Toggle XORs the pixel at x, y and returns true when it was turned off
func (fb *Framebuffer) Toggle(x, y int) bool {
	t := x + y*DISPLAY_WIDTH
	was := fb[t]
	fb[t] = !was

	return was
}

// Pack converts the framebuffer into its packed Screen form
func (fb *Framebuffer) Pack() Screen {
	screen := newScreen(DISPLAY_WIDTH, DISPLAY_HEIGHT)
	for t, on := range fb {
		if on {
			screen[t/8] |= 0b10000000 >> (t % 8)
		}
	}

	return screen
}
