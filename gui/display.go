package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8"
)

const (
	PixelSize      = 15
	RegistersWidth = 170

	registersFontSize   = 16
	registersLineHeight = 18
)

var ScreenBgColor = rl.Gold
var ScreenPixelColor = rl.Yellow
var RegistersColor = rl.RayWhite

// Boot implements chip8.Display.
func (app *ConsoleApp) Boot() error {
	return nil
}

// Render implements chip8.Display.
func (app *ConsoleApp) Render(screen chip8.Screen, settings chip8.ScreenSettings) error {
	app.pixelsMutex.Lock()
	defer app.pixelsMutex.Unlock()

	if len(app.pixels) != settings.Width*settings.Height {
		app.pixels = make([]bool, settings.Width*settings.Height)
	}
	for y := 0; y < settings.Height; y++ {
		for x := 0; x < settings.Width; x++ {
			app.pixels[x+y*settings.Width] = screen.Pixel(x, y, settings)
		}
	}

	return nil
}

func (app *ConsoleApp) drawScreen() {
	app.pixelsMutex.Lock()
	defer app.pixelsMutex.Unlock()

	width := app.Cpu.ScreenSettings.Width
	for t, on := range app.pixels {
		color := ScreenBgColor
		if on {
			color = ScreenPixelColor
		}

		x, y := int32(t%width), int32(t/width)
		rl.DrawRectangle(x*PixelSize, ToolbarHeight+y*PixelSize, PixelSize, PixelSize, color)
	}
}

func (app *ConsoleApp) drawRegisters() {
	if !app.showRegisters {
		return
	}

	state := app.Cpu.State()
	x := int32(app.Cpu.ScreenSettings.Width*PixelSize + ToolbarGap)
	y := int32(ToolbarHeight + ToolbarGap)

	lines := []string{
		fmt.Sprintf("PC %03X  I %03X", state.Pc, state.I),
		chip8.Decode(state.Opcode).String(),
	}
	for i := 0; i < chip8.RegisterCount; i += 2 {
		lines = append(lines, fmt.Sprintf("V%X %02X  V%X %02X", i, state.V[i], i+1, state.V[i+1]))
	}
	lines = append(lines,
		fmt.Sprintf("DT %02X  ST %02X", state.Dt, state.St),
		fmt.Sprintf("SP %d", state.Sp),
	)

	for _, line := range lines {
		rl.DrawText(line, x, y, registersFontSize, RegistersColor)
		y += registersLineHeight
	}
}
