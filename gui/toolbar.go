package gui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8"
)

const (
	ToolbarHeight = 50
	ToolbarGap    = 5

	buttonWidth  = 80
	buttonHeight = 40

	sliderWidth  = 100
	sliderHeight = 20
)

type toolbarButton struct {
	icon   int32
	label  string
	action func(app *ConsoleApp)
}

var toolbarButtons = []toolbarButton{
	{gui.ICON_PLAYER_PLAY, "Start", (*ConsoleApp).start},
	{gui.ICON_PLAYER_PAUSE, "Stop", (*ConsoleApp).pause},
	{gui.ICON_PLAYER_NEXT, "Step", (*ConsoleApp).step},
	{gui.ICON_ROTATE, "Reset", (*ConsoleApp).restart},
}

func (app *ConsoleApp) drawToolbar() {
	rl.DrawRectangle(0, 0, app.width, ToolbarHeight, rl.Gray)

	x := float32(ToolbarGap)
	for _, b := range toolbarButtons {
		if gui.Button(rl.NewRectangle(x, ToolbarGap, buttonWidth, buttonHeight), gui.IconText(b.icon, b.label)) {
			b.action(app)
		}
		x += buttonWidth + ToolbarGap
	}

	gui.Label(rl.NewRectangle(x, ToolbarGap, buttonWidth, buttonHeight), app.runState())

	app.drawSpeedControl(float32(app.width) - ToolbarGap - sliderWidth - sliderHeight)
}

func (app *ConsoleApp) runState() string {
	state := "Stopped"
	if app.Cpu.IsRunning() {
		state = "Running"
	}
	if app.isBeeping.Load() {
		state += " *beep*"
	}

	return state
}

// drawSpeedControl draws the speed slider, its value and a button back to the default speed
func (app *ConsoleApp) drawSpeedControl(x float32) {
	hz := app.Cpu.SpeedInHz()
	y := float32(ToolbarGap + sliderHeight + 1)

	value := gui.Slider(
		rl.NewRectangle(x, ToolbarGap, sliderWidth, sliderHeight),
		"", "",
		float32(hz),
		float32(chip8.MinSpeed),
		float32(chip8.MaxSpeed),
	)
	gui.Label(rl.NewRectangle(x, y, sliderWidth/2, sliderHeight), fmt.Sprintf("%d Hz", hz))
	if gui.Button(rl.NewRectangle(x+sliderWidth, ToolbarGap, sliderHeight, sliderHeight), gui.IconText(gui.ICON_ROTATE, "")) {
		value = float32(chip8.DefaultSpeed)
	}

	if uint(value) != hz {
		app.Cpu.SetSpeedInHz(uint(value))
	}
}
