package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/chip8"
)

const faultPollInterval = 100 * time.Millisecond

type AppConfig struct {
	Speed          uint
	Quirks         chip8.Quirks
	Seed           uint64
	KeyboardLayout chip8.KeyboardLayout
	// ShowRegisters draws the registers next to the screen
	ShowRegisters bool
}
type AppConfigCb func(config *AppConfig)

// ConsoleApp is a desktop window around a chip8.Cpu.
// The app itself is the display, keyboard and buzzer of its CPU.
type ConsoleApp struct {
	*chip8.InMemoryKeyboard

	Cpu *chip8.Cpu

	// Unpacked pixels, written by the CPU goroutine and read by the UI loop
	pixels      []bool
	pixelsMutex sync.Mutex

	isBeeping atomic.Bool

	keys map[ScanCode]byte

	showRegisters bool
	width, height int32

	status statusLine

	romPath string
}

func NewConsoleApp(configs ...AppConfigCb) *ConsoleApp {
	config := &AppConfig{
		Speed:          chip8.DefaultSpeed,
		Quirks:         chip8.CowgodQuirks(),
		Seed:           chip8.RandomSeed(),
		KeyboardLayout: chip8.DefaultKeyboardLayout,
	}
	for _, cb := range configs {
		cb(config)
	}

	app := &ConsoleApp{
		InMemoryKeyboard: chip8.NewInMemoryKeyboard(),
		keys:             scanCodeLookupMap(chip8.LookupMap(config.KeyboardLayout)),
		showRegisters:    config.ShowRegisters,
	}
	app.Cpu = chip8.NewCpu(chip8.NewMachine(config.Quirks, config.Seed), app, app, app, func(c *chip8.CpuConfig) {
		c.Speed = config.Speed
	})

	settings := app.Cpu.ScreenSettings
	app.pixels = make([]bool, settings.Width*settings.Height)
	app.width = int32(settings.Width * PixelSize)
	if app.showRegisters {
		app.width += RegistersWidth
	}
	app.height = ToolbarHeight + int32(settings.Height*PixelSize) + StatusHeight

	return app
}

// Run boots the console, runs the CPU loop in the background and the UI loop
// until the window is closed. The CPU starts on pause unless autostart is set
// and a program is loaded.
func (app *ConsoleApp) Run(autostart bool) {
	if err := app.Cpu.Boot(); err != nil {
		slog.Error("Error booting CPU", slog.Any("error", err))
		return
	}
	if !autostart || app.romPath == "" {
		app.Cpu.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.runCpu(ctx)

	slog.Info("Opening window", slog.Int("width", int(app.width)), slog.Int("height", int(app.height)))
	rl.InitWindow(app.width, app.height, "chip8")
	defer rl.CloseWindow()
	rl.SetTargetFPS(chip8.TimerFrequency)

	for !rl.WindowShouldClose() {
		app.pollDroppedFiles()
		app.pollKeys()

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		app.drawScreen()
		app.drawRegisters()
		app.drawStatus()
		app.drawToolbar()
		rl.EndDrawing()
	}
}

// runCpu keeps the CPU loop alive across faults: a fault is shown on the
// status line and the loop resumes once the program is reset.
func (app *ConsoleApp) runCpu(ctx context.Context) {
	for {
		err := app.Cpu.Run(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return
		}

		app.Cpu.Stop()
		app.status.set(err.Error(), statusError)

		if !app.waitForReset(ctx) {
			return
		}
	}
}

func (app *ConsoleApp) waitForReset(ctx context.Context) bool {
	ticker := time.NewTicker(faultPollInterval)
	defer ticker.Stop()

	for app.Cpu.LastError() != nil {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}

	return true
}

// Load reads the ROM and loads it into the console
func (app *ConsoleApp) Load(path string) {
	program, err := chip8.LoadRomFile(path)
	if err == nil {
		err = app.Cpu.LoadProgram(program)
	}
	if err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.status.set(err.Error(), statusError)
		return
	}

	app.romPath = path
	slog.Info("Program loaded", slog.String("path", path))
	app.status.set(fmt.Sprintf("Program '%s' loaded", path), statusInfo)
}

// Play implements chip8.Buzzer.
func (app *ConsoleApp) Play() {
	app.isBeeping.Store(true)
}

// Stop implements chip8.Buzzer.
func (app *ConsoleApp) Stop() {
	app.isBeeping.Store(false)
}

func (app *ConsoleApp) pollDroppedFiles() {
	if !rl.IsFileDropped() {
		return
	}

	files := rl.LoadDroppedFiles()
	defer rl.UnloadDroppedFiles()

	slog.Debug("Files dropped", slog.String("files", strings.Join(files, ",")))
	if len(files) > 0 {
		app.Load(files[0])
	}
}

func (app *ConsoleApp) pollKeys() {
	for code, key := range app.keys {
		app.Set(key, rl.IsKeyDown(code))
	}
}

func (app *ConsoleApp) start() {
	if app.romPath == "" {
		app.status.set("There is no program loaded", statusWarning)
		return
	}

	app.Cpu.Start()
	slog.Info("Starting the console")
}

func (app *ConsoleApp) pause() {
	app.Cpu.Stop()
	slog.Info("Stopping the console")
}

func (app *ConsoleApp) step() {
	if err := app.Cpu.Step(); err != nil {
		app.status.set(err.Error(), statusError)
		return
	}

	slog.Debug("Single cycle", slog.String("next", chip8.Decode(app.Cpu.State().Opcode).String()))
}

func (app *ConsoleApp) restart() {
	app.Cpu.Reset()
	app.status.set("Program restarted", statusInfo)
	slog.Info("Resetting the program to the beginning")
}
