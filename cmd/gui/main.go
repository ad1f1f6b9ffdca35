package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/gui"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "0.2.0"
	commit  = ""
	date    = ""
)

var logLevel = new(slog.LevelVar)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func main() {
	autostart := flag.Bool("start", false, "Starts the console automatically if there is a program loaded (defaults = false).")
	debug := flag.Bool("debug", false, "Show debug information for the console (defaults = false).")
	initialSpeed := flag.Uint("speed", chip8.DefaultSpeed, fmt.Sprintf("The starting speed of the CPU in Hz. It has to be in the range [%d, %d] (defaults = %d).", chip8.MinSpeed, chip8.MaxSpeed, chip8.DefaultSpeed))
	quirksName := flag.String("quirks", "cowgod", "The behaviour of the ambiguous instructions: cowgod, matt or octo (defaults = cowgod).")
	stackSize := flag.Int("stack", chip8.DefaultStackSize, fmt.Sprintf("The number of return addresses of the stack, at most %d.", chip8.MaxStackSize))
	wrap := flag.Bool("wrap", false, "Wrap the sprites around the edges of the screen instead of clipping them.")
	seed := flag.Uint64("seed", 0, "The seed of the random number generator (defaults = random).")
	layout := flag.String("layout", string(chip8.DefaultKeyboardLayout), "The 16 host keys bound to the keypad in reading order (1 2 3 C / 4 5 6 D / 7 8 9 E / A 0 B F).")
	showVersion := flag.Bool("version", false, "Prints the version and exits.")

	flag.Parse()

	if *showVersion {
		fmt.Printf("chip8 %s\n", buildinfo.Version(version, commit, date))
		return
	}
	if *debug {
		logLevel.Set(slog.LevelDebug)
	}

	quirks, err := chip8.QuirksByName(*quirksName)
	if err != nil {
		slog.Error("Invalid quirks", slog.Any("error", err))
		os.Exit(2)
	}
	quirks.StackSize = *stackSize
	quirks.WrapSprites = quirks.WrapSprites || *wrap

	if *seed == 0 {
		*seed = chip8.RandomSeed()
	}

	app := gui.NewConsoleApp(func(config *gui.AppConfig) {
		config.Speed = *initialSpeed
		config.Quirks = quirks
		config.Seed = *seed
		config.KeyboardLayout = chip8.KeyboardLayout(*layout)
		config.ShowRegisters = *debug
	})

	if flag.NArg() > 0 {
		app.Load(flag.Arg(0))
	}

	app.Run(*autostart)
}
