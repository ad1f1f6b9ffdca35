/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/guslan/chip8"
	"github.com/guslan/chip8/web"
	"github.com/retroenv/retrogolib/buildinfo"
)

var (
	version = "0.2.0"
	commit  = ""
	date    = ""
)

func main() {
	port := flag.Int("port", 9999, "The port of the server (default = 9999)")
	speed := flag.Uint("speed", chip8.DefaultSpeed, fmt.Sprintf("Speed in instructions per second (default = %d)", chip8.DefaultSpeed))
	quirksName := flag.String("quirks", "cowgod", "The behaviour of the ambiguous instructions: cowgod, matt or octo (default = cowgod)")
	stackSize := flag.Int("stack", chip8.DefaultStackSize, fmt.Sprintf("The number of return addresses of the stack, at most %d", chip8.MaxStackSize))
	wrap := flag.Bool("wrap", false, "Wrap the sprites around the edges of the screen instead of clipping them")
	seed := flag.Uint64("seed", 0, "The seed of the random number generator (default = random)")
	debug := flag.Bool("debug", false, "Serves the debugger on /debugger and starts on pause")
	static := flag.String("static", "./static", "The directory served on /")
	stats := flag.Bool("stats", false, fmt.Sprintf("Serves the runtime statistics on %s", web.DefaultStatsAddr))
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	slog.Info("chip8 web", slog.String("version", buildinfo.Version(version, commit, date)))

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: web [options] <rom>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	program, err := chip8.LoadRomFile(flag.Arg(0))
	if err != nil {
		slog.Error("Error loading program", slog.Any("error", err))
		os.Exit(1)
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

	server := web.NewServer(func(config *web.ServerConfig) {
		config.Quirks = quirks
		config.Seed = *seed
		config.Speed = *speed
		config.UseDebugger = *debug
		config.StaticDir = *static
		if *stats {
			config.StatsAddr = web.DefaultStatsAddr
		}
	})

	if err := server.LoadProgram(program); err != nil {
		slog.Error("Error loading program", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := server.Listen(ctx, *port); err != nil {
		slog.Error("Server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
