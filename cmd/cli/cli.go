//go:build !windows

/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

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
	portPtr := flag.Int("port", 0, "serve the debugger on this port, 0 turns it off")
	noTermPtr := flag.Bool("noterm", false, "turn off the terminal display of the emulator")
	speed := flag.Uint("speed", chip8.DefaultSpeed, "instructions per second")
	quirksName := flag.String("quirks", "cowgod", "behaviour of the ambiguous instructions: cowgod, matt or octo")
	stackSize := flag.Int("stack", chip8.DefaultStackSize, fmt.Sprintf("number of return addresses of the stack, at most %d", chip8.MaxStackSize))
	wrap := flag.Bool("wrap", false, "wrap the sprites around the edges of the screen")
	seed := flag.Uint64("seed", 0, "seed of the random number generator, 0 picks one")
	layout := flag.String("layout", string(chip8.DefaultKeyboardLayout), "the 16 host keys bound to the keypad in reading order")
	logFile := flag.String("log", "", "write the logs to this file")
	debug := flag.Bool("debug", false, "log at debug level")

	flag.Parse()

	if err := setupLogger(*logFile, *debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "chip8 %s\n\n", buildinfo.Version(version, commit, date))
		fmt.Fprintln(os.Stderr, "usage: cli [options] <rom>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	program, err := chip8.LoadRomFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	quirks, err := chip8.QuirksByName(*quirksName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	quirks.StackSize = *stackSize
	quirks.WrapSprites = quirks.WrapSprites || *wrap

	if *seed == 0 {
		*seed = chip8.RandomSeed()
	}

	kb := chip8.NewTerminalKeyboardWithLayout(chip8.KeyboardLayout(*layout))
	var d chip8.Display
	var b chip8.Buzzer
	if *noTermPtr {
		d = chip8.NewDefaultInMemoryDisplay()
		b = chip8.NewDummyBuzzer()
	} else {
		d = chip8.NewDefaultTerminalDisplay()
		b = chip8.NewTerminalBuzzer()
	}

	cpu := chip8.NewCpu(chip8.NewMachine(quirks, *seed), d, kb, b)
	if err := cpu.LoadProgram(program); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *portPtr > 0 {
		go serveDebugger(ctx, debuggerHandler(cpu), *portPtr)
	}

	if err := cpu.Boot(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer kb.Close()

	err = cpu.RunAtSpeed(ctx, *speed)
	kb.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "\r\n%v\r\n", err)
		os.Exit(1)
	}
}

// setupLogger keeps the logs away from the terminal the display draws on
func setupLogger(path string, debug bool) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var out io.Writer = io.Discard
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		out = f
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))

	return nil
}

// debuggerHandler pauses the CPU and exposes its controls next to the debugger
func debuggerHandler(cpu *chip8.Cpu) http.Handler {
	mux := http.NewServeMux()
	web.HandleControls(mux, cpu)
	mux.Handle("/debugger", web.NewHttpDebugger(cpu))

	return mux
}

func serveDebugger(ctx context.Context, handler http.Handler, port int) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	slog.Info("Debugger listening on port", slog.Int("port", port))
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Debugger stopped", slog.Any("error", err))
	}
}
