package chip8

import (
	"io"
	"log/slog"
	"os"
)

// Buzzer is told when the sound timer becomes active and inactive
type Buzzer interface {
	// Boot initializes the component
	Boot() error
	Play()
	Stop()
}

type DummyBuzzer struct {
	IsPlaying bool
}

// Boot implements Buzzer.
func (b *DummyBuzzer) Boot() error {
	return nil
}

func NewDummyBuzzer() *DummyBuzzer {
	return &DummyBuzzer{
		IsPlaying: false,
	}
}

// Play implements Buzzer.
func (b *DummyBuzzer) Play() {
	b.IsPlaying = true
}

// Stop implements Buzzer
func (b *DummyBuzzer) Stop() {
	b.IsPlaying = false
}

const BEL = 0x07

// TerminalBuzzer rings the terminal bell every time a tone starts
type TerminalBuzzer struct {
	terminal  io.Writer
	isPlaying bool
}

func NewTerminalBuzzer() *TerminalBuzzer {
	return NewTerminalBuzzerWithOutput(os.Stdout)
}

func NewTerminalBuzzerWithOutput(out io.Writer) *TerminalBuzzer {
	return &TerminalBuzzer{terminal: out}
}

// Boot implements Buzzer.
func (b *TerminalBuzzer) Boot() error {
	return nil
}

// Play implements Buzzer.
func (b *TerminalBuzzer) Play() {
	if !b.isPlaying {
		if _, err := b.terminal.Write([]byte{BEL}); err != nil {
			slog.Warn("Error ringing the terminal bell", slog.Any("error", err))
		}
	}
	b.isPlaying = true
}

// Stop implements Buzzer.
func (b *TerminalBuzzer) Stop() {
	b.isPlaying = false
}
