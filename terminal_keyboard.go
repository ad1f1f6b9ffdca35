//go:build !windows

package chip8

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/pkg/term"
)

// DefaultKeyHold is how long a key stays down after its last repetition.
// Terminals only report key presses, so releases are synthesised.
const DefaultKeyHold = 150 * time.Millisecond

// TerminalKeyboard reads the keypad from the controlling terminal in cbreak mode
type TerminalKeyboard struct {
	Device string
	Hold   time.Duration

	tty    *term.Term
	lookup map[rune]byte

	mu        sync.RWMutex
	pressedAt [KeyCount]time.Time
	done      chan struct{}
}

func NewTerminalKeyboardWithLayout(layout KeyboardLayout) *TerminalKeyboard {
	return &TerminalKeyboard{
		Device: "/dev/tty",
		Hold:   DefaultKeyHold,
		lookup: LookupMap(layout),
		done:   make(chan struct{}),
	}
}

// Boot implements Keyboard.
func (kb *TerminalKeyboard) Boot() error {
	tty, err := term.Open(kb.Device, term.CBreakMode)
	if err != nil {
		return err
	}
	kb.tty = tty

	go kb.readLoop(tty)

	return nil
}

// Close restores the terminal to the state it had before Boot
func (kb *TerminalKeyboard) Close() error {
	if kb.tty == nil {
		return nil
	}

	select {
	case <-kb.done:
	default:
		close(kb.done)
	}

	tty := kb.tty
	kb.tty = nil

	return errors.Join(tty.Restore(), tty.Close())
}

// IsPressed implements Keyboard.
func (kb *TerminalKeyboard) IsPressed(k byte) bool {
	if k >= KeyCount {
		return false
	}

	kb.mu.RLock()
	defer kb.mu.RUnlock()

	return time.Since(kb.pressedAt[k]) < kb.Hold
}

func (kb *TerminalKeyboard) press(r rune, at time.Time) {
	k, ok := kb.lookup[r]
	if !ok {
		return
	}

	kb.mu.Lock()
	kb.pressedAt[k] = at
	kb.mu.Unlock()
}

func (kb *TerminalKeyboard) readLoop(tty *term.Term) {
	buff := make([]byte, 16)
	for {
		n, err := tty.Read(buff)
		if err != nil {
			select {
			case <-kb.done:
			default:
				if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
					slog.Error("Error reading the terminal", slog.Any("error", err))
				}
			}
			return
		}

		now := time.Now()
		for _, b := range buff[:n] {
			kb.press(rune(b), now)
		}
	}
}
