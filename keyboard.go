package chip8

import "sync"

const KeyCount = 16

// KeyboardState holds one flag per hexadecimal key, true meaning DOWN
type KeyboardState [KeyCount]bool

// FirstPressed returns the lowest key that is down
func (s KeyboardState) FirstPressed() (byte, bool) {
	for k, down := range s {
		if down {
			return byte(k), true
		}
	}

	return 0, false
}

type Keyboard interface {
	// Boot initializes the component
	Boot() error
	IsPressed(k byte) bool
}

// Snapshot reads the state of every key of kb
func Snapshot(kb Keyboard) KeyboardState {
	state := KeyboardState{}
	for k := range state {
		state[k] = kb.IsPressed(byte(k))
	}

	return state
}

// InMemoryKeyboard is a keyboard whose keys are set by the front end.
// It is safe to press and release keys from another goroutine.
type InMemoryKeyboard struct {
	mu    sync.RWMutex
	state KeyboardState
}

func NewInMemoryKeyboard() *InMemoryKeyboard {
	return &InMemoryKeyboard{}
}

// Boot implements Keyboard.
func (kb *InMemoryKeyboard) Boot() error {
	return nil
}

// IsPressed implements Keyboard.
func (kb *InMemoryKeyboard) IsPressed(k byte) bool {
	if k >= KeyCount {
		return false
	}

	kb.mu.RLock()
	defer kb.mu.RUnlock()

	return kb.state[k]
}

func (kb *InMemoryKeyboard) Get() KeyboardState {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	return kb.state
}

func (kb *InMemoryKeyboard) Press(k byte) {
	kb.Set(k, true)
}

func (kb *InMemoryKeyboard) Release(k byte) {
	kb.Set(k, false)
}

func (kb *InMemoryKeyboard) Set(k byte, down bool) {
	if k >= KeyCount {
		return
	}

	kb.mu.Lock()
	kb.state[k] = down
	kb.mu.Unlock()
}

// KeyboardLayout lists the host keys bound to the keypad, in keypad reading order:
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
type KeyboardLayout string

const (
	QwertyKeyboardLayout KeyboardLayout = "1234qwerasdfzxcv"
	AzertyKeyboardLayout KeyboardLayout = "1234azerqsdfwxcv"
	DvorakKeyboardLayout KeyboardLayout = "1234',.paoeu;qjk"
)

var DefaultKeyboardLayout = QwertyKeyboardLayout

var keypadOrder = [KeyCount]byte{
	0x1, 0x2, 0x3, 0xC,
	0x4, 0x5, 0x6, 0xD,
	0x7, 0x8, 0x9, 0xE,
	0xA, 0x0, 0xB, 0xF,
}

// LookupMap maps every rune of the layout to its keypad key.
// Layouts shorter than 16 runes only bind the first keys.
func LookupMap(layout KeyboardLayout) map[rune]byte {
	m := make(map[rune]byte, KeyCount)
	i := 0
	for _, r := range layout {
		if i >= KeyCount {
			break
		}
		m[r] = keypadOrder[i]
		i++
	}

	return m
}
