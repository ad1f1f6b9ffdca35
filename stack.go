package chip8

import "errors"

var ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
var ErrStackOverflow = errors.New("stack overflow: try to push to a full stack")

const (
	DefaultStackSize = 16
	MaxStackSize     = 48
	emptyStackTop    = -1
)

// Stack of return addresses.
// Push increments the top then writes, Pop reads then decrements.
type Stack struct {
	entries []uint16
	top     int
}

// NewStack creates an empty stack. The size is clamped to [DefaultStackSize, MaxStackSize].
func NewStack(size int) Stack {
	size = min(max(size, DefaultStackSize), MaxStackSize)

	return Stack{
		entries: make([]uint16, size),
		top:     emptyStackTop,
	}
}

func (s *Stack) Push(addr uint16) error {
	if s.top+1 >= len(s.entries) {
		return ErrStackOverflow
	}
	s.top++
	s.entries[s.top] = addr

	return nil
}

func (s *Stack) Pop() (uint16, error) {
	if s.top <= emptyStackTop {
		return 0, ErrStackUnderflow
	}
	addr := s.entries[s.top]
	s.top--

	return addr, nil
}

// Top returns the index of the top of the stack, -1 when empty
func (s Stack) Top() int {
	return s.top
}

func (s Stack) Len() int {
	return s.top + 1
}

func (s Stack) Cap() int {
	return len(s.entries)
}

// Entries returns a copy of the whole backing storage
func (s Stack) Entries() []uint16 {
	return append([]uint16(nil), s.entries...)
}

func (s *Stack) reset() {
	clear(s.entries)
	s.top = emptyStackTop
}
