package chip8

import (
	"errors"
	"fmt"
	"strings"
)

var ErrProgramDoesNotFitIntoMemory = errors.New("the program does not fit into memory")

const StartOfProgram = 0x200

const MEMORY_SIZE = 4096

// MaxRomSize is the exclusive upper bound of a loadable program.
// Programs of MaxRomSize bytes or more are rejected.
const MaxRomSize = 3215

// FontSpriteSize is the number of bytes of a single hexadecimal glyph
const FontSpriteSize = 5

type Memory [MEMORY_SIZE]byte

// NewMemory creates a memory of 4096 bytes with the font loaded at 0x000
func NewMemory() *Memory {
	m := Memory([MEMORY_SIZE]byte{})
	loadCharactersInto(&m)

	return &m
}

// Read returns the byte at addr. Addresses wrap around the memory size.
func (mem *Memory) Read(addr uint16) byte {
	return mem[addr%MEMORY_SIZE]
}

// Write stores b at addr. Addresses wrap around the memory size.
func (mem *Memory) Write(addr uint16, b byte) {
	mem[addr%MEMORY_SIZE] = b
}

// ReadOpcode reads the big-endian word at addr
func (mem *Memory) ReadOpcode(addr uint16) Opcode {
	var opCode Opcode
	opCode |= Opcode(mem.Read(addr+0)) << 8
	opCode |= Opcode(mem.Read(addr+1)) << 0

	return opCode
}

func (mem Memory) String() string {
	sb := strings.Builder{}

	sb.WriteString("[ ")
	for _, b := range mem[:StartOfProgram] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]\n")
	sb.WriteString("[ ")
	for _, b := range mem[StartOfProgram:] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]")

	return sb.String()
}

// LoadProgram loads the program at the start-of-program address.
// Memory is left untouched when the program is too big.
func (mem *Memory) LoadProgram(program []byte) error {
	if len(program) >= MaxRomSize {
		return fmt.Errorf("%w: %d bytes, the limit is %d", ErrProgramDoesNotFitIntoMemory, len(program), MaxRomSize-1)
	}

	loadCharactersInto(mem)
	clear(mem[StartOfProgram:])
	copy(mem[StartOfProgram:], program)

	return nil
}

// FontAddress returns the location of the glyph of a hexadecimal digit
func FontAddress(digit byte) uint16 {
	return uint16(digit%16) * FontSpriteSize
}

var font = [16 * FontSpriteSize]byte{
	// 0
	0xF0, 0x90, 0x90, 0x90, 0xF0,
	// 1
	0x20, 0x60, 0x20, 0x20, 0x70,
	// 2
	0xF0, 0x10, 0xF0, 0x80, 0xF0,
	// 3
	0xF0, 0x10, 0xF0, 0x10, 0xF0,
	// 4
	0x90, 0x90, 0xF0, 0x10, 0x10,
	// 5
	0xF0, 0x80, 0xF0, 0x10, 0xF0,
	// 6
	0xF0, 0x80, 0xF0, 0x90, 0xF0,
	// 7
	0xF0, 0x10, 0x20, 0x40, 0x40,
	// 8
	0xF0, 0x90, 0xF0, 0x90, 0xF0,
	// 9
	0xF0, 0x90, 0xF0, 0x10, 0xF0,
	// A
	0xF0, 0x90, 0xF0, 0x90, 0x90,
	// B
	0xE0, 0x90, 0xE0, 0x90, 0xE0,
	// C
	0xF0, 0x80, 0x80, 0x80, 0xF0,
	// D
	0xE0, 0x90, 0x90, 0x90, 0xE0,
	// E
	0xF0, 0x80, 0xF0, 0x80, 0xF0,
	// F
	0xF0, 0x80, 0xF0, 0x80, 0x80,
}

func loadCharactersInto(mem *Memory) {
	copy(mem[:], font[:])
}
