package chip8_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/guslan/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestMemoryWraps(t *testing.T) {
	mem := chip8.NewMemory()

	mem.Write(chip8.MEMORY_SIZE+0x10, 0x42)

	assert.Equal(t, byte(0x42), mem.Read(0x10))
	assert.Equal(t, byte(0x42), mem.Read(chip8.MEMORY_SIZE+0x10))
}

func TestReadOpcodeIsBigEndian(t *testing.T) {
	mem := chip8.NewMemory()
	mem.Write(0x300, 0xD0)
	mem.Write(0x301, 0x1F)
	mem.Write(0xFFF, 0x12)
	mem.Write(0x000, 0x34)

	assert.Equal(t, chip8.Opcode(0xD01F), mem.ReadOpcode(0x300))
	assert.Equal(t, chip8.Opcode(0x1234), mem.ReadOpcode(0xFFF))
}

func TestFontIsLoaded(t *testing.T) {
	mem := chip8.NewMemory()

	// glyph of 8
	addr := chip8.FontAddress(8)
	assert.Equal(t, uint16(40), addr)
	for i, b := range []byte{0xF0, 0x90, 0xF0, 0x90, 0xF0} {
		assert.Equal(t, b, mem.Read(addr+uint16(i)))
	}

	assert.Equal(t, chip8.FontAddress(0xA), chip8.FontAddress(0x1A), "only the low nibble selects a glyph")
}

func TestMemoryLoadProgram(t *testing.T) {
	mem := chip8.NewMemory()
	mem.Write(0x000, 0x00)
	mem.Write(0x400, 0xAA)

	assert.NoError(t, mem.LoadProgram([]byte{0x12, 0x34}))

	assert.Equal(t, byte(0xF0), mem.Read(0x000), "the font is restored")
	assert.Equal(t, chip8.Opcode(0x1234), mem.ReadOpcode(chip8.StartOfProgram))
	assert.Equal(t, byte(0x00), mem.Read(0x400))
}

func TestMemoryLoadProgramTooBig(t *testing.T) {
	mem := chip8.NewMemory()
	mem.Write(0x400, 0xAA)

	err := mem.LoadProgram(make([]byte, chip8.MaxRomSize))

	assert.True(t, errors.Is(err, chip8.ErrProgramDoesNotFitIntoMemory))
	assert.Error(t, err, "the program does not fit into memory: 3215 bytes, the limit is 3214")
	assert.Equal(t, byte(0xAA), mem.Read(0x400), "memory is untouched")
}

func TestMemoryString(t *testing.T) {
	mem := chip8.NewMemory()
	assert.NoError(t, mem.LoadProgram([]byte{0x12, 0x34}))

	s := mem.String()

	assert.True(t, strings.HasPrefix(s, "[ F0 90 90 90 F0 "), "the font comes first")
	assert.True(t, strings.Contains(s, "]\n[ 12 34 0 "), "the program starts the second row")
	assert.True(t, strings.HasSuffix(s, "]"))
}
