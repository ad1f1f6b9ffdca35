package chip8_test

import (
	"testing"

	"github.com/guslan/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestConstantSetInstructions(t *testing.T) {
	for _, kk := range []byte{0x00, 0x01, 0x0A, 0x7F, 0x80, 0xFF} {
		for x := byte(0); x < 16; x++ {
			m := newMachine(t, []byte{0x60 | x, kk})
			runNCycles(t, m, 1)
			assertVxEq(t, "LD Vx, byte", m, x, kk)
		}
	}
}

func TestAddByteDoesNotTouchVf(t *testing.T) {
	m := newMachine(t, []byte{
		0x6F, 0x07,
		0x60, 0xFF,
		// add 2 to v0, wraps to 1
		0x70, 0x02,
	})
	runNCycles(t, m, 3)

	assertVxEq(t, "ADD Vx, byte", m, 0, 0x01)
	assertVxEq(t, "VF is untouched", m, 0xF, 0x07)
}

func TestAddRegisters(t *testing.T) {
	for _, tc := range [][2]byte{{0, 0}, {1, 2}, {128, 127}, {128, 128}, {255, 1}, {255, 255}, {200, 100}} {
		a, b := tc[0], tc[1]
		m := newMachine(t, []byte{
			0x61, a,
			0x62, b,
			// v1 += v2
			0x81, 0x24,
		})
		runNCycles(t, m, 3)

		sum := int(a) + int(b)
		assertVxEq(t, "ADD Vx, Vy", m, 1, byte(sum%256))
		if sum > 255 {
			assertVxEq(t, "carry", m, 0xF, 1)
		} else {
			assertVxEq(t, "carry", m, 0xF, 0)
		}
	}
}

func TestSubRegisters(t *testing.T) {
	for _, tc := range [][2]byte{{0, 0}, {5, 3}, {3, 5}, {7, 7}, {255, 0}, {0, 255}, {128, 1}} {
		a, b := tc[0], tc[1]
		m := newMachine(t, []byte{
			0x61, a,
			0x62, b,
			// v1 -= v2
			0x81, 0x25,
		})
		runNCycles(t, m, 3)

		assertVxEq(t, "SUB Vx, Vy", m, 1, a-b)
		if a > b {
			assertVxEq(t, "not borrow", m, 0xF, 1)
		} else {
			assertVxEq(t, "not borrow", m, 0xF, 0)
		}
	}
}

func TestSubnRegisters(t *testing.T) {
	for _, tc := range [][2]byte{{0, 0}, {5, 3}, {3, 5}, {7, 7}, {0, 255}} {
		a, b := tc[0], tc[1]
		m := newMachine(t, []byte{
			0x61, a,
			0x62, b,
			// v1 = v2 - v1
			0x81, 0x27,
		})
		runNCycles(t, m, 3)

		assertVxEq(t, "SUBN Vx, Vy", m, 1, b-a)
		if a < b {
			assertVxEq(t, "not borrow", m, 0xF, 1)
		} else {
			assertVxEq(t, "not borrow", m, 0xF, 0)
		}
	}
}

func TestFlagIsWrittenLast(t *testing.T) {
	m := newMachine(t, []byte{
		0x6F, 0xFF,
		0x61, 0x01,
		// vF += v1, the result is replaced by the carry
		0x8F, 0x14,
	})
	runNCycles(t, m, 3)

	assertVxEq(t, "VF holds the carry", m, 0xF, 1)
}

func TestBitwiseInstructions(t *testing.T) {
	m := newMachine(t, []byte{
		0x60, 0b1100,
		0x61, 0b1010,
		0x62, 0b1100,
		0x63, 0b1100,
		0x6F, 0x09,
		// v0 |= v1
		0x80, 0x11,
		// v2 &= v1
		0x82, 0x12,
		// v3 ^= v1
		0x83, 0x13,
		// v4 = v1
		0x84, 0x10,
	})
	runNCycles(t, m, 9)

	assertVxEq(t, "OR", m, 0, 0b1110)
	assertVxEq(t, "AND", m, 2, 0b1000)
	assertVxEq(t, "XOR", m, 3, 0b0110)
	assertVxEq(t, "LD Vx, Vy", m, 4, 0b1010)
	assertVxEq(t, "VF untouched", m, 0xF, 0x09)
}

func TestVfResetQuirk(t *testing.T) {
	quirks := chip8.CowgodQuirks()
	quirks.VfReset = true
	m := newMachineWithQuirks(t, quirks, []byte{
		0x6F, 0x09,
		0x80, 0x11,
	})
	runNCycles(t, m, 2)

	assertVxEq(t, "VF reset", m, 0xF, 0)
}

func TestShiftCowgod(t *testing.T) {
	m := newMachine(t, []byte{
		0x60, 0b10000011,
		0x61, 0b10000011,
		0x62, 0xFF,
		// v0 >>= 1, v2 ignored
		0x80, 0x26,
		0x83, 0xF0,
		// v1 <<= 1
		0x81, 0x2E,
		0x84, 0xF0,
	})
	runNCycles(t, m, 7)

	assertVxEq(t, "SHR", m, 0, 0b01000001)
	assertVxEq(t, "SHR flag", m, 3, 1)
	assertVxEq(t, "SHL", m, 1, 0b00000110)
	assertVxEq(t, "SHL flag", m, 4, 1)
}

func TestShiftMatt(t *testing.T) {
	m := newMachineWithQuirks(t, chip8.MattQuirks(), []byte{
		0x60, 0xFF,
		0x62, 0b00000010,
		// v0 = v2 >> 1
		0x80, 0x26,
		0x83, 0xF0,
		// v1 = v2 << 1
		0x81, 0x2E,
		0x84, 0xF0,
	})
	runNCycles(t, m, 6)

	assertVxEq(t, "SHR", m, 0, 0b00000001)
	assertVxEq(t, "SHR flag", m, 3, 0)
	assertVxEq(t, "SHL", m, 1, 0b00000100)
	assertVxEq(t, "SHL flag", m, 4, 0)
}

func TestShiftOcto(t *testing.T) {
	m := newMachineWithQuirks(t, chip8.OctoQuirks(), []byte{
		0x60, 0b10110100,
		0x61, 0b10110100,
		0x62, 3,
		// v0 >>= v2
		0x80, 0x26,
		0x83, 0xF0,
		// v1 <<= v2
		0x81, 0x2E,
		0x84, 0xF0,
	})
	runNCycles(t, m, 7)

	assertVxEq(t, "SHR", m, 0, 0b00010110)
	assertVxEq(t, "SHR flag", m, 3, 1)
	assertVxEq(t, "SHL", m, 1, 0b10100000)
	assertVxEq(t, "SHL flag", m, 4, 1)
}

func TestSkipInstructions(t *testing.T) {
	tests := []struct {
		name    string
		program []byte
		pc      uint16
	}{
		{"SE Vx, byte taken", []byte{0x60, 0x05, 0x30, 0x05}, 0x206},
		{"SE Vx, byte not taken", []byte{0x60, 0x05, 0x30, 0x06}, 0x204},
		{"SNE Vx, byte taken", []byte{0x60, 0x05, 0x40, 0x06}, 0x206},
		{"SNE Vx, byte not taken", []byte{0x60, 0x05, 0x40, 0x05}, 0x204},
		{"SE Vx, Vy taken", []byte{0x60, 0x00, 0x50, 0x10}, 0x206},
		{"SE Vx, Vy not taken", []byte{0x61, 0x05, 0x50, 0x10}, 0x204},
		{"SNE Vx, Vy taken", []byte{0x61, 0x05, 0x90, 0x10}, 0x206},
		{"SNE Vx, Vy not taken", []byte{0x60, 0x00, 0x90, 0x10}, 0x204},
		{"SE Vx, Vy ignores the last nibble", []byte{0x60, 0x00, 0x50, 0x17}, 0x206},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := newMachine(t, tc.program)
			runNCycles(t, m, 2)
			assert.Equal(t, tc.pc, m.Pc)
		})
	}
}

func TestJumpAndCall(t *testing.T) {
	m := newMachine(t, []byte{
		// 0x200: call 0x206
		0x22, 0x06,
		// 0x202: set v1 after returning
		0x61, 0x01,
		// 0x204: jump to 0x204
		0x12, 0x04,
		// 0x206: set v0 and return
		0x60, 0x01,
		0x00, 0xEE,
	})

	runNCycles(t, m, 1)
	assert.Equal(t, uint16(0x206), m.Pc)
	assert.Equal(t, 1, m.Stack.Len())

	runNCycles(t, m, 2)
	assert.Equal(t, uint16(0x202), m.Pc)
	assert.Equal(t, 0, m.Stack.Len())

	runNCycles(t, m, 3)
	assert.Equal(t, uint16(0x204), m.Pc)
	assertVxEq(t, "subroutine", m, 0, 1)
	assertVxEq(t, "after return", m, 1, 1)
}

func TestJumpWithOffset(t *testing.T) {
	program := []byte{
		0x60, 0x04,
		0x62, 0x10,
		// jump to 0x300 + offset
		0xB3, 0x00,
	}

	m := newMachine(t, program)
	runNCycles(t, m, 3)
	assert.Equal(t, uint16(0x304), m.Pc)

	quirks := chip8.CowgodQuirks()
	quirks.JumpWithVx = true
	m = newMachineWithQuirks(t, quirks, []byte{
		0x60, 0x04,
		0x62, 0x10,
		0xB2, 0x00,
	})
	runNCycles(t, m, 3)
	assert.Equal(t, uint16(0x210), m.Pc)
}

func TestIndexInstructions(t *testing.T) {
	m := newMachine(t, []byte{
		0xA1, 0x23,
		0x60, 0x10,
		// I += v0
		0xF0, 0x1E,
		0x61, 0x0B,
		// I = font(v1)
		0xF1, 0x29,
	})

	runNCycles(t, m, 3)
	assert.Equal(t, uint16(0x133), m.I)

	runNCycles(t, m, 2)
	assert.Equal(t, uint16(0x0B*chip8.FontSpriteSize), m.I)
}

func TestTimerInstructions(t *testing.T) {
	m := newMachine(t, []byte{
		0x60, 0x30,
		0xF0, 0x15,
		0xF0, 0x18,
		// v1 = DT
		0xF1, 0x07,
	})
	runNCycles(t, m, 3)
	m.TickTimers()
	runNCycles(t, m, 1)

	assertVxEq(t, "LD Vx, DT", m, 1, 0x2F)
	assert.Equal(t, byte(0x2F), m.St)
}

// TestBCD stores the BCD representation of 255 at 0x300
func TestBCD(t *testing.T) {
	m := newMachine(t, []byte{
		0x60, 0xFF,
		0xA3, 0x00,
		0xF0, 0x33,
	})
	runNCycles(t, m, 3)

	assert.Equal(t, byte(2), m.Memory.Read(0x300))
	assert.Equal(t, byte(5), m.Memory.Read(0x301))
	assert.Equal(t, byte(5), m.Memory.Read(0x302))
	assert.Equal(t, uint16(0x300), m.I)
}

func TestLoadStoreRegisters(t *testing.T) {
	program := []byte{
		0x60, 0x0A,
		0x61, 0x0B,
		0x62, 0x0C,
		0x63, 0x0D,
		0xA3, 0x00,
		// store v0..v2
		0xF2, 0x55,
		0xA3, 0x01,
		// read v0..v1 from 0x301
		0xF1, 0x65,
	}

	m := newMachine(t, program)
	runNCycles(t, m, 6)
	assert.Equal(t, byte(0x0A), m.Memory.Read(0x300))
	assert.Equal(t, byte(0x0B), m.Memory.Read(0x301))
	assert.Equal(t, byte(0x0C), m.Memory.Read(0x302))
	assert.Equal(t, byte(0x00), m.Memory.Read(0x303), "v3 is not stored")
	assert.Equal(t, uint16(0x300), m.I)

	runNCycles(t, m, 2)
	assertVxEq(t, "LD Vx, [I]", m, 0, 0x0B)
	assertVxEq(t, "LD Vx, [I]", m, 1, 0x0C)
	assertVxEq(t, "LD Vx, [I]", m, 2, 0x0C)
	assert.Equal(t, uint16(0x301), m.I)

	m = newMachineWithQuirks(t, chip8.MattQuirks(), program)
	runNCycles(t, m, 6)
	assert.Equal(t, uint16(0x303), m.I)
	runNCycles(t, m, 2)
	assert.Equal(t, uint16(0x303), m.I)
}

func TestStoreWrapsAroundMemory(t *testing.T) {
	m := newMachine(t, []byte{
		0x60, 0x0A,
		0x61, 0x0B,
		0xAF, 0xFF,
		0xF1, 0x55,
	})
	runNCycles(t, m, 4)

	assert.Equal(t, byte(0x0A), m.Memory.Read(0xFFF))
	assert.Equal(t, byte(0x0B), m.Memory.Read(0x000))
}

func TestClearScreen(t *testing.T) {
	m := newMachine(t, []byte{
		0x00, 0xE0,
	})
	for x := 0; x < chip8.DISPLAY_WIDTH; x += 3 {
		for y := 0; y < chip8.DISPLAY_HEIGHT; y += 2 {
			m.Framebuffer.Toggle(x, y)
		}
	}

	runNCycles(t, m, 1)

	for y := 0; y < chip8.DISPLAY_HEIGHT; y++ {
		for x := 0; x < chip8.DISPLAY_WIDTH; x++ {
			if m.Framebuffer.Pixel(x, y) {
				t.Fatalf(`pixel (%d, %d) is on after CLS`, x, y)
			}
		}
	}
}

// TestDraw draws the single-row sprite 0xF0 at (0, 0)
func TestDraw(t *testing.T) {
	m := newMachine(t, []byte{
		0xA2, 0x06,
		// draw v0, v1, 1
		0xD0, 0x11,
		0x12, 0x04,
		// sprite
		0xF0,
	})
	runNCycles(t, m, 2)

	for x := 0; x < 4; x++ {
		assert.True(t, m.Framebuffer.Pixel(x, 0))
	}
	for x := 4; x < 8; x++ {
		assert.False(t, m.Framebuffer.Pixel(x, 0))
	}
	assertVxEq(t, "no collision", m, 0xF, 0)
}

func TestDrawCollision(t *testing.T) {
	m := newMachine(t, []byte{
		0xA2, 0x08,
		0xD0, 0x11,
		// draw again at (2, 0)
		0x60, 0x02,
		0xD0, 0x11,
		// sprite
		0xF0,
	})
	runNCycles(t, m, 4)

	// 0..1 on, 2..3 toggled off, 4..5 on
	expected := []bool{true, true, false, false, true, true, false}
	for x, on := range expected {
		assert.Equal(t, on, m.Framebuffer.Pixel(x, 0))
	}
	assertVxEq(t, "collision", m, 0xF, 1)
}

func TestDrawClipsAtTheEdges(t *testing.T) {
	program := []byte{
		0x60, 62,
		0x61, 31,
		0xA2, 0x0A,
		0xD0, 0x12,
		0x12, 0x08,
		// sprite
		0xFF, 0xFF,
	}

	m := newMachine(t, program)
	runNCycles(t, m, 4)

	assert.True(t, m.Framebuffer.Pixel(62, 31))
	assert.True(t, m.Framebuffer.Pixel(63, 31))
	assert.False(t, m.Framebuffer.Pixel(0, 31))
	assert.False(t, m.Framebuffer.Pixel(62, 0))
	assert.False(t, m.Framebuffer.Pixel(0, 0))

	quirks := chip8.CowgodQuirks()
	quirks.WrapSprites = true
	m = newMachineWithQuirks(t, quirks, program)
	runNCycles(t, m, 4)

	assert.True(t, m.Framebuffer.Pixel(63, 31))
	assert.True(t, m.Framebuffer.Pixel(5, 31))
	assert.True(t, m.Framebuffer.Pixel(62, 0))
	assert.True(t, m.Framebuffer.Pixel(0, 0))
}

func TestDrawStartingCoordinatesWrap(t *testing.T) {
	m := newMachine(t, []byte{
		// 64 + 1, 32 + 2
		0x60, 65,
		0x61, 34,
		0xA2, 0x0A,
		0xD0, 0x11,
		0x12, 0x08,
		// sprite
		0x80,
	})
	runNCycles(t, m, 4)

	assert.True(t, m.Framebuffer.Pixel(1, 2))
}

func TestSkipOnKey(t *testing.T) {
	m := newMachine(t, []byte{
		0x60, 0x0A,
		// skp v0
		0xE0, 0x9E,
		0x00, 0x00,
		// sknp v0
		0xE0, 0xA1,
	})
	keys := chip8.KeyboardState{}
	keys[0xA] = true
	m.SetKeys(keys)

	runNCycles(t, m, 2)
	assert.Equal(t, uint16(0x206), m.Pc)

	runNCycles(t, m, 1)
	assert.Equal(t, uint16(0x208), m.Pc)
}

func TestSkipOnKeyOutOfRange(t *testing.T) {
	m := newMachine(t, []byte{
		0x60, 0x1F,
		0xE0, 0x9E,
	})
	keys := chip8.KeyboardState{}
	keys[0xF] = true
	m.SetKeys(keys)

	runNCycles(t, m, 2)
	assert.Equal(t, uint16(0x204), m.Pc)
}

func TestWaitForKey(t *testing.T) {
	m := newMachine(t, []byte{
		0x65, 0x33,
		// v5 = key
		0xF5, 0x0A,
	})
	runNCycles(t, m, 1)

	for i := 0; i < 10; i++ {
		runNCycles(t, m, 1)
		assert.Equal(t, uint16(0x202), m.Pc)
		assertVxEq(t, "waiting", m, 5, 0x33)
	}

	keys := chip8.KeyboardState{}
	keys[0x9] = true
	keys[0xC] = true
	m.SetKeys(keys)
	runNCycles(t, m, 1)

	assert.Equal(t, uint16(0x204), m.Pc)
	assertVxEq(t, "lowest key wins", m, 5, 0x9)
}

func TestUnknownOpcodesAreIgnored(t *testing.T) {
	m := newMachine(t, []byte{
		0x60, 0x01,
		0x80, 0x18,
		0xE0, 0x00,
		0xF0, 0xFF,
		0x01, 0x23,
	})

	runNCycles(t, m, 5)

	assert.Equal(t, uint16(0x20A), m.Pc)
	assertVxEq(t, "registers untouched", m, 0, 1)
}
