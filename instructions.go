package chip8

// Execute runs a decoded instruction against the machine.
// Only the stack instructions can fail.
func (m *Machine) Execute(ins Instruction) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpNop, OpSys:
		// SYS addr :: Jump to a machine code routine at nnn.
		// This instruction is only used on the old computers on which Chip-8 was originally implemented.

	case OpCls:
		// CLS :: Clear the display.
		m.Framebuffer.Clear()
		m.screenChanged = true

	case OpRet:
		// RET :: Return from a subroutine.
		addr, err := m.Stack.Pop()
		if err != nil {
			return err
		}
		m.Pc = addr

	case OpJp:
		// JP addr :: Jump to location nnn.
		m.Pc = ins.NNN

	case OpCall:
		// CALL addr :: Call subroutine at nnn.
		if err := m.Stack.Push(m.Pc); err != nil {
			return err
		}
		m.Pc = ins.NNN

	case OpSeByte:
		// SE Vx, byte :: Skip next instruction if Vx = kk.
		m.skipIf(m.V[x] == ins.KK)

	case OpSneByte:
		// SNE Vx, byte :: Skip next instruction if Vx != kk.
		m.skipIf(m.V[x] != ins.KK)

	case OpSeReg:
		// SE Vx, Vy :: Skip next instruction if Vx = Vy.
		m.skipIf(m.V[x] == m.V[y])

	case OpLdByte:
		// LD Vx, byte :: Set Vx = kk.
		m.V[x] = ins.KK

	case OpAddByte:
		// ADD Vx, byte :: Set Vx = Vx + kk. VF is untouched.
		m.V[x] += ins.KK

	case OpLdReg:
		// LD Vx, Vy :: Set Vx = Vy.
		m.V[x] = m.V[y]

	case OpOr:
		// OR Vx, Vy :: Set Vx = Vx OR Vy.
		m.V[x] |= m.V[y]
		m.vfReset()

	case OpAnd:
		// AND Vx, Vy :: Set Vx = Vx AND Vy.
		m.V[x] &= m.V[y]
		m.vfReset()

	case OpXor:
		// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
		m.V[x] ^= m.V[y]
		m.vfReset()

	case OpAddReg:
		// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
		r := uint16(m.V[x]) + uint16(m.V[y])
		m.V[x] = byte(r & 0x00FF)
		m.V[0xF] = byte(r >> 8)

	case OpSub:
		// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
		carry := m.V[x] > m.V[y]
		m.V[x] = m.V[x] - m.V[y]
		m.V[0xF] = bool2byte(carry)

	case OpShr:
		// SHR Vx {, Vy} :: Set Vx = Vx SHR 1.
		m.shiftRight(x, y)

	case OpSubn:
		// SUBN Vx, Vy :: Set Vx = Vy - Vx, set VF = NOT borrow.
		carry := m.V[x] < m.V[y]
		m.V[x] = m.V[y] - m.V[x]
		m.V[0xF] = bool2byte(carry)

	case OpShl:
		// SHL Vx {, Vy} :: Set Vx = Vx SHL 1.
		m.shiftLeft(x, y)

	case OpSneReg:
		// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
		m.skipIf(m.V[x] != m.V[y])

	case OpLdI:
		// LD I, addr :: Set I = nnn.
		m.I = ins.NNN

	case OpJpV0:
		// JP V0, addr :: Jump to location nnn + V0 or nnn + Vx.
		if m.quirks.JumpWithVx {
			m.Pc = uint16(m.V[x]) + ins.NNN
		} else {
			m.Pc = uint16(m.V[0]) + ins.NNN
		}

	case OpRnd:
		// RND Vx, byte :: Set Vx = random byte AND kk.
		m.V[x] = m.randomByte() & ins.KK

	case OpDrw:
		// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory location I at (Vx, Vy), set VF = collision.
		m.draw(x, y, ins.N)

	case OpSkp:
		// SKP Vx :: Skip next instruction if key with the value of Vx is pressed.
		m.skipIf(m.isPressed(m.V[x]))

	case OpSknp:
		// SKNP Vx :: Skip next instruction if key with the value of Vx is not pressed.
		m.skipIf(!m.isPressed(m.V[x]))

	case OpLdVxDt:
		// LD Vx, DT :: Set Vx = delay timer value.
		m.V[x] = m.Dt

	case OpLdVxK:
		// LD Vx, K :: Wait for a key press, store the value of the key in Vx.
		// The instruction is fetched again until a key is down.
		if k, pressed := m.Keys.FirstPressed(); pressed {
			m.V[x] = k
		} else {
			m.Pc -= 2
		}

	case OpLdDtVx:
		// LD DT, Vx :: Set delay timer = Vx.
		m.Dt = m.V[x]

	case OpLdStVx:
		// LD ST, Vx :: Set sound timer = Vx.
		m.St = m.V[x]

	case OpAddIVx:
		// ADD I, Vx :: Set I = I + Vx.
		m.I += uint16(m.V[x])

	case OpLdFVx:
		// LD F, Vx :: Set I = location of sprite for digit Vx.
		m.I = FontAddress(m.V[x])

	case OpLdBVx:
		// LD B, Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
		v := m.V[x]
		m.Memory.Write(m.I+0, v/100)
		m.Memory.Write(m.I+1, (v/10)%10)
		m.Memory.Write(m.I+2, v%10)

	case OpLdIVx:
		// LD [I], Vx :: Store registers V0 through Vx in memory starting at location I.
		for i := uint16(0); i <= uint16(x); i++ {
			m.Memory.Write(m.I+i, m.V[i])
		}
		if m.quirks.LoadStoreIncrementsIndex {
			m.I += uint16(x) + 1
		}

	case OpLdVxI:
		// LD Vx, [I] :: Read registers V0 through Vx from memory starting at location I.
		for i := uint16(0); i <= uint16(x); i++ {
			m.V[i] = m.Memory.Read(m.I + i)
		}
		if m.quirks.LoadStoreIncrementsIndex {
			m.I += uint16(x) + 1
		}
	}

	return nil
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.Pc += 2
	}
}

func (m *Machine) isPressed(k byte) bool {
	return k < KeyCount && m.Keys[k]
}

func (m *Machine) vfReset() {
	if m.quirks.VfReset {
		m.V[0xF] = 0
	}
}

func (m *Machine) shiftRight(x, y byte) {
	var result, carry byte

	switch m.quirks.Shift {
	case ShiftMatt:
		carry = m.V[y] & 0b00000001
		result = m.V[y] >> 1
	case ShiftOcto:
		n := m.V[y]
		result = m.V[x] >> n
		if n > 0 {
			carry = (m.V[x] >> (n - 1)) & 0b00000001
		}
	default:
		carry = m.V[x] & 0b00000001
		result = m.V[x] >> 1
	}

	m.V[x] = result
	m.V[0xF] = carry
}

func (m *Machine) shiftLeft(x, y byte) {
	var result, carry byte

	switch m.quirks.Shift {
	case ShiftMatt:
		carry = (m.V[y] & 0b10000000) >> 7
		result = m.V[y] << 1
	case ShiftOcto:
		n := m.V[y]
		result = m.V[x] << n
		if n > 0 {
			carry = ((m.V[x] << (n - 1)) & 0b10000000) >> 7
		}
	default:
		carry = (m.V[x] & 0b10000000) >> 7
		result = m.V[x] << 1
	}

	m.V[x] = result
	m.V[0xF] = carry
}

// draw XORs an n-byte sprite read from I onto the framebuffer.
// Sprites are clipped at the edges unless the WrapSprites quirk is set.
func (m *Machine) draw(x, y, n byte) {
	vx := int(m.V[x] & (DISPLAY_WIDTH - 1))
	vy := int(m.V[y] & (DISPLAY_HEIGHT - 1))

	m.V[0xF] = 0
	collision := false

	for row := 0; row < int(n); row++ {
		py := vy + row
		if py >= DISPLAY_HEIGHT {
			if !m.quirks.WrapSprites {
				break
			}
			py %= DISPLAY_HEIGHT
		}

		sprite := m.Memory.Read(m.I + uint16(row))
		for col := 0; col < 8; col++ {
			px := vx + col
			if px >= DISPLAY_WIDTH {
				if !m.quirks.WrapSprites {
					break
				}
				px %= DISPLAY_WIDTH
			}

			if sprite&(0b10000000>>col) == 0 {
				continue
			}
			if m.Framebuffer.Toggle(px, py) {
				collision = true
			}
		}
	}

	if collision {
		m.V[0xF] = 1
	}
	m.screenChanged = true
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
