package chip8

// Opcode is a 16-bit instruction word, big-endian in memory.
// Nibbles are numbered 1 to 4 from the most significant one.
type Opcode uint16

// Nib1 returns the most significant nibble of the opcode.
func Nib1(op Opcode) byte {
	return byte(op >> 12)
}

// Nib2 returns the second nibble of the opcode.
func Nib2(op Opcode) byte {
	return byte((op >> 8) & 0xF)
}

// Nib3 returns the third nibble of the opcode.
func Nib3(op Opcode) byte {
	return byte((op >> 4) & 0xF)
}

// Nib4 returns the least significant nibble of the opcode.
func Nib4(op Opcode) byte {
	return byte(op & 0xF)
}

// NibblesToByte recomposes a byte from its high and low nibbles.
func NibblesToByte(hi, lo byte) byte {
	return (hi << 4) | (lo & 0xF)
}

// Address recomposes a 12-bit address from three nibbles.
func Address(n2, n3, n4 byte) uint16 {
	return uint16(n2&0xF)<<8 | uint16(NibblesToByte(n3, n4))
}

func (op Opcode) X() byte {
	return Nib2(op)
}

func (op Opcode) Y() byte {
	return Nib3(op)
}

func (op Opcode) N() byte {
	return Nib4(op)
}

func (op Opcode) KK() byte {
	return NibblesToByte(Nib3(op), Nib4(op))
}

func (op Opcode) NNN() uint16 {
	return Address(Nib2(op), Nib3(op), Nib4(op))
}
