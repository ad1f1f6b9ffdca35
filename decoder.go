package chip8

import "fmt"

// Operation identifies one instruction of the set
type Operation byte

const (
	OpNop Operation = iota
	OpSys
	OpCls
	OpRet
	OpJp
	OpCall
	OpSeByte
	OpSneByte
	OpSeReg
	OpLdByte
	OpAddByte
	OpLdReg
	OpOr
	OpAnd
	OpXor
	OpAddReg
	OpSub
	OpShr
	OpSubn
	OpShl
	OpSneReg
	OpLdI
	OpJpV0
	OpRnd
	OpDrw
	OpSkp
	OpSknp
	OpLdVxDt
	OpLdVxK
	OpLdDtVx
	OpLdStVx
	OpAddIVx
	OpLdFVx
	OpLdBVx
	OpLdIVx
	OpLdVxI
)

// Instruction is a decoded opcode with its operand fields
type Instruction struct {
	Op     Operation
	Opcode Opcode
	X, Y   byte
	N      byte
	KK     byte
	NNN    uint16
}

// Decode maps an opcode to exactly one instruction.
// Encodings that are not part of the set decode to OpNop.
func Decode(opCode Opcode) Instruction {
	return Instruction{
		Op:     decodeOperation(opCode),
		Opcode: opCode,
		X:      opCode.X(),
		Y:      opCode.Y(),
		N:      opCode.N(),
		KK:     opCode.KK(),
		NNN:    opCode.NNN(),
	}
}

func decodeOperation(opCode Opcode) Operation {
	switch Nib1(opCode) {
	case 0x0:
		switch NibblesToByte(Nib3(opCode), Nib4(opCode)) {
		case 0xE0:
			return OpCls
		case 0xEE:
			return OpRet
		default:
			// Jump to a machine code routine at nnn. Ignored by modern interpreters.
			return OpSys
		}

	case 0x1:
		return OpJp
	case 0x2:
		return OpCall
	case 0x3:
		return OpSeByte
	case 0x4:
		return OpSneByte
	case 0x5:
		return OpSeReg
	case 0x6:
		return OpLdByte
	case 0x7:
		return OpAddByte

	case 0x8:
		switch Nib4(opCode) {
		case 0x0:
			return OpLdReg
		case 0x1:
			return OpOr
		case 0x2:
			return OpAnd
		case 0x3:
			return OpXor
		case 0x4:
			return OpAddReg
		case 0x5:
			return OpSub
		case 0x6:
			return OpShr
		case 0x7:
			return OpSubn
		case 0xE:
			return OpShl
		}
		return OpNop

	case 0x9:
		return OpSneReg
	case 0xA:
		return OpLdI
	case 0xB:
		return OpJpV0
	case 0xC:
		return OpRnd
	case 0xD:
		return OpDrw

	case 0xE:
		switch NibblesToByte(Nib3(opCode), Nib4(opCode)) {
		case 0x9E:
			return OpSkp
		case 0xA1:
			return OpSknp
		}
		return OpNop

	case 0xF:
		switch NibblesToByte(Nib3(opCode), Nib4(opCode)) {
		case 0x07:
			return OpLdVxDt
		case 0x0A:
			return OpLdVxK
		case 0x15:
			return OpLdDtVx
		case 0x18:
			return OpLdStVx
		case 0x1E:
			return OpAddIVx
		case 0x29:
			return OpLdFVx
		case 0x33:
			return OpLdBVx
		case 0x55:
			return OpLdIVx
		case 0x65:
			return OpLdVxI
		}
		return OpNop
	}

	return OpNop
}

// String renders the instruction using Cowgod's mnemonics
func (ins Instruction) String() string {
	switch ins.Op {
	case OpSys:
		return fmt.Sprintf("SYS %03X", ins.NNN)
	case OpCls:
		return "CLS"
	case OpRet:
		return "RET"
	case OpJp:
		return fmt.Sprintf("JP %03X", ins.NNN)
	case OpCall:
		return fmt.Sprintf("CALL %03X", ins.NNN)
	case OpSeByte:
		return fmt.Sprintf("SE V%X, %02X", ins.X, ins.KK)
	case OpSneByte:
		return fmt.Sprintf("SNE V%X, %02X", ins.X, ins.KK)
	case OpSeReg:
		return fmt.Sprintf("SE V%X, V%X", ins.X, ins.Y)
	case OpLdByte:
		return fmt.Sprintf("LD V%X, %02X", ins.X, ins.KK)
	case OpAddByte:
		return fmt.Sprintf("ADD V%X, %02X", ins.X, ins.KK)
	case OpLdReg:
		return fmt.Sprintf("LD V%X, V%X", ins.X, ins.Y)
	case OpOr:
		return fmt.Sprintf("OR V%X, V%X", ins.X, ins.Y)
	case OpAnd:
		return fmt.Sprintf("AND V%X, V%X", ins.X, ins.Y)
	case OpXor:
		return fmt.Sprintf("XOR V%X, V%X", ins.X, ins.Y)
	case OpAddReg:
		return fmt.Sprintf("ADD V%X, V%X", ins.X, ins.Y)
	case OpSub:
		return fmt.Sprintf("SUB V%X, V%X", ins.X, ins.Y)
	case OpShr:
		return fmt.Sprintf("SHR V%X, V%X", ins.X, ins.Y)
	case OpSubn:
		return fmt.Sprintf("SUBN V%X, V%X", ins.X, ins.Y)
	case OpShl:
		return fmt.Sprintf("SHL V%X, V%X", ins.X, ins.Y)
	case OpSneReg:
		return fmt.Sprintf("SNE V%X, V%X", ins.X, ins.Y)
	case OpLdI:
		return fmt.Sprintf("LD I, %03X", ins.NNN)
	case OpJpV0:
		return fmt.Sprintf("JP V0, %03X", ins.NNN)
	case OpRnd:
		return fmt.Sprintf("RND V%X, %02X", ins.X, ins.KK)
	case OpDrw:
		return fmt.Sprintf("DRW V%X, V%X, %X", ins.X, ins.Y, ins.N)
	case OpSkp:
		return fmt.Sprintf("SKP V%X", ins.X)
	case OpSknp:
		return fmt.Sprintf("SKNP V%X", ins.X)
	case OpLdVxDt:
		return fmt.Sprintf("LD V%X, DT", ins.X)
	case OpLdVxK:
		return fmt.Sprintf("LD V%X, K", ins.X)
	case OpLdDtVx:
		return fmt.Sprintf("LD DT, V%X", ins.X)
	case OpLdStVx:
		return fmt.Sprintf("LD ST, V%X", ins.X)
	case OpAddIVx:
		return fmt.Sprintf("ADD I, V%X", ins.X)
	case OpLdFVx:
		return fmt.Sprintf("LD F, V%X", ins.X)
	case OpLdBVx:
		return fmt.Sprintf("LD B, V%X", ins.X)
	case OpLdIVx:
		return fmt.Sprintf("LD [I], V%X", ins.X)
	case OpLdVxI:
		return fmt.Sprintf("LD V%X, [I]", ins.X)
	}

	return fmt.Sprintf("DW %04X", uint16(ins.Opcode))
}
