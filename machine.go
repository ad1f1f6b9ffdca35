package chip8

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand/v2"
)

const RegisterCount = 16

// ErrFault is a runtime fault raised while executing an instruction
type ErrFault struct {
	Opcode Opcode
	Pc     uint16
	Err    error
}

func (err *ErrFault) Error() string {
	return fmt.Sprintf("opcode=%04X at PC=%03X: %v", uint16(err.Opcode), err.Pc, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// Machine is the complete state of one CHIP-8 virtual machine
type Machine struct {
	Memory *Memory
	// V 8-bit registers
	V [RegisterCount]byte
	// I 16-bit register (12-bit usable)
	I uint16
	// Delay timer register
	Dt byte
	// Sound timer register
	St byte
	// Program counter
	Pc uint16
	// Stack of return addresses
	Stack Stack
	// Keys pressed as last fed by the input collaborator
	Keys KeyboardState
	// Framebuffer
	Framebuffer Framebuffer

	quirks  Quirks
	rng     *mrand.Rand
	program []byte

	screenChanged bool
}

// NewMachine creates a machine with the font loaded and everything else zeroed.
// The seed initializes the random source used by CXNN; it is never reseeded.
func NewMachine(quirks Quirks, seed uint64) *Machine {
	if quirks.StackSize == 0 {
		quirks.StackSize = DefaultStackSize
	}

	return &Machine{
		Memory: NewMemory(),
		Pc:     StartOfProgram,
		Stack:  NewStack(quirks.StackSize),
		quirks: quirks,
		rng:    mrand.New(mrand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

// RandomSeed reads a seed from the system entropy source
func RandomSeed() uint64 {
	buff := [8]byte{}
	if _, err := rand.Read(buff[:]); err != nil {
		panic(fmt.Errorf("reading entropy: %w", err))
	}

	return binary.LittleEndian.Uint64(buff[:])
}

func (m *Machine) Quirks() Quirks {
	return m.quirks
}

// LoadProgram loads the program into memory and resets the registers
func (m *Machine) LoadProgram(program []byte) error {
	if err := m.Memory.LoadProgram(program); err != nil {
		return err
	}

	m.program = append([]byte(nil), program...)
	m.resetRegisters()

	return nil
}

// Reset brings the machine back to the state right after the program was loaded
func (m *Machine) Reset() {
	// cannot fail, the program was accepted already
	_ = m.Memory.LoadProgram(m.program)
	m.resetRegisters()
}

func (m *Machine) resetRegisters() {
	m.V = [RegisterCount]byte{}
	m.I = 0
	m.Dt = 0
	m.St = 0
	m.Pc = StartOfProgram
	m.Stack.reset()
	m.Keys = KeyboardState{}
	m.Framebuffer.Clear()
	m.screenChanged = true
}

// Fetch reads the opcode at PC and moves PC to the next instruction
func (m *Machine) Fetch() Opcode {
	opCode := m.Memory.ReadOpcode(m.Pc)
	m.Pc += 2

	return opCode
}

// Step runs a single fetch-decode-execute cycle.
// On a fault PC is left on the faulting instruction.
func (m *Machine) Step() (Instruction, error) {
	pc := m.Pc
	ins := Decode(m.Fetch())

	if err := m.Execute(ins); err != nil {
		m.Pc = pc
		return ins, &ErrFault{
			Opcode: ins.Opcode,
			Pc:     pc,
			Err:    err,
		}
	}

	return ins, nil
}

// TickTimers decrements the delay and sound timers if they are not zero.
// It has to be called at 60Hz.
func (m *Machine) TickTimers() {
	if m.Dt > 0 {
		m.Dt--
	}
	if m.St > 0 {
		m.St--
	}
}

// IsSoundTimerActive reports whether a tone should be playing
func (m *Machine) IsSoundTimerActive() bool {
	return m.St > 0
}

func (m *Machine) IsDelayTimerActive() bool {
	return m.Dt > 0
}

// SetKeys replaces the keypad state
func (m *Machine) SetKeys(keys KeyboardState) {
	m.Keys = keys
}

// ScreenChanged reports whether the framebuffer changed since the last call
func (m *Machine) ScreenChanged() bool {
	changed := m.screenChanged
	m.screenChanged = false

	return changed
}

// State is a copy of the registers of a machine
type State struct {
	Opcode Opcode
	Pc     uint16
	V      [RegisterCount]byte
	I      uint16
	Sp     int
	Stack  []uint16
	Dt, St byte
}

// State copies the registers. Opcode is the instruction at PC.
func (m *Machine) State() State {
	return State{
		Opcode: m.Memory.ReadOpcode(m.Pc),
		Pc:     m.Pc,
		V:      m.V,
		I:      m.I,
		Sp:     m.Stack.Top(),
		Stack:  m.Stack.Entries(),
		Dt:     m.Dt,
		St:     m.St,
	}
}

func (m *Machine) randomByte() byte {
	return byte(m.rng.Uint32N(256))
}
