package chip8

import (
	"fmt"
	"strings"
)

// ShiftMode selects the source of 8XY6 and 8XYE
type ShiftMode byte

const (
	// ShiftCowgod shifts VX in place, VF gets the bit shifted out of VX.
	ShiftCowgod ShiftMode = iota
	// ShiftMatt stores VY shifted by one into VX, VF gets the bit shifted out of VY.
	ShiftMatt
	// ShiftOcto shifts VX by the count held in VY.
	ShiftOcto
)

func (m ShiftMode) String() string {
	switch m {
	case ShiftCowgod:
		return "cowgod"
	case ShiftMatt:
		return "matt"
	case ShiftOcto:
		return "octo"
	}

	return fmt.Sprintf("ShiftMode(%d)", byte(m))
}

// Quirks selects between the historically divergent behaviours of some opcodes.
// It is fixed when the machine is created.
type Quirks struct {
	Shift ShiftMode
	// LoadStoreIncrementsIndex sets I = I + X + 1 after FX55 and FX65
	LoadStoreIncrementsIndex bool
	// WrapSprites makes DXYN wrap pixels around the display instead of clipping them
	WrapSprites bool
	// JumpWithVx makes BNNN jump to VX + NNN instead of V0 + NNN
	JumpWithVx bool
	// VfReset clears VF after 8XY1, 8XY2 and 8XY3
	VfReset bool
	// StackSize is the depth of the call stack, in [DefaultStackSize, MaxStackSize]
	StackSize int
}

// CowgodQuirks follows Cowgod's technical reference. It is the default.
func CowgodQuirks() Quirks {
	return Quirks{
		Shift:     ShiftCowgod,
		StackSize: DefaultStackSize,
	}
}

// MattQuirks follows Matt Mikolay's instruction set documentation.
func MattQuirks() Quirks {
	return Quirks{
		Shift:                    ShiftMatt,
		LoadStoreIncrementsIndex: true,
		StackSize:                DefaultStackSize,
	}
}

// OctoQuirks uses the variable shift count.
func OctoQuirks() Quirks {
	return Quirks{
		Shift:     ShiftOcto,
		StackSize: DefaultStackSize,
	}
}

// QuirksByName returns the preset with the given name: cowgod, matt or octo
func QuirksByName(name string) (Quirks, error) {
	switch strings.ToLower(name) {
	case "", "cowgod":
		return CowgodQuirks(), nil
	case "matt":
		return MattQuirks(), nil
	case "octo":
		return OctoQuirks(), nil
	}

	return Quirks{}, fmt.Errorf("unknown quirks preset %q", name)
}
