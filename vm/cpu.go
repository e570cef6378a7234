// Package vm implements the three-stage emulator: decoder, executor,
// and the fetch/decode pipeline driving them over a flat memory.
package vm

import "github.com/armforge/arm2core/errctx"

// CPSR holds the four condition flags ARM2 keeps in the top nibble of
// the status register.
type CPSR struct {
	N, Z, C, V bool
}

// ToWord packs the flags into bits 31..28, matching the CPSR register
// address's encoding.
func (c CPSR) ToWord() uint32 {
	var w uint32
	if c.N {
		w |= 1 << 31
	}
	if c.Z {
		w |= 1 << 30
	}
	if c.C {
		w |= 1 << 29
	}
	if c.V {
		w |= 1 << 28
	}
	return w
}

// FromWord unpacks bits 31..28 into the four flags.
func (c *CPSR) FromWord(w uint32) {
	c.N = w&(1<<31) != 0
	c.Z = w&(1<<30) != 0
	c.C = w&(1<<29) != 0
	c.V = w&(1<<28) != 0
}

// CPU is the register file this instruction set exposes: 13
// general-purpose registers, PC, and CPSR. Register addresses 13
// (SP) and 14 (LR) exist in the address space but any access to them
// fails -- this model carries no stack or link register.
type CPU struct {
	R    [13]uint32
	PC   uint32 // the executing instruction's address+8, per the pipeline model
	CPSR CPSR
}

// NewCPU returns a zeroed register file.
func NewCPU() *CPU {
	return &CPU{}
}

// GetRegister reads reg_address r: 0..12 general, 15 PC, 16 CPSR.
func (c *CPU) GetRegister(r uint8) (uint32, error) {
	switch {
	case r < 13:
		return c.R[r], nil
	case r == 15:
		return c.PC, nil
	case r == 16:
		return c.CPSR.ToWord(), nil
	default:
		return 0, errctx.Unsupportedf("register %d is not accessible", r)
	}
}

// SetRegister writes reg_address r, following the same accessibility
// rule as GetRegister.
func (c *CPU) SetRegister(r uint8, value uint32) error {
	switch {
	case r < 13:
		c.R[r] = value
	case r == 15:
		c.PC = value
	case r == 16:
		c.CPSR.FromWord(value)
	default:
		return errctx.Unsupportedf("register %d is not accessible", r)
	}
	return nil
}
