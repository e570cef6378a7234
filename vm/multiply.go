package vm

import (
	"github.com/armforge/arm2core/bitops"
	"github.com/armforge/arm2core/instr"
)

// executeMUL computes rm*rs (plus rn when accumulating) in 64 bits
// and truncates to 32. Carry and overflow are left undefined (not
// modified) even when S is set.
func executeMUL(m *Machine, mul *instr.MUL) error {
	rm, err := m.CPU.GetRegister(mul.Rm)
	if err != nil {
		return err
	}
	rs, err := m.CPU.GetRegister(mul.Rs)
	if err != nil {
		return err
	}

	product := uint64(rm) * uint64(rs)
	if mul.A {
		rn, err := m.CPU.GetRegister(mul.Rn)
		if err != nil {
			return err
		}
		product += uint64(rn)
	}
	result := uint32(product)

	if mul.S {
		m.CPU.CPSR.N = bitops.IsNegative(result)
		m.CPU.CPSR.Z = result == 0
	}

	return m.CPU.SetRegister(mul.Rd, result)
}
