package vm

import (
	"github.com/armforge/arm2core/bitops"
	"github.com/armforge/arm2core/errctx"
	"github.com/armforge/arm2core/instr"
)

// executeDP performs the data-processing compute/flags/write-back
// sequence described by the executor's canonical formulas per opcode.
func executeDP(m *Machine, dp *instr.DP) error {
	rn, err := m.CPU.GetRegister(dp.Rn)
	if err != nil {
		return err
	}
	op2, shifterCarry, err := resolveOperand2(m.CPU, dp.Operand)
	if err != nil {
		return err
	}

	var result uint32
	switch dp.Opcode {
	case instr.OpAND, instr.OpTST:
		result = rn & op2
	case instr.OpEOR, instr.OpTEQ:
		result = rn ^ op2
	case instr.OpSUB, instr.OpCMP:
		result = rn + ^op2 + 1
	case instr.OpRSB:
		result = op2 + ^rn + 1
	case instr.OpADD:
		result = rn + op2
	case instr.OpORR:
		result = rn | op2
	case instr.OpMOV:
		result = op2
	default:
		return errctx.Unsupportedf("unknown data-processing opcode %v", dp.Opcode)
	}

	if dp.S {
		if dp.Opcode.IsLogical() {
			m.CPU.CPSR.C = shifterCarry
		} else {
			m.CPU.CPSR.C = bitops.IsNegative(rn) == bitops.IsNegative(op2) && bitops.IsNegative(rn) != bitops.IsNegative(result)
		}
		m.CPU.CPSR.N = bitops.IsNegative(result)
		m.CPU.CPSR.Z = result == 0
	}

	if !dp.Opcode.IsCompare() {
		return m.CPU.SetRegister(dp.Rd, result)
	}
	return nil
}
