package vm

import (
	"github.com/armforge/arm2core/bitops"
	"github.com/armforge/arm2core/errctx"
	"github.com/armforge/arm2core/instr"
)

// conditionHolds evaluates the seven-code condition predicate over
// the current CPSR flags.
func conditionHolds(cond instr.Condition, cpsr CPSR) bool {
	switch cond {
	case instr.CondEQ:
		return cpsr.Z
	case instr.CondNE:
		return !cpsr.Z
	case instr.CondGE:
		return cpsr.N == cpsr.V
	case instr.CondLT:
		return cpsr.N != cpsr.V
	case instr.CondGT:
		return !cpsr.Z && cpsr.N == cpsr.V
	case instr.CondLE:
		return cpsr.Z || cpsr.N != cpsr.V
	case instr.CondAL:
		return true
	default:
		return false
	}
}

// barrelShift applies op's shift specification to Rm's value, reading
// Rs from the register file when shiftBy selects a register-held
// amount (only its low byte matters), and returns the shifted value
// plus the barrel shifter's carry-out.
func barrelShift(cpu *CPU, op instr.Operand) (uint32, bool, error) {
	rm, err := cpu.GetRegister(op.Rm)
	if err != nil {
		return 0, false, err
	}

	var amount uint
	if op.ShiftBy {
		rs, err := cpu.GetRegister(op.Rs)
		if err != nil {
			return 0, false, err
		}
		amount = uint(bitops.GetByte(rs, 0))
	} else {
		amount = uint(op.ShiftAmount)
	}

	var v uint32
	var carry bool
	switch op.Type {
	case instr.ShiftLSL:
		v, carry = bitops.LSLCarry(rm, amount)
	case instr.ShiftLSR:
		v, carry = bitops.LSRCarry(rm, amount)
	case instr.ShiftASR:
		v, carry = bitops.ASRCarry(rm, amount)
	case instr.ShiftROR:
		v, carry = bitops.RORCarry(rm, amount)
	default:
		return 0, false, errctx.Unsupportedf("unknown shift type %d", op.Type)
	}
	return v, carry, nil
}

// resolveOperand2 computes a DP or SDT operand's value and the
// barrel-shifter carry it would contribute if the instruction sets
// flags. DP and SDT immediates never produce a shifter carry.
func resolveOperand2(cpu *CPU, op instr.Operand) (uint32, bool, error) {
	switch op.Kind {
	case instr.OperandDPImmediate:
		return bitops.ROR(uint32(op.ImmValue), uint(op.ImmRotate)*2), false, nil
	case instr.OperandSDTImmediate:
		return uint32(op.Fixed), false, nil
	case instr.OperandShiftedRegister:
		return barrelShift(cpu, op)
	default:
		return 0, false, errctx.Unsupportedf("unknown operand kind %d", op.Kind)
	}
}
