// Package encoder implements the bit-exact translation from a typed
// instruction to its 32-bit encoding, per the canonical layouts:
//
//	DP : cond[31:28] 00 I opcode[24:21] S rn[19:16] rd[15:12] operand2[11:0]
//	MUL: cond[31:28] 000000 A S rd[19:16] rn[15:12] rs[11:8] 1001 rm[3:0]
//	SDT: cond[31:28] 01 I P U 00 L rn[19:16] rd[15:12] offset[11:0]
//	BRN: cond[31:28] 1010 offset[23:0]
//	HAL: exactly 0x00000000
package encoder

import (
	"github.com/armforge/arm2core/errctx"
	"github.com/armforge/arm2core/instr"
)

const maxGeneralRegister = 13 // DP/MUL rn/rd/rs/rm must be < 13

// validRegister checks the DP/MUL register fields: general-purpose
// only, 0..12.
func validRegister(r uint8) bool {
	return r < maxGeneralRegister
}

// validSDTRegister checks SDT's rn/rd fields, which may additionally
// name PC (15) or CPSR (16) -- e.g. the `ldr rd, [r15, #off]` literal
// pool access the =expr pseudo-op expands to.
func validSDTRegister(r uint8) bool {
	return r < maxGeneralRegister || r == 15 || r == 16
}

// Encode translates a typed instruction into its 32-bit word,
// rejecting malformed operands with errctx.ErrInvalidParam.
func Encode(ins instr.Instruction) (uint32, error) {
	switch ins.Kind {
	case instr.KindHAL:
		return 0x00000000, nil
	case instr.KindDP:
		return encodeDP(ins)
	case instr.KindMUL:
		return encodeMUL(ins)
	case instr.KindSDT:
		return encodeSDT(ins)
	case instr.KindBRN:
		return encodeBRN(ins)
	default:
		return 0, errctx.Unsupportedf("unknown instruction kind %v", ins.Kind)
	}
}

func encodeOperand(op instr.Operand) (uint32, error) {
	switch op.Kind {
	case instr.OperandDPImmediate:
		return uint32(op.ImmRotate&0xF)<<8 | uint32(op.ImmValue), nil
	case instr.OperandShiftedRegister:
		return encodeShiftedReg(op)
	default:
		return 0, errctx.Invalidf("DP operand2 must be immediate or shifted register")
	}
}

func encodeShiftedReg(op instr.Operand) (uint32, error) {
	if !validRegister(op.Rm) {
		return 0, errctx.Invalidf("invalid Rm register %d", op.Rm)
	}
	var w uint32
	if op.ShiftBy {
		if !validRegister(op.Rs) {
			return 0, errctx.Invalidf("invalid Rs register %d", op.Rs)
		}
		w = uint32(op.Rs)<<8 | uint32(op.Type&0x3)<<5 | 1<<4 | uint32(op.Rm)
	} else {
		w = uint32(op.ShiftAmount&0x1F)<<7 | uint32(op.Type&0x3)<<5 | uint32(op.Rm)
	}
	return w, nil
}

func encodeDP(ins instr.Instruction) (uint32, error) {
	dp := ins.DP
	if dp == nil {
		return 0, errctx.Invalidf("DP instruction missing payload")
	}
	if !validRegister(dp.Rn) || !validRegister(dp.Rd) {
		return 0, errctx.Invalidf("invalid register: rn=%d rd=%d", dp.Rn, dp.Rd)
	}

	var operand2 uint32
	var err error
	if dp.I {
		operand2, err = encodeOperand(instr.Operand{
			Kind:      instr.OperandDPImmediate,
			ImmValue:  dp.Operand.ImmValue,
			ImmRotate: dp.Operand.ImmRotate,
		})
	} else {
		operand2, err = encodeShiftedReg(dp.Operand)
	}
	if err != nil {
		return 0, err
	}

	var iBit uint32
	if dp.I {
		iBit = 1
	}
	var sBit uint32
	if dp.S {
		sBit = 1
	}

	w := uint32(ins.Cond)<<28 |
		0<<26 |
		iBit<<25 |
		uint32(dp.Opcode&0xF)<<21 |
		sBit<<20 |
		uint32(dp.Rn)<<16 |
		uint32(dp.Rd)<<12 |
		operand2&0xFFF
	return w, nil
}

func encodeMUL(ins instr.Instruction) (uint32, error) {
	m := ins.MUL
	if m == nil {
		return 0, errctx.Invalidf("MUL instruction missing payload")
	}
	if !validRegister(m.Rd) || !validRegister(m.Rn) || !validRegister(m.Rs) || !validRegister(m.Rm) {
		return 0, errctx.Invalidf("invalid register in multiply: rd=%d rn=%d rs=%d rm=%d", m.Rd, m.Rn, m.Rs, m.Rm)
	}

	var aBit, sBit uint32
	if m.A {
		aBit = 1
	}
	if m.S {
		sBit = 1
	}

	w := uint32(ins.Cond)<<28 |
		0<<22 |
		aBit<<21 |
		sBit<<20 |
		uint32(m.Rd)<<16 |
		uint32(m.Rn)<<12 |
		uint32(m.Rs)<<8 |
		0x9<<4 |
		uint32(m.Rm)
	return w, nil
}

func encodeSDT(ins instr.Instruction) (uint32, error) {
	s := ins.SDT
	if s == nil {
		return 0, errctx.Invalidf("SDT instruction missing payload")
	}
	if !validSDTRegister(s.Rn) || !validSDTRegister(s.Rd) {
		return 0, errctx.Invalidf("invalid register: rn=%d rd=%d", s.Rn, s.Rd)
	}

	var offset uint32
	var err error
	if s.I {
		offset, err = encodeShiftedReg(s.Offset)
	} else {
		offset = uint32(s.Offset.Fixed) & 0xFFF
	}
	if err != nil {
		return 0, err
	}

	var iBit, pBit, uBit, lBit uint32
	if s.I {
		iBit = 1
	}
	if s.P {
		pBit = 1
	}
	if s.U {
		uBit = 1
	}
	if s.L {
		lBit = 1
	}

	w := uint32(ins.Cond)<<28 |
		1<<26 |
		iBit<<25 |
		pBit<<24 |
		uBit<<23 |
		0<<22 |
		lBit<<20 |
		uint32(s.Rn)<<16 |
		uint32(s.Rd)<<12 |
		offset&0xFFF
	return w, nil
}

func encodeBRN(ins instr.Instruction) (uint32, error) {
	b := ins.BRN
	if b == nil {
		return 0, errctx.Invalidf("BRN instruction missing payload")
	}
	w := uint32(ins.Cond)<<28 | 0xA<<24 | uint32(b.Offset)&0xFFFFFF
	return w, nil
}

// EncodeImmediate finds the smallest even rotation amount in 0..30
// that, applied as rotate-left by 2 per step, reduces value to <=8
// bits, and returns the (value, rotate) pair stored in the instruction
// (rotate in units of 2 bits, 0..15). Mirrors the source's
// make_rotation loop.
func EncodeImmediate(value uint32) (imm8 uint8, rotate uint8, err error) {
	if value <= 0xFF {
		return uint8(value), 0, nil
	}
	v := value
	var rot uint8
	const maxRot = 16 // 16 steps of rotate-left-by-2 cover all 32 bits
	for (v>>8) != 0 && rot < maxRot {
		v = (v << 2) | (v >> 30)
		rot++
	}
	if rot == maxRot {
		return 0, 0, errctx.Invalidf("immediate %#x cannot be represented with an 8-bit rotated value", value)
	}
	return uint8(v), rot, nil
}
