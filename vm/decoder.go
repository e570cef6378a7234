package vm

import (
	"github.com/armforge/arm2core/bitops"
	"github.com/armforge/arm2core/errctx"
	"github.com/armforge/arm2core/instr"
)

// Decode is the inverse of encoder.Encode: it classifies word by
// bits 27..25 (with the 000-plus-1001-nibble special case for MUL)
// and recovers the typed instruction it encodes.
func Decode(word uint32) (instr.Instruction, error) {
	if word == 0 {
		return instr.NewHalt(), nil
	}

	cond := instr.Condition(bitops.GetBits(word, 31, 28))
	typeBits := bitops.GetBits(word, 27, 25)

	switch typeBits {
	case 0b000:
		if bitops.GetBits(word, 7, 4) == 0x9 {
			return decodeMUL(word, cond), nil
		}
		return decodeDP(word, cond), nil
	case 0b001:
		return decodeDP(word, cond), nil
	case 0b010, 0b011:
		return decodeSDT(word, cond), nil
	case 0b101:
		return decodeBRN(word, cond), nil
	default:
		return instr.Instruction{}, errctx.Unsupportedf("word %#08x has no decodable instruction type", word)
	}
}

func decodeShiftedReg(op2 uint32) instr.Operand {
	rm := uint8(bitops.GetBits(op2, 3, 0))
	typ := instr.ShiftType(bitops.GetBits(op2, 6, 5))
	if bitops.GetFlag(op2, 4) {
		rs := uint8(bitops.GetBits(op2, 11, 8))
		return instr.Operand{Kind: instr.OperandShiftedRegister, Rm: rm, Type: typ, ShiftBy: true, Rs: rs}
	}
	amount := uint8(bitops.GetBits(op2, 11, 7))
	return instr.Operand{Kind: instr.OperandShiftedRegister, Rm: rm, Type: typ, ShiftAmount: amount}
}

func decodeDP(word uint32, cond instr.Condition) instr.Instruction {
	i := bitops.GetFlag(word, 25)
	op2 := bitops.GetBits(word, 11, 0)

	dp := &instr.DP{
		I:      i,
		Opcode: instr.Opcode(bitops.GetBits(word, 24, 21)),
		S:      bitops.GetFlag(word, 20),
		Rn:     uint8(bitops.GetBits(word, 19, 16)),
		Rd:     uint8(bitops.GetBits(word, 15, 12)),
	}
	if i {
		dp.Operand = instr.Operand{
			Kind:      instr.OperandDPImmediate,
			ImmRotate: uint8(bitops.GetBits(op2, 11, 8)),
			ImmValue:  uint8(bitops.GetBits(op2, 7, 0)),
		}
	} else {
		dp.Operand = decodeShiftedReg(op2)
	}
	return instr.Instruction{Kind: instr.KindDP, Cond: cond, DP: dp}
}

func decodeMUL(word uint32, cond instr.Condition) instr.Instruction {
	mul := &instr.MUL{
		A:  bitops.GetFlag(word, 21),
		S:  bitops.GetFlag(word, 20),
		Rd: uint8(bitops.GetBits(word, 19, 16)),
		Rn: uint8(bitops.GetBits(word, 15, 12)),
		Rs: uint8(bitops.GetBits(word, 11, 8)),
		Rm: uint8(bitops.GetBits(word, 3, 0)),
	}
	return instr.Instruction{Kind: instr.KindMUL, Cond: cond, MUL: mul}
}

func decodeSDT(word uint32, cond instr.Condition) instr.Instruction {
	i := bitops.GetFlag(word, 25)
	off := bitops.GetBits(word, 11, 0)

	sdt := &instr.SDT{
		I:  i,
		P:  bitops.GetFlag(word, 24),
		U:  bitops.GetFlag(word, 23),
		L:  bitops.GetFlag(word, 20),
		Rn: uint8(bitops.GetBits(word, 19, 16)),
		Rd: uint8(bitops.GetBits(word, 15, 12)),
	}
	if i {
		sdt.Offset = decodeShiftedReg(off)
	} else {
		sdt.Offset = instr.Operand{Kind: instr.OperandSDTImmediate, Fixed: uint16(off)}
	}
	return instr.Instruction{Kind: instr.KindSDT, Cond: cond, SDT: sdt}
}

// decodeBRN recovers the raw low-24-bit offset pattern unchanged; the
// executor, not the decoder, is responsible for the left-shift and
// sign-extension that turns it into a byte displacement.
func decodeBRN(word uint32, cond instr.Condition) instr.Instruction {
	offset := int32(bitops.GetBits(word, 23, 0))
	return instr.Instruction{Kind: instr.KindBRN, Cond: cond, BRN: &instr.BRN{Offset: offset}}
}
