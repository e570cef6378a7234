// Package instr defines the typed instruction model shared by the
// assembler and the emulator: a tagged instruction value with one
// payload variant per instruction class, and the operand sum type
// used by both the DP operand and the SDT offset.
package instr

import "fmt"

// Condition is one of the seven condition codes this instruction set
// supports (the full ARM condition field has sixteen; the rest are
// unreachable through this assembler's grammar).
type Condition uint8

const (
	CondEQ Condition = 0x0
	CondNE Condition = 0x1
	CondGE Condition = 0xA
	CondLT Condition = 0xB
	CondGT Condition = 0xC
	CondLE Condition = 0xD
	CondAL Condition = 0xE
)

// String renders the two-letter mnemonic suffix, "" for AL.
func (c Condition) String() string {
	switch c {
	case CondEQ:
		return "eq"
	case CondNE:
		return "ne"
	case CondGE:
		return "ge"
	case CondLT:
		return "lt"
	case CondGT:
		return "gt"
	case CondLE:
		return "le"
	case CondAL:
		return ""
	default:
		return fmt.Sprintf("cond(%#x)", uint8(c))
	}
}

// ConditionFromSuffix parses a branch-mnemonic suffix into a Condition.
func ConditionFromSuffix(suffix string) (Condition, bool) {
	switch suffix {
	case "eq":
		return CondEQ, true
	case "ne":
		return CondNE, true
	case "ge":
		return CondGE, true
	case "lt":
		return CondLT, true
	case "gt":
		return CondGT, true
	case "le":
		return CondLE, true
	case "al", "":
		return CondAL, true
	default:
		return 0, false
	}
}

// Opcode is a data-processing operation code.
type Opcode uint8

const (
	OpAND Opcode = 0x0
	OpEOR Opcode = 0x1
	OpSUB Opcode = 0x2
	OpRSB Opcode = 0x3
	OpADD Opcode = 0x4
	OpTST Opcode = 0x8
	OpTEQ Opcode = 0x9
	OpCMP Opcode = 0xA
	OpORR Opcode = 0xC
	OpMOV Opcode = 0xD
)

// IsCompare reports whether op discards its result (TST/TEQ/CMP): these
// never write Rd and always set flags.
func (op Opcode) IsCompare() bool {
	return op == OpTST || op == OpTEQ || op == OpCMP
}

// IsLogical reports whether op is a bitwise operation, whose S-bit carry
// comes from the barrel shifter rather than from the ALU.
func (op Opcode) IsLogical() bool {
	switch op {
	case OpAND, OpEOR, OpTST, OpTEQ, OpORR, OpMOV:
		return true
	default:
		return false
	}
}

func (op Opcode) String() string {
	switch op {
	case OpAND:
		return "and"
	case OpEOR:
		return "eor"
	case OpSUB:
		return "sub"
	case OpRSB:
		return "rsb"
	case OpADD:
		return "add"
	case OpTST:
		return "tst"
	case OpTEQ:
		return "teq"
	case OpCMP:
		return "cmp"
	case OpORR:
		return "orr"
	case OpMOV:
		return "mov"
	default:
		return fmt.Sprintf("opcode(%#x)", uint8(op))
	}
}

// ShiftType selects how a shifted-register operand shapes its value.
type ShiftType uint8

const (
	ShiftLSL ShiftType = 0
	ShiftLSR ShiftType = 1
	ShiftASR ShiftType = 2
	ShiftROR ShiftType = 3
)

func (s ShiftType) String() string {
	switch s {
	case ShiftLSL:
		return "lsl"
	case ShiftLSR:
		return "lsr"
	case ShiftASR:
		return "asr"
	case ShiftROR:
		return "ror"
	default:
		return fmt.Sprintf("shift(%d)", uint8(s))
	}
}

// ShiftTypeFromName parses one of "asr"/"lsl"/"lsr"/"ror".
func ShiftTypeFromName(name string) (ShiftType, bool) {
	switch name {
	case "lsl":
		return ShiftLSL, true
	case "lsr":
		return ShiftLSR, true
	case "asr":
		return ShiftASR, true
	case "ror":
		return ShiftROR, true
	default:
		return 0, false
	}
}

// OperandKind distinguishes the three operand encodings this ISA uses:
// a rotated 8-bit DP immediate, a raw 12-bit SDT immediate, or a
// shifted register used by both DP operand2 and SDT offset.
type OperandKind int

const (
	OperandDPImmediate OperandKind = iota
	OperandSDTImmediate
	OperandShiftedRegister
)

// Operand is the sum of the three second-operand encodings.
type Operand struct {
	Kind OperandKind

	// OperandDPImmediate
	ImmValue  uint8 // 8-bit payload
	ImmRotate uint8 // 4-bit field, units of 2 bits (0-15 -> rotation 0-30)

	// OperandSDTImmediate
	Fixed uint16 // 12-bit raw offset

	// OperandShiftedRegister (DP operand2 or SDT register offset)
	Rm          uint8
	Type        ShiftType
	ShiftBy     bool // true: amount held in Rs; false: constant ShiftAmount
	ShiftAmount uint8 // 5-bit constant
	Rs          uint8
}

// Kind is the instruction class tag.
type Kind int

const (
	KindDP Kind = iota
	KindMUL
	KindSDT
	KindBRN
	KindHAL
)

func (k Kind) String() string {
	switch k {
	case KindDP:
		return "DP"
	case KindMUL:
		return "MUL"
	case KindSDT:
		return "SDT"
	case KindBRN:
		return "BRN"
	case KindHAL:
		return "HAL"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DP is the data-processing payload.
type DP struct {
	I       bool // 1 = operand2 is immediate, 0 = shifted register
	Opcode  Opcode
	S       bool
	Rn      uint8
	Rd      uint8
	Operand Operand
}

// MUL is the multiply/multiply-accumulate payload.
type MUL struct {
	A  bool // accumulate (MLA)
	S  bool
	Rd uint8
	Rn uint8
	Rs uint8
	Rm uint8
}

// SDT is the single-data-transfer payload.
type SDT struct {
	I      bool // 1 = shifted-register offset, 0 = immediate 12-bit offset
	P      bool // pre/post-index
	U      bool // add/subtract
	L      bool // load/store
	Rn     uint8
	Rd     uint8
	Offset Operand
}

// BRN is the branch payload: a 24-bit field holding the PC-relative
// word offset, already divided by 4.
type BRN struct {
	Offset int32
}

// Instruction is the tagged union of all five instruction classes.
// Exactly one of DP/MUL/SDT/BRN is non-nil, selected by Kind; HAL
// carries no payload.
type Instruction struct {
	Kind Kind
	Cond Condition
	DP   *DP
	MUL  *MUL
	SDT  *SDT
	BRN  *BRN
}

// NewHalt returns the HAL instruction (encodes to the all-zero word).
func NewHalt() Instruction {
	return Instruction{Kind: KindHAL, Cond: CondEQ}
}
