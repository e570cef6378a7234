// Package parser turns one tokenized source line into a typed
// instruction, a skip signal (the line declared a label), or an
// error. It also owns the running assembler state: the emit cursor,
// the label/reference tables, the growing output image, and the
// pending out-of-line constant pool.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/armforge/arm2core/asm/encoder"
	"github.com/armforge/arm2core/asm/lexer"
	"github.com/armforge/arm2core/asm/reftab"
	"github.com/armforge/arm2core/asm/symtab"
	"github.com/armforge/arm2core/errctx"
	"github.com/armforge/arm2core/instr"
)

const (
	branchOffsetMask = 0xFFFFFF // BRN's offset field occupies the low 24 bits
	sdtOffsetMask    = 0xFFF    // SDT's offset field occupies the low 12 bits
)

// LiteralEntry is one pending out-of-line constant: the value to
// append after the last instruction, and the address of the `ldr`
// word whose offset field needs patching once the constant's final
// address is known.
type LiteralEntry struct {
	Value uint32
	Site  uint16
}

// State is the running assembler state across a whole source file.
type State struct {
	Symtab   *symtab.Table
	Reftab   *reftab.Table
	Image    []byte
	PC       uint16
	Literals []LiteralEntry
}

// NewState returns an empty assembler state with PC at zero.
func NewState() *State {
	return &State{Symtab: symtab.New(), Reftab: reftab.New()}
}

func (s *State) readWord(addr uint16) uint32 {
	i := int(addr)
	return uint32(s.Image[i]) | uint32(s.Image[i+1])<<8 |
		uint32(s.Image[i+2])<<16 | uint32(s.Image[i+3])<<24
}

func (s *State) writeWord(addr uint16, w uint32) {
	i := int(addr)
	s.Image[i] = byte(w)
	s.Image[i+1] = byte(w >> 8)
	s.Image[i+2] = byte(w >> 16)
	s.Image[i+3] = byte(w >> 24)
}

// Emit appends word little-endian at the current PC and advances it,
// returning the address the word was written at.
func (s *State) Emit(word uint32) uint16 {
	site := s.PC
	s.Image = append(s.Image, byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
	s.PC += 4
	return site
}

// patchWord clears mask's bits in the word at site and ORs in
// value&mask -- correct regardless of the placeholder's prior bit
// pattern, unlike a literal OR into an assumed-all-ones field.
func (s *State) patchWord(site uint16, mask, value uint32) {
	w := s.readWord(site)
	w = (w &^ mask) | (value & mask)
	s.writeWord(site, w)
}

// DeclareLabel records label at the current PC and resolves every
// pending forward reference to it, in insertion order.
func (s *State) DeclareLabel(label string) error {
	if _, exists := s.Symtab.Lookup(label); exists {
		return errctx.Wrap(fmt.Errorf("%w: label %q redeclared", errctx.ErrIsLabel, label))
	}
	s.Symtab.Define(label, s.PC)
	for _, site := range s.Reftab.Resolve(label) {
		offset := calculateOffset(int32(s.PC), site)
		s.patchWord(site, branchOffsetMask, uint32(offset))
	}
	return nil
}

// FlushLiterals appends every pending out-of-line constant after the
// last emitted instruction, patching each referencing `ldr`'s offset
// field with the constant's final PC-relative byte offset.
func (s *State) FlushLiterals() {
	for _, lit := range s.Literals {
		addr := s.PC
		offset := int32(addr) - int32(lit.Site) - 8
		s.patchWord(lit.Site, sdtOffsetMask, uint32(offset))
		s.Emit(lit.Value)
	}
	s.Literals = nil
}

func calculateOffset(address int32, pc uint16) int32 {
	offset := address - int32(pc) - 8
	return (offset >> 2) & branchOffsetMask
}

func parseRegister(tok string) (uint8, error) {
	if len(tok) < 2 || tok[0] != 'r' {
		return 0, errctx.Invalidf("malformed register token %q", tok)
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 0 || n > 16 {
		return 0, errctx.Invalidf("malformed register token %q", tok)
	}
	return uint8(n), nil
}

// parseExpression parses the numeric payload of a `#...`/`=...` token,
// signed like the source's strtol-based parse_expression so a leading
// '-' (as in a negative SDT offset) is accepted; the result is cast to
// its 32-bit two's-complement representation.
func parseExpression(tok string) (uint32, error) {
	if len(tok) < 2 {
		return 0, errctx.Invalidf("malformed integer literal %q", tok)
	}
	v, err := strconv.ParseInt(tok[1:], 0, 64)
	if err != nil {
		return 0, errctx.Invalidf("malformed integer literal %q", tok)
	}
	if v > 0xFFFFFFFF || v < -0x80000000 {
		return 0, errctx.Invalidf("integer literal %q cannot be represented in 32 bits", tok)
	}
	return uint32(v), nil
}

func dpOpcodeFromMnemonic(m string) (instr.Opcode, bool) {
	switch m {
	case "and":
		return instr.OpAND, true
	case "eor":
		return instr.OpEOR, true
	case "sub":
		return instr.OpSUB, true
	case "rsb":
		return instr.OpRSB, true
	case "add":
		return instr.OpADD, true
	case "tst":
		return instr.OpTST, true
	case "teq":
		return instr.OpTEQ, true
	case "cmp":
		return instr.OpCMP, true
	case "orr":
		return instr.OpORR, true
	case "mov":
		return instr.OpMOV, true
	default:
		return 0, false
	}
}

// ParseLine dispatches one tokenized line. skip is true when the line
// produced no instruction (blank line or label declaration). A
// redeclared label skips only its own line; the first declaration
// stands.
func ParseLine(s *State, tokens []lexer.Token) (ins instr.Instruction, skip bool, err error) {
	if len(tokens) == 0 {
		return instr.Instruction{}, true, nil
	}

	if len(tokens) >= 2 && tokens[len(tokens)-1].Kind == lexer.KindLabel {
		if err := s.DeclareLabel(tokens[0].Text); err != nil {
			if errors.Is(err, errctx.ErrIsLabel) {
				return instr.Instruction{}, true, nil
			}
			return instr.Instruction{}, false, err
		}
		return instr.Instruction{}, true, nil
	}

	mnemonic := tokens[0].Text

	switch {
	case mnemonic == "andeq":
		return instr.NewHalt(), false, nil
	case strings.HasPrefix(mnemonic, "b"):
		ins, err := parseBRN(s, tokens)
		return ins, false, err
	case mnemonic == "lsl":
		expanded, err := expandLSL(tokens)
		if err != nil {
			return instr.Instruction{}, false, err
		}
		ins, err := parseDP(expanded)
		return ins, false, err
	case mnemonic == "mul", mnemonic == "mla":
		ins, err := parseMUL(tokens)
		return ins, false, err
	case mnemonic == "ldr", mnemonic == "str":
		ins, err := parseSDT(s, tokens)
		return ins, false, err
	default:
		ins, err := parseDP(tokens)
		return ins, false, err
	}
}

func parseBRN(s *State, tokens []lexer.Token) (instr.Instruction, error) {
	mnemonic := tokens[0].Text
	suffix := mnemonic[1:]
	cond, ok := instr.ConditionFromSuffix(suffix)
	if !ok {
		return instr.Instruction{}, errctx.Invalidf("unknown branch condition suffix %q", suffix)
	}
	if len(tokens) < 2 {
		return instr.Instruction{}, errctx.Invalidf("branch: missing target")
	}
	target := tokens[1].Text

	var offset int32
	if v, convErr := strconv.ParseInt(target, 0, 64); convErr == nil {
		offset = calculateOffset(int32(v), s.PC)
	} else if addr, ok := s.Symtab.Lookup(target); ok {
		offset = calculateOffset(int32(addr), s.PC)
	} else {
		s.Reftab.Reference(target, s.PC)
		offset = 0xFFFFFF // placeholder: all-ones low 24 bits, patched on label declaration
	}

	return instr.Instruction{Kind: instr.KindBRN, Cond: cond, BRN: &instr.BRN{Offset: offset}}, nil
}

// expandLSL rewrites `lsl rd, <expr>` into `mov rd, rd, lsl <expr>`
// and returns the equivalent token stream for parseDP to consume.
func expandLSL(tokens []lexer.Token) ([]lexer.Token, error) {
	if len(tokens) != 4 {
		return nil, errctx.Invalidf("lsl: expected exactly 2 operands")
	}
	rd := tokens[1]
	expr := tokens[3]
	return []lexer.Token{
		{Kind: lexer.KindOpcode, Text: "mov"},
		rd,
		{Kind: lexer.KindComma, Text: ","},
		rd,
		{Kind: lexer.KindComma, Text: ","},
		{Kind: lexer.KindShift, Text: "lsl"},
		expr,
	}, nil
}

func parseDP(tokens []lexer.Token) (instr.Instruction, error) {
	mnemonic := tokens[0].Text
	opcode, ok := dpOpcodeFromMnemonic(mnemonic)
	if !ok {
		return instr.Instruction{}, errctx.Unsupportedf("unknown opcode %q", mnemonic)
	}

	isCompare := opcode.IsCompare()
	isMov := opcode == instr.OpMOV
	rnPos := 3
	if isCompare || isMov {
		rnPos = 1
	}
	operandStart := rnPos + 2
	if len(tokens) <= operandStart {
		return instr.Instruction{}, errctx.Invalidf("%s: too few operands", mnemonic)
	}

	dp := &instr.DP{Opcode: opcode, S: isCompare}
	dp.I = tokens[operandStart].Kind == lexer.KindHashExpr

	if !isMov {
		rn, err := parseRegister(tokens[rnPos].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		dp.Rn = rn
	}

	if !isCompare {
		rd, err := parseRegister(tokens[1].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		dp.Rd = rd
	}

	if dp.I {
		value, err := parseExpression(tokens[operandStart].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		imm8, rotate, err := encoder.EncodeImmediate(value)
		if err != nil {
			return instr.Instruction{}, err
		}
		dp.Operand = instr.Operand{Kind: instr.OperandDPImmediate, ImmValue: imm8, ImmRotate: rotate}
	} else {
		op, err := parseShiftedReg(tokens, operandStart)
		if err != nil {
			return instr.Instruction{}, err
		}
		dp.Operand = op
	}

	return instr.Instruction{Kind: instr.KindDP, Cond: instr.CondAL, DP: dp}, nil
}

func parseMUL(tokens []lexer.Token) (instr.Instruction, error) {
	mnemonic := tokens[0].Text
	a := mnemonic == "mla"
	if !a && mnemonic != "mul" {
		return instr.Instruction{}, errctx.Unsupportedf("unknown opcode %q", mnemonic)
	}
	minLen := 6
	if a {
		minLen = 8
	}
	if len(tokens) < minLen {
		return instr.Instruction{}, errctx.Invalidf("%s: too few operands", mnemonic)
	}

	rd, err := parseRegister(tokens[1].Text)
	if err != nil {
		return instr.Instruction{}, err
	}
	rm, err := parseRegister(tokens[3].Text)
	if err != nil {
		return instr.Instruction{}, err
	}
	rs, err := parseRegister(tokens[5].Text)
	if err != nil {
		return instr.Instruction{}, err
	}
	var rn uint8
	if a {
		rn, err = parseRegister(tokens[7].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
	}

	return instr.Instruction{
		Kind: instr.KindMUL,
		Cond: instr.CondAL,
		MUL:  &instr.MUL{A: a, Rd: rd, Rn: rn, Rs: rs, Rm: rm},
	}, nil
}

func parseSDT(s *State, tokens []lexer.Token) (instr.Instruction, error) {
	mnemonic := tokens[0].Text
	l := mnemonic == "ldr"
	if !l && mnemonic != "str" {
		return instr.Instruction{}, errctx.Unsupportedf("unknown opcode %q", mnemonic)
	}
	if len(tokens) < 4 {
		return instr.Instruction{}, errctx.Invalidf("%s: too few operands", mnemonic)
	}
	rd, err := parseRegister(tokens[1].Text)
	if err != nil {
		return instr.Instruction{}, err
	}

	sdt := &instr.SDT{L: l, Rd: rd}
	n := len(tokens)

	switch {
	case n == 4 && tokens[3].Kind == lexer.KindEqExpr:
		value, err := parseExpression(tokens[3].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		if value <= 0xFF {
			imm8, rotate, err := encoder.EncodeImmediate(value)
			if err != nil {
				return instr.Instruction{}, err
			}
			dp := &instr.DP{
				Opcode:  instr.OpMOV,
				Rd:      rd,
				I:       true,
				Operand: instr.Operand{Kind: instr.OperandDPImmediate, ImmValue: imm8, ImmRotate: rotate},
			}
			return instr.Instruction{Kind: instr.KindDP, Cond: instr.CondAL, DP: dp}, nil
		}
		s.Literals = append(s.Literals, LiteralEntry{Value: value, Site: s.PC})
		sdt.I, sdt.P, sdt.U, sdt.Rn = false, true, true, 15
		sdt.Offset = instr.Operand{Kind: instr.OperandSDTImmediate, Fixed: 0xFFF}

	case n == 6 && tokens[3].Kind == lexer.KindLBracket && tokens[5].Kind == lexer.KindRBracket:
		rn, err := parseRegister(tokens[4].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		sdt.Rn, sdt.P, sdt.U, sdt.I = rn, true, true, false
		sdt.Offset = instr.Operand{Kind: instr.OperandSDTImmediate, Fixed: 0}

	case n == 8 && tokens[3].Kind == lexer.KindLBracket && tokens[6].Kind == lexer.KindHashExpr:
		rn, err := parseRegister(tokens[4].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		value, err := parseExpression(tokens[6].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		sdt.Rn, sdt.P, sdt.I = rn, true, false
		if int32(value) < 0 {
			sdt.U = false
			value = uint32(-int32(value))
		} else {
			sdt.U = true
		}
		sdt.Offset = instr.Operand{Kind: instr.OperandSDTImmediate, Fixed: uint16(value & 0xFFF)}

	case n == 8 && tokens[3].Kind == lexer.KindLBracket && tokens[5].Kind == lexer.KindRBracket && tokens[7].Kind == lexer.KindHashExpr:
		rn, err := parseRegister(tokens[4].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		value, err := parseExpression(tokens[7].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		sdt.Rn, sdt.P, sdt.U, sdt.I = rn, false, true, false
		sdt.Offset = instr.Operand{Kind: instr.OperandSDTImmediate, Fixed: uint16(value & 0xFFF)}

	case n >= 6 && tokens[3].Kind == lexer.KindLBracket && tokens[5].Kind == lexer.KindComma && tokens[n-1].Kind == lexer.KindRBracket:
		rn, err := parseRegister(tokens[4].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		sdt.Rn, sdt.P, sdt.I, sdt.U = rn, true, true, true
		start := 6
		if tokens[6].Kind == lexer.KindPlus || tokens[6].Kind == lexer.KindMinus {
			if tokens[6].Kind == lexer.KindMinus {
				sdt.U = false
			}
			if len(tokens[6].Text) > 1 {
				// the lexer keeps the sign glued to its register ("-r2")
				tokens = append([]lexer.Token(nil), tokens...)
				tokens[6] = lexer.Token{Kind: lexer.KindRegister, Text: tokens[6].Text[1:]}
			} else {
				start = 7
			}
		}
		// the trailing "]" closes the pre-indexed bracket group, not part
		// of the shift-operand grammar parseShiftedReg understands
		op, err := parseShiftedReg(tokens[:n-1], start)
		if err != nil {
			return instr.Instruction{}, err
		}
		sdt.Offset = op

	case n >= 7 && tokens[3].Kind == lexer.KindLBracket && tokens[5].Kind == lexer.KindRBracket:
		rn, err := parseRegister(tokens[4].Text)
		if err != nil {
			return instr.Instruction{}, err
		}
		sdt.Rn, sdt.P, sdt.I, sdt.U = rn, false, true, true
		start := 7
		if tokens[7].Kind == lexer.KindPlus || tokens[7].Kind == lexer.KindMinus {
			if tokens[7].Kind == lexer.KindMinus {
				sdt.U = false
			}
			if len(tokens[7].Text) > 1 {
				tokens = append([]lexer.Token(nil), tokens...)
				tokens[7] = lexer.Token{Kind: lexer.KindRegister, Text: tokens[7].Text[1:]}
			} else {
				start = 8
			}
		}
		op, err := parseShiftedReg(tokens, start)
		if err != nil {
			return instr.Instruction{}, err
		}
		sdt.Offset = op

	default:
		return instr.Instruction{}, errctx.Unsupportedf("malformed addressing mode for %s", mnemonic)
	}

	return instr.Instruction{Kind: instr.KindSDT, Cond: instr.CondAL, SDT: sdt}, nil
}

// parseShiftedReg parses a DP operand2 or SDT register offset
// starting at tokens[start]. The two-token case (Rm followed directly
// by Rn with no intervening shift mnemonic) is ambiguous in the
// source this grammar is grounded on; per DESIGN.md it is treated as
// shift-by-register rather than the source's self-contradictory
// shiftBy=0.
func parseShiftedReg(tokens []lexer.Token, start int) (instr.Operand, error) {
	n := len(tokens) - start

	switch {
	case n == 1:
		rm, err := parseRegister(tokens[start].Text)
		if err != nil {
			return instr.Operand{}, err
		}
		return instr.Operand{Kind: instr.OperandShiftedRegister, Rm: rm, Type: instr.ShiftLSL}, nil

	case n == 2:
		rm, err := parseRegister(tokens[start].Text)
		if err != nil {
			return instr.Operand{}, err
		}
		rs, err := parseRegister(tokens[start+1].Text)
		if err != nil {
			return instr.Operand{}, err
		}
		return instr.Operand{Kind: instr.OperandShiftedRegister, Rm: rm, Type: instr.ShiftLSL, ShiftBy: true, Rs: rs}, nil

	case n >= 4:
		shiftType, ok := instr.ShiftTypeFromName(tokens[start+2].Text)
		if !ok {
			return instr.Operand{}, errctx.Invalidf("unknown shift mnemonic %q", tokens[start+2].Text)
		}
		rm, err := parseRegister(tokens[start].Text)
		if err != nil {
			return instr.Operand{}, err
		}
		switch tokens[start+3].Kind {
		case lexer.KindRegister:
			rs, err := parseRegister(tokens[start+3].Text)
			if err != nil {
				return instr.Operand{}, err
			}
			return instr.Operand{Kind: instr.OperandShiftedRegister, Rm: rm, Type: shiftType, ShiftBy: true, Rs: rs}, nil
		case lexer.KindHashExpr:
			amount, err := parseExpression(tokens[start+3].Text)
			if err != nil {
				return instr.Operand{}, err
			}
			return instr.Operand{Kind: instr.OperandShiftedRegister, Rm: rm, Type: shiftType, ShiftAmount: uint8(amount & 0x1F)}, nil
		}
	}

	return instr.Operand{}, errctx.Unsupportedf("malformed shifted-register operand")
}
