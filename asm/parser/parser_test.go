package parser_test

import (
	"testing"

	"github.com/armforge/arm2core/asm/encoder"
	"github.com/armforge/arm2core/asm/lexer"
	"github.com/armforge/arm2core/asm/parser"
	"github.com/armforge/arm2core/instr"
)

// assemble runs every source line through the tokenizer and parser,
// encoding and emitting each instruction, and returns the finished
// image.
func assemble(t *testing.T, lines []string) []byte {
	t.Helper()
	s := parser.NewState()
	for lineNo, line := range lines {
		tokens, blank := lexer.Tokenize(line)
		if blank {
			continue
		}
		ins, skip, err := parser.ParseLine(s, tokens)
		if err != nil {
			t.Fatalf("line %d (%q): %v", lineNo+1, line, err)
		}
		if skip {
			continue
		}
		word, err := encoder.Encode(ins)
		if err != nil {
			t.Fatalf("line %d (%q): encode error: %v", lineNo+1, line, err)
		}
		s.Emit(word)
	}
	if pending := s.Reftab.Pending(); len(pending) > 0 {
		t.Fatalf("unresolved labels: %v", pending)
	}
	s.FlushLiterals()
	return s.Image
}

func readWord(t *testing.T, image []byte, addr int) uint32 {
	t.Helper()
	if addr+4 > len(image) {
		t.Fatalf("address %d out of range of %d-byte image", addr, len(image))
	}
	return uint32(image[addr]) | uint32(image[addr+1])<<8 |
		uint32(image[addr+2])<<16 | uint32(image[addr+3])<<24
}

func TestAssembleSimpleProgram(t *testing.T) {
	image := assemble(t, []string{
		"mov r0, #1",
		"add r1, r0, #2",
		"andeq r0, r0, r0",
	})
	if len(image) != 12 {
		t.Fatalf("image length = %d, want 12", len(image))
	}
	if readWord(t, image, 8) != 0 {
		t.Errorf("andeq should assemble to the all-zero halt word")
	}
}

func TestForwardLabelReferencePatchesBranch(t *testing.T) {
	image := assemble(t, []string{
		"b target",
		"mov r0, #0",
		"target:",
		"andeq r0, r0, r0",
	})
	word := readWord(t, image, 0)
	// branch at address 0 targets address 8: offset = (8 - 0 - 8)/4 = 0
	if word&0xFFFFFF != 0 {
		t.Errorf("branch offset field = %#x, want 0", word&0xFFFFFF)
	}
}

func TestBackwardLabelReferenceResolvesImmediately(t *testing.T) {
	image := assemble(t, []string{
		"loop:",
		"mov r0, #1",
		"b loop",
	})
	word := readWord(t, image, 4)
	// branch at address 4 targets address 0: offset = (0 - 4 - 8)/4 = -3, masked to 24 bits
	offset := int32(-3)
	want := uint32(offset) & 0xFFFFFF
	if word&0xFFFFFF != want {
		t.Errorf("branch offset field = %#x, want %#x", word&0xFFFFFF, want)
	}
}

func TestLdrEqSmallValueBecomesMov(t *testing.T) {
	image := assemble(t, []string{
		"ldr r0, =5",
	})
	if len(image) != 4 {
		t.Fatalf("image length = %d, want 4 (no literal pool entry)", len(image))
	}
	word := readWord(t, image, 0)
	if word&0xFF != 5 {
		t.Errorf("ldr r0,=5 should assemble as mov r0,#5, got word %#08x", word)
	}
}

func TestLdrEqLargeValueUsesLiteralPool(t *testing.T) {
	image := assemble(t, []string{
		"ldr r0, =0x12345678",
		"andeq r0, r0, r0",
	})
	if len(image) != 12 {
		t.Fatalf("image length = %d, want 12 (instruction + halt + literal)", len(image))
	}
	if readWord(t, image, 8) != 0x12345678 {
		t.Errorf("literal pool word = %#08x, want 0x12345678", readWord(t, image, 8))
	}
	ldrWord := readWord(t, image, 0)
	// pre-indexed [r15, #off], rn=15: offset = addr(8) - site(0) - 8 = 0
	if ldrWord&0xFFF != 0 {
		t.Errorf("ldr literal offset field = %#x, want 0", ldrWord&0xFFF)
	}
}

func TestLslPseudoOpExpandsToMov(t *testing.T) {
	s := parser.NewState()
	tokens, _ := lexer.Tokenize("lsl r0, #4")
	ins, skip, err := parser.ParseLine(s, tokens)
	if err != nil || skip {
		t.Fatalf("ParseLine(lsl) error=%v skip=%v", err, skip)
	}
	if ins.Kind != instr.KindDP || ins.DP.Opcode != instr.OpMOV {
		t.Errorf("lsl should expand to a mov DP instruction, got %+v", ins)
	}
	if ins.DP.Operand.Type != instr.ShiftLSL || ins.DP.Operand.ShiftAmount != 4 {
		t.Errorf("lsl r0,#4 should become mov r0,r0,lsl #4, got operand %+v", ins.DP.Operand)
	}
}

func TestUndefinedLabelIsReportedPending(t *testing.T) {
	s := parser.NewState()
	tokens, _ := lexer.Tokenize("b nowhere")
	if _, _, err := parser.ParseLine(s, tokens); err != nil {
		t.Fatalf("parsing a forward reference should not itself error: %v", err)
	}
	pending := s.Reftab.Pending()
	if len(pending) != 1 || pending[0] != "nowhere" {
		t.Errorf("Pending() = %v, want [nowhere]", pending)
	}
}

func TestSDTPreIndexedImmediate(t *testing.T) {
	s := parser.NewState()
	tokens, _ := lexer.Tokenize("ldr r0, [r1, #4]")
	ins, _, err := parser.ParseLine(s, tokens)
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if !ins.SDT.P || !ins.SDT.U || ins.SDT.I {
		t.Errorf("ldr r0,[r1,#4] should be pre-indexed, add, immediate; got %+v", ins.SDT)
	}
	if ins.SDT.Offset.Fixed != 4 {
		t.Errorf("offset = %d, want 4", ins.SDT.Offset.Fixed)
	}
}

func TestSDTPostIndexedImmediate(t *testing.T) {
	s := parser.NewState()
	tokens, _ := lexer.Tokenize("str r0, [r1], #4")
	ins, _, err := parser.ParseLine(s, tokens)
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if ins.SDT.P {
		t.Error("str r0,[r1],#4 should be post-indexed")
	}
	if ins.SDT.Offset.Fixed != 4 {
		t.Errorf("offset = %d, want 4", ins.SDT.Offset.Fixed)
	}
}

func TestSDTPreIndexedImmediateNegative(t *testing.T) {
	s := parser.NewState()
	tokens, _ := lexer.Tokenize("ldr r0, [r1, #-4]")
	ins, _, err := parser.ParseLine(s, tokens)
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if ins.SDT.U {
		t.Error("a negative pre-indexed offset should clear the U (add) bit")
	}
	if ins.SDT.Offset.Fixed != 4 {
		t.Errorf("offset = %d, want the negated magnitude 4", ins.SDT.Offset.Fixed)
	}
}

func TestSDTPreIndexedRegisterOffsetWithNoShiftSuffix(t *testing.T) {
	s := parser.NewState()
	tokens, _ := lexer.Tokenize("ldr r0, [r1, r2]")
	ins, _, err := parser.ParseLine(s, tokens)
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if !ins.SDT.P || !ins.SDT.U || !ins.SDT.I {
		t.Errorf("ldr r0,[r1,r2] should be pre-indexed, add, register; got %+v", ins.SDT)
	}
	if ins.SDT.Offset.Rm != 2 || ins.SDT.Offset.ShiftBy || ins.SDT.Offset.ShiftAmount != 0 {
		t.Errorf("offset = %+v, want a bare rm=2 with no shift", ins.SDT.Offset)
	}
}

func TestSDTPreIndexedRegisterOffsetWithExplicitPlus(t *testing.T) {
	s := parser.NewState()
	tokens, _ := lexer.Tokenize("str r0, [r1, +r2]")
	ins, _, err := parser.ParseLine(s, tokens)
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if !ins.SDT.U {
		t.Error("an explicit + should keep the U (add) bit set")
	}
	if ins.SDT.Offset.Rm != 2 {
		t.Errorf("offset.Rm = %d, want 2", ins.SDT.Offset.Rm)
	}
}

func TestSDTPreIndexedRegisterOffsetWithMinus(t *testing.T) {
	s := parser.NewState()
	tokens, _ := lexer.Tokenize("ldr r0, [r1, -r2]")
	ins, _, err := parser.ParseLine(s, tokens)
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if ins.SDT.U {
		t.Error("a leading - should clear the U (add) bit")
	}
	if ins.SDT.Offset.Rm != 2 {
		t.Errorf("offset.Rm = %d, want 2", ins.SDT.Offset.Rm)
	}
}

func TestSDTPreIndexedRegisterOffsetWithShiftSuffix(t *testing.T) {
	s := parser.NewState()
	tokens, _ := lexer.Tokenize("ldr r0, [r1, r2, lsl #2]")
	ins, _, err := parser.ParseLine(s, tokens)
	if err != nil {
		t.Fatalf("ParseLine error: %v", err)
	}
	if ins.SDT.Offset.Rm != 2 || ins.SDT.Offset.Type != instr.ShiftLSL || ins.SDT.Offset.ShiftAmount != 2 {
		t.Errorf("offset = %+v, want rm=2, lsl #2", ins.SDT.Offset)
	}
}
