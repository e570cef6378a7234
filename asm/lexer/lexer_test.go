package lexer_test

import (
	"testing"

	"github.com/armforge/arm2core/asm/lexer"
)

func TestTokenizeBlankLine(t *testing.T) {
	tokens, blank := lexer.Tokenize("   ")
	if !blank || tokens != nil {
		t.Errorf("Tokenize(blank) = (%v, %v), want (nil, true)", tokens, blank)
	}
}

func TestTokenizeSimpleInstruction(t *testing.T) {
	tokens, blank := lexer.Tokenize("add r0, r1, #1")
	if blank {
		t.Fatal("non-blank line reported blank")
	}
	want := []lexer.Token{
		{Kind: lexer.KindOpcode, Text: "add"},
		{Kind: lexer.KindRegister, Text: "r0"},
		{Kind: lexer.KindComma, Text: ","},
		{Kind: lexer.KindRegister, Text: "r1"},
		{Kind: lexer.KindComma, Text: ","},
		{Kind: lexer.KindHashExpr, Text: "#1"},
	}
	assertTokensEqual(t, tokens, want)
}

func TestTokenizeLabelDeclaration(t *testing.T) {
	tokens, _ := lexer.Tokenize("loop:")
	want := []lexer.Token{
		{Kind: lexer.KindOpcode, Text: "loop"},
		{Kind: lexer.KindLabel, Text: ":"},
	}
	assertTokensEqual(t, tokens, want)
}

func TestTokenizeBracketsGlueToAdjacentText(t *testing.T) {
	tokens, _ := lexer.Tokenize("ldr r0, [r1]")
	want := []lexer.Token{
		{Kind: lexer.KindOpcode, Text: "ldr"},
		{Kind: lexer.KindRegister, Text: "r0"},
		{Kind: lexer.KindComma, Text: ","},
		{Kind: lexer.KindLBracket, Text: "["},
		{Kind: lexer.KindRegister, Text: "r1"},
		{Kind: lexer.KindRBracket, Text: "]"},
	}
	assertTokensEqual(t, tokens, want)
}

func TestTokenizeBracketsGlueWithComma(t *testing.T) {
	tokens, _ := lexer.Tokenize("ldr r0, [r1], #4")
	want := []lexer.Token{
		{Kind: lexer.KindOpcode, Text: "ldr"},
		{Kind: lexer.KindRegister, Text: "r0"},
		{Kind: lexer.KindComma, Text: ","},
		{Kind: lexer.KindLBracket, Text: "["},
		{Kind: lexer.KindRegister, Text: "r1"},
		{Kind: lexer.KindRBracket, Text: "]"},
		{Kind: lexer.KindComma, Text: ","},
		{Kind: lexer.KindHashExpr, Text: "#4"},
	}
	assertTokensEqual(t, tokens, want)
}

func TestTokenizeShiftMnemonic(t *testing.T) {
	tokens, _ := lexer.Tokenize("mov r0, r1, lsl #2")
	if tokens[5].Kind != lexer.KindShift {
		t.Errorf("expected lsl to classify as KindShift, got %v", tokens[5].Kind)
	}
}

func TestTokenizeBranchLabelReference(t *testing.T) {
	tokens, _ := lexer.Tokenize("b loop")
	if tokens[1].Kind != lexer.KindStr {
		t.Errorf("a bare label reference should classify as KindStr, got %v", tokens[1].Kind)
	}
}

func assertTokensEqual(t *testing.T, got, want []lexer.Token) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
