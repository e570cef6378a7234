package symtab_test

import (
	"testing"

	"github.com/armforge/arm2core/asm/symtab"
)

func TestDefineAndLookup(t *testing.T) {
	tab := symtab.New()
	if !tab.Define("loop", 16) {
		t.Fatal("first definition of a label should succeed")
	}
	addr, ok := tab.Lookup("loop")
	if !ok || addr != 16 {
		t.Errorf("Lookup(loop) = (%d, %v), want (16, true)", addr, ok)
	}
}

func TestDefineRejectsRedeclaration(t *testing.T) {
	tab := symtab.New()
	tab.Define("loop", 16)
	if tab.Define("loop", 32) {
		t.Error("redeclaring a label should fail")
	}
	addr, _ := tab.Lookup("loop")
	if addr != 16 {
		t.Errorf("original definition should survive a failed redeclaration, got addr=%d", addr)
	}
}

func TestLookupMissing(t *testing.T) {
	tab := symtab.New()
	if _, ok := tab.Lookup("nope"); ok {
		t.Error("Lookup of an undefined label should report false")
	}
}

func TestMustLookup(t *testing.T) {
	tab := symtab.New()
	tab.Define("start", 0)
	if _, err := tab.MustLookup("start"); err != nil {
		t.Errorf("MustLookup(start) returned error: %v", err)
	}
	if _, err := tab.MustLookup("missing"); err == nil {
		t.Error("MustLookup of an undefined label should error")
	}
}
