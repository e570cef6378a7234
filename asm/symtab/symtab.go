// Package symtab implements the assembler's label-to-address table.
package symtab

import "fmt"

// Table maps label names to the instruction address they were
// declared at. Labels are unique; a second declaration of the same
// name is an error (the parser surfaces it as errctx.ErrIsLabel).
type Table struct {
	addrs map[string]uint16
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{addrs: make(map[string]uint16)}
}

// Define records label at addr. It reports false if label is already
// defined, matching the source's smap_put-after-smap_exists check.
func (t *Table) Define(label string, addr uint16) bool {
	if _, exists := t.addrs[label]; exists {
		return false
	}
	t.addrs[label] = addr
	return true
}

// Lookup returns the address of label, and whether it exists.
func (t *Table) Lookup(label string) (uint16, bool) {
	addr, ok := t.addrs[label]
	return addr, ok
}

// MustLookup is Lookup but returns an error for callers that already
// know the label should exist.
func (t *Table) MustLookup(label string) (uint16, error) {
	addr, ok := t.addrs[label]
	if !ok {
		return 0, fmt.Errorf("undefined label %q", label)
	}
	return addr, nil
}
