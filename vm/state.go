package vm

import (
	"fmt"
	"io"
)

// DumpState prints the machine's halt-time snapshot: general registers
// 0-12, PC, and CPSR, each as signed decimal and hex, followed by every
// non-zero memory word in ascending address order. SP (13) and LR (14)
// are never printed.
func (m *Machine) DumpState(w io.Writer) {
	for r := uint8(0); r <= 12; r++ {
		v, _ := m.CPU.GetRegister(r)
		fmt.Fprintf(w, "$%-3d:%11d (0x%08x)\n", r, int32(v), v)
	}
	fmt.Fprintf(w, "PC  :%11d (0x%08x)\n", int32(m.CPU.PC), m.CPU.PC)
	cpsr := m.CPU.CPSR.ToWord()
	fmt.Fprintf(w, "CPSR:%11d (0x%08x)\n", int32(cpsr), cpsr)

	m.Memory.NonZeroWords(func(addr, word uint32) {
		fmt.Fprintf(w, "0x%08x: 0x%08x\n", addr, word)
	})
}
