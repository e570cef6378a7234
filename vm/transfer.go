package vm

import "github.com/armforge/arm2core/instr"

// executeSDT performs a single data transfer: pre-indexed addressing
// computes the effective address before the access and never writes
// back rn; post-indexed addressing accesses at rn unmodified, then
// writes rn back with the offset applied.
func executeSDT(m *Machine, sdt *instr.SDT) error {
	offset, _, err := resolveOperand2(m.CPU, sdt.Offset)
	if err != nil {
		return err
	}

	rnVal, err := m.CPU.GetRegister(sdt.Rn)
	if err != nil {
		return err
	}

	var effective uint32
	if sdt.U {
		effective = rnVal + offset
	} else {
		effective = rnVal - offset
	}

	if sdt.P {
		if err := accessMemory(m, sdt, effective); err != nil {
			return err
		}
		return nil
	}

	if err := accessMemory(m, sdt, rnVal); err != nil {
		return err
	}
	return m.CPU.SetRegister(sdt.Rn, effective)
}

func accessMemory(m *Machine, sdt *instr.SDT, addr uint32) error {
	if sdt.L {
		word, err := m.Memory.LoadWord(addr)
		if err != nil {
			return err
		}
		return m.CPU.SetRegister(sdt.Rd, word)
	}
	rd, err := m.CPU.GetRegister(sdt.Rd)
	if err != nil {
		return err
	}
	return m.Memory.StoreWord(addr, rd)
}
