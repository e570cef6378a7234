package vm

import "github.com/armforge/arm2core/instr"

// Machine couples the register file and memory with the two-stage
// fetch pipeline: fetched holds the next word to decode, decoded holds
// the instruction currently executing. CPU.PC always reads as the
// address of the instruction in decoded, plus eight.
type Machine struct {
	CPU    *CPU
	Memory *Memory

	fetched uint32
	decoded instr.Instruction
}

// NewMachine builds a machine with image loaded at address zero and
// the pipeline primed per the emulator's fixed two-stage startup
// sequence.
func NewMachine(mem *Memory) (*Machine, error) {
	m := &Machine{CPU: NewCPU(), Memory: mem}

	first, err := mem.LoadWord(0)
	if err != nil {
		return nil, err
	}
	second, err := mem.LoadWord(4)
	if err != nil {
		return nil, err
	}

	m.CPU.PC = 8
	m.decoded, err = Decode(first)
	if err != nil {
		return nil, err
	}
	m.fetched = second
	return m, nil
}

// Jump reloads the pipeline so the instruction at target executes
// next, used only by the branch executor.
func (m *Machine) Jump(target uint32) error {
	firstWord, err := m.Memory.LoadWord(target)
	if err != nil {
		return err
	}
	secondWord, err := m.Memory.LoadWord(target + 4)
	if err != nil {
		return err
	}

	m.decoded, err = Decode(firstWord)
	if err != nil {
		return err
	}
	m.fetched = secondWord
	m.CPU.PC = target + 8
	return nil
}

// Halted reports whether the pipeline's current instruction is HAL.
func (m *Machine) Halted() bool {
	return m.decoded.Kind == instr.KindHAL
}

// Step executes the currently decoded instruction and advances the
// pipeline by one word, unless the instruction branched and already
// reloaded it via Jump.
func (m *Machine) Step() error {
	branched, err := Execute(m, m.decoded)
	if err != nil {
		return err
	}
	if branched {
		return nil
	}

	next, err := m.Memory.LoadWord(m.CPU.PC)
	if err != nil {
		return err
	}
	m.decoded, err = Decode(m.fetched)
	if err != nil {
		return err
	}
	m.fetched = next
	m.CPU.PC += 4
	return nil
}

// Run steps the machine until it halts or an execution error occurs.
func (m *Machine) Run() error {
	for !m.Halted() {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}
