package vm

import "github.com/armforge/arm2core/instr"

// signExtendBranchOffset recovers the byte displacement a branch's raw
// 24-bit word-offset field encodes: shift left 2 to restore the two
// bits the assembler divided out, then sign-extend bit 25 across the
// top of the word.
func signExtendBranchOffset(raw int32) int32 {
	shifted := raw << 2
	if shifted&0x02000000 != 0 {
		shifted |= ^int32(0x03FFFFFF)
	}
	return shifted
}

// executeBRN computes the branch target from the CPU's current PC
// (which already reads as the executing instruction's address plus
// eight) and reloads the two-stage pipeline from that target.
func executeBRN(m *Machine, brn *instr.BRN) error {
	target := uint32(int64(m.CPU.PC) + int64(signExtendBranchOffset(brn.Offset)))
	return m.Jump(target)
}
