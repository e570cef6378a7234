package vm

import (
	"github.com/armforge/arm2core/errctx"
	"github.com/armforge/arm2core/instr"
)

// Execute runs ins against m, first checking its condition code. It
// reports whether the pipeline was already reloaded by a taken branch,
// so the caller (Machine.Step) knows not to advance it again. HAL is
// handled by the caller before Execute is reached.
func Execute(m *Machine, ins instr.Instruction) (bool, error) {
	if !conditionHolds(ins.Cond, m.CPU.CPSR) {
		return false, nil
	}

	switch ins.Kind {
	case instr.KindDP:
		return false, executeDP(m, ins.DP)
	case instr.KindMUL:
		return false, executeMUL(m, ins.MUL)
	case instr.KindSDT:
		return false, executeSDT(m, ins.SDT)
	case instr.KindBRN:
		if err := executeBRN(m, ins.BRN); err != nil {
			return false, err
		}
		return true, nil
	case instr.KindHAL:
		return false, nil
	default:
		return false, errctx.Unsupportedf("instruction kind %v has no executor", ins.Kind)
	}
}
