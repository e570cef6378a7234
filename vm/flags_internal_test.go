package vm

import (
	"testing"

	"github.com/armforge/arm2core/instr"
)

func TestConditionHolds(t *testing.T) {
	tests := []struct {
		name string
		cond instr.Condition
		cpsr CPSR
		want bool
	}{
		{"EQ holds when Z set", instr.CondEQ, CPSR{Z: true}, true},
		{"EQ fails when Z clear", instr.CondEQ, CPSR{Z: false}, false},
		{"NE is EQ's negation", instr.CondNE, CPSR{Z: false}, true},
		{"GE holds when N==V", instr.CondGE, CPSR{N: true, V: true}, true},
		{"GE fails when N!=V", instr.CondGE, CPSR{N: true, V: false}, false},
		{"LT is GE's negation", instr.CondLT, CPSR{N: true, V: false}, true},
		{"GT requires Z clear and N==V", instr.CondGT, CPSR{Z: false, N: false, V: false}, true},
		{"GT fails when Z set", instr.CondGT, CPSR{Z: true, N: false, V: false}, false},
		{"LE holds when Z set", instr.CondLE, CPSR{Z: true}, true},
		{"LE holds when N!=V", instr.CondLE, CPSR{Z: false, N: true, V: false}, true},
		{"AL always holds", instr.CondAL, CPSR{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := conditionHolds(tt.cond, tt.cpsr); got != tt.want {
				t.Errorf("conditionHolds(%v, %+v) = %v, want %v", tt.cond, tt.cpsr, got, tt.want)
			}
		})
	}
}

func TestBarrelShiftConstantAmount(t *testing.T) {
	cpu := NewCPU()
	cpu.R[1] = 0x80000000
	op := instr.Operand{Rm: 1, Type: instr.ShiftLSR, ShiftAmount: 1}
	v, carry, err := barrelShift(cpu, op)
	if err != nil {
		t.Fatalf("barrelShift error: %v", err)
	}
	if v != 0x40000000 || carry {
		t.Errorf("barrelShift(lsr #1) = (%#x, %v), want (0x40000000, false)", v, carry)
	}
}

func TestBarrelShiftByRegisterUsesLowByte(t *testing.T) {
	cpu := NewCPU()
	cpu.R[1] = 1
	cpu.R[2] = 0x00000105 // low byte is 5, shifting by 5 should apply (not 0x105)
	op := instr.Operand{Rm: 1, Type: instr.ShiftLSL, ShiftBy: true, Rs: 2}
	v, _, err := barrelShift(cpu, op)
	if err != nil {
		t.Fatalf("barrelShift error: %v", err)
	}
	if v != 1<<5 {
		t.Errorf("barrelShift(lsl by register low byte 5) = %#x, want %#x", v, uint32(1<<5))
	}
}

func TestResolveOperand2DPImmediateAppliesRotation(t *testing.T) {
	cpu := NewCPU()
	op := instr.Operand{Kind: instr.OperandDPImmediate, ImmValue: 0xFF, ImmRotate: 4}
	v, carry, err := resolveOperand2(cpu, op)
	if err != nil {
		t.Fatalf("resolveOperand2 error: %v", err)
	}
	if carry {
		t.Error("a DP immediate never produces a shifter carry")
	}
	want := bitopsROR(0xFF, 8)
	if v != want {
		t.Errorf("resolveOperand2(imm 0xFF rotate 4) = %#x, want %#x", v, want)
	}
}

func bitopsROR(v uint32, amount uint) uint32 {
	amount %= 32
	if amount == 0 {
		return v
	}
	return (v >> amount) | (v << (32 - amount))
}
