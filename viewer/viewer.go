// Package viewer implements a read-only text-UI dashboard over a
// halted machine's register file and non-zero memory words, reusing
// the panel-construction idiom of the teacher toolchain's interactive
// debugger TUI without any of its breakpoint/stepping machinery.
package viewer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/armforge/arm2core/vm"
)

// Viewer is a single-screen, read-only snapshot dashboard: it never
// steps or mutates the machine it displays.
type Viewer struct {
	Machine *vm.Machine

	App          *tview.Application
	Layout       *tview.Flex
	RegisterView *tview.TextView
	MemoryView   *tview.TextView

	colorOutput  bool
	numberFormat string
}

// New builds a Viewer over a halted machine. colorOutput toggles
// tview's dynamic-color tags; numberFormat is "hex", "dec", or "both".
func New(m *vm.Machine, colorOutput bool, numberFormat string) *Viewer {
	v := &Viewer{
		Machine:      m,
		App:          tview.NewApplication(),
		colorOutput:  colorOutput,
		numberFormat: numberFormat,
	}
	v.initializeViews()
	v.buildLayout()
	v.setupKeyBindings()
	v.Refresh()
	return v
}

func (v *Viewer) initializeViews() {
	v.RegisterView = tview.NewTextView().
		SetDynamicColors(v.colorOutput).
		SetScrollable(false)
	v.RegisterView.SetBorder(true).SetTitle(" Registers ")

	v.MemoryView = tview.NewTextView().
		SetDynamicColors(v.colorOutput).
		SetScrollable(true).
		SetWrap(false)
	v.MemoryView.SetBorder(true).SetTitle(" Non-zero memory ")
}

func (v *Viewer) buildLayout() {
	v.Layout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(v.RegisterView, 0, 1, false).
		AddItem(v.MemoryView, 0, 2, false)
}

func (v *Viewer) setupKeyBindings() {
	v.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEsc, tcell.KeyCtrlC:
			v.App.Stop()
			return nil
		}
		switch event.Rune() {
		case 'q':
			v.App.Stop()
			return nil
		}
		return event
	})
}

func (v *Viewer) formatWord(label string, value uint32) string {
	switch v.numberFormat {
	case "dec":
		return fmt.Sprintf("%-4s %d", label, int32(value))
	case "both":
		return fmt.Sprintf("%-4s %11d (0x%08x)", label, int32(value), value)
	default:
		return fmt.Sprintf("%-4s 0x%08x", label, value)
	}
}

// Refresh repaints both panels from the machine's current state.
func (v *Viewer) Refresh() {
	v.RegisterView.Clear()
	for r := uint8(0); r <= 12; r++ {
		val, _ := v.Machine.CPU.GetRegister(r)
		fmt.Fprintln(v.RegisterView, v.formatWord(fmt.Sprintf("r%d", r), val))
	}
	fmt.Fprintln(v.RegisterView, v.formatWord("pc", v.Machine.CPU.PC))
	fmt.Fprintln(v.RegisterView, v.formatWord("cpsr", v.Machine.CPU.CPSR.ToWord()))

	v.MemoryView.Clear()
	v.Machine.Memory.NonZeroWords(func(addr, word uint32) {
		fmt.Fprintf(v.MemoryView, "0x%08x: 0x%08x\n", addr, word)
	})
}

// Run shows the dashboard until the user quits (Esc, Ctrl-C, or 'q').
func (v *Viewer) Run() error {
	return v.App.SetRoot(v.Layout, true).Run()
}
