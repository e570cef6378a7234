package vm

import (
	"fmt"
	"io"

	"github.com/armforge/arm2core/errctx"
)

// MemSize is the flat memory's fixed size in bytes.
const MemSize = 65536

// The five memory-mapped GPIO debug addresses: accesses to these
// print a banner and never touch backing memory.
const (
	gpioSetup0to9   uint32 = 0x20200000
	gpioSetup10to19 uint32 = 0x20200004
	gpioSetup20to29 uint32 = 0x20200008
	gpioWrite       uint32 = 0x2020001C
	gpioClear       uint32 = 0x20200028
)

func isGPIOAddr(addr uint32) bool {
	switch {
	case addr == gpioSetup0to9, addr == gpioSetup10to19, addr == gpioSetup20to29:
		return true
	case addr == gpioClear, addr == gpioWrite:
		return true
	default:
		return false
	}
}

// Memory is the emulator's flat, zero-initialized, little-endian byte
// array, with the five GPIO addresses special-cased.
type Memory struct {
	data             [MemSize]byte
	out              io.Writer
	gpioPrintEnabled bool
}

// NewMemory returns an empty memory that prints GPIO banners to out
// when enabled is true.
func NewMemory(out io.Writer, enabled bool) *Memory {
	return &Memory{out: out, gpioPrintEnabled: enabled}
}

func (m *Memory) printGPIOAccess(addr uint32) {
	if !m.gpioPrintEnabled {
		return
	}
	var msg string
	switch addr {
	case gpioSetup0to9:
		msg = "One GPIO pin from 0 to 9 has been accessed"
	case gpioSetup10to19:
		msg = "One GPIO pin from 10 to 19 has been accessed"
	case gpioSetup20to29:
		msg = "One GPIO pin from 20 to 29 has been accessed"
	case gpioClear:
		msg = "PIN OFF"
	case gpioWrite:
		msg = "PIN ON"
	}
	fmt.Fprintln(m.out, msg)
}

// LoadImage copies a freshly assembled/loaded binary into memory
// starting at address 0.
func (m *Memory) LoadImage(image []byte) error {
	if len(image) > MemSize {
		return errctx.Invalidf("image of %d bytes exceeds memory size %d", len(image), MemSize)
	}
	copy(m.data[:], image)
	return nil
}

// LoadWord reads a little-endian word at addr. GPIO addresses return
// the accessed address itself, after printing their banner, and never
// read backing memory.
func (m *Memory) LoadWord(addr uint32) (uint32, error) {
	if isGPIOAddr(addr) {
		m.printGPIOAccess(addr)
		return addr, nil
	}
	if addr > MemSize-4 {
		return 0, errctx.Invalidf("out of bounds memory access at address %#08x", addr)
	}
	return uint32(m.data[addr]) | uint32(m.data[addr+1])<<8 |
		uint32(m.data[addr+2])<<16 | uint32(m.data[addr+3])<<24, nil
}

// StoreWord writes a little-endian word at addr. GPIO addresses print
// their banner and never write backing memory.
func (m *Memory) StoreWord(addr, value uint32) error {
	if isGPIOAddr(addr) {
		m.printGPIOAccess(addr)
		return nil
	}
	if addr > MemSize-4 {
		return errctx.Invalidf("out of bounds memory access at address %#08x", addr)
	}
	m.data[addr] = byte(value)
	m.data[addr+1] = byte(value >> 8)
	m.data[addr+2] = byte(value >> 16)
	m.data[addr+3] = byte(value >> 24)
	return nil
}

// LoadWordBigEndian reads a word at addr in big-endian byte order, the
// same byte order NonZeroWords uses for the halt-time memory dump.
func (m *Memory) LoadWordBigEndian(addr uint32) (uint32, error) {
	if isGPIOAddr(addr) {
		m.printGPIOAccess(addr)
		return addr, nil
	}
	if addr > MemSize-4 {
		return 0, errctx.Invalidf("out of bounds memory access at address %#08x", addr)
	}
	return uint32(m.data[addr])<<24 | uint32(m.data[addr+1])<<16 |
		uint32(m.data[addr+2])<<8 | uint32(m.data[addr+3]), nil
}

// NonZeroWords walks the full address space in ascending, word-aligned
// order and calls fn with each word that isn't all zero, read directly
// from backing storage (GPIO addresses are not special-cased here; the
// dump reports raw memory contents, not device state).
func (m *Memory) NonZeroWords(fn func(addr uint32, word uint32)) {
	for addr := uint32(0); addr < MemSize; addr += 4 {
		word := uint32(m.data[addr])<<24 | uint32(m.data[addr+1])<<16 |
			uint32(m.data[addr+2])<<8 | uint32(m.data[addr+3])
		if word != 0 {
			fn(addr, word)
		}
	}
}
