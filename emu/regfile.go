// Package emu provides the architectural state model and the functional
// single-step RV32I emulator.
package emu

import (
	"fmt"
	"io"
)

// NumRegs is the number of general-purpose registers.
const NumRegs = 32

// RegFile represents the RV32I integer register file. Register x0 is
// hardwired to zero: reads return 0 and writes are ignored.
type RegFile struct {
	regs [NumRegs]uint32
}

// NewRegFile creates a register file with all registers cleared.
func NewRegFile() *RegFile {
	return &RegFile{}
}

// Read returns the value of register n. Reading x0 yields 0.
// An index outside 0..31 is a programmer error and panics.
func (r *RegFile) Read(n uint8) uint32 {
	if n >= NumRegs {
		panic(fmt.Sprintf("regfile: read of x%d out of range", n))
	}
	if n == 0 {
		return 0
	}
	return r.regs[n]
}

// Write sets register n to v. Writes to x0 are silently ignored.
// An index outside 0..31 is a programmer error and panics.
func (r *RegFile) Write(n uint8, v uint32) {
	if n >= NumRegs {
		panic(fmt.Sprintf("regfile: write of x%d out of range", n))
	}
	if n == 0 {
		return
	}
	r.regs[n] = v
}

// Dump writes all register values to w, four per row.
func (r *RegFile) Dump(w io.Writer) {
	fmt.Fprintln(w, "Registers")
	fmt.Fprintln(w, "=========")
	for i := 0; i < NumRegs; i += 4 {
		fmt.Fprintf(w, "x%-2d = 0x%08x  x%-2d = 0x%08x  x%-2d = 0x%08x  x%-2d = 0x%08x\n",
			i, r.Read(uint8(i)),
			i+1, r.Read(uint8(i+1)),
			i+2, r.Read(uint8(i+2)),
			i+3, r.Read(uint8(i+3)))
	}
}
