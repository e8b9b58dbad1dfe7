// Package emu provides the architectural state model and the functional
// single-step RV32I emulator.
package emu

import (
	"fmt"
	"io"

	"github.com/sarchlab/snurisc/insts"
)

// Stats holds the retirement statistics of a simulation run.
type Stats struct {
	// Cycles is the number of simulated cycles.
	Cycles uint64

	// Instructions is the number of retired (non-bubble) instructions.
	Instructions uint64

	// Classes counts retired instructions per statistics class.
	Classes [3]uint64
}

// CPI returns cycles per instruction, or 0 before anything retired.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Count records the retirement of one instruction of the given class.
func (s *Stats) Count(class insts.Class) {
	s.Instructions++
	s.Classes[class]++
}

// Report writes the end-of-run statistics block to w.
func (s Stats) Report(w io.Writer) {
	fmt.Fprintf(w, "%d instructions executed in %d cycles. CPI = %.3f\n",
		s.Instructions, s.Cycles, s.CPI())

	total := s.Instructions
	if total == 0 {
		total = 1
	}
	pct := func(n uint64) float64 {
		return 100 * float64(n) / float64(total)
	}
	fmt.Fprintf(w, "Data transfer:    %d instructions (%.2f%%)\n",
		s.Classes[insts.ClassMEM], pct(s.Classes[insts.ClassMEM]))
	fmt.Fprintf(w, "ALU:              %d instructions (%.2f%%)\n",
		s.Classes[insts.ClassALU], pct(s.Classes[insts.ClassALU]))
	fmt.Fprintf(w, "Control transfer: %d instructions (%.2f%%)\n",
		s.Classes[insts.ClassCTRL], pct(s.Classes[insts.ClassCTRL]))
}
