// Package emu provides the architectural state model and the functional
// single-step RV32I emulator.
package emu

// Exception is a bitfield of fault conditions carried alongside an
// instruction. Bits are ORed in as stages detect faults and preserved
// until the instruction retires.
type Exception uint32

// ExcNone means no fault is pending.
const ExcNone Exception = 0

// Exception bits.
const (
	// ExcIMemError is an instruction-fetch fault.
	ExcIMemError Exception = 1 << iota
	// ExcDMemError is a data-memory access fault.
	ExcDMemError
	// ExcEbreak is voluntary termination via the ebreak encoding.
	ExcEbreak
	// ExcIllegalInst is a decode failure.
	ExcIllegalInst
)

// Message returns the termination message for the highest-priority bit
// that is set. Priority order: DMEM error, ebreak, illegal instruction,
// IMEM error.
func (e Exception) Message() string {
	switch {
	case e&ExcDMemError != 0:
		return "Memory access error"
	case e&ExcEbreak != 0:
		return "Execution completed (ebreak)"
	case e&ExcIllegalInst != 0:
		return "Illegal instruction"
	case e&ExcIMemError != 0:
		return "Invalid instruction address"
	default:
		return "Unknown exception"
	}
}
