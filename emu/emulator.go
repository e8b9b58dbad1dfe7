// Package emu provides the architectural state model and the functional
// single-step RV32I emulator.
package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/snurisc/insts"
)

// StepResult describes the outcome of executing a single instruction.
type StepResult struct {
	// PC is the address of the executed instruction.
	PC uint32

	// Inst is the fetched instruction word.
	Inst uint32

	// Exception carries any fault raised by this instruction.
	// Execution must stop once it is non-zero.
	Exception Exception
}

// Emulator executes RV32I instructions one at a time, completing each
// before the next begins. It is the functional reference for the
// pipelined engine in timing/pipeline.
type Emulator struct {
	regFile *RegFile
	imem    *Memory
	dmem    *Memory
	pc      uint32

	stats Stats

	stdout io.Writer
	trace  bool

	maxInstructions uint64
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom writer for trace output.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithTrace enables a per-instruction retirement trace.
func WithTrace() EmulatorOption {
	return func(e *Emulator) {
		e.trace = true
	}
}

// WithMaxInstructions caps the number of instructions Run executes.
// A value of 0 means no limit.
func WithMaxInstructions(n uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = n
	}
}

// NewEmulator creates an emulator over the given register file and
// instruction/data memories.
func NewEmulator(regFile *RegFile, imem, dmem *Memory, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: regFile,
		imem:    imem,
		dmem:    dmem,
		stdout:  os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetPC sets the program counter (entry point).
func (e *Emulator) SetPC(pc uint32) {
	e.pc = pc
}

// PC returns the current program counter.
func (e *Emulator) PC() uint32 {
	return e.pc
}

// RegFile returns the architectural register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Stats returns the retirement statistics so far.
func (e *Emulator) Stats() Stats {
	return e.stats
}

// Step fetches, decodes and executes one instruction, updating the
// architectural state and the PC.
func (e *Emulator) Step() StepResult {
	res := StepResult{PC: e.pc}

	word, ok := e.imem.ReadWord(e.pc)
	if !ok {
		res.Exception = ExcIMemError
		return res
	}
	res.Inst = word

	op := insts.Decode(word)
	if op == insts.OpIllegal {
		res.Exception = ExcIllegalInst
		return res
	}

	res.Exception = e.execute(op, word)
	e.stats.Cycles++
	e.stats.Count(insts.Describe(op).Class)

	if e.trace {
		fmt.Fprintf(e.stdout, "%4d 0x%08x: %s\n", e.stats.Cycles, res.PC, insts.Disassemble(word))
	}
	return res
}

// execute performs the architectural effect of one decoded instruction
// and advances the PC.
func (e *Emulator) execute(op insts.Op, word uint32) Exception {
	rf := e.regFile
	rd := insts.Rd(word)
	rs1 := rf.Read(insts.Rs1(word))
	rs2 := rf.Read(insts.Rs2(word))
	next := e.pc + 4

	switch op {
	case insts.OpLUI:
		rf.Write(rd, insts.ImmU(word))
	case insts.OpAUIPC:
		rf.Write(rd, e.pc+insts.ImmU(word))

	case insts.OpJAL:
		rf.Write(rd, e.pc+4)
		next = e.pc + insts.ImmJ(word)
	case insts.OpJALR:
		rf.Write(rd, e.pc+4)
		next = (rs1 + insts.ImmI(word)) &^ 1

	case insts.OpBEQ:
		if rs1 == rs2 {
			next = e.pc + insts.ImmB(word)
		}
	case insts.OpBNE:
		if rs1 != rs2 {
			next = e.pc + insts.ImmB(word)
		}
	case insts.OpBLT:
		if int32(rs1) < int32(rs2) {
			next = e.pc + insts.ImmB(word)
		}
	case insts.OpBGE:
		if int32(rs1) >= int32(rs2) {
			next = e.pc + insts.ImmB(word)
		}
	case insts.OpBLTU:
		if rs1 < rs2 {
			next = e.pc + insts.ImmB(word)
		}
	case insts.OpBGEU:
		if rs1 >= rs2 {
			next = e.pc + insts.ImmB(word)
		}

	case insts.OpLW:
		v, ok := e.dmem.ReadWord(rs1 + insts.ImmI(word))
		if !ok {
			return ExcDMemError
		}
		rf.Write(rd, v)
	case insts.OpSW:
		if !e.dmem.WriteWord(rs1+insts.ImmS(word), rs2) {
			return ExcDMemError
		}

	case insts.OpADDI:
		rf.Write(rd, ALU(ALUAdd, rs1, insts.ImmI(word)))
	case insts.OpSLTI:
		rf.Write(rd, ALU(ALUSlt, rs1, insts.ImmI(word)))
	case insts.OpSLTIU:
		rf.Write(rd, ALU(ALUSltu, rs1, insts.ImmI(word)))
	case insts.OpXORI:
		rf.Write(rd, ALU(ALUXor, rs1, insts.ImmI(word)))
	case insts.OpORI:
		rf.Write(rd, ALU(ALUOr, rs1, insts.ImmI(word)))
	case insts.OpANDI:
		rf.Write(rd, ALU(ALUAnd, rs1, insts.ImmI(word)))
	case insts.OpSLLI:
		rf.Write(rd, ALU(ALUSll, rs1, insts.ImmI(word)))
	case insts.OpSRLI:
		rf.Write(rd, ALU(ALUSrl, rs1, insts.ImmI(word)))
	case insts.OpSRAI:
		rf.Write(rd, ALU(ALUSra, rs1, insts.ImmI(word)))

	case insts.OpADD:
		rf.Write(rd, ALU(ALUAdd, rs1, rs2))
	case insts.OpSUB:
		rf.Write(rd, ALU(ALUSub, rs1, rs2))
	case insts.OpSLL:
		rf.Write(rd, ALU(ALUSll, rs1, rs2))
	case insts.OpSLT:
		rf.Write(rd, ALU(ALUSlt, rs1, rs2))
	case insts.OpSLTU:
		rf.Write(rd, ALU(ALUSltu, rs1, rs2))
	case insts.OpXOR:
		rf.Write(rd, ALU(ALUXor, rs1, rs2))
	case insts.OpSRL:
		rf.Write(rd, ALU(ALUSrl, rs1, rs2))
	case insts.OpSRA:
		rf.Write(rd, ALU(ALUSra, rs1, rs2))
	case insts.OpOR:
		rf.Write(rd, ALU(ALUOr, rs1, rs2))
	case insts.OpAND:
		rf.Write(rd, ALU(ALUAnd, rs1, rs2))

	case insts.OpEBREAK:
		// The PC stays on the ebreak so reports name the halt site.
		return ExcEbreak
	}

	e.pc = next
	return ExcNone
}

// Run executes instructions until one raises an exception, and returns
// that exception.
func (e *Emulator) Run() Exception {
	for {
		res := e.Step()
		if res.Exception != ExcNone {
			return res.Exception
		}
		if e.maxInstructions > 0 && e.stats.Instructions >= e.maxInstructions {
			return ExcNone
		}
	}
}
