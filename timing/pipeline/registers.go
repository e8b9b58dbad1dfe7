// Package pipeline provides the cycle-accurate 5-stage RV32I pipeline model.
package pipeline

import (
	"github.com/sarchlab/snurisc/emu"
	"github.com/sarchlab/snurisc/insts"
)

// IFIDRegister holds state between the Fetch and Decode stages.
type IFIDRegister struct {
	// PC of the fetched instruction.
	PC uint32

	// Inst is the fetched instruction word.
	Inst uint32

	// Exc carries a fetch fault, if any.
	Exc emu.Exception

	// PCPlus4 is the speculative fall-through address.
	PCPlus4 uint32
}

// Bubble fills the register with the no-effect encoding, keeping pc.
func (r *IFIDRegister) Bubble(pc uint32) {
	r.PC = pc
	r.Inst = insts.Bubble
	r.Exc = emu.ExcNone
	r.PCPlus4 = 0
}

// IDEXRegister holds state between the Decode and Execute stages.
type IDEXRegister struct {
	// PC of this instruction.
	PC uint32

	// Inst is the instruction word (Bubble after a squash).
	Inst uint32

	// Exc carries any fault raised so far.
	Exc emu.Exception

	// Rd is the destination register.
	Rd uint8

	// Operand values resolved in decode (after forwarding).
	Op1Data uint32
	Op2Data uint32

	// Rs2Data is the raw rs2 value, kept separately for stores and
	// branches whose second ALU operand is an immediate.
	Rs2Data uint32

	// PCPlus4 is the return address for jal/jalr.
	PCPlus4 uint32

	// Decoded control signals.
	BrType   BrType
	ALUFun   emu.ALUOp
	WBSel    WBSel
	RegWrite bool
	MemEn    bool
	MemOp    emu.MemOp
}

// Bubble fills the register with the no-effect encoding, keeping pc.
// The cleared write enables and branch type guarantee the slot has no
// side effect and cannot raise spurious hazards.
func (r *IDEXRegister) Bubble(pc uint32) {
	*r = IDEXRegister{PC: pc, Inst: insts.Bubble}
}

// EXMMRegister holds state between the Execute and Memory stages.
type EXMMRegister struct {
	// PC of this instruction.
	PC uint32

	// Inst is the instruction word.
	Inst uint32

	// Exc carries any fault raised so far.
	Exc emu.Exception

	// Rd is the destination register.
	Rd uint8

	// ALUOut is the ALU result (or the return address for jal/jalr).
	ALUOut uint32

	// Rs2Data is the store data.
	Rs2Data uint32

	// Control signals.
	RegWrite bool
	WBSel    WBSel
	MemEn    bool
	MemOp    emu.MemOp
}

// Bubble fills the register with the no-effect encoding, keeping pc
// and any pending exception: a fault must ride through to writeback
// even though its instruction's side effects are squashed.
func (r *EXMMRegister) Bubble(pc uint32, exc emu.Exception) {
	*r = EXMMRegister{PC: pc, Inst: insts.Bubble, Exc: exc}
}

// MMWBRegister holds state between the Memory and Writeback stages.
type MMWBRegister struct {
	// PC of this instruction.
	PC uint32

	// Inst is the instruction word.
	Inst uint32

	// Exc carries any fault raised so far.
	Exc emu.Exception

	// Rd is the destination register.
	Rd uint8

	// RegWrite enables the register-file write.
	RegWrite bool

	// WBData is the value written back on retirement.
	WBData uint32
}

// Bubble fills the register with the no-effect encoding.
func (r *MMWBRegister) Bubble() {
	*r = MMWBRegister{Inst: insts.Bubble}
}

// latches is the full set of pipeline registers committed each cycle.
type latches struct {
	ifid IFIDRegister
	idex IDEXRegister
	exmm EXMMRegister
	mmwb MMWBRegister
}

// reset establishes the post-reset state: every slot holds a bubble.
func (l *latches) reset() {
	l.ifid.Bubble(0)
	l.idex.Bubble(0)
	l.exmm.Bubble(0, emu.ExcNone)
	l.mmwb.Bubble()
}
