// Package pipeline provides the cycle-accurate 5-stage RV32I pipeline model.
package pipeline

import (
	"github.com/sarchlab/snurisc/emu"
	"github.com/sarchlab/snurisc/insts"
)

// BrType classifies the control-transfer behavior of an instruction.
type BrType uint8

// Branch types.
const (
	BrNone BrType = iota // not a control transfer
	BrNE                 // taken iff compare result is 0
	BrEQ                 // taken iff compare result is 1
	BrGE                 // taken iff compare result is 0 (signed)
	BrGEU                // taken iff compare result is 0 (unsigned)
	BrLT                 // taken iff compare result is 1 (signed)
	BrLTU                // taken iff compare result is 1 (unsigned)
	BrJ                  // jal, always taken
	BrJR                 // jalr, always taken via register
)

// Op1Sel selects the first ALU operand.
type Op1Sel uint8

// First-operand sources.
const (
	Op1RS1 Op1Sel = iota // register rs1 (possibly forwarded)
	Op1PC                // the instruction's own PC
	Op1X                 // unused
)

// Op2Sel selects the second ALU operand.
type Op2Sel uint8

// Second-operand sources.
const (
	Op2RS2 Op2Sel = iota // register rs2 (possibly forwarded)
	Op2ImmI
	Op2ImmS
	Op2ImmB
	Op2ImmU
	Op2ImmJ
	Op2X // unused
)

// WBSel selects the writeback value.
type WBSel uint8

// Writeback sources.
const (
	WBALU WBSel = iota // ALU result
	WBMem              // data-memory read (loads)
	WBPC4              // return address (jal/jalr)
	WBX                // no writeback
)

// PCSel selects the next fetch address.
type PCSel uint8

// Next-PC sources.
const (
	PCPlus4 PCSel = iota // fall through
	PCBrJmp              // branch/jal target
	PCJalr               // jalr target
)

// FwdSel names the forwarding source for one operand read in decode.
type FwdSel uint8

// Forwarding sources, in priority order.
const (
	FwdNone FwdSel = iota // use the register-file read
	FwdEX                 // EX-stage ALU output, this cycle
	FwdMM                 // MM-stage writeback value, this cycle
	FwdWB                 // WB-stage writeback value (latched)
)

// Signals is the decode-stage control vector for one instruction.
type Signals struct {
	BrType   BrType
	Op1Sel   Op1Sel
	Op2Sel   Op2Sel
	Rs1Used  bool
	Rs2Used  bool
	ALUFun   emu.ALUOp
	WBSel    WBSel
	RegWrite bool
	MemEn    bool
	MemOp    emu.MemOp
}

// safeSignals has every side effect disabled. It is emitted for
// illegal encodings, for ebreak, and for bubbles.
var safeSignals = Signals{
	BrType: BrNone,
	Op1Sel: Op1X,
	Op2Sel: Op2X,
	ALUFun: emu.ALUX,
	WBSel:  WBX,
}

// decodeTable maps each opcode identity to its control vector.
var decodeTable = map[insts.Op]Signals{
	insts.OpLUI:   {BrNone, Op1X, Op2ImmU, false, false, emu.ALUCopy2, WBALU, true, false, emu.MemRead},
	insts.OpAUIPC: {BrNone, Op1PC, Op2ImmU, false, false, emu.ALUAdd, WBALU, true, false, emu.MemRead},

	insts.OpJAL:  {BrJ, Op1X, Op2ImmJ, false, false, emu.ALUX, WBPC4, true, false, emu.MemRead},
	insts.OpJALR: {BrJR, Op1RS1, Op2ImmI, true, false, emu.ALUAdd, WBPC4, true, false, emu.MemRead},

	insts.OpBEQ:  {BrEQ, Op1RS1, Op2ImmB, true, true, emu.ALUSeq, WBX, false, false, emu.MemRead},
	insts.OpBNE:  {BrNE, Op1RS1, Op2ImmB, true, true, emu.ALUSeq, WBX, false, false, emu.MemRead},
	insts.OpBLT:  {BrLT, Op1RS1, Op2ImmB, true, true, emu.ALUSlt, WBX, false, false, emu.MemRead},
	insts.OpBGE:  {BrGE, Op1RS1, Op2ImmB, true, true, emu.ALUSlt, WBX, false, false, emu.MemRead},
	insts.OpBLTU: {BrLTU, Op1RS1, Op2ImmB, true, true, emu.ALUSltu, WBX, false, false, emu.MemRead},
	insts.OpBGEU: {BrGEU, Op1RS1, Op2ImmB, true, true, emu.ALUSltu, WBX, false, false, emu.MemRead},

	insts.OpLW: {BrNone, Op1RS1, Op2ImmI, true, false, emu.ALUAdd, WBMem, true, true, emu.MemRead},
	insts.OpSW: {BrNone, Op1RS1, Op2ImmS, true, true, emu.ALUAdd, WBX, false, true, emu.MemWrite},

	insts.OpADDI:  {BrNone, Op1RS1, Op2ImmI, true, false, emu.ALUAdd, WBALU, true, false, emu.MemRead},
	insts.OpSLTI:  {BrNone, Op1RS1, Op2ImmI, true, false, emu.ALUSlt, WBALU, true, false, emu.MemRead},
	insts.OpSLTIU: {BrNone, Op1RS1, Op2ImmI, true, false, emu.ALUSltu, WBALU, true, false, emu.MemRead},
	insts.OpXORI:  {BrNone, Op1RS1, Op2ImmI, true, false, emu.ALUXor, WBALU, true, false, emu.MemRead},
	insts.OpORI:   {BrNone, Op1RS1, Op2ImmI, true, false, emu.ALUOr, WBALU, true, false, emu.MemRead},
	insts.OpANDI:  {BrNone, Op1RS1, Op2ImmI, true, false, emu.ALUAnd, WBALU, true, false, emu.MemRead},
	insts.OpSLLI:  {BrNone, Op1RS1, Op2ImmI, true, false, emu.ALUSll, WBALU, true, false, emu.MemRead},
	insts.OpSRLI:  {BrNone, Op1RS1, Op2ImmI, true, false, emu.ALUSrl, WBALU, true, false, emu.MemRead},
	insts.OpSRAI:  {BrNone, Op1RS1, Op2ImmI, true, false, emu.ALUSra, WBALU, true, false, emu.MemRead},

	insts.OpADD:  {BrNone, Op1RS1, Op2RS2, true, true, emu.ALUAdd, WBALU, true, false, emu.MemRead},
	insts.OpSUB:  {BrNone, Op1RS1, Op2RS2, true, true, emu.ALUSub, WBALU, true, false, emu.MemRead},
	insts.OpSLL:  {BrNone, Op1RS1, Op2RS2, true, true, emu.ALUSll, WBALU, true, false, emu.MemRead},
	insts.OpSLT:  {BrNone, Op1RS1, Op2RS2, true, true, emu.ALUSlt, WBALU, true, false, emu.MemRead},
	insts.OpSLTU: {BrNone, Op1RS1, Op2RS2, true, true, emu.ALUSltu, WBALU, true, false, emu.MemRead},
	insts.OpXOR:  {BrNone, Op1RS1, Op2RS2, true, true, emu.ALUXor, WBALU, true, false, emu.MemRead},
	insts.OpSRL:  {BrNone, Op1RS1, Op2RS2, true, true, emu.ALUSrl, WBALU, true, false, emu.MemRead},
	insts.OpSRA:  {BrNone, Op1RS1, Op2RS2, true, true, emu.ALUSra, WBALU, true, false, emu.MemRead},
	insts.OpOR:   {BrNone, Op1RS1, Op2RS2, true, true, emu.ALUOr, WBALU, true, false, emu.MemRead},
	insts.OpAND:  {BrNone, Op1RS1, Op2RS2, true, true, emu.ALUAnd, WBALU, true, false, emu.MemRead},

	insts.OpEBREAK: safeSignals,
}

// Control is the combinational control and hazard unit. It is
// stateless: every output is recomputed from the decode-stage
// instruction and the EX/MM/WB latches each cycle.
type Control struct{}

// NewControl creates a control unit.
func NewControl() *Control {
	return &Control{}
}

// Signals returns the decode control vector for an opcode. The second
// result is false when the opcode is illegal; the caller must then
// treat the instruction as a bubble and raise ExcIllegalInst.
func (c *Control) Signals(op insts.Op) (Signals, bool) {
	s, ok := decodeTable[op]
	if !ok {
		return safeSignals, false
	}
	return s, true
}

// Forward resolves the forwarding source for one source register of
// the decode-stage instruction. Candidate stages are scanned in
// priority order EX, MM, WB; a stage matches iff its latched write
// enable is set, its destination is not x0, and its destination equals
// rs. Disabled source registers never forward.
func (c *Control) Forward(used bool, rs uint8, idex *IDEXRegister, exmm *EXMMRegister, mmwb *MMWBRegister) FwdSel {
	if !used {
		return FwdNone
	}
	if idex.RegWrite && idex.Rd != 0 && idex.Rd == rs {
		return FwdEX
	}
	if exmm.RegWrite && exmm.Rd != 0 && exmm.Rd == rs {
		return FwdMM
	}
	if mmwb.RegWrite && mmwb.Rd != 0 && mmwb.Rd == rs {
		return FwdWB
	}
	return FwdNone
}

// LoadUseHazard reports whether the decode-stage instruction must
// stall because the EX-stage instruction is a load whose destination
// it reads. The loaded value only becomes forwardable once the load
// reaches MM.
func (c *Control) LoadUseHazard(sig Signals, rs1, rs2 uint8, idex *IDEXRegister) bool {
	if !idex.RegWrite || idex.WBSel != WBMem || idex.Rd == 0 {
		return false
	}
	if sig.Rs1Used && rs1 == idex.Rd {
		return true
	}
	if sig.Rs2Used && rs2 == idex.Rd {
		return true
	}
	return false
}

// PCSel chooses the next fetch address from the EX-stage branch type
// and its compare result this cycle. Branches predict not-taken, so
// anything other than PCPlus4 squashes the two younger stages.
func (c *Control) PCSel(brType BrType, cmp uint32) PCSel {
	switch brType {
	case BrJ:
		return PCBrJmp
	case BrJR:
		return PCJalr
	case BrEQ, BrLT, BrLTU:
		if cmp == 1 {
			return PCBrJmp
		}
	case BrNE, BrGE, BrGEU:
		if cmp == 0 {
			return PCBrJmp
		}
	}
	return PCPlus4
}

// PipeSignals is the per-cycle stall/squash decision.
type PipeSignals struct {
	// IFStall holds the fetch PC for one cycle.
	IFStall bool

	// IDStall holds the IF/ID latch for one cycle.
	IDStall bool

	// IDBubble writes a bubble into the IF/ID latch.
	IDBubble bool

	// EXBubble writes a bubble into the ID/EX latch.
	EXBubble bool

	// MMBubble clears the EX-stage instruction's side effects while
	// its exception rides on to writeback.
	MMBubble bool
}

// PipeSignals combines the load-use stall, the control-hazard squash
// and the pending-fault bubble into the latch-control vector for this
// cycle. Only fetch and decode faults bubble MM: their slot already
// holds the bubble encoding, whereas an ebreak retires as a real
// instruction and its signals are safe by construction.
func (c *Control) PipeSignals(loadUse bool, pcSel PCSel, exExc emu.Exception) PipeSignals {
	var p PipeSignals

	if loadUse {
		p.IFStall = true
		p.IDStall = true
		p.EXBubble = true
	}

	if pcSel != PCPlus4 {
		p.IDBubble = true
		p.EXBubble = true
	}

	if exExc&(emu.ExcIMemError|emu.ExcIllegalInst) != 0 {
		p.MMBubble = true
	}

	return p
}
