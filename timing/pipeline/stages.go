// Package pipeline provides the cycle-accurate 5-stage RV32I pipeline model.
package pipeline

import (
	"github.com/sarchlab/snurisc/emu"
	"github.com/sarchlab/snurisc/insts"
)

// FetchStage reads instruction words from instruction memory.
type FetchStage struct {
	imem *emu.Memory
}

// NewFetchStage creates a fetch stage over the given instruction memory.
func NewFetchStage(imem *emu.Memory) *FetchStage {
	return &FetchStage{imem: imem}
}

// FetchResult holds the combinational outputs of the fetch stage.
type FetchResult struct {
	// PC is the address the fetch used.
	PC uint32

	// Inst is the fetched word, or Bubble after a fetch fault.
	Inst uint32

	// Exc is ExcIMemError when the fetch faulted.
	Exc emu.Exception

	// PCPlus4 is the speculative fall-through address.
	PCPlus4 uint32
}

// Fetch reads the instruction at pc.
func (s *FetchStage) Fetch(pc uint32) FetchResult {
	res := FetchResult{PC: pc, PCPlus4: pc + 4}

	word, ok := s.imem.Access(true, pc, 0, emu.MemRead)
	if !ok {
		res.Inst = insts.Bubble
		res.Exc = emu.ExcIMemError
		return res
	}
	res.Inst = word
	return res
}

// DecodeStage decodes the fetched word, reads the register file and
// generates the control vector via the control unit.
type DecodeStage struct {
	regFile *emu.RegFile
	ctl     *Control
}

// NewDecodeStage creates a decode stage.
func NewDecodeStage(regFile *emu.RegFile, ctl *Control) *DecodeStage {
	return &DecodeStage{regFile: regFile, ctl: ctl}
}

// DecodeResult holds the combinational outputs of the decode stage
// before forwarding is applied.
type DecodeResult struct {
	// Inst is the local view of the instruction; an illegal encoding
	// is replaced by Bubble so nothing propagates but the exception.
	Inst uint32

	// Exc carries ExcIllegalInst or ExcEbreak when raised in decode.
	Exc emu.Exception

	// Sig is the control vector.
	Sig Signals

	// Register fields of the (local view) instruction.
	Rs1, Rs2, Rd uint8

	// Raw register-file reads.
	Rs1Val, Rs2Val uint32

	// Imm is the immediate selected by Sig.Op2Sel, if any.
	Imm uint32
}

// Decode decodes one instruction word. The control unit classifies
// illegal encodings; their local view becomes a bubble with the
// exception attached, so nothing propagates downstream but the fault.
// The bubble encoding itself decodes to fully safe signals, keeping
// squashed slots free of write enables.
func (s *DecodeStage) Decode(word uint32) DecodeResult {
	res := DecodeResult{Inst: word}

	sig := safeSignals
	switch op := insts.Decode(word); {
	case word == insts.Bubble:
		// a squashed or stalled slot, no effects
	case op == insts.OpIllegal:
		res.Inst = insts.Bubble
		res.Exc = emu.ExcIllegalInst
		word = insts.Bubble
	case op == insts.OpEBREAK:
		res.Exc = emu.ExcEbreak
	default:
		sig, _ = s.ctl.Signals(op)
	}
	res.Sig = sig

	res.Rs1 = insts.Rs1(word)
	res.Rs2 = insts.Rs2(word)
	res.Rd = insts.Rd(word)
	res.Rs1Val = s.regFile.Read(res.Rs1)
	res.Rs2Val = s.regFile.Read(res.Rs2)

	switch sig.Op2Sel {
	case Op2ImmI:
		res.Imm = insts.ImmI(word)
	case Op2ImmS:
		res.Imm = insts.ImmS(word)
	case Op2ImmB:
		res.Imm = insts.ImmB(word)
	case Op2ImmU:
		res.Imm = insts.ImmU(word)
	case Op2ImmJ:
		res.Imm = insts.ImmJ(word)
	}

	return res
}

// ExecuteStage runs the ALU and computes control-transfer targets.
type ExecuteStage struct{}

// NewExecuteStage creates an execute stage.
func NewExecuteStage() *ExecuteStage {
	return &ExecuteStage{}
}

// ExecResult holds the combinational outputs of the execute stage.
type ExecResult struct {
	// ALUOut is the stage result: the raw ALU output, or pc+4 when
	// the instruction writes its return address.
	ALUOut uint32

	// Cmp is the raw ALU output, used for the branch-taken decision.
	Cmp uint32

	// BrJmpTarget is pc + offset, the branch/jal target.
	BrJmpTarget uint32

	// JumpRegTarget is the jalr target with the low bit cleared.
	JumpRegTarget uint32
}

// Execute computes the ALU function over the latched operands. Branch
// compares read the raw rs2 value because op2 holds the branch offset.
func (s *ExecuteStage) Execute(r *IDEXRegister) ExecResult {
	op2 := r.Op2Data
	switch r.BrType {
	case BrNE, BrEQ, BrGE, BrGEU, BrLT, BrLTU:
		op2 = r.Rs2Data
	}

	alu := emu.ALU(r.ALUFun, r.Op1Data, op2)

	res := ExecResult{
		ALUOut:        alu,
		Cmp:           alu,
		BrJmpTarget:   r.PC + r.Op2Data,
		JumpRegTarget: alu &^ 1,
	}
	if r.WBSel == WBPC4 {
		res.ALUOut = r.PCPlus4
	}
	return res
}

// MemoryStage accesses data memory for loads and stores.
type MemoryStage struct {
	dmem *emu.Memory
}

// NewMemoryStage creates a memory stage over the given data memory.
func NewMemoryStage(dmem *emu.Memory) *MemoryStage {
	return &MemoryStage{dmem: dmem}
}

// MemResult holds the combinational outputs of the memory stage.
type MemResult struct {
	// WBData is the value headed for writeback.
	WBData uint32

	// Exc has ExcDMemError ORed in when the access faulted.
	Exc emu.Exception

	// RegWrite is the (possibly cancelled) write enable.
	RegWrite bool
}

// Access performs the data-memory operation for the latched
// instruction. A fault cancels the register write so the faulting
// instruction retires without architectural effect.
func (s *MemoryStage) Access(r *EXMMRegister) MemResult {
	res := MemResult{Exc: r.Exc, RegWrite: r.RegWrite}

	data, ok := s.dmem.Access(r.MemEn, r.ALUOut, r.Rs2Data, r.MemOp)
	if !ok {
		res.Exc |= emu.ExcDMemError
		res.RegWrite = false
	}

	if r.WBSel == WBMem {
		res.WBData = data
	} else {
		res.WBData = r.ALUOut
	}
	return res
}

// WritebackStage writes results to the register file and retires
// instructions.
type WritebackStage struct {
	regFile *emu.RegFile
}

// NewWritebackStage creates a writeback stage.
func NewWritebackStage(regFile *emu.RegFile) *WritebackStage {
	return &WritebackStage{regFile: regFile}
}

// Writeback commits the latched result. It reports whether a register
// write happened.
func (s *WritebackStage) Writeback(r *MMWBRegister) bool {
	if !r.RegWrite {
		return false
	}
	s.regFile.Write(r.Rd, r.WBData)
	return true
}
