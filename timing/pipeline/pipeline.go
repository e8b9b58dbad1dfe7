// Package pipeline provides the cycle-accurate 5-stage RV32I pipeline model.
//
// The pipeline implements the classic 5-stage design:
//   - Fetch (IF): read instruction memory at the PC latch
//   - Decode (ID): decode, read registers, resolve forwarding
//   - Execute (EX): ALU, branch/jump targets, branch decision
//   - Memory (MM): data-memory access
//   - Writeback (WB): register-file write and retirement
//
// Every cycle runs in two phases. The combinational phase evaluates
// the stages in reverse order (WB first) so that each stage reads the
// previous cycle's latches, while EX's outputs of this cycle are
// visible to ID (forwarding) and IF (next-PC selection). The commit
// phase then swaps every latch to its next-cycle value at once. Data
// hazards resolve by forwarding with priority EX, MM, WB; a load
// followed by a dependent instruction stalls one cycle; branches
// predict not-taken and squash the two younger stages when taken.
package pipeline

import (
	"fmt"

	"github.com/sarchlab/snurisc/emu"
	"github.com/sarchlab/snurisc/insts"
)

// Pipeline is the 5-stage cycle-accurate engine. It owns the pipeline
// latches and the architectural state references.
type Pipeline struct {
	// Pipeline stages.
	fetchStage     *FetchStage
	decodeStage    *DecodeStage
	executeStage   *ExecuteStage
	memoryStage    *MemoryStage
	writebackStage *WritebackStage

	// Control and hazard unit.
	ctl *Control

	// Processor state.
	regFile *emu.RegFile
	dmem    *emu.Memory

	// pc is the IF self latch holding the next fetch address.
	pc uint32

	// Current and next-cycle pipeline registers.
	cur  latches
	next latches

	// Execution state.
	stats     emu.Stats
	halted    bool
	exception emu.Exception
	excPC     uint32

	tracer    *Tracer
	maxCycles uint64
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithTracer sets the execution tracer.
func WithTracer(t *Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = t
	}
}

// WithMaxCycles caps the number of cycles Run simulates. A value of 0
// means no limit.
func WithMaxCycles(n uint64) Option {
	return func(p *Pipeline) {
		p.maxCycles = n
	}
}

// NewPipeline creates a pipeline over the given register file and
// instruction/data memories. All latches come up holding bubbles.
func NewPipeline(regFile *emu.RegFile, imem, dmem *emu.Memory, opts ...Option) *Pipeline {
	ctl := NewControl()
	p := &Pipeline{
		fetchStage:     NewFetchStage(imem),
		decodeStage:    NewDecodeStage(regFile, ctl),
		executeStage:   NewExecuteStage(),
		memoryStage:    NewMemoryStage(dmem),
		writebackStage: NewWritebackStage(regFile),
		ctl:            ctl,
		regFile:        regFile,
		dmem:           dmem,
	}
	p.cur.reset()
	p.next.reset()

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetPC sets the fetch PC latch (entry point).
func (p *Pipeline) SetPC(pc uint32) {
	p.pc = pc
}

// PC returns the current fetch PC latch.
func (p *Pipeline) PC() uint32 {
	return p.pc
}

// Halted reports whether an exception has reached writeback.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Exception returns the exception that terminated the run, and the PC
// of the instruction that raised it.
func (p *Pipeline) Exception() (emu.Exception, uint32) {
	return p.exception, p.excPC
}

// Stats returns the retirement statistics so far.
func (p *Pipeline) Stats() emu.Stats {
	return p.stats
}

// IFID returns the current IF/ID latch for inspection.
func (p *Pipeline) IFID() IFIDRegister { return p.cur.ifid }

// IDEX returns the current ID/EX latch for inspection.
func (p *Pipeline) IDEX() IDEXRegister { return p.cur.idex }

// EXMM returns the current EX/MM latch for inspection.
func (p *Pipeline) EXMM() EXMMRegister { return p.cur.exmm }

// MMWB returns the current MM/WB latch for inspection.
func (p *Pipeline) MMWB() MMWBRegister { return p.cur.mmwb }

// Tick advances the pipeline by one cycle.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}

	p.stats.Cycles++
	cycle := p.stats.Cycles

	// Combinational phase, reverse order: every stage sees the
	// previous cycle's latches; EX's outputs are ready before ID and
	// IF consume them.
	p.doWriteback(cycle)
	mem := p.doMemory(cycle)
	ex := p.doExecute(cycle)
	pcSel := p.ctl.PCSel(p.cur.idex.BrType, ex.Cmp)
	pipe := p.doDecode(cycle, ex, mem, pcSel)
	fetch := p.doFetch(cycle)

	// Commit phase, forward order: latch the next-cycle state.
	p.commitFetch(fetch, pcSel, ex, pipe)
	p.commitDecode(pipe)
	p.commitExecute(ex, pipe)
	p.cur = p.next

	p.tracer.Dump(TraceRegsEach, cycle, p.regFile.Dump)
	p.tracer.Dump(TraceMemEach, cycle, p.dmem.Dump)
}

// doWriteback retires the MM/WB instruction: register write, counters
// and termination.
func (p *Pipeline) doWriteback(cycle uint64) {
	r := &p.cur.mmwb

	p.writebackStage.Writeback(r)

	if r.Inst != insts.Bubble {
		p.stats.Count(insts.Describe(insts.Decode(r.Inst)).Class)
		info := fmt.Sprintf("rd=%d, wbdata=0x%08x", r.Rd, r.WBData)
		if !r.RegWrite {
			info = "no writeback"
		}
		p.tracer.Stage(cycle, "WB", r.PC, r.Inst, info)
		p.tracer.Retire(cycle, r.PC, r.Inst, info)
	}

	if r.Exc != emu.ExcNone {
		p.halted = true
		p.exception = r.Exc
		p.excPC = r.PC
	}
}

// doMemory performs the data-memory access and builds the next MM/WB
// latch.
func (p *Pipeline) doMemory(cycle uint64) MemResult {
	r := &p.cur.exmm
	res := p.memoryStage.Access(r)

	p.next.mmwb = MMWBRegister{
		PC:       r.PC,
		Inst:     r.Inst,
		Exc:      res.Exc,
		Rd:       r.Rd,
		RegWrite: res.RegWrite,
		WBData:   res.WBData,
	}

	if r.Inst != insts.Bubble {
		p.tracer.Stage(cycle, "MM", r.PC, r.Inst,
			fmt.Sprintf("wbdata=0x%08x", res.WBData))
	}
	return res
}

// doExecute runs the ALU and target computation for the ID/EX latch.
func (p *Pipeline) doExecute(cycle uint64) ExecResult {
	r := &p.cur.idex
	res := p.executeStage.Execute(r)

	if r.Inst != insts.Bubble {
		info := fmt.Sprintf("alu=0x%08x", res.ALUOut)
		if p.tracer.Enabled(TraceDetail, cycle) {
			info = fmt.Sprintf("alu=0x%08x, brjmp=0x%08x, jalr=0x%08x",
				res.ALUOut, res.BrJmpTarget, res.JumpRegTarget)
		}
		p.tracer.Stage(cycle, "EX", r.PC, r.Inst, info)
	}
	return res
}

// doDecode decodes the IF/ID instruction, resolves forwarding and
// computes the stall/squash decision for this cycle. The next ID/EX
// latch is fully built here; commitDecode applies the bubble rules.
func (p *Pipeline) doDecode(cycle uint64, ex ExecResult, mem MemResult, pcSel PCSel) PipeSignals {
	r := &p.cur.ifid
	d := p.decodeStage.Decode(r.Inst)

	fwd1 := p.ctl.Forward(d.Sig.Rs1Used, d.Rs1, &p.cur.idex, &p.cur.exmm, &p.cur.mmwb)
	fwd2 := p.ctl.Forward(d.Sig.Rs2Used, d.Rs2, &p.cur.idex, &p.cur.exmm, &p.cur.mmwb)

	forwarded := func(sel FwdSel, raw uint32) uint32 {
		switch sel {
		case FwdEX:
			return ex.ALUOut
		case FwdMM:
			return mem.WBData
		case FwdWB:
			return p.cur.mmwb.WBData
		default:
			return raw
		}
	}

	op1 := forwarded(fwd1, d.Rs1Val)
	if d.Sig.Op1Sel == Op1PC {
		op1 = r.PC
	}

	rs2 := forwarded(fwd2, d.Rs2Val)
	op2 := d.Imm
	if d.Sig.Op2Sel == Op2RS2 {
		op2 = rs2
	}

	loadUse := p.ctl.LoadUseHazard(d.Sig, d.Rs1, d.Rs2, &p.cur.idex)
	pipe := p.ctl.PipeSignals(loadUse, pcSel, p.cur.idex.Exc)

	p.next.idex = IDEXRegister{
		PC:       r.PC,
		Inst:     d.Inst,
		Exc:      r.Exc | d.Exc,
		Rd:       d.Rd,
		Op1Data:  op1,
		Op2Data:  op2,
		Rs2Data:  rs2,
		PCPlus4:  r.PCPlus4,
		BrType:   d.Sig.BrType,
		ALUFun:   d.Sig.ALUFun,
		WBSel:    d.Sig.WBSel,
		RegWrite: d.Sig.RegWrite,
		MemEn:    d.Sig.MemEn,
		MemOp:    d.Sig.MemOp,
	}

	if r.Inst != insts.Bubble {
		info := fmt.Sprintf("op1=0x%08x, op2=0x%08x", op1, op2)
		if p.tracer.Enabled(TraceDetail, cycle) {
			info = fmt.Sprintf("op1=0x%08x, op2=0x%08x, rs2=0x%08x, fwd1=%d, fwd2=%d",
				op1, op2, rs2, fwd1, fwd2)
		}
		p.tracer.Stage(cycle, "ID", r.PC, r.Inst, info)
	}
	return pipe
}

// doFetch reads instruction memory at the PC latch.
func (p *Pipeline) doFetch(cycle uint64) FetchResult {
	res := p.fetchStage.Fetch(p.pc)

	if res.Inst != insts.Bubble {
		p.tracer.Stage(cycle, "IF", p.pc, res.Inst,
			fmt.Sprintf("inst=0x%08x", res.Inst))
	}
	return res
}

// commitFetch latches the PC register and the IF/ID latch under the
// stall and squash rules.
func (p *Pipeline) commitFetch(fetch FetchResult, pcSel PCSel, ex ExecResult, pipe PipeSignals) {
	if pipe.IDBubble && pipe.IDStall {
		panic("pipeline: ID_bubble and ID_stall asserted together")
	}

	if !pipe.IFStall {
		switch pcSel {
		case PCBrJmp:
			p.pc = ex.BrJmpTarget
		case PCJalr:
			p.pc = ex.JumpRegTarget
		default:
			p.pc = fetch.PCPlus4
		}
	}

	switch {
	case pipe.IDBubble:
		p.next.ifid.Bubble(fetch.PC)
	case !pipe.IDStall:
		p.next.ifid = IFIDRegister{
			PC:      fetch.PC,
			Inst:    fetch.Inst,
			Exc:     fetch.Exc,
			PCPlus4: fetch.PCPlus4,
		}
	default:
		p.next.ifid = p.cur.ifid
	}
}

// commitDecode applies the EX-bubble rule to the already-built next
// ID/EX latch.
func (p *Pipeline) commitDecode(pipe PipeSignals) {
	if pipe.EXBubble {
		p.next.idex.Bubble(p.cur.ifid.PC)
	}
}

// commitExecute latches the EX/MM register, bubbling side effects but
// never a pending exception.
func (p *Pipeline) commitExecute(ex ExecResult, pipe PipeSignals) {
	r := &p.cur.idex

	if pipe.MMBubble {
		p.next.exmm.Bubble(r.PC, r.Exc)
		return
	}

	p.next.exmm = EXMMRegister{
		PC:       r.PC,
		Inst:     r.Inst,
		Exc:      r.Exc,
		Rd:       r.Rd,
		ALUOut:   ex.ALUOut,
		Rs2Data:  r.Rs2Data,
		RegWrite: r.RegWrite,
		WBSel:    r.WBSel,
		MemEn:    r.MemEn,
		MemOp:    r.MemOp,
	}
}

// Run simulates until an exception reaches writeback, and returns it.
// With a cycle cap set, Run may also return ExcNone once the cap is
// hit.
func (p *Pipeline) Run() emu.Exception {
	for !p.halted {
		if p.maxCycles > 0 && p.stats.Cycles >= p.maxCycles {
			return emu.ExcNone
		}
		p.Tick()
	}
	return p.exception
}
