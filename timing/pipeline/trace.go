// Package pipeline provides the cycle-accurate 5-stage RV32I pipeline model.
package pipeline

import (
	"fmt"
	"io"

	"github.com/sarchlab/snurisc/insts"
)

// Trace verbosity levels. Each level includes everything below it.
const (
	TraceSilent   = 0 // no output
	TraceRegs     = 1 // register dump at end of run
	TraceMem      = 2 // plus data-memory dump at end of run
	TraceRetire   = 3 // plus one line per retired instruction
	TraceStages   = 4 // plus one line per stage per cycle
	TraceDetail   = 5 // plus ALU and forwarding detail
	TraceRegsEach = 6 // plus register dump every cycle
	TraceMemEach  = 7 // plus data-memory dump every cycle
)

// Tracer renders execution traces at a configured verbosity. Output
// for cycles below the start cycle is suppressed.
type Tracer struct {
	w     io.Writer
	level int
	start uint64
}

// NewTracer creates a tracer writing to w at the given level. Cycles
// below start produce no output.
func NewTracer(w io.Writer, level int, start uint64) *Tracer {
	return &Tracer{w: w, level: level, start: start}
}

// Level returns the configured verbosity.
func (t *Tracer) Level() int {
	if t == nil {
		return TraceSilent
	}
	return t.level
}

// Enabled reports whether output at the given level should appear for
// the given cycle.
func (t *Tracer) Enabled(level int, cycle uint64) bool {
	return t != nil && t.level >= level && cycle >= t.start
}

// Stage emits one per-stage trace line:
// <cycle> [<stage>] 0x<pc>: <disassembly>   # <info>
func (t *Tracer) Stage(cycle uint64, stage string, pc, inst uint32, info string) {
	if !t.Enabled(TraceStages, cycle) {
		return
	}
	t.line(cycle, stage, pc, inst, info)
}

// Retire emits the writeback line for a retired instruction at the
// retire-trace level. At the per-stage level the WB stage line already
// covers it.
func (t *Tracer) Retire(cycle uint64, pc, inst uint32, info string) {
	if !t.Enabled(TraceRetire, cycle) || t.Enabled(TraceStages, cycle) {
		return
	}
	t.line(cycle, "WB", pc, inst, info)
}

func (t *Tracer) line(cycle uint64, stage string, pc, inst uint32, info string) {
	fmt.Fprintf(t.w, "%4d [%s] 0x%08x: %-28s # %s\n",
		cycle, stage, pc, insts.Disassemble(inst), info)
}

// Dump runs f against the trace writer when level is enabled for the
// cycle. It is used for the per-cycle register and memory dumps.
func (t *Tracer) Dump(level int, cycle uint64, f func(io.Writer)) {
	if !t.Enabled(level, cycle) {
		return
	}
	f(t.w)
}
