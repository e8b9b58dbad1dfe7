// Package main provides the entry point for snurisc.
// snurisc is a cycle-accurate 5-stage pipelined RV32I simulator.
package main

import (
	"fmt"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/sarchlab/snurisc/emu"
	"github.com/sarchlab/snurisc/loader"
	"github.com/sarchlab/snurisc/timing/pipeline"
)

func main() {
	optLog := getopt.IntLong("log", 'l', 1, "log verbosity (0-7)")
	optCycle := getopt.IntLong("cycle", 'c', 0, "suppress trace output for cycles below M")
	optStep := getopt.BoolLong("single-step", 's', "run the unpipelined single-step engine")
	optHelp := getopt.BoolLong("help", 'h', "show usage")
	getopt.SetParameters("<filename>")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}
	if getopt.NArgs() != 1 {
		getopt.Usage()
		os.Exit(1)
	}
	if *optLog < pipeline.TraceSilent || *optLog > pipeline.TraceMemEach {
		fmt.Fprintf(os.Stderr, "snurisc: log verbosity %d out of range 0-7\n", *optLog)
		os.Exit(1)
	}
	if *optCycle < 0 {
		fmt.Fprintf(os.Stderr, "snurisc: cycle threshold must not be negative\n")
		os.Exit(1)
	}

	path := getopt.Arg(0)
	prog, err := loader.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "snurisc: %v\n", err)
		os.Exit(1)
	}

	imem := emu.NewIMem()
	dmem := emu.NewDMem()
	if err := placeSegments(prog, imem, dmem); err != nil {
		fmt.Fprintf(os.Stderr, "snurisc: %v\n", err)
		os.Exit(1)
	}

	if *optStep {
		runSingleStep(prog, imem, dmem, *optLog)
		return
	}
	runPipeline(prog, imem, dmem, *optLog, uint64(*optCycle))
}

// placeSegments writes each loadable segment word-by-word into
// whichever memory contains its address range, zero-filling memsz
// beyond filesz.
func placeSegments(prog *loader.Program, imem, dmem *emu.Memory) error {
	for _, seg := range prog.Segments {
		mem := imem
		if !mem.Contains(seg.VirtAddr) {
			mem = dmem
		}

		data := seg.Data
		if uint32(len(data)) < seg.MemSize {
			padded := make([]byte, seg.MemSize)
			copy(padded, data)
			data = padded
		}
		if !mem.LoadBytes(seg.VirtAddr, data) {
			return fmt.Errorf("segment at 0x%08x does not fit the memory map", seg.VirtAddr)
		}
	}
	return nil
}

// runPipeline executes the program on the cycle-accurate engine and
// prints the configured reports.
func runPipeline(prog *loader.Program, imem, dmem *emu.Memory, level int, startCycle uint64) {
	regFile := emu.NewRegFile()
	tracer := pipeline.NewTracer(os.Stdout, level, startCycle)

	pipe := pipeline.NewPipeline(regFile, imem, dmem,
		pipeline.WithTracer(tracer))
	pipe.SetPC(prog.EntryPoint)

	exc := pipe.Run()
	excPC := prog.EntryPoint
	if exc != emu.ExcNone {
		_, excPC = pipe.Exception()
	}

	report(regFile, dmem, pipe.Stats(), exc, excPC, level)
}

// runSingleStep executes the program on the functional reference
// engine instead of the pipeline.
func runSingleStep(prog *loader.Program, imem, dmem *emu.Memory, level int) {
	regFile := emu.NewRegFile()

	opts := []emu.EmulatorOption{}
	if level >= pipeline.TraceRetire {
		opts = append(opts, emu.WithTrace())
	}
	e := emu.NewEmulator(regFile, imem, dmem, opts...)
	e.SetPC(prog.EntryPoint)

	exc := e.Run()
	report(regFile, dmem, e.Stats(), exc, e.PC(), level)
}

// report prints the end-of-run state dumps and statistics.
func report(regFile *emu.RegFile, dmem *emu.Memory, stats emu.Stats, exc emu.Exception, excPC uint32, level int) {
	if exc != emu.ExcNone {
		fmt.Printf("%s at PC=0x%08x\n", exc.Message(), excPC)
	}

	if level >= pipeline.TraceRegs {
		regFile.Dump(os.Stdout)
	}
	if level >= pipeline.TraceMem {
		dmem.Dump(os.Stdout)
	}

	stats.Report(os.Stdout)
}
