package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/snurisc/emu"
	"github.com/sarchlab/snurisc/insts"
)

var _ = Describe("Emulator", func() {
	var (
		rf   *emu.RegFile
		imem *emu.Memory
		dmem *emu.Memory
		e    *emu.Emulator
	)

	load := func(words ...uint32) {
		for i, w := range words {
			Expect(imem.WriteWord(emu.IMemBase+uint32(i)*4, w)).To(BeTrue())
		}
		e.SetPC(emu.IMemBase)
	}

	BeforeEach(func() {
		rf = emu.NewRegFile()
		imem = emu.NewIMem()
		dmem = emu.NewDMem()
		e = emu.NewEmulator(rf, imem, dmem)
	})

	Describe("Step", func() {
		It("should execute an ALU immediate instruction and advance the PC", func() {
			load(addi(1, 0, 5))

			res := e.Step()

			Expect(res.Exception).To(Equal(emu.ExcNone))
			Expect(rf.Read(1)).To(Equal(uint32(5)))
			Expect(e.PC()).To(Equal(emu.IMemBase + 4))
		})

		It("should execute lui and auipc", func() {
			load(lui(1, 0x80010), auipc(2, 0x1))

			e.Step()
			e.Step()

			Expect(rf.Read(1)).To(Equal(uint32(0x80010000)))
			Expect(rf.Read(2)).To(Equal(emu.IMemBase + 4 + 0x1000))
		})

		It("should raise an IMEM error outside instruction memory", func() {
			e.SetPC(0x1000)
			Expect(e.Step().Exception).To(Equal(emu.ExcIMemError))
		})

		It("should raise an illegal-instruction fault on an unknown word", func() {
			load(0xffffffff)
			Expect(e.Step().Exception).To(Equal(emu.ExcIllegalInst))
		})
	})

	Describe("Run", func() {
		It("should run a straight-line program to the ebreak", func() {
			load(
				addi(1, 0, 5),
				addi(2, 0, 7),
				add(3, 1, 2),
				ebreak,
			)

			exc := e.Run()

			Expect(exc).To(Equal(emu.ExcEbreak))
			Expect(rf.Read(1)).To(Equal(uint32(5)))
			Expect(rf.Read(2)).To(Equal(uint32(7)))
			Expect(rf.Read(3)).To(Equal(uint32(12)))
		})

		It("should store to and load from data memory", func() {
			load(
				lui(1, 0x80010),
				addi(2, 0, 123),
				sw(2, 1, 8),
				lw(3, 1, 8),
				ebreak,
			)

			Expect(e.Run()).To(Equal(emu.ExcEbreak))

			Expect(rf.Read(3)).To(Equal(uint32(123)))
			v, _ := dmem.ReadWord(0x80010008)
			Expect(v).To(Equal(uint32(123)))
		})

		It("should take a backward branch until the counter expires", func() {
			// x1 counts down from 3; x2 accumulates iterations.
			load(
				addi(1, 0, 3),
				addi(2, 0, 0),
				addi(2, 2, 1), // loop:
				addi(1, 1, -1),
				bne(1, 0, -8), // to loop
				ebreak,
			)

			Expect(e.Run()).To(Equal(emu.ExcEbreak))
			Expect(rf.Read(2)).To(Equal(uint32(3)))
		})

		It("should take blt on signed operands", func() {
			load(
				addi(1, 0, -1),
				blt(1, 0, 8), // taken: -1 < 0
				addi(2, 0, 99),
				ebreak,
			)

			Expect(e.Run()).To(Equal(emu.ExcEbreak))
			Expect(rf.Read(2)).To(Equal(uint32(0)))
		})

		It("should link and return through jal/jalr", func() {
			load(
				jal(1, 8),     // to f, x1 = base+4
				ebreak,        // return lands here
				addi(2, 0, 3), // f:
				jalr(0, 1, 0), // back to the ebreak
			)

			Expect(e.Run()).To(Equal(emu.ExcEbreak))
			Expect(rf.Read(1)).To(Equal(emu.IMemBase + 4))
			Expect(rf.Read(2)).To(Equal(uint32(3)))
		})

		It("should raise a DMEM error for an address outside data memory", func() {
			load(
				addi(1, 0, 7),
				lw(1, 0, 0), // address 0
				ebreak,
			)

			Expect(e.Run()).To(Equal(emu.ExcDMemError))
			Expect(rf.Read(1)).To(Equal(uint32(7)))
		})

		It("should count instructions and classes", func() {
			load(
				addi(1, 0, 5),
				lui(2, 0x80010),
				sw(1, 2, 0),
				ebreak,
			)

			e.Run()

			stats := e.Stats()
			Expect(stats.Instructions).To(Equal(uint64(4)))
			Expect(stats.Cycles).To(Equal(uint64(4)))
			Expect(stats.Classes[insts.ClassALU]).To(Equal(uint64(2)))
			Expect(stats.Classes[insts.ClassMEM]).To(Equal(uint64(1)))
			Expect(stats.Classes[insts.ClassCTRL]).To(Equal(uint64(1)))
			Expect(stats.CPI()).To(BeNumerically("==", 1))
		})

		It("should honor the instruction cap", func() {
			rf2 := emu.NewRegFile()
			e2 := emu.NewEmulator(rf2, imem, dmem, emu.WithMaxInstructions(2))
			for i := uint32(0); i < 8; i++ {
				imem.WriteWord(emu.IMemBase+i*4, addi(1, 1, 1))
			}
			e2.SetPC(emu.IMemBase)

			Expect(e2.Run()).To(Equal(emu.ExcNone))
			Expect(rf2.Read(1)).To(Equal(uint32(2)))
		})
	})
})
