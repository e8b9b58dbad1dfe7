package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/snurisc/emu"
)

var _ = Describe("ALU", func() {
	It("should add with wrap-around", func() {
		Expect(emu.ALU(emu.ALUAdd, 3, 4)).To(Equal(uint32(7)))
		Expect(emu.ALU(emu.ALUAdd, 0xffffffff, 1)).To(Equal(uint32(0)))
	})

	It("should subtract with wrap-around", func() {
		Expect(emu.ALU(emu.ALUSub, 10, 3)).To(Equal(uint32(7)))
		Expect(emu.ALU(emu.ALUSub, 0, 1)).To(Equal(uint32(0xffffffff)))
	})

	It("should compute bitwise operations", func() {
		Expect(emu.ALU(emu.ALUAnd, 0xff00ff00, 0x0ff00ff0)).To(Equal(uint32(0x0f000f00)))
		Expect(emu.ALU(emu.ALUOr, 0xff00ff00, 0x0ff00ff0)).To(Equal(uint32(0xfff0fff0)))
		Expect(emu.ALU(emu.ALUXor, 0xff00ff00, 0x0ff00ff0)).To(Equal(uint32(0xf0f0f0f0)))
	})

	Describe("comparisons", func() {
		It("should compare signed for SLT", func() {
			Expect(emu.ALU(emu.ALUSlt, 0xffffffff, 0)).To(Equal(uint32(1))) // -1 < 0
			Expect(emu.ALU(emu.ALUSlt, 0, 0xffffffff)).To(Equal(uint32(0)))
			Expect(emu.ALU(emu.ALUSlt, 3, 3)).To(Equal(uint32(0)))
		})

		It("should compare unsigned for SLTU", func() {
			Expect(emu.ALU(emu.ALUSltu, 0xffffffff, 0)).To(Equal(uint32(0)))
			Expect(emu.ALU(emu.ALUSltu, 0, 0xffffffff)).To(Equal(uint32(1)))
		})

		It("should report equality for SEQ", func() {
			Expect(emu.ALU(emu.ALUSeq, 42, 42)).To(Equal(uint32(1)))
			Expect(emu.ALU(emu.ALUSeq, 42, 43)).To(Equal(uint32(0)))
		})
	})

	Describe("shifts", func() {
		It("should shift left", func() {
			Expect(emu.ALU(emu.ALUSll, 1, 4)).To(Equal(uint32(16)))
		})

		It("should shift right logically", func() {
			Expect(emu.ALU(emu.ALUSrl, 0x80000000, 4)).To(Equal(uint32(0x08000000)))
		})

		It("should shift right arithmetically", func() {
			Expect(emu.ALU(emu.ALUSra, 0x80000000, 4)).To(Equal(uint32(0xf8000000)))
			Expect(emu.ALU(emu.ALUSra, 0x40000000, 4)).To(Equal(uint32(0x04000000)))
		})

		It("should use only the low five bits of the shift amount", func() {
			Expect(emu.ALU(emu.ALUSll, 1, 33)).To(Equal(uint32(2)))
			Expect(emu.ALU(emu.ALUSrl, 4, 0x21)).To(Equal(uint32(2)))
		})
	})

	It("should pass operands through for COPY1 and COPY2", func() {
		Expect(emu.ALU(emu.ALUCopy1, 11, 22)).To(Equal(uint32(11)))
		Expect(emu.ALU(emu.ALUCopy2, 11, 22)).To(Equal(uint32(22)))
	})

	It("should produce zero for the no-op function", func() {
		Expect(emu.ALU(emu.ALUX, 11, 22)).To(Equal(uint32(0)))
	})
})
