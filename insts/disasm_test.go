package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/snurisc/insts"
)

var _ = Describe("Disassemble", func() {
	It("should render register-register instructions", func() {
		Expect(insts.Disassemble(0x002081b3)).To(MatchRegexp(`^add\s+x3, x1, x2$`))
	})

	It("should render register-immediate instructions with signed immediates", func() {
		Expect(insts.Disassemble(encodeI(-5, 2, 0x0, 1, 0x13))).
			To(MatchRegexp(`^addi\s+x1, x2, -5$`))
	})

	It("should render shifts with the shift amount only", func() {
		Expect(insts.Disassemble(encodeI(3, 2, 0x1, 1, 0x13))).
			To(MatchRegexp(`^slli\s+x1, x2, 3$`))
	})

	It("should render loads with offset(base) addressing", func() {
		Expect(insts.Disassemble(encodeI(-4, 2, 0x2, 1, 0x03))).
			To(MatchRegexp(`^lw\s+x1, -4\(x2\)$`))
	})

	It("should render stores with offset(base) addressing", func() {
		Expect(insts.Disassemble(encodeS(8, 5, 2, 0x2, 0x23))).
			To(MatchRegexp(`^sw\s+x5, 8\(x2\)$`))
	})

	It("should render branches with a signed byte offset", func() {
		Expect(insts.Disassemble(encodeB(-8, 2, 1, 0x1))).
			To(MatchRegexp(`^bne\s+x1, x2, -8$`))
	})

	It("should render upper immediates in hex", func() {
		Expect(insts.Disassemble(encodeU(0x80010, 1, 0x37))).
			To(MatchRegexp(`^lui\s+x1, 0x80010$`))
	})

	It("should render jal with a signed byte offset", func() {
		Expect(insts.Disassemble(encodeJ(-16, 1))).
			To(MatchRegexp(`^jal\s+x1, -16$`))
	})

	It("should render ebreak bare", func() {
		Expect(insts.Disassemble(0x00100073)).To(Equal("ebreak"))
	})

	It("should render unknown encodings with the raw word", func() {
		Expect(insts.Disassemble(0xffffffff)).To(Equal("unknown(0xffffffff)"))
	})
})
