// Package insts provides RV32I instruction definitions and decoding.
package insts

import "fmt"

// Disassemble renders an instruction word as assembly text. Unknown
// encodings render as the raw word so trace output stays readable.
func Disassemble(word uint32) string {
	op := Decode(word)
	if op == OpIllegal {
		return fmt.Sprintf("unknown(0x%08x)", word)
	}

	desc := Describe(op)
	rd := Rd(word)
	rs1 := Rs1(word)
	rs2 := Rs2(word)

	switch desc.Format {
	case FormatR:
		return fmt.Sprintf("%-8s x%d, x%d, x%d", desc.Mnemonic, rd, rs1, rs2)
	case FormatI:
		return fmt.Sprintf("%-8s x%d, x%d, %d", desc.Mnemonic, rd, rs1, int32(ImmI(word)))
	case FormatIS:
		return fmt.Sprintf("%-8s x%d, x%d, %d", desc.Mnemonic, rd, rs1, ImmI(word)&0x1f)
	case FormatIL:
		return fmt.Sprintf("%-8s x%d, %d(x%d)", desc.Mnemonic, rd, int32(ImmI(word)), rs1)
	case FormatIJ:
		return fmt.Sprintf("%-8s x%d, x%d, %d", desc.Mnemonic, rd, rs1, int32(ImmI(word)))
	case FormatS:
		return fmt.Sprintf("%-8s x%d, %d(x%d)", desc.Mnemonic, rs2, int32(ImmS(word)), rs1)
	case FormatB:
		return fmt.Sprintf("%-8s x%d, x%d, %d", desc.Mnemonic, rs1, rs2, int32(ImmB(word)))
	case FormatU:
		return fmt.Sprintf("%-8s x%d, 0x%x", desc.Mnemonic, rd, ImmU(word)>>12)
	case FormatJ:
		return fmt.Sprintf("%-8s x%d, %d", desc.Mnemonic, rd, int32(ImmJ(word)))
	default:
		return desc.Mnemonic
	}
}
