// Package insts provides RV32I instruction definitions and decoding.
//
// This package implements decoding of RISC-V machine code into opcode
// identities and their static descriptors. It covers the base 32-bit
// integer subset: LUI, AUIPC, JAL, JALR, the six conditional branches,
// LW/SW, the register-immediate and register-register ALU operations,
// and EBREAK.
//
// Usage:
//
//	op := insts.Decode(0x00500093) // ADDI x1, x0, 5
//	desc := insts.Describe(op)
//	fmt.Printf("%s rd=%d imm=%d\n", desc.Mnemonic, insts.Rd(word), insts.ImmI(word))
package insts

// Op identifies a decoded RV32I instruction.
type Op uint8

// RV32I opcode identities.
const (
	OpIllegal Op = iota
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLW
	OpSW
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpEBREAK

	numOps
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatR  Format = iota // register-register ALU
	FormatI                // register-immediate ALU
	FormatIL               // load (I-type immediate)
	FormatIJ               // jalr (I-type immediate)
	FormatIS               // shift-immediate (shamt in low imm bits)
	FormatU                // upper immediate (lui, auipc)
	FormatS                // store
	FormatB                // conditional branch
	FormatJ                // jal
	FormatX                // system (ebreak)
)

// Class groups instructions for run statistics.
type Class uint8

// Instruction classes.
const (
	ClassALU  Class = iota // arithmetic/logic, including lui/auipc
	ClassMEM               // data transfer
	ClassCTRL              // control transfer
)

// String returns the reporting name of the class.
func (c Class) String() string {
	switch c {
	case ClassALU:
		return "ALU"
	case ClassMEM:
		return "data transfer"
	case ClassCTRL:
		return "control transfer"
	default:
		return "unknown"
	}
}

// Bubble is the canonical no-op encoding (xor x0, x0, x0) used to fill
// pipeline slots that must have no architectural effect.
const Bubble uint32 = 0x00004033

// Descriptor holds the static properties of an opcode.
type Descriptor struct {
	// Mnemonic is the assembly name.
	Mnemonic string

	// Pattern and Mask define the encoding match:
	// a word matches iff word & Mask == Pattern.
	Pattern uint32
	Mask    uint32

	// Format is the encoding format.
	Format Format

	// Class is the statistics class.
	Class Class
}

// Encoding masks shared by the table.
const (
	maskOpcode uint32 = 0x0000007f
	maskFunct3 uint32 = 0x0000707f
	maskFunct7 uint32 = 0xfe00707f
	maskExact  uint32 = 0xffffffff
)

// table lists every known encoding in match order. Decode scans it
// front to back and returns the first hit.
var table = []struct {
	op   Op
	desc Descriptor
}{
	{OpLUI, Descriptor{"lui", 0x00000037, maskOpcode, FormatU, ClassALU}},
	{OpAUIPC, Descriptor{"auipc", 0x00000017, maskOpcode, FormatU, ClassALU}},
	{OpJAL, Descriptor{"jal", 0x0000006f, maskOpcode, FormatJ, ClassCTRL}},
	{OpJALR, Descriptor{"jalr", 0x00000067, maskFunct3, FormatIJ, ClassCTRL}},
	{OpBEQ, Descriptor{"beq", 0x00000063, maskFunct3, FormatB, ClassCTRL}},
	{OpBNE, Descriptor{"bne", 0x00001063, maskFunct3, FormatB, ClassCTRL}},
	{OpBLT, Descriptor{"blt", 0x00004063, maskFunct3, FormatB, ClassCTRL}},
	{OpBGE, Descriptor{"bge", 0x00005063, maskFunct3, FormatB, ClassCTRL}},
	{OpBLTU, Descriptor{"bltu", 0x00006063, maskFunct3, FormatB, ClassCTRL}},
	{OpBGEU, Descriptor{"bgeu", 0x00007063, maskFunct3, FormatB, ClassCTRL}},
	{OpLW, Descriptor{"lw", 0x00002003, maskFunct3, FormatIL, ClassMEM}},
	{OpSW, Descriptor{"sw", 0x00002023, maskFunct3, FormatS, ClassMEM}},
	{OpADDI, Descriptor{"addi", 0x00000013, maskFunct3, FormatI, ClassALU}},
	{OpSLTI, Descriptor{"slti", 0x00002013, maskFunct3, FormatI, ClassALU}},
	{OpSLTIU, Descriptor{"sltiu", 0x00003013, maskFunct3, FormatI, ClassALU}},
	{OpXORI, Descriptor{"xori", 0x00004013, maskFunct3, FormatI, ClassALU}},
	{OpORI, Descriptor{"ori", 0x00006013, maskFunct3, FormatI, ClassALU}},
	{OpANDI, Descriptor{"andi", 0x00007013, maskFunct3, FormatI, ClassALU}},
	{OpSLLI, Descriptor{"slli", 0x00001013, maskFunct7, FormatIS, ClassALU}},
	{OpSRLI, Descriptor{"srli", 0x00005013, maskFunct7, FormatIS, ClassALU}},
	{OpSRAI, Descriptor{"srai", 0x40005013, maskFunct7, FormatIS, ClassALU}},
	{OpADD, Descriptor{"add", 0x00000033, maskFunct7, FormatR, ClassALU}},
	{OpSUB, Descriptor{"sub", 0x40000033, maskFunct7, FormatR, ClassALU}},
	{OpSLL, Descriptor{"sll", 0x00001033, maskFunct7, FormatR, ClassALU}},
	{OpSLT, Descriptor{"slt", 0x00002033, maskFunct7, FormatR, ClassALU}},
	{OpSLTU, Descriptor{"sltu", 0x00003033, maskFunct7, FormatR, ClassALU}},
	{OpXOR, Descriptor{"xor", 0x00004033, maskFunct7, FormatR, ClassALU}},
	{OpSRL, Descriptor{"srl", 0x00005033, maskFunct7, FormatR, ClassALU}},
	{OpSRA, Descriptor{"sra", 0x40005033, maskFunct7, FormatR, ClassALU}},
	{OpOR, Descriptor{"or", 0x00006033, maskFunct7, FormatR, ClassALU}},
	{OpAND, Descriptor{"and", 0x00007033, maskFunct7, FormatR, ClassALU}},
	{OpEBREAK, Descriptor{"ebreak", 0x00100073, maskExact, FormatX, ClassCTRL}},
}

var descriptors [numOps]Descriptor

func init() {
	descriptors[OpIllegal] = Descriptor{Mnemonic: "illegal", Format: FormatX, Class: ClassALU}
	for _, e := range table {
		descriptors[e.op] = e.desc
	}
}

// Decode matches an instruction word against the encoding table and
// returns its opcode identity, or OpIllegal if nothing matches.
func Decode(word uint32) Op {
	for _, e := range table {
		if word&e.desc.Mask == e.desc.Pattern {
			return e.op
		}
	}
	return OpIllegal
}

// Describe returns the static descriptor for an opcode.
func Describe(op Op) Descriptor {
	return descriptors[op]
}

// Mnemonic returns the assembly name of an opcode.
func (op Op) Mnemonic() string {
	return descriptors[op].Mnemonic
}
