package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/snurisc/loader"
)

// elfSpec describes a synthetic ELF image for tests.
type elfSpec struct {
	class    byte   // 1 = 32-bit, 2 = 64-bit
	data     byte   // 1 = little-endian, 2 = big-endian
	etype    uint16 // 2 = ET_EXEC
	machine  uint16 // 243 = EM_RISCV
	entry    uint32
	segments []elfSegment
}

type elfSegment struct {
	ptype uint32 // 1 = PT_LOAD
	vaddr uint32
	data  []byte
	memsz uint32
}

const (
	ehSize = 52
	phSize = 32

	etExec    = 2
	emRISCV   = 243
	emAArch64 = 183
	ptLoad    = 1
	ptNote    = 4
)

// buildELF assembles a minimal ELF32 image byte by byte.
func buildELF(spec elfSpec) []byte {
	le := binary.LittleEndian
	phnum := len(spec.segments)

	// Segment data follows the headers back to back.
	offsets := make([]uint32, phnum)
	off := uint32(ehSize + phnum*phSize)
	for i, seg := range spec.segments {
		offsets[i] = off
		off += uint32(len(seg.data))
	}

	buf := make([]byte, off)
	copy(buf, []byte{0x7f, 'E', 'L', 'F'})
	buf[4] = spec.class
	buf[5] = spec.data
	buf[6] = 1 // EV_CURRENT

	le.PutUint16(buf[16:], spec.etype)
	le.PutUint16(buf[18:], spec.machine)
	le.PutUint32(buf[20:], 1) // e_version
	le.PutUint32(buf[24:], spec.entry)
	le.PutUint32(buf[28:], ehSize) // e_phoff
	le.PutUint32(buf[32:], 0)      // e_shoff
	le.PutUint32(buf[36:], 0)      // e_flags
	le.PutUint16(buf[40:], ehSize)
	le.PutUint16(buf[42:], phSize)
	le.PutUint16(buf[44:], uint16(phnum))

	for i, seg := range spec.segments {
		ph := buf[ehSize+i*phSize:]
		le.PutUint32(ph[0:], seg.ptype)
		le.PutUint32(ph[4:], offsets[i])
		le.PutUint32(ph[8:], seg.vaddr)
		le.PutUint32(ph[12:], seg.vaddr)
		le.PutUint32(ph[16:], uint32(len(seg.data)))
		memsz := seg.memsz
		if memsz == 0 {
			memsz = uint32(len(seg.data))
		}
		le.PutUint32(ph[20:], memsz)
		le.PutUint32(ph[24:], 5) // p_flags R+X
		le.PutUint32(ph[28:], 4) // p_align

		copy(buf[offsets[i]:], seg.data)
	}

	return buf
}

func writeELF(spec elfSpec) string {
	path := filepath.Join(GinkgoT().TempDir(), "prog.elf")
	Expect(os.WriteFile(path, buildELF(spec), 0o644)).To(Succeed())
	return path
}

func validSpec() elfSpec {
	return elfSpec{
		class:   1,
		data:    1,
		etype:   etExec,
		machine: emRISCV,
		entry:   0x80000000,
		segments: []elfSegment{
			{ptype: ptLoad, vaddr: 0x80000000, data: []byte{0x93, 0x00, 0x50, 0x00}},
		},
	}
}

var _ = Describe("Load", func() {
	It("should load a valid RV32 executable", func() {
		prog, err := loader.Load(writeELF(validSpec()))

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.EntryPoint).To(Equal(uint32(0x80000000)))
		Expect(prog.Segments).To(HaveLen(1))
		Expect(prog.Segments[0].VirtAddr).To(Equal(uint32(0x80000000)))
		Expect(prog.Segments[0].Data).To(Equal([]byte{0x93, 0x00, 0x50, 0x00}))
		Expect(prog.Segments[0].MemSize).To(Equal(uint32(4)))
	})

	It("should keep a BSS-style memsz larger than filesz", func() {
		spec := validSpec()
		spec.segments[0].memsz = 16

		prog, err := loader.Load(writeELF(spec))

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Segments[0].Data).To(HaveLen(4))
		Expect(prog.Segments[0].MemSize).To(Equal(uint32(16)))
	})

	It("should collect multiple loadable segments", func() {
		spec := validSpec()
		spec.segments = append(spec.segments, elfSegment{
			ptype: ptLoad,
			vaddr: 0x80010000,
			data:  []byte{1, 2, 3, 4, 5, 6, 7, 8},
		})

		prog, err := loader.Load(writeELF(spec))

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Segments).To(HaveLen(2))
		Expect(prog.Segments[1].VirtAddr).To(Equal(uint32(0x80010000)))
	})

	It("should skip non-loadable segments", func() {
		spec := validSpec()
		spec.segments = append(spec.segments, elfSegment{
			ptype: ptNote,
			vaddr: 0x1000,
			data:  []byte{9, 9, 9, 9},
		})

		prog, err := loader.Load(writeELF(spec))

		Expect(err).NotTo(HaveOccurred())
		Expect(prog.Segments).To(HaveLen(1))
	})

	It("should refuse a 64-bit image", func() {
		spec := validSpec()
		spec.class = 2

		_, err := loader.Load(writeELF(spec))
		Expect(err).To(HaveOccurred())
	})

	It("should refuse a wrong machine type", func() {
		spec := validSpec()
		spec.machine = emAArch64

		_, err := loader.Load(writeELF(spec))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("RISC-V"))
	})

	It("should refuse a non-executable image", func() {
		spec := validSpec()
		spec.etype = 3 // ET_DYN

		_, err := loader.Load(writeELF(spec))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("executable"))
	})

	It("should report a missing file", func() {
		_, err := loader.Load("/nonexistent/prog.elf")
		Expect(err).To(HaveOccurred())
	})
})
