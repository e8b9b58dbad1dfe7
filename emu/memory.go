// Package emu provides the architectural state model and the functional
// single-step RV32I emulator.
package emu

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Fixed memory map of the simulated machine.
const (
	// IMemBase is the base address of instruction memory.
	IMemBase uint32 = 0x80000000
	// IMemSize is the size of instruction memory in bytes.
	IMemSize uint32 = 0x10000
	// DMemBase is the base address of data memory.
	DMemBase uint32 = 0x80010000
	// DMemSize is the size of data memory in bytes.
	DMemSize uint32 = 0x10000
)

// MemOp selects the direction of a memory access.
type MemOp uint8

// Memory access directions.
const (
	MemRead MemOp = iota
	MemWrite
)

// Memory is a word-addressable memory block covering the address range
// [base, base+size). Accesses must be 4-byte aligned and in range.
type Memory struct {
	base  uint32
	size  uint32
	words []uint32
}

// NewMemory creates a memory block of the given base address and size
// in bytes. Size must be a multiple of the word size.
func NewMemory(base, size uint32) *Memory {
	if size%4 != 0 {
		panic(fmt.Sprintf("memory: size 0x%x not word-aligned", size))
	}
	return &Memory{
		base:  base,
		size:  size,
		words: make([]uint32, size/4),
	}
}

// NewIMem creates the instruction memory of the fixed machine map.
func NewIMem() *Memory {
	return NewMemory(IMemBase, IMemSize)
}

// NewDMem creates the data memory of the fixed machine map.
func NewDMem() *Memory {
	return NewMemory(DMemBase, DMemSize)
}

// Base returns the base address.
func (m *Memory) Base() uint32 {
	return m.base
}

// Size returns the size in bytes.
func (m *Memory) Size() uint32 {
	return m.size
}

// Contains reports whether addr falls inside this memory's range.
func (m *Memory) Contains(addr uint32) bool {
	return addr >= m.base && addr-m.base < m.size
}

// Access performs one memory port operation. A disabled port never
// faults and returns (0, true). An enabled access fails when the
// address is out of range or not word-aligned. Reads return the word
// at addr; writes store data and return (0, true).
func (m *Memory) Access(enable bool, addr, data uint32, op MemOp) (uint32, bool) {
	if !enable {
		return 0, true
	}
	if !m.Contains(addr) || addr%4 != 0 {
		return 0, false
	}

	idx := (addr - m.base) / 4
	if op == MemWrite {
		m.words[idx] = data
		return 0, true
	}
	return m.words[idx], true
}

// ReadWord reads the word at addr. It reports ok=false on a bad address.
func (m *Memory) ReadWord(addr uint32) (uint32, bool) {
	return m.Access(true, addr, 0, MemRead)
}

// WriteWord stores a word at addr. It reports ok=false on a bad address.
func (m *Memory) WriteWord(addr, data uint32) bool {
	_, ok := m.Access(true, addr, data, MemWrite)
	return ok
}

// LoadBytes copies raw little-endian bytes into memory starting at
// addr, word by word. Partial trailing words are zero-padded. It
// reports ok=false if any part of the range falls outside the memory.
func (m *Memory) LoadBytes(addr uint32, data []byte) bool {
	for off := 0; off < len(data); off += 4 {
		var buf [4]byte
		copy(buf[:], data[off:])
		if !m.WriteWord(addr+uint32(off), binary.LittleEndian.Uint32(buf[:])) {
			return false
		}
	}
	return true
}

// Dump writes every nonzero word to w as "address: value" lines.
func (m *Memory) Dump(w io.Writer) {
	fmt.Fprintln(w, "Memory")
	fmt.Fprintln(w, "======")
	for i, v := range m.words {
		if v != 0 {
			fmt.Fprintf(w, "0x%08x: 0x%08x\n", m.base+uint32(i)*4, v)
		}
	}
}
