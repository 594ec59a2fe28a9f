// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package isa describes the H16 instruction set: its instruction table,
// its register names and the memory layout shared by the assembler and the
// disassembler.
package isa

import "strings"

// Opcodes the assembler treats specially.
const (
	OpDef        byte = 0x19 // data definition pseudo-instruction
	OpModeSwitch byte = 0x1e // switch into register addressing
)

// Mnemonics of the special instructions.
const (
	DefName        = "def"
	ModeSwitchName = "%"
)

// RegisterMarker prefixes a register name in an operand.
const RegisterMarker = '%'

// An Instruction describes an H16 instruction: its mnemonic, the number of
// 16-bit operands it takes, its encoded length and its opcode.
type Instruction struct {
	Name     string // lower-case mnemonic
	Operands int    // number of 16-bit operands
	Length   int    // combined size of opcode and operands, in bytes
	Opcode   byte   // opcode value
}

// IsData reports whether the instruction is the data definition
// pseudo-instruction, whose encoded length depends on its payload.
func (i *Instruction) IsData() bool {
	return i.Opcode == OpDef
}

// All H16 instructions. The opcode of each entry is part of the binary
// format and must not change.
var data = []Instruction{
	{"lda", 1, 3, 0x00},
	{"ldb", 1, 3, 0x01},
	{"ldd", 1, 3, 0x02},
	{"lde", 1, 3, 0x03},
	{"lia", 1, 3, 0x04},
	{"lib", 1, 3, 0x05},
	{"lid", 1, 3, 0x06},
	{"lie", 1, 3, 0x07},
	{"add", 0, 1, 0x08},
	{"sub", 0, 1, 0x09},
	{"mul", 0, 1, 0x0a},
	{"div", 0, 1, 0x0b},
	{"xor", 2, 5, 0x0c},
	{"or", 2, 5, 0x0d},
	{"and", 2, 5, 0x0e},
	{"jmp", 1, 3, 0x0f},
	{"jz", 1, 3, 0x10},
	{"jnz", 1, 3, 0x11},
	{"jc", 1, 3, 0x12},
	{"jnc", 1, 3, 0x13},
	{"sb", 1, 3, 0x14},
	{"gb", 1, 3, 0x15},
	{"hlt", 0, 1, 0x16},
	{"eb", 0, 1, 0x17},
	{"db", 0, 1, 0x18},
	{"def", 1, 2, 0x19}, // length is nominal, see IsData
	{"sp", 1, 3, 0x1a},
	{"dp", 1, 3, 0x1b},
	{"inc", 1, 3, 0x1c},
	{"dec", 1, 3, 0x1d},
	{"%", 0, 1, 0x1e},
}

// An InstructionSet indexes the instruction table by opcode and by name.
type InstructionSet struct {
	instructions [256]*Instruction       // by opcode, nil when unused
	names        map[string]*Instruction // by lower-case mnemonic
}

// Lookup retrieves the instruction with the requested opcode. It returns
// nil if no instruction uses the opcode.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return s.instructions[opcode]
}

// Find returns the instruction whose mnemonic matches the provided string,
// ignoring case. It returns nil if there is no such instruction.
func (s *InstructionSet) Find(name string) *Instruction {
	return s.names[strings.ToLower(name)]
}

// Instructions returns a copy of the instruction table in opcode order.
func (s *InstructionSet) Instructions() []Instruction {
	list := make([]Instruction, 0, len(data))
	for _, inst := range s.instructions {
		if inst != nil {
			list = append(list, *inst)
		}
	}
	return list
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{names: make(map[string]*Instruction, len(data))}
	for i := range data {
		inst := &data[i]
		if set.instructions[inst.Opcode] != nil || set.names[inst.Name] != nil {
			panic("duplicate instruction " + inst.Name)
		}
		set.instructions[inst.Opcode] = inst
		set.names[inst.Name] = inst
	}
	return set
}

var instructionSet = newInstructionSet()

// GetInstructionSet returns the H16 instruction set.
func GetInstructionSet() *InstructionSet {
	return instructionSet
}
