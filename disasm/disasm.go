// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements an H16 instruction set
// disassembler.
package disasm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/h16asm/h16/isa"
)

// Disassemble the machine code in image 'm' at address 'addr'. Return a
// 'line' string representing the disassembled instruction and a 'next'
// address that starts the following line of machine code.
//
// Operands are printed as decimal numbers, so a register operand reads the
// same as the immediate holding its index. Bytes that do not start an
// instruction are printed as "?? $XX".
func Disassemble(m *isa.Image, addr int) (line string, next int) {
	opcode := m.LoadByte(addr)
	inst := isa.GetInstructionSet().Lookup(opcode)
	switch {
	case inst == nil:
		return fmt.Sprintf("?? $%02X", opcode), addr + 1

	case inst.IsData():
		payload, end := dataPayload(m, addr+1)
		return inst.Name + " " + payloadString(payload), end

	default:
		var b strings.Builder
		b.WriteString(inst.Name)
		for i := 0; i < inst.Operands; i++ {
			if i == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteString(", ")
			}
			b.WriteString(strconv.Itoa(int(m.LoadWord(addr + 1 + 2*i))))
		}
		return b.String(), addr + inst.Length
	}
}

// Collect payload bytes up to the sentinel. Return the payload and the
// address following the sentinel, or the end of the image if the payload
// is unterminated.
func dataPayload(m *isa.Image, addr int) (payload []byte, next int) {
	for a := addr; a < m.Len(); a++ {
		c := m.LoadByte(a)
		if c == isa.Sentinel {
			return payload, a + 1
		}
		payload = append(payload, c)
	}
	return payload, m.Len()
}

// Format a payload the way the assembler accepts it where possible: a
// single byte as a decimal literal and printable text as a quoted string.
func payloadString(b []byte) string {
	switch {
	case len(b) == 1:
		return strconv.Itoa(int(b[0]))
	case len(b) > 1 && printable(b):
		return `"` + string(b) + `"`
	}
	s := make([]string, len(b))
	for i, c := range b {
		s[i] = strconv.Itoa(int(c))
	}
	return strings.Join(s, ", ")
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 || c > 0x7e || c == '"' {
			return false
		}
	}
	return true
}
