// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/h16asm/h16/isa"
)

// A Label names a code address.
type Label struct {
	Name string // label name, case-sensitive
	Line int    // 1-based source line of the declaration
	Addr int    // code address assigned by the first pass
}

// A Variable names a data address. Variable addresses live above the image
// and never overlap code addresses.
type Variable struct {
	Name string // variable name, case-sensitive
	Line int    // 1-based source line of the declaration
	Addr int    // data address assigned by the first pass
}

// A Symbol is one instruction or data definition in the assembled
// program. A symbol carries either operand values or a data payload,
// never both.
type Symbol struct {
	Name     string    // lower-case mnemonic
	Operands int       // number of 16-bit operands
	Length   int       // encoded size in bytes
	Opcode   byte      // instruction opcode
	Args     [2]uint16 // resolved operand values
	Data     []byte    // payload of a data definition
	Addr     int       // code address of the opcode byte
	Line     int       // 1-based source line

	register  bool    // operands name a register
	synthetic bool    // mode switch inserted by the assembler
	src       fstring // mnemonic as it appeared in the source
}

// IsData reports whether the symbol is a data definition.
func (s *Symbol) IsData() bool {
	return s.Opcode == isa.OpDef && s.Length > 0
}

// IsSynthetic reports whether the assembler inserted the symbol.
func (s *Symbol) IsSynthetic() bool {
	return s.synthetic
}

// Return the machine code for the symbol: the opcode followed by the data
// payload and sentinel, or by each operand, most significant byte first.
func (s *Symbol) encode() []byte {
	b := make([]byte, 1, s.Length)
	b[0] = s.Opcode
	if s.IsData() {
		b = append(b, s.Data...)
		return append(b, isa.Sentinel)
	}
	for i := 0; i < s.Operands; i++ {
		b = binary.BigEndian.AppendUint16(b, s.Args[i])
	}
	return b
}

// Create a pending symbol for an instruction. Its operands are zero until
// the second pass resolves them.
func newSymbol(inst *isa.Instruction, mnemonic fstring, operands []fstring) *Symbol {
	sym := &Symbol{
		Name:     inst.Name,
		Operands: inst.Operands,
		Length:   inst.Length,
		Opcode:   inst.Opcode,
		Line:     mnemonic.row,
		src:      mnemonic,
	}
	for i := 0; i < inst.Operands && i < len(operands); i++ {
		if operands[i].startsWithChar(isa.RegisterMarker) {
			sym.register = true
		}
	}
	return sym
}

// Create a data definition symbol holding the payload.
func newDataSymbol(mnemonic fstring, payload []byte) *Symbol {
	return &Symbol{
		Name:   isa.DefName,
		Length: len(payload) + 2,
		Opcode: isa.OpDef,
		Data:   payload,
		Line:   mnemonic.row,
		src:    mnemonic,
	}
}

// Create the mode switch that precedes sym.
func newModeSwitch(sym *Symbol) *Symbol {
	inst := isa.GetInstructionSet().Find(isa.ModeSwitchName)
	return &Symbol{
		Name:      inst.Name,
		Length:    inst.Length,
		Opcode:    inst.Opcode,
		Addr:      sym.Addr - inst.Length,
		Line:      sym.Line,
		synthetic: true,
		src:       sym.src,
	}
}

// Report whether a mode switch must precede sym, given the symbol before it.
// Every register-addressed instruction gets its own switch unless the
// symbol before it already is one, as with an explicit % in the source.
func needsModeSwitch(prev, sym *Symbol) bool {
	if !sym.register {
		return false
	}
	return prev == nil || prev.Opcode != isa.OpModeSwitch
}

// Parse the literal of a data definition into its payload bytes. A double
// quoted string yields its characters, a literal starting with a digit
// yields one byte holding its decimal value, and any other literal yields
// its second character.
func parsePayload(lit fstring, legacy bool) ([]byte, error) {
	var b []byte
	switch {
	case lit.startsWithChar('"'):
		body := lit.consume(1)
		end := body.scanWhile(func(c byte) bool { return c != '"' })
		if end == len(body.str) && !legacy {
			return nil, fmt.Errorf("%w: unterminated string %s", ErrInvalidLiteral, lit.str)
		}
		b = []byte(body.str[:end])

	case lit.startsWith(decimal):
		if legacy {
			b = []byte{byte(atoi(lit.str))}
			break
		}
		v, err := strconv.ParseUint(lit.str, 10, 8)
		switch {
		case errorIsRange(err):
			return nil, fmt.Errorf("%w: %s does not fit in a byte", ErrOperandRange, lit.str)
		case err != nil:
			return nil, fmt.Errorf("%w: %s", ErrInvalidLiteral, lit.str)
		}
		b = []byte{byte(v)}

	default:
		if len(lit.str) < 2 {
			if !legacy {
				return nil, fmt.Errorf("%w: '%s'", ErrInvalidLiteral, lit.str)
			}
			return []byte{0}, nil
		}
		b = []byte{lit.str[1]}
	}

	if !legacy {
		for _, c := range b {
			if c == isa.Sentinel {
				return nil, fmt.Errorf("%w: payload byte $%02X is reserved", ErrOperandRange, c)
			}
		}
	}
	return b, nil
}
