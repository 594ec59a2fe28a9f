// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/h16asm/h16/isa"
)

// Assign code addresses to every instruction and data definition, and data
// addresses to every variable. Build the label and variable tables and the
// pending symbol sequence.
func (a *assembler) firstPass() error {
	a.logSection("First pass")

	a.pc, a.dp = 0, a.dataBase
	var prev *Symbol
	for i := range a.lines {
		l := &a.lines[i]

		var sym *Symbol
		switch l.kind {
		case lineBlank:
			continue
		case lineVariable:
			sym = a.parseVariable(l)
		case lineLabel:
			a.storeLabel(l.name)
			if l.mnemonic.isEmpty() {
				continue
			}
			sym = a.parseInstruction(l)
		case lineInstruction:
			sym = a.parseInstruction(l)
		}
		if sym == nil {
			continue
		}

		if needsModeSwitch(prev, sym) {
			a.logLine(l.text, "reserve mode switch at $%04X", a.pc)
			a.pc++
		}
		sym.Addr = a.pc
		a.pc += sym.Length
		a.logLine(l.text, "%s pc=$%04X len=%d", sym.Name, sym.Addr, sym.Length)

		a.symbols = append(a.symbols, sym)
		l.sym = sym
		prev = sym
	}

	a.codeEnd = a.pc
	a.log("code end=$%04X data end=$%04X", a.codeEnd, a.dp)
	return nil
}

// Parse an instruction line into a pending symbol. A data definition
// without a name produces a data symbol. Returns nil if the instruction
// could not be parsed.
func (a *assembler) parseInstruction(l *line) *Symbol {
	inst := a.instSet.Find(l.mnemonic.str)
	if inst == nil {
		if !a.legacy {
			a.addError(l.mnemonic, ErrUnknownMnemonic, "unknown instruction '%s'", l.mnemonic.str)
			return nil
		}
		a.logLine(l.mnemonic, "placeholder for '%s'", l.mnemonic.str)
		return &Symbol{Name: l.mnemonic.str, Line: l.mnemonic.row, src: l.mnemonic}
	}

	if inst.IsData() {
		payload, err := parsePayload(l.payload, a.legacy)
		if err != nil {
			a.addError(l.payload, err, "%v", err)
			return nil
		}
		return newDataSymbol(l.mnemonic, payload)
	}

	return newSymbol(inst, l.mnemonic, l.operands.fields())
}

// Parse a variable declaration. The variable is stored at the data pointer,
// which then advances by the size of the payload. A name that cannot be
// stored still gets its data emitted.
func (a *assembler) parseVariable(l *line) *Symbol {
	payload, err := parsePayload(l.payload, a.legacy)
	if err != nil {
		a.addError(l.payload, err, "%v", err)
		return nil
	}

	if a.storeName(l.name) {
		v := &Variable{Name: l.name.str, Line: l.name.row, Addr: a.dp}
		a.variables[v.Name] = v
		a.variableList = append(a.variableList, v)
		a.logLine(l.name, "var=%s addr=$%04X", v.Name, v.Addr)
	}
	a.dp += len(payload)

	return newDataSymbol(l.name, payload)
}

// Store a label at the current code pointer.
func (a *assembler) storeLabel(name fstring) {
	if !a.storeName(name) {
		return
	}
	label := &Label{Name: name.str, Line: name.row, Addr: a.pc}
	a.labels[label.Name] = label
	a.labelList = append(a.labelList, label)
	a.logLine(name, "label=%s addr=$%04X", label.Name, label.Addr)
}

// Validate a label or variable name before it is stored. Returns false if
// the name must not be stored. In legacy mode the first declaration of a
// name wins and later ones are ignored.
func (a *assembler) storeName(name fstring) bool {
	_, isLabel := a.labels[name.str]
	_, isVar := a.variables[name.str]
	if isLabel || isVar {
		if !a.legacy {
			a.addError(name, ErrDuplicateLabel, "'%s' defined more than once", name.str)
		}
		return false
	}
	if !a.legacy && !validName(name) {
		a.addError(name, ErrInvalidLabel, "invalid label '%s'", name.str)
		return false
	}
	return true
}

func validName(name fstring) bool {
	return name.startsWith(labelStartChar) && name.scanWhile(labelChar) == len(name.str)
}

// Fill in the operands of every pending symbol, inserting a mode switch in
// front of each register-addressed instruction that lacks one. The source
// lines are walked in step with the symbol sequence.
func (a *assembler) secondPass() error {
	a.logSection("Second pass")

	pc, si := 0, 0
	for i := range a.lines {
		l := &a.lines[i]
		if l.sym == nil {
			continue
		}

		sym := a.symbols[si]
		if sym != l.sym {
			return fmt.Errorf("symbol sequence out of step at line %d", l.text.row)
		}
		si++

		if sym.Length == 0 || sym.IsData() {
			pc += sym.Length
			continue
		}

		tokens := l.operands.fields()
		if len(tokens) != sym.Operands && !a.legacy {
			col := l.operands
			if len(tokens) > sym.Operands {
				col = tokens[sym.Operands]
			}
			a.addError(col, ErrOperandCount, "'%s' takes %d operand(s), found %d",
				sym.Name, sym.Operands, len(tokens))
		}

		switched := false
		for j := 0; j < sym.Operands && j < len(tokens); j++ {
			tok := tokens[j]
			if tok.startsWithChar(isa.RegisterMarker) && !switched {
				switched = true
				var prev *Symbol
				if si > 1 {
					prev = a.symbols[si-2]
				}
				if needsModeSwitch(prev, sym) {
					a.symbols = slices.Insert(a.symbols, si-1, newModeSwitch(sym))
					si++
					a.logLine(tok, "insert mode switch at $%04X", pc)
					pc++
				}
			}
			sym.Args[j] = a.resolveOperand(tok)
		}

		if sym.Addr != pc {
			return fmt.Errorf("line %d: '%s' resolved at $%04X, assigned $%04X",
				l.text.row, sym.Name, pc, sym.Addr)
		}
		pc += sym.Length
		a.logLine(l.text, "%s args=%v", sym.Name, sym.Args[:sym.Operands])
	}

	if pc != a.codeEnd {
		return fmt.Errorf("second pass ended at $%04X, first pass at $%04X", pc, a.codeEnd)
	}
	return nil
}

// Resolve a single operand token: a register, a decimal number, or the name
// of a label or variable. Labels take precedence over variables.
func (a *assembler) resolveOperand(tok fstring) uint16 {
	switch {
	case tok.startsWithChar(isa.RegisterMarker):
		name := tok.str[1:]
		idx, ok := isa.RegisterIndex(name)
		if !ok && !a.legacy {
			a.addError(tok, ErrUnknownRegister, "unknown register '%s'", name)
		}
		return uint16(idx)

	case tok.startsWith(decimal):
		if a.legacy {
			return uint16(atoi(tok.str))
		}
		v, err := strconv.ParseUint(tok.str, 10, 16)
		switch {
		case errorIsRange(err):
			a.addError(tok, ErrOperandRange, "%s does not fit in 16 bits", tok.str)
		case err != nil:
			a.addError(tok, ErrInvalidLiteral, "invalid number '%s'", tok.str)
		}
		return uint16(v)

	default:
		if label, ok := a.labels[tok.str]; ok {
			return uint16(label.Addr)
		}
		if v, ok := a.variables[tok.str]; ok {
			return uint16(v.Addr)
		}
		if !a.legacy {
			a.addError(tok, ErrUnresolvedSymbol, "unresolved symbol '%s'", tok.str)
		}
		return 0
	}
}
