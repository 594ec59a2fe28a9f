// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"io"

	"github.com/h16asm/h16/isa"
)

// A lineKind identifies the category of a tokenized source line.
type lineKind byte

const (
	lineBlank       lineKind = iota // nothing significant on the line
	lineLabel                       // "name:" with an optional instruction
	lineVariable                    // "name: def literal"
	lineInstruction                 // "mnemonic [operand[, operand]]"
)

var kindName = []string{
	"blank",
	"label",
	"variable",
	"instruction",
}

func (k lineKind) String() string {
	return kindName[k]
}

// A decl is the classification of a single source line.
type decl struct {
	kind     lineKind
	name     fstring // label or variable name
	mnemonic fstring // instruction mnemonic, empty on label-only lines
	operands fstring // text following the mnemonic
	payload  fstring // literal of a data definition
}

// A line is a tokenized line of source code. Both passes walk the same
// slice of lines.
type line struct {
	text fstring // line with comments and surrounding whitespace removed
	decl
	sym *Symbol // symbol produced by the first pass, if any
}

// Split source text into lines and classify each of them. A trailing
// carriage return is dropped from every line.
func tokenize(r io.Reader) ([]line, error) {
	var lines []line
	scanner := bufio.NewScanner(r)
	row := 1
	for scanner.Scan() {
		text := newFstring(row, scanner.Text()).stripTrailingComment().consumeWhitespace()
		lines = append(lines, line{text: text, decl: classify(text)})
		row++
	}
	return lines, scanner.Err()
}

// Report whether a line carries nothing but whitespace and punctuation.
func insignificant(l fstring) bool {
	return l.scanWhile(punctuation) == len(l.str)
}

// Classify a comment-stripped, left-trimmed line. A colon outside of quotes
// terminates a name. When the word following the colon is the data
// definition keyword the line declares a variable; otherwise it declares a
// label, optionally followed by an instruction.
func classify(l fstring) decl {
	if insignificant(l) {
		return decl{kind: lineBlank}
	}

	name, remain := l.consumeUntilUnquotedChar(':')
	if remain.startsWithChar(':') {
		d := decl{kind: lineLabel, name: name.trimRight()}
		remain = remain.consume(1).consumeWhitespace()
		if remain.startsWithWord(isa.DefName) {
			d.kind = lineVariable
			d.payload = remain.consume(len(isa.DefName)).consumeWhitespace()
			return d
		}
		if !insignificant(remain) {
			d.mnemonic, d.operands = parseInstructionText(remain)
		}
		return d
	}

	d := decl{kind: lineInstruction}
	d.mnemonic, d.operands = parseInstructionText(l)
	if d.mnemonic.startsWithWord(isa.DefName) {
		d.payload = d.operands
	}
	return d
}

func parseInstructionText(l fstring) (mnemonic, operands fstring) {
	mnemonic, remain := l.consumeWhile(operandChar)
	return mnemonic, remain.consume(remain.scanWhile(separator))
}
