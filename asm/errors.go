// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
	"strings"
)

// Errors reported while assembling. Each is wrapped in an *Error that
// locates it in the source.
var (
	ErrUnknownMnemonic  = errors.New("unknown instruction")
	ErrUnknownRegister  = errors.New("unknown register")
	ErrUnresolvedSymbol = errors.New("unresolved symbol")
	ErrOperandCount     = errors.New("wrong number of operands")
	ErrDuplicateLabel   = errors.New("symbol defined more than once")
	ErrInvalidLabel     = errors.New("invalid label")
	ErrInvalidLiteral   = errors.New("invalid literal")
	ErrOperandRange     = errors.New("value out of range")
	ErrImageOverflow    = errors.New("image overflow")
)

// An Error describes a problem at a location in the assembly source.
type Error struct {
	File   string // name of the source
	Line   int    // 1-based line number
	Column int    // 1-based column number
	Msg    string // description of the problem
	Err    error  // one of the Err* values above
}

func (e *Error) Error() string {
	return fmt.Sprintf("Syntax error in '%s' line %d, col %d: %s", e.File, e.Line, e.Column, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Append an error to the assembler's error state.
func (a *assembler) addError(l fstring, err error, format string, args ...any) {
	e := &Error{
		File:   a.file,
		Line:   l.row,
		Column: l.column + 1,
		Msg:    fmt.Sprintf(format, args...),
		Err:    err,
	}
	a.errors = append(a.errors, e)
	if a.verbose {
		fmt.Fprintln(a.out, e.Error())
		fmt.Fprintln(a.out, l.full)
		fmt.Fprintln(a.out, strings.Repeat("-", l.column)+"^")
	}
}
