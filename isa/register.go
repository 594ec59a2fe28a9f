// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import "strings"

// Register names in index order. An operand such as "%sp" encodes the
// index of the named register.
var registers = [...]string{"a", "b", "c", "d", "e", "f", "t", "sp", "dp"}

// NumRegisters is the number of addressable registers.
const NumRegisters = len(registers)

// RegisterIndex returns the index of the named register, ignoring case.
func RegisterIndex(name string) (int, bool) {
	name = strings.ToLower(name)
	for i, r := range registers {
		if r == name {
			return i, true
		}
	}
	return NumRegisters, false
}

// RegisterName returns the name of the register with the given index, or
// the empty string if there is no such register.
func RegisterName(index int) string {
	if index < 0 || index >= len(registers) {
		return ""
	}
	return registers[index]
}
