// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"strings"
	"testing"

	"github.com/h16asm/h16/asm"
	"github.com/h16asm/h16/isa"
)

func loadImage(t *testing.T, code []byte) *isa.Image {
	t.Helper()
	m := isa.NewImage(32)
	if err := m.StoreBytes(0, code); err != nil {
		t.Fatal(err)
	}
	return m
}

func checkDisasm(t *testing.T, m *isa.Image, expected []string) {
	t.Helper()
	addr := 0
	for i, exp := range expected {
		line, next := Disassemble(m, addr)
		if line != exp {
			t.Errorf("line %d at $%04X: got %q, expected %q", i, addr, line, exp)
		}
		addr = next
	}
}

func TestInstructions(t *testing.T) {
	m := loadImage(t, []byte{
		0x00, 0x00, 0x05, // lda 5
		0x1e,                         // %
		0x0c, 0x00, 0x00, 0x00, 0x01, // xor 0, 1
		0x0f, 0x12, 0x34, // jmp 4660
		0x16, // hlt
		0xee, // unused opcode
	})
	checkDisasm(t, m, []string{"lda 5", "%", "xor 0, 1", "jmp 4660", "hlt", "?? $EE"})
}

func TestData(t *testing.T) {
	m := loadImage(t, []byte{
		0x19, 0x41, 0x42, 0xff,
		0x19, 0x07, 0xff,
		0x19, 0x01, 0x02, 0xff,
		0x16,
	})
	checkDisasm(t, m, []string{`def "AB"`, "def 7", "def 1, 2", "hlt"})

	_, next := Disassemble(m, 0)
	if next != 4 {
		t.Errorf("next after def: got %d, expected 4", next)
	}
}

func TestUnterminatedData(t *testing.T) {
	m := isa.NewImage(4)
	if err := m.StoreBytes(0, []byte{0x19, 0x41, 0x42, 0x43}); err != nil {
		t.Fatal(err)
	}
	line, next := Disassemble(m, 0)
	if line != `def "ABC"` || next != 4 {
		t.Errorf("got %q, next %d", line, next)
	}
}

func TestReassemble(t *testing.T) {
	src := "s: def \"hi\"\nlda 5\nadd\nand 1, 2\nhlt"
	assembly, _, err := asm.Assemble(strings.NewReader(src), "test", 0, nil, 0)
	if err != nil {
		t.Fatal(err)
	}

	m := isa.NewImage(0)
	if err := m.StoreBytes(0, assembly.Code); err != nil {
		t.Fatal(err)
	}

	var lines []string
	for addr := 0; addr < assembly.Size; {
		var line string
		line, addr = Disassemble(m, addr)
		lines = append(lines, line)
	}
	exp := "def \"hi\"\nlda 5\nadd\nand 1, 2\nhlt"
	if got := strings.Join(lines, "\n"); got != exp {
		t.Errorf("got:\n%s\nexpected:\n%s", got, exp)
	}
}
