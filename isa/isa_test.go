// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import (
	"bytes"
	"errors"
	"testing"
)

var opcodes = map[string]byte{
	"lda": 0x00, "ldb": 0x01, "ldd": 0x02, "lde": 0x03,
	"lia": 0x04, "lib": 0x05, "lid": 0x06, "lie": 0x07,
	"add": 0x08, "sub": 0x09, "mul": 0x0a, "div": 0x0b,
	"xor": 0x0c, "or": 0x0d, "and": 0x0e,
	"jmp": 0x0f, "jz": 0x10, "jnz": 0x11, "jc": 0x12, "jnc": 0x13,
	"sb": 0x14, "gb": 0x15, "hlt": 0x16, "eb": 0x17, "db": 0x18,
	"def": 0x19, "sp": 0x1a, "dp": 0x1b, "inc": 0x1c, "dec": 0x1d,
	"%": 0x1e,
}

func TestOpcodeRoundTrip(t *testing.T) {
	set := GetInstructionSet()
	if n := len(set.Instructions()); n != len(opcodes) {
		t.Fatalf("instruction count: got %d, want %d", n, len(opcodes))
	}
	for name, opcode := range opcodes {
		inst := set.Find(name)
		if inst == nil {
			t.Errorf("%s: not found", name)
			continue
		}
		if inst.Opcode != opcode {
			t.Errorf("%s: opcode $%02X, want $%02X", name, inst.Opcode, opcode)
		}
		if back := set.Lookup(inst.Opcode); back != inst {
			t.Errorf("%s: opcode $%02X maps back to %v", name, opcode, back)
		}
	}
}

func TestInstructionLengths(t *testing.T) {
	for _, inst := range GetInstructionSet().Instructions() {
		if inst.IsData() {
			continue
		}
		if want := 1 + 2*inst.Operands; inst.Length != want {
			t.Errorf("%s: length %d, want %d", inst.Name, inst.Length, want)
		}
	}
}

func TestFindIgnoresCase(t *testing.T) {
	set := GetInstructionSet()
	if set.Find("HLT") != set.Find("hlt") || set.Find("hlt") == nil {
		t.Error("mnemonic lookup should ignore case")
	}
	if set.Find("nop") != nil {
		t.Error("unexpected instruction 'nop'")
	}
	if set.Lookup(0xff) != nil {
		t.Error("opcode $FF should be unused")
	}
}

func TestRegisters(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f", "t", "sp", "dp"}
	for i, name := range names {
		idx, ok := RegisterIndex(name)
		if !ok || idx != i {
			t.Errorf("%s: got index %d (%v), want %d", name, idx, ok, i)
		}
		if RegisterName(i) != name {
			t.Errorf("index %d: got name %q, want %q", i, RegisterName(i), name)
		}
	}
	if idx, ok := RegisterIndex("x"); ok || idx != NumRegisters {
		t.Errorf("unknown register: got %d (%v)", idx, ok)
	}
	if RegisterName(NumRegisters) != "" {
		t.Error("register name out of range should be empty")
	}
}

func TestImageStores(t *testing.T) {
	m := NewImage(8)
	if err := m.StoreWord(0, 0x1234); err != nil {
		t.Fatal(err)
	}
	if err := m.StoreBytes(2, []byte{0xaa, 0xbb}); err != nil {
		t.Fatal(err)
	}
	if got := m.LoadWord(0); got != 0x1234 {
		t.Errorf("LoadWord: got $%04X", got)
	}
	want := []byte{0x12, 0x34, 0xaa, 0xbb, 0, 0, 0, 0}
	if !bytes.Equal(m.Bytes(), want) {
		t.Errorf("image: got % X, want % X", m.Bytes(), want)
	}

	if err := m.StoreBytes(6, []byte{1, 2, 3}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("overflowing store: got %v", err)
	}
	if m.LoadByte(6) != 0 {
		t.Error("failed store must leave the image untouched")
	}
	if err := m.StoreByte(-1, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("negative store: got %v", err)
	}
	if m.LoadByte(100) != 0 {
		t.Error("load past the end should read zero")
	}

	b := make([]byte, 4)
	m.LoadBytes(6, b)
	if !bytes.Equal(b, []byte{0, 0, 0, 0}) {
		t.Errorf("LoadBytes past the end: got % X", b)
	}

	m.Clear()
	if !bytes.Equal(m.Bytes(), make([]byte, 8)) {
		t.Error("Clear should zero the image")
	}
}

func TestImageReadWrite(t *testing.T) {
	m := NewImage(0)
	if m.Len() != ImageSize {
		t.Fatalf("default capacity: got %d", m.Len())
	}

	m = NewImage(4)
	if _, err := m.ReadFrom(bytes.NewReader([]byte{1, 2})); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	n, err := m.WriteTo(&buf)
	if err != nil || n != 4 {
		t.Fatalf("WriteTo: n=%d err=%v", n, err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{1, 2, 0, 0}) {
		t.Errorf("round trip: got % X", buf.Bytes())
	}

	if _, err := m.ReadFrom(bytes.NewReader(make([]byte, 5))); err == nil {
		t.Error("expected an error reading an oversized image")
	}
}
