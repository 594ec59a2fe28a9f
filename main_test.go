// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const program = `start: lda 5
loop: jmp loop
msg: def "hi"
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func writeSource(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.asm")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAssembleAndDisasm(t *testing.T) {
	path := writeSource(t, program)

	out, err := run(t, "--map", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Assembled 'prog.asm' to produce 'prog.h16' and 'prog.map'.") {
		t.Errorf("unexpected output:\n%s", out)
	}

	image, err := os.ReadFile(strings.TrimSuffix(path, ".asm") + ".h16")
	if err != nil {
		t.Fatal(err)
	}
	if len(image) != 0x4000 {
		t.Errorf("image size: got %d, expected %d", len(image), 0x4000)
	}

	out, err = run(t, "disasm", strings.TrimSuffix(path, ".asm")+".h16")
	if err != nil {
		t.Fatal(err)
	}
	expected := "0000- lda 5\n0003- jmp 3\n0006- def \"hi\"\n"
	if out != expected {
		t.Errorf("disassembly:\ngot:\n%s\nexpected:\n%s", out, expected)
	}
}

func TestAssembleOutputAndCapacity(t *testing.T) {
	path := writeSource(t, program)
	bin := filepath.Join(filepath.Dir(path), "out.bin")

	if _, err := run(t, "-o", bin, "--capacity", "32", path); err != nil {
		t.Fatal(err)
	}
	image, err := os.ReadFile(bin)
	if err != nil {
		t.Fatal(err)
	}
	if len(image) != 32 {
		t.Errorf("image size: got %d, expected 32", len(image))
	}

	// Without a source map, trailing zero bytes are not disassembled.
	out, err := run(t, "disasm", "--capacity", "32", bin)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out, "\n"); n != 3 {
		t.Errorf("got %d lines, expected 3:\n%s", n, out)
	}
}

func TestAssembleDump(t *testing.T) {
	path := writeSource(t, program)

	out, err := run(t, "--dump", "--verbose", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{`"start"`, `"loop"`, `"msg"`} {
		if !strings.Contains(out, s) {
			t.Errorf("dump is missing %s:\n%s", s, out)
		}
	}

	// The source is assembled once for both the image and the dump.
	if n := strings.Count(out, "-- First pass --"); n != 1 {
		t.Errorf("first pass ran %d times", n)
	}
}

func TestAssembleFailure(t *testing.T) {
	path := writeSource(t, "foo\n")

	out, err := run(t, path)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(out, "unknown instruction 'foo'") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".asm") + ".h16"); !os.IsNotExist(err) {
		t.Error("image written for a failed assembly")
	}

	if _, err := run(t, "--legacy", path); err != nil {
		t.Errorf("legacy assembly failed: %v", err)
	}
}
