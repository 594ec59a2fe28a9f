// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass assembler for the H16 instruction set.
//
// The first pass assigns code addresses to instructions and data
// definitions and data addresses to variables. The second pass resolves
// operands and inserts the mode switches that precede register-addressed
// instructions. The result is linearized into a fixed-capacity image.
package asm

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h16asm/h16/isa"
)

// Extensions of the files produced by AssembleFile.
const (
	ImageExt     = ".h16"
	SourceMapExt = ".map"
)

// The assembler is a state object used during the assembly of
// machine code from assembly code.
type assembler struct {
	instSet      *isa.InstructionSet  // instruction table
	file         string               // name of the source
	r            io.Reader            // the reader passed to Assemble
	lines        []line               // tokenized source lines
	pc           int                  // code pointer
	dp           int                  // data pointer
	dataBase     int                  // first data address
	codeEnd      int                  // code pointer at the end of the first pass
	labels       map[string]*Label    // label name -> label
	variables    map[string]*Variable // variable name -> variable
	labelList    []*Label             // labels in declaration order
	variableList []*Variable          // variables in declaration order
	symbols      []*Symbol            // instructions and data definitions
	image        *isa.Image           // generated machine code
	size         int                  // bytes of machine code generated
	sourceLines  []SourceLine         // source code line mappings
	out          io.Writer            // output used for verbose output
	verbose      bool                 // verbose output
	legacy       bool                 // silent defaults instead of errors
	errors       []*Error             // errors encountered during assembly
}

// Assembly contains the assembled machine code and other data associated with
// the machine code.
type Assembly struct {
	Code      []byte     // Assembled image, including trailing zero padding
	Size      int        // Number of bytes of machine code in the image
	Labels    []Label    // Labels in declaration order
	Variables []Variable // Variables in declaration order
	Symbols   []Symbol   // Symbols in image order
	Errors    []string   // Errors encountered during assembly
}

// WriteTo saves the whole image as binary data into an output writer.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(a.Code)
	return int64(nn), err
}

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose        Option = 1 << iota // verbose output during assembly
	Legacy                            // unknown names resolve silently
	WriteSourceMap                    // AssembleFile also writes a source map
)

// AssembleFile reads a file containing H16 assembly code, assembles it,
// and writes the whole image to binPath. If binPath is empty, the image is
// written next to the source with the extension replaced by ".h16". A
// source map is written alongside the image when requested. No file is
// written if the source cannot be read or fails to assemble. The returned
// assembly is nil only if the source could not be read.
func AssembleFile(path, binPath string, capacity int, options Option, out io.Writer) (*Assembly, error) {
	if out == nil {
		out = os.Stdout
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	assembly, sourceMap, err := Assemble(bytes.NewReader(src), path, capacity, out, options)
	if err != nil {
		for _, e := range assembly.Errors {
			fmt.Fprintln(out, e)
		}
		return assembly, err
	}

	if binPath == "" {
		binPath = replaceExt(path, ImageExt)
	}
	if err := writeFile(binPath, assembly); err != nil {
		return assembly, err
	}

	if options&WriteSourceMap == 0 {
		fmt.Fprintf(out, "Assembled '%s' to produce '%s'.\n",
			filepath.Base(path), filepath.Base(binPath))
		return assembly, nil
	}

	mapPath := replaceExt(binPath, SourceMapExt)
	if err := writeFile(mapPath, sourceMap); err != nil {
		return assembly, err
	}

	fmt.Fprintf(out, "Assembled '%s' to produce '%s' and '%s'.\n",
		filepath.Base(path),
		filepath.Base(binPath),
		filepath.Base(mapPath))
	return assembly, nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func writeFile(path string, w io.WriterTo) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = w.WriteTo(file)
	return err
}

// Assemble reads data from the provided stream and attempts to assemble it
// into an H16 image of the given capacity. A capacity of zero or less
// selects isa.ImageSize. Variables are addressed from just above the
// image. On failure the returned error is the first *Error encountered,
// and the Assembly lists every error.
func Assemble(r io.Reader, filename string, capacity int, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	if out == nil {
		out = os.Stdout
	}

	image := isa.NewImage(capacity)
	a := &assembler{
		instSet:   isa.GetInstructionSet(),
		file:      filename,
		r:         r,
		dataBase:  image.Len() + 1,
		labels:    make(map[string]*Label),
		variables: make(map[string]*Variable),
		symbols:   make([]*Symbol, 0, 32),
		image:     image,
		out:       out,
		verbose:   (options & Verbose) != 0,
		legacy:    (options & Legacy) != 0,
	}

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).tokenize,     // Split the source into classified lines
		(*assembler).firstPass,    // Assign addresses, build label and variable tables
		(*assembler).secondPass,   // Resolve operands, insert mode switches
		(*assembler).generateCode, // Generate the machine code
	}

	// Execute assembler steps, breaking if an error is encountered
	// in any one of them.
	var err error
	for _, step := range steps {
		err = step(a)
		if err != nil || len(a.errors) > 0 {
			break
		}
	}
	if len(a.errors) > 0 {
		err = a.errors[0]
	}

	errs := make([]string, 0, len(a.errors))
	for _, e := range a.errors {
		errs = append(errs, e.Error())
	}

	assembly := &Assembly{
		Code:      a.image.Bytes(),
		Size:      a.size,
		Labels:    deref(a.labelList),
		Variables: deref(a.variableList),
		Symbols:   deref(a.symbols),
		Errors:    errs,
	}

	sourceMap := &SourceMap{
		File:      filename,
		Size:      uint32(a.size),
		CRC:       crc32.ChecksumIEEE(a.image.Bytes()),
		Lines:     a.sourceLines,
		Labels:    a.exportLabels(),
		Variables: a.exportVariables(),
	}

	return assembly, sourceMap, err
}

func deref[T any](list []*T) []T {
	values := make([]T, len(list))
	for i, p := range list {
		values[i] = *p
	}
	return values
}

// Read the assembly code and split it into classified lines.
func (a *assembler) tokenize() error {
	a.logSection("Tokenizing")

	var err error
	a.lines, err = tokenize(a.r)
	if err != nil {
		return err
	}
	for _, l := range a.lines {
		if l.kind != lineBlank {
			a.logLine(l.text, "%s", l.kind)
		}
	}
	return nil
}

// Generate machine code. Each symbol is written at the address assigned
// to it by the first pass.
func (a *assembler) generateCode() error {
	a.logSection("Generating code")

	a.image.Clear()
	addr := 0
	for _, sym := range a.symbols {
		if sym.Length == 0 {
			continue
		}
		if sym.Addr != addr {
			return fmt.Errorf("'%s' on line %d emitted at $%04X, assigned $%04X",
				sym.Name, sym.Line, addr, sym.Addr)
		}

		code := sym.encode()
		if err := a.image.StoreBytes(addr, code); err != nil {
			a.addError(sym.src, ErrImageOverflow, "'%s' at $%04X does not fit in a %d-byte image",
				sym.Name, addr, a.image.Len())
			return nil
		}

		if !sym.synthetic {
			a.sourceLines = append(a.sourceLines, SourceLine{Address: addr, Line: sym.Line})
		}
		a.logSymbol(sym, code)
		addr += len(code)
	}
	a.size = addr
	return nil
}

// In verbose mode, log a string to the output.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a string and its associated line
// of assembly code.
func (a *assembler) logLine(line fstring, format string, args ...any) {
	if a.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(a.out, "%-3d %-3d | %-28s | %s\n", line.row, line.column+1, detail, line.str)
	}
}

// In verbose mode, log the machine code of a symbol.
func (a *assembler) logSymbol(sym *Symbol, code []byte) {
	if a.verbose {
		n := min(len(code), 5)
		a.log("%04X-   %-14s    %s", sym.Addr, byteString(code[:n]), sym.Name)
		a.logBytes(sym.Addr+n, code[n:])
	}
}

// In verbose mode, log a series of bytes with starting address.
func (a *assembler) logBytes(addr int, b []byte) {
	if a.verbose {
		for i, n := 0, len(b); i < n; i += 5 {
			j := min(i+5, n)
			a.log("%04X-*  %s", addr+i, byteString(b[i:j]))
		}
	}
}

// In verbose mode, log a section header to the output.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
