// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap describes the mapping between source code line numbers and
// image addresses, along with the addresses of every label and variable.
type SourceMap struct {
	File      string       // name of the assembled source
	Size      uint32       // bytes of machine code in the image
	CRC       uint32       // CRC-32 of the whole image
	Lines     []SourceLine // mappings in address order
	Labels    []Export     // labels in address order
	Variables []Export     // variables in address order
}

// A SourceLine represents a mapping between an image address and the source
// code line used to generate it.
type SourceLine struct {
	Address int // Image address
	Line    int // Source code line number
}

// An Export describes a named address.
type Export struct {
	Name    string
	Address int
}

// Search searches the source map for a mapping with the requested address.
// It returns -1 if no symbol starts at the address.
func (s *SourceMap) Search(addr int) (filename string, line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.File, s.Lines[i].Line
	}
	return "", -1
}

// Find returns the address of the named label or variable. Labels take
// precedence over variables.
func (s *SourceMap) Find(name string) (addr int, ok bool) {
	for _, list := range [][]Export{s.Labels, s.Variables} {
		for _, e := range list {
			if e.Name == name {
				return e.Address, true
			}
		}
	}
	return 0, false
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.MarshalIndent(*s, "", "  ")
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}

func (a *assembler) exportLabels() []Export {
	exports := make([]Export, 0, len(a.labelList))
	for _, l := range a.labelList {
		exports = append(exports, Export{Name: l.Name, Address: l.Addr})
	}
	return sortExports(exports)
}

func (a *assembler) exportVariables() []Export {
	exports := make([]Export, 0, len(a.variableList))
	for _, v := range a.variableList {
		exports = append(exports, Export{Name: v.Name, Address: v.Addr})
	}
	return sortExports(exports)
}

func sortExports(e []Export) []Export {
	sort.SliceStable(e, func(i, j int) bool {
		return e[i].Address < e[j].Address
	})
	return e
}
