// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/term"
	"github.com/golang/glog"
	"github.com/h16asm/h16/asm"
	"github.com/h16asm/h16/disasm"
	"github.com/h16asm/h16/host"
	"github.com/h16asm/h16/isa"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
)

type assembleFlags struct {
	output   string
	legacy   bool
	verbose  bool
	writeMap bool
	dump     bool
	capacity int
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var f assembleFlags

	root := &cobra.Command{
		Use:   "h16asm <file>",
		Short: "Assemble an H16 source file into a .h16 image",
		Long: "h16asm assembles H16 assembly source into a fixed-size image.\n" +
			"The image is written next to the source with the extension\n" +
			"replaced by .h16 unless -o names another file.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			return runAssemble(args[0], &f, stdout)
		},
	}
	root.Flags().StringVarP(&f.output, "output", "o", "", "image file to write")
	root.Flags().BoolVar(&f.legacy, "legacy", false, "resolve unknown names silently instead of failing")
	root.Flags().BoolVar(&f.verbose, "verbose", false, "print the assembler's progress")
	root.Flags().BoolVar(&f.writeMap, "map", false, "also write a source map")
	root.Flags().BoolVar(&f.dump, "dump", false, "pretty-print the label, variable and symbol tables")
	root.Flags().IntVar(&f.capacity, "capacity", isa.ImageSize, "image capacity in bytes")
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	root.AddCommand(newDisasmCmd(stdout), newShellCmd(stdout))
	return root
}

func runAssemble(path string, f *assembleFlags, stdout io.Writer) error {
	var options asm.Option
	if f.legacy {
		options |= asm.Legacy
	}
	if f.verbose {
		options |= asm.Verbose
	}
	if f.writeMap {
		options |= asm.WriteSourceMap
	}

	glog.V(1).Infof("assembling %s (capacity %d, options %#x)", path, f.capacity, options)
	assembly, err := asm.AssembleFile(path, f.output, f.capacity, options, stdout)
	if err != nil {
		return fmt.Errorf("failed to assemble '%s': %w", path, err)
	}

	if f.dump {
		p := pp.New()
		p.SetColoringEnabled(false)
		p.SetOutput(stdout)
		p.Println(assembly.Labels)
		p.Println(assembly.Variables)
		p.Println(assembly.Symbols)
	}
	return nil
}

func newDisasmCmd(stdout io.Writer) *cobra.Command {
	var capacity int
	c := &cobra.Command{
		Use:   "disasm <file.h16>",
		Short: "Disassemble an image file",
		Long: "Disassemble the code of an image file. The length of the code is\n" +
			"taken from the image's source map when one exists; otherwise\n" +
			"trailing zero bytes are ignored.",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runDisasm(args[0], capacity, stdout)
		},
	}
	c.Flags().IntVar(&capacity, "capacity", isa.ImageSize, "image capacity in bytes")
	return c
}

func runDisasm(path string, capacity int, stdout io.Writer) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	image := isa.NewImage(capacity)
	if _, err := image.ReadFrom(file); err != nil {
		return err
	}

	size := codeSize(image)
	if sm, err := readSourceMap(path); err == nil {
		size = int(sm.Size)
	} else {
		glog.V(1).Infof("no source map for %s: %v", path, err)
	}

	for addr := 0; addr < size; {
		line, next := disasm.Disassemble(image, addr)
		fmt.Fprintf(stdout, "%04X- %s\n", addr, line)
		addr = next
	}
	return nil
}

// Return the length of the image with trailing zero bytes removed.
func codeSize(image *isa.Image) int {
	b := image.Bytes()
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return n
}

func readSourceMap(imagePath string) (*asm.SourceMap, error) {
	mapPath := strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + asm.SourceMapExt
	file, err := os.Open(mapPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sm := &asm.SourceMap{}
	if _, err := sm.ReadFrom(file); err != nil {
		return nil, err
	}
	return sm, nil
}

func newShellCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "shell [script ...]",
		Short: "Run host commands from scripts, then interactively",
		RunE: func(c *cobra.Command, args []string) error {
			h := host.New()

			// Run commands contained in command-line files.
			for _, filename := range args {
				file, err := os.Open(filename)
				if err != nil {
					return err
				}
				h.RunCommands(file, stdout, false)
				file.Close()
			}

			// Run commands interactively.
			h.RunCommands(os.Stdin, stdout, term.IsTerminal(int(os.Stdin.Fd())))
			return nil
		},
	}
}

func main() {
	defer glog.Flush()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		glog.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		glog.Flush()
		os.Exit(1)
	}
}
