// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements an interactive shell around the H16 assembler.
//
// Within the host it is possible to assemble source files, load assembled
// images and their source maps, disassemble the image, dump its contents,
// and look up the labels and variables of the loaded program.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/beevik/prefixtree/v2"
	"github.com/k0kubun/pp/v3"

	"github.com/h16asm/h16/asm"
	"github.com/h16asm/h16/disasm"
	"github.com/h16asm/h16/isa"
)

var errQuit = errors.New("exiting program")

// A Host holds an H16 image, the source map that describes it, and the
// settings of the shell.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	image       *isa.Image
	sourceMap   *asm.SourceMap
	symbols     *prefixtree.Tree[int]
	labelAt     map[int]string
	lastCmd     *cmd.Command
	lastArgs    []string
	settings    *settings
}

// New creates a new host with an empty image.
func New() *Host {
	return &Host{
		image:    isa.NewImage(0),
		settings: newSettings(),
	}
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the next command to be entered. An empty line repeats
// the previous command.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	defer h.flush()

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var n cmd.Node
		var args []string
		if strings.TrimSpace(line) != "" {
			n, args, err = cmds.Lookup(line)
			switch {
			case errors.Is(err, cmd.ErrNotFound):
				h.println("Command not found.")
				continue
			case errors.Is(err, cmd.ErrAmbiguous):
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			n, args = h.lastCmd, h.lastArgs
		}

		c, ok := n.(*cmd.Command)
		if !ok {
			if n != nil {
				n.DisplayHelp(h.output)
				h.flush()
			}
			continue
		}
		h.lastCmd, h.lastArgs = c, args

		handler := c.Data.(func(*Host, []string) error)
		if err := handler(h, args); err != nil {
			break
		}
	}
}

// Load reads an image file and, if one exists next to it, its source map.
func (h *Host) Load(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	n, err := h.image.ReadFrom(file)
	if err != nil {
		return err
	}
	h.printf("Loaded '%s' ($%04X bytes).\n", filepath.Base(filename), n)

	h.sourceMap, h.symbols, h.labelAt = nil, nil, nil
	h.settings.NextDisasmAddr, h.settings.NextMemDumpAddr = 0, 0

	mapFilename := replaceExt(filename, asm.SourceMapExt)
	mapFile, err := os.Open(mapFilename)
	if err != nil {
		return nil
	}
	defer mapFile.Close()

	sourceMap := &asm.SourceMap{}
	if _, err := sourceMap.ReadFrom(mapFile); err != nil {
		h.printf("Failed to read '%s': %v\n", filepath.Base(mapFilename), err)
		return nil
	}
	h.setSourceMap(sourceMap)
	h.printf("Loaded '%s' source map.\n", filepath.Base(mapFilename))
	return nil
}

func (h *Host) setSourceMap(s *asm.SourceMap) {
	h.sourceMap = s
	h.symbols = prefixtree.New[int]()
	h.labelAt = make(map[int]string)
	for _, e := range s.Variables {
		h.symbols.Add(e.Name, e.Address)
	}
	for _, e := range s.Labels {
		h.symbols.Add(e.Name, e.Address)
		h.labelAt[e.Address] = e.Name
	}
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) cmdHelp(args []string) error {
	if err := cmds.GetHelp(h.output, args); err != nil {
		h.printf("%v.\n", err)
	}
	h.flush()
	return nil
}

func (h *Host) cmdAssemble(args []string) error {
	if len(args) < 1 {
		h.displayUsage()
		return nil
	}

	filename := defaultExt(args[0], ".asm")

	options := asm.WriteSourceMap
	if h.settings.Verbose {
		options |= asm.Verbose
	}
	if h.settings.Legacy {
		options |= asm.Legacy
	}

	_, err := asm.AssembleFile(filename, "", 0, options, h.output)
	if err != nil {
		h.printf("Failed to assemble '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	binFilename := replaceExt(filename, asm.ImageExt)
	if err := h.Load(binFilename); err != nil {
		h.printf("Failed to load '%s': %v\n", filepath.Base(binFilename), err)
	}
	return nil
}

func (h *Host) cmdLoad(args []string) error {
	if len(args) < 1 {
		h.displayUsage()
		return nil
	}

	filename := defaultExt(args[0], asm.ImageExt)
	if err := h.Load(filename); err != nil {
		h.printf("Failed to load '%s': %v\n", filepath.Base(filename), err)
	}
	return nil
}

func (h *Host) cmdDisassemble(args []string) error {
	if len(args) == 0 {
		args = []string{"$"}
	}

	addr := int(h.settings.NextDisasmAddr)
	if args[0] != "$" {
		a, err := h.parseAddr(args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(args) > 1 {
		l, err := h.parseNumber(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = l
	}

	for i := 0; i < lines && addr < h.image.Len(); i++ {
		var d string
		d, addr = h.disassemble(addr)
		h.println(d)
	}

	h.settings.NextDisasmAddr = uint16(addr)
	h.lastArgs = []string{"$", strconv.Itoa(lines)}
	return nil
}

func (h *Host) cmdMemoryDump(args []string) error {
	if len(args) == 0 {
		args = []string{"$"}
	}

	addr := int(h.settings.NextMemDumpAddr)
	if args[0] != "$" {
		a, err := h.parseAddr(args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	bytes := h.settings.MemDumpBytes
	if len(args) > 1 {
		var err error
		bytes, err = h.parseNumber(args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	h.dumpMemory(addr, bytes)

	h.settings.NextMemDumpAddr = uint16(addr + bytes)
	h.lastArgs = []string{"$", strconv.Itoa(bytes)}
	return nil
}

func (h *Host) cmdSymbolsList(args []string) error {
	if h.sourceMap == nil {
		h.println("No symbols loaded.")
		return nil
	}
	h.displayExports("Labels", h.sourceMap.Labels, "")
	h.displayExports("Variables", h.sourceMap.Variables, "")
	return nil
}

func (h *Host) cmdSymbolsFind(args []string) error {
	if len(args) < 1 {
		h.displayUsage()
		return nil
	}
	if h.sourceMap == nil {
		h.println("No symbols loaded.")
		return nil
	}
	h.displayExports("Labels", h.sourceMap.Labels, args[0])
	h.displayExports("Variables", h.sourceMap.Variables, args[0])
	return nil
}

func (h *Host) cmdSymbolsDump(args []string) error {
	if h.sourceMap == nil {
		h.println("No symbols loaded.")
		return nil
	}
	p := pp.New()
	p.SetColoringEnabled(false)
	p.SetOutput(h.output)
	p.Println(h.sourceMap)
	h.flush()
	return nil
}

func (h *Host) cmdQuit(args []string) error {
	return errQuit
}

func (h *Host) cmdSet(args []string) error {
	switch len(args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage()

	default:
		value := strings.Join(args[1:], " ")
		name, err := h.settings.Set(args[0], value, h.parseNumber)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.printf("%s updated.\n", name)
	}
	return nil
}

// Parse a number. A "$" or "0x" prefix selects hexadecimal, as does the
// HexMode setting.
func (h *Host) parseNumber(s string) (int, error) {
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"):
		s, base = s[2:], 16
	case h.settings.HexMode:
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid number '%s'", s)
	}
	return int(v), nil
}

// Parse an address given as a number or as the unambiguous prefix of a
// label or variable name.
func (h *Host) parseAddr(s string) (int, error) {
	if v, err := h.parseNumber(s); err == nil {
		return v, nil
	}
	if h.symbols == nil {
		return 0, fmt.Errorf("invalid address '%s'", s)
	}
	addr, err := h.symbols.FindValue(s)
	if err != nil {
		return 0, fmt.Errorf("symbol '%s': %v", s, err)
	}
	return addr, nil
}

func (h *Host) disassemble(addr int) (str string, next int) {
	var line string
	line, next = disasm.Disassemble(h.image, addr)

	b := make([]byte, min(next-addr, 5))
	h.image.LoadBytes(addr, b)
	str = fmt.Sprintf("%04X-   %-14s    %s", addr, codeString(b), line)

	if label, ok := h.labelAt[addr]; ok {
		str = fmt.Sprintf("%s:\n%s", label, str)
	}
	return str, next
}

func (h *Host) dumpMemory(addr0, bytes int) {
	if bytes <= 0 || addr0 >= h.image.Len() {
		return
	}
	addr1 := min(addr0+bytes, h.image.Len()) - 1

	buf := []byte("    -" + strings.Repeat(" ", 35))

	// Don't align display for short dumps.
	if addr1-addr0 < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := addr0, 6, 32; a <= addr1; a, c1, c2 = a+1, c1+3, c2+1 {
			m := h.image.LoadByte(a)
			byteToBuf(m, buf[c1:c1+2])
			buf[c2] = toPrintableChar(m)
		}
		h.println(strings.TrimRight(string(buf), " "))
		return
	}

	// Align addr0 and addr1 to 8-byte boundaries.
	start := addr0 &^ 7
	stop := (addr1 + 8) &^ 7

	for a := start; a < stop; {
		addrToBuf(a, buf[0:4])
		for c1, c2 := 6, 32; c1 < 29; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= addr0 && a <= addr1 {
				m := h.image.LoadByte(a)
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			} else {
				buf[c1] = ' '
				buf[c1+1] = ' '
				buf[c2] = ' '
			}
		}
		h.println(strings.TrimRight(string(buf), " "))
	}
}

func (h *Host) displayExports(title string, exports []asm.Export, prefix string) {
	var matches []asm.Export
	for _, e := range exports {
		if strings.HasPrefix(e.Name, prefix) {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return
	}
	h.printf("%s:\n", title)
	for _, e := range matches {
		h.printf("    %-16s $%04X\n", e.Name, e.Address)
	}
}

// Display the usage of the command being run.
func (h *Host) displayUsage() {
	h.lastCmd.DisplayUsage(h.output)
	h.flush()
}
