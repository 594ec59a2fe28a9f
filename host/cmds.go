// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import "github.com/beevik/cmd"

var cmds *cmd.Tree

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "h16"})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "help",
		Brief:       "Display help",
		Description: "Display help for a command, or list all commands.",
		Usage:       "help [<command>]",
		Data:        (*Host).cmdHelp,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "assemble",
		Brief: "Assemble a file and load the image",
		Description: "Run the assembler on the specified file, producing" +
			" an image file and a source map file if successful. The image" +
			" and its symbols are then loaded. The Legacy and Verbose" +
			" settings control how the file is assembled.",
		Usage: "assemble <filename>",
		Data:  (*Host).cmdAssemble,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "load",
		Brief: "Load an image file",
		Description: "Load the contents of an image file. If the file has" +
			" an associated source map, its symbols are loaded too.",
		Usage: "load <filename>",
		Data:  (*Host).cmdLoad,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "disassemble",
		Brief: "Disassemble code",
		Description: "Disassemble machine code starting at the requested" +
			" address. The number of instructions to disassemble may be" +
			" specified as an option. Use $ to continue where the last" +
			" disassembly ended.",
		Usage: "disassemble [<address>] [<count>]",
		Data:  (*Host).cmdDisassemble,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. Type the set" +
			" command without a variable name or value to display the current" +
			" values of all configuration variables.",
		Usage: "set [<var> <value>]",
		Data:  (*Host).cmdSet,
	})
	root.AddCommand(cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
		Data:        (*Host).cmdQuit,
	})

	// Memory commands
	mem := root.AddSubtree(cmd.TreeDescriptor{Name: "memory", Brief: "Memory commands"})
	mem.AddCommand(cmd.CommandDescriptor{
		Name:  "dump",
		Brief: "Dump memory at address",
		Description: "Dump the contents of the image starting from the" +
			" specified address. The number of bytes to dump may be" +
			" specified as an option.",
		Usage: "memory dump [<address>] [<bytes>]",
		Data:  (*Host).cmdMemoryDump,
	})

	// Symbol commands
	sym := root.AddSubtree(cmd.TreeDescriptor{Name: "symbols", Brief: "Symbol commands"})
	sym.AddCommand(cmd.CommandDescriptor{
		Name:        "list",
		Brief:       "List labels and variables",
		Description: "List every label and variable of the loaded image.",
		Usage:       "symbols list",
		Data:        (*Host).cmdSymbolsList,
	})
	sym.AddCommand(cmd.CommandDescriptor{
		Name:        "find",
		Brief:       "Find symbols by prefix",
		Description: "List the labels and variables whose names start with a prefix.",
		Usage:       "symbols find <prefix>",
		Data:        (*Host).cmdSymbolsFind,
	})
	sym.AddCommand(cmd.CommandDescriptor{
		Name:        "dump",
		Brief:       "Dump the source map",
		Description: "Pretty-print the source map of the loaded image.",
		Usage:       "symbols dump",
		Data:        (*Host).cmdSymbolsDump,
	})

	// Add command shortcuts.
	root.AddShortcut("a", "assemble")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("m", "memory dump")
	root.AddShortcut("sl", "symbols list")
	root.AddShortcut("sf", "symbols find")
	root.AddShortcut("?", "help")

	cmds = root
}
