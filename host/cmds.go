// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"strings"

	"github.com/beevik/cmd"
)

var cmds *cmd.Tree

// A hostCmd carries the callback and help text for one monitor command.
// It is stored as the command's Data so a selection can be dispatched
// and explained without consulting the command tree again.
type hostCmd struct {
	path        string
	brief       string
	usage       string
	description string
	fn          func(*Host, cmd.Selection) error
}

// All registered commands in display order.
var hostCmds []*hostCmd

func addCommand(tree *cmd.Tree, hc *hostCmd) {
	name := hc.path
	if i := strings.LastIndexByte(hc.path, ' '); i >= 0 {
		name = hc.path[i+1:]
	}
	tree.AddCommand(cmd.CommandDescriptor{
		Name:        name,
		Brief:       hc.brief,
		Description: hc.description,
		Usage:       hc.usage,
		Data:        hc,
	})
	hostCmds = append(hostCmds, hc)
}

func init() {
	root := cmd.NewTree(cmd.TreeDescriptor{Name: "impostor"})

	addCommand(root, &hostCmd{
		path:        "help",
		usage:       "help [<command>]",
		description: "Display help for a command.",
		fn:          (*Host).cmdHelp,
	})

	// Breakpoint commands
	bp := root.AddSubtree(cmd.TreeDescriptor{Name: "breakpoint", Brief: "Breakpoint commands"})
	addCommand(bp, &hostCmd{
		path:        "breakpoint list",
		brief:       "List breakpoints",
		usage:       "breakpoint list",
		description: "List all current breakpoints.",
		fn:          (*Host).cmdBreakpointList,
	})
	addCommand(bp, &hostCmd{
		path:  "breakpoint add",
		brief: "Add a breakpoint",
		usage: "breakpoint add <address>",
		description: "Add a breakpoint at the specified address." +
			" The breakpoint starts enabled.",
		fn: (*Host).cmdBreakpointAdd,
	})
	addCommand(bp, &hostCmd{
		path:        "breakpoint remove",
		brief:       "Remove a breakpoint",
		usage:       "breakpoint remove <address>",
		description: "Remove a breakpoint at the specified address.",
		fn:          (*Host).cmdBreakpointRemove,
	})
	addCommand(bp, &hostCmd{
		path:        "breakpoint enable",
		brief:       "Enable a breakpoint",
		usage:       "breakpoint enable <address>",
		description: "Enable a previously added breakpoint.",
		fn:          (*Host).cmdBreakpointEnable,
	})
	addCommand(bp, &hostCmd{
		path:  "breakpoint disable",
		brief: "Disable a breakpoint",
		usage: "breakpoint disable <address>",
		description: "Disable a previously added breakpoint. This" +
			" prevents the breakpoint from being hit when running the" +
			" CPU.",
		fn: (*Host).cmdBreakpointDisable,
	})

	// Data breakpoint commands
	db := root.AddSubtree(cmd.TreeDescriptor{Name: "databreakpoint", Brief: "Data Breakpoint commands"})
	addCommand(db, &hostCmd{
		path:        "databreakpoint list",
		brief:       "List data breakpoints",
		usage:       "databreakpoint list",
		description: "List all current data breakpoints.",
		fn:          (*Host).cmdDataBreakpointList,
	})
	addCommand(db, &hostCmd{
		path:  "databreakpoint add",
		brief: "Add a data breakpoint",
		usage: "databreakpoint add <address> [<value>]",
		description: "Add a new data breakpoint at the specified" +
			" memory address. When the CPU stores data at this address, the" +
			" breakpoint will stop the CPU. Optionally, a byte value may be" +
			" specified, and the CPU will stop only when this value is" +
			" stored. The data breakpoint starts enabled.",
		fn: (*Host).cmdDataBreakpointAdd,
	})
	addCommand(db, &hostCmd{
		path:  "databreakpoint remove",
		brief: "Remove a data breakpoint",
		usage: "databreakpoint remove <address>",
		description: "Remove a previously added data breakpoint at" +
			" the specified memory address.",
		fn: (*Host).cmdDataBreakpointRemove,
	})
	addCommand(db, &hostCmd{
		path:        "databreakpoint enable",
		brief:       "Enable a data breakpoint",
		usage:       "databreakpoint enable <address>",
		description: "Enable a previously added data breakpoint.",
		fn:          (*Host).cmdDataBreakpointEnable,
	})
	addCommand(db, &hostCmd{
		path:        "databreakpoint disable",
		brief:       "Disable a data breakpoint",
		usage:       "databreakpoint disable <address>",
		description: "Disable a previously added data breakpoint.",
		fn:          (*Host).cmdDataBreakpointDisable,
	})

	addCommand(root, &hostCmd{
		path:  "disassemble",
		brief: "Disassemble code",
		usage: "disassemble [<address>] [<lines>]",
		description: "Disassemble machine code starting at the requested" +
			" address. The number of instruction lines to disassemble may be" +
			" specified as an option. If no address is specified, the" +
			" disassembly continues from where the last disassembly left off.",
		fn: (*Host).cmdDisassemble,
	})
	addCommand(root, &hostCmd{
		path:  "execute",
		brief: "Execute a script file",
		usage: "execute <filename>",
		description: "Load a script file from disk and execute the" +
			" commands it contains.",
		fn: (*Host).cmdExecute,
	})
	addCommand(root, &hostCmd{
		path:  "load",
		brief: "Load a binary file",
		usage: "load <filename> <address>",
		description: "Load the contents of a raw binary file into the" +
			" emulated system's memory at the specified origin address, and" +
			" set the program counter to the origin.",
		fn: (*Host).cmdLoad,
	})

	// Memory commands
	me := root.AddSubtree(cmd.TreeDescriptor{Name: "memory", Brief: "Memory commands"})
	addCommand(me, &hostCmd{
		path:  "memory dump",
		brief: "Dump memory at address",
		usage: "memory dump [<address>] [<bytes>]",
		description: "Dump the contents of memory starting from the" +
			" specified address. The number of bytes to dump may be" +
			" specified as an option. If no address is specified, the" +
			" memory dump continues from where the last dump left off.",
		fn: (*Host).cmdMemoryDump,
	})
	addCommand(me, &hostCmd{
		path:  "memory set",
		brief: "Set memory at address",
		usage: "memory set <address> <byte> [<byte> ...]",
		description: "Set the contents of memory starting from the" +
			" specified address. The values to assign should be a series" +
			" of space-separated byte values.",
		fn: (*Host).cmdMemorySet,
	})
	addCommand(me, &hostCmd{
		path:  "memory copy",
		brief: "Copy memory",
		usage: "memory copy <dst addr> <src addr begin> <src addr end>",
		description: "Copy memory from one range of addresses to another." +
			" You must specify the destination address, the first byte of" +
			" the source address, and the last byte of the source address.",
		fn: (*Host).cmdMemoryCopy,
	})

	addCommand(root, &hostCmd{
		path:        "quit",
		brief:       "Quit the program",
		usage:       "quit",
		description: "Quit the program.",
		fn:          (*Host).cmdQuit,
	})
	addCommand(root, &hostCmd{
		path:  "register",
		brief: "View or change register values",
		usage: "register [<name> <value>]",
		description: "When used without arguments, this command displays" +
			" the current contents of the CPU registers and disassembles the" +
			" instruction at the current program counter address. When used" +
			" with arguments, this command changes the value of a register or" +
			" one of the CPU's status flags. Allowed register names include" +
			" A, X, Y, PC and SP. Allowed status flag names include" +
			" N (Sign), Z (Zero), C (Carry), I (InterruptDisable)," +
			" D (Decimal) and V (Overflow).",
		fn: (*Host).cmdRegister,
	})
	addCommand(root, &hostCmd{
		path:  "run",
		brief: "Run the CPU",
		usage: "run [<address>]",
		description: "Run the CPU until a breakpoint is hit, an invalid" +
			" opcode halts it, or the user types Ctrl-C.",
		fn: (*Host).cmdRun,
	})
	addCommand(root, &hostCmd{
		path:  "set",
		brief: "Set a configuration variable",
		usage: "set [<var> <value>]",
		description: "Set the value of a configuration variable. To see" +
			" the current values of all configuration variables, type set" +
			" without any arguments.",
		fn: (*Host).cmdSet,
	})

	// Step commands
	st := root.AddSubtree(cmd.TreeDescriptor{Name: "step", Brief: "Step the debugger"})
	addCommand(st, &hostCmd{
		path:  "step in",
		brief: "Step into next instruction",
		usage: "step in [<count>]",
		description: "Step the CPU by a single instruction. If the" +
			" instruction is a subroutine call, step into the subroutine." +
			" The number of steps may be specified as an option.",
		fn: (*Host).cmdStepIn,
	})
	addCommand(st, &hostCmd{
		path:  "step over",
		brief: "Step over next instruction",
		usage: "step over [<count>]",
		description: "Step the CPU by a single instruction. If the" +
			" instruction is a subroutine call, step over the subroutine." +
			" The number of steps may be specified as an option.",
		fn: (*Host).cmdStepOver,
	})
	addCommand(st, &hostCmd{
		path:  "step out",
		brief: "Step out of the current subroutine",
		usage: "step out",
		description: "Step the CPU until the currently running subroutine" +
			" returns.",
		fn: (*Host).cmdStepOut,
	})

	// Add command shortcuts.
	root.AddShortcut("b", "breakpoint")
	root.AddShortcut("bp", "breakpoint")
	root.AddShortcut("ba", "breakpoint add")
	root.AddShortcut("br", "breakpoint remove")
	root.AddShortcut("bl", "breakpoint list")
	root.AddShortcut("be", "breakpoint enable")
	root.AddShortcut("bd", "breakpoint disable")
	root.AddShortcut("d", "disassemble")
	root.AddShortcut("db", "databreakpoint")
	root.AddShortcut("dbp", "databreakpoint")
	root.AddShortcut("dbl", "databreakpoint list")
	root.AddShortcut("dba", "databreakpoint add")
	root.AddShortcut("dbr", "databreakpoint remove")
	root.AddShortcut("dbe", "databreakpoint enable")
	root.AddShortcut("dbd", "databreakpoint disable")
	root.AddShortcut("m", "memory dump")
	root.AddShortcut("mc", "memory copy")
	root.AddShortcut("ms", "memory set")
	root.AddShortcut("r", "register")
	root.AddShortcut("s", "step over")
	root.AddShortcut("si", "step in")
	root.AddShortcut("so", "step out")
	root.AddShortcut("x", "execute")
	root.AddShortcut("?", "help")
	root.AddShortcut(".", "register")

	cmds = root
}
