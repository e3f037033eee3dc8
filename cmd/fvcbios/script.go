// script.go - BIOS `script` command: runs a Lua macro of BIOS commands

/*
Supplements spec.md's BIOS command list. The teacher's go.mod lists
github.com/yuin/gopher-lua as a scripting hook with no caller in the
kept reference files; wired here as a small command-macro interpreter
so a test setup or a demo can replay a fixed sequence of BIOS commands
(e.g. "randpal", "loadprog", "dumpimg") from a single .lua file instead
of typing them interactively.
*/

package main

import (
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"
)

// runScript executes a Lua file that calls bios("<command>") zero or
// more times, dispatching each call through run.
func runScript(path string, run func(cmd string) error) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("script: %w", err)
	}

	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("bios", L.NewFunction(func(L *lua.LState) int {
		cmd := L.CheckString(1)
		if err := run(cmd); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}))

	if err := L.DoString(string(src)); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}
