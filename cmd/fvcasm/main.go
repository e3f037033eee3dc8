// main.go - FVC assembler CLI

/*
Invocation mirrors the teacher's two-binary layout (a separate
cmd/ie32asm alongside the emulator proper): <program> <source-path>
<output-path>, exit code 0 on success, non-zero plus a stderr
diagnostic on any validation or I/O failure.
*/

package main

import (
	"fmt"
	"os"

	"github.com/calendis/fvc/asm"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: fvcasm <source-path> <output-path>")
		os.Exit(1)
	}

	sourcePath, outPath := os.Args[1], os.Args[2]

	src, err := os.ReadFile(sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fvcasm: %v\n", err)
		os.Exit(1)
	}

	a, err := asm.New(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fvcasm: %v\n", err)
		os.Exit(1)
	}

	bin, err := a.Assemble()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fvcasm: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outPath, bin, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "fvcasm: %v\n", err)
		os.Exit(1)
	}
}
