// errors.go - typed diagnostics for the assembler

package asm

import "fmt"

// ErrorKind tags a Fault as the two categories the original compiler's
// print_err distinguished: a malformed line versus a line that parses
// but fails a semantic rule (line ordering, unresolved label).
type ErrorKind string

const (
	ErrSyntax ErrorKind = "Syntax error"
	ErrValue  ErrorKind = "Value error"
)

// Fault is the single error type the assembler returns. It carries a
// line number and the offending token or value; the full text of the
// source line is included only for a line that has no operator.
type Fault struct {
	Kind    ErrorKind
	Line    int
	Message string
	Args    []any
}

func (f *Fault) Error() string {
	if len(f.Args) == 0 {
		return fmt.Sprintf("%s: %s at line %d", f.Kind, f.Message, f.Line)
	}
	return fmt.Sprintf("%s: %s %v at line %d", f.Kind, f.Message, f.Args, f.Line)
}

func fault(kind ErrorKind, line int, msg string, args ...any) *Fault {
	return &Fault{Kind: kind, Line: line, Message: msg, Args: args}
}
