// errors.go - typed fatal diagnostics for the FVC core

package machine

import "fmt"

// Subsystem tags a Fault to the component that raised it, matching the
// four message tables the original implementation kept per-component
// (memory_msg, bus_msg, processor_msg, display_msg), plus a loader tag
// for binary-header checks.
type Subsystem string

const (
	SubsystemMemory    Subsystem = "memory"
	SubsystemBus       Subsystem = "bus"
	SubsystemProcessor Subsystem = "processor"
	SubsystemDisplay   Subsystem = "display"
	SubsystemLoader    Subsystem = "loader"
)

// Fault is the single error type every fatal condition in the machine
// surfaces as. The core never panics on a data-dependent condition; a
// Fault always identifies the subsystem, a short message and the
// offending arguments, mirroring the original's "<subsystem> message:
// <msg> <args...>" diagnostics.
type Fault struct {
	Subsystem Subsystem
	Message   string
	Args      []any
}

func (f *Fault) Error() string {
	if len(f.Args) == 0 {
		return fmt.Sprintf("%s: %s", f.Subsystem, f.Message)
	}
	return fmt.Sprintf("%s: %s %v", f.Subsystem, f.Message, f.Args)
}

func fault(sub Subsystem, msg string, args ...any) *Fault {
	return &Fault{Subsystem: sub, Message: msg, Args: args}
}
