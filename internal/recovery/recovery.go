// Package recovery provides the panic-recovery idiom used at every
// process entry point: a recorder-fatal condition prints a diagnostic
// and exits non-zero rather than unwinding into a corrupted trace.
package recovery

import (
	"fmt"
	"os"
	"runtime/debug"
)

// HandlePanic recovers a panic, prints a diagnostic with a stack
// trace to stderr, and exits the process with status 1. Call it via
// defer at the top of main.
func HandlePanic() {
	if r := recover(); r != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, debug.Stack())
		os.Exit(1)
	}
}

// HandlePanicFunc is HandlePanic plus a cleanup hook run before exit,
// e.g. to flush and close a trace file under construction.
func HandlePanicFunc(cleanup func()) {
	if r := recover(); r != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n\nStack trace:\n%s\n", r, debug.Stack())
		if cleanup != nil {
			cleanup()
		}
		os.Exit(1)
	}
}
