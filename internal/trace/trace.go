// Package trace implements Mash's `-v` verbose debug trace (spec §1),
// modeled on the teacher's ad hoc log.Printf debug lines in its CLI entry
// point rather than a logging framework: a *log.Logger writing to stderr,
// gated by a bool.
package trace

import (
	"log"
	"os"

	"mash/internal/ir"
)

// Logger is the evaluator's optional Tracer.
type Logger struct {
	enabled bool
	log     *log.Logger
}

// New returns a Logger; enabled false makes every call a no-op, so callers
// can construct one unconditionally and let `-v` toggle it.
func New(enabled bool) *Logger {
	return &Logger{enabled: enabled, log: log.New(os.Stderr, "mash: ", 0)}
}

// Trace logs one top-level IR statement before it executes, reusing the
// same String() form `-s` dumps (spec §4.3).
func (l *Logger) Trace(stmt ir.Stmt) {
	if !l.enabled {
		return
	}
	l.log.Printf("exec: %s", stmt.String())
}

// Printf logs an arbitrary diagnostic line (module resolution, dispatch
// decisions) when enabled.
func (l *Logger) Printf(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.log.Printf(format, args...)
}
