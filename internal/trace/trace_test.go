package trace

import (
	"os"
	"testing"

	"mash/internal/ir"
)

type fakeStmt struct{ s string }

func (f fakeStmt) Exec(ir.Context) error { return nil }
func (f fakeStmt) String() string        { return f.s }

func TestTraceDisabledIsNoOp(t *testing.T) {
	l := New(false)
	// Should not panic or write anything observable; nothing to assert on
	// stderr directly, so this just exercises the no-op path.
	l.Trace(fakeStmt{"PRINT x"})
	l.Printf("diag %d", 1)
}

func TestTraceEnabledWritesToStderr(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	orig := os.Stderr
	os.Stderr = w
	l := New(true)
	os.Stderr = orig

	l.Trace(fakeStmt{"PRINT x"})
	w.Close()

	buf := make([]byte, 256)
	n, _ := r.Read(buf)
	out := string(buf[:n])
	if out == "" {
		t.Error("expected Trace to write a line to stderr when enabled")
	}
}
