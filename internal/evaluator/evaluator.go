// Package evaluator drives the Runtime pass over a lowered program (spec
// §4.5): it implements ir.Context the way the lowering package's Generator
// implements it for the Analyzer pass, but where Generator mutates the
// symbol table and contributes nothing executable, Evaluator runs the IR it
// is handed and owns the real output sinks (stdout, notebook, trace).
package evaluator

import (
	"fmt"
	"io"

	mashErr "mash/internal/errors"
	"mash/internal/ir"
	"mash/internal/symtab"
	"mash/internal/value"
)

// Notebook is the narrow capability internal/notebook.Writer satisfies —
// kept as an interface here, the same way value.Frame/value.Resolver decouple
// the value package from symtab, so evaluator never has to import notebook
// directly.
type Notebook interface {
	Print(s string)
	Note(s string)
	Doc(s string)
}

// Tracer is the narrow capability internal/trace.Logger satisfies.
type Tracer interface {
	Trace(stmt ir.Stmt)
}

// Evaluator is the evaluator-package's ir.Context (spec §4.5's "runtime"
// mode): Mode always reports Runtime. NewInstance lives here because it
// runs attribute-inheritance resolution, which the lowering package's
// Generator does not provide. Import is the other way round: the Generator
// resolves every import once, at lowering time, and emits no IR for it, so
// this type's Import is never reached (see DESIGN.md).
type Evaluator struct {
	table *symtab.SymbolTable
	out   io.Writer
	book  Notebook
	trc   Tracer
}

// New returns an Evaluator writing Print output to out.
func New(table *symtab.SymbolTable, out io.Writer) *Evaluator {
	return &Evaluator{table: table, out: out}
}

// WithNotebook routes Print/Note/Doc through book instead of out (spec §6).
func (e *Evaluator) WithNotebook(book Notebook) *Evaluator {
	e.book = book
	return e
}

// WithTrace enables per-statement tracing (spec §1's verbose mode).
func (e *Evaluator) WithTrace(t Tracer) *Evaluator {
	e.trc = t
	return e
}

func (e *Evaluator) Table() *symtab.SymbolTable { return e.table }
func (e *Evaluator) Mode() ir.Mode               { return ir.Runtime }

var _ ir.Context = (*Evaluator)(nil)

func (e *Evaluator) Print(s string) {
	if e.book != nil {
		e.book.Print(s)
		return
	}
	fmt.Fprintln(e.out, s)
}

func (e *Evaluator) Note(s string) {
	if e.book != nil {
		e.book.Note(s)
	}
}

func (e *Evaluator) Doc(s string) {
	if e.book != nil {
		e.book.Doc(s)
	}
}

// Import always fails: every `import` statement is resolved once, eagerly,
// by the lowering package's Generator (which registers the module's space
// directly into the shared symbol table and contributes no IR for it), so a
// well-formed lowered program never emits an instruction that calls this.
func (e *Evaluator) Import(path, alias string) error {
	return mashErr.New(mashErr.Internal, "import '"+path+"' reached the runtime pass — imports must resolve during lowering", mashErr.Location{}, "")
}

// NewInstance builds a fresh Class bound to cls, seeding its attribute map
// from cls's own plain-value bindings and, recursively, each class named in
// cls.Extends (spec §3/§4.4's inheritance rule: a subclass's own bindings
// are seeded last, so they shadow an inherited field of the same name).
func (e *Evaluator) NewInstance(cls *symtab.Frame) (*value.Class, error) {
	inst := value.NewClass(&classInvoker{Frame: cls, eval: e})
	if err := e.seedAttrs(inst, cls, map[*symtab.Frame]bool{}); err != nil {
		return nil, err
	}
	return inst, nil
}

func (e *Evaluator) seedAttrs(inst *value.Class, cls *symtab.Frame, seen map[*symtab.Frame]bool) error {
	if seen[cls] {
		return nil
	}
	seen[cls] = true
	for _, parent := range cls.Extends {
		pf, err := e.resolveClassFrame(parent)
		if err != nil {
			return err
		}
		if err := e.seedAttrs(inst, pf, seen); err != nil {
			return err
		}
	}
	for _, name := range cls.Names() {
		if v, ok := cls.Value(name); ok {
			inst.Attrs.Set(name, value.Clone(v))
		}
	}
	return nil
}

// resolveClassFrame finds the ClassFrame bound to name: first visible from
// the current cursor (the common case — a sibling class in the same scope),
// falling back to the root frame (a top-level base class reached from a
// nested scope's method body).
func (e *Evaluator) resolveClassFrame(name string) (*symtab.Frame, error) {
	if v, err := e.table.Get([]string{name}, false, false); err == nil {
		if f, ok := v.(*symtab.Frame); ok && f.Kind == symtab.ClassFrameKind {
			return f, nil
		}
	}
	if v, ok := e.table.Root().Value(name); ok {
		if f, ok := v.(*symtab.Frame); ok && f.Kind == symtab.ClassFrameKind {
			return f, nil
		}
	}
	return nil, mashErr.New(mashErr.UndefinedReference, "Undefined reference: "+name, mashErr.Location{}, "")
}

// Run executes a fully lowered program's top-level block (spec §4.5),
// tracing each top-level statement if a Tracer is attached. A Signal
// escaping to the top (an unmatched break/continue/return) is a
// malformed-program condition, not a normal result.
func (e *Evaluator) Run(block ir.Block) error {
	for _, stmt := range block {
		if e.trc != nil {
			e.trc.Trace(stmt)
		}
		if err := stmt.Exec(e); err != nil {
			if sig := ir.AsSignal(err); sig != nil {
				return mashErr.New(mashErr.IncorrectDefinition, sig.Error(), mashErr.Location{}, "")
			}
			return err
		}
	}
	return nil
}

// classInvoker adapts a ClassFrame to value.MethodInvoker (spec §4.2/§4.6):
// value can't run code, so a Class's Frame field is this evaluator-owned
// wrapper rather than a bare *symtab.Frame.
type classInvoker struct {
	*symtab.Frame
	eval *Evaluator
}

func (c *classInvoker) InvokeMethod(instance *value.Class, name string, args []value.CallArg) (value.Value, bool, error) {
	recs, defFrame, ok := c.eval.lookupMethod(c.Frame, name)
	if !ok {
		return nil, false, nil
	}
	result, err := ir.InvokeOverloads(c.eval, recs, defFrame, instance, args)
	if err != nil {
		return nil, true, err
	}
	return result, true, nil
}

// lookupMethod searches frame's own overloads first, then each parent in
// Extends, depth-first — spec §4.4's inheritance rule applied to method
// resolution instead of attribute seeding.
func (e *Evaluator) lookupMethod(frame *symtab.Frame, name string) ([]*symtab.FunRecord, *symtab.Frame, bool) {
	if recs, ok := frame.Funcs(name); ok {
		return recs, frame, true
	}
	for _, parent := range frame.Extends {
		pf, err := e.resolveClassFrame(parent)
		if err != nil {
			continue
		}
		if recs, defFrame, ok := e.lookupMethod(pf, name); ok {
			return recs, defFrame, true
		}
	}
	return nil, nil, false
}
