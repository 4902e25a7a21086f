package ir

import (
	"fmt"
	"strings"

	"mash/internal/value"
)

// Branch is a control-construct body plus whether the generator already
// gave it its own frame (a literal `{ ... }` code_block) — if so the
// construct must not push a second one (spec §4.4).
type Branch struct {
	Body     Block
	OwnFrame bool
}

// runBlock executes body inside a fresh frame unless ownFrame, applying
// spec §4.3/§9's Return-vs-Break/Continue asymmetry: a propagating Return
// skips its own pop and increments the signal's frame counter, leaving
// cleanup to the function dispatcher (ir's FunCall); Break/Continue and
// genuine errors pop immediately before propagating.
func runBlock(ctx Context, body Block, ownFrame bool) error {
	if !ownFrame {
		ctx.Table().Push(false)
	}
	err := body.Exec(ctx)
	if err == nil {
		if !ownFrame {
			ctx.Table().Pop(1)
		}
		return nil
	}
	if sig := AsSignal(err); sig != nil && sig.Kind == SigReturn {
		sig.Frames++
		return sig
	}
	if !ownFrame {
		ctx.Table().Pop(1)
	}
	return err
}

// runLoopBody runs one loop iteration's body and reports whether the loop
// should stop (Break) without itself producing an error.
func runLoopBody(ctx Context, body Branch) (brk bool, err error) {
	e := runBlock(ctx, body.Body, body.OwnFrame)
	if e == nil {
		return false, nil
	}
	if sig := AsSignal(e); sig != nil {
		switch sig.Kind {
		case SigBreak:
			return true, nil
		case SigContinue:
			return false, nil
		default:
			return false, sig
		}
	}
	return false, e
}

// ElifClause is one `elif` arm.
type ElifClause struct {
	Cond   Operand
	Branch Branch
}

// If is `if cond {..} elif cond {..} else {..}` (spec §4.3).
type If struct {
	Cond  Operand
	Then  Branch
	Elifs []ElifClause
	Else  *Branch
}

func (i *If) Exec(ctx Context) error {
	c, err := resolve(ctx, i.Cond)
	if err != nil {
		return err
	}
	b, err := value.AsBool(c)
	if err != nil {
		return classify(err)
	}
	if b {
		return runBlock(ctx, i.Then.Body, i.Then.OwnFrame)
	}
	for _, e := range i.Elifs {
		ec, err := resolve(ctx, e.Cond)
		if err != nil {
			return err
		}
		eb, err := value.AsBool(ec)
		if err != nil {
			return classify(err)
		}
		if eb {
			return runBlock(ctx, e.Branch.Body, e.Branch.OwnFrame)
		}
	}
	if i.Else != nil {
		return runBlock(ctx, i.Else.Body, i.Else.OwnFrame)
	}
	return nil
}

func (i *If) String() string { return fmt.Sprintf("IF %s\n%s", i.Cond, i.Then.Body) }

// While is `while cond { ... }`; Recompute is the IR that recomputes
// CondName before each check, including the first, so mutations inside the
// body are observed (spec §4.4).
type While struct {
	CondName  string
	Recompute Block
	Body      Branch
}

func (w *While) Exec(ctx Context) error {
	for {
		if err := w.Recompute.Exec(ctx); err != nil {
			return err
		}
		v, err := ctx.Table().Get([]string{w.CondName}, false, false)
		if err != nil {
			return err
		}
		b, err := value.AsBool(v)
		if err != nil {
			return classify(err)
		}
		if !b {
			return nil
		}
		brk, err := runLoopBody(ctx, w.Body)
		if err != nil {
			return err
		}
		if brk {
			return nil
		}
	}
}

func (w *While) String() string { return fmt.Sprintf("WHILE %s\n%s", w.CondName, w.Body.Body) }

// DoWhile is `do { ... } while cond`; the body always runs at least once.
type DoWhile struct {
	Body      Branch
	CondName  string
	Recompute Block
}

func (d *DoWhile) Exec(ctx Context) error {
	for {
		brk, err := runLoopBody(ctx, d.Body)
		if err != nil {
			return err
		}
		if brk {
			return nil
		}
		if err := d.Recompute.Exec(ctx); err != nil {
			return err
		}
		v, err := ctx.Table().Get([]string{d.CondName}, false, false)
		if err != nil {
			return err
		}
		b, err := value.AsBool(v)
		if err != nil {
			return classify(err)
		}
		if !b {
			return nil
		}
	}
}

func (d *DoWhile) String() string { return fmt.Sprintf("DOWHILE %s\n%s", d.CondName, d.Body.Body) }

// stopIterationType is the class-instance type name that ends a `for`
// loop over a Class implementing the `__next` iteration protocol
// (spec §4.4; checked by type name since the sentinel is an ordinary,
// user-constructible instance, not a distinguished Go value).
const stopIterationType = "StopIteration"

// For is `for v1, v2 : iterable { ... }` (spec §4.3/§4.4); Vars supports
// destructuring when Iterable yields multi-element Lists (Dict entries) or
// when the iterable itself is a List of Lists.
type For struct {
	Vars     []string
	Iterable Operand
	Body     Branch
}

func (f *For) Exec(ctx Context) error {
	v, err := resolve(ctx, f.Iterable)
	if err != nil {
		return err
	}
	switch it := v.(type) {
	case *value.List:
		if err := it.Update(tableResolver{ctx}); err != nil {
			return err
		}
		for _, item := range it.Values() {
			if stop, err := f.step(ctx, item); stop || err != nil {
				return err
			}
		}
		return nil
	case *value.Dict:
		if err := it.Update(tableResolver{ctx}); err != nil {
			return err
		}
		for _, pair := range it.Pairs() {
			if stop, err := f.step(ctx, pair); stop || err != nil {
				return err
			}
		}
		return nil
	case *value.Class:
		for {
			r, found, err := it.Frame.InvokeMethod(it, "__next", nil)
			if err != nil {
				return err
			}
			if !found {
				return typeError("'" + it.TypeName() + "' has no __next method for iteration")
			}
			if r.TypeName() == stopIterationType {
				return nil
			}
			if stop, err := f.step(ctx, r); stop || err != nil {
				return err
			}
		}
	default:
		return typeError("'" + v.TypeName() + "' is not iterable")
	}
}

func (f *For) step(ctx Context, item value.Value) (stop bool, err error) {
	if err := f.bind(ctx, item); err != nil {
		return false, err
	}
	brk, err := runLoopBody(ctx, f.Body)
	return brk, err
}

func (f *For) bind(ctx Context, item value.Value) error {
	if len(f.Vars) == 1 {
		return ctx.Table().Assign([]string{f.Vars[0]}, false, false, value.Clone(item))
	}
	list, ok := item.(*value.List)
	if !ok || len(list.Elements) != len(f.Vars) {
		return typeError("for-loop destructuring shape mismatch")
	}
	for i, name := range f.Vars {
		if err := ctx.Table().Assign([]string{name}, false, false, value.Clone(list.Elements[i].Value)); err != nil {
			return err
		}
	}
	return nil
}

func (f *For) String() string {
	return fmt.Sprintf("FOR %s : %s\n%s", strings.Join(f.Vars, ", "), f.Iterable, f.Body.Body)
}

// BreakStmt/ContinueStmt/ReturnStmt raise the corresponding signal
// (spec §4.3/§9) for the nearest enclosing construct to catch.
type BreakStmt struct{}

func (BreakStmt) Exec(Context) error { return &Signal{Kind: SigBreak} }
func (BreakStmt) String() string     { return "BREAK" }

type ContinueStmt struct{}

func (ContinueStmt) Exec(Context) error { return &Signal{Kind: SigContinue} }
func (ContinueStmt) String() string     { return "CONTINUE" }

// ReturnStmt is `return [value]`; HasValue false means a bare return (Nil).
type ReturnStmt struct {
	Value    Operand
	HasValue bool
}

func (r *ReturnStmt) Exec(ctx Context) error {
	v := value.Value(value.NilValue)
	if r.HasValue {
		rv, err := resolve(ctx, r.Value)
		if err != nil {
			return err
		}
		v = rv
	}
	return &Signal{Kind: SigReturn, Value: v}
}

func (r *ReturnStmt) String() string { return fmt.Sprintf("RETURN %s", r.Value) }
