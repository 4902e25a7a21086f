// Package ir implements Mash's intermediate representation (spec §4.3): the
// linear instruction/expression set the lowering package emits and the
// evaluator walks. Every node exposes Exec (the side effect) and String
// (the `-s` dump form).
//
// Exec's error channel carries two distinct things, matching spec §9's
// design note that control flow should never ride on a generic error type:
// a *Signal for Break/Continue/Return, and any other error for a genuine
// failure (which the evaluator lets propagate and report).
package ir

import (
	"fmt"
	"strings"

	"mash/internal/symtab"
	"mash/internal/value"
)

// Mode distinguishes lowering's "analyzer" pass from the evaluator's
// "runtime" pass (spec §4.5); each Context reports its own mode, and no
// instruction's Exec branches on it.
type Mode int

const (
	Analyzer Mode = iota
	Runtime
)

// Context is everything an instruction's Exec needs from its host: the
// symbol table, the current mode, and the output sinks. The evaluator
// package implements it; ir never imports evaluator, only symtab/value,
// breaking the cycle spec §9 calls out.
type Context interface {
	Table() *symtab.SymbolTable
	Mode() Mode
	Print(s string)
	Note(s string)
	Doc(s string)
	// Import loads and splices a module's IR by name (spec §4.7).
	Import(path, alias string) error
	// NewInstance builds a fresh Class bound to cls, seeding its attribute
	// map from cls and its Extends chain (spec §3/§4.4) — implemented by
	// the evaluator, which alone knows how to resolve and flatten a class's
	// inherited members.
	NewInstance(cls *symtab.Frame) (*value.Class, error)
}

// Operand is either a literal constant or a name/path to resolve against
// the symbol table at Exec time.
type Operand struct {
	Const    value.Value
	Path     []string
	Global   bool
	NonLocal bool
}

// Const builds a literal operand.
func Const(v value.Value) Operand { return Operand{Const: v} }

// Name builds a plain-name operand.
func Name(path ...string) Operand { return Operand{Path: path} }

func (o Operand) String() string {
	if o.Const != nil {
		return o.Const.ToLiteralString()
	}
	prefix := ""
	if o.Global {
		prefix = "::"
	} else if o.NonLocal {
		prefix = "@"
	}
	return prefix + strings.Join(o.Path, "::")
}

func resolve(ctx Context, o Operand) (value.Value, error) {
	if o.Const != nil {
		return o.Const, nil
	}
	return ctx.Table().Get(o.Path, o.Global, o.NonLocal)
}

func assign(ctx Context, dst string, v value.Value) error {
	return ctx.Table().Assign([]string{dst}, false, false, v)
}

// SignalKind distinguishes the three non-local exits spec §4.3 names.
type SignalKind int

const (
	SigBreak SignalKind = iota
	SigContinue
	SigReturn
)

// Signal is the dedicated control-flow channel for Break/Continue/Return
// (spec §9): it travels as an error so Exec's signature stays uniform, but
// the evaluator type-asserts for it before treating anything as a real
// failure. Frames is Return's running count of block layers crossed.
type Signal struct {
	Kind   SignalKind
	Value  value.Value
	Frames int
}

func (s *Signal) Error() string {
	switch s.Kind {
	case SigBreak:
		return "break outside loop"
	case SigContinue:
		return "continue outside loop"
	default:
		return "return outside function"
	}
}

// AsSignal type-asserts err as a *Signal, nil otherwise.
func AsSignal(err error) *Signal {
	if s, ok := err.(*Signal); ok {
		return s
	}
	return nil
}

// Stmt is any executable IR node.
type Stmt interface {
	Exec(ctx Context) error
	String() string
}

// Block runs each statement in order, the ir package's equivalent of a
// lowered `code_block`.
type Block []Stmt

func (b Block) Exec(ctx Context) error {
	for _, s := range b {
		if err := s.Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (b Block) String() string {
	lines := make([]string, len(b))
	for i, s := range b {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}

// ---- data movement ----

// AssignVar is `dst = src` (spec §4.3); Src is cloned for primitives so
// assignment has copy, not alias, semantics.
type AssignVar struct {
	Dst string
	Src Operand
}

func (a *AssignVar) Exec(ctx Context) error {
	v, err := resolve(ctx, a.Src)
	if err != nil {
		return err
	}
	return assign(ctx, a.Dst, value.Clone(v))
}

func (a *AssignVar) String() string { return fmt.Sprintf("ASSIGN %s, %s", a.Src, a.Dst) }

// StoreVar is `path = src` for a scoped/global/nonlocal assignment target
// (spec §4.1's `::name`/`@name` forms and dotted `a::b` paths) — unlike
// AssignVar's single local-name Dst, Path carries the full segment list plus
// the Global/NonLocal qualifiers symtab.SymbolTable.Assign needs to pick the
// right frame.
type StoreVar struct {
	Path     []string
	Global   bool
	NonLocal bool
	Src      Operand
}

func (a *StoreVar) Exec(ctx Context) error {
	v, err := resolve(ctx, a.Src)
	if err != nil {
		return err
	}
	return ctx.Table().Assign(a.Path, a.Global, a.NonLocal, value.Clone(v))
}

func (a *StoreVar) String() string {
	return fmt.Sprintf("STORE %s, %s", a.Src, Operand{Path: a.Path, Global: a.Global, NonLocal: a.NonLocal})
}

// AssignMultiple is `(d1, d2, ...) = src`; src must evaluate to a List of
// matching length (spec §4.3).
type AssignMultiple struct {
	Dst []string
	Src Operand
}

func (a *AssignMultiple) Exec(ctx Context) error {
	v, err := resolve(ctx, a.Src)
	if err != nil {
		return err
	}
	list, ok := v.(*value.List)
	if !ok {
		return typeError("multi-assign requires a List, got '" + v.TypeName() + "'")
	}
	if len(list.Elements) != len(a.Dst) {
		return typeError(fmt.Sprintf("multi-assign shape mismatch: %d names, %d values", len(a.Dst), len(list.Elements)))
	}
	if err := list.Update(tableResolver{ctx}); err != nil {
		return err
	}
	for i, name := range a.Dst {
		if err := assign(ctx, name, value.Clone(list.Elements[i].Value)); err != nil {
			return err
		}
	}
	return nil
}

func (a *AssignMultiple) String() string {
	return fmt.Sprintf("MASSIGN %s, (%s)", a.Src, strings.Join(a.Dst, ", "))
}

type tableResolver struct{ ctx Context }

func (r tableResolver) Resolve(path []string) (value.Value, error) {
	return r.ctx.Table().Get(path, false, false)
}
