// Package symtab implements Mash's frame-stack symbol table (spec §3, §4.1):
// an ordered vector of frames and a cursor index, with path resolution for
// plain names, `::`-scoped names, and the `@`/`::` lookup modifiers.
//
// This package knows nothing about IR or the evaluator — a function's body
// is stored as an opaque interface{} value (set and type-asserted by the
// lowering/evaluator packages), so registering and resolving overloads never
// requires importing ir (spec §9's circular-reference note).
package symtab

import (
	"math"
	"strings"

	mashErr "mash/internal/errors"
	"mash/internal/value"
)

// Kind distinguishes the three frame shapes spec §3 names.
type Kind int

const (
	BlockFrame Kind = iota
	SpaceFrameKind
	ClassFrameKind
)

// ParamSig is one function parameter's dispatch-relevant shape: its type
// constraint list (empty means untyped), its default value expression
// (nil means required), and whether it's the trailing variadic parameter.
type ParamSig struct {
	Name     string
	Types    []string
	Default  value.Value // nil means no default
	Variadic bool
}

func (p ParamSig) HasDefault() bool { return p.Default != nil }

// MaxArgsUnbounded is the MaxArgs sentinel for a variadic overload.
const MaxArgsUnbounded = math.MaxInt32

// FunRecord is one registered overload (spec §4.1 define_fun, §9's sorted
// per-name record list). Body is opaque here; the lowering package stores
// its own IR statement slice and the evaluator type-asserts it back.
type FunRecord struct {
	Name          string
	MinArgs       int
	MaxArgs       int
	Params        []ParamSig
	TypedCount    int // number of typed parameters, used for most-specific-first ordering
	Body          interface{}
	DefiningFrame *Frame
	IsConstructor bool
	Internal      bool
}

type binding struct {
	val   value.Value
	funcs []*FunRecord
}

// Frame is one symbol-table layer. It implements value.Frame (and is thus a
// first-class value.Value) so a SpaceFrame/ClassFrame can be bound and
// printed like any other value; it deliberately does not implement
// value.MethodInvoker — method dispatch requires running code, which lives
// in the evaluator, which wraps a *Frame to satisfy that interface.
type Frame struct {
	Kind      Kind
	Name      string
	Extends   []string
	Shadowing bool

	order    []string
	bindings map[string]*binding
}

func newFrame(kind Kind, name string, shadowing bool) *Frame {
	return &Frame{Kind: kind, Name: name, Shadowing: shadowing, bindings: make(map[string]*binding)}
}

func (f *Frame) TypeName() string {
	switch f.Kind {
	case SpaceFrameKind:
		return "SpaceFrame"
	case ClassFrameKind:
		return "ClassFrame"
	default:
		return "Frame"
	}
}

func (f *Frame) ToString() string {
	switch f.Kind {
	case SpaceFrameKind:
		return "<space " + f.Name + ">"
	case ClassFrameKind:
		return "<class " + f.Name + ">"
	default:
		return "<frame>"
	}
}

func (f *Frame) ToLiteralString() string { return f.ToString() }
func (f *Frame) FrameName() string       { return f.Name }

func (f *Frame) has(name string) bool {
	_, ok := f.bindings[name]
	return ok
}

func (f *Frame) get(name string) (*binding, bool) {
	b, ok := f.bindings[name]
	return b, ok
}

func (f *Frame) put(name string, b *binding) {
	if _, exists := f.bindings[name]; !exists {
		f.order = append(f.order, name)
	}
	f.bindings[name] = b
}

// Names returns the frame's bindings in declaration order (used when seeding
// a Class instance's attribute map from its parents, spec §4.4).
func (f *Frame) Names() []string { return append([]string(nil), f.order...) }

// Value returns the plain-value binding for name in this frame (not walking
// enclosing frames) — used for attribute/member seeding.
func (f *Frame) Value(name string) (value.Value, bool) {
	b, ok := f.get(name)
	if !ok || b.val == nil {
		return nil, false
	}
	return b.val, true
}

// Funcs returns the overload list bound to name in this frame only.
func (f *Frame) Funcs(name string) ([]*FunRecord, bool) {
	b, ok := f.get(name)
	if !ok || b.funcs == nil {
		return nil, false
	}
	return b.funcs, true
}

// SymbolTable is the frame stack plus cursor (spec §3/§4.1).
type SymbolTable struct {
	frames      []*Frame
	cursor      int
	shadowDepth int
	spaces      []*Frame
	classes     []*Frame
}

// New returns a table with a single root block frame.
func New() *SymbolTable {
	return &SymbolTable{frames: []*Frame{newFrame(BlockFrame, "", false)}, cursor: 0}
}

// Top is the cursor frame.
func (st *SymbolTable) Top() *Frame { return st.frames[st.cursor] }

// Cursor is the current cursor index, saved/restored by dispatch.
func (st *SymbolTable) Cursor() int { return st.cursor }

// Root is the global (first) frame.
func (st *SymbolTable) Root() *Frame { return st.frames[0] }

// Push inserts a new block frame at cursor+1 and advances the cursor.
func (st *SymbolTable) Push(shadowing bool) *Frame {
	f := newFrame(BlockFrame, "", shadowing)
	st.insert(f)
	return f
}

func (st *SymbolTable) insert(f *Frame) {
	idx := st.cursor + 1
	frames := make([]*Frame, 0, len(st.frames)+1)
	frames = append(frames, st.frames[:idx]...)
	frames = append(frames, f)
	frames = append(frames, st.frames[idx:]...)
	st.frames = frames
	st.cursor = idx
	if f.Shadowing {
		st.shadowDepth++
	}
}

// Pop removes the cursor frame n times, retreating the cursor each time.
func (st *SymbolTable) Pop(n int) {
	for i := 0; i < n && st.cursor > 0; i++ {
		f := st.frames[st.cursor]
		st.frames = append(st.frames[:st.cursor], st.frames[st.cursor+1:]...)
		st.cursor--
		if f.Shadowing {
			st.shadowDepth--
		}
	}
}

// PushSpace creates and binds a named SpaceFrame under name in the current
// top, appends it to the frame vector, and advances the cursor.
func (st *SymbolTable) PushSpace(name string) (*Frame, error) {
	f := newFrame(SpaceFrameKind, name, true)
	if err := st.declareValue(name, f); err != nil {
		return nil, err
	}
	st.insert(f)
	st.spaces = append(st.spaces, f)
	return f, nil
}

// PopSpace pops the current space frame.
func (st *SymbolTable) PopSpace() {
	if len(st.spaces) > 0 {
		st.spaces = st.spaces[:len(st.spaces)-1]
	}
	st.Pop(1)
}

// CurrentSpace is the innermost active space, or nil.
func (st *SymbolTable) CurrentSpace() *Frame {
	if len(st.spaces) == 0 {
		return nil
	}
	return st.spaces[len(st.spaces)-1]
}

// PushClass creates and binds a named ClassFrame under name, recording its
// parent names for attribute inheritance (spec §4.4).
func (st *SymbolTable) PushClass(name string, extends []string) (*Frame, error) {
	f := newFrame(ClassFrameKind, name, true)
	f.Extends = extends
	if err := st.declareValue(name, f); err != nil {
		return nil, err
	}
	st.insert(f)
	st.classes = append(st.classes, f)
	return f, nil
}

// PopClass pops the current class frame.
func (st *SymbolTable) PopClass() {
	if len(st.classes) > 0 {
		st.classes = st.classes[:len(st.classes)-1]
	}
	st.Pop(1)
}

// CurrentClass is the innermost active class, or nil.
func (st *SymbolTable) CurrentClass() *Frame {
	if len(st.classes) == 0 {
		return nil
	}
	return st.classes[len(st.classes)-1]
}

// MoveTop relocates the cursor to f (dispatch uses this to resolve lookups
// against a called function's defining frame) and returns the previous
// cursor for later restoration.
func (st *SymbolTable) MoveTop(f *Frame) int {
	prev := st.cursor
	for i, fr := range st.frames {
		if fr == f {
			st.cursor = i
			return prev
		}
	}
	return prev
}

// RestoreCursor undoes a MoveTop.
func (st *SymbolTable) RestoreCursor(prev int) { st.cursor = prev }

// Declare binds name in the cursor-top frame; fails Redefinition if the
// frame already has a plain-value binding under that name.
func (st *SymbolTable) Declare(name string, v value.Value) error {
	top := st.Top()
	if b, ok := top.get(name); ok && b.val != nil {
		return mashErr.New(mashErr.Redefinition, "Name '"+name+"' is already defined in this scope", mashErr.Location{}, "")
	}
	return st.declareValue(name, v)
}

func (st *SymbolTable) declareValue(name string, v value.Value) error {
	top := st.Top()
	top.put(name, &binding{val: v})
	return nil
}

// ExistsTop reports whether name has any binding (a plain value or a
// function overload list) in the cursor-top frame only.
func (st *SymbolTable) ExistsTop(name string) bool {
	_, ok := st.Top().get(name)
	return ok
}

// Exists reports whether name resolves anywhere visible from the cursor.
func (st *SymbolTable) Exists(name string) bool {
	_, err := st.Get([]string{name}, false, false)
	return err == nil
}

// boundary returns the lowest frame index still inside the local shadowing
// window: the nearest shadowing frame at or below the cursor, or 0 if none.
func (st *SymbolTable) boundary() int {
	for i := st.cursor; i >= 0; i-- {
		if st.frames[i].Shadowing {
			return i
		}
	}
	return 0
}

// Get resolves a name or `::`-joined scope path for reading (spec §4.1).
// global forces lookup in the root frame only (`::name`); nonlocal skips
// past the nearest shadowing frame before searching (`@name`).
func (st *SymbolTable) Get(segments []string, global, nonlocal bool) (value.Value, error) {
	if len(segments) == 0 {
		return nil, mashErr.New(mashErr.Internal, "empty name path", mashErr.Location{}, "")
	}
	if global {
		return st.resolveIn(st.frames[0], segments)
	}
	start := st.cursor
	if nonlocal {
		start = st.boundary() - 1
	}
	for i := start; i >= 0; i-- {
		if v, err := st.resolveIn(st.frames[i], segments); err == nil {
			return v, nil
		}
	}
	return nil, mashErr.New(mashErr.UndefinedReference, "Undefined reference: "+strings.Join(segments, "::"), mashErr.Location{}, "")
}

// resolveIn walks a `::`-joined path starting at frame f: the first segment
// must be bound (as a value or as a named sub-frame) in f; each subsequent
// segment descends into the previous segment's SpaceFrame/ClassFrame.
func (st *SymbolTable) resolveIn(f *Frame, segments []string) (value.Value, error) {
	b, ok := f.get(segments[0])
	if !ok || b.val == nil {
		return nil, mashErr.New(mashErr.UndefinedReference, "Undefined reference: "+segments[0], mashErr.Location{}, "")
	}
	cur := b.val
	for _, seg := range segments[1:] {
		nf, ok := cur.(*Frame)
		if !ok {
			return nil, mashErr.New(mashErr.TypeError, "'"+cur.TypeName()+"' cannot be scoped into with '::'", mashErr.Location{}, "")
		}
		nb, ok := nf.get(seg)
		if !ok || nb.val == nil {
			return nil, mashErr.New(mashErr.UndefinedReference, "Undefined reference: "+seg, mashErr.Location{}, "")
		}
		cur = nb.val
	}
	return cur, nil
}

// Assign writes a name or scope path (spec §4.1): the frame chosen is the
// one that already contains the name, walking downward with shadowing
// rules; if none, the binding is created at cursor-top.
func (st *SymbolTable) Assign(segments []string, global, nonlocal bool, v value.Value) error {
	if len(segments) > 1 {
		return st.assignScoped(segments, v)
	}
	name := segments[0]
	if global {
		st.frames[0].put(name, &binding{val: v})
		return nil
	}
	start := st.cursor
	limit := 0
	if nonlocal {
		start = st.boundary() - 1
	} else {
		limit = st.boundary()
	}
	for i := start; i >= limit; i-- {
		if st.frames[i].has(name) {
			st.frames[i].put(name, &binding{val: v})
			return nil
		}
	}
	st.Top().put(name, &binding{val: v})
	return nil
}

func (st *SymbolTable) assignScoped(segments []string, v value.Value) error {
	parentPath, last := segments[:len(segments)-1], segments[len(segments)-1]
	start := st.cursor
	for i := start; i >= 0; i-- {
		if val, err := st.resolveIn(st.frames[i], parentPath); err == nil {
			nf, ok := val.(*Frame)
			if !ok {
				return mashErr.New(mashErr.TypeError, "'"+val.TypeName()+"' cannot be scoped into with '::'", mashErr.Location{}, "")
			}
			nf.put(last, &binding{val: v})
			return nil
		}
	}
	return mashErr.New(mashErr.UndefinedReference, "Undefined reference: "+strings.Join(parentPath, "::"), mashErr.Location{}, "")
}

// DefineFun registers an overload under name in the cursor-top frame
// (spec §4.1's define_fun, including AmbiguousRedefinition/replace rules).
func (st *SymbolTable) DefineFun(name string, rec *FunRecord) error {
	top := st.Top()
	b, ok := top.get(name)
	if !ok {
		top.put(name, &binding{funcs: []*FunRecord{rec}})
		return nil
	}
	existing := b.funcs
	for i, other := range existing {
		overlaps := rec.MinArgs <= other.MaxArgs && other.MinArgs <= rec.MaxArgs
		if overlaps && rec.MaxArgs != other.MaxArgs {
			return mashErr.New(mashErr.AmbiguousRedefinition, "Ambiguous redefinition of '"+name+"'", mashErr.Location{}, "")
		}
		if other.MaxArgs == rec.MaxArgs && sameSignature(other.Params, rec.Params) {
			existing[i] = rec
			top.put(name, &binding{funcs: existing})
			return nil
		}
	}
	existing = append(existing, rec)
	sortByMaxArgs(existing)
	top.put(name, &binding{funcs: existing})
	return nil
}

func sameSignature(a, b []ParamSig) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameTypes(a[i].Types, b[i].Types) {
			return false
		}
	}
	return true
}

func sameTypes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortByMaxArgs(recs []*FunRecord) {
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && recs[j-1].MaxArgs > recs[j].MaxArgs; j-- {
			recs[j-1], recs[j] = recs[j], recs[j-1]
		}
	}
}

// GetFuncs resolves an overload list by name/path the same way Get does,
// also returning the defining frame (for move_top during dispatch).
func (st *SymbolTable) GetFuncs(segments []string, global, nonlocal bool) ([]*FunRecord, *Frame, error) {
	if len(segments) == 1 {
		name := segments[0]
		if global {
			if recs, ok := st.frames[0].Funcs(name); ok {
				return recs, st.frames[0], nil
			}
		} else {
			start := st.cursor
			if nonlocal {
				start = st.boundary() - 1
			}
			for i := start; i >= 0; i-- {
				if recs, ok := st.frames[i].Funcs(name); ok {
					return recs, st.frames[i], nil
				}
			}
		}
		return nil, nil, mashErr.New(mashErr.UndefinedReference, "Undefined reference: "+name, mashErr.Location{}, "")
	}
	parentPath, last := segments[:len(segments)-1], segments[len(segments)-1]
	v, err := st.Get(parentPath, global, nonlocal)
	if err != nil {
		return nil, nil, err
	}
	nf, ok := v.(*Frame)
	if !ok {
		return nil, nil, mashErr.New(mashErr.TypeError, "'"+v.TypeName()+"' cannot be scoped into with '::'", mashErr.Location{}, "")
	}
	if recs, ok := nf.Funcs(last); ok {
		return recs, nf, nil
	}
	return nil, nil, mashErr.New(mashErr.UndefinedReference, "Undefined reference: "+last, mashErr.Location{}, "")
}
