// Package value implements Mash's runtime value model (spec §3, §4.2):
// the tagged variants every IR expression produces and consumes, plus the
// structural/identity equality and display rules that apply uniformly to
// all of them.
//
// This package is deliberately inert — it knows nothing about the symbol
// table, IR, or the evaluator. Anything that requires running Mash code
// (operator-overload dispatch on a Class instance, resolving an unresolved
// name inside a List) is expressed here only as a narrow interface
// (Frame, Resolver) that the symtab/evaluator packages satisfy, so this
// package never has to import either of them.
package value

import (
	"fmt"
	"math/big"
	"strings"
)

// Value is satisfied by every Mash runtime value variant.
type Value interface {
	// TypeName is the canonical, user-visible type name (spec §3).
	TypeName() string
	// ToString is the display form used by Print.
	ToString() string
	// ToLiteralString is the form used when this value is nested inside a
	// List/Dict rendering (original_source's fstr()) — e.g. strings are
	// quoted there even though they print bare standalone.
	ToLiteralString() string
}

// Resolver resolves an unresolved variable-name cell stored in a List/Dict
// (spec §3, "Unresolved variable references inside List/Dict are valid
// during construction"). The ir package's tableResolver implements this
// over the symbol table.
type Resolver interface {
	Resolve(path []string) (Value, error)
}

// Frame is the capability value.Class and value.Bool/ClassFrame dispatch
// need from a named, lookup-capable scope without importing symtab
// (spec §9's circular-reference note, resolved via interfaces rather than
// an arena). symtab.Frame (of either the class or the space kind)
// implements it.
type Frame interface {
	Value
	FrameName() string
}

// CallArg is one call argument as seen across the value/ir boundary: Name
// empty means positional, set means a named argument (spec §4.6 step 6).
type CallArg struct {
	Name  string
	Value Value
}

// MethodInvoker is implemented by a Class's defining ClassFrame: it knows
// how to run one of its own methods against an instance, including full
// overload selection and default/named-argument binding (spec §4.6).
// Operator overload dispatch (spec §4.2) and explicit method calls both go
// through it.
type MethodInvoker interface {
	Frame
	InvokeMethod(instance *Class, name string, args []CallArg) (result Value, found bool, err error)
}

// ---- Int ----

// Int is an arbitrary-precision integer (spec §3 recommends this over a
// fixed 64-bit width).
type Int struct{ V *big.Int }

func NewInt(i int64) *Int { return &Int{V: big.NewInt(i)} }

func (i *Int) TypeName() string        { return "Int" }
func (i *Int) ToString() string        { return i.V.String() }
func (i *Int) ToLiteralString() string { return i.ToString() }

// ---- Float ----

type Float struct{ V float64 }

func NewFloat(f float64) *Float { return &Float{V: f} }

func (f *Float) TypeName() string { return "Float" }
func (f *Float) ToString() string {
	s := fmt.Sprintf("%g", f.V)
	if !strings.ContainsAny(s, ".eE") && !strings.Contains(s, "Inf") && !strings.Contains(s, "NaN") {
		s += ".0"
	}
	return s
}
func (f *Float) ToLiteralString() string { return f.ToString() }

// ---- Bool ----

type Bool struct{ V bool }

func NewBool(b bool) *Bool { return &Bool{V: b} }

func (b *Bool) TypeName() string { return "Bool" }
func (b *Bool) ToString() string {
	if b.V {
		return "true"
	}
	return "false"
}
func (b *Bool) ToLiteralString() string { return b.ToString() }

// ---- Nil ----

type Nil struct{}

var NilValue = &Nil{}

func (*Nil) TypeName() string        { return "NilType" }
func (*Nil) ToString() string        { return "nil" }
func (*Nil) ToLiteralString() string { return "nil" }

// ---- String ----

// String holds both the original (as-written) form and the escaped form
// (spec §3). Raw strings (`r"..."`) skip escape resolution, so Original
// and Escaped are equal for them.
type String struct {
	Original string
	Escaped  string
}

func NewString(escaped, original string) *String {
	return &String{Original: original, Escaped: escaped}
}

func (s *String) TypeName() string { return "String" }
func (s *String) ToString() string { return s.Escaped }
func (s *String) ToLiteralString() string {
	return "\"" + s.Original + "\""
}

// ---- List ----

// Element is one List/Dict slot: either a concrete Value or an unresolved
// dotted-path reference recorded during analyzer-mode construction (spec
// §3). Resolve() must be called — via Update — before the slot is read.
type Element struct {
	Value Value  // non-nil once resolved
	Path  []string // non-empty while unresolved
}

func Resolved(v Value) Element { return Element{Value: v} }
func Unresolved(path []string) Element { return Element{Path: path} }

func (e Element) IsResolved() bool { return e.Value != nil }

// List is an ordered, mutable sequence.
type List struct {
	Elements []Element
}

func NewList(vals ...Value) *List {
	l := &List{}
	for _, v := range vals {
		l.Elements = append(l.Elements, Resolved(v))
	}
	return l
}

func (l *List) TypeName() string { return "List" }

func (l *List) ToString() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		if e.IsResolved() {
			parts[i] = e.Value.ToLiteralString()
		} else {
			parts[i] = strings.Join(e.Path, "::")
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (l *List) ToLiteralString() string { return l.ToString() }

// Update resolves every unresolved element against r (spec §4.2 `update()`).
func (l *List) Update(r Resolver) error {
	for i, e := range l.Elements {
		if e.IsResolved() {
			continue
		}
		v, err := r.Resolve(e.Path)
		if err != nil {
			return err
		}
		l.Elements[i] = Resolved(v)
	}
	return nil
}

// Values returns the resolved payload; callers must Update first.
func (l *List) Values() []Value {
	out := make([]Value, len(l.Elements))
	for i, e := range l.Elements {
		out[i] = e.Value
	}
	return out
}

// ---- Dict ----

// DictEntry is one ordered (key, value) pair; spec §3 keys compare by
// value equality, not identity, and both key and value may be unresolved.
type DictEntry struct {
	Key   Element
	Value Element
}

type Dict struct {
	Entries []DictEntry
}

func NewDict() *Dict { return &Dict{} }

func (d *Dict) TypeName() string { return "Dict" }

func (d *Dict) ToString() string {
	if len(d.Entries) == 0 {
		return "{,}"
	}
	parts := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		parts[i] = elemStr(e.Key) + ": " + elemStr(e.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func elemStr(e Element) string {
	if e.IsResolved() {
		return e.Value.ToLiteralString()
	}
	return strings.Join(e.Path, "::")
}

func (d *Dict) ToLiteralString() string { return d.ToString() }

func (d *Dict) Update(r Resolver) error {
	for i, e := range d.Entries {
		if !e.Key.IsResolved() {
			v, err := r.Resolve(e.Key.Path)
			if err != nil {
				return err
			}
			d.Entries[i].Key = Resolved(v)
		}
		if !e.Value.IsResolved() {
			v, err := r.Resolve(e.Value.Path)
			if err != nil {
				return err
			}
			d.Entries[i].Value = Resolved(v)
		}
	}
	return nil
}

// Get looks up a value by structural key equality; ok is false if absent.
func (d *Dict) Get(key Value) (Value, bool) {
	for _, e := range d.Entries {
		if e.Key.IsResolved() && Equal(e.Key.Value, key) {
			return e.Value.Value, true
		}
	}
	return nil, false
}

// Set inserts or overwrites the entry for key, preserving insertion order.
func (d *Dict) Set(key, val Value) {
	for i, e := range d.Entries {
		if e.Key.IsResolved() && Equal(e.Key.Value, key) {
			d.Entries[i].Value = Resolved(val)
			return
		}
	}
	d.Entries = append(d.Entries, DictEntry{Key: Resolved(key), Value: Resolved(val)})
}

// Pairs returns each entry as a 2-element List (key, value) — the shape a
// `for` loop observes when iterating a Dict (spec §4.4).
func (d *Dict) Pairs() []*List {
	out := make([]*List, len(d.Entries))
	for i, e := range d.Entries {
		out[i] = NewList(e.Key.Value, e.Value.Value)
	}
	return out
}

// ---- Enum / EnumValue ----

type Enum struct {
	Name   string
	Values []*EnumValue
}

func (e *Enum) TypeName() string        { return "Enum" }
func (e *Enum) ToString() string        { return "<enum " + e.Name + ">" }
func (e *Enum) ToLiteralString() string { return e.ToString() }

func (e *Enum) FrameName() string { return e.Name }

// Member looks up one of the enum's named values.
func (e *Enum) Member(name string) (*EnumValue, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// EnumValue carries its parent enum's name; equality is identity (spec §3).
type EnumValue struct {
	Parent *Enum
	Name   string
}

func (v *EnumValue) TypeName() string        { return v.Parent.Name }
func (v *EnumValue) ToString() string        { return v.Parent.Name + "::" + v.Name }
func (v *EnumValue) ToLiteralString() string { return v.ToString() }

// ---- Function (lambda) ----

// Param is one callable parameter's dispatch-relevant shape — a copy of
// symtab.ParamSig's fields without importing symtab (spec §9's circular-
// reference note: this package stays inert, symtab/ir reach into it).
type Param struct {
	Name     string
	Types    []string
	Default  Value // nil means required
	Variadic bool
}

// Function is a first-class lambda value (spec §3/§4.3's Lambda). Body is
// opaque here; the lowering package stores its own IR block and the
// evaluator type-asserts it back. Closure is the frame active when the
// lambda literal was evaluated, letting dispatch see its free variables the
// same way a named function sees its defining frame.
type Function struct {
	Params  []Param
	MinArgs int
	MaxArgs int
	Body    interface{}
	Closure Frame
}

func (f *Function) TypeName() string        { return "Function" }
func (f *Function) ToString() string        { return "<function>" }
func (f *Function) ToLiteralString() string { return f.ToString() }

// ---- Class instance ----

// AttrMap is an insertion-ordered string->Value map, used for a Class
// instance's per-instance attributes.
type AttrMap struct {
	keys   []string
	values map[string]Value
}

func NewAttrMap() *AttrMap {
	return &AttrMap{values: make(map[string]Value)}
}

func (m *AttrMap) Get(name string) (Value, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *AttrMap) Set(name string, v Value) {
	if _, exists := m.values[name]; !exists {
		m.keys = append(m.keys, name)
	}
	m.values[name] = v
}

func (m *AttrMap) Keys() []string { return m.keys }

// Class is a user-defined class instance: a back-reference to its defining
// ClassFrame plus a per-instance attribute map seeded from inherited
// members (spec §3).
type Class struct {
	Frame MethodInvoker
	Attrs *AttrMap
}

func NewClass(frame MethodInvoker) *Class {
	return &Class{Frame: frame, Attrs: NewAttrMap()}
}

func (c *Class) TypeName() string { return c.Frame.FrameName() }

func (c *Class) ToString() string {
	if v, found, err := c.Frame.InvokeMethod(c, "__String", nil); err == nil && found {
		if s, ok := v.(*String); ok {
			return s.Escaped
		}
		return v.ToString()
	}
	return "<" + c.Frame.FrameName() + " object>"
}

func (c *Class) ToLiteralString() string { return c.ToString() }

// AsBool resolves truthiness via `__Bool` if defined (spec §4.2).
func (c *Class) AsBool() (bool, bool, error) {
	v, found, err := c.Frame.InvokeMethod(c, "__Bool", nil)
	if err != nil || !found {
		return false, found, err
	}
	b, ok := v.(*Bool)
	if !ok {
		return false, true, fmt.Errorf("__Bool must return a Bool, got %s", v.TypeName())
	}
	return b.V, true, nil
}
