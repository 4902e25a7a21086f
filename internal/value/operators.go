package value

import (
	"fmt"
	"math"
	"math/big"
)

// TypeError is raised by this package's pure-value operators when operand
// types don't support the requested operation; callers (ir) wrap it with
// source position via errors.Wrap before it reaches the user.
type TypeError struct{ Msg string }

func (e *TypeError) Error() string { return e.Msg }

// ValueErr mirrors spec §7's ValueError kind for this package's operators
// (conversions, zero slice step).
type ValueErr struct{ Msg string }

func (e *ValueErr) Error() string { return e.Msg }

func typeErrf(format string, args ...interface{}) error {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// ---- truthiness ----

// AsBool implements spec §4.2's as_bool(): Nil is false; Int/Float are
// zero/non-zero; Bool is itself; a Class defers to __Bool via its
// MethodInvoker, and a Class with no __Bool is a TypeError.
func AsBool(v Value) (result bool, err error) {
	switch t := v.(type) {
	case *Nil:
		return false, nil
	case *Bool:
		return t.V, nil
	case *Int:
		return t.V.Sign() != 0, nil
	case *Float:
		return t.V != 0, nil
	case *Class:
		b, found, err := t.AsBool()
		if err != nil {
			return false, err
		}
		if !found {
			return false, typeErrf("Call to _to method")
		}
		return b, nil
	default:
		return false, typeErrf("Unexpected expression type '%s' in boolean context", v.TypeName())
	}
}

// ImplicitToBool coerces Nil/Int/Float/Bool to Bool for logical-operator
// contexts (spec §4.4's IMPLICIT_TO_BOOL); any other type is a TypeError.
func ImplicitToBool(v Value) (*Bool, error) {
	switch t := v.(type) {
	case *Bool:
		return t, nil
	case *Nil:
		return NewBool(false), nil
	case *Int:
		return NewBool(t.V.Sign() != 0), nil
	case *Float:
		return NewBool(t.V != 0), nil
	}
	return nil, typeErrf("Unsupported type for logical operator. Given value is '%s'", v.TypeName())
}

// Clone copies a primitive value's payload so assignment has call-by-value
// semantics for Int/Float/Bool/String/Nil (spec §4.5); List/Dict/Class/Enum
// and frames are reference types and are returned unchanged.
func Clone(v Value) Value {
	switch t := v.(type) {
	case *Int:
		return &Int{V: new(big.Int).Set(t.V)}
	case *Float:
		f := *t
		return &f
	case *Bool:
		b := *t
		return &b
	case *String:
		s := *t
		return &s
	case *Nil:
		return NilValue
	default:
		return v
	}
}

// ---- equality / ordering ----

// Equal implements spec §3's equality rule: structural for primitives and
// collections, identity for Class/Frame/Enum/EnumValue.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case *Int:
		bv, ok := b.(*Int)
		return ok && av.V.Cmp(bv.V) == 0
	case *Float:
		bv, ok := b.(*Float)
		return ok && av.V == bv.V
	case *Bool:
		bv, ok := b.(*Bool)
		return ok && av.V == bv.V
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *String:
		bv, ok := b.(*String)
		return ok && av.Escaped == bv.Escaped
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !av.Elements[i].IsResolved() || !bv.Elements[i].IsResolved() {
				return false
			}
			if !Equal(av.Elements[i].Value, bv.Elements[i].Value) {
				return false
			}
		}
		return true
	case *Dict:
		bv, ok := b.(*Dict)
		if !ok || len(av.Entries) != len(bv.Entries) {
			return false
		}
		for _, e := range av.Entries {
			other, found := bv.Get(e.Key.Value)
			if !found || !Equal(e.Value.Value, other) {
				return false
			}
		}
		return true
	default:
		// Class instances, ClassFrame/SpaceFrame, Enum, EnumValue: identity.
		return a == b
	}
}

// Compare orders Int/Float/String/Bool values for <, <=, >, >=. Bool orders
// false < true, matching the Python source's numeric-like comparisons.
func Compare(a, b Value) (int, error) {
	switch av := a.(type) {
	case *Int:
		switch bv := b.(type) {
		case *Int:
			return av.V.Cmp(bv.V), nil
		case *Float:
			af := new(big.Float).SetInt(av.V)
			return af.Cmp(big.NewFloat(bv.V)), nil
		}
	case *Float:
		switch bv := b.(type) {
		case *Float:
			return cmpFloat(av.V, bv.V), nil
		case *Int:
			bf := new(big.Float).SetInt(bv.V)
			return -bf.Cmp(big.NewFloat(av.V)), nil
		}
	case *String:
		if bv, ok := b.(*String); ok {
			return cmpString(av.Escaped, bv.Escaped), nil
		}
	case *Bool:
		if bv, ok := b.(*Bool); ok {
			return cmpBool(av.V, bv.V), nil
		}
	}
	return 0, typeErrf("Unsupported comparison between '%s' and '%s'", a.TypeName(), b.TypeName())
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpBool(a, b bool) int {
	ai, bi := 0, 0
	if a {
		ai = 1
	}
	if b {
		bi = 1
	}
	return ai - bi
}

// ---- arithmetic ----

// bothNumeric classifies an operand pair per spec §4.4's type-promotion
// rule (Int op Int -> Int, else Float): bothInt with the two *big.Int
// values, isFloat with both as float64, or ok false for a non-numeric one.
func bothNumeric(a, b Value) (af, bf float64, bothInt bool, ai, bi *big.Int, isFloat, ok bool) {
	ai, aIsInt := asInt(a)
	bi2, bIsInt := asInt(b)
	if aIsInt && bIsInt {
		return 0, 0, true, ai, bi2, false, true
	}
	af, aIsFloat := asFloat(a)
	bf, bIsFloat := asFloat(b)
	if (aIsInt || aIsFloat) && (bIsInt || bIsFloat) {
		return af, bf, false, nil, nil, true, true
	}
	return 0, 0, false, nil, nil, false, false
}

func asInt(v Value) (*big.Int, bool) {
	if i, ok := v.(*Int); ok {
		return i.V, true
	}
	return nil, false
}

func asFloat(v Value) (float64, bool) {
	switch t := v.(type) {
	case *Float:
		return t.V, true
	case *Int:
		f, _ := new(big.Float).SetInt(t.V).Float64()
		return f, true
	}
	return 0, false
}

// Add implements `+` for Int/Float (spec §4.3). String/list concatenation
// uses `++` (Cat), not `+`.
func Add(a, b Value) (Value, error) {
	af, bf, bothInt, ai, bi, isFloat, ok := bothNumeric(a, b)
	switch {
	case !ok:
		return nil, typeErrf("Unsupported operand types for +: '%s' and '%s'", a.TypeName(), b.TypeName())
	case bothInt:
		return &Int{V: new(big.Int).Add(ai, bi)}, nil
	case isFloat:
		return &Float{V: af + bf}, nil
	}
	return nil, typeErrf("Unsupported operand types for +: '%s' and '%s'", a.TypeName(), b.TypeName())
}

func Sub(a, b Value) (Value, error) {
	af, bf, bothInt, ai, bi, isFloat, ok := bothNumeric(a, b)
	switch {
	case !ok:
		return nil, typeErrf("Unsupported operand types for -: '%s' and '%s'", a.TypeName(), b.TypeName())
	case bothInt:
		return &Int{V: new(big.Int).Sub(ai, bi)}, nil
	case isFloat:
		return &Float{V: af - bf}, nil
	}
	return nil, nil
}

func Mul(a, b Value) (Value, error) {
	af, bf, bothInt, ai, bi, isFloat, ok := bothNumeric(a, b)
	switch {
	case !ok:
		return nil, typeErrf("Unsupported operand types for *: '%s' and '%s'", a.TypeName(), b.TypeName())
	case bothInt:
		return &Int{V: new(big.Int).Mul(ai, bi)}, nil
	case isFloat:
		return &Float{V: af * bf}, nil
	}
	return nil, nil
}

// FDiv is `/`, always producing a Float.
func FDiv(a, b Value) (Value, error) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if !aok || !bok {
		return nil, typeErrf("Unsupported operand types for /: '%s' and '%s'", a.TypeName(), b.TypeName())
	}
	if bf == 0 {
		return nil, &ValueErr{Msg: "Division by zero"}
	}
	return &Float{V: af / bf}, nil
}

// IDiv is `//`, integer floor division when both operands are Int.
func IDiv(a, b Value) (Value, error) {
	_, _, bothInt, ai, bi, _, ok := bothNumeric(a, b)
	if !ok {
		return nil, typeErrf("Unsupported operand types for //: '%s' and '%s'", a.TypeName(), b.TypeName())
	}
	if bothInt {
		if bi.Sign() == 0 {
			return nil, &ValueErr{Msg: "Division by zero"}
		}
		q := new(big.Int)
		m := new(big.Int)
		q.DivMod(ai, bi, m)
		return &Int{V: q}, nil
	}
	af, _ := asFloat(a)
	bf, _ := asFloat(b)
	if bf == 0 {
		return nil, &ValueErr{Msg: "Division by zero"}
	}
	return &Float{V: math.Floor(af / bf)}, nil
}

func Mod(a, b Value) (Value, error) {
	_, _, bothInt, ai, bi, _, ok := bothNumeric(a, b)
	if !ok {
		return nil, typeErrf("Unsupported operand types for %%: '%s' and '%s'", a.TypeName(), b.TypeName())
	}
	if bothInt {
		if bi.Sign() == 0 {
			return nil, &ValueErr{Msg: "Modulo by zero"}
		}
		m := new(big.Int).Mod(ai, bi)
		return &Int{V: m}, nil
	}
	af, _ := asFloat(a)
	bf, _ := asFloat(b)
	if bf == 0 {
		return nil, &ValueErr{Msg: "Modulo by zero"}
	}
	return &Float{V: math.Mod(af, bf)}, nil
}

func Exp(a, b Value) (Value, error) {
	_, _, bothInt, ai, bi, _, ok := bothNumeric(a, b)
	if !ok {
		return nil, typeErrf("Unsupported operand types for ^: '%s' and '%s'", a.TypeName(), b.TypeName())
	}
	if bothInt && bi.Sign() >= 0 {
		return &Int{V: new(big.Int).Exp(ai, bi, nil)}, nil
	}
	af, _ := asFloat(a)
	bf, _ := asFloat(b)
	return &Float{V: math.Pow(af, bf)}, nil
}

func Neg(a Value) (Value, error) {
	switch t := a.(type) {
	case *Int:
		return &Int{V: new(big.Int).Neg(t.V)}, nil
	case *Float:
		return &Float{V: -t.V}, nil
	}
	return nil, typeErrf("Unsupported operand type for unary -: '%s'", a.TypeName())
}

// Cat is `++`: both operands are stringified and concatenated, producing a
// String (spec §4.3). A List operand stringifies via its nested/literal
// form (fstr), matching how it would render inside another List; every
// other operand uses its plain display form.
func Cat(a, b Value) (Value, error) {
	v1 := catStr(a)
	v2 := catStr(b)
	return NewString(v1+v2, v1+v2), nil
}

func catStr(v Value) string {
	if _, ok := v.(*List); ok {
		return v.ToLiteralString()
	}
	return v.ToString()
}

// Inc/Dec implement `++`/`--` as unary mutation producing a new value
// (the IR instruction is responsible for storing it back).
func Inc(a Value) (Value, error) { return Add(a, NewInt(1)) }
func Dec(a Value) (Value, error) { return Sub(a, NewInt(1)) }

// ---- membership / indexing ----

// In implements spec §4.2's in(x): List membership by structural equality,
// Dict membership over keys, String substring test.
func In(needle, haystack Value) (bool, error) {
	switch h := haystack.(type) {
	case *List:
		for _, e := range h.Elements {
			if e.IsResolved() && Equal(e.Value, needle) {
				return true, nil
			}
		}
		return false, nil
	case *Dict:
		_, found := h.Get(needle)
		return found, nil
	case *String:
		n, ok := needle.(*String)
		if !ok {
			return false, typeErrf("'in' on a String requires a String operand, got '%s'", needle.TypeName())
		}
		return contains(h.Escaped, n.Escaped), nil
	}
	return false, typeErrf("'%s' does not support 'in'", haystack.TypeName())
}

func contains(s, substr string) bool {
	return len(substr) == 0 || indexOf(s, substr) >= 0
}

func indexOf(s, substr string) int {
	n, m := len(s), len(substr)
	if m == 0 {
		return 0
	}
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == substr {
			return i
		}
	}
	return -1
}

// At implements spec §4.2's at(index) for List/Dict/String.
func At(obj, idx Value) (Value, error) {
	switch o := obj.(type) {
	case *List:
		i, ok := asInt(idx)
		if !ok {
			return nil, typeErrf("List index must be an Int, got '%s'", idx.TypeName())
		}
		n := int64(len(o.Elements))
		ix := normalizeIndex(i.Int64(), n)
		if ix < 0 || ix >= n {
			return nil, &IndexErr{Msg: "List index out of range"}
		}
		e := o.Elements[ix]
		if !e.IsResolved() {
			return nil, typeErrf("unresolved reference in List element")
		}
		return e.Value, nil
	case *Dict:
		v, found := o.Get(idx)
		if !found {
			return nil, &KeyErr{Msg: "Key not found: " + idx.ToLiteralString()}
		}
		return v, nil
	case *String:
		i, ok := asInt(idx)
		if !ok {
			return nil, typeErrf("String index must be an Int, got '%s'", idx.TypeName())
		}
		runes := []rune(o.Escaped)
		n := int64(len(runes))
		ix := normalizeIndex(i.Int64(), n)
		if ix < 0 || ix >= n {
			return nil, &IndexErr{Msg: "String index out of range"}
		}
		return NewString(string(runes[ix]), string(runes[ix])), nil
	}
	return nil, typeErrf("'%s' is not indexable", obj.TypeName())
}

// SetAt implements index-assignment for List/Dict (spec §4.3's indexing
// category); String is immutable and Class index-assignment isn't part of
// the `([])`/`([::])` operator-method pair spec §4.2 defines.
func SetAt(obj, idx, v Value) error {
	switch o := obj.(type) {
	case *List:
		i, ok := asInt(idx)
		if !ok {
			return typeErrf("List index must be an Int, got '%s'", idx.TypeName())
		}
		n := int64(len(o.Elements))
		ix := normalizeIndex(i.Int64(), n)
		if ix < 0 || ix >= n {
			return &IndexErr{Msg: "List index out of range"}
		}
		o.Elements[ix] = Resolved(v)
		return nil
	case *Dict:
		o.Set(idx, v)
		return nil
	}
	return typeErrf("'%s' does not support index assignment", obj.TypeName())
}

func normalizeIndex(i, n int64) int64 {
	if i < 0 {
		return n + i
	}
	return i
}

// IndexErr/KeyErr mirror spec §7's IndexError/KeyError kinds.
type IndexErr struct{ Msg string }

func (e *IndexErr) Error() string { return e.Msg }

type KeyErr struct{ Msg string }

func (e *KeyErr) Error() string { return e.Msg }

// Slice implements spec §4.2's slice(start, end, step); missing bounds
// default to 0, length, 1. step == 0 is a ValueError.
func Slice(obj, start, end, step Value) (Value, error) {
	n, err := sliceableLen(obj)
	if err != nil {
		return nil, err
	}
	st := int64(1)
	if step != nil {
		i, ok := asInt(step)
		if !ok {
			return nil, typeErrf("Slice step must be an Int")
		}
		st = i.Int64()
	}
	if st == 0 {
		return nil, &ValueErr{Msg: "Slice step cannot be 0"}
	}
	from := int64(0)
	if st < 0 {
		from = n - 1
	}
	if start != nil {
		i, ok := asInt(start)
		if !ok {
			return nil, typeErrf("Slice start must be an Int")
		}
		from = normalizeIndex(i.Int64(), n)
	}
	to := n
	if st < 0 {
		to = -1
	}
	if end != nil {
		i, ok := asInt(end)
		if !ok {
			return nil, typeErrf("Slice end must be an Int")
		}
		to = normalizeIndex(i.Int64(), n)
	}
	var indices []int64
	if st > 0 {
		for i := from; i < to && i < n; i += st {
			if i >= 0 {
				indices = append(indices, i)
			}
		}
	} else {
		for i := from; i > to && i >= 0; i += st {
			if i < n {
				indices = append(indices, i)
			}
		}
	}
	switch o := obj.(type) {
	case *List:
		out := &List{}
		for _, i := range indices {
			out.Elements = append(out.Elements, o.Elements[i])
		}
		return out, nil
	case *String:
		runes := []rune(o.Escaped)
		var sb []rune
		for _, i := range indices {
			sb = append(sb, runes[i])
		}
		return NewString(string(sb), string(sb)), nil
	}
	return nil, typeErrf("'%s' is not sliceable", obj.TypeName())
}

func sliceableLen(obj Value) (int64, error) {
	switch o := obj.(type) {
	case *List:
		return int64(len(o.Elements)), nil
	case *String:
		return int64(len([]rune(o.Escaped))), nil
	}
	return 0, typeErrf("'%s' is not sliceable", obj.TypeName())
}
