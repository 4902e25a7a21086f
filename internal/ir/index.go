package ir

import (
	"fmt"

	"mash/internal/symtab"
	"mash/internal/value"
)

// Member is spec §4.3's indexing instruction. IsAttr distinguishes the two
// surface forms it lowers: `obj.name` (IsAttr, a static attribute-map/
// scoped-frame lookup) from `obj[idx]` (value.At, including a Class's
// `([])` operator method).
type Member struct {
	Object Operand
	Index  Operand
	IsAttr bool
	Dst    string
}

func (m *Member) Exec(ctx Context) error {
	obj, err := resolve(ctx, m.Object)
	if err != nil {
		return err
	}
	idx, err := resolve(ctx, m.Index)
	if err != nil {
		return err
	}
	if m.IsAttr {
		name, ok := attrName(idx)
		if !ok {
			return typeError("attribute name must be a String")
		}
		v, err := memberGet(obj, name)
		if err != nil {
			return err
		}
		return assign(ctx, m.Dst, v)
	}
	if cls, ok := obj.(*value.Class); ok {
		if r, found, err := cls.Frame.InvokeMethod(cls, "([])", []value.CallArg{{Value: idx}}); err != nil {
			return err
		} else if found {
			return assign(ctx, m.Dst, r)
		}
	}
	v, err := value.At(obj, idx)
	if err != nil {
		return classify(err)
	}
	return assign(ctx, m.Dst, v)
}

func (m *Member) String() string {
	op := "INDEX"
	if m.IsAttr {
		op = "ATTR"
	}
	return fmt.Sprintf("%s %s, %s, %s", op, m.Object, m.Index, m.Dst)
}

func attrName(v value.Value) (string, bool) {
	s, ok := v.(*value.String)
	if !ok {
		return "", false
	}
	return s.Escaped, true
}

// memberGet resolves `obj.name`: a Class instance resolves name only in its
// own attribute map (its ClassFrame's bindings are not searched); a
// SpaceFrame/ClassFrame value resolves name among its own value bindings,
// and a function name there is a TypeError (spec §3/§4.1's `::`-scoped
// lookup, reused here for `.` access on a frame value).
func memberGet(obj value.Value, name string) (value.Value, error) {
	switch o := obj.(type) {
	case *value.Class:
		if v, ok := o.Attrs.Get(name); ok {
			return v, nil
		}
		return nil, undefinedReference(name)
	case *symtab.Frame:
		if recs, ok := o.Funcs(name); ok {
			if len(recs) == 0 {
				return nil, undefinedReference(name)
			}
			return nil, typeError("'" + name + "' is a function, not a value; call it instead")
		}
		if v, ok := o.Value(name); ok {
			return v, nil
		}
		return nil, undefinedReference(name)
	}
	return nil, typeError("'" + obj.TypeName() + "' has no attribute '" + name + "'")
}

// MemberAssign is `obj.name = v` / `obj[idx] = v` (spec §4.3's indexing
// category's write side, implied by Member's read form).
type MemberAssign struct {
	Object Operand
	Index  Operand
	IsAttr bool
	Src    Operand
}

func (m *MemberAssign) Exec(ctx Context) error {
	obj, err := resolve(ctx, m.Object)
	if err != nil {
		return err
	}
	idx, err := resolve(ctx, m.Index)
	if err != nil {
		return err
	}
	v, err := resolve(ctx, m.Src)
	if err != nil {
		return err
	}
	v = value.Clone(v)
	if m.IsAttr {
		name, ok := attrName(idx)
		if !ok {
			return typeError("attribute name must be a String")
		}
		cls, ok := obj.(*value.Class)
		if !ok {
			return typeError("'" + obj.TypeName() + "' does not support attribute assignment")
		}
		cls.Attrs.Set(name, v)
		return nil
	}
	if err := value.SetAt(obj, idx, v); err != nil {
		return classify(err)
	}
	return nil
}

func (m *MemberAssign) String() string {
	op := "SETINDEX"
	if m.IsAttr {
		op = "SETATTR"
	}
	return fmt.Sprintf("%s %s, %s, %s", op, m.Object, m.Index, m.Src)
}

// Slice is `obj[start:end:step]` (spec §4.2/§4.3); a Class defers to its
// `([::])` operator method before the built-in rule.
type Slice struct {
	Object            Operand
	Start, End, Step  Operand
	HasStart, HasEnd  bool
	HasStep           bool
	Dst               string
}

func (s *Slice) Exec(ctx Context) error {
	obj, err := resolve(ctx, s.Object)
	if err != nil {
		return err
	}
	start, err := s.optOperand(ctx, s.Start, s.HasStart)
	if err != nil {
		return err
	}
	end, err := s.optOperand(ctx, s.End, s.HasEnd)
	if err != nil {
		return err
	}
	step, err := s.optOperand(ctx, s.Step, s.HasStep)
	if err != nil {
		return err
	}
	if cls, ok := obj.(*value.Class); ok {
		args := []value.CallArg{{Value: orNil(start)}, {Value: orNil(end)}, {Value: orNil(step)}}
		if r, found, err := cls.Frame.InvokeMethod(cls, "([::])", args); err != nil {
			return err
		} else if found {
			return assign(ctx, s.Dst, r)
		}
	}
	v, err := value.Slice(obj, start, end, step)
	if err != nil {
		return classify(err)
	}
	return assign(ctx, s.Dst, v)
}

func (s *Slice) optOperand(ctx Context, o Operand, has bool) (value.Value, error) {
	if !has {
		return nil, nil
	}
	return resolve(ctx, o)
}

func orNil(v value.Value) value.Value {
	if v == nil {
		return value.NilValue
	}
	return v
}

func (s *Slice) String() string {
	return fmt.Sprintf("SLICE %s, %s, %s, %s, %s", s.Object, s.Start, s.End, s.Step, s.Dst)
}
