package ir

import (
	"fmt"

	"mash/internal/value"
)

// BinOp is one of the arithmetic/comparison/membership expression ops
// (spec §4.3). Each maps to a class-operator method name (spec §4.2) tried
// before the built-in rule.
type BinOp string

const (
	OpAdd  BinOp = "+"
	OpSub  BinOp = "-"
	OpMul  BinOp = "*"
	OpFDiv BinOp = "/"
	OpIDiv BinOp = "//"
	OpMod  BinOp = "%"
	OpExp  BinOp = "^"
	OpCat  BinOp = "++"
	OpLte  BinOp = "<="
	OpGte  BinOp = ">="
	OpLt   BinOp = "<"
	OpGt   BinOp = ">"
	OpEq   BinOp = "=="
	OpNeq  BinOp = "!="
	OpIn   BinOp = "in"
)

func (op BinOp) methodName() string { return "(" + string(op) + ")" }

// BinaryExpr computes Op(Src1, Src2) into Dst (spec §4.3's Add/Sub/Mul/
// FDiv/IDiv/Mod/Exp/Cat/Lte/Gte/Lt/Gt/Eq/Neq/In). If the class-operator
// method is defined it wins; otherwise the built-in rule for the operand
// types applies. `in` is the one operator whose class dispatch is on the
// right (haystack) operand, not the left (spec §4.2: "s2._in(s1)").
type BinaryExpr struct {
	Op         BinOp
	Src1, Src2 Operand
	Dst        string
}

func (b *BinaryExpr) Exec(ctx Context) error {
	s1, err := resolve(ctx, b.Src1)
	if err != nil {
		return err
	}
	s2, err := resolve(ctx, b.Src2)
	if err != nil {
		return err
	}

	if b.Op == OpIn {
		if cls, ok := s2.(*value.Class); ok {
			if r, found, err := cls.Frame.InvokeMethod(cls, b.Op.methodName(), []value.CallArg{{Value: s1}}); err != nil {
				return err
			} else if found {
				return assign(ctx, b.Dst, r)
			}
		}
	} else if cls, ok := s1.(*value.Class); ok {
		if r, found, err := cls.Frame.InvokeMethod(cls, b.Op.methodName(), []value.CallArg{{Value: s2}}); err != nil {
			return err
		} else if found {
			return assign(ctx, b.Dst, r)
		}
	}

	result, err := b.builtin(s1, s2)
	if err != nil {
		return classify(err)
	}
	return assign(ctx, b.Dst, result)
}

func (b *BinaryExpr) builtin(s1, s2 value.Value) (value.Value, error) {
	switch b.Op {
	case OpAdd:
		return value.Add(s1, s2)
	case OpSub:
		return value.Sub(s1, s2)
	case OpMul:
		return value.Mul(s1, s2)
	case OpFDiv:
		return value.FDiv(s1, s2)
	case OpIDiv:
		return value.IDiv(s1, s2)
	case OpMod:
		return value.Mod(s1, s2)
	case OpExp:
		return value.Exp(s1, s2)
	case OpCat:
		return value.Cat(s1, s2)
	case OpEq:
		return value.NewBool(value.Equal(s1, s2)), nil
	case OpNeq:
		return value.NewBool(!value.Equal(s1, s2)), nil
	case OpIn:
		found, err := value.In(s1, s2)
		if err != nil {
			return nil, err
		}
		return value.NewBool(found), nil
	case OpLte, OpGte, OpLt, OpGt:
		cmp, err := value.Compare(s1, s2)
		if err != nil {
			return nil, err
		}
		switch b.Op {
		case OpLte:
			return value.NewBool(cmp <= 0), nil
		case OpGte:
			return value.NewBool(cmp >= 0), nil
		case OpLt:
			return value.NewBool(cmp < 0), nil
		default:
			return value.NewBool(cmp > 0), nil
		}
	}
	return nil, typeError("unknown binary operator " + string(b.Op))
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s, %s, %s", opMnemonic[b.Op], b.Src1, b.Src2, b.Dst)
}

var opMnemonic = map[BinOp]string{
	OpAdd: "ADD", OpSub: "SUB", OpMul: "MUL", OpFDiv: "FDIV", OpIDiv: "IDIV",
	OpMod: "MOD", OpExp: "EXP", OpCat: "CAT", OpLte: "LTE", OpGte: "GTE",
	OpLt: "LT", OpGt: "GT", OpEq: "EQ", OpNeq: "NEQ", OpIn: "IN",
}

// LogOp selects among the four logical binary operators: the non-short-
// circuit `and`/`or` (LOr/LAnd, always evaluate both sides) and the
// short-circuit `&&`/`||` (Or/And).
type LogOp int

const (
	LogOr LogOp = iota
	LogAnd
	LogOrShortCircuit
	LogAndShortCircuit
)

var logMethod = map[LogOp]string{
	LogOr: "(or)", LogAnd: "(and)", LogOrShortCircuit: "(||)", LogAndShortCircuit: "(&&)",
}

var logMnemonic = map[LogOp]string{
	LogOr: "LOR", LogAnd: "LAND", LogOrShortCircuit: "OR", LogAndShortCircuit: "AND",
}

// LogicalExpr implements spec §4.3's LOr/LAnd/Or/And. The non-short-circuit
// forms coerce and type-check both operands and return a Bool; the
// short-circuit forms type-check only the left operand and, when not
// short-circuited, return the right operand verbatim (unconverted) — this
// matches the original source's `or`/`and` value-passthrough behavior.
//
// The original source binds v1/v2 before converting them with
// IMPLICIT_TO_BOOL (see spec §9's flagged bug); this implementation converts
// s1/s2 directly instead of an unbound local.
type LogicalExpr struct {
	Op         LogOp
	Src1, Src2 Operand
	Dst        string
}

func (l *LogicalExpr) Exec(ctx Context) error {
	s1, err := resolve(ctx, l.Src1)
	if err != nil {
		return err
	}
	s2, err := resolve(ctx, l.Src2)
	if err != nil {
		return err
	}
	if cls, ok := s1.(*value.Class); ok {
		if r, found, err := cls.Frame.InvokeMethod(cls, logMethod[l.Op], []value.CallArg{{Value: s2}}); err != nil {
			return err
		} else if found {
			return assign(ctx, l.Dst, r)
		}
	}

	switch l.Op {
	case LogOr, LogAnd:
		b1, err := value.ImplicitToBool(s1)
		if err != nil {
			return classify(err)
		}
		b2, err := value.ImplicitToBool(s2)
		if err != nil {
			return classify(err)
		}
		var r bool
		if l.Op == LogOr {
			r = b1.V || b2.V
		} else {
			r = b1.V && b2.V
		}
		return assign(ctx, l.Dst, value.NewBool(r))
	default:
		b1, err := value.ImplicitToBool(s1)
		if err != nil {
			return classify(err)
		}
		if l.Op == LogOrShortCircuit {
			if b1.V {
				return assign(ctx, l.Dst, value.NewBool(true))
			}
			return assign(ctx, l.Dst, s2)
		}
		if !b1.V {
			return assign(ctx, l.Dst, value.NewBool(false))
		}
		return assign(ctx, l.Dst, s2)
	}
}

func (l *LogicalExpr) String() string {
	return fmt.Sprintf("%s %s, %s, %s", logMnemonic[l.Op], l.Src1, l.Src2, l.Dst)
}

// LNot is `!x`; a Class operand dispatches to `(!)` with no arguments.
type LNot struct {
	Src Operand
	Dst string
}

func (n *LNot) Exec(ctx Context) error {
	s1, err := resolve(ctx, n.Src)
	if err != nil {
		return err
	}
	if cls, ok := s1.(*value.Class); ok {
		if r, found, err := cls.Frame.InvokeMethod(cls, "(!)", nil); err != nil {
			return err
		} else if found {
			return assign(ctx, n.Dst, r)
		}
	}
	b1, err := value.ImplicitToBool(s1)
	if err != nil {
		return classify(err)
	}
	return assign(ctx, n.Dst, value.NewBool(!b1.V))
}

func (n *LNot) String() string { return fmt.Sprintf("NOT %s, %s", n.Src, n.Dst) }

// Neg is unary `-x` for Int/Float.
type Neg struct {
	Src Operand
	Dst string
}

func (g *Neg) Exec(ctx Context) error {
	s1, err := resolve(ctx, g.Src)
	if err != nil {
		return err
	}
	r, err := value.Neg(s1)
	if err != nil {
		return classify(err)
	}
	return assign(ctx, g.Dst, r)
}

func (g *Neg) String() string { return fmt.Sprintf("NEG %s, %s", g.Src, g.Dst) }

// Inc/Dec are `++`/`--` as expressions, writing Src+1/Src-1 to Dst without
// touching Src itself. The generator emits neither instruction.
type Inc struct {
	Src Operand
	Dst string
}

func (i *Inc) Exec(ctx Context) error {
	s1, err := resolve(ctx, i.Src)
	if err != nil {
		return err
	}
	r, err := value.Inc(s1)
	if err != nil {
		return classify(err)
	}
	return assign(ctx, i.Dst, r)
}

func (i *Inc) String() string { return fmt.Sprintf("INC %s, %s", i.Src, i.Dst) }

type Dec struct {
	Src Operand
	Dst string
}

func (d *Dec) Exec(ctx Context) error {
	s1, err := resolve(ctx, d.Src)
	if err != nil {
		return err
	}
	r, err := value.Dec(s1)
	if err != nil {
		return classify(err)
	}
	return assign(ctx, d.Dst, r)
}

func (d *Dec) String() string { return fmt.Sprintf("DEC %s, %s", d.Src, d.Dst) }

// TernaryIf picks Then or Else by Cond's truthiness and stores it to Dst
// (spec §4.3); both operands are already-computed cells, matching the
// source's flat evaluation model.
type TernaryIf struct {
	Cond, Then, Else Operand
	Dst              string
}

func (t *TernaryIf) Exec(ctx Context) error {
	c, err := resolve(ctx, t.Cond)
	if err != nil {
		return err
	}
	b, err := value.AsBool(c)
	if err != nil {
		return classify(err)
	}
	chosen := t.Else
	if b {
		chosen = t.Then
	}
	v, err := resolve(ctx, chosen)
	if err != nil {
		return err
	}
	return assign(ctx, t.Dst, value.Clone(v))
}

func (t *TernaryIf) String() string {
	return fmt.Sprintf("TIF %s, %s, %s, %s", t.Cond, t.Then, t.Else, t.Dst)
}
