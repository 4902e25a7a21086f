// Package lowering turns a parser.Stmt tree into an ir.Block (spec §4.4):
// Phase A folds constant sub-expressions bottom-up, Phase B walks the
// (possibly-folded) tree top-down emitting IR and registering functions,
// spaces, and classes into the shared symbol table as it goes.
package lowering

import (
	"mash/internal/parser"
	"mash/internal/value"
)

// Fold implements Phase A (spec §4.4): a bottom-up pass that replaces a
// Binary/Logical node over two already-literal operands with the computed
// literal, reusing the same value.Add/Sub/... operators the runtime
// BinaryExpr instruction calls, so folded and unfolded arithmetic agree on
// promotion and overflow behavior by construction. A node that can't be
// folded (a name, a call, a division that would fail) is returned with its
// children folded but the node itself unchanged — the generator handles it
// as a runtime expression. List/Dict literals are deliberately left
// unfolded even when every element is constant: the generator builds their
// Elements slice directly from already-folded children, so a second,
// separate constant-collapse pass over array/dict literals would just
// re-derive what lowerArrayLit/lowerDictLit already compute.
func Fold(e parser.Expr) parser.Expr {
	switch n := e.(type) {
	case *parser.Binary:
		left, right := Fold(n.Left), Fold(n.Right)
		if lit, ok := foldBinary(n.Operator, left, right); ok {
			return lit
		}
		return &parser.Binary{Position: n.Position, Left: left, Operator: n.Operator, Right: right}
	case *parser.Logical:
		left, right := Fold(n.Left), Fold(n.Right)
		if lit, ok := foldLogical(n.Operator, left, right); ok {
			return lit
		}
		return &parser.Logical{Position: n.Position, Left: left, Operator: n.Operator, Right: right}
	case *parser.Unary:
		return &parser.Unary{Position: n.Position, Operator: n.Operator, Operand: Fold(n.Operand)}
	case *parser.Ternary:
		return &parser.Ternary{Position: n.Position, Cond: Fold(n.Cond), Then: Fold(n.Then), Else: Fold(n.Else)}
	case *parser.Call:
		args := make([]parser.Arg, len(n.Args))
		for i, a := range n.Args {
			args[i] = parser.Arg{Name: a.Name, Value: Fold(a.Value)}
		}
		return &parser.Call{Position: n.Position, Callee: Fold(n.Callee), Args: args}
	case *parser.Index:
		return &parser.Index{Position: n.Position, Object: Fold(n.Object), Index: Fold(n.Index)}
	case *parser.Slice:
		return &parser.Slice{
			Position: n.Position, Object: Fold(n.Object),
			Start: foldOpt(n.Start), End: foldOpt(n.End), Step: foldOpt(n.Step),
		}
	case *parser.Member:
		return &parser.Member{Position: n.Position, Object: Fold(n.Object), Name: n.Name}
	case *parser.ArrayLit:
		elems := make([]parser.Expr, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = Fold(el)
		}
		return &parser.ArrayLit{Position: n.Position, Elements: elems}
	case *parser.DictLit:
		keys := make([]parser.Expr, len(n.Keys))
		vals := make([]parser.Expr, len(n.Values))
		for i := range n.Keys {
			keys[i] = Fold(n.Keys[i])
			vals[i] = Fold(n.Values[i])
		}
		return &parser.DictLit{Position: n.Position, Keys: keys, Values: vals}
	case *parser.Lambda:
		return n // the body is its own statement list, folded when its own FunDecl/Lambda lowers
	default:
		return e // *Literal, *Name: nothing to fold
	}
}

func foldOpt(e parser.Expr) parser.Expr {
	if e == nil {
		return nil
	}
	return Fold(e)
}

// foldBinary computes Operator(left, right) when both sides are literal
// numerics (arithmetic) — spec §4.4: "Division by zero is deferred to
// runtime" means a folding attempt that errors (e.g. `/ 0`) must leave the
// node unfolded rather than surface the error at lowering time.
func foldBinary(operator string, left, right parser.Expr) (*parser.Literal, bool) {
	l, lok := left.(*parser.Literal)
	r, rok := right.(*parser.Literal)
	if !lok || !rok || !isNumeric(l.Value) || !isNumeric(r.Value) {
		return nil, false
	}
	var result value.Value
	var err error
	switch operator {
	case "+":
		result, err = value.Add(l.Value, r.Value)
	case "-":
		result, err = value.Sub(l.Value, r.Value)
	case "*":
		result, err = value.Mul(l.Value, r.Value)
	case "/":
		result, err = value.FDiv(l.Value, r.Value)
	case "//":
		result, err = value.IDiv(l.Value, r.Value)
	case "%":
		result, err = value.Mod(l.Value, r.Value)
	case "^":
		result, err = value.Exp(l.Value, r.Value)
	default:
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	return &parser.Literal{Position: l.Position, Value: result}, true
}

func isNumeric(v value.Value) bool {
	switch v.(type) {
	case *value.Int, *value.Float:
		return true
	default:
		return false
	}
}

// foldLogical folds `and`/`or`/`&&`/`||` over two literal Bools (spec §4.4);
// any other operand type is left for the generator's runtime LogicalExpr,
// which alone knows each operator's short-circuit/pass-through rules.
func foldLogical(operator string, left, right parser.Expr) (*parser.Literal, bool) {
	l, lok := left.(*parser.Literal)
	r, rok := right.(*parser.Literal)
	if !lok || !rok {
		return nil, false
	}
	lb, lok2 := l.Value.(*value.Bool)
	rb, rok2 := r.Value.(*value.Bool)
	if !lok2 || !rok2 {
		return nil, false
	}
	var result bool
	switch operator {
	case "and", "&&":
		result = lb.V && rb.V
	case "or", "||":
		result = lb.V || rb.V
	default:
		return nil, false
	}
	return &parser.Literal{Position: l.Position, Value: value.NewBool(result)}, true
}
