package lowering

import (
	"testing"

	"mash/internal/parser"
	"mash/internal/value"
)

func lit(v value.Value) *parser.Literal { return &parser.Literal{Value: v} }

func TestFoldCollapsesConstantArithmetic(t *testing.T) {
	n := &parser.Binary{Left: lit(value.NewInt(2)), Operator: "+", Right: lit(value.NewInt(3))}
	folded := Fold(n)
	l, ok := folded.(*parser.Literal)
	if !ok {
		t.Fatalf("expected a folded Literal, got %T", folded)
	}
	if i, ok := l.Value.(*value.Int); !ok || i.V.Int64() != 5 {
		t.Errorf("expected Int(5), got %#v", l.Value)
	}
}

func TestFoldLeavesDivisionByZeroUnfolded(t *testing.T) {
	n := &parser.Binary{Left: lit(value.NewInt(1)), Operator: "/", Right: lit(value.NewInt(0))}
	folded := Fold(n)
	if _, ok := folded.(*parser.Literal); ok {
		t.Error("expected division by zero to stay unfolded for runtime to raise")
	}
	if _, ok := folded.(*parser.Binary); !ok {
		t.Errorf("expected a Binary node preserved, got %T", folded)
	}
}

func TestFoldRecursesIntoNestedArithmetic(t *testing.T) {
	inner := &parser.Binary{Left: lit(value.NewInt(2)), Operator: "*", Right: lit(value.NewInt(3))}
	outer := &parser.Binary{Left: inner, Operator: "+", Right: lit(value.NewInt(1))}
	folded := Fold(outer)
	l, ok := folded.(*parser.Literal)
	if !ok {
		t.Fatalf("expected fully folded Literal, got %T", folded)
	}
	if i, ok := l.Value.(*value.Int); !ok || i.V.Int64() != 7 {
		t.Errorf("expected Int(7), got %#v", l.Value)
	}
}

func TestFoldLeavesNonLiteralOperandUnfolded(t *testing.T) {
	n := &parser.Binary{Left: &parser.Name{Segments: []string{"x"}}, Operator: "+", Right: lit(value.NewInt(1))}
	folded := Fold(n)
	if _, ok := folded.(*parser.Binary); !ok {
		t.Errorf("expected Binary preserved when an operand isn't a literal, got %T", folded)
	}
}

func TestFoldLogicalAndOr(t *testing.T) {
	andExpr := &parser.Logical{Left: lit(value.NewBool(true)), Operator: "and", Right: lit(value.NewBool(false))}
	folded := Fold(andExpr)
	l, ok := folded.(*parser.Literal)
	if !ok {
		t.Fatalf("expected folded Literal, got %T", folded)
	}
	if b, ok := l.Value.(*value.Bool); !ok || b.V {
		t.Errorf("expected Bool(false) for true and false, got %#v", l.Value)
	}

	orExpr := &parser.Logical{Left: lit(value.NewBool(false)), Operator: "or", Right: lit(value.NewBool(true))}
	folded = Fold(orExpr)
	l, ok = folded.(*parser.Literal)
	if !ok {
		t.Fatalf("expected folded Literal, got %T", folded)
	}
	if b, ok := l.Value.(*value.Bool); !ok || !b.V {
		t.Errorf("expected Bool(true) for false or true, got %#v", l.Value)
	}
}
