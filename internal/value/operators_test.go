package value

import "testing"

func TestAddIntAndFloatPromotion(t *testing.T) {
	sum, err := Add(NewInt(2), NewInt(3))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if i, ok := sum.(*Int); !ok || i.V.Int64() != 5 {
		t.Errorf("expected Int(5), got %#v", sum)
	}

	sum, err = Add(NewInt(2), NewFloat(3.5))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if f, ok := sum.(*Float); !ok || f.V != 5.5 {
		t.Errorf("expected Float(5.5), got %#v", sum)
	}
}

func TestAddTypeMismatchErrors(t *testing.T) {
	if _, err := Add(NewInt(1), NewString("x", "x")); err == nil {
		t.Error("expected TypeError adding Int + String")
	}
}

func TestFDivByZero(t *testing.T) {
	if _, err := FDiv(NewInt(1), NewInt(0)); err == nil {
		t.Error("expected ValueErr for division by zero")
	}
}

func TestIDivFloorsTowardNegativeInfinity(t *testing.T) {
	q, err := IDiv(NewInt(-7), NewInt(2))
	if err != nil {
		t.Fatalf("IDiv: %v", err)
	}
	if i, ok := q.(*Int); !ok || i.V.Int64() != -4 {
		t.Errorf("expected -4, got %#v", q)
	}
}

func TestModByZero(t *testing.T) {
	if _, err := Mod(NewInt(5), NewInt(0)); err == nil {
		t.Error("expected ValueErr for modulo by zero")
	}
}

func TestExpIntegerPower(t *testing.T) {
	v, err := Exp(NewInt(2), NewInt(10))
	if err != nil {
		t.Fatalf("Exp: %v", err)
	}
	if i, ok := v.(*Int); !ok || i.V.Int64() != 1024 {
		t.Errorf("expected 1024, got %#v", v)
	}
}

func TestCatStringifiesBothOperands(t *testing.T) {
	v, err := Cat(NewInt(1), NewString("x", "x"))
	if err != nil {
		t.Fatalf("Cat: %v", err)
	}
	s, ok := v.(*String)
	if !ok || s.Escaped != "1x" {
		t.Errorf("expected String(\"1x\"), got %#v", v)
	}
}

func TestEqualStructuralForPrimitivesAndCollections(t *testing.T) {
	if !Equal(NewInt(1), NewInt(1)) {
		t.Error("expected Int(1) == Int(1)")
	}
	if Equal(NewInt(1), NewInt(2)) {
		t.Error("expected Int(1) != Int(2)")
	}
	a := NewList(NewInt(1), NewInt(2))
	b := NewList(NewInt(1), NewInt(2))
	if !Equal(a, b) {
		t.Error("expected structurally equal lists to be Equal")
	}
}

func TestEqualClassIsIdentity(t *testing.T) {
	c1 := &Class{}
	c2 := &Class{}
	if Equal(c1, c2) {
		t.Error("expected distinct Class instances to be unequal")
	}
	if !Equal(c1, c1) {
		t.Error("expected a Class instance to equal itself")
	}
}

func TestCompareOrdersAcrossIntAndFloat(t *testing.T) {
	cmp, err := Compare(NewInt(1), NewFloat(1.5))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if cmp >= 0 {
		t.Errorf("expected Int(1) < Float(1.5), got cmp=%d", cmp)
	}
}

func TestAsBoolVariants(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{NilValue, false},
		{NewBool(true), true},
		{NewInt(0), false},
		{NewInt(5), true},
		{NewFloat(0), false},
		{NewFloat(1.2), true},
	}
	for _, test := range tests {
		got, err := AsBool(test.v)
		if err != nil {
			t.Fatalf("AsBool(%#v): %v", test.v, err)
		}
		if got != test.want {
			t.Errorf("AsBool(%#v) = %v, want %v", test.v, got, test.want)
		}
	}
}

func TestAtListNegativeIndex(t *testing.T) {
	l := NewList(NewInt(1), NewInt(2), NewInt(3))
	v, err := At(l, NewInt(-1))
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if i, ok := v.(*Int); !ok || i.V.Int64() != 3 {
		t.Errorf("expected last element 3, got %#v", v)
	}
}

func TestAtListOutOfRange(t *testing.T) {
	l := NewList(NewInt(1))
	if _, err := At(l, NewInt(5)); err == nil {
		t.Error("expected IndexErr for out-of-range access")
	}
}

func TestInMembership(t *testing.T) {
	l := NewList(NewInt(1), NewInt(2))
	found, err := In(NewInt(2), l)
	if err != nil || !found {
		t.Errorf("expected 2 in [1, 2], got found=%v err=%v", found, err)
	}
	s := NewString("hello", "hello")
	found, err = In(NewString("ell", "ell"), s)
	if err != nil || !found {
		t.Errorf("expected 'ell' in 'hello', got found=%v err=%v", found, err)
	}
}

func TestSliceBasicRange(t *testing.T) {
	l := NewList(NewInt(0), NewInt(1), NewInt(2), NewInt(3), NewInt(4))
	v, err := Slice(l, NewInt(1), NewInt(3), nil)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	out, ok := v.(*List)
	if !ok || len(out.Elements) != 2 {
		t.Fatalf("expected 2-element slice, got %#v", v)
	}
	if out.Elements[0].Value.(*Int).V.Int64() != 1 || out.Elements[1].Value.(*Int).V.Int64() != 2 {
		t.Errorf("unexpected slice contents: %s", out.ToString())
	}
}

func TestSliceZeroStepIsValueError(t *testing.T) {
	l := NewList(NewInt(1))
	if _, err := Slice(l, nil, nil, NewInt(0)); err == nil {
		t.Error("expected ValueErr for zero step")
	}
}

func TestCloneCopiesPrimitivesByValue(t *testing.T) {
	orig := NewInt(5)
	clone := Clone(orig).(*Int)
	clone.V.SetInt64(99)
	if orig.V.Int64() != 5 {
		t.Error("expected Clone to deep-copy Int, mutation leaked into original")
	}
}

func TestCloneLeavesReferenceTypesShared(t *testing.T) {
	l := NewList(NewInt(1))
	if Clone(l) != Value(l) {
		t.Error("expected Clone to return a List unchanged (reference semantics)")
	}
}
