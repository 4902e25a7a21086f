package symtab

import (
	"testing"

	"mash/internal/value"
)

func TestDeclareAndGetRoundTrip(t *testing.T) {
	st := New()
	if err := st.Declare("x", value.NewInt(1)); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	v, err := st.Get([]string{"x"}, false, false)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if i, ok := v.(*value.Int); !ok || i.V.Int64() != 1 {
		t.Errorf("expected Int(1), got %#v", v)
	}
}

func TestDeclareRejectsRedefinitionInSameFrame(t *testing.T) {
	st := New()
	if err := st.Declare("x", value.NewInt(1)); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := st.Declare("x", value.NewInt(2)); err == nil {
		t.Error("expected Redefinition error for re-declaring 'x' in the same frame")
	}
}

func TestGetUndefinedReferenceErrors(t *testing.T) {
	st := New()
	if _, err := st.Get([]string{"missing"}, false, false); err == nil {
		t.Error("expected UndefinedReference error")
	}
}

func TestPushPopScopesVisibility(t *testing.T) {
	st := New()
	st.Declare("outer", value.NewInt(1))
	st.Push(false)
	st.Declare("inner", value.NewInt(2))
	if !st.Exists("outer") {
		t.Error("expected outer binding visible from pushed frame")
	}
	if !st.Exists("inner") {
		t.Error("expected inner binding visible in its own frame")
	}
	st.Pop(1)
	if st.Exists("inner") {
		t.Error("expected inner binding to disappear after Pop")
	}
	if !st.Exists("outer") {
		t.Error("expected outer binding to survive Pop")
	}
}

func TestNonlocalSkipsShadowingFrame(t *testing.T) {
	st := New()
	st.Declare("x", value.NewInt(1))
	st.Push(true) // shadowing frame, e.g. a function body
	st.Declare("x", value.NewInt(2))
	v, err := st.Get([]string{"x"}, false, false)
	if err != nil || v.(*value.Int).V.Int64() != 2 {
		t.Fatalf("expected local x=2 visible, got %#v err=%v", v, err)
	}
	v, err = st.Get([]string{"x"}, false, true)
	if err != nil {
		t.Fatalf("nonlocal Get: %v", err)
	}
	if i, ok := v.(*value.Int); !ok || i.V.Int64() != 1 {
		t.Errorf("expected nonlocal lookup to skip the shadowing frame and find x=1, got %#v", v)
	}
}

func TestGlobalForcesRootLookup(t *testing.T) {
	st := New()
	st.Declare("x", value.NewInt(1))
	st.Push(true)
	st.Declare("x", value.NewInt(2))
	v, err := st.Get([]string{"x"}, true, false)
	if err != nil {
		t.Fatalf("global Get: %v", err)
	}
	if i, ok := v.(*value.Int); !ok || i.V.Int64() != 1 {
		t.Errorf("expected global lookup to see root x=1, got %#v", v)
	}
}

func TestPushSpaceBindsNameAndScopesInto(t *testing.T) {
	st := New()
	sp, err := st.PushSpace("Util")
	if err != nil {
		t.Fatalf("PushSpace: %v", err)
	}
	st.Declare("helper", value.NewInt(42))
	st.PopSpace()
	v, err := st.Get([]string{"Util", "helper"}, false, false)
	if err != nil {
		t.Fatalf("scoped Get: %v", err)
	}
	if i, ok := v.(*value.Int); !ok || i.V.Int64() != 42 {
		t.Errorf("expected Util::helper == 42, got %#v", v)
	}
	if sp.Kind != SpaceFrameKind {
		t.Errorf("expected SpaceFrameKind, got %v", sp.Kind)
	}
}

func TestPushClassRecordsExtends(t *testing.T) {
	st := New()
	cf, err := st.PushClass("Dog", []string{"Animal"})
	if err != nil {
		t.Fatalf("PushClass: %v", err)
	}
	st.PopClass()
	if len(cf.Extends) != 1 || cf.Extends[0] != "Animal" {
		t.Errorf("expected Extends=[Animal], got %v", cf.Extends)
	}
}

func TestAssignCreatesInCursorTopWhenUnbound(t *testing.T) {
	st := New()
	if err := st.Assign([]string{"x"}, false, false, value.NewInt(9)); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	v, err := st.Get([]string{"x"}, false, false)
	if err != nil || v.(*value.Int).V.Int64() != 9 {
		t.Fatalf("expected x=9 after Assign, got %#v err=%v", v, err)
	}
}

func TestAssignUpdatesExistingOuterBinding(t *testing.T) {
	st := New()
	st.Declare("x", value.NewInt(1))
	st.Push(false)
	if err := st.Assign([]string{"x"}, false, false, value.NewInt(2)); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	st.Pop(1)
	v, _ := st.Get([]string{"x"}, false, false)
	if v.(*value.Int).V.Int64() != 2 {
		t.Errorf("expected outer x updated to 2, got %#v", v)
	}
}

func TestDefineFunRegistersOverloadsSortedByArity(t *testing.T) {
	st := New()
	two := &FunRecord{Name: "f", MinArgs: 2, MaxArgs: 2}
	one := &FunRecord{Name: "f", MinArgs: 1, MaxArgs: 1}
	if err := st.DefineFun("f", two); err != nil {
		t.Fatalf("DefineFun: %v", err)
	}
	if err := st.DefineFun("f", one); err != nil {
		t.Fatalf("DefineFun: %v", err)
	}
	recs, ok := st.Top().Funcs("f")
	if !ok || len(recs) != 2 {
		t.Fatalf("expected 2 overloads, got %v", recs)
	}
	if recs[0].MaxArgs != 1 || recs[1].MaxArgs != 2 {
		t.Errorf("expected overloads sorted by MaxArgs ascending, got %d then %d", recs[0].MaxArgs, recs[1].MaxArgs)
	}
}

func TestDefineFunRejectsAmbiguousOverlap(t *testing.T) {
	st := New()
	a := &FunRecord{Name: "f", MinArgs: 1, MaxArgs: 2}
	b := &FunRecord{Name: "f", MinArgs: 2, MaxArgs: 3}
	if err := st.DefineFun("f", a); err != nil {
		t.Fatalf("DefineFun: %v", err)
	}
	if err := st.DefineFun("f", b); err == nil {
		t.Error("expected AmbiguousRedefinition for overlapping arity ranges")
	}
}

func TestDefineFunReplacesSameSignature(t *testing.T) {
	st := New()
	first := &FunRecord{Name: "f", MinArgs: 1, MaxArgs: 1, Params: []ParamSig{{Name: "x"}}}
	second := &FunRecord{Name: "f", MinArgs: 1, MaxArgs: 1, Params: []ParamSig{{Name: "x"}}}
	if err := st.DefineFun("f", first); err != nil {
		t.Fatalf("DefineFun: %v", err)
	}
	if err := st.DefineFun("f", second); err != nil {
		t.Fatalf("DefineFun (replace): %v", err)
	}
	recs, _ := st.Top().Funcs("f")
	if len(recs) != 1 || recs[0] != second {
		t.Errorf("expected same-signature redefinition to replace in place, got %v", recs)
	}
}

func TestMoveTopAndRestoreCursor(t *testing.T) {
	st := New()
	f := st.Push(false)
	prev := st.MoveTop(st.Root())
	if st.Top() != st.Root() {
		t.Error("expected cursor moved to root frame")
	}
	st.RestoreCursor(prev)
	if st.Top() != f {
		t.Error("expected cursor restored to the pushed frame")
	}
}
