package builtins

import (
	"testing"

	"mash/internal/symtab"
	"mash/internal/value"
)

func TestRegisterInstallsAllBuiltins(t *testing.T) {
	table := symtab.New()
	if err := Register(table); err != nil {
		t.Fatalf("Register: %v", err)
	}
	for _, name := range []string{"len", "str", "int", "float", "bool", "type"} {
		if _, ok := table.Top().Funcs(name); !ok {
			t.Errorf("expected builtin %q registered", name)
		}
	}
}

func TestBiLen(t *testing.T) {
	v, err := biLen(nil, nil, []value.Value{value.NewList(value.NewInt(1), value.NewInt(2))})
	if err != nil {
		t.Fatalf("biLen: %v", err)
	}
	if i, ok := v.(*value.Int); !ok || i.V.Int64() != 2 {
		t.Errorf("expected len([1,2]) == 2, got %#v", v)
	}
	if _, err := biLen(nil, nil, []value.Value{value.NewInt(1)}); err == nil {
		t.Error("expected TypeError for len(Int)")
	}
}

func TestBiStr(t *testing.T) {
	v, err := biStr(nil, nil, []value.Value{value.NewInt(42)})
	if err != nil {
		t.Fatalf("biStr: %v", err)
	}
	s, ok := v.(*value.String)
	if !ok || s.Escaped != "42" {
		t.Errorf("expected str(42) == \"42\", got %#v", v)
	}
}

func TestBiIntConversions(t *testing.T) {
	v, err := biInt(nil, nil, []value.Value{value.NewString("123", "123")})
	if err != nil {
		t.Fatalf("biInt: %v", err)
	}
	if i, ok := v.(*value.Int); !ok || i.V.Int64() != 123 {
		t.Errorf("expected int(\"123\") == 123, got %#v", v)
	}
	if _, err := biInt(nil, nil, []value.Value{value.NewString("abc", "abc")}); err == nil {
		t.Error("expected ValueError for int(\"abc\")")
	}
}

func TestBiFloatConversions(t *testing.T) {
	v, err := biFloat(nil, nil, []value.Value{value.NewInt(3)})
	if err != nil {
		t.Fatalf("biFloat: %v", err)
	}
	if f, ok := v.(*value.Float); !ok || f.V != 3.0 {
		t.Errorf("expected float(3) == 3.0, got %#v", v)
	}
}

func TestBiBool(t *testing.T) {
	v, err := biBool(nil, nil, []value.Value{value.NewInt(0)})
	if err != nil {
		t.Fatalf("biBool: %v", err)
	}
	if b, ok := v.(*value.Bool); !ok || b.V {
		t.Errorf("expected bool(0) == false, got %#v", v)
	}
}

func TestBiType(t *testing.T) {
	v, err := biType(nil, nil, []value.Value{value.NewInt(1)})
	if err != nil {
		t.Fatalf("biType: %v", err)
	}
	if s, ok := v.(*value.String); !ok || s.Escaped != "Int" {
		t.Errorf("expected type(1) == \"Int\", got %#v", v)
	}
}
