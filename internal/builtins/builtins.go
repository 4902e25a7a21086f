// Package builtins registers Mash's minimal reference standard library
// (spec §1: "the built-in function library" is an external collaborator;
// CORE only needs to exercise the Internal-body dispatch path, spec §4.6).
// Each function here is registered as a root-frame overload under its bare
// name with an ir.InternalFunc body; no `<name>_<arity>` key is used.
package builtins

import (
	"math/big"
	"strconv"

	mashErr "mash/internal/errors"
	"mash/internal/ir"
	"mash/internal/symtab"
	"mash/internal/value"
)

// Register installs the reference builtins into table's root frame. It's
// called once, before lowering, so bare calls to `len`, `str`, and friends
// resolve the same way a user-defined global function would.
func Register(table *symtab.SymbolTable) error {
	for _, b := range builtinList {
		rec := &symtab.FunRecord{
			Name:     b.name,
			MinArgs:  1,
			MaxArgs:  1,
			Params:   []symtab.ParamSig{{Name: "v"}},
			Internal: true,
			Body:     ir.InternalFunc(b.fn),
		}
		if err := table.DefineFun(b.name, rec); err != nil {
			return err
		}
	}
	return nil
}

type builtin struct {
	name string
	fn   ir.InternalFunc
}

var builtinList = []builtin{
	{"len", biLen},
	{"str", biStr},
	{"int", biInt},
	{"float", biFloat},
	{"bool", biBool},
	{"type", biType},
}

func biLen(_ ir.Context, _ *value.Class, args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case *value.List:
		return value.NewInt(int64(len(v.Elements))), nil
	case *value.Dict:
		return value.NewInt(int64(len(v.Entries))), nil
	case *value.String:
		return value.NewInt(int64(len([]rune(v.Escaped)))), nil
	}
	return nil, mashErr.New(mashErr.TypeError, "'"+args[0].TypeName()+"' has no length", mashErr.Location{}, "")
}

func biStr(_ ir.Context, _ *value.Class, args []value.Value) (value.Value, error) {
	s := args[0].ToString()
	return value.NewString(s, s), nil
}

func biInt(_ ir.Context, _ *value.Class, args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case *value.Int:
		return v, nil
	case *value.Float:
		return value.NewInt(int64(v.V)), nil
	case *value.Bool:
		if v.V {
			return value.NewInt(1), nil
		}
		return value.NewInt(0), nil
	case *value.String:
		n, ok := new(big.Int).SetString(v.Escaped, 10)
		if !ok {
			return nil, mashErr.New(mashErr.ValueError, "invalid literal for int(): '"+v.Escaped+"'", mashErr.Location{}, "")
		}
		return &value.Int{V: n}, nil
	}
	return nil, mashErr.New(mashErr.TypeError, "cannot convert '"+args[0].TypeName()+"' to Int", mashErr.Location{}, "")
}

func biFloat(_ ir.Context, _ *value.Class, args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case *value.Float:
		return v, nil
	case *value.Int:
		f := new(big.Float).SetInt(v.V)
		fl, _ := f.Float64()
		return value.NewFloat(fl), nil
	case *value.String:
		f, err := strconv.ParseFloat(v.Escaped, 64)
		if err != nil {
			return nil, mashErr.New(mashErr.ValueError, "invalid literal for float(): '"+v.Escaped+"'", mashErr.Location{}, "")
		}
		return value.NewFloat(f), nil
	}
	return nil, mashErr.New(mashErr.TypeError, "cannot convert '"+args[0].TypeName()+"' to Float", mashErr.Location{}, "")
}

func biBool(_ ir.Context, _ *value.Class, args []value.Value) (value.Value, error) {
	b, err := value.AsBool(args[0])
	if err != nil {
		return nil, err
	}
	return value.NewBool(b), nil
}

func biType(_ ir.Context, _ *value.Class, args []value.Value) (value.Value, error) {
	s := args[0].TypeName()
	return value.NewString(s, s), nil
}
