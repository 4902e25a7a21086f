package ir

import (
	"fmt"
	"sort"

	"mash/internal/symtab"
	"mash/internal/value"
)

// Arg is one call argument as the generator emits it: Name empty means
// positional, set means named (spec §4.6 steps 5-6).
type Arg struct {
	Name  string
	Value Operand
}

// InternalFunc is the host-language shape of a built-in function/method
// body (spec §4.6). It reaches a Fun through Fun.InternalFunc or through
// direct registration (internal/builtins); the generator does not look
// bodies up by `<name>_<arity>`, and a `= internal` declaration lowered from
// source gets no InternalFunc. receiver is nil for a plain function.
type InternalFunc func(ctx Context, receiver *value.Class, args []value.Value) (value.Value, error)

// constructorName is the reserved overload-list key a class's constructors
// are registered under in its ClassFrame (spec §4.6 step 2-3).
const constructorName = "new"

// Fun registers one overload under Name (spec §4.1's define_fun): in the
// current top frame for a plain function, or under the reserved
// constructor key in the enclosing ClassFrame when IsConstructor is set.
type Fun struct {
	Name          string
	Params        []symtab.ParamSig
	Body          Block
	IsConstructor bool
	Internal      bool
	InternalFunc  InternalFunc
}

func (f *Fun) Exec(ctx Context) error {
	min, max, typed := arity(f.Params)
	rec := &symtab.FunRecord{
		Name:          f.Name,
		MinArgs:       min,
		MaxArgs:       max,
		Params:        f.Params,
		TypedCount:    typed,
		IsConstructor: f.IsConstructor,
		Internal:      f.Internal,
	}
	if f.Internal {
		rec.Body = f.InternalFunc
	} else {
		rec.Body = f.Body
	}
	name := f.Name
	if f.IsConstructor {
		name = constructorName
	}
	return classify(ctx.Table().DefineFun(name, rec))
}

func (f *Fun) String() string {
	kind := "FUN"
	if f.IsConstructor {
		kind = "CTOR"
	}
	return fmt.Sprintf("%s %s/%d", kind, f.Name, len(f.Params))
}

func arity(params []symtab.ParamSig) (min, max, typed int) {
	for _, p := range params {
		if len(p.Types) > 0 {
			typed++
		}
		if p.Variadic {
			return min, symtab.MaxArgsUnbounded, typed
		}
		if !p.HasDefault() {
			min++
		}
		max++
	}
	return min, max, typed
}

// Lambda builds a value.Function closing over the current frame and
// assigns it to Dst (spec §4.3's Lambda expression).
type Lambda struct {
	Params []symtab.ParamSig
	Body   Block
	Dst    string
}

func (l *Lambda) Exec(ctx Context) error {
	min, max, _ := arity(l.Params)
	fn := &value.Function{
		Params:  toValueParams(l.Params),
		MinArgs: min,
		MaxArgs: max,
		Body:    l.Body,
		Closure: ctx.Table().Top(),
	}
	return assign(ctx, l.Dst, fn)
}

func (l *Lambda) String() string { return fmt.Sprintf("LAMBDA/%d, %s", len(l.Params), l.Dst) }

func toValueParams(params []symtab.ParamSig) []value.Param {
	out := make([]value.Param, len(params))
	for i, p := range params {
		out[i] = value.Param{Name: p.Name, Types: p.Types, Default: p.Default, Variadic: p.Variadic}
	}
	return out
}

// FunCall invokes a bare/scoped function or class constructor (Receiver
// nil), or a method/attribute call against an already-resolved receiver
// value (Receiver set) — spec §4.6.
type FunCall struct {
	Path     []string
	Global   bool
	NonLocal bool
	Receiver *Operand
	Method   string
	Args     []Arg
	Dst      string
}

func (c *FunCall) Exec(ctx Context) error {
	args, err := evalArgs(ctx, c.Args)
	if err != nil {
		return err
	}
	var result value.Value
	if c.Receiver != nil {
		recv, err := resolve(ctx, *c.Receiver)
		if err != nil {
			return err
		}
		result, err = DispatchMethod(ctx, recv, c.Method, args)
		if err != nil {
			return classify(err)
		}
	} else {
		result, err = DispatchCall(ctx, c.Path, c.Global, c.NonLocal, args)
		if err != nil {
			return classify(err)
		}
	}
	return assign(ctx, c.Dst, result)
}

func (c *FunCall) String() string {
	if c.Receiver != nil {
		return fmt.Sprintf("CALL %s.%s/%d, %s", *c.Receiver, c.Method, len(c.Args), c.Dst)
	}
	return fmt.Sprintf("CALL %s/%d, %s", Operand{Path: c.Path, Global: c.Global, NonLocal: c.NonLocal}, len(c.Args), c.Dst)
}

func evalArgs(ctx Context, argExprs []Arg) ([]value.CallArg, error) {
	out := make([]value.CallArg, len(argExprs))
	for i, a := range argExprs {
		v, err := resolve(ctx, a.Value)
		if err != nil {
			return nil, err
		}
		out[i] = value.CallArg{Name: a.Name, Value: v}
	}
	return out, nil
}

// DispatchCall resolves and invokes a bare or `::`-scoped callee (spec
// §4.6 steps 1-3's non-method path): an overload set, a class (construct a
// fresh instance), or a plain Function value bound under that name.
func DispatchCall(ctx Context, path []string, global, nonlocal bool, args []value.CallArg) (value.Value, error) {
	st := ctx.Table()
	if recs, frame, err := st.GetFuncs(path, global, nonlocal); err == nil {
		return dispatchOverloads(ctx, recs, frame, nil, args)
	}

	v, err := st.Get(path, global, nonlocal)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case *symtab.Frame:
		if t.Kind != symtab.ClassFrameKind {
			return nil, typeError("'" + t.FrameName() + "' is not callable")
		}
		return constructInstance(ctx, t, args)
	case *value.Function:
		return callFunction(ctx, t, nil, args)
	}
	return nil, typeError("'" + v.TypeName() + "' is not callable")
}

// DispatchMethod resolves and invokes name against an already-evaluated
// receiver (spec §4.6 step 1's method path): a Class instance dispatches
// through its MethodInvoker first, falling back to a callable attribute; a
// SpaceFrame dispatches a scoped function; a bare Function rejects (it has
// no methods of its own).
func DispatchMethod(ctx Context, receiver value.Value, name string, args []value.CallArg) (value.Value, error) {
	switch r := receiver.(type) {
	case *value.Class:
		result, found, err := r.Frame.InvokeMethod(r, name, args)
		if err != nil {
			return nil, err
		}
		if found {
			return result, nil
		}
		if v, ok := r.Attrs.Get(name); ok {
			if fn, ok := v.(*value.Function); ok {
				return callFunction(ctx, fn, r, args)
			}
			return nil, typeError("'" + v.TypeName() + "' attribute '" + name + "' is not callable")
		}
		return nil, typeError("'" + r.TypeName() + "' has no method '" + name + "'")
	case *symtab.Frame:
		recs, ok := r.Funcs(name)
		if !ok {
			return nil, undefinedReference(strjoin(r.FrameName(), name))
		}
		return dispatchOverloads(ctx, recs, r, nil, args)
	}
	return nil, typeError("'" + receiver.TypeName() + "' has no method '" + name + "'")
}

func strjoin(a, b string) string { return a + "::" + b }

func constructInstance(ctx Context, cls *symtab.Frame, args []value.CallArg) (value.Value, error) {
	inst, err := ctx.NewInstance(cls)
	if err != nil {
		return nil, err
	}
	recs, ok := cls.Funcs(constructorName)
	if !ok || len(recs) == 0 {
		return inst, nil
	}
	if _, err := dispatchOverloads(ctx, recs, cls, inst, args); err != nil {
		return nil, err
	}
	return inst, nil
}

// paramSig is the common dispatch-relevant shape of symtab.ParamSig and
// value.Param, letting bindArgs/selectOverload work uniformly over named
// functions and lambdas.
type paramSig struct {
	Name     string
	Types    []string
	Default  value.Value
	Variadic bool
}

func fromSymtabParams(params []symtab.ParamSig) []paramSig {
	out := make([]paramSig, len(params))
	for i, p := range params {
		out[i] = paramSig{Name: p.Name, Types: p.Types, Default: p.Default, Variadic: p.Variadic}
	}
	return out
}

func fromValueParams(params []value.Param) []paramSig {
	out := make([]paramSig, len(params))
	for i, p := range params {
		out[i] = paramSig{Name: p.Name, Types: p.Types, Default: p.Default, Variadic: p.Variadic}
	}
	return out
}

type namedValue struct {
	Name  string
	Value value.Value
}

// bindArgs implements spec §4.6 steps 5-6 for one candidate: positional
// arguments fill parameters left to right (a variadic trailing parameter
// collects the remainder into a List), named arguments fill any
// default-bearing parameter not already filled positionally, and a
// still-unfilled parameter without a default fails.
func bindArgs(params []paramSig, args []value.CallArg) ([]namedValue, error) {
	var positional []value.Value
	named := map[string]value.Value{}
	for _, a := range args {
		if a.Name == "" {
			positional = append(positional, a.Value)
		} else {
			named[a.Name] = a.Value
		}
	}

	bound := make([]namedValue, 0, len(params))
	pi := 0
	for _, p := range params {
		if p.Variadic {
			rest := make([]value.Value, 0, len(positional)-pi)
			for ; pi < len(positional); pi++ {
				rest = append(rest, positional[pi])
			}
			bound = append(bound, namedValue{p.Name, value.NewList(rest...)})
			continue
		}
		if pi < len(positional) {
			v := positional[pi]
			pi++
			if len(p.Types) > 0 && !matchesType(v, p.Types) {
				return nil, typeError("argument '" + p.Name + "' must be one of " + fmt.Sprint(p.Types) + ", got '" + v.TypeName() + "'")
			}
			bound = append(bound, namedValue{p.Name, v})
			continue
		}
		if v, ok := named[p.Name]; ok && p.Default != nil {
			if len(p.Types) > 0 && !matchesType(v, p.Types) {
				return nil, typeError("argument '" + p.Name + "' must be one of " + fmt.Sprint(p.Types) + ", got '" + v.TypeName() + "'")
			}
			delete(named, p.Name)
			bound = append(bound, namedValue{p.Name, v})
			continue
		}
		if p.Default != nil {
			bound = append(bound, namedValue{p.Name, p.Default})
			continue
		}
		return nil, typeError("missing required argument '" + p.Name + "'")
	}
	if pi < len(positional) || len(named) > 0 {
		return nil, typeError("too many arguments")
	}
	return bound, nil
}

func matchesType(v value.Value, types []string) bool {
	for _, t := range types {
		if v.TypeName() == t {
			return true
		}
	}
	return false
}

// selectOverload filters candidates by max_args (spec §4.6 step 4), tries
// the most-specific-first ordering DefineFun already sorted (plus a stable
// sort on TypedCount, since DefineFun only orders by MaxArgs), and returns
// the first whose binding succeeds.
func selectOverload(recs []*symtab.FunRecord, args []value.CallArg) (*symtab.FunRecord, []namedValue, error) {
	argc := len(args)
	candidates := make([]*symtab.FunRecord, 0, len(recs))
	for _, r := range recs {
		if r.MaxArgs >= argc {
			candidates = append(candidates, r)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].TypedCount > candidates[j].TypedCount
	})

	var lastErr error
	for _, rec := range candidates {
		bound, err := bindArgs(fromSymtabParams(rec.Params), args)
		if err != nil {
			lastErr = err
			continue
		}
		return rec, bound, nil
	}
	if lastErr != nil {
		return nil, nil, lastErr
	}
	name := "<anonymous>"
	if len(recs) > 0 {
		name = recs[0].Name
	}
	return nil, nil, typeError(fmt.Sprintf("no overload of '%s' accepts %d argument(s)", name, argc))
}

// InvokeOverloads runs the best-matching overload among recs against args —
// a plain function call (instance nil) or a method/constructor call
// (instance set), spec §4.6. It's exported so the evaluator's Class
// MethodInvoker wrapper can share FunCall's own overload-selection and
// frame bookkeeping instead of reimplementing it against unexported
// internals.
func InvokeOverloads(ctx Context, recs []*symtab.FunRecord, definingFrame *symtab.Frame, instance *value.Class, args []value.CallArg) (value.Value, error) {
	return dispatchOverloads(ctx, recs, definingFrame, instance, args)
}

func dispatchOverloads(ctx Context, recs []*symtab.FunRecord, definingFrame *symtab.Frame, instance *value.Class, args []value.CallArg) (value.Value, error) {
	rec, bound, err := selectOverload(recs, args)
	if err != nil {
		return nil, err
	}
	if rec.Internal {
		fn, ok := rec.Body.(InternalFunc)
		if !ok {
			return nil, incorrectDefinition("internal function '" + rec.Name + "' has no host implementation")
		}
		vals := make([]value.Value, len(bound))
		for i, b := range bound {
			vals[i] = b.Value
		}
		result, err := fn(ctx, instance, vals)
		if err != nil {
			return nil, addCallFrame(classify(err), rec.Name)
		}
		return result, nil
	}
	body, ok := rec.Body.(Block)
	if !ok {
		return nil, incorrectDefinition("function '" + rec.Name + "' has no body")
	}
	result, err := runFunctionBody(ctx, definingFrame, body, instance, bound)
	if err != nil {
		return nil, addCallFrame(err, rec.Name)
	}
	return result, nil
}

func callFunction(ctx Context, fn *value.Function, instance *value.Class, args []value.CallArg) (value.Value, error) {
	bound, err := bindArgs(fromValueParams(fn.Params), args)
	if err != nil {
		return nil, classify(err)
	}
	body, ok := fn.Body.(Block)
	if !ok {
		return nil, incorrectDefinition("lambda has no body")
	}
	var closure *symtab.Frame
	if cf, ok := fn.Closure.(*symtab.Frame); ok {
		closure = cf
	}
	result, err := runFunctionBody(ctx, closure, body, instance, bound)
	if err != nil {
		return nil, addCallFrame(err, "<lambda>")
	}
	return result, nil
}

// runFunctionBody implements spec §4.6 steps 7-8: save the cursor, move_top
// to the callee's defining frame if it's still on the stack, push a
// shadowing frame, bind `this` (for methods/constructors) then the
// resolved actuals, run the body, and on a Return signal pop exactly the
// frames it crossed (its own dispatch frame plus whatever nested
// constructs deferred their pop) before restoring the cursor.
func runFunctionBody(ctx Context, definingFrame *symtab.Frame, body Block, instance *value.Class, bound []namedValue) (value.Value, error) {
	st := ctx.Table()
	prevCursor := st.Cursor()
	if definingFrame != nil {
		st.MoveTop(definingFrame)
	}
	st.Push(true)

	if instance != nil {
		if err := st.Declare("this", instance); err != nil {
			st.Pop(1)
			st.RestoreCursor(prevCursor)
			return nil, err
		}
	}
	for _, b := range bound {
		if err := st.Declare(b.Name, value.Clone(b.Value)); err != nil {
			st.Pop(1)
			st.RestoreCursor(prevCursor)
			return nil, err
		}
	}

	err := body.Exec(ctx)
	if sig := AsSignal(err); sig != nil && sig.Kind == SigReturn {
		st.Pop(sig.Frames + 1)
		st.RestoreCursor(prevCursor)
		return sig.Value, nil
	}
	st.Pop(1)
	st.RestoreCursor(prevCursor)
	if err != nil {
		return nil, err
	}
	return value.NilValue, nil
}
