package lowering

import (
	"fmt"

	mashErr "mash/internal/errors"
	"mash/internal/ir"
	"mash/internal/module"
	"mash/internal/parser"
	"mash/internal/symtab"
	"mash/internal/value"
)

// Generator is Phase B (spec §4.4/§4.5): it walks a folded parse tree
// top-down, emitting ir.Block and, for the declarative constructs (Fun,
// Space, Class, Enum, Import), mutating the shared symbol table directly and
// immediately rather than emitting anything for the evaluator to re-run.
// That mutation has to happen now, during generation, so that the Frame
// objects functions/classes/spaces attach to are the very ones later FunCall/
// Member instructions will find at Exec time — running PushSpace/PushClass/
// DefineFun a second time at runtime would create fresh, empty Frame values
// and silently lose everything registered into the first ones.
//
// Generator implements ir.Context so it can reuse the IR package's own Exec
// methods (Fun.Exec, SpacePush.Exec, ...) for this immediate registration
// instead of duplicating DefineFun/arity bookkeeping here.
type Generator struct {
	table  *symtab.SymbolTable
	loader *module.Loader
	file   string
	temp   int
}

// NewGenerator builds a Generator sharing table with the eventual evaluator
// (spec §4.5: lowering and runtime operate on the same symbol table).
func NewGenerator(table *symtab.SymbolTable, loader *module.Loader, file string) *Generator {
	return &Generator{table: table, loader: loader, file: file}
}

func (g *Generator) Table() *symtab.SymbolTable { return g.table }
func (g *Generator) Mode() ir.Mode              { return ir.Analyzer }

var _ ir.Context = (*Generator)(nil)

// Print/Note/Doc are no-ops during lowering: spec §4.5 says analyzer-mode
// Exec must not perform ordinary side effects, and the Generator never
// executes a Print/Note/Doc node itself (those are only ever emitted into
// the output Block for the evaluator to run later).
func (g *Generator) Print(string) {}
func (g *Generator) Note(string)  {}
func (g *Generator) Doc(string)   {}

// NewInstance constructs a Class; only the evaluator can, since building one
// means resolving and flattening inherited attributes, which requires
// running code the Generator never does.
func (g *Generator) NewInstance(*symtab.Frame) (*value.Class, error) {
	return nil, mashErr.New(mashErr.Internal, "class instantiation is not available during lowering", mashErr.Location{}, "")
}

// Import loads path under alias (spec §4.7) and lowers the module's
// statements against this same table, under a SpaceFrame named by the
// alias — like Fun/Space/Class, an import is pure symbol-table registration,
// so nothing needs to come back for the evaluator to run later.
func (g *Generator) Import(path, alias string) error {
	mod, err := g.loader.Load(path, alias)
	if err != nil {
		return err
	}
	push := &ir.SpacePush{Name: mod.Alias}
	if err := push.Exec(g); err != nil {
		return err
	}
	sub := NewGenerator(g.table, g.loader, mod.Path)
	if _, err := sub.Lower(mod.Stmts); err != nil {
		return err
	}
	(&ir.SpacePop{}).Exec(g)
	return nil
}

// newTemp allocates a collision-free scratch name: '$' never appears in an
// identifier or operator token the lexer scans, so a '$'-prefixed name can
// never collide with user source.
func (g *Generator) newTemp() string {
	g.temp++
	return fmt.Sprintf("$t%d", g.temp)
}

// Lower runs Phase B over a top-level or nested statement list.
func (g *Generator) Lower(stmts []parser.Stmt) (ir.Block, error) {
	var out ir.Block
	for _, s := range stmts {
		block, err := g.lowerStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
	}
	return out, nil
}

func (g *Generator) lowerStmt(s parser.Stmt) (ir.Block, error) {
	switch n := s.(type) {
	case *parser.ExprStmt:
		return g.lowerExprStmt(n)
	case *parser.BareNameStmt:
		return g.lowerBareName(n)
	case *parser.AssignStmt:
		return g.lowerAssign(n)
	case *parser.MultiAssignStmt:
		return g.lowerMultiAssign(n)
	case *parser.IndexAssignStmt:
		return g.lowerIndexAssign(n)
	case *parser.BlockStmt:
		return g.lowerBlockStmt(n)
	case *parser.IfStmt:
		return g.lowerIf(n)
	case *parser.WhileStmt:
		return g.lowerWhile(n)
	case *parser.DoWhileStmt:
		return g.lowerDoWhile(n)
	case *parser.ForStmt:
		return g.lowerFor(n)
	case *parser.BreakStmt:
		return ir.Block{ir.BreakStmt{}}, nil
	case *parser.ContinueStmt:
		return ir.Block{ir.ContinueStmt{}}, nil
	case *parser.ReturnStmt:
		return g.lowerReturn(n)
	case *parser.FunDecl:
		return g.lowerFunDecl(n)
	case *parser.ClassDecl:
		return g.lowerClassDecl(n)
	case *parser.EnumDecl:
		return g.lowerEnumDecl(n)
	case *parser.SpaceDecl:
		return g.lowerSpaceDecl(n)
	case *parser.ImportStmt:
		return g.lowerImportStmt(n)
	case *parser.NoteStmt:
		return ir.Block{&ir.Note{Text: n.Text}}, nil
	case *parser.DocStmt:
		return ir.Block{&ir.Doc{Text: n.Text}}, nil
	default:
		return nil, mashErr.New(mashErr.Internal, fmt.Sprintf("lowering: unhandled statement %T", s), mashErr.Location{}, "")
	}
}

// lowerExprStmt lowers any expression statement other than a bare single
// name: spec §4.4 says this always prints, never declares (that's
// BareNameStmt's job).
func (g *Generator) lowerExprStmt(n *parser.ExprStmt) (ir.Block, error) {
	block, op, err := g.lowerExpr(n.Expr)
	if err != nil {
		return nil, err
	}
	return append(block, &ir.Print{Src: op}), nil
}

// lowerBareName is a single unscoped identifier at statement position: first
// mention declares it to Nil and prints nothing further, later mentions
// print the current value (spec §4.4's SetOrPrint).
func (g *Generator) lowerBareName(n *parser.BareNameStmt) (ir.Block, error) {
	return ir.Block{&ir.SetOrPrint{Dst: n.Name.Segments[0], Default: ir.Const(value.NilValue)}}, nil
}

func (g *Generator) lowerAssign(n *parser.AssignStmt) (ir.Block, error) {
	rhs := n.Value
	if n.Operator != "=" {
		rhs = &parser.Binary{
			Position: n.Position,
			Left:     n.Target,
			Operator: trimAssignOp(n.Operator),
			Right:    n.Value,
		}
	}
	block, op, err := g.lowerExpr(rhs)
	if err != nil {
		return nil, err
	}
	t := n.Target
	if len(t.Segments) > 1 || t.Global || t.NonLocal {
		return append(block, &ir.StoreVar{Path: t.Segments, Global: t.Global, NonLocal: t.NonLocal, Src: op}), nil
	}
	return append(block, &ir.AssignVar{Dst: t.Segments[0], Src: op}), nil
}

// trimAssignOp strips the trailing "=" from a compound assignment operator
// ("+=" -> "+", "++=" -> "++"); AssignStmt never sees bare "=" here since
// lowerAssign only calls this when Operator != "=".
func trimAssignOp(op string) string { return op[:len(op)-1] }

func (g *Generator) lowerMultiAssign(n *parser.MultiAssignStmt) (ir.Block, error) {
	block, op, err := g.lowerExpr(n.Value)
	if err != nil {
		return nil, err
	}
	dst := make([]string, len(n.Targets))
	for i, t := range n.Targets {
		dst[i] = t.Segments[0]
	}
	return append(block, &ir.AssignMultiple{Dst: dst, Src: op}), nil
}

func (g *Generator) lowerIndexAssign(n *parser.IndexAssignStmt) (ir.Block, error) {
	objBlock, objOp, err := g.lowerExpr(n.Object)
	if err != nil {
		return nil, err
	}
	idxBlock, idxOp, err := g.lowerExpr(n.Index)
	if err != nil {
		return nil, err
	}
	valBlock, valOp, err := g.lowerExpr(n.Value)
	if err != nil {
		return nil, err
	}
	block := append(objBlock, idxBlock...)
	block = append(block, valBlock...)
	block = append(block, &ir.MemberAssign{Object: objOp, Index: idxOp, IsAttr: n.IsAttr, Src: valOp})
	return block, nil
}

// lowerBlockStmt lowers a standalone `{ ... }` appearing as an ordinary
// statement (not owned by a control construct, which already has braces of
// its own) — it needs its own pushed frame, which an always-true If gives it
// for free without a dedicated "push a bare frame" IR node.
func (g *Generator) lowerBlockStmt(n *parser.BlockStmt) (ir.Block, error) {
	body, err := g.Lower(n.Body)
	if err != nil {
		return nil, err
	}
	return ir.Block{&ir.If{Cond: ir.Const(value.NewBool(true)), Then: ir.Branch{Body: body, OwnFrame: false}}}, nil
}

func (g *Generator) lowerBranch(stmts []parser.Stmt) (ir.Branch, error) {
	body, err := g.Lower(stmts)
	if err != nil {
		return ir.Branch{}, err
	}
	return ir.Branch{Body: body, OwnFrame: false}, nil
}

func (g *Generator) lowerIf(n *parser.IfStmt) (ir.Block, error) {
	condBlock, condOp, err := g.lowerExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	then, err := g.lowerBranch(n.Then)
	if err != nil {
		return nil, err
	}
	elifs := make([]ir.ElifClause, len(n.Elifs))
	for i, e := range n.Elifs {
		eCondBlock, eCondOp, err := g.lowerExpr(e.Cond)
		if err != nil {
			return nil, err
		}
		if len(eCondBlock) > 0 {
			return nil, incompleteElifCondition()
		}
		branch, err := g.lowerBranch(e.Body)
		if err != nil {
			return nil, err
		}
		elifs[i] = ir.ElifClause{Cond: eCondOp, Branch: branch}
	}
	var elsePtr *ir.Branch
	if n.Else != nil {
		elseBranch, err := g.lowerBranch(n.Else)
		if err != nil {
			return nil, err
		}
		elsePtr = &elseBranch
	}
	stmt := &ir.If{Cond: condOp, Then: then, Elifs: elifs, Else: elsePtr}
	return append(condBlock, stmt), nil
}

// incompleteElifCondition reports an elif condition expression that itself
// needs prelude statements (a call, an index, ...) — If's IR shape only
// carries a bare Operand per elif arm, so such a condition would need its
// prelude re-run on every earlier-arm miss; the parser's grammar never
// produces this today (elif conditions are ordinary expressions), but the
// check keeps a future complex-elif-condition from silently losing its
// prelude instead of erroring.
func incompleteElifCondition() error {
	return mashErr.New(mashErr.Internal, "elif condition requires a prelude the IR form can't carry", mashErr.Location{}, "")
}

func (g *Generator) lowerWhile(n *parser.WhileStmt) (ir.Block, error) {
	condBlock, condOp, err := g.lowerExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	condName := g.newTemp()
	recompute := append(ir.Block{}, condBlock...)
	recompute = append(recompute, &ir.AssignVar{Dst: condName, Src: condOp})
	body, err := g.lowerBranch(n.Body)
	if err != nil {
		return nil, err
	}
	return ir.Block{&ir.While{CondName: condName, Recompute: recompute, Body: body}}, nil
}

func (g *Generator) lowerDoWhile(n *parser.DoWhileStmt) (ir.Block, error) {
	body, err := g.lowerBranch(n.Body)
	if err != nil {
		return nil, err
	}
	condBlock, condOp, err := g.lowerExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	condName := g.newTemp()
	recompute := append(ir.Block{}, condBlock...)
	recompute = append(recompute, &ir.AssignVar{Dst: condName, Src: condOp})
	return ir.Block{&ir.DoWhile{Body: body, CondName: condName, Recompute: recompute}}, nil
}

func (g *Generator) lowerFor(n *parser.ForStmt) (ir.Block, error) {
	iterBlock, iterOp, err := g.lowerExpr(n.Iterable)
	if err != nil {
		return nil, err
	}
	body, err := g.lowerBranch(n.Body)
	if err != nil {
		return nil, err
	}
	stmt := &ir.For{Vars: n.Vars, Iterable: iterOp, Body: body}
	return append(iterBlock, stmt), nil
}

func (g *Generator) lowerReturn(n *parser.ReturnStmt) (ir.Block, error) {
	if n.Value == nil {
		return ir.Block{&ir.ReturnStmt{}}, nil
	}
	block, op, err := g.lowerExpr(n.Value)
	if err != nil {
		return nil, err
	}
	return append(block, &ir.ReturnStmt{Value: op, HasValue: true}), nil
}

// lowerParams turns the parser's Param list into symtab.ParamSig, folding
// each default expression (spec §4.4: defaults must themselves be constant,
// since they're evaluated once at registration time, not per call).
func (g *Generator) lowerParams(params []parser.Param) ([]symtab.ParamSig, error) {
	out := make([]symtab.ParamSig, len(params))
	for i, p := range params {
		var def value.Value
		if p.Default != nil {
			lit, ok := Fold(p.Default).(*parser.Literal)
			if !ok {
				return nil, mashErr.New(mashErr.IncorrectDefinition,
					"parameter '"+p.Name+"' default must be a constant expression", mashErr.Location{}, "")
			}
			def = lit.Value
		}
		out[i] = symtab.ParamSig{Name: p.Name, Types: p.Types, Default: def, Variadic: p.Variadic}
	}
	return out, nil
}

// lowerFunDecl registers the function/method/operator immediately (spec
// §4.4/§4.6): IsConstructor is set when the declaring name matches the
// enclosing ClassFrame, which also means the dispatcher will bind the
// instance as `this` rather than as an explicit first parameter.
func (g *Generator) lowerFunDecl(n *parser.FunDecl) (ir.Block, error) {
	params, err := g.lowerParams(n.Params)
	if err != nil {
		return nil, err
	}
	body, err := g.Lower(n.Body)
	if err != nil {
		return nil, err
	}
	isCtor := false
	if cls := g.table.CurrentClass(); cls != nil && cls.Name == n.Name && !n.IsOperator {
		isCtor = true
	}
	name := n.Name
	fn := &ir.Fun{Name: name, Params: params, Body: body, IsConstructor: isCtor, Internal: n.Internal}
	if err := fn.Exec(g); err != nil {
		return nil, err
	}
	return nil, nil
}

// lowerClassDecl pushes a ClassFrame, lowers the body into it (so nested
// FunDecl/AssignStmt register against the class's own frame), then pops —
// the frame, and everything registered into it, persists for the program's
// lifetime even though nothing runs again at evaluator time.
func (g *Generator) lowerClassDecl(n *parser.ClassDecl) (ir.Block, error) {
	push := &ir.ClassPush{Name: n.Name, Extends: n.Extends}
	if err := push.Exec(g); err != nil {
		return nil, err
	}
	if _, err := g.Lower(n.Body); err != nil {
		return nil, err
	}
	(&ir.ClassPop{}).Exec(g)
	return nil, nil
}

func (g *Generator) lowerSpaceDecl(n *parser.SpaceDecl) (ir.Block, error) {
	push := &ir.SpacePush{Name: n.Name}
	if err := push.Exec(g); err != nil {
		return nil, err
	}
	if _, err := g.Lower(n.Body); err != nil {
		return nil, err
	}
	(&ir.SpacePop{}).Exec(g)
	return nil, nil
}

// lowerEnumDecl declares the Enum value directly (spec §3): there's no
// matching ir type since, like Fun/Space/Class, an enum is a pure symbol-
// table registration with nothing left for the evaluator to run.
func (g *Generator) lowerEnumDecl(n *parser.EnumDecl) (ir.Block, error) {
	enum := &value.Enum{Name: n.Name}
	for _, name := range n.Values {
		enum.Values = append(enum.Values, &value.EnumValue{Parent: enum, Name: name})
	}
	if err := g.table.Declare(n.Name, enum); err != nil {
		return nil, err
	}
	return nil, nil
}

// lowerImportStmt delegates to Import, which already does the work and
// persists it directly into the table — nothing left to emit.
func (g *Generator) lowerImportStmt(n *parser.ImportStmt) (ir.Block, error) {
	if err := g.Import(n.Path, n.Alias); err != nil {
		return nil, err
	}
	return nil, nil
}

// ---- expressions ----

// lowerExpr lowers e to a prelude Block plus the Operand holding its result,
// three-address-code style: e is folded first so a literal sub-expression
// becomes a bare ir.Const with no prelude at all.
func (g *Generator) lowerExpr(e parser.Expr) (ir.Block, ir.Operand, error) {
	e = Fold(e)
	switch n := e.(type) {
	case *parser.Literal:
		return nil, ir.Const(n.Value), nil
	case *parser.Name:
		return nil, ir.Operand{Path: n.Segments, Global: n.Global, NonLocal: n.NonLocal}, nil
	case *parser.Binary:
		return g.lowerBinary(n)
	case *parser.Logical:
		return g.lowerLogical(n)
	case *parser.Unary:
		return g.lowerUnary(n)
	case *parser.Ternary:
		return g.lowerTernary(n)
	case *parser.Call:
		return g.lowerCall(n)
	case *parser.Index:
		return g.lowerIndex(n)
	case *parser.Slice:
		return g.lowerSlice(n)
	case *parser.Member:
		return g.lowerMember(n)
	case *parser.ArrayLit:
		return g.lowerArrayLit(n)
	case *parser.DictLit:
		return g.lowerDictLit(n)
	case *parser.Lambda:
		return g.lowerLambda(n)
	default:
		return nil, ir.Operand{}, mashErr.New(mashErr.Internal, fmt.Sprintf("lowering: unhandled expression %T", e), mashErr.Location{}, "")
	}
}

var binOps = map[string]ir.BinOp{
	"+": ir.OpAdd, "-": ir.OpSub, "*": ir.OpMul, "/": ir.OpFDiv, "//": ir.OpIDiv,
	"%": ir.OpMod, "^": ir.OpExp, "++": ir.OpCat,
	"<=": ir.OpLte, ">=": ir.OpGte, "<": ir.OpLt, ">": ir.OpGt,
	"==": ir.OpEq, "!=": ir.OpNeq, "in": ir.OpIn,
}

func (g *Generator) lowerBinary(n *parser.Binary) (ir.Block, ir.Operand, error) {
	leftBlock, leftOp, err := g.lowerExpr(n.Left)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	rightBlock, rightOp, err := g.lowerExpr(n.Right)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	op, ok := binOps[n.Operator]
	if !ok {
		return nil, ir.Operand{}, mashErr.New(mashErr.Internal, "unknown binary operator "+n.Operator, mashErr.Location{}, "")
	}
	dst := g.newTemp()
	block := append(leftBlock, rightBlock...)
	block = append(block, &ir.BinaryExpr{Op: op, Src1: leftOp, Src2: rightOp, Dst: dst})
	return block, ir.Name(dst), nil
}

var logOps = map[string]ir.LogOp{
	"and": ir.LogAnd, "or": ir.LogOr, "&&": ir.LogAndShortCircuit, "||": ir.LogOrShortCircuit,
}

func (g *Generator) lowerLogical(n *parser.Logical) (ir.Block, ir.Operand, error) {
	leftBlock, leftOp, err := g.lowerExpr(n.Left)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	rightBlock, rightOp, err := g.lowerExpr(n.Right)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	op, ok := logOps[n.Operator]
	if !ok {
		return nil, ir.Operand{}, mashErr.New(mashErr.Internal, "unknown logical operator "+n.Operator, mashErr.Location{}, "")
	}
	dst := g.newTemp()
	block := append(leftBlock, rightBlock...)
	block = append(block, &ir.LogicalExpr{Op: op, Src1: leftOp, Src2: rightOp, Dst: dst})
	return block, ir.Name(dst), nil
}

func (g *Generator) lowerUnary(n *parser.Unary) (ir.Block, ir.Operand, error) {
	block, op, err := g.lowerExpr(n.Operand)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	dst := g.newTemp()
	switch n.Operator {
	case "!":
		block = append(block, &ir.LNot{Src: op, Dst: dst})
	case "-":
		block = append(block, &ir.Neg{Src: op, Dst: dst})
	default:
		return nil, ir.Operand{}, mashErr.New(mashErr.Internal, "unknown unary operator "+n.Operator, mashErr.Location{}, "")
	}
	return block, ir.Name(dst), nil
}

// lowerTernary lowers both branches unconditionally — ir.TernaryIf's own
// doc comment notes both operands are "already-computed cells, matching the
// source's flat evaluation model", so the short-circuiting a ternary
// usually implies is a property this IR shape never had.
func (g *Generator) lowerTernary(n *parser.Ternary) (ir.Block, ir.Operand, error) {
	condBlock, condOp, err := g.lowerExpr(n.Cond)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	thenBlock, thenOp, err := g.lowerExpr(n.Then)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	elseBlock, elseOp, err := g.lowerExpr(n.Else)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	dst := g.newTemp()
	block := append(condBlock, thenBlock...)
	block = append(block, elseBlock...)
	block = append(block, &ir.TernaryIf{Cond: condOp, Then: thenOp, Else: elseOp, Dst: dst})
	return block, ir.Name(dst), nil
}

func (g *Generator) lowerArgs(args []parser.Arg) (ir.Block, []ir.Arg, error) {
	var block ir.Block
	out := make([]ir.Arg, len(args))
	for i, a := range args {
		sub, op, err := g.lowerExpr(a.Value)
		if err != nil {
			return nil, nil, err
		}
		block = append(block, sub...)
		out[i] = ir.Arg{Name: a.Name, Value: op}
	}
	return block, out, nil
}

// lowerCall handles the three callee shapes spec §4.6 distinguishes: a
// `obj.method(...)` Member callee dispatches through FunCall.Receiver; a
// bare/scoped Name callee dispatches through FunCall.Path; anything else (a
// call result, an indexed element, ...) has no name to dispatch by, so its
// value is parked in a temp first and called by that temp's path — dispatch
// then finds it the same way it finds any other variable bound to a
// Function value.
func (g *Generator) lowerCall(n *parser.Call) (ir.Block, ir.Operand, error) {
	argBlock, args, err := g.lowerArgs(n.Args)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	dst := g.newTemp()

	if member, ok := n.Callee.(*parser.Member); ok {
		objBlock, objOp, err := g.lowerExpr(member.Object)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		block := append(objBlock, argBlock...)
		block = append(block, &ir.FunCall{Receiver: &objOp, Method: member.Name, Args: args, Dst: dst})
		return block, ir.Name(dst), nil
	}

	if name, ok := n.Callee.(*parser.Name); ok {
		block := append(ir.Block{}, argBlock...)
		block = append(block, &ir.FunCall{Path: name.Segments, Global: name.Global, NonLocal: name.NonLocal, Args: args, Dst: dst})
		return block, ir.Name(dst), nil
	}

	calleeBlock, calleeOp, err := g.lowerExpr(n.Callee)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	tmp := g.newTemp()
	block := append(calleeBlock, &ir.AssignVar{Dst: tmp, Src: calleeOp})
	block = append(block, argBlock...)
	block = append(block, &ir.FunCall{Path: []string{tmp}, Args: args, Dst: dst})
	return block, ir.Name(dst), nil
}

func (g *Generator) lowerIndex(n *parser.Index) (ir.Block, ir.Operand, error) {
	objBlock, objOp, err := g.lowerExpr(n.Object)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	idxBlock, idxOp, err := g.lowerExpr(n.Index)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	dst := g.newTemp()
	block := append(objBlock, idxBlock...)
	block = append(block, &ir.Member{Object: objOp, Index: idxOp, IsAttr: false, Dst: dst})
	return block, ir.Name(dst), nil
}

func (g *Generator) lowerSlice(n *parser.Slice) (ir.Block, ir.Operand, error) {
	objBlock, objOp, err := g.lowerExpr(n.Object)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	block := objBlock
	var startOp, endOp, stepOp ir.Operand
	var hasStart, hasEnd, hasStep bool
	if n.Start != nil {
		b, op, err := g.lowerExpr(n.Start)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		block, startOp, hasStart = append(block, b...), op, true
	}
	if n.End != nil {
		b, op, err := g.lowerExpr(n.End)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		block, endOp, hasEnd = append(block, b...), op, true
	}
	if n.Step != nil {
		b, op, err := g.lowerExpr(n.Step)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		block, stepOp, hasStep = append(block, b...), op, true
	}
	dst := g.newTemp()
	block = append(block, &ir.Slice{
		Object: objOp, Start: startOp, End: endOp, Step: stepOp,
		HasStart: hasStart, HasEnd: hasEnd, HasStep: hasStep, Dst: dst,
	})
	return block, ir.Name(dst), nil
}

func (g *Generator) lowerMember(n *parser.Member) (ir.Block, ir.Operand, error) {
	objBlock, objOp, err := g.lowerExpr(n.Object)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	dst := g.newTemp()
	nameOp := ir.Const(value.NewString(n.Name, n.Name))
	block := append(objBlock, &ir.Member{Object: objOp, Index: nameOp, IsAttr: true, Dst: dst})
	return block, ir.Name(dst), nil
}

// lowerArrayLit/lowerDictLit build the List/Dict value directly rather than
// emitting a dedicated "build a collection" IR instruction: a folded element
// becomes a Resolved slot, anything else is lowered to a temp (its prelude
// spliced in first) and recorded as an Unresolved path that the List/Dict's
// own Update resolves the first time it's read (spec §3/§4.4).
func (g *Generator) lowerArrayLit(n *parser.ArrayLit) (ir.Block, ir.Operand, error) {
	var block ir.Block
	elems := make([]value.Element, len(n.Elements))
	for i, el := range n.Elements {
		elem, sub, err := g.lowerCollectionElement(el)
		if err != nil {
			return nil, ir.Operand{}, err
		}
		block = append(block, sub...)
		elems[i] = elem
	}
	dst := g.newTemp()
	block = append(block, &ir.AssignVar{Dst: dst, Src: ir.Const(&value.List{Elements: elems})})
	return block, ir.Name(dst), nil
}

func (g *Generator) lowerDictLit(n *parser.DictLit) (ir.Block, ir.Operand, error) {
	var block ir.Block
	entries := make([]value.DictEntry, len(n.Keys))
	for i := range n.Keys {
		keyElem, keySub, err := g.lowerCollectionElement(n.Keys[i])
		if err != nil {
			return nil, ir.Operand{}, err
		}
		valElem, valSub, err := g.lowerCollectionElement(n.Values[i])
		if err != nil {
			return nil, ir.Operand{}, err
		}
		block = append(block, keySub...)
		block = append(block, valSub...)
		entries[i] = value.DictEntry{Key: keyElem, Value: valElem}
	}
	dst := g.newTemp()
	block = append(block, &ir.AssignVar{Dst: dst, Src: ir.Const(&value.Dict{Entries: entries})})
	return block, ir.Name(dst), nil
}

// lowerCollectionElement folds e; a literal becomes a Resolved slot directly,
// anything else is lowered (its prelude returned separately) and referenced
// as Unresolved by the temp/name holding its value.
func (g *Generator) lowerCollectionElement(e parser.Expr) (value.Element, ir.Block, error) {
	folded := Fold(e)
	if lit, ok := folded.(*parser.Literal); ok {
		return value.Resolved(lit.Value), nil, nil
	}
	block, op, err := g.lowerExpr(folded)
	if err != nil {
		return value.Element{}, nil, err
	}
	if op.Const != nil {
		return value.Resolved(op.Const), block, nil
	}
	return value.Unresolved(op.Path), block, nil
}

func (g *Generator) lowerLambda(n *parser.Lambda) (ir.Block, ir.Operand, error) {
	params, err := g.lowerParams(n.Params)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	body, err := g.Lower(n.Body)
	if err != nil {
		return nil, ir.Operand{}, err
	}
	dst := g.newTemp()
	return ir.Block{&ir.Lambda{Params: params, Body: body, Dst: dst}}, ir.Name(dst), nil
}
