// Package parser turns a Mash token stream into a parse tree. The grammar
// is an external collaborator to the lowering core (spec §1) — this file
// only fixes the node shapes the transformer/generator consume.
package parser

import "mash/internal/value"

// Expr is any parse-tree expression node.
type Expr interface {
	Accept(v ExprVisitor) interface{}
	Pos() Position
}

// Stmt is any parse-tree statement node.
type Stmt interface {
	Accept(v StmtVisitor) interface{}
	Pos() Position
}

// Position locates a node in source for error reporting.
type Position struct {
	Line   int
	Column int
}

func (p Position) Pos() Position { return p }

// Literal wraps an already-constructed runtime Value — per spec §4.4 Phase
// A, literal tokens become wrapped Values at parse/fold time, not later.
type Literal struct {
	Position
	Value value.Value
}

func (l *Literal) Accept(v ExprVisitor) interface{} { return v.VisitLiteral(l) }

// Name is a (possibly scoped) reference: `x`, `a::b`, `@x`, `::x`
// (`obj.attr` parses as a Member, not a Name). Segments holds the
// `::`-separated path in source order;
// Global/NonLocal encode the leading `::`/`@` per spec §3/§4.1.
type Name struct {
	Position
	Segments []string
	Global   bool
	NonLocal bool
}

func (n *Name) Accept(v ExprVisitor) interface{} { return v.VisitName(n) }

// Binary is a two-operand arithmetic/comparison/concat expression.
type Binary struct {
	Position
	Left     Expr
	Operator string
	Right    Expr
}

func (b *Binary) Accept(v ExprVisitor) interface{} { return v.VisitBinary(b) }

// Logical is `and`/`or`/`&&`/`||`, kept distinct from Binary because it
// short-circuits.
type Logical struct {
	Position
	Left     Expr
	Operator string
	Right    Expr
}

func (l *Logical) Accept(v ExprVisitor) interface{} { return v.VisitLogical(l) }

// Unary is `!x`, `-x`.
type Unary struct {
	Position
	Operator string
	Operand  Expr
}

func (u *Unary) Accept(v ExprVisitor) interface{} { return v.VisitUnary(u) }

// Ternary is `cond ? then : else`.
type Ternary struct {
	Position
	Cond Expr
	Then Expr
	Else Expr
}

func (t *Ternary) Accept(v ExprVisitor) interface{} { return v.VisitTernary(t) }

// Arg is one call argument — positional (Name == "") or named.
type Arg struct {
	Name  string
	Value Expr
}

// Call is `callee(args...)`.
type Call struct {
	Position
	Callee Expr
	Args   []Arg
}

func (c *Call) Accept(v ExprVisitor) interface{} { return v.VisitCall(c) }

// Index is `obj[idx]`.
type Index struct {
	Position
	Object Expr
	Index  Expr
}

func (i *Index) Accept(v ExprVisitor) interface{} { return v.VisitIndex(i) }

// Slice is `obj[start:end:step]`; any of the three may be nil.
type Slice struct {
	Position
	Object Expr
	Start  Expr
	End    Expr
	Step   Expr
}

func (s *Slice) Accept(v ExprVisitor) interface{} { return v.VisitSlice(s) }

// Member is `obj.name` read as a value, not called.
type Member struct {
	Position
	Object Expr
	Name   string
}

func (m *Member) Accept(v ExprVisitor) interface{} { return v.VisitMember(m) }

// ArrayLit is `[e1, e2, ...]`.
type ArrayLit struct {
	Position
	Elements []Expr
}

func (a *ArrayLit) Accept(v ExprVisitor) interface{} { return v.VisitArrayLit(a) }

// DictLit is `{k1: v1, ...}`.
type DictLit struct {
	Position
	Keys   []Expr
	Values []Expr
}

func (d *DictLit) Accept(v ExprVisitor) interface{} { return v.VisitDictLit(d) }

// Param is one function/lambda parameter: an optional type constraint list,
// an optional default (nil means required), and a variadic marker (only
// legal on the last parameter).
type Param struct {
	Name     string
	Types    []string
	Default  Expr
	Variadic bool
}

// Lambda is `lambda(params) { body }` / `fun(params) => expr`.
type Lambda struct {
	Position
	Params []Param
	Body   []Stmt
}

func (l *Lambda) Accept(v ExprVisitor) interface{} { return v.VisitLambda(l) }

// ExprVisitor dispatches over every Expr node kind.
type ExprVisitor interface {
	VisitLiteral(e *Literal) interface{}
	VisitName(e *Name) interface{}
	VisitBinary(e *Binary) interface{}
	VisitLogical(e *Logical) interface{}
	VisitUnary(e *Unary) interface{}
	VisitTernary(e *Ternary) interface{}
	VisitCall(e *Call) interface{}
	VisitIndex(e *Index) interface{}
	VisitSlice(e *Slice) interface{}
	VisitMember(e *Member) interface{}
	VisitArrayLit(e *ArrayLit) interface{}
	VisitDictLit(e *DictLit) interface{}
	VisitLambda(e *Lambda) interface{}
}
