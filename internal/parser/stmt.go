package parser

// ExprStmt wraps any expression used at statement position other than a
// bare single name — this always becomes a Print, never a SetOrPrint
// (spec §4.4).
type ExprStmt struct {
	Position
	Expr Expr
}

func (e *ExprStmt) Accept(v StmtVisitor) interface{} { return v.VisitExprStmt(e) }

// BareNameStmt is a single unscoped identifier at statement position — the
// generator turns this into SetOrPrint (spec §4.4).
type BareNameStmt struct {
	Position
	Name *Name
}

func (b *BareNameStmt) Accept(v StmtVisitor) interface{} { return v.VisitBareNameStmt(b) }

// AssignStmt is `name OP expr` for `=` and the compound operators
// (`+=`, `-=`, ...); Operator is the bare OP token ("=", "+=", ...).
type AssignStmt struct {
	Position
	Target   *Name
	Operator string
	Value    Expr
}

func (a *AssignStmt) Accept(v StmtVisitor) interface{} { return v.VisitAssignStmt(a) }

// MultiAssignStmt is `(a, b, c) = expr`.
type MultiAssignStmt struct {
	Position
	Targets []*Name
	Value   Expr
}

func (m *MultiAssignStmt) Accept(v StmtVisitor) interface{} { return v.VisitMultiAssignStmt(m) }

// IndexAssignStmt is `obj[idx] = expr` (IsAttr false) or `obj.name = expr`
// (IsAttr true, Index holding a Literal string naming the attribute) — one
// statement shape for both since the generator's job either way is
// "resolve Object, resolve Index, store Value" (spec §4.3/§4.4).
type IndexAssignStmt struct {
	Position
	Object Expr
	Index  Expr
	Value  Expr
	IsAttr bool
}

func (i *IndexAssignStmt) Accept(v StmtVisitor) interface{} { return v.VisitIndexAssignStmt(i) }

// BlockStmt is a standalone explicit `{ ... }`, run in a frame of its own
// (spec §4.4). The bodies of control constructs are plain statement lists,
// not BlockStmt.
type BlockStmt struct {
	Position
	Body []Stmt
}

func (b *BlockStmt) Accept(v StmtVisitor) interface{} { return v.VisitBlockStmt(b) }

// ElifClause is one `elif cond { ... }` arm.
type ElifClause struct {
	Cond Expr
	Body []Stmt
}

// IfStmt is `if cond {..} elif cond {..} else {..}`.
type IfStmt struct {
	Position
	Cond  Expr
	Then  []Stmt
	Elifs []ElifClause
	Else  []Stmt
}

func (i *IfStmt) Accept(v StmtVisitor) interface{} { return v.VisitIfStmt(i) }

// WhileStmt is `while cond { ... }`.
type WhileStmt struct {
	Position
	Cond Expr
	Body []Stmt
}

func (w *WhileStmt) Accept(v StmtVisitor) interface{} { return v.VisitWhileStmt(w) }

// DoWhileStmt is `do { ... } while cond`.
type DoWhileStmt struct {
	Position
	Body []Stmt
	Cond Expr
}

func (d *DoWhileStmt) Accept(v StmtVisitor) interface{} { return v.VisitDoWhileStmt(d) }

// ForStmt is `for v1, v2 : iterable { ... }`; Vars has one entry for a
// plain loop variable, more than one for destructuring.
type ForStmt struct {
	Position
	Vars     []string
	Iterable Expr
	Body     []Stmt
}

func (f *ForStmt) Accept(v StmtVisitor) interface{} { return v.VisitForStmt(f) }

type BreakStmt struct{ Position }

func (b *BreakStmt) Accept(v StmtVisitor) interface{} { return v.VisitBreakStmt(b) }

type ContinueStmt struct{ Position }

func (c *ContinueStmt) Accept(v StmtVisitor) interface{} { return v.VisitContinueStmt(c) }

// ReturnStmt is `return [expr]`; Value is nil for a bare `return`.
type ReturnStmt struct {
	Position
	Value Expr
}

func (r *ReturnStmt) Accept(v StmtVisitor) interface{} { return v.VisitReturnStmt(r) }

// FunDecl is a function/method/operator-overload declaration. IsOperator is
// true for `(op)`-shaped names, legal only directly inside a ClassDecl body
// (spec §4.4).
type FunDecl struct {
	Position
	Name       string
	Params     []Param
	Body       []Stmt
	IsOperator bool
	Internal   bool
}

func (f *FunDecl) Accept(v StmtVisitor) interface{} { return v.VisitFunDecl(f) }

// ClassDecl is `class Name : Parent1, Parent2 { ... }`; Body holds nested
// FunDecl (methods/constructors/operators) and AssignStmt (field defaults).
type ClassDecl struct {
	Position
	Name    string
	Extends []string
	Body    []Stmt
}

func (c *ClassDecl) Accept(v StmtVisitor) interface{} { return v.VisitClassDecl(c) }

// EnumDecl is `enum Name { A, B, C }`.
type EnumDecl struct {
	Position
	Name   string
	Values []string
}

func (e *EnumDecl) Accept(v StmtVisitor) interface{} { return v.VisitEnumDecl(e) }

// SpaceDecl is `space Name { ... }`.
type SpaceDecl struct {
	Position
	Name string
	Body []Stmt
}

func (s *SpaceDecl) Accept(v StmtVisitor) interface{} { return v.VisitSpaceDecl(s) }

// ImportStmt is `import path [as alias]`.
type ImportStmt struct {
	Position
	Path  string
	Alias string
}

func (i *ImportStmt) Accept(v StmtVisitor) interface{} { return v.VisitImportStmt(i) }

// NoteStmt is a notebook markdown note (`n"""..."""`).
type NoteStmt struct {
	Position
	Text string
}

func (n *NoteStmt) Accept(v StmtVisitor) interface{} { return v.VisitNoteStmt(n) }

// DocStmt is a doc-comment (`d"""..."""`). It lowers to ir.Doc on its own
// and is not attached to the following (or any) declaration.
type DocStmt struct {
	Position
	Text string
}

func (d *DocStmt) Accept(v StmtVisitor) interface{} { return v.VisitDocStmt(d) }

// StmtVisitor dispatches over every Stmt node kind.
type StmtVisitor interface {
	VisitExprStmt(s *ExprStmt) interface{}
	VisitBareNameStmt(s *BareNameStmt) interface{}
	VisitAssignStmt(s *AssignStmt) interface{}
	VisitMultiAssignStmt(s *MultiAssignStmt) interface{}
	VisitIndexAssignStmt(s *IndexAssignStmt) interface{}
	VisitBlockStmt(s *BlockStmt) interface{}
	VisitIfStmt(s *IfStmt) interface{}
	VisitWhileStmt(s *WhileStmt) interface{}
	VisitDoWhileStmt(s *DoWhileStmt) interface{}
	VisitForStmt(s *ForStmt) interface{}
	VisitBreakStmt(s *BreakStmt) interface{}
	VisitContinueStmt(s *ContinueStmt) interface{}
	VisitReturnStmt(s *ReturnStmt) interface{}
	VisitFunDecl(s *FunDecl) interface{}
	VisitClassDecl(s *ClassDecl) interface{}
	VisitEnumDecl(s *EnumDecl) interface{}
	VisitSpaceDecl(s *SpaceDecl) interface{}
	VisitImportStmt(s *ImportStmt) interface{}
	VisitNoteStmt(s *NoteStmt) interface{}
	VisitDocStmt(s *DocStmt) interface{}
}
