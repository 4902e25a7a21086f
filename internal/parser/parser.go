// internal/parser/parser.go
package parser

import (
	"math/big"
	"strings"

	mashErr "mash/internal/errors"
	"mash/internal/lexer"
	"mash/internal/value"
)

// Parser is a recursive-descent/precedence-climbing parser over a flat
// token stream (spec §1 treats the grammar as an external collaborator;
// this file only has to produce the ast.go/stmt.go node shapes the
// transformer/generator consume).
type Parser struct {
	tokens      []lexer.Token
	current     int
	file        string
	sourceLines []string
}

// NewParser builds a parser for an anonymous source (`-e`, stdin).
func NewParser(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// NewParserWithSource builds a parser that can render source excerpts in
// its syntax errors (spec §6's `<file>:<line>:<col>` error shape).
func NewParserWithSource(tokens []lexer.Token, source, file string) *Parser {
	return &Parser{tokens: tokens, file: file, sourceLines: strings.Split(source, "\n")}
}

// Parse runs the full program grammar, recovering a syntax-error panic
// into a returned error (spec §6's parse error shape).
func (p *Parser) Parse() (stmts []Stmt, err error) {
	defer func() {
		if r := recover(); r != nil {
			if me, ok := r.(*mashErr.MashError); ok {
				err = me
				return
			}
			panic(r)
		}
	}()
	for !p.isAtEnd() {
		stmts = append(stmts, p.declaration())
	}
	return stmts, nil
}

// ---- declarations / statements ----

func (p *Parser) declaration() Stmt {
	switch {
	case p.check(lexer.TokenNote):
		return p.noteStatement()
	case p.check(lexer.TokenDoc):
		return p.docStatement()
	case p.match(lexer.TokenImport):
		return p.importStatement()
	case p.match(lexer.TokenEnum):
		return p.enumDecl()
	case p.match(lexer.TokenSpace):
		return p.spaceDecl()
	case p.match(lexer.TokenClass):
		return p.classDecl()
	case p.match(lexer.TokenFun):
		return p.funDecl(false)
	}
	return p.statement()
}

func (p *Parser) noteStatement() Stmt {
	pos := p.pos()
	tok := p.advance()
	return &NoteStmt{Position: pos, Text: tok.Lexeme}
}

func (p *Parser) docStatement() Stmt {
	pos := p.pos()
	tok := p.advance()
	return &DocStmt{Position: pos, Text: tok.Lexeme}
}

func (p *Parser) importStatement() Stmt {
	pos := p.pos()
	var path string
	if p.check(lexer.TokenString) {
		path = p.advance().Lexeme
	} else {
		path = p.consume(lexer.TokenIdent, "Expect module name").Lexeme
		for p.match(lexer.TokenDot) {
			path += "." + p.consume(lexer.TokenIdent, "Expect module path segment").Lexeme
		}
	}
	alias := ""
	if p.match(lexer.TokenAs) {
		alias = p.consume(lexer.TokenIdent, "Expect alias name").Lexeme
	}
	return &ImportStmt{Position: pos, Path: path, Alias: alias}
}

func (p *Parser) enumDecl() Stmt {
	pos := p.pos()
	name := p.consume(lexer.TokenIdent, "Expect enum name").Lexeme
	p.consume(lexer.TokenLBrace, "Expect '{' after enum name")
	var values []string
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		values = append(values, p.consume(lexer.TokenIdent, "Expect enum value name").Lexeme)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBrace, "Expect '}' after enum values")
	return &EnumDecl{Position: pos, Name: name, Values: values}
}

func (p *Parser) spaceDecl() Stmt {
	pos := p.pos()
	name := p.consume(lexer.TokenIdent, "Expect space name").Lexeme
	p.consume(lexer.TokenLBrace, "Expect '{' after space name")
	body := p.blockStatements()
	p.consume(lexer.TokenRBrace, "Expect '}' after space body")
	return &SpaceDecl{Position: pos, Name: name, Body: body}
}

func (p *Parser) classDecl() Stmt {
	pos := p.pos()
	name := p.consume(lexer.TokenIdent, "Expect class name").Lexeme
	var extends []string
	if p.match(lexer.TokenExtends) || p.match(lexer.TokenColon) {
		extends = append(extends, p.consume(lexer.TokenIdent, "Expect parent class name").Lexeme)
		for p.match(lexer.TokenComma) {
			extends = append(extends, p.consume(lexer.TokenIdent, "Expect parent class name").Lexeme)
		}
	}
	p.consume(lexer.TokenLBrace, "Expect '{' after class header")
	var body []Stmt
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		switch {
		case p.check(lexer.TokenNote):
			body = append(body, p.noteStatement())
		case p.check(lexer.TokenDoc):
			body = append(body, p.docStatement())
		case p.match(lexer.TokenFun):
			body = append(body, p.funDecl(true))
		default:
			body = append(body, p.statement())
		}
	}
	p.consume(lexer.TokenRBrace, "Expect '}' after class body")
	return &ClassDecl{Position: pos, Name: name, Extends: extends, Body: body}
}

// operatorTokens is every token kind legal inside `fun (op)(...)` (spec
// §4.2's operator-method names).
var operatorTokens = map[lexer.TokenType]bool{
	lexer.TokenPlus: true, lexer.TokenMinus: true, lexer.TokenStar: true,
	lexer.TokenFSlash: true, lexer.TokenISlash: true, lexer.TokenPercent: true,
	lexer.TokenCaret: true, lexer.TokenPlusPlus: true, lexer.TokenEqEq: true,
	lexer.TokenNotEq: true, lexer.TokenLt: true, lexer.TokenLe: true,
	lexer.TokenGt: true, lexer.TokenGe: true, lexer.TokenAnd: true,
	lexer.TokenOr: true, lexer.TokenLAnd: true, lexer.TokenLOr: true,
	lexer.TokenBang: true, lexer.TokenIn: true,
}

// funDecl parses `fun name(params) { body }`, the operator-overload form
// `fun (+)(params) { body }` (legal only with inClass true, directly inside a
// ClassDecl body), and the internal-body marker `fun name(params) = internal`
// (spec §4.6's "body begins with an Internal marker").
func (p *Parser) funDecl(inClass bool) Stmt {
	pos := p.pos()
	isOperator := false
	var name string
	if inClass && p.check(lexer.TokenLParen) && (operatorTokens[p.peekAt(1).Type] || p.peekAt(1).Type == lexer.TokenLBracket) {
		p.advance() // (
		isOperator = true
		if p.match(lexer.TokenLBracket) {
			// ([]) / ([::]) index/slice operators
			name = "([])"
			if p.match(lexer.TokenDoubleColon) {
				name = "([::])"
			}
			p.consume(lexer.TokenRBracket, "Expect ']' in operator name")
		} else {
			name = "(" + p.advance().Lexeme + ")"
		}
		p.consume(lexer.TokenRParen, "Expect ')' after operator name")
	} else {
		name = p.consume(lexer.TokenIdent, "Expect function name").Lexeme
	}
	p.consume(lexer.TokenLParen, "Expect '(' after function name")
	params := p.paramList()
	p.consume(lexer.TokenRParen, "Expect ')' after parameters")

	internal := false
	var body []Stmt
	if p.match(lexer.TokenEq) {
		p.consume(lexer.TokenIdent, "Expect 'internal' after '='")
		internal = true
	} else {
		p.consume(lexer.TokenLBrace, "Expect '{' before function body")
		body = p.blockStatements()
		p.consume(lexer.TokenRBrace, "Expect '}' after function body")
	}
	return &FunDecl{Position: pos, Name: name, Params: params, Body: body, IsOperator: isOperator, Internal: internal}
}

func (p *Parser) paramList() []Param {
	var params []Param
	for !p.check(lexer.TokenRParen) && !p.isAtEnd() {
		var param Param
		if p.match(lexer.TokenStar) {
			param.Variadic = true
		}
		param.Name = p.consume(lexer.TokenIdent, "Expect parameter name").Lexeme
		if p.match(lexer.TokenColon) {
			param.Types = append(param.Types, p.consume(lexer.TokenIdent, "Expect type name").Lexeme)
			for p.match(lexer.TokenLOr) {
				param.Types = append(param.Types, p.consume(lexer.TokenIdent, "Expect type name").Lexeme)
			}
		}
		if p.match(lexer.TokenEq) {
			param.Default = p.expression()
		}
		params = append(params, param)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	return params
}

func (p *Parser) statement() Stmt {
	switch {
	case p.match(lexer.TokenIf):
		return p.ifStatement()
	case p.match(lexer.TokenWhile):
		return p.whileStatement()
	case p.match(lexer.TokenDo):
		return p.doWhileStatement()
	case p.match(lexer.TokenFor):
		return p.forStatement()
	case p.match(lexer.TokenBreak):
		pos := p.previousPos()
		return &BreakStmt{Position: pos}
	case p.match(lexer.TokenContinue):
		pos := p.previousPos()
		return &ContinueStmt{Position: pos}
	case p.match(lexer.TokenReturn):
		pos := p.previousPos()
		var v Expr
		if !p.atStmtEnd() {
			v = p.expression()
		}
		return &ReturnStmt{Position: pos, Value: v}
	case p.check(lexer.TokenLBrace):
		pos := p.pos()
		p.advance()
		body := p.blockStatements()
		p.consume(lexer.TokenRBrace, "Expect '}' to close block")
		return &BlockStmt{Position: pos, Body: body}
	case p.check(lexer.TokenLParen):
		return p.multiAssignOrExpr()
	}
	return p.assignOrExprStatement()
}

func (p *Parser) atStmtEnd() bool {
	return p.check(lexer.TokenRBrace) || p.check(lexer.TokenSemicolon) || p.isAtEnd()
}

// blockStatements parses statements until the enclosing `}`, accepting
// top-level-only forms (fun/class/space/enum/import) nested inside blocks
// too, since Mash scopes them like any other statement.
func (p *Parser) blockStatements() []Stmt {
	var stmts []Stmt
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		stmts = append(stmts, p.declaration())
	}
	return stmts
}

func (p *Parser) ifStatement() Stmt {
	pos := p.previousPos()
	cond := p.expression()
	p.consume(lexer.TokenLBrace, "Expect '{' before if body")
	then := p.blockStatements()
	p.consume(lexer.TokenRBrace, "Expect '}' after if body")

	var elifs []ElifClause
	var elseBody []Stmt
	for p.match(lexer.TokenElif) {
		c := p.expression()
		p.consume(lexer.TokenLBrace, "Expect '{' before elif body")
		b := p.blockStatements()
		p.consume(lexer.TokenRBrace, "Expect '}' after elif body")
		elifs = append(elifs, ElifClause{Cond: c, Body: b})
	}
	if p.match(lexer.TokenElse) {
		p.consume(lexer.TokenLBrace, "Expect '{' before else body")
		elseBody = p.blockStatements()
		p.consume(lexer.TokenRBrace, "Expect '}' after else body")
	}
	return &IfStmt{Position: pos, Cond: cond, Then: then, Elifs: elifs, Else: elseBody}
}

func (p *Parser) whileStatement() Stmt {
	pos := p.previousPos()
	cond := p.expression()
	p.consume(lexer.TokenLBrace, "Expect '{' before while body")
	body := p.blockStatements()
	p.consume(lexer.TokenRBrace, "Expect '}' after while body")
	return &WhileStmt{Position: pos, Cond: cond, Body: body}
}

func (p *Parser) doWhileStatement() Stmt {
	pos := p.previousPos()
	p.consume(lexer.TokenLBrace, "Expect '{' before do body")
	body := p.blockStatements()
	p.consume(lexer.TokenRBrace, "Expect '}' after do body")
	p.consume(lexer.TokenWhile, "Expect 'while' after do body")
	cond := p.expression()
	return &DoWhileStmt{Position: pos, Body: body, Cond: cond}
}

func (p *Parser) forStatement() Stmt {
	pos := p.previousPos()
	vars := []string{p.consume(lexer.TokenIdent, "Expect loop variable name").Lexeme}
	for p.match(lexer.TokenComma) {
		vars = append(vars, p.consume(lexer.TokenIdent, "Expect loop variable name").Lexeme)
	}
	p.consume(lexer.TokenColon, "Expect ':' after for-loop variables")
	iterable := p.expression()
	p.consume(lexer.TokenLBrace, "Expect '{' before for body")
	body := p.blockStatements()
	p.consume(lexer.TokenRBrace, "Expect '}' after for body")
	return &ForStmt{Position: pos, Vars: vars, Iterable: iterable, Body: body}
}

// multiAssignOrExpr disambiguates `(a, b) = expr` from a parenthesized
// expression statement by speculatively scanning ahead.
func (p *Parser) multiAssignOrExpr() Stmt {
	if names, ok := p.tryMultiAssignTargets(); ok {
		pos := p.pos()
		p.consume(lexer.TokenEq, "Expect '=' after multi-assign targets")
		rhs := p.expression()
		return &MultiAssignStmt{Position: pos, Targets: names, Value: rhs}
	}
	return p.assignOrExprStatement()
}

func (p *Parser) tryMultiAssignTargets() ([]*Name, bool) {
	saved := p.current
	pos := p.pos()
	p.advance() // (
	var names []*Name
	for {
		if !p.check(lexer.TokenIdent) {
			p.current = saved
			return nil, false
		}
		nameTok := p.advance()
		names = append(names, &Name{Position: pos, Segments: []string{nameTok.Lexeme}})
		if p.match(lexer.TokenComma) {
			continue
		}
		break
	}
	if !p.match(lexer.TokenRParen) || !p.check(lexer.TokenEq) || len(names) < 2 {
		p.current = saved
		return nil, false
	}
	return names, true
}

var compoundAssignOps = map[lexer.TokenType]string{
	lexer.TokenEq: "=", lexer.TokenPlusEq: "+=", lexer.TokenMinusEq: "-=",
	lexer.TokenStarEq: "*=", lexer.TokenFSlashEq: "/=", lexer.TokenISlashEq: "//=",
	lexer.TokenPercentEq: "%=", lexer.TokenCaretEq: "^=", lexer.TokenCatEq: "++=",
}

// assignOrExprStatement covers plain/compound assignment, index-assignment,
// the bare-name statement form, and any other expression statement
// (spec §4.4).
func (p *Parser) assignOrExprStatement() Stmt {
	pos := p.pos()
	expr := p.expression()

	if op, ok := compoundAssignOps[p.peek().Type]; ok {
		p.advance()
		rhs := p.expression()
		switch target := expr.(type) {
		case *Name:
			return &AssignStmt{Position: pos, Target: target, Operator: op, Value: rhs}
		case *Index:
			return &IndexAssignStmt{Position: pos, Object: target.Object, Index: target.Index, Value: compoundValue(target, op, rhs)}
		case *Member:
			nameLit := &Literal{Position: pos, Value: value.NewString(target.Name, target.Name)}
			return &IndexAssignStmt{Position: pos, Object: target.Object, Index: nameLit, Value: compoundValue(target, op, rhs), IsAttr: true}
		}
		p.errorAt(pos, "invalid assignment target")
	}

	if name, ok := expr.(*Name); ok {
		if len(name.Segments) == 1 && !name.Global && !name.NonLocal {
			return &BareNameStmt{Position: pos, Name: name}
		}
		return &ExprStmt{Position: pos, Expr: name}
	}
	return &ExprStmt{Position: pos, Expr: expr}
}

// compoundValue turns `target OP= rhs` into the plain value the underlying
// Index/MemberAssign instruction stores: `rhs` itself for `=`, otherwise
// `target OP rhs` (spec §4.4's compound-assignment desugaring).
func compoundValue(target Expr, op string, rhs Expr) Expr {
	if op == "=" {
		return rhs
	}
	return &Binary{Position: target.Pos(), Left: target, Operator: strings.TrimSuffix(op, "="), Right: rhs}
}

// ---- expressions (precedence climbing, lowest to highest) ----

func (p *Parser) expression() Expr { return p.ternary() }

func (p *Parser) ternary() Expr {
	cond := p.logicalOrKw()
	if p.match(lexer.TokenQuestion) {
		pos := p.previousPos()
		then := p.expression()
		p.consume(lexer.TokenColon, "Expect ':' in ternary expression")
		els := p.expression()
		return &Ternary{Position: pos, Cond: cond, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) logicalOrKw() Expr {
	left := p.logicalAndKw()
	for p.check(lexer.TokenOr) {
		pos := p.pos()
		op := p.advance().Lexeme
		right := p.logicalAndKw()
		left = &Logical{Position: pos, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) logicalAndKw() Expr {
	left := p.logicalOrSym()
	for p.check(lexer.TokenAnd) {
		pos := p.pos()
		op := p.advance().Lexeme
		right := p.logicalOrSym()
		left = &Logical{Position: pos, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) logicalOrSym() Expr {
	left := p.logicalAndSym()
	for p.check(lexer.TokenLOr) {
		pos := p.pos()
		op := p.advance().Lexeme
		right := p.logicalAndSym()
		left = &Logical{Position: pos, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) logicalAndSym() Expr {
	left := p.equality()
	for p.check(lexer.TokenLAnd) {
		pos := p.pos()
		op := p.advance().Lexeme
		right := p.equality()
		left = &Logical{Position: pos, Left: left, Operator: op, Right: right}
	}
	return left
}

var equalityOps = map[lexer.TokenType]bool{lexer.TokenEqEq: true, lexer.TokenNotEq: true}
var comparisonOps = map[lexer.TokenType]bool{
	lexer.TokenLt: true, lexer.TokenLe: true, lexer.TokenGt: true, lexer.TokenGe: true,
}

func (p *Parser) equality() Expr {
	left := p.comparison()
	for equalityOps[p.peek().Type] {
		pos := p.pos()
		op := p.advance().Lexeme
		right := p.comparison()
		left = &Binary{Position: pos, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) comparison() Expr {
	left := p.inExpr()
	for comparisonOps[p.peek().Type] {
		pos := p.pos()
		op := p.advance().Lexeme
		right := p.inExpr()
		left = &Binary{Position: pos, Left: left, Operator: op, Right: right}
	}
	return left
}

func (p *Parser) inExpr() Expr {
	left := p.addSub()
	for p.check(lexer.TokenIn) {
		pos := p.pos()
		p.advance()
		right := p.addSub()
		left = &Binary{Position: pos, Left: left, Operator: "in", Right: right}
	}
	return left
}

var addSubOps = map[lexer.TokenType]bool{
	lexer.TokenPlus: true, lexer.TokenMinus: true, lexer.TokenPlusPlus: true,
}

func (p *Parser) addSub() Expr {
	left := p.mulDiv()
	for addSubOps[p.peek().Type] {
		pos := p.pos()
		op := p.advance().Lexeme
		right := p.mulDiv()
		left = &Binary{Position: pos, Left: left, Operator: op, Right: right}
	}
	return left
}

var mulDivOps = map[lexer.TokenType]bool{
	lexer.TokenStar: true, lexer.TokenFSlash: true, lexer.TokenISlash: true, lexer.TokenPercent: true,
}

func (p *Parser) mulDiv() Expr {
	left := p.exp()
	for mulDivOps[p.peek().Type] {
		pos := p.pos()
		op := p.advance().Lexeme
		right := p.exp()
		left = &Binary{Position: pos, Left: left, Operator: op, Right: right}
	}
	return left
}

// exp is `^`, right-associative.
func (p *Parser) exp() Expr {
	left := p.unary()
	if p.check(lexer.TokenCaret) {
		pos := p.pos()
		p.advance()
		right := p.exp()
		return &Binary{Position: pos, Left: left, Operator: "^", Right: right}
	}
	return left
}

func (p *Parser) unary() Expr {
	if p.check(lexer.TokenBang) || p.check(lexer.TokenMinus) {
		pos := p.pos()
		op := p.advance().Lexeme
		operand := p.unary()
		return &Unary{Position: pos, Operator: op, Operand: operand}
	}
	return p.call()
}

func (p *Parser) call() Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(lexer.TokenLParen):
			expr = p.finishCall(expr)
		case p.match(lexer.TokenDot):
			pos := p.previousPos()
			name := p.consume(lexer.TokenIdent, "Expect member name after '.'").Lexeme
			expr = &Member{Position: pos, Object: expr, Name: name}
		case p.match(lexer.TokenLBracket):
			expr = p.finishIndexOrSlice(expr)
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee Expr) Expr {
	pos := p.previousPos()
	var args []Arg
	for !p.check(lexer.TokenRParen) && !p.isAtEnd() {
		var a Arg
		if p.check(lexer.TokenIdent) && p.peekAt(1).Type == lexer.TokenColon {
			a.Name = p.advance().Lexeme
			p.advance() // :
		}
		a.Value = p.expression()
		args = append(args, a)
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRParen, "Expect ')' after arguments")
	return &Call{Position: pos, Callee: callee, Args: args}
}

func (p *Parser) finishIndexOrSlice(object Expr) Expr {
	pos := p.previousPos()
	var start, end, step Expr
	isSlice := false
	if !p.check(lexer.TokenColon) {
		start = p.expression()
	}
	if p.match(lexer.TokenColon) {
		isSlice = true
		if !p.check(lexer.TokenColon) && !p.check(lexer.TokenRBracket) {
			end = p.expression()
		}
		if p.match(lexer.TokenColon) {
			if !p.check(lexer.TokenRBracket) {
				step = p.expression()
			}
		}
	}
	p.consume(lexer.TokenRBracket, "Expect ']' after index/slice")
	if isSlice {
		return &Slice{Position: pos, Object: object, Start: start, End: end, Step: step}
	}
	return &Index{Position: pos, Object: object, Index: start}
}

func (p *Parser) primary() Expr {
	pos := p.pos()
	switch {
	case p.check(lexer.TokenInt):
		tok := p.advance()
		return &Literal{Position: pos, Value: parseIntLiteral(tok.Lexeme)}
	case p.check(lexer.TokenFloat):
		tok := p.advance()
		return &Literal{Position: pos, Value: parseFloatLiteral(tok.Lexeme)}
	case p.check(lexer.TokenString):
		tok := p.advance()
		return &Literal{Position: pos, Value: value.NewString(tok.Lexeme, tok.Original)}
	case p.match(lexer.TokenTrue):
		return &Literal{Position: pos, Value: value.NewBool(true)}
	case p.match(lexer.TokenFalse):
		return &Literal{Position: pos, Value: value.NewBool(false)}
	case p.match(lexer.TokenNil):
		return &Literal{Position: pos, Value: value.NilValue}
	case p.match(lexer.TokenAt):
		return p.name(pos, false, true)
	case p.match(lexer.TokenDoubleColon):
		return p.name(pos, true, false)
	case p.check(lexer.TokenIdent):
		return p.name(pos, false, false)
	case p.match(lexer.TokenLParen):
		expr := p.expression()
		p.consume(lexer.TokenRParen, "Expect ')' after expression")
		return expr
	case p.match(lexer.TokenLBracket):
		return p.arrayLiteral(pos)
	case p.match(lexer.TokenLBrace):
		return p.dictLiteral(pos)
	case p.match(lexer.TokenLambda):
		return p.lambda(pos)
	}
	p.errorAtTok(p.peek(), "unexpected token in expression")
	return nil
}

func (p *Parser) name(pos Position, global, nonlocal bool) Expr {
	first := p.consume(lexer.TokenIdent, "Expect identifier").Lexeme
	segs := []string{first}
	for p.check(lexer.TokenDoubleColon) {
		p.advance()
		segs = append(segs, p.consume(lexer.TokenIdent, "Expect identifier after '::'").Lexeme)
	}
	return &Name{Position: pos, Segments: segs, Global: global, NonLocal: nonlocal}
}

func (p *Parser) arrayLiteral(pos Position) Expr {
	var elems []Expr
	for !p.check(lexer.TokenRBracket) && !p.isAtEnd() {
		elems = append(elems, p.expression())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBracket, "Expect ']' after array elements")
	return &ArrayLit{Position: pos, Elements: elems}
}

func (p *Parser) dictLiteral(pos Position) Expr {
	var keys, values []Expr
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		keys = append(keys, p.expression())
		p.consume(lexer.TokenColon, "Expect ':' after dict key")
		values = append(values, p.expression())
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	p.consume(lexer.TokenRBrace, "Expect '}' after dict entries")
	return &DictLit{Position: pos, Keys: keys, Values: values}
}

func (p *Parser) lambda(pos Position) Expr {
	p.consume(lexer.TokenLParen, "Expect '(' after 'lambda'")
	params := p.paramList()
	p.consume(lexer.TokenRParen, "Expect ')' after lambda parameters")
	p.consume(lexer.TokenLBrace, "Expect '{' before lambda body")
	body := p.blockStatements()
	p.consume(lexer.TokenRBrace, "Expect '}' after lambda body")
	return &Lambda{Position: pos, Params: params, Body: body}
}

func parseIntLiteral(lexeme string) value.Value {
	n := new(big.Int)
	if _, ok := n.SetString(lexeme, 0); !ok {
		return value.NewInt(0)
	}
	return &value.Int{V: n}
}

func parseFloatLiteral(lexeme string) value.Value {
	var f float64
	var sign float64 = 1
	var intPart, fracPart string
	if dot := strings.IndexByte(lexeme, '.'); dot >= 0 {
		intPart, fracPart = lexeme[:dot], lexeme[dot+1:]
	} else {
		intPart = lexeme
	}
	for _, c := range intPart {
		f = f*10 + float64(c-'0')
	}
	scale := 0.1
	for _, c := range fracPart {
		f += float64(c-'0') * scale
		scale /= 10
	}
	return value.NewFloat(sign * f)
}

// ---- token-stream utilities ----

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) check(t lexer.TokenType) bool {
	if p.isAtEnd() {
		return t == lexer.TokenEOF
	}
	return p.peek().Type == t
}

func (p *Parser) consume(t lexer.TokenType, msg string) lexer.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorAtTok(p.peek(), msg)
	return lexer.Token{}
}

func (p *Parser) advance() lexer.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.tokens[p.current-1]
}

func (p *Parser) peek() lexer.Token { return p.tokens[p.current] }

func (p *Parser) peekAt(n int) lexer.Token {
	idx := p.current + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) isAtEnd() bool { return p.tokens[p.current].Type == lexer.TokenEOF }

func (p *Parser) pos() Position {
	t := p.peek()
	return Position{Line: t.Line, Column: t.Column}
}

func (p *Parser) previousPos() Position {
	t := p.tokens[p.current-1]
	return Position{Line: t.Line, Column: t.Column}
}

func (p *Parser) errorAt(pos Position, msg string) {
	src := ""
	if p.sourceLines != nil && pos.Line-1 >= 0 && pos.Line-1 < len(p.sourceLines) {
		src = p.sourceLines[pos.Line-1]
	}
	panic(mashErr.New(mashErr.SyntaxError, msg, mashErr.Location{File: p.file, Line: pos.Line, Column: pos.Column}, src))
}

func (p *Parser) errorAtTok(tok lexer.Token, msg string) {
	p.errorAt(Position{Line: tok.Line, Column: tok.Column}, msg+" (got '"+string(tok.Type)+"')")
}
