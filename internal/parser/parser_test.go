package parser

import (
	"fmt"
	"testing"

	"mash/internal/lexer"
)

// parseString scans and parses input, converting any panic into an error
// the same way Parse's own recover does for unexpected failures.
func parseString(input string) (stmts []Stmt, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("parser panic: %v", r)
		}
	}()
	scanner := lexer.NewScanner(input, "<test>")
	tokens, scanErr := scanner.ScanTokens()
	if scanErr != nil {
		return nil, scanErr
	}
	p := NewParserWithSource(tokens, input, "<test>")
	return p.Parse()
}

func assertParseSuccess(t *testing.T, input, description string) []Stmt {
	t.Helper()
	stmts, err := parseString(input)
	if err != nil {
		t.Errorf("%s: parsing failed: %v", description, err)
		return nil
	}
	return stmts
}

func assertParseError(t *testing.T, input, description string) {
	t.Helper()
	_, err := parseString(input)
	if err == nil {
		t.Errorf("%s: expected parsing to fail but it succeeded", description)
	}
}

func TestAssignmentStatements(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"simple assignment", "x = 5", true},
		{"compound add-assign", "x += 5", true},
		{"compound cat-assign", "x ++= \"y\"", true},
		{"multi-assign", "(a, b) = f()", true},
		{"global assignment", "::x = 5", true},
		{"nonlocal read", "@x", true},
		{"index assignment", "x[0] = 5", true},
		{"attribute assignment", "x.y = 5", true},
		{"missing rhs", "x =", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldPass {
				assertParseSuccess(t, test.input, test.name)
			} else {
				assertParseError(t, test.input, test.name)
			}
		})
	}
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []string{
		"1 + 2 * 3",
		"(1 + 2) * 3",
		"1 ++ 2 ++ 3",
		"a && b || c",
		"a and b or c",
		"a == b != c",
		"a < b and b < c",
		"2 ^ 3 ^ 2",
		"-x + 1",
		"!x and !y",
		"x ? 1 : 2",
		"x in xs",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			assertParseSuccess(t, src, src)
		})
	}
}

func TestCallIndexMember(t *testing.T) {
	tests := []string{
		"f()",
		"f(1, 2)",
		"f(x: 1, y: 2)",
		"obj.method()",
		"obj.attr",
		"xs[0]",
		"xs[1:2]",
		"xs[1:2:1]",
		"xs[:2]",
		"xs[::2]",
		"a::b::c",
		"obj.method().chain()[0]",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			assertParseSuccess(t, src, src)
		})
	}
}

func TestControlFlow(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"if", "if x { y } ", true},
		{"if elif else", "if x { y } elif z { w } else { q }", true},
		{"while", "while x { y }", true},
		{"do while", "do { y } while x", true},
		{"for single var", "for x : xs { y }", true},
		{"for destructuring", "for k, v : xs { y }", true},
		{"break/continue", "while x { break\ncontinue }", true},
		{"return bare", "fun f() { return }", true},
		{"return value", "fun f() { return 1 }", true},
		{"if missing brace", "if x y", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.shouldPass {
				assertParseSuccess(t, test.input, test.name)
			} else {
				assertParseError(t, test.input, test.name)
			}
		})
	}
}

func TestDeclarations(t *testing.T) {
	tests := []string{
		`import math`,
		`import "./local.mash" as m`,
		`enum Color { Red, Green, Blue }`,
		`space Util { fun id(x) { return x } }`,
		`class Point { fun new(x, y) { this.x = x } }`,
		`class Point3D extends Point { fun new(x, y, z) { this.z = z } }`,
		`class Vec { fun (+)(other) { return this } }`,
		`fun add(a, b) { return a + b }`,
		`fun variadic(*rest) { return rest }`,
		`fun typed(x: Int, y: Float) { return x }`,
		`fun withDefault(x = 5) { return x }`,
		`fun internalOne() = internal`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			assertParseSuccess(t, src, src)
		})
	}
}

func TestLiterals(t *testing.T) {
	tests := []string{
		"42",
		"3.14",
		`"hello"`,
		"true",
		"false",
		"nil",
		"[1, 2, 3]",
		`{"a": 1, "b": 2}`,
		"lambda(x) { return x }",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			assertParseSuccess(t, src, src)
		})
	}
}

func TestNoteAndDoc(t *testing.T) {
	assertParseSuccess(t, `n"""a note"""`, "note statement")
	assertParseSuccess(t, `d"""a doc comment"""
fun f() { return 1 }`, "doc statement before fun")
}

func TestBareNameStatement(t *testing.T) {
	stmts := assertParseSuccess(t, "x", "bare name statement")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if _, ok := stmts[0].(*BareNameStmt); !ok {
		t.Errorf("expected *BareNameStmt, got %T", stmts[0])
	}
}

func TestScopedNameIsExprStatement(t *testing.T) {
	stmts := assertParseSuccess(t, "a::b", "scoped name statement")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(stmts))
	}
	if _, ok := stmts[0].(*ExprStmt); !ok {
		t.Errorf("expected *ExprStmt, got %T", stmts[0])
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []string{
		"(",
		"fun () {}",
		"class {}",
		"if x {",
		"1 +",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			assertParseError(t, src, src)
		})
	}
}
