package evaluator

import (
	"bytes"
	"testing"

	"mash/internal/lexer"
	"mash/internal/lowering"
	"mash/internal/module"
	"mash/internal/parser"
	"mash/internal/symtab"
)

// run lexes, parses, lowers, and evaluates src against a fresh table,
// returning whatever the program printed.
func run(t *testing.T, src string) string {
	t.Helper()
	scanner := lexer.NewScanner(src, "<test>")
	tokens, err := scanner.ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	p := parser.NewParserWithSource(tokens, src, "<test>")
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	table := symtab.New()
	loader := module.NewLoader(nil, true)
	gen := lowering.NewGenerator(table, loader, "<test>")
	block, err := gen.Lower(stmts)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	var buf bytes.Buffer
	eval := New(table, &buf)
	if err := eval.Run(block); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return buf.String()
}

// A non-bare-name expression statement always prints its value (spec §4.4):
// `1 + 2` alone on a line is an ExprStmt, lowered to a Print directly.

func TestEvaluatorPrintsExpression(t *testing.T) {
	out := run(t, `1 + 2`)
	if out != "3\n" {
		t.Errorf("expected \"3\\n\", got %q", out)
	}
}

func TestEvaluatorFunctionCallAndReturn(t *testing.T) {
	out := run(t, `
fun add(a, b) { return a + b }
add(2, 3)
`)
	if out != "5\n" {
		t.Errorf("expected \"5\\n\", got %q", out)
	}
}

func TestEvaluatorWhileLoopPrintsBareNameEachIteration(t *testing.T) {
	out := run(t, `
i = 0
while i < 3 {
	i
	i += 1
}
`)
	if out != "0\n1\n2\n" {
		t.Errorf("expected \"0\\n1\\n2\\n\", got %q", out)
	}
}

func TestEvaluatorClassConstructorAndMethod(t *testing.T) {
	out := run(t, `
class Point {
	fun new(x, y) {
		this.x = x
		this.y = y
	}
	fun sum() {
		return this.x + this.y
	}
}
p = Point(2, 3)
p.sum()
`)
	if out != "5\n" {
		t.Errorf("expected \"5\\n\", got %q", out)
	}
}

func TestEvaluatorClassInheritanceSeedsParentAttrsAndMethods(t *testing.T) {
	out := run(t, `
class Animal {
	fun new(name) { this.name = name }
	fun speak() { return this.name ++ " makes a sound" }
}
class Dog extends Animal {
	fun new(name) { this.name = name }
}
d = Dog("Rex")
d.speak()
`)
	if out != "Rex makes a sound\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestEvaluatorIfElse(t *testing.T) {
	out := run(t, `
if false {
	"a"
} elif true {
	"b"
} else {
	"c"
}
`)
	if out != "b\n" {
		t.Errorf("expected \"b\\n\", got %q", out)
	}
}

func TestEvaluatorBareNameFirstReferenceDeclaresSilently(t *testing.T) {
	out := run(t, `
x
x
`)
	if out != "nil\n" {
		t.Errorf("expected only the second reference to print (as nil), got %q", out)
	}
}

func TestEvaluatorUndefinedReferenceErrors(t *testing.T) {
	scanner := lexer.NewScanner("missing.attr", "<test>")
	tokens, err := scanner.ScanTokens()
	if err != nil {
		t.Fatalf("ScanTokens: %v", err)
	}
	p := parser.NewParserWithSource(tokens, "missing.attr", "<test>")
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	table := symtab.New()
	loader := module.NewLoader(nil, true)
	gen := lowering.NewGenerator(table, loader, "<test>")
	block, err := gen.Lower(stmts)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	eval := New(table, &bytes.Buffer{})
	if err := eval.Run(block); err == nil {
		t.Error("expected undefined reference error at runtime")
	}
}
