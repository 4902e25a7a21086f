package lowering

import (
	"testing"

	"mash/internal/lexer"
	"mash/internal/module"
	"mash/internal/parser"
	"mash/internal/symtab"
)

func lowerSource(t *testing.T, src string) (*symtab.SymbolTable, error) {
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
	gen := NewGenerator(table, module.NewLoader(nil, true), "<test>")
	_, err = gen.Lower(stmts)
	return table, err
}

func TestLowerRegistersFunctionImmediately(t *testing.T) {
	table, err := lowerSource(t, `fun add(a, b) { return a + b }`)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if _, ok := table.Root().Funcs("add"); !ok {
		t.Error("expected 'add' registered in the root frame during lowering, before any execution")
	}
}

func TestLowerRegistersSpaceAndNestedFunction(t *testing.T) {
	table, err := lowerSource(t, `space Util { fun id(x) { return x } }`)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	spaceVal, ok := table.Root().Value("Util")
	if !ok {
		t.Fatal("expected 'Util' space bound in root frame")
	}
	spaceFrame, ok := spaceVal.(*symtab.Frame)
	if !ok {
		t.Fatalf("expected *symtab.Frame, got %T", spaceVal)
	}
	if _, ok := spaceFrame.Funcs("id"); !ok {
		t.Error("expected 'id' registered inside the Util space frame")
	}
}

func TestLowerRegistersClassWithExtends(t *testing.T) {
	table, err := lowerSource(t, `
class Animal { fun new(name) { this.name = name } }
class Dog extends Animal { fun new(name) { this.name = name } }
`)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	v, ok := table.Root().Value("Dog")
	if !ok {
		t.Fatal("expected 'Dog' class bound in root frame")
	}
	frame, ok := v.(*symtab.Frame)
	if !ok {
		t.Fatalf("expected *symtab.Frame, got %T", v)
	}
	if len(frame.Extends) != 1 || frame.Extends[0] != "Animal" {
		t.Errorf("expected Extends=[Animal], got %v", frame.Extends)
	}
}

func TestLowerBareNameEmitsSetOrPrint(t *testing.T) {
	table := symtab.New()
	gen := NewGenerator(table, module.NewLoader(nil, true), "<test>")
	scanner := lexer.NewScanner("x", "<test>")
	tokens, _ := scanner.ScanTokens()
	p := parser.NewParserWithSource(tokens, "x", "<test>")
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	block, err := gen.Lower(stmts)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if len(block) != 1 {
		t.Fatalf("expected exactly one IR instruction, got %d", len(block))
	}
	if block[0].String() == "" {
		t.Error("expected a non-empty IR rendering for the bare-name statement")
	}
}

func TestLowerDivisionByZeroDefersToRuntime(t *testing.T) {
	table := symtab.New()
	gen := NewGenerator(table, module.NewLoader(nil, true), "<test>")
	scanner := lexer.NewScanner("1 / 0", "<test>")
	tokens, _ := scanner.ScanTokens()
	p := parser.NewParserWithSource(tokens, "1 / 0", "<test>")
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := gen.Lower(stmts); err != nil {
		t.Errorf("expected lowering to succeed, deferring the division error to runtime, got %v", err)
	}
}
