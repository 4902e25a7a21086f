package module

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// writeArchive materializes a txtar fixture's files under dir, returning
// dir — the entry source plus any modules it imports packed into one
// literal test archive (spec §1's ambient test tooling).
func writeArchive(t *testing.T, archive string) string {
	t.Helper()
	dir := t.TempDir()
	a := txtar.Parse([]byte(archive))
	for _, f := range a.Files {
		path := filepath.Join(dir, f.Name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return dir
}

func TestLoadResolvesDirectFile(t *testing.T) {
	dir := writeArchive(t, `
-- greet.mash --
fun hello() { return "hi" }
`)
	l := NewLoader([]string{dir}, true)
	m, err := l.Load("greet", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Alias != "greet" {
		t.Errorf("expected default alias 'greet', got %q", m.Alias)
	}
	if len(m.Stmts) != 1 {
		t.Errorf("expected 1 top-level statement, got %d", len(m.Stmts))
	}
}

func TestLoadUsesExplicitAlias(t *testing.T) {
	dir := writeArchive(t, `
-- greet.mash --
fun hello() { return "hi" }
`)
	l := NewLoader([]string{dir}, true)
	m, err := l.Load("greet", "g")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Alias != "g" {
		t.Errorf("expected alias 'g', got %q", m.Alias)
	}
}

func TestLoadResolvesIndexFile(t *testing.T) {
	dir := writeArchive(t, `
-- collections/index.mash --
fun push(xs, v) { return xs }
`)
	l := NewLoader([]string{dir}, true)
	m, err := l.Load("collections", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Path != filepath.Join(dir, "collections", "index.mash") {
		t.Errorf("unexpected resolved path: %s", m.Path)
	}
}

func TestLoadCachesParsedModule(t *testing.T) {
	dir := writeArchive(t, `
-- greet.mash --
fun hello() { return "hi" }
`)
	l := NewLoader([]string{dir}, true)
	first, err := l.Load("greet", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := l.Load("greet", "other")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if first.Path != second.Path {
		t.Errorf("expected same resolved path across loads")
	}
	if second.Alias != "other" {
		t.Errorf("expected per-call alias override, got %q", second.Alias)
	}
}

func TestLoadRejectsMissingModule(t *testing.T) {
	l := NewLoader([]string{t.TempDir()}, true)
	if _, err := l.Load("nope", ""); err == nil {
		t.Error("expected ImportError for missing module")
	}
}

func TestLoadValidatesVersionSuffix(t *testing.T) {
	dir := writeArchive(t, `
-- greet@v1.2.0.mash --
fun hello() { return "hi" }
`)
	l := NewLoader([]string{dir}, true)
	if _, err := l.Load("greet@not-a-version", ""); err == nil {
		t.Error("expected ImportError for malformed version suffix")
	}
	if _, err := l.Load("greet@v1.2.0", ""); err != nil {
		t.Errorf("expected valid versioned import to resolve, got %v", err)
	}
}

func TestLoadRejectsSyntaxError(t *testing.T) {
	dir := writeArchive(t, `
-- broken.mash --
fun hello( { return 1 }
`)
	l := NewLoader([]string{dir}, true)
	if _, err := l.Load("broken", ""); err == nil {
		t.Error("expected parse failure to surface as ImportError")
	}
}
