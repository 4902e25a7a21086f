package cli

import "testing"

func TestParseVersionFlag(t *testing.T) {
	opts, err := Parse([]string{"--version"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !opts.Version {
		t.Error("expected Version true")
	}
}

func TestParseCodeFlag(t *testing.T) {
	opts, err := Parse([]string{"-e", "1 + 1"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !opts.HasCode || opts.Code != "1 + 1" {
		t.Errorf("expected HasCode=true Code=%q, got HasCode=%v Code=%q", "1 + 1", opts.HasCode, opts.Code)
	}
}

func TestParseCodeFlagMissingArgument(t *testing.T) {
	if _, err := Parse([]string{"-e"}); err == nil {
		t.Error("expected error for -e with no argument")
	}
}

func TestParseBooleanFlags(t *testing.T) {
	opts, err := Parse([]string{"-v", "-s", "--parse-only", "--no-libmash", "-p"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !opts.Verbose || !opts.LowerOnly || !opts.ParseOnly || !opts.NoLibMash || !opts.PrintNotes {
		t.Errorf("expected all boolean flags set, got %+v", opts)
	}
}

func TestParsePrintNotesLongForm(t *testing.T) {
	opts, err := Parse([]string{"--print-notes"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !opts.PrintNotes {
		t.Error("expected --print-notes to set PrintNotes")
	}
}

func TestParseRepeatableSearchPath(t *testing.T) {
	opts, err := Parse([]string{"-l", "dir1", "-l", "dir2"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(opts.SearchPaths) != 2 || opts.SearchPaths[0] != "dir1" || opts.SearchPaths[1] != "dir2" {
		t.Errorf("expected SearchPaths=[dir1 dir2], got %v", opts.SearchPaths)
	}
}

func TestParseOutputFlag(t *testing.T) {
	opts, err := Parse([]string{"-o", "out.html"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if opts.Output != "out.html" {
		t.Errorf("expected Output=out.html, got %q", opts.Output)
	}
}

func TestParseBareFileArgument(t *testing.T) {
	opts, err := Parse([]string{"script.mash"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if opts.File != "script.mash" {
		t.Errorf("expected File=script.mash, got %q", opts.File)
	}
}

func TestParseRejectsSecondBareArgument(t *testing.T) {
	if _, err := Parse([]string{"one.mash", "two.mash"}); err == nil {
		t.Error("expected error for a second bare argument")
	}
}

func TestParseCombinesFlagsAndFile(t *testing.T) {
	opts, err := Parse([]string{"-v", "-o", "notes.md", "script.mash"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !opts.Verbose || opts.Output != "notes.md" || opts.File != "script.mash" {
		t.Errorf("unexpected parse result: %+v", opts)
	}
}
