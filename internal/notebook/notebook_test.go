package notebook

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintCollapsesConsecutiveCalls(t *testing.T) {
	w := New(nil, false)
	w.Print("line one")
	w.Print("line two")
	md := w.Markdown()
	if strings.Count(md, "_[Output]:_") != 1 {
		t.Errorf("expected consecutive Print calls to collapse into one Output block, got:\n%s", md)
	}
	if !strings.Contains(md, "line one\nline two") {
		t.Errorf("expected both print lines joined in the output block, got:\n%s", md)
	}
}

func TestNoteWrittenVerbatim(t *testing.T) {
	w := New(nil, false)
	w.Note("a note")
	md := w.Markdown()
	if !strings.Contains(md, "a note") {
		t.Errorf("expected note text in markdown, got:\n%s", md)
	}
}

func TestNoteEchoesToStdoutWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, true)
	w.Note("echoed")
	if buf.String() != "echoed\n" {
		t.Errorf("expected note echoed to stdout, got %q", buf.String())
	}
}

func TestNoteDoesNotEchoWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf, false)
	w.Note("silent")
	if buf.Len() != 0 {
		t.Errorf("expected no stdout echo when echoPrint is false, got %q", buf.String())
	}
}

func TestOutputAndNoteInterleaveInOrder(t *testing.T) {
	w := New(nil, false)
	w.Print("first output")
	w.Note("a note in between")
	w.Print("second output")
	md := w.Markdown()
	noteIdx := strings.Index(md, "a note in between")
	firstIdx := strings.Index(md, "first output")
	secondIdx := strings.Index(md, "second output")
	if !(firstIdx < noteIdx && noteIdx < secondIdx) {
		t.Errorf("expected execution-order interleaving, got:\n%s", md)
	}
	if strings.Count(md, "_[Output]:_") != 2 {
		t.Errorf("expected two separate Output blocks split by the note, got:\n%s", md)
	}
}

func TestWriteToMarkdownWritesVerbatim(t *testing.T) {
	w := New(nil, false)
	w.Note("hello")
	var buf bytes.Buffer
	if err := w.WriteTo(&buf, false); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if buf.String() != w.Markdown() {
		t.Errorf("expected verbatim markdown output")
	}
}

func TestWriteToHTMLRendersThroughGoldmark(t *testing.T) {
	w := New(nil, false)
	w.Note("# Heading")
	var buf bytes.Buffer
	if err := w.WriteTo(&buf, true); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !strings.Contains(buf.String(), "<h1") {
		t.Errorf("expected goldmark to render a heading tag, got:\n%s", buf.String())
	}
}
