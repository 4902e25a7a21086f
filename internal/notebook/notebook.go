// Package notebook implements Mash's `-o`/`-p` notebook output mode
// (spec §6): a markdown document interleaving note text with fenced code
// output, optionally rendered to HTML via goldmark for an `.html` target.
package notebook

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
)

type segmentKind int

const (
	segOutput segmentKind = iota
	segNote
	segDoc
)

type segment struct {
	kind segmentKind
	text string
}

// Writer accumulates a program's Print/Note/Doc calls in execution order
// and renders them as one markdown document (spec §6): consecutive Print
// calls collapse into a single fenced `_[Output]:_` block, Note text is
// written verbatim at its source position, and Doc text is written there as
// a `> ` blockquote.
type Writer struct {
	segments  []segment
	echoPrint bool // -p/--print-notes: also echo notes to stdout as they arrive
	stdout    io.Writer
}

// New returns an empty Writer. echoPrint mirrors spec §6's `-p` flag: when
// set, Note text is also written to stdout as it's produced, not just
// collected into the notebook.
func New(stdout io.Writer, echoPrint bool) *Writer {
	return &Writer{stdout: stdout, echoPrint: echoPrint}
}

func (w *Writer) Print(s string) {
	if n := len(w.segments); n > 0 && w.segments[n-1].kind == segOutput {
		w.segments[n-1].text += "\n" + s
		return
	}
	w.segments = append(w.segments, segment{kind: segOutput, text: s})
}

func (w *Writer) Note(s string) {
	w.segments = append(w.segments, segment{kind: segNote, text: s})
	if w.echoPrint && w.stdout != nil {
		fmt.Fprintln(w.stdout, s)
	}
}

func (w *Writer) Doc(s string) {
	w.segments = append(w.segments, segment{kind: segDoc, text: s})
}

// Markdown renders the accumulated segments (spec §6's notebook format): an
// output segment becomes a fenced block preceded by `_[Output]:_`; a note
// segment is written as a plain paragraph, and a doc segment as a
// blockquote with every line prefixed by `> `.
func (w *Writer) Markdown() string {
	var sb strings.Builder
	for i, s := range w.segments {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch s.kind {
		case segOutput:
			sb.WriteString("_[Output]:_\n```\n")
			sb.WriteString(s.text)
			sb.WriteString("\n```")
		case segDoc:
			sb.WriteString("> " + strings.ReplaceAll(s.text, "\n", "\n> "))
		default:
			sb.WriteString(s.text)
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// WriteTo renders the notebook to out (spec §6): html true runs the
// markdown through goldmark, false writes the markdown verbatim. The caller
// picks html, typically from the output path's extension.
func (w *Writer) WriteTo(out io.Writer, html bool) error {
	md := w.Markdown()
	if !html {
		_, err := io.WriteString(out, md)
		return err
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return err
	}
	_, err := out.Write(buf.Bytes())
	return err
}
