// Package errors defines Mash's error taxonomy (spec §7) and the two
// rendering shapes used throughout the CLI: a parse-time excerpt-with-caret
// form, and a one-line runtime form.
package errors

import (
	"strings"

	"golang.org/x/text/width"
	"golang.org/x/xerrors"
)

// Kind names one of the distinct error kinds spec §7 requires; callers
// switch on it rather than on Go type, since every kind shares one shape.
type Kind string

const (
	SyntaxError          Kind = "Syntax error"
	UndefinedReference   Kind = "Undefined reference"
	Redefinition         Kind = "Redefinition"
	AmbiguousRedefinition Kind = "Ambiguous redefinition"
	TypeError            Kind = "Type error"
	ValueError           Kind = "Value error"
	KeyError             Kind = "Key error"
	IndexError           Kind = "Index error"
	ImportError          Kind = "Import error"
	IncorrectDefinition  Kind = "Incorrect definition"
	Unimplemented        Kind = "Unimplemented"
	Internal             Kind = "Internal error"
)

// Location is a source position an error can be attributed to. A zero
// Location (File == "") means the error has no parse-time position, which
// is the common case for runtime errors (§6 renders those without an
// excerpt).
type Location struct {
	File   string
	Line   int
	Column int
}

// StackFrame is one call-stack entry recorded as an error crosses a
// function/method dispatch boundary (internal/ir's dispatchOverloads and
// callFunction call AddStackFrame as a MashError unwinds out of FunCall).
type StackFrame struct {
	Function string
	Location Location
}

// MashError is the single error shape every CORE component raises; Kind
// distinguishes the §7 taxonomy, Cause optionally chains to the error that
// triggered this one (via golang.org/x/xerrors, so %w / xerrors.Is keeps
// working across the lowering→evaluator boundary).
type MashError struct {
	Kind      Kind
	Message   string
	Location  Location
	Source    string
	CallStack []StackFrame
	Cause     error
}

// New builds a MashError with an optional source excerpt (pass "" when
// none is available, e.g. for runtime errors per §6's one-line form).
func New(kind Kind, message string, loc Location, source string) *MashError {
	return &MashError{Kind: kind, Message: message, Location: loc, Source: source}
}

// Wrap chains err as the cause of a new MashError, preserving it for
// xerrors.Unwrap/errors.Is/As.
func Wrap(kind Kind, message string, loc Location, err error) *MashError {
	return &MashError{Kind: kind, Message: message, Location: loc, Cause: err}
}

func (e *MashError) Unwrap() error { return e.Cause }

// Error renders the §6 shapes: an error with a Location.File and a source
// excerpt gets the file:line:col header, excerpt and caret; one with a File
// but no excerpt is the one-line file:line:col form; one with no File is the
// one-line "mash: Error: <message>" form. Call-stack frames, if any, are
// appended regardless of which form was used.
func (e *MashError) Error() string {
	var sb strings.Builder
	if e.Location.File != "" && e.Source != "" {
		sb.WriteString(xerrors.Errorf("%s:%d:%d: Error: %s", e.Location.File, e.Location.Line, e.Location.Column, e.Message).Error())
		sb.WriteByte('\n')
		sb.WriteString(e.Source)
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat(" ", caretColumn(e.Source, e.Location.Column)))
		sb.WriteString("^")
	} else if e.Location.File != "" {
		sb.WriteString(xerrors.Errorf("%s:%d:%d: Error: %s", e.Location.File, e.Location.Line, e.Location.Column, e.Message).Error())
	} else {
		file := "mash"
		sb.WriteString(file + ": Error: " + e.Message)
	}
	for _, f := range e.CallStack {
		sb.WriteByte('\n')
		sb.WriteString("  at ")
		if f.Function != "" {
			sb.WriteString(f.Function + " ")
		}
		sb.WriteString(xerrors.Errorf("(%s:%d:%d)", f.Location.File, f.Location.Line, f.Location.Column).Error())
	}
	if e.Cause != nil {
		sb.WriteByte('\n')
		sb.WriteString("caused by: ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// caretColumn measures the on-screen column a 1-based rune column lands at,
// counting East-Asian wide runes as two cells so the caret in a rendered
// error lines up under the offending rune rather than the offending byte.
func caretColumn(line string, col int) int {
	if col <= 1 {
		return 0
	}
	n := 0
	i := 0
	for _, r := range line {
		i++
		if i >= col {
			break
		}
		if width.LookupRune(r).Kind() == width.EastAsianWide {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// AddStackFrame appends a call-stack entry and returns the receiver, for
// chaining as an error unwinds through dispatch.
func (e *MashError) AddStackFrame(function string, loc Location) *MashError {
	e.CallStack = append(e.CallStack, StackFrame{Function: function, Location: loc})
	return e
}

// Is reports whether target names the same Kind, so callers can write
// errors.Is(err, errors.New(errors.TypeError, "", Location{}, "")) style
// kind checks, or more simply compare Kind directly after an As.
func (e *MashError) Is(target error) bool {
	other, ok := target.(*MashError)
	if !ok {
		return false
	}
	return other.Kind == e.Kind
}
