package ir

import "fmt"

// Print writes value's display form to the configured output sink
// (spec §4.3); format/output-file redirection is an external-collaborator
// concern (§1) the CLI layer wires through Context.Print.
type Print struct{ Src Operand }

func (p *Print) Exec(ctx Context) error {
	v, err := resolve(ctx, p.Src)
	if err != nil {
		return err
	}
	ctx.Print(v.ToString())
	return nil
}

func (p *Print) String() string { return fmt.Sprintf("PRINT %s", p.Src) }

// SetOrPrint implements the bare-name-statement rule (spec §4.4): the first
// reference declares Dst to Default and prints nothing further; every later
// reference prints the current value.
type SetOrPrint struct {
	Dst     string
	Default Operand
}

func (s *SetOrPrint) Exec(ctx Context) error {
	if ctx.Table().ExistsTop(s.Dst) || ctx.Table().Exists(s.Dst) {
		v, err := ctx.Table().Get([]string{s.Dst}, false, false)
		if err != nil {
			return err
		}
		ctx.Print(v.ToString())
		return nil
	}
	v, err := resolve(ctx, s.Default)
	if err != nil {
		return err
	}
	return ctx.Table().Declare(s.Dst, v)
}

func (s *SetOrPrint) String() string { return fmt.Sprintf("SETORPRINT %s, %s", s.Dst, s.Default) }

// SetIfNotSet declares Dst to Default only if not already bound anywhere
// visible; unlike SetOrPrint it never prints.
type SetIfNotSet struct {
	Dst     string
	Default Operand
}

func (s *SetIfNotSet) Exec(ctx Context) error {
	if ctx.Table().Exists(s.Dst) {
		return nil
	}
	v, err := resolve(ctx, s.Default)
	if err != nil {
		return err
	}
	return ctx.Table().Declare(s.Dst, v)
}

func (s *SetIfNotSet) String() string { return fmt.Sprintf("SETIFNOTSET %s, %s", s.Dst, s.Default) }

// Note emits notebook markdown text (spec §6); Doc passes documentation
// text to the Context's Doc sink the same way and does not attach it to any
// Fun/Space/Class definition. Both are no-ops on the ordinary stdout stream
// outside of notebook mode.
type Note struct{ Text string }

func (n *Note) Exec(ctx Context) error { ctx.Note(n.Text); return nil }
func (n *Note) String() string         { return fmt.Sprintf("NOTE %q", n.Text) }

type Doc struct{ Text string }

func (d *Doc) Exec(ctx Context) error { ctx.Doc(d.Text); return nil }
func (d *Doc) String() string         { return fmt.Sprintf("DOC %q", d.Text) }

// Nop does nothing; the generator emits it for empty statement positions.
type Nop struct{}

func (Nop) Exec(Context) error { return nil }
func (Nop) String() string     { return "NOP" }
