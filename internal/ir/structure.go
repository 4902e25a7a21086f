package ir

import (
	"fmt"
	"strings"
)

// SpacePush/SpacePop bracket a `space Name { ... }` declaration
// (spec §4.3/§4.4): the frame is created, bound under Name in the
// enclosing frame, and pushed by SpacePush; the body's own statements run
// as ordinary IR in between.
type SpacePush struct{ Name string }

func (s *SpacePush) Exec(ctx Context) error {
	_, err := ctx.Table().PushSpace(s.Name)
	return err
}

func (s *SpacePush) String() string { return fmt.Sprintf("SPACE %s", s.Name) }

type SpacePop struct{}

func (SpacePop) Exec(ctx Context) error { ctx.Table().PopSpace(); return nil }
func (SpacePop) String() string         { return "ENDSPACE" }

// ClassPush/ClassPop bracket a `class Name : Extends... { ... }`
// declaration (spec §4.3/§4.4).
type ClassPush struct {
	Name    string
	Extends []string
}

func (c *ClassPush) Exec(ctx Context) error {
	_, err := ctx.Table().PushClass(c.Name, c.Extends)
	return err
}

func (c *ClassPush) String() string {
	if len(c.Extends) == 0 {
		return fmt.Sprintf("CLASS %s", c.Name)
	}
	return fmt.Sprintf("CLASS %s : %s", c.Name, strings.Join(c.Extends, ", "))
}

type ClassPop struct{}

func (ClassPop) Exec(ctx Context) error { ctx.Table().PopClass(); return nil }
func (ClassPop) String() string         { return "ENDCLASS" }
