// Package cli parses Mash's command-line surface (spec §6). It follows the
// teacher's own cmd/sentra/main.go style — a manual flag walk into a plain
// Options struct — rather than a flag-parsing framework, since the teacher
// itself hand-rolls this for the same CLI shape (version, -e, -v, -s, a
// repeatable -l, -o, -p).
package cli

import (
	"fmt"
)

// Options is the parsed CLI surface (spec §6).
type Options struct {
	Version     bool
	Code        string
	HasCode     bool
	Verbose     bool
	LowerOnly   bool // -s
	ParseOnly   bool // --parse-only
	NoLibMash   bool
	SearchPaths []string // -l, repeatable
	Output      string   // -o
	PrintNotes  bool     // -p / --print-notes
	File        string
}

const Usage = `usage: mash [options] [file]

  --version         print version and exit
  -e <code>          interpret the argument as source
  -v                  verbose/debug traces
  -s                   lower only; print IR dump; do not execute
  --parse-only          parse tree only; do not lower/execute
  --no-libmash           skip loading the bundled standard library
  -l <dir>                add to module search path (repeatable)
  -o <path>                 write notebook output to path
  -p, --print-notes          also echo notes to stdout
  <file>                      source file; reads stdin if omitted
`

// Parse walks args the way the teacher's cmd/sentra/main.go does: a switch
// over the recognized flags, consumed left to right, with the first bare
// argument taken as the source file.
func Parse(args []string) (*Options, error) {
	opts := &Options{}
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "--version":
			opts.Version = true
		case "-e":
			v, err := next(args, &i, "-e")
			if err != nil {
				return nil, err
			}
			opts.Code, opts.HasCode = v, true
		case "-v":
			opts.Verbose = true
		case "-s":
			opts.LowerOnly = true
		case "--parse-only":
			opts.ParseOnly = true
		case "--no-libmash":
			opts.NoLibMash = true
		case "-l":
			v, err := next(args, &i, "-l")
			if err != nil {
				return nil, err
			}
			opts.SearchPaths = append(opts.SearchPaths, v)
		case "-o":
			v, err := next(args, &i, "-o")
			if err != nil {
				return nil, err
			}
			opts.Output = v
		case "-p", "--print-notes":
			opts.PrintNotes = true
		default:
			if opts.File != "" {
				return nil, fmt.Errorf("unexpected argument %q", a)
			}
			opts.File = a
		}
	}
	return opts, nil
}

func next(args []string, i *int, flag string) (string, error) {
	if *i+1 >= len(args) {
		return "", fmt.Errorf("%s requires an argument", flag)
	}
	*i++
	return args[*i], nil
}
