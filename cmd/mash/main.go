// Command mash is the Mash language runtime's CLI entry point (spec §6).
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"mash/internal/builtins"
	"mash/internal/cli"
	"mash/internal/errors"
	"mash/internal/evaluator"
	"mash/internal/lexer"
	"mash/internal/lowering"
	"mash/internal/module"
	"mash/internal/notebook"
	"mash/internal/parser"
	"mash/internal/symtab"
	"mash/internal/trace"
)

const version = "mash 0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, cli.Usage)
		return 1
	}
	if opts.Version {
		fmt.Println(version)
		return 0
	}

	source, file, err := readSource(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	scanner := lexer.NewScanner(source, file)
	tokens, err := scanner.ScanTokens()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	p := parser.NewParserWithSource(tokens, source, file)
	stmts, err := p.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.ParseOnly {
		fmt.Printf("%d top-level statement(s) parsed\n", len(stmts))
		return 0
	}

	table := symtab.New()
	if err := builtins.Register(table); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	loader := module.NewLoader(opts.SearchPaths, opts.NoLibMash)
	gen := lowering.NewGenerator(table, loader, file)
	block, err := gen.Lower(stmts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.LowerOnly {
		fmt.Println(block.String())
		return 0
	}

	eval := evaluator.New(table, os.Stdout)
	if opts.Verbose {
		eval = eval.WithTrace(trace.New(true))
	}
	var book *notebook.Writer
	if opts.Output != "" {
		book = notebook.New(os.Stdout, opts.PrintNotes)
		eval = eval.WithNotebook(book)
	}

	if err := eval.Run(block); err != nil {
		reportError(err)
		return 1
	}

	if book != nil {
		if err := writeNotebook(book, opts.Output); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}

func readSource(opts *cli.Options) (source, file string, err error) {
	if opts.HasCode {
		return opts.Code, "<code>", nil
	}
	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return "", "", err
		}
		return string(data), opts.File, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", err
	}
	return string(data), "<stdin>", nil
}

func writeNotebook(book *notebook.Writer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return book.WriteTo(f, strings.HasSuffix(path, ".html"))
}

func reportError(err error) {
	if me, ok := err.(*errors.MashError); ok {
		fmt.Fprintln(os.Stderr, me.Error())
		return
	}
	fmt.Fprintln(os.Stderr, err)
}
