package main

import (
	"io"
	"os"

	"github.com/go-tylang/tylang/internal/bytecode"
	"github.com/go-tylang/tylang/internal/check"
	"github.com/go-tylang/tylang/internal/compiler"
	"github.com/go-tylang/tylang/internal/finalize"
	"github.com/go-tylang/tylang/internal/lexer"
	"github.com/go-tylang/tylang/internal/parser"
	"github.com/go-tylang/tylang/internal/typedast"
)

// compileSource runs the full front end (lex -> parse -> finalize ->
// check -> compile) over a single source file, returning every
// intermediate tree the --dump flag might want along the way.
func compileSource(path string) (*typedast.Program, *bytecode.Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	lex := lexer.New(namedFile{f, path})
	prelim, err := parser.Parse(lex)
	if err != nil {
		return nil, nil, err
	}

	typed, err := finalize.Finalize(prelim)
	if err != nil {
		return nil, nil, err
	}

	if err := check.Program(typed); err != nil {
		return typed, nil, err
	}

	prog, err := compiler.Compile(typed)
	if err != nil {
		return typed, nil, err
	}
	return typed, prog, nil
}

// namedFile wraps *os.File so internal/fileinput's Name-sniffing finds the
// path for "name:line" diagnostics even though *os.File.Name() returns
// the same string already; kept explicit for clarity with in-memory
// sources that don't implement Name().
type namedFile struct {
	io.Reader
	path string
}

func (nf namedFile) Name() string { return nf.path }
