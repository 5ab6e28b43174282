package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/go-tylang/tylang/internal/diag"
	"github.com/go-tylang/tylang/internal/finalize"
	"github.com/go-tylang/tylang/internal/lexer"
	"github.com/go-tylang/tylang/internal/logio"
	"github.com/go-tylang/tylang/internal/parser"
	"github.com/go-tylang/tylang/internal/serialize"
)

// newFmtCmd builds `tylang fmt FILE`: parses and finalizes a source file,
// then serializes the typed tree back to source, printing it to stdout.
// The printed text is the serialize(finalize(parse(text))) half of the
// round trip; fmt itself does not re-parse it.
func newFmtCmd(log *logio.Logger, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fmt FILE",
		Short: "Reformat a tylang source file through finalize+serialize",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			sink := diag.New(os.Stderr, flags.color)

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			lex := lexer.New(namedFile{f, path})
			prelim, err := parser.Parse(lex)
			if err != nil {
				sink.Errorf(path, err)
				return err
			}
			typed, err := finalize.Finalize(prelim)
			if err != nil {
				sink.Errorf(path, err)
				return err
			}
			return serialize.Program(os.Stdout, typed)
		},
	}
}
