package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-tylang/tylang/internal/diag"
	"github.com/go-tylang/tylang/internal/logio"
)

// newCheckCmd builds `tylang check FILE...`: runs the front end through
// type checking and compilation (so a missing "main" is also reported)
// without interpreting, reporting the first error per file.
func newCheckCmd(log *logio.Logger, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse, finalize, and type-check tylang source files without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink := diag.New(os.Stderr, flags.color)
			var failed bool
			for _, path := range args {
				if _, _, err := compileSource(path); err != nil {
					sink.Errorf(path, err)
					failed = true
					continue
				}
				fmt.Fprintf(os.Stdout, "%v: ok\n", path)
			}
			if failed {
				return fmt.Errorf("one or more files failed to check")
			}
			return nil
		},
	}
}
