// Command tylang is the CLI front end for the language's toolchain: run,
// asm, check, and fmt, built as a cobra command tree.
package main

import (
	"os"

	"github.com/go-tylang/tylang/internal/logio"
)

func main() {
	log := &logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	root := newRootCmd(log)
	if err := root.Execute(); err != nil {
		log.ErrorIf(err)
	}
}
