// Package diag is the ambient diagnostic sink shared by cmd/tylang: a
// colorized lex/parse/check/runtime error renderer (auto-disabled on a
// non-tty) and a structured dump of a bytecode.Program, a FrameState, or a
// value.Value tree, built on github.com/kr/pretty rather than hand-rolled
// string building.
package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/kr/pretty"
)

// Sink renders diagnostics to an output stream, colorizing when Color is
// enabled.
type Sink struct {
	Out   io.Writer
	Color bool
}

// New returns a Sink writing to out. Colorization should be enabled by
// the caller only when out is a terminal (e.g. via
// github.com/mattn/go-isatty, through fatih/color's own detection on the
// default color.Output).
func New(out io.Writer, enableColor bool) *Sink {
	return &Sink{Out: out, Color: enableColor}
}

func (s *Sink) colorize(c *color.Color, format string, args ...interface{}) string {
	if !s.Color {
		return fmt.Sprintf(format, args...)
	}
	return c.Sprintf(format, args...)
}

// Errorf prints a fatal diagnostic in red, prefixed by stage.
func (s *Sink) Errorf(stage string, err error) {
	fmt.Fprintln(s.Out, s.colorize(color.New(color.FgRed, color.Bold), "%s error: %v", stage, err))
}

// Warnf prints a non-fatal diagnostic in yellow.
func (s *Sink) Warnf(format string, args ...interface{}) {
	fmt.Fprintln(s.Out, s.colorize(color.New(color.FgYellow), format, args...))
}

// Dump pretty-prints v (a bytecode.Program, a bytecode.FrameState, a
// value.Value tree, or any other structured value) via github.com/kr/pretty,
// for the CLI's --dump flag.
func (s *Sink) Dump(label string, v interface{}) {
	fmt.Fprintf(s.Out, "# %s\n", label)
	if _, err := pretty.Fprintf(s.Out, "%# v\n", v); err != nil {
		fmt.Fprintf(s.Out, "<dump error: %v>\n", err)
	}
}
