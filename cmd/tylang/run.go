package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-tylang/tylang/internal/diag"
	"github.com/go-tylang/tylang/internal/flushio"
	"github.com/go-tylang/tylang/internal/interp"
	"github.com/go-tylang/tylang/internal/logio"
	"github.com/go-tylang/tylang/internal/panicerr"
	"github.com/go-tylang/tylang/internal/value"
)

// newRunCmd builds `tylang run FILE...`: compiles and interprets each
// source file, one interp.Machine per file. When given more than one
// file, all are compiled and run concurrently via golang.org/x/sync/errgroup;
// the first failure cancels the rest.
func newRunCmd(log *logio.Logger, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run FILE...",
		Short: "Compile and run one or more tylang source files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink := diag.New(os.Stderr, flags.color)
			if _, err := loadOverlay(flags, sink); err != nil {
				return err
			}
			sink.Color = flags.color

			g, ctx := errgroup.WithContext(cmd.Context())
			for _, path := range args {
				path := path
				g.Go(func() error {
					return runOne(ctx, path, flags, log, sink)
				})
			}
			return g.Wait()
		},
	}
}

func runOne(ctx context.Context, path string, flags *globalFlags, log *logio.Logger, sink *diag.Sink) error {
	typed, prog, err := compileSource(path)
	if err != nil {
		sink.Errorf(path, err)
		return err
	}

	// Under --trace, program prints are tee'd into the log stream so they
	// interleave with the TRACE lines they were caused by.
	out := flushio.New(os.Stdout)
	progOut := flushio.WriteFlusher(out)
	var opts []interp.Option
	if flags.trace {
		opts = append(opts, interp.WithTrace(log.Leveledf("TRACE")))
		progOut = flushio.Multi(out, flushio.New(&logio.Writer{Logf: log.Leveledf("PRINT")}))
	}
	defer progOut.Flush()
	opts = append(opts,
		interp.WithOutput(progOut),
		interp.WithStepBudget(flags.stepBudget),
		interp.WithMaxCallDepth(flags.maxCallDepth),
	)

	machine := interp.New(prog, opts...)
	var result value.Value
	err = panicerr.Recover(path, func() error {
		var rerr error
		result, rerr = machine.Run(ctx)
		return rerr
	})
	if err != nil {
		sink.Errorf(path, err)
		return err
	}

	fmt.Fprintf(out, "%v => %v\n", path, result)

	if flags.dump {
		sink.Dump(path+" bytecode", prog)
		sink.Dump(path+" typed AST", typed)
	}
	return nil
}
