package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-tylang/tylang/internal/asm"
	"github.com/go-tylang/tylang/internal/diag"
	"github.com/go-tylang/tylang/internal/flushio"
	"github.com/go-tylang/tylang/internal/interp"
	"github.com/go-tylang/tylang/internal/logio"
	"github.com/go-tylang/tylang/internal/panicerr"
	"github.com/go-tylang/tylang/internal/value"
)

// newAsmCmd builds `tylang asm FILE...`: parses and runs one or more
// assembly-form bytecode files, batched concurrently just like `run`.
func newAsmCmd(log *logio.Logger, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "asm FILE...",
		Short: "Assemble and run one or more tylang assembly files",
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
					return asmRunOne(ctx, path, flags, log, sink)
				})
			}
			return g.Wait()
		},
	}
}

func asmRunOne(ctx context.Context, path string, flags *globalFlags, log *logio.Logger, sink *diag.Sink) error {
	f, err := os.Open(path)
	if err != nil {
		sink.Errorf(path, err)
		return err
	}
	defer f.Close()

	prog, err := asm.Parse(f)
	if err != nil {
		sink.Errorf(path, err)
		return err
	}

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
	}
	return nil
}
