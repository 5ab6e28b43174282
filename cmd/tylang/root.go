package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/go-tylang/tylang/internal/config"
	"github.com/go-tylang/tylang/internal/diag"
	"github.com/go-tylang/tylang/internal/logio"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	trace        bool
	dump         bool
	color        bool
	configPath   string
	stepBudget   int
	maxCallDepth int
}

func newRootCmd(log *logio.Logger) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "tylang",
		Short:         "Toolchain for the tylang expression language",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&flags.trace, "trace", false, "enable compiler/interpreter trace logging")
	root.PersistentFlags().BoolVar(&flags.dump, "dump", false, "print a structured dump after execution")
	root.PersistentFlags().BoolVar(&flags.color, "color", isatty.IsTerminal(os.Stderr.Fd()), "colorize diagnostics")
	root.PersistentFlags().StringVar(&flags.configPath, "config", "tylang.toml", "path to an optional TOML config overlay")
	root.PersistentFlags().IntVar(&flags.stepBudget, "step-budget", 0, "bound total interpreter steps (0 = unbounded)")
	root.PersistentFlags().IntVar(&flags.maxCallDepth, "max-call-depth", 0, "bound recursive CALL_SUBROUTINE nesting (0 = unbounded)")

	root.AddCommand(newRunCmd(log, &flags))
	root.AddCommand(newAsmCmd(log, &flags))
	root.AddCommand(newCheckCmd(log, &flags))
	root.AddCommand(newFmtCmd(log, &flags))
	return root
}

// loadOverlay merges an optional tylang.toml over the persistent flags:
// a file value only overrides a still-zero flag value, matching the
// teacher's "flags are the ground truth, a file just fills gaps" posture.
func loadOverlay(flags *globalFlags, sink *diag.Sink) (config.Config, error) {
	cfg, unknown, err := config.Load(flags.configPath)
	if err != nil {
		return cfg, err
	}
	for _, key := range unknown {
		sink.Warnf("%v: unknown config key %q ignored", flags.configPath, key)
	}
	if flags.stepBudget == 0 {
		flags.stepBudget = cfg.Interp.StepBudget
	}
	if flags.maxCallDepth == 0 {
		flags.maxCallDepth = cfg.Interp.MaxCallDepth
	}
	if !flags.color && cfg.Diag.Color {
		flags.color = cfg.Diag.Color
	}
	return cfg, nil
}
