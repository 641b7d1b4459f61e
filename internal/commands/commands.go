package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/goxor/internal/config"
	"github.com/idelchi/goxor/internal/logic"
)

// NewXorCommand creates a new cobra command for the xor subcommand.
func NewXorCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xor [flags] OUTPUT [INPUT...]",
		Short: "Combine ranged input streams into an output stream",
		Long: `Combine every INPUT into OUTPUT by XOR.

Each stream is a path, optionally followed by the ranges to visit:

    path@offset:length,offset:length

Sizes accept units such as KiB or MB. "-" stands for standard input or output,
which then needs explicit ranges. An input without ranges is used whole, an output
without ranges receives as many bytes as the inputs provide.`,
		Example: `  goxor xor cipher.bin plain.bin pad.bin@4096:1MiB
  goxor xor --keep disk.img@512:16 a.bin@0:16 b.bin@32:16
  goxor xor --manifest jobs.yml`,
		Aliases: []string{"x"},
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg),
		RunE:    func(_ *cobra.Command, _ []string) error {
			return logic.Run(cfg)
		},
	}

	cmd.Flags().StringP("manifest", "m", "", "Run the jobs of a YAML or JSONC manifest instead of positional streams")
	cmd.Flags().BoolP("keep", "k", false, "Write into the existing output instead of replacing it")
	cmd.Flags().BoolP("preserve-timestamps", "p", false, "Copy the modification time of the first input to the output")

	return cmd
}

// NewStreamCommand creates a new cobra command for the stream subcommand.
func NewStreamCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stream [flags] INPUT1 INPUT2",
		Short: "Combine two streams and append the result to the output",
		Long: `Combine two inputs by XOR and append the result to the output.

"-" reads one of the inputs from standard input. Without --length, the rest of
INPUT1 after --offset1 is combined.`,
		Example: `  goxor stream --length 36 plain.bin pad.bin
  cat plain.bin | goxor stream --offset2 1KiB --length 4KiB -o cipher.bin - pad.bin`,
		Args:    cobra.ExactArgs(2), //nolint:mnd
		PreRunE: preRun(cfg),
		RunE:    func(_ *cobra.Command, _ []string) error {
			return logic.RunStream(cfg)
		},
	}

	cmd.Flags().StringP("length", "l", "", "Number of bytes to combine")
	cmd.Flags().Int64("offset1", 0, "Start offset in INPUT1")
	cmd.Flags().Int64("offset2", 0, "Start offset in INPUT2")
	cmd.Flags().StringP("output", "o", "-", "Output to append to")

	return cmd
}

// NewBatchCommand creates a new cobra command for the batch subcommand.
func NewBatchCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [flags] MANIFEST",
		Short: "Run the jobs of a manifest in parallel",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := preRun(cfg)(cmd, nil); err != nil {
				return err
			}

			cfg.Manifest = args[0]

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return logic.RunBatch(cfg)
		},
	}

	cmd.Flags().BoolP("preserve-timestamps", "p", false, "Copy the modification time of the first input to the output")

	return cmd
}

// NewPlanCommand creates a new cobra command for the plan subcommand.
func NewPlanCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plan [flags] OUTPUT [INPUT...]",
		Short:   "Show the ranges a run would combine without touching any data",
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg),
		RunE:    func(_ *cobra.Command, _ []string) error {
			return logic.RunPlan(cfg)
		},
	}

	cmd.Flags().StringP("manifest", "m", "", "Plan the jobs of a YAML or JSONC manifest instead of positional streams")
	cmd.Flags().BoolP("keep", "k", false, "Report the parts of the existing output left untouched")

	return cmd
}

// NewCPUCommand creates a new cobra command for the cpu subcommand.
func NewCPUCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "cpu",
		Short:   "Show the detected CPU features and the selected combiner",
		Args:    cobra.NoArgs,
		PreRunE: preRun(cfg),
		RunE:    func(_ *cobra.Command, _ []string) error {
			return logic.RunCPU(cfg)
		},
	}
}
