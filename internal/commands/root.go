package commands

import (
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/goxor/internal/config"
	"github.com/idelchi/goxor/pkg/xor"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "goxor [flags] command [flags]"
	root.Short = "Combine byte streams by XOR"
	root.Long = `A utility that combines byte ranges of several streams by XOR.
Provides commands for ranged and append-mode combining, manifests and planning.

Every flag can also be set through a GOXOR_* environment variable, such as GOXOR_CHUNK_SIZE.`

	root.PersistentFlags().BoolP("show", "s", false, "Show the configuration and exit")
	root.PersistentFlags().
		IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().Bool("stats", false, "Print statistics after processing")
	root.PersistentFlags().String("chunk-size", "4MiB", "Maximum number of bytes combined per iteration")
	root.PersistentFlags().String("combiner", "auto", "Combine primitive, one of: "+strings.Join(xor.Names(), ", "))

	root.AddCommand(
		NewXorCommand(cfg),
		NewStreamCommand(cfg),
		NewBatchCommand(cfg),
		NewPlanCommand(cfg),
		NewCPUCommand(cfg),
	)

	return root
}
