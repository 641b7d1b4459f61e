// Package commands provides the command-line interface for the goxor tool.
//
// It implements commands for:
//   - combining ranged streams
//   - combining two streams in append mode
//   - running job manifests
//   - planning and inspecting
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra, viper and cobraext.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/goxor/internal/config"
)

// preRun returns a PreRunE handler that stores the positional args in cfg.Streams
// and validates the configuration.
func preRun(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		cfg.Streams = args

		return cobraext.Validate(cfg, cfg)
	}
}
