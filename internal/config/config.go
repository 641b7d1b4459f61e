// Package config holds the command-line configuration and its validation.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/gogen/pkg/validator"
	"github.com/idelchi/goxor/pkg/xor"
)

// ErrInvalid is returned when the configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings shared by all commands, populated from flags and
// GOXOR_* environment variables.
type Config struct {
	// Common flags
	Show      bool
	Quiet     bool
	Stats     bool
	Parallel  int    `label:"--parallel"   validate:"min=1"`
	ChunkSize string `label:"--chunk-size" mapstructure:"chunk-size" validate:"required"`
	Combiner  string `label:"--combiner"   validate:"oneof=auto scalar vector128 vector256"`

	// xor, plan and batch
	Manifest           string `label:"--manifest" validate:"exclusive=Streams"`
	Keep               bool
	PreserveTimestamps bool `mapstructure:"preserve-timestamps"`

	// stream
	Length  string `label:"--length"`
	Offset1 int64  `label:"--offset1" validate:"min=0"`
	Offset2 int64  `label:"--offset2" validate:"min=0"`
	Output  string

	// Positional arguments
	Streams []string `label:"streams" mapstructure:"-"`

	// Resolved from ChunkSize by Validate.
	Chunk int `mapstructure:"-"`
}

// Display returns the value of the Show field.
func (c *Config) Display() bool {
	return c.Show
}

// Validate validates the configuration against the struct tags and resolves derived values.
func (c *Config) Validate(config any) error {
	validator := validator.NewValidator()

	if err := registerExclusive(validator); err != nil {
		return err
	}

	if errs := validator.Validate(config); errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	chunk, err := humanize.ParseBytes(c.ChunkSize)
	if err != nil {
		return fmt.Errorf("%w: --chunk-size: %w", ErrInvalid, err)
	}

	if chunk == 0 || chunk > math.MaxInt32 {
		return fmt.Errorf("%w: --chunk-size must be between 1 byte and 2GiB, got %q", ErrInvalid, c.ChunkSize)
	}

	c.Chunk = int(chunk)

	return nil
}

// Engine builds an engine from the chunk size and combiner settings.
func (c *Config) Engine() (*xor.Engine, error) {
	combiner, err := xor.ByName(c.Combiner)
	if err != nil {
		return nil, err
	}

	return xor.New(xor.WithChunkSize(c.Chunk), xor.WithCombiner(combiner))
}
