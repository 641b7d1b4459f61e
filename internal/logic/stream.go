package logic

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/goxor/internal/config"
	"github.com/idelchi/goxor/internal/manifest"
	"github.com/idelchi/goxor/pkg/xor"
)

// RunStream combines two inputs into an output opened for append, starting at
// the configured offsets.
func RunStream(cfg *config.Config) error {
	start := time.Now()

	combiner, err := xor.ByName(cfg.Combiner)
	if err != nil {
		return err
	}

	length, err := streamLength(cfg)
	if err != nil {
		return err
	}

	session := xor.NewSession(xor.WithSessionChunkSize(cfg.Chunk), xor.WithSessionCombiner(combiner))

	// Failing session calls have already closed the session.
	for slot, path := range cfg.Streams {
		if err := session.OpenInput(slot, sessionPath(path)); err != nil {
			return fmt.Errorf("opening input %d: %w", slot, err)
		}
	}

	if err := session.OpenOutput(sessionPath(cfg.Output)); err != nil {
		return fmt.Errorf("opening output: %w", err)
	}

	for slot, offset := range []int64{cfg.Offset1, cfg.Offset2} {
		if offset == 0 {
			continue
		}

		if err := session.SeekInput(slot, offset); err != nil {
			return fmt.Errorf("positioning input %d: %w", slot, err)
		}
	}

	written, err := session.Execute(length)
	if err != nil {
		return fmt.Errorf("combining streams: %w", err)
	}

	if err := session.Close(); err != nil {
		return fmt.Errorf("closing streams: %w", err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(progress(outputName(cfg.Output)), "Processed %q -> %q\n", cfg.Streams, outputName(cfg.Output))
	}

	if cfg.Stats {
		fmt.Fprintf(os.Stderr, "\nStats\n")
		//nolint:gosec // written is never negative
		fmt.Fprintf(os.Stderr, "  Combined:  %s\n", humanize.IBytes(uint64(written)))
		fmt.Fprintf(os.Stderr, "  Duration:  %s\n", time.Since(start).Round(time.Millisecond))
	}

	return nil
}

// streamLength returns the configured length, or what is left of the first
// input after its offset when no length was given.
func streamLength(cfg *config.Config) (int64, error) {
	if cfg.Length != "" {
		length, err := humanize.ParseBytes(cfg.Length)
		if err != nil {
			return 0, fmt.Errorf("%w: --length: %w", config.ErrInvalid, err)
		}

		return int64(length), nil //nolint:gosec // lengths beyond MaxInt64 are not meaningful
	}

	first := manifest.Stream{Path: cfg.Streams[0]}

	ranges, err := resolve(first, func() (os.FileInfo, error) { return os.Stat(first.Path) })
	if err != nil {
		return 0, fmt.Errorf("--length not given: %w", err)
	}

	return max(0, int64(ranges[0].Length)-cfg.Offset1), nil //nolint:gosec // file sizes fit in int64
}

func sessionPath(path string) string {
	if path == manifest.Stdio {
		return ""
	}

	return path
}

func outputName(path string) string {
	if path == "" {
		return manifest.Stdio
	}

	return path
}
