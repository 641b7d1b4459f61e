// Package logic implements the command behavior on top of the XOR engine.
package logic

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/goxor/internal/config"
	"github.com/idelchi/goxor/pkg/xor"
)

// Run runs the job given by positional streams, or every job of a manifest in order.
func Run(cfg *config.Config) error {
	start := time.Now()

	todo, err := jobs(cfg.Manifest, cfg.Streams, cfg.Keep)
	if err != nil {
		return err
	}

	engine, err := cfg.Engine()
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	var (
		stats stats
		errs  error
	)

	for _, job := range todo {
		res, err := runJob(job, engine, cfg.PreserveTimestamps)
		res.Error = err

		stats.add(res)
		report(res, cfg.Quiet)

		if err != nil && errs == nil {
			errs = err
		}
	}

	if cfg.Stats {
		stats.print(time.Since(start))
	}

	if errs != nil {
		return fmt.Errorf("running jobs: %w", errs)
	}

	return nil
}

// progress returns where progress lines go: standard error when the data itself
// is written to standard output.
func progress(output string) io.Writer {
	if output == "-" {
		return os.Stderr
	}

	return os.Stdout
}

func report(res Result, quiet bool) {
	switch {
	case res.Error != nil:
		fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", res.Job, res.Error)
	case quiet:
	case res.Outcome == xor.NoWork:
		fmt.Fprintf(progress(res.Output), "Nothing to do for %q\n", res.Job)
	default:
		fmt.Fprintf(progress(res.Output), "Processed %q -> %q\n", res.Job, res.Output)
	}
}

type stats struct {
	jobs      int
	processed int
	skipped   int
	errored   int
	bytes     uint64
	size      int64
}

func (s *stats) add(res Result) {
	s.jobs++

	switch {
	case res.Error != nil:
		s.errored++
	case res.Outcome == xor.NoWork:
		s.skipped++
	default:
		s.processed++
		s.bytes += res.Bytes
		s.size += res.OutputSize
	}
}

func (s *stats) print(duration time.Duration) {
	fmt.Fprintf(os.Stderr, "\nStats\n")
	fmt.Fprintf(os.Stderr, "  Jobs:      %d\n", s.jobs)
	fmt.Fprintf(os.Stderr, "  Processed: %d\n", s.processed)
	fmt.Fprintf(os.Stderr, "  No work:   %d\n", s.skipped)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", s.errored)
	fmt.Fprintf(os.Stderr, "  Combined:  %s\n", humanize.IBytes(s.bytes))
	//nolint:gosec // size is always non-negative (sum of file sizes)
	fmt.Fprintf(os.Stderr, "  Size:      %s\n", humanize.IBytes(uint64(max(0, s.size))))
	fmt.Fprintf(os.Stderr, "  Duration:  %s\n", duration.Round(time.Millisecond))
}
