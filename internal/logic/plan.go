package logic

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/goxor/internal/config"
	"github.com/idelchi/goxor/internal/manifest"
	"github.com/idelchi/goxor/pkg/interval"
	"github.com/idelchi/goxor/pkg/xor"
)

// RunPlan prints the normalized ranges of every job and the parts of each
// output that stay untouched, without reading or writing any data.
func RunPlan(cfg *config.Config) error {
	todo, err := jobs(cfg.Manifest, cfg.Streams, cfg.Keep)
	if err != nil {
		return err
	}

	var errs int

	for _, job := range todo {
		if err := plan(os.Stdout, job); err != nil {
			errs++

			fmt.Fprintf(os.Stderr, "Error planning %q: %v\n", job.Label(), err)
		}
	}

	if errs > 0 {
		return fmt.Errorf("%d job(s) cannot run", errs)
	}

	return nil
}

// plan writes the layout of one job to w and returns why it cannot run, if it cannot.
func plan(w io.Writer, job manifest.Job) error {
	fmt.Fprintf(w, "%s\n", job.Label())

	if err := checkJob(job); err != nil {
		return err
	}

	var total uint64

	for i, in := range job.Inputs {
		ranges, err := resolve(in, func() (os.FileInfo, error) { return os.Stat(in.Path) })
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}

		size := sum(ranges)
		if i == 0 {
			total = size
		}

		fmt.Fprintf(w, "  input %d  %-24s %s (%s)\n", i, in.Path, joinRanges(ranges), humanize.IBytes(size))

		if size != total {
			return fmt.Errorf("%w: input %d declares %d bytes, input 0 declares %d", xor.ErrSizeMismatch, i, size, total)
		}
	}

	outRanges := job.Output.Ranges
	if len(outRanges) == 0 {
		outRanges = []xor.Range{{Offset: 0, Length: total}}
	}

	written, err := interval.FromAtoms(outRanges)
	if err != nil {
		return fmt.Errorf("%w: output ranges: %w", xor.ErrConfiguration, err)
	}

	fmt.Fprintf(w, "  output   %-24s %s (%s)\n", job.Output.Path, joinRanges(outRanges), humanize.IBytes(written.Len()))

	if written.Len() != total && len(job.Inputs) > 0 {
		return fmt.Errorf("%w: output declares %d bytes, inputs declare %d", xor.ErrSizeMismatch, written.Len(), total)
	}

	if gaps := written.Exterior(existingSize(job)); len(gaps) > 0 {
		fmt.Fprintf(w, "  untouched %s\n", joinRanges(gaps))
	}

	return nil
}

// existingSize is the size the output keeps beyond the written ranges.
func existingSize(job manifest.Job) uint64 {
	if !job.Keep || job.Output.IsStdio() {
		return 0
	}

	info, err := os.Stat(job.Output.Path)
	if err != nil {
		return 0
	}

	return uint64(info.Size()) //nolint:gosec // sizes are non-negative
}

func sum(ranges []xor.Range) uint64 {
	var total uint64

	for _, r := range ranges {
		total += r.Length
	}

	return total
}

func joinRanges(ranges []xor.Range) string {
	if len(ranges) == 0 {
		return "-"
	}

	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}

	return strings.Join(parts, ",")
}
