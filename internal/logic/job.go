package logic

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/idelchi/goxor/internal/fileutil"
	"github.com/idelchi/goxor/internal/manifest"
	"github.com/idelchi/goxor/pkg/interval"
	"github.com/idelchi/goxor/pkg/xor"
)

// ErrUnknownLength is returned for whole-stream arguments whose size cannot be determined.
var ErrUnknownLength = errors.New("stream length unknown")

// runJob runs a job and finalizes its output.
func runJob(job manifest.Job, engine *xor.Engine, preserveTimestamps bool) (Result, error) {
	res, modTime, err := execute(job, engine)
	if err != nil {
		return res, err
	}

	if job.Output.IsStdio() {
		return res, nil
	}

	res.OutputSize, err = fileutil.FinalizeOutput(job.Output.Path, preserveTimestamps && !modTime.IsZero(), modTime)
	if err != nil {
		return res, fmt.Errorf("finalizing output: %w", err)
	}

	return res, nil
}

// execute opens the streams of a job, runs the engine and releases everything it opened.
// It returns the modification time of the first input, when it has one.
func execute(job manifest.Job, engine *xor.Engine) (res Result, modTime time.Time, err error) {
	res = Result{Job: job.Label(), Output: job.Output.Path}

	if err := checkJob(job); err != nil {
		return res, modTime, err
	}

	handles := fileutil.NewHandles()
	defer handles.Close(&err)

	inputs := make([]*xor.RangedStream, len(job.Inputs))

	for i, in := range job.Inputs {
		file, err := handles.Input(in.Path)
		if err != nil {
			return res, modTime, fmt.Errorf("%w: %w", xor.ErrOpen, err)
		}

		ranges, err := resolve(in, file.Stat)
		if err != nil {
			return res, modTime, fmt.Errorf("input %d: %w", i, err)
		}

		if i == 0 && !in.IsStdio() {
			if info, err := file.Stat(); err == nil {
				modTime = info.ModTime()
			}
		}

		inputs[i] = xor.NewInput(file, ranges...)
	}

	outRanges := job.Output.Ranges
	if len(outRanges) == 0 && len(inputs) > 0 {
		outRanges = []xor.Range{{Offset: 0, Length: inputs[0].TotalSize()}}
	}

	if _, err := interval.FromAtoms(outRanges); err != nil {
		return res, modTime, fmt.Errorf("%w: output ranges: %w", xor.ErrConfiguration, err)
	}

	file, err := handles.Output(job.Output.Path, job.Keep)
	if err != nil {
		return res, modTime, fmt.Errorf("%w: %w", xor.ErrOpen, err)
	}

	output := xor.NewOutput(file, outRanges...)

	res.Outcome, err = engine.Run(inputs, output)
	if err != nil {
		return res, modTime, err
	}

	if res.Outcome == xor.Success {
		res.Bytes = output.TotalSize()
	}

	return res, modTime, nil
}

// checkJob rejects jobs that bind standard input more than once.
func checkJob(job manifest.Job) error {
	var stdin int

	for _, in := range job.Inputs {
		if in.IsStdio() {
			stdin++
		}
	}

	if stdin > 1 {
		return fmt.Errorf("%w: %d inputs bound to standard input", xor.ErrConfiguration, stdin)
	}

	return nil
}

// resolve returns the ranges of s, or a single range spanning the whole stream
// when none were given.
func resolve(s manifest.Stream, stat func() (os.FileInfo, error)) ([]xor.Range, error) {
	if len(s.Ranges) > 0 {
		return s.Ranges, nil
	}

	if s.IsStdio() {
		return nil, fmt.Errorf("%w: standard streams need explicit ranges", ErrUnknownLength)
	}

	info, err := stat()
	if err != nil {
		return nil, fmt.Errorf("%w: getting file info for %q: %w", xor.ErrOpen, s.Path, err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %q is not a regular file", ErrUnknownLength, s.Path)
	}

	return []xor.Range{{Offset: 0, Length: uint64(info.Size())}}, nil //nolint:gosec // sizes are non-negative
}

// jobs builds the jobs to run from the manifest or the positional streams.
// The first positional stream is the output, the rest are inputs.
func jobs(manifestPath string, args []string, keep bool) ([]manifest.Job, error) {
	if manifestPath != "" {
		m, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, fmt.Errorf("loading manifest: %w", err)
		}

		return m.Jobs, nil
	}

	streams, err := manifest.ParseStreams(args)
	if err != nil {
		return nil, fmt.Errorf("parsing streams: %w", err)
	}

	if len(streams) == 0 {
		return nil, fmt.Errorf("%w: no output stream", xor.ErrConfiguration)
	}

	return []manifest.Job{{Output: streams[0], Inputs: streams[1:], Keep: keep}}, nil
}
