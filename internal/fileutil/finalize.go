// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Stdio is the path that stands for standard input or standard output.
const Stdio = "-"

// pending is an output written to a temporary file and renamed into place on success.
type pending struct {
	tmpName string
	outPath string
}

// Handles tracks the files opened for one job, so that they can be released together.
// Standard streams are handed out but never closed.
type Handles struct {
	Stdin  *os.File
	Stdout *os.File

	opened  []*os.File
	pending []pending
}

// NewHandles creates Handles bound to the process standard streams.
func NewHandles() *Handles {
	return &Handles{Stdin: os.Stdin, Stdout: os.Stdout}
}

// Input opens path for reading, or returns standard input for "-".
func (h *Handles) Input(path string) (*os.File, error) {
	if path == Stdio {
		return h.Stdin, nil
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("opening input %q: %w", path, err)
	}

	h.opened = append(h.opened, file)

	return file, nil
}

// Output opens path for writing, or returns standard output for "-".
//
// With keep, the existing file is written in place and bytes outside the
// written ranges survive. Otherwise the output is written to a temporary file
// next to path and only replaces path once Close sees no error.
func (h *Handles) Output(path string, keep bool) (*os.File, error) {
	if path == Stdio {
		return h.Stdout, nil
	}

	const ownerReadWrite = 0o600

	if keep {
		file, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE, ownerReadWrite)
		if err != nil {
			return nil, fmt.Errorf("opening output %q: %w", path, err)
		}

		h.opened = append(h.opened, file)

		return file, nil
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("creating temporary file: %w", err)
	}

	h.opened = append(h.opened, tmpFile)
	h.pending = append(h.pending, pending{tmpName: tmpFile.Name(), outPath: path})

	return tmpFile, nil
}

// Close closes every opened file. If *errp is nil afterwards, temporary outputs
// are renamed into place; otherwise they are removed. Close errors are joined into *errp.
func (h *Handles) Close(errp *error) {
	errs := []error{*errp}

	for _, file := range h.opened {
		if err := file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %q: %w", file.Name(), err))
		}
	}

	h.opened = nil

	*errp = errors.Join(errs...)

	for _, p := range h.pending {
		if *errp != nil {
			os.Remove(p.tmpName) //nolint:gosec,errcheck // best-effort cleanup

			continue
		}

		if err := os.Rename(p.tmpName, p.outPath); err != nil {
			*errp = fmt.Errorf("renaming output file: %w", err)

			os.Remove(p.tmpName) //nolint:gosec,errcheck // best-effort cleanup
		}
	}

	h.pending = nil
}

// FinalizeOutput optionally preserves timestamps and returns the output file size.
func FinalizeOutput(outPath string, preserveTimestamps bool, modTime time.Time) (int64, error) {
	if preserveTimestamps {
		if err := os.Chtimes(outPath, modTime, modTime); err != nil {
			return 0, fmt.Errorf("preserving timestamps: %w", err)
		}
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return outInfo.Size(), nil
}
