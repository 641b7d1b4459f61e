package logic

import "github.com/idelchi/goxor/pkg/xor"

// Result represents the outcome of running a single job.
type Result struct {
	// Job label
	Job string

	// Output path
	Output string

	// Engine outcome, only meaningful when Error is nil
	Outcome xor.Outcome

	// Number of bytes combined into the output
	Bytes uint64

	// Output file size in bytes, zero for standard output
	OutputSize int64

	// Any error that occurred during processing
	Error error
}
