package xor

import (
	"errors"
	"fmt"
	"io"
)

// Engine combines any number of ranged inputs into one ranged output.
//
// An Engine is not safe for concurrent use. Independent engines may run
// concurrently; they share nothing but the Default combiner.
type Engine struct {
	chunkSize int
	combiner  Combiner
}

// Option configures an Engine.
type Option func(*Engine)

// WithChunkSize sets the maximum number of bytes transferred per iteration.
func WithChunkSize(n int) Option {
	return func(e *Engine) {
		e.chunkSize = n
	}
}

// WithCombiner overrides the process-wide Combiner.
func WithCombiner(c Combiner) Option {
	return func(e *Engine) {
		e.combiner = c
	}
}

// New creates an Engine.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{chunkSize: MaxChunk}

	for _, opt := range opts {
		opt(engine)
	}

	if engine.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrAllocation, engine.chunkSize)
	}

	if engine.combiner == nil {
		engine.combiner = Default()
	}

	return engine, nil
}

// Combiner returns the primitive the engine uses.
func (e *Engine) Combiner() Combiner {
	return e.combiner
}

// Run writes the XOR of all inputs to output.
//
// All inputs must declare the same total size as the output, and every input
// range must start inside its stream when the stream size is known. Zero-length
// input ranges are exempt from that check. Output ranges must not overlap.
// Handles are positioned by Run but never closed.
// The Outcome is only meaningful when the error is nil.
func (e *Engine) Run(inputs []*RangedStream, output *RangedStream) (Outcome, error) {
	if len(inputs) == 0 {
		return NoWork, nil
	}

	total, err := validate(inputs, output)
	if err != nil {
		return Success, err
	}

	if total == 0 {
		return NoWork, nil
	}

	bufs, err := getBuffers(e.chunkSize)
	if err != nil {
		return Success, err
	}
	defer bufs.release()

	if err := reset(inputs, output); err != nil {
		return Success, err
	}

	if err := e.stream(inputs, output, bufs); err != nil {
		return Success, err
	}

	return Success, nil
}

// validate checks sizes and input ranges and returns the common total size.
func validate(inputs []*RangedStream, output *RangedStream) (uint64, error) {
	if output == nil || output.w == nil {
		return 0, fmt.Errorf("%w: no output stream", ErrConfiguration)
	}

	total := output.TotalSize()

	for i, in := range inputs {
		if in == nil || in.r == nil {
			return 0, fmt.Errorf("%w: input %d is not readable", ErrConfiguration, i)
		}

		if size := in.TotalSize(); size != total {
			return 0, fmt.Errorf("%w: input %d declares %d bytes, output declares %d", ErrSizeMismatch, i, size, total)
		}
	}

	for i, in := range inputs {
		size, err := in.size()
		if err != nil {
			return 0, streamError(ErrOpen, RoleInput, i, fmt.Errorf("getting file info: %w", err))
		}

		// Streams of unknown size (pipes) cannot be checked.
		if size == 0 {
			continue
		}

		for _, r := range in.ranges {
			if r.Length > 0 && r.Offset >= size {
				return 0, streamError(ErrInvalidRange, RoleInput, i,
					fmt.Errorf("range %v starts beyond end of stream (%d bytes)", r, size))
			}
		}
	}

	return total, nil
}

func reset(inputs []*RangedStream, output *RangedStream) error {
	for i, in := range inputs {
		if err := in.Reset(); err != nil {
			return withIndex(err, i)
		}
	}

	return output.Reset()
}

// stream runs the transfer loop until the output or any input runs out of ranges.
func (e *Engine) stream(inputs []*RangedStream, output *RangedStream, bufs *buffers) error {
	for {
		more, err := output.Advance()
		if err != nil {
			return err
		}

		if !more {
			return nil
		}

		chunk := min(output.Available(), uint64(e.chunkSize))

		for i, in := range inputs {
			more, err := in.Advance()
			if err != nil {
				return withIndex(err, i)
			}

			// Sizes were validated equal, so inputs run out together with the output.
			if !more {
				return nil
			}

			chunk = min(chunk, in.Available())
		}

		if err := e.transfer(inputs, output, bufs, int(chunk)); err != nil { //nolint:gosec // bounded by chunkSize
			return err
		}

		output.Consume(chunk)

		for _, in := range inputs {
			in.Consume(chunk)
		}
	}
}

// transfer reads n bytes from every input, combines them and writes the result.
func (e *Engine) transfer(inputs []*RangedStream, output *RangedStream, bufs *buffers, n int) error {
	acc := bufs.acc[:n]
	scratch := bufs.scratch[:n]

	if _, err := io.ReadFull(inputs[0].r, acc); err != nil {
		return streamError(ErrInputRead, RoleInput, 0, err)
	}

	for i := 1; i < len(inputs); i++ {
		if _, err := io.ReadFull(inputs[i].r, scratch); err != nil {
			return streamError(ErrInputRead, RoleInput, i, err)
		}

		e.combiner.Combine(acc, scratch)
	}

	written, err := output.w.Write(acc)
	if err == nil && written != n {
		err = io.ErrShortWrite
	}

	if err != nil {
		return streamError(ErrOutputWrite, RoleOutput, 0, err)
	}

	return nil
}

// withIndex records which input a StreamError belongs to.
func withIndex(err error, index int) error {
	var se *StreamError
	if errors.As(err, &se) {
		se.Index = index
	}

	return err
}
