package xor

import (
	"fmt"
	"sync"
)

// MaxChunk is the default number of bytes transferred per iteration.
const MaxChunk = 4 * 1024 * 1024

// bufferPool holds MaxChunk-sized working buffers shared between runs.
// A buffer belongs to exactly one run between get and put.
//
//nolint:gochecknoglobals
var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, MaxChunk)

		return &buf
	},
}

// buffers is the accumulator and scratch pair used by one run.
type buffers struct {
	acc     []byte
	scratch []byte
	pooled  bool
}

// getBuffers obtains two buffers of size bytes each.
func getBuffers(size int) (b *buffers, err error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrAllocation, size)
	}

	if size == MaxChunk {
		acc, _ := bufferPool.Get().(*[]byte)
		scratch, _ := bufferPool.Get().(*[]byte)

		return &buffers{acc: *acc, scratch: *scratch, pooled: true}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("%w: chunk size %d: %v", ErrAllocation, size, r)
		}
	}()

	return &buffers{acc: make([]byte, size), scratch: make([]byte, size)}, nil
}

// release returns pooled buffers.
func (b *buffers) release() {
	if !b.pooled {
		return
	}

	bufferPool.Put(&b.acc)
	bufferPool.Put(&b.scratch)
}
