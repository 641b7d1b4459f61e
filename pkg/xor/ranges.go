package xor

import (
	"fmt"
	"io"
	"io/fs"
	"math"
)

// Range is a contiguous span of bytes at an absolute offset in a stream.
type Range struct {
	Offset uint64 `json:"offset" yaml:"offset"`
	Length uint64 `json:"length" yaml:"length"`
}

// End returns the offset one past the last byte of the range.
func (r Range) End() uint64 {
	return r.Offset + r.Length
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d", r.Offset, r.Length)
}

// RangedStream is an open stream together with the ranges to visit, in order.
//
// The cursor is owned by whoever drives the stream; the handle itself is never
// closed here.
type RangedStream struct {
	handle io.Seeker
	r      io.Reader
	w      io.Writer
	role   Role
	ranges []Range

	// cursor
	index     int
	remaining uint64

	// pos is the logical position of the handle, used to avoid seeking
	// streams that are already where they need to be.
	pos uint64
}

// NewInput wraps a readable stream. Ranges are visited in the order given.
// A handle that cannot seek must be positioned at offset 0.
func NewInput(r io.ReadSeeker, ranges ...Range) *RangedStream {
	return &RangedStream{handle: r, r: r, role: RoleInput, ranges: ranges}
}

// NewOutput wraps a writable stream. Ranges are visited in the order given
// and must not overlap each other. A handle that cannot seek must be
// positioned at offset 0.
func NewOutput(w io.WriteSeeker, ranges ...Range) *RangedStream {
	return &RangedStream{handle: w, w: w, role: RoleOutput, ranges: ranges}
}

// Ranges returns the declared ranges.
func (s *RangedStream) Ranges() []Range {
	return s.ranges
}

// TotalSize returns the sum of all declared range lengths.
func (s *RangedStream) TotalSize() uint64 {
	var total uint64

	for _, r := range s.ranges {
		total += r.Length
	}

	return total
}

// Reset moves the cursor to the first range and positions the handle at its start.
func (s *RangedStream) Reset() error {
	s.index = 0
	s.remaining = 0

	if len(s.ranges) == 0 {
		return nil
	}

	s.remaining = s.ranges[0].Length
	if s.remaining == 0 {
		return nil
	}

	return s.seek(s.ranges[0].Offset)
}

// Available returns the number of bytes left in the current range.
// Zero means the cursor must be advanced.
func (s *RangedStream) Available() uint64 {
	return s.remaining
}

// Advance moves past exhausted ranges, seeking to the start of the next
// non-empty one. It returns false once every range has been consumed.
func (s *RangedStream) Advance() (bool, error) {
	for s.remaining == 0 {
		if s.index >= len(s.ranges)-1 {
			s.index = len(s.ranges)

			return false, nil
		}

		s.index++
		s.remaining = s.ranges[s.index].Length

		if s.remaining == 0 {
			continue
		}

		if err := s.seek(s.ranges[s.index].Offset); err != nil {
			return false, err
		}
	}

	return true, nil
}

// Consume marks n bytes of the current range as processed.
// It panics if n exceeds Available.
func (s *RangedStream) Consume(n uint64) {
	if n > s.remaining {
		panic(fmt.Sprintf("xor: consume %d exceeds %d bytes available", n, s.remaining))
	}

	s.remaining -= n
	s.pos += n
}

// seek positions the handle at off. A handle that cannot seek but is already
// at off is accepted, which lets pipes and standard streams carry ranges that
// continue where the previous one ended.
func (s *RangedStream) seek(off uint64) error {
	if off > math.MaxInt64 {
		return streamError(ErrSeek, s.role, 0, fmt.Errorf("offset %d out of range", off))
	}

	if _, err := s.handle.Seek(int64(off), io.SeekStart); err != nil {
		if off == s.pos {
			return nil
		}

		return streamError(ErrSeek, s.role, 0, fmt.Errorf("seeking to offset %d: %w", off, err))
	}

	s.pos = off

	return nil
}

// size reports the handle's current size, or 0 if it cannot be known.
func (s *RangedStream) size() (uint64, error) {
	st, ok := s.handle.(interface{ Stat() (fs.FileInfo, error) })
	if !ok {
		return 0, nil
	}

	info, err := st.Stat()
	if err != nil {
		return 0, err
	}

	if !info.Mode().IsRegular() || info.Size() < 0 {
		return 0, nil
	}

	return uint64(info.Size()), nil
}
