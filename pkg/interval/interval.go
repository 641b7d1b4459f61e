// Package interval describes sets of disjoint byte ranges on a number line.
//
// An Interval is kept canonical: atoms are sorted by offset, never empty and
// never adjacent, so two intervals covering the same bytes compare equal
// however they were built.
package interval

import (
	"errors"
	"fmt"
	"slices"

	"github.com/idelchi/goxor/pkg/xor"
)

// ErrOverlap is returned when atoms that must be disjoint share a byte.
var ErrOverlap = errors.New("overlapping ranges")

// Interval is an immutable set of disjoint ranges. The zero value is empty.
type Interval struct {
	atoms []xor.Range
	size  uint64
}

// FromAtom returns the interval holding a single range.
func FromAtom(offset, length uint64) Interval {
	if length == 0 {
		return Interval{}
	}

	return Interval{atoms: []xor.Range{{Offset: offset, Length: length}}, size: length}
}

// FromAtoms builds an interval from ranges in any order. Zero-length ranges are
// dropped and adjacent ranges merged; overlapping ranges are rejected.
func FromAtoms(ranges []xor.Range) (Interval, error) {
	atoms := make([]xor.Range, 0, len(ranges))

	for _, r := range ranges {
		if r.Length > 0 {
			atoms = append(atoms, r)
		}
	}

	slices.SortFunc(atoms, func(a, b xor.Range) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		default:
			return 0
		}
	})

	return merge(atoms)
}

// merge canonicalizes sorted atoms.
func merge(sorted []xor.Range) (Interval, error) {
	var (
		merged []xor.Range
		size   uint64
	)

	for _, r := range sorted {
		if n := len(merged); n > 0 {
			last := &merged[n-1]

			if r.Offset < last.End() {
				return Interval{}, fmt.Errorf("%w: %v and %v", ErrOverlap, *last, r)
			}

			if r.Offset == last.End() {
				last.Length += r.Length
				size += r.Length

				continue
			}
		}

		merged = append(merged, r)
		size += r.Length
	}

	return Interval{atoms: merged, size: size}, nil
}

// Union returns the disjoint union of both intervals.
func (iv Interval) Union(other Interval) (Interval, error) {
	all := make([]xor.Range, 0, len(iv.atoms)+len(other.atoms))
	all = append(all, iv.atoms...)
	all = append(all, other.atoms...)

	return FromAtoms(all)
}

// Len returns the number of bytes covered.
func (iv Interval) Len() uint64 {
	return iv.size
}

// Atoms returns the canonical ranges, sorted by offset.
func (iv Interval) Atoms() []xor.Range {
	return slices.Clone(iv.atoms)
}

// Equal reports whether both intervals cover the same bytes.
func (iv Interval) Equal(other Interval) bool {
	return slices.Equal(iv.atoms, other.atoms)
}

// Min returns the first covered offset.
func (iv Interval) Min() (uint64, bool) {
	if len(iv.atoms) == 0 {
		return 0, false
	}

	return iv.atoms[0].Offset, true
}

// Max returns the last covered offset.
func (iv Interval) Max() (uint64, bool) {
	if len(iv.atoms) == 0 {
		return 0, false
	}

	return iv.atoms[len(iv.atoms)-1].End() - 1, true
}

// Exterior returns the gaps between atoms, starting from offset 0.
// When total is larger than the last covered byte, the gap up to total is included.
func (iv Interval) Exterior(total uint64) []xor.Range {
	var (
		gaps []xor.Range
		ptr  uint64
	)

	for _, r := range iv.atoms {
		if r.Offset > ptr {
			gaps = append(gaps, xor.Range{Offset: ptr, Length: r.Offset - ptr})
		}

		ptr = r.End()
	}

	if total > ptr {
		gaps = append(gaps, xor.Range{Offset: ptr, Length: total - ptr})
	}

	return gaps
}

func (iv Interval) String() string {
	return fmt.Sprint(iv.atoms)
}
