package xor

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/klauspost/cpuid/v2"
	"github.com/templexxx/xorsimd"
)

// Combiner XORs src into dst in place.
//
// Implementations differ only in speed: for equal inputs every Combiner
// produces identical bytes.
type Combiner interface {
	// Combine sets dst[i] ^= src[i] for every i. It panics if the lengths differ.
	Combine(dst, src []byte)
	// Name identifies the primitive.
	Name() string
}

const (
	wordSize   = 8
	vector128  = 16
	vector256  = 32
	nameAuto   = "auto"
	nameScalar = "scalar"
	name128    = "vector128"
	name256    = "vector256"
)

// Scalar combines one 64-bit word at a time.
type Scalar struct{}

func (Scalar) Name() string { return nameScalar }

func (Scalar) Combine(dst, src []byte) {
	checkLengths(dst, src)

	tail(dst, src, words(dst, src))
}

// Vector128 combines 16-byte blocks with packed 128-bit instructions.
type Vector128 struct{}

func (Vector128) Name() string { return name128 }

func (Vector128) Combine(dst, src []byte) {
	checkLengths(dst, src)

	body := len(dst) &^ (vector128 - 1)

	for i := 0; i < body; i += vector128 {
		xorsimd.Bytes16(dst[i:], dst[i:], src[i:])
	}

	tail(dst, src, body)
}

// Vector256 combines 32-byte multiples with the AVX2 kernel on amd64.
// Without AVX2, or on other architectures, it falls back to the word loop.
type Vector256 struct{}

func (Vector256) Name() string { return name256 }

func (Vector256) Combine(dst, src []byte) {
	checkLengths(dst, src)

	body := len(dst) &^ (vector256 - 1)
	if !xor256(dst[:body], src[:body]) {
		body = words(dst, src)
	}

	tail(dst, src, body)
}

// Accelerated reports whether Combine runs the 256-bit kernel on this host.
func (Vector256) Accelerated() bool { return avx2Kernel() }

func checkLengths(dst, src []byte) {
	if len(dst) != len(src) {
		panic(fmt.Sprintf("xor: combine length mismatch: %d != %d", len(dst), len(src)))
	}
}

// words combines whole 64-bit words and returns the number of bytes done.
func words(dst, src []byte) int {
	body := len(dst) &^ (wordSize - 1)

	for i := 0; i < body; i += wordSize {
		v := binary.NativeEndian.Uint64(dst[i:]) ^ binary.NativeEndian.Uint64(src[i:])
		binary.NativeEndian.PutUint64(dst[i:], v)
	}

	return body
}

// tail finishes the bytes from start that did not fill a whole block.
func tail(dst, src []byte, start int) {
	for i := start; i < len(dst); i++ {
		dst[i] ^= src[i]
	}
}

// Features are the CPU capabilities that decide which Combiner is used.
type Features struct {
	SSE2  bool
	AVX2  bool
	ASIMD bool
}

// DetectFeatures queries the host CPU.
func DetectFeatures() Features {
	return Features{
		SSE2:  cpuid.CPU.Has(cpuid.SSE2),
		AVX2:  cpuid.CPU.Has(cpuid.AVX2),
		ASIMD: cpuid.CPU.Has(cpuid.ASIMD),
	}
}

// Select returns the widest Combiner the features allow.
func Select(f Features) Combiner {
	switch {
	case f.AVX2:
		return Vector256{}
	case f.SSE2, f.ASIMD:
		return Vector128{}
	default:
		return Scalar{}
	}
}

type selection struct {
	combiner Combiner
}

//nolint:gochecknoglobals
var selected atomic.Pointer[selection]

// Default returns the Combiner chosen for this process.
// The choice is made on first use and never changes afterwards.
func Default() Combiner {
	if s := selected.Load(); s != nil {
		return s.combiner
	}

	// Every caller computes the same answer, so losing the race is harmless.
	selected.CompareAndSwap(nil, &selection{combiner: Select(DetectFeatures())})

	return selected.Load().combiner
}

// ByName resolves a Combiner by name. "auto" and "" return Default.
func ByName(name string) (Combiner, error) {
	switch strings.ToLower(name) {
	case "", nameAuto:
		return Default(), nil
	case nameScalar:
		return Scalar{}, nil
	case name128:
		return Vector128{}, nil
	case name256:
		return Vector256{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown combiner %q", ErrConfiguration, name)
	}
}

// Names lists the accepted combiner names.
func Names() []string {
	return []string{nameAuto, nameScalar, name128, name256}
}
