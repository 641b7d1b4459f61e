//go:build amd64 && !purego

package xor

import "github.com/klauspost/cpuid/v2"

//nolint:gochecknoglobals
var hasAVX2 = cpuid.CPU.Has(cpuid.AVX2)

// xorAVX2 sets dst[i] ^= src[i] for n bytes. n must be a positive multiple of 32.
//
//go:noescape
func xorAVX2(dst, src *byte, n int)

// xor256 combines equal-length, 32-byte multiple slices with the AVX2 kernel.
// It reports false without touching dst when the kernel is unavailable.
func xor256(dst, src []byte) bool {
	if !hasAVX2 {
		return false
	}

	if len(dst) > 0 {
		xorAVX2(&dst[0], &src[0], len(dst))
	}

	return true
}

func avx2Kernel() bool { return hasAVX2 }
