//go:build amd64 && !purego

package xor

import (
	"bytes"
	"testing"

	"github.com/klauspost/cpuid/v2"
)

func TestAVX2KernelFollowsCPU(t *testing.T) {
	t.Parallel()

	if got, want := (Vector256{}).Accelerated(), cpuid.CPU.Has(cpuid.AVX2); got != want {
		t.Errorf("Vector256.Accelerated() = %v, want %v", got, want)
	}
}

func TestAVX2KernelMatchesWords(t *testing.T) {
	t.Parallel()

	if !hasAVX2 {
		t.Skip("host has no AVX2")
	}

	for n := 0; n <= 1024; n += 32 {
		for off := range 3 {
			dst := make([]byte, n+off)
			src := make([]byte, n+off)

			for i := range dst {
				dst[i] = byte(i*7 + n)
				src[i] = byte(i*13 + off)
			}

			want := bytes.Clone(dst[off:])
			words(want, src[off:])

			if !xor256(dst[off:], src[off:]) {
				t.Fatal("xor256 reported no kernel on an AVX2 host")
			}

			if !bytes.Equal(dst[off:], want) {
				t.Fatalf("AVX2 kernel mismatch at length %d offset %d", n, off)
			}
		}
	}
}
