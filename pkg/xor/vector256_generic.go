//go:build !amd64 || purego

package xor

func xor256([]byte, []byte) bool { return false }

func avx2Kernel() bool { return false }
