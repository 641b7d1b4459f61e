package xor_test

import (
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/idelchi/goxor/pkg/xor"
)

// randomBytes returns n deterministic pseudo-random bytes.
func randomBytes(n int, seed uint64) []byte {
	var key [32]byte

	key[0] = byte(seed)
	key[1] = byte(seed >> 8)

	buf := make([]byte, n)
	_, _ = rand.NewChaCha8(key).Read(buf)

	return buf
}

// xorAll computes the expected result byte by byte.
func xorAll(bufs ...[]byte) []byte {
	out := make([]byte, len(bufs[0]))

	for _, b := range bufs {
		for i := range out {
			out[i] ^= b[i]
		}
	}

	return out
}

func writeTemp(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}

	return path
}

func openInput(t *testing.T, path string, ranges ...xor.Range) *xor.RangedStream {
	t.Helper()

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}

	t.Cleanup(func() { file.Close() })

	if len(ranges) == 0 {
		info, err := file.Stat()
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}

		ranges = []xor.Range{{Offset: 0, Length: uint64(info.Size())}}
	}

	return xor.NewInput(file, ranges...)
}

func openOutput(t *testing.T, path string, ranges ...xor.Range) *xor.RangedStream {
	t.Helper()

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o600)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}

	t.Cleanup(func() { file.Close() })

	return xor.NewOutput(file, ranges...)
}

// runFiles writes every buffer to its own file, XORs them over full ranges
// and returns the output file contents.
func runFiles(t *testing.T, engine *xor.Engine, bufs ...[]byte) []byte {
	t.Helper()

	dir := t.TempDir()

	inputs := make([]*xor.RangedStream, len(bufs))
	for i, b := range bufs {
		inputs[i] = openInput(t, writeTemp(t, dir, "in"+string(rune('a'+i)), b))
	}

	outPath := filepath.Join(dir, "out")
	output := openOutput(t, outPath, xor.Range{Offset: 0, Length: uint64(len(bufs[0]))})

	outcome, err := engine.Run(inputs, output)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if outcome != xor.Success {
		t.Fatalf("Run() = %v, want %v", outcome, xor.Success)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	return got
}

func newEngine(t *testing.T, opts ...xor.Option) *xor.Engine {
	t.Helper()

	engine, err := xor.New(opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return engine
}

// pipe is a readable, writable stream that cannot seek.
type pipe struct {
	data []byte
	off  int
}

var errIllegalSeek = errors.New("illegal seek")

func (p *pipe) Read(b []byte) (int, error) {
	if p.off >= len(p.data) {
		return 0, io.EOF
	}

	n := copy(b, p.data[p.off:])
	p.off += n

	return n, nil
}

func (p *pipe) Write(b []byte) (int, error) {
	p.data = append(p.data, b...)

	return len(b), nil
}

func (p *pipe) Seek(int64, int) (int64, error) {
	return 0, errIllegalSeek
}

// failingWriter accepts seeks but refuses every write.
type failingWriter struct {
	err error
}

func (f *failingWriter) Write([]byte) (int, error) { return 0, f.err }

func (f *failingWriter) Seek(off int64, _ int) (int64, error) { return off, nil }
