package xor_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/idelchi/goxor/pkg/xor"
)

// stdinStub records whether anyone tried to close it.
type stdinStub struct {
	*bytes.Reader
	closed bool
}

func (s *stdinStub) Close() error {
	s.closed = true

	return nil
}

func TestSessionExecuteAppends(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := randomBytes(100, 1)
	b := randomBytes(100, 2)

	aPath := writeTemp(t, dir, "a", a)
	bPath := writeTemp(t, dir, "b", b)
	outPath := writeTemp(t, dir, "out", []byte("header"))

	session := xor.NewSession(xor.WithSessionChunkSize(16))

	for slot, path := range []string{aPath, bPath} {
		if err := session.OpenInput(slot, path); err != nil {
			t.Fatalf("OpenInput(%d) error: %v", slot, err)
		}
	}

	if err := session.OpenOutput(outPath); err != nil {
		t.Fatalf("OpenOutput() error: %v", err)
	}

	n, err := session.Execute(60)
	if err != nil || n != 60 {
		t.Fatalf("Execute(60) = %d, %v", n, err)
	}

	n, err = session.Execute(40)
	if err != nil || n != 40 {
		t.Fatalf("Execute(40) = %d, %v", n, err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	want := append([]byte("header"), xorAll(a, b)...)
	if !bytes.Equal(got, want) {
		t.Errorf("output = %x, want %x", got, want)
	}
}

func TestSessionStandardStreams(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := randomBytes(50, 3)
	b := randomBytes(50, 4)

	stdin := &stdinStub{Reader: bytes.NewReader(a)}

	var stdout bytes.Buffer

	session := xor.NewSession(xor.WithStdio(stdin, &stdout))

	if err := session.OpenInput(0, ""); err != nil {
		t.Fatalf("OpenInput(0, stdin) error: %v", err)
	}

	if err := session.OpenInput(1, writeTemp(t, dir, "b", b)); err != nil {
		t.Fatalf("OpenInput(1) error: %v", err)
	}

	if err := session.OpenOutput(""); err != nil {
		t.Fatalf("OpenOutput(stdout) error: %v", err)
	}

	if _, err := session.Execute(50); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if stdin.closed {
		t.Error("Close() closed standard input")
	}

	if !bytes.Equal(stdout.Bytes(), xorAll(a, b)) {
		t.Errorf("stdout = %x, want %x", stdout.Bytes(), xorAll(a, b))
	}
}

func TestSessionBothInputsOnStdin(t *testing.T) {
	t.Parallel()

	session := xor.NewSession(xor.WithStdio(bytes.NewReader(nil), &bytes.Buffer{}))

	if err := session.OpenInput(0, ""); err != nil {
		t.Fatalf("OpenInput(0) error: %v", err)
	}

	err := session.OpenInput(1, "")
	if !errors.Is(err, xor.ErrConfiguration) {
		t.Fatalf("OpenInput(1) error = %v, want %v", err, xor.ErrConfiguration)
	}

	// The failure cleaned up the session, so standard input is free again.
	if err := session.OpenInput(1, ""); err != nil {
		t.Errorf("OpenInput(1) after cleanup error: %v", err)
	}
}

func TestSessionSeekInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := randomBytes(64, 5)
	b := randomBytes(64, 6)
	outPath := filepath.Join(dir, "out")

	session := xor.NewSession()
	defer session.Close()

	if err := session.OpenInput(0, writeTemp(t, dir, "a", a)); err != nil {
		t.Fatal(err)
	}

	if err := session.OpenInput(1, writeTemp(t, dir, "b", b)); err != nil {
		t.Fatal(err)
	}

	if err := session.OpenOutput(outPath); err != nil {
		t.Fatal(err)
	}

	if err := session.SeekInput(1, 32); err != nil {
		t.Fatalf("SeekInput() error: %v", err)
	}

	if _, err := session.Execute(32); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if err := session.Close(); err != nil {
		t.Fatal(err)
	}

	got, _ := os.ReadFile(outPath)
	if want := xorAll(a[:32], b[32:]); !bytes.Equal(got, want) {
		t.Errorf("output = %x, want %x", got, want)
	}
}

func TestSessionSeekNonSeekable(t *testing.T) {
	t.Parallel()

	session := xor.NewSession(xor.WithStdio(&bytes.Buffer{}, &bytes.Buffer{}))

	if err := session.OpenInput(0, ""); err != nil {
		t.Fatal(err)
	}

	if err := session.SeekInput(0, 10); !errors.Is(err, xor.ErrSeek) {
		t.Errorf("SeekInput() error = %v, want %v", err, xor.ErrSeek)
	}
}

func TestSessionFailuresCleanUp(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	session := xor.NewSession()

	if err := session.OpenInput(0, writeTemp(t, dir, "a", randomBytes(10, 7))); err != nil {
		t.Fatal(err)
	}

	if err := session.OpenInput(1, writeTemp(t, dir, "b", randomBytes(4, 8))); err != nil {
		t.Fatal(err)
	}

	if err := session.OpenOutput(filepath.Join(dir, "out")); err != nil {
		t.Fatal(err)
	}

	if _, err := session.Execute(10); !errors.Is(err, xor.ErrInputRead) {
		t.Fatalf("Execute() error = %v, want %v", err, xor.ErrInputRead)
	}

	// Nothing is bound any more.
	if _, err := session.Execute(1); !errors.Is(err, xor.ErrConfiguration) {
		t.Errorf("Execute() after failure error = %v, want %v", err, xor.ErrConfiguration)
	}

	if err := session.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestSessionOpenErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	session := xor.NewSession()

	if err := session.OpenInput(0, filepath.Join(dir, "missing")); !errors.Is(err, xor.ErrOpen) {
		t.Errorf("OpenInput(missing) error = %v, want %v", err, xor.ErrOpen)
	}

	if err := session.OpenInput(2, ""); !errors.Is(err, xor.ErrConfiguration) {
		t.Errorf("OpenInput(slot 2) error = %v, want %v", err, xor.ErrConfiguration)
	}

	if err := session.OpenOutput(filepath.Join(dir, "no", "such", "dir")); !errors.Is(err, xor.ErrOpen) {
		t.Errorf("OpenOutput(bad dir) error = %v, want %v", err, xor.ErrOpen)
	}
}
