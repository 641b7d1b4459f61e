package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/idelchi/goxor/internal/fileutil"
)

func TestOutputReplacedOnSuccess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "out")

	if err := os.WriteFile(outPath, []byte("old content"), 0o600); err != nil {
		t.Fatal(err)
	}

	handles := fileutil.NewHandles()

	file, err := handles.Output(outPath, false)
	if err != nil {
		t.Fatalf("Output() error: %v", err)
	}

	if _, err := file.WriteString("new"); err != nil {
		t.Fatal(err)
	}

	handles.Close(&err)

	if err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	got, _ := os.ReadFile(outPath)
	if string(got) != "new" {
		t.Errorf("output = %q, want %q", got, "new")
	}

	assertNoTemp(t, dir)
}

func TestOutputDiscardedOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "out")

	if err := os.WriteFile(outPath, []byte("old content"), 0o600); err != nil {
		t.Fatal(err)
	}

	handles := fileutil.NewHandles()

	file, err := handles.Output(outPath, false)
	if err != nil {
		t.Fatal(err)
	}

	file.WriteString("partial") //nolint:errcheck

	errFailed := errors.New("failed")
	err = errFailed

	handles.Close(&err)

	if !errors.Is(err, errFailed) {
		t.Errorf("Close() error = %v, want %v", err, errFailed)
	}

	got, _ := os.ReadFile(outPath)
	if string(got) != "old content" {
		t.Errorf("output = %q, want untouched", got)
	}

	assertNoTemp(t, dir)
}

func TestOutputKeep(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	outPath := filepath.Join(dir, "out")

	if err := os.WriteFile(outPath, []byte("old content"), 0o600); err != nil {
		t.Fatal(err)
	}

	handles := fileutil.NewHandles()

	file, err := handles.Output(outPath, true)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := file.WriteString("new"); err != nil {
		t.Fatal(err)
	}

	handles.Close(&err)

	if err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	got, _ := os.ReadFile(outPath)
	if string(got) != "new content" {
		t.Errorf("output = %q, want %q", got, "new content")
	}
}

func TestStdioNeverClosed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	stdin, err := os.Create(filepath.Join(dir, "stdin"))
	if err != nil {
		t.Fatal(err)
	}
	defer stdin.Close()

	handles := &fileutil.Handles{Stdin: stdin, Stdout: stdin}

	in, err := handles.Input(fileutil.Stdio)
	if err != nil || in != stdin {
		t.Fatalf("Input(-) = %v, %v", in, err)
	}

	out, err := handles.Output(fileutil.Stdio, false)
	if err != nil || out != stdin {
		t.Fatalf("Output(-) = %v, %v", out, err)
	}

	handles.Close(&err)

	if err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if _, err := stdin.Stat(); err != nil {
		t.Errorf("standard stream was closed: %v", err)
	}
}

func TestInputMissing(t *testing.T) {
	t.Parallel()

	handles := fileutil.NewHandles()

	if _, err := handles.Input(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Input(missing) error = %v, want %v", err, os.ErrNotExist)
	}
}

func TestFinalizeOutput(t *testing.T) {
	t.Parallel()

	outPath := filepath.Join(t.TempDir(), "out")
	if err := os.WriteFile(outPath, []byte("12345"), 0o600); err != nil {
		t.Fatal(err)
	}

	modTime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)

	size, err := fileutil.FinalizeOutput(outPath, true, modTime)
	if err != nil {
		t.Fatalf("FinalizeOutput() error: %v", err)
	}

	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatal(err)
	}

	if !info.ModTime().Equal(modTime) {
		t.Errorf("mtime = %v, want %v", info.ModTime(), modTime)
	}
}

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	if err != nil {
		t.Fatal(err)
	}

	if len(matches) > 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}
