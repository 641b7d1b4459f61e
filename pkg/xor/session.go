package xor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Slots is the number of inputs a Session combines.
const Slots = 2

// binding is one stream bound to a Session slot.
type binding struct {
	stream any
	// owned is set when the Session opened the stream itself and must close it.
	owned io.Closer
	stdio bool
}

// Session combines exactly two inputs into one output, one contiguous length
// per Execute call, without range bookkeeping.
//
// Any failing method closes the session before returning, so a caller only
// needs to Close after successful use.
type Session struct {
	inputs [Slots]binding
	output binding

	stdin  io.Reader
	stdout io.Writer

	chunkSize int
	combiner  Combiner
	bufs      *buffers
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithStdio replaces the standard streams bound when no path is given.
func WithStdio(stdin io.Reader, stdout io.Writer) SessionOption {
	return func(s *Session) {
		s.stdin = stdin
		s.stdout = stdout
	}
}

// WithSessionChunkSize sets the maximum number of bytes transferred per iteration.
func WithSessionChunkSize(n int) SessionOption {
	return func(s *Session) {
		s.chunkSize = n
	}
}

// WithSessionCombiner overrides the process-wide Combiner.
func WithSessionCombiner(c Combiner) SessionOption {
	return func(s *Session) {
		s.combiner = c
	}
}

// NewSession creates a Session bound to nothing.
func NewSession(opts ...SessionOption) *Session {
	session := &Session{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		chunkSize: MaxChunk,
	}

	for _, opt := range opts {
		opt(session)
	}

	if session.combiner == nil {
		session.combiner = Default()
	}

	return session
}

// OpenInput binds slot to the file at path, or to standard input when path is empty.
// Both slots cannot be bound to standard input.
func (s *Session) OpenInput(slot int, path string) error {
	if slot < 0 || slot >= Slots {
		return s.fail(fmt.Errorf("%w: input slot %d out of range", ErrConfiguration, slot))
	}

	if err := s.release(&s.inputs[slot]); err != nil {
		return s.fail(streamError(ErrOpen, RoleInput, slot, err))
	}

	if path == "" {
		if other := s.inputs[Slots-1-slot]; other.stdio {
			return s.fail(fmt.Errorf("%w: both inputs bound to standard input", ErrConfiguration))
		}

		s.inputs[slot] = binding{stream: s.stdin, stdio: true}

		return nil
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return s.fail(streamError(ErrOpen, RoleInput, slot, err))
	}

	s.inputs[slot] = binding{stream: file, owned: file}

	return nil
}

// OpenOutput binds the output to the file at path, opened for append, or to
// standard output when path is empty.
func (s *Session) OpenOutput(path string) error {
	if err := s.release(&s.output); err != nil {
		return s.fail(streamError(ErrOpen, RoleOutput, 0, err))
	}

	if path == "" {
		s.output = binding{stream: s.stdout, stdio: true}

		return nil
	}

	const ownerReadWrite = 0o600

	file, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_APPEND, ownerReadWrite)
	if err != nil {
		return s.fail(streamError(ErrOpen, RoleOutput, 0, err))
	}

	s.output = binding{stream: file, owned: file}

	return nil
}

// SeekInput positions the input in slot at pos bytes from its start.
func (s *Session) SeekInput(slot int, pos int64) error {
	if slot < 0 || slot >= Slots || s.inputs[slot].stream == nil {
		return s.fail(fmt.Errorf("%w: input slot %d is not open", ErrConfiguration, slot))
	}

	seeker, ok := s.inputs[slot].stream.(io.Seeker)
	if !ok {
		return s.fail(streamError(ErrSeek, RoleInput, slot, errors.New("stream is not seekable")))
	}

	if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
		return s.fail(streamError(ErrSeek, RoleInput, slot, err))
	}

	return nil
}

// Execute combines the next length bytes of both inputs into the output.
// It returns the number of bytes written.
func (s *Session) Execute(length int64) (int64, error) {
	readers, writer, err := s.bound()
	if err != nil {
		return 0, s.fail(err)
	}

	if length <= 0 {
		return 0, nil
	}

	if s.bufs == nil {
		if s.bufs, err = getBuffers(s.chunkSize); err != nil {
			return 0, s.fail(err)
		}
	}

	var done int64

	for done < length {
		n := int(min(length-done, int64(s.chunkSize))) //nolint:gosec // bounded by chunkSize

		acc := s.bufs.acc[:n]
		scratch := s.bufs.scratch[:n]

		if _, err := io.ReadFull(readers[0], acc); err != nil {
			return done, s.fail(streamError(ErrInputRead, RoleInput, 0, err))
		}

		if _, err := io.ReadFull(readers[1], scratch); err != nil {
			return done, s.fail(streamError(ErrInputRead, RoleInput, 1, err))
		}

		s.combiner.Combine(acc, scratch)

		written, err := writer.Write(acc)
		done += int64(written)

		if err == nil && written != n {
			err = io.ErrShortWrite
		}

		if err != nil {
			return done, s.fail(streamError(ErrOutputWrite, RoleOutput, 0, err))
		}
	}

	return done, nil
}

// Close releases every stream the session opened itself. Standard streams
// are never closed. Close is safe to call more than once.
func (s *Session) Close() error {
	var errs []error

	for slot := range s.inputs {
		errs = append(errs, s.release(&s.inputs[slot]))
	}

	errs = append(errs, s.release(&s.output))

	if s.bufs != nil {
		s.bufs.release()
		s.bufs = nil
	}

	return errors.Join(errs...)
}

// bound returns the readers and writer when every slot is bound.
func (s *Session) bound() ([Slots]io.Reader, io.Writer, error) {
	var readers [Slots]io.Reader

	for slot, in := range s.inputs {
		r, ok := in.stream.(io.Reader)
		if !ok {
			return readers, nil, fmt.Errorf("%w: input slot %d is not open", ErrConfiguration, slot)
		}

		readers[slot] = r
	}

	w, ok := s.output.stream.(io.Writer)
	if !ok {
		return readers, nil, fmt.Errorf("%w: output is not open", ErrConfiguration)
	}

	return readers, w, nil
}

// release unbinds b, closing it if the session opened it.
func (s *Session) release(b *binding) error {
	closer := b.owned
	*b = binding{}

	if closer == nil {
		return nil
	}

	if err := closer.Close(); err != nil {
		return fmt.Errorf("closing stream: %w", err)
	}

	return nil
}

// fail closes the session and returns err.
func (s *Session) fail(err error) error {
	s.Close() //nolint:errcheck,gosec // best-effort cleanup, err is what the caller needs

	return err
}
