package xor

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeMismatch is returned when the declared total sizes of the streams differ.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrInvalidRange is returned when a range starts beyond the end of its stream.
	ErrInvalidRange = errors.New("invalid range")
	// ErrOpen is returned when a stream cannot be opened or inspected.
	ErrOpen = errors.New("open failure")
	// ErrSeek is returned when a stream cannot be positioned at a range boundary.
	ErrSeek = errors.New("seek failure")
	// ErrInputRead is returned when an input delivers fewer bytes than requested.
	ErrInputRead = errors.New("input read error")
	// ErrOutputWrite is returned when the output accepts fewer bytes than requested.
	ErrOutputWrite = errors.New("output write error")
	// ErrAllocation is returned when working buffers cannot be obtained.
	ErrAllocation = errors.New("allocation failure")
	// ErrConfiguration is returned when streams are bound in an unusable way.
	ErrConfiguration = errors.New("configuration error")
)

// Role identifies which side of an operation a stream plays.
type Role int

const (
	RoleInput Role = iota
	RoleOutput
)

func (r Role) String() string {
	if r == RoleOutput {
		return "output"
	}

	return "input"
}

// StreamError reports a failure tied to one stream.
// It matches both its Kind sentinel and the underlying cause with errors.Is.
type StreamError struct {
	// Kind is one of the package sentinels.
	Kind error
	// Role of the failing stream.
	Role Role
	// Index of the input (always 0 for the output).
	Index int
	// Err is the underlying cause, if any.
	Err error
}

func (e *StreamError) Error() string {
	name := e.Role.String()
	if e.Role == RoleInput {
		name = fmt.Sprintf("%s %d", name, e.Index)
	}

	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, name)
	}

	return fmt.Sprintf("%v: %s: %v", e.Kind, name, e.Err)
}

func (e *StreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func streamError(kind error, role Role, index int, err error) error {
	return &StreamError{Kind: kind, Role: role, Index: index, Err: err}
}

// KindOf returns the package sentinel err matches, or nil if it matches none.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrSizeMismatch,
		ErrInvalidRange,
		ErrOpen,
		ErrSeek,
		ErrInputRead,
		ErrOutputWrite,
		ErrAllocation,
		ErrConfiguration,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}
