package xor

// Outcome is the non-error result of a run.
type Outcome int

const (
	// Success means every declared byte was combined and written.
	Success Outcome = iota
	// NoWork means there was nothing to do: no inputs or an empty total size.
	NoWork
)

func (o Outcome) String() string {
	if o == NoWork {
		return "no work"
	}

	return "success"
}
