// Package xor combines byte streams by XOR-ing them position for position.
//
// The Engine drives any number of input streams into one output stream, each
// described by an ordered list of byte ranges that need not be contiguous in
// the underlying file. The Session is a simpler two-input mode that processes a
// caller-supplied length per call, suited to piping through standard streams.
//
// Both share a Combiner, selected once per process from the widest XOR
// primitive the host CPU supports.
package xor
