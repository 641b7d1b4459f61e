// Package manifest loads job descriptions for the XOR engine from YAML or JSONC
// files and parses stream arguments given on the command line.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/tidwall/jsonc"

	"github.com/idelchi/goxor/pkg/xor"
)

// Stdio is the path that stands for standard input or standard output.
const Stdio = "-"

var (
	// ErrFormat is returned for manifest files with an unknown extension.
	ErrFormat = errors.New("unsupported manifest format")
	// ErrStream is returned for malformed stream arguments.
	ErrStream = errors.New("malformed stream")
)

// Stream is a path with the ranges to visit in it.
// No ranges means the whole stream.
type Stream struct {
	Path   string      `json:"path"   yaml:"path"`
	Ranges []xor.Range `json:"ranges" yaml:"ranges"`
}

func (s Stream) String() string {
	if len(s.Ranges) == 0 {
		return s.Path
	}

	parts := make([]string, len(s.Ranges))
	for i, r := range s.Ranges {
		parts[i] = r.String()
	}

	return s.Path + "@" + strings.Join(parts, ",")
}

// IsStdio reports whether the stream refers to standard input or output.
func (s Stream) IsStdio() bool {
	return s.Path == Stdio
}

// Job is a single engine run: every input is combined into the output.
type Job struct {
	Name   string   `json:"name"   yaml:"name"`
	Output Stream   `json:"output" yaml:"output"`
	Inputs []Stream `json:"inputs" yaml:"inputs"`
	// Keep leaves existing output content in place instead of truncating.
	Keep bool `json:"keep" yaml:"keep"`
}

// Label returns the job name, or a description built from its streams.
func (j Job) Label() string {
	if j.Name != "" {
		return j.Name
	}

	return j.Output.Path
}

// Manifest is a list of jobs.
type Manifest struct {
	Jobs []Job `json:"jobs" yaml:"jobs"`
}

// Load reads a manifest from path. The format is chosen by extension:
// .yml and .yaml are YAML, .json and .jsonc are JSON with comments.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from user-supplied config
	if err != nil {
		return Manifest{}, fmt.Errorf("reading manifest %q: %w", path, err)
	}

	var manifest Manifest

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return Manifest{}, fmt.Errorf("parsing manifest %q: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSONInPlace(data), &manifest); err != nil {
			return Manifest{}, fmt.Errorf("parsing manifest %q: %w", path, err)
		}
	default:
		return Manifest{}, fmt.Errorf("%w: %q", ErrFormat, ext)
	}

	for i, job := range manifest.Jobs {
		if job.Output.Path == "" {
			return Manifest{}, fmt.Errorf("%w: job %d has no output path", ErrStream, i)
		}

		if err := checkRanges(job.Output.Ranges); err != nil {
			return Manifest{}, fmt.Errorf("%w: job %d output: %w", ErrStream, i, err)
		}

		for j, in := range job.Inputs {
			if in.Path == "" {
				return Manifest{}, fmt.Errorf("%w: job %d input %d has no path", ErrStream, i, j)
			}

			if err := checkRanges(in.Ranges); err != nil {
				return Manifest{}, fmt.Errorf("%w: job %d input %d: %w", ErrStream, i, j, err)
			}
		}
	}

	return manifest, nil
}

// ParseStream parses "path" or "path@offset:length,offset:length...".
// Offsets and lengths accept human sizes such as "4KiB".
func ParseStream(arg string) (Stream, error) {
	path, list, found := cut(arg)
	if path == "" {
		return Stream{}, fmt.Errorf("%w: %q has no path", ErrStream, arg)
	}

	stream := Stream{Path: path}

	if !found {
		return stream, nil
	}

	for part := range strings.SplitSeq(list, ",") {
		r, err := parseRange(part)
		if err != nil {
			return Stream{}, fmt.Errorf("%w: %q: %w", ErrStream, arg, err)
		}

		stream.Ranges = append(stream.Ranges, r)
	}

	return stream, nil
}

// ParseStreams parses every argument with ParseStream.
func ParseStreams(args []string) ([]Stream, error) {
	streams := make([]Stream, 0, len(args))

	for _, arg := range args {
		stream, err := ParseStream(arg)
		if err != nil {
			return nil, err
		}

		streams = append(streams, stream)
	}

	return streams, nil
}

// cut splits at the last '@' when what follows looks like a range list,
// so paths containing '@' still work.
func cut(arg string) (string, string, bool) {
	i := strings.LastIndex(arg, "@")
	if i < 0 || !strings.Contains(arg[i+1:], ":") {
		return arg, "", false
	}

	return arg[:i], arg[i+1:], true
}

func parseRange(s string) (xor.Range, error) {
	off, length, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return xor.Range{}, fmt.Errorf("range %q is not offset:length", s)
	}

	offset, err := humanize.ParseBytes(off)
	if err != nil {
		return xor.Range{}, fmt.Errorf("parsing offset %q: %w", off, err)
	}

	size, err := humanize.ParseBytes(length)
	if err != nil {
		return xor.Range{}, fmt.Errorf("parsing length %q: %w", length, err)
	}

	r := xor.Range{Offset: offset, Length: size}

	return r, checkRanges([]xor.Range{r})
}

// checkRanges rejects ranges whose end does not fit in 64 bits.
func checkRanges(ranges []xor.Range) error {
	for _, r := range ranges {
		if r.Offset > math.MaxUint64-r.Length {
			return fmt.Errorf("range %d:%d ends beyond 2^64", r.Offset, r.Length)
		}
	}

	return nil
}
