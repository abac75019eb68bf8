// Package report summarizes a run of the command line tool.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/jacoelho/pulljson/internal/tree"
)

// Format determines how summaries are printed.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var ErrUnknownFormat = errors.New("unsupported report format")

// ParseFormat accepts the names of the supported formats; empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, s)
}

// Result is one extracted or matched value.
type Result struct {
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// Arena reports how the value arena was used.
type Arena struct {
	Capacity int `json:"capacity"`
	Used     int `json:"used"`
	Peak     int `json:"peak"`
	Failures int `json:"failures,omitempty"`
}

// Summary aggregates what one run read and produced.
type Summary struct {
	RunID    string        `json:"run_id"`
	Mode     string        `json:"mode"`
	Input    string        `json:"input"`
	Bytes    int64         `json:"bytes"`
	Read     int64         `json:"read"`
	Tokens   int           `json:"tokens,omitempty"`
	Matches  int           `json:"matches,omitempty"`
	Arena    Arena         `json:"arena"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
	Results  []Result      `json:"results,omitempty"`
}

// New starts a summary with a fresh run id.
func New(mode, input string) *Summary {
	return &Summary{
		RunID: uuid.NewString(),
		Mode:  mode,
		Input: input,
	}
}

// Add records the JSON encoding of e under path. Undefined values are
// recorded as null.
func (s *Summary) Add(path string, e *tree.Element) {
	s.Results = append(s.Results, Result{
		Path:  path,
		Value: json.RawMessage(e.AppendJSON(nil)),
	})
}

// Fail records err as the outcome of the run.
func (s *Summary) Fail(err error) {
	if err != nil {
		s.Error = err.Error()
	}
}

// Write prints the summary in the requested format.
func (s *Summary) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(s)
	case FormatText, "":
		writef := func(format string, args ...any) error {
			if _, err := fmt.Fprintf(w, format, args...); err != nil {
				return err
			}
			return nil
		}

		if err := writef("Run %s\n", s.RunID); err != nil {
			return err
		}
		if err := writef("  mode: %s\n", s.Mode); err != nil {
			return err
		}
		if err := writef("  input: %s (%d bytes)\n", s.Input, s.Bytes); err != nil {
			return err
		}
		if s.Read > 0 {
			if err := writef("  source: %d bytes read\n", s.Read); err != nil {
				return err
			}
		}
		if s.Tokens > 0 {
			if err := writef("  tokens: %d\n", s.Tokens); err != nil {
				return err
			}
		}
		if s.Matches > 0 {
			if err := writef("  matches: %d\n", s.Matches); err != nil {
				return err
			}
		}
		if err := writef("  arena: %d used, %d peak, %d capacity\n", s.Arena.Used, s.Arena.Peak, s.Arena.Capacity); err != nil {
			return err
		}
		if s.Arena.Failures > 0 {
			if err := writef("  refused allocations: %d\n", s.Arena.Failures); err != nil {
				return err
			}
		}
		if err := writef("  duration: %s\n", s.Duration); err != nil {
			return err
		}

		if len(s.Results) > 0 {
			if err := writef("\nResults:\n"); err != nil {
				return err
			}
			for _, result := range s.Results {
				if err := writef("  %s = %s\n", result.Path, result.Value); err != nil {
					return err
				}
			}
		}

		if s.Error != "" {
			if err := writef("\nError: %s\n", s.Error); err != nil {
				return err
			}
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}
