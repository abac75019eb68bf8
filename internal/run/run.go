// Package run executes one pulljson invocation: it opens the document, drives
// the pull reader in the configured mode and reports what happened.
package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jacoelho/pulljson/internal/arena"
	"github.com/jacoelho/pulljson/internal/config"
	"github.com/jacoelho/pulljson/internal/exit"
	"github.com/jacoelho/pulljson/internal/lex"
	"github.com/jacoelho/pulljson/internal/logging"
	"github.com/jacoelho/pulljson/internal/pull"
	"github.com/jacoelho/pulljson/internal/query"
	"github.com/jacoelho/pulljson/internal/ratelimit"
	"github.com/jacoelho/pulljson/internal/report"
	"github.com/jacoelho/pulljson/internal/tree"
)

// Runner executes a configured run.
type Runner struct {
	config *config.Config
	logger *zap.Logger
	plan   *query.Plan

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates a Runner with the provided configuration. Extract mode queries
// are compiled here so that a bad query is rejected before any input is read.
func New(cfg *config.Config, logger *zap.Logger) (*Runner, *exit.Result) {
	r := &Runner{
		config: cfg,
		logger: logger,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	if cfg.Mode == config.ModeExtract {
		plan, err := loadPlan(cfg)
		if err != nil {
			return nil, exit.Usagef("Error: %v\n", err)
		}
		r.plan = plan
	}

	return r, nil
}

func loadPlan(cfg *config.Config) (*query.Plan, error) {
	if cfg.QueryFile == "" {
		return query.CompilePaths(cfg.Paths...)
	}

	f, err := os.Open(cfg.QueryFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open query file: %w", err)
	}
	defer f.Close()

	return query.ParseYAML(f)
}

// session is the state of a single document read.
type session struct {
	cursor  *lex.Cursor
	reader  *pull.Reader
	arena   *arena.Arena
	summary *report.Summary
}

// Run reads the document and writes the mode output to stdout and the report
// to stderr. It returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	src, closeSrc, err := r.open()
	if err != nil {
		r.logger.Error("cannot open input", zap.String("input", r.config.Input), zap.Error(err))
		return exit.CodeFailure
	}
	defer closeSrc()

	throttled := ratelimit.NewReader(ctx, src, r.config.RateLimit)
	s := &session{
		cursor:  lex.New(bufio.NewReader(throttled), r.config.Capture),
		arena:   arena.New(r.config.Arena),
		summary: report.New(string(r.config.Mode), r.config.Input),
	}
	s.reader = pull.NewReader(s.cursor)
	if r.config.Pool {
		s.reader.SetStringPool(tree.NewPool(s.arena))
	}

	r.logger.Debug("reading document",
		zap.String("run_id", s.summary.RunID),
		zap.String("mode", string(r.config.Mode)),
		zap.Int("capture", r.config.Capture),
		zap.Int("arena", r.config.Arena),
		zap.Float64("rate", r.config.RateLimit),
	)

	start := time.Now()
	switch r.config.Mode {
	case config.ModeDump:
		err = r.dump(s)
	case config.ModeFind:
		err = r.find(s)
	case config.ModeExtract:
		err = r.extract(s)
	case config.ModeParse:
		err = r.parse(s)
	default:
		err = fmt.Errorf("%w: %s", config.ErrUnknownMode, r.config.Mode)
	}

	s.summary.Duration = time.Since(start)
	s.summary.Bytes = scanned(s.cursor)
	s.summary.Read = throttled.BytesRead()
	s.summary.Arena = report.Arena{
		Capacity: s.arena.Cap(),
		Used:     s.arena.Used(),
		Peak:     s.arena.Peak(),
		Failures: s.arena.Failures(),
	}
	s.summary.Fail(err)

	if err != nil {
		r.logError(err)
	}
	r.logger.Info("run finished",
		zap.String("run_id", s.summary.RunID),
		zap.Int64("scanned", s.summary.Bytes),
		zap.Int("arena_peak", s.summary.Arena.Peak),
		zap.Duration("duration", s.summary.Duration),
	)

	if werr := s.summary.Write(r.stderr, r.config.Report); werr != nil {
		r.logger.Error("cannot write report", zap.Error(werr))
		return exit.CodeFailure
	}

	if err != nil {
		return exit.CodeFailure
	}
	return exit.CodeOK
}

func (r *Runner) open() (io.Reader, func(), error) {
	if r.config.Input == config.Stdin {
		return r.stdin, func() {}, nil
	}

	f, err := os.Open(r.config.Input)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func (r *Runner) logError(err error) {
	var syntaxErr *pull.SyntaxError
	if errors.As(err, &syntaxErr) {
		r.logger.Error("cannot read document",
			zap.Error(syntaxErr.Err),
			logging.Location(syntaxErr.Line, syntaxErr.Column, syntaxErr.Offset),
		)
		return
	}
	r.logger.Error("run failed", zap.Error(err))
}

// dump prints every token, indented by nesting level.
func (r *Runner) dump(s *session) error {
	out := bufio.NewWriter(r.stdout)
	defer out.Flush()

	depth := 0
	for s.reader.Read() {
		s.summary.Tokens++

		node := s.reader.NodeType()
		if node == pull.EndObject || node == pull.EndArray {
			depth--
		}
		if _, err := fmt.Fprintf(out, "%s%s\n", strings.Repeat("  ", max(depth, 0)), describe(s.reader)); err != nil {
			return err
		}
		if node == pull.Object || node == pull.Array {
			depth++
		}
	}
	return s.reader.Err()
}

func describe(r *pull.Reader) string {
	switch node := r.NodeType(); node {
	case pull.Value:
		switch r.ValueType() {
		case pull.String:
			return fmt.Sprintf("Value String: %s", r.Value())
		case pull.Integer:
			return fmt.Sprintf("Value Integer: %d", r.IntegerValue())
		case pull.Real:
			return fmt.Sprintf("Value Real: %g", r.RealValue())
		case pull.Boolean:
			return fmt.Sprintf("Value Boolean: %t", r.BooleanValue())
		case pull.Null:
			return "Value Null"
		}
		return "Value"
	case pull.Field:
		return "Field " + r.Value()
	case pull.Object:
		return "Object (Start)"
	case pull.EndObject:
		return "Object (End)"
	case pull.Array:
		return "Array (Start)"
	case pull.EndArray:
		return "Array (End)"
	default:
		return node.String()
	}
}

// find prints every value of the configured field. Each match is
// materialized into a freshly freed arena, so the arena peak is the size of
// the largest match.
func (r *Runner) find(s *session) error {
	out := bufio.NewWriter(r.stdout)
	defer out.Flush()

	var value tree.Element
	leaf := pull.Leaf(&value)
	depth := 0
	for {
		ok, err := s.reader.SkipToFieldValue(r.config.Field, r.config.Axis, &depth)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		s.arena.FreeAll()
		if err := s.reader.Extract(s.arena, &leaf); err != nil {
			return err
		}
		s.summary.Matches++
		r.logger.Debug("match",
			zap.Int("n", s.summary.Matches),
			zap.Int("arena_used", s.arena.Used()),
			zap.Int("arena_available", s.arena.Available()),
			logging.Location(s.cursor.Line(), s.cursor.Column(), s.cursor.Position()),
		)

		if _, err := out.Write(value.AppendJSON(nil)); err != nil {
			return err
		}
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
	}
}

// extract runs the compiled plan against the document root.
func (r *Runner) extract(s *session) error {
	if err := r.plan.Extract(s.reader, s.arena); err != nil {
		return err
	}

	out := bufio.NewWriter(r.stdout)
	defer out.Flush()

	for _, res := range r.plan.Results {
		if res.Slot.IsUndefined() {
			r.logger.Debug("no value", zap.String("path", res.Path))
			continue
		}
		s.summary.Matches++
		s.summary.Add(res.Path, res.Slot)
		if _, err := fmt.Fprintf(out, "%s\t%s\n", res.Path, res.Slot.String()); err != nil {
			return err
		}
	}
	return nil
}

// parse materializes the whole document and prints it back compacted. Content
// after the root value, even comma separated, fails the parse.
func (r *Runner) parse(s *session) error {
	var root tree.Element
	if err := s.reader.ParseSubtree(s.arena, &root); err != nil {
		return err
	}
	if s.reader.NodeType() != pull.EndDocument {
		return &pull.SyntaxError{
			Err:    pull.ErrUnexpectedValue,
			Line:   s.cursor.Line(),
			Column: s.cursor.Column(),
			Offset: s.cursor.Position(),
		}
	}

	if _, err := root.WriteTo(r.stdout); err != nil {
		return err
	}
	_, err := io.WriteString(r.stdout, "\n")
	return err
}

// scanned is the number of input characters consumed.
func scanned(lc *lex.Cursor) int64 {
	if lc.AtEnd() {
		return lc.Position()
	}
	return lc.Position() + 1
}
