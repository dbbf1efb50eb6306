// Package session drives the register calculator's line protocol: it reads
// commands from a stream, hands them to the engine and writes results.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/leapstack-labs/regcalc/internal/engine"
	"github.com/leapstack-labs/regcalc/internal/register"
)

// CyclePolicy decides what a session does when a print hits a cycle.
type CyclePolicy string

// Cycle policies.
const (
	// CycleAbort stops the session and returns the cycle error.
	CycleAbort CyclePolicy = "abort"
	// CycleContinue reports the cycle like any per-line error and carries on.
	CycleContinue CyclePolicy = "continue"
)

// Evaluator is the part of the engine a session drives.
type Evaluator interface {
	Apply(op register.Operation)
	Resolve(name register.Name) (int32, error)
}

// Options configures a Session.
type Options struct {
	// Lowercase folds every line to lower case before tokenizing.
	Lowercase bool
	// OnCycle is the cycle policy; empty means CycleAbort.
	OnCycle CyclePolicy
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Stats counts what a session processed.
type Stats struct {
	Lines      int
	Operations int
	Prints     int
	Errors     int
}

// Session executes command lines against an Evaluator.
type Session struct {
	eval   Evaluator
	out    io.Writer
	errOut io.Writer
	opts   Options
	logger *slog.Logger

	stats  Stats
	lineNo int
	done   bool
}

// New creates a session writing results to out and diagnostics to errOut.
func New(eval Evaluator, out, errOut io.Writer, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.OnCycle == "" {
		opts.OnCycle = CycleAbort
	}
	return &Session{
		eval:   eval,
		out:    out,
		errOut: errOut,
		opts:   opts,
		logger: logger,
	}
}

// Stats returns the counters accumulated so far.
func (s *Session) Stats() Stats {
	return s.stats
}

// Done reports whether a quit command was seen.
func (s *Session) Done() bool {
	return s.done
}

// Run processes lines from r until quit, end of input, a cycle under
// CycleAbort, or cancellation of ctx. Reaching end of input is not an error.
func (s *Session) Run(ctx context.Context, r io.Reader) error {
	scanner := NewLineScanner(r)
	for !s.done && scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Exec(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	s.logger.Debug("session finished",
		"lines", s.stats.Lines,
		"operations", s.stats.Operations,
		"prints", s.stats.Prints,
		"errors", s.stats.Errors,
		"quit", s.done,
	)
	return nil
}

// Exec processes a single command line. Per-line problems are reported on
// the diagnostics writer and return nil; the only error returned is a
// *engine.CycleError under CycleAbort.
func (s *Session) Exec(line string) error {
	s.lineNo++
	s.stats.Lines++

	cmd, err := ParseLine(line, s.opts.Lowercase)
	if err != nil {
		s.report(err)
		return nil
	}

	switch cmd.Kind {
	case KindQuit:
		s.done = true
	case KindApply:
		s.eval.Apply(cmd.Op)
		s.stats.Operations++
	case KindPrint:
		return s.print(cmd.Name)
	}
	return nil
}

func (s *Session) print(name register.Name) error {
	value, err := s.eval.Resolve(name)
	if err != nil {
		if errors.Is(err, engine.ErrCycleDetected) && s.opts.OnCycle == CycleAbort {
			s.stats.Errors++
			return fmt.Errorf("line %d: print %s: %w", s.lineNo, name, err)
		}
		s.report(err)
		return nil
	}

	s.stats.Prints++
	_, _ = fmt.Fprintln(s.out, value)
	return nil
}

func (s *Session) report(err error) {
	s.stats.Errors++
	s.logger.Debug("line rejected", "line", s.lineNo, "error", err)
	_, _ = fmt.Fprintf(s.errOut, "error: line %d: %v\n", s.lineNo, err)
}
