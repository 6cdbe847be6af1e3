// Package solvererr implements the error taxonomy and recovery ladder of
// spec §7: a small severity hierarchy built on github.com/pkg/errors (the
// teacher's own error-wrapping library, per felipends-revised-simplex's
// use of plain wrapped errors throughout model/model.go and
// simplex/simplex.go's panic/error paths, generalized here to typed,
// inspectable errors instead of a panic), and an ordered ladder of
// recovery steps the refinement loop walks when a kernel Solve call does
// not land cleanly on Optimal.
package solvererr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Severity classifies a solver-facing error (spec §7).
type Severity int

const (
	// UserError: the input itself is malformed (bad bounds, bad MPS),
	// never worth retrying.
	UserError Severity = iota
	// NumericWarning: a numerical wobble the caller may want to know
	// about but that did not stop the solve (e.g. a stability dip the
	// ladder already recovered from).
	NumericWarning
	// Singular: the current basis has no admissible pivot; recoverable
	// by the ladder's cold-restart step.
	Singular
	// Abort: the ladder exhausted every step without reaching Optimal.
	Abort
	// Error: an unclassified failure, the taxonomy's catch-all.
	Error
)

func (s Severity) String() string {
	switch s {
	case UserError:
		return "USER_ERROR"
	case NumericWarning:
		return "NUMERIC_WARNING"
	case Singular:
		return "SINGULAR"
	case Abort:
		return "ABORT"
	default:
		return "ERROR"
	}
}

// SolverError pairs a Severity with a wrapped cause.
type SolverError struct {
	Severity Severity
	Op       string
	Err      error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Severity, e.Op, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

// New wraps err with a severity and an operation label.
func New(sev Severity, op string, err error) *SolverError {
	return &SolverError{Severity: sev, Op: op, Err: errors.WithStack(err)}
}

// Newf is New with a formatted message instead of a wrapped error.
func Newf(sev Severity, op, format string, args ...interface{}) *SolverError {
	return New(sev, op, errors.Errorf(format, args...))
}

// SeverityOf extracts the Severity of err if it (or something it wraps)
// is a *SolverError, defaulting to Error otherwise.
func SeverityOf(err error) Severity {
	var se *SolverError
	if errors.As(err, &se) {
		return se.Severity
	}
	return Error
}

// RecoveryStep is one rung of the ladder the refinement loop climbs when
// a kernel attempt fails to reach Optimal: it mutates solver state (via
// closure capture) and reports whether it changed anything worth
// retrying with.
type RecoveryStep struct {
	Name  string
	Apply func() (retried bool)
}

// Ladder is an ordered recovery sequence in the style of spec §7's
// ten-step solveRealStable ladder: an unresponsive kernel attempt
// escalates through cheaper, more targeted fixes before the more
// disruptive ones, finally giving up with Abort. This repository's ladder
// covers the steps that apply to its component set — cold restart, a larger
// iteration budget, delta relaxation/tightening, and pricer/ratio-tester
// switching — and omits the
// presolve/scaler/simplifier steps those components don't exist to drive
// (DESIGN.md records the omission). The refinement loop builds its own
// Ladder per solve attempt, since each step closes over that attempt's
// kernel/pricer/ratio-tester state.
type Ladder struct {
	Steps []RecoveryStep
}

// Run walks the ladder once: it tries each step's Apply in order and
// returns the first one that reports retried=true, or ok=false if every
// step declined (the caller should then report Abort).
func (l *Ladder) Run() (stepName string, ok bool) {
	for _, s := range l.Steps {
		if s.Apply() {
			return s.Name, true
		}
	}
	return "", false
}
