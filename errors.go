package bnb

import (
	"github.com/pkg/errors"
)

// SetupError is returned by NewEngine when the problem or settings are
// rejected before any relaxation is attempted. It is fatal: the caller gets
// no Status, only this error (wrapped with a stack trace via pkg/errors).
type SetupError struct {
	cause error
}

func (e *SetupError) Error() string { return "bnb: setup failed: " + e.cause.Error() }
func (e *SetupError) Unwrap() error { return e.cause }

func newSetupError(msg string) error {
	return &SetupError{cause: errors.New(msg)}
}

func wrapSetupError(cause error, msg string) error {
	return &SetupError{cause: errors.Wrap(cause, msg)}
}

// NumericalError reports a coefficient-level defect discovered while
// compiling or solving a problem: a non-PSD Q, or a non-finite coefficient.
// Fatal.
type NumericalError struct {
	cause error
}

func (e *NumericalError) Error() string { return "bnb: numerical error: " + e.cause.Error() }
func (e *NumericalError) Unwrap() error { return e.cause }

func newNumericalError(msg string) error {
	return &NumericalError{cause: errors.New(msg)}
}

// ResourceError reports exhaustion of a resource (memory, node budget)
// during the search. Fatal.
type ResourceError struct {
	cause error
}

func (e *ResourceError) Error() string { return "bnb: resource exhausted: " + e.cause.Error() }
func (e *ResourceError) Unwrap() error { return e.cause }

func newResourceError(msg string) error {
	return &ResourceError{cause: errors.New(msg)}
}

// SubsolverError reports an unexpected backend status returned for an
// otherwise well-formed solve call. It is never fatal: the caller of
// subProblem.solve folds it into a reliable=false node and keeps branching,
// logging the occurrence instead of propagating it.
type SubsolverError struct {
	cause error
}

func (e *SubsolverError) Error() string { return "bnb: subsolver error: " + e.cause.Error() }
func (e *SubsolverError) Unwrap() error { return e.cause }

func newSubsolverError(msg string) error {
	return &SubsolverError{cause: errors.New(msg)}
}

func wrapSubsolverError(cause error, msg string) error {
	return &SubsolverError{cause: errors.Wrap(cause, msg)}
}

// ErrNoIntegerFeasibleSolution is returned by Engine.Solve when the search
// ended with description "optimalSolutionFound" but without ever finding an
// integer-feasible point, i.e. the final Status has ObjUpB == +Inf. An
// "interrupted" or "infeasible" run without an incumbent returns no error.
var ErrNoIntegerFeasibleSolution = errors.New("bnb: no integer-feasible solution found")
