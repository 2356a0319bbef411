// Package valerr defines the failure taxonomy for cryptval.
//
// Every error produced by the catalog, the runner, the scalar parser, the
// deterministic RNG, or the CLI maps to exactly one FailureClass. The class
// decides whether the error is a caller-level configuration defect or a
// per-validator outcome, and which exit code the CLI reports.
package valerr

import (
	"errors"
	"fmt"
)

// FailureClass is a stable failure category.
type FailureClass string

const (
	DuplicateValidator FailureClass = "DUPLICATE_VALIDATOR"
	UnknownValidator   FailureClass = "UNKNOWN_VALIDATOR"
	CatalogSealed      FailureClass = "CATALOG_SEALED"
	InvalidConfig      FailureClass = "INVALID_CONFIG"
	CLIUsage           FailureClass = "CLI_USAGE"

	MalformedInput  FailureClass = "MALFORMED_INPUT"
	NegativeValue   FailureClass = "NEGATIVE_VALUE"
	OutOfRange      FailureClass = "OUT_OF_RANGE"
	SourceExhausted FailureClass = "SOURCE_EXHAUSTED"

	ValidatorFailure FailureClass = "VALIDATOR_FAILURE"
	ValidatorPanic   FailureClass = "VALIDATOR_PANIC"
	ValidatorTimeout FailureClass = "VALIDATOR_TIMEOUT"
	RunCanceled      FailureClass = "RUN_CANCELED"
	ReplayDrift      FailureClass = "REPLAY_DRIFT"

	InternalIO    FailureClass = "INTERNAL_IO"
	InternalError FailureClass = "INTERNAL_ERROR"
)

// Exit codes reported by the CLI.
const (
	ExitSuccess  = 0
	ExitFailed   = 1
	ExitInvalid  = 2
	ExitInternal = 10
)

// IsConfiguration reports whether the class is a caller-level defect
// (catalog or CLI misuse) rather than a test outcome.
func (fc FailureClass) IsConfiguration() bool {
	switch fc {
	case DuplicateValidator, UnknownValidator, CatalogSealed, InvalidConfig, CLIUsage:
		return true
	default:
		return false
	}
}

// ExitCode returns the process exit code for this failure class.
func (fc FailureClass) ExitCode() int {
	switch {
	case fc.IsConfiguration():
		return ExitInvalid
	case fc == InternalIO || fc == InternalError:
		return ExitInternal
	default:
		return ExitFailed
	}
}

// Error is the structured error type for all cryptval failures.
type Error struct {
	Class   FailureClass
	Subject string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Subject != "" {
		return fmt.Sprintf("valerr: %s: %q: %s", e.Class, e.Subject, msg)
	}
	return fmt.Sprintf("valerr: %s: %s", e.Class, msg)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given class, subject and message.
// Subject names the validator, token, or path the error is about and may be empty.
func New(class FailureClass, subject, message string) *Error {
	return &Error{Class: class, Subject: subject, Message: message}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(class FailureClass, subject, message string, cause error) *Error {
	return &Error{Class: class, Subject: subject, Message: message, Cause: cause}
}

// ClassOf returns the class of the first *Error in err's chain.
func ClassOf(err error) (FailureClass, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Class, true
	}
	return "", false
}

// Is reports whether err carries the given class.
func Is(err error, class FailureClass) bool {
	got, ok := ClassOf(err)
	return ok && got == class
}

// ExitCodeOf maps any error to an exit code. Unclassified errors are internal.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if class, ok := ClassOf(err); ok {
		return class.ExitCode()
	}
	return ExitInternal
}
