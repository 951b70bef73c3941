// Package apperr classifies run-aborting errors into the three kinds the CLI
// reports with distinct exit codes: user input errors, internal logic errors,
// and deliberate soft refusals.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the error category. Each kind maps to one process exit code.
type Kind int

const (
	Logic Kind = iota // Internal invariant violated (exit 4).
	User              // Bad input path, invalid flag value, conflicting flags (exit 3).
	Soft              // Refused to run by policy, e.g. git work tree (exit 5).
)

// Exit codes. ExitFailures is used when a --keep-going run finished with
// per-file failures.
const (
	ExitOK       = 0
	ExitFailures = 1
	ExitUser     = 3
	ExitLogic    = 4
	ExitSoft     = 5
)

func (k Kind) String() string {
	switch k {
	case User:
		return "user error"
	case Soft:
		return "refused"
	default:
		return "internal error"
	}
}

// Error is a classified error. Msg is the full message; Err, when set, is the
// underlying cause and is reachable through errors.Is / errors.As.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Userf returns a User error with a formatted message. A %w verb in format
// wraps the cause as with fmt.Errorf.
func Userf(format string, args ...any) error { return newf(User, format, args...) }

// Logicf returns a Logic error with a formatted message.
func Logicf(format string, args ...any) error { return newf(Logic, format, args...) }

// Softf returns a Soft refusal with a formatted message.
func Softf(format string, args ...any) error { return newf(Soft, format, args...) }

func newf(kind Kind, format string, args ...any) error {
	wrapped := fmt.Errorf(format, args...)
	var cause error
	switch w := wrapped.(type) {
	case interface{ Unwrap() error }:
		cause = w.Unwrap()
	case interface{ Unwrap() []error }:
		cause = wrapped // several %w verbs; keep every cause reachable
	}
	return &Error{Kind: kind, Msg: wrapped.Error(), Err: cause}
}

// Wrap classifies err as kind without changing its message. It returns nil
// when err is nil and leaves already classified errors untouched.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain. Unclassified
// errors are Logic errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Logic
}

// ExitCode maps err to the process exit status. nil maps to ExitOK.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch KindOf(err) {
	case User:
		return ExitUser
	case Soft:
		return ExitSoft
	default:
		return ExitLogic
	}
}
