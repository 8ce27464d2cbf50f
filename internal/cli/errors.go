package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Category classifies a failure. Each category maps to exactly one exit code.
type Category int

const (
	// CategoryInternal marks a defect: an unreachable variant, a missing renderer
	// or any error that escaped the taxonomy.
	CategoryInternal Category = iota
	// CategoryValidation marks bad user input, surfaced before any network call.
	CategoryValidation
	// CategoryNotFound marks a resource that does not exist.
	CategoryNotFound
	// CategoryAlreadyExists marks a conflict with a resource already in the
	// requested state.
	CategoryAlreadyExists
	// CategoryUnsupported marks a known capability gap.
	CategoryUnsupported
	// CategoryTimeout marks a poller deadline that elapsed before the remote
	// resource reached its target state.
	CategoryTimeout
	// CategoryProfileNotFound marks a profile that could not be resolved.
	CategoryProfileNotFound
	// CategoryInterrupted marks an invocation cancelled by the user.
	CategoryInterrupted
)

// Exit codes are part of the scripting contract and never change between releases.
const (
	ExitCodeSuccess         = 0
	ExitCodeInternal        = 1
	ExitCodeValidation      = 2
	ExitCodeNotFound        = 3
	ExitCodeAlreadyExists   = 4
	ExitCodeUnsupported     = 5
	ExitCodeTimeout         = 6
	ExitCodeProfileNotFound = 7
	ExitCodeInterrupted     = 130
)

// String returns the stable identifier of the category.
func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "VALIDATION"
	case CategoryNotFound:
		return "NOT_FOUND"
	case CategoryAlreadyExists:
		return "ALREADY_EXISTS"
	case CategoryUnsupported:
		return "UNSUPPORTED"
	case CategoryTimeout:
		return "TIMEOUT"
	case CategoryProfileNotFound:
		return "PROFILE_NOT_FOUND"
	case CategoryInterrupted:
		return "INTERRUPTED"
	default:
		return "INTERNAL"
	}
}

// ExitCode returns the process exit code for the category.
func (c Category) ExitCode() int {
	switch c {
	case CategoryValidation:
		return ExitCodeValidation
	case CategoryNotFound:
		return ExitCodeNotFound
	case CategoryAlreadyExists:
		return ExitCodeAlreadyExists
	case CategoryUnsupported:
		return ExitCodeUnsupported
	case CategoryTimeout:
		return ExitCodeTimeout
	case CategoryProfileNotFound:
		return ExitCodeProfileNotFound
	case CategoryInterrupted:
		return ExitCodeInterrupted
	default:
		return ExitCodeInternal
	}
}

// Hint is a remediation suggestion shown after an error or a result.
type Hint struct {
	// Label is the prose part, e.g. "See your existing databases:".
	Label string `json:"label"`
	// Command is a command line or free text the user can act on.
	Command string `json:"command"`
}

// NewHint creates a hint.
func NewHint(label, command string) Hint {
	return Hint{Label: label, Command: command}
}

// Error is the error type every user-facing failure is reported with.
// It carries the category that decides the exit code, a human message that
// may contain highlight markup, and zero or more hints.
type Error struct {
	Category Category
	Message  string
	Hints    []Hint
	// Cause is the underlying error, if any. It is only shown to the user in
	// verbose mode.
	Cause error
}

// NewError creates an Error of the given category.
func NewError(category Category, message string, hints ...Hint) *Error {
	return &Error{Category: category, Message: message, Hints: hints}
}

// Errorf creates an Error with a formatted message.
func Errorf(category Category, format string, args ...interface{}) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// WithHints returns a copy of e with the hints appended.
func (e *Error) WithHints(hints ...Hint) *Error {
	out := *e
	out.Hints = append(append([]Hint(nil), e.Hints...), hints...)
	return &out
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	out := *e
	out.Cause = cause
	return &out
}

// Error returns the message without highlight markup.
func (e *Error) Error() string {
	msg := StripMarkup(e.Message)
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same category, so
// errors.Is(err, &Error{Category: CategoryNotFound}) works on wrapped errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Category == e.Category
}

// ExitCode returns the exit code for the error's category.
func (e *Error) ExitCode() int {
	return e.Category.ExitCode()
}

// InternalError wraps a defect. The message invites a bug report instead of
// offering a remediation hint.
func InternalError(cause error) *Error {
	return &Error{
		Category: CategoryInternal,
		Message:  "An unexpected error occurred. This is a bug in cloudctl; please report it along with the output of the same command run with --verbose.",
		Cause:    cause,
	}
}

// AsError converts any error into an *Error. Errors outside the taxonomy
// become Internal, and context cancellation becomes Interrupted.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var cliErr *Error
	if errors.As(err, &cliErr) {
		return cliErr
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Category: CategoryInterrupted, Message: "Interrupted.", Cause: err}
	}

	return InternalError(err)
}

// ExitCodeOf returns the exit code a process should terminate with for err.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}
	return AsError(err).ExitCode()
}

// ValidationError is a shorthand for a Validation-category error.
func ValidationError(format string, args ...interface{}) *Error {
	return Errorf(CategoryValidation, format, args...)
}

// joinQuoted renders tokens as a shell command line, single-quoting tokens
// that would otherwise be split or expanded by the shell.
func joinQuoted(tokens []string) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, ShellQuote(tok))
	}
	return strings.Join(parts, " ")
}

// ShellQuote single-quotes s when the shell would split or expand it.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`!*?&;|<>(){}[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
