package lexer

import "fmt"

// Cause distinguishes the specific validation failure behind an *Error.
// The user-visible behavior for every Cause is identical — a silent
// newline and a return to the prompt (spec.md §4.1/§7) — but tests can
// tell them apart.
type Cause int

const (
	ErrLineTooLong Cause = iota
	ErrTokenTooLong
	ErrEmptyLine
	ErrTooManyPipes
	ErrMissingProgram
	ErrDanglingRedirect
)

func (c Cause) String() string {
	switch c {
	case ErrLineTooLong:
		return "line too long"
	case ErrTokenTooLong:
		return "token too long"
	case ErrEmptyLine:
		return "empty line"
	case ErrTooManyPipes:
		return "too many pipes"
	case ErrMissingProgram:
		return "stage has no program name"
	case ErrDanglingRedirect:
		return "redirection operator with no target"
	default:
		return "invalid input"
	}
}

// Error is returned by Parse on any validation failure in spec.md §4.1.
type Error struct {
	Cause Cause
	Token string // the offending token, if any
}

func newError(cause Cause, token string) *Error {
	return &Error{Cause: cause, Token: token}
}

func (e *Error) Error() string {
	if e.Token == "" {
		return e.Cause.String()
	}
	return fmt.Sprintf("%s: %q", e.Cause.String(), e.Token)
}
