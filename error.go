package shell

import (
	"errors"
	"fmt"
	"strings"
)

// ErrHalted is returned by [Command.Run] and [Shell.Exec] when a middleware stage returned
// without calling next, so the handler never ran.
var ErrHalted = errors.New("middleware chain halted before the handler")

// ErrorCode represents an error code for a specific error type.
type ErrorCode int

const (
	// ErrConfiguration marks a malformed command or shell configuration. These are programmer
	// errors and are returned at construction time.
	ErrConfiguration ErrorCode = iota + 1
	// ErrResolution marks input that does not resolve to a command.
	ErrResolution
)

func (c ErrorCode) String() string {
	return convertErrorCode(c)
}

func convertErrorCode(code ErrorCode) string {
	switch code {
	case ErrConfiguration:
		return "invalid configuration"
	case ErrResolution:
		return "command not found"
	default:
		return "unknown error"
	}
}

// Error represents an error with an error code and an underlying error.
type Error struct {
	code ErrorCode
	err  error
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	if e == nil {
		return 0
	}
	return e.code
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.err == nil {
		return convertErrorCode(e.code) + ": <nil>"
	}
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsCode reports whether any error in err's chain is an [*Error] with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.code == code
}

func configErrorf(format string, args ...any) error {
	return &Error{code: ErrConfiguration, err: fmt.Errorf(format, args...)}
}

// ResolutionError is returned when input does not name a known command.
type ResolutionError struct {
	// Token is the input token that failed to resolve.
	Token string
	// Suggestions holds similarly named commands, closest first.
	Suggestions []string
}

func (e *ResolutionError) Error() string {
	if len(e.Suggestions) > 0 {
		return fmt.Sprintf("unknown command %q. Did you mean one of these?\n\t%s",
			e.Token,
			strings.Join(e.Suggestions, "\n\t"))
	}
	if e.Token == "" {
		return "no command specified"
	}
	return fmt.Sprintf("unknown command %q", e.Token)
}

func resolutionError(token string, suggestions []string) error {
	return &Error{code: ErrResolution, err: &ResolutionError{Token: token, Suggestions: suggestions}}
}
