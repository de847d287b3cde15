package apperr

import "errors"

// Error is the domain error type with a code and an optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Cause.Error()
	}
	return e.Message + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain,
// or CodeUnknown if there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}

// restoredError marks an error that stopped playback after the terminal was
// put back into its original mode.
type restoredError struct {
	err error
}

func (r *restoredError) Error() string { return r.err.Error() }
func (r *restoredError) Unwrap() error { return r.err }

// MarkRestored records that err was reported after a successful terminal
// restore. A nil error stays nil.
func MarkRestored(err error) error {
	if err == nil || IsRestored(err) {
		return err
	}
	return &restoredError{err: err}
}

// IsRestored reports whether err was marked by MarkRestored.
func IsRestored(err error) bool {
	var r *restoredError
	return errors.As(err, &r)
}

// ExitCode returns the process exit status for err. A nil error and an error
// reported after the terminal was restored both exit 0.
func ExitCode(err error) int {
	if err == nil || IsRestored(err) {
		return 0
	}
	return CodeOf(err).ExitCode()
}
