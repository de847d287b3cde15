// Package apperr provides the coded error kinds reported by ttyreplay.
package apperr

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Record store errors
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodeStoreQueryFailed Code = "STORE_QUERY_FAILED"
	CodeSessionNotFound  Code = "SESSION_NOT_FOUND"

	// Configuration errors
	CodeInvalidSpeedup Code = "INVALID_SPEEDUP"
	CodeInvalidConfig  Code = "INVALID_CONFIG"
	CodeUsage          Code = "USAGE"

	// Terminal errors
	CodeTerminalUnavailable Code = "TERMINAL_UNAVAILABLE"
	CodeTerminalWriteFailed Code = "TERMINAL_WRITE_FAILED"

	// CodeInterrupted is reported when playback is cancelled by a signal.
	CodeInterrupted Code = "INTERRUPTED"
)

// ExitCode maps an error code to a process exit status.
// Errors found while validating input exit with 2, everything else with 1.
func (c Code) ExitCode() int {
	switch c {
	case CodeUsage, CodeInvalidConfig, CodeInvalidSpeedup:
		return 2
	default:
		return 1
	}
}
