package errors

// Code represents an error code
type Code string

// Error codes
const (
	CodeOK              Code = "OK"
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyExists   Code = "ALREADY_EXISTS"
	CodeInternal        Code = "INTERNAL"

	// CodeUnavailable marks transient generation failures: network errors,
	// timeouts, rate limits. Retried with backoff, then degraded to fallback.
	CodeUnavailable Code = "UNAVAILABLE"

	// CodeSchemaViolation marks generated content that failed validation and
	// could not be repaired. The caller substitutes fallback content.
	CodeSchemaViolation Code = "SCHEMA_VIOLATION"

	// CodeInvariantViolation marks an internal inconsistency in authoritative
	// state. Fatal: the session aborts and the last good snapshot survives.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"

	// CodePluginFailure marks a plugin handler that panicked or errored.
	// Isolated: dispatch continues with the last good payload.
	CodePluginFailure Code = "PLUGIN_FAILURE"

	// CodeDataLoss marks a snapshot that cannot be decoded. The session
	// does not start.
	CodeDataLoss Code = "DATA_LOSS"

	// CodeFailedPrecondition marks a player intent that is not legal in the
	// current phase (e.g. fleeing outside combat).
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
)

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// Retryable reports whether a failure with this code may succeed on retry.
// Only transient generation failures qualify.
func (c Code) Retryable() bool {
	return c == CodeUnavailable
}

// Fatal reports whether a failure with this code must abort the session.
func (c Code) Fatal() bool {
	return c == CodeInvariantViolation || c == CodeDataLoss
}
