package errors

import (
	"errors"
)

// As is a wrapper around errors.As that works with our Error type
func As(err error, target **Error) bool {
	return errors.As(err, target)
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}

	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Code
	}

	return CodeInternal
}

// GetMessage extracts the user-friendly message from an error
func GetMessage(err error) string {
	if err == nil {
		return ""
	}

	var customErr *Error
	if errors.As(err, &customErr) {
		return customErr.Message
	}

	return err.Error()
}

// Type checking helpers

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return GetCode(err) == CodeNotFound
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return GetCode(err) == CodeInvalidArgument
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return GetCode(err) == CodeAlreadyExists
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return GetCode(err) == CodeInternal
}

// IsUnavailable checks if an error is a transient generation failure
func IsUnavailable(err error) bool {
	return GetCode(err) == CodeUnavailable
}

// IsSchemaViolation checks if an error is a schema violation
func IsSchemaViolation(err error) bool {
	return GetCode(err) == CodeSchemaViolation
}

// IsInvariantViolation checks if an error is a fatal invariant violation
func IsInvariantViolation(err error) bool {
	return GetCode(err) == CodeInvariantViolation
}

// IsPluginFailure checks if an error is an isolated plugin handler failure
func IsPluginFailure(err error) bool {
	return GetCode(err) == CodePluginFailure
}

// IsDataLoss checks if an error is a persistence corruption error
func IsDataLoss(err error) bool {
	return GetCode(err) == CodeDataLoss
}

// IsFailedPrecondition checks if an error is a failed precondition error
func IsFailedPrecondition(err error) bool {
	return GetCode(err) == CodeFailedPrecondition
}

// IsFatal checks if an error must abort the session
func IsFatal(err error) bool {
	return GetCode(err).Fatal()
}
