package registrar

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine operation failures.
type ErrorCode string

const (
	// CodeInvalidCredentials indicates a failed login.
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"

	// CodeNotFound indicates the named course or student does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a create collided with an existing
	// record, or a registration into a course already held.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeCapacityExceeded indicates the course has no remaining seats.
	CodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"

	// CodeRegistrationLimitExceeded indicates the student already holds
	// the maximum number of courses.
	CodeRegistrationLimitExceeded ErrorCode = "REGISTRATION_LIMIT_EXCEEDED"

	// CodeScheduleConflict indicates the course's schedule tag matches a
	// course the student already holds.
	CodeScheduleConflict ErrorCode = "SCHEDULE_CONFLICT"

	// CodeNotRegistered indicates a withdrawal from a course not held.
	CodeNotRegistered ErrorCode = "NOT_REGISTERED"

	// CodeInvalidCapacity indicates a non-positive capacity or an
	// attempt to shrink a course.
	CodeInvalidCapacity ErrorCode = "INVALID_CAPACITY"

	// CodeInvalidCommand indicates an unrecognized command tag.
	CodeInvalidCommand ErrorCode = "INVALID_COMMAND"

	// CodeMalformedRequest indicates an undecodable or incomplete
	// request payload.
	CodeMalformedRequest ErrorCode = "MALFORMED_REQUEST"

	// CodeInternalError indicates an unexpected store failure.
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// OpError is an engine operation failure with a stable code for the
// wire envelope and a human-readable message.
type OpError struct {
	Code    ErrorCode
	Message string
	Err     error // underlying cause, optional
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// E constructs an OpError with the given code and message.
func E(code ErrorCode, message string) *OpError {
	return &OpError{Code: code, Message: message}
}

// internalErr wraps an unexpected failure as an internal error.
func internalErr(message string, err error) *OpError {
	return &OpError{Code: CodeInternalError, Message: message, Err: err}
}

// CodeOf extracts the error code from an error.
// Returns CodeInternalError for errors that are not OpErrors.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return CodeInternalError
}

// MessageOf extracts the human-readable message from an error.
// Falls back to err.Error() for errors that are not OpErrors.
func MessageOf(err error) string {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Message
	}
	return err.Error()
}

// IsInternal reports whether the error is an unexpected store failure,
// the one condition that justifies closing a connection.
func IsInternal(err error) bool {
	return err != nil && CodeOf(err) == CodeInternalError
}
