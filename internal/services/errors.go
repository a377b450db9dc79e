package services

import (
	"errors"
	"fmt"
)

// Generic service errors, mapped to HTTP status codes by the handlers.
var (
	ErrNotFound                = errors.New("resource not found")
	ErrValidationFailed        = errors.New("validation failed")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrBadRequest              = errors.New("bad request")
	ErrConflict                = errors.New("resource conflict")
	ErrInternal                = errors.New("internal error")
)

// Domain errors wrap the generic sentinels so errors.Is works on both.
var (
	ErrCourseNotFound     = fmt.Errorf("course %w", ErrNotFound)
	ErrEnrollmentNotFound = fmt.Errorf("enrollment %w", ErrNotFound)
	ErrAssignmentNotFound = fmt.Errorf("assignment %w", ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("submission %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)

	// ErrEnrollmentNotPending means an approval raced another admin or acted
	// on an already-decided request.
	ErrEnrollmentNotPending = fmt.Errorf("enrollment is not pending: %w", ErrConflict)

	// ErrEnrollmentNotActive means a completion was attempted on a row that
	// is not currently enrolled.
	ErrEnrollmentNotActive = fmt.Errorf("enrollment is not active: %w", ErrConflict)

	// ErrWriteConflict means a conditional update lost the race twice and the
	// caller should re-read and retry.
	ErrWriteConflict = fmt.Errorf("concurrent write detected: %w", ErrConflict)
)

// validationError wraps a validation failure so errors.Is(err,
// ErrValidationFailed) matches while the field details stay readable.
func validationError(detail error) error {
	return fmt.Errorf("%w: %v", ErrValidationFailed, detail)
}
