package errors

import (
	stderrors "errors"
	"net/http"
)

// Domain error taxonomy. Every type is recoverable at the handler boundary;
// StatusCode maps them to HTTP statuses.

// ValidationError signals bad caller input: a duplicate vehicle booking, an
// unparseable timestamp, a malformed request field.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

func Validation(msg string) *ValidationError { return &ValidationError{Message: msg} }

// NoCapacityError signals that a lot has no available spot.
type NoCapacityError struct{ Message string }

func (e *NoCapacityError) Error() string { return e.Message }

func NoCapacity(msg string) *NoCapacityError { return &NoCapacityError{Message: msg} }

// AuthorizationError signals that the acting user does not own the resource.
type AuthorizationError struct{ Message string }

func (e *AuthorizationError) Error() string { return e.Message }

func Authorization(msg string) *AuthorizationError { return &AuthorizationError{Message: msg} }

// ConflictError signals a structural change blocked by current state, such as
// shrinking or deleting a lot while spots are occupied.
type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

func Conflict(msg string) *ConflictError { return &ConflictError{Message: msg} }

// AlreadySettledError signals an attempt to settle a reservation twice.
type AlreadySettledError struct{ Message string }

func (e *AlreadySettledError) Error() string { return e.Message }

func AlreadySettled(msg string) *AlreadySettledError { return &AlreadySettledError{Message: msg} }

// NotFoundError signals that the referenced entity does not exist.
type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

func NotFound(msg string) *NotFoundError { return &NotFoundError{Message: msg} }

// StatusCode returns the HTTP status for a domain error, or 500 for anything
// outside the taxonomy.
func StatusCode(err error) int {
	var (
		validation     *ValidationError
		noCapacity     *NoCapacityError
		authorization  *AuthorizationError
		conflict       *ConflictError
		alreadySettled *AlreadySettledError
		notFound       *NotFoundError
	)
	switch {
	case stderrors.As(err, &validation):
		return http.StatusBadRequest
	case stderrors.As(err, &noCapacity):
		return http.StatusConflict
	case stderrors.As(err, &authorization):
		return http.StatusForbidden
	case stderrors.As(err, &conflict):
		return http.StatusConflict
	case stderrors.As(err, &alreadySettled):
		return http.StatusConflict
	case stderrors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
