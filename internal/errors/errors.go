package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Business errors
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrCabUnavailable        = errors.New("cab is not available")
	ErrCustomerHasActiveRide = errors.New("customer already has an active ride")
	ErrCabOnActiveRide       = errors.New("cab is serving an active ride")
)

// APIError represents a structured API error
type APIError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Common API errors
func NotFound(resource string) *APIError {
	return NewAPIError("not_found", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func BadRequest(message string) *APIError {
	return NewAPIError("bad_request", message, http.StatusBadRequest)
}

func Conflict(message string) *APIError {
	return NewAPIError("conflict", message, http.StatusConflict)
}

func InternalError(message string) *APIError {
	return NewAPIError("internal_error", message, http.StatusInternalServerError)
}

// InvalidTransition is returned when a ride status change is not permitted
// from the ride's current status.
func InvalidTransition(from, to string) *APIError {
	return NewAPIError("invalid_transition", fmt.Sprintf("cannot transition from %s to %s", from, to), http.StatusBadRequest)
}

// IllegalState is returned when an operation is only valid in certain
// states, e.g. feedback before the ride has ended.
func IllegalState(message string) *APIError {
	return NewAPIError("illegal_state", message, http.StatusUnprocessableEntity)
}

func CabUnavailable(cabID int64) *APIError {
	return NewAPIError("cab_unavailable", fmt.Sprintf("cab %d is not available", cabID), http.StatusConflict)
}

func CustomerHasActiveRide() *APIError {
	return NewAPIError("active_ride_exists", "customer already has an active ride", http.StatusConflict)
}

func CabOnActiveRide(cabID int64) *APIError {
	return NewAPIError("cab_on_active_ride", fmt.Sprintf("cab %d is serving an active ride", cabID), http.StatusConflict)
}

// ConcurrentUpdate is returned when a versioned update finds the row
// already modified by another request.
func ConcurrentUpdate(resource string) *APIError {
	return NewAPIError("concurrent_update", fmt.Sprintf("%s was modified by a concurrent request, retry", resource), http.StatusConflict)
}
