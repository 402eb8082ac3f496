package errors

import "fmt"

type ErrorCode string

const (
	// Generic codes
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrForbidden          ErrorCode = "FORBIDDEN"
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"

	// Token handling
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	// Reservation domain
	ErrSlotUnavailable     ErrorCode = "SLOT_NOT_AVAILABLE"
	ErrNonConsecutiveSlots ErrorCode = "NON_CONSECUTIVE_SLOTS"
	ErrInsufficientSlots   ErrorCode = "INSUFFICIENT_SLOTS"
	ErrInvalidHours        ErrorCode = "INVALID_HOURS"
	ErrNoSlots             ErrorCode = "NO_SLOTS"
	ErrBookingNotFound     ErrorCode = "BOOKING_NOT_FOUND"
	ErrPartialUpdate       ErrorCode = "PARTIAL_UPDATE_FAILURE"
	ErrGateway             ErrorCode = "GATEWAY_ERROR"
	ErrStorageTransient    ErrorCode = "STORAGE_TRANSIENT_ERROR"
)

// AppError is the error type carried across service boundaries. Code drives
// the HTTP mapping in the base controller, Message is user-facing, Err keeps
// the underlying cause for logs, Details carries structured context such as
// the offending slot ids.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
	Details any       `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// WithDetails attaches structured context and returns the same error for
// chaining.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}
