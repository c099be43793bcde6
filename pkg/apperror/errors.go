package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger Business Logic (LED) ----

// ErrValidation reports a malformed amount, kind, or description.
// Rejected before any storage access.
func ErrValidation(message string) *AppError {
	return New("LED_001", message, http.StatusUnprocessableEntity)
}

// ErrLimitExceeded reports a debit that would push the balance below the
// negative of the account's credit limit. Same caller-facing class as
// validation: unprocessable.
func ErrLimitExceeded() *AppError {
	return New("LED_002", "Debit would exceed account credit limit", http.StatusUnprocessableEntity)
}

// ErrAccountNotFound reports an account id outside the provisioned set.
func ErrAccountNotFound() *AppError {
	return New("LED_003", "Account not found", http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrContention reports that the apply retry budget was exhausted by
// storage-level write conflicts. Individual conflicts are retried internally
// and never reach the caller.
func ErrContention(err error) *AppError {
	return Wrap("SYS_002", "Transaction contention, retry later", http.StatusServiceUnavailable, err)
}
