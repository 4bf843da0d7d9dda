package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidPrice      = errors.New("invalid_price")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrInvalidLeadType   = errors.New("invalid_lead_type")
	ErrDuplicatePending  = errors.New("duplicate_pending_appointment")
	ErrPendingLimit      = errors.New("pending_appointment_limit")
	ErrBatchChanged      = errors.New("batch_changed_concurrently")
	ErrQueueFull         = errors.New("queue_full")
	ErrQueueClosed       = errors.New("queue_closed")
	ErrRateLimitExceeded = errors.New("rate_limit_exceeded")

	// For external service failures (e.g., Twilio, SendGrid, Telegram)
	ErrExternalServiceFailure = errors.New("external_service_failure")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidationError(msg string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: ErrCodeValidation, Message: msg, Err: err}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{StatusCode: http.StatusNotFound, Code: ErrCodeNotFound, Message: msg, Err: ErrNotFound}
}

func NewForbiddenError(msg string) *AppError {
	return &AppError{StatusCode: http.StatusForbidden, Code: ErrCodeForbidden, Message: msg}
}

func NewRateLimitError(msg string) *AppError {
	return &AppError{StatusCode: http.StatusTooManyRequests, Code: ErrCodeRateLimitExceeded, Message: msg, Err: ErrRateLimitExceeded}
}

func NewInternalError(err error) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Code: ErrCodeInternal, Message: "An unexpected error occurred", Err: err}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
