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

// ---- Reconciliation (REC) ----

// ErrMalformedEvent marks an unparseable or unsigned settlement payload.
// Rejected outright, never retried.
func ErrMalformedEvent(err error) *AppError {
	return Wrap("REC_001", "Malformed settlement event", http.StatusBadRequest, err)
}

// ErrUnknownCorrelation marks an event whose correlation key matches no
// pending payment. The event is quarantined for the polling fallback, so the
// caller is told "accepted" rather than given a hard failure.
func ErrUnknownCorrelation(key string) *AppError {
	return New("REC_002", fmt.Sprintf("No pending payment for correlation key %s", key), http.StatusAccepted)
}

// ErrReconciliationConflict marks a terminal-state mismatch between the
// ledger and a provider report. Requires operator review, never auto-resolved.
func ErrReconciliationConflict(key string) *AppError {
	return New("REC_003", fmt.Sprintf("Conflicting terminal outcome for correlation key %s", key), http.StatusConflict)
}

// ---- Provider Gateway (PRV) ----

// ErrProviderUnavailable marks a transient provider failure (timeout, 5xx,
// connection refused). The true outcome is unknown; retried by the poller.
func ErrProviderUnavailable(provider string, err error) *AppError {
	return Wrap("PRV_001", fmt.Sprintf("Provider %s unavailable", provider), http.StatusServiceUnavailable, err)
}

// ErrProviderInvalidRequest marks a request the provider deemed malformed.
func ErrProviderInvalidRequest(provider string, err error) *AppError {
	return Wrap("PRV_002", fmt.Sprintf("Provider %s rejected the request as invalid", provider), http.StatusBadRequest, err)
}

// ErrProviderRejected marks a business-level rejection (e.g. payer cancelled,
// insufficient funds on the payer side).
func ErrProviderRejected(provider string, desc string) *AppError {
	return New("PRV_003", fmt.Sprintf("Provider %s rejected the payment: %s", provider, desc), http.StatusUnprocessableEntity)
}

func ErrInvalidSignature() *AppError {
	return New("PRV_004", "Invalid webhook signature", http.StatusUnauthorized)
}

func ErrUnknownProvider(name string) *AppError {
	return New("PRV_005", fmt.Sprintf("Unknown payment provider %q", name), http.StatusNotFound)
}

// ---- Ledger (LED) ----

// ErrLedgerWriteFailure marks an aborted atomic scope. No partial state
// exists, so the settlement event is safe to re-apply.
func ErrLedgerWriteFailure(err error) *AppError {
	return Wrap("LED_001", "Ledger write failed", http.StatusInternalServerError, err)
}

func ErrNotFound(entity string) *AppError {
	return New("LED_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidAmount() *AppError {
	return New("LED_003", "Invalid amount", http.StatusBadRequest)
}

// ---- Identity (IDN) ----

func ErrInvalidToken() *AppError {
	return New("IDN_001", "Invalid or expired identity token", http.StatusUnauthorized)
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

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("SYS_002", message, http.StatusBadRequest)
}
