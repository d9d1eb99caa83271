package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("LED_003", "Invalid amount", http.StatusBadRequest),
			expected: "[LED_003] Invalid amount",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("LED_003", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestReconciliationErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"MalformedEvent", ErrMalformedEvent(fmt.Errorf("bad json")), "REC_001", 400},
		{"UnknownCorrelation", ErrUnknownCorrelation("REQ1_1700000000000"), "REC_002", 202},
		{"ReconciliationConflict", ErrReconciliationConflict("REQ1_1700000000000"), "REC_003", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestProviderErrors(t *testing.T) {
	inner := fmt.Errorf("dial tcp: i/o timeout")

	unavailable := ErrProviderUnavailable("mpesa", inner)
	assert.Equal(t, "PRV_001", unavailable.Code)
	assert.Equal(t, 503, unavailable.HTTPStatus)
	assert.True(t, errors.Is(unavailable, inner))
	assert.Contains(t, unavailable.Message, "mpesa")

	invalid := ErrProviderInvalidRequest("flow", fmt.Errorf("missing amount"))
	assert.Equal(t, "PRV_002", invalid.Code)
	assert.Equal(t, 400, invalid.HTTPStatus)

	rejected := ErrProviderRejected("mpesa", "Request cancelled by user")
	assert.Equal(t, "PRV_003", rejected.Code)
	assert.Equal(t, 422, rejected.HTTPStatus)
	assert.Contains(t, rejected.Message, "cancelled")

	sig := ErrInvalidSignature()
	assert.Equal(t, "PRV_004", sig.Code)
	assert.Equal(t, 401, sig.HTTPStatus)

	unknown := ErrUnknownProvider("paypal")
	assert.Equal(t, "PRV_005", unknown.Code)
	assert.Equal(t, 404, unknown.HTTPStatus)
}

func TestLedgerErrors(t *testing.T) {
	inner := fmt.Errorf("pg: deadlock detected")
	writeErr := ErrLedgerWriteFailure(inner)
	assert.Equal(t, "LED_001", writeErr.Code)
	assert.Equal(t, 500, writeErr.HTTPStatus)
	assert.True(t, errors.Is(writeErr, inner))

	notFound := ErrNotFound("Donation")
	assert.Equal(t, "LED_002", notFound.Code)
	assert.Equal(t, 404, notFound.HTTPStatus)
	assert.Contains(t, notFound.Message, "Donation")

	amount := ErrInvalidAmount()
	assert.Equal(t, "LED_003", amount.Code)
	assert.Equal(t, 400, amount.HTTPStatus)
}

func TestIdentityError(t *testing.T) {
	err := ErrInvalidToken()
	assert.Equal(t, "IDN_001", err.Code)
	assert.Equal(t, 401, err.HTTPStatus)
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	sysErr := InternalError(inner)
	assert.Equal(t, "SYS_001", sysErr.Code)
	assert.Equal(t, 500, sysErr.HTTPStatus)
	assert.True(t, errors.Is(sysErr, inner))

	valErr := Validation("amount is required")
	assert.Equal(t, "SYS_002", valErr.Code)
	assert.Equal(t, 400, valErr.HTTPStatus)
}
