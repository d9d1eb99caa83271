package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- SanitizeStruct tests ---

func TestSanitizeStruct_TrimsWhitespace(t *testing.T) {
	req := DonateRequest{
		RequestID:  "  req-001  ",
		ReceiverID: " 7f6c3a9e-0000-0000-0000-000000000001 ",
		Provider:   " mpesa ",
	}
	SanitizeStruct(&req)

	assert.Equal(t, "req-001", req.RequestID)
	assert.Equal(t, "7f6c3a9e-0000-0000-0000-000000000001", req.ReceiverID)
	assert.Equal(t, "mpesa", req.Provider)
}

func TestSanitizeStruct_EscapesHTML(t *testing.T) {
	req := DonateRequest{
		RequestID: "req<script>alert('x')</script>",
	}
	SanitizeStruct(&req)

	assert.Contains(t, req.RequestID, "&lt;script&gt;")
	assert.NotContains(t, req.RequestID, "<script>")
}

func TestSanitizeStruct_HandlesPointerString(t *testing.T) {
	phone := "  +254700000001  "
	req := DonateRequest{
		RequestID:  "req-002",
		PayerPhone: &phone,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "+254700000001", *req.PayerPhone)
}

func TestSanitizeStruct_NilPointerIsNoOp(t *testing.T) {
	req := DonateRequest{RequestID: "req-003"}
	SanitizeStruct(&req)

	assert.Nil(t, req.PayerPhone)
	assert.Nil(t, req.PayerEmail)
}

func TestSanitizeStruct_NonPointerIsNoOp(t *testing.T) {
	req := DonateRequest{RequestID: " req-004 "}
	SanitizeStruct(req) // passed by value; must not panic

	assert.Equal(t, " req-004 ", req.RequestID)
}

// --- safe_id validator tests ---

func TestValidateSafeID(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"req-001", true},
		{"REQ_001.v2", true},
		{"abc123", true},
		{"req 001", false},
		{"req;drop", false},
		{"req/../etc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.valid, safeStringRe.MatchString(tt.input))
		})
	}
}
