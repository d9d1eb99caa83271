package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Provider identifies a payment rail integration.
type Provider string

const (
	ProviderMpesa Provider = "mpesa" // mobile-money push (STK-style)
	ProviderFlow  Provider = "flow"  // redirect-based card/mobile checkout
	ProviderTill  Provider = "till"  // merchant-till, settlement discovered by polling
)

// Rail classifies how a provider's settlement signal normally arrives.
type Rail string

const (
	RailPush     Rail = "PUSH"
	RailRedirect Rail = "REDIRECT"
	RailPoll     Rail = "POLL"
)

// PaymentStatus represents the lifecycle state of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment represents one initiation attempt against a provider. It is created
// PENDING at initiation and mutated only by the reconciliation engine;
// COMPLETED and FAILED are terminal.
type Payment struct {
	ID             uuid.UUID     `json:"id"`
	Provider       Provider      `json:"provider"`
	Rail           Rail          `json:"rail"`
	CorrelationKey string        `json:"correlation_key"`
	ProviderRef    string        `json:"provider_ref"` // provider-side reference (e.g. checkout request ID)
	Amount         int64         `json:"amount"`       // minor units
	Currency       string        `json:"currency"`
	ResultCode     *string       `json:"result_code,omitempty"`
	ResultDesc     *string       `json:"result_desc,omitempty"`
	Status         PaymentStatus `json:"status"`
	SenderID       uuid.UUID     `json:"sender_id"`
	CreatedAt      time.Time     `json:"created_at"`
	SettledAt      *time.Time    `json:"settled_at,omitempty"`
}

// IsTerminal returns true if the payment is in a final state.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusCompleted || p.Status == PaymentStatusFailed
}

// BuildCorrelationKey composes the durable key joining a Payment/Donation pair
// to inbound settlement events. Unique per initiation attempt and stable
// across verification retries.
func BuildCorrelationKey(requestID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("%s_%d", requestID.String(), at.UnixMilli())
}
