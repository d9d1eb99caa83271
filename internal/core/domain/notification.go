package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies in-app notifications emitted by the projector.
type NotificationType string

const (
	NotificationDonationReceived NotificationType = "DONATION_RECEIVED"
	NotificationDonationSent     NotificationType = "DONATION_SENT"
	NotificationLevelUp          NotificationType = "LEVEL_UP"
)

// Notification is a best-effort side effect of a successful settlement.
// It is never required for ledger correctness.
type Notification struct {
	ID         uuid.UUID        `json:"id"`
	Recipient  uuid.UUID        `json:"recipient"`
	Issuer     uuid.UUID        `json:"issuer"`
	Type       NotificationType `json:"type"`
	RequestID  *uuid.UUID       `json:"request_id,omitempty"`
	DonationID *uuid.UUID       `json:"donation_id,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}
