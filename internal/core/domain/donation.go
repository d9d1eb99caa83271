package domain

import (
	"time"

	"github.com/google/uuid"
)

// DonationStatus mirrors PaymentStatus for the giver-facing record.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "PENDING"
	DonationStatusCompleted DonationStatus = "COMPLETED"
	DonationStatusFailed    DonationStatus = "FAILED"
)

// Donation is the giver-facing record of a contribution toward a help
// request. Invoice carries the correlation key; status transitions to a
// terminal state exactly once, driven by the reconciliation engine.
type Donation struct {
	ID         uuid.UUID      `json:"id"`
	RequestID  uuid.UUID      `json:"request_id"` // the help request being funded
	GiverID    uuid.UUID      `json:"giver_id"`
	ReceiverID uuid.UUID      `json:"receiver_id"`
	Amount     int64          `json:"amount"` // minor units
	Invoice    string         `json:"invoice"`
	Status     DonationStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// IsTerminal returns true if the donation is in a final state.
func (d *Donation) IsTerminal() bool {
	return d.Status == DonationStatusCompleted || d.Status == DonationStatusFailed
}
