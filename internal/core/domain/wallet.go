package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a member's balance in minor units. One row per user, created
// lazily on first credit. The balance is never written directly: every change
// goes through an atomic delta paired with a LedgerEntry, so the balance is
// reconstructable by replaying entries.
type Wallet struct {
	UserID    uuid.UUID `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LedgerEntry is an immutable, append-only record of value movement between
// a giver and a receiver. Never updated or deleted.
type LedgerEntry struct {
	ID             uuid.UUID `json:"id"`
	GiverID        uuid.UUID `json:"giver_id"`
	ReceiverID     uuid.UUID `json:"receiver_id"`
	Amount         int64     `json:"amount"`
	CorrelationKey string    `json:"correlation_key"`
	CreatedAt      time.Time `json:"created_at"`
}
