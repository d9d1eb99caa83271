package ports

import (
	"context"
	"time"

	"donation-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Disposition summarizes what the reconciliation engine did with an event.
type Disposition string

const (
	// DispositionApplied: a Success event moved the pair to COMPLETED and
	// credited the ledger.
	DispositionApplied Disposition = "APPLIED"
	// DispositionFailed: a Failure event moved the pair to FAILED.
	DispositionFailed Disposition = "FAILED"
	// DispositionDuplicate: the pair was already terminal with the same
	// outcome; nothing re-applied.
	DispositionDuplicate Disposition = "DUPLICATE"
	// DispositionConflict: the event contradicts the recorded terminal state.
	DispositionConflict Disposition = "CONFLICT"
	// DispositionQuarantined: no pending pair matched the correlation key.
	DispositionQuarantined Disposition = "QUARANTINED"
	// DispositionIgnored: the event reported Pending; no state change.
	DispositionIgnored Disposition = "IGNORED"
)

// ReconcileResult is what the engine reports back to the delivering channel.
type ReconcileResult struct {
	Disposition    Disposition          `json:"disposition"`
	CorrelationKey string               `json:"correlation_key"`
	Status         domain.PaymentStatus `json:"status,omitempty"`
}

// ReconciliationService consumes normalized settlement events and applies
// them to the ledger under the idempotency/ordering contract.
type ReconciliationService interface {
	Reconcile(ctx context.Context, event domain.SettlementEvent) (*ReconcileResult, error)
}

// InitiationService creates the PENDING Payment/Donation pair and issues the
// outbound provider call.
type InitiationService interface {
	InitiateDonation(ctx context.Context, req InitiationRequest) (*InitiationResult, error)
}

// InitiationRequest holds validated input for starting a donation.
type InitiationRequest struct {
	RequestID  uuid.UUID // the help request being funded
	GiverID    uuid.UUID
	ReceiverID uuid.UUID
	Amount     int64
	Currency   string
	Provider   domain.Provider
	PayerPhone string // push and till rails
	PayerEmail string // redirect rail
}

// InitiationResult is returned synchronously to the caller.
type InitiationResult struct {
	CorrelationKey   string               `json:"correlation_key"`
	ProviderRef      string               `json:"provider_ref"`
	CheckoutURL      string               `json:"checkout_url,omitempty"`      // redirect rail
	PushConfirmation string               `json:"push_confirmation,omitempty"` // push rail
	Status           domain.PaymentStatus `json:"status"`
}

// ProjectorService derives donation counters, points, level and notifications
// from a successful settlement. Project runs inside the settlement's atomic
// scope; Notify runs after commit and is best-effort.
type ProjectorService interface {
	Project(ctx context.Context, tx pgx.Tx, payment *domain.Payment, donation *domain.Donation) error
	Notify(ctx context.Context, payment *domain.Payment, donation *domain.Donation)
}

// ReportingService answers user-facing status and statement queries.
type ReportingService interface {
	DonationStatus(ctx context.Context, correlationKey string) (*DonationStatusResult, error)
	WalletStatement(ctx context.Context, userID uuid.UUID) (*WalletStatement, error)
	UserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)
}

// DonationStatusResult is the UI polling view of a donation. Internal
// conflict/quarantine states are never exposed here.
type DonationStatusResult struct {
	Status  domain.DonationStatus `json:"status"`
	Amount  int64                 `json:"amount"`
	Message string                `json:"message"`
}

// WalletStatement is a balance plus the entries that produced it.
type WalletStatement struct {
	UserID  uuid.UUID            `json:"user_id"`
	Balance int64                `json:"balance"`
	Entries []domain.LedgerEntry `json:"entries"`
}

// SettlementCache is the Redis-layer fast path in front of the authoritative
// DB check: recently reconciled results keyed by correlation key.
type SettlementCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // cached ReconcileResult JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SignatureService handles HMAC signing and verification of webhook payloads.
type SignatureService interface {
	Sign(secret string, payload []byte) string
	Verify(secret string, payload []byte, signature string) bool
}

// Identity is the verified caller identity supplied by the external identity
// service.
type Identity struct {
	UserID uuid.UUID
}

// IdentityVerifier validates tokens issued by the external identity service.
// This service never issues tokens.
type IdentityVerifier interface {
	Verify(tokenString string) (*Identity, error)
}
