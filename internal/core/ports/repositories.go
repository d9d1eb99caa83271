package ports

import (
	"context"

	"donation-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentRepository defines persistence operations for payments.
// Methods accepting pgx.Tx participate in the caller's atomic scope.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
	GetByCorrelationKey(ctx context.Context, key string) (*domain.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	// SetProviderRef stores the provider-side reference once initiation
	// succeeds.
	SetProviderRef(ctx context.Context, correlationKey, providerRef string) error
	// Transition performs a compare-and-swap status update: it applies only if
	// the current status equals from. The outcome distinguishes an idempotent
	// re-delivery (NoOp) from a genuine terminal-state conflict.
	Transition(ctx context.Context, tx pgx.Tx, correlationKey string, from, to domain.PaymentStatus, resultCode, resultDesc string) (domain.TransitionOutcome, error)
}

// DonationRepository defines persistence operations for donations,
// keyed by invoice (the correlation key).
type DonationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, donation *domain.Donation) error
	GetByInvoice(ctx context.Context, invoice string) (*domain.Donation, error)
	Transition(ctx context.Context, tx pgx.Tx, invoice string, from, to domain.DonationStatus) (domain.TransitionOutcome, error)
}

// WalletRepository defines persistence operations for wallets.
type WalletRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
	// Credit creates the wallet at zero if absent, applies the delta and
	// returns the new balance. Must run inside the settlement's atomic scope.
	Credit(ctx context.Context, tx pgx.Tx, userID uuid.UUID, delta int64) (int64, error)
}

// LedgerRepository is the append-only audit trail of value movement.
type LedgerRepository interface {
	Record(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.LedgerEntry, error)
	// SumByUser returns credits minus debits for replay verification.
	SumByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// PointsRepository defines persistence for points awards.
type PointsRepository interface {
	// Award inserts the award unless one already exists for the same payment.
	// Returns false when the award was already present.
	Award(ctx context.Context, tx pgx.Tx, award *domain.PointsAward) (bool, error)
	// TotalForUser sums awarded points inside the caller's transaction so the
	// derived level sees the award being applied.
	TotalForUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error)
}

// StatsRepository maintains the per-user projection of counters and level.
type StatsRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error)
	IncrementCounters(ctx context.Context, tx pgx.Tx, giverID, receiverID uuid.UUID) error
	// SetPointsAndLevel stores the recomputed totals. The stored level is only
	// ever raised, never lowered.
	SetPointsAndLevel(ctx context.Context, tx pgx.Tx, userID uuid.UUID, totalPoints int64, level int) error
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByRecipient(ctx context.Context, recipient uuid.UUID, limit int) ([]domain.Notification, error)
}

// QuarantineRepository stores settlement events that arrived before the
// local payment row was committed.
type QuarantineRepository interface {
	Add(ctx context.Context, event *domain.QuarantinedEvent) error
	ListUnresolved(ctx context.Context, limit int) ([]domain.QuarantinedEvent, error)
	MarkResolved(ctx context.Context, id uuid.UUID) error
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
}

// ConflictRepository stores terminal-state mismatches for operator review.
type ConflictRepository interface {
	Record(ctx context.Context, conflict *domain.ReconciliationConflict) error
	ListUnreviewed(ctx context.Context, limit int) ([]domain.ReconciliationConflict, error)
}

// DBTransactor provides database transaction management. All rows touched by
// one settlement event are written inside a single Begin/Commit scope.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
