package postgres

import (
	"context"
	"errors"
	"fmt"

	"donation-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

const paymentColumns = `id, provider, rail, correlation_key, provider_ref, amount, currency,
		result_code, result_desc, status, sender_id, created_at, settled_at`

// Create inserts a new payment within a database transaction.
func (r *PaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.Provider, p.Rail, p.CorrelationKey, p.ProviderRef,
		p.Amount, p.Currency, p.ResultCode, p.ResultDesc, p.Status,
		p.SenderID, p.CreatedAt, p.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByCorrelationKey fetches a payment by its correlation key.
func (r *PaymentRepo) GetByCorrelationKey(ctx context.Context, key string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE correlation_key = $1`
	return r.scanPayment(r.pool.QueryRow(ctx, query, key))
}

// GetByID fetches a payment by UUID.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanPayment(r.pool.QueryRow(ctx, query, id))
}

// SetProviderRef stores the provider-side reference after initiation.
func (r *PaymentRepo) SetProviderRef(ctx context.Context, correlationKey, providerRef string) error {
	query := `UPDATE payments SET provider_ref = $1 WHERE correlation_key = $2`
	_, err := r.pool.Exec(ctx, query, providerRef, correlationKey)
	if err != nil {
		return fmt.Errorf("set provider ref: %w", err)
	}
	return nil
}

// Transition performs the compare-and-swap status update. The conditional
// UPDATE serializes racing settlement channels per correlation key: the first
// to match `status = from` wins, everyone else falls into the re-read.
func (r *PaymentRepo) Transition(ctx context.Context, tx pgx.Tx, correlationKey string, from, to domain.PaymentStatus, resultCode, resultDesc string) (domain.TransitionOutcome, error) {
	query := `UPDATE payments
		SET status = $1, result_code = $2, result_desc = $3, settled_at = NOW()
		WHERE correlation_key = $4 AND status = $5`

	tag, err := tx.Exec(ctx, query, to, resultCode, resultDesc, correlationKey, from)
	if err != nil {
		return domain.TransitionNotFound, fmt.Errorf("transition payment: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return domain.TransitionApplied, nil
	}

	// CAS missed: distinguish idempotent re-delivery from a real conflict.
	var current domain.PaymentStatus
	err = tx.QueryRow(ctx, `SELECT status FROM payments WHERE correlation_key = $1`, correlationKey).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TransitionNotFound, nil
		}
		return domain.TransitionNotFound, fmt.Errorf("read payment status after missed cas: %w", err)
	}
	if current == to {
		return domain.TransitionNoOp, nil
	}
	return domain.TransitionConflict, nil
}

// scanPayment is a helper to scan a single row into a Payment.
func (r *PaymentRepo) scanPayment(row pgx.Row) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(
		&p.ID, &p.Provider, &p.Rail, &p.CorrelationKey, &p.ProviderRef,
		&p.Amount, &p.Currency, &p.ResultCode, &p.ResultDesc, &p.Status,
		&p.SenderID, &p.CreatedAt, &p.SettledAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return p, nil
}
