package postgres

import (
	"context"
	"errors"
	"fmt"

	"donation-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// DonationRepo implements ports.DonationRepository.
type DonationRepo struct {
	pool Pool
}

// NewDonationRepo creates a new DonationRepo.
func NewDonationRepo(pool Pool) *DonationRepo {
	return &DonationRepo{pool: pool}
}

const donationColumns = `id, request_id, giver_id, receiver_id, amount, invoice, status, created_at, updated_at`

// Create inserts a new donation within a database transaction.
func (r *DonationRepo) Create(ctx context.Context, tx pgx.Tx, d *domain.Donation) error {
	query := `INSERT INTO donations (` + donationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		d.ID, d.RequestID, d.GiverID, d.ReceiverID, d.Amount,
		d.Invoice, d.Status, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

// GetByInvoice fetches a donation by its invoice (correlation key).
func (r *DonationRepo) GetByInvoice(ctx context.Context, invoice string) (*domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE invoice = $1`

	d := &domain.Donation{}
	err := r.pool.QueryRow(ctx, query, invoice).Scan(
		&d.ID, &d.RequestID, &d.GiverID, &d.ReceiverID, &d.Amount,
		&d.Invoice, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get donation by invoice: %w", err)
	}
	return d, nil
}

// Transition performs the compare-and-swap status update keyed by invoice,
// with the same semantics as PaymentRepo.Transition.
func (r *DonationRepo) Transition(ctx context.Context, tx pgx.Tx, invoice string, from, to domain.DonationStatus) (domain.TransitionOutcome, error) {
	query := `UPDATE donations SET status = $1, updated_at = NOW()
		WHERE invoice = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, to, invoice, from)
	if err != nil {
		return domain.TransitionNotFound, fmt.Errorf("transition donation: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return domain.TransitionApplied, nil
	}

	var current domain.DonationStatus
	err = tx.QueryRow(ctx, `SELECT status FROM donations WHERE invoice = $1`, invoice).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TransitionNotFound, nil
		}
		return domain.TransitionNotFound, fmt.Errorf("read donation status after missed cas: %w", err)
	}
	if current == to {
		return domain.TransitionNoOp, nil
	}
	return domain.TransitionConflict, nil
}
