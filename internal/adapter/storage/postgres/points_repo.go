package postgres

import (
	"context"
	"fmt"

	"donation-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PointsRepo implements ports.PointsRepository.
type PointsRepo struct {
	pool Pool
}

// NewPointsRepo creates a new PointsRepo.
func NewPointsRepo(pool Pool) *PointsRepo {
	return &PointsRepo{pool: pool}
}

// Award inserts a points award unless one already exists for the payment.
// UNIQUE(payment_id) makes re-application under retries a no-op.
func (r *PointsRepo) Award(ctx context.Context, tx pgx.Tx, a *domain.PointsAward) (bool, error) {
	query := `INSERT INTO points_awards (id, user_id, payment_id, points, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (payment_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query, a.ID, a.UserID, a.PaymentID, a.Points, a.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert points award: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// TotalForUser sums awarded points inside the caller's transaction.
func (r *PointsRepo) TotalForUser(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(points), 0) FROM points_awards WHERE user_id = $1`

	var total int64
	if err := tx.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum points: %w", err)
	}
	return total, nil
}
