package postgres

import (
	"context"
	"errors"
	"fmt"

	"donation-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StatsRepo implements ports.StatsRepository.
type StatsRepo struct {
	pool Pool
}

// NewStatsRepo creates a new StatsRepo.
func NewStatsRepo(pool Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

// Get fetches the stats projection for a user.
func (r *StatsRepo) Get(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	query := `SELECT user_id, donations_given, donations_received, total_points, level, updated_at
		FROM user_stats WHERE user_id = $1`

	s := &domain.UserStats{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.DonationsGiven, &s.DonationsReceived, &s.TotalPoints, &s.Level, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return s, nil
}

// IncrementCounters bumps the giver's given count and the receiver's received
// count within the settlement transaction.
func (r *StatsRepo) IncrementCounters(ctx context.Context, tx pgx.Tx, giverID, receiverID uuid.UUID) error {
	giverQuery := `INSERT INTO user_stats (user_id, donations_given, donations_received, total_points, level, updated_at)
		VALUES ($1, 1, 0, 0, 1, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET donations_given = user_stats.donations_given + 1, updated_at = NOW()`
	if _, err := tx.Exec(ctx, giverQuery, giverID); err != nil {
		return fmt.Errorf("increment giver counter: %w", err)
	}

	receiverQuery := `INSERT INTO user_stats (user_id, donations_given, donations_received, total_points, level, updated_at)
		VALUES ($1, 0, 1, 0, 1, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET donations_received = user_stats.donations_received + 1, updated_at = NOW()`
	if _, err := tx.Exec(ctx, receiverQuery, receiverID); err != nil {
		return fmt.Errorf("increment receiver counter: %w", err)
	}
	return nil
}

// SetPointsAndLevel stores recomputed totals. GREATEST keeps the stored level
// monotonic even if thresholds are retuned downward.
func (r *StatsRepo) SetPointsAndLevel(ctx context.Context, tx pgx.Tx, userID uuid.UUID, totalPoints int64, level int) error {
	query := `UPDATE user_stats
		SET total_points = $1, level = GREATEST(level, $2), updated_at = NOW()
		WHERE user_id = $3`

	tag, err := tx.Exec(ctx, query, totalPoints, level, userID)
	if err != nil {
		return fmt.Errorf("set points and level: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user stats row not found: %s", userID)
	}
	return nil
}
