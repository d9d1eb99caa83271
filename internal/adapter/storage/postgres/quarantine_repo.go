package postgres

import (
	"context"
	"fmt"

	"donation-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// QuarantineRepo implements ports.QuarantineRepository.
type QuarantineRepo struct {
	pool Pool
}

// NewQuarantineRepo creates a new QuarantineRepo.
func NewQuarantineRepo(pool Pool) *QuarantineRepo {
	return &QuarantineRepo{pool: pool}
}

// Add stores an event whose correlation key matched nothing yet. Re-delivery
// of an already parked key is a no-op; one parked row per key is enough.
func (r *QuarantineRepo) Add(ctx context.Context, q *domain.QuarantinedEvent) error {
	query := `INSERT INTO quarantined_events
		(id, correlation_key, provider, source, outcome, result_code, result_desc, amount, raw_payload, received_at, attempts, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (correlation_key) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		q.ID, q.CorrelationKey, q.Provider, q.Source, q.Outcome,
		q.ResultCode, q.ResultDesc, q.Amount, q.RawPayload,
		q.ReceivedAt, q.Attempts, q.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quarantined event: %w", err)
	}
	return nil
}

// ListUnresolved fetches events waiting for their payment row, oldest first.
func (r *QuarantineRepo) ListUnresolved(ctx context.Context, limit int) ([]domain.QuarantinedEvent, error) {
	query := `SELECT id, correlation_key, provider, source, outcome, result_code, result_desc, amount, raw_payload, received_at, attempts, resolved_at
		FROM quarantined_events WHERE resolved_at IS NULL
		ORDER BY received_at ASC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list quarantined events: %w", err)
	}
	defer rows.Close()

	var out []domain.QuarantinedEvent
	for rows.Next() {
		q := domain.QuarantinedEvent{}
		err := rows.Scan(
			&q.ID, &q.CorrelationKey, &q.Provider, &q.Source, &q.Outcome,
			&q.ResultCode, &q.ResultDesc, &q.Amount, &q.RawPayload,
			&q.ReceivedAt, &q.Attempts, &q.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan quarantined event: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quarantined events: %w", err)
	}
	return out, nil
}

// MarkResolved timestamps an event once it has been reconciled.
func (r *QuarantineRepo) MarkResolved(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE quarantined_events SET resolved_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark quarantined event resolved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quarantined event not found: %s", id)
	}
	return nil
}

// IncrementAttempts counts a failed re-reconciliation pass.
func (r *QuarantineRepo) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE quarantined_events SET attempts = attempts + 1 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("increment quarantine attempts: %w", err)
	}
	return nil
}
