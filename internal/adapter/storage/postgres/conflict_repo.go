package postgres

import (
	"context"
	"fmt"

	"donation-ledger/internal/core/domain"
)

// ConflictRepo implements ports.ConflictRepository. Conflicts are the
// operator queue: recorded, listed, never auto-resolved.
type ConflictRepo struct {
	pool Pool
}

// NewConflictRepo creates a new ConflictRepo.
func NewConflictRepo(pool Pool) *ConflictRepo {
	return &ConflictRepo{pool: pool}
}

// Record stores a terminal-state mismatch.
func (r *ConflictRepo) Record(ctx context.Context, c *domain.ReconciliationConflict) error {
	query := `INSERT INTO reconciliation_conflicts
		(id, correlation_key, existing_status, reported_outcome, source, raw_payload, detected_at, reviewed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.CorrelationKey, c.ExistingStatus, c.ReportedOutcome,
		c.Source, c.RawPayload, c.DetectedAt, c.Reviewed,
	)
	if err != nil {
		return fmt.Errorf("insert reconciliation conflict: %w", err)
	}
	return nil
}

// ListUnreviewed fetches conflicts awaiting an operator, oldest first.
func (r *ConflictRepo) ListUnreviewed(ctx context.Context, limit int) ([]domain.ReconciliationConflict, error) {
	query := `SELECT id, correlation_key, existing_status, reported_outcome, source, raw_payload, detected_at, reviewed
		FROM reconciliation_conflicts WHERE reviewed = FALSE
		ORDER BY detected_at ASC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list reconciliation conflicts: %w", err)
	}
	defer rows.Close()

	var out []domain.ReconciliationConflict
	for rows.Next() {
		c := domain.ReconciliationConflict{}
		err := rows.Scan(
			&c.ID, &c.CorrelationKey, &c.ExistingStatus, &c.ReportedOutcome,
			&c.Source, &c.RawPayload, &c.DetectedAt, &c.Reviewed,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reconciliation conflict: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reconciliation conflicts: %w", err)
	}
	return out, nil
}
