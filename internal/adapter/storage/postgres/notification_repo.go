package postgres

import (
	"context"
	"fmt"

	"donation-ledger/internal/core/domain"

	"github.com/google/uuid"
)

// NotificationRepo implements ports.NotificationRepository. Writes happen
// after the settlement commits; a failed insert is logged by the caller and
// never rolls back financial state.
type NotificationRepo struct {
	pool Pool
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(pool Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (id, recipient_id, issuer_id, type, request_id, donation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query, n.ID, n.Recipient, n.Issuer, n.Type, n.RequestID, n.DonationID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByRecipient fetches the newest notifications for a user.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipient uuid.UUID, limit int) ([]domain.Notification, error) {
	query := `SELECT id, recipient_id, issuer_id, type, request_id, donation_id, created_at
		FROM notifications WHERE recipient_id = $1
		ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, recipient, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		n := domain.Notification{}
		if err := rows.Scan(&n.ID, &n.Recipient, &n.Issuer, &n.Type, &n.RequestID, &n.DonationID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}
