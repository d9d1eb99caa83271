package domain

import (
	"time"

	"github.com/google/uuid"
)

// PointsAward credits points to a giver for one completed payment. The
// PaymentID link is unique, which doubles as the idempotency guard against
// double-awarding.
type PointsAward struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	PaymentID uuid.UUID `json:"payment_id"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStats is a projection of donation counters and the level derived from
// total points. Rebuildable from payments and points awards.
type UserStats struct {
	UserID            uuid.UUID `json:"user_id"`
	DonationsGiven    int64     `json:"donations_given"`
	DonationsReceived int64     `json:"donations_received"`
	TotalPoints       int64     `json:"total_points"`
	Level             int       `json:"level"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PointsFor converts a credited amount to points: floor(amount / unit).
func PointsFor(amount, unit int64) int64 {
	if unit <= 0 {
		return 0
	}
	return amount / unit
}

// LevelFromPoints maps total points to a level via a monotonic step function.
// thresholds[i] is the minimum points for level i+1; thresholds must be
// ascending. Levels start at 1.
func LevelFromPoints(total int64, thresholds []int64) int {
	level := 1
	for i, min := range thresholds {
		if total >= min {
			level = i + 1
		}
	}
	return level
}
