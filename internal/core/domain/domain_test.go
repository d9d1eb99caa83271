package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPayment_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status PaymentStatus
		want   bool
	}{
		{"pending", PaymentStatusPending, false},
		{"completed", PaymentStatusCompleted, true},
		{"failed", PaymentStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payment{Status: tt.status}
			assert.Equal(t, tt.want, p.IsTerminal())
		})
	}
}

func TestDonation_IsTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status DonationStatus
		want   bool
	}{
		{"pending", DonationStatusPending, false},
		{"completed", DonationStatusCompleted, true},
		{"failed", DonationStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Donation{Status: tt.status}
			assert.Equal(t, tt.want, d.IsTerminal())
		})
	}
}

func TestBuildCorrelationKey(t *testing.T) {
	requestID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	at := time.UnixMilli(1700000000000)

	key := BuildCorrelationKey(requestID, at)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000_1700000000000", key)

	// Stable for the same inputs, distinct per attempt timestamp.
	assert.Equal(t, key, BuildCorrelationKey(requestID, at))
	assert.NotEqual(t, key, BuildCorrelationKey(requestID, at.Add(time.Millisecond)))
}

func TestPointsFor(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		unit   int64
		want   int64
	}{
		{"exact multiple", 500, 50, 10},
		{"floors remainder", 549, 50, 10},
		{"below one unit", 49, 50, 0},
		{"zero unit guard", 500, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PointsFor(tt.amount, tt.unit))
		})
	}
}

func TestLevelFromPoints(t *testing.T) {
	thresholds := []int64{0, 100, 500, 1500, 5000}

	tests := []struct {
		name  string
		total int64
		want  int
	}{
		{"zero points", 0, 1},
		{"just below level 2", 99, 1},
		{"level 2 boundary", 100, 2},
		{"mid level 3", 700, 3},
		{"level 5", 5000, 5},
		{"beyond top threshold", 100000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFromPoints(tt.total, thresholds))
		})
	}
}

func TestLevelFromPoints_Monotonic(t *testing.T) {
	thresholds := []int64{0, 100, 500, 1500, 5000}

	prev := 0
	for total := int64(0); total <= 6000; total += 37 {
		level := LevelFromPoints(total, thresholds)
		assert.GreaterOrEqual(t, level, prev, "level must never decrease as points grow")
		prev = level
	}
}

func TestQuarantinedEvent_Event(t *testing.T) {
	q := &QuarantinedEvent{
		CorrelationKey: "req_1700000000000",
		Provider:       ProviderMpesa,
		Source:         SourceWebhook,
		Outcome:        OutcomeSuccess,
		ResultCode:     "0",
		ResultDesc:     "Success",
		Amount:         500,
		ReceivedAt:     time.Now(),
	}

	ev := q.Event()
	assert.Equal(t, q.CorrelationKey, ev.CorrelationKey)
	assert.Equal(t, OutcomeSuccess, ev.Outcome)
	assert.Equal(t, int64(500), ev.Amount)
	assert.Equal(t, SourceWebhook, ev.Source)
}

func TestTransitionOutcome_String(t *testing.T) {
	assert.Equal(t, "APPLIED", TransitionApplied.String())
	assert.Equal(t, "NOOP", TransitionNoOp.String())
	assert.Equal(t, "CONFLICT", TransitionConflict.String())
	assert.Equal(t, "NOT_FOUND", TransitionNotFound.String())
}
