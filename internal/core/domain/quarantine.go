package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuarantinedEvent stores a settlement event whose correlation key matched no
// pending payment at delivery time. Webhook delivery can race the local
// "create donation" commit, so these are kept and re-fed by the polling
// fallback instead of being discarded.
type QuarantinedEvent struct {
	ID             uuid.UUID        `json:"id"`
	CorrelationKey string           `json:"correlation_key"`
	Provider       Provider         `json:"provider"`
	Source         SettlementSource `json:"source"`
	Outcome        Outcome          `json:"outcome"`
	ResultCode     string           `json:"result_code"`
	ResultDesc     string           `json:"result_desc"`
	Amount         int64            `json:"amount"`
	RawPayload     []byte           `json:"raw_payload,omitempty"`
	ReceivedAt     time.Time        `json:"received_at"`
	Attempts       int              `json:"attempts"`
	ResolvedAt     *time.Time       `json:"resolved_at,omitempty"`
}

// Event rebuilds the settlement event for re-reconciliation.
func (q *QuarantinedEvent) Event() SettlementEvent {
	return SettlementEvent{
		Source:         q.Source,
		Provider:       q.Provider,
		CorrelationKey: q.CorrelationKey,
		Outcome:        q.Outcome,
		ResultCode:     q.ResultCode,
		ResultDesc:     q.ResultDesc,
		Amount:         q.Amount,
		RawPayload:     q.RawPayload,
		ReceivedAt:     q.ReceivedAt,
	}
}

// ReconciliationConflict records a terminal-state mismatch: the ledger says
// one outcome, a later provider report says another. Financial state is never
// auto-overwritten; rows sit here until an operator reviews them.
type ReconciliationConflict struct {
	ID              uuid.UUID        `json:"id"`
	CorrelationKey  string           `json:"correlation_key"`
	ExistingStatus  PaymentStatus    `json:"existing_status"`
	ReportedOutcome Outcome          `json:"reported_outcome"`
	Source          SettlementSource `json:"source"`
	RawPayload      []byte           `json:"raw_payload,omitempty"`
	DetectedAt      time.Time        `json:"detected_at"`
	Reviewed        bool             `json:"reviewed"`
}
