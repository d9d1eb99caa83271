package domain

import (
	"time"
)

// SettlementSource identifies which channel delivered a settlement signal.
type SettlementSource string

const (
	SourceWebhook  SettlementSource = "WEBHOOK"
	SourceRedirect SettlementSource = "REDIRECT"
	SourcePoll     SettlementSource = "POLL"
)

// Outcome is the normalized provider verdict on a payment attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
	OutcomePending Outcome = "PENDING"
)

// SettlementEvent is the single input contract of the reconciliation engine:
// a normalized report that a payment attempt succeeded, failed or is still
// pending, regardless of which rail or channel delivered it. Delivery is
// at-least-once and unordered; the engine must tolerate duplicates and races.
type SettlementEvent struct {
	Source         SettlementSource `json:"source"`
	Provider       Provider         `json:"provider"`
	CorrelationKey string           `json:"correlation_key"`
	Outcome        Outcome          `json:"outcome"`
	ResultCode     string           `json:"result_code"`
	ResultDesc     string           `json:"result_desc"`
	Amount         int64            `json:"amount"` // minor units; 0 if the channel omits it
	RawPayload     []byte           `json:"raw_payload,omitempty"`
	ReceivedAt     time.Time        `json:"received_at"`
}

// TransitionOutcome reports what a conditional (CAS) status update did.
type TransitionOutcome int

const (
	// TransitionApplied: the row moved from the expected prior status.
	TransitionApplied TransitionOutcome = iota
	// TransitionNoOp: the row was already in the target status.
	TransitionNoOp
	// TransitionConflict: the row is in a different terminal status.
	TransitionConflict
	// TransitionNotFound: no row matches the key.
	TransitionNotFound
)

func (o TransitionOutcome) String() string {
	switch o {
	case TransitionApplied:
		return "APPLIED"
	case TransitionNoOp:
		return "NOOP"
	case TransitionConflict:
		return "CONFLICT"
	case TransitionNotFound:
		return "NOT_FOUND"
	default:
		return "UNKNOWN"
	}
}
