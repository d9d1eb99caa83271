package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const settlementCacheTTL = 24 * time.Hour

// ReconciliationServiceImpl implements ports.ReconciliationService. It is the
// single write path for settlement outcomes: webhook, redirect-return and
// poller all feed the same Reconcile, so duplicates and races collapse on the
// database CAS no matter which channel delivers first.
type ReconciliationServiceImpl struct {
	paymentRepo  ports.PaymentRepository
	donationRepo ports.DonationRepository
	quarRepo     ports.QuarantineRepository
	conflictRepo ports.ConflictRepository
	projector    ports.ProjectorService
	cache        ports.SettlementCache
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewReconciliationService creates the reconciliation engine.
func NewReconciliationService(
	paymentRepo ports.PaymentRepository,
	donationRepo ports.DonationRepository,
	quarRepo ports.QuarantineRepository,
	conflictRepo ports.ConflictRepository,
	projector ports.ProjectorService,
	cache ports.SettlementCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ReconciliationServiceImpl {
	return &ReconciliationServiceImpl{
		paymentRepo:  paymentRepo,
		donationRepo: donationRepo,
		quarRepo:     quarRepo,
		conflictRepo: conflictRepo,
		projector:    projector,
		cache:        cache,
		transactor:   transactor,
		log:          log,
	}
}

// Reconcile applies one normalized settlement event to the ledger.
// Applying the same event N times leaves state identical to applying it once.
func (s *ReconciliationServiceImpl) Reconcile(ctx context.Context, event domain.SettlementEvent) (*ports.ReconcileResult, error) {
	if event.CorrelationKey == "" || event.Outcome == "" {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("missing correlation key or outcome"))
	}

	log := s.log.With().
		Str("correlation_key", event.CorrelationKey).
		Str("source", string(event.Source)).
		Str("outcome", string(event.Outcome)).
		Logger()

	// Pending reports carry no verdict. Acknowledge and drop.
	if event.Outcome == domain.OutcomePending {
		return &ports.ReconcileResult{
			Disposition:    ports.DispositionIgnored,
			CorrelationKey: event.CorrelationKey,
		}, nil
	}

	// Layer 1: Redis fast path. Providers redeliver aggressively; most
	// duplicates hit here without touching the database.
	cached, err := s.cache.Get(ctx, event.CorrelationKey)
	if err != nil {
		log.Warn().Err(err).Msg("settlement cache check failed, falling through to DB")
	}
	if cached != nil {
		var prior ports.ReconcileResult
		if err := json.Unmarshal(cached, &prior); err == nil {
			if sameVerdict(prior.Status, event.Outcome) {
				return &ports.ReconcileResult{
					Disposition:    ports.DispositionDuplicate,
					CorrelationKey: event.CorrelationKey,
					Status:         prior.Status,
				}, nil
			}
			// Cached verdict disagrees with this report. Fall through so
			// the conflict is recorded against the authoritative row.
		}
	}

	// Layer 2: authoritative DB state.
	payment, err := s.paymentRepo.GetByCorrelationKey(ctx, event.CorrelationKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load payment: %w", err))
	}
	if payment == nil {
		return s.quarantine(ctx, event, log)
	}

	if payment.IsTerminal() {
		if sameVerdict(payment.Status, event.Outcome) {
			s.cacheResult(ctx, terminalResult(payment.Status, event.CorrelationKey), log)
			return &ports.ReconcileResult{
				Disposition:    ports.DispositionDuplicate,
				CorrelationKey: event.CorrelationKey,
				Status:         payment.Status,
			}, nil
		}
		return s.conflict(ctx, payment, event, log)
	}

	donation, err := s.donationRepo.GetByInvoice(ctx, event.CorrelationKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load donation: %w", err))
	}
	if donation == nil {
		return s.quarantine(ctx, event, log)
	}

	return s.apply(ctx, payment, donation, event, log)
}

// apply moves the pair to its terminal state and, on success, projects the
// financial derivations, all inside one atomic scope. The CAS on the payment
// row is the tie-break for concurrent deliveries: exactly one wins.
func (s *ReconciliationServiceImpl) apply(ctx context.Context, payment *domain.Payment, donation *domain.Donation, event domain.SettlementEvent, log zerolog.Logger) (*ports.ReconcileResult, error) {
	target := domain.PaymentStatusFailed
	donationTarget := domain.DonationStatusFailed
	disposition := ports.DispositionFailed
	if event.Outcome == domain.OutcomeSuccess {
		target = domain.PaymentStatusCompleted
		donationTarget = domain.DonationStatusCompleted
		disposition = ports.DispositionApplied
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrLedgerWriteFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	outcome, err := s.paymentRepo.Transition(ctx, dbTx, event.CorrelationKey, domain.PaymentStatusPending, target, event.ResultCode, event.ResultDesc)
	if err != nil {
		return nil, apperror.ErrLedgerWriteFailure(fmt.Errorf("payment transition: %w", err))
	}

	switch outcome {
	case domain.TransitionNoOp:
		// Another delivery won the race with the same verdict.
		return &ports.ReconcileResult{
			Disposition:    ports.DispositionDuplicate,
			CorrelationKey: event.CorrelationKey,
			Status:         target,
		}, nil
	case domain.TransitionConflict:
		return s.conflictAfterRace(ctx, event, log)
	case domain.TransitionNotFound:
		return s.quarantine(ctx, event, log)
	}

	if _, err := s.donationRepo.Transition(ctx, dbTx, event.CorrelationKey, domain.DonationStatusPending, donationTarget); err != nil {
		return nil, apperror.ErrLedgerWriteFailure(fmt.Errorf("donation transition: %w", err))
	}

	payment.Status = target
	donation.Status = donationTarget

	if event.Outcome == domain.OutcomeSuccess {
		if err := s.projector.Project(ctx, dbTx, payment, donation); err != nil {
			return nil, apperror.ErrLedgerWriteFailure(fmt.Errorf("project settlement: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrLedgerWriteFailure(fmt.Errorf("commit: %w", err))
	}

	result := &ports.ReconcileResult{
		Disposition:    disposition,
		CorrelationKey: event.CorrelationKey,
		Status:         target,
	}
	s.cacheResult(ctx, result, log)

	if event.Outcome == domain.OutcomeSuccess {
		s.projector.Notify(ctx, payment, donation)
	}

	log.Info().Str("disposition", string(disposition)).Msg("settlement applied")
	return result, nil
}

// quarantine parks an event with no matching pending pair. Webhook delivery
// can race the local initiation commit, so these are re-fed by the poller
// rather than discarded.
func (s *ReconciliationServiceImpl) quarantine(ctx context.Context, event domain.SettlementEvent, log zerolog.Logger) (*ports.ReconcileResult, error) {
	q := &domain.QuarantinedEvent{
		ID:             uuid.New(),
		CorrelationKey: event.CorrelationKey,
		Provider:       event.Provider,
		Source:         event.Source,
		Outcome:        event.Outcome,
		ResultCode:     event.ResultCode,
		ResultDesc:     event.ResultDesc,
		Amount:         event.Amount,
		RawPayload:     event.RawPayload,
		ReceivedAt:     event.ReceivedAt,
	}
	if err := s.quarRepo.Add(ctx, q); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("quarantine event: %w", err))
	}

	log.Warn().Msg("no pending payment for settlement event, quarantined")
	return &ports.ReconcileResult{
		Disposition:    ports.DispositionQuarantined,
		CorrelationKey: event.CorrelationKey,
	}, nil
}

// conflict records a terminal-state mismatch for operator review. The ledger
// is never auto-corrected.
func (s *ReconciliationServiceImpl) conflict(ctx context.Context, payment *domain.Payment, event domain.SettlementEvent, log zerolog.Logger) (*ports.ReconcileResult, error) {
	c := &domain.ReconciliationConflict{
		ID:              uuid.New(),
		CorrelationKey:  event.CorrelationKey,
		ExistingStatus:  payment.Status,
		ReportedOutcome: event.Outcome,
		Source:          event.Source,
		RawPayload:      event.RawPayload,
		DetectedAt:      time.Now(),
	}
	if err := s.conflictRepo.Record(ctx, c); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("record conflict: %w", err))
	}

	log.Error().
		Str("existing_status", string(payment.Status)).
		Msg("conflicting terminal outcome, flagged for review")
	return &ports.ReconcileResult{
		Disposition:    ports.DispositionConflict,
		CorrelationKey: event.CorrelationKey,
		Status:         payment.Status,
	}, nil
}

// conflictAfterRace handles a CAS loss against a different verdict: re-read
// the now-terminal row and record the mismatch.
func (s *ReconciliationServiceImpl) conflictAfterRace(ctx context.Context, event domain.SettlementEvent, log zerolog.Logger) (*ports.ReconcileResult, error) {
	payment, err := s.paymentRepo.GetByCorrelationKey(ctx, event.CorrelationKey)
	if err != nil || payment == nil {
		return nil, apperror.InternalError(fmt.Errorf("re-read after transition conflict: %w", err))
	}
	if sameVerdict(payment.Status, event.Outcome) {
		return &ports.ReconcileResult{
			Disposition:    ports.DispositionDuplicate,
			CorrelationKey: event.CorrelationKey,
			Status:         payment.Status,
		}, nil
	}
	return s.conflict(ctx, payment, event, log)
}

// cacheResult stores the terminal result for the fast path. Best effort: the
// DB CAS already guarantees idempotency without it.
func (s *ReconciliationServiceImpl) cacheResult(ctx context.Context, result *ports.ReconcileResult, log zerolog.Logger) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, result.CorrelationKey, data, settlementCacheTTL); err != nil {
		log.Warn().Err(err).Msg("failed to cache settlement result")
	}
}

// sameVerdict reports whether a stored terminal status and a fresh outcome
// agree.
func sameVerdict(status domain.PaymentStatus, outcome domain.Outcome) bool {
	switch status {
	case domain.PaymentStatusCompleted:
		return outcome == domain.OutcomeSuccess
	case domain.PaymentStatusFailed:
		return outcome == domain.OutcomeFailure
	default:
		return false
	}
}

func terminalResult(status domain.PaymentStatus, key string) *ports.ReconcileResult {
	disposition := ports.DispositionFailed
	if status == domain.PaymentStatusCompleted {
		disposition = ports.DispositionApplied
	}
	return &ports.ReconcileResult{
		Disposition:    disposition,
		CorrelationKey: key,
		Status:         status,
	}
}
