package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GatewayResolver resolves a provider name to its gateway.
type GatewayResolver interface {
	Get(name domain.Provider) (ports.ProviderGateway, error)
}

// InitiationServiceImpl implements ports.InitiationService. The PENDING pair
// is committed BEFORE the provider call so a fast webhook always finds a row
// to reconcile against.
type InitiationServiceImpl struct {
	paymentRepo  ports.PaymentRepository
	donationRepo ports.DonationRepository
	gateways     GatewayResolver
	transactor   ports.DBTransactor
	log          zerolog.Logger
	now          func() time.Time
}

// NewInitiationService creates the donation initiation service.
func NewInitiationService(
	paymentRepo ports.PaymentRepository,
	donationRepo ports.DonationRepository,
	gateways GatewayResolver,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *InitiationServiceImpl {
	return &InitiationServiceImpl{
		paymentRepo:  paymentRepo,
		donationRepo: donationRepo,
		gateways:     gateways,
		transactor:   transactor,
		log:          log,
		now:          time.Now,
	}
}

// InitiateDonation creates the PENDING Payment/Donation pair and fires the
// outbound provider call. Initiation errors are synchronous: if the provider
// call fails, the pair is failed immediately rather than left dangling.
func (s *InitiationServiceImpl) InitiateDonation(ctx context.Context, req ports.InitiationRequest) (*ports.InitiationResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	gateway, err := s.gateways.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	now := s.now()
	correlationKey := domain.BuildCorrelationKey(req.RequestID, now)

	payment := &domain.Payment{
		ID:             uuid.New(),
		Provider:       req.Provider,
		Rail:           gateway.Rail(),
		CorrelationKey: correlationKey,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         domain.PaymentStatusPending,
		SenderID:       req.GiverID,
		CreatedAt:      now,
	}
	donation := &domain.Donation{
		ID:         uuid.New(),
		RequestID:  req.RequestID,
		GiverID:    req.GiverID,
		ReceiverID: req.ReceiverID,
		Amount:     req.Amount,
		Invoice:    correlationKey,
		Status:     domain.DonationStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.createPair(ctx, payment, donation); err != nil {
		return nil, apperror.ErrLedgerWriteFailure(err)
	}

	gwRes, err := gateway.Initiate(ctx, req, correlationKey)
	if err != nil {
		if isDefinitiveRejection(err) {
			s.failPair(ctx, correlationKey, err)
		} else {
			// Timeout or outage: the push may have gone through, so the
			// pair stays PENDING for the poll cycle to resolve.
			s.log.Warn().Err(err).Str("correlation_key", correlationKey).Msg("provider unreachable, leaving pair pending")
		}
		return nil, err
	}

	if gwRes.ProviderRef != "" {
		if err := s.paymentRepo.SetProviderRef(ctx, correlationKey, gwRes.ProviderRef); err != nil {
			s.log.Warn().Err(err).Str("correlation_key", correlationKey).Msg("failed to store provider ref")
		}
	}

	s.log.Info().
		Str("correlation_key", correlationKey).
		Str("provider", string(req.Provider)).
		Int64("amount", req.Amount).
		Msg("donation initiated")

	return &ports.InitiationResult{
		CorrelationKey:   correlationKey,
		ProviderRef:      gwRes.ProviderRef,
		CheckoutURL:      gwRes.CheckoutURL,
		PushConfirmation: gwRes.PushConfirmation,
		Status:           domain.PaymentStatusPending,
	}, nil
}

// createPair commits the PENDING rows in one transaction.
func (s *InitiationServiceImpl) createPair(ctx context.Context, payment *domain.Payment, donation *domain.Donation) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.paymentRepo.Create(ctx, dbTx, payment); err != nil {
		return err
	}
	if err := s.donationRepo.Create(ctx, dbTx, donation); err != nil {
		return err
	}
	return dbTx.Commit(ctx)
}

// isDefinitiveRejection reports whether the gateway error proves the provider
// never accepted the request. Unavailability does not: the true outcome is
// unknown and only a later webhook or poll can settle it.
func isDefinitiveRejection(err error) bool {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == "PRV_002" || appErr.Code == "PRV_003"
}

// failPair moves the pair to FAILED after a synchronous initiation error.
// The CAS keeps this safe against a webhook that somehow landed first.
func (s *InitiationServiceImpl) failPair(ctx context.Context, correlationKey string, cause error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("correlation_key", correlationKey).Msg("failed to open tx for initiation failure")
		return
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if _, err := s.paymentRepo.Transition(ctx, dbTx, correlationKey, domain.PaymentStatusPending, domain.PaymentStatusFailed, "INIT_FAILED", cause.Error()); err != nil {
		s.log.Error().Err(err).Str("correlation_key", correlationKey).Msg("failed to fail payment after initiation error")
		return
	}
	if _, err := s.donationRepo.Transition(ctx, dbTx, correlationKey, domain.DonationStatusPending, domain.DonationStatusFailed); err != nil {
		s.log.Error().Err(err).Str("correlation_key", correlationKey).Msg("failed to fail donation after initiation error")
		return
	}
	if err := dbTx.Commit(ctx); err != nil {
		s.log.Error().Err(err).Str("correlation_key", correlationKey).Msg("failed to commit initiation failure")
	}
}
