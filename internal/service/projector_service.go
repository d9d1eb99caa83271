package service

import (
	"context"
	"fmt"
	"time"

	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ProjectorServiceImpl implements ports.ProjectorService. Financial
// derivations (wallet credit, ledger entry, points, counters) run inside the
// settlement's atomic scope; notifications run after commit and are never
// allowed to fail the settlement.
type ProjectorServiceImpl struct {
	walletRepo      ports.WalletRepository
	ledgerRepo      ports.LedgerRepository
	pointsRepo      ports.PointsRepository
	statsRepo       ports.StatsRepository
	notifRepo       ports.NotificationRepository
	pointsUnit      int64
	levelThresholds []int64
	log             zerolog.Logger
}

// NewProjectorService creates the settlement projector.
func NewProjectorService(
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	pointsRepo ports.PointsRepository,
	statsRepo ports.StatsRepository,
	notifRepo ports.NotificationRepository,
	pointsUnit int64,
	levelThresholds []int64,
	log zerolog.Logger,
) *ProjectorServiceImpl {
	return &ProjectorServiceImpl{
		walletRepo:      walletRepo,
		ledgerRepo:      ledgerRepo,
		pointsRepo:      pointsRepo,
		statsRepo:       statsRepo,
		notifRepo:       notifRepo,
		pointsUnit:      pointsUnit,
		levelThresholds: levelThresholds,
		log:             log,
	}
}

// Project applies the financial derivations of a successful settlement.
// Runs inside the caller's transaction; any error aborts the whole
// settlement, so no partial projection can ever be observed.
func (s *ProjectorServiceImpl) Project(ctx context.Context, tx pgx.Tx, payment *domain.Payment, donation *domain.Donation) error {
	if _, err := s.walletRepo.Credit(ctx, tx, donation.ReceiverID, payment.Amount); err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}

	entry := &domain.LedgerEntry{
		ID:             uuid.New(),
		GiverID:        donation.GiverID,
		ReceiverID:     donation.ReceiverID,
		Amount:         payment.Amount,
		CorrelationKey: payment.CorrelationKey,
		CreatedAt:      time.Now(),
	}
	if err := s.ledgerRepo.Record(ctx, tx, entry); err != nil {
		return fmt.Errorf("record ledger entry: %w", err)
	}

	award := &domain.PointsAward{
		ID:        uuid.New(),
		UserID:    donation.GiverID,
		PaymentID: payment.ID,
		Points:    domain.PointsFor(payment.Amount, s.pointsUnit),
		CreatedAt: time.Now(),
	}
	awarded, err := s.pointsRepo.Award(ctx, tx, award)
	if err != nil {
		return fmt.Errorf("award points: %w", err)
	}
	if awarded {
		total, err := s.pointsRepo.TotalForUser(ctx, tx, donation.GiverID)
		if err != nil {
			return fmt.Errorf("sum points: %w", err)
		}
		level := domain.LevelFromPoints(total, s.levelThresholds)
		if err := s.statsRepo.SetPointsAndLevel(ctx, tx, donation.GiverID, total, level); err != nil {
			return fmt.Errorf("update points and level: %w", err)
		}
	}

	if err := s.statsRepo.IncrementCounters(ctx, tx, donation.GiverID, donation.ReceiverID); err != nil {
		return fmt.Errorf("increment counters: %w", err)
	}
	return nil
}

// Notify emits the in-app notifications for a committed settlement.
// Best effort: failures are logged and swallowed.
func (s *ProjectorServiceImpl) Notify(ctx context.Context, payment *domain.Payment, donation *domain.Donation) {
	received := &domain.Notification{
		ID:         uuid.New(),
		Recipient:  donation.ReceiverID,
		Issuer:     donation.GiverID,
		Type:       domain.NotificationDonationReceived,
		RequestID:  &donation.RequestID,
		DonationID: &donation.ID,
		CreatedAt:  time.Now(),
	}
	if err := s.notifRepo.Create(ctx, received); err != nil {
		s.log.Warn().Err(err).Str("correlation_key", payment.CorrelationKey).Msg("failed to create received notification")
	}

	sent := &domain.Notification{
		ID:         uuid.New(),
		Recipient:  donation.GiverID,
		Issuer:     donation.ReceiverID,
		Type:       domain.NotificationDonationSent,
		RequestID:  &donation.RequestID,
		DonationID: &donation.ID,
		CreatedAt:  time.Now(),
	}
	if err := s.notifRepo.Create(ctx, sent); err != nil {
		s.log.Warn().Err(err).Str("correlation_key", payment.CorrelationKey).Msg("failed to create sent notification")
	}

	s.notifyLevelUp(ctx, payment, donation)
}

// notifyLevelUp derives whether this settlement crossed a level threshold by
// rewinding the award from the committed total.
func (s *ProjectorServiceImpl) notifyLevelUp(ctx context.Context, payment *domain.Payment, donation *domain.Donation) {
	stats, err := s.statsRepo.Get(ctx, donation.GiverID)
	if err != nil || stats == nil {
		return
	}

	points := domain.PointsFor(payment.Amount, s.pointsUnit)
	oldLevel := domain.LevelFromPoints(stats.TotalPoints-points, s.levelThresholds)
	if stats.Level <= oldLevel {
		return
	}

	levelUp := &domain.Notification{
		ID:        uuid.New(),
		Recipient: donation.GiverID,
		Issuer:    donation.GiverID,
		Type:      domain.NotificationLevelUp,
		CreatedAt: time.Now(),
	}
	if err := s.notifRepo.Create(ctx, levelUp); err != nil {
		s.log.Warn().Err(err).Str("user_id", donation.GiverID.String()).Msg("failed to create level-up notification")
	}
}
