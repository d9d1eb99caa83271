package service

import (
	"context"
	"fmt"

	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReportingServiceImpl implements ports.ReportingService.
type ReportingServiceImpl struct {
	donationRepo ports.DonationRepository
	walletRepo   ports.WalletRepository
	ledgerRepo   ports.LedgerRepository
	statsRepo    ports.StatsRepository
	log          zerolog.Logger
}

// NewReportingService creates the read-side reporting service.
func NewReportingService(
	donationRepo ports.DonationRepository,
	walletRepo ports.WalletRepository,
	ledgerRepo ports.LedgerRepository,
	statsRepo ports.StatsRepository,
	log zerolog.Logger,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		donationRepo: donationRepo,
		walletRepo:   walletRepo,
		ledgerRepo:   ledgerRepo,
		statsRepo:    statsRepo,
		log:          log,
	}
}

// DonationStatus answers the UI polling query. Internal dispositions
// (quarantine, conflict) are never surfaced here; callers see only the
// donation lifecycle.
func (s *ReportingServiceImpl) DonationStatus(ctx context.Context, correlationKey string) (*ports.DonationStatusResult, error) {
	donation, err := s.donationRepo.GetByInvoice(ctx, correlationKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load donation: %w", err))
	}
	if donation == nil {
		return nil, apperror.ErrNotFound("donation")
	}

	message := "Awaiting payment confirmation"
	switch donation.Status {
	case domain.DonationStatusCompleted:
		message = "Donation completed"
	case domain.DonationStatusFailed:
		message = "Donation failed"
	}

	return &ports.DonationStatusResult{
		Status:  donation.Status,
		Amount:  donation.Amount,
		Message: message,
	}, nil
}

// WalletStatement returns the balance plus the entries that produced it.
func (s *ReportingServiceImpl) WalletStatement(ctx context.Context, userID uuid.UUID) (*ports.WalletStatement, error) {
	entries, err := s.ledgerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list ledger entries: %w", err))
	}

	statement := &ports.WalletStatement{
		UserID:  userID,
		Entries: entries,
	}

	// A user with no credits yet simply has no wallet row.
	wallet, err := s.walletRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load wallet: %w", err))
	}
	if wallet != nil {
		statement.Balance = wallet.Balance
	}
	return statement, nil
}

// UserStats returns the counters/points/level projection; absent rows report
// the zero state at level 1.
func (s *ReportingServiceImpl) UserStats(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	stats, err := s.statsRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load user stats: %w", err))
	}
	if stats == nil {
		return &domain.UserStats{UserID: userID, Level: 1}, nil
	}
	return stats, nil
}
