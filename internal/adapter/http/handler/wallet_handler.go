package handler

import (
	"time"

	"donation-ledger/internal/adapter/http/dto"
	"donation-ledger/internal/adapter/http/middleware"
	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"
	"donation-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet balance, statement and stats queries.
type WalletHandler struct {
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{reportingSvc: reportingSvc}
}

// GetBalance handles GET /api/v1/wallets/me.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	statement, err := h.reportingSvc.WalletStatement(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletResponse{Balance: statement.Balance})
}

// GetStatement handles GET /api/v1/wallets/me/entries.
func (h *WalletHandler) GetStatement(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	statement, err := h.reportingSvc.WalletStatement(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries := make([]dto.LedgerEntryResponse, 0, len(statement.Entries))
	for _, e := range statement.Entries {
		entries = append(entries, dto.LedgerEntryResponse{
			ID:             e.ID.String(),
			GiverID:        e.GiverID.String(),
			Amount:         e.Amount,
			CorrelationKey: e.CorrelationKey,
			CreatedAt:      e.CreatedAt.Format(time.RFC3339),
		})
	}

	response.OK(c, dto.WalletStatementResponse{
		Balance: statement.Balance,
		Entries: entries,
	})
}

// GetStats handles GET /api/v1/users/me/stats.
func (h *WalletHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	stats, err := h.reportingSvc.UserStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.UserStatsResponse{
		UserID:            stats.UserID.String(),
		TotalPoints:       stats.TotalPoints,
		Level:             stats.Level,
		DonationsGiven:    stats.DonationsGiven,
		DonationsReceived: stats.DonationsReceived,
	})
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	uid, ok := v.(uuid.UUID)
	return uid, ok
}
