package handler

import (
	"donation-ledger/internal/adapter/http/dto"
	"donation-ledger/internal/adapter/http/middleware"
	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"
	"donation-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DonationHandler handles donation initiation and status polling.
type DonationHandler struct {
	initiationSvc ports.InitiationService
	reportingSvc  ports.ReportingService
}

// NewDonationHandler creates a new DonationHandler.
func NewDonationHandler(initiationSvc ports.InitiationService, reportingSvc ports.ReportingService) *DonationHandler {
	return &DonationHandler{initiationSvc: initiationSvc, reportingSvc: reportingSvc}
}

// Donate handles POST /api/v1/donations.
func (h *DonationHandler) Donate(c *gin.Context) {
	giverID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		response.Error(c, apperror.Validation("request_id must be a UUID"))
		return
	}
	receiverID, err := uuid.Parse(req.ReceiverID)
	if err != nil {
		response.Error(c, apperror.Validation("receiver_id must be a UUID"))
		return
	}

	initReq := ports.InitiationRequest{
		RequestID:  requestID,
		GiverID:    giverID.(uuid.UUID),
		ReceiverID: receiverID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Provider:   domain.Provider(req.Provider),
	}
	if req.PayerPhone != nil {
		initReq.PayerPhone = *req.PayerPhone
	}
	if req.PayerEmail != nil {
		initReq.PayerEmail = *req.PayerEmail
	}

	result, err := h.initiationSvc.InitiateDonation(c.Request.Context(), initReq)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.DonateResponse{
		CorrelationKey:   result.CorrelationKey,
		ProviderRef:      result.ProviderRef,
		CheckoutURL:      result.CheckoutURL,
		PushConfirmation: result.PushConfirmation,
		Status:           string(result.Status),
	})
}

// Status handles GET /api/v1/donations/:key/status.
func (h *DonationHandler) Status(c *gin.Context) {
	key := c.Param("key")

	result, err := h.reportingSvc.DonationStatus(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DonationStatusResponse{
		CorrelationKey: key,
		Status:         string(result.Status),
		Amount:         result.Amount,
		Message:        result.Message,
	})
}
