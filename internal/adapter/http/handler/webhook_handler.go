package handler

import (
	"io"

	"donation-ledger/internal/adapter/http/dto"
	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"
	"donation-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// GatewayResolver resolves a provider gateway by name.
type GatewayResolver interface {
	Get(name domain.Provider) (ports.ProviderGateway, error)
}

// WebhookHandler receives provider settlement webhooks.
type WebhookHandler struct {
	gateways   GatewayResolver
	reconciler ports.ReconciliationService
	log        zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(gateways GatewayResolver, reconciler ports.ReconciliationService, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{gateways: gateways, reconciler: reconciler, log: log}
}

// Receive handles POST /webhook/:provider. Every disposition the engine can
// reach on a delivered event (applied, failed, duplicate, conflict,
// quarantined, ignored) acknowledges with 200 so the provider stops
// retrying; only signature and parse rejections tell it the delivery itself
// was bad.
func (h *WebhookHandler) Receive(c *gin.Context) {
	name := domain.Provider(c.Param("provider"))

	gateway, err := h.gateways.Get(name)
	if err != nil {
		response.Error(c, err)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.ErrMalformedEvent(err))
		return
	}

	event, err := gateway.ParseWebhook(body, c.Request.Header)
	if err != nil {
		h.log.Warn().Err(err).Str("provider", string(name)).Msg("webhook rejected")
		response.Error(c, err)
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), *event)
	if err != nil {
		// Internal failures are absorbed: a non-2xx streak gets the
		// webhook disabled on the provider side, and redelivery plus the
		// poll cycle will settle the event once the store recovers.
		h.log.Error().Err(err).
			Str("provider", string(name)).
			Str("correlation_key", event.CorrelationKey).
			Msg("reconciliation failed, acknowledging for redelivery")
		response.Accepted(c, dto.WebhookAck{Disposition: "RECEIVED"})
		return
	}

	h.log.Info().
		Str("provider", string(name)).
		Str("correlation_key", result.CorrelationKey).
		Str("disposition", string(result.Disposition)).
		Msg("webhook reconciled")

	response.OK(c, dto.WebhookAck{Disposition: string(result.Disposition)})
}
