package handler

import (
	"net/http"

	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"
	"donation-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CallbackHandler lands the payer returning from a redirect checkout. The
// redirect itself proves nothing; the authoritative outcome comes from
// verifying the reference against the provider.
type CallbackHandler struct {
	verifier   ports.RedirectVerifier
	reconciler ports.ReconciliationService
	successURL string
	failureURL string
	log        zerolog.Logger
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(verifier ports.RedirectVerifier, reconciler ports.ReconciliationService, successURL, failureURL string, log zerolog.Logger) *CallbackHandler {
	return &CallbackHandler{
		verifier:   verifier,
		reconciler: reconciler,
		successURL: successURL,
		failureURL: failureURL,
		log:        log,
	}
}

// Return handles GET /callback?reference=. The browser is always redirected;
// reconciliation errors land on the failure page rather than a JSON body.
func (h *CallbackHandler) Return(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		response.Error(c, apperror.ErrMalformedEvent(nil))
		return
	}

	event, err := h.verifier.VerifyByReference(c.Request.Context(), reference)
	if err != nil {
		h.log.Warn().Err(err).Str("reference", reference).Msg("redirect verification failed")
		c.Redirect(http.StatusFound, h.failureURL)
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), *event)
	if err != nil {
		h.log.Error().Err(err).Str("reference", reference).Msg("redirect reconciliation failed")
		c.Redirect(http.StatusFound, h.failureURL)
		return
	}

	h.log.Info().
		Str("correlation_key", result.CorrelationKey).
		Str("disposition", string(result.Disposition)).
		Msg("redirect return reconciled")

	// A duplicate of an earlier success is still a success to the payer.
	if result.Status == domain.PaymentStatusCompleted || event.Outcome == domain.OutcomeSuccess {
		c.Redirect(http.StatusFound, h.successURL)
		return
	}
	c.Redirect(http.StatusFound, h.failureURL)
}
