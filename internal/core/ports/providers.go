package ports

import (
	"context"
	"net/http"
	"time"

	"donation-ledger/internal/core/domain"
)

// GatewayResult normalizes a provider's initiation response.
type GatewayResult struct {
	ProviderRef      string
	CheckoutURL      string // redirect rail only
	PushConfirmation string // push rail only
}

// ProviderGateway is the outbound adapter for one payment rail. It never
// touches the ledger; provider-specific errors are normalized to the PRV_*
// taxonomy (unavailable, invalid request, rejected). A timed-out call is
// ProviderUnavailable, never a Failure outcome.
type ProviderGateway interface {
	Name() domain.Provider
	Rail() domain.Rail
	Initiate(ctx context.Context, req InitiationRequest, correlationKey string) (*GatewayResult, error)
	// ParseWebhook validates the payload signature and normalizes the body
	// into a settlement event. Signature mismatch and unparseable payloads
	// are rejected here, before the engine is involved.
	ParseWebhook(body []byte, header http.Header) (*domain.SettlementEvent, error)
}

// RedirectVerifier re-checks a redirect-rail payment by provider reference.
// Used by the redirect-return handler and by manual re-checks.
type RedirectVerifier interface {
	VerifyByReference(ctx context.Context, reference string) (*domain.SettlementEvent, error)
}

// PollSource exposes the provider's own view of recent transactions, the
// backstop for webhook delivery failure.
type PollSource interface {
	ListRecent(ctx context.Context, since time.Time) ([]domain.SettlementEvent, error)
}
