package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"donation-ledger/config"
	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"
	"donation-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

const flowSignatureHeader = "X-Flow-Signature"

// FlowGateway is the redirect-checkout rail. Initiation returns a hosted
// checkout URL; settlement arrives on the signed webhook and is re-verified
// when the payer's browser returns through the callback.
type FlowGateway struct {
	cfg    config.ProviderConfig
	sigSvc ports.SignatureService
	client HTTPClient
	log    zerolog.Logger
}

// NewFlowGateway creates the redirect-rail gateway.
func NewFlowGateway(cfg config.ProviderConfig, sigSvc ports.SignatureService, client HTTPClient, log zerolog.Logger) *FlowGateway {
	return &FlowGateway{
		cfg:    cfg,
		sigSvc: sigSvc,
		client: client,
		log:    log.With().Str("provider", "flow").Logger(),
	}
}

// Name returns the provider identifier.
func (g *FlowGateway) Name() domain.Provider { return domain.ProviderFlow }

// Rail returns the settlement rail.
func (g *FlowGateway) Rail() domain.Rail { return domain.RailRedirect }

type flowCheckoutRequest struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Email     string `json:"email"`
	Reference string `json:"reference"`
	ReturnURL string `json:"return_url"`
}

type flowCheckoutResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Reference   string `json:"reference"`
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

// Initiate creates a hosted checkout session. The merchant reference sent to
// the provider is the correlation key; the provider echoes it on settlement.
func (g *FlowGateway) Initiate(ctx context.Context, req ports.InitiationRequest, correlationKey string) (*ports.GatewayResult, error) {
	payload := flowCheckoutRequest{
		Amount:    req.Amount,
		Currency:  req.Currency,
		Email:     req.PayerEmail,
		Reference: correlationKey,
		ReturnURL: g.cfg.CallbackURL,
	}

	body, err := postJSON(ctx, g.client, "flow", g.cfg.BaseURL+"/v1/checkout", g.cfg.APIKey, payload)
	if err != nil {
		return nil, err
	}

	var resp flowCheckoutResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperror.ErrProviderUnavailable("flow", err)
	}
	if resp.Status != "success" {
		return nil, apperror.ErrProviderRejected("flow", resp.Message)
	}

	g.log.Info().Str("reference", resp.Data.Reference).Msg("checkout created")
	return &ports.GatewayResult{
		ProviderRef: resp.Data.Reference,
		CheckoutURL: resp.Data.CheckoutURL,
	}, nil
}

type flowTransactionData struct {
	Reference         string `json:"reference"`          // provider side
	MerchantReference string `json:"merchant_reference"` // our correlation key
	Status            string `json:"status"`             // successful, failed, pending
	ProcessorCode     string `json:"processor_code"`
	ProcessorDesc     string `json:"processor_desc"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
}

type flowWebhookPayload struct {
	Event string              `json:"event"`
	Data  flowTransactionData `json:"data"`
}

// ParseWebhook validates the body signature and normalizes the charge event.
func (g *FlowGateway) ParseWebhook(body []byte, header http.Header) (*domain.SettlementEvent, error) {
	sig := header.Get(flowSignatureHeader)
	if sig == "" || !g.sigSvc.Verify(g.cfg.WebhookSecret, body, sig) {
		return nil, apperror.ErrInvalidSignature()
	}

	var payload flowWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperror.ErrMalformedEvent(err)
	}
	if payload.Data.MerchantReference == "" || payload.Data.Status == "" {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("missing merchant_reference or status"))
	}

	return g.toEvent(payload.Data, domain.SourceWebhook, body), nil
}

type flowVerifyResponse struct {
	Status string              `json:"status"`
	Data   flowTransactionData `json:"data"`
}

// VerifyByReference re-checks a payment by provider reference. Used when the
// payer's browser returns through the callback: the redirect itself carries
// no trusted verdict, only a pointer to one.
func (g *FlowGateway) VerifyByReference(ctx context.Context, reference string) (*domain.SettlementEvent, error) {
	u := fmt.Sprintf("%s/v1/transactions/verify?reference=%s", g.cfg.BaseURL, url.QueryEscape(reference))

	body, err := getJSON(ctx, g.client, "flow", u, g.cfg.APIKey)
	if err != nil {
		return nil, err
	}

	var resp flowVerifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperror.ErrProviderUnavailable("flow", err)
	}
	if resp.Status != "success" || resp.Data.MerchantReference == "" {
		return nil, apperror.ErrProviderRejected("flow", "verification returned no transaction")
	}

	return g.toEvent(resp.Data, domain.SourceRedirect, nil), nil
}

// ListRecent fetches recently settled charges, the backstop for lost
// webhooks on the redirect rail.
func (g *FlowGateway) ListRecent(ctx context.Context, since time.Time) ([]domain.SettlementEvent, error) {
	u := fmt.Sprintf("%s/v1/transactions?since=%s", g.cfg.BaseURL, url.QueryEscape(since.UTC().Format(time.RFC3339)))

	body, err := getJSON(ctx, g.client, "flow", u, g.cfg.APIKey)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []flowTransactionData `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperror.ErrProviderUnavailable("flow", err)
	}

	events := make([]domain.SettlementEvent, 0, len(resp.Data))
	for _, tx := range resp.Data {
		events = append(events, *g.toEvent(tx, domain.SourcePoll, nil))
	}
	return events, nil
}

func (g *FlowGateway) toEvent(tx flowTransactionData, source domain.SettlementSource, raw []byte) *domain.SettlementEvent {
	var outcome domain.Outcome
	switch tx.Status {
	case "successful":
		outcome = domain.OutcomeSuccess
	case "failed", "cancelled":
		outcome = domain.OutcomeFailure
	default:
		outcome = domain.OutcomePending
	}

	return &domain.SettlementEvent{
		Source:         source,
		Provider:       domain.ProviderFlow,
		CorrelationKey: tx.MerchantReference,
		Outcome:        outcome,
		ResultCode:     tx.ProcessorCode,
		ResultDesc:     tx.ProcessorDesc,
		Amount:         tx.Amount,
		RawPayload:     raw,
		ReceivedAt:     time.Now(),
	}
}
