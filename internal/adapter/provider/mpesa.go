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

// mpesaSignatureHeader carries the HMAC-SHA256 of the raw webhook body.
const mpesaSignatureHeader = "X-Mpesa-Signature"

// MpesaGateway is the mobile-money push rail. Initiation fires an STK-style
// push to the payer's phone; the settlement verdict arrives asynchronously on
// the webhook, with polling as the backstop.
type MpesaGateway struct {
	cfg    config.ProviderConfig
	sigSvc ports.SignatureService
	client HTTPClient
	log    zerolog.Logger
}

// NewMpesaGateway creates the push-rail gateway.
func NewMpesaGateway(cfg config.ProviderConfig, sigSvc ports.SignatureService, client HTTPClient, log zerolog.Logger) *MpesaGateway {
	return &MpesaGateway{
		cfg:    cfg,
		sigSvc: sigSvc,
		client: client,
		log:    log.With().Str("provider", "mpesa").Logger(),
	}
}

// Name returns the provider identifier.
func (g *MpesaGateway) Name() domain.Provider { return domain.ProviderMpesa }

// Rail returns the settlement rail.
func (g *MpesaGateway) Rail() domain.Rail { return domain.RailPush }

type mpesaPushRequest struct {
	ShortCode        string `json:"short_code"`
	PhoneNumber      string `json:"phone_number"`
	Amount           int64  `json:"amount"`
	AccountReference string `json:"account_reference"`
	CallbackURL      string `json:"callback_url"`
}

type mpesaPushResponse struct {
	ResponseCode      string `json:"response_code"`
	ResponseDesc      string `json:"response_desc"`
	CheckoutRequestID string `json:"checkout_request_id"`
	CustomerMessage   string `json:"customer_message"`
}

// Initiate fires the push to the payer's phone. The account reference echoed
// back on settlement is the correlation key.
func (g *MpesaGateway) Initiate(ctx context.Context, req ports.InitiationRequest, correlationKey string) (*ports.GatewayResult, error) {
	payload := mpesaPushRequest{
		ShortCode:        g.cfg.ShortCode,
		PhoneNumber:      req.PayerPhone,
		Amount:           req.Amount,
		AccountReference: correlationKey,
		CallbackURL:      g.cfg.CallbackURL,
	}

	body, err := postJSON(ctx, g.client, "mpesa", g.cfg.BaseURL+"/stkpush/v1/process", g.cfg.APIKey, payload)
	if err != nil {
		return nil, err
	}

	var resp mpesaPushResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperror.ErrProviderUnavailable("mpesa", err)
	}
	if resp.ResponseCode != "0" {
		return nil, apperror.ErrProviderRejected("mpesa", resp.ResponseDesc)
	}

	g.log.Info().Str("checkout_request_id", resp.CheckoutRequestID).Msg("push initiated")
	return &ports.GatewayResult{
		ProviderRef:      resp.CheckoutRequestID,
		PushConfirmation: resp.CustomerMessage,
	}, nil
}

type mpesaWebhookPayload struct {
	AccountReference string `json:"account_reference"`
	ResultCode       string `json:"result_code"`
	ResultDesc       string `json:"result_desc"`
	Amount           int64  `json:"amount"`
	Receipt          string `json:"receipt"`
}

// ParseWebhook validates the body signature and normalizes the settlement
// verdict. Result code "0" is success; every other code is a failure.
func (g *MpesaGateway) ParseWebhook(body []byte, header http.Header) (*domain.SettlementEvent, error) {
	sig := header.Get(mpesaSignatureHeader)
	if sig == "" || !g.sigSvc.Verify(g.cfg.WebhookSecret, body, sig) {
		return nil, apperror.ErrInvalidSignature()
	}

	var payload mpesaWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apperror.ErrMalformedEvent(err)
	}
	if payload.AccountReference == "" || payload.ResultCode == "" {
		return nil, apperror.ErrMalformedEvent(fmt.Errorf("missing account_reference or result_code"))
	}

	outcome := domain.OutcomeFailure
	if payload.ResultCode == "0" {
		outcome = domain.OutcomeSuccess
	}

	return &domain.SettlementEvent{
		Source:         domain.SourceWebhook,
		Provider:       domain.ProviderMpesa,
		CorrelationKey: payload.AccountReference,
		Outcome:        outcome,
		ResultCode:     payload.ResultCode,
		ResultDesc:     payload.ResultDesc,
		Amount:         payload.Amount,
		RawPayload:     body,
		ReceivedAt:     time.Now(),
	}, nil
}

type mpesaTransaction struct {
	AccountReference string `json:"account_reference"`
	ResultCode       string `json:"result_code"`
	ResultDesc       string `json:"result_desc"`
	Amount           int64  `json:"amount"`
	Status           string `json:"status"` // COMPLETED, FAILED, PROCESSING
}

type mpesaTransactionList struct {
	Transactions []mpesaTransaction `json:"transactions"`
}

// ListRecent fetches the provider's own view of recent transactions, the
// backstop for lost webhooks.
func (g *MpesaGateway) ListRecent(ctx context.Context, since time.Time) ([]domain.SettlementEvent, error) {
	u := fmt.Sprintf("%s/transactions?short_code=%s&since=%s",
		g.cfg.BaseURL, url.QueryEscape(g.cfg.ShortCode), url.QueryEscape(since.UTC().Format(time.RFC3339)))

	body, err := getJSON(ctx, g.client, "mpesa", u, g.cfg.APIKey)
	if err != nil {
		return nil, err
	}

	var list mpesaTransactionList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, apperror.ErrProviderUnavailable("mpesa", err)
	}

	events := make([]domain.SettlementEvent, 0, len(list.Transactions))
	for _, tx := range list.Transactions {
		events = append(events, domain.SettlementEvent{
			Source:         domain.SourcePoll,
			Provider:       domain.ProviderMpesa,
			CorrelationKey: tx.AccountReference,
			Outcome:        pollOutcome(tx.Status),
			ResultCode:     tx.ResultCode,
			ResultDesc:     tx.ResultDesc,
			Amount:         tx.Amount,
			ReceivedAt:     time.Now(),
		})
	}
	return events, nil
}

// pollOutcome maps a provider-side transaction status to the normalized
// settlement outcome. Anything still in flight reports Pending.
func pollOutcome(status string) domain.Outcome {
	switch status {
	case "COMPLETED", "SUCCESS":
		return domain.OutcomeSuccess
	case "FAILED", "CANCELLED", "EXPIRED":
		return domain.OutcomeFailure
	default:
		return domain.OutcomePending
	}
}
