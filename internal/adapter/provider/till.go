package provider

import (
	"context"
	"encoding/json"
	"errors"
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

// TillGateway is the merchant-till rail. The payer pushes money to the till
// number on their own; initiation only registers the intent, and settlement
// is discovered exclusively by polling the till statement.
type TillGateway struct {
	cfg    config.ProviderConfig
	client HTTPClient
	log    zerolog.Logger
}

// NewTillGateway creates the poll-only gateway.
func NewTillGateway(cfg config.ProviderConfig, client HTTPClient, log zerolog.Logger) *TillGateway {
	return &TillGateway{
		cfg:    cfg,
		client: client,
		log:    log.With().Str("provider", "till").Logger(),
	}
}

// Name returns the provider identifier.
func (g *TillGateway) Name() domain.Provider { return domain.ProviderTill }

// Rail returns the settlement rail.
func (g *TillGateway) Rail() domain.Rail { return domain.RailPoll }

type tillIntentRequest struct {
	TillNumber  string `json:"till_number"`
	PhoneNumber string `json:"phone_number"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
}

type tillIntentResponse struct {
	IntentID string `json:"intent_id"`
	Message  string `json:"message"`
}

// Initiate registers the expected payment so the provider tags the incoming
// till transaction with our reference.
func (g *TillGateway) Initiate(ctx context.Context, req ports.InitiationRequest, correlationKey string) (*ports.GatewayResult, error) {
	payload := tillIntentRequest{
		TillNumber:  g.cfg.ShortCode,
		PhoneNumber: req.PayerPhone,
		Amount:      req.Amount,
		Reference:   correlationKey,
	}

	body, err := postJSON(ctx, g.client, "till", g.cfg.BaseURL+"/till/intents", g.cfg.APIKey, payload)
	if err != nil {
		return nil, err
	}

	var resp tillIntentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperror.ErrProviderUnavailable("till", err)
	}
	if resp.IntentID == "" {
		return nil, apperror.ErrProviderRejected("till", resp.Message)
	}

	g.log.Info().Str("intent_id", resp.IntentID).Msg("till intent registered")
	return &ports.GatewayResult{ProviderRef: resp.IntentID}, nil
}

// ParseWebhook always rejects: the till rail has no webhook channel.
func (g *TillGateway) ParseWebhook(body []byte, header http.Header) (*domain.SettlementEvent, error) {
	return nil, apperror.ErrMalformedEvent(errors.New("till rail does not deliver webhooks"))
}

type tillStatementEntry struct {
	Reference  string `json:"reference"`
	Status     string `json:"status"` // COMPLETED, FAILED, PROCESSING
	ResultCode string `json:"result_code"`
	ResultDesc string `json:"result_desc"`
	Amount     int64  `json:"amount"`
}

// ListRecent fetches the till statement window. This is the only settlement
// channel for the till rail.
func (g *TillGateway) ListRecent(ctx context.Context, since time.Time) ([]domain.SettlementEvent, error) {
	u := fmt.Sprintf("%s/till/transactions?till_number=%s&since=%s",
		g.cfg.BaseURL, url.QueryEscape(g.cfg.ShortCode), url.QueryEscape(since.UTC().Format(time.RFC3339)))

	body, err := getJSON(ctx, g.client, "till", u, g.cfg.APIKey)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Entries []tillStatementEntry `json:"entries"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperror.ErrProviderUnavailable("till", err)
	}

	events := make([]domain.SettlementEvent, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		events = append(events, domain.SettlementEvent{
			Source:         domain.SourcePoll,
			Provider:       domain.ProviderTill,
			CorrelationKey: e.Reference,
			Outcome:        pollOutcome(e.Status),
			ResultCode:     e.ResultCode,
			ResultDesc:     e.ResultDesc,
			Amount:         e.Amount,
			ReceivedAt:     time.Now(),
		})
	}
	return events, nil
}
