package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"donation-ledger/config"
	"donation-ledger/internal/core/domain"
	"donation-ledger/internal/core/ports"
	"donation-ledger/internal/service"
	"donation-ledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlowGateway(t *testing.T, baseURL string) *FlowGateway {
	t.Helper()
	cfg := config.ProviderConfig{
		BaseURL:       baseURL,
		APIKey:        "flow-key",
		WebhookSecret: "flow-secret",
		CallbackURL:   "https://donations.example/callback",
	}
	return NewFlowGateway(cfg, service.NewHMACSignatureService(), http.DefaultClient, zerolog.Nop())
}

func TestFlowInitiate_ReturnsCheckoutURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout", r.URL.Path)
		w.Write([]byte(`{"status":"success","data":{"reference":"FLW-9001","checkout_url":"https://checkout.flow.example/FLW-9001"}}`))
	}))
	defer srv.Close()

	g := newFlowGateway(t, srv.URL)
	res, err := g.Initiate(context.Background(), ports.InitiationRequest{
		Amount:     1000,
		Currency:   "KES",
		PayerEmail: "giver@example.com",
	}, "req_1700000000000")

	require.NoError(t, err)
	assert.Equal(t, "FLW-9001", res.ProviderRef)
	assert.Equal(t, "https://checkout.flow.example/FLW-9001", res.CheckoutURL)
	assert.Empty(t, res.PushConfirmation)
}

func TestFlowInitiate_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"currency not supported"}`))
	}))
	defer srv.Close()

	g := newFlowGateway(t, srv.URL)
	_, err := g.Initiate(context.Background(), ports.InitiationRequest{Amount: 1000}, "req_1")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRV_003", appErr.Code)
}

func TestFlowParseWebhook_Successful(t *testing.T) {
	g := newFlowGateway(t, "http://unused")
	body := []byte(`{"event":"charge.completed","data":{"reference":"FLW-9001","merchant_reference":"req_1700000000000","status":"successful","processor_code":"00","processor_desc":"Approved","amount":1000,"currency":"KES"}}`)

	header := http.Header{}
	header.Set("X-Flow-Signature", service.NewHMACSignatureService().Sign("flow-secret", body))

	event, err := g.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceWebhook, event.Source)
	assert.Equal(t, domain.ProviderFlow, event.Provider)
	assert.Equal(t, "req_1700000000000", event.CorrelationKey)
	assert.Equal(t, domain.OutcomeSuccess, event.Outcome)
}

func TestFlowParseWebhook_PendingStatus(t *testing.T) {
	g := newFlowGateway(t, "http://unused")
	body := []byte(`{"event":"charge.pending","data":{"merchant_reference":"req_1","status":"pending"}}`)

	header := http.Header{}
	header.Set("X-Flow-Signature", service.NewHMACSignatureService().Sign("flow-secret", body))

	event, err := g.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomePending, event.Outcome)
}

func TestFlowParseWebhook_BadSignature(t *testing.T) {
	g := newFlowGateway(t, "http://unused")
	body := []byte(`{"event":"charge.completed","data":{"merchant_reference":"req_1","status":"successful"}}`)

	header := http.Header{}
	header.Set("X-Flow-Signature", "ffff")

	_, err := g.ParseWebhook(body, header)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRV_004", appErr.Code)
}

func TestFlowVerifyByReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transactions/verify", r.URL.Path)
		assert.Equal(t, "FLW-9001", r.URL.Query().Get("reference"))
		w.Write([]byte(`{"status":"success","data":{"reference":"FLW-9001","merchant_reference":"req_1700000000000","status":"failed","processor_code":"51","processor_desc":"Declined","amount":1000}}`))
	}))
	defer srv.Close()

	g := newFlowGateway(t, srv.URL)
	event, err := g.VerifyByReference(context.Background(), "FLW-9001")

	require.NoError(t, err)
	assert.Equal(t, domain.SourceRedirect, event.Source)
	assert.Equal(t, "req_1700000000000", event.CorrelationKey)
	assert.Equal(t, domain.OutcomeFailure, event.Outcome)
	assert.Equal(t, "51", event.ResultCode)
}

func TestFlowVerifyByReference_UnknownReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","data":{}}`))
	}))
	defer srv.Close()

	g := newFlowGateway(t, srv.URL)
	_, err := g.VerifyByReference(context.Background(), "FLW-missing")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRV_003", appErr.Code)
}

func TestFlowListRecent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transactions", r.URL.Path)
		w.Write([]byte(`{"data":[{"merchant_reference":"req_1","status":"successful","amount":1000}]}`))
	}))
	defer srv.Close()

	g := newFlowGateway(t, srv.URL)
	events, err := g.ListRecent(context.Background(), time.Now().Add(-30*time.Minute))

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.SourcePoll, events[0].Source)
	assert.Equal(t, domain.OutcomeSuccess, events[0].Outcome)
}
