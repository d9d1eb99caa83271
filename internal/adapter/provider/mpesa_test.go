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

func newMpesaGateway(t *testing.T, baseURL string) *MpesaGateway {
	t.Helper()
	cfg := config.ProviderConfig{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		WebhookSecret: "mpesa-secret",
		ShortCode:     "174379",
		CallbackURL:   "https://donations.example/webhook/mpesa",
	}
	return NewMpesaGateway(cfg, service.NewHMACSignatureService(), http.DefaultClient, zerolog.Nop())
}

func TestMpesaInitiate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stkpush/v1/process", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"response_code":"0","checkout_request_id":"ws_CO_123","customer_message":"Enter PIN"}`))
	}))
	defer srv.Close()

	g := newMpesaGateway(t, srv.URL)
	res, err := g.Initiate(context.Background(), ports.InitiationRequest{
		Amount:     500,
		PayerPhone: "254700000001",
	}, "req_1700000000000")

	require.NoError(t, err)
	assert.Equal(t, "ws_CO_123", res.ProviderRef)
	assert.Equal(t, "Enter PIN", res.PushConfirmation)
	assert.Empty(t, res.CheckoutURL)
}

func TestMpesaInitiate_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response_code":"1","response_desc":"Invalid phone number"}`))
	}))
	defer srv.Close()

	g := newMpesaGateway(t, srv.URL)
	_, err := g.Initiate(context.Background(), ports.InitiationRequest{Amount: 500}, "req_1")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRV_003", appErr.Code)
}

func TestMpesaInitiate_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := newMpesaGateway(t, srv.URL)
	_, err := g.Initiate(context.Background(), ports.InitiationRequest{Amount: 500}, "req_1")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRV_001", appErr.Code)
}

func TestMpesaInitiate_ClientErrorIsInvalidRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	g := newMpesaGateway(t, srv.URL)
	_, err := g.Initiate(context.Background(), ports.InitiationRequest{Amount: 500}, "req_1")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRV_002", appErr.Code)
}

func TestMpesaInitiate_ConnectionRefusedIsUnavailable(t *testing.T) {
	g := newMpesaGateway(t, "http://127.0.0.1:1")
	_, err := g.Initiate(context.Background(), ports.InitiationRequest{Amount: 500}, "req_1")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRV_001", appErr.Code)
}

func TestMpesaParseWebhook_Success(t *testing.T) {
	g := newMpesaGateway(t, "http://unused")
	body := []byte(`{"account_reference":"req_1700000000000","result_code":"0","result_desc":"Processed","amount":500,"receipt":"RCT123"}`)

	header := http.Header{}
	header.Set("X-Mpesa-Signature", service.NewHMACSignatureService().Sign("mpesa-secret", body))

	event, err := g.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceWebhook, event.Source)
	assert.Equal(t, domain.ProviderMpesa, event.Provider)
	assert.Equal(t, "req_1700000000000", event.CorrelationKey)
	assert.Equal(t, domain.OutcomeSuccess, event.Outcome)
	assert.Equal(t, int64(500), event.Amount)
}

func TestMpesaParseWebhook_NonZeroCodeIsFailure(t *testing.T) {
	g := newMpesaGateway(t, "http://unused")
	body := []byte(`{"account_reference":"req_1","result_code":"1032","result_desc":"Cancelled by user"}`)

	header := http.Header{}
	header.Set("X-Mpesa-Signature", service.NewHMACSignatureService().Sign("mpesa-secret", body))

	event, err := g.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeFailure, event.Outcome)
	assert.Equal(t, "1032", event.ResultCode)
}

func TestMpesaParseWebhook_BadSignature(t *testing.T) {
	g := newMpesaGateway(t, "http://unused")
	body := []byte(`{"account_reference":"req_1","result_code":"0"}`)

	header := http.Header{}
	header.Set("X-Mpesa-Signature", "deadbeef")

	_, err := g.ParseWebhook(body, header)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRV_004", appErr.Code)
}

func TestMpesaParseWebhook_MissingSignature(t *testing.T) {
	g := newMpesaGateway(t, "http://unused")
	_, err := g.ParseWebhook([]byte(`{}`), http.Header{})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "PRV_004", appErr.Code)
}

func TestMpesaParseWebhook_Malformed(t *testing.T) {
	g := newMpesaGateway(t, "http://unused")
	body := []byte(`not json`)

	header := http.Header{}
	header.Set("X-Mpesa-Signature", service.NewHMACSignatureService().Sign("mpesa-secret", body))

	_, err := g.ParseWebhook(body, header)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "REC_001", appErr.Code)
}

func TestMpesaParseWebhook_MissingFieldsIsMalformed(t *testing.T) {
	g := newMpesaGateway(t, "http://unused")
	body := []byte(`{"amount":500}`)

	header := http.Header{}
	header.Set("X-Mpesa-Signature", service.NewHMACSignatureService().Sign("mpesa-secret", body))

	_, err := g.ParseWebhook(body, header)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "REC_001", appErr.Code)
}

func TestMpesaListRecent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "174379", r.URL.Query().Get("short_code"))
		assert.NotEmpty(t, r.URL.Query().Get("since"))
		w.Write([]byte(`{"transactions":[
			{"account_reference":"req_1","result_code":"0","result_desc":"ok","amount":500,"status":"COMPLETED"},
			{"account_reference":"req_2","result_code":"2001","result_desc":"insufficient funds","amount":300,"status":"FAILED"},
			{"account_reference":"req_3","status":"PROCESSING"}
		]}`))
	}))
	defer srv.Close()

	g := newMpesaGateway(t, srv.URL)
	events, err := g.ListRecent(context.Background(), time.Now().Add(-30*time.Minute))

	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, domain.OutcomeSuccess, events[0].Outcome)
	assert.Equal(t, domain.OutcomeFailure, events[1].Outcome)
	assert.Equal(t, domain.OutcomePending, events[2].Outcome)
	for _, e := range events {
		assert.Equal(t, domain.SourcePoll, e.Source)
	}
}
