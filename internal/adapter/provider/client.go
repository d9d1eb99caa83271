// Package provider holds the outbound adapters for the payment rails.
// Each gateway translates between the provider's wire format and the
// normalized settlement contract; none of them touch the ledger.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"donation-ledger/pkg/apperror"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// postJSON issues an authenticated POST and returns the response body.
// Transport failures and 5xx responses normalize to ProviderUnavailable,
// 4xx to InvalidRequest. A timed-out call is unavailable, never a failure.
func postJSON(ctx context.Context, client HTTPClient, providerName, url, apiKey string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperror.ErrProviderInvalidRequest(providerName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperror.ErrProviderInvalidRequest(providerName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.ErrProviderUnavailable(providerName, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.ErrProviderUnavailable(providerName, err)
	}

	if resp.StatusCode >= 500 {
		return nil, apperror.ErrProviderUnavailable(providerName, fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return nil, apperror.ErrProviderInvalidRequest(providerName, fmt.Errorf("status %d: %s", resp.StatusCode, respBody))
	}
	return respBody, nil
}

// getJSON issues an authenticated GET with the same error normalization.
func getJSON(ctx context.Context, client HTTPClient, providerName, url, apiKey string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.ErrProviderInvalidRequest(providerName, err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.ErrProviderUnavailable(providerName, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.ErrProviderUnavailable(providerName, err)
	}

	if resp.StatusCode >= 500 {
		return nil, apperror.ErrProviderUnavailable(providerName, fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return nil, apperror.ErrProviderInvalidRequest(providerName, fmt.Errorf("status %d: %s", resp.StatusCode, respBody))
	}
	return respBody, nil
}
