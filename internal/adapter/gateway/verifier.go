package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"tableserve-backend/config"
	"tableserve-backend/internal/core/ports"
)

// HTTPClient abstracts *http.Client for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Verifier implements ports.GatewayVerifier against the payment gateway's
// verification endpoint. One call per Settle attempt, bounded by the
// client timeout, never retried here; settlement retries arrive as new
// trigger signals anyway.
type Verifier struct {
	client    HTTPClient
	baseURL   string
	secretKey string
}

func NewVerifier(cfg config.GatewayConfig) *Verifier {
	return &Verifier{
		client:    &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		secretKey: cfg.SecretKey,
	}
}

// NewVerifierWithClient injects the HTTP client. Tests use this.
func NewVerifierWithClient(client HTTPClient, baseURL, secretKey string) *Verifier {
	return &Verifier{client: client, baseURL: baseURL, secretKey: secretKey}
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status string `json:"status"`
		Amount int64  `json:"amount"`
	} `json:"data"`
}

func (v *Verifier) VerifyTransaction(ctx context.Context, reference string) (*ports.VerificationResult, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", v.baseURL, url.PathEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+v.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway: %w", err)
	}
	defer resp.Body.Close()

	// The gateway answers 404 for references it has never seen. That is a
	// definitive "not paid", not a transport failure.
	if resp.StatusCode == http.StatusNotFound {
		return &ports.VerificationResult{Success: false, RawStatus: "not_found"}, nil
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, body)
	}

	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("decoding verify response: %w", err)
	}

	return &ports.VerificationResult{
		Success:    vr.Status && vr.Data.Status == "success",
		PaidAmount: vr.Data.Amount,
		RawStatus:  vr.Data.Status,
	}, nil
}
