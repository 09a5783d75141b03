package banking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"tableserve-backend/config"
	"tableserve-backend/internal/core/ports"
)

// HTTPClient abstracts *http.Client for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Provider implements ports.VirtualAccountProvider against the banking
// partner's dedicated-account API.
type Provider struct {
	client  HTTPClient
	baseURL string
	apiKey  string
}

func NewProvider(cfg config.BankingConfig) *Provider {
	return &Provider{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// NewProviderWithClient injects the HTTP client. Tests use this.
func NewProviderWithClient(client HTTPClient, baseURL, apiKey string) *Provider {
	return &Provider{client: client, baseURL: baseURL, apiKey: apiKey}
}

type createAccountRequest struct {
	CustomerRef string `json:"customer_ref"`
	Email       string `json:"email"`
	Name        string `json:"name"`
}

type createAccountResponse struct {
	Data struct {
		AccountNumber string `json:"account_number"`
		BankName      string `json:"bank_name"`
	} `json:"data"`
}

func (p *Provider) CreateAccount(ctx context.Context, userID uuid.UUID, email, fullName string) (*ports.VirtualAccount, error) {
	payload, err := json.Marshal(createAccountRequest{
		CustomerRef: userID.String(),
		Email:       email,
		Name:        fullName,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding account request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/dedicated-accounts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building account request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling banking provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("banking provider returned status %d: %s", resp.StatusCode, body)
	}

	var ar createAccountResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("decoding account response: %w", err)
	}

	return &ports.VirtualAccount{
		AccountNumber: ar.Data.AccountNumber,
		BankName:      ar.Data.BankName,
	}, nil
}
