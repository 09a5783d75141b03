package banking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_CreateAccount(t *testing.T) {
	userID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/dedicated-accounts", r.URL.Path)
		assert.Equal(t, "Bearer bk_key", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, userID.String(), body["customer_ref"])
		assert.Equal(t, "ada@example.com", body["email"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"account_number":"0123456789","bank_name":"Wema Bank"}}`))
	}))
	defer srv.Close()

	p := NewProviderWithClient(srv.Client(), srv.URL, "bk_key")

	acct, err := p.CreateAccount(context.Background(), userID, "ada@example.com", "Ada Obi")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", acct.AccountNumber)
	assert.Equal(t, "Wema Bank", acct.BankName)
}

func TestProvider_CreateAccount_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewProviderWithClient(srv.Client(), srv.URL, "bk_key")

	acct, err := p.CreateAccount(context.Background(), uuid.New(), "ada@example.com", "Ada Obi")
	assert.Error(t, err)
	assert.Nil(t, acct)
}
