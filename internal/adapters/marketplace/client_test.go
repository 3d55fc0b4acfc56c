package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelius/mintbid/internal/domain/integrations"
)

func TestClient_ExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "auth-code-123", r.PostForm.Get("code"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "app-id", user)
		assert.Equal(t, "app-secret", pass)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "access-abc",
			"refresh_token": "refresh-xyz",
			"expires_in":    7200,
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		TokenURL:     server.URL,
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		RedirectURI:  "https://mintbid.example/oauth/callback",
	})

	tokens, err := client.ExchangeCode(context.Background(), "auth-code-123")
	require.NoError(t, err)
	assert.Equal(t, "access-abc", tokens.AccessToken)
	assert.Equal(t, "refresh-xyz", tokens.RefreshToken)
	require.NotNil(t, tokens.ExpiresAt)
}

func TestClient_ExchangeCode_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(Config{TokenURL: server.URL})
	_, err := client.ExchangeCode(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestClient_CreateAndEndListing(t *testing.T) {
	var endCalled bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /listings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-abc", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1881-S Morgan Dollar", body["title"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"listing_id": "ext-555"})
	})
	mux.HandleFunc("POST /listings/ext-555/end", func(w http.ResponseWriter, r *http.Request) {
		endCalled = true
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(Config{ListingURL: server.URL + "/listings"})

	externalID, err := client.CreateListing(context.Background(), "access-abc", &integrations.Listing{
		Title:      "1881-S Morgan Dollar",
		PriceCents: 31250,
	})
	require.NoError(t, err)
	assert.Equal(t, "ext-555", externalID)

	require.NoError(t, client.EndListing(context.Background(), "access-abc", "ext-555"))
	assert.True(t, endCalled)
}
