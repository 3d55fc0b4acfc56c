package metalsfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelius/mintbid/internal/domain/metals"
)

func TestClient_FetchSpot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/spot/gold", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"metal":     "gold",
			"price_usd": 2652.75,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	quote, err := client.FetchSpot(context.Background(), metals.Gold)

	require.NoError(t, err)
	assert.Equal(t, metals.Gold, quote.Metal)
	assert.Equal(t, int64(265275), quote.Price)
	assert.False(t, quote.FetchedAt.IsZero())
}

func TestClient_FetchSpot_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "upstream 5xx",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
		{
			name: "non-positive price",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"metal": "gold", "price_usd": 0})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, "")
			_, err := client.FetchSpot(context.Background(), metals.Gold)
			assert.Error(t, err)
		})
	}
}
