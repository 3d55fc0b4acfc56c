package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurelius/mintbid/internal/domain/consignment"
)

const soldListingsPage = `
<html><body>
<ul class="sold">
  <li class="lot">
    <a class="lot-link" href="/lots/101"><span class="lot-title">1881-S Morgan Dollar MS-64</span></a>
    <span class="lot-price">$312.50</span>
  </li>
  <li class="lot">
    <a class="lot-link" href="/lots/102"><span class="lot-title">1921 Peace Dollar AU-58</span></a>
    <span class="lot-price">$1,150.00</span>
  </li>
  <li class="lot">
    <span class="lot-title">Unsold lot, no price</span>
    <span class="lot-price">—</span>
  </li>
</ul>
</body></html>`

func TestCompsScraper_Scrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(soldListingsPage))
	}))
	defer server.Close()

	source := &consignment.Source{
		ID:  uuid.New(),
		URL: server.URL,
		Selectors: map[string]string{
			"item":  "li.lot",
			"title": ".lot-title",
			"price": ".lot-price",
			"link":  "a.lot-link",
		},
	}

	comps, err := NewCompsScraper().Scrape(context.Background(), source)
	require.NoError(t, err)
	require.Len(t, comps, 2, "lot without a parseable price is skipped")

	assert.Equal(t, "1881-S Morgan Dollar MS-64", comps[0].Title)
	assert.Equal(t, int64(31250), comps[0].PriceCents)
	assert.Equal(t, "/lots/101", comps[0].URL)
	assert.Equal(t, int64(115000), comps[1].PriceCents)
}

func TestCompsScraper_MissingSelectors(t *testing.T) {
	source := &consignment.Source{
		ID:        uuid.New(),
		URL:       "http://example.invalid",
		Selectors: map[string]string{"title": ".t"},
	}

	_, err := NewCompsScraper().Scrape(context.Background(), source)
	assert.Error(t, err)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"$312.50", 31250, true},
		{"$1,150.00", 115000, true},
		{" 45 ", 4500, true},
		{"—", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := parsePrice(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
