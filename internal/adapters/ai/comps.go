package ai

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/aurelius/mintbid/internal/domain/consignment"
)

const scrapeTimeout = 30 * time.Second

// Comp is one comparable sold listing extracted from a scrape target.
type Comp struct {
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	URL        string `json:"url"`
}

// CompsScraper fetches a client's configured sold-listing pages and extracts
// comparable prices. Selector keys used from the source config: "item",
// "title", "price", and optionally "link".
type CompsScraper struct {
	client *http.Client
}

// NewCompsScraper creates a new comps scraper
func NewCompsScraper() *CompsScraper {
	return &CompsScraper{
		client: &http.Client{Timeout: scrapeTimeout},
	}
}

// Scrape fetches the source URL and extracts comps using its selectors.
func (s *CompsScraper) Scrape(ctx context.Context, source *consignment.Source) ([]Comp, error) {
	itemSel := source.Selectors["item"]
	titleSel := source.Selectors["title"]
	priceSel := source.Selectors["price"]
	linkSel := source.Selectors["link"]
	if itemSel == "" || priceSel == "" {
		return nil, fmt.Errorf("source %s missing item/price selectors", source.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// Set user agent to avoid bot blocking
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; MintBid-Comps/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var comps []Comp
	doc.Find(itemSel).Each(func(_ int, sel *goquery.Selection) {
		priceCents, ok := parsePrice(sel.Find(priceSel).First().Text())
		if !ok {
			return
		}
		comp := Comp{
			Title:      strings.TrimSpace(sel.Find(titleSel).First().Text()),
			PriceCents: priceCents,
		}
		if linkSel != "" {
			if href, exists := sel.Find(linkSel).First().Attr("href"); exists {
				comp.URL = href
			}
		}
		comps = append(comps, comp)
	})

	return comps, nil
}

// parsePrice converts a display price like "$1,234.56" to cents.
func parsePrice(text string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)
	if cleaned == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return int64(value*100 + 0.5), true
}
