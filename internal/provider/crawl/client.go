// Package crawl implements the crawling/product-search provider adapter: a
// targeted product search with source-site scoping and a bounded price range.
package crawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spendlens/backend/internal/domain"
)

// Client handles communication with the product-search API
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new product-search client
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Configured reports whether the client has credentials to call the API
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type searchRequest struct {
	Query    string   `json:"query"`
	Sources  []string `json:"sources,omitempty"`
	PriceMin float64  `json:"price_min"`
	PriceMax float64  `json:"price_max"`
	Limit    int      `json:"limit"`
}

// Product is one crawled product result
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	URL         string  `json:"url"`
	Store       string  `json:"store"`
}

type searchResponse struct {
	Products []Product `json:"products"`
}

// Search runs a scoped product search within the given price range
func (c *Client) Search(ctx context.Context, query string, sources []string, priceMin, priceMax float64, limit int) ([]Product, error) {
	if !c.Configured() {
		return nil, domain.ErrMissingAPIKey
	}

	payload, err := json.Marshal(searchRequest{
		Query:    query,
		Sources:  sources,
		PriceMin: priceMin,
		PriceMax: priceMax,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/products/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	return parsed.Products, nil
}
