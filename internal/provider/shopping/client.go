// Package shopping implements the structured shopping-search provider adapter
// on a SerpAPI-style Google Shopping endpoint.
package shopping

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spendlens/backend/internal/domain"
)

// Client handles communication with the shopping-search API
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new shopping-search client
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

// Listing is one semi-structured shopping result
type Listing struct {
	ProductID      string  `json:"product_id"`
	Title          string  `json:"title"`
	Price          string  `json:"price"`
	ExtractedPrice float64 `json:"extracted_price"`
	Link           string  `json:"link"`
	Source         string  `json:"source"`
}

type searchResponse struct {
	ShoppingResults []Listing `json:"shopping_results"`
}

// Search runs a shopping search and returns the listings
func (c *Client) Search(ctx context.Context, query, country string, num int) ([]Listing, error) {
	if !c.Configured() {
		return nil, domain.ErrMissingAPIKey
	}

	params := url.Values{}
	params.Add("engine", "google_shopping")
	params.Add("q", query)
	params.Add("gl", country)
	params.Add("num", strconv.Itoa(num))
	params.Add("api_key", c.apiKey)

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

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

	return parsed.ShoppingResults, nil
}
