// Package websearch implements the general web-search provider adapter on a
// Serper-style JSON search API.
package websearch

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

// Client handles communication with the web-search API
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new web-search client
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
	Query   string `json:"q"`
	Country string `json:"gl,omitempty"`
	Num     int    `json:"num,omitempty"`
}

// SearchResult is one organic web result
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Organic []SearchResult `json:"organic"`
}

// Search runs a web search and returns the organic results
func (c *Client) Search(ctx context.Context, query, country string, num int) ([]SearchResult, error) {
	if !c.Configured() {
		return nil, domain.ErrMissingAPIKey
	}

	payload, err := json.Marshal(searchRequest{Query: query, Country: country, Num: num})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

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

	return parsed.Organic, nil
}
