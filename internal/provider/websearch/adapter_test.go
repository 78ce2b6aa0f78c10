package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/spendlens/backend/internal/domain"
)

func testExpense() *domain.Expense {
	return &domain.Expense{
		ID:         "exp-1",
		Name:       "Olive Oil",
		Category:   "groceries",
		Amount:     45,
		Frequency:  domain.FrequencyMonthly,
		IsPhysical: true,
	}
}

func testQuery() domain.ProviderQuery {
	return domain.ProviderQuery{Category: "groceries", RadiusKm: 10, MaxResults: 5, Country: "us"}
}

func searchServer(t *testing.T, results []SearchResult) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-KEY"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "Olive Oil")
		assert.Contains(t, req.Query, "cheaper alternative price")
		assert.Equal(t, "us", req.Country)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{Organic: results})
	}))
}

func TestSearch_ExtractsCandidates(t *testing.T) {
	server := searchServer(t, []SearchResult{
		{
			Title:   "Store brand olive oil deal",
			Link:    "https://shop.example.com/olive-oil",
			Snippet: "2L bottle now $29.99 at Aldi",
		},
		{
			Title:   "History of olive oil production",
			Link:    "https://wiki.example.org/olive-oil",
			Snippet: "Cultivation began thousands of years ago",
		},
		{
			Title:   "Olive oil buying guide",
			Link:    "https://blog.example.com/guide",
			Snippet: "What to look for when you buy, no prices here",
		},
	})
	defer server.Close()

	adapter := NewAdapter(NewClient("test-key", server.URL), nil, nil)
	sink := domain.NewProgressSink(16)

	candidates, err := adapter.Search(context.Background(), testExpense(), testQuery(), sink)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	got := candidates[0]
	assert.Equal(t, 29.99, got.Price)
	assert.InDelta(t, 15.01, got.Savings, 0.001)
	assert.Equal(t, "Aldi", got.Source)
	assert.Equal(t, "https://shop.example.com/olive-oil", got.URL)
	assert.Equal(t, domain.CandidatePhysical, got.Type)

	sink.Close()
	var last domain.ProgressEvent
	for ev := range sink.Events() {
		last = ev
	}
	assert.Equal(t, domain.StatusCompleted, last.Status)
	assert.Equal(t, 100, last.Percent)
}

func TestSearch_DeduplicatesByURL(t *testing.T) {
	duplicate := SearchResult{
		Title:   "Olive oil sale",
		Link:    "https://shop.example.com/same",
		Snippet: "On sale for $30.00, buy now",
	}
	server := searchServer(t, []SearchResult{duplicate, duplicate, duplicate})
	defer server.Close()

	adapter := NewAdapter(NewClient("test-key", server.URL), nil, nil)

	candidates, err := adapter.Search(context.Background(), testExpense(), testQuery(), nil)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestSearch_NoRelevantResults(t *testing.T) {
	server := searchServer(t, []SearchResult{
		{Title: "Unrelated article", Link: "https://example.com/a", Snippet: "Nothing to do with cooking"},
	})
	defer server.Close()

	adapter := NewAdapter(NewClient("test-key", server.URL), nil, nil)
	sink := domain.NewProgressSink(16)

	candidates, err := adapter.Search(context.Background(), testExpense(), testQuery(), sink)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	sink.Close()
	var last domain.ProgressEvent
	for ev := range sink.Events() {
		last = ev
	}
	assert.Equal(t, domain.StatusNoResults, last.Status)
}

func TestSearch_MissingAPIKey(t *testing.T) {
	adapter := NewAdapter(NewClient("", "https://api.example.com"), nil, nil)

	_, err := adapter.Search(context.Background(), testExpense(), testQuery(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
}

func TestSearch_RespectsRateLimiterCancellation(t *testing.T) {
	// zero-rate limiter never refills, so Wait fails fast on a cancelled
	// context
	limiter := rate.NewLimiter(0, 1)
	adapter := NewAdapter(NewClient("test-key", "https://api.example.com"), limiter, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Search(ctx, testExpense(), testQuery(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := NewAdapter(NewClient("test-key", server.URL), nil, nil)

	_, err := adapter.Search(context.Background(), testExpense(), testQuery(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}
