package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/backend/internal/domain"
)

func testExpense() *domain.Expense {
	return &domain.Expense{
		ID:        "exp-1",
		Name:      "Cable TV Package",
		Category:  "subscription",
		Amount:    60,
		Frequency: domain.FrequencyMonthly,
	}
}

func testQuery() domain.ProviderQuery {
	return domain.ProviderQuery{
		Category:   "subscription",
		RadiusKm:   10,
		MaxResults: 5,
		Country:    "us",
	}
}

// completionServer wraps the given content string in a chat-completions
// response envelope
func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "Cable TV Package")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": chatMessage{Role: "assistant", Content: content}},
			},
		})
	}))
}

func drainStatuses(sink *domain.ProgressSink) []domain.ProgressStatus {
	sink.Close()
	var statuses []domain.ProgressStatus
	for ev := range sink.Events() {
		statuses = append(statuses, ev.Status)
	}
	return statuses
}

func TestSearch_Success(t *testing.T) {
	content := `{"alternatives":[
		{"name":"Streaming Bundle","description":"Same channels over the internet","price":25,"url":"https://example.com/bundle","savings":999},
		{"name":"Premium Tier","description":"More channels","price":75,"url":"https://example.com/premium","savings":0},
		{"name":"","description":"nameless","price":10,"url":"","savings":0}
	]}`
	server := completionServer(t, content)
	defer server.Close()

	adapter := NewAdapter(NewClient("test-key", server.URL, ""), nil)
	sink := domain.NewProgressSink(16)

	candidates, err := adapter.Search(context.Background(), testExpense(), testQuery(), sink)
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	got := candidates[0]
	assert.Equal(t, "Streaming Bundle", got.Name)
	assert.Equal(t, 25.0, got.Price)
	// savings come from the expense amount, not from the model
	assert.Equal(t, 35.0, got.Savings)
	assert.Equal(t, domain.CandidateSubscription, got.Type)
	assert.True(t, strings.HasPrefix(got.ID, "ai-suggestions-"))
	assert.Greater(t, got.Confidence, 0)

	statuses := drainStatuses(sink)
	require.NotEmpty(t, statuses)
	assert.Equal(t, domain.StatusCompleted, statuses[len(statuses)-1])
}

func TestSearch_MalformedContentYieldsNoResults(t *testing.T) {
	server := completionServer(t, "here are some ideas: get a cheaper plan")
	defer server.Close()

	adapter := NewAdapter(NewClient("test-key", server.URL, ""), nil)
	sink := domain.NewProgressSink(16)

	candidates, err := adapter.Search(context.Background(), testExpense(), testQuery(), sink)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	statuses := drainStatuses(sink)
	require.NotEmpty(t, statuses)
	assert.Equal(t, domain.StatusNoResults, statuses[len(statuses)-1])
}

func TestSearch_MissingAPIKey(t *testing.T) {
	adapter := NewAdapter(NewClient("", "https://api.example.com", ""), nil)

	_, err := adapter.Search(context.Background(), testExpense(), testQuery(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
}

func TestSearch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewAdapter(NewClient("test-key", server.URL, ""), nil)

	_, err := adapter.Search(context.Background(), testExpense(), testQuery(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}

func TestSearch_AllSuggestionsRejected(t *testing.T) {
	content := `{"alternatives":[{"name":"Worse Deal","description":"","price":90,"url":"","savings":0}]}`
	server := completionServer(t, content)
	defer server.Close()

	adapter := NewAdapter(NewClient("test-key", server.URL, ""), nil)
	sink := domain.NewProgressSink(16)

	candidates, err := adapter.Search(context.Background(), testExpense(), testQuery(), sink)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	statuses := drainStatuses(sink)
	assert.Equal(t, domain.StatusNoResults, statuses[len(statuses)-1])
}
