package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/backend/internal/domain"
)

// fakeDiscovery returns a canned result or error and closes the sink the way
// the real service does
type fakeDiscovery struct {
	result *domain.DiscoveryResult
	err    error

	gotExpense *domain.Expense
	gotPrefs   domain.UserPreferences
}

func (f *fakeDiscovery) Discover(ctx context.Context, expense *domain.Expense, prefs domain.UserPreferences, progress *domain.ProgressSink) (*domain.DiscoveryResult, error) {
	defer progress.Close()
	f.gotExpense = expense
	f.gotPrefs = prefs
	return f.result, f.err
}

func searchBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"expense": map[string]any{
			"id":        "exp-1",
			"name":      "Streaming Service",
			"category":  "streaming",
			"amount":    18,
			"frequency": "monthly",
		},
		"preferences": map[string]any{
			"locationRadiusKm": 10,
		},
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func performSearch(t *testing.T, discovery DiscoveryUsecase, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := NewHandler(discovery, nil)
	router.POST("/api/v1/alternatives/search", handler.SearchAlternatives)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alternatives/search", body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSearchAlternatives_Success(t *testing.T) {
	best := domain.AlternativeCandidate{ID: "a", Name: "Ad Tier", Price: 8, Savings: 10, Confidence: 90}
	fake := &fakeDiscovery{result: &domain.DiscoveryResult{
		Alternatives: []domain.AlternativeCandidate{best},
		Best:         &best,
	}}

	w := performSearch(t, fake, searchBody(t))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status       string                        `json:"status"`
		Alternatives []domain.AlternativeCandidate `json:"alternatives"`
		Best         *domain.AlternativeCandidate  `json:"best"`
		FromCache    bool                          `json:"fromCache"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Alternatives, 1)
	assert.Equal(t, "Ad Tier", resp.Alternatives[0].Name)
	require.NotNil(t, resp.Best)
	assert.Equal(t, "a", resp.Best.ID)

	require.NotNil(t, fake.gotExpense)
	assert.Equal(t, "Streaming Service", fake.gotExpense.Name)
	assert.Equal(t, 10, fake.gotPrefs.RadiusKm)
}

func TestSearchAlternatives_MalformedBody(t *testing.T) {
	fake := &fakeDiscovery{}

	w := performSearch(t, fake, bytes.NewBufferString("{not json"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, fake.gotExpense, "discovery should not run on a malformed body")
}

func TestSearchAlternatives_InvalidExpense(t *testing.T) {
	fake := &fakeDiscovery{err: domain.ErrInvalidExpense}

	w := performSearch(t, fake, searchBody(t))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp["status"])
}

func TestSearchAlternatives_NoAlternatives(t *testing.T) {
	fake := &fakeDiscovery{
		result: &domain.DiscoveryResult{SourceErrors: map[string]string{"web-search": "timed out"}},
		err:    domain.ErrNoAlternatives,
	}

	w := performSearch(t, fake, searchBody(t))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "no_alternatives", resp["status"])
	assert.Contains(t, resp, "sourceErrors")
}

func TestSearchAlternatives_SearchFailed(t *testing.T) {
	fake := &fakeDiscovery{
		result: &domain.DiscoveryResult{SourceErrors: map[string]string{"p1": "boom", "p2": "bang"}},
		err:    domain.ErrSearchFailed,
	}

	w := performSearch(t, fake, searchBody(t))
	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "search_failed", resp["status"])
}

func TestSearchAlternatives_UnexpectedError(t *testing.T) {
	fake := &fakeDiscovery{err: context.DeadlineExceeded}

	w := performSearch(t, fake, searchBody(t))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	handler := NewHandler(&fakeDiscovery{}, nil)
	router.GET("/health", handler.HealthCheck)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "spendlens-backend", resp["service"])
}
