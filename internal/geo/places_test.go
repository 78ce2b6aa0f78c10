package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendlens/backend/internal/domain"
)

func TestNearbySearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/place/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "10000", r.URL.Query().Get("radius"))
		assert.Equal(t, "supermarket", r.URL.Query().Get("type"))
		assert.Equal(t, "Aldi", r.URL.Query().Get("keyword"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"place_id": "pl-1",
					"name": "Aldi",
					"vicinity": "12 Market St",
					"geometry": {"location": {"lat": 40.72, "lng": -74.0}},
					"types": ["supermarket", "store"]
				},
				{
					"name": "No ID Entry"
				}
			]
		}`))
	}))
	defer server.Close()

	client := NewPlacesAPIClient("test-key", server.URL)
	places, err := client.NearbySearch(context.Background(), userLocation, 10, "supermarket", "Aldi")
	require.NoError(t, err)
	require.Len(t, places, 1, "results without a place ID are skipped")

	got := places[0]
	assert.Equal(t, "pl-1", got.PlaceID)
	assert.Equal(t, "Aldi", got.Name)
	assert.Equal(t, "12 Market St", got.Address)
	assert.Equal(t, 40.72, got.Coordinates.Lat)
	assert.Contains(t, got.Types, "supermarket")
}

func TestNearbySearch_ZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	}))
	defer server.Close()

	client := NewPlacesAPIClient("test-key", server.URL)
	places, err := client.NearbySearch(context.Background(), userLocation, 10, "supermarket", "")
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestNearbySearch_ProviderStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "OVER_QUERY_LIMIT", "results": []}`))
	}))
	defer server.Close()

	client := NewPlacesAPIClient("test-key", server.URL)
	_, err := client.NearbySearch(context.Background(), userLocation, 10, "supermarket", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProviderFailure)
}

func TestNearbySearch_MissingAPIKey(t *testing.T) {
	client := NewPlacesAPIClient("", "https://maps.example.com")
	_, err := client.NearbySearch(context.Background(), userLocation, 10, "supermarket", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingAPIKey)
}
