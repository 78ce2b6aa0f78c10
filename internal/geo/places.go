package geo

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

// PlacesAPIClient calls a Google-Places-style nearby-search endpoint.
// It implements domain.PlacesClient.
type PlacesAPIClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewPlacesAPIClient creates a new places client
func NewPlacesAPIClient(apiKey, baseURL string) *PlacesAPIClient {
	return &PlacesAPIClient{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Configured reports whether the client has credentials to call the API
func (c *PlacesAPIClient) Configured() bool {
	return c.apiKey != ""
}

type placeResult struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Types []string `json:"types"`
}

type nearbyResponse struct {
	Results []placeResult `json:"results"`
	Status  string        `json:"status"`
}

// NearbySearch finds places of the given type around the center. The radius
// is converted to meters, the unit the provider expects.
func (c *PlacesAPIClient) NearbySearch(ctx context.Context, center domain.Coordinates, radiusKm float64, storeType, keyword string) ([]domain.Place, error) {
	if !c.Configured() {
		return nil, domain.ErrMissingAPIKey
	}

	params := url.Values{}
	params.Add("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
	params.Add("radius", strconv.Itoa(int(radiusKm*1000)))
	params.Add("type", storeType)
	if keyword != "" {
		params.Add("keyword", keyword)
	}
	params.Add("key", c.apiKey)

	reqURL := fmt.Sprintf("%s/maps/api/place/nearbysearch/json?%s", c.baseURL, params.Encode())
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

	var parsed nearbyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("%w: places status %s", domain.ErrProviderFailure, parsed.Status)
	}

	places := make([]domain.Place, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.PlaceID == "" {
			continue
		}
		places = append(places, domain.Place{
			PlaceID: r.PlaceID,
			Name:    r.Name,
			Address: r.Vicinity,
			Coordinates: domain.Coordinates{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			},
			Types: r.Types,
		})
	}
	return places, nil
}
