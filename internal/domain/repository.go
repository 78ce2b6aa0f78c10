package domain

import (
	"context"
	"time"
)

// SearchProvider is the contract every provider adapter implements.
// Implementations map provider-specific payloads into AlternativeCandidate at
// their own boundary and publish ProgressEvents to the sink as they work.
// A nil sink must be tolerated.
type SearchProvider interface {
	// Name identifies the provider in progress events and candidate IDs
	Name() string
	Search(ctx context.Context, expense *Expense, query ProviderQuery, progress *ProgressSink) ([]AlternativeCandidate, error)
}

// PlacesClient defines the interface for the places/directory provider
type PlacesClient interface {
	NearbySearch(ctx context.Context, center Coordinates, radiusKm float64, storeType, keyword string) ([]Place, error)
}

// CacheRepository defines the interface for caching completed discovery runs
type CacheRepository interface {
	Get(ctx context.Context, key string) (*DiscoveryResult, error)
	Set(ctx context.Context, key string, result *DiscoveryResult, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
