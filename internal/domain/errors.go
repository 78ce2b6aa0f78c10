package domain

import "errors"

var (
	// ErrInvalidExpense is returned when the expense record cannot be searched
	ErrInvalidExpense = errors.New("invalid expense parameters")

	// ErrMissingAPIKey is returned when a provider has no credentials configured
	ErrMissingAPIKey = errors.New("provider API key not configured")

	// ErrProviderFailure is returned when an external provider request fails
	ErrProviderFailure = errors.New("provider request failed")

	// ErrMalformedResponse is returned when a provider response does not match
	// the expected schema
	ErrMalformedResponse = errors.New("provider response did not match expected shape")

	// ErrNoAlternatives is returned when the search succeeded but nothing
	// cheaper was found
	ErrNoAlternatives = errors.New("no cheaper alternatives found")

	// ErrSearchFailed is returned when every provider errored, so the absence
	// of results says nothing about whether cheaper alternatives exist
	ErrSearchFailed = errors.New("alternative search failed for every provider")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
