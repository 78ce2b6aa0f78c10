package domain

import "strings"

// CandidateType classifies what kind of alternative a candidate is
type CandidateType string

const (
	CandidatePhysical     CandidateType = "physical"
	CandidateService      CandidateType = "service"
	CandidateSubscription CandidateType = "subscription"
	CandidateInsurance    CandidateType = "insurance"
)

// Location is a physical store location attached to a physical candidate
type Location struct {
	Name        string      `json:"name"`
	Address     string      `json:"address,omitempty"`
	DistanceKm  float64     `json:"distanceKm"`
	Coordinates Coordinates `json:"coordinates"`
}

// AlternativeCandidate is a single cheaper alternative discovered by a
// provider. Candidates are created by an adapter, optionally enriched with a
// location by the geo matcher, and consolidated by the aggregator.
type AlternativeCandidate struct {
	ID          string        `json:"id"` // provider-namespaced, e.g. "shopping-4f1a..."
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Price       float64       `json:"price"`
	Savings     float64       `json:"savings"`
	URL         string        `json:"url,omitempty"`
	Source      string        `json:"source"`
	Type        CandidateType `json:"type"`
	Location    *Location     `json:"location,omitempty"`
	Confidence  int           `json:"confidence"` // 0-100; 0 means no estimate
}

// Score is the ranking value: absolute savings weighted by confidence.
// Candidates without a confidence estimate are weighted at full value.
func (c *AlternativeCandidate) Score() float64 {
	weight := 1.0
	if c.Confidence > 0 {
		weight = float64(c.Confidence) / 100.0
	}
	return c.Savings * weight
}

// ProviderQuery is the per-run search context handed to every adapter.
// It is derived once from the expense and user preferences and never mutated.
type ProviderQuery struct {
	Category    string
	RadiusKm    int
	Sort        SortPreference
	Coordinates Coordinates
	MaxResults  int
	Country     string // ISO 3166-1 alpha-2 lowercase, e.g. "us"
}

// DiscoveryResult is the final output of a discovery run
type DiscoveryResult struct {
	Alternatives []AlternativeCandidate `json:"alternatives"`
	Best         *AlternativeCandidate  `json:"best,omitempty"`
	SourceErrors map[string]string      `json:"sourceErrors,omitempty"`
	FromCache    bool                   `json:"fromCache,omitempty"`
}

// CandidateTypeFor derives the candidate type for alternatives to an expense
func CandidateTypeFor(e *Expense) CandidateType {
	if e.IsPhysical {
		return CandidatePhysical
	}
	switch strings.ToLower(strings.TrimSpace(e.Category)) {
	case "insurance":
		return CandidateInsurance
	case "subscription", "streaming", "software":
		return CandidateSubscription
	default:
		return CandidateService
	}
}

// Place is a store location returned by the places provider
type Place struct {
	PlaceID     string
	Name        string
	Address     string
	Coordinates Coordinates
	Types       []string
}
