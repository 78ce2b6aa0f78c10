package geo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spendlens/backend/internal/domain"
	"github.com/spendlens/backend/internal/extract"
)

// storeTypesForCategory maps an expense category to the place types worth
// querying for it
func storeTypesForCategory(category string) []string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "groceries", "grocery", "food":
		return []string{"supermarket", "grocery_or_supermarket"}
	case "electronics":
		return []string{"electronics_store"}
	case "clothing", "apparel":
		return []string{"clothing_store", "shoe_store"}
	default:
		return []string{"store"}
	}
}

// Matcher resolves nearby stores for physical candidates and attaches
// location data. Candidates of non-physical types bypass it untouched.
type Matcher struct {
	places domain.PlacesClient
	logger *zap.Logger
}

// NewMatcher creates a geo matcher backed by the given places provider
func NewMatcher(places domain.PlacesClient, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{places: places, logger: logger}
}

// AttachLocations finds in-radius stores for every physical candidate.
// Physical candidates that cannot be matched to a store inside the radius are
// dropped: without a reachable location they are not actionable. The radius
// is a hard filter, not a sort hint.
func (m *Matcher) AttachLocations(ctx context.Context, expense *domain.Expense, candidates []domain.AlternativeCandidate, prefs domain.UserPreferences) []domain.AlternativeCandidate {
	physicalCount := 0
	for i := range candidates {
		if candidates[i].Type == domain.CandidatePhysical {
			physicalCount++
		}
	}
	if physicalCount == 0 {
		return candidates
	}

	places := m.collectPlaces(ctx, expense, candidates, prefs)
	assignments := matchPlaces(candidates, places, storeTypesForCategory(expense.Category))

	kept := make([]domain.AlternativeCandidate, 0, len(candidates))
	for i := range candidates {
		c := candidates[i]
		if c.Type != domain.CandidatePhysical {
			kept = append(kept, c)
			continue
		}
		loc, ok := assignments[c.ID]
		if !ok {
			m.logger.Debug("dropping physical candidate without in-radius store",
				zap.String("candidate", c.Name))
			continue
		}
		c.Location = loc
		kept = append(kept, c)
	}
	return kept
}

// scoredPlace is a place with its precomputed distance from the user
type scoredPlace struct {
	domain.Place
	distanceKm float64
}

// collectPlaces queries every relevant store type concurrently, deduplicates
// by place ID, and discards anything beyond the radius
func (m *Matcher) collectPlaces(ctx context.Context, expense *domain.Expense, candidates []domain.AlternativeCandidate, prefs domain.UserPreferences) []scoredPlace {
	keyword := brandKeyword(candidates)
	storeTypes := storeTypesForCategory(expense.Category)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	var all []domain.Place

	for _, st := range storeTypes {
		wg.Add(1)
		go func(storeType string) {
			defer wg.Done()
			found, err := m.places.NearbySearch(ctx, prefs.Coordinates, float64(prefs.RadiusKm), storeType, keyword)
			if err != nil {
				m.logger.Warn("places query failed",
					zap.String("storeType", storeType),
					zap.Error(err))
				return
			}
			mu.Lock()
			all = append(all, found...)
			mu.Unlock()
		}(st)
	}
	wg.Wait()

	seen := make(map[string]bool)
	var scored []scoredPlace
	for _, p := range all {
		if seen[p.PlaceID] {
			continue
		}
		seen[p.PlaceID] = true

		d := Distance(prefs.Coordinates, p.Coordinates)
		if d > float64(prefs.RadiusKm) {
			continue
		}
		scored = append(scored, scoredPlace{Place: p, distanceKm: d})
	}

	// closest first, place ID as a deterministic tie-break
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].distanceKm == scored[j].distanceKm {
			return scored[i].PlaceID < scored[j].PlaceID
		}
		return scored[i].distanceKm < scored[j].distanceKm
	})
	return scored
}

// matchPlaces assigns each physical candidate at most one place, and each
// place to at most one candidate. Name matches win over proximity.
func matchPlaces(candidates []domain.AlternativeCandidate, places []scoredPlace, storeTypes []string) map[string]*domain.Location {
	assignments := make(map[string]*domain.Location)
	taken := make(map[string]bool)

	for i := range candidates {
		c := &candidates[i]
		if c.Type != domain.CandidatePhysical {
			continue
		}

		idx := findByName(c.Source, places, taken)
		if idx < 0 {
			idx = findByType(places, storeTypes, taken)
		}
		if idx < 0 {
			continue
		}

		p := places[idx]
		taken[p.PlaceID] = true
		assignments[c.ID] = &domain.Location{
			Name:        p.Name,
			Address:     p.Address,
			DistanceKm:  p.distanceKm,
			Coordinates: p.Coordinates,
		}
	}
	return assignments
}

// findByName returns the closest unassigned place whose name matches the
// candidate's source, or -1
func findByName(source string, places []scoredPlace, taken map[string]bool) int {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" || source == strings.ToLower(extract.UnknownStore) {
		return -1
	}
	for i, p := range places {
		if taken[p.PlaceID] {
			continue
		}
		name := strings.ToLower(p.Name)
		if strings.Contains(name, source) || strings.Contains(source, name) {
			return i
		}
	}
	return -1
}

// findByType returns the closest unassigned place classified under one of the
// category's store types, or -1
func findByType(places []scoredPlace, storeTypes []string, taken map[string]bool) int {
	for i, p := range places {
		if taken[p.PlaceID] {
			continue
		}
		for _, pt := range p.Types {
			for _, st := range storeTypes {
				if pt == st {
					return i
				}
			}
		}
	}
	return -1
}

// brandKeyword builds the places keyword from candidate store names,
// deduplicated across candidates
func brandKeyword(candidates []domain.AlternativeCandidate) string {
	seen := make(map[string]bool)
	var brands []string
	for i := range candidates {
		src := strings.TrimSpace(candidates[i].Source)
		if src == "" || src == extract.UnknownStore {
			continue
		}
		key := strings.ToLower(src)
		if seen[key] {
			continue
		}
		seen[key] = true
		brands = append(brands, src)
	}
	return strings.Join(brands, " ")
}
