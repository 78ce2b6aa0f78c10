package usecase

import (
	"sort"

	"github.com/spendlens/backend/internal/domain"
	"github.com/spendlens/backend/internal/extract"
)

// FilterValid drops candidates that fail the validity rules: savings must be
// strictly positive, physical candidates need an in-radius location, and the
// candidate's specification must not contradict the expense's. Savings and
// confidence are re-derived here so adapters cannot smuggle bad values past
// the filter.
func FilterValid(expense *domain.Expense, prefs domain.UserPreferences, candidates []domain.AlternativeCandidate) []domain.AlternativeCandidate {
	wantSpec := extract.Specification(expense.Name + " " + expense.Description)

	kept := make([]domain.AlternativeCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.Savings = expense.Amount - c.Price
		if c.Savings <= 0 {
			continue
		}
		if c.Confidence < 0 {
			c.Confidence = 0
		}
		if c.Confidence > 100 {
			c.Confidence = 100
		}

		if c.Type == domain.CandidatePhysical {
			if c.Location == nil || c.Location.DistanceKm > float64(prefs.RadiusKm) {
				continue
			}
		}

		if !extract.SpecsCompatible(wantSpec, extract.Specification(c.Name+" "+c.Description)) {
			continue
		}

		kept = append(kept, c)
	}
	return kept
}

// Rank orders candidates by descending score with a stable sort; equal scores
// fall back to the lower price, then input order
func Rank(candidates []domain.AlternativeCandidate) []domain.AlternativeCandidate {
	ranked := make([]domain.AlternativeCandidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := ranked[i].Score(), ranked[j].Score()
		if si != sj {
			return si > sj
		}
		return ranked[i].Price < ranked[j].Price
	})
	return ranked
}
