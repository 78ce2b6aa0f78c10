package usecase

import (
	"strings"

	"github.com/spendlens/backend/internal/domain"
)

// confidenceMargin is how much higher a later duplicate's confidence must be
// to displace the first-discovered candidate
const confidenceMargin = 10

// Deduplicate collapses candidates that refer to the same offer. Two
// candidates are duplicates when one's name contains the other's
// (case-insensitive) or their URLs contain each other. The first-discovered
// candidate is retained in place unless a later one is materially more
// confident. A displacement can make the replacement overlap a retained
// candidate its predecessor did not, so the pass repeats until no collapse
// happens; the output never holds two candidates judged equivalent.
func Deduplicate(candidates []domain.AlternativeCandidate) []domain.AlternativeCandidate {
	out := dedupeOnce(candidates)
	for {
		next := dedupeOnce(out)
		if len(next) == len(out) {
			return next
		}
		out = next
	}
}

func dedupeOnce(candidates []domain.AlternativeCandidate) []domain.AlternativeCandidate {
	kept := make([]domain.AlternativeCandidate, 0, len(candidates))

	for _, c := range candidates {
		dupIdx := -1
		for i := range kept {
			if isDuplicate(&kept[i], &c) {
				dupIdx = i
				break
			}
		}
		if dupIdx < 0 {
			kept = append(kept, c)
			continue
		}
		if c.Confidence > kept[dupIdx].Confidence+confidenceMargin {
			kept[dupIdx] = c
		}
	}

	return kept
}

func isDuplicate(a, b *domain.AlternativeCandidate) bool {
	if namesOverlap(a.Name, b.Name) {
		return true
	}
	return urlsOverlap(a.URL, b.URL)
}

func namesOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func urlsOverlap(a, b string) bool {
	a = normalizeURL(a)
	b = normalizeURL(b)
	// short URLs like bare domains would match almost anything
	if len(a) < 12 || len(b) < 12 {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func normalizeURL(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	return strings.TrimSuffix(u, "/")
}
