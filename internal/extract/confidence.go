package extract

import "strings"

// Confidence score bounds and adjustments
const (
	baseConfidence = 70

	officialBonus   = 10 // explicit/official/verified phrasing
	comparisonBonus = 5  // price-comparison framing

	approximationPenalty = 15 // "around", "approximately"
	tooClosePenalty      = 20 // price suspiciously close to the original
	tooCheapPenalty      = 25 // price implausibly far below the original

	tooCloseRatio = 0.9
)

var officialPhrases = []string{
	"official", "verified", "official site", "official price", "msrp",
}

var comparisonPhrases = []string{
	"compare", "comparison", "best price", "lowest price", "price match",
}

var approximationPhrases = []string{
	"around", "approximately", "approx", "roughly", "about", "estimated", "up to",
}

// Confidence estimates how reliable an extracted price is, on a 0-100 scale.
// Explicit or comparison-authoritative phrasing raises the score; hedging
// language and implausible price ratios lower it. The plausibility floor is
// category-dependent: insurance and subscription pricing legitimately varies
// more than physical goods.
func Confidence(text string, price, originalPrice float64, category string) int {
	score := baseConfidence
	lower := strings.ToLower(text)

	if containsAny(lower, officialPhrases) {
		score += officialBonus
	}
	if containsAny(lower, comparisonPhrases) {
		score += comparisonBonus
	}
	if containsAny(lower, approximationPhrases) {
		score -= approximationPenalty
	}

	if originalPrice > 0 && price > 0 {
		ratio := price / originalPrice
		if ratio > tooCloseRatio {
			score -= tooClosePenalty
		}
		if ratio < plausibilityFloor(category) {
			score -= tooCheapPenalty
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// plausibilityFloor is the lowest price-to-original ratio considered credible
// for a category
func plausibilityFloor(category string) float64 {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "insurance":
		return 0.2
	case "subscription", "streaming", "software":
		return 0.3
	default:
		return 0.5
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
