// Package extract converts unstructured provider text into typed signals:
// prices, product specifications, store names, and confidence estimates.
// Extractors never fail; a missing signal is reported as "not found".
package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// priceGuardFactor admits near-matches slightly above the original price so
// the final savings filter, not the extractor, makes the keep/drop decision.
const priceGuardFactor = 1.1

// priceRule is one named pattern in the ordered extraction rule list. Rules
// with categories apply only to expenses in those categories.
type priceRule struct {
	name       string
	re         *regexp.Regexp
	categories []string
}

// Ordered from most to least specific: the first positive, in-range match wins.
var priceRules = []priceRule{
	{
		name: "currency_decimal",
		re:   regexp.MustCompile(`[$€£]\s*(\d{1,3}(?:,\d{3})*\.\d{1,2}|\d+\.\d{1,2})`),
	},
	{
		name: "currency_integer",
		re:   regexp.MustCompile(`[$€£]\s*(\d{1,3}(?:,\d{3})*|\d+)`),
	},
	{
		name: "labeled_price",
		re:   regexp.MustCompile(`(?i)\b(?:price|cost|costs|now|only|from)\s*[:\s]\s*\$?\s*(\d+(?:\.\d{1,2})?)`),
	},
	{
		name: "per_period",
		re:   regexp.MustCompile(`(?i)(\d+(?:\.\d{1,2})?)\s*(?:/|per\s+)(?:mo\b|month|yr\b|year|week|wk\b)`),
	},
	{
		name:       "insurance_premium",
		re:         regexp.MustCompile(`(?i)\bpremiums?\s+(?:of\s+|as\s+low\s+as\s+|starting\s+at\s+)?\$?\s*(\d+(?:\.\d{1,2})?)`),
		categories: []string{"insurance"},
	},
	{
		name:       "subscription_plan",
		re:         regexp.MustCompile(`(?i)\bplans?\s+(?:start(?:ing)?\s+at\s+|from\s+)?\$?\s*(\d+(?:\.\d{1,2})?)`),
		categories: []string{"subscription", "streaming", "software"},
	},
}

// Price extracts the first plausible price from free text. A price is
// plausible when it is positive and below priceGuardFactor times the original
// price. Returns false when no rule matches; a value is never fabricated.
func Price(text string, originalPrice float64) (float64, bool) {
	return PriceForCategory(text, originalPrice, "")
}

// PriceForCategory is Price with category-specific rules enabled
func PriceForCategory(text string, originalPrice float64, category string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	category = strings.ToLower(strings.TrimSpace(category))

	for _, rule := range priceRules {
		if !rule.appliesTo(category) {
			continue
		}
		for _, match := range rule.re.FindAllStringSubmatch(text, -1) {
			value, err := parsePriceValue(match[1])
			if err != nil {
				continue
			}
			if value > 0 && value < originalPrice*priceGuardFactor {
				return value, true
			}
		}
	}
	return 0, false
}

func (r priceRule) appliesTo(category string) bool {
	if len(r.categories) == 0 {
		return true
	}
	for _, c := range r.categories {
		if c == category {
			return true
		}
	}
	return false
}

func parsePriceValue(raw string) (float64, error) {
	raw = strings.ReplaceAll(raw, ",", "")
	return strconv.ParseFloat(raw, 64)
}
