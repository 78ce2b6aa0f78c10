package websearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spendlens/backend/internal/domain"
	"github.com/spendlens/backend/internal/extract"
)

const sourceName = "web-search"

// categoryRetailers are retailer hint keywords appended to the search query
// per expense category, so results skew toward shopping pages
var categoryRetailers = map[string][]string{
	"groceries":   {"Aldi", "Lidl", "Walmart"},
	"grocery":     {"Aldi", "Lidl", "Walmart"},
	"electronics": {"Best Buy", "Newegg", "Micro Center"},
	"clothing":    {"Target", "H&M", "Uniqlo"},
	"insurance":   {"GEICO", "Progressive"},
	"streaming":   {"Netflix", "Hulu", "Disney+"},
}

// storeIndicators mark a result as referencing a seller even without a price
var storeIndicators = []string{
	"store", "shop", "buy", "deal", "offer", "sale", "retailer", "subscribe",
}

// Adapter searches the open web for cheaper offers and runs the raw results
// through the text extractors
type Adapter struct {
	client  *Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewAdapter creates the web-search adapter. The limiter enforces the
// provider's minimum inter-request spacing and is shared across all discovery
// runs; pass the same instance everywhere.
func NewAdapter(client *Client, limiter *rate.Limiter, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, limiter: limiter, logger: logger}
}

func (a *Adapter) Name() string { return sourceName }

// Search queries the web-search provider and extracts price/store signals
// from relevant organic results
func (a *Adapter) Search(ctx context.Context, expense *domain.Expense, query domain.ProviderQuery, progress *domain.ProgressSink) ([]domain.AlternativeCandidate, error) {
	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusStarted, Percent: 5})

	if !a.client.Configured() {
		return nil, fmt.Errorf("%w: web-search provider", domain.ErrMissingAPIKey)
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusSearching, Percent: 30})

	results, err := a.client.Search(ctx, a.buildQuery(expense), query.Country, query.MaxResults*3)
	if err != nil {
		return nil, err
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusProcessing, Percent: 60,
		Count: len(results)})

	candidates := a.mapResults(expense, results, query.MaxResults)
	if len(candidates) == 0 {
		progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusNoResults, Percent: 100})
		return nil, nil
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusCompleted, Percent: 100,
		Count: len(candidates)})
	return candidates, nil
}

// buildQuery assembles product name, category, and retailer hints into one
// search query
func (a *Adapter) buildQuery(expense *domain.Expense) string {
	parts := []string{expense.Name}
	if expense.Category != "" {
		parts = append(parts, expense.Category)
	}
	parts = append(parts, "cheaper alternative price")
	if hints, ok := categoryRetailers[strings.ToLower(expense.Category)]; ok {
		parts = append(parts, strings.Join(hints, " "))
	}
	return strings.Join(parts, " ")
}

// mapResults filters raw results for relevance and extracts candidates
func (a *Adapter) mapResults(expense *domain.Expense, results []SearchResult, limit int) []domain.AlternativeCandidate {
	seenURLs := make(map[string]bool)
	var candidates []domain.AlternativeCandidate

	for _, r := range results {
		if len(candidates) >= limit {
			break
		}

		text := r.Title + " " + r.Snippet
		if !a.relevant(expense, text) {
			continue
		}

		price, ok := extract.PriceForCategory(text, expense.Amount, expense.Category)
		if !ok || price >= expense.Amount {
			continue
		}

		if r.Link == "" || seenURLs[r.Link] {
			continue
		}
		seenURLs[r.Link] = true

		candidates = append(candidates, domain.AlternativeCandidate{
			ID:          fmt.Sprintf("%s-%s", sourceName, uuid.NewString()),
			Name:        strings.TrimSpace(r.Title),
			Description: strings.TrimSpace(r.Snippet),
			Price:       price,
			Savings:     expense.Amount - price,
			URL:         r.Link,
			Source:      extract.StoreName(text),
			Type:        domain.CandidateTypeFor(expense),
			Confidence:  extract.Confidence(text, price, expense.Amount, expense.Category),
		})
	}

	return candidates
}

// relevant requires a price or store indicator plus a reference to the
// product or its category; anything else is noise
func (a *Adapter) relevant(expense *domain.Expense, text string) bool {
	lower := strings.ToLower(text)

	hasPriceSignal := strings.ContainsAny(text, "$€£") ||
		strings.Contains(lower, "price") || strings.Contains(lower, "cost")
	hasStoreSignal := containsAnyWord(lower, storeIndicators)
	if !hasPriceSignal && !hasStoreSignal {
		return false
	}

	for _, token := range strings.Fields(strings.ToLower(expense.Name)) {
		if len(token) > 2 && strings.Contains(lower, token) {
			return true
		}
	}
	return expense.Category != "" && strings.Contains(lower, strings.ToLower(expense.Category))
}

func containsAnyWord(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
