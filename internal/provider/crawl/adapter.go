package crawl

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spendlens/backend/internal/domain"
	"github.com/spendlens/backend/internal/extract"
)

const sourceName = "product-crawl"

// fallbackSource labels synthetic placeholder data so it can never be
// mistaken for a real result
const fallbackSource = "Sample Data"

// categorySources scopes the crawl to retailer sites relevant to the category
var categorySources = map[string][]string{
	"groceries":   {"walmart.com", "aldi.us", "kroger.com"},
	"grocery":     {"walmart.com", "aldi.us", "kroger.com"},
	"electronics": {"bestbuy.com", "newegg.com", "microcenter.com"},
	"clothing":    {"target.com", "hm.com", "uniqlo.com"},
	"furniture":   {"ikea.com", "wayfair.com"},
}

var defaultSources = []string{"walmart.com", "target.com", "amazon.com"}

// Adapter issues targeted product searches with an acceptable price range of
// [max(1, amount*minPct), amount]. minPct rises with the amount: the larger
// the purchase, the less credible a steep discount is.
type Adapter struct {
	client *Client
	logger *zap.Logger
}

// NewAdapter creates the crawling/product-search adapter
func NewAdapter(client *Client, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, logger: logger}
}

func (a *Adapter) Name() string { return sourceName }

// Search runs the scoped product search. When the provider is unavailable it
// falls back to deterministic placeholder candidates and says so in the
// progress stream; it never silently returns empty.
func (a *Adapter) Search(ctx context.Context, expense *domain.Expense, query domain.ProviderQuery, progress *domain.ProgressSink) ([]domain.AlternativeCandidate, error) {
	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusStarted, Percent: 5})

	priceMin := minPrice(expense.Amount)
	sources := sourcesForCategory(expense.Category)

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusSearching, Percent: 30})

	products, err := a.client.Search(ctx, expense.Name, sources, priceMin, expense.Amount, query.MaxResults*2)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		a.logger.Warn("product crawl unavailable, using fallback data",
			zap.String("provider", sourceName),
			zap.Error(err))
		progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusProcessing, Percent: 80,
			Message: "provider unavailable, using fallback data"})
		candidates := a.fallbackCandidates(expense)
		progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusCompleted, Percent: 100,
			Count: len(candidates), Message: "fallback data"})
		return candidates, nil
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusProcessing, Percent: 60,
		Count: len(products)})

	candidates := a.mapProducts(expense, products, priceMin, query.MaxResults)
	if len(candidates) == 0 {
		progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusNoResults, Percent: 100})
		return nil, nil
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusCompleted, Percent: 100,
		Count: len(candidates)})
	return candidates, nil
}

func (a *Adapter) mapProducts(expense *domain.Expense, products []Product, priceMin float64, limit int) []domain.AlternativeCandidate {
	var candidates []domain.AlternativeCandidate

	for _, p := range products {
		if len(candidates) >= limit {
			break
		}
		if p.Title == "" || p.Price < priceMin || p.Price >= expense.Amount {
			continue
		}

		source := strings.TrimSpace(p.Store)
		if source == "" {
			source = extract.StoreName(p.Title + " " + p.URL)
		}

		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}

		text := p.Title + " " + p.Description
		candidates = append(candidates, domain.AlternativeCandidate{
			ID:          fmt.Sprintf("%s-%s", sourceName, id),
			Name:        strings.TrimSpace(p.Title),
			Description: strings.TrimSpace(p.Description),
			Price:       p.Price,
			Savings:     expense.Amount - p.Price,
			URL:         p.URL,
			Source:      source,
			Type:        domain.CandidateTypeFor(expense),
			Confidence:  extract.Confidence(text, p.Price, expense.Amount, expense.Category),
		})
	}

	return candidates
}

// fallbackCandidates builds deterministic placeholders derived from the
// expense, tagged so they are distinguishable from real results
func (a *Adapter) fallbackCandidates(expense *domain.Expense) []domain.AlternativeCandidate {
	discounts := []float64{0.85, 0.75}
	candidates := make([]domain.AlternativeCandidate, 0, len(discounts))

	for i, d := range discounts {
		price := round2(expense.Amount * d)
		if price <= 0 || price >= expense.Amount {
			continue
		}
		candidates = append(candidates, domain.AlternativeCandidate{
			ID:          fmt.Sprintf("%s-fallback-%d", sourceName, i+1),
			Name:        fmt.Sprintf("Example: %s alternative", expense.Name),
			Description: "Sample placeholder generated while the product-search provider is unavailable.",
			Price:       price,
			Savings:     expense.Amount - price,
			Source:      fallbackSource,
			Type:        domain.CandidateTypeFor(expense),
			Confidence:  25,
		})
	}
	return candidates
}

// minPrice is the bottom of the acceptable price range. The floor ratio grows
// with the amount so large purchases do not admit implausible savings, and is
// never below 1 currency unit.
func minPrice(amount float64) float64 {
	var pct float64
	switch {
	case amount < 20:
		pct = 0.2
	case amount < 100:
		pct = 0.35
	case amount < 500:
		pct = 0.5
	default:
		pct = 0.6
	}
	floor := amount * pct
	if floor < 1 {
		return 1
	}
	return floor
}

func sourcesForCategory(category string) []string {
	if s, ok := categorySources[strings.ToLower(strings.TrimSpace(category))]; ok {
		return s
	}
	return defaultSources
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
