package shopping

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spendlens/backend/internal/domain"
	"github.com/spendlens/backend/internal/extract"
)

const sourceName = "shopping-search"

// Adapter maps semi-structured shopping listings into candidates. Listings
// carry literal product titles, so beyond price validity this adapter also
// enforces specification matching: a 1L listing is not an alternative to a 2L
// expense no matter how cheap it is.
type Adapter struct {
	client *Client
	logger *zap.Logger
}

// NewAdapter creates the shopping-search adapter
func NewAdapter(client *Client, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, logger: logger}
}

func (a *Adapter) Name() string { return sourceName }

// Search queries the shopping provider and filters listings by price validity
// and specification agreement with the expense
func (a *Adapter) Search(ctx context.Context, expense *domain.Expense, query domain.ProviderQuery, progress *domain.ProgressSink) ([]domain.AlternativeCandidate, error) {
	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusStarted, Percent: 5})

	if !a.client.Configured() {
		return nil, fmt.Errorf("%w: shopping-search provider", domain.ErrMissingAPIKey)
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusSearching, Percent: 30})

	listings, err := a.client.Search(ctx, expense.Name, query.Country, query.MaxResults*3)
	if err != nil {
		return nil, err
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusProcessing, Percent: 60,
		Count: len(listings)})

	wantSpec := extract.Specification(expense.Name + " " + expense.Description)
	candidates := a.mapListings(expense, wantSpec, listings, query.MaxResults)
	if len(candidates) == 0 {
		progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusNoResults, Percent: 100})
		return nil, nil
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusCompleted, Percent: 100,
		Count: len(candidates)})
	return candidates, nil
}

func (a *Adapter) mapListings(expense *domain.Expense, wantSpec map[string]string, listings []Listing, limit int) []domain.AlternativeCandidate {
	var candidates []domain.AlternativeCandidate

	for _, l := range listings {
		if len(candidates) >= limit {
			break
		}
		if l.Title == "" {
			continue
		}

		price := l.ExtractedPrice
		if price <= 0 {
			extracted, ok := extract.Price(l.Price, expense.Amount)
			if !ok {
				continue
			}
			price = extracted
		}
		if price <= 0 || price >= expense.Amount {
			continue
		}

		if !extract.SpecsCompatible(wantSpec, extract.Specification(l.Title)) {
			a.logger.Debug("listing rejected on specification mismatch",
				zap.String("provider", sourceName),
				zap.String("title", l.Title))
			continue
		}

		source := strings.TrimSpace(l.Source)
		if source == "" {
			source = extract.StoreName(l.Title)
		}

		id := l.ProductID
		if id == "" {
			id = uuid.NewString()
		}

		candidates = append(candidates, domain.AlternativeCandidate{
			ID:         fmt.Sprintf("%s-%s", sourceName, id),
			Name:       strings.TrimSpace(l.Title),
			Price:      price,
			Savings:    expense.Amount - price,
			URL:        l.Link,
			Source:     source,
			Type:       domain.CandidateTypeFor(expense),
			Confidence: extract.Confidence(l.Title, price, expense.Amount, expense.Category),
		})
	}

	return candidates
}
