package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spendlens/backend/internal/domain"
	"github.com/spendlens/backend/internal/extract"
)

const sourceName = "ai-suggestions"

const systemPrompt = `You are a cost-savings assistant. Suggest cheaper alternatives ` +
	`to the user's expense. Only suggest real products and services with factual, ` +
	`verifiable, currently-available pricing. Never invent prices. Respond with a ` +
	`JSON object of the exact shape ` +
	`{"alternatives":[{"name":"","description":"","price":0,"url":"","savings":0}]} ` +
	`and nothing else. Every price must be lower than the current expense amount.`

// suggestionPayload is the structured-output contract expected from the model
type suggestionPayload struct {
	Alternatives []struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		URL         string  `json:"url"`
		Savings     float64 `json:"savings"`
	} `json:"alternatives"`
}

// Adapter asks a generative-text provider for alternative suggestions and
// maps its structured output into the candidate schema
type Adapter struct {
	client *Client
	logger *zap.Logger
}

// NewAdapter creates the generative-suggestion adapter
func NewAdapter(client *Client, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{client: client, logger: logger}
}

func (a *Adapter) Name() string { return sourceName }

// Search sends the expense's full context to the model and parses its
// structured suggestions. A response that does not match the contract is
// treated as zero results, never as a run-wide failure.
func (a *Adapter) Search(ctx context.Context, expense *domain.Expense, query domain.ProviderQuery, progress *domain.ProgressSink) ([]domain.AlternativeCandidate, error) {
	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusStarted, Percent: 5})

	if !a.client.Configured() {
		return nil, fmt.Errorf("%w: generative provider", domain.ErrMissingAPIKey)
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusSearching, Percent: 30})

	raw, err := a.client.Complete(ctx, systemPrompt, a.buildPrompt(expense, query))
	if err != nil {
		return nil, err
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusProcessing, Percent: 70})

	var payload suggestionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		// shape errors mean zero results for this provider, not a failure
		a.logger.Warn("generative response did not match contract",
			zap.String("provider", sourceName),
			zap.Error(err))
		progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusNoResults, Percent: 100,
			Message: "response did not match expected shape"})
		return nil, nil
	}

	candidates := a.mapSuggestions(expense, payload)
	if len(candidates) == 0 {
		progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusNoResults, Percent: 100})
		return nil, nil
	}

	progress.Publish(domain.ProgressEvent{Source: sourceName, Status: domain.StatusCompleted, Percent: 100,
		Count: len(candidates)})
	return candidates, nil
}

// buildPrompt assembles the expense context the model needs to ground its
// suggestions
func (a *Adapter) buildPrompt(expense *domain.Expense, query domain.ProviderQuery) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current expense: %s", expense.Name)
	if expense.Description != "" {
		fmt.Fprintf(&b, " (%s)", expense.Description)
	}
	fmt.Fprintf(&b, "\nCategory: %s", expense.Category)
	fmt.Fprintf(&b, "\nCurrent price: %.2f, billed %s", expense.Amount, expense.Frequency)
	if expense.IsPhysical {
		fmt.Fprintf(&b, "\nThis is a physical good; prefer alternatives available within %d km of lat %.4f, lng %.4f.",
			query.RadiusKm, query.Coordinates.Lat, query.Coordinates.Lng)
	}
	fmt.Fprintf(&b, "\nSuggest up to %d cheaper alternatives.", query.MaxResults)
	return b.String()
}

// mapSuggestions converts the contract payload into candidates, discarding
// items whose price is not actually lower. Savings are recomputed rather than
// trusted from the model.
func (a *Adapter) mapSuggestions(expense *domain.Expense, payload suggestionPayload) []domain.AlternativeCandidate {
	candidates := make([]domain.AlternativeCandidate, 0, len(payload.Alternatives))
	for _, alt := range payload.Alternatives {
		if alt.Name == "" || alt.Price <= 0 || alt.Price >= expense.Amount {
			continue
		}

		text := alt.Name + " " + alt.Description
		candidates = append(candidates, domain.AlternativeCandidate{
			ID:          fmt.Sprintf("%s-%s", sourceName, uuid.NewString()),
			Name:        alt.Name,
			Description: alt.Description,
			Price:       alt.Price,
			Savings:     expense.Amount - alt.Price,
			URL:         alt.URL,
			Source:      extract.StoreName(text),
			Type:        domain.CandidateTypeFor(expense),
			Confidence:  extract.Confidence(text, alt.Price, expense.Amount, expense.Category),
		})
	}
	return candidates
}
