// Package usecase contains the aggregation pipeline that turns one expense
// into a ranked shortlist of cheaper alternatives.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spendlens/backend/internal/domain"
)

// runState tracks a discovery run through its pipeline stages
type runState string

const (
	stateIdle          runState = "idle"
	stateDispatching   runState = "dispatching"
	stateCollecting    runState = "collecting"
	stateDeduplicating runState = "deduplicating"
	stateFiltering     runState = "filtering"
	stateScoring       runState = "scoring"
	stateRanked        runState = "ranked"
	stateFailed        runState = "failed"
)

// aggregateSource tags progress events describing the whole run rather than
// a single provider
const aggregateSource = "aggregate"

// Defaults applied when the config leaves a field zero
const (
	defaultSearchTimeout = 12 * time.Second
	defaultMaxResults    = 5
	defaultCacheTTL      = time.Hour
)

var nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)

// LocationMatcher attaches store locations to physical candidates and drops
// the ones without a reachable store
type LocationMatcher interface {
	AttachLocations(ctx context.Context, expense *domain.Expense, candidates []domain.AlternativeCandidate, prefs domain.UserPreferences) []domain.AlternativeCandidate
}

// DiscoveryConfig holds configuration for the discovery service
type DiscoveryConfig struct {
	SearchTimeout time.Duration
	MaxResults    int
	CacheTTL      time.Duration
}

// DiscoveryService fans an expense out to all provider adapters, collects
// whatever they find under a tolerant failure policy, and reduces the pile to
// a ranked shortlist
type DiscoveryService struct {
	providers []domain.SearchProvider
	matcher   LocationMatcher
	cache     domain.CacheRepository
	cfg       DiscoveryConfig
	logger    *zap.Logger
}

// NewDiscoveryService creates a discovery service. The matcher and cache may
// be nil, in which case geo enrichment and result caching are skipped.
func NewDiscoveryService(providers []domain.SearchProvider, matcher LocationMatcher, cache domain.CacheRepository, cfg DiscoveryConfig, logger *zap.Logger) *DiscoveryService {
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = defaultSearchTimeout
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscoveryService{
		providers: providers,
		matcher:   matcher,
		cache:     cache,
		cfg:       cfg,
		logger:    logger,
	}
}

// providerResult is one adapter's settled outcome
type providerResult struct {
	name       string
	candidates []domain.AlternativeCandidate
	err        error
}

// Discover runs the full pipeline for one expense. The progress sink is
// closed when the run finishes, so the caller can range over its events.
// The returned error distinguishes "nothing cheaper exists"
// (domain.ErrNoAlternatives) from "the search broke" (domain.ErrSearchFailed).
func (s *DiscoveryService) Discover(ctx context.Context, expense *domain.Expense, prefs domain.UserPreferences, progress *domain.ProgressSink) (*domain.DiscoveryResult, error) {
	defer progress.Close()

	if err := expense.Validate(); err != nil {
		return nil, err
	}
	prefs.Normalize()

	state := stateIdle
	transition := func(next runState) {
		s.logger.Debug("discovery state transition",
			zap.String("from", string(state)),
			zap.String("to", string(next)),
			zap.String("expense", expense.Name))
		state = next
	}

	key := s.cacheKey(expense, prefs)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
			result := *cached
			result.FromCache = true
			progress.Publish(domain.ProgressEvent{Source: aggregateSource, Status: domain.StatusCompleted,
				Percent: 100, Count: len(result.Alternatives), Message: "cached result"})
			return &result, nil
		}
	}

	transition(stateDispatching)
	query := s.buildQuery(expense, prefs)
	names := make([]string, len(s.providers))
	for i, p := range s.providers {
		names[i] = p.Name()
	}

	results := make([]providerResult, len(s.providers))
	var wg sync.WaitGroup
	for i, p := range s.providers {
		wg.Add(1)
		go func(i int, p domain.SearchProvider) {
			defer wg.Done()

			searchCtx, cancel := context.WithTimeout(ctx, s.cfg.SearchTimeout)
			defer cancel()

			candidates, err := p.Search(searchCtx, expense, query, progress)
			results[i] = providerResult{name: p.Name(), candidates: candidates, err: err}

			if err != nil {
				msg := err.Error()
				if errors.Is(err, context.DeadlineExceeded) {
					msg = "timed out"
				}
				progress.Publish(domain.ProgressEvent{Source: p.Name(), Status: domain.StatusError,
					Percent: 100, Message: msg})
			}
			progress.Publish(domain.ProgressEvent{Source: aggregateSource, Status: domain.StatusProcessing,
				Percent: progress.AggregatePercent(names)})
		}(i, p)
	}

	// settle-all: every adapter finishes, success or failure, before the
	// pipeline moves on. A cancelled caller is the one exception: the run
	// abandons the in-flight adapters instead of awaiting them. Each leaked
	// goroutine only writes its own results slot and is released by the ctx
	// it inherited, so nothing reads those slots after abandonment.
	transition(stateCollecting)
	settled := make(chan struct{})
	go func() {
		wg.Wait()
		close(settled)
	}()
	select {
	case <-settled:
	case <-ctx.Done():
		transition(stateFailed)
		return nil, ctx.Err()
	}

	var collected []domain.AlternativeCandidate
	sourceErrors := make(map[string]string)
	for _, r := range results {
		if r.err != nil {
			s.logger.Warn("provider failed",
				zap.String("provider", r.name),
				zap.Error(r.err))
			sourceErrors[r.name] = r.err.Error()
			continue
		}
		collected = append(collected, r.candidates...)
	}

	if len(sourceErrors) == len(s.providers) {
		transition(stateFailed)
		progress.Publish(domain.ProgressEvent{Source: aggregateSource, Status: domain.StatusError,
			Percent: 100, Message: "all providers failed"})
		return &domain.DiscoveryResult{SourceErrors: sourceErrors},
			fmt.Errorf("%w: %d providers errored", domain.ErrSearchFailed, len(sourceErrors))
	}

	if s.matcher != nil {
		collected = s.matcher.AttachLocations(ctx, expense, collected, prefs)
	}

	transition(stateDeduplicating)
	deduped := Deduplicate(collected)

	transition(stateFiltering)
	valid := FilterValid(expense, prefs, deduped)
	if len(valid) == 0 {
		progress.Publish(domain.ProgressEvent{Source: aggregateSource, Status: domain.StatusNoResults,
			Percent: 100, Message: "no cheaper alternatives found"})
		result := &domain.DiscoveryResult{}
		if len(sourceErrors) > 0 {
			result.SourceErrors = sourceErrors
		}
		return result, domain.ErrNoAlternatives
	}

	transition(stateScoring)
	progress.Publish(domain.ProgressEvent{Source: aggregateSource, Status: domain.StatusFormatting,
		Percent: progress.AggregatePercent(names)})
	ranked := Rank(valid)
	if len(ranked) > s.cfg.MaxResults {
		ranked = ranked[:s.cfg.MaxResults]
	}

	transition(stateRanked)
	result := &domain.DiscoveryResult{
		Alternatives: ranked,
		Best:         &ranked[0],
	}
	if len(sourceErrors) > 0 {
		result.SourceErrors = sourceErrors
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache discovery result", zap.Error(err))
		}
	}

	progress.Publish(domain.ProgressEvent{Source: aggregateSource, Status: domain.StatusCompleted,
		Percent: 100, Count: len(ranked)})
	return result, nil
}

// buildQuery derives the immutable per-run search context shared by every
// adapter
func (s *DiscoveryService) buildQuery(expense *domain.Expense, prefs domain.UserPreferences) domain.ProviderQuery {
	return domain.ProviderQuery{
		Category:    expense.Category,
		RadiusKm:    prefs.RadiusKm,
		Sort:        prefs.Sort,
		Coordinates: prefs.Coordinates,
		MaxResults:  s.cfg.MaxResults,
		Country:     "us",
	}
}

// cacheKey normalizes the expense identity plus the preference fields that
// change the outcome
func (s *DiscoveryService) cacheKey(expense *domain.Expense, prefs domain.UserPreferences) string {
	name := strings.ToLower(expense.Name)
	name = nonAlphanumericRegex.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), " ")
	return fmt.Sprintf("alternatives:%s:%.2f:%d", name, expense.Amount, prefs.RadiusKm)
}
