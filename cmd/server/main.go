package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"github.com/spendlens/backend/config"
	httpDelivery "github.com/spendlens/backend/internal/delivery/http"
	"github.com/spendlens/backend/internal/domain"
	"github.com/spendlens/backend/internal/geo"
	"github.com/spendlens/backend/internal/infrastructure/cache"
	"github.com/spendlens/backend/internal/provider/crawl"
	"github.com/spendlens/backend/internal/provider/openai"
	"github.com/spendlens/backend/internal/provider/shopping"
	"github.com/spendlens/backend/internal/provider/websearch"
	"github.com/spendlens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting SpendLens backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port))

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache()
	defer memoryCache.Close()

	// Provider adapters. Adapters with missing API keys stay registered and
	// report their own failure per search, so partial configurations still
	// serve results from the remaining sources.
	aiAdapter := openai.NewAdapter(
		openai.NewClient(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.BaseURL, cfg.Providers.OpenAI.Model),
		logger,
	)
	webLimiter := rate.NewLimiter(rate.Every(cfg.Providers.WebSearch.Throttle), 1)
	webAdapter := websearch.NewAdapter(
		websearch.NewClient(cfg.Providers.WebSearch.APIKey, cfg.Providers.WebSearch.BaseURL),
		webLimiter,
		logger,
	)
	shoppingAdapter := shopping.NewAdapter(
		shopping.NewClient(cfg.Providers.Shopping.APIKey, cfg.Providers.Shopping.BaseURL),
		logger,
	)
	crawlAdapter := crawl.NewAdapter(
		crawl.NewClient(cfg.Providers.Crawl.APIKey, cfg.Providers.Crawl.BaseURL),
		logger,
	)
	providers := []domain.SearchProvider{aiAdapter, webAdapter, shoppingAdapter, crawlAdapter}
	for _, p := range providers {
		logger.Info("provider registered", zap.String("source", p.Name()))
	}

	// Geo enrichment is optional: without a places key physical candidates
	// are simply dropped by the filter stage.
	var matcher usecase.LocationMatcher
	if cfg.Providers.Places.APIKey != "" {
		places := geo.NewPlacesAPIClient(cfg.Providers.Places.APIKey, cfg.Providers.Places.BaseURL)
		matcher = geo.NewMatcher(places, logger)
	} else {
		logger.Warn("places API key not configured, physical alternatives will not be located")
	}

	discovery := usecase.NewDiscoveryService(
		providers,
		matcher,
		memoryCache,
		usecase.DiscoveryConfig{
			SearchTimeout: cfg.Discovery.SearchTimeout,
			MaxResults:    cfg.Discovery.MaxResults,
			CacheTTL:      cfg.Cache.TTL,
		},
		logger,
	)

	handler := httpDelivery.NewHandler(discovery, logger)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "", "info":
		level = zapcore.InfoLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	var zcfg zap.Config
	switch cfg.Format {
	case "json":
		zcfg = zap.NewProductionConfig()
	case "", "console":
		zcfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
