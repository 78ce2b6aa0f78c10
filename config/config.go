package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Providers ProvidersConfig
	Discovery DiscoveryConfig
	Cache     CacheConfig
	Logging   LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProvidersConfig holds per-provider credentials and endpoints. Missing API
// keys are allowed: the corresponding adapter short-circuits with an error
// status instead of the whole service refusing to start.
type ProvidersConfig struct {
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	WebSearch WebSearchConfig `mapstructure:"websearch"`
	Shopping  ShoppingConfig  `mapstructure:"shopping"`
	Crawl     CrawlConfig     `mapstructure:"crawl"`
	Places    PlacesConfig    `mapstructure:"places"`
}

// OpenAIConfig configures the generative-suggestion provider
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// WebSearchConfig configures the web-search provider
type WebSearchConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Country  string        `mapstructure:"country"`
	Throttle time.Duration `mapstructure:"throttle"` // minimum inter-request spacing
}

// ShoppingConfig configures the structured shopping-search provider
type ShoppingConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CrawlConfig configures the crawling/product-search provider
type CrawlConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// PlacesConfig configures the places/directory provider
type PlacesConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// DiscoveryConfig holds aggregation pipeline settings
type DiscoveryConfig struct {
	SearchTimeout time.Duration `mapstructure:"search_timeout"`
	MaxResults    int           `mapstructure:"max_results"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/spendlens/")

	v.SetEnvPrefix("SPENDLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional; env vars and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// api_key defaults are registered empty so the keys are known to viper
	// and the SPENDLENS_* env overrides bind during Unmarshal
	v.SetDefault("providers.openai.api_key", "")
	v.SetDefault("providers.openai.base_url", "https://api.openai.com")
	v.SetDefault("providers.openai.model", "gpt-4o-mini")
	v.SetDefault("providers.websearch.api_key", "")
	v.SetDefault("providers.websearch.base_url", "https://google.serper.dev")
	v.SetDefault("providers.websearch.country", "us")
	v.SetDefault("providers.websearch.throttle", "1s")
	v.SetDefault("providers.shopping.api_key", "")
	v.SetDefault("providers.shopping.base_url", "https://serpapi.com")
	v.SetDefault("providers.crawl.api_key", "")
	v.SetDefault("providers.crawl.base_url", "https://api.productcrawl.io")
	v.SetDefault("providers.places.api_key", "")
	v.SetDefault("providers.places.base_url", "https://maps.googleapis.com")

	v.SetDefault("discovery.search_timeout", "12s")
	v.SetDefault("discovery.max_results", 5)

	v.SetDefault("cache.ttl", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("environment must be development, staging, or production, got: %s", config.Server.Environment)
	}

	if config.Discovery.MaxResults < 1 || config.Discovery.MaxResults > 10 {
		return fmt.Errorf("discovery.max_results must be between 1 and 10, got: %d", config.Discovery.MaxResults)
	}

	if config.Discovery.SearchTimeout < time.Second || config.Discovery.SearchTimeout > time.Minute {
		return fmt.Errorf("discovery.search_timeout must be between 1s and 1m, got: %s", config.Discovery.SearchTimeout)
	}

	if config.Providers.WebSearch.Throttle < 0 {
		return fmt.Errorf("providers.websearch.throttle must not be negative, got: %s", config.Providers.WebSearch.Throttle)
	}

	switch config.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got: %s", config.Logging.Format)
	}

	return nil
}
