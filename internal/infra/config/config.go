package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Insights InsightsConfig `yaml:"insights"`
	Digest   DigestConfig   `yaml:"digest"`
	Auth     AuthConfig     `yaml:"auth"`
	Postgres PostgresConfig `yaml:"postgres"`
	Cache    CacheConfig    `yaml:"cache"`
	Reports  ReportsConfig  `yaml:"reports"`
	LLM      LLMConfig      `yaml:"llm"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// InsightsConfig tunes the analytics engines.
type InsightsConfig struct {
	HistoryDays        int           `yaml:"historyDays"`
	DefaultHorizonDays int           `yaml:"defaultHorizonDays"`
	MaxHorizonDays     int           `yaml:"maxHorizonDays"`
	LeadTimeDays       int           `yaml:"leadTimeDays"`
	ServiceLevel       float64       `yaml:"serviceLevel"`
	ExcludeStatuses    []string      `yaml:"excludeStatuses"`
	CustomerRole       string        `yaml:"customerRole"`
	CacheTTL           time.Duration `yaml:"cacheTtl"`
	RelatedLimit       int           `yaml:"relatedLimit"`
}

// DigestConfig controls the executive digest generation.
type DigestConfig struct {
	MaxSummaryLen int    `yaml:"maxSummaryLen"`
	MaxHighlights int    `yaml:"maxHighlights"`
	DefaultPrompt string `yaml:"defaultPrompt"`
}

// AuthConfig drives token issuance and Google sign-in.
type AuthConfig struct {
	Secret          string           `yaml:"secret"`
	TokenTTL        time.Duration    `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration    `yaml:"refreshTokenTtl"`
	Google          AuthGoogleConfig `yaml:"google"`
}

// AuthGoogleConfig holds OAuth settings for Google sign-in.
type AuthGoogleConfig struct {
	ClientID             string `yaml:"clientId"`
	ClientSecret         string `yaml:"clientSecret"`
	RedirectURL          string `yaml:"redirectUrl"`
	TokenEncryptionKey   string `yaml:"tokenEncryptionKey"`
	PostLoginRedirectURL string `yaml:"postLoginRedirectUrl"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// CacheConfig contains connection information for the result cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// ReportsConfig configures S3-compatible report export.
type ReportsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("INSIGHTS_HISTORY_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Insights.HistoryDays = parsed
		}
	}
	if v := os.Getenv("INSIGHTS_DEFAULT_HORIZON_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Insights.DefaultHorizonDays = parsed
		}
	}
	if v := os.Getenv("INSIGHTS_MAX_HORIZON_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Insights.MaxHorizonDays = parsed
		}
	}
	if v := os.Getenv("INSIGHTS_LEAD_TIME_DAYS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Insights.LeadTimeDays = parsed
		}
	}
	if v := os.Getenv("INSIGHTS_SERVICE_LEVEL"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Insights.ServiceLevel = parsed
		}
	}
	if v := os.Getenv("INSIGHTS_EXCLUDE_STATUSES"); v != "" {
		cfg.Insights.ExcludeStatuses = splitAndTrim(v)
	}
	if v := os.Getenv("INSIGHTS_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Insights.CacheTTL = parsed
		}
	}
	if v := os.Getenv("INSIGHTS_RELATED_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Insights.RelatedLimit = parsed
		}
	}
	if v := os.Getenv("DIGEST_MAX_SUMMARY_LEN"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Digest.MaxSummaryLen = parsed
		}
	}
	if v := os.Getenv("DIGEST_MAX_HIGHLIGHTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Digest.MaxHighlights = parsed
		}
	}
	if v := os.Getenv("DIGEST_DEFAULT_PROMPT"); v != "" {
		cfg.Digest.DefaultPrompt = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.RefreshTokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.Google.ClientID = v
	}
	if v := os.Getenv("AUTH_GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.Google.ClientSecret = v
	}
	if v := os.Getenv("AUTH_GOOGLE_REDIRECT_URL"); v != "" {
		cfg.Auth.Google.RedirectURL = v
	}
	if v := os.Getenv("AUTH_GOOGLE_TOKEN_ENCRYPTION_KEY"); v != "" {
		cfg.Auth.Google.TokenEncryptionKey = v
	}
	if v := os.Getenv("AUTH_GOOGLE_POST_LOGIN_REDIRECT_URL"); v != "" {
		cfg.Auth.Google.PostLoginRedirectURL = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = isTruthy(v)
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("CACHE_PREFIX"); v != "" {
		cfg.Cache.Prefix = v
	}
	if v := os.Getenv("REPORTS_ENABLED"); v != "" {
		cfg.Reports.Enabled = isTruthy(v)
	}
	if v := os.Getenv("REPORTS_ENDPOINT"); v != "" {
		cfg.Reports.Endpoint = v
	}
	if v := os.Getenv("REPORTS_ACCESS_KEY"); v != "" {
		cfg.Reports.AccessKey = v
	}
	if v := os.Getenv("REPORTS_SECRET_KEY"); v != "" {
		cfg.Reports.SecretKey = v
	}
	if v := os.Getenv("REPORTS_BUCKET"); v != "" {
		cfg.Reports.Bucket = v
	}
	if v := os.Getenv("REPORTS_REGION"); v != "" {
		cfg.Reports.Region = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func isTruthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if clean := strings.TrimSpace(p); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/insights/digest",
				},
			},
		},
		Insights: InsightsConfig{
			HistoryDays:        90,
			DefaultHorizonDays: 30,
			MaxHorizonDays:     90,
			LeadTimeDays:       7,
			ServiceLevel:       0.95,
			ExcludeStatuses:    []string{"cancelled", "refunded"},
			CustomerRole:       "customer",
			CacheTTL:           6 * time.Hour,
			RelatedLimit:       5,
		},
		Digest: DigestConfig{
			MaxSummaryLen: 400,
			MaxHighlights: 5,
			DefaultPrompt: "You are a retail analyst. Write a brief executive digest of the store metrics you are given. Respond using the format: SUMMARY:\\n<summary>\\n\\nHIGHLIGHTS:\\nhighlight1, highlight2, ...",
		},
		Auth: AuthConfig{
			Secret:          "dev-insecure-secret",
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
		Postgres: PostgresConfig{
			DSN:      "",
			MaxConns: 4,
			MinConns: 0,
		},
		Cache: CacheConfig{
			Enabled: false,
			Addr:    "",
			Prefix:  "insights",
		},
		Reports: ReportsConfig{
			Enabled: false,
			Region:  "auto",
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Insights.HistoryDays <= 0 {
		return errors.New("insights.historyDays must be positive")
	}
	if c.Insights.DefaultHorizonDays <= 0 {
		return errors.New("insights.defaultHorizonDays must be positive")
	}
	if c.Insights.MaxHorizonDays < c.Insights.DefaultHorizonDays {
		return errors.New("insights.maxHorizonDays cannot be below the default horizon")
	}
	if c.Insights.LeadTimeDays <= 0 {
		return errors.New("insights.leadTimeDays must be positive")
	}
	if c.Insights.ServiceLevel <= 0 || c.Insights.ServiceLevel >= 1 {
		return errors.New("insights.serviceLevel must be between 0 and 1")
	}
	if c.Insights.CustomerRole == "" {
		return errors.New("insights.customerRole cannot be empty")
	}
	if c.Insights.CacheTTL < 0 {
		return errors.New("insights.cacheTtl cannot be negative")
	}
	if c.Insights.RelatedLimit <= 0 {
		return errors.New("insights.relatedLimit must be positive")
	}
	if c.Digest.MaxSummaryLen <= 0 {
		return errors.New("digest.maxSummaryLen must be positive")
	}
	if c.Digest.MaxHighlights <= 0 {
		return errors.New("digest.maxHighlights must be positive")
	}
	if c.Auth.Secret == "" {
		return errors.New("auth.secret cannot be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.tokenTtl must be positive")
	}
	if c.Auth.RefreshTokenTTL <= c.Auth.TokenTTL {
		return errors.New("auth.refreshTokenTtl must exceed auth.tokenTtl")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when the cache is enabled")
	}
	if c.Reports.Enabled {
		if strings.TrimSpace(c.Reports.Endpoint) == "" {
			return errors.New("reports.endpoint cannot be empty when report export is enabled")
		}
		if strings.TrimSpace(c.Reports.Bucket) == "" {
			return errors.New("reports.bucket cannot be empty when report export is enabled")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
