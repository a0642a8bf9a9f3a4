package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/cartloop/insights/internal/domain/auth"
	"github.com/cartloop/insights/internal/domain/digest"
	"github.com/cartloop/insights/internal/domain/insights"
	"github.com/cartloop/insights/internal/infra/commerce"
	"github.com/cartloop/insights/internal/infra/config"
	"github.com/cartloop/insights/internal/infra/insightcache"
	"github.com/cartloop/insights/internal/infra/llm/chatgpt"
	"github.com/cartloop/insights/internal/infra/reportstore"
	"github.com/cartloop/insights/internal/infra/userrepo"
	httpiface "github.com/cartloop/insights/internal/interface/http"
)

func provideInsightsConfig(cfg *config.Config) insights.Config {
	return insights.Config{
		HistoryDays:        cfg.Insights.HistoryDays,
		DefaultHorizonDays: cfg.Insights.DefaultHorizonDays,
		MaxHorizonDays:     cfg.Insights.MaxHorizonDays,
		LeadTimeDays:       cfg.Insights.LeadTimeDays,
		ServiceLevel:       cfg.Insights.ServiceLevel,
		ExcludeStatuses:    cfg.Insights.ExcludeStatuses,
		CustomerRole:       cfg.Insights.CustomerRole,
		CacheTTL:           cfg.Insights.CacheTTL,
		RelatedLimit:       cfg.Insights.RelatedLimit,
	}
}

func provideDigestConfig(cfg *config.Config) digest.Config {
	return digest.Config{
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		MaxSummaryLen: cfg.Digest.MaxSummaryLen,
		MaxHighlights: cfg.Digest.MaxHighlights,
		DefaultPrompt: cfg.Digest.DefaultPrompt,
	}
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			TokenEncryptionKey:   cfg.Auth.Google.TokenEncryptionKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		},
	}
}

// providePostgresPool returns nil when no DSN is configured or the
// database is unreachable; downstream providers fall back to memory.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory stores")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory stores", "error", err)
		return nil
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory stores", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory stores", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres enabled")
	return pool
}

func provideCommerceStores(pool *pgxpool.Pool, cfg *config.Config, logger *slog.Logger) commerce.Stores {
	if pool == nil {
		return commerce.NewMemoryStores()
	}
	return commerce.NewPostgresStores(pool, cfg.Insights.HistoryDays)
}

func provideAuthRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideResultCache(cfg *config.Config, logger *slog.Logger) insights.ResultCache {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
			return insightcache.NewMemoryCache()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
			return insightcache.NewMemoryCache()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		} else {
			logger.Info("valkey result cache enabled", "addr", cfg.Cache.Addr)
			return insightcache.NewValkeyCache(client, cfg.Cache.Prefix)
		}
	}
	return insightcache.NewMemoryCache()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Cache.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Cache.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Cache.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

// provideReportStorage returns nil when export is disabled; the
// insights service treats a nil storage as "skip export".
func provideReportStorage(cfg *config.Config, logger *slog.Logger) insights.ReportStorage {
	if !cfg.Reports.Enabled {
		return nil
	}
	storage, err := reportstore.NewObjectStorage(cfg.Reports.Endpoint, cfg.Reports.AccessKey, cfg.Reports.SecretKey, cfg.Reports.Bucket, cfg.Reports.Region, logger)
	if err != nil {
		logger.Error("failed to initialize report storage, export disabled", "error", err)
		return nil
	}
	logger.Info("report export enabled", "bucket", cfg.Reports.Bucket)
	return storage
}

// provideChatClient returns a nil interface when no API key is set so
// the digest service can report llm_not_configured.
func provideChatClient(cfg *config.Config) (digest.ChatClient, error) {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		return nil, nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func provideAuthHandler(cfg *config.Config, authSvc auth.Service, logger *slog.Logger) *httpiface.AuthHandler {
	return httpiface.NewAuthHandler(authSvc, cfg.Auth.Google.PostLoginRedirectURL, logger)
}
