//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/cartloop/insights/internal/bootstrap"
	"github.com/cartloop/insights/internal/domain/auth"
	"github.com/cartloop/insights/internal/domain/digest"
	"github.com/cartloop/insights/internal/domain/insights"
	"github.com/cartloop/insights/internal/infra/commerce"
	"github.com/cartloop/insights/internal/infra/config"
	httpiface "github.com/cartloop/insights/internal/interface/http"
	"github.com/cartloop/insights/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideInsightsConfig,
		provideDigestConfig,
		provideAuthConfig,
		providePostgresPool,
		provideCommerceStores,
		provideAuthRepository,
		provideResultCache,
		provideReportStorage,
		provideChatClient,
		provideAuthHandler,
		insights.NewService,
		digest.NewService,
		auth.NewService,
		wire.Bind(new(insights.OrderStore), new(commerce.Stores)),
		wire.Bind(new(insights.CustomerStore), new(commerce.Stores)),
		wire.Bind(new(insights.ProductStore), new(commerce.Stores)),
		httpiface.NewInsightsHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
