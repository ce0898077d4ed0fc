//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"lifelog-backend/infrastructure/config"
)

// SuperSet is the main provider set.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideCloudWatchClient,
	ProvideMetrics,
	ProvideVerifier,
	ProvideEntryRepository,
	ProvideSubscriptionRepository,
	ProvideEntryService,
	ProvideCheckoutGateway,
	ProvideWebhookVerifier,
	ProvideBillingService,
	ProvideEntryHandler,
	ProvideBillingHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
