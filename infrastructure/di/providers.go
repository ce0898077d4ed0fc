// Package di wires application dependencies with google/wire.
package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lifelog-backend/application/ports"
	"lifelog-backend/application/services"
	stripeinfra "lifelog-backend/infrastructure/billing"
	"lifelog-backend/infrastructure/config"
	dynamorepo "lifelog-backend/infrastructure/persistence/dynamodb"
	"lifelog-backend/interfaces/http/rest"
	"lifelog-backend/interfaces/http/rest/handlers"
	"lifelog-backend/pkg/auth"
	"lifelog-backend/pkg/observability"
)

// ProvideLogger builds the zap logger from config.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// ProvideAWSConfig loads the AWS SDK config, instrumented with X-Ray when
// tracing is enabled inside Lambda.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.EnableTracing && cfg.IsLambda {
		observability.InstrumentAWS(&awsCfg)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates the DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates the CloudWatch client.
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetrics creates the request metrics publisher.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	return observability.NewMetrics(client, logger, cfg.EnableMetrics)
}

// ProvideVerifier builds the token verifier from the Cognito configuration.
func ProvideVerifier(cfg *config.Config) (*auth.Verifier, error) {
	return auth.NewVerifier(auth.VerifierConfig{
		Region:     cfg.AWSRegion,
		UserPoolID: cfg.CognitoUserPoolID,
		ClientID:   cfg.CognitoClientID,
		SecretKey:  cfg.JWTSecret,
	})
}

// ProvideEntryRepository creates the DynamoDB entry repository.
func ProvideEntryRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.EntryRepository {
	return dynamorepo.NewEntryRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideSubscriptionRepository creates the DynamoDB subscription repository.
func ProvideSubscriptionRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SubscriptionRepository {
	return dynamorepo.NewSubscriptionRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideEntryService creates the entry CRUD service.
func ProvideEntryService(repo ports.EntryRepository, logger *zap.Logger) *services.EntryService {
	return services.NewEntryService(repo, logger)
}

// ProvideCheckoutGateway creates the Stripe checkout gateway.
func ProvideCheckoutGateway(cfg *config.Config, logger *zap.Logger) ports.CheckoutGateway {
	return stripeinfra.NewStripeGateway(cfg.StripeSecretKey, logger)
}

// ProvideWebhookVerifier creates the Stripe webhook signature verifier.
func ProvideWebhookVerifier(cfg *config.Config) handlers.WebhookVerifier {
	return stripeinfra.NewWebhookVerifier(cfg.StripeWebhookSecret)
}

// ProvideBillingService creates the billing service.
func ProvideBillingService(checkout ports.CheckoutGateway, subs ports.SubscriptionRepository, logger *zap.Logger) *services.BillingService {
	return services.NewBillingService(checkout, subs, logger)
}

// ProvideEntryHandler creates the entry HTTP handler.
func ProvideEntryHandler(service *services.EntryService, logger *zap.Logger) *handlers.EntryHandler {
	return handlers.NewEntryHandler(service, logger)
}

// ProvideBillingHandler creates the billing HTTP handler.
func ProvideBillingHandler(service *services.BillingService, verifier handlers.WebhookVerifier, logger *zap.Logger) *handlers.BillingHandler {
	return handlers.NewBillingHandler(service, verifier, logger)
}

// ProvideRouter assembles the HTTP router.
func ProvideRouter(
	entries *handlers.EntryHandler,
	billingHandler *handlers.BillingHandler,
	verifier *auth.Verifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(entries, billingHandler, verifier, metrics, logger)
}
