package config

import (
	"fmt"
	"os"
)

// Config holds all application configuration, supplied via environment
// variables.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string

	// Lambda configuration
	IsLambda bool

	// Authentication. The Cognito pair drives RS256/JWKS verification;
	// JWTSecret switches the verifier into HS256 mode for local development.
	CognitoUserPoolID string
	CognitoClientID   string
	JWTSecret         string

	// Billing
	StripeSecretKey     string
	StripeWebhookSecret string

	// Logging and features
	LogLevel      string
	EnableMetrics bool
	EnableTracing bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "lifelog")),

		IsLambda: os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",

		CognitoUserPoolID: getEnv("COGNITO_USER_POOL_ID", ""),
		CognitoClientID:   getEnv("COGNITO_CLIENT_ID", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DynamoDBTable == "" {
		return fmt.Errorf("TABLE_NAME is required")
	}
	if c.IsProduction() {
		if c.CognitoUserPoolID == "" || c.CognitoClientID == "" {
			return fmt.Errorf("COGNITO_USER_POOL_ID and COGNITO_CLIENT_ID are required in production")
		}
		if c.JWTSecret != "" {
			return fmt.Errorf("JWT_SECRET (HS256 development mode) must not be set in production")
		}
	} else if c.CognitoUserPoolID == "" && c.JWTSecret == "" {
		return fmt.Errorf("either COGNITO_USER_POOL_ID or JWT_SECRET must be set")
	}
	return nil
}

// BillingEnabled reports whether the Stripe surface can be served.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}
