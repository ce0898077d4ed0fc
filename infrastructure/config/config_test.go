package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "lifelog", cfg.DynamoDBTable)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.EnableMetrics)
	assert.False(t, cfg.BillingEnabled())
}

func TestLoadConfigTableNameOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("DYNAMODB_TABLE", "fallback-table")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "fallback-table", cfg.DynamoDBTable)

	t.Setenv("TABLE_NAME", "primary-table")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "primary-table", cfg.DynamoDBTable)
}

func TestValidateRequiresAuthConfig(t *testing.T) {
	cfg := &Config{Environment: "development", DynamoDBTable: "t"}
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "dev-secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{Environment: "production", DynamoDBTable: "t"}
	assert.Error(t, cfg.Validate(), "production requires Cognito")

	cfg.CognitoUserPoolID = "us-east-1_Abc123"
	cfg.CognitoClientID = "client-123"
	assert.NoError(t, cfg.Validate())

	cfg.JWTSecret = "dev-secret"
	assert.Error(t, cfg.Validate(), "HS256 development mode is forbidden in production")
}

func TestLambdaDetection(t *testing.T) {
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "lifelog-api")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsLambda)
}
