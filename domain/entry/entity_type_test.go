package entry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRoute(t *testing.T) {
	tests := []struct {
		segment string
		want    EntityType
	}{
		{"daily-log", EntityTypeDailyLog},
		{"become", EntityTypeBecome},
		{"success", EntityTypeSuccess},
		{"letgod", EntityTypeLetGod},
		{"selfreg", EntityTypeSelfReg},
	}
	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			entityType, schema, err := ResolveRoute(tt.segment)
			require.NoError(t, err)
			assert.Equal(t, tt.want, entityType)
			assert.Equal(t, tt.segment, schema.RouteSegment)
			assert.False(t, schema.Legacy)
		})
	}
}

func TestResolveRouteCaseInsensitive(t *testing.T) {
	entityType, _, err := ResolveRoute("Daily-Log")
	require.NoError(t, err)
	assert.Equal(t, EntityTypeDailyLog, entityType)
}

func TestResolveRouteLegacyAlias(t *testing.T) {
	entityType, schema, err := ResolveRoute("entries")
	require.NoError(t, err)
	assert.Equal(t, EntityTypeDailyLog, entityType)
	assert.True(t, schema.Legacy)
	assert.Equal(t, "DAILY_LOG", schema.StoragePrefix)
}

func TestResolveRouteUnknown(t *testing.T) {
	_, _, err := ResolveRoute("widgets")
	var unknown *UnknownEntityTypeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "widgets", unknown.Name)
}

func TestSchemaExhaustive(t *testing.T) {
	for _, entityType := range AllEntityTypes() {
		schema := entityType.Schema()
		assert.NotEmpty(t, schema.RouteSegment, "entity type %s", entityType)
		assert.NotEmpty(t, schema.StoragePrefix, "entity type %s", entityType)
		assert.True(t, entityType.Valid())
	}
	assert.False(t, EntityType("WIDGET").Valid())
}
