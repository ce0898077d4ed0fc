package entry

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripServerOwned(t *testing.T) {
	fields := map[string]any{
		"date":         "2025-01-15",
		"focus_rating": 8,
		"userId":       "evil",
		"entryId":      "DAILY_LOG#1#abcdefg",
		"entityType":   "DAILY_LOG",
		"createdAt":    "then",
		"updatedAt":    "now",
	}
	stripped := StripServerOwned(fields)
	assert.Equal(t, map[string]any{"date": "2025-01-15", "focus_rating": 8}, stripped)
	// input untouched
	assert.Contains(t, fields, "userId")
}

func TestNewStampsTimestamps(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	e := New("user-1", EntityTypeDailyLog, map[string]any{"focus_rating": 8, "entryId": "forged"}, now)

	assert.Equal(t, "user-1", e.UserID)
	assert.Equal(t, EntityTypeDailyLog, e.EntityType)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
	assert.Equal(t, "2025-01-15T10:30:00.000Z", e.CreatedAt)
	assert.NotContains(t, e.Fields, "entryId")
}

func TestEntryJSONFlattens(t *testing.T) {
	e := New("user-1", EntityTypeSuccess, map[string]any{"note": "won"}, time.Now())

	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "user-1", flat["userId"])
	assert.Equal(t, "SUCCESS", flat["entityType"])
	assert.Equal(t, "won", flat["note"])

	var back Entry
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, e.UserID, back.UserID)
	assert.Equal(t, e.EntryID, back.EntryID)
	assert.Equal(t, "won", back.Fields["note"])
	assert.NotContains(t, back.Fields, "userId")
}
