package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lifelog-backend/domain/entry"
	"lifelog-backend/infrastructure/persistence/memory"
	apperrors "lifelog-backend/pkg/errors"
)

func newTestEntryService(t *testing.T) (*EntryService, *memory.EntryRepository) {
	t.Helper()
	repo := memory.NewEntryRepository()
	return NewEntryService(repo, zap.NewNop()), repo
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		legacy bool
		want   int
	}{
		{"zero uses default", 0, false, 100},
		{"negative uses default", -5, false, 100},
		{"in range passes through", 42, false, 42},
		{"capped at max", 5000, false, 500},
		{"legacy zero uses default", 0, true, 50},
		{"legacy capped at max", 500, true, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampLimit(tt.limit, tt.legacy))
		})
	}
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	svc, _ := newTestEntryService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", entry.EntityTypeDailyLog, map[string]any{
		"date":         "2025-01-15",
		"focus_rating": 8,
		"userId":       "forged",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^DAILY_LOG#\d+#[a-z0-9]{7}$`, created.EntryID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.NotContains(t, created.Fields, "userId")

	got, err := svc.Get(ctx, "user-1", created.EntryID)
	require.NoError(t, err)
	assert.Equal(t, created.Fields, got.Fields)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestListFiltersAndOrders(t *testing.T) {
	svc, _ := newTestEntryService(t)
	ctx := context.Background()

	base := time.Now()
	times := []time.Time{base, base.Add(time.Millisecond), base.Add(2 * time.Millisecond)}
	var ids []string
	for i, ts := range times {
		svc.now = func() time.Time { return ts }
		e, err := svc.Create(ctx, "user-1", entry.EntityTypeDailyLog, map[string]any{"i": i})
		require.NoError(t, err)
		ids = append(ids, e.EntryID)
	}
	// other entity type and other user must not appear
	_, err := svc.Create(ctx, "user-1", entry.EntityTypeSuccess, map[string]any{"note": "x"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-2", entry.EntityTypeDailyLog, map[string]any{"note": "y"})
	require.NoError(t, err)

	entries, err := svc.List(ctx, "user-1", entry.EntityTypeDailyLog, 10, false)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ids[2], entries[0].EntryID)
	assert.Equal(t, ids[1], entries[1].EntryID)
	assert.Equal(t, ids[0], entries[2].EntryID)

	limited, err := svc.List(ctx, "user-1", entry.EntityTypeDailyLog, 2, false)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListEmptyIsNeverNil(t *testing.T) {
	svc, _ := newTestEntryService(t)

	entries, err := svc.List(context.Background(), "user-1", entry.EntityTypeLetGod, 10, false)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := newTestEntryService(t)
	ctx := context.Background()

	svc.now = func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) }
	created, err := svc.Create(ctx, "user-1", entry.EntityTypeDailyLog, map[string]any{
		"date":         "2025-01-15",
		"focus_rating": 8,
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC) }
	updated, err := svc.Update(ctx, "user-1", created.EntryID, map[string]any{
		"focus_rating": 9,
		"createdAt":    "forged",
	})
	require.NoError(t, err)

	assert.Equal(t, 9, updated.Fields["focus_rating"])
	assert.Equal(t, "2025-01-15", updated.Fields["date"])
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Greater(t, updated.UpdatedAt, created.UpdatedAt)
}

func TestUpdateEmptyPayloadRejectedBeforeStore(t *testing.T) {
	svc, repo := newTestEntryService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", entry.EntityTypeDailyLog, map[string]any{"a": 1})
	require.NoError(t, err)
	callsBefore := repo.Calls()

	_, err = svc.Update(ctx, "user-1", created.EntryID, map[string]any{"userId": "x", "entryId": "y"})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, callsBefore, repo.Calls(), "empty update must not reach the store")

	got, err := svc.Get(ctx, "user-1", created.EntryID)
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
}

func TestUpdateMissingEntry(t *testing.T) {
	svc, _ := newTestEntryService(t)

	_, err := svc.Update(context.Background(), "user-1", "DAILY_LOG#1#abcdefg", map[string]any{"a": 1})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteIsNotIdempotent(t *testing.T) {
	svc, _ := newTestEntryService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", entry.EntityTypeDailyLog, map[string]any{"a": 1})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", created.EntryID))

	_, err = svc.Get(ctx, "user-1", created.EntryID)
	assert.True(t, apperrors.IsNotFound(err))

	err = svc.Delete(ctx, "user-1", created.EntryID)
	assert.True(t, apperrors.IsNotFound(err), "second delete is 404, not success")
}
