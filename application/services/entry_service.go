package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lifelog-backend/application/ports"
	"lifelog-backend/domain/entry"
	apperrors "lifelog-backend/pkg/errors"
)

// List limits. The legacy entries route predates the generic routes and
// keeps its smaller window.
const (
	DefaultListLimit = 100
	MaxListLimit     = 500

	LegacyDefaultListLimit = 50
	LegacyMaxListLimit     = 100
)

// EntryService implements the generic entity CRUD semantics over the
// repository port. It is stateless; every request stands alone.
type EntryService struct {
	repo   ports.EntryRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewEntryService creates an entry service.
func NewEntryService(repo ports.EntryRepository, logger *zap.Logger) *EntryService {
	return &EntryService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// ClampLimit applies the server-side list window. Non-positive limits fall
// back to the default; oversized limits are capped.
func ClampLimit(limit int, legacy bool) int {
	def, max := DefaultListLimit, MaxListLimit
	if legacy {
		def, max = LegacyDefaultListLimit, LegacyMaxListLimit
	}
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// List returns the user's entries of the given type, most recent first.
// The returned slice is never nil.
func (s *EntryService) List(ctx context.Context, userID string, entityType entry.EntityType, limit int, legacy bool) ([]entry.Entry, error) {
	entries, err := s.repo.List(ctx, userID, entityType, ClampLimit(limit, legacy))
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []entry.Entry{}
	}
	return entries, nil
}

// Get performs a point lookup of one entry.
func (s *EntryService) Get(ctx context.Context, userID, entryID string) (*entry.Entry, error) {
	return s.repo.Get(ctx, userID, entryID)
}

// Create stamps and persists a new entry. Server-owned keys in the payload
// are discarded; the client never chooses ids or timestamps.
func (s *EntryService) Create(ctx context.Context, userID string, entityType entry.EntityType, fields map[string]any) (*entry.Entry, error) {
	e := entry.New(userID, entityType, fields, s.now())
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("entry created",
		zap.String("userId", userID),
		zap.String("entryId", e.EntryID),
		zap.String("entityType", string(e.EntityType)),
	)
	return &e, nil
}

// Update applies a partial payload to an existing entry. The payload is
// stripped of server-owned keys first; if nothing remains the request is
// rejected before any store call.
func (s *EntryService) Update(ctx context.Context, userID, entryID string, fields map[string]any) (*entry.Entry, error) {
	stripped := entry.StripServerOwned(fields)
	if len(stripped) == 0 {
		return nil, apperrors.NewValidationError("No updatable fields provided")
	}
	updated, err := s.repo.Update(ctx, userID, entryID, stripped, entry.Timestamp(s.now()))
	if err != nil {
		return nil, err
	}
	s.logger.Info("entry updated",
		zap.String("userId", userID),
		zap.String("entryId", entryID),
		zap.Int("fields", len(stripped)),
	)
	return updated, nil
}

// Delete removes an entry. Deleting an absent id is a not-found error, not
// an idempotent success.
func (s *EntryService) Delete(ctx context.Context, userID, entryID string) error {
	if err := s.repo.Delete(ctx, userID, entryID); err != nil {
		return err
	}
	s.logger.Info("entry deleted",
		zap.String("userId", userID),
		zap.String("entryId", entryID),
	)
	return nil
}
