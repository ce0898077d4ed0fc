package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"lifelog-backend/application/services"
	"lifelog-backend/domain/entry"
	"lifelog-backend/pkg/auth"
	"lifelog-backend/pkg/common"
	apperrors "lifelog-backend/pkg/errors"
)

// EntryHandler serves the generic entity CRUD routes. One handler covers
// every entity type; the route segment picks the type through the schema
// registry.
type EntryHandler struct {
	service *services.EntryService
	logger  *zap.Logger
}

// NewEntryHandler creates an entry handler.
func NewEntryHandler(service *services.EntryService, logger *zap.Logger) *EntryHandler {
	return &EntryHandler{service: service, logger: logger}
}

// maxBodyBytes caps entity payload size.
const maxBodyBytes = 1 << 20

// List handles GET /api/{entityType}.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	entityType, schema, user, ok := h.resolve(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	entries, err := h.service.List(r.Context(), user.UserID, entityType, limit, schema.Legacy)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondEntries(w, entries, len(entries), string(entityType))
}

// Create handles POST /api/{entityType}.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	entityType, _, user, ok := h.resolve(w, r)
	if !ok {
		return
	}

	fields, err := decodeFields(r)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), user.UserID, entityType, fields)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondEntry(w, http.StatusCreated, created, "Entry created")
}

// Get handles GET /api/{entityType}/{entryID}.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, _, user, ok := h.resolve(w, r)
	if !ok {
		return
	}

	e, err := h.service.Get(r.Context(), user.UserID, pathEntryID(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondEntry(w, http.StatusOK, e, "")
}

// Update handles PUT /api/{entityType}/{entryID}.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, _, user, ok := h.resolve(w, r)
	if !ok {
		return
	}

	fields, err := decodeFields(r)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), user.UserID, pathEntryID(r), fields)
	if err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondEntry(w, http.StatusOK, updated, "Entry updated")
}

// Delete handles DELETE /api/{entityType}/{entryID}.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, _, user, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), user.UserID, pathEntryID(r)); err != nil {
		h.respondError(w, err)
		return
	}
	common.RespondMessage(w, http.StatusOK, "Entry deleted")
}

// resolve maps the route segment through the registry and pulls the
// authenticated user. Writes the error response itself when either fails.
func (h *EntryHandler) resolve(w http.ResponseWriter, r *http.Request) (entry.EntityType, entry.Schema, *auth.UserContext, bool) {
	segment := chi.URLParam(r, "entityType")
	entityType, schema, err := entry.ResolveRoute(segment)
	if err != nil {
		var unknown *entry.UnknownEntityTypeError
		if errors.As(err, &unknown) {
			common.RespondError(w, http.StatusNotFound, "Not found")
			return "", entry.Schema{}, nil, false
		}
		h.respondError(w, err)
		return "", entry.Schema{}, nil, false
	}

	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "Unauthorized")
		return "", entry.Schema{}, nil, false
	}
	return entityType, schema, user, true
}

// respondError maps service and store failures onto the envelope. Store and
// internal causes are logged but never echoed to the client.
func (h *EntryHandler) respondError(w http.ResponseWriter, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		h.logger.Error("unclassified handler error", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	switch appErr.Type {
	case apperrors.ErrorTypeDatabase, apperrors.ErrorTypeInternal, apperrors.ErrorTypeNotConfigured:
		h.logger.Error("internal error", zap.Error(appErr))
		common.RespondError(w, http.StatusInternalServerError, "Internal server error")
	default:
		common.RespondError(w, appErr.HTTPStatus, appErr.Message)
	}
}

// pathEntryID extracts the entry id route param. Entry ids contain '#', so
// clients send them percent-encoded and chi hands back the raw segment.
func pathEntryID(r *http.Request) string {
	id := chi.URLParam(r, "entryID")
	if decoded, err := url.PathUnescape(id); err == nil {
		return decoded
	}
	return id
}

func decodeFields(r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	fields := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
