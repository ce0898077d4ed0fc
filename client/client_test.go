package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticToken(token string) TokenProvider {
	return func() string { return token }
}

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(Config{BaseURL: srv.URL, Token: staticToken("test-token")})
	return c, srv
}

func TestMissingBaseURL(t *testing.T) {
	c := New(Config{Token: staticToken("tok")})
	_, err := c.List(context.Background(), "daily-log", 0)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMissingTokenFailsBeforeNetwork(t *testing.T) {
	called := false
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) { called = true })
	defer srv.Close()
	c.token = staticToken("")

	_, err := c.List(context.Background(), "daily-log", 0)
	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, called, "no request may leave the client without a token")
}

func TestUnknownEntityType(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
	defer srv.Close()

	_, err := c.List(context.Background(), "bogus", 0)
	assert.Error(t, err)
}

func TestListSendsAuthAndLimit(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/daily-log", r.URL.Path)
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"entries": []map[string]any{{"userId": "u", "entryId": "DAILY_LOG#1#abcdefg", "note": "hi"}},
			"count":   1,
		})
	})
	defer srv.Close()

	entries, err := c.List(context.Background(), "daily-log", 25)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "DAILY_LOG#1#abcdefg", entries[0].EntryID)
	assert.Equal(t, "hi", entries[0].Fields["note"])
}

func TestListEmptyIsNeverNil(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "count": 0})
	})
	defer srv.Close()

	entries, err := c.List(context.Background(), "success", 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestGetEscapesEntryID(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		// a raw '#' would have been cut off as a fragment
		assert.True(t, strings.Contains(r.URL.EscapedPath(), "%23"), "entry id must be percent-encoded")
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"entry":   map[string]any{"userId": "u", "entryId": "BECOME#1#abcdefg"},
		})
	})
	defer srv.Close()

	e, err := c.Get(context.Background(), "become", "BECOME#1#abcdefg")
	require.NoError(t, err)
	assert.Equal(t, "BECOME#1#abcdefg", e.EntryID)
}

func TestGetMissingEntryPayload(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})
	defer srv.Close()

	_, err := c.Get(context.Background(), "daily-log", "DAILY_LOG#1#abcdefg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateStripsServerOwnedFields(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		var sent map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		assert.NotContains(t, sent, "userId")
		assert.NotContains(t, sent, "entryId")
		assert.Equal(t, "x", sent["note"])
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"entry":   map[string]any{"userId": "u", "entryId": "SELFREG#1#abcdefg", "note": "x"},
		})
	})
	defer srv.Close()

	e, err := c.Create(context.Background(), "selfreg", map[string]any{
		"note":   "x",
		"userId": "forged",
	})
	require.NoError(t, err)
	assert.Equal(t, "SELFREG#1#abcdefg", e.EntryID)
}

func TestHTTPErrorPrefersServerError(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Entry not found"})
	})
	defer srv.Close()

	_, err := c.Get(context.Background(), "daily-log", "DAILY_LOG#1#abcdefg")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, "Entry not found", httpErr.Message)
	assert.True(t, IsHTTPStatus(err, http.StatusNotFound))
}

func TestHTTPErrorFallsBackToStatus(t *testing.T) {
	c, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})
	defer srv.Close()

	err := c.Delete(context.Background(), "daily-log", "DAILY_LOG#1#abcdefg")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, "HTTP 502", httpErr.Message)
}
