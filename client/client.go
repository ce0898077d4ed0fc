// Package client is a typed wrapper around the entity CRUD API. UI code
// talks to this package instead of building requests by hand; every failure
// comes back as one of the typed errors in errors.go.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"lifelog-backend/domain/entry"
)

// TokenProvider supplies the current bearer token. It is called before every
// request; returning "" fails the call with ErrNoToken without touching the
// network.
type TokenProvider func() string

// Config configures a Client.
type Config struct {
	// BaseURL is the API origin, e.g. "https://api.example.com". Required.
	BaseURL string
	// Token supplies the bearer token. Required.
	Token TokenProvider
	// HTTPClient overrides the default http client (30s timeout).
	HTTPClient *http.Client
}

// Client issues authenticated requests against /api/{entityType}[/{id}].
type Client struct {
	baseURL string
	token   TokenProvider
	http    *http.Client
}

// New creates a Client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http:    httpClient,
	}
}

// envelope mirrors the server's uniform response shape.
type envelope struct {
	Success bool          `json:"success"`
	Entry   *entry.Entry  `json:"entry"`
	Entries []entry.Entry `json:"entries"`
	Count   int           `json:"count"`
	Message string        `json:"message"`
	Error   string        `json:"error"`
}

// List fetches up to limit entries of the given type, newest first. The
// limit is clamped by the server, not here. The result is never nil.
func (c *Client) List(ctx context.Context, entityType string, limit int) ([]entry.Entry, error) {
	_, schema, err := entry.ResolveName(entityType)
	if err != nil {
		return nil, err
	}
	path := "/api/" + schema.RouteSegment
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	env, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if env.Entries == nil {
		return []entry.Entry{}, nil
	}
	return env.Entries, nil
}

// Get fetches a single entry by id. A success response with no entry payload
// is ErrNotFound; a transport-level 404 surfaces as *HTTPError instead.
func (c *Client) Get(ctx context.Context, entityType, id string) (*entry.Entry, error) {
	_, schema, err := entry.ResolveName(entityType)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodGet, "/api/"+schema.RouteSegment+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if env.Entry == nil {
		return nil, ErrNotFound
	}
	return env.Entry, nil
}

// Create posts a new entry. Server-owned keys in fields are stripped before
// serialization; the server stamps ids and timestamps.
func (c *Client) Create(ctx context.Context, entityType string, fields map[string]any) (*entry.Entry, error) {
	_, schema, err := entry.ResolveName(entityType)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPost, "/api/"+schema.RouteSegment, entry.StripServerOwned(fields))
	if err != nil {
		return nil, err
	}
	if env.Entry == nil {
		return nil, ErrCreateFailed
	}
	return env.Entry, nil
}

// Update applies a partial payload to an existing entry; only supplied
// fields change.
func (c *Client) Update(ctx context.Context, entityType, id string, fields map[string]any) (*entry.Entry, error) {
	_, schema, err := entry.ResolveName(entityType)
	if err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPut, "/api/"+schema.RouteSegment+"/"+url.PathEscape(id), entry.StripServerOwned(fields))
	if err != nil {
		return nil, err
	}
	if env.Entry == nil {
		return nil, ErrUpdateFailed
	}
	return env.Entry, nil
}

// Delete removes an entry.
func (c *Client) Delete(ctx context.Context, entityType, id string) error {
	_, schema, err := entry.ResolveName(entityType)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, "/api/"+schema.RouteSegment+"/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	token := ""
	if c.token != nil {
		token = c.token()
	}
	if token == "" {
		return nil, ErrNoToken
	}

	var reqBody *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newHTTPError(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &env, nil
}

// newHTTPError builds an *HTTPError from a non-2xx response, preferring a
// server-supplied message and falling back to "HTTP {status}".
func newHTTPError(resp *http.Response) *HTTPError {
	httpErr := &HTTPError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error != "" {
			httpErr.Message = body.Error
		} else if body.Message != "" {
			httpErr.Message = body.Message
		}
	}
	return httpErr
}
