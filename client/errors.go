package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNoToken means the token provider returned no bearer token. Checked
	// before any network call.
	ErrNoToken = errors.New("no auth token available")

	// ErrNotConfigured means the API base URL is unset.
	ErrNotConfigured = errors.New("API base URL is not configured")

	// ErrNotFound means the server reported success but no entry payload.
	ErrNotFound = errors.New("entry not found")

	// ErrCreateFailed means the server reported success but returned no
	// created entry.
	ErrCreateFailed = errors.New("server returned no entry for create")

	// ErrUpdateFailed means the server reported success but returned no
	// updated entry.
	ErrUpdateFailed = errors.New("server returned no entry for update")
)

// HTTPError is any non-2xx response, carrying the server's message when its
// body was parseable JSON.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// IsHTTPStatus reports whether err is an *HTTPError with the given status.
func IsHTTPStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}
