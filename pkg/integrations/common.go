package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when the backend has no such project or view.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for backend requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
