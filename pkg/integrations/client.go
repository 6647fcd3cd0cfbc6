package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/codegraph/pkg/cache"
	cgerrors "github.com/matzehuels/codegraph/pkg/errors"
	"github.com/matzehuels/codegraph/pkg/httputil"
	"github.com/matzehuels/codegraph/pkg/observability"
)

// Client provides shared HTTP functionality for backend API clients.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyPrefix string
	ttl       time.Duration
	headers   map[string]string

	backoff httputil.Backoff
}

// NewClient creates a Client with the given cache and default headers.
// Cache keys are prefixed with keyPrefix and stored for ttl. A nil cache
// disables caching. Headers are applied to all requests made through this
// client; pass nil if no default headers are needed.
func NewClient(c cache.Cache, keyPrefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     c,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		headers:   headers,
		backoff:   httputil.DefaultBackoff,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// SetRetry configures retry attempts and the initial backoff delay. The
// delay cap stays at [httputil.DefaultBackoff]'s.
func (c *Client) SetRetry(attempts int, delay time.Duration) {
	c.backoff.Attempts, c.backoff.Delay = attempts, delay
}

// Cached returns the cached bytes for key, or runs fetch with retry and
// caches its result. If refresh is true, the cache is not read (but still
// written). A validate func, when non-nil, must accept the bytes before they
// are cached; a cached entry it rejects is treated as a miss.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, validate func([]byte) error, fetch func() ([]byte, error)) ([]byte, error) {
	key = c.keyPrefix + key
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			if validate == nil || validate(data) == nil {
				observability.Cache().OnCacheHit(ctx, "fetch")
				return data, nil
			}
			_ = c.cache.Delete(ctx, key)
		}
		observability.Cache().OnCacheMiss(ctx, "fetch")
	}

	var data []byte
	err := c.backoff.Do(ctx, func() error {
		var err error
		data, err = fetch()
		return err
	})
	if err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(data); err != nil {
			return nil, err
		}
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "fetch", len(data))
	}
	return data, nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers and handles retries automatically.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	var body []byte
	err := c.backoff.Do(ctx, func() error {
		var err error
		body, err = c.GetBytes(ctx, url, headers)
		return err
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeMalformedResponse, err, "decode %s", url)
	}
	return nil
}

// GetBytes performs a single HTTP GET and returns the body. Transient
// failures are returned wrapped with [httputil.Retryable]; it does not retry
// by itself.
func (c *Client) GetBytes(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(rawURL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, http.MethodGet, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, http.MethodGet, host, path, err)
		return nil, transportError(ctx, err, rawURL)
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, http.MethodGet, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode, rawURL); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusTooManyRequests {
			var re *httputil.RetryableError
			if errors.As(err, &re) {
				re.After = httputil.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
			}
		}
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httputil.Retryable(cgerrors.Wrap(cgerrors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "read %s", rawURL))
	}
	return data, nil
}

func transportError(ctx context.Context, err error, rawURL string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return cgerrors.Wrap(cgerrors.ErrCodeTimeout, ctxErr, "GET %s", rawURL)
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return httputil.Retryable(cgerrors.Wrap(cgerrors.ErrCodeTimeout, fmt.Errorf("%w: %v", ErrNetwork, err), "GET %s", rawURL))
	}
	return httputil.Retryable(cgerrors.Wrap(cgerrors.ErrCodeNetwork, fmt.Errorf("%w: %v", ErrNetwork, err), "GET %s", rawURL))
}

func checkStatus(code int, rawURL string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return cgerrors.Wrap(cgerrors.ErrCodeNotFound, ErrNotFound, "GET %s", rawURL)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return cgerrors.Wrap(cgerrors.ErrCodeUnauthorized, ErrUnauthorized, "GET %s: status %d", rawURL, code)
	case httputil.RetryableStatus(code):
		return httputil.Retryable(cgerrors.Wrap(cgerrors.ErrCodeFetch, fmt.Errorf("%w: status %d", ErrNetwork, code), "GET %s", rawURL))
	default:
		return cgerrors.Wrap(cgerrors.ErrCodeFetch, fmt.Errorf("%w: status %d", ErrNetwork, code), "GET %s", rawURL)
	}
}

func hostPath(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", rawURL
	}
	return u.Host, u.Path
}
