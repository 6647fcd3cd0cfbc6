// Package integrations provides HTTP clients for the services codegraph
// reads from.
//
// # Overview
//
// The graph engine has one upstream collaborator, the vectorization backend,
// reached through the [vectorizer] subpackage. This package holds the shared
// plumbing that client is built on.
//
// # Shared Infrastructure
//
// [Client] wraps an http.Client with:
//   - default headers (bearer token, user agent)
//   - retry with exponential backoff for transient failures ([httputil.Retry])
//   - response caching through any [cache.Cache] backend
//   - status code mapping onto the coded errors of pkg/errors
//
// Status mapping:
//
//	2xx          success
//	404          NOT_FOUND, wraps ErrNotFound
//	401, 403     UNAUTHORIZED, wraps ErrUnauthorized
//	429, 5xx     FETCH_FAILED, retried
//	other 4xx    FETCH_FAILED
//	transport    NETWORK_ERROR or TIMEOUT, retried unless the context ended
//
// Every request is reported to the observability HTTP hooks and every cache
// lookup to the cache hooks.
//
// [vectorizer]: github.com/matzehuels/codegraph/pkg/integrations/vectorizer
// [cache.Cache]: github.com/matzehuels/codegraph/pkg/cache.Cache
// [httputil.Retry]: github.com/matzehuels/codegraph/pkg/httputil.Retry
package integrations
