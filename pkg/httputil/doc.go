// Package httputil provides retry helpers for backend clients.
//
// A [Backoff] re-runs an operation with doubling delays, but only while the
// error it returns is marked with [Retryable]. Clients decide what counts as
// transient; the vectorizer client marks network errors, timeouts and the
// statuses accepted by [RetryableStatus]. A 429 can carry the server's
// Retry-After through [RetryAfter]:
//
//	err := httputil.DefaultBackoff.Do(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    if resp.StatusCode == http.StatusTooManyRequests {
//	        wait := httputil.ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
//	        return httputil.RetryAfter(errRateLimited, wait)
//	    }
//	    ...
//	})
//
// Anything not marked fails on the first attempt.
package httputil
