package httputil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryableError marks a transient failure. After, when positive, is the
// wait the server asked for and overrides the backoff delay once.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	return RetryAfter(err, 0)
}

// RetryAfter marks err as transient with a server-requested wait.
func RetryAfter(err error, after time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: after}
}

// IsRetryable reports whether err carries a [RetryableError].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryableStatus reports whether a response status is transient: 429 and
// the 5xx range apart from 501.
func RetryableStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests:
		return true
	case code == http.StatusNotImplemented:
		return false
	default:
		return code >= 500 && code < 600
	}
}

// ParseRetryAfter reads a Retry-After header in either delta-seconds or
// HTTP-date form. Missing or unparseable values yield 0.
func ParseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(max(secs, 0)) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

// Backoff is a retry policy. The delay doubles after every transient
// failure and is capped at MaxDelay when that is set.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultBackoff is three attempts starting at one second, capped at ten.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, MaxDelay: 10 * time.Second}

// Do runs fn until it succeeds, returns an error not marked [Retryable], or
// the attempts run out; the last error is returned then. Cancelling ctx
// during a wait returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(err, &re) || attempt >= b.Attempts {
			return err
		}

		wait := delay
		if re.After > 0 {
			wait = re.After
		}
		if b.MaxDelay > 0 {
			wait = min(wait, b.MaxDelay)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// Retry runs fn under an uncapped [Backoff] of attempts tries starting at
// delay.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Backoff{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}
