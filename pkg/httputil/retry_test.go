package httputil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

var errTransient = errors.New("connection reset")

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(errTransient)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if !errors.Is(err, errTransient) {
		t.Error("wrapped error should unwrap")
	}
	if IsRetryable(errTransient) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{501, false},
		{502, true},
		{503, true},
	}
	for _, tt := range tests {
		if got := RetryableStatus(tt.code); got != tt.want {
			t.Errorf("RetryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"SuccessFirstTry", 0, true, 1, false},
		{"RecoversAfterOne", 1, true, 2, false},
		{"ExhaustsAttempts", 5, true, 3, true},
		{"PermanentStopsImmediately", 5, false, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(ctx, 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(errTransient)
					}
					return errTransient
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffHonoursRetryAfter(t *testing.T) {
	b := Backoff{Attempts: 2, Delay: time.Hour, MaxDelay: time.Hour}
	calls := 0
	start := time.Now()
	err := b.Do(context.Background(), func() error {
		calls++
		if calls == 1 {
			return RetryAfter(errTransient, time.Millisecond)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("Do() = %v after %d calls", err, calls)
	}
	if time.Since(start) > time.Second {
		t.Error("Retry-After should replace the backoff delay")
	}
}

func TestBackoffMaxDelay(t *testing.T) {
	b := Backoff{Attempts: 2, Delay: time.Hour, MaxDelay: time.Millisecond}
	start := time.Now()
	_ = b.Do(context.Background(), func() error { return Retryable(errTransient) })
	if time.Since(start) > time.Second {
		t.Error("MaxDelay should cap the wait")
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"7", 7 * time.Second},
		{"-3", 0},
		{now.Add(30 * time.Second).Format(http.TimeFormat), 30 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"soon", 0},
	}
	for _, tt := range tests {
		if got := ParseRetryAfter(tt.in, now); got != tt.want {
			t.Errorf("ParseRetryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), 0, time.Millisecond, func() error {
		calls++
		return nil
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return Retryable(errTransient)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Should return context error: %v", err)
	}
}
