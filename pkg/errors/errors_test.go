package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidLayout, "unknown layout: %s", "spiral")

	if err.Code != ErrCodeInvalidLayout {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidLayout)
	}
	expected := "INVALID_LAYOUT: unknown layout: spiral"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "fetch graph")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeFetch, "x"), ErrCodeFetch, true},
		{"non-matching code", New(ErrCodeFetch, "x"), ErrCodeNetwork, false},
		{"wrapped by fmt", fmt.Errorf("outer: %w", New(ErrCodeTimeout, "x")), ErrCodeTimeout, true},
		{"non-Error type", errors.New("plain"), ErrCodeFetch, false},
		{"nil", nil, ErrCodeFetch, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeFetch, "backend unavailable")); got != "backend unavailable" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestIsFetchFailure(t *testing.T) {
	for _, code := range []Code{ErrCodeFetch, ErrCodeMalformedResponse, ErrCodeNetwork, ErrCodeTimeout} {
		if !IsFetchFailure(New(code, "x")) {
			t.Errorf("IsFetchFailure(%s) = false", code)
		}
	}
	if IsFetchFailure(New(ErrCodeInvalidLayout, "x")) {
		t.Error("IsFetchFailure(INVALID_LAYOUT) = true")
	}
	if IsFetchFailure(errors.New("plain")) {
		t.Error("IsFetchFailure(plain) = true")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidLayout, "x"), http.StatusBadRequest},
		{New(ErrCodeNotFound, "x"), http.StatusNotFound},
		{New(ErrCodeMalformedResponse, "x"), http.StatusBadGateway},
		{New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestErrorIsByCode(t *testing.T) {
	err := fmt.Errorf("load: %w", Wrap(ErrCodeTimeout, errors.New("deadline"), "GET /graph"))
	if !errors.Is(err, &Error{Code: ErrCodeTimeout}) {
		t.Error("errors.Is should match a bare *Error by code")
	}
	if errors.Is(err, &Error{Code: ErrCodeNetwork}) {
		t.Error("errors.Is matched a different code")
	}
	if errors.Is(err, &Error{Code: ErrCodeTimeout, Message: "other"}) {
		t.Error("a target with a message should only match itself")
	}
}

func TestCodeStatusUnknown(t *testing.T) {
	if got := Code("SOMETHING_NEW").Status(); got != http.StatusInternalServerError {
		t.Errorf("unknown code status = %d", got)
	}
	if Code("").Fetch() {
		t.Error("empty code reported as fetch failure")
	}
}
