package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}
	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, cause, "render %s", "png")

	if err.Code != ErrCodeInternal {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInternal)
	}
	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if want := "INTERNAL_ERROR: render png: underlying error"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"different code", New(ErrCodeInvalidInput, "test"), ErrCodeInternal, false},
		{"wrapped with fmt", fmt.Errorf("outer: %w", New(ErrCodeClosed, "closed")), ErrCodeClosed, true},
		{"generic not found matches parcel", New(ErrCodeParcelNotFound, "parcel 9"), ErrCodeNotFound, true},
		{"generic not found matches session", New(ErrCodeSessionNotFound, "abc"), ErrCodeNotFound, true},
		{"specific does not match generic", New(ErrCodeNotFound, "x"), ErrCodeParcelNotFound, false},
		{"plain error", errors.New("boom"), ErrCodeInternal, false},
		{"nil error", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeLayoutInvalid, "overlap")); got != ErrCodeLayoutInvalid {
		t.Errorf("GetCode() = %v", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeParcelNotFound, "parcel %d not found", 500)); got != "parcel 500 not found" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{New(ErrCodeParcelNotFound, ""), http.StatusNotFound},
		{New(ErrCodeSessionNotFound, ""), http.StatusNotFound},
		{New(ErrCodeInvalidEvent, ""), http.StatusBadRequest},
		{New(ErrCodeInvalidFormat, ""), http.StatusBadRequest},
		{New(ErrCodeUnsupported, ""), http.StatusNotImplemented},
		{New(ErrCodeClosed, ""), http.StatusGone},
		{New(ErrCodeUnavailable, ""), http.StatusServiceUnavailable},
		{New(ErrCodeLayoutInvalid, ""), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
