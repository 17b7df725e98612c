// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type errorCheckTestCase struct {
	name string
	err  error
	want bool
}

func runErrorCheckTest(t *testing.T, tests []errorCheckTestCase, checkFunc func(error) bool) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkFunc(tt.err); got != tt.want {
				t.Errorf("checkFunc() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	tests := []errorCheckTestCase{
		{
			name: "rate limit error type",
			err:  &Error{Type: ErrorTypeRateLimit, Message: "rate limit exceeded"},
			want: true,
		},
		{
			name: "wrapped rate limit error",
			err:  fmt.Errorf("geocoding: %w", ClassifyStatus("OVER_QUERY_LIMIT", "")),
			want: true,
		},
		{
			name: "error message contains too many requests",
			err:  errors.New("too many requests"),
			want: true,
		},
		{
			name: "error message contains 429",
			err:  errors.New("google maps returned status 429"),
			want: true,
		},
		{
			name: "other error type",
			err:  &Error{Type: ErrorTypeNotFound, Message: "not found"},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
	}

	runErrorCheckTest(t, tests, IsRateLimitError)
}

func TestIsQuotaExceededError(t *testing.T) {
	tests := []errorCheckTestCase{
		{
			name: "quota exceeded error type",
			err:  &Error{Type: ErrorTypeQuotaExceeded, Message: "quota exceeded"},
			want: true,
		},
		{
			name: "request denied status",
			err:  ClassifyStatus("REQUEST_DENIED", "The provided API key is invalid."),
			want: true,
		},
		{
			name: "error message contains request_denied",
			err:  errors.New("google maps status: REQUEST_DENIED"),
			want: true,
		},
		{
			name: "other error type",
			err:  &Error{Type: ErrorTypeRateLimit, Message: "rate limit"},
			want: false,
		},
		{
			name: "unrelated error",
			err:  errors.New("some other error"),
			want: false,
		},
	}

	runErrorCheckTest(t, tests, IsQuotaExceededError)
}

func TestIsTimeoutError(t *testing.T) {
	tests := []errorCheckTestCase{
		{
			name: "timeout error type",
			err:  &Error{Type: ErrorTypeTimeout, Message: "timeout"},
			want: true,
		},
		{
			name: "wrapped context deadline",
			err:  fmt.Errorf("geocoding request failed: %w", context.DeadlineExceeded),
			want: true,
		},
		{
			name: "error message contains timeout",
			err:  errors.New("request timeout after 10 seconds"),
			want: true,
		},
		{
			name: "other error type",
			err:  &Error{Type: ErrorTypeNotFound, Message: "not found"},
			want: false,
		},
	}

	runErrorCheckTest(t, tests, IsTimeoutError)
}

func TestIsNotFoundError(t *testing.T) {
	tests := []errorCheckTestCase{
		{"zero results", ClassifyStatus("ZERO_RESULTS", ""), true},
		{"http 404", ClassifyHTTPError(404, ""), true},
		{"denied", ClassifyStatus("REQUEST_DENIED", ""), false},
		{"plain error", errors.New("not found"), false},
	}

	runErrorCheckTest(t, tests, IsNotFoundError)
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantType   ErrorType
	}{
		{"429 too many requests", 429, ErrorTypeRateLimit},
		{"403 forbidden", 403, ErrorTypeQuotaExceeded},
		{"400 bad request", 400, ErrorTypeInvalidRequest},
		{"404 not found", 404, ErrorTypeNotFound},
		{"503 service unavailable", 503, ErrorTypeNetworkError},
		{"502 bad gateway", 502, ErrorTypeNetworkError},
		{"504 gateway timeout", 504, ErrorTypeNetworkError},
		{"500 internal server error", 500, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyHTTPError(tt.statusCode, "")
			if got.Type != tt.wantType {
				t.Errorf("ClassifyHTTPError() type = %v, want %v", got.Type, tt.wantType)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status   string
		wantType ErrorType
	}{
		{"ZERO_RESULTS", ErrorTypeNotFound},
		{"NOT_FOUND", ErrorTypeNotFound},
		{"OVER_QUERY_LIMIT", ErrorTypeRateLimit},
		{"OVER_DAILY_LIMIT", ErrorTypeQuotaExceeded},
		{"REQUEST_DENIED", ErrorTypeQuotaExceeded},
		{"INVALID_REQUEST", ErrorTypeInvalidRequest},
		{"UNKNOWN_ERROR", ErrorTypeNetworkError},
		{"SOMETHING_NEW", ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := ClassifyStatus(tt.status, "")
			if got == nil {
				t.Fatalf("ClassifyStatus(%q) = nil", tt.status)
			}

			if got.Type != tt.wantType {
				t.Errorf("ClassifyStatus() type = %v, want %v", got.Type, tt.wantType)
			}
		})
	}

	if err := ClassifyStatus("OK", ""); err != nil {
		t.Errorf("ClassifyStatus(OK) = %v, want nil", err)
	}
}

func TestErrorUnwrap(t *testing.T) {
	innerErr := errors.New("inner error")
	geoErr := &Error{
		Type:    ErrorTypeNetworkError,
		Message: "request failed",
		Err:     innerErr,
	}

	if !errors.Is(geoErr, innerErr) {
		t.Error("errors.Is should find wrapped error")
	}

	if geoErr.Error() != "request failed: inner error" {
		t.Errorf("Error() = %q", geoErr.Error())
	}
}
