package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestGetSuggestion(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"auth", fmt.Errorf("search: %w", ErrNotAuthenticated), "re-authenticate"},
		{"device not ready", ErrDeviceNotReady, "Waiting for the playback device"},
		{"no active device", errors.New("player command failed: no active device"), "devices --pick"},
		{"rate limit", errors.New("status 429"), "Too many requests"},
		{"network", fmt.Errorf("request failed: %w", ErrNetworkError), "internet connection"},
		{"explicit", WithSuggestion(errors.New("boom"), "do the thing"), "do the thing"},
		{"unknown", errors.New("something odd"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSuggestion(tt.err)
			if tt.want == "" && got != "" {
				t.Errorf("GetSuggestion() = %q, want empty", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("GetSuggestion() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}

	got := Format(ErrDeviceNotReady)
	if !strings.HasPrefix(got, "Error: device not ready") {
		t.Errorf("Format() = %q, want error prefix", got)
	}
	if !strings.Contains(got, "Suggestion:") {
		t.Errorf("Format() = %q, want a suggestion", got)
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(fmt.Errorf("wrapped: %w", ErrNetworkError)) {
		t.Error("network error should be transient")
	}
	if IsTransient(ErrNotAuthenticated) {
		t.Error("auth error should not be transient")
	}
}

func TestPartialResult(t *testing.T) {
	var p PartialResult[[]string]
	p.AddError(nil)
	if p.HasErrors() {
		t.Fatal("nil error should not be recorded")
	}

	p.AddError(errors.New("first"))
	if got := p.ErrorSummary(); got != "first" {
		t.Errorf("ErrorSummary() = %q, want %q", got, "first")
	}

	p.AddError(errors.New("second"))
	if !strings.HasPrefix(p.ErrorSummary(), "2 errors occurred") {
		t.Errorf("ErrorSummary() = %q", p.ErrorSummary())
	}
}
