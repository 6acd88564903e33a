package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestToken_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "expired",
			expiresAt: time.Now().Add(-1 * time.Hour),
			want:      true,
		},
		{
			name:      "expires soon (within buffer)",
			expiresAt: time.Now().Add(30 * time.Second),
			want:      true,
		},
		{
			name:      "valid",
			expiresAt: time.Now().Add(1 * time.Hour),
			want:      false,
		},
		{
			name: "unknown expiry",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := &Token{ExpiresAt: tt.expiresAt}
			if got := token.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewBearerToken(t *testing.T) {
	token := NewBearerToken("abc")
	if token.AccessToken != "abc" {
		t.Errorf("AccessToken = %q, want %q", token.AccessToken, "abc")
	}
	if token.CanRefresh() {
		t.Error("CanRefresh() = true for a bare access token")
	}
	if token.IsExpired() {
		t.Error("IsExpired() = true for a bare access token")
	}
}

func withTokenServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	original := tokenURL
	tokenURL = server.URL
	t.Cleanup(func() { tokenURL = original })
}

func TestRefreshAccessToken(t *testing.T) {
	withTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
			t.Errorf("Expected Content-Type application/x-www-form-urlencoded")
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("Failed to parse form: %v", err)
		}
		if r.FormValue("grant_type") != "refresh_token" {
			t.Errorf("Expected grant_type refresh_token")
		}
		if r.FormValue("refresh_token") != "refresh_456" {
			t.Errorf("refresh_token = %q, want refresh_456", r.FormValue("refresh_token"))
		}
		if r.FormValue("client_id") != "test_client" {
			t.Errorf("client_id = %q, want test_client", r.FormValue("client_id"))
		}

		resp := tokenResponse{
			AccessToken: "new_access_token",
			TokenType:   "Bearer",
			Scope:       "user-read-playback-state",
			ExpiresIn:   3600,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})

	token, err := RefreshAccessToken(context.Background(), "test_client", "refresh_456")
	if err != nil {
		t.Fatalf("RefreshAccessToken() error = %v", err)
	}
	if token.AccessToken != "new_access_token" {
		t.Errorf("AccessToken = %q, want %q", token.AccessToken, "new_access_token")
	}
	if token.IsExpired() {
		t.Error("fresh token reported as expired")
	}
}

func TestRefreshAccessTokenError(t *testing.T) {
	withTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(tokenResponse{
			Error:     "invalid_grant",
			ErrorDesc: "Refresh token revoked",
		})
	})

	_, err := RefreshAccessToken(context.Background(), "client", "revoked")
	if err == nil {
		t.Fatal("expected error for revoked refresh token")
	}
}

func TestRequestTokenContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RefreshAccessToken(ctx, "client", "refresh")
	if err == nil {
		t.Error("Expected error for cancelled context")
	}
}
