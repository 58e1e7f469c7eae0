package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(baseURL string, retries int) IdentityClient {
	return NewIdentityClient(ClientConfig{
		BaseURL:    baseURL,
		Timeout:    2 * time.Second,
		Retries:    retries,
		RetryDelay: 10 * time.Millisecond,
		Logger:     &mockLogger{},
	})
}

func TestFetchIdentitySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/me" {
			t.Errorf("path = %q, want /auth/me", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q, want Bearer tok-123", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_id":"u1","name":"Alice","role":"STUDENT","email":"alice@example.com"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0)
	identity, err := client.FetchIdentity(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("FetchIdentity failed: %v", err)
	}

	if identity.ID != "u1" {
		t.Errorf("ID = %q, want u1", identity.ID)
	}
	if identity.Name != "Alice" {
		t.Errorf("Name = %q, want Alice", identity.Name)
	}
	if identity.Role != RoleStudent {
		t.Errorf("Role = %q, want student (normalized)", identity.Role)
	}
	if identity.Profile["email"] != "alice@example.com" {
		t.Errorf("Profile[email] = %v, want alice@example.com", identity.Profile["email"])
	}
}

func TestFetchIdentityUnauthorizedNotRetried(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 3)
	_, err := client.FetchIdentity(context.Background(), "tok-bad")

	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1 (auth rejection must not be retried)", requests)
	}
}

func TestFetchIdentityServerErrorRetried(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"id":"u1","role":"student"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 2)
	identity, err := client.FetchIdentity(context.Background(), "tok-123")
	if err != nil {
		t.Fatalf("FetchIdentity failed after retries: %v", err)
	}
	if requests != 3 {
		t.Errorf("requests = %d, want 3", requests)
	}
	if identity.ID != "u1" {
		t.Errorf("ID = %q, want u1", identity.ID)
	}
}

func TestFetchIdentityRetriesExhausted(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 2)
	_, err := client.FetchIdentity(context.Background(), "tok-123")

	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Errorf("error = ErrUnauthorized, want transient failure")
	}
	if requests != 3 {
		t.Errorf("requests = %d, want 3", requests)
	}
}

func TestFetchIdentityMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 0)
	if _, err := client.FetchIdentity(context.Background(), "tok-123"); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestIdentityFromProfile(t *testing.T) {
	tests := []struct {
		name     string
		profile  map[string]any
		wantID   string
		wantRole string
	}{
		{"id field", map[string]any{"id": "u1", "role": "admin"}, "u1", "admin"},
		{"_id fallback", map[string]any{"_id": "u2", "role": "mentor"}, "u2", "mentor"},
		{"id preferred over _id", map[string]any{"id": "u1", "_id": "u2"}, "u1", "guest"},
		{"missing role defaults to guest", map[string]any{"id": "u3"}, "u3", "guest"},
		{"non-string role defaults to guest", map[string]any{"id": "u4", "role": 7}, "u4", "guest"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := identityFromProfile(tt.profile)
			if identity.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", identity.ID, tt.wantID)
			}
			if identity.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", identity.Role, tt.wantRole)
			}
		})
	}
}
