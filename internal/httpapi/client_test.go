package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticTokenSource struct{ token string }

func (s *staticTokenSource) AccessToken(ctx context.Context) (string, error) { return s.token, nil }
func (s *staticTokenSource) Refresh(ctx context.Context) error               { return nil }

func TestDoSucceedsOn2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewDefaultCollaborator(srv.URL, &staticTokenSource{token: "tok"}, nil, nil)
	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDoTriggersLogoutOnPersistentUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	loggedOut := false
	c := NewDefaultCollaborator(srv.URL, &staticTokenSource{token: "tok"}, func() { loggedOut = true }, nil)
	_, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if err == nil {
		t.Fatal("expected an error on persistent 401")
	}
	if !loggedOut {
		t.Error("expected onLogout to fire after refreshed token still draws a 401")
	}
}

func TestTooManyRequestsSetsCooldown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewDefaultCollaborator(srv.URL, &staticTokenSource{token: "tok"}, nil, nil)
	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"})
	if err == nil {
		resp.Body.Close()
	}

	if remaining := c.limiter.CooldownRemaining(); remaining <= 0 || remaining > 2*time.Second {
		t.Errorf("expected a ~1s cooldown after 429, got %v", remaining)
	}
}

func TestRetryAfterDelayFallsBackOnMalformedHeader(t *testing.T) {
	if d := retryAfterDelay(""); d != 5*time.Second {
		t.Errorf("empty header: got %v, want 5s fallback", d)
	}
	if d := retryAfterDelay("not-a-number"); d != 5*time.Second {
		t.Errorf("malformed header: got %v, want 5s fallback", d)
	}
	if d := retryAfterDelay("3"); d != 3*time.Second {
		t.Errorf("numeric header: got %v, want 3s", d)
	}
}
