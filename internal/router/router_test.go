package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"studytrack-backend/internal/middleware"
)

type countingHits struct{ n int64 }

func (c *countingHits) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	c.n++
	return c.n, nil
}

func newTestRouter() http.Handler {
	return New(middleware.NewJWTAuth("test-secret"), &countingHits{}, Handlers{}, nil, "http://localhost:5173")
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}

func TestHealth_DependencyDown(t *testing.T) {
	down := func(ctx context.Context) error { return errors.New("redis: connection refused") }
	r := New(middleware.NewJWTAuth("test-secret"), &countingHits{}, Handlers{Ping: down}, nil, "http://localhost:5173")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter()

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/user/me"},
		{http.MethodGet, "/api/v1/sessions"},
		{http.MethodPost, "/api/v1/quiz/0b7c3f0e-7f6e-4a2b-9d55-3c1c2b1f7a10/submit"},
		{http.MethodGet, "/api/v1/achievements"},
		{http.MethodPatch, "/api/v1/goals/0b7c3f0e-7f6e-4a2b-9d55-3c1c2b1f7a10/complete"},
		{http.MethodGet, "/api/v1/leaderboard"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(rt.method, rt.path, nil))
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
			}
		})
	}
}

func TestAuthRoutesRateLimited(t *testing.T) {
	r := newTestRouter()

	var last int
	for i := 0; i < 11; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(rr, req)
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, last)
	}
}
