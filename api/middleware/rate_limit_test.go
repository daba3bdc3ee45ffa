package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	limiter := pkgredis.NewFromRedis(raw)

	policy := RateLimitPolicy{Name: "checkout", Limit: 2, Window: time.Minute}
	handler := RateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
		req = req.WithContext(WithUserID(req.Context(), "user-1"))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
		if i == 2 && resp.Header().Get("Retry-After") == "" {
			t.Fatalf("expected Retry-After header on blocked request")
		}
	}
	if codes[0] != http.StatusCreated || codes[1] != http.StatusCreated || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}

	other := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	other = other.WithContext(WithUserID(other.Context(), "user-2"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, other)
	if resp.Code != http.StatusCreated {
		t.Fatalf("limit must be per user, got %d", resp.Code)
	}
}

type failingLimiter struct{}

func (failingLimiter) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, time.Duration, error) {
	return false, 0, 0, errors.New("redis down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	policy := RateLimitPolicy{Name: "checkout", Limit: 1, Window: time.Minute}
	called := false
	handler := RateLimit(policy, failingLimiter{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	if !called {
		t.Fatalf("expected request to pass when limiter errors")
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if got := clientIP(req); got != "203.0.113.7" {
		t.Fatalf("unexpected ip %s", got)
	}
}
