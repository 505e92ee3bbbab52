package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeWindowCounter struct {
	count int64
	err   error
	keys  []string
}

func (f *fakeWindowCounter) IncrWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	f.keys = append(f.keys, key)
	return f.count, f.err
}

func TestRateLimiterMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		count      int64
		incrErr    error
		wantStatus int
		wantRetry  bool
	}{
		{"under_limit_passes", 3, nil, http.StatusOK, false},
		{"at_limit_passes", 5, nil, http.StatusOK, false},
		{"over_limit_429", 6, nil, http.StatusTooManyRequests, true},
		{"redis_down_fails_open", 0, errors.New("dial tcp: connection refused"), http.StatusOK, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			counter := &fakeWindowCounter{count: tc.count, err: tc.incrErr}

			rl := NewRateLimiter(counter, 5, time.Minute, "test")
			r := newTestRouter(rl.RateLimiterMiddleware(KeyByIP))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}

			if tc.wantRetry {
				if w.Header().Get("Retry-After") != "60" {
					t.Fatalf("Retry-After = %q, want 60", w.Header().Get("Retry-After"))
				}
			} else if w.Header().Get("Retry-After") != "" {
				t.Fatalf("unexpected Retry-After on a %d", w.Code)
			}
		})
	}
}

func TestRateLimiterMiddleware_KeyScoping(t *testing.T) {
	counter := &fakeWindowCounter{count: 1}

	rl := NewRateLimiter(counter, 5, time.Minute, "jwt")
	r := newTestRouter(rl.RateLimiterMiddleware(KeyByIP))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if len(counter.keys) != 1 {
		t.Fatalf("IncrWindow calls = %d, want 1", len(counter.keys))
	}

	const prefix = "ratelimit:jwt:"
	if len(counter.keys[0]) <= len(prefix) || counter.keys[0][:len(prefix)] != prefix {
		t.Fatalf("key = %q, want %q prefix", counter.keys[0], prefix)
	}
}
