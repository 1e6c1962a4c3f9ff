package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock двигается только вручную
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(t *testing.T, limit int, period time.Duration) (*RateLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(limit, period)
	rl.now = clock.Now
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("Requests over limit are denied per key", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 3, time.Minute)

		for i := 0; i < 3; i++ {
			ok, _ := rl.Allow("192.168.1.2")
			assert.True(t, ok)
		}
		ok, retry := rl.Allow("192.168.1.2")
		assert.False(t, ok)
		assert.Equal(t, time.Minute, retry)

		ok, _ = rl.Allow("192.168.1.3")
		assert.True(t, ok, "other keys count separately")
	})

	t.Run("Window resets after its length", func(t *testing.T) {
		rl, clock := newTestLimiter(t, 1, time.Minute)

		ok, _ := rl.Allow("k")
		require.True(t, ok)

		clock.Advance(40 * time.Second)
		ok, retry := rl.Allow("k")
		assert.False(t, ok)
		assert.Equal(t, 20*time.Second, retry)

		clock.Advance(20 * time.Second)
		ok, _ = rl.Allow("k")
		assert.True(t, ok)
	})

	t.Run("Concurrent requests share one window", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 10, time.Minute)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			allowed int
		)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := rl.Allow("same"); ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, allowed)
	})

	t.Run("Stop twice is fine", func(t *testing.T) {
		rl, _ := newTestLimiter(t, 1, time.Minute)
		assert.NotPanics(t, func() {
			rl.Stop()
			rl.Stop()
		})
	})
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl, clock := newTestLimiter(t, 10, time.Minute)

	rl.Allow("192.168.1.1")
	clock.Advance(90 * time.Second)
	rl.Allow("192.168.1.2")
	require.Equal(t, 2, rl.tracked())

	clock.Advance(45 * time.Second)
	rl.sweep()
	assert.Equal(t, 1, rl.tracked(), "only the long idle client is forgotten")

	clock.Advance(2 * time.Minute)
	rl.sweep()
	assert.Zero(t, rl.tracked())
}

func TestClientAddr(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{
			name:       "first X-Forwarded-For entry wins",
			remoteAddr: "10.0.0.1:12345",
			xff:        "192.168.1.1, 10.0.0.2, 10.0.0.3",
			want:       "192.168.1.1",
		},
		{
			name:       "X-Real-IP without X-Forwarded-For",
			remoteAddr: "10.0.0.1:12345",
			xRealIP:    "192.168.2.1",
			want:       "192.168.2.1",
		},
		{
			name:       "RemoteAddr loses its port",
			remoteAddr: "192.168.3.1:54321",
			want:       "192.168.3.1",
		},
		{
			name:       "RemoteAddr without port",
			remoteAddr: "pipe",
			want:       "pipe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}

			assert.Equal(t, tt.want, clientAddr(req))
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	mw, stop := RateLimitMiddleware(logger,
		RateRule{Limit: 5, Window: time.Minute},
		RateRule{Path: "/api/auth/login", Limit: 2, Window: time.Minute},
	)
	defer stop()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(path, addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	t.Run("Login has its own limit", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, send("/api/auth/login", "192.168.1.1:1000").Code)
		}

		// Другой порт того же клиента не обходит лимит
		w := send("/api/auth/login", "192.168.1.1:2000")
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
		assert.Equal(t, "Too many requests, please try again later", detailOf(t, w))
		assert.Contains(t, logBuf.String(), "Rate limit exceeded")
	})

	t.Run("Other paths use the fallback", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.Equal(t, http.StatusOK, send("/api/auth/register", "192.168.1.3:1000").Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, send("/api/auth/register", "192.168.1.3:1000").Code)
	})

	t.Run("Login attempts do not spend the fallback", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send("/api/auth/refresh", "192.168.1.1:3000").Code)
	})
}
