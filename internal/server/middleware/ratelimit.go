package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// window считает запросы одного клиента в текущем окне
type window struct {
	start time.Time
	count int
}

// RateLimiter is a fixed-window limiter keyed by client address.
// Idle windows are swept in the background until Stop is called.
type RateLimiter struct {
	windows map[string]*window
	now     func() time.Time
	done    chan struct{}
	limit   int
	length  time.Duration
	mu      sync.Mutex
	once    sync.Once
}

// NewRateLimiter allows limit requests per key within each period.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
		done:    make(chan struct{}),
		limit:   limit,
		length:  period,
	}
	go rl.sweepLoop()
	return rl
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(2 * rl.length)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// sweep забывает клиентов, чье окно давно закончилось
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.length)
	for key, w := range rl.windows {
		if w.start.Before(cutoff) {
			delete(rl.windows, key)
		}
	}
}

// Stop ends the background sweep. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.done) })
}

// Allow records a request for key. When the key is over its limit it
// returns false and how long until its window resets.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.length {
		w = &window{start: now}
		rl.windows[key] = w
	}
	if w.count >= rl.limit {
		return false, w.start.Add(rl.length).Sub(now)
	}
	w.count++
	return true, 0
}

func (rl *RateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.windows)
}

// RateRule limits requests to one exact path.
type RateRule struct {
	Path   string
	Limit  int
	Window time.Duration
}

// RateLimitMiddleware applies the first rule whose Path equals the request
// path and fallback to everything else. Each rule counts separately.
// stop ends the background sweeps of all limiters.
func RateLimitMiddleware(logger *slog.Logger, fallback RateRule, rules ...RateRule) (mw func(http.Handler) http.Handler, stop func()) {
	byPath := make(map[string]*RateLimiter, len(rules))
	for _, rule := range rules {
		byPath[rule.Path] = NewRateLimiter(rule.Limit, rule.Window)
	}
	other := NewRateLimiter(fallback.Limit, fallback.Window)

	stop = func() {
		for _, rl := range byPath {
			rl.Stop()
		}
		other.Stop()
	}

	mw = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rl, ok := byPath[r.URL.Path]
			if !ok {
				rl = other
			}

			client := clientAddr(r)
			allowed, retry := rl.Allow(client)
			if !allowed {
				logger.Warn("Rate limit exceeded", "ip", client, "method", r.Method, "path", r.URL.Path)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retry.Seconds()))))
				writeDetail(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
	return mw, stop
}

// clientAddr возвращает адрес клиента: первый из X-Forwarded-For,
// затем X-Real-IP, затем RemoteAddr без порта
func clientAddr(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
