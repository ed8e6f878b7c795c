package github

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/KOFI-GYIMAH/github-activity/pkg/logger"
)

// ErrQuotaExhausted is returned by the limiter's transport instead of sending
// a request GitHub would reject anyway.
var ErrQuotaExhausted = errors.New("github rate limit quota exhausted")

type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	limit     int
	reset     time.Time
	lowWarn   int
	observed  bool
	now       func() time.Time
}

// * Snapshot of the last rate limit headers seen
type RateLimitStatus struct {
	Observed  bool      `json:"observed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		remaining: -1,
		lowWarn:   10,
		now:       time.Now,
	}
}

// * exhausted reports whether the quota is spent and the window not yet reset
func (r *RateLimiter) exhausted() (bool, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.remaining == 0 && r.now().Before(r.reset), r.reset
}

func (r *RateLimiter) updateFromHeaders(headers http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := headers.Get("X-RateLimit-Remaining"); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.remaining = val
			r.observed = true
		}
	}

	if limit := headers.Get("X-RateLimit-Limit"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.limit = val
		}
	}

	if reset := headers.Get("X-RateLimit-Reset"); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.reset = time.Unix(val, 0)
		}
	}

	if r.observed && r.remaining < r.lowWarn {
		logger.Warn("[RateLimiter] Low rate limit: %d remaining. Resets at %s", r.remaining, r.reset.Format(time.RFC1123))
	}
}

func (r *RateLimiter) Status() RateLimitStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RateLimitStatus{
		Observed:  r.observed,
		Limit:     r.limit,
		Remaining: r.remaining,
		Reset:     r.reset,
	}
}

// Middleware records quota headers from every response. It never sleeps or
// retries; once the quota is known to be spent it fails fast so callers can
// fall back to cached data.
func (r *RateLimiter) Middleware(next http.RoundTripper) http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if spent, reset := r.exhausted(); spent {
			logger.Debug("[RateLimiter] Skipping %s, quota resets at %s", req.URL, reset.Format(time.RFC1123))
			return nil, ErrQuotaExhausted
		}

		resp, err := next.RoundTrip(req)
		if err != nil {
			logger.Error("Network error in RoundTrip: %v", err)
			return nil, err
		}

		r.updateFromHeaders(resp.Header)
		return resp, nil
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
