// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles outgoing requests.
type Limiter interface {
	// Wait blocks until a request to rawURL may proceed or ctx is done.
	Wait(ctx context.Context, rawURL string) error
	// Allow reports whether a request to rawURL may proceed right now.
	Allow(rawURL string) bool
}

// HostLimiter keeps one token bucket per host, so analyzing one storefront
// never slows down requests to another.
type HostLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing rps requests per second per host
// with the given burst. rps <= 0 disables throttling.
func NewHostLimiter(rps float64, burst int) *HostLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  limit,
		burst:    burst,
	}
}

func (h *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host := hostOf(rawURL)
	if host == "" {
		return nil
	}
	return h.get(host).Wait(ctx)
}

func (h *HostLimiter) Allow(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return true
	}
	return h.get(host).Allow()
}

// Hosts returns how many hosts currently have a bucket.
func (h *HostLimiter) Hosts() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.limiters)
}

func (h *HostLimiter) get(host string) *rate.Limiter {
	h.mu.RLock()
	l, ok := h.limiters[host]
	h.mu.RUnlock()
	if ok {
		return l
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if l, ok := h.limiters[host]; ok {
		return l
	}
	l = rate.NewLimiter(h.perHost, h.burst)
	h.limiters[host] = l
	return l
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
