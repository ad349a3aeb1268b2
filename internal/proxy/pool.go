package proxy

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultCooldown is how long a failed proxy is skipped.
const DefaultCooldown = 5 * time.Minute

// Pool rotates outgoing requests across a list of proxies, skipping the ones
// that failed recently.
type Pool struct {
	mu       sync.Mutex
	proxies  []string
	next     int
	failed   map[string]time.Time
	cooldown time.Duration
}

// NewPool creates a pool from proxy URLs. Blank entries are ignored.
func NewPool(proxies []string) *Pool {
	clean := make([]string, 0, len(proxies))
	for _, p := range proxies {
		if p = strings.TrimSpace(p); p != "" {
			clean = append(clean, p)
		}
	}
	return &Pool{
		proxies:  clean,
		failed:   make(map[string]time.Time),
		cooldown: DefaultCooldown,
	}
}

// Len returns the number of configured proxies.
func (p *Pool) Len() int {
	return len(p.proxies)
}

// Next returns the next healthy proxy. When every proxy is cooling down the
// next one in rotation is returned anyway.
func (p *Pool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	for i := 0; i < len(p.proxies); i++ {
		candidate := p.proxies[p.next]
		p.next = (p.next + 1) % len(p.proxies)

		failedAt, ok := p.failed[candidate]
		if !ok {
			return candidate
		}
		if time.Since(failedAt) >= p.cooldown {
			delete(p.failed, candidate)
			return candidate
		}
	}

	candidate := p.proxies[p.next]
	p.next = (p.next + 1) % len(p.proxies)
	return candidate
}

// MarkFailed puts a proxy on cooldown.
func (p *Pool) MarkFailed(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed[proxy] = time.Now()
}

// MarkHealthy clears a proxy's cooldown.
func (p *Pool) MarkHealthy(proxy string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.failed, proxy)
}

// ProxyFunc adapts the pool to http.Transport.Proxy. Malformed proxy URLs are
// put on cooldown and the request goes direct.
func (p *Pool) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(*http.Request) (*url.URL, error) {
		raw := p.Next()
		if raw == "" {
			return nil, nil
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			log.Warn().Str("proxy", raw).Msg("Skipping malformed proxy")
			p.MarkFailed(raw)
			return nil, nil
		}
		return u, nil
	}
}
