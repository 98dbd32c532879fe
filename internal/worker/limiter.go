package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/ppiankov/verifact/internal/model"
)

// HostLimiter throttles evidence fetches per host so a run that cross-references
// the same site repeatedly stays polite. It is safe for concurrent use and may be
// shared between batch runs.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter from rate-limit settings.
// A non-positive rate disables limiting.
func NewHostLimiter(cfg model.RateLimitConfig) *HostLimiter {
	burst := cfg.BurstSize
	if burst <= 0 {
		burst = 1
	}

	perHost := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		perHost = rate.Inf
	}

	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  perHost,
		burst:    burst,
	}
}

// Wait blocks until a request to rawURL's host is allowed or ctx is done
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host, err := hostKey(rawURL)
	if err != nil {
		return err
	}
	return l.forHost(host).Wait(ctx)
}

// Allow reports whether a request may happen now without waiting
func (l *HostLimiter) Allow(rawURL string) bool {
	host, err := hostKey(rawURL)
	if err != nil {
		return false
	}
	return l.forHost(host).Allow()
}

func (l *HostLimiter) forHost(host string) *rate.Limiter {
	l.mu.RLock()
	limiter, ok := l.limiters[host]
	l.mu.RUnlock()
	if ok {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters[host]; ok {
		return limiter
	}
	limiter = rate.NewLimiter(l.perHost, l.burst)
	l.limiters[host] = limiter
	return limiter
}

// hostKey maps a URL to its limiter bucket; www.example.com and example.com share one
func hostKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return normalizeHost(parsed.Hostname()), nil
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
