// Package ratelimiter throttles HTTP callers by client IP.
package ratelimiter

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultIdleTTL = 10 * time.Minute
	sweepInterval  = time.Minute
)

// Limiter keeps one token bucket per client IP. Clients idle for longer
// than the TTL are forgotten. A nil *Limiter allows every request.
type Limiter struct {
	rps   rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	bucket *rate.Limiter
	seen   time.Time
}

// New returns nil when rps or burst is not positive, which disables limiting.
func New(rps float64, burst int, ttl time.Duration) *Limiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	return &Limiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// AllowRequest charges one token to the caller of r. It returns the client
// key used and whether the request may proceed.
func (l *Limiter) AllowRequest(r *http.Request) (string, bool) {
	key := clientKey(r)
	return key, l.allow(key)
}

func (l *Limiter) allow(key string) bool {
	if l == nil {
		return true
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[key]
	if !ok {
		c = &client{bucket: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = c
	}
	c.seen = now

	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweep(now)
	}

	return c.bucket.AllowN(now, 1)
}

// sweep drops idle clients. Caller holds l.mu.
func (l *Limiter) sweep(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.seen) > l.ttl {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func clientKey(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
