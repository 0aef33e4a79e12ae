// Package ratelimit throttles requests per client IP with token buckets.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long an untouched bucket is kept by Sweep.
const DefaultIdleTTL = 10 * time.Minute

// Config configures a Limiter.
type Config struct {
	// PerMinute is the sustained number of requests allowed per client.
	PerMinute int
	// Burst is the bucket size. Defaults to PerMinute.
	Burst int
	// TrustedProxies lists IPs or CIDRs allowed to set X-Forwarded-For and
	// X-Real-IP. Without any, the connection address is always used.
	TrustedProxies []string
	// IdleTTL defaults to DefaultIdleTTL.
	IdleTTL time.Duration
}

// Limiter keeps one token bucket per client key.
type Limiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	trusted []*net.IPNet

	mu      sync.Mutex
	clients map[string]*client
	now     func() time.Time
}

type client struct {
	lim  *rate.Limiter
	last time.Time
}

// New creates a Limiter. A non-positive PerMinute means no limit. Invalid
// proxy entries are ignored; config validation reports them.
func New(cfg Config) *Limiter {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.PerMinute
	}
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	limit := rate.Inf
	if cfg.PerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.PerMinute))
	}
	l := &Limiter{
		limit:   limit,
		burst:   burst,
		idleTTL: ttl,
		clients: make(map[string]*client),
		now:     time.Now,
	}
	for _, p := range cfg.TrustedProxies {
		if !strings.Contains(p, "/") {
			if ip := net.ParseIP(p); ip != nil {
				bits := 8 * len(ip.To16())
				if ip.To4() != nil {
					ip, bits = ip.To4(), 32
				}
				l.trusted = append(l.trusted, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			}
			continue
		}
		if _, network, err := net.ParseCIDR(p); err == nil {
			l.trusted = append(l.trusted, network)
		}
	}
	return l
}

// Limit is the bucket size, reported in X-RateLimit-Limit.
func (l *Limiter) Limit() int {
	return l.burst
}

// Allow takes a token from key's bucket. When none is left it reports how
// long until one is.
func (l *Limiter) Allow(key string) (allowed bool, remaining int, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	c, ok := l.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.last = now

	res := c.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, 0, l.idleTTL
	}
	if d := res.DelayFrom(now); d > 0 {
		res.CancelAt(now)
		return false, 0, d
	}
	return true, int(c.lim.TokensAt(now)), 0
}

// Sweep drops buckets idle for longer than the TTL and returns how many went.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idleTTL)
	n := 0
	for key, c := range l.clients {
		if c.last.Before(cutoff) {
			delete(l.clients, key)
			n++
		}
	}
	return n
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// ClientIP returns the address a request is limited by. Forwarding headers
// count only when the connection comes from a trusted proxy.
func (l *Limiter) ClientIP(r *http.Request) string {
	remote := remoteIP(r.RemoteAddr)
	if !l.isTrusted(remote) {
		return remote
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return remote
}

func (l *Limiter) isTrusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, network := range l.trusted {
		if network.Contains(parsed) {
			return true
		}
	}
	return false
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
