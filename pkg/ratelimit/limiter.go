// Package ratelimit throttles JSON-RPC requests per client IP.
//
// Limits are expressed the way operators configure them: at most
// MaxAttempts requests per Decay window. Each client gets a rate.Limiter with
// a burst of MaxAttempts refilled at MaxAttempts/Decay, so bursts up to the
// full allowance are accepted and the window slides smoothly.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Defaults for Config.
const (
	DefaultMaxAttempts     = 60
	DefaultDecay           = time.Minute
	DefaultCleanupInterval = time.Minute
)

// Config configures a Limiter.
type Config struct {
	MaxAttempts     int           // requests allowed per Decay window
	Decay           time.Duration // window length
	TrustedProxies  []string      // CIDRs or IPs whose forwarding headers are honored
	CleanupInterval time.Duration // how often idle clients are forgotten
}

type client struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanoseconds
}

// Limiter tracks one rate.Limiter per client IP.
type Limiter struct {
	limit           rate.Limit
	burst           int
	clients         map[string]*client
	mu              sync.RWMutex
	trustedProxies  []*net.IPNet
	cleanupInterval time.Duration
	idleTTL         time.Duration
	now             func() time.Time
	stopCh          chan struct{}
	stoppedCh       chan struct{}
	stopOnce        sync.Once
}

// New creates a Limiter and starts its cleanup goroutine. Call Stop when done.
func New(cfg Config) *Limiter {
	return newLimiter(cfg, time.Now)
}

func newLimiter(cfg Config, now func() time.Time) *Limiter {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	decay := cfg.Decay
	if decay <= 0 {
		decay = DefaultDecay
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}

	l := &Limiter{
		limit:           rate.Limit(float64(attempts) / decay.Seconds()),
		burst:           attempts,
		clients:         make(map[string]*client),
		trustedProxies:  parseProxies(cfg.TrustedProxies),
		cleanupInterval: cleanup,
		idleTTL:         decay,
		now:             now,
		stopCh:          make(chan struct{}),
		stoppedCh:       make(chan struct{}),
	}
	go l.cleanup()
	return l
}

// Limit returns the number of requests allowed per window.
func (l *Limiter) Limit() int { return l.burst }

// Rate returns the refill rate in requests per second.
func (l *Limiter) Rate() float64 { return float64(l.limit) }

// Allow consumes one request for key. It returns whether the request is
// allowed, the requests left, and the seconds until the client may retry
// (when denied) or until the allowance is full again (when allowed).
func (l *Limiter) Allow(key string) (allowed bool, remaining int, seconds int64) {
	now := l.now()
	c := l.client(key)
	c.lastSeen.Store(now.UnixNano())

	if c.limiter.AllowN(now, 1) {
		tokens := c.limiter.TokensAt(now)
		return true, int(tokens), ceilSeconds((float64(l.burst) - tokens) / float64(l.limit))
	}

	// Ask when one token frees up, then hand it back.
	r := c.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return false, 0, ceilSeconds(delay.Seconds())
}

func (l *Limiter) client(key string) *client {
	l.mu.RLock()
	c, ok := l.clients[key]
	l.mu.RUnlock()
	if ok {
		return c
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok = l.clients[key]; !ok {
		c = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	return c
}

func ceilSeconds(s float64) int64 {
	n := int64(s)
	if float64(n) < s {
		n++
	}
	if n < 1 {
		n = 1
	}
	return n
}

// ClientIP returns the address requests are counted against. Forwarding
// headers are honored only when the direct peer is a trusted proxy.
func (l *Limiter) ClientIP(r *http.Request) string {
	remote := remoteIP(r.RemoteAddr)
	if !l.trusted(remote) {
		return remote
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return remote
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})
	<-l.stoppedCh
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()
	defer close(l.stoppedCh)

	for {
		select {
		case <-ticker.C:
			l.forgetIdle()
		case <-l.stopCh:
			return
		}
	}
}

// forgetIdle drops clients whose allowance has fully recovered.
func (l *Limiter) forgetIdle() {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, c := range l.clients {
		if c.lastSeen.Load() < cutoff.UnixNano() {
			delete(l.clients, key)
		}
	}
}

func (l *Limiter) tracked() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.clients)
}

func (l *Limiter) trusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range l.trustedProxies {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

func parseProxies(entries []string) []*net.IPNet {
	var out []*net.IPNet
	for _, e := range entries {
		if _, n, err := net.ParseCIDR(e); err == nil {
			out = append(out, n)
			continue
		}
		ip := net.ParseIP(e)
		if ip == nil {
			continue
		}
		bits := 128
		if ip.To4() != nil {
			ip = ip.To4()
			bits = 32
		}
		out = append(out, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return out
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
