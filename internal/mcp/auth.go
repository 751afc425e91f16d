package mcp

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultMCPMaxBodyBytes int64 = 1 << 20 // 1MiB

type HTTPHandlerConfig struct {
	AuthToken       string
	RateLimitPerMin int
	MaxBodyBytes    int64
}

// wrapHTTPHandler guards the HTTP transport with bearer auth, a per-caller rate
// limit, and a request body cap. The MCP core behind it never sees rejected calls.
func wrapHTTPHandler(base http.Handler, cfg HTTPHandlerConfig) http.Handler {
	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMCPMaxBodyBytes
	}
	return &transportGuard{
		next:    base,
		token:   cfg.AuthToken,
		limiter: newHTTPRateLimiter(cfg.RateLimitPerMin),
		maxBody: limit,
	}
}

type transportGuard struct {
	next    http.Handler
	token   string
	limiter *httpRateLimiter
	maxBody int64
}

func (g *transportGuard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(authz, "Bearer ") {
		writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	provided := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	if g.token == "" || provided == "" || provided != g.token {
		writeJSONError(w, http.StatusForbidden, "invalid bearer token")
		return
	}

	if !g.limiter.Allow(rateLimitKey(r)) {
		writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, g.maxBody)
	}
	g.next.ServeHTTP(w, r)
}

func rateLimitKey(r *http.Request) string {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	if host == "" {
		host = "unknown"
	}
	if token == "" {
		return host
	}
	return token + "|" + host
}

type httpRateLimiter struct {
	mu     sync.Mutex
	rate   float64
	burst  float64
	bucket map[string]*tokenBucket
}

type tokenBucket struct {
	tokens float64
	last   time.Time
}

func newHTTPRateLimiter(perMin int) *httpRateLimiter {
	if perMin <= 0 {
		perMin = 60
	}
	return &httpRateLimiter{
		rate:   float64(perMin) / 60.0,
		burst:  float64(perMin),
		bucket: make(map[string]*tokenBucket),
	}
}

func (l *httpRateLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	if key == "" {
		key = "default"
	}

	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.bucket[key]
	if !ok {
		l.bucket[key] = &tokenBucket{tokens: l.burst - 1, last: now}
		return true
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
