package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"pet-health-tracker/internal/platform/metrics"
)

// IPRateLimiter mantiene un token bucket por IP.
type IPRateLimiter struct {
	mu  sync.Mutex
	ips map[string]*visitor
	r   rate.Limit
	b   int

	idleTTL time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:     make(map[string]*visitor),
		r:       r,
		b:       b,
		idleTTL: 3 * time.Minute,
	}
}

// GetLimiter devuelve (o crea) el limiter de ip.
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, ok := i.ips[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Cleanup borra IPs sin actividad reciente.
func (i *IPRateLimiter) Cleanup(now time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for ip, v := range i.ips {
		if now.Sub(v.lastSeen) > i.idleTTL {
			delete(i.ips, ip)
		}
	}
}

// RunCleanup corre Cleanup cada interval hasta que done se cierre.
func (i *IPRateLimiter) RunCleanup(done <-chan struct{}, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-t.C:
			i.Cleanup(now)
		}
	}
}

// RateLimit responde 429 cuando la IP agota su bucket.
// Usa RemoteAddr: con chimw.RealIP antes, es la IP del cliente.
func RateLimit(l *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.GetLimiter(clientIP(r)).Allow() {
				metrics.RateLimitRejected.Inc()
				w.Header().Set("Retry-After", "1")
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
