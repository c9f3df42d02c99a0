package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Limiters sem uso há mais que isso são descartados.
	limiterTTL = 10 * time.Minute
	// Intervalo mínimo entre varreduras do mapa de limiters.
	intervaloVarredura = time.Minute
)

// RateLimiter mantém um token bucket por chave (IP ou subject autenticado),
// com descarte periódico de chaves ociosas.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu              sync.Mutex
	buckets         map[string]*bucketEntry
	ultimaVarredura time.Time
}

type bucketEntry struct {
	limiter   *rate.Limiter
	ultimoUso time.Time
}

// NewRateLimiter cria limiter com a taxa e rajada informadas.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:   rate.Limit(reqPerSec),
		burst:   burst,
		buckets: make(map[string]*bucketEntry),
	}
}

func (r *RateLimiter) get(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	agora := time.Now()

	if entry, ok := r.buckets[key]; ok {
		entry.ultimoUso = agora
		return entry.limiter
	}

	lim := rate.NewLimiter(r.limit, r.burst)
	r.buckets[key] = &bucketEntry{limiter: lim, ultimoUso: agora}

	if agora.Sub(r.ultimaVarredura) > intervaloVarredura {
		for k, entry := range r.buckets {
			if agora.Sub(entry.ultimoUso) > limiterTTL {
				delete(r.buckets, k)
			}
		}
		r.ultimaVarredura = agora
	}

	return lim
}

// LimitByKey aplica o rate limit usando a chave extraída da requisição.
// Requisições sem chave passam direto.
func (r *RateLimiter) LimitByKey(next http.Handler, keyFunc func(*http.Request) (string, bool)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key, ok := keyFunc(req)
		if !ok || key == "" {
			next.ServeHTTP(w, req)
			return
		}

		if !r.get(key).Allow() {
			w.Header().Set("Retry-After", "1")
			writeRateLimitError(w)
			return
		}

		next.ServeHTTP(w, req)
	})
}

// IPRateLimit protege o grupo público usando o IP do cliente como chave.
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			return realIPFromRequest(r), true
		})
	}
}

// UserRateLimit protege o grupo autenticado usando o subject do token.
func UserRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			subject := GetSubject(r.Context())
			if subject == "" {
				return "", false
			}
			return subject, true
		})
	}
}

func realIPFromRequest(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); ip != "" {
		parts := strings.Split(ip, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeRateLimitError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    "RATE_LIMIT",
			"message": "Muitas requisições. Aguarde um instante e tente novamente.",
		},
	})
}
