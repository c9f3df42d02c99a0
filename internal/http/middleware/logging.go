package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sondagens de infraestrutura logam em debug para não afogar o log da API
// com health checks e scrapes de métricas.
var rotasSondagem = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/metrics": true,
}

// Logging escreve uma linha estruturada por requisição atendida.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		inicio := time.Now()

		next.ServeHTTP(ww, r)

		nivel := zerolog.InfoLevel
		if rotasSondagem[r.URL.Path] {
			nivel = zerolog.DebugLevel
		}

		event := log.WithLevel(nivel).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(inicio)).
			Str("ip", realIPFromRequest(r))

		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			event = event.Str("request_id", reqID)
		}
		if ua := r.Header.Get("User-Agent"); ua != "" {
			event = event.Str("user_agent", ua)
		}

		event.Msg("requisição atendida")
	})
}
