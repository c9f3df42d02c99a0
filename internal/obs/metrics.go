package obs

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "Requisições HTTP em andamento.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total de requisições HTTP.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latência das requisições HTTP em segundos.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

var registrar sync.Once

// Init registra as métricas no registro default do Prometheus. Idempotente.
func Init() {
	registrar.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration)
	})
}

// Handler expõe o endpoint /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument mede contagem, latência e requisições em voo.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		start := time.Now()

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(ww.Status())
		rota := rotaDaRequisicao(r)

		httpRequestDuration.WithLabelValues(r.Method, rota, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(r.Method, rota, status).Inc()
		httpInFlight.Dec()
	})
}

// rotaDaRequisicao devolve o padrão de rota do chi ({id} em vez do uuid),
// mantendo a cardinalidade dos labels limitada. Só está disponível depois
// que o roteador atendeu a requisição.
func rotaDaRequisicao(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if padrao := rctx.RoutePattern(); padrao != "" {
			return padrao
		}
	}
	return "sem_rota"
}
