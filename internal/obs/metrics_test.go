package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

func TestInstrumentUsaPadraoDeRotaComoLabel(t *testing.T) {
	Init()

	router := chi.NewRouter()
	router.Use(Instrument)
	router.Get("/registros/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Dois ids diferentes precisam cair no mesmo label, senão a
	// cardinalidade da métrica cresce com cada uuid visto.
	for _, alvo := range []string{"/registros/111", "/registros/222"} {
		req := httptest.NewRequest(http.MethodGet, alvo, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d", rec.Code)
		}
	}

	familias, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	for _, mf := range familias {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, par := range m.GetLabel() {
				if par.GetName() != "path" {
					continue
				}
				switch par.GetValue() {
				case "/registros/{id}":
					if m.GetCounter().GetValue() < 2 {
						t.Fatalf("expected as duas requisições no mesmo label, got %v", m.GetCounter().GetValue())
					}
					return
				case "/registros/111", "/registros/222":
					t.Fatalf("label de path com url crua: %q", par.GetValue())
				}
			}
		}
	}

	t.Fatal("métrica http_requests_total sem série para /registros/{id}")
}
