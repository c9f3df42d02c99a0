package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/http/middleware"
)

// ServiceProvider abstrai o serviço para o handler HTTP.
type ServiceProvider interface {
	Resumir(ctx context.Context, empresaID uuid.UUID) *Resumo
}

// Handler expõe o painel de agregados do administrador.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.resumir)
}

func (h *Handler) resumir(w http.ResponseWriter, r *http.Request) {
	raw := middleware.GetEmpresa(r.Context())
	if raw == "" {
		raw = r.URL.Query().Get("empresa_id")
	}
	empresaID, err := uuid.Parse(raw)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": nil,
			"error": map[string]any{
				"code":    "FORBIDDEN",
				"message": "empresa não identificada no token",
			},
		})
		return
	}

	resumo := h.service.Resumir(r.Context(), empresaID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"dashboard": resumo}, "error": nil})
}

// Mount registra as rotas do painel.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
