package folha

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/funcionario"
	"github.com/pontodigital/plataforma/internal/http/middleware"
)

// ServiceProvider abstrai o serviço para os handlers HTTP.
type ServiceProvider interface {
	Gerar(ctx context.Context, funcionarioID, empresaID uuid.UUID, competencia string) (*FechamentoFolha, error)
	Obter(ctx context.Context, id, empresaID uuid.UUID) (*FechamentoFolha, error)
	Listar(ctx context.Context, empresaID uuid.UUID, competencia string) ([]FechamentoFolha, error)
	Fechar(ctx context.Context, id, empresaID uuid.UUID) (*FechamentoFolha, error)
	Aprovar(ctx context.Context, id, empresaID, aprovadorID uuid.UUID) (*FechamentoFolha, error)
}

// Handler expõe o ciclo de fechamento de folha para o administrador.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listar)
	r.Post("/", h.gerar)
	r.Get("/{id}", h.obter)
	r.Post("/{id}/fechar", h.fechar)
	r.Post("/{id}/aprovar", h.aprovar)
}

func (h *Handler) gerar(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}

	var payload struct {
		FuncionarioID uuid.UUID `json:"funcionario_id"`
		Competencia   string    `json:"competencia"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	f, err := h.service.Gerar(r.Context(), payload.FuncionarioID, empresaID, payload.Competencia)
	if err != nil {
		switch {
		case errors.Is(err, funcionario.ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		case errors.Is(err, ErrCompetenciaInvalida):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, ErrTransicaoInvalida):
			writeError(w, http.StatusConflict, "CONFLICT", "competência já fechada ou aprovada")
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível gerar fechamento")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"fechamento": f})
}

func (h *Handler) listar(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}

	fechamentos, err := h.service.Listar(r.Context(), empresaID, r.URL.Query().Get("competencia"))
	if err != nil {
		if errors.Is(err, ErrCompetenciaInvalida) {
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar fechamentos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"fechamentos": fechamentos})
}

func (h *Handler) obter(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	f, err := h.service.Obter(r.Context(), id, empresaID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "fechamento não encontrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar fechamento")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"fechamento": f})
}

func (h *Handler) fechar(w http.ResponseWriter, r *http.Request) {
	h.transicionar(w, r, func(ctx context.Context, id, empresaID, _ uuid.UUID) (*FechamentoFolha, error) {
		return h.service.Fechar(ctx, id, empresaID)
	})
}

func (h *Handler) aprovar(w http.ResponseWriter, r *http.Request) {
	h.transicionar(w, r, h.service.Aprovar)
}

func (h *Handler) transicionar(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, empresaID, aprovadorID uuid.UUID) (*FechamentoFolha, error)) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}
	aprovadorID, err := uuid.Parse(middleware.GetSubject(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "sessão inválida")
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	f, err := fn(r.Context(), id, empresaID, aprovadorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "fechamento não encontrado")
		case errors.Is(err, ErrTransicaoInvalida):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível atualizar fechamento")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"fechamento": f})
}

func empresaDoContexto(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := middleware.GetEmpresa(r.Context())
	if raw == "" {
		raw = r.URL.Query().Get("empresa_id")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "empresa não identificada no token")
		return uuid.Nil, false
	}
	return id, true
}

func parseID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "error": nil})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// Mount registra rotas do módulo de folha.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
