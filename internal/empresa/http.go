package empresa

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/repo"
)

// ServiceProvider abstrai o serviço para os handlers HTTP.
type ServiceProvider interface {
	Cadastrar(ctx context.Context, input CreateInput) (*Empresa, error)
	Obter(ctx context.Context, id uuid.UUID) (*Empresa, error)
	Listar(ctx context.Context, filter Filter) ([]Empresa, error)
	Atualizar(ctx context.Context, input UpdateInput) (*Empresa, error)
	AlternarStatus(ctx context.Context, id uuid.UUID) (*Empresa, error)
	CadastrarAdmin(ctx context.Context, input AdminInput) (*Admin, error)
	ObterConfiguracao(ctx context.Context, empresaID uuid.UUID) (*Configuracao, error)
	SalvarConfiguracao(ctx context.Context, c Configuracao) error
	Remover(ctx context.Context, id uuid.UUID) error
}

// Handler expõe endpoints REST de empresas (mutação restrita a IT_SUPPORT).
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listar)
	r.Post("/", h.cadastrar)
	r.Get("/{id}", h.obter)
	r.Patch("/{id}", h.atualizar)
	r.Post("/{id}/status", h.alternarStatus)
	r.Post("/{id}/admins", h.cadastrarAdmin)
	r.Get("/{id}/configuracao", h.obterConfiguracao)
	r.Put("/{id}/configuracao", h.salvarConfiguracao)
	r.Delete("/{id}", h.remover)
}

func (h *Handler) listar(w http.ResponseWriter, r *http.Request) {
	var filter Filter

	if ativaStr := strings.TrimSpace(r.URL.Query().Get("ativa")); ativaStr != "" {
		ativa := ativaStr == "true"
		filter.Ativa = &ativa
	}
	filter.Busca = r.URL.Query().Get("busca")
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		filter.Offset = v
	}

	empresas, err := h.service.Listar(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar empresas")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"empresas": empresas})
}

func (h *Handler) cadastrar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Nome          string `json:"nome"`
		CNPJ          string `json:"cnpj"`
		Logradouro    string `json:"logradouro"`
		Numero        string `json:"numero"`
		Cidade        string `json:"cidade"`
		EstadoID      int    `json:"estado_id"`
		RamoAtividade string `json:"ramo_atividade"`
		Email         string `json:"email"`
		Telefone      string `json:"telefone"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	e, err := h.service.Cadastrar(r.Context(), CreateInput{
		Nome:          payload.Nome,
		CNPJ:          payload.CNPJ,
		Logradouro:    payload.Logradouro,
		Numero:        payload.Numero,
		Cidade:        payload.Cidade,
		EstadoID:      payload.EstadoID,
		RamoAtividade: payload.RamoAtividade,
		Email:         payload.Email,
		Telefone:      payload.Telefone,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			writeError(w, http.StatusConflict, "CONFLICT", "CNPJ ou email já cadastrado")
		case errors.Is(err, ErrEstadoInvalid):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		default:
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"empresa": e})
}

func (h *Handler) cadastrarAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var payload struct {
		Nome  string `json:"nome"`
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	admin, err := h.service.CadastrarAdmin(r.Context(), AdminInput{
		EmpresaID: id,
		Nome:      payload.Nome,
		Email:     payload.Email,
		Senha:     payload.Senha,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "empresa não encontrada")
		case errors.Is(err, repo.ErrDuplicate):
			writeError(w, http.StatusConflict, "CONFLICT", "email já cadastrado")
		default:
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"admin": admin})
}

func (h *Handler) obter(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	e, err := h.service.Obter(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "empresa não encontrada")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar empresa")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"empresa": e})
}

func (h *Handler) atualizar(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var payload struct {
		Nome          *string `json:"nome"`
		Logradouro    *string `json:"logradouro"`
		Numero        *string `json:"numero"`
		Cidade        *string `json:"cidade"`
		EstadoID      *int    `json:"estado_id"`
		RamoAtividade *string `json:"ramo_atividade"`
		Email         *string `json:"email"`
		Telefone      *string `json:"telefone"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	e, err := h.service.Atualizar(r.Context(), UpdateInput{
		ID:            id,
		Nome:          payload.Nome,
		Logradouro:    payload.Logradouro,
		Numero:        payload.Numero,
		Cidade:        payload.Cidade,
		EstadoID:      payload.EstadoID,
		RamoAtividade: payload.RamoAtividade,
		Email:         payload.Email,
		Telefone:      payload.Telefone,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "empresa não encontrada")
		case errors.Is(err, repo.ErrDuplicate):
			writeError(w, http.StatusConflict, "CONFLICT", "email já cadastrado")
		default:
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"empresa": e})
}

func (h *Handler) alternarStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	e, err := h.service.AlternarStatus(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "empresa não encontrada")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível alterar status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"empresa": e})
}

func (h *Handler) obterConfiguracao(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	cfg, err := h.service.ObterConfiguracao(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "configuração não encontrada")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar configuração")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"configuracao": cfg})
}

func (h *Handler) salvarConfiguracao(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var payload struct {
		RequerFoto        bool     `json:"requer_foto"`
		RequerLocalizacao bool     `json:"requer_localizacao"`
		Latitude          *float64 `json:"latitude"`
		Longitude         *float64 `json:"longitude"`
		RaioMetros        *float64 `json:"raio_metros"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	cfg := Configuracao{
		EmpresaID:         id,
		RequerFoto:        payload.RequerFoto,
		RequerLocalizacao: payload.RequerLocalizacao,
		Latitude:          payload.Latitude,
		Longitude:         payload.Longitude,
		RaioMetros:        payload.RaioMetros,
	}

	if err := h.service.SalvarConfiguracao(r.Context(), cfg); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"configuracao": cfg})
}

func (h *Handler) remover(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	if err := h.service.Remover(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "empresa não encontrada")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível remover empresa")
		return
	}

	w.WriteHeader(http.StatusNoContent)
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
