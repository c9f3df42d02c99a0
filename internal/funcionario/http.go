package funcionario

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/http/middleware"
	"github.com/pontodigital/plataforma/internal/repo"
)

// ServiceProvider abstrai o serviço para os handlers HTTP.
type ServiceProvider interface {
	Cadastrar(ctx context.Context, input CreateInput) (*Funcionario, error)
	Obter(ctx context.Context, id, empresaID uuid.UUID) (*Funcionario, error)
	Listar(ctx context.Context, filter Filter) ([]Funcionario, error)
	Atualizar(ctx context.Context, input UpdateInput) (*Funcionario, error)
	Desativar(ctx context.Context, id, empresaID uuid.UUID) error
	Reativar(ctx context.Context, id, empresaID uuid.UUID) error
	Excluir(ctx context.Context, id, empresaID uuid.UUID) error
	DefinirJornada(ctx context.Context, id, empresaID uuid.UUID, jornadas []JornadaInput) error
	ListarJornada(ctx context.Context, id uuid.UUID) ([]Jornada, error)
}

// Handler expõe endpoints de funcionários, sempre escopados à empresa do token.
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
	r.Post("/{id}/desativar", h.desativar)
	r.Post("/{id}/reativar", h.reativar)
	r.Delete("/{id}", h.excluir)
	r.Get("/{id}/jornada", h.listarJornada)
	r.Put("/{id}/jornada", h.definirJornada)
}

func (h *Handler) listar(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}

	filter := Filter{EmpresaID: empresaID}
	filter.Departamento = r.URL.Query().Get("departamento")
	if ativoStr := r.URL.Query().Get("ativo"); ativoStr != "" {
		ativo := ativoStr == "true"
		filter.Ativo = &ativo
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		filter.Offset = v
	}

	funcionarios, err := h.service.Listar(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar funcionários")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"funcionarios": funcionarios})
}

func (h *Handler) cadastrar(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}

	var payload struct {
		Nome         string         `json:"nome"`
		Email        string         `json:"email"`
		Senha        string         `json:"senha"`
		CPF          string         `json:"cpf"`
		Matricula    string         `json:"matricula"`
		Cargo        string         `json:"cargo"`
		Departamento string         `json:"departamento"`
		DataAdmissao string         `json:"data_admissao"`
		TipoContrato string         `json:"tipo_contrato"`
		SalarioBase  float64        `json:"salario_base"`
		Jornadas     []JornadaInput `json:"jornadas"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	var dataAdmissao time.Time
	if payload.DataAdmissao != "" {
		parsed, err := time.Parse("2006-01-02", payload.DataAdmissao)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "data de admissão inválida, use AAAA-MM-DD")
			return
		}
		dataAdmissao = parsed
	}

	f, err := h.service.Cadastrar(r.Context(), CreateInput{
		EmpresaID:    empresaID,
		Nome:         payload.Nome,
		Email:        payload.Email,
		Senha:        payload.Senha,
		CPF:          payload.CPF,
		Matricula:    payload.Matricula,
		Cargo:        payload.Cargo,
		Departamento: payload.Departamento,
		DataAdmissao: dataAdmissao,
		TipoContrato: payload.TipoContrato,
		SalarioBase:  payload.SalarioBase,
		Jornadas:     payload.Jornadas,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			writeError(w, http.StatusConflict, "CONFLICT", "email ou CPF já cadastrado")
		case errors.Is(err, ErrJornadaInvalid):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		default:
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"funcionario": f})
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
			writeError(w, http.StatusNotFound, "NOT_FOUND", "funcionário não encontrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar funcionário")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"funcionario": f})
}

func (h *Handler) atualizar(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var payload struct {
		Cargo        *string  `json:"cargo"`
		Departamento *string  `json:"departamento"`
		TipoContrato *string  `json:"tipo_contrato"`
		SalarioBase  *float64 `json:"salario_base"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	f, err := h.service.Atualizar(r.Context(), UpdateInput{
		ID:           id,
		EmpresaID:    empresaID,
		Cargo:        payload.Cargo,
		Departamento: payload.Departamento,
		TipoContrato: payload.TipoContrato,
		SalarioBase:  payload.SalarioBase,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "funcionário não encontrado")
			return
		}
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"funcionario": f})
}

func (h *Handler) desativar(w http.ResponseWriter, r *http.Request) {
	h.setAtivo(w, r, false)
}

func (h *Handler) reativar(w http.ResponseWriter, r *http.Request) {
	h.setAtivo(w, r, true)
}

func (h *Handler) setAtivo(w http.ResponseWriter, r *http.Request, ativo bool) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	if ativo {
		err = h.service.Reativar(r.Context(), id, empresaID)
	} else {
		err = h.service.Desativar(r.Context(), id, empresaID)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "funcionário não encontrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível alterar status")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ativo": ativo})
}

func (h *Handler) excluir(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	if err := h.service.Excluir(r.Context(), id, empresaID); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "funcionário não encontrado")
		case errors.Is(err, ErrAindaAtivo):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível excluir funcionário")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listarJornada(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	if _, err := h.service.Obter(r.Context(), id, empresaID); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "funcionário não encontrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar jornada")
		return
	}

	jornadas, err := h.service.ListarJornada(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar jornada")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"jornadas": jornadas})
}

func (h *Handler) definirJornada(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var payload struct {
		Jornadas []JornadaInput `json:"jornadas"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	if err := h.service.DefinirJornada(r.Context(), id, empresaID, payload.Jornadas); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "funcionário não encontrado")
		case errors.Is(err, ErrJornadaInvalid):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível definir jornada")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"jornadas": payload.Jornadas})
}

// empresaDoContexto resolve a empresa do token. IT_SUPPORT pode operar em
// qualquer empresa via query string ?empresa_id=.
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
