package chamado

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/http/middleware"
)

// ServiceProvider abstrai o serviço para os handlers HTTP.
type ServiceProvider interface {
	Abrir(ctx context.Context, input CreateInput) (*Chamado, error)
	Obter(ctx context.Context, id uuid.UUID) (*Chamado, error)
	Listar(ctx context.Context, filter Filter) ([]Chamado, error)
	Atualizar(ctx context.Context, id uuid.UUID, status, prioridade *string, atribuidoA *uuid.UUID, limparAtribuido bool) (*Chamado, error)
	AdicionarMensagem(ctx context.Context, chamadoID, autorID uuid.UUID, corpo string) (*Mensagem, error)
	ListarMensagens(ctx context.Context, chamadoID uuid.UUID) ([]Mensagem, error)
}

// Handler expõe os endpoints de chamados. Solicitantes veem apenas os
// próprios; IT_SUPPORT vê e administra todos.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listar)
	r.Post("/", h.abrir)
	r.Get("/{id}", h.obter)
	r.Patch("/{id}", h.atualizar)
	r.Get("/{id}/mensagens", h.listarMensagens)
	r.Post("/{id}/mensagens", h.adicionarMensagem)
}

// abrir aceita multipart/form-data (com anexo) ou JSON simples.
func (h *Handler) abrir(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}

	input := CreateInput{SolicitanteID: usuarioID}
	if raw := middleware.GetEmpresa(r.Context()); raw != "" {
		if empresaID, err := uuid.Parse(raw); err == nil {
			input.EmpresaID = &empresaID
		}
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxAnexoBytes); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "formulário multipart inválido")
			return
		}
		input.Assunto = r.FormValue("assunto")
		input.Categoria = r.FormValue("categoria")
		input.Descricao = r.FormValue("descricao")
		input.Prioridade = r.FormValue("prioridade")

		if file, header, err := r.FormFile("anexo"); err == nil {
			defer file.Close()
			anexo, err := io.ReadAll(io.LimitReader(file, maxAnexoBytes+1))
			if err != nil {
				writeError(w, http.StatusBadRequest, "VALIDATION", "não foi possível ler o anexo")
				return
			}
			input.Anexo = anexo
			input.AnexoTipo = header.Header.Get("Content-Type")
		}
	} else {
		var payload struct {
			Assunto    string `json:"assunto"`
			Categoria  string `json:"categoria"`
			Descricao  string `json:"descricao"`
			Prioridade string `json:"prioridade"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
			return
		}
		input.Assunto = payload.Assunto
		input.Categoria = payload.Categoria
		input.Descricao = payload.Descricao
		input.Prioridade = payload.Prioridade
	}

	c, err := h.service.Abrir(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrAnexoInvalido), errors.Is(err, ErrAnexoGrande), errors.Is(err, ErrPrioridadeInvalid):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		default:
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"chamado": c})
}

func (h *Handler) listar(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}

	var filter Filter
	if !ehSuporte(r) {
		filter.SolicitanteID = &usuarioID
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter.Status = strings.Split(raw, ",")
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		filter.Offset = v
	}

	chamados, err := h.service.Listar(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar chamados")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"chamados": chamados})
}

func (h *Handler) obter(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	c, err := h.service.Obter(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "chamado não encontrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar chamado")
		return
	}
	if !ehSuporte(r) && c.SolicitanteID != usuarioID {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "chamado não encontrado")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"chamado": c})
}

func (h *Handler) atualizar(w http.ResponseWriter, r *http.Request) {
	if !ehSuporte(r) {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito ao suporte")
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var payload struct {
		Status          *string    `json:"status"`
		Prioridade      *string    `json:"prioridade"`
		AtribuidoA      *uuid.UUID `json:"atribuido_a"`
		LimparAtribuido bool       `json:"limpar_atribuido"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	c, err := h.service.Atualizar(r.Context(), id, payload.Status, payload.Prioridade, payload.AtribuidoA, payload.LimparAtribuido)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "chamado não encontrado")
		case errors.Is(err, ErrStatusInvalid), errors.Is(err, ErrPrioridadeInvalid):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível atualizar chamado")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"chamado": c})
}

func (h *Handler) listarMensagens(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	c, err := h.service.Obter(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "chamado não encontrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar chamado")
		return
	}
	if !ehSuporte(r) && c.SolicitanteID != usuarioID {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "chamado não encontrado")
		return
	}

	mensagens, err := h.service.ListarMensagens(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar mensagens")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"mensagens": mensagens})
}

func (h *Handler) adicionarMensagem(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	c, err := h.service.Obter(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "chamado não encontrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar chamado")
		return
	}
	if !ehSuporte(r) && c.SolicitanteID != usuarioID {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "chamado não encontrado")
		return
	}

	var payload struct {
		Corpo string `json:"corpo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	m, err := h.service.AdicionarMensagem(r.Context(), id, usuarioID, payload.Corpo)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"mensagem": m})
}

func ehSuporte(r *http.Request) bool {
	return slices.Contains(middleware.GetRoles(r.Context()), "IT_SUPPORT")
}

func usuarioDoContexto(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetSubject(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "sessão inválida")
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
