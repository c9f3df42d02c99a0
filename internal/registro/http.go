package registro

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/funcionario"
	"github.com/pontodigital/plataforma/internal/http/middleware"
)

const maxFotoBytes = 10 << 20

// ServiceProvider abstrai o serviço para os handlers HTTP.
type ServiceProvider interface {
	Cadastrar(ctx context.Context, input CreateInput) (*Registro, error)
	Obter(ctx context.Context, id, empresaID uuid.UUID) (*Registro, error)
	Listar(ctx context.Context, filter Filter) ([]Registro, error)
	ListarDoFuncionario(ctx context.Context, usuarioID uuid.UUID, filter Filter) ([]Registro, error)
	AtualizarStatus(ctx context.Context, id, empresaID, aprovadorID uuid.UUID, status string, justificativa *string) (*Registro, error)
	SolicitarAlteracao(ctx context.Context, usuarioID, registroID uuid.UUID, tipoCorrecao, motivo string) (*SolicitacaoAlteracao, error)
	ListarSolicitacoes(ctx context.Context, empresaID uuid.UUID, status string) ([]SolicitacaoAlteracao, error)
	ListarMinhasSolicitacoes(ctx context.Context, usuarioID uuid.UUID) ([]SolicitacaoAlteracao, error)
	ResolverSolicitacao(ctx context.Context, id, empresaID, resolvedorID uuid.UUID, status, resposta string) (*SolicitacaoAlteracao, error)
	AnalisarIrregularidades(ctx context.Context, funcionarioID, empresaID uuid.UUID, dia time.Time) ([]Irregularidade, error)
}

// Handler expõe o fluxo de ponto em duas superfícies: autoatendimento do
// funcionário e painel de aprovação do administrador.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

// RegisterFuncionarioRoutes registra as rotas de autoatendimento.
func (h *Handler) RegisterFuncionarioRoutes(r chi.Router) {
	r.Post("/", h.cadastrar)
	r.Get("/", h.listarMeus)
	r.Get("/solicitacoes", h.listarMinhasSolicitacoes)
	r.Post("/{id}/solicitacoes", h.solicitarAlteracao)
}

// RegisterAdminRoutes registra as rotas do painel de aprovação.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.listar)
	r.Get("/{id}", h.obter)
	r.Post("/{id}/status", h.atualizarStatus)
	r.Get("/solicitacoes", h.listarSolicitacoes)
	r.Post("/solicitacoes/{id}/resolver", h.resolverSolicitacao)
	r.Get("/irregularidades", h.analisarIrregularidades)
}

// cadastrar recebe multipart/form-data: campos tipo, latitude, longitude,
// precisao, dispositivo e o arquivo "foto".
func (h *Handler) cadastrar(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxFotoBytes); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "formulário multipart inválido")
		return
	}

	input := CreateInput{
		UsuarioID:   usuarioID,
		Tipo:        r.FormValue("tipo"),
		Dispositivo: r.FormValue("dispositivo"),
	}
	input.Latitude = parseFloatForm(r, "latitude")
	input.Longitude = parseFloatForm(r, "longitude")
	input.Precisao = parseFloatForm(r, "precisao")

	if file, header, err := r.FormFile("foto"); err == nil {
		defer file.Close()
		foto, err := io.ReadAll(io.LimitReader(file, maxFotoBytes))
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "não foi possível ler a foto")
			return
		}
		input.Foto = foto
		input.FotoTipo = header.Header.Get("Content-Type")
	}

	reg, err := h.service.Cadastrar(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrFotoObrigatoria), errors.Is(err, ErrLocalizacaoObrigatoria), errors.Is(err, ErrTipoInvalid):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, ErrFuncionarioInativo):
			writeError(w, http.StatusForbidden, "FORBIDDEN", err.Error())
		case errors.Is(err, funcionario.ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível registrar ponto")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"registro": reg})
}

func (h *Handler) listarMeus(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}

	registros, err := h.service.ListarDoFuncionario(r.Context(), usuarioID, filtroDaQuery(r))
	if err != nil {
		if errors.Is(err, funcionario.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar registros")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"registros": registros})
}

func (h *Handler) listar(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}

	filter := filtroDaQuery(r)
	filter.EmpresaID = empresaID
	if raw := r.URL.Query().Get("funcionario_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "funcionario_id inválido")
			return
		}
		filter.FuncionarioID = id
	}

	registros, err := h.service.Listar(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar registros")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"registros": registros})
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

	reg, err := h.service.Obter(r.Context(), id, empresaID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar registro")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"registro": reg})
}

func (h *Handler) atualizarStatus(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}
	aprovadorID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var payload struct {
		Status        string  `json:"status"`
		Justificativa *string `json:"justificativa"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	reg, err := h.service.AtualizarStatus(r.Context(), id, empresaID, aprovadorID, payload.Status, payload.Justificativa)
	if err != nil {
		switch {
		case errors.Is(err, ErrStatusInvalid):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado")
		case errors.Is(err, ErrJaResolvido):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível atualizar status")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"registro": reg})
}

func (h *Handler) solicitarAlteracao(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}
	registroID, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var payload struct {
		TipoCorrecao string `json:"tipo_correcao"`
		Motivo       string `json:"motivo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	sol, err := h.service.SolicitarAlteracao(r.Context(), usuarioID, registroID, payload.TipoCorrecao, payload.Motivo)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, funcionario.ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "registro não encontrado")
		case errors.Is(err, ErrRegistroNaoAprovado):
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION", err.Error())
		case errors.Is(err, ErrSolicitacaoPendente):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error())
		default:
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"solicitacao": sol})
}

func (h *Handler) listarSolicitacoes(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}

	solicitacoes, err := h.service.ListarSolicitacoes(r.Context(), empresaID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar solicitações")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"solicitacoes": solicitacoes})
}

func (h *Handler) listarMinhasSolicitacoes(w http.ResponseWriter, r *http.Request) {
	usuarioID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}

	solicitacoes, err := h.service.ListarMinhasSolicitacoes(r.Context(), usuarioID)
	if err != nil {
		if errors.Is(err, funcionario.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar solicitações")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"solicitacoes": solicitacoes})
}

func (h *Handler) resolverSolicitacao(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}
	resolvedorID, ok := usuarioDoContexto(w, r)
	if !ok {
		return
	}
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido")
		return
	}

	var payload struct {
		Status   string `json:"status"`
		Resposta string `json:"resposta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido")
		return
	}

	sol, err := h.service.ResolverSolicitacao(r.Context(), id, empresaID, resolvedorID, payload.Status, payload.Resposta)
	if err != nil {
		switch {
		case errors.Is(err, ErrStatusInvalid):
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "solicitação não encontrada")
		case errors.Is(err, ErrSolicitacaoResolvida):
			writeError(w, http.StatusConflict, "CONFLICT", err.Error())
		default:
			writeError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"solicitacao": sol})
}

func (h *Handler) analisarIrregularidades(w http.ResponseWriter, r *http.Request) {
	empresaID, ok := empresaDoContexto(w, r)
	if !ok {
		return
	}

	funcionarioID, err := uuid.Parse(r.URL.Query().Get("funcionario_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "funcionario_id inválido")
		return
	}
	dia, err := time.Parse("2006-01-02", r.URL.Query().Get("data"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "data inválida, use AAAA-MM-DD")
		return
	}

	irregularidades, err := h.service.AnalisarIrregularidades(r.Context(), funcionarioID, empresaID, dia)
	if err != nil {
		if errors.Is(err, funcionario.ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível analisar registros")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"irregularidades": irregularidades})
}

func filtroDaQuery(r *http.Request) Filter {
	var filter Filter
	filter.Status = r.URL.Query().Get("status")
	if v, err := time.Parse("2006-01-02", r.URL.Query().Get("data_inicio")); err == nil {
		filter.DataInicio = &v
	}
	if v, err := time.Parse("2006-01-02", r.URL.Query().Get("data_fim")); err == nil {
		fim := v.Add(24 * time.Hour)
		filter.DataFim = &fim
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		filter.Offset = v
	}
	return filter
}

func parseFloatForm(r *http.Request, campo string) *float64 {
	raw := r.FormValue(campo)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func usuarioDoContexto(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(middleware.GetSubject(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "sessão inválida")
		return uuid.Nil, false
	}
	return id, true
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
