package export

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pontodigital/plataforma/internal/funcionario"
	"github.com/pontodigital/plataforma/internal/http/middleware"
	"github.com/pontodigital/plataforma/internal/registro"
)

// Tamanho de página alinhado ao teto dos repositórios: pedir mais que isso
// seria silenciosamente truncado.
const paginaExport = 200

// RegistroProvider lista os registros a exportar.
type RegistroProvider interface {
	Listar(ctx context.Context, filter registro.Filter) ([]registro.Registro, error)
}

// FuncionarioProvider resolve nomes para a planilha.
type FuncionarioProvider interface {
	Listar(ctx context.Context, filter funcionario.Filter) ([]funcionario.Funcionario, error)
}

// Handler gera a planilha de registros da empresa e a envia como anexo.
type Handler struct {
	registros    RegistroProvider
	funcionarios FuncionarioProvider
}

func NewHandler(registros RegistroProvider, funcionarios FuncionarioProvider) *Handler {
	return &Handler{registros: registros, funcionarios: funcionarios}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/registros.xlsx", h.exportarRegistros)
}

func (h *Handler) exportarRegistros(w http.ResponseWriter, r *http.Request) {
	raw := middleware.GetEmpresa(r.Context())
	if raw == "" {
		raw = r.URL.Query().Get("empresa_id")
	}
	empresaID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "empresa não identificada no token")
		return
	}

	filter := registro.Filter{EmpresaID: empresaID, Limit: paginaExport}
	filter.Status = r.URL.Query().Get("status")
	if v, err := time.Parse("2006-01-02", r.URL.Query().Get("data_inicio")); err == nil {
		filter.DataInicio = &v
	}
	if v, err := time.Parse("2006-01-02", r.URL.Query().Get("data_fim")); err == nil {
		fim := v.Add(24 * time.Hour)
		filter.DataFim = &fim
	}

	// As listagens são paginadas no repositório; a exportação percorre todas
	// as páginas até receber uma incompleta.
	var registros []registro.Registro
	for {
		pagina, err := h.registros.Listar(r.Context(), filter)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar registros")
			return
		}
		registros = append(registros, pagina...)
		if len(pagina) < paginaExport {
			break
		}
		filter.Offset += len(pagina)
	}

	nomes := make(map[uuid.UUID]string)
	funcFilter := funcionario.Filter{EmpresaID: empresaID, Limit: paginaExport}
	for {
		pagina, err := h.funcionarios.Listar(r.Context(), funcFilter)
		if err != nil {
			log.Warn().Err(err).Msg("export: nomes de funcionários indisponíveis")
			break
		}
		for _, f := range pagina {
			nomes[f.ID] = f.Nome
		}
		if len(pagina) < paginaExport {
			break
		}
		funcFilter.Offset += len(pagina)
	}

	planilha, err := GerarPlanilhaRegistros(registros, nomes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível gerar planilha")
		return
	}
	defer func() { _ = planilha.Close() }()

	nomeArquivo := fmt.Sprintf("registros-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+nomeArquivo+`"`)

	if _, err := planilha.WriteTo(w); err != nil {
		log.Warn().Err(err).Msg("export: falha ao enviar planilha")
	}
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

// Mount registra rotas de exportação.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
