package registro

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/pontodigital/plataforma/internal/http/middleware"
)

type stubService struct {
	registro        *Registro
	solicitacao     *SolicitacaoAlteracao
	statusErr       error
	solicitarErr    error
	irregularidades []Irregularidade
}

func (s *stubService) Cadastrar(ctx context.Context, input CreateInput) (*Registro, error) {
	return s.registro, nil
}

func (s *stubService) Obter(ctx context.Context, id, empresaID uuid.UUID) (*Registro, error) {
	if s.registro == nil || s.registro.ID != id {
		return nil, ErrNotFound
	}
	return s.registro, nil
}

func (s *stubService) Listar(ctx context.Context, filter Filter) ([]Registro, error) {
	if s.registro == nil {
		return nil, nil
	}
	return []Registro{*s.registro}, nil
}

func (s *stubService) ListarDoFuncionario(ctx context.Context, usuarioID uuid.UUID, filter Filter) ([]Registro, error) {
	return nil, nil
}

func (s *stubService) AtualizarStatus(ctx context.Context, id, empresaID, aprovadorID uuid.UUID, status string, justificativa *string) (*Registro, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	s.registro.Status = status
	return s.registro, nil
}

func (s *stubService) SolicitarAlteracao(ctx context.Context, usuarioID, registroID uuid.UUID, tipoCorrecao, motivo string) (*SolicitacaoAlteracao, error) {
	if s.solicitarErr != nil {
		return nil, s.solicitarErr
	}
	return s.solicitacao, nil
}

func (s *stubService) ListarSolicitacoes(ctx context.Context, empresaID uuid.UUID, status string) ([]SolicitacaoAlteracao, error) {
	return nil, nil
}

func (s *stubService) ListarMinhasSolicitacoes(ctx context.Context, usuarioID uuid.UUID) ([]SolicitacaoAlteracao, error) {
	return nil, nil
}

func (s *stubService) ResolverSolicitacao(ctx context.Context, id, empresaID, resolvedorID uuid.UUID, status, resposta string) (*SolicitacaoAlteracao, error) {
	return s.solicitacao, nil
}

func (s *stubService) AnalisarIrregularidades(ctx context.Context, funcionarioID, empresaID uuid.UUID, dia time.Time) ([]Irregularidade, error) {
	return s.irregularidades, nil
}

func withAdmin(req *http.Request, empresaID uuid.UUID) *http.Request {
	ctx := req.Context()
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeySubject, uuid.New().String())
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeyRoles, []string{"ADMIN"})
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeyEmpresa, empresaID.String())
	return req.WithContext(ctx)
}

func requestBody(body any) *bytes.Buffer {
	if body == nil {
		return bytes.NewBuffer(nil)
	}
	b, _ := json.Marshal(body)
	return bytes.NewBuffer(b)
}

func TestAdminHandlers(t *testing.T) {
	empresaID := uuid.New()
	reg := &Registro{
		ID:            uuid.New(),
		FuncionarioID: uuid.New(),
		Tipo:          TipoEntrada,
		Timestamp:     time.Now(),
		Status:        StatusPendente,
	}
	svc := &stubService{registro: reg, solicitacao: &SolicitacaoAlteracao{ID: uuid.New()}}
	handler := NewHandler(svc)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"listar", http.MethodGet, "/", nil, http.StatusOK},
		{"obter", http.MethodGet, "/" + reg.ID.String(), nil, http.StatusOK},
		{"obter-inexistente", http.MethodGet, "/" + uuid.NewString(), nil, http.StatusNotFound},
		{"aprovar", http.MethodPost, "/" + reg.ID.String() + "/status", map[string]any{"status": StatusAprovado}, http.StatusOK},
		{"solicitacoes", http.MethodGet, "/solicitacoes", nil, http.StatusOK},
		{"resolver", http.MethodPost, "/solicitacoes/" + uuid.NewString() + "/resolver", map[string]any{"status": StatusAprovado, "resposta": "ok"}, http.StatusOK},
		{"irregularidades", http.MethodGet, "/irregularidades?funcionario_id=" + reg.FuncionarioID.String() + "&data=2026-03-10", nil, http.StatusOK},
		{"irregularidades-sem-data", http.MethodGet, "/irregularidades?funcionario_id=" + reg.FuncionarioID.String(), nil, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, requestBody(tc.body))
			req = withAdmin(req, empresaID)
			rec := httptest.NewRecorder()

			r := chi.NewRouter()
			MountAdmin(r, handler)
			r.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAtualizarStatusConflito(t *testing.T) {
	empresaID := uuid.New()
	reg := &Registro{ID: uuid.New(), Status: StatusAprovado}
	svc := &stubService{registro: reg, statusErr: ErrJaResolvido}
	handler := NewHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/"+reg.ID.String()+"/status", requestBody(map[string]any{"status": StatusRejeitado}))
	req = withAdmin(req, empresaID)
	rec := httptest.NewRecorder()

	r := chi.NewRouter()
	MountAdmin(r, handler)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestAdminSemEmpresaNoToken(t *testing.T) {
	svc := &stubService{}
	handler := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), httpmiddleware.ContextKeySubject, uuid.New().String())
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeyRoles, []string{"ADMIN"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	r := chi.NewRouter()
	MountAdmin(r, handler)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestITSupportInformaEmpresaViaQuery(t *testing.T) {
	empresaID := uuid.New()
	svc := &stubService{}
	handler := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/?empresa_id="+empresaID.String(), nil)
	ctx := context.WithValue(req.Context(), httpmiddleware.ContextKeySubject, uuid.New().String())
	ctx = context.WithValue(ctx, httpmiddleware.ContextKeyRoles, []string{"IT_SUPPORT"})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	r := chi.NewRouter()
	MountAdmin(r, handler)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSolicitarAlteracaoStatusCodes(t *testing.T) {
	usuarioID := uuid.New()
	registroID := uuid.New()

	casos := []struct {
		nome   string
		err    error
		status int
	}{
		{"nao-aprovado", ErrRegistroNaoAprovado, http.StatusUnprocessableEntity},
		{"pendente-duplicada", ErrSolicitacaoPendente, http.StatusConflict},
		{"inexistente", ErrNotFound, http.StatusNotFound},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			svc := &stubService{solicitarErr: caso.err}
			handler := NewHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/"+registroID.String()+"/solicitacoes",
				requestBody(map[string]any{"tipo_correcao": "horario", "motivo": "ajuste"}))
			ctx := context.WithValue(req.Context(), httpmiddleware.ContextKeySubject, usuarioID.String())
			ctx = context.WithValue(ctx, httpmiddleware.ContextKeyRoles, []string{"FUNCIONARIO"})
			req = req.WithContext(ctx)
			rec := httptest.NewRecorder()

			r := chi.NewRouter()
			MountFuncionario(r, handler)
			r.ServeHTTP(rec, req)

			if rec.Code != caso.status {
				t.Fatalf("expected %d got %d", caso.status, rec.Code)
			}
		})
	}
}
