package registro

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/empresa"
	"github.com/pontodigital/plataforma/internal/funcionario"
	"github.com/pontodigital/plataforma/internal/notify"
	"github.com/pontodigital/plataforma/internal/storage"
)

type stubRepo struct {
	inseridos     []Registro
	registro      *Registro
	solicitacoes  []SolicitacaoAlteracao
	pendente      bool
	statusErr     error
	statusChamado int
}

func (s *stubRepo) Inserir(ctx context.Context, reg *Registro) error {
	reg.ID = uuid.New()
	s.inseridos = append(s.inseridos, *reg)
	return nil
}

func (s *stubRepo) Obter(ctx context.Context, id, empresaID uuid.UUID) (*Registro, error) {
	if s.registro == nil || s.registro.ID != id {
		return nil, ErrNotFound
	}
	copia := *s.registro
	return &copia, nil
}

func (s *stubRepo) Listar(ctx context.Context, filter Filter) ([]Registro, error) {
	return s.inseridos, nil
}

func (s *stubRepo) ListarDoDia(ctx context.Context, funcionarioID uuid.UUID, dia time.Time) ([]Registro, error) {
	return s.inseridos, nil
}

func (s *stubRepo) AtualizarStatus(ctx context.Context, id, empresaID, aprovadorID uuid.UUID, status string, justificativa *string) (*Registro, error) {
	s.statusChamado++
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	if s.registro == nil || s.registro.ID != id {
		return nil, ErrNotFound
	}
	s.registro.Status = status
	s.registro.AprovadorID = &aprovadorID
	s.registro.Justificativa = justificativa
	copia := *s.registro
	return &copia, nil
}

func (s *stubRepo) InserirSolicitacao(ctx context.Context, sol *SolicitacaoAlteracao) error {
	sol.ID = uuid.New()
	s.solicitacoes = append(s.solicitacoes, *sol)
	return nil
}

func (s *stubRepo) ExisteSolicitacaoPendente(ctx context.Context, registroID uuid.UUID) (bool, error) {
	return s.pendente, nil
}

func (s *stubRepo) ListarSolicitacoes(ctx context.Context, empresaID uuid.UUID, status string) ([]SolicitacaoAlteracao, error) {
	return s.solicitacoes, nil
}

func (s *stubRepo) ListarSolicitacoesDoFuncionario(ctx context.Context, funcionarioID uuid.UUID) ([]SolicitacaoAlteracao, error) {
	return s.solicitacoes, nil
}

func (s *stubRepo) ResolverSolicitacao(ctx context.Context, id, empresaID, resolvedorID uuid.UUID, status, resposta string) (*SolicitacaoAlteracao, error) {
	for i := range s.solicitacoes {
		if s.solicitacoes[i].ID == id {
			s.solicitacoes[i].Status = status
			s.solicitacoes[i].Resposta = &resposta
			copia := s.solicitacoes[i]
			return &copia, nil
		}
	}
	return nil, ErrNotFound
}

type stubFuncionarios struct {
	funcionario *funcionario.Funcionario
	jornadas    []funcionario.Jornada
}

func (s *stubFuncionarios) Obter(ctx context.Context, id, empresaID uuid.UUID) (*funcionario.Funcionario, error) {
	if s.funcionario == nil || s.funcionario.ID != id {
		return nil, funcionario.ErrNotFound
	}
	return s.funcionario, nil
}

func (s *stubFuncionarios) ObterPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*funcionario.Funcionario, error) {
	if s.funcionario == nil || s.funcionario.UsuarioID != usuarioID {
		return nil, funcionario.ErrNotFound
	}
	return s.funcionario, nil
}

func (s *stubFuncionarios) ListarJornada(ctx context.Context, id uuid.UUID) ([]funcionario.Jornada, error) {
	return s.jornadas, nil
}

type stubConfig struct {
	cfg *empresa.Configuracao
}

func (s *stubConfig) ObterConfiguracao(ctx context.Context, empresaID uuid.UUID) (*empresa.Configuracao, error) {
	if s.cfg == nil {
		return nil, empresa.ErrNotFound
	}
	return s.cfg, nil
}

type stubUploader struct {
	chamadas int
}

func (s *stubUploader) Upload(ctx context.Context, input storage.UploadInput) (*storage.UploadResult, error) {
	s.chamadas++
	return &storage.UploadResult{URL: "https://cdn.example.com/" + input.Key}, nil
}

type stubNotifier struct {
	mensagens []notify.Message
}

func (s *stubNotifier) Notify(ctx context.Context, msg notify.Message) error {
	s.mensagens = append(s.mensagens, msg)
	return nil
}

func novoFuncionarioAtivo() *funcionario.Funcionario {
	return &funcionario.Funcionario{
		ID:        uuid.New(),
		UsuarioID: uuid.New(),
		EmpresaID: uuid.New(),
		Nome:      "Maria Souza",
		Email:     "maria@example.com",
		Ativo:     true,
	}
}

func TestCadastrarExigeFotoQuandoConfigurado(t *testing.T) {
	f := novoFuncionarioAtivo()
	svc := NewService(
		&stubRepo{},
		&stubFuncionarios{funcionario: f},
		&stubConfig{cfg: &empresa.Configuracao{EmpresaID: f.EmpresaID, RequerFoto: true}},
		&stubUploader{},
		nil,
	)

	_, err := svc.Cadastrar(context.Background(), CreateInput{
		UsuarioID: f.UsuarioID,
		Tipo:      TipoEntrada,
	})
	if !errors.Is(err, ErrFotoObrigatoria) {
		t.Fatalf("expected ErrFotoObrigatoria, got %v", err)
	}
	if err.Error() != "Foto é obrigatória para registro de ponto" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestCadastrarExigeLocalizacaoQuandoConfigurado(t *testing.T) {
	f := novoFuncionarioAtivo()
	svc := NewService(
		&stubRepo{},
		&stubFuncionarios{funcionario: f},
		&stubConfig{cfg: &empresa.Configuracao{EmpresaID: f.EmpresaID, RequerLocalizacao: true}},
		&stubUploader{},
		nil,
	)

	_, err := svc.Cadastrar(context.Background(), CreateInput{
		UsuarioID: f.UsuarioID,
		Tipo:      TipoEntrada,
	})
	if !errors.Is(err, ErrLocalizacaoObrigatoria) {
		t.Fatalf("expected ErrLocalizacaoObrigatoria, got %v", err)
	}
}

func TestCadastrarRejeitaFuncionarioInativo(t *testing.T) {
	f := novoFuncionarioAtivo()
	f.Ativo = false
	svc := NewService(
		&stubRepo{},
		&stubFuncionarios{funcionario: f},
		&stubConfig{cfg: &empresa.Configuracao{EmpresaID: f.EmpresaID}},
		&stubUploader{},
		nil,
	)

	_, err := svc.Cadastrar(context.Background(), CreateInput{UsuarioID: f.UsuarioID, Tipo: TipoEntrada})
	if !errors.Is(err, ErrFuncionarioInativo) {
		t.Fatalf("expected ErrFuncionarioInativo, got %v", err)
	}
}

func TestCadastrarGeraHashEStatusPendente(t *testing.T) {
	f := novoFuncionarioAtivo()
	repo := &stubRepo{}
	uploader := &stubUploader{}
	svc := NewService(
		repo,
		&stubFuncionarios{funcionario: f},
		&stubConfig{cfg: &empresa.Configuracao{EmpresaID: f.EmpresaID, RequerFoto: true}},
		uploader,
		nil,
	)

	reg, err := svc.Cadastrar(context.Background(), CreateInput{
		UsuarioID: f.UsuarioID,
		Tipo:      TipoEntrada,
		Foto:      []byte("jpeg-bytes"),
	})
	if err != nil {
		t.Fatalf("cadastrar: %v", err)
	}
	if reg.Status != StatusPendente {
		t.Fatalf("expected status Pendente, got %s", reg.Status)
	}
	if len(reg.Hash) != 64 {
		t.Fatalf("expected sha256 hex hash, got %q", reg.Hash)
	}
	if reg.FotoURL == nil || *reg.FotoURL == "" {
		t.Fatal("expected foto URL after upload")
	}
	if uploader.chamadas != 1 {
		t.Fatalf("expected 1 upload, got %d", uploader.chamadas)
	}
	if len(repo.inseridos) != 1 {
		t.Fatalf("expected 1 registro persisted, got %d", len(repo.inseridos))
	}
}

func TestCadastrarRejeitaTipoDesconhecido(t *testing.T) {
	f := novoFuncionarioAtivo()
	svc := NewService(
		&stubRepo{},
		&stubFuncionarios{funcionario: f},
		&stubConfig{cfg: &empresa.Configuracao{EmpresaID: f.EmpresaID}},
		&stubUploader{},
		nil,
	)

	_, err := svc.Cadastrar(context.Background(), CreateInput{UsuarioID: f.UsuarioID, Tipo: "Almoco"})
	if !errors.Is(err, ErrTipoInvalid) {
		t.Fatalf("expected ErrTipoInvalid, got %v", err)
	}
}

func TestAtualizarStatusNotificaFuncionario(t *testing.T) {
	f := novoFuncionarioAtivo()
	reg := &Registro{
		ID:            uuid.New(),
		FuncionarioID: f.ID,
		Tipo:          TipoEntrada,
		Timestamp:     time.Now(),
		Status:        StatusPendente,
	}
	repo := &stubRepo{registro: reg}
	notifier := &stubNotifier{}
	svc := NewService(repo, &stubFuncionarios{funcionario: f}, &stubConfig{}, &stubUploader{}, notifier)

	atualizado, err := svc.AtualizarStatus(context.Background(), reg.ID, f.EmpresaID, uuid.New(), StatusAprovado, nil)
	if err != nil {
		t.Fatalf("atualizar status: %v", err)
	}
	if atualizado.Status != StatusAprovado {
		t.Fatalf("expected Aprovado, got %s", atualizado.Status)
	}
	if len(notifier.mensagens) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.mensagens))
	}
	if notifier.mensagens[0].Destinatario != f.Email {
		t.Fatalf("notification sent to %s, expected %s", notifier.mensagens[0].Destinatario, f.Email)
	}
}

func TestAtualizarStatusJaResolvidoNaoNotifica(t *testing.T) {
	f := novoFuncionarioAtivo()
	repo := &stubRepo{statusErr: ErrJaResolvido}
	notifier := &stubNotifier{}
	svc := NewService(repo, &stubFuncionarios{funcionario: f}, &stubConfig{}, &stubUploader{}, notifier)

	_, err := svc.AtualizarStatus(context.Background(), uuid.New(), f.EmpresaID, uuid.New(), StatusRejeitado, nil)
	if !errors.Is(err, ErrJaResolvido) {
		t.Fatalf("expected ErrJaResolvido, got %v", err)
	}
	if len(notifier.mensagens) != 0 {
		t.Fatalf("expected no notification, got %d", len(notifier.mensagens))
	}
}

func TestAtualizarStatusRejeitaStatusInvalido(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubFuncionarios{}, &stubConfig{}, &stubUploader{}, nil)

	_, err := svc.AtualizarStatus(context.Background(), uuid.New(), uuid.New(), uuid.New(), "Pendente", nil)
	if !errors.Is(err, ErrStatusInvalid) {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}
}

func TestSolicitarAlteracaoExigeRegistroAprovado(t *testing.T) {
	f := novoFuncionarioAtivo()
	reg := &Registro{ID: uuid.New(), FuncionarioID: f.ID, Status: StatusPendente}
	svc := NewService(&stubRepo{registro: reg}, &stubFuncionarios{funcionario: f}, &stubConfig{}, &stubUploader{}, nil)

	_, err := svc.SolicitarAlteracao(context.Background(), f.UsuarioID, reg.ID, "horario", "cheguei antes do registrado")
	if !errors.Is(err, ErrRegistroNaoAprovado) {
		t.Fatalf("expected ErrRegistroNaoAprovado, got %v", err)
	}
}

func TestSolicitarAlteracaoRejeitaDuplicada(t *testing.T) {
	f := novoFuncionarioAtivo()
	reg := &Registro{ID: uuid.New(), FuncionarioID: f.ID, Status: StatusAprovado}
	svc := NewService(&stubRepo{registro: reg, pendente: true}, &stubFuncionarios{funcionario: f}, &stubConfig{}, &stubUploader{}, nil)

	_, err := svc.SolicitarAlteracao(context.Background(), f.UsuarioID, reg.ID, "horario", "registro duplicado")
	if !errors.Is(err, ErrSolicitacaoPendente) {
		t.Fatalf("expected ErrSolicitacaoPendente, got %v", err)
	}
}

func TestSolicitarAlteracaoRegistroDeOutroFuncionario(t *testing.T) {
	f := novoFuncionarioAtivo()
	reg := &Registro{ID: uuid.New(), FuncionarioID: uuid.New(), Status: StatusAprovado}
	svc := NewService(&stubRepo{registro: reg}, &stubFuncionarios{funcionario: f}, &stubConfig{}, &stubUploader{}, nil)

	_, err := svc.SolicitarAlteracao(context.Background(), f.UsuarioID, reg.ID, "horario", "registro não é meu")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHashRegistroDeterministico(t *testing.T) {
	id := uuid.New()
	ts := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	lat, lon := -23.5505, -46.6333

	a := hashRegistro(id, TipoEntrada, ts, &lat, &lon)
	b := hashRegistro(id, TipoEntrada, ts, &lat, &lon)
	if a != b {
		t.Fatal("same input must produce the same hash")
	}

	c := hashRegistro(id, TipoSaida, ts, &lat, &lon)
	if a == c {
		t.Fatal("different tipo must change the hash")
	}
}
