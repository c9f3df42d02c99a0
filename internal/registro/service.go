package registro

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pontodigital/plataforma/internal/empresa"
	"github.com/pontodigital/plataforma/internal/funcionario"
	"github.com/pontodigital/plataforma/internal/notify"
	"github.com/pontodigital/plataforma/internal/storage"
	"github.com/pontodigital/plataforma/internal/util"
)

// RepositoryProvider abstrai o acesso a dados para facilitar testes.
type RepositoryProvider interface {
	Inserir(ctx context.Context, reg *Registro) error
	Obter(ctx context.Context, id, empresaID uuid.UUID) (*Registro, error)
	Listar(ctx context.Context, filter Filter) ([]Registro, error)
	ListarDoDia(ctx context.Context, funcionarioID uuid.UUID, dia time.Time) ([]Registro, error)
	AtualizarStatus(ctx context.Context, id, empresaID, aprovadorID uuid.UUID, status string, justificativa *string) (*Registro, error)
	InserirSolicitacao(ctx context.Context, s *SolicitacaoAlteracao) error
	ExisteSolicitacaoPendente(ctx context.Context, registroID uuid.UUID) (bool, error)
	ListarSolicitacoes(ctx context.Context, empresaID uuid.UUID, status string) ([]SolicitacaoAlteracao, error)
	ListarSolicitacoesDoFuncionario(ctx context.Context, funcionarioID uuid.UUID) ([]SolicitacaoAlteracao, error)
	ResolverSolicitacao(ctx context.Context, id, empresaID, resolvedorID uuid.UUID, status, resposta string) (*SolicitacaoAlteracao, error)
}

// FuncionarioProvider resolve funcionários e suas jornadas.
type FuncionarioProvider interface {
	Obter(ctx context.Context, id, empresaID uuid.UUID) (*funcionario.Funcionario, error)
	ObterPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*funcionario.Funcionario, error)
	ListarJornada(ctx context.Context, id uuid.UUID) ([]funcionario.Jornada, error)
}

// ConfigProvider resolve a configuração de ponto da empresa.
type ConfigProvider interface {
	ObterConfiguracao(ctx context.Context, empresaID uuid.UUID) (*empresa.Configuracao, error)
}

// Service concentra as regras do fluxo de marcação e aprovação de ponto.
type Service struct {
	repo         RepositoryProvider
	funcionarios FuncionarioProvider
	empresas     ConfigProvider
	uploader     storage.Uploader
	notifier     notify.Notifier
}

// NewService cria instância do serviço.
func NewService(repo RepositoryProvider, funcionarios FuncionarioProvider, empresas ConfigProvider, uploader storage.Uploader, notifier notify.Notifier) *Service {
	return &Service{
		repo:         repo,
		funcionarios: funcionarios,
		empresas:     empresas,
		uploader:     uploader,
		notifier:     notifier,
	}
}

// Cadastrar registra uma marcação do funcionário autenticado aplicando a
// configuração da empresa: foto e localização podem ser obrigatórias.
func (s *Service) Cadastrar(ctx context.Context, input CreateInput) (*Registro, error) {
	f, err := s.funcionarios.ObterPorUsuario(ctx, input.UsuarioID)
	if err != nil {
		return nil, err
	}
	if !f.Ativo {
		return nil, ErrFuncionarioInativo
	}
	if !tipoValido(input.Tipo) {
		return nil, ErrTipoInvalid
	}

	cfg, err := s.empresas.ObterConfiguracao(ctx, f.EmpresaID)
	if err != nil {
		return nil, fmt.Errorf("carregar configuração da empresa: %w", err)
	}
	if cfg.RequerFoto && len(input.Foto) == 0 {
		return nil, ErrFotoObrigatoria
	}
	if cfg.RequerLocalizacao && (input.Latitude == nil || input.Longitude == nil) {
		return nil, ErrLocalizacaoObrigatoria
	}

	agora := util.Now()

	var fotoURL *string
	if len(input.Foto) > 0 {
		contentType := input.FotoTipo
		if contentType == "" {
			contentType = "image/jpeg"
		}
		res, err := s.uploader.Upload(ctx, storage.UploadInput{
			Key:         fmt.Sprintf("pontos/%s/%s", f.ID, util.NewID()),
			Body:        input.Foto,
			ContentType: contentType,
		})
		if err != nil {
			return nil, fmt.Errorf("upload da foto: %w", err)
		}
		fotoURL = &res.URL
	}

	reg := &Registro{
		FuncionarioID: f.ID,
		Tipo:          input.Tipo,
		Timestamp:     agora,
		FotoURL:       fotoURL,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		Precisao:      input.Precisao,
		Dispositivo:   input.Dispositivo,
		Hash:          hashRegistro(f.ID, input.Tipo, agora, input.Latitude, input.Longitude),
		Status:        StatusPendente,
	}

	if err := s.repo.Inserir(ctx, reg); err != nil {
		return nil, fmt.Errorf("inserir registro: %w", err)
	}
	return reg, nil
}

// Obter carrega um registro no escopo da empresa.
func (s *Service) Obter(ctx context.Context, id, empresaID uuid.UUID) (*Registro, error) {
	return s.repo.Obter(ctx, id, empresaID)
}

// Listar lista registros da empresa conforme filtro.
func (s *Service) Listar(ctx context.Context, filter Filter) ([]Registro, error) {
	return s.repo.Listar(ctx, filter)
}

// ListarDoFuncionario lista o histórico do funcionário autenticado.
func (s *Service) ListarDoFuncionario(ctx context.Context, usuarioID uuid.UUID, filter Filter) ([]Registro, error) {
	f, err := s.funcionarios.ObterPorUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	filter.EmpresaID = f.EmpresaID
	filter.FuncionarioID = f.ID
	return s.repo.Listar(ctx, filter)
}

// AtualizarStatus decide um registro pendente. Decisão repetida é no-op:
// nenhum status sobrescrito, nenhuma notificação duplicada.
func (s *Service) AtualizarStatus(ctx context.Context, id, empresaID, aprovadorID uuid.UUID, status string, justificativa *string) (*Registro, error) {
	if status != StatusAprovado && status != StatusRejeitado {
		return nil, ErrStatusInvalid
	}

	reg, err := s.repo.AtualizarStatus(ctx, id, empresaID, aprovadorID, status, justificativa)
	if err != nil {
		return nil, err
	}

	s.notificar(ctx, reg.FuncionarioID, empresaID,
		"Registro de ponto "+status,
		fmt.Sprintf("Seu registro de %s em %s foi %s.", reg.Tipo, reg.Timestamp.Format("02/01/2006 15:04"), statusPorExtenso(status)))

	return reg, nil
}

// SolicitarAlteracao abre pedido de correção sobre registro já aprovado.
func (s *Service) SolicitarAlteracao(ctx context.Context, usuarioID, registroID uuid.UUID, tipoCorrecao, motivo string) (*SolicitacaoAlteracao, error) {
	if err := util.RequireString(motivo, "motivo"); err != nil {
		return nil, err
	}

	f, err := s.funcionarios.ObterPorUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}

	reg, err := s.repo.Obter(ctx, registroID, f.EmpresaID)
	if err != nil {
		return nil, err
	}
	if reg.FuncionarioID != f.ID {
		return nil, ErrNotFound
	}
	if reg.Status != StatusAprovado {
		return nil, ErrRegistroNaoAprovado
	}

	pendente, err := s.repo.ExisteSolicitacaoPendente(ctx, registroID)
	if err != nil {
		return nil, err
	}
	if pendente {
		return nil, ErrSolicitacaoPendente
	}

	sol := &SolicitacaoAlteracao{
		RegistroID:    registroID,
		FuncionarioID: f.ID,
		TipoCorrecao:  tipoCorrecao,
		Motivo:        motivo,
		Status:        StatusPendente,
	}
	if err := s.repo.InserirSolicitacao(ctx, sol); err != nil {
		return nil, fmt.Errorf("inserir solicitação: %w", err)
	}
	return sol, nil
}

// ListarSolicitacoes lista pedidos de correção da empresa.
func (s *Service) ListarSolicitacoes(ctx context.Context, empresaID uuid.UUID, status string) ([]SolicitacaoAlteracao, error) {
	return s.repo.ListarSolicitacoes(ctx, empresaID, status)
}

// ListarMinhasSolicitacoes lista os pedidos do funcionário autenticado.
func (s *Service) ListarMinhasSolicitacoes(ctx context.Context, usuarioID uuid.UUID) ([]SolicitacaoAlteracao, error) {
	f, err := s.funcionarios.ObterPorUsuario(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListarSolicitacoesDoFuncionario(ctx, f.ID)
}

// ResolverSolicitacao fecha pedido de correção e avisa o funcionário com a
// resposta do administrador.
func (s *Service) ResolverSolicitacao(ctx context.Context, id, empresaID, resolvedorID uuid.UUID, status, resposta string) (*SolicitacaoAlteracao, error) {
	if status != StatusAprovado && status != StatusRejeitado {
		return nil, ErrStatusInvalid
	}
	if err := util.RequireString(resposta, "resposta"); err != nil {
		return nil, err
	}

	sol, err := s.repo.ResolverSolicitacao(ctx, id, empresaID, resolvedorID, status, resposta)
	if err != nil {
		return nil, err
	}

	s.notificar(ctx, sol.FuncionarioID, empresaID,
		"Solicitação de alteração "+statusPorExtenso(status),
		resposta)

	return sol, nil
}

// AnalisarIrregularidades revisa as marcações de um dia e devolve alertas.
// Somente leitura: o estado dos registros não muda.
func (s *Service) AnalisarIrregularidades(ctx context.Context, funcionarioID, empresaID uuid.UUID, dia time.Time) ([]Irregularidade, error) {
	f, err := s.funcionarios.Obter(ctx, funcionarioID, empresaID)
	if err != nil {
		return nil, err
	}

	registros, err := s.repo.ListarDoDia(ctx, f.ID, dia)
	if err != nil {
		return nil, err
	}

	cfg, err := s.empresas.ObterConfiguracao(ctx, empresaID)
	if err != nil {
		cfg = nil
	}

	jornadas, err := s.funcionarios.ListarJornada(ctx, f.ID)
	if err != nil {
		jornadas = nil
	}

	return analisar(registros, cfg, jornadaDoDia(jornadas, dia)), nil
}

func (s *Service) notificar(ctx context.Context, funcionarioID, empresaID uuid.UUID, assunto, corpo string) {
	if s.notifier == nil {
		return
	}
	f, err := s.funcionarios.Obter(ctx, funcionarioID, empresaID)
	if err != nil {
		log.Warn().Err(err).Str("funcionario_id", funcionarioID.String()).Msg("notificação ignorada: funcionário não resolvido")
		return
	}
	if err := s.notifier.Notify(ctx, notify.Message{
		Destinatario: f.Email,
		Assunto:      assunto,
		Corpo:        corpo,
	}); err != nil {
		log.Warn().Err(err).Str("destinatario", f.Email).Msg("falha ao enviar notificação")
	}
}

func hashRegistro(funcionarioID uuid.UUID, tipo string, ts time.Time, lat, lon *float64) string {
	canonico := funcionarioID.String() + "|" + tipo + "|" + ts.UTC().Format(time.RFC3339Nano)
	if lat != nil && lon != nil {
		canonico += "|" + strconv.FormatFloat(*lat, 'f', -1, 64) + "|" + strconv.FormatFloat(*lon, 'f', -1, 64)
	}
	sum := sha256.Sum256([]byte(canonico))
	return hex.EncodeToString(sum[:])
}

func statusPorExtenso(status string) string {
	if status == StatusAprovado {
		return "aprovado"
	}
	return "rejeitado"
}
