package empresa

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/auth"
	"github.com/pontodigital/plataforma/internal/util"
)

// RepositoryProvider abstrai o acesso a dados para facilitar testes.
type RepositoryProvider interface {
	Criar(ctx context.Context, input CreateInput) (*Empresa, error)
	Obter(ctx context.Context, id uuid.UUID) (*Empresa, error)
	Listar(ctx context.Context, filter Filter) ([]Empresa, error)
	Atualizar(ctx context.Context, input UpdateInput) (*Empresa, error)
	AlternarStatus(ctx context.Context, id uuid.UUID) (*Empresa, error)
	EstadoExiste(ctx context.Context, estadoID int) (bool, error)
	CriarAdmin(ctx context.Context, input AdminInput, senhaHash string) (*Admin, error)
	ObterConfiguracao(ctx context.Context, empresaID uuid.UUID) (*Configuracao, error)
	SalvarConfiguracao(ctx context.Context, c Configuracao) error
	Remover(ctx context.Context, id uuid.UUID) error
}

// Service reúne regras de negócio do ciclo de vida de empresas.
type Service struct {
	repo RepositoryProvider
}

// NewService cria uma nova instância do serviço.
func NewService(repo RepositoryProvider) *Service {
	return &Service{repo: repo}
}

// Cadastrar valida e cria empresa com status Ativa.
func (s *Service) Cadastrar(ctx context.Context, input CreateInput) (*Empresa, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateCNPJ(input.CNPJ); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}

	exists, err := s.repo.EstadoExiste(ctx, input.EstadoID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrEstadoInvalid
	}

	input.CNPJ = util.OnlyDigits(input.CNPJ)
	input.Telefone = util.OnlyDigits(input.Telefone)

	return s.repo.Criar(ctx, input)
}

// Obter recupera empresa pelo id.
func (s *Service) Obter(ctx context.Context, id uuid.UUID) (*Empresa, error) {
	return s.repo.Obter(ctx, id)
}

// Listar lista empresas dentro do filtro informado.
func (s *Service) Listar(ctx context.Context, filter Filter) ([]Empresa, error) {
	return s.repo.Listar(ctx, filter)
}

// Atualizar altera dados cadastrais.
func (s *Service) Atualizar(ctx context.Context, input UpdateInput) (*Empresa, error) {
	if input.Email != nil {
		if err := util.ValidateEmail(*input.Email); err != nil {
			return nil, err
		}
	}
	if input.EstadoID != nil {
		exists, err := s.repo.EstadoExiste(ctx, *input.EstadoID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrEstadoInvalid
		}
	}
	return s.repo.Atualizar(ctx, input)
}

// AlternarStatus inverte Ativa/Inativa. Duas chamadas devolvem o estado original.
func (s *Service) AlternarStatus(ctx context.Context, id uuid.UUID) (*Empresa, error) {
	return s.repo.AlternarStatus(ctx, id)
}

// CadastrarAdmin valida e cria administrador da empresa. A senha é
// armazenada apenas como hash argon2id.
func (s *Service) CadastrarAdmin(ctx context.Context, input AdminInput) (*Admin, error) {
	if input.EmpresaID == uuid.Nil {
		return nil, errors.New("empresa obrigatória")
	}
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(input.Senha); err != nil {
		return nil, err
	}

	senhaHash, err := auth.Hash(input.Senha)
	if err != nil {
		return nil, err
	}

	return s.repo.CriarAdmin(ctx, input, senhaHash)
}

// ObterConfiguracao lê geofence e exigências de ponto.
func (s *Service) ObterConfiguracao(ctx context.Context, empresaID uuid.UUID) (*Configuracao, error) {
	return s.repo.ObterConfiguracao(ctx, empresaID)
}

// SalvarConfiguracao valida e grava geofence e exigências de ponto.
func (s *Service) SalvarConfiguracao(ctx context.Context, c Configuracao) error {
	if c.EmpresaID == uuid.Nil {
		return errors.New("empresa obrigatória")
	}
	// Geofence exige centro e raio completos ou nenhum dos três.
	informados := 0
	for _, v := range []*float64{c.Latitude, c.Longitude, c.RaioMetros} {
		if v != nil {
			informados++
		}
	}
	if informados != 0 && informados != 3 {
		return errors.New("geofence exige latitude, longitude e raio")
	}
	if c.RaioMetros != nil && *c.RaioMetros <= 0 {
		return errors.New("raio deve ser maior que zero")
	}
	return s.repo.SalvarConfiguracao(ctx, c)
}

// Remover apaga a empresa e todos os dependentes de forma atômica.
func (s *Service) Remover(ctx context.Context, id uuid.UUID) error {
	return s.repo.Remover(ctx, id)
}
