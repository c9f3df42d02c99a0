package funcionario

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/auth"
	"github.com/pontodigital/plataforma/internal/util"
)

// RepositoryProvider abstrai o acesso a dados para facilitar testes.
type RepositoryProvider interface {
	Cadastrar(ctx context.Context, input CreateInput, senhaHash string) (*Funcionario, error)
	Obter(ctx context.Context, id, empresaID uuid.UUID) (*Funcionario, error)
	ObterPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*Funcionario, error)
	Listar(ctx context.Context, filter Filter) ([]Funcionario, error)
	Atualizar(ctx context.Context, input UpdateInput) (*Funcionario, error)
	SetAtivo(ctx context.Context, id, empresaID uuid.UUID, ativo bool) error
	Excluir(ctx context.Context, id, empresaID uuid.UUID) error
	DefinirJornada(ctx context.Context, id, empresaID uuid.UUID, jornadas []JornadaInput) error
	ListarJornada(ctx context.Context, id uuid.UUID) ([]Jornada, error)
}

// Service reúne regras de negócio de admissão e desligamento.
type Service struct {
	repo RepositoryProvider
}

// NewService cria uma nova instância do serviço.
func NewService(repo RepositoryProvider) *Service {
	return &Service{repo: repo}
}

var horarioRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Cadastrar valida e cria funcionário completo: usuário + contrato + jornada.
// Sem jornada informada aplica o padrão de segunda a sexta.
func (s *Service) Cadastrar(ctx context.Context, input CreateInput) (*Funcionario, error) {
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
	if err := util.ValidateCPF(input.CPF); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.Cargo, "cargo"); err != nil {
		return nil, err
	}
	if input.DataAdmissao.IsZero() {
		return nil, errors.New("data de admissão obrigatória")
	}
	if input.SalarioBase < 0 {
		return nil, errors.New("salário base não pode ser negativo")
	}

	input.CPF = util.OnlyDigits(input.CPF)

	if len(input.Jornadas) == 0 {
		input.Jornadas = JornadaPadrao()
	}
	if err := validarJornadas(input.Jornadas); err != nil {
		return nil, err
	}

	senhaHash, err := auth.Hash(input.Senha)
	if err != nil {
		return nil, err
	}

	return s.repo.Cadastrar(ctx, input, senhaHash)
}

// Obter recupera funcionário dentro do escopo da empresa.
func (s *Service) Obter(ctx context.Context, id, empresaID uuid.UUID) (*Funcionario, error) {
	return s.repo.Obter(ctx, id, empresaID)
}

// ObterPorUsuario resolve o funcionário do usuário autenticado.
func (s *Service) ObterPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*Funcionario, error) {
	return s.repo.ObterPorUsuario(ctx, usuarioID)
}

// Listar lista funcionários da empresa.
func (s *Service) Listar(ctx context.Context, filter Filter) ([]Funcionario, error) {
	return s.repo.Listar(ctx, filter)
}

// Atualizar altera dados contratuais.
func (s *Service) Atualizar(ctx context.Context, input UpdateInput) (*Funcionario, error) {
	if input.SalarioBase != nil && *input.SalarioBase < 0 {
		return nil, errors.New("salário base não pode ser negativo")
	}
	return s.repo.Atualizar(ctx, input)
}

// Desativar marca o usuário vinculado como inativo (primeiro passo do desligamento).
func (s *Service) Desativar(ctx context.Context, id, empresaID uuid.UUID) error {
	return s.repo.SetAtivo(ctx, id, empresaID, false)
}

// Reativar devolve acesso ao funcionário.
func (s *Service) Reativar(ctx context.Context, id, empresaID uuid.UUID) error {
	return s.repo.SetAtivo(ctx, id, empresaID, true)
}

// Excluir remove definitivamente o funcionário e dependentes.
// Falha com ErrAindaAtivo quando o usuário vinculado não foi desativado antes.
func (s *Service) Excluir(ctx context.Context, id, empresaID uuid.UUID) error {
	return s.repo.Excluir(ctx, id, empresaID)
}

// DefinirJornada substitui a jornada semanal completa.
func (s *Service) DefinirJornada(ctx context.Context, id, empresaID uuid.UUID, jornadas []JornadaInput) error {
	if len(jornadas) == 0 {
		return ErrJornadaInvalid
	}
	if err := validarJornadas(jornadas); err != nil {
		return err
	}
	return s.repo.DefinirJornada(ctx, id, empresaID, jornadas)
}

// ListarJornada devolve a jornada semanal do funcionário.
func (s *Service) ListarJornada(ctx context.Context, id uuid.UUID) ([]Jornada, error) {
	return s.repo.ListarJornada(ctx, id)
}

func validarJornadas(jornadas []JornadaInput) error {
	dias := make(map[int]struct{}, len(jornadas))
	for _, j := range jornadas {
		if j.DiaSemana < 1 || j.DiaSemana > 7 {
			return ErrJornadaInvalid
		}
		if _, ok := dias[j.DiaSemana]; ok {
			return ErrJornadaInvalid
		}
		dias[j.DiaSemana] = struct{}{}

		for _, horario := range []string{j.Entrada, j.Saida, j.InicioIntervalo, j.FimIntervalo} {
			if !horarioRe.MatchString(horario) {
				return ErrJornadaInvalid
			}
		}
		if j.Entrada >= j.Saida {
			return ErrJornadaInvalid
		}
		if j.InicioIntervalo >= j.FimIntervalo {
			return ErrJornadaInvalid
		}
	}
	return nil
}
