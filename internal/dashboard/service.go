package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RepositoryProvider abstrai as consultas de agregação para facilitar testes.
type RepositoryProvider interface {
	ContarFuncionariosPorStatus(ctx context.Context, empresaID uuid.UUID) (ativos, inativos int, err error)
	ContarFuncionariosPorContrato(ctx context.Context, empresaID uuid.UUID) (map[string]int, error)
	ContarRegistrosPorStatus(ctx context.Context, empresaID uuid.UUID) (map[string]int, error)
	UltimosPendentes(ctx context.Context, empresaID uuid.UUID, limite int) ([]RegistroResumo, error)
	RegistrosPorMes(ctx context.Context, empresaID uuid.UUID) ([]TotalMensal, error)
}

// Service monta o resumo do painel. Falha em um agregado não derruba o
// restante: o campo correspondente fica zerado e o erro vai para o log.
type Service struct {
	repo RepositoryProvider
}

// NewService cria instância do serviço.
func NewService(repo RepositoryProvider) *Service {
	return &Service{repo: repo}
}

// Resumir monta o painel da empresa. Nunca retorna erro: cada agregado
// degrada de forma independente.
func (s *Service) Resumir(ctx context.Context, empresaID uuid.UUID) *Resumo {
	resumo := &Resumo{
		FuncionariosPorContrato: map[string]int{},
		RegistrosPorStatus:      map[string]int{},
		UltimosPendentes:        []RegistroResumo{},
		RegistrosPorMes:         []TotalMensal{},
	}

	ativos, inativos, err := s.repo.ContarFuncionariosPorStatus(ctx, empresaID)
	if err != nil {
		log.Warn().Err(err).Str("empresa_id", empresaID.String()).Msg("dashboard: agregado de funcionários por status indisponível")
	} else {
		resumo.FuncionariosAtivos = ativos
		resumo.FuncionariosInativos = inativos
	}

	if porContrato, err := s.repo.ContarFuncionariosPorContrato(ctx, empresaID); err != nil {
		log.Warn().Err(err).Str("empresa_id", empresaID.String()).Msg("dashboard: agregado de funcionários por contrato indisponível")
	} else if porContrato != nil {
		resumo.FuncionariosPorContrato = porContrato
	}

	if porStatus, err := s.repo.ContarRegistrosPorStatus(ctx, empresaID); err != nil {
		log.Warn().Err(err).Str("empresa_id", empresaID.String()).Msg("dashboard: agregado de registros por status indisponível")
	} else if porStatus != nil {
		resumo.RegistrosPorStatus = porStatus
	}

	if pendentes, err := s.repo.UltimosPendentes(ctx, empresaID, 10); err != nil {
		log.Warn().Err(err).Str("empresa_id", empresaID.String()).Msg("dashboard: últimos pendentes indisponíveis")
	} else if pendentes != nil {
		resumo.UltimosPendentes = pendentes
	}

	if porMes, err := s.repo.RegistrosPorMes(ctx, empresaID); err != nil {
		log.Warn().Err(err).Str("empresa_id", empresaID.String()).Msg("dashboard: agregado mensal indisponível")
	} else if porMes != nil {
		resumo.RegistrosPorMes = porMes
	}

	return resumo
}
