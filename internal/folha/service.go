package folha

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pontodigital/plataforma/internal/funcionario"
	"github.com/pontodigital/plataforma/internal/registro"
)

// RepositoryProvider abstrai o acesso a dados para facilitar testes.
type RepositoryProvider interface {
	Salvar(ctx context.Context, f *FechamentoFolha) error
	Obter(ctx context.Context, id, empresaID uuid.UUID) (*FechamentoFolha, error)
	Listar(ctx context.Context, empresaID uuid.UUID, competencia string) ([]FechamentoFolha, error)
	Transicionar(ctx context.Context, id, empresaID uuid.UUID, de, para string, aprovadorID *uuid.UUID) (*FechamentoFolha, error)
	ListarPontosAprovados(ctx context.Context, funcionarioID uuid.UUID, inicio, fim time.Time) ([]Ponto, error)
}

// FuncionarioProvider resolve funcionários e jornadas para o cálculo.
type FuncionarioProvider interface {
	Obter(ctx context.Context, id, empresaID uuid.UUID) (*funcionario.Funcionario, error)
	ListarJornada(ctx context.Context, id uuid.UUID) ([]funcionario.Jornada, error)
}

// Service calcula e conduz o ciclo de vida dos fechamentos de folha.
type Service struct {
	repo         RepositoryProvider
	funcionarios FuncionarioProvider
}

// NewService cria instância do serviço.
func NewService(repo RepositoryProvider, funcionarios FuncionarioProvider) *Service {
	return &Service{repo: repo, funcionarios: funcionarios}
}

// Gerar calcula (ou recalcula) o fechamento de uma competência a partir dos
// registros aprovados e da jornada prevista. Fechamentos já fechados ou
// aprovados não são recalculados.
func (s *Service) Gerar(ctx context.Context, funcionarioID, empresaID uuid.UUID, competencia string) (*FechamentoFolha, error) {
	f, err := s.funcionarios.Obter(ctx, funcionarioID, empresaID)
	if err != nil {
		return nil, err
	}

	inicio, err := ParseCompetencia(competencia)
	if err != nil {
		return nil, err
	}
	fim := inicio.AddDate(0, 1, 0)

	pontos, err := s.repo.ListarPontosAprovados(ctx, f.ID, inicio, fim)
	if err != nil {
		return nil, err
	}

	jornadas, err := s.funcionarios.ListarJornada(ctx, f.ID)
	if err != nil {
		return nil, err
	}

	trabalhadas := horasTrabalhadas(pontos)
	previstas := horasPrevistas(jornadas, inicio, fim)

	fechamento := &FechamentoFolha{
		FuncionarioID:    f.ID,
		Competencia:      competencia,
		HorasTrabalhadas: trabalhadas,
		HorasPrevistas:   previstas,
		SaldoHoras:       trabalhadas - previstas,
	}
	if err := s.repo.Salvar(ctx, fechamento); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransicaoInvalida
		}
		return nil, err
	}
	return fechamento, nil
}

// Obter carrega um fechamento no escopo da empresa.
func (s *Service) Obter(ctx context.Context, id, empresaID uuid.UUID) (*FechamentoFolha, error) {
	return s.repo.Obter(ctx, id, empresaID)
}

// Listar lista fechamentos da empresa.
func (s *Service) Listar(ctx context.Context, empresaID uuid.UUID, competencia string) ([]FechamentoFolha, error) {
	if competencia != "" {
		if _, err := ParseCompetencia(competencia); err != nil {
			return nil, err
		}
	}
	return s.repo.Listar(ctx, empresaID, competencia)
}

// Fechar congela os totais da competência (Aberto → Fechado).
func (s *Service) Fechar(ctx context.Context, id, empresaID uuid.UUID) (*FechamentoFolha, error) {
	return s.repo.Transicionar(ctx, id, empresaID, StatusAberto, StatusFechado, nil)
}

// Aprovar encerra o fechamento (Fechado → Aprovado). Decisão terminal.
func (s *Service) Aprovar(ctx context.Context, id, empresaID, aprovadorID uuid.UUID) (*FechamentoFolha, error) {
	return s.repo.Transicionar(ctx, id, empresaID, StatusFechado, StatusAprovado, &aprovadorID)
}

// horasTrabalhadas soma pares Entrada→Saida e desconta pausas Intervalo→Retorno.
// Marcações desencontradas são ignoradas: par incompleto é sinalizado pelo
// analisador, não pelo cálculo da folha.
func horasTrabalhadas(pontos []Ponto) float64 {
	var total time.Duration
	var entrada, intervalo *time.Time
	var pausa time.Duration

	for i := range pontos {
		p := pontos[i]
		switch p.Tipo {
		case registro.TipoEntrada:
			ts := p.Timestamp
			entrada = &ts
			pausa = 0
		case registro.TipoIntervalo:
			if entrada != nil {
				ts := p.Timestamp
				intervalo = &ts
			}
		case registro.TipoRetorno:
			if intervalo != nil {
				pausa += p.Timestamp.Sub(*intervalo)
				intervalo = nil
			}
		case registro.TipoSaida:
			if entrada != nil {
				total += p.Timestamp.Sub(*entrada) - pausa
				entrada = nil
				intervalo = nil
				pausa = 0
			}
		}
	}

	return total.Hours()
}

// horasPrevistas acumula a carga da jornada para cada dia do período.
func horasPrevistas(jornadas []funcionario.Jornada, inicio, fim time.Time) float64 {
	porDia := make(map[int]float64, len(jornadas))
	for _, j := range jornadas {
		carga := minutos(j.Saida) - minutos(j.Entrada) - (minutos(j.FimIntervalo) - minutos(j.InicioIntervalo))
		if carga > 0 {
			porDia[j.DiaSemana] = float64(carga) / 60
		}
	}

	var total float64
	for dia := inicio; dia.Before(fim); dia = dia.AddDate(0, 0, 1) {
		diaSemana := int(dia.Weekday())
		if diaSemana == 0 {
			diaSemana = 7
		}
		total += porDia[diaSemana]
	}
	return total
}

func minutos(horario string) int {
	partes := strings.SplitN(horario, ":", 2)
	if len(partes) != 2 {
		return 0
	}
	hora, err1 := strconv.Atoi(partes[0])
	minuto, err2 := strconv.Atoi(partes[1])
	if err1 != nil || err2 != nil {
		return 0
	}
	return hora*60 + minuto
}
