package folha

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Estados do fechamento. Aprovado é terminal.
const (
	StatusAberto   = "Aberto"
	StatusFechado  = "Fechado"
	StatusAprovado = "Aprovado"
)

var (
	ErrNotFound            = errors.New("fechamento não encontrado")
	ErrCompetenciaInvalida = errors.New("competência inválida, use AAAA-MM")
	// ErrTransicaoInvalida cobre tanto aprovação repetida quanto fechamento
	// de competência já aprovada.
	ErrTransicaoInvalida = errors.New("fechamento não está no estado esperado para essa transição")
)

// FechamentoFolha consolida as horas de um funcionário em uma competência.
type FechamentoFolha struct {
	ID               uuid.UUID  `json:"id"`
	FuncionarioID    uuid.UUID  `json:"funcionario_id"`
	Competencia      string     `json:"competencia"`
	HorasTrabalhadas float64    `json:"horas_trabalhadas"`
	HorasPrevistas   float64    `json:"horas_previstas"`
	SaldoHoras       float64    `json:"saldo_horas"`
	Status           string     `json:"status"`
	AprovadorID      *uuid.UUID `json:"aprovador_id,omitempty"`
	CriadoEm         time.Time  `json:"criado_em"`
	AtualizadoEm     time.Time  `json:"atualizado_em"`
}

// Ponto é a projeção mínima de um registro aprovado usada no cálculo.
type Ponto struct {
	Tipo      string
	Timestamp time.Time
}

// ParseCompetencia valida o formato AAAA-MM e devolve o primeiro dia do mês.
func ParseCompetencia(competencia string) (time.Time, error) {
	t, err := time.Parse("2006-01", competencia)
	if err != nil {
		return time.Time{}, ErrCompetenciaInvalida
	}
	return t.UTC(), nil
}
