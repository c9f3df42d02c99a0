package dashboard

import (
	"time"

	"github.com/google/uuid"
)

// Resumo agrega os números exibidos no painel do administrador.
// Cada campo degrada de forma independente para zero/vazio em caso de falha.
type Resumo struct {
	FuncionariosAtivos      int              `json:"funcionarios_ativos"`
	FuncionariosInativos    int              `json:"funcionarios_inativos"`
	FuncionariosPorContrato map[string]int   `json:"funcionarios_por_contrato"`
	RegistrosPorStatus      map[string]int   `json:"registros_por_status"`
	UltimosPendentes        []RegistroResumo `json:"ultimos_pendentes"`
	RegistrosPorMes         []TotalMensal    `json:"registros_por_mes"`
}

// RegistroResumo é a linha compacta de registro exibida no painel.
type RegistroResumo struct {
	ID              uuid.UUID `json:"id"`
	FuncionarioID   uuid.UUID `json:"funcionario_id"`
	FuncionarioNome string    `json:"funcionario_nome"`
	Tipo            string    `json:"tipo"`
	Timestamp       time.Time `json:"timestamp"`
}

// TotalMensal agrupa contagem de registros por mês (AAAA-MM).
type TotalMensal struct {
	Mes   string `json:"mes"`
	Total int    `json:"total"`
}
