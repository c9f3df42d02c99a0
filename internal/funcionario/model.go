package funcionario

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("funcionário não encontrado")
	// ErrAindaAtivo protege contra exclusão acidental: o usuário vinculado
	// precisa estar inativo antes da remoção definitiva.
	ErrAindaAtivo     = errors.New("funcionário deve estar inativo antes da exclusão")
	ErrJornadaInvalid = errors.New("jornada de trabalho inválida")
)

// Funcionario estende Usuario com dados contratuais.
// Invariante: existe uma linha de Funcionario sse Usuario.Nivel = FUNCIONARIO.
type Funcionario struct {
	ID           uuid.UUID `json:"id"`
	UsuarioID    uuid.UUID `json:"usuario_id"`
	EmpresaID    uuid.UUID `json:"empresa_id"`
	Matricula    string    `json:"matricula"`
	Cargo        string    `json:"cargo"`
	Departamento string    `json:"departamento"`
	DataAdmissao time.Time `json:"data_admissao"`
	TipoContrato string    `json:"tipo_contrato"`
	SalarioBase  float64   `json:"salario_base"`
	CriadoEm     time.Time `json:"criado_em"`

	// Campos projetados do usuário vinculado.
	Nome    string  `json:"nome"`
	Email   string  `json:"email"`
	CPF     string  `json:"cpf"`
	Ativo   bool    `json:"ativo"`
	FotoURL *string `json:"foto_url,omitempty"`
}

// Jornada define horário de um dia da semana (1=segunda ... 7=domingo).
type Jornada struct {
	ID              uuid.UUID `json:"id"`
	FuncionarioID   uuid.UUID `json:"funcionario_id"`
	DiaSemana       int       `json:"dia_semana"`
	Entrada         string    `json:"entrada"`
	Saida           string    `json:"saida"`
	InicioIntervalo string    `json:"inicio_intervalo"`
	FimIntervalo    string    `json:"fim_intervalo"`
}

// JornadaInput descreve o horário de um dia ao definir a semana.
type JornadaInput struct {
	DiaSemana       int    `json:"dia_semana"`
	Entrada         string `json:"entrada"`
	Saida           string `json:"saida"`
	InicioIntervalo string `json:"inicio_intervalo"`
	FimIntervalo    string `json:"fim_intervalo"`
}

// JornadaPadrao devolve segunda a sexta, 09:00–18:00 com intervalo 12:00–13:00.
func JornadaPadrao() []JornadaInput {
	jornadas := make([]JornadaInput, 0, 5)
	for dia := 1; dia <= 5; dia++ {
		jornadas = append(jornadas, JornadaInput{
			DiaSemana:       dia,
			Entrada:         "09:00",
			Saida:           "18:00",
			InicioIntervalo: "12:00",
			FimIntervalo:    "13:00",
		})
	}
	return jornadas
}

// CreateInput encapsula o cadastro completo (usuário + contrato + jornada).
type CreateInput struct {
	EmpresaID    uuid.UUID
	Nome         string
	Email        string
	Senha        string
	CPF          string
	Matricula    string
	Cargo        string
	Departamento string
	DataAdmissao time.Time
	TipoContrato string
	SalarioBase  float64
	Jornadas     []JornadaInput
}

// UpdateInput permite atualização parcial dos dados contratuais.
type UpdateInput struct {
	ID           uuid.UUID
	EmpresaID    uuid.UUID
	Cargo        *string
	Departamento *string
	TipoContrato *string
	SalarioBase  *float64
}

// Filter delimita listagens por empresa.
type Filter struct {
	EmpresaID    uuid.UUID
	Departamento string
	Ativo        *bool
	Limit        int
	Offset       int
}
