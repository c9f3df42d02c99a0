package chamado

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("chamado não encontrado")
	ErrMensagemNotFound  = errors.New("mensagem não encontrada")
	ErrStatusInvalid     = errors.New("status inválido")
	ErrPrioridadeInvalid = errors.New("prioridade inválida")
	ErrAnexoInvalido     = errors.New("tipo de anexo não permitido")
	ErrAnexoGrande       = errors.New("anexo excede o limite de 5MB")
)

const (
	StatusAberto      = "Aberto"
	StatusEmAndamento = "Em andamento"
	StatusResolvido   = "Resolvido"
	StatusFechado     = "Fechado"

	PrioridadeBaixa   = "baixa"
	PrioridadeMedia   = "media"
	PrioridadeAlta    = "alta"
	PrioridadeCritica = "critica"
)

var (
	statusValidos = map[string]struct{}{
		StatusAberto:      {},
		StatusEmAndamento: {},
		StatusResolvido:   {},
		StatusFechado:     {},
	}
	prioridadesValidas = map[string]struct{}{
		PrioridadeBaixa:   {},
		PrioridadeMedia:   {},
		PrioridadeAlta:    {},
		PrioridadeCritica: {},
	}
)

// Chamado representa um ticket de suporte aberto por um usuário.
type Chamado struct {
	ID            uuid.UUID  `json:"id"`
	SolicitanteID uuid.UUID  `json:"solicitante_id"`
	EmpresaID     *uuid.UUID `json:"empresa_id,omitempty"`
	Assunto       string     `json:"assunto"`
	Categoria     string     `json:"categoria"`
	Descricao     string     `json:"descricao"`
	Status        string     `json:"status"`
	Prioridade    string     `json:"prioridade"`
	FotoURL       *string    `json:"foto_url,omitempty"`
	AtribuidoA    *uuid.UUID `json:"atribuido_a,omitempty"`
	CriadoEm      time.Time  `json:"criado_em"`
	AtualizadoEm  time.Time  `json:"atualizado_em"`
	FechadoEm     *time.Time `json:"fechado_em,omitempty"`
}

// Mensagem representa uma interação no chamado.
type Mensagem struct {
	ID        uuid.UUID `json:"id"`
	ChamadoID uuid.UUID `json:"chamado_id"`
	AutorID   uuid.UUID `json:"autor_id"`
	Corpo     string    `json:"corpo"`
	CriadoEm  time.Time `json:"criado_em"`
}

// CreateInput encapsula campos para abertura de chamado.
type CreateInput struct {
	SolicitanteID uuid.UUID
	EmpresaID     *uuid.UUID
	Assunto       string
	Categoria     string
	Descricao     string
	Prioridade    string
	Anexo         []byte
	AnexoTipo     string
}

// UpdateInput permite alterar status, prioridade e atribuição.
type UpdateInput struct {
	ID              uuid.UUID
	Status          *string
	Prioridade      *string
	AtribuidoA      *uuid.UUID
	LimparAtribuido bool
	FechadoEm       *time.Time
}

// Filter delimita listagens de chamados.
type Filter struct {
	SolicitanteID *uuid.UUID
	EmpresaID     *uuid.UUID
	Status        []string
	Limit         int
	Offset        int
}

// NormalizarPrioridade padroniza a prioridade em minúsculas, com padrão media.
func NormalizarPrioridade(prioridade string) string {
	prioridade = strings.ToLower(strings.TrimSpace(prioridade))
	if prioridade == "" {
		return PrioridadeMedia
	}
	return prioridade
}

// StatusValido indica se o status é aceito.
func StatusValido(status string) bool {
	_, ok := statusValidos[strings.TrimSpace(status)]
	return ok
}

// PrioridadeValida indica se a prioridade é aceita.
func PrioridadeValida(prioridade string) bool {
	_, ok := prioridadesValidas[strings.ToLower(strings.TrimSpace(prioridade))]
	return ok
}
