package registro

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Tipos de marcação de ponto.
const (
	TipoEntrada   = "Entrada"
	TipoSaida     = "Saida"
	TipoIntervalo = "Intervalo"
	TipoRetorno   = "Retorno"
)

// Estados do registro. Aprovado e Rejeitado são terminais.
const (
	StatusPendente  = "Pendente"
	StatusAprovado  = "Aprovado"
	StatusRejeitado = "Rejeitado"
)

var (
	ErrNotFound    = errors.New("registro não encontrado")
	ErrTipoInvalid = errors.New("tipo de registro inválido")
	// ErrJaResolvido indica que outro administrador já decidiu esse registro.
	ErrJaResolvido            = errors.New("registro já foi aprovado ou rejeitado")
	ErrStatusInvalid          = errors.New("status deve ser Aprovado ou Rejeitado")
	ErrFotoObrigatoria        = errors.New("Foto é obrigatória para registro de ponto")
	ErrLocalizacaoObrigatoria = errors.New("Localização é obrigatória para registro de ponto")
	ErrRegistroNaoAprovado    = errors.New("somente registros aprovados aceitam solicitação de alteração")
	ErrSolicitacaoPendente    = errors.New("já existe solicitação pendente para este registro")
	ErrSolicitacaoResolvida   = errors.New("solicitação já foi resolvida")
	ErrFuncionarioInativo     = errors.New("funcionário inativo não pode registrar ponto")
)

// Registro é uma marcação individual de ponto.
type Registro struct {
	ID            uuid.UUID  `json:"id"`
	FuncionarioID uuid.UUID  `json:"funcionario_id"`
	Tipo          string     `json:"tipo"`
	Timestamp     time.Time  `json:"timestamp"`
	FotoURL       *string    `json:"foto_url,omitempty"`
	Latitude      *float64   `json:"latitude,omitempty"`
	Longitude     *float64   `json:"longitude,omitempty"`
	Precisao      *float64   `json:"precisao,omitempty"`
	Dispositivo   string     `json:"dispositivo,omitempty"`
	Hash          string     `json:"hash"`
	Status        string     `json:"status"`
	AprovadorID   *uuid.UUID `json:"aprovador_id,omitempty"`
	Justificativa *string    `json:"justificativa,omitempty"`
	CriadoEm      time.Time  `json:"criado_em"`
}

// SolicitacaoAlteracao é um pedido de correção sobre um registro já aprovado.
// Tem máquina de estados própria, independente da do registro.
type SolicitacaoAlteracao struct {
	ID            uuid.UUID  `json:"id"`
	RegistroID    uuid.UUID  `json:"registro_id"`
	FuncionarioID uuid.UUID  `json:"funcionario_id"`
	TipoCorrecao  string     `json:"tipo_correcao"`
	Motivo        string     `json:"motivo"`
	Status        string     `json:"status"`
	Resposta      *string    `json:"resposta,omitempty"`
	ResolvidoPor  *uuid.UUID `json:"resolvido_por,omitempty"`
	CriadoEm      time.Time  `json:"criado_em"`
	ResolvidoEm   *time.Time `json:"resolvido_em,omitempty"`
}

// CreateInput carrega a marcação enviada pelo funcionário autenticado.
type CreateInput struct {
	UsuarioID   uuid.UUID
	Tipo        string
	Foto        []byte
	FotoTipo    string
	Latitude    *float64
	Longitude   *float64
	Precisao    *float64
	Dispositivo string
}

// Filter delimita listagens de registros.
type Filter struct {
	EmpresaID     uuid.UUID
	FuncionarioID uuid.UUID
	Status        string
	DataInicio    *time.Time
	DataFim       *time.Time
	Limit         int
	Offset        int
}

// Irregularidade é um alerta gerado pela análise de um dia de marcações.
// Não altera estado: aprovação continua decisão humana.
type Irregularidade struct {
	Codigo    string `json:"codigo"`
	Descricao string `json:"descricao"`
}

// Códigos de irregularidade.
const (
	IrregularidadeParIncompleto = "PAR_INCOMPLETO"
	IrregularidadeForaDoRaio    = "FORA_DO_RAIO"
	IrregularidadePrecisaoBaixa = "PRECISAO_BAIXA"
	IrregularidadeForaDaJornada = "FORA_DA_JORNADA"
)

func tipoValido(tipo string) bool {
	switch tipo {
	case TipoEntrada, TipoSaida, TipoIntervalo, TipoRetorno:
		return true
	}
	return false
}
