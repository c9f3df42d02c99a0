package empresa

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("empresa não encontrada")
	ErrEstadoInvalid = errors.New("estado não cadastrado")
)

// Empresa representa uma organização cliente da plataforma.
type Empresa struct {
	ID            uuid.UUID `json:"id"`
	Nome          string    `json:"nome"`
	CNPJ          string    `json:"cnpj"`
	Logradouro    string    `json:"logradouro"`
	Numero        string    `json:"numero"`
	Cidade        string    `json:"cidade"`
	EstadoID      int       `json:"estado_id"`
	RamoAtividade string    `json:"ramo_atividade"`
	Email         string    `json:"email"`
	Telefone      string    `json:"telefone"`
	Ativa         bool      `json:"ativa"`
	CriadoEm      time.Time `json:"criado_em"`
	AtualizadoEm  time.Time `json:"atualizado_em"`
}

// Configuracao guarda exigências de registro de ponto e o geofence da empresa.
type Configuracao struct {
	EmpresaID         uuid.UUID `json:"empresa_id"`
	RequerFoto        bool      `json:"requer_foto"`
	RequerLocalizacao bool      `json:"requer_localizacao"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	RaioMetros        *float64  `json:"raio_metros,omitempty"`
}

// Admin é o usuário administrador vinculado a uma empresa. Existe uma
// linha de admin sse o usuário tem nível ADMIN.
type Admin struct {
	ID        uuid.UUID `json:"id"`
	UsuarioID uuid.UUID `json:"usuario_id"`
	EmpresaID uuid.UUID `json:"empresa_id"`
	Nome      string    `json:"nome"`
	Email     string    `json:"email"`
	CriadoEm  time.Time `json:"criado_em"`
}

// AdminInput encapsula os campos de criação de administrador.
type AdminInput struct {
	EmpresaID uuid.UUID
	Nome      string
	Email     string
	Senha     string
}

// CreateInput encapsula os campos de cadastro de empresa.
type CreateInput struct {
	Nome          string
	CNPJ          string
	Logradouro    string
	Numero        string
	Cidade        string
	EstadoID      int
	RamoAtividade string
	Email         string
	Telefone      string
}

// UpdateInput permite atualização parcial dos dados cadastrais.
type UpdateInput struct {
	ID            uuid.UUID
	Nome          *string
	Logradouro    *string
	Numero        *string
	Cidade        *string
	EstadoID      *int
	RamoAtividade *string
	Email         *string
	Telefone      *string
}

// Filter delimita listagens de empresas.
type Filter struct {
	Ativa  *bool
	Busca  string
	Limit  int
	Offset int
}
