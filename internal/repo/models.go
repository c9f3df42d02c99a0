package repo

import (
	"time"

	"github.com/google/uuid"
)

// Níveis de acesso reconhecidos pela plataforma.
const (
	NivelITSupport   = "IT_SUPPORT"
	NivelAdmin       = "ADMIN"
	NivelFuncionario = "FUNCIONARIO"
)

// Usuario representa a identidade base de qualquer pessoa no sistema.
type Usuario struct {
	ID        uuid.UUID
	Nome      string
	Email     string
	SenhaHash string
	Nivel     string
	CPF       string
	Ativo     bool
	FotoURL   *string
	EmpresaID *uuid.UUID
	CriadoEm  time.Time
}

// Admin estende Usuario com vínculo de empresa e permissões nomeadas.
// Invariante: existe uma linha de Admin sse Usuario.Nivel = ADMIN.
type Admin struct {
	ID         uuid.UUID
	UsuarioID  uuid.UUID
	EmpresaID  uuid.UUID
	Permissoes map[string]bool
	CriadoEm   time.Time
}

// TokenRefresh modela a tabela de refresh tokens.
type TokenRefresh struct {
	ID        uuid.UUID
	Subject   uuid.UUID
	TokenHash string
	Expiracao time.Time
	CriadoEm  time.Time
	Revogado  bool
}

// InsertRefreshTokenParams agrupa os campos de criação de refresh token.
type InsertRefreshTokenParams struct {
	Subject   uuid.UUID
	TokenHash string
	Expiracao time.Time
}
