package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/pontodigital/plataforma/internal/auth"
	"github.com/pontodigital/plataforma/internal/repo"
	"github.com/pontodigital/plataforma/internal/util"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
	// ErrRefreshInvalid indica refresh token inválido ou expirado.
	ErrRefreshInvalid = errors.New("refresh token inválido")
)

type authRepository interface {
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error)
	GetAdminByUsuario(ctx context.Context, usuarioID uuid.UUID) (repo.Admin, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.TokenRefresh, error)
	InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.TokenRefresh, error)
	InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, keepHash string) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	UpdateUsuario(ctx context.Context, id uuid.UUID, nome, email string) error
	UpdateSenha(ctx context.Context, id uuid.UUID, senhaHash string) error
	UpdateFotoURL(ctx context.Context, id uuid.UUID, fotoURL string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra regras de autenticação e sessões.
type AuthService struct {
	repo       authRepository
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(r *repo.Queries, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{repo: r, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	Subject       uuid.UUID
	Roles         []string
	EmpresaID     string
	Profile       *Profile
	RefreshHash   string
	RefreshExpiry time.Time
}

// Profile resume o usuário autenticado para o frontend.
type Profile struct {
	ID        string  `json:"id"`
	Nome      string  `json:"nome"`
	Email     string  `json:"email"`
	Nivel     string  `json:"nivel"`
	EmpresaID *string `json:"empresa_id,omitempty"`
	FotoURL   *string `json:"foto_url,omitempty"`
}

// Login autentica por email e senha e emite o par access/refresh.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetUsuarioByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Msg("login: senha inválida")
		return nil, ErrInvalidCredentials
	}

	return s.loginFromUser(ctx, user)
}

func (s *AuthService) loginFromUser(ctx context.Context, user repo.Usuario) (*LoginResult, error) {
	if !user.Ativo {
		return nil, ErrAccountDisabled
	}

	roles := []string{user.Nivel}
	empresaID, err := s.resolveEmpresa(ctx, user)
	if err != nil {
		return nil, err
	}

	token, _, err := s.jwt.GenerateAccessToken(user.ID.String(), roles, empresaID)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := util.Now().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, user.ID, refreshHash, expires); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		Subject:       user.ID,
		Roles:         roles,
		EmpresaID:     empresaID,
		Profile:       profileFromUser(user, empresaID),
		RefreshHash:   refreshHash,
		RefreshExpiry: expires,
	}, nil
}

// Refresh rotaciona o par de tokens: o refresh anterior é revogado no
// Postgres e no Redis antes de o novo valer.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.repo.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revogado || time.Now().UTC().After(record.Expiracao) {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.RefreshRedisKey(hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	user, err := s.repo.GetUsuarioByID(ctx, record.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	result, err := s.loginFromUser(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout revoga o refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.repo.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if err := s.redis.Del(ctx, auth.RefreshRedisKey(hash)).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// GetMe devolve o perfil derivado da identidade do token verificado.
func (s *AuthService) GetMe(ctx context.Context, subject uuid.UUID) (*Profile, []string, error) {
	user, err := s.repo.GetUsuarioByID(ctx, subject)
	if err != nil {
		return nil, nil, err
	}
	empresaID, err := s.resolveEmpresa(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return profileFromUser(user, empresaID), []string{user.Nivel}, nil
}

// GetUsuarioByID expõe consulta usada por handlers de perfil.
func (s *AuthService) GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error) {
	return s.repo.GetUsuarioByID(ctx, id)
}

// AtualizarPerfil altera nome e email do usuário autenticado.
func (s *AuthService) AtualizarPerfil(ctx context.Context, id uuid.UUID, nome, email string) error {
	if err := util.RequireString(nome, "nome"); err != nil {
		return err
	}
	if err := util.ValidateEmail(email); err != nil {
		return err
	}
	return s.repo.UpdateUsuario(ctx, id, strings.TrimSpace(nome), strings.ToLower(strings.TrimSpace(email)))
}

// TrocarSenha confere a senha atual antes de gravar a nova.
func (s *AuthService) TrocarSenha(ctx context.Context, id uuid.UUID, senhaAtual, senhaNova string) error {
	user, err := s.repo.GetUsuarioByID(ctx, id)
	if err != nil {
		return err
	}
	ok, err := auth.Verify(senhaAtual, user.SenhaHash)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}
	if err := util.ValidatePassword(senhaNova); err != nil {
		return err
	}
	hash, err := auth.Hash(senhaNova)
	if err != nil {
		return err
	}
	return s.repo.UpdateSenha(ctx, id, hash)
}

// AtualizarFoto grava a URL da foto de perfil.
func (s *AuthService) AtualizarFoto(ctx context.Context, id uuid.UUID, fotoURL string) error {
	return s.repo.UpdateFotoURL(ctx, id, fotoURL)
}

// resolveEmpresa determina o escopo de empresa do token. ADMIN resolve via
// vínculo de admin; FUNCIONARIO via coluna do usuário; IT_SUPPORT não tem.
func (s *AuthService) resolveEmpresa(ctx context.Context, user repo.Usuario) (string, error) {
	switch user.Nivel {
	case repo.NivelAdmin:
		admin, err := s.repo.GetAdminByUsuario(ctx, user.ID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return "", nil
			}
			return "", err
		}
		return admin.EmpresaID.String(), nil
	case repo.NivelFuncionario:
		if user.EmpresaID != nil {
			return user.EmpresaID.String(), nil
		}
	}
	return "", nil
}

func (s *AuthService) persistRefresh(ctx context.Context, subject uuid.UUID, hash string, expires time.Time) error {
	_, err := s.repo.InsertRefreshToken(ctx, repo.InsertRefreshTokenParams{
		Subject:   subject,
		TokenHash: hash,
		Expiracao: expires,
	})
	if err != nil {
		return err
	}

	if err := s.repo.InvalidateOtherRefreshTokens(ctx, subject, hash); err != nil {
		return err
	}

	return s.redis.Set(ctx, auth.RefreshRedisKey(hash), "active", time.Until(expires)).Err()
}

func profileFromUser(user repo.Usuario, empresaID string) *Profile {
	p := &Profile{
		ID:      user.ID.String(),
		Nome:    user.Nome,
		Email:   user.Email,
		Nivel:   user.Nivel,
		FotoURL: user.FotoURL,
	}
	if empresaID != "" {
		p.EmpresaID = &empresaID
	}
	return p
}
