package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pontodigital/plataforma/internal/auth"
	"github.com/pontodigital/plataforma/internal/repo"
)

type stubAuthRepo struct {
	user         repo.Usuario
	admin        *repo.Admin
	tokens       map[string]repo.TokenRefresh
	refreshCalls int
}

func (s *stubAuthRepo) GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error) {
	if strings.EqualFold(email, s.user.Email) {
		return s.user, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetUsuarioByID(ctx context.Context, id uuid.UUID) (repo.Usuario, error) {
	if id == s.user.ID {
		return s.user, nil
	}
	return repo.Usuario{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetAdminByUsuario(ctx context.Context, usuarioID uuid.UUID) (repo.Admin, error) {
	if s.admin != nil && s.admin.UsuarioID == usuarioID {
		return *s.admin, nil
	}
	return repo.Admin{}, repo.ErrNotFound
}

func (s *stubAuthRepo) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.TokenRefresh, error) {
	if token, ok := s.tokens[tokenHash]; ok {
		return token, nil
	}
	return repo.TokenRefresh{}, repo.ErrNotFound
}

func (s *stubAuthRepo) InsertRefreshToken(ctx context.Context, arg repo.InsertRefreshTokenParams) (repo.TokenRefresh, error) {
	s.refreshCalls++
	token := repo.TokenRefresh{
		ID:        uuid.New(),
		Subject:   arg.Subject,
		TokenHash: arg.TokenHash,
		Expiracao: arg.Expiracao,
	}
	if s.tokens == nil {
		s.tokens = make(map[string]repo.TokenRefresh)
	}
	s.tokens[arg.TokenHash] = token
	return token, nil
}

func (s *stubAuthRepo) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, keepHash string) error {
	for hash, token := range s.tokens {
		if token.Subject == subject && hash != keepHash {
			token.Revogado = true
			s.tokens[hash] = token
		}
	}
	return nil
}

func (s *stubAuthRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	token, ok := s.tokens[tokenHash]
	if !ok {
		return repo.ErrNotFound
	}
	token.Revogado = true
	s.tokens[tokenHash] = token
	return nil
}

func (s *stubAuthRepo) UpdateUsuario(ctx context.Context, id uuid.UUID, nome, email string) error {
	if id != s.user.ID {
		return repo.ErrNotFound
	}
	s.user.Nome = nome
	s.user.Email = email
	return nil
}

func (s *stubAuthRepo) UpdateSenha(ctx context.Context, id uuid.UUID, senhaHash string) error {
	if id != s.user.ID {
		return repo.ErrNotFound
	}
	s.user.SenhaHash = senhaHash
	return nil
}

func (s *stubAuthRepo) UpdateFotoURL(ctx context.Context, id uuid.UUID, fotoURL string) error {
	if id != s.user.ID {
		return repo.ErrNotFound
	}
	s.user.FotoURL = &fotoURL
	return nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if s.store == nil {
		s.store = make(map[string]string)
	}
	s.store[key] = fmt.Sprint(value)
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	val, ok := s.store[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val)
	return cmd
}

func (s *stubRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.store[key]; ok {
			delete(s.store, key)
			removed++
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func novoServicoAuth(t *testing.T, user repo.Usuario, admin *repo.Admin) (*AuthService, *stubAuthRepo, *stubRedis) {
	t.Helper()
	repoStub := &stubAuthRepo{user: user, admin: admin}
	redisStub := &stubRedis{}
	svc := &AuthService{
		repo:       repoStub,
		redis:      redisStub,
		jwt:        auth.NewJWTManager(strings.Repeat("a", 32), time.Minute),
		refreshTTL: time.Hour,
	}
	return svc, repoStub, redisStub
}

func usuarioAtivo(t *testing.T, nivel, senha string) repo.Usuario {
	t.Helper()
	hash, err := auth.Hash(senha)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return repo.Usuario{
		ID:        uuid.New(),
		Nome:      "Usuária Teste",
		Email:     "usuaria@example.com",
		SenhaHash: hash,
		Nivel:     nivel,
		Ativo:     true,
	}
}

func TestLoginAdminResolveEmpresa(t *testing.T) {
	senha := "SenhaForte123!"
	user := usuarioAtivo(t, repo.NivelAdmin, senha)
	empresaID := uuid.New()
	admin := &repo.Admin{ID: uuid.New(), UsuarioID: user.ID, EmpresaID: empresaID}

	svc, repoStub, redisStub := novoServicoAuth(t, user, admin)

	result, err := svc.Login(context.Background(), user.Email, senha)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.EmpresaID != empresaID.String() {
		t.Fatalf("expected empresa %s in token scope, got %s", empresaID, result.EmpresaID)
	}
	if len(result.Roles) != 1 || result.Roles[0] != repo.NivelAdmin {
		t.Fatalf("expected roles [ADMIN], got %v", result.Roles)
	}
	if repoStub.refreshCalls != 1 {
		t.Fatalf("expected 1 refresh persisted, got %d", repoStub.refreshCalls)
	}
	if redisStub.store[auth.RefreshRedisKey(result.RefreshHash)] != "active" {
		t.Fatal("expected refresh marked active in redis")
	}
}

func TestLoginSenhaIncorreta(t *testing.T) {
	user := usuarioAtivo(t, repo.NivelFuncionario, "SenhaForte123!")
	svc, _, _ := novoServicoAuth(t, user, nil)

	_, err := svc.Login(context.Background(), user.Email, "outra-senha")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginEmailDesconhecido(t *testing.T) {
	user := usuarioAtivo(t, repo.NivelFuncionario, "SenhaForte123!")
	svc, _, _ := novoServicoAuth(t, user, nil)

	_, err := svc.Login(context.Background(), "ninguem@example.com", "SenhaForte123!")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginContaDesativada(t *testing.T) {
	senha := "SenhaForte123!"
	user := usuarioAtivo(t, repo.NivelFuncionario, senha)
	user.Ativo = false
	svc, _, _ := novoServicoAuth(t, user, nil)

	_, err := svc.Login(context.Background(), user.Email, senha)
	if !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestRefreshRotacionaToken(t *testing.T) {
	senha := "SenhaForte123!"
	user := usuarioAtivo(t, repo.NivelFuncionario, senha)
	svc, repoStub, redisStub := novoServicoAuth(t, user, nil)

	login, err := svc.Login(context.Background(), user.Email, senha)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	renovado, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if renovado.RefreshToken == login.RefreshToken {
		t.Fatal("expected a new refresh token after rotation")
	}

	antigo := repoStub.tokens[login.RefreshHash]
	if !antigo.Revogado {
		t.Fatal("expected old refresh revoked in store")
	}
	if _, ok := redisStub.store[auth.RefreshRedisKey(login.RefreshHash)]; ok {
		t.Fatal("expected old refresh removed from redis")
	}

	// O token antigo não pode valer uma segunda vez.
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid on reuse, got %v", err)
	}
}

func TestRefreshTokenDesconhecido(t *testing.T) {
	user := usuarioAtivo(t, repo.NivelFuncionario, "SenhaForte123!")
	svc, _, _ := novoServicoAuth(t, user, nil)

	_, err := svc.Refresh(context.Background(), "token-que-nunca-existiu")
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestLogoutRevogaRefresh(t *testing.T) {
	senha := "SenhaForte123!"
	user := usuarioAtivo(t, repo.NivelFuncionario, senha)
	svc, repoStub, redisStub := novoServicoAuth(t, user, nil)

	login, err := svc.Login(context.Background(), user.Email, senha)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !repoStub.tokens[login.RefreshHash].Revogado {
		t.Fatal("expected refresh revoked after logout")
	}
	if _, ok := redisStub.store[auth.RefreshRedisKey(login.RefreshHash)]; ok {
		t.Fatal("expected refresh removed from redis after logout")
	}
}

func TestTrocarSenhaExigeSenhaAtual(t *testing.T) {
	senha := "SenhaForte123!"
	user := usuarioAtivo(t, repo.NivelFuncionario, senha)
	svc, repoStub, _ := novoServicoAuth(t, user, nil)

	err := svc.TrocarSenha(context.Background(), user.ID, "senha-errada", "NovaSenha456!")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.TrocarSenha(context.Background(), user.ID, senha, "NovaSenha456!"); err != nil {
		t.Fatalf("trocar senha: %v", err)
	}
	ok, err := auth.Verify("NovaSenha456!", repoStub.user.SenhaHash)
	if err != nil || !ok {
		t.Fatal("expected new password persisted as hash")
	}
}

func TestGetMeDevolvePerfil(t *testing.T) {
	user := usuarioAtivo(t, repo.NivelITSupport, "SenhaForte123!")
	svc, _, _ := novoServicoAuth(t, user, nil)

	profile, roles, err := svc.GetMe(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if profile.Email != user.Email {
		t.Fatalf("unexpected profile email: %s", profile.Email)
	}
	if len(roles) != 1 || roles[0] != repo.NivelITSupport {
		t.Fatalf("expected roles [IT_SUPPORT], got %v", roles)
	}
	if profile.EmpresaID != nil {
		t.Fatal("IT_SUPPORT must not carry empresa scope")
	}
}
