package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Queries concentra acesso parametrizado às tabelas compartilhadas.
type Queries struct {
	pool *pgxpool.Pool
}

// New cria instância de Queries sobre o pool.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const usuarioColumns = `id, nome, email, senha_hash, nivel, cpf, ativo, foto_url, empresa_id, criado_em`

// CreateUsuarioParams agrupa os campos de criação direta de usuário. Usado
// pelo seed de IT_SUPPORT; onboarding de funcionários e admins passa pelas
// transações dos respectivos módulos.
type CreateUsuarioParams struct {
	Nome      string
	Email     string
	SenhaHash string
	Nivel     string
	EmpresaID *uuid.UUID
}

// CreateUsuario insere usuário já com hash de senha.
func (q *Queries) CreateUsuario(ctx context.Context, arg CreateUsuarioParams) (Usuario, error) {
	row := q.pool.QueryRow(ctx, `
        INSERT INTO usuarios (nome, email, senha_hash, nivel, ativo, empresa_id)
        VALUES ($1, $2, $3, $4, TRUE, $5)
        RETURNING `+usuarioColumns,
		strings.TrimSpace(arg.Nome),
		strings.ToLower(strings.TrimSpace(arg.Email)),
		arg.SenhaHash,
		arg.Nivel,
		arg.EmpresaID,
	)
	u, err := scanUsuario(row)
	if err != nil && IsUniqueViolation(err) {
		return Usuario{}, ErrDuplicate
	}
	return u, err
}

// GetUsuarioByEmail busca usuário pelo email normalizado.
func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	row := q.pool.QueryRow(ctx,
		`SELECT `+usuarioColumns+` FROM usuarios WHERE lower(email) = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	return scanUsuario(row)
}

// GetUsuarioByID busca usuário pelo identificador.
func (q *Queries) GetUsuarioByID(ctx context.Context, id uuid.UUID) (Usuario, error) {
	row := q.pool.QueryRow(ctx,
		`SELECT `+usuarioColumns+` FROM usuarios WHERE id = $1`, id)
	return scanUsuario(row)
}

// UpdateUsuario altera nome e email do usuário.
func (q *Queries) UpdateUsuario(ctx context.Context, id uuid.UUID, nome, email string) error {
	tag, err := q.pool.Exec(ctx,
		`UPDATE usuarios SET nome = $2, email = $3 WHERE id = $1`,
		id, strings.TrimSpace(nome), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateSenha troca o hash de senha do usuário.
func (q *Queries) UpdateSenha(ctx context.Context, id uuid.UUID, senhaHash string) error {
	tag, err := q.pool.Exec(ctx,
		`UPDATE usuarios SET senha_hash = $2 WHERE id = $1`, id, senhaHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFotoURL grava a URL da foto de perfil.
func (q *Queries) UpdateFotoURL(ctx context.Context, id uuid.UUID, fotoURL string) error {
	tag, err := q.pool.Exec(ctx,
		`UPDATE usuarios SET foto_url = $2 WHERE id = $1`, id, fotoURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAdminByUsuario retorna o vínculo de admin do usuário, se houver.
func (q *Queries) GetAdminByUsuario(ctx context.Context, usuarioID uuid.UUID) (Admin, error) {
	var a Admin
	err := q.pool.QueryRow(ctx, `
        SELECT id, usuario_id, empresa_id, permissoes, criado_em
        FROM admins
        WHERE usuario_id = $1
    `, usuarioID).Scan(&a.ID, &a.UsuarioID, &a.EmpresaID, &a.Permissoes, &a.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Admin{}, ErrNotFound
		}
		return Admin{}, err
	}
	return a, nil
}

// InsertRefreshToken registra novo refresh token ativo.
func (q *Queries) InsertRefreshToken(ctx context.Context, arg InsertRefreshTokenParams) (TokenRefresh, error) {
	var t TokenRefresh
	err := q.pool.QueryRow(ctx, `
        INSERT INTO tokens_refresh (subject, token_hash, expiracao)
        VALUES ($1, $2, $3)
        RETURNING id, subject, token_hash, expiracao, criado_em, revogado
    `, arg.Subject, arg.TokenHash, arg.Expiracao).Scan(
		&t.ID, &t.Subject, &t.TokenHash, &t.Expiracao, &t.CriadoEm, &t.Revogado)
	if err != nil {
		return TokenRefresh{}, err
	}
	return t, nil
}

// GetRefreshTokenByHash busca refresh token pelo hash.
func (q *Queries) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (TokenRefresh, error) {
	var t TokenRefresh
	err := q.pool.QueryRow(ctx, `
        SELECT id, subject, token_hash, expiracao, criado_em, revogado
        FROM tokens_refresh
        WHERE token_hash = $1
    `, tokenHash).Scan(&t.ID, &t.Subject, &t.TokenHash, &t.Expiracao, &t.CriadoEm, &t.Revogado)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TokenRefresh{}, ErrNotFound
		}
		return TokenRefresh{}, err
	}
	return t, nil
}

// RevokeRefreshToken marca o token como revogado.
func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	tag, err := q.pool.Exec(ctx,
		`UPDATE tokens_refresh SET revogado = TRUE WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InvalidateOtherRefreshTokens revoga todos os tokens do subject exceto o informado.
func (q *Queries) InvalidateOtherRefreshTokens(ctx context.Context, subject uuid.UUID, keepHash string) error {
	_, err := q.pool.Exec(ctx,
		`UPDATE tokens_refresh SET revogado = TRUE WHERE subject = $1 AND token_hash <> $2`,
		subject, keepHash)
	return err
}

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Nivel, &u.CPF, &u.Ativo, &u.FotoURL, &u.EmpresaID, &u.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}
