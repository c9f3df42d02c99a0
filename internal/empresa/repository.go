package empresa

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pontodigital/plataforma/internal/db"
	"github.com/pontodigital/plataforma/internal/repo"
)

// Repository provê acesso às tabelas de empresas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const empresaColumns = `id, nome, cnpj, logradouro, numero, cidade, estado_id, ramo_atividade, email, telefone, ativa, criado_em, atualizado_em`

// Criar insere empresa com status Ativa e configuração default.
func (r *Repository) Criar(ctx context.Context, input CreateInput) (*Empresa, error) {
	var e *Empresa
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
            INSERT INTO empresas (nome, cnpj, logradouro, numero, cidade, estado_id, ramo_atividade, email, telefone, ativa)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
            RETURNING `+empresaColumns,
			strings.TrimSpace(input.Nome),
			input.CNPJ,
			strings.TrimSpace(input.Logradouro),
			strings.TrimSpace(input.Numero),
			strings.TrimSpace(input.Cidade),
			input.EstadoID,
			strings.TrimSpace(input.RamoAtividade),
			strings.ToLower(strings.TrimSpace(input.Email)),
			strings.TrimSpace(input.Telefone),
		)

		scanned, err := scanEmpresa(row)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO empresas_configuracoes (empresa_id, requer_foto, requer_localizacao)
            VALUES ($1, FALSE, FALSE)
        `, scanned.ID); err != nil {
			return err
		}

		e = scanned
		return nil
	})
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, repo.ErrDuplicate
		}
		return nil, err
	}
	return e, nil
}

// Obter busca uma empresa específica.
func (r *Repository) Obter(ctx context.Context, id uuid.UUID) (*Empresa, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+empresaColumns+` FROM empresas WHERE id = $1`, id)
	return scanEmpresa(row)
}

// Listar lista empresas aplicando filtros simples.
func (r *Repository) Listar(ctx context.Context, filter Filter) ([]Empresa, error) {
	base := `SELECT ` + empresaColumns + ` FROM empresas`

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Ativa != nil {
		clauses = append(clauses, fmt.Sprintf("ativa = $%d", idx))
		args = append(args, *filter.Ativa)
		idx++
	}
	if busca := strings.TrimSpace(filter.Busca); busca != "" {
		clauses = append(clauses, fmt.Sprintf("(nome ILIKE $%d OR cnpj LIKE $%d)", idx, idx))
		args = append(args, "%"+busca+"%")
		idx++
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query += fmt.Sprintf(" ORDER BY nome ASC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var empresas []Empresa
	for rows.Next() {
		e, err := scanEmpresa(rows)
		if err != nil {
			return nil, err
		}
		empresas = append(empresas, *e)
	}
	return empresas, rows.Err()
}

// Atualizar altera campos cadastrais informados.
func (r *Repository) Atualizar(ctx context.Context, input UpdateInput) (*Empresa, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	set := func(column string, value any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, idx))
		args = append(args, value)
		idx++
	}

	if input.Nome != nil {
		set("nome", strings.TrimSpace(*input.Nome))
	}
	if input.Logradouro != nil {
		set("logradouro", strings.TrimSpace(*input.Logradouro))
	}
	if input.Numero != nil {
		set("numero", strings.TrimSpace(*input.Numero))
	}
	if input.Cidade != nil {
		set("cidade", strings.TrimSpace(*input.Cidade))
	}
	if input.EstadoID != nil {
		set("estado_id", *input.EstadoID)
	}
	if input.RamoAtividade != nil {
		set("ramo_atividade", strings.TrimSpace(*input.RamoAtividade))
	}
	if input.Email != nil {
		set("email", strings.ToLower(strings.TrimSpace(*input.Email)))
	}
	if input.Telefone != nil {
		set("telefone", strings.TrimSpace(*input.Telefone))
	}

	if len(setParts) == 0 {
		return r.Obter(ctx, input.ID)
	}

	setParts = append(setParts, "atualizado_em = now()")
	args = append(args, input.ID)

	query := fmt.Sprintf(`UPDATE empresas SET %s WHERE id = $%d RETURNING `+empresaColumns,
		strings.Join(setParts, ", "), idx)

	row := r.pool.QueryRow(ctx, query, args...)
	e, err := scanEmpresa(row)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, repo.ErrDuplicate
		}
		return nil, err
	}
	return e, nil
}

// AlternarStatus inverte Ativa/Inativa e retorna o novo estado.
func (r *Repository) AlternarStatus(ctx context.Context, id uuid.UUID) (*Empresa, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE empresas
        SET ativa = NOT ativa, atualizado_em = now()
        WHERE id = $1
        RETURNING `+empresaColumns, id)
	return scanEmpresa(row)
}

// EstadoExiste verifica a referência de estado.
func (r *Repository) EstadoExiste(ctx context.Context, estadoID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM estados WHERE id = $1)`, estadoID).Scan(&exists)
	return exists, err
}

// ObterConfiguracao lê exigências de ponto e geofence.
func (r *Repository) ObterConfiguracao(ctx context.Context, empresaID uuid.UUID) (*Configuracao, error) {
	var c Configuracao
	err := r.pool.QueryRow(ctx, `
        SELECT empresa_id, requer_foto, requer_localizacao, latitude, longitude, raio_metros
        FROM empresas_configuracoes
        WHERE empresa_id = $1
    `, empresaID).Scan(&c.EmpresaID, &c.RequerFoto, &c.RequerLocalizacao, &c.Latitude, &c.Longitude, &c.RaioMetros)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// SalvarConfiguracao grava exigências de ponto e geofence.
func (r *Repository) SalvarConfiguracao(ctx context.Context, c Configuracao) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO empresas_configuracoes (empresa_id, requer_foto, requer_localizacao, latitude, longitude, raio_metros)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (empresa_id) DO UPDATE SET
            requer_foto = EXCLUDED.requer_foto,
            requer_localizacao = EXCLUDED.requer_localizacao,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            raio_metros = EXCLUDED.raio_metros
    `, c.EmpresaID, c.RequerFoto, c.RequerLocalizacao, c.Latitude, c.Longitude, c.RaioMetros)
	return err
}

// CriarAdmin cria usuário nível ADMIN e o vínculo de administrador em uma
// única transação. A empresa precisa existir.
func (r *Repository) CriarAdmin(ctx context.Context, input AdminInput, senhaHash string) (*Admin, error) {
	var a *Admin
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var empresaID uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT id FROM empresas WHERE id = $1`, input.EmpresaID).Scan(&empresaID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		var usuarioID uuid.UUID
		err = tx.QueryRow(ctx, `
            INSERT INTO usuarios (nome, email, senha_hash, nivel, ativo, empresa_id)
            VALUES ($1, $2, $3, $4, TRUE, $5)
            RETURNING id
        `,
			strings.TrimSpace(input.Nome),
			strings.ToLower(strings.TrimSpace(input.Email)),
			senhaHash,
			repo.NivelAdmin,
			input.EmpresaID,
		).Scan(&usuarioID)
		if err != nil {
			if repo.IsUniqueViolation(err) {
				return repo.ErrDuplicate
			}
			return err
		}

		created := Admin{
			UsuarioID: usuarioID,
			EmpresaID: input.EmpresaID,
			Nome:      strings.TrimSpace(input.Nome),
			Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		}
		err = tx.QueryRow(ctx, `
            INSERT INTO admins (usuario_id, empresa_id)
            VALUES ($1, $2)
            RETURNING id, criado_em
        `, usuarioID, input.EmpresaID).Scan(&created.ID, &created.CriadoEm)
		if err != nil {
			return err
		}

		a = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Ordem de remoção das tabelas dependentes de cada funcionário. A sequência é
// declarada uma única vez; esquecer uma tabela aqui é o único ponto de falha.
var cascataFuncionario = []string{
	`DELETE FROM registros_ponto WHERE funcionario_id = $1`,
	`DELETE FROM solicitacoes_alteracao WHERE funcionario_id = $1`,
	`DELETE FROM jornadas_trabalho WHERE funcionario_id = $1`,
	`DELETE FROM ocorrencias WHERE funcionario_id = $1`,
	`DELETE FROM fechamentos_folha WHERE funcionario_id = $1`,
	`DELETE FROM funcionarios WHERE id = $1`,
}

// Remover apaga a empresa e todas as linhas dependentes em uma única
// transação, com lock pessimista na linha da empresa.
func (r *Repository) Remover(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var locked uuid.UUID
		if err := tx.QueryRow(ctx,
			`SELECT id FROM empresas WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		// Funcionários e seus dependentes.
		rows, err := tx.Query(ctx,
			`SELECT id, usuario_id FROM funcionarios WHERE empresa_id = $1`, id)
		if err != nil {
			return err
		}
		type vinculo struct{ funcID, usuarioID uuid.UUID }
		var funcionarios []vinculo
		for rows.Next() {
			var v vinculo
			if err := rows.Scan(&v.funcID, &v.usuarioID); err != nil {
				rows.Close()
				return err
			}
			funcionarios = append(funcionarios, v)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, f := range funcionarios {
			for _, stmt := range cascataFuncionario {
				if _, err := tx.Exec(ctx, stmt, f.funcID); err != nil {
					return err
				}
			}
			if err := removerUsuarioSeOrfao(ctx, tx, f.usuarioID); err != nil {
				return err
			}
		}

		// Admins da empresa.
		adminRows, err := tx.Query(ctx,
			`SELECT id, usuario_id FROM admins WHERE empresa_id = $1`, id)
		if err != nil {
			return err
		}
		var admins []vinculo
		for adminRows.Next() {
			var v vinculo
			if err := adminRows.Scan(&v.funcID, &v.usuarioID); err != nil {
				adminRows.Close()
				return err
			}
			admins = append(admins, v)
		}
		adminRows.Close()
		if err := adminRows.Err(); err != nil {
			return err
		}

		for _, a := range admins {
			if _, err := tx.Exec(ctx, `DELETE FROM admins WHERE id = $1`, a.funcID); err != nil {
				return err
			}
			if err := removerUsuarioSeOrfao(ctx, tx, a.usuarioID); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM empresas_configuracoes WHERE empresa_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM empresas WHERE id = $1`, id); err != nil {
			return err
		}
		return nil
	})
}

// removerUsuarioSeOrfao apaga o usuário apenas quando não resta vínculo de
// admin ou funcionário em outra empresa.
func removerUsuarioSeOrfao(ctx context.Context, tx pgx.Tx, usuarioID uuid.UUID) error {
	var vinculado bool
	err := tx.QueryRow(ctx, `
        SELECT EXISTS(SELECT 1 FROM admins WHERE usuario_id = $1)
            OR EXISTS(SELECT 1 FROM funcionarios WHERE usuario_id = $1)
    `, usuarioID).Scan(&vinculado)
	if err != nil {
		return err
	}
	if vinculado {
		return nil
	}
	_, err = tx.Exec(ctx, `DELETE FROM tokens_refresh WHERE subject = $1`, usuarioID)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, usuarioID)
	return err
}

func scanEmpresa(row pgx.Row) (*Empresa, error) {
	var e Empresa
	if err := row.Scan(&e.ID, &e.Nome, &e.CNPJ, &e.Logradouro, &e.Numero, &e.Cidade, &e.EstadoID,
		&e.RamoAtividade, &e.Email, &e.Telefone, &e.Ativa, &e.CriadoEm, &e.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
