package funcionario

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

// Repository provê acesso às tabelas de funcionários e jornadas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const funcionarioColumns = `
    f.id, f.usuario_id, f.empresa_id, f.matricula, f.cargo, f.departamento,
    f.data_admissao, f.tipo_contrato, f.salario_base, f.criado_em,
    u.nome, u.email, u.cpf, u.ativo, u.foto_url`

const funcionarioFrom = ` FROM funcionarios f JOIN usuarios u ON u.id = f.usuario_id`

// Cadastrar cria usuário, funcionário e jornadas em uma única transação.
// Qualquer falha desfaz todas as inserções.
func (r *Repository) Cadastrar(ctx context.Context, input CreateInput, senhaHash string) (*Funcionario, error) {
	var f *Funcionario
	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var usuarioID uuid.UUID
		err := tx.QueryRow(ctx, `
            INSERT INTO usuarios (nome, email, senha_hash, nivel, cpf, ativo, empresa_id)
            VALUES ($1, $2, $3, $4, $5, TRUE, $6)
            RETURNING id
        `,
			strings.TrimSpace(input.Nome),
			strings.ToLower(strings.TrimSpace(input.Email)),
			senhaHash,
			repo.NivelFuncionario,
			input.CPF,
			input.EmpresaID,
		).Scan(&usuarioID)
		if err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
            INSERT INTO funcionarios (usuario_id, empresa_id, matricula, cargo, departamento, data_admissao, tipo_contrato, salario_base)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            RETURNING id, criado_em
        `,
			usuarioID,
			input.EmpresaID,
			strings.TrimSpace(input.Matricula),
			strings.TrimSpace(input.Cargo),
			strings.TrimSpace(input.Departamento),
			input.DataAdmissao,
			strings.TrimSpace(input.TipoContrato),
			input.SalarioBase,
		)

		created := Funcionario{
			UsuarioID:    usuarioID,
			EmpresaID:    input.EmpresaID,
			Matricula:    strings.TrimSpace(input.Matricula),
			Cargo:        strings.TrimSpace(input.Cargo),
			Departamento: strings.TrimSpace(input.Departamento),
			DataAdmissao: input.DataAdmissao,
			TipoContrato: strings.TrimSpace(input.TipoContrato),
			SalarioBase:  input.SalarioBase,
			Nome:         strings.TrimSpace(input.Nome),
			Email:        strings.ToLower(strings.TrimSpace(input.Email)),
			CPF:          input.CPF,
			Ativo:        true,
		}
		if err := row.Scan(&created.ID, &created.CriadoEm); err != nil {
			return err
		}

		for _, j := range input.Jornadas {
			if _, err := tx.Exec(ctx, `
                INSERT INTO jornadas_trabalho (funcionario_id, dia_semana, entrada, saida, inicio_intervalo, fim_intervalo)
                VALUES ($1, $2, $3, $4, $5, $6)
            `, created.ID, j.DiaSemana, j.Entrada, j.Saida, j.InicioIntervalo, j.FimIntervalo); err != nil {
				return err
			}
		}

		f = &created
		return nil
	})
	if err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, repo.ErrDuplicate
		}
		return nil, err
	}
	return f, nil
}

// Obter busca funcionário dentro do escopo da empresa.
func (r *Repository) Obter(ctx context.Context, id, empresaID uuid.UUID) (*Funcionario, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+funcionarioColumns+funcionarioFrom+` WHERE f.id = $1 AND f.empresa_id = $2`,
		id, empresaID)
	return scanFuncionario(row)
}

// ObterPorUsuario resolve o funcionário a partir do usuário autenticado.
func (r *Repository) ObterPorUsuario(ctx context.Context, usuarioID uuid.UUID) (*Funcionario, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT`+funcionarioColumns+funcionarioFrom+` WHERE f.usuario_id = $1`, usuarioID)
	return scanFuncionario(row)
}

// Listar lista funcionários da empresa aplicando filtros.
func (r *Repository) Listar(ctx context.Context, filter Filter) ([]Funcionario, error) {
	clauses := []string{"f.empresa_id = $1"}
	args := []any{filter.EmpresaID}
	idx := 2

	if dep := strings.TrimSpace(filter.Departamento); dep != "" {
		clauses = append(clauses, fmt.Sprintf("f.departamento = $%d", idx))
		args = append(args, dep)
		idx++
	}
	if filter.Ativo != nil {
		clauses = append(clauses, fmt.Sprintf("u.ativo = $%d", idx))
		args = append(args, *filter.Ativo)
		idx++
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `SELECT` + funcionarioColumns + funcionarioFrom +
		` WHERE ` + strings.Join(clauses, " AND ") +
		fmt.Sprintf(" ORDER BY u.nome ASC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var funcionarios []Funcionario
	for rows.Next() {
		f, err := scanFuncionario(rows)
		if err != nil {
			return nil, err
		}
		funcionarios = append(funcionarios, *f)
	}
	return funcionarios, rows.Err()
}

// Atualizar altera dados contratuais dentro do escopo da empresa.
func (r *Repository) Atualizar(ctx context.Context, input UpdateInput) (*Funcionario, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Cargo != nil {
		setParts = append(setParts, fmt.Sprintf("cargo = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Cargo))
		idx++
	}
	if input.Departamento != nil {
		setParts = append(setParts, fmt.Sprintf("departamento = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Departamento))
		idx++
	}
	if input.TipoContrato != nil {
		setParts = append(setParts, fmt.Sprintf("tipo_contrato = $%d", idx))
		args = append(args, strings.TrimSpace(*input.TipoContrato))
		idx++
	}
	if input.SalarioBase != nil {
		setParts = append(setParts, fmt.Sprintf("salario_base = $%d", idx))
		args = append(args, *input.SalarioBase)
		idx++
	}

	if len(setParts) == 0 {
		return r.Obter(ctx, input.ID, input.EmpresaID)
	}

	args = append(args, input.ID, input.EmpresaID)
	query := fmt.Sprintf(`UPDATE funcionarios SET %s WHERE id = $%d AND empresa_id = $%d`,
		strings.Join(setParts, ", "), idx, idx+1)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.Obter(ctx, input.ID, input.EmpresaID)
}

// SetAtivo ativa/desativa o usuário vinculado, restrito à empresa do chamador.
func (r *Repository) SetAtivo(ctx context.Context, id, empresaID uuid.UUID, ativo bool) error {
	tag, err := r.pool.Exec(ctx, `
        UPDATE usuarios u SET ativo = $3
        FROM funcionarios f
        WHERE f.usuario_id = u.id AND f.id = $1 AND f.empresa_id = $2
    `, id, empresaID, ativo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// cascataOffboarding apaga os dependentes do funcionário em ordem estrita
// de FK. A linha de funcionarios vem por último.
var cascataOffboarding = []string{
	`DELETE FROM jornadas_trabalho WHERE funcionario_id = $1`,
	`DELETE FROM solicitacoes_alteracao WHERE funcionario_id = $1`,
	`DELETE FROM registros_ponto WHERE funcionario_id = $1`,
	`DELETE FROM ocorrencias WHERE funcionario_id = $1`,
	`DELETE FROM fechamentos_folha WHERE funcionario_id = $1`,
	`DELETE FROM funcionarios WHERE id = $1`,
}

// Excluir remove funcionário e dependentes em ordem estrita de FK, em uma
// única transação. Exige usuário vinculado inativo.
func (r *Repository) Excluir(ctx context.Context, id, empresaID uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var (
			usuarioID uuid.UUID
			ativo     bool
		)
		err := tx.QueryRow(ctx, `
            SELECT u.id, u.ativo
            FROM funcionarios f
            JOIN usuarios u ON u.id = f.usuario_id
            WHERE f.id = $1 AND f.empresa_id = $2
            FOR UPDATE
        `, id, empresaID).Scan(&usuarioID, &ativo)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}
		if ativo {
			return ErrAindaAtivo
		}

		for _, stmt := range cascataOffboarding {
			if _, err := tx.Exec(ctx, stmt, id); err != nil {
				return err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM tokens_refresh WHERE subject = $1`, usuarioID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, usuarioID); err != nil {
			return err
		}
		return nil
	})
}

// DefinirJornada substitui integralmente a jornada semanal do funcionário.
func (r *Repository) DefinirJornada(ctx context.Context, id, empresaID uuid.UUID, jornadas []JornadaInput) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM funcionarios WHERE id = $1 AND empresa_id = $2)`,
			id, empresaID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM jornadas_trabalho WHERE funcionario_id = $1`, id); err != nil {
			return err
		}

		for _, j := range jornadas {
			if _, err := tx.Exec(ctx, `
                INSERT INTO jornadas_trabalho (funcionario_id, dia_semana, entrada, saida, inicio_intervalo, fim_intervalo)
                VALUES ($1, $2, $3, $4, $5, $6)
            `, id, j.DiaSemana, j.Entrada, j.Saida, j.InicioIntervalo, j.FimIntervalo); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListarJornada devolve a jornada semanal ordenada por dia.
func (r *Repository) ListarJornada(ctx context.Context, id uuid.UUID) ([]Jornada, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, funcionario_id, dia_semana, entrada, saida, inicio_intervalo, fim_intervalo
        FROM jornadas_trabalho
        WHERE funcionario_id = $1
        ORDER BY dia_semana ASC
    `, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jornadas []Jornada
	for rows.Next() {
		var j Jornada
		if err := rows.Scan(&j.ID, &j.FuncionarioID, &j.DiaSemana, &j.Entrada, &j.Saida, &j.InicioIntervalo, &j.FimIntervalo); err != nil {
			return nil, err
		}
		jornadas = append(jornadas, j)
	}
	return jornadas, rows.Err()
}

func scanFuncionario(row pgx.Row) (*Funcionario, error) {
	var f Funcionario
	err := row.Scan(
		&f.ID, &f.UsuarioID, &f.EmpresaID, &f.Matricula, &f.Cargo, &f.Departamento,
		&f.DataAdmissao, &f.TipoContrato, &f.SalarioBase, &f.CriadoEm,
		&f.Nome, &f.Email, &f.CPF, &f.Ativo, &f.FotoURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}
