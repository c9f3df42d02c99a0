package folha

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso às tabelas de fechamento de folha.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const fechamentoColumns = `
    fl.id, fl.funcionario_id, fl.competencia, fl.horas_trabalhadas,
    fl.horas_previstas, fl.saldo_horas, fl.status, fl.aprovador_id,
    fl.criado_em, fl.atualizado_em`

// Salvar grava ou recalcula o fechamento da competência. Totais só mudam
// enquanto o fechamento está Aberto.
func (r *Repository) Salvar(ctx context.Context, f *FechamentoFolha) error {
	return r.pool.QueryRow(ctx, `
        INSERT INTO fechamentos_folha AS fl
            (funcionario_id, competencia, horas_trabalhadas, horas_previstas, saldo_horas, status)
        VALUES ($1, $2, $3, $4, $5, 'Aberto')
        ON CONFLICT (funcionario_id, competencia) DO UPDATE
        SET horas_trabalhadas = EXCLUDED.horas_trabalhadas,
            horas_previstas = EXCLUDED.horas_previstas,
            saldo_horas = EXCLUDED.saldo_horas,
            atualizado_em = now()
        WHERE fl.status = 'Aberto'
        RETURNING fl.id, fl.status, fl.criado_em, fl.atualizado_em
    `,
		f.FuncionarioID,
		f.Competencia,
		f.HorasTrabalhadas,
		f.HorasPrevistas,
		f.SaldoHoras,
	).Scan(&f.ID, &f.Status, &f.CriadoEm, &f.AtualizadoEm)
}

// Obter carrega um fechamento no escopo da empresa.
func (r *Repository) Obter(ctx context.Context, id, empresaID uuid.UUID) (*FechamentoFolha, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT`+fechamentoColumns+`
        FROM fechamentos_folha fl
        JOIN funcionarios f ON f.id = fl.funcionario_id
        WHERE fl.id = $1 AND f.empresa_id = $2
    `, id, empresaID)

	f, err := scanFechamento(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("obter fechamento: %w", err)
	}
	return f, nil
}

// Listar lista fechamentos da empresa, opcionalmente por competência.
func (r *Repository) Listar(ctx context.Context, empresaID uuid.UUID, competencia string) ([]FechamentoFolha, error) {
	clauses := []string{"f.empresa_id = $1"}
	args := []any{empresaID}
	if competencia != "" {
		args = append(args, competencia)
		clauses = append(clauses, fmt.Sprintf("fl.competencia = $%d", len(args)))
	}

	query := `
        SELECT` + fechamentoColumns + `
        FROM fechamentos_folha fl
        JOIN funcionarios f ON f.id = fl.funcionario_id
        WHERE ` + strings.Join(clauses, " AND ") + `
        ORDER BY fl.competencia DESC, fl.criado_em DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar fechamentos: %w", err)
	}
	defer rows.Close()

	fechamentos := make([]FechamentoFolha, 0)
	for rows.Next() {
		f, err := scanFechamento(rows)
		if err != nil {
			return nil, err
		}
		fechamentos = append(fechamentos, *f)
	}
	return fechamentos, rows.Err()
}

// Transicionar move o fechamento de um estado para o próximo. O WHERE sobre o
// estado de origem impede transição repetida ou fora de ordem.
func (r *Repository) Transicionar(ctx context.Context, id, empresaID uuid.UUID, de, para string, aprovadorID *uuid.UUID) (*FechamentoFolha, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE fechamentos_folha fl
        SET status = $1, aprovador_id = COALESCE($2, fl.aprovador_id), atualizado_em = now()
        FROM funcionarios f
        WHERE fl.id = $3
          AND f.id = fl.funcionario_id
          AND f.empresa_id = $4
          AND fl.status = $5
        RETURNING `+fechamentoColumns,
		para, aprovadorID, id, empresaID, de)

	f, err := scanFechamento(row)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("transicionar fechamento: %w", err)
	}

	if _, err := r.Obter(ctx, id, empresaID); err != nil {
		return nil, err
	}
	return nil, ErrTransicaoInvalida
}

// ListarPontosAprovados devolve os registros aprovados do período em ordem cronológica.
func (r *Repository) ListarPontosAprovados(ctx context.Context, funcionarioID uuid.UUID, inicio, fim time.Time) ([]Ponto, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT tipo, timestamp
        FROM registros_ponto
        WHERE funcionario_id = $1
          AND status = 'Aprovado'
          AND timestamp >= $2 AND timestamp < $3
        ORDER BY timestamp ASC
    `, funcionarioID, inicio, fim)
	if err != nil {
		return nil, fmt.Errorf("listar pontos aprovados: %w", err)
	}
	defer rows.Close()

	pontos := make([]Ponto, 0)
	for rows.Next() {
		var p Ponto
		if err := rows.Scan(&p.Tipo, &p.Timestamp); err != nil {
			return nil, err
		}
		pontos = append(pontos, p)
	}
	return pontos, rows.Err()
}

func scanFechamento(row pgx.Row) (*FechamentoFolha, error) {
	var f FechamentoFolha
	err := row.Scan(
		&f.ID,
		&f.FuncionarioID,
		&f.Competencia,
		&f.HorasTrabalhadas,
		&f.HorasPrevistas,
		&f.SaldoHoras,
		&f.Status,
		&f.AprovadorID,
		&f.CriadoEm,
		&f.AtualizadoEm,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
