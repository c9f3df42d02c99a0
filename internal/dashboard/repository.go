package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository concentra as consultas de agregação do painel.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ContarFuncionariosPorStatus conta funcionários ativos e inativos da empresa.
func (r *Repository) ContarFuncionariosPorStatus(ctx context.Context, empresaID uuid.UUID) (ativos, inativos int, err error) {
	err = r.pool.QueryRow(ctx, `
        SELECT
            COUNT(*) FILTER (WHERE u.ativo),
            COUNT(*) FILTER (WHERE NOT u.ativo)
        FROM funcionarios f
        JOIN usuarios u ON u.id = f.usuario_id
        WHERE f.empresa_id = $1
    `, empresaID).Scan(&ativos, &inativos)
	if err != nil {
		return 0, 0, fmt.Errorf("contar funcionários por status: %w", err)
	}
	return ativos, inativos, nil
}

// ContarFuncionariosPorContrato agrupa funcionários por tipo de contrato.
func (r *Repository) ContarFuncionariosPorContrato(ctx context.Context, empresaID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT tipo_contrato, COUNT(*)
        FROM funcionarios
        WHERE empresa_id = $1
        GROUP BY tipo_contrato
    `, empresaID)
	if err != nil {
		return nil, fmt.Errorf("contar funcionários por contrato: %w", err)
	}
	defer rows.Close()

	totais := make(map[string]int)
	for rows.Next() {
		var tipo string
		var total int
		if err := rows.Scan(&tipo, &total); err != nil {
			return nil, err
		}
		totais[tipo] = total
	}
	return totais, rows.Err()
}

// ContarRegistrosPorStatus agrupa registros de ponto por status de aprovação.
func (r *Repository) ContarRegistrosPorStatus(ctx context.Context, empresaID uuid.UUID) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT r.status, COUNT(*)
        FROM registros_ponto r
        JOIN funcionarios f ON f.id = r.funcionario_id
        WHERE f.empresa_id = $1
        GROUP BY r.status
    `, empresaID)
	if err != nil {
		return nil, fmt.Errorf("contar registros por status: %w", err)
	}
	defer rows.Close()

	totais := make(map[string]int)
	for rows.Next() {
		var status string
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, err
		}
		totais[status] = total
	}
	return totais, rows.Err()
}

// UltimosPendentes devolve os registros pendentes mais recentes da empresa.
func (r *Repository) UltimosPendentes(ctx context.Context, empresaID uuid.UUID, limite int) ([]RegistroResumo, error) {
	if limite <= 0 || limite > 50 {
		limite = 10
	}
	rows, err := r.pool.Query(ctx, `
        SELECT r.id, r.funcionario_id, u.nome, r.tipo, r.timestamp
        FROM registros_ponto r
        JOIN funcionarios f ON f.id = r.funcionario_id
        JOIN usuarios u ON u.id = f.usuario_id
        WHERE f.empresa_id = $1 AND r.status = 'Pendente'
        ORDER BY r.timestamp DESC
        LIMIT $2
    `, empresaID, limite)
	if err != nil {
		return nil, fmt.Errorf("listar últimos pendentes: %w", err)
	}
	defer rows.Close()

	registros := make([]RegistroResumo, 0, limite)
	for rows.Next() {
		var reg RegistroResumo
		if err := rows.Scan(&reg.ID, &reg.FuncionarioID, &reg.FuncionarioNome, &reg.Tipo, &reg.Timestamp); err != nil {
			return nil, err
		}
		registros = append(registros, reg)
	}
	return registros, rows.Err()
}

// RegistrosPorMes agrupa registros pelos últimos doze meses.
func (r *Repository) RegistrosPorMes(ctx context.Context, empresaID uuid.UUID) ([]TotalMensal, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT to_char(date_trunc('month', r.timestamp), 'YYYY-MM') AS mes, COUNT(*)
        FROM registros_ponto r
        JOIN funcionarios f ON f.id = r.funcionario_id
        WHERE f.empresa_id = $1
          AND r.timestamp >= date_trunc('month', NOW()) - INTERVAL '11 months'
        GROUP BY mes
        ORDER BY mes
    `, empresaID)
	if err != nil {
		return nil, fmt.Errorf("agrupar registros por mês: %w", err)
	}
	defer rows.Close()

	totais := make([]TotalMensal, 0, 12)
	for rows.Next() {
		var t TotalMensal
		if err := rows.Scan(&t.Mes, &t.Total); err != nil {
			return nil, err
		}
		totais = append(totais, t)
	}
	return totais, rows.Err()
}
