package registro

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

// Repository provê acesso às tabelas de registros de ponto e solicitações.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const registroColumns = `
    r.id, r.funcionario_id, r.tipo, r.timestamp, r.foto_url,
    r.latitude, r.longitude, r.precisao, r.dispositivo, r.hash,
    r.status, r.aprovador_id, r.justificativa, r.criado_em`

// Inserir grava a marcação já validada pelo serviço.
func (r *Repository) Inserir(ctx context.Context, reg *Registro) error {
	return r.pool.QueryRow(ctx, `
        INSERT INTO registros_ponto
            (funcionario_id, tipo, timestamp, foto_url, latitude, longitude, precisao, dispositivo, hash, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, criado_em
    `,
		reg.FuncionarioID,
		reg.Tipo,
		reg.Timestamp,
		reg.FotoURL,
		reg.Latitude,
		reg.Longitude,
		reg.Precisao,
		reg.Dispositivo,
		reg.Hash,
		reg.Status,
	).Scan(&reg.ID, &reg.CriadoEm)
}

// Obter carrega um registro dentro do escopo da empresa.
func (r *Repository) Obter(ctx context.Context, id, empresaID uuid.UUID) (*Registro, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT`+registroColumns+`
        FROM registros_ponto r
        JOIN funcionarios f ON f.id = r.funcionario_id
        WHERE r.id = $1 AND f.empresa_id = $2
    `, id, empresaID)

	reg, err := scanRegistro(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("obter registro: %w", err)
	}
	return reg, nil
}

// Listar aplica filtros dinâmicos sobre os registros da empresa.
func (r *Repository) Listar(ctx context.Context, filter Filter) ([]Registro, error) {
	clauses := []string{"f.empresa_id = $1"}
	args := []any{filter.EmpresaID}

	if filter.FuncionarioID != uuid.Nil {
		args = append(args, filter.FuncionarioID)
		clauses = append(clauses, fmt.Sprintf("r.funcionario_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		clauses = append(clauses, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if filter.DataInicio != nil {
		args = append(args, *filter.DataInicio)
		clauses = append(clauses, fmt.Sprintf("r.timestamp >= $%d", len(args)))
	}
	if filter.DataFim != nil {
		args = append(args, *filter.DataFim)
		clauses = append(clauses, fmt.Sprintf("r.timestamp < $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	limitClause := fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	offsetClause := fmt.Sprintf(" OFFSET $%d", len(args))

	query := `
        SELECT` + registroColumns + `
        FROM registros_ponto r
        JOIN funcionarios f ON f.id = r.funcionario_id
        WHERE ` + strings.Join(clauses, " AND ") + `
        ORDER BY r.timestamp DESC` + limitClause + offsetClause

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar registros: %w", err)
	}
	defer rows.Close()

	registros := make([]Registro, 0)
	for rows.Next() {
		reg, err := scanRegistro(rows)
		if err != nil {
			return nil, err
		}
		registros = append(registros, *reg)
	}
	return registros, rows.Err()
}

// ListarDoDia devolve as marcações de um funcionário em um dia, em ordem cronológica.
func (r *Repository) ListarDoDia(ctx context.Context, funcionarioID uuid.UUID, dia time.Time) ([]Registro, error) {
	inicio := time.Date(dia.Year(), dia.Month(), dia.Day(), 0, 0, 0, 0, time.UTC)
	fim := inicio.Add(24 * time.Hour)

	rows, err := r.pool.Query(ctx, `
        SELECT`+registroColumns+`
        FROM registros_ponto r
        WHERE r.funcionario_id = $1 AND r.timestamp >= $2 AND r.timestamp < $3
        ORDER BY r.timestamp ASC
    `, funcionarioID, inicio, fim)
	if err != nil {
		return nil, fmt.Errorf("listar registros do dia: %w", err)
	}
	defer rows.Close()

	registros := make([]Registro, 0)
	for rows.Next() {
		reg, err := scanRegistro(rows)
		if err != nil {
			return nil, err
		}
		registros = append(registros, *reg)
	}
	return registros, rows.Err()
}

// AtualizarStatus decide um registro pendente. O WHERE sobre o status garante
// que uma segunda decisão concorrente não sobrescreve a primeira.
func (r *Repository) AtualizarStatus(ctx context.Context, id, empresaID, aprovadorID uuid.UUID, status string, justificativa *string) (*Registro, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE registros_ponto r
        SET status = $1, aprovador_id = $2, justificativa = $3
        FROM funcionarios f
        WHERE r.id = $4
          AND f.id = r.funcionario_id
          AND f.empresa_id = $5
          AND r.status = 'Pendente'
        RETURNING `+registroColumns,
		status, aprovadorID, justificativa, id, empresaID)

	reg, err := scanRegistro(row)
	if err == nil {
		return reg, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("atualizar status do registro: %w", err)
	}

	// Nenhuma linha alterada: separa registro inexistente de já decidido.
	existente, obterErr := r.Obter(ctx, id, empresaID)
	if obterErr != nil {
		return nil, obterErr
	}
	if existente.Status != StatusPendente {
		return nil, ErrJaResolvido
	}
	return nil, ErrNotFound
}

// InserirSolicitacao grava pedido de correção já validado.
func (r *Repository) InserirSolicitacao(ctx context.Context, s *SolicitacaoAlteracao) error {
	return r.pool.QueryRow(ctx, `
        INSERT INTO solicitacoes_alteracao (registro_id, funcionario_id, tipo_correcao, motivo, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, criado_em
    `,
		s.RegistroID,
		s.FuncionarioID,
		s.TipoCorrecao,
		s.Motivo,
		s.Status,
	).Scan(&s.ID, &s.CriadoEm)
}

// ExisteSolicitacaoPendente indica se o registro já tem pedido em aberto.
func (r *Repository) ExisteSolicitacaoPendente(ctx context.Context, registroID uuid.UUID) (bool, error) {
	var existe bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM solicitacoes_alteracao
            WHERE registro_id = $1 AND status = 'Pendente'
        )
    `, registroID).Scan(&existe)
	if err != nil {
		return false, fmt.Errorf("verificar solicitação pendente: %w", err)
	}
	return existe, nil
}

const solicitacaoColumns = `
    s.id, s.registro_id, s.funcionario_id, s.tipo_correcao, s.motivo,
    s.status, s.resposta, s.resolvido_por, s.criado_em, s.resolvido_em`

// ListarSolicitacoes lista pedidos de correção da empresa, pendentes primeiro.
func (r *Repository) ListarSolicitacoes(ctx context.Context, empresaID uuid.UUID, status string) ([]SolicitacaoAlteracao, error) {
	clauses := []string{"f.empresa_id = $1"}
	args := []any{empresaID}
	if status != "" {
		args = append(args, status)
		clauses = append(clauses, fmt.Sprintf("s.status = $%d", len(args)))
	}

	query := `
        SELECT` + solicitacaoColumns + `
        FROM solicitacoes_alteracao s
        JOIN funcionarios f ON f.id = s.funcionario_id
        WHERE ` + strings.Join(clauses, " AND ") + `
        ORDER BY (s.status = 'Pendente') DESC, s.criado_em DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar solicitações: %w", err)
	}
	defer rows.Close()

	solicitacoes := make([]SolicitacaoAlteracao, 0)
	for rows.Next() {
		s, err := scanSolicitacao(rows)
		if err != nil {
			return nil, err
		}
		solicitacoes = append(solicitacoes, *s)
	}
	return solicitacoes, rows.Err()
}

// ListarSolicitacoesDoFuncionario devolve os pedidos do próprio funcionário.
func (r *Repository) ListarSolicitacoesDoFuncionario(ctx context.Context, funcionarioID uuid.UUID) ([]SolicitacaoAlteracao, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT`+solicitacaoColumns+`
        FROM solicitacoes_alteracao s
        WHERE s.funcionario_id = $1
        ORDER BY s.criado_em DESC
    `, funcionarioID)
	if err != nil {
		return nil, fmt.Errorf("listar solicitações do funcionário: %w", err)
	}
	defer rows.Close()

	solicitacoes := make([]SolicitacaoAlteracao, 0)
	for rows.Next() {
		s, err := scanSolicitacao(rows)
		if err != nil {
			return nil, err
		}
		solicitacoes = append(solicitacoes, *s)
	}
	return solicitacoes, rows.Err()
}

// ResolverSolicitacao fecha um pedido pendente. Decisão é terminal.
func (r *Repository) ResolverSolicitacao(ctx context.Context, id, empresaID, resolvedorID uuid.UUID, status, resposta string) (*SolicitacaoAlteracao, error) {
	row := r.pool.QueryRow(ctx, `
        UPDATE solicitacoes_alteracao s
        SET status = $1, resposta = $2, resolvido_por = $3, resolvido_em = NOW()
        FROM funcionarios f
        WHERE s.id = $4
          AND f.id = s.funcionario_id
          AND f.empresa_id = $5
          AND s.status = 'Pendente'
        RETURNING `+solicitacaoColumns,
		status, resposta, resolvedorID, id, empresaID)

	s, err := scanSolicitacao(row)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("resolver solicitação: %w", err)
	}

	var statusAtual string
	err = r.pool.QueryRow(ctx, `
        SELECT s.status
        FROM solicitacoes_alteracao s
        JOIN funcionarios f ON f.id = s.funcionario_id
        WHERE s.id = $1 AND f.empresa_id = $2
    `, id, empresaID).Scan(&statusAtual)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolver solicitação: %w", err)
	}
	return nil, ErrSolicitacaoResolvida
}

func scanRegistro(row pgx.Row) (*Registro, error) {
	var reg Registro
	err := row.Scan(
		&reg.ID,
		&reg.FuncionarioID,
		&reg.Tipo,
		&reg.Timestamp,
		&reg.FotoURL,
		&reg.Latitude,
		&reg.Longitude,
		&reg.Precisao,
		&reg.Dispositivo,
		&reg.Hash,
		&reg.Status,
		&reg.AprovadorID,
		&reg.Justificativa,
		&reg.CriadoEm,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func scanSolicitacao(row pgx.Row) (*SolicitacaoAlteracao, error) {
	var s SolicitacaoAlteracao
	err := row.Scan(
		&s.ID,
		&s.RegistroID,
		&s.FuncionarioID,
		&s.TipoCorrecao,
		&s.Motivo,
		&s.Status,
		&s.Resposta,
		&s.ResolvidoPor,
		&s.CriadoEm,
		&s.ResolvidoEm,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
