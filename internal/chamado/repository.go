package chamado

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso às tabelas de chamados.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const chamadoColumns = `id, solicitante_id, empresa_id, assunto, categoria, descricao, status, prioridade, foto_url, atribuido_a, criado_em, atualizado_em, fechado_em`

// Criar insere um novo chamado.
func (r *Repository) Criar(ctx context.Context, input CreateInput, fotoURL *string) (*Chamado, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO chamados (solicitante_id, empresa_id, assunto, categoria, descricao, status, prioridade, foto_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+chamadoColumns,
		input.SolicitanteID,
		input.EmpresaID,
		strings.TrimSpace(input.Assunto),
		strings.TrimSpace(input.Categoria),
		strings.TrimSpace(input.Descricao),
		StatusAberto,
		input.Prioridade,
		fotoURL,
	)
	return scanChamado(row)
}

// Obter busca um chamado específico.
func (r *Repository) Obter(ctx context.Context, id uuid.UUID) (*Chamado, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+chamadoColumns+`
        FROM chamados
        WHERE id = $1
    `, id)
	return scanChamado(row)
}

// Listar lista chamados aplicando filtros simples.
func (r *Repository) Listar(ctx context.Context, filter Filter) ([]Chamado, error) {
	base := `
        SELECT ` + chamadoColumns + `
        FROM chamados`

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.SolicitanteID != nil {
		clauses = append(clauses, fmt.Sprintf("solicitante_id = $%d", idx))
		args = append(args, *filter.SolicitanteID)
		idx++
	}
	if filter.EmpresaID != nil {
		clauses = append(clauses, fmt.Sprintf("empresa_id = $%d", idx))
		args = append(args, *filter.EmpresaID)
		idx++
	}
	if len(filter.Status) > 0 {
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", idx))
		args = append(args, filter.Status)
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

	query += fmt.Sprintf(" ORDER BY criado_em DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chamados []Chamado
	for rows.Next() {
		c, err := scanChamado(rows)
		if err != nil {
			return nil, err
		}
		chamados = append(chamados, *c)
	}
	return chamados, rows.Err()
}

// Atualizar altera campos do chamado.
func (r *Repository) Atualizar(ctx context.Context, input UpdateInput) (*Chamado, error) {
	setParts := []string{}
	args := []any{}
	idx := 1

	if input.Status != nil {
		setParts = append(setParts, fmt.Sprintf("status = $%d", idx))
		args = append(args, strings.TrimSpace(*input.Status))
		idx++
	}
	if input.Prioridade != nil {
		setParts = append(setParts, fmt.Sprintf("prioridade = $%d", idx))
		args = append(args, strings.ToLower(strings.TrimSpace(*input.Prioridade)))
		idx++
	}
	if input.AtribuidoA != nil {
		setParts = append(setParts, fmt.Sprintf("atribuido_a = $%d", idx))
		args = append(args, *input.AtribuidoA)
		idx++
	} else if input.LimparAtribuido {
		setParts = append(setParts, "atribuido_a = NULL")
	}

	if input.FechadoEm != nil {
		setParts = append(setParts, fmt.Sprintf("fechado_em = $%d", idx))
		args = append(args, *input.FechadoEm)
		idx++
	} else if input.Status != nil {
		// reabertura limpa fechado_em
		setParts = append(setParts, "fechado_em = NULL")
	}

	if len(setParts) == 0 {
		return r.Obter(ctx, input.ID)
	}

	setParts = append(setParts, "atualizado_em = now()")

	args = append(args, input.ID)
	query := fmt.Sprintf(`
        UPDATE chamados
        SET %s
        WHERE id = $%d
        RETURNING `+chamadoColumns, strings.Join(setParts, ", "), idx)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanChamado(row)
}

// CriarMensagem insere interação no chamado.
func (r *Repository) CriarMensagem(ctx context.Context, chamadoID, autorID uuid.UUID, corpo string) (*Mensagem, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO chamados_mensagens (chamado_id, autor_id, corpo)
        VALUES ($1, $2, $3)
        RETURNING id, chamado_id, autor_id, corpo, criado_em
    `, chamadoID, autorID, strings.TrimSpace(corpo))
	return scanMensagem(row)
}

// ListarMensagens lista o histórico de interações do chamado.
func (r *Repository) ListarMensagens(ctx context.Context, chamadoID uuid.UUID) ([]Mensagem, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, chamado_id, autor_id, corpo, criado_em
        FROM chamados_mensagens
        WHERE chamado_id = $1
        ORDER BY criado_em ASC
    `, chamadoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mensagens []Mensagem
	for rows.Next() {
		m, err := scanMensagem(rows)
		if err != nil {
			return nil, err
		}
		mensagens = append(mensagens, *m)
	}
	return mensagens, rows.Err()
}

func scanChamado(row pgx.Row) (*Chamado, error) {
	var c Chamado
	err := row.Scan(
		&c.ID,
		&c.SolicitanteID,
		&c.EmpresaID,
		&c.Assunto,
		&c.Categoria,
		&c.Descricao,
		&c.Status,
		&c.Prioridade,
		&c.FotoURL,
		&c.AtribuidoA,
		&c.CriadoEm,
		&c.AtualizadoEm,
		&c.FechadoEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanMensagem(row pgx.Row) (*Mensagem, error) {
	var m Mensagem
	err := row.Scan(&m.ID, &m.ChamadoID, &m.AutorID, &m.Corpo, &m.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMensagemNotFound
		}
		return nil, err
	}
	return &m, nil
}
