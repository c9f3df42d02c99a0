package chamado

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/storage"
	"github.com/pontodigital/plataforma/internal/util"
)

const maxAnexoBytes = 5 << 20

// Tipos de anexo aceitos: imagens e documentos pequenos.
var anexosPermitidos = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// RepositoryProvider abstrai o acesso a dados para facilitar testes.
type RepositoryProvider interface {
	Criar(ctx context.Context, input CreateInput, fotoURL *string) (*Chamado, error)
	Obter(ctx context.Context, id uuid.UUID) (*Chamado, error)
	Listar(ctx context.Context, filter Filter) ([]Chamado, error)
	Atualizar(ctx context.Context, input UpdateInput) (*Chamado, error)
	CriarMensagem(ctx context.Context, chamadoID, autorID uuid.UUID, corpo string) (*Mensagem, error)
	ListarMensagens(ctx context.Context, chamadoID uuid.UUID) ([]Mensagem, error)
}

// Service reúne regras de negócio para chamados de suporte.
type Service struct {
	repo     RepositoryProvider
	uploader storage.Uploader
}

// NewService cria uma nova instância do serviço.
func NewService(repo RepositoryProvider, uploader storage.Uploader) *Service {
	return &Service{repo: repo, uploader: uploader}
}

// Abrir abre um novo chamado, subindo o anexo quando presente.
func (s *Service) Abrir(ctx context.Context, input CreateInput) (*Chamado, error) {
	input.Assunto = strings.TrimSpace(input.Assunto)
	input.Categoria = strings.TrimSpace(input.Categoria)
	input.Descricao = strings.TrimSpace(input.Descricao)
	input.Prioridade = NormalizarPrioridade(input.Prioridade)

	if input.Assunto == "" {
		return nil, errors.New("assunto obrigatório")
	}
	if input.Categoria == "" {
		return nil, errors.New("categoria obrigatória")
	}
	if input.Descricao == "" {
		return nil, errors.New("descrição obrigatória")
	}
	if !PrioridadeValida(input.Prioridade) {
		return nil, ErrPrioridadeInvalid
	}

	var fotoURL *string
	if len(input.Anexo) > 0 {
		url, err := s.subirAnexo(ctx, input.SolicitanteID, input.Anexo, input.AnexoTipo)
		if err != nil {
			return nil, err
		}
		fotoURL = &url
	}

	return s.repo.Criar(ctx, input, fotoURL)
}

// Obter recupera um chamado.
func (s *Service) Obter(ctx context.Context, id uuid.UUID) (*Chamado, error) {
	return s.repo.Obter(ctx, id)
}

// Listar lista chamados dentro do filtro informado.
func (s *Service) Listar(ctx context.Context, filter Filter) ([]Chamado, error) {
	if len(filter.Status) > 0 {
		validos := make([]string, 0, len(filter.Status))
		for _, status := range filter.Status {
			status = strings.TrimSpace(status)
			if StatusValido(status) {
				validos = append(validos, status)
			}
		}
		filter.Status = validos
	}
	return s.repo.Listar(ctx, filter)
}

// Atualizar altera status, prioridade e atribuição.
func (s *Service) Atualizar(ctx context.Context, id uuid.UUID, status, prioridade *string, atribuidoA *uuid.UUID, limparAtribuido bool) (*Chamado, error) {
	update := UpdateInput{
		ID:              id,
		AtribuidoA:      atribuidoA,
		LimparAtribuido: limparAtribuido,
	}

	if status != nil {
		valor := strings.TrimSpace(*status)
		if !StatusValido(valor) {
			return nil, ErrStatusInvalid
		}
		update.Status = &valor

		switch valor {
		case StatusResolvido, StatusFechado:
			agora := time.Now()
			update.FechadoEm = &agora
		}
	}

	if prioridade != nil {
		valor := NormalizarPrioridade(*prioridade)
		if !PrioridadeValida(valor) {
			return nil, ErrPrioridadeInvalid
		}
		update.Prioridade = &valor
	}

	return s.repo.Atualizar(ctx, update)
}

// AdicionarMensagem adiciona nova interação ao chamado.
func (s *Service) AdicionarMensagem(ctx context.Context, chamadoID, autorID uuid.UUID, corpo string) (*Mensagem, error) {
	corpo = strings.TrimSpace(corpo)
	if corpo == "" {
		return nil, errors.New("mensagem obrigatória")
	}
	if _, err := s.repo.Obter(ctx, chamadoID); err != nil {
		return nil, err
	}
	return s.repo.CriarMensagem(ctx, chamadoID, autorID, corpo)
}

// ListarMensagens lista o histórico do chamado.
func (s *Service) ListarMensagens(ctx context.Context, chamadoID uuid.UUID) ([]Mensagem, error) {
	if _, err := s.repo.Obter(ctx, chamadoID); err != nil {
		return nil, err
	}
	return s.repo.ListarMensagens(ctx, chamadoID)
}

func (s *Service) subirAnexo(ctx context.Context, solicitanteID uuid.UUID, anexo []byte, contentType string) (string, error) {
	if len(anexo) > maxAnexoBytes {
		return "", ErrAnexoGrande
	}
	extensao, ok := anexosPermitidos[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", ErrAnexoInvalido
	}

	res, err := s.uploader.Upload(ctx, storage.UploadInput{
		Key:         fmt.Sprintf("chamados/%s/%s%s", solicitanteID, util.NewID(), extensao),
		Body:        anexo,
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload do anexo: %w", err)
	}
	return res.URL, nil
}
