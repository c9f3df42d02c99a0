package chamado

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/storage"
)

type stubRepo struct {
	criado   *CreateInput
	fotoURL  *string
	chamado  *Chamado
	mensagem *Mensagem
}

func (s *stubRepo) Criar(ctx context.Context, input CreateInput, fotoURL *string) (*Chamado, error) {
	s.criado = &input
	s.fotoURL = fotoURL
	return &Chamado{
		ID:            uuid.New(),
		SolicitanteID: input.SolicitanteID,
		Assunto:       input.Assunto,
		Status:        StatusAberto,
		Prioridade:    input.Prioridade,
		FotoURL:       fotoURL,
	}, nil
}

func (s *stubRepo) Obter(ctx context.Context, id uuid.UUID) (*Chamado, error) {
	if s.chamado == nil || s.chamado.ID != id {
		return nil, ErrNotFound
	}
	return s.chamado, nil
}

func (s *stubRepo) Listar(ctx context.Context, filter Filter) ([]Chamado, error) {
	return nil, nil
}

func (s *stubRepo) Atualizar(ctx context.Context, input UpdateInput) (*Chamado, error) {
	if s.chamado == nil || s.chamado.ID != input.ID {
		return nil, ErrNotFound
	}
	if input.Status != nil {
		s.chamado.Status = *input.Status
	}
	if input.Prioridade != nil {
		s.chamado.Prioridade = *input.Prioridade
	}
	s.chamado.FechadoEm = input.FechadoEm
	return s.chamado, nil
}

func (s *stubRepo) CriarMensagem(ctx context.Context, chamadoID, autorID uuid.UUID, corpo string) (*Mensagem, error) {
	s.mensagem = &Mensagem{ID: uuid.New(), ChamadoID: chamadoID, AutorID: autorID, Corpo: corpo}
	return s.mensagem, nil
}

func (s *stubRepo) ListarMensagens(ctx context.Context, chamadoID uuid.UUID) ([]Mensagem, error) {
	if s.mensagem == nil {
		return nil, nil
	}
	return []Mensagem{*s.mensagem}, nil
}

type stubUploader struct {
	chamadas int
	ultimo   storage.UploadInput
}

func (s *stubUploader) Upload(ctx context.Context, input storage.UploadInput) (*storage.UploadResult, error) {
	s.chamadas++
	s.ultimo = input
	return &storage.UploadResult{URL: "https://cdn.example.com/" + input.Key}, nil
}

func aberturaValida() CreateInput {
	return CreateInput{
		SolicitanteID: uuid.New(),
		Assunto:       "Relógio de ponto fora do ar",
		Categoria:     "infraestrutura",
		Descricao:     "O terminal da recepção não responde desde as 8h.",
	}
}

func TestAbrirAplicaPrioridadePadrao(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubUploader{})

	c, err := svc.Abrir(context.Background(), aberturaValida())
	if err != nil {
		t.Fatalf("abrir: %v", err)
	}
	if c.Prioridade != PrioridadeMedia {
		t.Fatalf("expected prioridade media, got %s", c.Prioridade)
	}
	if c.Status != StatusAberto {
		t.Fatalf("expected status Aberto, got %s", c.Status)
	}
}

func TestAbrirExigeCamposObrigatorios(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubUploader{})

	casos := []struct {
		nome string
		muta func(*CreateInput)
	}{
		{"sem assunto", func(i *CreateInput) { i.Assunto = "  " }},
		{"sem categoria", func(i *CreateInput) { i.Categoria = "" }},
		{"sem descrição", func(i *CreateInput) { i.Descricao = "" }},
	}

	for _, caso := range casos {
		input := aberturaValida()
		caso.muta(&input)
		if _, err := svc.Abrir(context.Background(), input); err == nil {
			t.Errorf("%s: expected error", caso.nome)
		}
	}
}

func TestAbrirComAnexoValido(t *testing.T) {
	uploader := &stubUploader{}
	svc := NewService(&stubRepo{}, uploader)

	input := aberturaValida()
	input.Anexo = []byte("png-bytes")
	input.AnexoTipo = "image/png"

	c, err := svc.Abrir(context.Background(), input)
	if err != nil {
		t.Fatalf("abrir: %v", err)
	}
	if uploader.chamadas != 1 {
		t.Fatalf("expected 1 upload, got %d", uploader.chamadas)
	}
	if c.FotoURL == nil {
		t.Fatal("expected anexo URL")
	}
}

func TestAbrirRejeitaAnexoDeTipoProibido(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubUploader{})

	input := aberturaValida()
	input.Anexo = []byte("MZ...")
	input.AnexoTipo = "application/x-msdownload"

	if _, err := svc.Abrir(context.Background(), input); !errors.Is(err, ErrAnexoInvalido) {
		t.Fatalf("expected ErrAnexoInvalido, got %v", err)
	}
}

func TestAbrirRejeitaAnexoGrande(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubUploader{})

	input := aberturaValida()
	input.Anexo = make([]byte, maxAnexoBytes+1)
	input.AnexoTipo = "image/jpeg"

	if _, err := svc.Abrir(context.Background(), input); !errors.Is(err, ErrAnexoGrande) {
		t.Fatalf("expected ErrAnexoGrande, got %v", err)
	}
}

func TestAtualizarMarcaFechadoEm(t *testing.T) {
	chamado := &Chamado{ID: uuid.New(), Status: StatusEmAndamento}
	repo := &stubRepo{chamado: chamado}
	svc := NewService(repo, &stubUploader{})

	status := StatusResolvido
	atualizado, err := svc.Atualizar(context.Background(), chamado.ID, &status, nil, nil, false)
	if err != nil {
		t.Fatalf("atualizar: %v", err)
	}
	if atualizado.FechadoEm == nil {
		t.Fatal("expected fechado_em set when resolving")
	}
}

func TestAtualizarRejeitaStatusDesconhecido(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubUploader{})

	status := "Cancelado"
	if _, err := svc.Atualizar(context.Background(), uuid.New(), &status, nil, nil, false); !errors.Is(err, ErrStatusInvalid) {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}
}

func TestAdicionarMensagemExigeChamadoExistente(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubUploader{})

	_, err := svc.AdicionarMensagem(context.Background(), uuid.New(), uuid.New(), "alguma novidade?")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
