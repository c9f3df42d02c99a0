package empresa

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/auth"
	pkgrepo "github.com/pontodigital/plataforma/internal/repo"
)

type stubRepo struct {
	criada       *CreateInput
	configuracao *Configuracao
	estados      map[int]bool
	ativa        bool
	adminHash    string
	adminErr     error
}

func (s *stubRepo) Criar(ctx context.Context, input CreateInput) (*Empresa, error) {
	s.criada = &input
	return &Empresa{ID: uuid.New(), Nome: input.Nome, CNPJ: input.CNPJ, Ativa: true}, nil
}

func (s *stubRepo) Obter(ctx context.Context, id uuid.UUID) (*Empresa, error) {
	return nil, ErrNotFound
}

func (s *stubRepo) Listar(ctx context.Context, filter Filter) ([]Empresa, error) {
	return nil, nil
}

func (s *stubRepo) Atualizar(ctx context.Context, input UpdateInput) (*Empresa, error) {
	return &Empresa{ID: input.ID}, nil
}

func (s *stubRepo) AlternarStatus(ctx context.Context, id uuid.UUID) (*Empresa, error) {
	s.ativa = !s.ativa
	return &Empresa{ID: id, Ativa: s.ativa}, nil
}

func (s *stubRepo) EstadoExiste(ctx context.Context, estadoID int) (bool, error) {
	return s.estados[estadoID], nil
}

func (s *stubRepo) CriarAdmin(ctx context.Context, input AdminInput, senhaHash string) (*Admin, error) {
	if s.adminErr != nil {
		return nil, s.adminErr
	}
	s.adminHash = senhaHash
	return &Admin{
		ID:        uuid.New(),
		UsuarioID: uuid.New(),
		EmpresaID: input.EmpresaID,
		Nome:      input.Nome,
		Email:     input.Email,
	}, nil
}

func (s *stubRepo) ObterConfiguracao(ctx context.Context, empresaID uuid.UUID) (*Configuracao, error) {
	if s.configuracao == nil {
		return &Configuracao{EmpresaID: empresaID}, nil
	}
	return s.configuracao, nil
}

func (s *stubRepo) SalvarConfiguracao(ctx context.Context, c Configuracao) error {
	s.configuracao = &c
	return nil
}

func (s *stubRepo) Remover(ctx context.Context, id uuid.UUID) error {
	return nil
}

func cadastroValido() CreateInput {
	return CreateInput{
		Nome:     "Mercado Bom Preço LTDA",
		CNPJ:     "11.222.333/0001-81",
		Cidade:   "Recife",
		EstadoID: 17,
		Email:    "contato@bompreco.com.br",
		Telefone: "(81) 3333-4444",
	}
}

func TestCadastrarNormalizaCNPJETelefone(t *testing.T) {
	repo := &stubRepo{estados: map[int]bool{17: true}}
	svc := NewService(repo)

	e, err := svc.Cadastrar(context.Background(), cadastroValido())
	if err != nil {
		t.Fatalf("cadastrar: %v", err)
	}
	if !e.Ativa {
		t.Fatal("expected empresa criada ativa")
	}
	if repo.criada.CNPJ != "11222333000181" {
		t.Fatalf("expected CNPJ sem máscara, got %q", repo.criada.CNPJ)
	}
	if repo.criada.Telefone != "8133334444" {
		t.Fatalf("expected telefone sem máscara, got %q", repo.criada.Telefone)
	}
}

func TestCadastrarRejeitaCNPJInvalido(t *testing.T) {
	svc := NewService(&stubRepo{estados: map[int]bool{17: true}})

	input := cadastroValido()
	input.CNPJ = "11.111.111/1111-11"
	if _, err := svc.Cadastrar(context.Background(), input); err == nil {
		t.Fatal("expected error for invalid CNPJ")
	}
}

func TestCadastrarRejeitaEstadoDesconhecido(t *testing.T) {
	svc := NewService(&stubRepo{estados: map[int]bool{}})

	if _, err := svc.Cadastrar(context.Background(), cadastroValido()); !errors.Is(err, ErrEstadoInvalid) {
		t.Fatalf("expected ErrEstadoInvalid, got %v", err)
	}
}

func TestAlternarStatusDuasVezesVoltaAoOriginal(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	id := uuid.New()

	primeira, err := svc.AlternarStatus(context.Background(), id)
	if err != nil {
		t.Fatalf("alternar: %v", err)
	}
	segunda, err := svc.AlternarStatus(context.Background(), id)
	if err != nil {
		t.Fatalf("alternar: %v", err)
	}
	if primeira.Ativa == segunda.Ativa {
		t.Fatal("expected toggling to invert status")
	}
}

func TestSalvarConfiguracaoExigeGeofenceCompleto(t *testing.T) {
	svc := NewService(&stubRepo{})
	lat := -8.0476

	err := svc.SalvarConfiguracao(context.Background(), Configuracao{
		EmpresaID: uuid.New(),
		Latitude:  &lat,
	})
	if err == nil {
		t.Fatal("expected error for partial geofence")
	}
}

func TestSalvarConfiguracaoRejeitaRaioNaoPositivo(t *testing.T) {
	svc := NewService(&stubRepo{})
	lat, lon, raio := -8.0476, -34.8770, 0.0

	err := svc.SalvarConfiguracao(context.Background(), Configuracao{
		EmpresaID:  uuid.New(),
		Latitude:   &lat,
		Longitude:  &lon,
		RaioMetros: &raio,
	})
	if err == nil {
		t.Fatal("expected error for zero radius")
	}
}

func TestSalvarConfiguracaoCompleta(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)
	lat, lon, raio := -8.0476, -34.8770, 150.0

	err := svc.SalvarConfiguracao(context.Background(), Configuracao{
		EmpresaID:         uuid.New(),
		RequerFoto:        true,
		RequerLocalizacao: true,
		Latitude:          &lat,
		Longitude:         &lon,
		RaioMetros:        &raio,
	})
	if err != nil {
		t.Fatalf("salvar configuração: %v", err)
	}
	if repo.configuracao == nil || !repo.configuracao.RequerFoto {
		t.Fatal("expected configuração persisted")
	}
}

func TestCadastrarAdminGuardaApenasHash(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo)

	admin, err := svc.CadastrarAdmin(context.Background(), AdminInput{
		EmpresaID: uuid.New(),
		Nome:      "Ana Lima",
		Email:     "ana@bompreco.com.br",
		Senha:     "senha-forte-123",
	})
	if err != nil {
		t.Fatalf("cadastrar admin: %v", err)
	}
	if admin.Email != "ana@bompreco.com.br" {
		t.Fatalf("unexpected email %q", admin.Email)
	}
	if repo.adminHash == "" || repo.adminHash == "senha-forte-123" {
		t.Fatal("expected senha hasheada antes de chegar ao repositório")
	}
	ok, err := auth.Verify("senha-forte-123", repo.adminHash)
	if err != nil || !ok {
		t.Fatalf("hash não verifica a senha original: ok=%v err=%v", ok, err)
	}
}

func TestCadastrarAdminValidaCampos(t *testing.T) {
	svc := NewService(&stubRepo{})

	cases := []struct {
		name string
		muta func(*AdminInput)
	}{
		{"sem empresa", func(in *AdminInput) { in.EmpresaID = uuid.Nil }},
		{"sem nome", func(in *AdminInput) { in.Nome = "" }},
		{"email inválido", func(in *AdminInput) { in.Email = "ana@" }},
		{"senha curta", func(in *AdminInput) { in.Senha = "123" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := AdminInput{
				EmpresaID: uuid.New(),
				Nome:      "Ana Lima",
				Email:     "ana@bompreco.com.br",
				Senha:     "senha-forte-123",
			}
			tc.muta(&input)
			if _, err := svc.CadastrarAdmin(context.Background(), input); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCadastrarAdminPropagaDuplicado(t *testing.T) {
	svc := NewService(&stubRepo{adminErr: pkgrepo.ErrDuplicate})

	_, err := svc.CadastrarAdmin(context.Background(), AdminInput{
		EmpresaID: uuid.New(),
		Nome:      "Ana Lima",
		Email:     "ana@bompreco.com.br",
		Senha:     "senha-forte-123",
	})
	if !errors.Is(err, pkgrepo.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}
