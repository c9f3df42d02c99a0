package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/auth"
	"github.com/pontodigital/plataforma/internal/db"
	"github.com/pontodigital/plataforma/internal/empresa"
	"github.com/pontodigital/plataforma/internal/repo"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	empresaRepo := empresa.NewRepository(pool)
	service := empresa.NewService(empresaRepo)

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		if err := runCreate(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar empresa")
		}
	case "list":
		if err := runList(ctx, service); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar empresas")
		}
	case "seed":
		if err := runSeed(ctx, repo.New(pool), args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar usuário de suporte")
		}
	case "admin":
		if err := runAdmin(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar administrador")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "empresa CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  empresa create --nome \"Padaria Central\" --cnpj 12345678000190 --cidade \"São Paulo\" --estado 26 --email contato@padaria.com.br")
	fmt.Fprintln(os.Stderr, "  empresa list")
	fmt.Fprintln(os.Stderr, "  empresa seed --nome \"Equipe Suporte\" --email suporte@pontodigital.com.br --senha '...'")
	fmt.Fprintln(os.Stderr, "  empresa admin --empresa <uuid> --nome \"Ana Lima\" --email ana@padaria.com.br --senha '...'")
}

func runSeed(ctx context.Context, queries *repo.Queries, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		nome  = fs.String("nome", "", "nome do usuário de suporte")
		email = fs.String("email", "", "email de login")
		senha = fs.String("senha", "", "senha inicial")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *nome == "" || *email == "" || *senha == "" {
		return errors.New("nome, email e senha são obrigatórios")
	}

	senhaHash, err := auth.Hash(*senha)
	if err != nil {
		return err
	}

	u, err := queries.CreateUsuario(ctx, repo.CreateUsuarioParams{
		Nome:      *nome,
		Email:     *email,
		SenhaHash: senhaHash,
		Nivel:     repo.NivelITSupport,
	})
	if err != nil {
		return err
	}

	fmt.Printf("usuário IT_SUPPORT criado: %s <%s>\n", u.ID, u.Email)
	return nil
}

func runAdmin(ctx context.Context, service *empresa.Service, args []string) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		empresaID = fs.String("empresa", "", "id da empresa")
		nome      = fs.String("nome", "", "nome do administrador")
		email     = fs.String("email", "", "email de login")
		senha     = fs.String("senha", "", "senha inicial")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := uuid.Parse(*empresaID)
	if err != nil {
		return errors.New("informe --empresa com um uuid válido")
	}

	admin, err := service.CadastrarAdmin(ctx, empresa.AdminInput{
		EmpresaID: id,
		Nome:      *nome,
		Email:     *email,
		Senha:     *senha,
	})
	if err != nil {
		return err
	}

	output, _ := json.MarshalIndent(admin, "", "  ")
	fmt.Println(string(output))
	return nil
}

func runCreate(ctx context.Context, service *empresa.Service, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		nome       = fs.String("nome", "", "razão social")
		cnpj       = fs.String("cnpj", "", "CNPJ (somente dígitos ou formatado)")
		logradouro = fs.String("logradouro", "", "logradouro do endereço")
		numero     = fs.String("numero", "", "número do endereço")
		cidade     = fs.String("cidade", "", "cidade")
		estadoID   = fs.Int("estado", 0, "id da unidade federativa")
		ramo       = fs.String("ramo", "", "ramo de atividade")
		email      = fs.String("email", "", "email de contato")
		telefone   = fs.String("telefone", "", "telefone de contato")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *nome == "" || *cnpj == "" {
		return errors.New("nome e cnpj são obrigatórios")
	}

	created, err := service.Cadastrar(ctx, empresa.CreateInput{
		Nome:          *nome,
		CNPJ:          *cnpj,
		Logradouro:    *logradouro,
		Numero:        *numero,
		Cidade:        *cidade,
		EstadoID:      *estadoID,
		RamoAtividade: *ramo,
		Email:         *email,
		Telefone:      *telefone,
	})
	if err != nil {
		return err
	}

	output, _ := json.MarshalIndent(created, "", "  ")
	fmt.Println(string(output))
	return nil
}

func runList(ctx context.Context, service *empresa.Service) error {
	empresas, err := service.Listar(ctx, empresa.Filter{})
	if err != nil {
		return err
	}

	if len(empresas) == 0 {
		fmt.Println("nenhuma empresa cadastrada")
		return nil
	}

	encoded, _ := json.MarshalIndent(empresas, "", "  ")
	fmt.Println(string(encoded))
	return nil
}
