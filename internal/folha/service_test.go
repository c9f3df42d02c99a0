package folha

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pontodigital/plataforma/internal/funcionario"
	"github.com/pontodigital/plataforma/internal/registro"
)

type stubRepo struct {
	pontos    []Ponto
	salvo     *FechamentoFolha
	salvarErr error
}

func (s *stubRepo) Salvar(ctx context.Context, f *FechamentoFolha) error {
	if s.salvarErr != nil {
		return s.salvarErr
	}
	f.ID = uuid.New()
	f.Status = StatusAberto
	s.salvo = f
	return nil
}

func (s *stubRepo) Obter(ctx context.Context, id, empresaID uuid.UUID) (*FechamentoFolha, error) {
	return nil, ErrNotFound
}

func (s *stubRepo) Listar(ctx context.Context, empresaID uuid.UUID, competencia string) ([]FechamentoFolha, error) {
	return nil, nil
}

func (s *stubRepo) Transicionar(ctx context.Context, id, empresaID uuid.UUID, de, para string, aprovadorID *uuid.UUID) (*FechamentoFolha, error) {
	return &FechamentoFolha{ID: id, Status: para, AprovadorID: aprovadorID}, nil
}

func (s *stubRepo) ListarPontosAprovados(ctx context.Context, funcionarioID uuid.UUID, inicio, fim time.Time) ([]Ponto, error) {
	return s.pontos, nil
}

type stubFuncionarios struct {
	funcionario *funcionario.Funcionario
	jornadas    []funcionario.Jornada
}

func (s *stubFuncionarios) Obter(ctx context.Context, id, empresaID uuid.UUID) (*funcionario.Funcionario, error) {
	if s.funcionario == nil {
		return nil, funcionario.ErrNotFound
	}
	return s.funcionario, nil
}

func (s *stubFuncionarios) ListarJornada(ctx context.Context, id uuid.UUID) ([]funcionario.Jornada, error) {
	return s.jornadas, nil
}

func pontoEm(tipo string, dia, hora int) Ponto {
	return Ponto{Tipo: tipo, Timestamp: time.Date(2026, 3, dia, hora, 0, 0, 0, time.UTC)}
}

func quase(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestHorasTrabalhadasDescontaIntervalo(t *testing.T) {
	pontos := []Ponto{
		pontoEm(registro.TipoEntrada, 2, 9),
		pontoEm(registro.TipoIntervalo, 2, 12),
		pontoEm(registro.TipoRetorno, 2, 13),
		pontoEm(registro.TipoSaida, 2, 18),
	}

	if got := horasTrabalhadas(pontos); !quase(got, 8) {
		t.Fatalf("expected 8h, got %.2f", got)
	}
}

func TestHorasTrabalhadasIgnoraParesIncompletos(t *testing.T) {
	pontos := []Ponto{
		pontoEm(registro.TipoEntrada, 2, 9),
		pontoEm(registro.TipoSaida, 2, 18),
		// saída sem entrada no dia seguinte
		pontoEm(registro.TipoSaida, 3, 18),
		// entrada sem saída
		pontoEm(registro.TipoEntrada, 4, 9),
	}

	if got := horasTrabalhadas(pontos); !quase(got, 9) {
		t.Fatalf("expected 9h, got %.2f", got)
	}
}

func TestHorasPrevistasContaDiasDaCompetencia(t *testing.T) {
	// 8h por dia útil; março de 2026 tem 22 dias úteis.
	jornadas := []funcionario.Jornada{}
	for dia := 1; dia <= 5; dia++ {
		jornadas = append(jornadas, funcionario.Jornada{
			DiaSemana:       dia,
			Entrada:         "09:00",
			Saida:           "18:00",
			InicioIntervalo: "12:00",
			FimIntervalo:    "13:00",
		})
	}

	inicio := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	fim := inicio.AddDate(0, 1, 0)

	if got := horasPrevistas(jornadas, inicio, fim); !quase(got, 176) {
		t.Fatalf("expected 176h, got %.2f", got)
	}
}

func TestGerarCalculaSaldo(t *testing.T) {
	f := &funcionario.Funcionario{ID: uuid.New(), EmpresaID: uuid.New()}
	repo := &stubRepo{
		pontos: []Ponto{
			pontoEm(registro.TipoEntrada, 2, 9),
			pontoEm(registro.TipoSaida, 2, 18),
		},
	}
	svc := NewService(repo, &stubFuncionarios{
		funcionario: f,
		jornadas:    []funcionario.Jornada{{DiaSemana: 1, Entrada: "09:00", Saida: "17:00", InicioIntervalo: "12:00", FimIntervalo: "13:00"}},
	})

	fechamento, err := svc.Gerar(context.Background(), f.ID, f.EmpresaID, "2026-03")
	if err != nil {
		t.Fatalf("gerar: %v", err)
	}
	if !quase(fechamento.SaldoHoras, fechamento.HorasTrabalhadas-fechamento.HorasPrevistas) {
		t.Fatalf("saldo inconsistente: %+v", fechamento)
	}
	if repo.salvo == nil {
		t.Fatal("expected fechamento persisted")
	}
}

func TestGerarRejeitaCompetenciaInvalida(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubFuncionarios{funcionario: &funcionario.Funcionario{}})

	_, err := svc.Gerar(context.Background(), uuid.New(), uuid.New(), "03/2026")
	if !errors.Is(err, ErrCompetenciaInvalida) {
		t.Fatalf("expected ErrCompetenciaInvalida, got %v", err)
	}
}

func TestGerarNaoRecalculaFechamentoTravado(t *testing.T) {
	svc := NewService(&stubRepo{salvarErr: pgx.ErrNoRows}, &stubFuncionarios{funcionario: &funcionario.Funcionario{}})

	_, err := svc.Gerar(context.Background(), uuid.New(), uuid.New(), "2026-03")
	if !errors.Is(err, ErrTransicaoInvalida) {
		t.Fatalf("expected ErrTransicaoInvalida, got %v", err)
	}
}

func TestParseCompetencia(t *testing.T) {
	inicio, err := ParseCompetencia("2026-02")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if inicio.Year() != 2026 || inicio.Month() != time.February || inicio.Day() != 1 {
		t.Fatalf("unexpected start: %v", inicio)
	}

	for _, invalida := range []string{"2026", "fev/2026", "2026-13", ""} {
		if _, err := ParseCompetencia(invalida); !errors.Is(err, ErrCompetenciaInvalida) {
			t.Errorf("%q: expected ErrCompetenciaInvalida, got %v", invalida, err)
		}
	}
}
