package export

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pontodigital/plataforma/internal/registro"
)

func TestGerarPlanilhaRegistros(t *testing.T) {
	funcionarioID := uuid.New()
	registros := []registro.Registro{
		{
			ID:            uuid.New(),
			FuncionarioID: funcionarioID,
			Tipo:          registro.TipoEntrada,
			Timestamp:     time.Date(2026, 3, 10, 9, 2, 0, 0, time.UTC),
			Status:        registro.StatusAprovado,
		},
		{
			ID:            uuid.New(),
			FuncionarioID: uuid.New(),
			Tipo:          registro.TipoSaida,
			Timestamp:     time.Date(2026, 3, 10, 18, 1, 0, 0, time.UTC),
			Status:        registro.StatusPendente,
		},
	}
	nomes := map[uuid.UUID]string{funcionarioID: "Maria Souza"}

	f, err := GerarPlanilhaRegistros(registros, nomes)
	if err != nil {
		t.Fatalf("gerar planilha: %v", err)
	}
	defer f.Close()

	titulo, err := f.GetCellValue(planilhaRegistros, "A1")
	if err != nil {
		t.Fatalf("ler cabeçalho: %v", err)
	}
	if titulo != "Funcionário" {
		t.Fatalf("unexpected header: %q", titulo)
	}

	nome, err := f.GetCellValue(planilhaRegistros, "A2")
	if err != nil {
		t.Fatalf("ler nome: %v", err)
	}
	if nome != "Maria Souza" {
		t.Fatalf("expected resolved name, got %q", nome)
	}

	// Funcionário sem nome resolvido cai para o id.
	nomeFallback, err := f.GetCellValue(planilhaRegistros, "A3")
	if err != nil {
		t.Fatalf("ler fallback: %v", err)
	}
	if nomeFallback != registros[1].FuncionarioID.String() {
		t.Fatalf("expected funcionario id fallback, got %q", nomeFallback)
	}

	status, err := f.GetCellValue(planilhaRegistros, "D2")
	if err != nil {
		t.Fatalf("ler status: %v", err)
	}
	if status != registro.StatusAprovado {
		t.Fatalf("unexpected status cell: %q", status)
	}
}

func TestGerarPlanilhaVazia(t *testing.T) {
	f, err := GerarPlanilhaRegistros(nil, nil)
	if err != nil {
		t.Fatalf("gerar planilha: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(planilhaRegistros)
	if err != nil {
		t.Fatalf("ler linhas: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only header row, got %d", len(rows))
	}
}
