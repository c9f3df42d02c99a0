package registro

import (
	"testing"
	"time"

	"github.com/pontodigital/plataforma/internal/empresa"
	"github.com/pontodigital/plataforma/internal/funcionario"
)

func contarCodigo(irregularidades []Irregularidade, codigo string) int {
	total := 0
	for _, i := range irregularidades {
		if i.Codigo == codigo {
			total++
		}
	}
	return total
}

func registroEm(tipo string, hora, minuto int, lat, lon, precisao *float64) Registro {
	return Registro{
		Tipo:      tipo,
		Timestamp: time.Date(2026, 3, 10, hora, minuto, 0, 0, time.UTC),
		Latitude:  lat,
		Longitude: lon,
		Precisao:  precisao,
	}
}

func TestAnalisarDiaSemRegistros(t *testing.T) {
	got := analisar(nil, nil, nil)
	if len(got) != 0 {
		t.Fatalf("expected no irregularities, got %v", got)
	}
}

func TestAnalisarParIncompleto(t *testing.T) {
	registros := []Registro{
		registroEm(TipoEntrada, 9, 0, nil, nil, nil),
	}

	got := analisar(registros, nil, nil)
	if contarCodigo(got, IrregularidadeParIncompleto) != 1 {
		t.Fatalf("expected 1 PAR_INCOMPLETO, got %v", got)
	}
}

func TestAnalisarIntervaloSemRetorno(t *testing.T) {
	registros := []Registro{
		registroEm(TipoEntrada, 9, 0, nil, nil, nil),
		registroEm(TipoIntervalo, 12, 0, nil, nil, nil),
		registroEm(TipoSaida, 18, 0, nil, nil, nil),
	}

	got := analisar(registros, nil, nil)
	if contarCodigo(got, IrregularidadeParIncompleto) != 1 {
		t.Fatalf("expected 1 PAR_INCOMPLETO for intervalo, got %v", got)
	}
}

func TestAnalisarForaDoRaio(t *testing.T) {
	centroLat, centroLon, raio := -23.5505, -46.6333, 200.0
	cfg := &empresa.Configuracao{Latitude: &centroLat, Longitude: &centroLon, RaioMetros: &raio}

	// ~1.1km ao norte do centro.
	longe := -23.5405
	registros := []Registro{
		registroEm(TipoEntrada, 9, 0, &longe, &centroLon, nil),
		registroEm(TipoSaida, 18, 0, &centroLat, &centroLon, nil),
	}

	got := analisar(registros, cfg, nil)
	if contarCodigo(got, IrregularidadeForaDoRaio) != 1 {
		t.Fatalf("expected 1 FORA_DO_RAIO, got %v", got)
	}
}

func TestAnalisarPrecisaoBaixa(t *testing.T) {
	precisao := 350.0
	registros := []Registro{
		registroEm(TipoEntrada, 9, 0, nil, nil, &precisao),
		registroEm(TipoSaida, 18, 0, nil, nil, nil),
	}

	got := analisar(registros, nil, nil)
	if contarCodigo(got, IrregularidadePrecisaoBaixa) != 1 {
		t.Fatalf("expected 1 PRECISAO_BAIXA, got %v", got)
	}
}

func TestAnalisarForaDaJornada(t *testing.T) {
	jornada := &funcionario.Jornada{DiaSemana: 2, Entrada: "09:00", Saida: "18:00"}

	registros := []Registro{
		registroEm(TipoEntrada, 6, 0, nil, nil, nil),
		registroEm(TipoSaida, 18, 0, nil, nil, nil),
	}

	got := analisar(registros, nil, jornada)
	if contarCodigo(got, IrregularidadeForaDaJornada) != 1 {
		t.Fatalf("expected 1 FORA_DA_JORNADA, got %v", got)
	}
}

func TestAnalisarDentroDaTolerancia(t *testing.T) {
	jornada := &funcionario.Jornada{DiaSemana: 2, Entrada: "09:00", Saida: "18:00"}

	// 08:50 está dentro da tolerância de 15 minutos.
	registros := []Registro{
		registroEm(TipoEntrada, 8, 50, nil, nil, nil),
		registroEm(TipoSaida, 18, 10, nil, nil, nil),
	}

	got := analisar(registros, nil, jornada)
	if contarCodigo(got, IrregularidadeForaDaJornada) != 0 {
		t.Fatalf("expected no FORA_DA_JORNADA, got %v", got)
	}
}

func TestJornadaDoDiaMapeiaDomingo(t *testing.T) {
	jornadas := []funcionario.Jornada{
		{DiaSemana: 7, Entrada: "10:00", Saida: "14:00"},
	}

	domingo := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)
	got := jornadaDoDia(jornadas, domingo)
	if got == nil || got.DiaSemana != 7 {
		t.Fatalf("expected sunday jornada, got %v", got)
	}

	segunda := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	if jornadaDoDia(jornadas, segunda) != nil {
		t.Fatal("expected no jornada for monday")
	}
}

func TestDistanciaMetros(t *testing.T) {
	// Praça da Sé ao Pátio do Colégio, São Paulo: pouco menos de 200m.
	dist := DistanciaMetros(-23.5503, -46.6339, -23.5489, -46.6344)
	if dist < 100 || dist > 300 {
		t.Fatalf("unexpected distance: %.1f", dist)
	}

	if d := DistanciaMetros(-23.55, -46.63, -23.55, -46.63); d != 0 {
		t.Fatalf("distance between identical points must be 0, got %f", d)
	}
}
