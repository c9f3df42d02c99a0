package registro

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pontodigital/plataforma/internal/empresa"
	"github.com/pontodigital/plataforma/internal/funcionario"
)

// Limiares do analisador.
const (
	precisaoMaximaMetros = 100.0
	toleranciaJornada    = 15 * time.Minute
)

// analisar compara as marcações de um dia com a configuração da empresa e a
// jornada prevista. Devolve apenas alertas; a decisão fica com o administrador.
func analisar(registros []Registro, cfg *empresa.Configuracao, jornada *funcionario.Jornada) []Irregularidade {
	irregularidades := make([]Irregularidade, 0)

	if len(registros) == 0 {
		return irregularidades
	}

	var entradas, saidas, intervalos, retornos int
	for _, r := range registros {
		switch r.Tipo {
		case TipoEntrada:
			entradas++
		case TipoSaida:
			saidas++
		case TipoIntervalo:
			intervalos++
		case TipoRetorno:
			retornos++
		}
	}
	if entradas != saidas {
		irregularidades = append(irregularidades, Irregularidade{
			Codigo:    IrregularidadeParIncompleto,
			Descricao: fmt.Sprintf("%d entrada(s) e %d saída(s) no dia", entradas, saidas),
		})
	}
	if intervalos != retornos {
		irregularidades = append(irregularidades, Irregularidade{
			Codigo:    IrregularidadeParIncompleto,
			Descricao: fmt.Sprintf("%d intervalo(s) e %d retorno(s) no dia", intervalos, retornos),
		})
	}

	geofence := cfg != nil && cfg.Latitude != nil && cfg.Longitude != nil && cfg.RaioMetros != nil
	for _, r := range registros {
		if geofence && r.Latitude != nil && r.Longitude != nil {
			dist := DistanciaMetros(*r.Latitude, *r.Longitude, *cfg.Latitude, *cfg.Longitude)
			if dist > *cfg.RaioMetros {
				irregularidades = append(irregularidades, Irregularidade{
					Codigo:    IrregularidadeForaDoRaio,
					Descricao: fmt.Sprintf("registro de %s a %.0fm do centro (raio %.0fm)", r.Tipo, dist, *cfg.RaioMetros),
				})
			}
		}
		if r.Precisao != nil && *r.Precisao > precisaoMaximaMetros {
			irregularidades = append(irregularidades, Irregularidade{
				Codigo:    IrregularidadePrecisaoBaixa,
				Descricao: fmt.Sprintf("precisão de GPS de %.0fm no registro de %s", *r.Precisao, r.Tipo),
			})
		}
	}

	if jornada != nil {
		inicio, okInicio := horarioDoDia(registros[0].Timestamp, jornada.Entrada)
		fim, okFim := horarioDoDia(registros[0].Timestamp, jornada.Saida)
		if okInicio && okFim {
			janelaInicio := inicio.Add(-toleranciaJornada)
			janelaFim := fim.Add(toleranciaJornada)
			for _, r := range registros {
				if r.Timestamp.Before(janelaInicio) || r.Timestamp.After(janelaFim) {
					irregularidades = append(irregularidades, Irregularidade{
						Codigo: IrregularidadeForaDaJornada,
						Descricao: fmt.Sprintf("registro de %s às %s fora da jornada %s–%s",
							r.Tipo, r.Timestamp.Format("15:04"), jornada.Entrada, jornada.Saida),
					})
				}
			}
		}
	}

	return irregularidades
}

// jornadaDoDia localiza a jornada prevista para o dia da semana informado.
// Convenção: 1=segunda ... 7=domingo.
func jornadaDoDia(jornadas []funcionario.Jornada, dia time.Time) *funcionario.Jornada {
	diaSemana := int(dia.Weekday())
	if diaSemana == 0 {
		diaSemana = 7
	}
	for i := range jornadas {
		if jornadas[i].DiaSemana == diaSemana {
			return &jornadas[i]
		}
	}
	return nil
}

// horarioDoDia converte "HH:MM" em instante no mesmo dia do registro, em UTC.
func horarioDoDia(referencia time.Time, horario string) (time.Time, bool) {
	partes := strings.SplitN(horario, ":", 2)
	if len(partes) != 2 {
		return time.Time{}, false
	}
	hora, err1 := strconv.Atoi(partes[0])
	minuto, err2 := strconv.Atoi(partes[1])
	if err1 != nil || err2 != nil {
		return time.Time{}, false
	}
	ref := referencia.UTC()
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hora, minuto, 0, 0, time.UTC), true
}
