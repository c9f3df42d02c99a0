package export

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/pontodigital/plataforma/internal/registro"
)

const planilhaRegistros = "Registros"

var cabecalhoRegistros = []string{"Funcionário", "Tipo", "Data/Hora", "Status", "Aprovador", "Justificativa"}

// GerarPlanilhaRegistros monta um workbook com uma aba de registros de ponto:
// linha de cabeçalho em destaque e datas formatadas como célula de data.
func GerarPlanilhaRegistros(registros []registro.Registro, nomes map[uuid.UUID]string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", planilhaRegistros); err != nil {
		return nil, fmt.Errorf("renomear planilha: %w", err)
	}

	estiloCabecalho, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4F6228"}},
	})
	if err != nil {
		return nil, fmt.Errorf("estilo do cabeçalho: %w", err)
	}

	formatoData := "dd/mm/yyyy hh:mm"
	estiloData, err := f.NewStyle(&excelize.Style{CustomNumFmt: &formatoData})
	if err != nil {
		return nil, fmt.Errorf("estilo de data: %w", err)
	}

	for i, titulo := range cabecalhoRegistros {
		celula, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(planilhaRegistros, celula, titulo); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(planilhaRegistros, "A1", "F1", estiloCabecalho); err != nil {
		return nil, err
	}

	for i, r := range registros {
		linha := i + 2

		nome := nomes[r.FuncionarioID]
		if nome == "" {
			nome = r.FuncionarioID.String()
		}

		var aprovador string
		if r.AprovadorID != nil {
			aprovador = r.AprovadorID.String()
		}
		var justificativa string
		if r.Justificativa != nil {
			justificativa = *r.Justificativa
		}

		valores := []any{nome, r.Tipo, r.Timestamp, r.Status, aprovador, justificativa}
		for col, valor := range valores {
			celula, err := excelize.CoordinatesToCellName(col+1, linha)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(planilhaRegistros, celula, valor); err != nil {
				return nil, err
			}
		}

		celulaData, err := excelize.CoordinatesToCellName(3, linha)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(planilhaRegistros, celulaData, celulaData, estiloData); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(planilhaRegistros, "A", "A", 32); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(planilhaRegistros, "C", "C", 20); err != nil {
		return nil, err
	}

	return f, nil
}
