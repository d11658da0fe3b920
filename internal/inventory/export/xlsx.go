// Package export renders a supply's movement ledger as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ayuda/internal/inventory/models"
)

const sheetName = "Movimientos"

var headers = []string{"Fecha", "Tipo", "Motivo", "Cantidad", "Saldo", "Ítem de caso", "Usuario", "Notas"}

// WriteMovements writes one row per movement with a running balance column,
// followed by a totals row.
func WriteMovements(w io.Writer, supply *models.Supply, movements []*models.Movement) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	title := fmt.Sprintf("%s (%s)", supply.Name, supply.Unit)
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetName, "A3", "H3", bold); err != nil {
		return err
	}

	var running, entries, exits int64
	row := 4
	for _, m := range movements {
		running += m.Signed()
		if m.Kind == models.MovementEntry {
			entries += m.Quantity
		} else {
			exits += m.Quantity
		}
		origin := ""
		if m.OriginItemID != nil {
			origin = m.OriginItemID.String()
		}
		values := []any{
			m.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			string(m.Kind),
			string(m.Reason),
			m.Signed(),
			running,
			origin,
			m.ActorID.String(),
			m.Notes,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	totals := []any{"Total", "", "", fmt.Sprintf("+%d / -%d", entries, exits), running}
	cell, _ := excelize.CoordinatesToCellName(1, row+1)
	if err := f.SetSheetRow(sheetName, cell, &totals); err != nil {
		return err
	}
	totalsEnd, _ := excelize.CoordinatesToCellName(len(totals), row+1)
	if err := f.SetCellStyle(sheetName, cell, totalsEnd, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
