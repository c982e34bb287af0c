// Package export writes the current listing to a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sales_admin/internal/format"
	"sales_admin/internal/sales"
)

const (
	SalesSheet   = "Ventas"
	SummarySheet = "Resumen"
)

var salesHeader = []any{"Venta", "Cliente", "Fecha", "Total", "Estado", "Observaciones"}

// Sheet is what gets exported: one page (or the whole set) of records plus
// the statistics shown above them.
type Sheet struct {
	Sales []sales.SaleRecord
	Stats sales.Stats
	// Derived marks statistics aggregated client-side.
	Derived bool
}

// WriteXLSX writes s as a workbook with a records sheet and a summary sheet.
func WriteXLSX(w io.Writer, s Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SalesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := f.SetSheetRow(SalesSheet, "A1", &salesHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range s.Sales {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		client := r.ClientName
		if client == "" {
			client = fmt.Sprintf("#%d", r.ClientID)
		}
		row := []any{r.ID, client, format.Date(r.Date), r.Total.InexactFloat64(), r.Status, r.Notes}
		if err := f.SetSheetRow(SalesSheet, cell, &row); err != nil {
			return fmt.Errorf("write sale %d: %w", r.ID, err)
		}
	}
	if n := len(s.Sales); n > 0 {
		last, _ := excelize.CoordinatesToCellName(4, n+1)
		if err := f.SetCellStyle(SalesSheet, "D2", last, money); err != nil {
			return fmt.Errorf("style totals: %w", err)
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary: %w", err)
	}
	summary := [][]any{
		{"Total vendido", s.Stats.Total.InexactFloat64()},
		{"Ventas pagadas", s.Stats.Paid},
		{"Ventas anuladas", s.Stats.Voided},
	}
	if s.Derived {
		summary = append(summary, []any{"Origen", "calculado"})
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "B1", "B1", money); err != nil {
		return fmt.Errorf("style summary: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
