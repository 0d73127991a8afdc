package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/i18n"
	"github.com/mamadbah2/inventory/internal/service/metrics"
)

const (
	defaultSheet = "Sheet1"
	// numFmtTwoDecimals is the built-in "0.00" number format.
	numFmtTwoDecimals = 2
)

var columnWidths = []float64{30, 20, 12, 15, 20, 15, 15}

// XLSX writes a single-sheet workbook with typed cells.
func XLSX(products []models.Product, labels i18n.Labels) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := labels.SheetName
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, 0, len(columnWidths))
	for _, h := range labels.Headers.Row() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header row: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			p.Name,
			p.Category,
			p.Quantity,
			p.Price.Round(2).InexactFloat64(),
			p.LowStockThreshold,
			labels.StatusLabel(metrics.Classify(p)),
			p.Value().Round(2).InexactFloat64(),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := styleSheet(f, sheet, len(products)); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func styleSheet(f *excelize.File, sheet string, rows int) error {
	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set width of column %s: %w", col, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", "G1", bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	if rows == 0 {
		return nil
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtTwoDecimals})
	if err != nil {
		return fmt.Errorf("create number style: %w", err)
	}
	last := rows + 1
	for _, col := range []string{"D", "G"} {
		if err := f.SetCellStyle(sheet, fmt.Sprintf("%s2", col), fmt.Sprintf("%s%d", col, last), money); err != nil {
			return fmt.Errorf("apply number style to column %s: %w", col, err)
		}
	}
	return nil
}
