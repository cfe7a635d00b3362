package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"credit-cleaner/models"
)

const xlsxSheet = "solicitudes"

// XLSXWriter exports a cleaned table as a single-sheet workbook.
type XLSXWriter struct {
	path       string
	dateLayout string
}

// NewXLSXWriter prepares a workbook writer for path, creating its directory.
func NewXLSXWriter(path, dateLayout string) (*XLSXWriter, error) {
	if dateLayout == "" {
		dateLayout = models.DefaultDateLayout
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	return &XLSXWriter{path: path, dateLayout: dateLayout}, nil
}

// Write replaces the workbook with t, header in the first row.
func (x *XLSXWriter) Write(t *models.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("xlsx: name sheet: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: write header: %w", err)
	}

	values := make([]interface{}, len(t.Columns))
	for r, row := range t.Rows {
		for i, cell := range row {
			values[i] = cell.Format(x.dateLayout)
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("xlsx: row %d: %w", r, err)
		}
		if err := f.SetSheetRow(xlsxSheet, axis, &values); err != nil {
			return fmt.Errorf("xlsx: write row %d: %w", r, err)
		}
	}

	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return nil
}

func (x *XLSXWriter) Close() error {
	return nil
}
