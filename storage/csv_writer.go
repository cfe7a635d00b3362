package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"credit-cleaner/models"
)

// CSVWriter writes a cleaned table as semicolon-delimited UTF-8 text.
type CSVWriter struct {
	dir        string
	name       string
	dateLayout string
}

// NewCSVWriter prepares a writer for dir/name. Intermediate directories are
// created automatically.
func NewCSVWriter(dir, name, dateLayout string) (*CSVWriter, error) {
	if name == "" {
		return nil, fmt.Errorf("csv: empty output file name")
	}
	if dateLayout == "" {
		dateLayout = models.DefaultDateLayout
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir, name: name, dateLayout: dateLayout}, nil
}

// Path returns the destination file path.
func (c *CSVWriter) Path() string {
	return filepath.Join(c.dir, c.name)
}

// Write replaces the destination file with t: header row first, no index
// column. Rows go to a temporary file that is renamed into place only once
// everything was written.
func (c *CSVWriter) Write(t *models.Table) error {
	tmp, err := os.CreateTemp(c.dir, "."+c.name+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	w.Comma = Delimiter

	if err := w.Write(t.Columns); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: write header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, cell := range row {
			record[i] = cell.Format(c.dateLayout)
		}
		if err := w.Write(record); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("csv: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv: close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("csv: chmod: %w", err)
	}
	if err := os.Rename(tmpName, c.Path()); err != nil {
		return fmt.Errorf("csv: replace %q: %w", c.Path(), err)
	}
	return nil
}

// Close is a no-op; every Write opens and closes its own file.
func (c *CSVWriter) Close() error {
	return nil
}
