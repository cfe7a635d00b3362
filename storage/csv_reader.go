package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"credit-cleaner/models"
)

// Delimiter separates fields in both the source and the cleaned file.
const Delimiter = ';'

// ErrLoad wraps every failure to read or parse the source table.
var ErrLoad = errors.New("load table")

// missingMarkers are the raw field values read as a missing cell.
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissingMarker reports whether a raw field should be read as missing.
func IsMissingMarker(s string) bool {
	_, ok := missingMarkers[s]
	return ok
}

// LoadCSV reads a semicolon-delimited file with a header row and drops its
// first column, which holds the row index of whoever exported it.
func LoadCSV(path string) (*models.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", ErrLoad, path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses a table from r; see LoadCSV.
func ReadCSV(r io.Reader) (*models.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrLoad)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrLoad, err)
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	if len(header) < 2 {
		return nil, fmt.Errorf("%w: header has %d column(s), need an index column plus data", ErrLoad, len(header))
	}

	t := models.NewTable(header[1:])
	width := len(header)
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
		if len(record) > width {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrLoad, line, len(record), width)
		}

		row := make([]models.Cell, width-1)
		for i := 1; i < width; i++ {
			if i >= len(record) || IsMissingMarker(record[i]) {
				row[i-1] = models.Missing()
				continue
			}
			row[i-1] = models.Text(record[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
