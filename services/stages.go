package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"credit-cleaner/models"
	"credit-cleaner/utils"
)

// ErrColumnNotFound is returned when a rule names a column the table lacks.
var ErrColumnNotFound = errors.New("column not found")

// rowKey encodes a row so that two rows share a key only if every cell is equal.
func rowKey(row []models.Cell) string {
	var b strings.Builder
	for _, c := range row {
		b.WriteString(strconv.Itoa(int(c.Kind)))
		switch c.Kind {
		case models.KindText:
			b.WriteString(strconv.Itoa(len(c.Text)))
			b.WriteByte(':')
			b.WriteString(c.Text)
		case models.KindDate:
			b.WriteString(c.Date.Format("2006-01-02"))
		}
		b.WriteByte('|')
	}
	return b.String()
}

// DropDuplicates removes rows identical to an earlier row, keeping order.
func DropDuplicates(t *models.Table) *models.Table {
	out := models.NewTable(t.Columns)
	seen := utils.NewKeySet()
	for _, row := range t.Rows {
		if !seen.Add(rowKey(row)) {
			continue
		}
		out.Rows = append(out.Rows, append([]models.Cell(nil), row...))
	}
	return out
}

// DropMissing keeps only rows where every cell has a value.
func DropMissing(t *models.Table) *models.Table {
	out := models.NewTable(t.Columns)
	for _, row := range t.Rows {
		complete := true
		for _, c := range row {
			if c.IsMissing() {
				complete = false
				break
			}
		}
		if complete {
			out.Rows = append(out.Rows, append([]models.Cell(nil), row...))
		}
	}
	return out
}

// mapColumn returns a copy of t with fn applied to every non-missing cell of col.
func mapColumn(t *models.Table, col string, fn func(row int, c models.Cell) (models.Cell, error)) (*models.Table, error) {
	idx := t.Index(col)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, col)
	}
	out := t.Clone()
	for i, row := range out.Rows {
		if row[idx].IsMissing() {
			continue
		}
		c, err := fn(i, row[idx])
		if err != nil {
			return nil, err
		}
		row[idx] = c
	}
	return out, nil
}

// mapText applies a string transform to the text of every non-missing cell.
func mapText(t *models.Table, col string, fn func(string) string) (*models.Table, error) {
	return mapColumn(t, col, func(_ int, c models.Cell) (models.Cell, error) {
		if c.Kind != models.KindText {
			return c, nil
		}
		return models.Text(fn(c.Text)), nil
	})
}

// NormalizeDates replaces every cell of col with its parsed date. The first
// value that matches no layout aborts the whole table.
func NormalizeDates(t *models.Table, col string) (*models.Table, error) {
	return mapColumn(t, col, func(row int, c models.Cell) (models.Cell, error) {
		if c.Kind == models.KindDate {
			return c, nil
		}
		d, err := ParseDate(c.Text)
		if err != nil {
			return c, fmt.Errorf("column %q row %d: %w", col, row, err)
		}
		return models.Date(d), nil
	})
}

// NormalizeNeighborhood lowercases col and replaces "_" and "-" with spaces.
func NormalizeNeighborhood(t *models.Table, col string) (*models.Table, error) {
	return mapText(t, col, normaliseNeighborhood)
}

// NormalizeCategorical applies the categorical clean-up to col only.
func NormalizeCategorical(t *models.Table, col string) (*models.Table, error) {
	return mapText(t, col, normaliseCategory)
}

// NormalizeCurrency turns currency-formatted text in col into bare amounts.
func NormalizeCurrency(t *models.Table, col string) (*models.Table, error) {
	return mapText(t, col, normaliseAmount)
}

// Levels returns the distinct values of col in first-seen order. Missing
// cells are reported as "".
func Levels(t *models.Table, col string) ([]string, error) {
	cells, ok := t.Column(col)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, col)
	}
	seen := utils.NewKeySet()
	levels := make([]string, 0)
	for _, c := range cells {
		v := c.String()
		if seen.Add(v) {
			levels = append(levels, v)
		}
	}
	return levels, nil
}
