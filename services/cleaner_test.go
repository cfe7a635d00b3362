package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-cleaner/models"
	"credit-cleaner/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLogger() }

var testColumns = []string{
	models.ColSex, models.ColBusinessType, models.ColBusinessIdea, models.ColNeighborhood,
	models.ColStratum, models.ColDistrict, models.ColBenefitDate, models.ColAmount, models.ColCreditLine,
}

// textRow builds a row from raw strings; "<nil>" marks a missing cell.
func textRow(values ...string) []models.Cell {
	row := make([]models.Cell, len(values))
	for i, v := range values {
		if v == "<nil>" {
			row[i] = models.Missing()
			continue
		}
		row[i] = models.Text(v)
	}
	return row
}

func tableOf(columns []string, rows ...[]models.Cell) *models.Table {
	t := models.NewTable(columns)
	t.Rows = append(t.Rows, rows...)
	return t
}

func TestNormaliseCategory(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{" Micro-Empresa, ", "micro empresa"},
		{"Mujer", "mujer"},
		{"a, b", "a b"},
		{"fabricacion_y_venta", "fabricacion y venta"},
		{"  ", ""},
		{"Crédito-Línea", "crédito línea"},
	}

	for _, tt := range tests {
		if got := normaliseCategory(tt.raw); got != tt.want {
			t.Errorf("normaliseCategory(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormaliseNeighborhood(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"EL_Poblado-Centro", "el poblado centro"},
		{" Belén ", " belén "},
		{"san_javier_no.1", "san javier no.1"},
	}

	for _, tt := range tests {
		if got := normaliseNeighborhood(tt.raw); got != tt.want {
			t.Errorf("normaliseNeighborhood(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormaliseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"$1,234.00", "1234"},
		{"$1,234.05", "1234.05"},
		{"$12,340.05", "12340.05"},
		{"$ 500.0 ", "500"},
		{"1000000", "1000000"},
		{"$1,000,000.00", "1000000"},
		{"100.50", "100.50"},
		{"abc", "abc"},
	}

	for _, tt := range tests {
		if got := normaliseAmount(tt.raw); got != tt.want {
			t.Errorf("normaliseAmount(%q) = %q; want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2023/05/10", time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)},
		{"10/05/2023", time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)},
		{"2018/1/7", time.Date(2018, 1, 7, 0, 0, 0, 0, time.UTC)},
		{"7/1/2018", time.Date(2018, 1, 7, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.True(t, tt.want.Equal(got), "ParseDate(%q) = %v; want %v", tt.raw, got, tt.want)
	}
}

func TestParseDateRejectsUnknownLayouts(t *testing.T) {
	for _, raw := range []string{"2023-05-10", "10.05.2023", "", "31/02/2023", "2023/13/01", "not a date"} {
		_, err := ParseDate(raw)
		assert.ErrorIs(t, err, ErrUnparseableDate, raw)
	}
}

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "linea credito", FoldAccents("línea credito"))
	assert.Equal(t, "pinguino", FoldAccents("pingüino"))
	assert.Equal(t, "Belen", FoldAccents("Belén"))
}

func TestDropDuplicatesKeepsFirstOccurrence(t *testing.T) {
	cols := []string{"a", "b"}
	tbl := tableOf(cols,
		textRow("1", "x"),
		textRow("2", "y"),
		textRow("1", "x"),
		textRow("1", "<nil>"),
		textRow("1", "<nil>"),
		textRow("1", ""),
	)

	out := DropDuplicates(tbl)

	require.Equal(t, 4, out.Len())
	assert.Equal(t, "2", out.Rows[1][0].Text)
	assert.True(t, out.Rows[2][1].IsMissing())
	assert.Equal(t, models.KindText, out.Rows[3][1].Kind)
	assert.Equal(t, 6, tbl.Len(), "input table must not be modified")
}

func TestDropDuplicatesNoSeparatorCollisions(t *testing.T) {
	tbl := tableOf([]string{"a", "b"},
		textRow("x|", "y"),
		textRow("x", "|y"),
	)
	assert.Equal(t, 2, DropDuplicates(tbl).Len())
}

func TestDropMissing(t *testing.T) {
	tbl := tableOf([]string{"a", "b", "c"},
		textRow("1", "2", "3"),
		textRow("1", "<nil>", "3"),
		textRow("<nil>", "<nil>", "<nil>"),
		textRow("4", "5", "6"),
	)

	out := DropMissing(tbl)

	require.Equal(t, 2, out.Len())
	assert.Equal(t, "4", out.Rows[1][0].Text)
}

func TestNormalizeCategoricalTouchesOnlyItsColumn(t *testing.T) {
	tbl := tableOf([]string{models.ColSex, models.ColBusinessType},
		textRow(" MUJER ", " Micro-Empresa, "),
	)

	out, err := NormalizeCategorical(tbl, models.ColBusinessType)
	require.NoError(t, err)

	assert.Equal(t, " MUJER ", out.Rows[0][0].Text)
	assert.Equal(t, "micro empresa", out.Rows[0][1].Text)
	assert.Equal(t, " Micro-Empresa, ", tbl.Rows[0][1].Text)
}

func TestNormalizeUnknownColumn(t *testing.T) {
	tbl := tableOf([]string{"a"}, textRow("x"))

	for _, rule := range DefaultRules() {
		_, err := rule.Apply(tbl)
		assert.ErrorIs(t, err, ErrColumnNotFound, rule.String())
	}

	_, err := ColumnRule{Column: "a", Kind: "bogus"}.Apply(tbl)
	assert.Error(t, err)
}

func TestNormalizeDatesAbortsOnBadCell(t *testing.T) {
	tbl := tableOf([]string{models.ColBenefitDate},
		textRow("2023/05/10"),
		textRow("May 10th"),
	)

	_, err := NormalizeDates(tbl, models.ColBenefitDate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnparseableDate))
	assert.Contains(t, err.Error(), "row 1")
}

func TestNormalizeDatesPassesMissingAndParsedCells(t *testing.T) {
	parsed := models.Date(time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC))
	tbl := tableOf([]string{models.ColBenefitDate},
		[]models.Cell{models.Missing()},
		[]models.Cell{parsed},
	)

	out, err := NormalizeDates(tbl, models.ColBenefitDate)
	require.NoError(t, err)
	assert.True(t, out.Rows[0][0].IsMissing())
	assert.True(t, out.Rows[1][0].Equal(parsed))
}

func sampleRaw() *models.Table {
	return tableOf(testColumns,
		textRow("Mujer", "Tienda", "Panadería", "EL_Poblado-Centro", "1", "14", "2023/05/10", "$1,234.00", "Microcrédito"),
		textRow("Mujer", "Tienda", "Panadería", "EL_Poblado-Centro", "1", "14", "2023/05/10", "$1,234.00", "Microcrédito"),
		textRow("mujer ", "tienda", "panadería,", "el poblado centro", "1", "14", "10/05/2023", "$1,234.0", "microcrédito"),
		textRow("Hombre", "<nil>", "Taller", "belén", "2", "16", "2019/01/02", "$500.00", "Empresarial-Ed"),
		textRow("hombre", " Micro-Empresa, ", "Taller", "BELÉN", "2", "16", "02/01/2019", "$1,234.05", "empresarial_ed"),
	)
}

func TestCleanerPipeline(t *testing.T) {
	c := NewCleaner(newTestLogger(), nil)
	raw := sampleRaw()

	out, stats, err := c.Clean(raw)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.RowsLoaded)
	assert.Equal(t, 1, stats.EarlyDuplicates)
	assert.Equal(t, 1, stats.IncompleteRows)
	assert.Equal(t, 1, stats.LateDuplicates)
	assert.Equal(t, 2, stats.RowsWritten)
	assert.Equal(t, 3, stats.Dropped())
	require.Equal(t, 2, out.Len())

	first := out.Rows[0]
	assert.Equal(t, "mujer", first[0].Text)
	assert.Equal(t, "el poblado centro", first[3].Text)
	assert.Equal(t, "2023-05-10", first[6].String())
	assert.Equal(t, "1234", first[7].Text)
	assert.Equal(t, "microcrédito", first[8].Text)

	second := out.Rows[1]
	assert.Equal(t, "micro empresa", second[1].Text)
	assert.Equal(t, "belén", second[3].Text)
	assert.Equal(t, "2019-01-02", second[6].String())
	assert.Equal(t, "1234.05", second[7].Text)
	assert.Equal(t, "empresarial ed", second[8].Text)

	assert.Equal(t, 5, raw.Len())
	assert.Equal(t, "Mujer", raw.Rows[0][0].Text)
}

func TestCleanerOutputInvariants(t *testing.T) {
	out, _, err := NewCleaner(newTestLogger(), nil).Clean(sampleRaw())
	require.NoError(t, err)

	dateIdx := out.Index(models.ColBenefitDate)
	seen := make(map[string]bool)
	for i, row := range out.Rows {
		for j, c := range row {
			assert.False(t, c.IsMissing(), "row %d col %d is missing", i, j)
		}
		assert.Equal(t, models.KindDate, row[dateIdx].Kind)
		key := rowKey(row)
		assert.False(t, seen[key], "row %d duplicates an earlier row", i)
		seen[key] = true
	}

	// A second pass over the output removes nothing more.
	again := DropMissing(DropDuplicates(out))
	assert.Equal(t, out.Len(), again.Len())
}

func TestCleanerStopsOnBadDate(t *testing.T) {
	raw := tableOf(testColumns,
		textRow("Mujer", "Tienda", "Panadería", "Centro", "1", "14", "2023-05-10", "$1.00", "Micro"),
	)

	out, _, err := NewCleaner(newTestLogger(), nil).Clean(raw)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrUnparseableDate)
}

func TestCleanerFoldAccentRule(t *testing.T) {
	rules := WithFoldAccents(DefaultRules(), models.ColNeighborhood)
	require.Len(t, rules, len(DefaultRules())+1)

	out, stats, err := NewCleaner(newTestLogger(), rules).Clean(sampleRaw())
	require.NoError(t, err)
	assert.Equal(t, "belen", out.Rows[1][3].Text)
	assert.Positive(t, stats.CellsChangedByCol[models.ColNeighborhood])
}

func TestLevels(t *testing.T) {
	tbl := tableOf([]string{"barrio"},
		textRow("b"), textRow("a"), textRow("b"), textRow("<nil>"),
	)

	levels, err := Levels(tbl, "barrio")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", ""}, levels)

	_, err = Levels(tbl, "nope")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestLevelColumns(t *testing.T) {
	rules := WithFoldAccents(DefaultRules(), models.ColNeighborhood, "otra")
	assert.Equal(t, []string{
		models.ColNeighborhood, models.ColSex, models.ColBusinessType,
		models.ColBusinessIdea, models.ColCreditLine, "otra",
	}, LevelColumns(rules))
}
