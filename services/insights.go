package services

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"credit-cleaner/models"
	"credit-cleaner/utils"
)

const topLevels = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate summarises a cleaned table. levelCols are the categorical columns
// whose distinct values are counted.
func (s *InsightService) Generate(runID string, t *models.Table, cs *models.CleaningStats, levelCols []string) *models.InsightReport {
	report := &models.InsightReport{
		RunID:       runID,
		Stats:       cs,
		LevelCounts: make(map[string]int),
		TopLevels:   make(map[string][]models.LevelCount),
	}
	if report.Stats == nil {
		report.Stats = models.NewCleaningStats()
	}

	for _, col := range levelCols {
		levels, err := Levels(t, col)
		if err != nil {
			s.logger.Warn("[insights] Skipping levels for %s: %v", col, err)
			continue
		}
		report.LevelCounts[col] = len(levels)
		report.TopLevels[col] = countLevels(t, col)
	}

	if dates, ok := t.Column(models.ColBenefitDate); ok {
		for _, c := range dates {
			if c.Kind != models.KindDate {
				continue
			}
			if report.FirstDate.IsZero() || c.Date.Before(report.FirstDate) {
				report.FirstDate = c.Date
			}
			if c.Date.After(report.LastDate) {
				report.LastDate = c.Date
			}
		}
	}

	if amounts, ok := t.Column(models.ColAmount); ok {
		report.Amounts = s.summariseAmounts(amounts)
	}

	return report
}

func (s *InsightService) summariseAmounts(cells []models.Cell) models.AmountSummary {
	var sum models.AmountSummary
	data := make(stats.Float64Data, 0, len(cells))
	for _, c := range cells {
		if c.IsMissing() {
			continue
		}
		v, err := strconv.ParseFloat(c.String(), 64)
		if err != nil {
			sum.Unparseable++
			s.logger.Debug("[insights] Amount %q is not numeric", c.String())
			continue
		}
		data = append(data, v)
	}
	sum.Count = len(data)
	if sum.Count == 0 {
		return sum
	}

	// Errors only occur on empty input, which is handled above.
	sum.Mean, _ = stats.Mean(data)
	sum.Median, _ = stats.Median(data)
	sum.Min, _ = stats.Min(data)
	sum.Max, _ = stats.Max(data)
	sum.Mean = round2(sum.Mean)
	sum.Median = round2(sum.Median)
	return sum
}

// countLevels returns the most frequent values of col, ties broken by first appearance.
func countLevels(t *models.Table, col string) []models.LevelCount {
	cells, _ := t.Column(col)
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, c := range cells {
		v := c.String()
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	out := make([]models.LevelCount, 0, len(order))
	for _, v := range order {
		out = append(out, models.LevelCount{Level: v, Count: counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > topLevels {
		out = out[:topLevels]
	}
	return out
}

func (s *InsightService) Print(r *models.InsightReport) {
	s.Fprint(os.Stdout, r)
}

// Fprint writes the report to w.
func (s *InsightService) Fprint(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 CREDIT APPLICATION CLEANING SUMMARY\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Run id                 : %s\n", r.RunID)
	fmt.Fprintf(w, "  Rows loaded            : \033[1m%d\033[0m\n", r.Stats.RowsLoaded)
	fmt.Fprintf(w, "  Duplicates (raw)       : %d\n", r.Stats.EarlyDuplicates)
	fmt.Fprintf(w, "  Incomplete rows        : %d\n", r.Stats.IncompleteRows)
	fmt.Fprintf(w, "  Duplicates (cleaned)   : %d\n", r.Stats.LateDuplicates)
	fmt.Fprintf(w, "  Rows dropped           : %d\n", r.Stats.Dropped())
	fmt.Fprintf(w, "  Rows written           : \033[1;32m%d\033[0m\n", r.Stats.RowsWritten)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Cells Changed by Column\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	changed := sortedKeys(r.Stats.CellsChangedByCol)
	if len(changed) == 0 {
		fmt.Fprintf(w, "  No rules applied\n")
	}
	for _, col := range changed {
		fmt.Fprintf(w, "  %-24s %d\n", col, r.Stats.CellsChangedByCol[col])
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Benefit Dates\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.FirstDate.IsZero() {
		fmt.Fprintf(w, "  No dates available\n")
	} else {
		fmt.Fprintf(w, "  From %s to %s\n", r.FirstDate.Format("2006-01-02"), r.LastDate.Format("2006-01-02"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Credit Amounts\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.Amounts.Count == 0 {
		fmt.Fprintf(w, "  No numeric amounts\n")
	} else {
		fmt.Fprintf(w, "  Numeric amounts : %d (non-numeric: %d)\n", r.Amounts.Count, r.Amounts.Unparseable)
		fmt.Fprintf(w, "  Average         : \033[1;32m$%.2f\033[0m\n", r.Amounts.Mean)
		fmt.Fprintf(w, "  Median          : \033[1;32m$%.2f\033[0m\n", r.Amounts.Median)
		fmt.Fprintf(w, "  Minimum         : \033[1;32m$%.0f\033[0m\n", r.Amounts.Min)
		fmt.Fprintf(w, "  Maximum         : \033[1;32m$%.0f\033[0m\n", r.Amounts.Max)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Distinct Levels\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	for _, col := range sortedKeys(r.LevelCounts) {
		fmt.Fprintf(w, "  %-24s %d\n", col, r.LevelCounts[col])
		for _, lc := range r.TopLevels[col] {
			fmt.Fprintf(w, "      %-30s %d\n", truncate(lc.Level, 28), lc.Count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
