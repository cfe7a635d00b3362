package services

import (
	"fmt"

	"credit-cleaner/models"
	"credit-cleaner/utils"
)

// Cleaner runs the credit application cleaning pipeline over a loaded table.
type Cleaner struct {
	logger *utils.Logger
	rules  []ColumnRule
}

// NewCleaner creates a Cleaner that applies rules in order. A nil rule list
// means DefaultRules.
func NewCleaner(logger *utils.Logger, rules []ColumnRule) *Cleaner {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Cleaner{logger: logger, rules: rules}
}

// Clean deduplicates, drops incomplete rows, applies every rule and
// deduplicates again. The input table is left untouched.
func (c *Cleaner) Clean(raw *models.Table) (*models.Table, *models.CleaningStats, error) {
	stats := models.NewCleaningStats()
	stats.RowsLoaded = raw.Len()

	t := DropDuplicates(raw)
	stats.EarlyDuplicates = raw.Len() - t.Len()
	c.logger.Debug("[cleaner] First duplicate pass dropped %d rows", stats.EarlyDuplicates)

	complete := DropMissing(t)
	stats.IncompleteRows = t.Len() - complete.Len()
	t = complete
	c.logger.Debug("[cleaner] Dropped %d rows with missing values", stats.IncompleteRows)

	for _, rule := range c.rules {
		next, err := rule.Apply(t)
		if err != nil {
			return nil, stats, fmt.Errorf("cleaner: %s: %w", rule, err)
		}
		changed := countChanged(t, next, rule.Column)
		stats.CellsChangedByCol[rule.Column] += changed
		c.logger.Debug("[cleaner] %s changed %d cells", rule, changed)
		t = next
	}

	final := DropDuplicates(t)
	stats.LateDuplicates = t.Len() - final.Len()
	stats.RowsWritten = final.Len()

	c.logger.Info("[cleaner] Cleaned %d → %d rows (duplicates %d+%d, incomplete %d)",
		stats.RowsLoaded, stats.RowsWritten, stats.EarlyDuplicates, stats.LateDuplicates, stats.IncompleteRows)
	return final, stats, nil
}

func countChanged(before, after *models.Table, col string) int {
	idx := before.Index(col)
	if idx < 0 || after.Index(col) != idx || before.Len() != after.Len() {
		return 0
	}
	n := 0
	for i := range before.Rows {
		if !before.Rows[i][idx].Equal(after.Rows[i][idx]) {
			n++
		}
	}
	return n
}
