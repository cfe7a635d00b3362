package services

import (
	"fmt"

	"credit-cleaner/models"
)

// RuleKind names a column normalization.
type RuleKind string

const (
	RuleDate         RuleKind = "date"
	RuleNeighborhood RuleKind = "neighborhood"
	RuleCategorical  RuleKind = "categorical"
	RuleCurrency     RuleKind = "currency"
	RuleFoldAccents  RuleKind = "fold_accents"
)

// ColumnRule binds a rule to one column.
type ColumnRule struct {
	Column string
	Kind   RuleKind
}

func (r ColumnRule) String() string {
	return fmt.Sprintf("%s(%s)", r.Kind, r.Column)
}

// DefaultRules is the cleaning order for solicitudes_de_credito.
func DefaultRules() []ColumnRule {
	return []ColumnRule{
		{Column: models.ColBenefitDate, Kind: RuleDate},
		{Column: models.ColNeighborhood, Kind: RuleNeighborhood},
		{Column: models.ColSex, Kind: RuleCategorical},
		{Column: models.ColBusinessType, Kind: RuleCategorical},
		{Column: models.ColBusinessIdea, Kind: RuleCategorical},
		{Column: models.ColCreditLine, Kind: RuleCategorical},
		{Column: models.ColAmount, Kind: RuleCurrency},
	}
}

// WithFoldAccents appends a fold_accents rule for each column.
func WithFoldAccents(rules []ColumnRule, columns ...string) []ColumnRule {
	out := append([]ColumnRule(nil), rules...)
	for _, col := range columns {
		out = append(out, ColumnRule{Column: col, Kind: RuleFoldAccents})
	}
	return out
}

// Apply runs the rule against t and returns the new table.
func (r ColumnRule) Apply(t *models.Table) (*models.Table, error) {
	switch r.Kind {
	case RuleDate:
		return NormalizeDates(t, r.Column)
	case RuleNeighborhood:
		return NormalizeNeighborhood(t, r.Column)
	case RuleCategorical:
		return NormalizeCategorical(t, r.Column)
	case RuleCurrency:
		return NormalizeCurrency(t, r.Column)
	case RuleFoldAccents:
		return mapText(t, r.Column, FoldAccents)
	default:
		return nil, fmt.Errorf("unknown rule kind %q for column %q", r.Kind, r.Column)
	}
}

// LevelColumns returns the free-text columns touched by rules, in rule order,
// without repeats.
func LevelColumns(rules []ColumnRule) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, r := range rules {
		switch r.Kind {
		case RuleNeighborhood, RuleCategorical, RuleFoldAccents:
			if !seen[r.Column] {
				seen[r.Column] = true
				cols = append(cols, r.Column)
			}
		}
	}
	return cols
}
