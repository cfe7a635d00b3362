package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrUnparseableDate is returned when a value matches none of DateLayouts.
var ErrUnparseableDate = errors.New("date matches no accepted layout")

// DateLayouts are tried in order; the first successful parse wins.
var DateLayouts = []string{
	"2006/1/2", // year/month/day
	"2/1/2006", // day/month/year
}

// ParseDate parses a benefit date written as YYYY/MM/DD or DD/MM/YYYY.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, s)
}

// normaliseNeighborhood lowercases and turns "_" and "-" into spaces.
// Surrounding whitespace is kept.
func normaliseNeighborhood(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ReplaceAll(s, "-", " ")
}

// normaliseCategory lowercases, turns "-" and "_" into spaces, drops commas
// and then trims. Commas go before the trim so "a, " ends up as "a".
func normaliseCategory(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// normaliseAmount strips the currency sign, a ".00" or ".0" decimal group,
// thousands separators and surrounding whitespace. It is plain text
// substitution: "$1,234.05" keeps its ".05".
//
// Examples:
//
//	"$1,234.00" → "1234"
//	"$ 500.0 "  → "500"
//	"$1,234.05" → "1234.05"
func normaliseAmount(s string) string {
	s = strings.ReplaceAll(s, "$", "")
	s = removeDecimalGroup(s, ".00")
	s = removeDecimalGroup(s, ".0")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// removeDecimalGroup removes every occurrence of lit that is not followed by
// another digit, so ".0" never eats the start of ".05".
func removeDecimalGroup(s, lit string) string {
	var b strings.Builder
	b.Grow(len(s))
	for {
		i := strings.Index(s, lit)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := i + len(lit)
		if end < len(s) && s[end] >= '0' && s[end] <= '9' {
			b.WriteString(s[:end])
		} else {
			b.WriteString(s[:i])
		}
		s = s[end:]
	}
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents removes combining marks: "línea" → "linea", "ü" → "u".
func FoldAccents(s string) string {
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		return s
	}
	return out
}
