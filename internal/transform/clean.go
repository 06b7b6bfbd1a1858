// Package transform provides value de-formatting, numeric coercion, and the
// static lookup tables used when normalizing report rows.
package transform

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"
)

var (
	moneyReplacer = strings.NewReplacer("$", "", ",", "")
	countReplacer = strings.NewReplacer(",", "")
)

// CleanMoney strips currency symbols, thousands separators, and surrounding
// whitespace: "$12,345.00" → "12345.00". The result is not validated.
func CleanMoney(s string) string {
	return strings.TrimSpace(moneyReplacer.Replace(s))
}

// CleanCount strips thousands separators and surrounding whitespace.
func CleanCount(s string) string {
	return strings.TrimSpace(countReplacer.Replace(s))
}

// isFlag reports suppression and placeholder markers used in federal tables.
func isFlag(s string) bool {
	switch s {
	case "", "*", "**", "#", "-", "—", "–", "N/A", "NA", "n/a", "(NA)", "(X)", "(D)", "(S)":
		return true
	}
	return false
}

// ParseDecimal parses a de-formatted decimal. It tolerates leftover "$" and
// "," so raw cells can be passed too. ok is false for empty, flagged, or
// non-numeric values and for NaN/Inf.
func ParseDecimal(s string) (v float64, ok bool) {
	s = CleanMoney(s)
	if isFlag(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseCount parses a de-formatted whole count. Values written with a
// zero fraction ("1200.0") are accepted.
func ParseCount(s string) (n int64, ok bool) {
	s = CleanCount(s)
	if isFlag(s) {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}

// DecimalPtr returns a pointer to the parsed value, or nil when s is malformed.
func DecimalPtr(s string) *float64 {
	v, ok := ParseDecimal(s)
	if !ok {
		return nil
	}
	return &v
}

// CountPtr returns a pointer to the parsed count, or nil when s is malformed.
func CountPtr(s string) *int64 {
	n, ok := ParseCount(s)
	if !ok {
		return nil
	}
	return &n
}

// FormatDecimal renders v in its shortest exact form ("1234.5").
func FormatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
