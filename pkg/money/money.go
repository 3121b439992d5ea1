// Package money provides parsing and formatting for the currency-formatted
// cell values found in AICP budget sheets. It wraps go-money for display
// formatting and shopspring/decimal for precise parsing, so float conversion
// happens exactly once per value.
package money

import (
	"errors"
	"strconv"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrNotMoney reports an input that could not be interpreted as a currency
// amount. Callers that treat blank-as-zero should use ParseOrZero instead.
var ErrNotMoney = errors.New("money: value is not a currency amount")

// naValues are sheet placeholders that mean "no value here".
var naValues = map[string]bool{
	"":     true,
	"#N/A": true,
	"N/A":  true,
	"-":    true,
	"--":   true,
}

// Parse converts a currency-formatted cell value to a float amount.
// It strips "$" and thousands separators, and treats a parenthesized value
// as negative ("($1,234.56)" -> -1234.56). Blank and #N/A inputs parse to
// zero without error; anything else unparsable returns ErrNotMoney.
func Parse(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if naValues[cleaned] {
		return 0, nil
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ErrNotMoney
	}
	if negative {
		d = d.Neg()
	}
	return d.InexactFloat64(), nil
}

// ParseOrZero is Parse with the deliberate zero fallback the budget sheets
// require: currency cells are frequently left blank meaning zero, so any
// unparsable input maps to 0.0. Callers log the fallback where it matters.
func ParseOrZero(raw string) float64 {
	v, err := Parse(raw)
	if err != nil {
		return 0
	}
	return v
}

// ParsePercent parses a percentage-typed cell (the P&W cells). A trailing
// "%" divides the value by 100 ("28%" -> 0.28); a bare number passes
// through unchanged so pre-divided fractions survive a round trip.
func ParsePercent(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if naValues[cleaned] {
		return 0, nil
	}

	isPercent := strings.HasSuffix(cleaned, "%")
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	d, err := decimal.NewFromString(strings.TrimSpace(cleaned))
	if err != nil {
		return 0, ErrNotMoney
	}
	if isPercent {
		d = d.Div(decimal.NewFromInt(100))
	}
	return d.InexactFloat64(), nil
}

// Format renders an amount in the sheet's display convention: "$1,234.56".
// This is the inverse of Parse for non-negative amounts with at most two
// decimal places.
func Format(amount float64) string {
	cents := decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return gomoney.New(cents, gomoney.USD).Display()
}

// EnsureDollar normalizes a raw total cell to the sheet's "$..." display
// convention without re-parsing it. Values already carrying a dollar sign
// (or a parenthesized negative) pass through untouched.
func EnsureDollar(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "$") || strings.HasPrefix(trimmed, "($") || strings.HasPrefix(trimmed, "-$") {
		return trimmed
	}
	return "$" + trimmed
}

// FloatOrNull coerces a display cell into a nullable numeric for the
// warehouse stage. Blank and not-available markers become nil, which keeps
// "no value" distinguishable from a genuine zero downstream.
func FloatOrNull(raw string) *float64 {
	trimmed := strings.TrimSpace(raw)
	if naValues[strings.ToUpper(trimmed)] {
		return nil
	}
	f, err := Parse(trimmed)
	if err != nil {
		return nil
	}
	return &f
}

// IntOrDefault extracts an integer from a cell that may carry stray
// formatting, falling back to def when nothing numeric remains.
func IntOrDefault(raw string, def int) int {
	trimmed := strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '-' && i == 0 {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" || s == "-" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
