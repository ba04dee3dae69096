package classifier

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimal converts a display-formatted numeric string into a decimal.
// Thousands separators are stripped. Blank, "-", "N/A" and anything else
// that fails to parse report ok=false instead of an error: a missing field
// must not take the whole row down, and the caller decides whether the
// field was required.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" || cleaned == "-" || strings.EqualFold(cleaned, "N/A") {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseVolume parses a share count, tolerating thousands separators and a
// trailing decimal part.
func ParseVolume(s string) (int64, bool) {
	d, ok := ParseDecimal(s)
	if !ok || d.IsNegative() {
		return 0, false
	}
	return d.IntPart(), true
}
