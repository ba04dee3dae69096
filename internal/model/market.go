package model

import (
	"strings"
	"time"
)

// Quote is one symbol's trading data for one date, exactly as published:
// numeric fields are display-formatted strings and may contain thousands
// separators or be blank / "-" / "N/A".
type Quote struct {
	Symbol string
	Date   time.Time
	LDCP   string
	Open   string
	High   string
	Low    string
	Close  string
	Volume string
}

// CanonicalSymbol returns the trimmed, upper-cased form used for matching.
func CanonicalSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
