package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus classifies today's close against one reference window.
type PeriodStatus string

const (
	StatusBreakout    PeriodStatus = "BREAKOUT"     // close above the window high
	StatusBreakdown   PeriodStatus = "BREAKDOWN"    // close below the window low
	StatusWithinRange PeriodStatus = "WITHIN_RANGE" // close inside the window
	StatusUnavailable PeriodStatus = "UNAVAILABLE"  // no historical rows for the symbol
	StatusDataError   PeriodStatus = "DATA_ERROR"   // rows present but unusable
)

// CircuitStatus is the circuit-breaker determination.
type CircuitStatus string

const (
	CircuitUpper       CircuitStatus = "UPPER_CIRCUIT_BREAKER"
	CircuitLower       CircuitStatus = "LOWER_CIRCUIT_BREAKER"
	CircuitNormal      CircuitStatus = "NORMAL"      // checked, no breach
	CircuitUnavailable CircuitStatus = "UNAVAILABLE" // previous close unknown
)

// ClassificationResult is one classified row of the scan output.
type ClassificationResult struct {
	Symbol       string
	CompanyName  string
	Sector       string
	KMICompliant bool
	Date         time.Time

	LDCP   decimal.Decimal
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64

	// Reference extrema; Valid is false when the window had no usable data.
	PrevDayHigh decimal.NullDecimal
	PrevDayLow  decimal.NullDecimal
	WeeklyHigh  decimal.NullDecimal
	WeeklyLow   decimal.NullDecimal
	MonthlyHigh decimal.NullDecimal
	MonthlyLow  decimal.NullDecimal

	DailyStatus    PeriodStatus
	WeeklyStatus   PeriodStatus
	MonthlyStatus  PeriodStatus
	CircuitBreaker CircuitStatus
}
