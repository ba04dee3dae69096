package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"psxscan/internal/model"
)

// maxReportRows caps the per-row section; on broad-breakout days the tail
// is summarized as a count instead of listed.
const maxReportRows = 25

// statusGlyph renders a period status the way the dashboard did.
func statusGlyph(s model.PeriodStatus) string {
	switch s {
	case model.StatusBreakout:
		return "▲▲"
	case model.StatusBreakdown:
		return "▼▼"
	case model.StatusWithinRange:
		return "–"
	case model.StatusDataError:
		return "ERR"
	default:
		return "N/A"
	}
}

func circuitGlyph(s model.CircuitStatus) string {
	switch s {
	case model.CircuitUpper:
		return "Upper Circuit Breaker"
	case model.CircuitLower:
		return "Lower Circuit Breaker"
	case model.CircuitNormal:
		return "Normal"
	default:
		return "N/A"
	}
}

func fmtNull(d decimal.NullDecimal) string {
	if !d.Valid {
		return "N/A"
	}
	return d.Decimal.StringFixed(2)
}

// FormatScanReport renders the scan results as a text report.
func FormatScanReport(refDate, prevDate time.Time, results []model.ClassificationResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>PSX Breakout Scan</b> | %s\n", refDate.Format("2006-01-02")))
	if prevDate.IsZero() {
		b.WriteString("Previous trading day: not found (LDCP fallback in effect)\n\n")
	} else {
		b.WriteString(fmt.Sprintf("Previous trading day: %s\n\n", prevDate.Format("2006-01-02")))
	}

	if len(results) == 0 {
		b.WriteString("No symbols matched the scan filters.\n")
		return b.String()
	}

	b.WriteString(FormatSummary(results))
	b.WriteString("\n")

	shown := results
	if len(shown) > maxReportRows {
		shown = shown[:maxReportRows]
	}
	for _, r := range shown {
		b.WriteString(FormatResultLine(r))
	}
	if len(results) > len(shown) {
		b.WriteString(fmt.Sprintf("… and %d more symbols\n", len(results)-len(shown)))
	}
	return b.String()
}

// FormatSummary renders the per-period breakout/breakdown counts.
func FormatSummary(results []model.ClassificationResult) string {
	var dailyUp, dailyDown, weeklyUp, weeklyDown, monthlyUp, monthlyDown, circuits int
	for _, r := range results {
		switch r.DailyStatus {
		case model.StatusBreakout:
			dailyUp++
		case model.StatusBreakdown:
			dailyDown++
		}
		switch r.WeeklyStatus {
		case model.StatusBreakout:
			weeklyUp++
		case model.StatusBreakdown:
			weeklyDown++
		}
		switch r.MonthlyStatus {
		case model.StatusBreakout:
			monthlyUp++
		case model.StatusBreakdown:
			monthlyDown++
		}
		if r.CircuitBreaker == model.CircuitUpper || r.CircuitBreaker == model.CircuitLower {
			circuits++
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Symbols scanned: %d\n", len(results)))
	b.WriteString(fmt.Sprintf("Daily:   ▲▲ %d | ▼▼ %d\n", dailyUp, dailyDown))
	b.WriteString(fmt.Sprintf("Weekly:  ▲▲ %d | ▼▼ %d\n", weeklyUp, weeklyDown))
	b.WriteString(fmt.Sprintf("Monthly: ▲▲ %d | ▼▼ %d\n", monthlyUp, monthlyDown))
	b.WriteString(fmt.Sprintf("Circuit breaker hits: %d\n", circuits))
	return b.String()
}

// FormatResultLine renders one classified symbol.
func FormatResultLine(r model.ClassificationResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s</b> (%s) close %s vol %s\n",
		r.Symbol, r.Sector, r.Close.StringFixed(2), humanize.Comma(r.Volume)))
	b.WriteString(fmt.Sprintf("  D %s [%s/%s] | W %s [%s/%s] | M %s [%s/%s]\n",
		statusGlyph(r.DailyStatus), fmtNull(r.PrevDayHigh), fmtNull(r.PrevDayLow),
		statusGlyph(r.WeeklyStatus), fmtNull(r.WeeklyHigh), fmtNull(r.WeeklyLow),
		statusGlyph(r.MonthlyStatus), fmtNull(r.MonthlyHigh), fmtNull(r.MonthlyLow)))
	if r.CircuitBreaker == model.CircuitUpper || r.CircuitBreaker == model.CircuitLower {
		b.WriteString(fmt.Sprintf("  ⚡ %s\n", circuitGlyph(r.CircuitBreaker)))
	}
	if r.KMICompliant {
		b.WriteString("  ☪ KMI compliant\n")
	}
	return b.String()
}
