package screener

import (
	"strings"

	"psxscan/internal/model"
)

// Options is the dashboard filter surface applied to a scan's results.
// Zero values mean "no filtering" for each field.
type Options struct {
	// BreakoutOnly keeps rows breaking out on all three periods.
	BreakoutOnly bool
	// Sector keeps rows in the named sector; "" or "All" disables.
	Sector string
	// KMI is "All"/"" (off), "Yes" (compliant only), or "No".
	KMI string
	// CircuitBreaker keeps rows with the given status; empty disables.
	CircuitBreaker model.CircuitStatus
	// Symbols keeps only the listed symbols (any case, trimmed).
	Symbols []string
}

// Apply filters results according to opts, preserving order.
func Apply(results []model.ClassificationResult, opts Options) []model.ClassificationResult {
	wanted := make(map[string]struct{}, len(opts.Symbols))
	for _, s := range opts.Symbols {
		if canon := model.CanonicalSymbol(s); canon != "" {
			wanted[canon] = struct{}{}
		}
	}

	filtered := make([]model.ClassificationResult, 0, len(results))
	for _, r := range results {
		if opts.BreakoutOnly &&
			(r.DailyStatus != model.StatusBreakout ||
				r.WeeklyStatus != model.StatusBreakout ||
				r.MonthlyStatus != model.StatusBreakout) {
			continue
		}
		if opts.Sector != "" && opts.Sector != "All" && !strings.EqualFold(r.Sector, opts.Sector) {
			continue
		}
		switch opts.KMI {
		case "Yes":
			if !r.KMICompliant {
				continue
			}
		case "No":
			if r.KMICompliant {
				continue
			}
		}
		if opts.CircuitBreaker != "" && r.CircuitBreaker != opts.CircuitBreaker {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[r.Symbol]; !ok {
				continue
			}
		}
		filtered = append(filtered, r)
	}
	return filtered
}
