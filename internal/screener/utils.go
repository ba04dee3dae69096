package screener

import (
	"sort"

	"psxscan/internal/classifier"
	"psxscan/internal/model"
)

// OpenAbovePrevClose returns the rows of a single symbol's history whose
// open exceeds the close from `days` rows earlier. History is sorted by
// date before shifting; rows with unparseable open or close are dropped.
func OpenAbovePrevClose(history []model.Quote, days int) []model.Quote {
	if days <= 0 {
		days = 1
	}
	sorted := sortByDate(history)

	var out []model.Quote
	for i := days; i < len(sorted); i++ {
		open, ok := classifier.ParseDecimal(sorted[i].Open)
		if !ok {
			continue
		}
		prevClose, ok := classifier.ParseDecimal(sorted[i-days].Close)
		if !ok {
			continue
		}
		if open.GreaterThan(prevClose) {
			out = append(out, sorted[i])
		}
	}
	return out
}

// VolumeIncreasing reports whether volume is monotonically non-decreasing
// over the trailing window of the symbol's history. A window with fewer
// than two parseable rows is trivially increasing.
func VolumeIncreasing(history []model.Quote, window int) bool {
	if window <= 0 {
		window = 5
	}
	sorted := sortByDate(history)
	if len(sorted) > window {
		sorted = sorted[len(sorted)-window:]
	}

	var prev int64
	var hasPrev bool
	for _, q := range sorted {
		v, ok := classifier.ParseVolume(q.Volume)
		if !ok {
			continue
		}
		if hasPrev && v < prev {
			return false
		}
		prev = v
		hasPrev = true
	}
	return true
}

func sortByDate(history []model.Quote) []model.Quote {
	sorted := make([]model.Quote, len(history))
	copy(sorted, history)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	return sorted
}
