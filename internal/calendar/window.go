package calendar

import "time"

// weekdayIndex maps Monday to 0 .. Sunday to 6.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	return weekdayIndex(t) >= 5
}

// midnight truncates to the calendar date, keeping the location.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PreviousTradingDayCandidates walks backward from ref one calendar day at
// a time, skipping Saturdays and Sundays, and returns the candidate dates
// in most-recent-first order. The budget is counted in calendar days, so
// weekends consume lookback steps. The caller fetches data for each
// candidate until one yields rows.
func PreviousTradingDayCandidates(ref time.Time, maxLookback int) []time.Time {
	var candidates []time.Time
	day := midnight(ref)
	for i := 0; i < maxLookback; i++ {
		day = day.AddDate(0, 0, -1)
		if IsWeekend(day) {
			continue
		}
		candidates = append(candidates, day)
	}
	return candidates
}

// PreviousWeekSpan returns the Monday and Friday of the calendar week
// immediately preceding the week containing ref.
func PreviousWeekSpan(ref time.Time) (monday, friday time.Time) {
	monday = midnight(ref).AddDate(0, 0, -(weekdayIndex(ref) + 7))
	friday = monday.AddDate(0, 0, 4)
	return monday, friday
}

// PreviousMonthSpan returns the first and last day of the calendar month
// immediately preceding ref's month.
func PreviousMonthSpan(ref time.Time) (first, last time.Time) {
	firstOfMonth := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	last = firstOfMonth.AddDate(0, 0, -1)
	first = time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, last.Location())
	return first, last
}

// BusinessDays enumerates the Monday-Friday dates in [from, to] in
// chronological order.
func BusinessDays(from, to time.Time) []time.Time {
	var days []time.Time
	for d := midnight(from); !d.After(midnight(to)); d = d.AddDate(0, 0, 1) {
		if IsWeekend(d) {
			continue
		}
		days = append(days, d)
	}
	return days
}
