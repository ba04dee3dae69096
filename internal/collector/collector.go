package collector

import (
	"fmt"
	"log"
	"time"

	"psxscan/internal/calendar"
	"psxscan/internal/model"
	"psxscan/internal/store"
)

// MarketData bundles everything the classifier needs for one scan.
type MarketData struct {
	RefDate  time.Time
	PrevDate time.Time // zero when no previous trading day was found
	Today    []model.Quote
	PrevDay  []model.Quote
	Weekly   []model.Quote
	Monthly  []model.Quote
	Meta     model.MetadataMap
}

// Collector assembles today's snapshot, the three historical windows and
// symbol metadata, reading historical dates through the snapshot store.
type Collector struct {
	Fetcher     Fetcher
	Store       store.Store
	MaxDaysBack int
}

// NewCollector creates a Collector. maxDaysBack bounds the backward search
// for the previous trading day; values < 1 fall back to 5.
func NewCollector(fetcher Fetcher, st store.Store, maxDaysBack int) *Collector {
	if maxDaysBack < 1 {
		maxDaysBack = 5
	}
	return &Collector{Fetcher: fetcher, Store: st, MaxDaysBack: maxDaysBack}
}

// Collect fetches all inputs for a scan referenced at ref. Metadata and
// today's snapshot are required; historical window dates that fail to
// fetch are logged and skipped so one bad date cannot abort the scan.
func (c *Collector) Collect(ref time.Time) (*MarketData, error) {
	meta, err := c.Fetcher.FetchMetadata()
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	today, err := c.Fetcher.FetchToday()
	if err != nil {
		return nil, fmt.Errorf("fetch today snapshot: %w", err)
	}

	data := &MarketData{RefDate: ref, Today: today, Meta: meta}

	// Previous trading day: walk candidates until one yields rows.
	for _, day := range calendar.PreviousTradingDayCandidates(ref, c.MaxDaysBack) {
		rows := c.loadOrFetch(day)
		if len(rows) > 0 {
			data.PrevDay = rows
			data.PrevDate = day
			break
		}
	}
	if data.PrevDate.IsZero() {
		log.Printf("[WARN] no previous trading day found within %d days of %s",
			c.MaxDaysBack, ref.Format("2006-01-02"))
	}

	weekMon, weekFri := calendar.PreviousWeekSpan(ref)
	data.Weekly = c.collectSpan(weekMon, weekFri)

	monthFirst, monthLast := calendar.PreviousMonthSpan(ref)
	data.Monthly = c.collectSpan(monthFirst, monthLast)

	return data, nil
}

func (c *Collector) collectSpan(from, to time.Time) []model.Quote {
	var rows []model.Quote
	for _, day := range calendar.BusinessDays(from, to) {
		rows = append(rows, c.loadOrFetch(day)...)
	}
	return rows
}

// loadOrFetch reads a date from the store, falling back to the fetcher and
// caching the result. Failures degrade to an empty day.
func (c *Collector) loadOrFetch(day time.Time) []model.Quote {
	cached, err := c.Store.LoadDay(day)
	if err != nil {
		log.Printf("[WARN] load cached day %s: %v", day.Format("2006-01-02"), err)
	}
	if len(cached) > 0 {
		return cached
	}

	rows, err := c.Fetcher.FetchByDate(day)
	if err != nil {
		log.Printf("[WARN] fetch %s: %v", day.Format("2006-01-02"), err)
		return nil
	}
	if len(rows) == 0 {
		return nil // holiday or suspended session
	}
	if err := c.Store.SaveDay(day, rows); err != nil {
		log.Printf("[WARN] cache day %s: %v", day.Format("2006-01-02"), err)
	}
	return rows
}
