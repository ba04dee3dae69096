package collector

import (
	"time"

	"psxscan/internal/model"
)

// Fetcher defines the interface for acquiring PSX market data.
type Fetcher interface {
	// FetchToday returns the current full-market snapshot.
	FetchToday() ([]model.Quote, error)
	// FetchByDate returns the closing snapshot for a past date. An empty
	// slice with a nil error means the market had no data for that date.
	FetchByDate(date time.Time) ([]model.Quote, error)
	// FetchMetadata returns the symbol -> company metadata mapping.
	FetchMetadata() (model.MetadataMap, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Today  []model.Quote
	ByDate map[string][]model.Quote // keyed by YYYY-MM-DD
	Meta   model.MetadataMap
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchToday() ([]model.Quote, error) {
	return m.Today, nil
}

func (m *MockFetcher) FetchByDate(date time.Time) ([]model.Quote, error) {
	return m.ByDate[date.Format("2006-01-02")], nil
}

func (m *MockFetcher) FetchMetadata() (model.MetadataMap, error) {
	if m.Meta != nil {
		return m.Meta, nil
	}
	return model.MetadataMap{}, nil
}
