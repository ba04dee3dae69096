package store

import (
	"time"

	"psxscan/internal/model"
)

// Store caches raw per-date market snapshots so historical windows are
// fetched from PSX at most once. Classification results are never stored.
type Store interface {
	SaveDay(date time.Time, rows []model.Quote) error
	LoadDay(date time.Time) ([]model.Quote, error)
	Close() error
}

// NoopStore is used when SQLite is not configured; every lookup misses.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveDay(_ time.Time, _ []model.Quote) error      { return nil }
func (n *NoopStore) LoadDay(_ time.Time) ([]model.Quote, error)      { return nil, nil }
func (n *NoopStore) Close() error                                    { return nil }
