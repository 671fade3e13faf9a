// Package memory provides in-memory implementations of the driven storage
// ports. Service tests run against them instead of a database.
package memory

import "context"

// Store bundles every in-memory store.
type Store struct {
	stats    *StatsStore
	ledger   *Ledger
	items    *ItemStore
	receipts *ReceiptStore
	sessions *SessionStore
}

// NewStore creates an empty store whose ledger counts into its stats store.
func NewStore() *Store {
	stats := NewStatsStore()
	return &Store{
		stats:    stats,
		ledger:   NewLedger(stats),
		items:    NewItemStore(),
		receipts: NewReceiptStore(),
		sessions: NewSessionStore(),
	}
}

// Ledger returns the ledger.
func (s *Store) Ledger() *Ledger { return s.ledger }

// ItemStore returns the item store.
func (s *Store) ItemStore() *ItemStore { return s.items }

// ReceiptStore returns the receipt store.
func (s *Store) ReceiptStore() *ReceiptStore { return s.receipts }

// StatsStore returns the stats store.
func (s *Store) StatsStore() *StatsStore { return s.stats }

// SessionStore returns the session store.
func (s *Store) SessionStore() *SessionStore { return s.sessions }

// Name identifies the store in health reports.
func (s *Store) Name() string { return "database" }

// Check always succeeds.
func (s *Store) Check(_ context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
