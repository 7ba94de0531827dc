// Package memory is an in-process TableWriter used in tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sync"

	"blocapp/internal/core"
)

type Store struct {
	mu     sync.Mutex
	tables map[tableKey][]core.BillingRow
	writes int
}

type tableKey struct {
	associationID string
	month         string
}

func New() *Store {
	return &Store{tables: make(map[tableKey][]core.BillingRow)}
}

// WriteTable keeps the latest table per association and month, matching the
// overwrite semantics of the spreadsheet adapter.
func (s *Store) WriteTable(_ context.Context, associationID, month string, rows []core.BillingRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]core.BillingRow, len(rows))
	copy(copied, rows)
	s.tables[tableKey{associationID: associationID, month: month}] = copied
	s.writes++
	return nil
}

// Table returns the stored rows for a month, nil when never written.
func (s *Store) Table(associationID, month string) []core.BillingRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[tableKey{associationID: associationID, month: month}]
}

// Writes returns how many tables have been written in total.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
