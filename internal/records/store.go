// Package records loads the sales export into an immutable reference table.
package records

import (
	"slices"

	"github.com/verte-zerg/salesdash/internal/model"
)

// Store holds the loaded records. It is never mutated after construction, so it can be
// shared between goroutines without locking.
type Store struct {
	records []model.Record
}

// NewStore copies records into a new Store.
func NewStore(records []model.Record) *Store {
	return &Store{records: slices.Clone(records)}
}

// Len returns the number of records.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns a copy of the stored records in load order.
func (s *Store) Records() []model.Record {
	if s == nil {
		return nil
	}
	return slices.Clone(s.records)
}

// View returns the stored records without copying. Callers must not modify the slice.
func (s *Store) View() []model.Record {
	if s == nil {
		return nil
	}
	return s.records
}
