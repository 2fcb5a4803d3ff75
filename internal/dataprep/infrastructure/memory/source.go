package memory

import (
	"context"
	"fmt"
	"sync"

	dataprep "lantern/internal/dataprep/domain"
)

// Source is an in-memory table source for demo/testing.
type Source struct {
	mu     sync.RWMutex
	tables map[string]*dataprep.Table
	loads  map[string]int
}

// NewSource constructs an empty source.
func NewSource() *Source {
	return &Source{
		tables: make(map[string]*dataprep.Table),
		loads:  make(map[string]int),
	}
}

// Put stores a table under name.
func (s *Source) Put(name string, table *dataprep.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[name] = table
}

// LoadTable returns the table stored under name.
func (s *Source) LoadTable(ctx context.Context, name string) (*dataprep.Table, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	table := s.tables[name]
	if table == nil {
		return nil, fmt.Errorf("%w: %q", dataprep.ErrSourceNotFound, name)
	}
	s.loads[name]++
	return table, nil
}

// Loads reports how often name was loaded.
func (s *Source) Loads(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loads[name]
}
