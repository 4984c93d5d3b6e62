package similarity

import (
	"context"
	"sync"

	"github.com/seistrack/famview/internal/domain/catalog"
)

// MemStore is an in-memory PairStore safe for concurrent use.  It is the
// store of choice for single-process runs and for tests; persistent
// implementations live in internal/infrastructure/database.
type MemStore struct {
	mu    sync.RWMutex
	pairs map[PairKey]PairValue
}

// NewMemStore returns an empty in-memory pair store.
func NewMemStore() *MemStore {
	return &MemStore{pairs: make(map[PairKey]PairValue)}
}

// Lookup implements PairStore.
func (s *MemStore) Lookup(_ context.Context, a, b catalog.EventID) (PairValue, bool, error) {
	s.mu.RLock()
	v, ok := s.pairs[NewPairKey(a, b)]
	s.mu.RUnlock()
	return v, ok, nil
}

// Insert implements PairStore.
func (s *MemStore) Insert(_ context.Context, a, b catalog.EventID, v PairValue) error {
	s.mu.Lock()
	s.pairs[NewPairKey(a, b)] = v
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored pairs.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pairs)
}
