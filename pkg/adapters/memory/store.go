package memory

import (
	"context"
	"sync"

	"github.com/espalier-dev/espalier/pkg/ports"
)

// defaultCapacity bounds how many records the store keeps per bot.
const defaultCapacity = 1000

// Store implements ports.TurnStore in memory, keeping the newest records
// per bot. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	capacity int
	records  map[string][]ports.TurnRecord
}

// StoreOption configures the store.
type StoreOption func(*Store)

// WithCapacity bounds the per-bot record count.
func WithCapacity(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// NewStore creates an in-memory turn store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		capacity: defaultCapacity,
		records:  make(map[string][]ports.TurnRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records one turn, evicting the oldest record once the per-bot
// capacity is reached.
func (s *Store) Append(ctx context.Context, rec ports.TurnRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := append(s.records[rec.Bot], rec)
	if len(recs) > s.capacity {
		recs = recs[len(recs)-s.capacity:]
	}
	s.records[rec.Bot] = recs
	return nil
}

// Recent returns up to n of the latest records for a bot, newest first.
func (s *Store) Recent(ctx context.Context, bot string, n int) ([]ports.TurnRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.records[bot]
	if len(recs) == 0 {
		return nil, nil
	}
	if n <= 0 || n > len(recs) {
		n = len(recs)
	}
	out := make([]ports.TurnRecord, 0, n)
	for i := len(recs) - 1; i >= len(recs)-n; i-- {
		out = append(out, recs[i])
	}
	return out, nil
}
