// Package memory provides in-process adapters: a flow source for embedding
// flows built in code, and a ring-buffered turn store for tests and
// single-node diagnostics.
package memory

import (
	"context"
	"sync"

	"github.com/espalier-dev/espalier/pkg/flow"
)

// Source implements ports.FlowSource over a static slice of flows.
type Source struct {
	mu    sync.RWMutex
	flows []*flow.Flow
}

// NewSource creates a source over the given flows.
func NewSource(flows ...*flow.Flow) *Source {
	return &Source{flows: flows}
}

// Load returns the configured flows.
func (s *Source) Load(ctx context.Context) ([]*flow.Flow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*flow.Flow, len(s.flows))
	copy(out, s.flows)
	return out, nil
}

// Add appends a flow, for tests that grow a source incrementally.
func (s *Source) Add(f *flow.Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows = append(s.flows, f)
}
