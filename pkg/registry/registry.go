// Package registry indexes validated flows by bot name and locale.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/flow"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Registry is a concurrency-safe flow index. Lookups happen on every turn;
// registration happens at startup and on hot reload.
type Registry struct {
	mu    sync.RWMutex
	flows map[string]*flow.Flow
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{flows: make(map[string]*flow.Flow)}
}

// NewFromSource loads and registers every flow a source provides.
func NewFromSource(ctx context.Context, src ports.FlowSource) (*Registry, error) {
	r := New()
	if err := r.Reload(ctx, src); err != nil {
		return nil, err
	}
	return r, nil
}

func key(bot, locale string) string {
	return bot + "\x00" + locale
}

// Register validates and adds a flow. A duplicate bot+locale pair is a
// configuration bug.
func (r *Registry) Register(f *flow.Flow) error {
	if err := f.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(f.Name, f.Locale)
	if _, exists := r.flows[k]; exists {
		return fmt.Errorf("flow %q (%s) registered twice", f.Name, f.Locale)
	}
	r.flows[k] = f
	return nil
}

// Lookup resolves the flow for a bot and locale. A flow registered with an
// empty locale serves every locale of that bot.
func (r *Registry) Lookup(bot, locale string) (*flow.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if f, ok := r.flows[key(bot, locale)]; ok {
		return f, nil
	}
	if f, ok := r.flows[key(bot, "")]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%w: bot %q locale %q", domain.ErrFlowNotFound, bot, locale)
}

// Names lists registered bot names, sorted and deduplicated.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool, len(r.flows))
	var names []string
	for _, f := range r.flows {
		if !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Flows returns every registered flow.
func (r *Registry) Flows() []*flow.Flow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*flow.Flow, 0, len(r.flows))
	for _, f := range r.flows {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Locale < out[j].Locale
	})
	return out
}

// Reload atomically replaces the registry contents from a source. On any
// load or validation error the previous contents stay in place.
func (r *Registry) Reload(ctx context.Context, src ports.FlowSource) error {
	flows, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load flows: %w", err)
	}
	next := make(map[string]*flow.Flow, len(flows))
	for _, f := range flows {
		if err := f.Validate(); err != nil {
			return err
		}
		k := key(f.Name, f.Locale)
		if _, exists := next[k]; exists {
			return fmt.Errorf("flow %q (%s) defined twice", f.Name, f.Locale)
		}
		next[k] = f
	}
	r.mu.Lock()
	r.flows = next
	r.mu.Unlock()
	return nil
}
