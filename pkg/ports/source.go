package ports

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/flow"
)

// FlowSource supplies flow definitions. This decouples the engine from how
// bots are authored (YAML directory, embedded assets, tests building flows
// in code).
type FlowSource interface {
	// Load returns every flow the source knows about. Implementations
	// validate before returning; a source never hands out a broken flow.
	Load(ctx context.Context) ([]*flow.Flow, error)
}

// Watchable is implemented by sources that can notify about backend
// changes, typically for hot reload in development.
type Watchable interface {
	// Watch returns a channel signaled when the underlying definitions
	// change. It abstracts the event details; a tick means "reload".
	Watch(ctx context.Context) (<-chan struct{}, error)
}
