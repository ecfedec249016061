// Package flows ships the built-in bot definitions. They double as the
// engine's integration fixtures: every dialog path the engine supports is
// exercised by at least one of them.
package flows

import (
	"context"
	"embed"
	"fmt"

	"github.com/espalier-dev/espalier/pkg/adapters/flowfile"
	"github.com/espalier-dev/espalier/pkg/flow"
)

//go:embed *.yaml
var fs embed.FS

// All parses and validates every embedded flow.
func All() ([]*flow.Flow, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}
	flows := make([]*flow.Flow, 0, len(entries))
	for _, entry := range entries {
		data, err := fs.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded flow %s: %w", entry.Name(), err)
		}
		f, err := flowfile.Parse(data, entry.Name())
		if err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	return flows, nil
}

// Source adapts the embedded flows to ports.FlowSource.
type Source struct{}

// Load implements ports.FlowSource.
func (Source) Load(ctx context.Context) ([]*flow.Flow, error) {
	return All()
}
