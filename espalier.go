/*
Package espalier is a deterministic per-turn orchestration engine for IVR
dialog bots.

A third-party NLU service drives each phone conversation and invokes this
engine once per caller utterance. The engine is a pure function of the turn
input — recognized intent, filled slots, and the session attributes carried
over from the previous turn — and returns a directive: delegate, elicit a
slot, elicit an intent, or close with a transfer destination or a spoken
answer. No state lives in the process; the attribute bag handed back and
forth is the whole conversation.

# Usage

	eng, err := espalier.New("./flows")
	if err != nil {
		log.Fatal(err)
	}

	out, err := eng.Turn(ctx, turnInput)

Bots are YAML flow definitions: a step graph (or a conditional slot
sequence) with prompts, retry budgets and terminal routing. See the flows
directory for complete examples.
*/
package espalier

import (
	"context"
	"fmt"

	"github.com/espalier-dev/espalier/pkg/adapters/flowfile"
	"github.com/espalier-dev/espalier/pkg/engine"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/registry"
)

// Version is the library version reported by the CLI and the MCP server.
const Version = "0.3.0"

// New builds an engine from a directory of YAML flow definitions.
func New(flowDir string, opts ...engine.Option) (*engine.Engine, error) {
	reg, err := NewRegistry(flowfile.New(flowDir))
	if err != nil {
		return nil, err
	}
	return engine.New(reg, opts...), nil
}

// NewFromRegistry builds an engine over an already-populated registry.
func NewFromRegistry(reg *registry.Registry, opts ...engine.Option) *engine.Engine {
	return engine.New(reg, opts...)
}

// NewRegistry loads and validates every flow a source provides.
func NewRegistry(src ports.FlowSource) (*registry.Registry, error) {
	reg, err := registry.NewFromSource(context.Background(), src)
	if err != nil {
		return nil, fmt.Errorf("initialize flow registry: %w", err)
	}
	return reg, nil
}
