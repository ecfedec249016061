// Package flowfile loads flow definitions from a directory of YAML
// documents, one flow per file. It implements ports.FlowSource and, for
// development hot reload, ports.Watchable via fsnotify.
package flowfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/espalier-dev/espalier/pkg/flow"
)

// Loader reads every *.yaml / *.yml file under a directory.
type Loader struct {
	dir string
}

// New creates a loader for the given directory.
func New(dir string) *Loader {
	return &Loader{dir: dir}
}

// document is the on-disk shape: the flow itself plus a loose meta block.
type document struct {
	flow.Flow `yaml:",inline"`
	Meta      map[string]any `yaml:"meta,omitempty"`
}

// Load parses and validates every flow file. A single broken file fails the
// whole load; a partially applied flow set is worse than a loud startup
// error.
func (l *Loader) Load(ctx context.Context) ([]*flow.Flow, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read flow directory %s: %w", l.dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	flows := make([]*flow.Flow, 0, len(files))
	for _, name := range files {
		f, err := l.loadFile(filepath.Join(l.dir, name))
		if err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	return flows, nil
}

func (l *Loader) loadFile(path string) (*flow.Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read flow file %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes one YAML flow document and validates it.
func Parse(data []byte, origin string) (*flow.Flow, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse flow file %s: %w", origin, err)
	}

	f := doc.Flow
	if doc.Meta != nil {
		if err := mapstructure.Decode(doc.Meta, &f.Meta); err != nil {
			return nil, fmt.Errorf("decode meta of %s: %w", origin, err)
		}
	}
	for id, step := range f.Steps {
		step.ID = id
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	return &f, nil
}
