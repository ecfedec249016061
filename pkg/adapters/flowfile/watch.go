package flowfile

import (
	"context"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch signals whenever a flow file in the directory changes. The channel
// carries no event details; a tick means "reload the registry". The watcher
// shuts down when the context is canceled.
func (l *Loader) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(l.dir); err != nil {
		watcher.Close()
		return nil, err
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isFlowFile(event.Name) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				// Coalesce bursts: a pending tick is enough.
				select {
				case ch <- struct{}{}:
				default:
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return ch, nil
}

func isFlowFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
