// Package watch subtitles videos as they appear in a folder.
package watch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fmueller/vidsub/internal/pipeline"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultSettle = 2 * time.Second

// Handler processes one settled video. Errors are logged and watching
// continues.
type Handler func(ctx context.Context, path string) error

type Options struct {
	// Settle is how long a file must see no further events before it is
	// handed to the handler.
	Settle time.Duration
	Logger *zap.Logger
}

type Watcher struct {
	folder  string
	handler Handler
	settle  time.Duration
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	pending map[string]time.Time
	done    map[string]bool
}

func New(folder string, handler Handler, opts Options) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watch handler is required")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(folder); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", folder, err)
	}

	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		folder:  folder,
		handler: handler,
		settle:  settle,
		logger:  logger,
		watcher: fw,
		pending: make(map[string]time.Time),
		done:    make(map[string]bool),
	}, nil
}

// Run blocks until ctx is canceled. Videos are handled one at a time in the
// order they settle; each path is handled at most once.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		_ = w.watcher.Close()
	}()

	w.logger.Info("watching for new videos", zap.String("folder", w.folder), zap.Duration("settle", w.settle))

	ticker := time.NewTicker(w.tick())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped", zap.String("folder", w.folder))
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			w.observe(event, time.Now())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watcher error", zap.Error(err))

		case now := <-ticker.C:
			for _, path := range w.settled(now) {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Info("new video", zap.String("file", path))
				if err := w.handler(ctx, path); err != nil {
					w.logger.Error("failed to subtitle video", zap.String("file", path), zap.Error(err))
				}
			}
		}
	}
}

func (w *Watcher) tick() time.Duration {
	return max(w.settle/4, 10*time.Millisecond)
}

func (w *Watcher) observe(event fsnotify.Event, now time.Time) {
	if !pipeline.IsVideo(event.Name) || w.done[event.Name] {
		return
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.pending[event.Name] = now
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		delete(w.pending, event.Name)
	default:
		w.logger.Debug("ignoring event", zap.String("event", event.String()))
	}
}

// settled pops the pending paths that have been quiet for the settle delay,
// oldest first.
func (w *Watcher) settled(now time.Time) []string {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			ready = append(ready, path)
		}
	}
	slices.SortFunc(ready, func(a, b string) int {
		if c := w.pending[a].Compare(w.pending[b]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	for _, path := range ready {
		delete(w.pending, path)
		w.done[path] = true
	}
	return ready
}
