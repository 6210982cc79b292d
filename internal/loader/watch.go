package loader

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"ragqa/internal/domain"
)

type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
	logger   *slog.Logger
	known    []string
}

// WithDebounce sets how long a file must be quiet before it is read.
func WithDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) { o.debounce = d }
}

func WithLogger(l *slog.Logger) WatchOption {
	return func(o *watchOptions) { o.logger = l }
}

// WithKnown marks paths that are already indexed.
func WithKnown(paths ...string) WatchOption {
	return func(o *watchOptions) { o.known = append(o.known, paths...) }
}

// Watch calls fn once for every supported file created in dir until ctx
// is done. Files already passed to fn, or marked known, are never passed
// again; their later modifications are logged and skipped. fn runs on the
// watching goroutine.
func Watch(ctx context.Context, dir string, fn func(domain.Document) error, opts ...WatchOption) error {
	o := watchOptions{debounce: 300 * time.Millisecond, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	o.logger.Info("watching directory", "dir", dir)

	seen := make(map[string]bool, len(o.known))
	for _, k := range o.known {
		seen[filepath.Clean(k)] = true
	}
	d := newDebouncer(o.debounce)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !Supported(ev.Name) || !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) {
				continue
			}
			name := filepath.Clean(ev.Name)
			if seen[name] {
				o.logger.Info("indexed document changed on disk, skipping", "path", name)
				continue
			}
			d.touch(name)
		case name := <-d.ready:
			d.fired(name)
			if seen[name] {
				continue
			}
			seen[name] = true
			doc, err := ReadFile(name)
			if err != nil {
				o.logger.Warn("could not read new document", "path", name, "error", err)
				continue
			}
			if err := fn(doc); err != nil {
				o.logger.Error("indexing new document failed", "path", name, "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			o.logger.Error("watcher error", "error", err)
		}
	}
}

// debouncer sends a name on ready once it has gone quiet for delay. Its
// timer map belongs to the watching goroutine; pending sends give up when
// stop closes done.
type debouncer struct {
	delay  time.Duration
	ready  chan string
	done   chan struct{}
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		ready:  make(chan string),
		done:   make(chan struct{}),
		timers: map[string]*time.Timer{},
	}
}

func (d *debouncer) touch(name string) {
	if t, ok := d.timers[name]; ok {
		// false means the callback already ran or is running; Reset
		// schedules another one.
		if !t.Reset(d.delay) {
			d.wg.Add(1)
		}
		return
	}
	d.wg.Add(1)
	d.timers[name] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		select {
		case d.ready <- name:
		case <-d.done:
		}
	})
}

func (d *debouncer) fired(name string) { delete(d.timers, name) }

func (d *debouncer) stop() {
	close(d.done)
	for _, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
	}
}
