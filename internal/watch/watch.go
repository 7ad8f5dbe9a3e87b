// Package watch re-runs the pipeline when raw source files change.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the watcher.
type Options struct {
	// Dir is the raw-data directory to watch.
	Dir string
	// Debounce is how long to wait after the last write before triggering.
	Debounce time.Duration
	// MaxRunsPerMinute caps how often the trigger can fire.
	MaxRunsPerMinute int
}

// Watcher triggers a callback when source files in a directory settle after
// a burst of writes.
type Watcher struct {
	opts    Options
	limiter *rate.Limiter
	run     func(ctx context.Context) error
}

// New creates a Watcher calling run on each settled change burst.
func New(opts Options, run func(ctx context.Context) error) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 5 * time.Second
	}
	if opts.MaxRunsPerMinute <= 0 {
		opts.MaxRunsPerMinute = 2
	}
	limit := rate.Every(time.Minute / time.Duration(opts.MaxRunsPerMinute))
	return &Watcher{
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		run:     run,
	}
}

// relevant reports whether an fsnotify event concerns a raw source file.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".csv", ".json", ".xlsx":
		return true
	default:
		return false
	}
}

// Watch blocks until ctx is cancelled, running the callback after each
// debounced burst of file changes. Callback errors are logged, not fatal;
// the watcher keeps going so a bad drop can be fixed by the next one.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return eris.Wrap(err, "watch: create watcher")
	}
	defer fsw.Close()

	if err := fsw.Add(w.opts.Dir); err != nil {
		return eris.Wrapf(err, "watch: add %s", w.opts.Dir)
	}
	log := zap.L().With(zap.String("dir", w.opts.Dir))
	log.Info("watch: watching for source changes")

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return eris.New("watch: event channel closed")
			}
			if !relevant(ev) {
				continue
			}
			log.Debug("watch: source changed", zap.String("file", ev.Name))
			if timer == nil {
				timer = time.NewTimer(w.opts.Debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return eris.New("watch: error channel closed")
			}
			log.Error("watch: watcher error", zap.Error(err))

		case <-timerC:
			timer = nil
			timerC = nil
			if err := w.limiter.Wait(ctx); err != nil {
				return eris.Wrap(err, "watch: rate limit wait")
			}
			log.Info("watch: sources settled, triggering run")
			if err := w.run(ctx); err != nil {
				log.Error("watch: triggered run failed", zap.Error(err))
			}
		}
	}
}
