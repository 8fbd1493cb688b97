package watcher

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period after the last event before the
// change callback runs.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is invoked once at start and after every debounced change.
// Errors are logged and do not stop the watcher.
type ChangeFunc func(ctx context.Context) error

// Watcher watches a single file for changes.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange ChangeFunc
	log      logrus.FieldLogger

	fs     *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	runs   int
}

// New creates a new Watcher for path.
func New(path string, debounce time.Duration, onChange ChangeFunc, log logrus.FieldLogger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	if onChange == nil {
		return nil, fmt.Errorf("change callback cannot be nil")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		log:      log.WithField("file", abs),
		stopCh:   make(chan struct{}),
	}, nil
}

// Start runs the callback once and then watches for changes in the
// background until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(w.path)); err != nil {
		fs.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fs = fs

	w.trigger(ctx)

	w.wg.Add(1)
	go w.loop(ctx)

	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.log.WithField("op", ev.Op.String()).Debug("export changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("file watcher error")

		case <-fire:
			fire = nil
			w.trigger(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) trigger(ctx context.Context) {
	w.mu.Lock()
	w.runs++
	w.mu.Unlock()

	if err := w.onChange(ctx); err != nil {
		w.log.WithError(err).Error("audit failed")
	}
}

// Runs returns how many times the callback ran.
func (w *Watcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Stop halts the watcher and waits for a running callback to return.
func (w *Watcher) Stop() error {
	select {
	case <-w.stopCh:
		return nil
	default:
		close(w.stopCh)
	}

	var err error
	if w.fs != nil {
		err = w.fs.Close()
	}
	w.wg.Wait()
	return err
}
