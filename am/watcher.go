package am

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
)

// DefaultReloadDelay collapses the burst of events of a single editor save
const DefaultReloadDelay = 300 * time.Millisecond

// ReloadFunc receives a reloaded and validated configuration
type ReloadFunc func(*Config) error

// Watcher reloads one config file whenever it changes. The parent directory
// is watched, editors that save by rename replace the watched inode.
type Watcher struct {
	path  string
	fs    *fsnotify.Watcher
	delay time.Duration
	log   *zap.SugaredLogger

	mu       sync.Mutex
	handlers []ReloadFunc
	pending  *time.Timer
	skipNext bool
}

// the watcher informed about UpdateSetting writes
var (
	activeWatcher   *Watcher
	activeWatcherMu sync.Mutex
)

// NewWatcher prepares a watcher for the config file at path; call Run to
// start delivering reloads.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", filepath.Dir(abs))
	}
	return &Watcher{
		path:  abs,
		fs:    fs,
		delay: DefaultReloadDelay,
		log:   logger.ComponentLogger("am.watcher"),
	}, nil
}

// Path returns the absolute path of the watched file
func (w *Watcher) Path() string {
	return w.path
}

// OnReload adds a handler. Handlers run in registration order, a failing
// handler does not stop the others.
func (w *Watcher) OnReload(fn ReloadFunc) {
	w.mu.Lock()
	w.handlers = append(w.handlers, fn)
	w.mu.Unlock()
}

// SkipNextWrite ignores the next change of the file, used for writes of
// this process.
func (w *Watcher) SkipNextWrite() {
	w.mu.Lock()
	w.skipNext = true
	w.mu.Unlock()
}

func (w *Watcher) takeSkip() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	skip := w.skipNext
	w.skipNext = false
	return skip
}

// Run delivers reloads until ctx is done and releases the fsnotify watcher
// on return. While running, the watcher is told about UpdateSetting writes.
func (w *Watcher) Run(ctx context.Context) error {
	activeWatcherMu.Lock()
	activeWatcher = w
	activeWatcherMu.Unlock()
	defer func() {
		activeWatcherMu.Lock()
		if activeWatcher == w {
			activeWatcher = nil
		}
		activeWatcherMu.Unlock()

		w.mu.Lock()
		if w.pending != nil {
			w.pending.Stop()
		}
		w.mu.Unlock()
		w.fs.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if w.takeSkip() {
				w.log.Debugw("Ignoring own config write", logger.FieldPath, w.path)
				continue
			}
			w.log.Debugw("Config file changed",
				logger.FieldPath, w.path,
				logger.FieldOperation, event.Op.String(),
			)
			w.schedule()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Config watcher error", logger.FieldError, err)
		}
	}
}

// relevant filters writes and replacements of the watched file; backups
// (.back1 .. .back3) and other files of the directory are ignored.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.delay, func() {
		if err := w.reload(); err != nil {
			w.log.Errorw("Config reload failed",
				logger.FieldPath, w.path,
				logger.FieldError, err,
			)
		}
	})
}

// reload reads and validates the file, an invalid file keeps the previous
// configuration and reaches no handler.
func (w *Watcher) reload() error {
	cfg, err := LoadFromFile(w.path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "reloaded config is invalid")
	}
	Reset()

	w.mu.Lock()
	handlers := append([]ReloadFunc(nil), w.handlers...)
	w.mu.Unlock()

	w.log.Infow("Config reloaded",
		logger.FieldPath, w.path,
		"writer_version", cfg.WriterVersion().String(),
	)
	for _, fn := range handlers {
		if err := fn(cfg); err != nil {
			w.log.Warnw("Config reload handler failed", logger.FieldError, err)
		}
	}
	return nil
}

// notifyOwnWrite tells the running watcher of path about a write of this
// process
func notifyOwnWrite(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	activeWatcherMu.Lock()
	defer activeWatcherMu.Unlock()
	if activeWatcher != nil && strings.EqualFold(activeWatcher.path, abs) {
		activeWatcher.SkipNextWrite()
	}
}
