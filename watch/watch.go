// Package watch reports changes made to the open file by other programs.
package watch

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the bursts of events a single save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls OnChange after the watched file's content differs from
// the content recorded by the last Sync. The directory is watched rather
// than the file so that saves which replace the file are seen.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	done     chan struct{}

	mu     sync.Mutex
	known  [sha256.Size]byte
	timer  *time.Timer
	closed bool

	// running is held by check, so Close can wait out a check in flight.
	running sync.Mutex
}

// New starts watching path. onChange runs on a timer goroutine.
func New(path string, debounce time.Duration, onChange func(), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	w.Sync()
	go w.watchLoop()

	logger.Debug("watching file", zap.String("path", abs))
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Sync records the file's current content as known, so the editor's own
// saves are not reported.
func (w *Watcher) Sync() {
	sum, _ := w.checksum()
	w.mu.Lock()
	w.known = sum
	w.mu.Unlock()
}

// Close stops the watcher. OnChange is not called once Close returns.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.done

	w.running.Lock()
	w.running.Unlock()
	return nil
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.logger.Debug("file event",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)

			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			if !w.closed {
				w.timer = time.AfterFunc(w.debounce, w.check)
			}
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) check() {
	w.running.Lock()
	defer w.running.Unlock()

	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	sum, err := w.checksum()
	if err != nil {
		w.logger.Warn("file unreadable", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	changed := sum != w.known
	w.known = sum
	w.mu.Unlock()

	if changed {
		w.logger.Info("file changed", zap.String("path", w.path))
		w.onChange()
	}
}

// checksum hashes the file. A missing file hashes as all zeros.
func (w *Watcher) checksum() ([sha256.Size]byte, error) {
	data, err := os.ReadFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		return [sha256.Size]byte{}, nil
	}
	if err != nil {
		return [sha256.Size]byte{}, err
	}
	return sha256.Sum256(data), nil
}
