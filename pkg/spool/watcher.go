package spool

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes a spool directory for incoming audio files and hands
// each one to a callback once it has settled. Subdirectories are watched
// too, including ones created while watching.
type Watcher struct {
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	config  *Config
	settler *settler

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Config contains spool watcher configuration.
type Config struct {
	// Dir is the spool directory to watch.
	Dir string

	// SettleInterval is how long a file must stay quiet before it is
	// handed to the callback (default: 500ms). Copies into the spool
	// emit a burst of write events; analysis starts after the burst.
	SettleInterval time.Duration

	// Extensions is the list of file extensions to pick up.
	Extensions []string

	// SkipHidden controls whether dotfiles are ignored.
	SkipHidden bool

	// ScanOnStart controls whether files already present in the spool
	// are processed when watching begins.
	ScanOnStart bool
}

// DefaultConfig returns the default spool configuration: common audio
// container extensions, hidden files skipped, existing files scanned.
func DefaultConfig() *Config {
	return &Config{
		SettleInterval: 500 * time.Millisecond,
		Extensions:     []string{".wav", ".mp3", ".flac", ".ogg", ".m4a", ".aac", ".opus"},
		SkipHidden:     true,
		ScanOnStart:    true,
	}
}

// NewWatcher creates a spool watcher.
func NewWatcher(config *Config, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Dir == "" {
		return nil, fmt.Errorf("spool directory cannot be empty")
	}
	if config.SettleInterval <= 0 {
		config.SettleInterval = DefaultConfig().SettleInterval
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultConfig().Extensions
	}

	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher: watcher,
		logger:  logger,
		config:  config,
		settler: newSettler(config.SettleInterval),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Watch starts watching the spool and blocks until the context is
// cancelled or Stop is called. Each settled file is passed to onFile in
// its own goroutine; onFile must tolerate the file having disappeared.
func (w *Watcher) Watch(ctx context.Context, onFile func(path string)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	if err := w.addDirectory(w.config.Dir); err != nil {
		return fmt.Errorf("failed to watch spool: %w", err)
	}

	w.logger.Info("Spool watcher started",
		"dir", w.config.Dir,
		"settle_ms", w.config.SettleInterval.Milliseconds(),
		"extensions", strings.Join(w.config.Extensions, ","),
	)

	if w.config.ScanOnStart {
		if err := w.scanExisting(onFile); err != nil {
			return fmt.Errorf("failed to scan spool: %w", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Spool watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("Spool watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(event, onFile)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Spool watcher error", "error", err)
			// Keep watching despite errors.
		}
	}
}

// Stop stops the watcher and cancels pending settle timers.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.settler.Stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	return nil
}

// handleEvent routes one fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event, onFile func(path string)) {
	// New subdirectories join the watch set.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if isDir, err := isDirectory(event.Name); err == nil && isDir {
			if w.skipHidden(event.Name) {
				return
			}
			if err := w.addDirectory(event.Name); err != nil {
				w.logger.Error("Failed to watch new spool subdirectory",
					"path", event.Name, "error", err)
			}
			return
		}
	}

	if !w.shouldProcess(event.Name) {
		return
	}

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.logger.Debug("Spool file event",
			"path", event.Name,
			"op", event.Op.String(),
		)
		path := event.Name
		w.settler.Touch(path, func() {
			w.logger.Info("Spool file settled", "path", path)
			onFile(path)
		})

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.settler.Cancel(event.Name)
	}
}

// scanExisting queues files already sitting in the spool. They run
// through the settler like fresh arrivals so a partially copied file
// still gets its quiet period.
func (w *Watcher) scanExisting(onFile func(path string)) error {
	return filepath.Walk(w.config.Dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if w.skipHidden(path) && path != w.config.Dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.shouldProcess(path) {
			return nil
		}

		w.logger.Debug("Queueing existing spool file", "path", path)
		queued := path
		w.settler.Touch(queued, func() {
			w.logger.Info("Spool file settled", "path", queued)
			onFile(queued)
		})
		return nil
	})
}

// addDirectory adds a directory and all its subdirectories to the watcher.
func (w *Watcher) addDirectory(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if w.skipHidden(path) && path != dir {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		w.logger.Debug("Watching spool directory", "path", path)
		return nil
	})
}

// shouldProcess filters events down to pickup-worthy audio files.
func (w *Watcher) shouldProcess(path string) bool {
	if w.skipHidden(path) {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

// skipHidden reports whether a path is hidden and hidden files are
// configured off.
func (w *Watcher) skipHidden(path string) bool {
	return w.config.SkipHidden && strings.HasPrefix(filepath.Base(path), ".")
}

// isDirectory reports whether the path names a directory.
func isDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}
