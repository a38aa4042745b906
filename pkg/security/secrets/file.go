package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileProvider reads secrets from individual files in a directory, one
// secret per file, as mounted by Kubernetes secret volumes. Files must be
// mode 0600 or 0400; anything looser is rejected.
//
// With watching enabled the provider discards its cache whenever a file
// in the directory changes, so rotated secrets are picked up on the next
// read.
type FileProvider struct {
	dir   string
	watch bool

	mu      sync.RWMutex
	values  map[string]string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewFileProvider creates a file-based secret provider rooted at dir.
func NewFileProvider(dir string, watch bool) (*FileProvider, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets path is not a directory: %s", dir)
	}

	p := &FileProvider{
		dir:    dir,
		watch:  watch,
		values: make(map[string]string),
		stopCh: make(chan struct{}),
	}

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create secrets watcher: %w", err)
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch secrets directory: %w", err)
		}
		p.watcher = watcher
		go p.watchLoop()
	}

	slog.Debug("file secret provider ready", "dir", dir, "watch", watch)
	return p, nil
}

// GetSecret reads the named secret file. The name must be a bare
// filename; path separators and parent references are rejected. Leading
// and trailing whitespace is trimmed from the value.
func (p *FileProvider) GetSecret(ctx context.Context, name string) (string, error) {
	if !validSecretName(name) {
		return "", fmt.Errorf("invalid secret name %q", name)
	}

	p.mu.RLock()
	if value, ok := p.values[name]; ok {
		p.mu.RUnlock()
		return value, nil
	}
	p.mu.RUnlock()

	path := filepath.Join(p.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("secret file not found: %s", name)
		}
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("secret path is not a regular file: %s", name)
	}
	if mode := info.Mode().Perm(); mode != 0600 && mode != 0400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (want 0600 or 0400)", path, mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	value := strings.TrimSpace(string(data))

	p.mu.Lock()
	p.values[name] = value
	p.mu.Unlock()

	return value, nil
}

// ListSecrets returns the names of all regular files in the directory.
func (p *FileProvider) ListSecrets(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Name returns the provider name.
func (p *FileProvider) Name() string {
	return "file"
}

// Supports reports whether a regular file with the secret's name exists.
func (p *FileProvider) Supports(name string) bool {
	if !validSecretName(name) {
		return false
	}
	info, err := os.Stat(filepath.Join(p.dir, name))
	return err == nil && info.Mode().IsRegular()
}

// Refresh discards cached values, forcing re-reads from disk.
func (p *FileProvider) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.values = make(map[string]string)
	p.mu.Unlock()
	return nil
}

// Close stops the directory watcher, if one is running.
func (p *FileProvider) Close() error {
	if p.watcher != nil {
		close(p.stopCh)
		return p.watcher.Close()
	}
	return nil
}

// validSecretName accepts bare filenames only. A name carrying a
// separator or parent reference would escape the secrets directory.
func validSecretName(name string) bool {
	return name != "" && name != "." && name != ".." && name == filepath.Base(name)
}

func (p *FileProvider) watchLoop() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0 {
				slog.Debug("secrets directory changed, discarding cache",
					"file", filepath.Base(event.Name),
					"op", event.Op.String(),
				)
				_ = p.Refresh(context.Background())
			}

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("secrets watcher error", "error", err)

		case <-p.stopCh:
			return
		}
	}
}
