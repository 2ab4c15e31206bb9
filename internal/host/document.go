// Package host implements the collaborators a search session relies on:
// sources of document text and highlighters that present matches.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

var ErrClosed = errors.New("document closed")

// StaticDocument serves text held in memory. Set replaces it.
type StaticDocument struct {
	mu   sync.RWMutex
	text string
}

// NewStaticDocument creates a document holding text.
func NewStaticDocument(text string) *StaticDocument {
	return &StaticDocument{text: text}
}

// Text returns the current text.
func (d *StaticDocument) Text(context.Context) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text, nil
}

// Set replaces the text.
func (d *StaticDocument) Set(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

// FileDocument serves the contents of a file, caching them until fsnotify
// reports a change. Without a watcher every call rereads the file.
type FileDocument struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	changes chan struct{}
	done    chan struct{}

	mu     sync.Mutex
	cached string
	valid  bool
	closed bool
}

// OpenFileDocument opens path and starts watching its directory, so that
// editors which replace the file on save are also seen.
func OpenFileDocument(path string, logger *slog.Logger) (*FileDocument, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	d := &FileDocument{
		path:    abs,
		logger:  logger.With("document", abs),
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.logger.Warn("failed to create file watcher", "error", err)
		return d, nil
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		d.logger.Warn("failed to watch document directory", "error", err)
		watcher.Close()
		return d, nil
	}
	d.watcher = watcher
	go d.watch()
	return d, nil
}

// Path returns the absolute path of the document.
func (d *FileDocument) Path() string { return d.path }

// Changes delivers a signal after the file is modified. Signals coalesce.
func (d *FileDocument) Changes() <-chan struct{} { return d.changes }

// Text returns the file contents.
func (d *FileDocument) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return "", ErrClosed
	}
	if d.valid && d.watcher != nil {
		return d.cached, nil
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	d.cached = string(data)
	d.valid = true
	return d.cached, nil
}

// Close stops watching the file.
func (d *FileDocument) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	close(d.done)
	if d.watcher != nil {
		return d.watcher.Close()
	}
	return nil
}

func (d *FileDocument) watch() {
	for {
		select {
		case <-d.done:
			return
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != d.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			d.invalidate()
			d.logger.Debug("document changed", "op", event.Op.String())
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (d *FileDocument) invalidate() {
	d.mu.Lock()
	d.valid = false
	d.mu.Unlock()

	select {
	case d.changes <- struct{}{}:
	default:
	}
}
