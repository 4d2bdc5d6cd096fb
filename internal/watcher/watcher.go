// Package watcher reports content changes of a single file.
package watcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long events must settle before the file is hashed.
const DefaultDebounce = 100 * time.Millisecond

// Handler is called with the watched path after its content changed.
type Handler func(ctx context.Context, path string) error

// Watcher calls a Handler when a file's SHA256 changes. The handler may
// rewrite the file; the content it leaves behind is not reported again.
type Watcher struct {
	path     string
	handler  Handler
	debounce time.Duration
	lastHash [sha256.Size]byte
}

type Option func(*Watcher)

func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

func New(path string, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{path: path, handler: handler, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. Handler errors are logged and do not stop
// the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory: editors and LocalStorage replace the file by
	// rename, which drops a watch on the file itself.
	dir := filepath.Dir(w.path)
	name := filepath.Base(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if err := w.remember(); err != nil {
		return err
	}
	slog.InfoContext(ctx, "watching for changes", "path", w.path)

	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			w.check(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) check(ctx context.Context) {
	h, err := HashFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		slog.WarnContext(ctx, "failed to hash file", "path", w.path, "error", err)
		return
	}
	if h == w.lastHash {
		return
	}
	w.lastHash = h
	slog.DebugContext(ctx, "file content changed", "path", w.path, "sha256", fmt.Sprintf("%x", h[:8]))
	if err := w.handler(ctx, w.path); err != nil {
		slog.ErrorContext(ctx, "change handler failed", "path", w.path, "error", err)
	}
	if err := w.remember(); err != nil {
		slog.WarnContext(ctx, "failed to hash file", "path", w.path, "error", err)
	}
}

// remember stores the current hash. A missing file hashes as zero.
func (w *Watcher) remember() error {
	h, err := HashFile(w.path)
	if errors.Is(err, fs.ErrNotExist) {
		w.lastHash = [sha256.Size]byte{}
		return nil
	}
	if err != nil {
		return err
	}
	w.lastHash = h
	return nil
}

// HashFile computes the SHA256 hash of the file at path.
func HashFile(path string) ([sha256.Size]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return [sha256.Size]byte{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return [sha256.Size]byte{}, fmt.Errorf("hash %s: %w", path, err)
	}
	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}
