package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// LocalStorage stores files below a base directory. Writes replace files
// atomically so readers never see a partial document.
type LocalStorage struct {
	basePath string
	mu       sync.RWMutex
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &LocalStorage{basePath: abs}, nil
}

// FilePath returns the absolute filesystem path of p.
func (s *LocalStorage) FilePath(p string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(p))
	if clean == "/" {
		return "", fmt.Errorf("%q: %w", p, ErrInvalidPath)
	}
	full := filepath.Join(s.basePath, filepath.FromSlash(clean))
	if !strings.HasPrefix(full, s.basePath+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", p, ErrInvalidPath)
	}
	return full, nil
}

func (s *LocalStorage) Read(_ context.Context, p string) ([]byte, error) {
	full, err := s.FilePath(p)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, nil
}

func (s *LocalStorage) Write(_ context.Context, p string, data []byte) error {
	full, err := s.FilePath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(full); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(full)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Delete(_ context.Context, p string) error {
	full, err := s.FilePath(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

func (s *LocalStorage) List(_ context.Context, prefix string) ([]string, error) {
	dir := s.basePath
	if prefix != "" && prefix != "." && prefix != "/" {
		var err error
		if dir, err = s.FilePath(prefix); err != nil {
			return nil, err
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	var paths []string
	for _, entry := range entries {
		// Skip directories and in-flight temp files.
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		paths = append(paths, strings.TrimPrefix(path.Join(filepath.ToSlash(prefix), entry.Name()), "/"))
	}
	slices.Sort(paths)
	return paths, nil
}

func (s *LocalStorage) Exists(_ context.Context, p string) (bool, error) {
	full, err := s.FilePath(p)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", p, err)
	}
	return true, nil
}
