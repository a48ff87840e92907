package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON file per tile under dir/tiles.
type FileStore struct {
	dir string
	log *slog.Logger
}

// NewFileStore creates a FileStore rooted at dir, creating it as needed.
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	tiles := filepath.Join(dir, "tiles")
	if err := os.MkdirAll(tiles, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", tiles, err)
	}
	return &FileStore{dir: tiles, log: log}, nil
}

func (s *FileStore) path(key Key) string {
	return filepath.Join(s.dir, key.String()+".json")
}

// Get reads the tile file for key. A missing file is not an error.
func (s *FileStore) Get(_ context.Context, key Key) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read tile %s: %w", key, err)
	}
	return data, true, nil
}

// Put writes the tile file for key atomically.
func (s *FileStore) Put(_ context.Context, key Key, doc []byte) error {
	if err := atomicWrite(s.path(key), doc); err != nil {
		return err
	}
	s.log.Debug("tile saved", "key", key.String(), "bytes", len(doc))
	return nil
}

// atomicWrite writes data next to path and renames it into place, so readers
// never observe a partial file.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
