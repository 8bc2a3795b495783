package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// FileKeyValueRepository persists all keys in a single JSON document on disk.
// Every call re-reads the file so separate processes observe each other's writes;
// concurrent writers from different processes follow last-write-wins.
type FileKeyValueRepository struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// NewFileKeyValueRepository creates a FileKeyValueRepository stored at path
func NewFileKeyValueRepository(path string, logger *zap.Logger) *FileKeyValueRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileKeyValueRepository{path: path, logger: logger}
}

var _ KeyValueRepositoryInterface = (*FileKeyValueRepository)(nil)

func (r *FileKeyValueRepository) Get(_ context.Context, key string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return nil, false, err
	}
	v, ok := values[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (r *FileKeyValueRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return err
	}
	values[key] = string(value)
	return r.write(values)
}

func (r *FileKeyValueRepository) Remove(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	values, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return r.write(values)
}

func (r *FileKeyValueRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(map[string]string{})
}

func (r *FileKeyValueRepository) read() (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to parse storage file %s: %w", r.path, err)
	}
	return values, nil
}

func (r *FileKeyValueRepository) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".storage-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp storage file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close storage file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace storage file: %w", err)
	}

	r.logger.Debug("storage file written", zap.String("path", r.path), zap.Int("keys", len(values)))
	return nil
}
