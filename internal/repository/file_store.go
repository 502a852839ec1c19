package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"countdown/internal/model"
)

// FileStore keeps each collection in its own JSON file under dir.
type FileStore struct {
	fs     afero.Fs
	dir    string
	logger *log.Logger
}

func NewFileStore(fs afero.Fs, dir string, logger *log.Logger) *FileStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FileStore{fs: fs, dir: dir, logger: logger}
}

func (s *FileStore) SaveTimers(_ context.Context, timers []model.Timer) error {
	if timers == nil {
		timers = []model.Timer{}
	}
	return s.write(model.KeyTimers, timers)
}

func (s *FileStore) LoadTimers(_ context.Context) []model.Timer {
	return decodeTimers(s.logger, s.read(model.KeyTimers))
}

func (s *FileStore) SaveHistory(_ context.Context, items []model.TimerHistoryItem) error {
	if items == nil {
		items = []model.TimerHistoryItem{}
	}
	return s.write(model.KeyHistory, items)
}

func (s *FileStore) LoadHistory(_ context.Context) []model.TimerHistoryItem {
	return decodeHistory(s.logger, s.read(model.KeyHistory))
}

// ClearAll removes both files. Missing files are not an error.
func (s *FileStore) ClearAll(_ context.Context) error {
	var errs []error
	for _, key := range []string{model.KeyTimers, model.KeyHistory} {
		if err := s.fs.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) read(key string) []byte {
	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Printf("[error] read %s: %v", key, err)
		}
		return nil
	}
	return data
}

// write replaces the file atomically: temp file first, then rename.
func (s *FileStore) write(key string, v any) error {
	data, err := encodeJSON(key, v)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	path := s.path(key)
	tmpPath := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// WriteExport writes an encoded history export as timer_history.json in
// dir and returns its path. dir must not be a FileStore data dir.
func WriteExport(fs afero.Fs, dir string, data []byte) (string, error) {
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, model.KeyHistory+".json")
	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
