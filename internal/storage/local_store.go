package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LocalObjectStore keeps objects under <root>/<bucket>/<key>. It backs dry
// runs of the migration command.
type LocalObjectStore struct {
	root string
}

func NewLocalObjectStore(root string) *LocalObjectStore {
	return &LocalObjectStore{root: root}
}

func (s *LocalObjectStore) path(bucket, key string) string {
	return filepath.Join(s.root, bucket, filepath.FromSlash(key))
}

func (s *LocalObjectStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	_, err := os.Stat(s.path(bucket, key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Put writes data atomically through a temporary file.
func (s *LocalObjectStore) Put(_ context.Context, bucket, key string, data []byte, _ string) error {
	abs := s.path(bucket, key)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	tmp := abs + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (s *LocalObjectStore) Delete(_ context.Context, bucket, key string) error {
	err := os.Remove(s.path(bucket, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalObjectStore) Ping(_ context.Context) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("object root %s: %w", s.root, err)
	}
	return nil
}
