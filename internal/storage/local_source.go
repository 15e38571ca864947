package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/GabKongroo/NothingSpecial/internal/migration"
)

// LocalSource reads a source tree from disk. Entry ids are slash separated
// paths relative to the root, and "." is the root itself.
type LocalSource struct {
	root string
}

func NewLocalSource(root string) *LocalSource {
	return &LocalSource{root: root}
}

// RootID is the folder id of the tree root.
func (s *LocalSource) RootID() string { return "." }

func (s *LocalSource) resolve(id string) (string, error) {
	clean := path.Clean("/" + id)
	abs := filepath.Join(s.root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q escapes source root", id)
	}
	return abs, nil
}

func (s *LocalSource) ListChildren(_ context.Context, folderID string) ([]migration.Entry, error) {
	dir, err := s.resolve(folderID)
	if err != nil {
		return nil, err
	}
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]migration.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, migration.Entry{
			ID:       path.Join(folderID, item.Name()),
			Name:     item.Name(),
			IsFolder: item.IsDir(),
		})
	}
	return entries, nil
}

func (s *LocalSource) Download(_ context.Context, fileID string) ([]byte, error) {
	abs, err := s.resolve(fileID)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}
