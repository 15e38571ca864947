// Package migration walks a genre/mood/beat folder tree, republishes each
// beat's assets to the object store and records complete beats in the
// catalog.
package migration

import (
	"context"

	"github.com/GabKongroo/NothingSpecial/internal/models"
)

// Entry is a file or folder in the source tree.
type Entry struct {
	ID       string
	Name     string
	IsFolder bool
}

// Source is a hierarchical file tree such as a Drive folder.
type Source interface {
	ListChildren(ctx context.Context, folderID string) ([]Entry, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// ObjectStore is the destination bucket storage.
type ObjectStore interface {
	Exists(ctx context.Context, bucket, key string) (bool, error)
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
	Delete(ctx context.Context, bucket, key string) error
	Ping(ctx context.Context) error
}

// Transcoder converts raw audio to a compressed streaming format.
type Transcoder interface {
	ToMP3(ctx context.Context, data []byte, ext string) ([]byte, error)
}

// TranscoderFunc adapts a function to Transcoder.
type TranscoderFunc func(ctx context.Context, data []byte, ext string) ([]byte, error)

func (f TranscoderFunc) ToMP3(ctx context.Context, data []byte, ext string) ([]byte, error) {
	return f(ctx, data, ext)
}

// Catalog is the subset of the beat repository used by a run.
type Catalog interface {
	ExistsBySource(ctx context.Context, genre, mood, folder, title string) (bool, error)
	Create(ctx context.Context, beat *models.Beat) error
}
