package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/GabKongroo/NothingSpecial/internal/config"
	"github.com/GabKongroo/NothingSpecial/internal/migration"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const driveFolderMimeType = "application/vnd.google-apps.folder"

// DriveSource exposes a Google Drive folder tree as a migration source.
type DriveSource struct {
	svc *drive.Service
}

// DriveOptions builds client options from the configured service account.
func DriveOptions(cfg *config.Config) ([]option.ClientOption, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveReadonlyScope)}
	switch {
	case cfg.DriveCredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.DriveCredentialsJSON)))
	case cfg.DriveCredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.DriveCredentialsFile))
	default:
		return nil, fmt.Errorf("drive credentials not configured")
	}
	return opts, nil
}

func NewDriveSource(ctx context.Context, opts ...option.ClientOption) (*DriveSource, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &DriveSource{svc: svc}, nil
}

// ListChildren returns every non-trashed child of folderID across all pages.
func (d *DriveSource) ListChildren(ctx context.Context, folderID string) ([]migration.Entry, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(folderID))
	var entries []migration.Entry
	err := d.svc.Files.List().
		Q(q).
		Fields("nextPageToken, files(id, name, mimeType)").
		PageSize(1000).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				entries = append(entries, migration.Entry{
					ID:       f.Id,
					Name:     f.Name,
					IsFolder: f.MimeType == driveFolderMimeType,
				})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list drive folder %s: %w", folderID, err)
	}
	return entries, nil
}

func (d *DriveSource) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := d.svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download drive file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read drive file %s: %w", fileID, err)
	}
	return data, nil
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
