package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestDrive(t *testing.T, handler http.HandlerFunc) *DriveSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src, err := NewDriveSource(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return src
}

func TestDriveListChildrenPages(t *testing.T) {
	var queries []string
	src := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"nextPageToken": "p2",
				"files": []map[string]string{
					{"id": "1", "name": "Trap", "mimeType": driveFolderMimeType},
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"files": []map[string]string{
				{"id": "2", "name": "Track_full.wav", "mimeType": "audio/wav"},
			},
		})
	})

	entries, err := src.ListChildren(context.Background(), "root-id")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsFolder)
	assert.Equal(t, "Trap", entries[0].Name)
	assert.False(t, entries[1].IsFolder)
	assert.Equal(t, "2", entries[1].ID)
	require.Len(t, queries, 2)
	assert.Equal(t, "'root-id' in parents and trashed = false", queries[0])
}

func TestDriveDownload(t *testing.T) {
	src := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "media", r.URL.Query().Get("alt"))
		_, _ = w.Write([]byte("RIFF"))
	})

	data, err := src.Download(context.Background(), "file-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), data)
}

func TestDriveListError(t *testing.T) {
	src := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":404,"message":"File not found"}}`, http.StatusNotFound)
	})

	_, err := src.ListChildren(context.Background(), "missing")
	assert.Error(t, err)
}

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `it\'s`, escapeQuery("it's"))
}
