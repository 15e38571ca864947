package migration

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type fakeTree struct {
	children map[string][]Entry
	data     map[string][]byte
	listErr  map[string]error
	next     int
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		children: map[string][]Entry{},
		data:     map[string][]byte{},
		listErr:  map[string]error{},
	}
}

func (t *fakeTree) folder(parent, name string) string {
	t.next++
	id := fmt.Sprintf("d%d", t.next)
	t.children[parent] = append(t.children[parent], Entry{ID: id, Name: name, IsFolder: true})
	return id
}

func (t *fakeTree) file(parent, name string) string {
	t.next++
	id := fmt.Sprintf("f%d", t.next)
	t.children[parent] = append(t.children[parent], Entry{ID: id, Name: name})
	t.data[id] = []byte("data:" + name)
	return id
}

// beat adds a complete beat folder under mood.
func (t *fakeTree) beat(mood, folder, title string) string {
	id := t.folder(mood, folder)
	t.file(id, title+"_full.wav")
	t.file(id, title+"_spoiler.wav")
	t.file(id, title+"_pic.jpg")
	return id
}

func (t *fakeTree) ListChildren(_ context.Context, folderID string) ([]Entry, error) {
	if err := t.listErr[folderID]; err != nil {
		return nil, err
	}
	return append([]Entry(nil), t.children[folderID]...), nil
}

func (t *fakeTree) Download(_ context.Context, fileID string) ([]byte, error) {
	d, ok := t.data[fileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return d, nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	puts    int
	pingErr error
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStore) Exists(_ context.Context, bucket, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[bucket+"/"+key]
	return ok, nil
}

func (s *fakeStore) Put(_ context.Context, bucket, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[bucket+"/"+key] = data
	s.types[bucket+"/"+key] = contentType
	s.puts++
	return nil
}

func (s *fakeStore) Delete(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, bucket+"/"+key)
	return nil
}

func (s *fakeStore) Ping(_ context.Context) error { return s.pingErr }

type fakeTranscoder struct {
	err   error
	calls int
}

func (f *fakeTranscoder) ToMP3(_ context.Context, data []byte, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("mp3:"), data...), nil
}

type recorder struct {
	snapshots []Progress
}

func (r *recorder) Report(_ context.Context, p Progress) {
	r.snapshots = append(r.snapshots, p)
}
