package fake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/presensi-app/attendance-backend-go/internal/pkg/storage"
)

// Storage keeps uploaded blobs in memory.
type Storage struct {
	mu    sync.Mutex
	files map[string][]byte

	// FailUploadAfter makes every upload after the first n fail. Negative disables it.
	FailUploadAfter int
	uploads         int
}

var ErrUploadFailed = errors.New("upload failed")

func NewStorage() *Storage {
	return &Storage{files: map[string][]byte{}, FailUploadAfter: -1}
}

func (s *Storage) Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUploadAfter >= 0 && s.uploads >= s.FailUploadAfter {
		return "", ErrUploadFailed
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.uploads++
	s.files[path] = data
	return path, nil
}

func (s *Storage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[path]
	if !ok {
		return nil, storage.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Storage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

func (s *Storage) GetURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "https://files.test/" + path, nil
}

func (s *Storage) Exists(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.files[path]
	return ok, nil
}

// Paths lists the stored keys in order.
func (s *Storage) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Put stores data under path without counting it as an upload.
func (s *Storage) Put(path string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
}
