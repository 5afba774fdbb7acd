// Package media stores product images and hands back their public URLs.
package media

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrDisabled   = errors.New("image storage is not configured")
	ErrForeignURL = errors.New("url does not belong to this image store")
)

type ImageStore interface {
	// Upload stores the image and returns its public URL.
	Upload(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// objectKey keeps the original extension and nothing else of the client
// supplied name.
func objectKey(name string) string {
	ext := strings.ToLower(path.Ext(name))
	return "products/" + uuid.NewString() + ext
}

type disabled struct{}

// Disabled rejects uploads and ignores deletes.
func Disabled() ImageStore {
	return disabled{}
}

func (disabled) Upload(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrDisabled
}

func (disabled) Delete(context.Context, string) error {
	return nil
}

// MemoryStore keeps uploads in memory under a fake base URL.
type MemoryStore struct {
	BaseURL   string
	DeleteErr error

	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{BaseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := s.BaseURL + "/" + objectKey(name)
	s.mu.Lock()
	s.objects[url] = data
	s.mu.Unlock()
	return url, nil
}

func (s *MemoryStore) Delete(_ context.Context, url string) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[url]; !ok {
		return ErrForeignURL
	}
	delete(s.objects, url)
	return nil
}

func (s *MemoryStore) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[url]
	return ok
}
