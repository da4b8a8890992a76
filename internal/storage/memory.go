package storage

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryUploader keeps uploads in memory and hands back deterministic URLs.
// It backs tests and local development without a blob host.
type InMemoryUploader struct {
	mu      sync.Mutex
	counter int
	objects map[string][]byte
}

func NewInMemoryUploader() *InMemoryUploader {
	return &InMemoryUploader{objects: make(map[string][]byte)}
}

func (u *InMemoryUploader) Upload(_ context.Context, content []byte, filename, folder string, kind Kind) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.counter++
	url := fmt.Sprintf("https://blobs.local/%s/%s/%d-%s", kind, folder, u.counter, filename)
	u.objects[url] = append([]byte(nil), content...)
	return url, nil
}

// Object returns a stored blob by URL, for test assertions.
func (u *InMemoryUploader) Object(url string) ([]byte, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	b, ok := u.objects[url]
	return b, ok
}

// Count reports how many uploads have been performed.
func (u *InMemoryUploader) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counter
}
