package adapter

import (
	"context"
	"sync"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/storage/port"
)

// MemoryStore keeps uploaded objects in a map. Used by tests and local runs
// without a hosted bucket.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte // public URL -> data
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

var _ port.ObjectStore = (*MemoryStore)(nil)

func (m *MemoryStore) Upload(ctx context.Context, userID string, filename string, contentType string, data []byte) (string, error) {
	url := "mem://" + productImagesBucket + "/" + ObjectName(userID, filename)
	m.mu.Lock()
	m.objects[url] = append([]byte(nil), data...)
	m.mu.Unlock()
	return url, nil
}

func (m *MemoryStore) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	delete(m.objects, url)
	m.mu.Unlock()
	return nil
}

// Len reports the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
