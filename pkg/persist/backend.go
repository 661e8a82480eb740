package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Backend stores whole JSON documents by name. Load leaves dest untouched when
// the document does not exist yet.
type Backend interface {
	Load(ctx context.Context, name string, dest any) error
	Save(ctx context.Context, name string, v any) error
}

// MemoryBackend keeps documents in process memory. Used by tests and as a
// scratch backend when nothing should touch disk.
type MemoryBackend struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(ctx context.Context, name string, dest any) error {
	m.mu.Lock()
	data, ok := m.docs[name]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return json.Unmarshal(data, dest)
}

func (m *MemoryBackend) Save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	m.mu.Lock()
	m.docs[name] = data
	m.mu.Unlock()
	return nil
}

// Raw returns the last saved bytes for name.
func (m *MemoryBackend) Raw(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[name]
	return data, ok
}
