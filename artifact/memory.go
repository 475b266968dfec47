package artifact

import (
	"context"
	"sync"

	"github.com/edentir/edenpdf/render"
)

// Memory is an in-process Cache without expiry.
type Memory struct {
	mu   sync.Mutex
	docs map[string][]byte
}

// Put implements Sink.
func (m *Memory) Put(_ context.Context, a *render.Artifact) (string, error) {
	key, err := Key(a.Kind, a.Record)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = make(map[string][]byte)
	}
	m.docs[key] = a.Data
	return key, nil
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, ErrMiss
	}
	return data, nil
}
