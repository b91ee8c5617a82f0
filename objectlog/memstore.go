package objectlog

import (
	"context"
	"sync"

	"github.com/olsdb/olsdb/olserr"
)

// MemStore is an in-memory Store used by the replication engine and
// session test suites, the same way the teacher's database/dry_run.go
// swaps in a second Database implementation behind the same interface
// used in production. It is safe for concurrent use, so tests can
// exercise the at-most-one-winner race (P5) directly.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

func (m *MemStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *MemStore) PutNew(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; ok {
		return olserr.SegmentExists.New("key %s", key)
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[key] = stored
	return nil
}
