package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps pending authorization requests in process memory.
// Suitable for single-node runs and tests; expired entries are purged
// lazily whenever the store is touched.
type MemoryStore struct {
	mu       sync.Mutex
	requests map[string]AuthorizationRequest
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]AuthorizationRequest),
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, req AuthorizationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeLocked()
	m.requests[req.State] = req
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, stateValue string) (*AuthorizationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeLocked()

	req, ok := m.requests[stateValue]
	if !ok {
		return nil, nil
	}
	delete(m.requests, stateValue)

	if req.Expired(m.now()) {
		return nil, nil
	}
	return &req, nil
}

func (m *MemoryStore) purgeLocked() {
	now := m.now()
	for k, req := range m.requests {
		if req.Expired(now) {
			delete(m.requests, k)
		}
	}
}
