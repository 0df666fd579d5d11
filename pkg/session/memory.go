package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory draft store for tests and single-process
// use. Contents are lost on exit.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

// NewMemoryStore creates an empty in-memory draft store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func (s *MemoryStore) Get(ctx context.Context, workflowID string) (*Draft, error) {
	s.mu.RLock()
	d, ok := s.drafts[workflowID]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if d.IsExpired() {
		s.mu.Lock()
		delete(s.drafts, workflowID)
		s.mu.Unlock()
		return nil, nil
	}
	return &d, nil
}

func (s *MemoryStore) Set(ctx context.Context, draft *Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[draft.WorkflowID] = *draft
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, workflowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, workflowID)
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.drafts {
		if d.IsExpired() {
			delete(s.drafts, id)
		}
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts = make(map[string]Draft)
	return nil
}

var _ Store = (*MemoryStore)(nil)
