package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/voxhive/callflow/pkg/api"
)

// MemoryStore keeps workflows in process memory. It is the default
// backend for `callflow serve` and for tests.
//
// Documents are held as marshaled JSON so callers can never reach the
// stored state through a shared map or slice.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*api.Workflow, error) {
	s.mu.RLock()
	data, ok := s.docs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, notFound(id)
	}
	var wf api.Workflow
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("decode workflow %s: %w", id, err)
	}
	return &wf, nil
}

func (s *MemoryStore) Save(ctx context.Context, wf *api.Workflow) error {
	data, err := json.Marshal(wf)
	if err != nil {
		return fmt.Errorf("encode workflow %s: %w", wf.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[wf.ID] = data
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]api.WorkflowSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]api.WorkflowSummary, 0, len(s.docs))
	for id, data := range s.docs {
		var sum api.WorkflowSummary
		if err := json.Unmarshal(data, &sum); err != nil {
			return nil, fmt.Errorf("decode workflow %s: %w", id, err)
		}
		summaries = append(summaries, sum)
	}
	slices.SortFunc(summaries, func(a, b api.WorkflowSummary) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return summaries, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string][]byte)
	return nil
}

// Len reports the number of stored workflows.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

var _ Store = (*MemoryStore)(nil)
