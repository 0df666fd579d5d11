package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperrors "github.com/voxhive/callflow/pkg/errors"
)

// FileStore is a file-based draft store for the CLI editor.
// Drafts are stored as JSON files in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based draft store.
// If baseDir is empty, defaults to ~/.config/callflow/drafts/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "callflow", "drafts")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create draft dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) draftPath(workflowID string) string {
	return filepath.Join(s.baseDir, workflowID+".json")
}

func (s *FileStore) Get(ctx context.Context, workflowID string) (*Draft, error) {
	if err := apperrors.ValidateWorkflowID(workflowID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.draftPath(workflowID)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read draft file: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse draft: %w", err)
	}

	if d.IsExpired() {
		os.Remove(path)
		return nil, nil
	}
	return &d, nil
}

func (s *FileStore) Set(ctx context.Context, draft *Draft) error {
	if err := apperrors.ValidateWorkflowID(draft.WorkflowID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}

	path := s.draftPath(draft.WorkflowID)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write draft file: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, workflowID string) error {
	if err := apperrors.ValidateWorkflowID(workflowID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.draftPath(workflowID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove draft file: %w", err)
	}
	return nil
}

func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return fmt.Errorf("read draft dir: %w", err)
	}

	now := time.Now()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var d Draft
		if err := json.Unmarshal(data, &d); err != nil {
			continue
		}
		if now.After(d.ExpiresAt) {
			os.Remove(path)
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for draft files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
