package cli

import (
	"context"
	"testing"

	"github.com/voxhive/callflow/pkg/store"
)

func TestDisplayURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8787", "http://localhost:8787"},
		{"0.0.0.0:9000", "http://0.0.0.0:9000"},
		{"example.test:80", "http://example.test:80"},
	}

	for _, tt := range tests {
		if got := displayURL(tt.addr); got != tt.want {
			t.Errorf("displayURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestNewWorkflowStore(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		st, err := newWorkflowStore(context.Background(), DefaultConfig())
		if err != nil {
			t.Fatalf("newWorkflowStore() error: %v", err)
		}
		defer st.Close(context.Background())

		if _, ok := st.(*store.MemoryStore); !ok {
			t.Errorf("newWorkflowStore() = %T, want *store.MemoryStore", st)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Store.Backend = "sqlite"

		if _, err := newWorkflowStore(context.Background(), cfg); err == nil {
			t.Fatal("newWorkflowStore() should reject unknown backends")
		}
	})
}
