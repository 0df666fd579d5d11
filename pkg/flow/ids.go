package flow

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource produces identifiers for new nodes and edges. An editing
// session holds one source for its lifetime so that ids are never reused
// after deletion, which keeps undo snapshots unambiguous.
type IDSource interface {
	NodeID() string
	EdgeID() string
}

// RandomIDs returns an IDSource backed by random UUIDs. This is the
// production source; collisions are not a practical concern.
func RandomIDs() IDSource { return randomIDs{} }

type randomIDs struct{}

func (randomIDs) NodeID() string { return "node_" + uuid.NewString() }

func (randomIDs) EdgeID() string { return "edge_" + uuid.NewString() }

// SequentialIDs returns a deterministic IDSource producing node_1,
// node_2, ... and edge_1, edge_2, ... Useful for tests and fixtures
// where stable ids keep layouts and goldens reproducible.
func SequentialIDs() IDSource { return &sequentialIDs{} }

type sequentialIDs struct {
	nodes atomic.Int64
	edges atomic.Int64
}

func (s *sequentialIDs) NodeID() string {
	return fmt.Sprintf("node_%d", s.nodes.Add(1))
}

func (s *sequentialIDs) EdgeID() string {
	return fmt.Sprintf("edge_%d", s.edges.Add(1))
}
