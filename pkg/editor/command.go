package editor

import (
	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/flow/history"
)

// Command is one atomic mutation of the session graph. Dispatch clones
// the current state, runs Apply on the clone, and commits the result to
// history only when Apply succeeds, so a failing command leaves the
// session untouched.
type Command struct {
	// Name appears in the history log and in observability events.
	Name string

	// Class decides coalescing: structural commands are their own undo
	// step and schedule validation plus a draft autosave; cosmetic
	// commands collapse into the previous cosmetic entry.
	Class history.Classification

	// Apply mutates the working copy.
	Apply func(g *flow.Graph) error
}

// NodeChangeType enumerates node change events a rendering surface emits.
type NodeChangeType int

const (
	// NodeMove updates a node position. Moves are cosmetic: an entire
	// drag, final drop included, coalesces into one undo step.
	NodeMove NodeChangeType = iota

	// NodeRemove deletes the node and cascades to every incident edge.
	NodeRemove
)

// NodeChange is one element of an OnNodesChange batch.
type NodeChange struct {
	Type     NodeChangeType
	ID       string
	Position flow.Position // NodeMove only
}

// EdgeChangeType enumerates edge change events a rendering surface emits.
type EdgeChangeType int

const (
	// EdgeSelect toggles the selection highlight on the edge's endpoint
	// nodes.
	EdgeSelect EdgeChangeType = iota

	// EdgeHover toggles the hover highlight on the edge's endpoint nodes.
	EdgeHover

	// EdgeRemove deletes the edge.
	EdgeRemove
)

// EdgeChange is one element of an OnEdgesChange batch.
type EdgeChange struct {
	Type   EdgeChangeType
	ID     string
	Active bool // EdgeSelect/EdgeHover: highlight on or off
}

func (c NodeChange) structural() bool { return c.Type == NodeRemove }

func (c EdgeChange) structural() bool { return c.Type == EdgeRemove }

// batchClass is cosmetic only when every change in the batch is.
func nodeBatchClass(changes []NodeChange) history.Classification {
	for _, c := range changes {
		if c.structural() {
			return history.Structural
		}
	}
	return history.Cosmetic
}

func edgeBatchClass(changes []EdgeChange) history.Classification {
	for _, c := range changes {
		if c.structural() {
			return history.Structural
		}
	}
	return history.Cosmetic
}

func nodeBatchName(changes []NodeChange) string {
	kind := changes[0].Type
	for _, c := range changes[1:] {
		if c.Type != kind {
			return "node-batch"
		}
	}
	switch kind {
	case NodeRemove:
		return "remove-node"
	default:
		return "move-node"
	}
}

func edgeBatchName(changes []EdgeChange) string {
	kind := changes[0].Type
	for _, c := range changes[1:] {
		if c.Type != kind {
			return "edge-batch"
		}
	}
	switch kind {
	case EdgeRemove:
		return "remove-edge"
	case EdgeHover:
		return "hover-edge"
	default:
		return "select-edge"
	}
}
