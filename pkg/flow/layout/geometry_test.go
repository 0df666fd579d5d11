package layout

import (
	"testing"

	"github.com/voxhive/callflow/pkg/flow"
)

func TestEdgeGeometryParallel(t *testing.T) {
	g := flow.New()
	addNode(t, g, "a", flow.KindAgent)
	addNode(t, g, "b", flow.KindAgent)
	// Inserted out of id order: slots must follow sorted ids anyway.
	addEdge(t, g, "e2", "a", "b")
	addEdge(t, g, "e1", "a", "b")

	hints := EdgeGeometry(g)
	if len(hints) != 2 {
		t.Fatalf("got %d hints, want 2", len(hints))
	}

	tests := []struct {
		id     string
		slot   int
		offset float64
	}{
		{"e1", 0, -labelSpacing / 2},
		{"e2", 1, labelSpacing / 2},
	}
	for _, tt := range tests {
		h := hints[tt.id]
		if h.Slot != tt.slot {
			t.Errorf("%s.Slot = %d, want %d", tt.id, h.Slot, tt.slot)
		}
		if h.Of != 2 {
			t.Errorf("%s.Of = %d, want 2", tt.id, h.Of)
		}
		if h.LabelOffset != tt.offset {
			t.Errorf("%s.LabelOffset = %v, want %v", tt.id, h.LabelOffset, tt.offset)
		}
		if h.Arc {
			t.Errorf("%s.Arc = true, want false", tt.id)
		}
	}
}

func TestEdgeGeometryOppositeDirections(t *testing.T) {
	g := flow.New()
	addNode(t, g, "a", flow.KindAgent)
	addNode(t, g, "b", flow.KindAgent)
	addEdge(t, g, "fwd", "a", "b")
	addEdge(t, g, "back", "b", "a")

	hints := EdgeGeometry(g)

	// Opposite directions overlap on canvas just like true parallels,
	// so they share one slot group.
	if hints["fwd"].Of != 2 || hints["back"].Of != 2 {
		t.Errorf("group sizes = %d/%d, want 2/2", hints["fwd"].Of, hints["back"].Of)
	}
	if hints["back"].Slot != 0 || hints["fwd"].Slot != 1 {
		t.Errorf("slots = back:%d fwd:%d, want back:0 fwd:1 (id order)",
			hints["back"].Slot, hints["fwd"].Slot)
	}
}

func TestEdgeGeometrySelfLoop(t *testing.T) {
	g := flow.New()
	addNode(t, g, "a", flow.KindAgent)
	addNode(t, g, "b", flow.KindAgent)
	addEdge(t, g, "loop", "a", "a")
	addEdge(t, g, "e1", "a", "b")

	hints := EdgeGeometry(g)

	if !hints["loop"].Arc {
		t.Error("self-loop hint missing Arc")
	}
	if hints["loop"].Of != 1 || hints["loop"].LabelOffset != 0 {
		t.Errorf("loop hint = %+v, want lone centered arc", hints["loop"])
	}
	if hints["e1"].Arc {
		t.Error("plain edge marked as Arc")
	}
	if hints["e1"].Of != 1 || hints["e1"].Slot != 0 || hints["e1"].LabelOffset != 0 {
		t.Errorf("e1 hint = %+v, want lone centered edge", hints["e1"])
	}
}
