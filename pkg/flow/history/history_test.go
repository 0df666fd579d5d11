package history

import (
	"fmt"
	"testing"

	"github.com/voxhive/callflow/pkg/flow"
)

func seedGraph(t *testing.T) *flow.Graph {
	t.Helper()
	g := flow.New()
	if err := g.AddNode(flow.Node{ID: "S", Kind: flow.KindStart}); err != nil {
		t.Fatalf("AddNode(S) = %v", err)
	}
	return g
}

// movedCopy returns a clone of g with node id dragged to (x, y).
func movedCopy(t *testing.T, g *flow.Graph, id string, x, y float64) *flow.Graph {
	t.Helper()
	out := g.Clone()
	n, ok := out.Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	n.Position = flow.Position{X: x, Y: y}
	return out
}

// TestUndoRestoresPriorState checks that undo after one structural
// command restores the previous graph bit-for-bit.
func TestUndoRestoresPriorState(t *testing.T) {
	g := seedGraph(t)
	s := New(g, 0)
	before := s.Current().Clone()

	next := g.Clone()
	if err := next.AddNode(flow.Node{ID: "A", Kind: flow.KindAgent}); err != nil {
		t.Fatalf("AddNode(A) = %v", err)
	}
	if err := next.AddEdge(flow.Edge{ID: "e1", Source: "S", Target: "A"}); err != nil {
		t.Fatalf("AddEdge(e1) = %v", err)
	}
	s.Apply("add node", Structural, next)

	got, ok := s.Undo()
	if !ok {
		t.Fatal("Undo() = false, want true")
	}
	if !got.Equal(before) {
		t.Error("Undo() state differs from the state before the command")
	}
}

func TestUndoAtOldestIsNoop(t *testing.T) {
	s := New(seedGraph(t), 0)
	if _, ok := s.Undo(); ok {
		t.Error("Undo() at oldest entry = true, want false")
	}
	if s.CanUndo() {
		t.Error("CanUndo() = true, want false")
	}
}

func TestRedoAtNewestIsNoop(t *testing.T) {
	s := New(seedGraph(t), 0)
	if _, ok := s.Redo(); ok {
		t.Error("Redo() at newest entry = true, want false")
	}
}

// TestCoalescing applies a run of cosmetic drag positions and verifies a
// single undo returns to the state before the first of them.
func TestCoalescing(t *testing.T) {
	g := seedGraph(t)
	s := New(g, 0)
	before := s.Current().Clone()

	state := g
	for i := 1; i <= 50; i++ {
		state = movedCopy(t, state, "S", float64(i), float64(i))
		s.Apply("drag", Cosmetic, state)
	}

	if got := s.Len(); got != 2 {
		t.Fatalf("Len() after coalesced drags = %d, want 2", got)
	}

	top := s.Current()
	n, _ := top.Node("S")
	if n.Position != (flow.Position{X: 50, Y: 50}) {
		t.Errorf("coalesced position = %+v, want {50 50}", n.Position)
	}

	got, ok := s.Undo()
	if !ok {
		t.Fatal("Undo() = false, want true")
	}
	if !got.Equal(before) {
		t.Error("Undo() after coalesced run did not restore pre-drag state")
	}
}

// TestStructuralBreaksCoalescing verifies that a structural edit between
// two cosmetic runs produces separate entries.
func TestStructuralBreaksCoalescing(t *testing.T) {
	g := seedGraph(t)
	s := New(g, 0)

	state := movedCopy(t, g, "S", 1, 0)
	s.Apply("drag", Cosmetic, state)

	next := state.Clone()
	if err := next.AddNode(flow.Node{ID: "A", Kind: flow.KindAgent}); err != nil {
		t.Fatalf("AddNode(A) = %v", err)
	}
	s.Apply("add node", Structural, next)

	state = movedCopy(t, next, "S", 2, 0)
	s.Apply("drag", Cosmetic, state)

	// load + drag + add node + drag
	if got := s.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}
}

// TestApplyTruncatesFuture verifies that a new command after undo makes
// redo a no-op.
func TestApplyTruncatesFuture(t *testing.T) {
	g := seedGraph(t)
	s := New(g, 0)

	first := g.Clone()
	if err := first.AddNode(flow.Node{ID: "A", Kind: flow.KindAgent}); err != nil {
		t.Fatalf("AddNode(A) = %v", err)
	}
	s.Apply("add A", Structural, first)

	if _, ok := s.Undo(); !ok {
		t.Fatal("Undo() = false, want true")
	}

	second := g.Clone()
	if err := second.AddNode(flow.Node{ID: "B", Kind: flow.KindAgent}); err != nil {
		t.Fatalf("AddNode(B) = %v", err)
	}
	s.Apply("add B", Structural, second)

	if _, ok := s.Redo(); ok {
		t.Error("Redo() after truncating apply = true, want false")
	}
	if s.CanRedo() {
		t.Error("CanRedo() = true, want false")
	}
	cur := s.Current()
	if _, ok := cur.Node("B"); !ok {
		t.Error("current state lost node B")
	}
	if _, ok := cur.Node("A"); ok {
		t.Error("current state regained discarded node A")
	}
}

func TestRedoReturnsForwardState(t *testing.T) {
	g := seedGraph(t)
	s := New(g, 0)

	next := g.Clone()
	if err := next.AddNode(flow.Node{ID: "A", Kind: flow.KindAgent}); err != nil {
		t.Fatalf("AddNode(A) = %v", err)
	}
	s.Apply("add A", Structural, next)

	if _, ok := s.Undo(); !ok {
		t.Fatal("Undo() = false, want true")
	}
	got, ok := s.Redo()
	if !ok {
		t.Fatal("Redo() = false, want true")
	}
	if !got.Equal(next) {
		t.Error("Redo() state differs from the redone command's state")
	}
}

func TestDirtyLifecycle(t *testing.T) {
	g := seedGraph(t)
	s := New(g, 0)
	if s.Dirty() {
		t.Error("Dirty() on fresh store = true, want false")
	}

	s.Apply("edit", Structural, g)
	if !s.Dirty() {
		t.Error("Dirty() after Apply = false, want true")
	}

	s.MarkSaved()
	if s.Dirty() {
		t.Error("Dirty() after MarkSaved = true, want false")
	}

	if _, ok := s.Undo(); !ok {
		t.Fatal("Undo() = false, want true")
	}
	if !s.Dirty() {
		t.Error("Dirty() after Undo = false, want true")
	}
}

func TestLimitEvictsOldest(t *testing.T) {
	g := seedGraph(t)
	s := New(g, 3)

	for i := 0; i < 10; i++ {
		state := movedCopy(t, s.Current(), "S", float64(i), 0)
		s.Apply(fmt.Sprintf("move %d", i), Structural, state)
	}

	if got := s.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}

	// Present must still point at the newest state.
	n, _ := s.Current().Node("S")
	if n.Position.X != 9 {
		t.Errorf("current X = %v, want 9", n.Position.X)
	}

	// Only two undos remain after eviction.
	undos := 0
	for {
		if _, ok := s.Undo(); !ok {
			break
		}
		undos++
	}
	if undos != 2 {
		t.Errorf("available undos = %d, want 2", undos)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	g := seedGraph(t)
	s := New(g, 0)

	// Mutating the caller's graph after Apply must not alter the entry.
	state := g.Clone()
	s.Apply("edit", Structural, state)
	n, _ := state.Node("S")
	n.Position = flow.Position{X: 123}

	cur, _ := s.Current().Node("S")
	if cur.Position.X == 123 {
		t.Error("store snapshot aliases the applied graph")
	}
}

func TestLog(t *testing.T) {
	g := seedGraph(t)
	s := New(g, 0)
	s.Apply("add node", Structural, g)
	s.Apply("connect", Structural, g)

	names := s.Log()
	want := []string{"load", "add node", "connect"}
	if len(names) != len(want) {
		t.Fatalf("Log() length = %d, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Log()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if got := s.Present(); got != 2 {
		t.Errorf("Present() = %d, want 2", got)
	}
}
