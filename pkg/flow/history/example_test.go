package history_test

import (
	"fmt"

	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/flow/history"
)

func ExampleStore() {
	g := flow.New()
	_ = g.AddNode(flow.Node{ID: "start", Kind: flow.KindStart})
	s := history.New(g, 0)

	// Record a structural edit.
	next := g.Clone()
	_ = next.AddNode(flow.Node{ID: "agent", Kind: flow.KindAgent})
	s.Apply("add node", history.Structural, next)

	fmt.Println("Nodes now:", s.Current().NodeCount())

	prev, _ := s.Undo()
	fmt.Println("Nodes after undo:", prev.NodeCount())

	redone, _ := s.Redo()
	fmt.Println("Nodes after redo:", redone.NodeCount())
	// Output:
	// Nodes now: 2
	// Nodes after undo: 1
	// Nodes after redo: 2
}

func ExampleStore_coalescing() {
	g := flow.New()
	_ = g.AddNode(flow.Node{ID: "start", Kind: flow.KindStart})
	s := history.New(g, 0)

	// An in-progress drag reports many intermediate positions...
	for x := 1.0; x <= 5; x++ {
		state := s.Current().Clone()
		n, _ := state.Node("start")
		n.Position = flow.Position{X: x * 10}
		s.Apply("drag", history.Cosmetic, state)
	}

	// ...but the whole run is one undo step.
	fmt.Println("Entries:", s.Len())
	// Output:
	// Entries: 2
}
