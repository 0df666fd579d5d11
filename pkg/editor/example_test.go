package editor_test

import (
	"fmt"

	"github.com/voxhive/callflow/pkg/editor"
	"github.com/voxhive/callflow/pkg/flow"
)

func ExampleSession() {
	g := flow.New()
	start, _ := flow.NewNode(flow.SequentialIDs(), flow.KindStart, flow.Position{})
	if err := g.AddNode(start); err != nil {
		fmt.Println("add start:", err)
		return
	}

	s, err := editor.NewSession(editor.Options{
		WorkflowID: "wf_demo",
		Name:       "Demo Flow",
		Graph:      g,
		IDs:        flow.SequentialIDs(),
	})
	if err != nil {
		fmt.Println("new session:", err)
		return
	}
	defer s.Close()

	agent, err := s.AddNode(flow.KindAgent, flow.Position{X: 200, Y: 0})
	if err != nil {
		fmt.Println("add node:", err)
		return
	}
	if _, err := s.OnConnect(start.ID, agent); err != nil {
		fmt.Println("connect:", err)
		return
	}
	fmt.Printf("nodes=%d edges=%d dirty=%v\n", s.State().NodeCount(), s.State().EdgeCount(), s.Dirty())

	s.Undo()
	s.Undo()
	fmt.Printf("after undo: nodes=%d edges=%d\n", s.State().NodeCount(), s.State().EdgeCount())

	// Output:
	// nodes=2 edges=1 dirty=true
	// after undo: nodes=1 edges=0
}
