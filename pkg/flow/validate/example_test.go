package validate_test

import (
	"fmt"

	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/flow/validate"
)

func ExampleCheck() {
	// An agent node with an empty prompt and no path to an end node.
	g := flow.New()
	_ = g.AddNode(flow.Node{ID: "start", Kind: flow.KindStart})
	_ = g.AddNode(flow.Node{ID: "agent", Kind: flow.KindAgent})
	_ = g.AddEdge(flow.Edge{ID: "e1", Source: "start", Target: "agent"})

	for _, e := range validate.Check(g) {
		fmt.Printf("%s %s: %s\n", e.Kind, e.ID, e.Message)
	}
	// Output:
	// node agent: agent prompt must not be empty
}

func ExampleAttach() {
	g := flow.New()
	_ = g.AddNode(flow.Node{ID: "agent", Kind: flow.KindAgent})

	workflow := validate.Attach(g, []validate.Error{
		{Kind: validate.KindNode, ID: "agent", Message: "agent prompt must not be empty"},
		{Kind: validate.KindWorkflow, Message: "workflow must have a start node"},
	})

	n, _ := g.Node("agent")
	fmt.Println("invalid:", n.Data.Invalid)
	fmt.Println("message:", n.Data.ValidationMessage)
	fmt.Println("workflow errors:", len(workflow))
	// Output:
	// invalid: true
	// message: agent prompt must not be empty
	// workflow errors: 1
}
