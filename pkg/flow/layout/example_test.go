package layout_test

import (
	"fmt"

	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/flow/layout"
)

func ExampleCompute() {
	g := flow.New()
	_ = g.AddNode(flow.Node{ID: "start", Kind: flow.KindStart})
	_ = g.AddNode(flow.Node{ID: "greet", Kind: flow.KindAgent})
	_ = g.AddNode(flow.Node{ID: "end", Kind: flow.KindEnd})
	_ = g.AddEdge(flow.Edge{ID: "e1", Source: "start", Target: "greet"})
	_ = g.AddEdge(flow.Edge{ID: "e2", Source: "greet", Target: "end"})

	positions, err := layout.Compute(g, layout.Options{
		NodeWidth:  200,
		NodeHeight: 100,
		RankGap:    100,
		NodeGap:    50,
		Zigzag:     60,
	})
	if err != nil {
		fmt.Println("layout failed:", err)
		return
	}

	for _, id := range []string{"start", "greet", "end"} {
		p := positions[id]
		fmt.Printf("%s: (%.0f, %.0f)\n", id, p.X, p.Y)
	}
	// Output:
	// start: (-100, 0)
	// greet: (-40, 200)
	// end: (-100, 400)
}

func ExampleEdgeGeometry() {
	g := flow.New()
	_ = g.AddNode(flow.Node{ID: "ask", Kind: flow.KindAgent})
	_ = g.AddNode(flow.Node{ID: "book", Kind: flow.KindAgent})
	_ = g.AddEdge(flow.Edge{ID: "e1", Source: "ask", Target: "book"})
	_ = g.AddEdge(flow.Edge{ID: "e2", Source: "ask", Target: "book"})
	_ = g.AddEdge(flow.Edge{ID: "loop", Source: "ask", Target: "ask"})

	hints := layout.EdgeGeometry(g)
	fmt.Printf("e1: slot %d of %d\n", hints["e1"].Slot, hints["e1"].Of)
	fmt.Printf("e2: slot %d of %d\n", hints["e2"].Slot, hints["e2"].Of)
	fmt.Printf("loop: arc %v\n", hints["loop"].Arc)
	// Output:
	// e1: slot 0 of 2
	// e2: slot 1 of 2
	// loop: arc true
}
