package graphio_test

import (
	"fmt"

	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/graphio"
)

func ExampleToDOT() {
	g := flow.New()
	g.AddNode(flow.Node{ID: "start", Kind: flow.KindStart, Data: flow.NodeData{Label: "Start"}})
	g.AddNode(flow.Node{ID: "end", Kind: flow.KindEnd, Data: flow.NodeData{Label: "End"}})
	g.AddEdge(flow.Edge{ID: "e1", Source: "start", Target: "end"})

	fmt.Print(graphio.ToDOT(g, graphio.DOTOptions{}))
	// Output:
	// digraph callflow {
	//   rankdir=TB;
	//   bgcolor="transparent";
	//   node [shape=box, style="rounded,filled", fillcolor=white, fontsize=14, margin="0.2,0.1"];
	//   ranksep=0.5;
	//   nodesep=0.3;
	//
	//   "end" [label="End", fillcolor=lightgrey];
	//   "start" [label="Start", fillcolor=lightgrey];
	//
	//   "start" -> "end";
	// }
}

func ExampleFromGraph() {
	g := flow.New()
	g.AddNode(flow.Node{ID: "start", Kind: flow.KindStart, Data: flow.NodeData{Label: "Start"}})
	g.AddNode(flow.Node{ID: "greet", Kind: flow.KindAgent, Data: flow.NodeData{Label: "Greet", AllowInterrupt: true}})
	g.AddEdge(flow.Edge{ID: "e1", Source: "start", Target: "greet"})

	def := graphio.FromGraph(g)
	for _, n := range def.Nodes {
		fmt.Printf("%s %s\n", n.ID, n.Type)
	}
	for _, e := range def.Edges {
		fmt.Printf("%s: %s -> %s\n", e.ID, e.Source, e.Target)
	}
	// Output:
	// greet agentNode
	// start startNode
	// e1: start -> greet
}
