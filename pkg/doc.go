// Package pkg provides the core libraries for callflow, a builder for
// voice-agent call workflows.
//
// # Overview
//
// A call workflow is a directed graph: conversation states, triggers and
// webhooks connected by conditional transitions. The packages here split
// that domain into layers:
//
//  1. [flow] - The graph model: nodes, edges, undo history, layout, and
//     the validation rule checker.
//  2. [graphio] - Interchange: the canvas JSON definition format, YAML,
//     Graphviz DOT, and SVG rendering.
//  3. [editor] - The editing session: command dispatch, undo/redo
//     coalescing, debounced validation, autosave drafts.
//  4. [api] - Client for the workflow persistence service, with response
//     caching and retry.
//  5. [cache], [session], [store] - Pluggable backends (memory, file,
//     redis, mongo, postgres) behind small interfaces.
//  6. [observability] - Hook interfaces the other packages report events
//     through; promhooks adapts them to Prometheus.
//
// # Architecture
//
// The typical data flow through an editing session:
//
//	stored workflow (api)
//	         ↓
//	    [graphio] definition → [flow] graph
//	         ↓
//	    [editor] session (commands, history, validation overlay)
//	         ↓
//	    [graphio] definition → saved workflow (api)
//
// Layout and validation are pure functions over the graph; the session
// orchestrates when they run.
//
// # Quick Start
//
// Open a session over a fetched workflow and make an edit:
//
//	import (
//	    "github.com/voxhive/callflow/pkg/editor"
//	    "github.com/voxhive/callflow/pkg/flow"
//	    "github.com/voxhive/callflow/pkg/graphio"
//	)
//
//	g, _ := graphio.ToGraph(*wf.Definition)
//	sess, _ := editor.NewSession(editor.Options{
//	    WorkflowID: wf.ID,
//	    Name:       wf.Name,
//	    Graph:      g,
//	    API:        client,
//	})
//	defer sess.Close()
//
//	id, _ := sess.AddNode(flow.KindAgent, flow.Position{X: 180, Y: 140})
//	sess.OnConnect("start-1", id)
//	sess.Undo()
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/flow/...               # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [flow]: https://pkg.go.dev/github.com/voxhive/callflow/pkg/flow
// [graphio]: https://pkg.go.dev/github.com/voxhive/callflow/pkg/graphio
// [editor]: https://pkg.go.dev/github.com/voxhive/callflow/pkg/editor
// [api]: https://pkg.go.dev/github.com/voxhive/callflow/pkg/api
// [cache]: https://pkg.go.dev/github.com/voxhive/callflow/pkg/cache
// [session]: https://pkg.go.dev/github.com/voxhive/callflow/pkg/session
// [store]: https://pkg.go.dev/github.com/voxhive/callflow/pkg/store
// [observability]: https://pkg.go.dev/github.com/voxhive/callflow/pkg/observability
package pkg
