// Package graphio provides import, export, and rendering for call-flow
// workflow definitions.
//
// # Overview
//
// This package owns the wire format shared by the persistence API, the
// workflow stores, and file export. The format is designed for:
//
//   - Interchange with external canvas editors that produce or consume
//     the same node/edge shape
//   - Storage of workflow definitions (the structs carry bson tags for
//     the MongoDB store alongside json and yaml tags)
//   - Round-trip preservation: import, edit, export, and re-import
//     identically
//
// # Wire Format
//
// A definition has three top-level fields:
//
//	{
//	  "nodes": [
//	    {"id": "node_1", "type": "startNode", "position": {"x": 0, "y": 0}, "data": {"label": "Start"}},
//	    {"id": "node_2", "type": "agentNode", "position": {"x": 0, "y": 200}, "data": {"label": "Greet", "prompt": "Say hello."}}
//	  ],
//	  "edges": [
//	    {"id": "edge_1", "source": "node_1", "target": "node_2", "data": {"label": "", "condition": ""}}
//	  ],
//	  "viewport": {"x": 0, "y": 0, "zoom": 1}
//	}
//
// Node "type" is the canonical kind string ("startNode", "agentNode",
// "endNode", "globalNode", "triggerNode", "webhookNode"). Data fields vary
// by kind; unknown kind strings fail import. Validation overlay state and
// presentation state (selection, hover) are deliberately absent from the
// wire format: they are session-local and never serialized.
//
// # Import and Export
//
// Use [ReadJSON]/[WriteJSON] (or the YAML equivalents) against any
// reader/writer, and [ImportJSON]/[ExportJSON] for file paths. Import
// validates structure and referential integrity; errors are wrapped with
// the offending node or edge id.
//
// [Document] wraps a definition with the workflow name for download-style
// export. [ReadDocumentJSON] and [ReadDocumentYAML] accept either shape,
// so a downloaded envelope and a bare definition load the same way.
//
// # Rendering
//
// [ToDOT] converts a graph to Graphviz DOT for documentation, and
// [RenderSVG] rasterizes DOT to SVG. Self-loops and parallel edges are
// preserved; Graphviz draws them as arcs natively.
package graphio
