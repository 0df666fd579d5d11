package graphio

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/voxhive/callflow/pkg/flow"
)

// DOTOptions configures DOT rendering.
type DOTOptions struct {
	// Direction sets the rank direction: "TB" (default) or "LR".
	Direction string
	// Detailed includes node kinds and call configuration in labels.
	// When false, only the display label is shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format for documentation
// rendering. The resulting DOT string can be rasterized with [RenderSVG].
//
// Start and end nodes are filled grey to mark the flow boundaries;
// global and trigger nodes are dashed because they are listeners rather
// than sequential steps. Edge labels show the transition label, falling
// back to the condition text.
func ToDOT(g *flow.Graph, opts DOTOptions) string {
	dir := opts.Direction
	if dir == "" {
		dir = "TB"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph callflow {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if label := edgeLabel(e); label != "" {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.Source, e.Target, label)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *flow.Node, detailed bool) string {
	label := n.Data.Label
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}

	parts := []string{n.Kind.String()}
	if n.Data.TriggerPhrase != "" {
		parts = append(parts, "trigger: "+n.Data.TriggerPhrase)
	}
	if n.Data.Webhook.URL != "" {
		parts = append(parts, n.Data.Webhook.Method+" "+n.Data.Webhook.URL)
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *flow.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Kind {
	case flow.KindStart, flow.KindEnd:
		attrs = append(attrs, "fillcolor=lightgrey")
	case flow.KindGlobal, flow.KindTrigger:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	return attrs
}

func edgeLabel(e flow.Edge) string {
	if e.Data.Label != "" {
		return e.Data.Label
	}
	return e.Data.Condition
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or embedding.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the drawing starts at
// origin with explicit pixel dimensions. Graphviz emits pt-based sizes
// and offset viewBoxes that embed poorly.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
