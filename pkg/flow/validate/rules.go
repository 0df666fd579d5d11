package validate

import (
	"slices"
	"strings"

	apperrors "github.com/voxhive/callflow/pkg/errors"
	"github.com/voxhive/callflow/pkg/flow"
)

// Check runs the workflow validation rules and returns all findings.
// A nil result means the workflow is valid. Output order is
// deterministic: workflow errors first, then node errors, then edge
// errors, each sorted by id, field, and message.
//
// The rules mirror what callers can rely on:
//
//   - exactly one start node
//   - at most one global node
//   - no transitions into the start node
//   - every agent, webhook, and end node reachable from the start node
//     (global and trigger nodes and their downstream states are exempt)
//   - agent prompts non-empty
//   - webhook URLs present and http(s)
//   - trigger nodes carry a trigger phrase
//   - at most one fallback (empty-condition) transition per source node
//   - transition endpoints exist
func Check(g *flow.Graph) []Error {
	var errs []Error

	errs = append(errs, checkTerminals(g)...)
	errs = append(errs, checkReachability(g)...)
	errs = append(errs, checkPayloads(g)...)
	errs = append(errs, checkEdges(g)...)

	sortErrors(errs)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsValid reports whether Check finds no errors.
func IsValid(g *flow.Graph) bool { return len(Check(g)) == 0 }

func checkTerminals(g *flow.Graph) []Error {
	var errs []Error

	starts := g.NodesOfKind(flow.KindStart)
	switch {
	case len(starts) == 0:
		errs = append(errs, Error{
			Kind:    KindWorkflow,
			Message: "workflow must have a start node",
		})
	case len(starts) > 1:
		for _, n := range starts {
			errs = append(errs, Error{
				Kind:    KindNode,
				ID:      n.ID,
				Message: "workflow has multiple start nodes",
			})
		}
	}

	if globals := g.NodesOfKind(flow.KindGlobal); len(globals) > 1 {
		for _, n := range globals {
			errs = append(errs, Error{
				Kind:    KindNode,
				ID:      n.ID,
				Message: "workflow has multiple global nodes",
			})
		}
	}

	return errs
}

func checkReachability(g *flow.Graph) []Error {
	start, ok := g.StartNode()
	if !ok {
		// Reported by checkTerminals; reachability is meaningless here.
		return nil
	}

	// Global and trigger nodes are listeners: they and everything they
	// lead to count as reachable.
	queue := []string{start.ID}
	for _, n := range g.Nodes() {
		if n.Kind == flow.KindGlobal || n.Kind == flow.KindTrigger {
			queue = append(queue, n.ID)
		}
	}

	visited := make(map[string]bool, g.NodeCount())
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		for _, child := range g.Children(id) {
			if !visited[child] {
				queue = append(queue, child)
			}
		}
	}

	var errs []Error
	for _, n := range g.Nodes() {
		if !visited[n.ID] {
			errs = append(errs, Error{
				Kind:    KindNode,
				ID:      n.ID,
				Message: "node is unreachable from the start node",
			})
		}
	}
	return errs
}

func checkPayloads(g *flow.Graph) []Error {
	var errs []Error
	for _, n := range g.Nodes() {
		switch n.Kind {
		case flow.KindAgent:
			if strings.TrimSpace(n.Data.Prompt) == "" {
				errs = append(errs, Error{
					Kind:    KindNode,
					ID:      n.ID,
					Field:   "prompt",
					Message: "agent prompt must not be empty",
				})
			}
		case flow.KindWebhook:
			if err := apperrors.ValidateURL(n.Data.Webhook.URL); err != nil {
				errs = append(errs, Error{
					Kind:    KindNode,
					ID:      n.ID,
					Field:   "url",
					Message: apperrors.UserMessage(err),
				})
			}
		case flow.KindTrigger:
			if strings.TrimSpace(n.Data.TriggerPhrase) == "" {
				errs = append(errs, Error{
					Kind:    KindNode,
					ID:      n.ID,
					Field:   "trigger_phrase",
					Message: "trigger phrase must not be empty",
				})
			}
		}
	}
	return errs
}

func checkEdges(g *flow.Graph) []Error {
	var errs []Error

	fallbacks := make(map[string][]string) // source node -> fallback edge IDs
	for _, e := range g.Edges() {
		_, srcOK := g.Node(e.Source)
		_, dstOK := g.Node(e.Target)
		if !srcOK || !dstOK {
			errs = append(errs, Error{
				Kind:    KindEdge,
				ID:      e.ID,
				Message: "transition references a missing node",
			})
			continue
		}

		if dst, _ := g.Node(e.Target); dst.Kind == flow.KindStart {
			errs = append(errs, Error{
				Kind:    KindEdge,
				ID:      e.ID,
				Message: "transitions into the start node are not allowed",
			})
		}

		if e.Always() {
			fallbacks[e.Source] = append(fallbacks[e.Source], e.ID)
		}
	}

	for _, ids := range fallbacks {
		if len(ids) < 2 {
			continue
		}
		for _, id := range ids {
			errs = append(errs, Error{
				Kind:    KindEdge,
				ID:      id,
				Field:   "condition",
				Message: "node has multiple fallback transitions",
			})
		}
	}

	return errs
}

// kindRank orders workflow errors before node errors before edge errors.
func kindRank(k Kind) int {
	switch k {
	case KindWorkflow:
		return 0
	case KindNode:
		return 1
	default:
		return 2
	}
}

func sortErrors(errs []Error) {
	slices.SortFunc(errs, func(a, b Error) int {
		if d := kindRank(a.Kind) - kindRank(b.Kind); d != 0 {
			return d
		}
		if d := strings.Compare(a.ID, b.ID); d != 0 {
			return d
		}
		if d := strings.Compare(a.Field, b.Field); d != 0 {
			return d
		}
		return strings.Compare(a.Message, b.Message)
	})
}
