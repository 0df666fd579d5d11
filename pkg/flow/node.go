package flow

import "errors"

// ErrUnknownKind is returned by [NewNode] and [ParseKind] when the node
// kind is not one of the closed set of call-flow node kinds.
var ErrUnknownKind = errors.New("unknown node kind")

// Kind identifies the role a node plays in a call flow. The set is closed:
// adding a new kind requires extending the constants below and the
// exhaustive switches in DefaultData and Kind.String.
type Kind int

const (
	// KindStart is the entry point of the call flow. A valid workflow has
	// exactly one start node.
	KindStart Kind = iota
	// KindAgent is a conversation state where the voice agent speaks and
	// listens according to its prompt.
	KindAgent
	// KindEnd terminates the call. A flow may have several end nodes.
	KindEnd
	// KindGlobal is a listener reachable from any state, typically used
	// for escape phrases ("talk to a human"). At most one per workflow.
	KindGlobal
	// KindTrigger starts a side conversation when its phrase is heard.
	KindTrigger
	// KindWebhook performs an HTTP call mid-flow and resumes on response.
	KindWebhook
)

// kindNames maps kinds to their canonical wire names. The names double as
// serialization values, so changing them is a breaking format change.
var kindNames = map[Kind]string{
	KindStart:   "startNode",
	KindAgent:   "agentNode",
	KindEnd:     "endNode",
	KindGlobal:  "globalNode",
	KindTrigger: "triggerNode",
	KindWebhook: "webhookNode",
}

// String returns the canonical wire name for the kind, or "unknown" for
// values outside the closed set.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Valid reports whether the kind is one of the closed set.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Terminal reports whether the kind anchors the flow (start, end, global).
// Terminal nodes are pinned during layout and exempt from de-overlap
// offsetting.
func (k Kind) Terminal() bool {
	return k == KindStart || k == KindEnd || k == KindGlobal
}

// ParseKind converts a wire name back into a Kind.
// Returns ErrUnknownKind for names outside the closed set.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, ErrUnknownKind
}

// Kinds returns all node kinds in declaration order.
func Kinds() []Kind {
	return []Kind{KindStart, KindAgent, KindEnd, KindGlobal, KindTrigger, KindWebhook}
}

// Position is a 2D canvas coordinate. Positions are mutated by drag
// gestures and by the layout engine; nothing else in the model depends
// on them.
type Position struct {
	X float64
	Y float64
}

// ExtractionVar describes a variable the agent captures from the
// conversation (e.g. caller name, callback number).
type ExtractionVar struct {
	Name        string
	Description string
}

// WebhookConfig holds the HTTP call configuration for webhook nodes.
type WebhookConfig struct {
	URL     string
	Method  string
	Headers map[string]string
}

// NodeData is the per-node payload. Semantic fields vary by kind;
// Invalid and ValidationMessage are overlay state owned by the validation
// pass, and the *ThroughEdge flags are presentation state owned by the
// rendering surface. Overlay and presentation fields are never serialized.
type NodeData struct {
	Label          string          // Display name shown on the canvas
	Prompt         string          // Agent instructions for this state
	AllowInterrupt bool            // Whether the caller may interrupt the agent
	Extraction     []ExtractionVar // Variables to capture in this state
	Webhook        WebhookConfig   // HTTP call config (webhook nodes)
	TriggerPhrase  string          // Activation phrase (global/trigger nodes)

	// Overlay state, rewritten in full by every validation pass.
	Invalid           bool
	ValidationMessage string

	// Presentation state reflecting adjacency to a highlighted edge.
	SelectedThroughEdge bool
	HoveredThroughEdge  bool
}

// Node is a vertex in the call-flow graph.
//
// The zero value is not usable - ID and Kind must be set before adding to
// a Graph. Use [NewNode] to construct nodes with kind-appropriate default
// payloads.
type Node struct {
	ID       string   // Unique identifier, assigned at creation, never reused
	Kind     Kind     // Role in the call flow
	Position Position // Canvas coordinate
	Data     NodeData // Kind-specific payload plus overlay state
}

// NewNode creates a node of the given kind with a fresh id from ids and
// the kind's default payload. Returns ErrUnknownKind if kind is outside
// the closed set.
func NewNode(ids IDSource, kind Kind, pos Position) (Node, error) {
	data, err := DefaultData(kind)
	if err != nil {
		return Node{}, err
	}
	return Node{
		ID:       ids.NodeID(),
		Kind:     kind,
		Position: pos,
		Data:     data,
	}, nil
}

// DefaultData returns the default payload for a node kind. The switch is
// exhaustive over the closed set so that adding a kind without a default
// is a compile-visible omission, not a silent empty payload.
func DefaultData(kind Kind) (NodeData, error) {
	switch kind {
	case KindStart:
		return NodeData{Label: "Start", AllowInterrupt: false}, nil
	case KindAgent:
		return NodeData{Label: "Agent", AllowInterrupt: true}, nil
	case KindEnd:
		return NodeData{Label: "End", AllowInterrupt: false}, nil
	case KindGlobal:
		return NodeData{Label: "Global", AllowInterrupt: true}, nil
	case KindTrigger:
		return NodeData{Label: "Trigger", AllowInterrupt: true}, nil
	case KindWebhook:
		return NodeData{Label: "Webhook", Webhook: WebhookConfig{Method: "POST"}}, nil
	default:
		return NodeData{}, ErrUnknownKind
	}
}

// clone returns a deep copy of the payload. Extraction and webhook headers
// are copied so that history snapshots never share mutable state.
func (d NodeData) clone() NodeData {
	out := d
	if d.Extraction != nil {
		out.Extraction = make([]ExtractionVar, len(d.Extraction))
		copy(out.Extraction, d.Extraction)
	}
	if d.Webhook.Headers != nil {
		out.Webhook.Headers = make(map[string]string, len(d.Webhook.Headers))
		for k, v := range d.Webhook.Headers {
			out.Webhook.Headers[k] = v
		}
	}
	return out
}
