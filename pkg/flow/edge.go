package flow

// EdgeData is the per-edge payload. Condition is free text describing
// when the transition is taken; an empty condition is valid and means
// "always" (the fallback transition). Invalid and ValidationMessage are
// overlay state owned by the validation pass.
type EdgeData struct {
	Label     string
	Condition string

	// Overlay state, rewritten in full by every validation pass.
	Invalid           bool
	ValidationMessage string
}

// Edge is a directed transition between two nodes. Parallel edges between
// the same pair are allowed, as are self-loops (Source == Target) for
// retry constructs. Edge ids are unique within a graph.
type Edge struct {
	ID     string
	Source string // Source node ID
	Target string // Target node ID
	Data   EdgeData
}

// IsSelfLoop reports whether the edge starts and ends on the same node.
// Self-loops are ignored by rank assignment and rendered as arcs.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// Always reports whether the edge is an unconditional (fallback)
// transition.
func (e Edge) Always() bool { return e.Data.Condition == "" }
