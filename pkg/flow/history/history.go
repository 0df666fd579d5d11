// Package history provides the linear undo/redo store that owns the
// mutable graph state of an editing session.
//
// Every mutation produces a full snapshot entry. Entries carry a
// classification: structural edits always push a new entry, while runs of
// cosmetic edits (an in-progress drag) coalesce into one entry so a
// 50-step drag undoes in a single step. The store keeps a present pointer
// into a linear sequence; undo moves it back, redo forward, and any new
// apply while the pointer is not at the newest entry discards the
// unreachable future first (linear history, not a branching tree).
//
// The store is the single writer of session state. All calls happen on
// one logical editing goroutine, so there is no internal locking.
package history

import "github.com/voxhive/callflow/pkg/flow"

// DefaultLimit bounds the number of retained entries when New is called
// with a non-positive limit. Oldest entries are evicted beyond the limit.
const DefaultLimit = 100

// Classification tags an entry as an independently undo-worthy edit or a
// high-frequency cosmetic change eligible for coalescing.
type Classification int

const (
	// Structural marks topology changes and discrete field commits.
	// Each structural edit is its own undo step.
	Structural Classification = iota
	// Cosmetic marks in-progress, low-significance changes such as drag
	// positions. Consecutive cosmetic edits collapse into one entry.
	Cosmetic
)

// String returns a short label for logging.
func (c Classification) String() string {
	if c == Cosmetic {
		return "cosmetic"
	}
	return "structural"
}

type entry struct {
	name  string
	class Classification
	state *flow.Graph
}

// Store is a linear snapshot history over a call-flow graph.
//
// Graphs returned by Current, Undo, and Redo are the store's own
// snapshots: callers must treat them as read-only and clone before
// mutating. The zero value is not usable - use New.
type Store struct {
	entries []entry
	present int
	limit   int
	dirty   bool
}

// New creates a store seeded with a snapshot of initial as the oldest
// entry. A non-positive limit selects DefaultLimit. The seed entry does
// not mark the store dirty.
func New(initial *flow.Graph, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		entries: []entry{{name: "load", class: Structural, state: initial.Clone()}},
		limit:   limit,
	}
}

// Apply records a new state. The graph is snapshotted, so the caller may
// keep mutating its copy afterwards.
//
// A structural edit, or a cosmetic edit on top of a structural entry,
// pushes a new entry. A cosmetic edit on top of a cosmetic entry replaces
// it in place (coalescing). If the present pointer is not at the newest
// entry, everything after it is discarded first. Every Apply marks the
// store dirty.
func (s *Store) Apply(name string, class Classification, g *flow.Graph) {
	snapshot := g.Clone()
	s.entries = s.entries[:s.present+1]

	top := &s.entries[s.present]
	if class == Cosmetic && top.class == Cosmetic {
		top.name = name
		top.state = snapshot
	} else {
		s.entries = append(s.entries, entry{name: name, class: class, state: snapshot})
		s.present++
		if len(s.entries) > s.limit {
			drop := len(s.entries) - s.limit
			s.entries = append([]entry(nil), s.entries[drop:]...)
			s.present -= drop
		}
	}
	s.dirty = true
}

// Undo moves the present pointer back one entry and returns that state.
// Returns nil and false at the oldest entry. A successful undo marks the
// store dirty: the live state no longer matches what was last saved.
func (s *Store) Undo() (*flow.Graph, bool) {
	if s.present == 0 {
		return nil, false
	}
	s.present--
	s.dirty = true
	return s.entries[s.present].state, true
}

// Redo moves the present pointer forward one entry and returns that
// state. Returns nil and false at the newest entry.
func (s *Store) Redo() (*flow.Graph, bool) {
	if s.present == len(s.entries)-1 {
		return nil, false
	}
	s.present++
	s.dirty = true
	return s.entries[s.present].state, true
}

// Current returns the present state. Read-only by contract.
func (s *Store) Current() *flow.Graph {
	return s.entries[s.present].state
}

// CanUndo reports whether the pointer can move back.
func (s *Store) CanUndo() bool { return s.present > 0 }

// CanRedo reports whether the pointer can move forward.
func (s *Store) CanRedo() bool { return s.present < len(s.entries)-1 }

// Len returns the number of retained entries.
func (s *Store) Len() int { return len(s.entries) }

// Dirty reports whether the session has unsaved changes.
func (s *Store) Dirty() bool { return s.dirty }

// MarkSaved clears the dirty flag after a successful save.
func (s *Store) MarkSaved() { s.dirty = false }

// Log returns the entry names oldest-first, with the present entry at
// index Present. Used by interactive surfaces to render a history panel.
func (s *Store) Log() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.name
	}
	return names
}

// Present returns the index of the current entry within Log.
func (s *Store) Present() int { return s.present }
