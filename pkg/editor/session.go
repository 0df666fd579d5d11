package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/voxhive/callflow/pkg/api"
	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/flow/history"
	"github.com/voxhive/callflow/pkg/flow/layout"
	"github.com/voxhive/callflow/pkg/flow/validate"
	"github.com/voxhive/callflow/pkg/graphio"
	"github.com/voxhive/callflow/pkg/observability"
	"github.com/voxhive/callflow/pkg/session"
)

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("editor: session closed")

	// ErrNoPersister is returned by Save when the session was built
	// without a persistence client.
	ErrNoPersister = errors.New("editor: session has no persistence client")
)

type subscriber struct {
	id int
	fn func()
}

// Session is an edit session over one workflow. See the package
// documentation for the architecture; in short, it owns the history
// store, translates surface events into commands, and runs debounced
// validation on a background goroutine.
//
// All mutating methods are safe to call from the surface's event loop.
// Graphs returned by State are the session's own snapshots: read them on
// the event loop and never mutate them.
type Session struct {
	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	history      *history.Store
	name         string
	nameDirty    bool
	workflowErrs []validate.Error
	subs         []subscriber
	nextSub      int
	closed       bool

	// Validation state. valSeq is bumped by every transition that can
	// invalidate an in-flight validation response; a response is stale
	// when the sequence moved past the value it was issued under.
	valSeq    uint64
	valCancel context.CancelFunc
	valKick   chan time.Duration
}

// NewSession creates a session seeded with opts.Graph and starts the
// validation goroutine. Callers own the session and must Close it.
func NewSession(opts Options) (*Session, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		history: history.New(opts.Graph, opts.HistoryLimit),
		name:    opts.Name,
		valKick: make(chan time.Duration, 1),
	}
	go s.validationLoop()
	return s, nil
}

// WorkflowID returns the id of the workflow being edited.
func (s *Session) WorkflowID() string { return s.opts.WorkflowID }

// Name returns the workflow display name.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// State returns the current graph. Read-only by contract: consume it on
// the surface's event loop and clone before mutating.
func (s *Session) State() *flow.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Current()
}

// Dirty reports whether the session holds unsaved changes, either graph
// edits or a pending rename.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Dirty() || s.nameDirty
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// WorkflowErrors returns the workflow-level findings from the last
// validation pass (node and edge findings live on the graph overlay).
func (s *Session) WorkflowErrors() []validate.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]validate.Error, len(s.workflowErrs))
	copy(out, s.workflowErrs)
	return out
}

// Subscribe registers fn to run after every state transition and returns
// the matching unsubscribe function. Callbacks run outside the session
// lock, in registration order.
func (s *Session) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) notify() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fns := make([]func(), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Dispatch runs one command against the session. The command applies to
// a clone of the current state; on success the clone is committed to
// history, subscribers are notified, and (for structural commands)
// validation is scheduled and a draft autosaved. On failure the session
// state is unchanged.
func (s *Session) Dispatch(cmd Command) error {
	if cmd.Apply == nil {
		return fmt.Errorf("editor: command %q has no apply function", cmd.Name)
	}
	name := cmd.Name
	if name == "" {
		name = "edit"
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	start := time.Now()
	g := s.history.Current().Clone()
	if err := cmd.Apply(g); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", name, err)
	}
	s.history.Apply(name, cmd.Class, g)
	structural := cmd.Class == history.Structural
	if structural {
		s.scheduleValidationLocked(s.opts.ValidateAfter)
	}
	s.mu.Unlock()

	observability.Session().OnCommand(s.ctx, name, structural, time.Since(start))
	s.opts.Logger.Debug("applied command", "name", name, "class", cmd.Class.String())

	s.notify()
	if structural {
		s.autosaveDraft()
	}
	return nil
}

// OnNodesChange applies a batch of node changes atomically as one
// history command. The batch is cosmetic only when every change is;
// removals make it structural and cascade through RemoveNode so no
// dangling edges survive a bulk delete.
func (s *Session) OnNodesChange(changes []NodeChange) error {
	if len(changes) == 0 {
		return nil
	}
	return s.Dispatch(Command{
		Name:  nodeBatchName(changes),
		Class: nodeBatchClass(changes),
		Apply: func(g *flow.Graph) error {
			for _, c := range changes {
				switch c.Type {
				case NodeMove:
					n, ok := g.Node(c.ID)
					if !ok {
						return fmt.Errorf("node %s: %w", c.ID, flow.ErrUnknownNode)
					}
					n.Position = c.Position
				case NodeRemove:
					if err := g.RemoveNode(c.ID); err != nil {
						return fmt.Errorf("node %s: %w", c.ID, err)
					}
				}
			}
			return nil
		},
	})
}

// OnEdgesChange applies a batch of edge changes atomically as one
// history command. Selection and hover changes mark the edge's endpoint
// nodes; removals make the batch structural.
func (s *Session) OnEdgesChange(changes []EdgeChange) error {
	if len(changes) == 0 {
		return nil
	}
	return s.Dispatch(Command{
		Name:  edgeBatchName(changes),
		Class: edgeBatchClass(changes),
		Apply: func(g *flow.Graph) error {
			for _, c := range changes {
				switch c.Type {
				case EdgeSelect, EdgeHover:
					e, ok := g.Edge(c.ID)
					if !ok {
						return fmt.Errorf("edge %s: %w", c.ID, flow.ErrUnknownEdge)
					}
					if err := markEndpoints(g, e, c.Type, c.Active); err != nil {
						return err
					}
				case EdgeRemove:
					if err := g.RemoveEdge(c.ID); err != nil {
						return fmt.Errorf("edge %s: %w", c.ID, err)
					}
				}
			}
			return nil
		},
	})
}

func markEndpoints(g *flow.Graph, e flow.Edge, kind EdgeChangeType, active bool) error {
	for _, id := range []string{e.Source, e.Target} {
		n, ok := g.Node(id)
		if !ok {
			return fmt.Errorf("edge %s endpoint %s: %w", e.ID, id, flow.ErrDanglingEdge)
		}
		if kind == EdgeSelect {
			n.Data.SelectedThroughEdge = active
		} else {
			n.Data.HoveredThroughEdge = active
		}
	}
	return nil
}

// OnConnect creates an edge from source to target with an empty label
// and condition (empty condition means "always"). Always structural.
// Returns the new edge id.
func (s *Session) OnConnect(source, target string) (string, error) {
	e := flow.Edge{ID: s.opts.IDs.EdgeID(), Source: source, Target: target}
	err := s.Dispatch(Command{
		Name:  "connect",
		Class: history.Structural,
		Apply: func(g *flow.Graph) error {
			return g.AddEdge(e)
		},
	})
	if err != nil {
		return "", err
	}
	return e.ID, nil
}

// AddNode creates a node of the given kind at pos with the kind's
// default payload and returns its id.
func (s *Session) AddNode(kind flow.Kind, pos flow.Position) (string, error) {
	n, err := flow.NewNode(s.opts.IDs, kind, pos)
	if err != nil {
		return "", err
	}
	err = s.Dispatch(Command{
		Name:  "add-node",
		Class: history.Structural,
		Apply: func(g *flow.Graph) error {
			return g.AddNode(n)
		},
	})
	if err != nil {
		return "", err
	}
	return n.ID, nil
}

// UpdateNodeData commits a discrete edit to a node payload. The mutate
// callback receives the payload of the working copy.
func (s *Session) UpdateNodeData(id string, mutate func(*flow.NodeData)) error {
	return s.Dispatch(Command{
		Name:  "update-node",
		Class: history.Structural,
		Apply: func(g *flow.Graph) error {
			n, ok := g.Node(id)
			if !ok {
				return fmt.Errorf("node %s: %w", id, flow.ErrUnknownNode)
			}
			mutate(&n.Data)
			return nil
		},
	})
}

// UpdateEdgeData commits a discrete edit to an edge payload.
func (s *Session) UpdateEdgeData(id string, mutate func(*flow.EdgeData)) error {
	return s.Dispatch(Command{
		Name:  "update-edge",
		Class: history.Structural,
		Apply: func(g *flow.Graph) error {
			e, ok := g.Edge(id)
			if !ok {
				return fmt.Errorf("edge %s: %w", id, flow.ErrUnknownEdge)
			}
			data := e.Data
			mutate(&data)
			return g.SetEdgeData(id, data)
		},
	})
}

// MoveNode repositions one node. While inProgress the move is cosmetic
// and coalesces with the surrounding gesture; a final placement
// (inProgress false) is a discrete, independently undo-worthy commit.
func (s *Session) MoveNode(id string, pos flow.Position, inProgress bool) error {
	class := history.Structural
	if inProgress {
		class = history.Cosmetic
	}
	return s.Dispatch(Command{
		Name:  "move-node",
		Class: class,
		Apply: func(g *flow.Graph) error {
			n, ok := g.Node(id)
			if !ok {
				return fmt.Errorf("node %s: %w", id, flow.ErrUnknownNode)
			}
			n.Position = pos
			return nil
		},
	})
}

// Undo steps the history back one entry. Returns false at the oldest
// entry. A successful undo notifies subscribers, schedules validation,
// and autosaves a draft.
func (s *Session) Undo() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	_, ok := s.history.Undo()
	if ok {
		s.scheduleValidationLocked(s.opts.ValidateAfter)
	}
	s.mu.Unlock()

	observability.Session().OnUndo(s.ctx, ok)
	if ok {
		s.notify()
		s.autosaveDraft()
	}
	return ok
}

// Redo steps the history forward one entry. Returns false at the newest
// entry.
func (s *Session) Redo() bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	_, ok := s.history.Redo()
	if ok {
		s.scheduleValidationLocked(s.opts.ValidateAfter)
	}
	s.mu.Unlock()

	observability.Session().OnRedo(s.ctx, ok)
	if ok {
		s.notify()
		s.autosaveDraft()
	}
	return ok
}

// ApplyLayout computes positions for the current graph and applies them
// as one structural command.
func (s *Session) ApplyLayout(opts layout.Options) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	g := s.history.Current().Clone()
	s.mu.Unlock()

	positions, err := layout.Compute(g, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	return s.Dispatch(Command{
		Name:  "apply-layout",
		Class: history.Structural,
		Apply: func(g *flow.Graph) error {
			layout.Apply(g, positions)
			return nil
		},
	})
}

// Rename stages a new workflow display name. Names live outside the
// graph, so a rename is not undoable; it marks the session dirty until
// the next successful save.
func (s *Session) Rename(name string) {
	s.mu.Lock()
	if s.closed || name == s.name {
		s.mu.Unlock()
		return
	}
	s.name = name
	s.nameDirty = true
	s.mu.Unlock()
	s.notify()
}

// Save persists the session through the persistence API. With
// includeGraph the current graph is serialized into the request;
// without it only the name is sent (a rename does not retransmit the
// graph). On success the matching dirty state clears and validation is
// triggered immediately; on failure everything stays dirty and the
// error is returned. Saves are never retried automatically.
func (s *Session) Save(ctx context.Context, includeGraph bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.opts.API == nil {
		s.mu.Unlock()
		return ErrNoPersister
	}
	name := s.name
	req := api.SaveRequest{Name: &name}
	if includeGraph {
		def := graphio.FromGraph(s.history.Current())
		req.Definition = &def
	}
	id := s.opts.WorkflowID
	s.mu.Unlock()

	start := time.Now()
	err := s.opts.API.SaveWorkflow(ctx, id, req)
	observability.Session().OnSave(ctx, id, includeGraph, time.Since(start), err)
	if err != nil {
		s.opts.Logger.Warn("save failed", "workflow", id, "err", err)
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	graphClean := false
	if includeGraph {
		s.history.MarkSaved()
		graphClean = true
	}
	s.nameDirty = false
	s.scheduleValidationLocked(0)
	s.mu.Unlock()

	s.opts.Logger.Info("saved workflow", "workflow", id, "graph", includeGraph)
	s.notify()

	// A recovered draft would now just replay the saved state.
	if graphClean && s.opts.Drafts != nil {
		if err := s.opts.Drafts.Delete(ctx, id); err != nil {
			s.opts.Logger.Warn("draft cleanup failed", "workflow", id, "err", err)
		}
	}
	return nil
}

// Recover replaces the session state with a stored draft, if one exists.
// Returns true when a draft was applied.
func (s *Session) Recover(ctx context.Context) (bool, error) {
	if s.opts.Drafts == nil {
		return false, nil
	}
	d, err := s.opts.Drafts.Get(ctx, s.opts.WorkflowID)
	if err != nil || d == nil {
		return false, err
	}
	g, err := graphio.ToGraph(d.Definition)
	if err != nil {
		return false, fmt.Errorf("decode draft: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	s.history.Apply("recover-draft", history.Structural, g)
	if !d.Dirty {
		s.history.MarkSaved()
	}
	s.name = d.Name
	s.scheduleValidationLocked(s.opts.ValidateAfter)
	s.mu.Unlock()

	s.opts.Logger.Info("recovered draft", "workflow", s.opts.WorkflowID, "saved_at", d.SavedAt)
	s.notify()
	return true, nil
}

// Close shuts the session down: the validation goroutine stops, any
// in-flight validation call is cancelled, and further operations return
// ErrClosed. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.valCancel != nil {
		s.valCancel()
		s.valCancel = nil
	}
	s.mu.Unlock()

	s.cancel()
	return nil
}

func (s *Session) autosaveDraft() {
	if s.opts.Drafts == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	d := session.NewDraft(
		s.opts.WorkflowID,
		s.name,
		graphio.FromGraph(s.history.Current()),
		s.history.Dirty(),
	)
	s.mu.Unlock()

	if err := s.opts.Drafts.Set(s.ctx, d); err != nil {
		s.opts.Logger.Warn("draft autosave failed", "workflow", s.opts.WorkflowID, "err", err)
	}
}
