// Package editor provides the edit session controller for call-flow
// workflows.
//
// # Overview
//
// A [Session] is the session-scoped handle a rendering surface talks to.
// It owns the undo/redo history, translates surface events (node moves,
// edge connects, removals) into history commands, schedules debounced
// validation, saves through the persistence API, and autosaves crash
// recovery drafts. There is no global mutable state: every collaborator
// receives the session handle explicitly.
//
// # Architecture
//
// The session wraps a [history.Store] as the single source of truth.
// Mutation flows through exactly one entry point:
//
//	surface event → Dispatch(Command) → history.Apply → notify subscribers
//
// Commands carry a classification. Structural commands (add, connect,
// remove, discrete field commits) each become their own undo step and
// additionally schedule validation and a draft autosave. Cosmetic
// commands (in-progress drags, hover highlights) coalesce in history so
// a 50-step drag undoes in one step.
//
// Validation is asynchronous: a structural edit arms a debounce timer
// (default 100ms); further edits reset it. When it fires, the session
// calls the persistence API's validate endpoint on a single background
// goroutine, tagging the request with a monotonic version. A response
// that arrives after another structural edit is stale and is dropped,
// so overlay state never regresses to an older graph. Close cancels the
// goroutine and any in-flight call.
//
// # Usage
//
//	sess, err := editor.NewSession(editor.Options{
//	    WorkflowID: "wf_1",
//	    Name:       "Support line",
//	    Graph:      g,
//	    API:        client,
//	})
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	unsubscribe := sess.Subscribe(func() { redraw(sess.State()) })
//	defer unsubscribe()
//
//	id, _ := sess.AddNode(flow.KindAgent, flow.Position{X: 80, Y: 160})
//	_ = sess.OnConnect("start", id)
//	_ = sess.Save(ctx, true)
package editor
