package editor

import (
	"context"
	"errors"
	"time"

	"github.com/voxhive/callflow/pkg/flow/validate"
	"github.com/voxhive/callflow/pkg/observability"
)

// Validate schedules an immediate validation pass, skipping the usual
// structural-edit debounce. Useful right after opening or recovering a
// workflow.
func (s *Session) Validate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.scheduleValidationLocked(0)
}

// scheduleValidationLocked arms the debounce timer and invalidates any
// in-flight validation call. Callers must hold s.mu.
//
// Bumping valSeq here is what makes responses droppable: a response
// carries the sequence it was issued under, and any schedule after that
// moves the sequence past it.
func (s *Session) scheduleValidationLocked(delay time.Duration) {
	if s.opts.API == nil {
		return
	}
	s.valSeq++
	if s.valCancel != nil {
		s.valCancel()
		s.valCancel = nil
	}
	// Replace a pending kick rather than queue behind it.
	select {
	case <-s.valKick:
	default:
	}
	s.valKick <- delay
}

// validationLoop is the session's single background goroutine. It turns
// kicks into a debounced timer: rapid structural edits keep resetting
// the timer, so a burst produces one validation call after the
// configured quiet period.
func (s *Session) validationLoop() {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case delay := <-s.valKick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(delay)
		case <-timer.C:
			s.runValidation()
		}
	}
}

// runValidation performs one validation round trip. The request is
// tagged with the sequence current at issue time; if the sequence has
// moved by the time the response lands, the response is dropped so
// results for an old graph never overwrite results for a newer one.
func (s *Session) runValidation() {
	s.mu.Lock()
	if s.closed || s.opts.API == nil {
		s.mu.Unlock()
		return
	}
	version := s.valSeq
	ctx, cancel := context.WithCancel(s.ctx)
	if s.valCancel != nil {
		s.valCancel()
	}
	s.valCancel = cancel
	id := s.opts.WorkflowID
	s.mu.Unlock()

	start := time.Now()
	res, err := s.opts.API.ValidateWorkflow(ctx, id)
	duration := time.Since(start)
	cancel()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.opts.Logger.Debug("validation superseded", "workflow", id, "version", version)
			return
		}
		s.opts.Logger.Warn("validation failed", "workflow", id, "err", err)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	current := s.valSeq
	stale := version != current
	if !stale {
		s.workflowErrs = validate.Attach(s.history.Current(), res.Errors)
	}
	s.mu.Unlock()

	observability.Session().OnValidation(s.ctx, id, version, len(res.Errors), stale, duration)
	if stale {
		s.opts.Logger.Debug("dropped stale validation", "workflow", id, "version", version, "current", current)
		return
	}
	s.opts.Logger.Debug("validated workflow", "workflow", id, "errors", len(res.Errors), "valid", res.IsValid)
	s.notify()
}
