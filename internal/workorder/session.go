package workorder

import (
	"context"

	"github.com/google/uuid"

	"trisetra/internal/logging"
	"trisetra/internal/services"
)

// Session is bound to one task's display. Opening another task or closing
// the session cancels its in-flight calls, and results that arrive afterwards
// are discarded instead of applied.
type Session struct {
	c      *Controller
	id     string
	taskID int64
	ctx    context.Context
	cancel context.CancelFunc
}

// Open starts a display session for taskID, closing any previous one.
func (c *Controller) Open(parent context.Context, taskID int64) *Session {
	if parent == nil {
		parent = context.Background()
	}
	id := uuid.NewString()
	ctx := services.WithSessionID(services.WithTaskID(parent, taskID), id)
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{c: c, id: id, taskID: taskID, ctx: ctx, cancel: cancel}

	c.mu.Lock()
	previous := c.session
	c.session = s
	c.mu.Unlock()

	if previous != nil {
		previous.cancel()
	}
	c.logger.Debug("display session opened",
		logging.TaskID(taskID),
		logging.String(logging.FieldSessionID, id),
	)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// TaskID returns the task the session displays.
func (s *Session) TaskID() int64 { return s.taskID }

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context { return s.ctx }

// Active reports whether the session is still the controller's current one.
func (s *Session) Active() bool {
	return !s.c.sessionStale(s)
}

// Close cancels in-flight work for the session.
func (s *Session) Close() {
	s.cancel()
	s.c.mu.Lock()
	if s.c.session == s {
		s.c.session = nil
	}
	s.c.mu.Unlock()
}

// FetchStatus reads the status for the session's task.
func (s *Session) FetchStatus() (View, error) {
	return s.c.fetchStatus(s.ctx, s.taskID, s)
}

// Transition requests a status change for the session's task.
func (s *Session) Transition(target Status, opts TransitionOptions) (View, error) {
	return s.c.transition(s.ctx, s.taskID, target, opts, s)
}

// Finalize marks the session's work order completed.
func (s *Session) Finalize(notify bool) (View, error) {
	return s.Transition(StatusCompleted, TransitionOptions{Notify: notify})
}

// MarkFailed marks the session's work order failed.
func (s *Session) MarkFailed() (View, error) {
	return s.Transition(StatusFailed, TransitionOptions{Notify: true})
}

// RequireInput asks for more input on the session's task.
func (s *Session) RequireInput(helpText string) (View, error) {
	return s.c.requireInput(s.ctx, s.taskID, helpText, s)
}
