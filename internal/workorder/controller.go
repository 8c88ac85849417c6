package workorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"trisetra/internal/logging"
	"trisetra/internal/notifications"
	"trisetra/internal/remote"
	"trisetra/internal/services"
)

const (
	fetchFailedText     = "Failed to Fetch Work Order Status"
	updatedTitle        = "Work order updated"
	updateFailedTitle   = "Could not update reconstruction status"
	updateFailedMessage = "An Error occurred while updating reconstruction status"
)

var (
	// ErrJustificationRequired is returned when require_input is requested
	// without help text. No request is sent.
	ErrJustificationRequired = errors.New("require input: justification required")
	// ErrInvalidTransition is returned when the displayed status does not
	// permit the requested target.
	ErrInvalidTransition = errors.New("invalid work order transition")
	// ErrStaleSession is returned when a result arrives for a closed session.
	ErrStaleSession = errors.New("display session closed")
)

// Remote is the subset of the remote client the controller needs.
type Remote interface {
	Get(ctx context.Context, path string, query map[string]string) (remote.Envelope, error)
	Put(ctx context.Context, path string, query map[string]string) (remote.Envelope, error)
}

// View is the client projection of a task's work order.
type View struct {
	TaskID    int64
	Status    Status
	HelpText  string
	Text      string
	FetchedAt time.Time
	Err       error
}

// TransitionOptions are sent as query parameters with a status change.
type TransitionOptions struct {
	Notify   bool
	HelpText string
}

// Controller owns work order status for displayed tasks. Every mutation is
// followed by a fetch, whatever its outcome.
type Controller struct {
	remote   Remote
	notifier notifications.Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	views   map[int64]View
	subs    map[int]chan View
	nextSub int
	session *Session
}

// Option customizes the controller.
type Option func(*Controller)

// WithNotifier sets where operator notifications are delivered.
func WithNotifier(n notifications.Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// NewController builds a controller on top of the given remote client.
func NewController(client Remote, opts ...Option) *Controller {
	c := &Controller{
		remote:   client,
		notifier: notifications.Multi(),
		logger:   logging.NewNop(),
		now:      time.Now,
		views:    make(map[int64]View),
		subs:     make(map[int]chan View),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "workorder")
	return c
}

// FetchStatus reads the task's work order and applies the result. Failures
// are logged and reflected in the returned view; it never returns an error.
func (c *Controller) FetchStatus(ctx context.Context, taskID int64) View {
	view, _ := c.fetchStatus(ctx, taskID, nil)
	return view
}

// Transition requests a status change and then reconciles with the server.
// The returned view is the reconciled one; the error is the transition's.
func (c *Controller) Transition(ctx context.Context, taskID int64, target Status, opts TransitionOptions) (View, error) {
	return c.transition(ctx, taskID, target, opts, nil)
}

// Finalize marks the work order completed.
func (c *Controller) Finalize(ctx context.Context, taskID int64, notify bool) (View, error) {
	return c.Transition(ctx, taskID, StatusCompleted, TransitionOptions{Notify: notify})
}

// MarkFailed marks the work order failed and notifies the requester.
func (c *Controller) MarkFailed(ctx context.Context, taskID int64) (View, error) {
	return c.Transition(ctx, taskID, StatusFailed, TransitionOptions{Notify: true})
}

// RequireInput asks the requester for more input. A blank justification
// cancels the transition.
func (c *Controller) RequireInput(ctx context.Context, taskID int64, helpText string) (View, error) {
	return c.requireInput(ctx, taskID, helpText, nil)
}

// View returns the last applied view for a task.
func (c *Controller) View(taskID int64) (View, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[taskID]
	return v, ok
}

func (c *Controller) requireInput(ctx context.Context, taskID int64, helpText string, s *Session) (View, error) {
	helpText = strings.TrimSpace(helpText)
	if helpText == "" {
		c.logger.Info("require input cancelled",
			logging.TaskID(taskID),
			logging.String(logging.FieldEventType, "workorder_require_input_cancelled"),
		)
		view, _ := c.View(taskID)
		return view, ErrJustificationRequired
	}
	return c.transition(ctx, taskID, StatusRequireInput, TransitionOptions{Notify: true, HelpText: helpText}, s)
}

func (c *Controller) fetchStatus(ctx context.Context, taskID int64, s *Session) (View, error) {
	ctx = services.WithTaskID(ctx, taskID)
	logger := logging.WithContext(ctx, c.logger)

	view := View{TaskID: taskID, FetchedAt: c.now()}
	env, err := c.remote.Get(ctx, taskPath(taskID), nil)
	if err == nil {
		err = projectEnvelope(env, &view)
	}
	if err != nil {
		view.Text = fetchFailedText
		view.Err = err
		logging.WarnWithContext(logger, "work order status fetch failed", "workorder_fetch_failed",
			logging.String(logging.FieldErrorHint, "check the remote service and retry"),
			logging.String(logging.FieldImpact, "status display shows a failure placeholder"),
			logging.Error(err),
		)
	} else {
		logger.Debug("work order status fetched",
			logging.String("status", view.Status.String()),
			logging.String("text", view.Text),
		)
	}

	if !c.apply(view, s) {
		return view, ErrStaleSession
	}
	return view, nil
}

func (c *Controller) transition(ctx context.Context, taskID int64, target Status, opts TransitionOptions, s *Session) (view View, err error) {
	ctx = services.WithTaskID(ctx, taskID)
	logger := logging.WithContext(ctx, c.logger)

	// The gate only trusts a status read within this call.
	current, fetchErr := c.fetchStatus(ctx, taskID, s)
	if errors.Is(fetchErr, ErrStaleSession) {
		logger.Info("transition dropped for closed session",
			logging.String("target", target.String()),
		)
		return current, ErrStaleSession
	}

	defer func() {
		reconciled, fetchErr := c.fetchStatus(ctx, taskID, s)
		view = reconciled
		if errors.Is(fetchErr, ErrStaleSession) {
			err = errors.Join(err, ErrStaleSession)
		}
	}()

	if current.Err == nil && !CanTransition(current.Status, target) {
		err = fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status.Label(), target.Label())
	} else {
		_, err = c.remote.Put(ctx, taskPath(taskID)+"/status/"+string(target), map[string]string{
			"notify":   strconv.FormatBool(opts.Notify),
			"helpText": strings.TrimSpace(opts.HelpText),
		})
	}

	if c.sessionStale(s) {
		logger.Info("transition result discarded for closed session",
			logging.String("target", target.String()),
			logging.Bool("succeeded", err == nil),
		)
		return view, err
	}

	if err != nil {
		logging.ErrorWithContext(logger, "work order transition failed", "workorder_update_failed",
			logging.String("target", target.String()),
			logging.String(logging.FieldErrorHint, "check the task's current status and retry"),
			logging.Error(err),
		)
		c.notify(ctx, notifications.Notification{
			Event:   notifications.EventWorkOrderUpdateFailed,
			Title:   updateFailedTitle,
			Message: updateFailedMessage,
		})
		return view, err
	}

	logger.Info("work order transition requested",
		logging.String("target", target.String()),
		logging.Bool("notify", opts.Notify),
		logging.String(logging.FieldEventType, "workorder_updated"),
	)
	c.notify(ctx, notifications.Notification{
		Event:   notifications.EventWorkOrderUpdated,
		Title:   updatedTitle,
		Message: "Work Order status set to: " + string(target),
	})
	return view, nil
}

func (c *Controller) notify(ctx context.Context, n notifications.Notification) {
	if err := c.notifier.Notify(ctx, n); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "notification delivery failed", "notification_failed",
			logging.String("title", n.Title),
			logging.String(logging.FieldImpact, "operator may not see the notification"),
			logging.Error(err),
		)
	}
}

// apply stores the view and broadcasts it unless it belongs to a stale session.
func (c *Controller) apply(view View, s *Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s != nil && (c.session != s || s.ctx.Err() != nil) {
		return false
	}
	c.views[view.TaskID] = view
	for _, ch := range c.subs {
		select {
		case ch <- view:
		default:
			// Latest wins for slow subscribers.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- view:
			default:
			}
		}
	}
	return true
}

func (c *Controller) sessionStale(s *Session) bool {
	if s == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != s || s.ctx.Err() != nil
}

// Subscribe returns a channel receiving every applied view and a function
// that ends the subscription.
func (c *Controller) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

func projectEnvelope(env remote.Envelope, view *View) error {
	var payload struct {
		WorkOrder *struct {
			Status   string `json:"status"`
			HelpText string `json:"help_text"`
		} `json:"work_order"`
		Message string `json:"message"`
	}
	if err := env.Decode(&payload); err != nil {
		return services.Wrap(services.ErrParse, "workorder", "fetch status", "decode work order", err)
	}
	if payload.WorkOrder == nil || strings.TrimSpace(payload.WorkOrder.Status) == "" {
		view.Text = strings.TrimSpace(payload.Message)
		return nil
	}
	raw := strings.TrimSpace(payload.WorkOrder.Status)
	if status, err := ParseStatus(raw); err == nil {
		view.Status = status
	} else {
		view.Status = Status(raw)
	}
	view.HelpText = strings.TrimSpace(payload.WorkOrder.HelpText)
	view.Text = "Work order status: " + raw
	return nil
}

func taskPath(taskID int64) string {
	return "tasks/" + strconv.FormatInt(taskID, 10)
}
