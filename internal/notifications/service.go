package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"trisetra/internal/config"
)

const userAgent = "trisetra/0.1.0"

// Event classifies a notification for routing and tagging.
type Event string

const (
	EventWorkOrderUpdated      Event = "workorder_updated"
	EventWorkOrderUpdateFailed Event = "workorder_update_failed"
	EventJobDispatched         Event = "job_dispatched"
	EventJobFailed             Event = "job_failed"
	EventTest                  Event = "test"
)

// Notification is one operator-facing message.
type Notification struct {
	Event   Event
	Title   string
	Message string
}

// Failed reports whether the notification describes a failure.
func (n Notification) Failed() bool {
	return n.Event == EventWorkOrderUpdateFailed || n.Event == EventJobFailed
}

// Notifier presents notifications to the operator.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NewService builds the ntfy notifier when a topic is configured and a no-op
// otherwise.
func NewService(cfg *config.Config) Notifier {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Multi fans a notification out to every notifier, joining their errors.
func Multi(notifiers ...Notifier) Notifier {
	filtered := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n == nil {
			continue
		}
		if _, ok := n.(noopService); ok {
			continue
		}
		filtered = append(filtered, n)
	}
	if len(filtered) == 0 {
		return noopService{}
	}
	return filtered
}

type multi []Notifier

func (m multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (s *ntfyService) Notify(ctx context.Context, n Notification) error {
	if s == nil || s.client == nil {
		return nil
	}

	title := strings.TrimSpace(n.Title)
	if title == "" {
		title = "trisetra"
	} else {
		title = "trisetra - " + title
	}
	tags := []string{"trisetra", string(n.Event)}
	priority := ""
	if n.Failed() {
		tags = append(tags, "alert")
		priority = "high"
	}
	if n.Event == EventTest {
		priority = "low"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(strings.TrimSpace(n.Message)))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", title)
	req.Header.Set("Tags", strings.Join(tags, ","))
	if priority != "" {
		req.Header.Set("Priority", priority)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Console writes notifications as single lines, the CLI's stand-in for toasts.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a notifier writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Notify(_ context.Context, n Notification) error {
	if c == nil || c.out == nil {
		return nil
	}
	marker := "✔"
	if n.Failed() {
		marker = "✖"
	}
	line := marker + " " + strings.TrimSpace(n.Title)
	if msg := strings.TrimSpace(n.Message); msg != "" {
		line += ": " + msg
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, line)
	return err
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return nil
}

// Notifications returns a copy of everything recorded so far.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

type noopService struct{}

func (noopService) Notify(context.Context, Notification) error { return nil }
