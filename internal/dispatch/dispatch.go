package dispatch

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"trisetra/internal/logging"
	"trisetra/internal/notifications"
	"trisetra/internal/remote"
	"trisetra/internal/services"
)

// Remote is the subset of the remote client dispatch needs.
type Remote interface {
	Put(ctx context.Context, path string, query map[string]string) (remote.Envelope, error)
}

// Result is the service answer to a dispatched job.
type Result struct {
	Message     string `json:"message"`
	RedirectURL string `json:"redirect_url"`
}

// Dispatcher starts batch jobs on the reconstruction service.
type Dispatcher struct {
	remote   Remote
	notifier notifications.Notifier
	logger   *slog.Logger
}

// New returns a dispatcher publishing outcomes to notifier.
func New(client Remote, notifier notifications.Notifier, logger *slog.Logger) *Dispatcher {
	if notifier == nil {
		notifier = notifications.Multi()
	}
	return &Dispatcher{
		remote:   client,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "dispatch"),
	}
}

// GenerateBlend requests the preview images and blend file for a task.
func (d *Dispatcher) GenerateBlend(ctx context.Context, taskID int64) (Result, error) {
	ctx = services.WithTaskID(ctx, taskID)
	return d.run(ctx, "tasks/"+strconv.FormatInt(taskID, 10)+"/generate-blend", "Request sent")
}

// GenerateGLB requests the GLB mesh and HDR uploads for a task.
func (d *Dispatcher) GenerateGLB(ctx context.Context, taskID int64) (Result, error) {
	ctx = services.WithTaskID(ctx, taskID)
	return d.run(ctx, "tasks/"+strconv.FormatInt(taskID, 10)+"/generate-glb", "Request sent")
}

// UpdatePrebuilts refreshes the prebuilt asset library.
func (d *Dispatcher) UpdatePrebuilts(ctx context.Context) (Result, error) {
	return d.run(ctx, "tasks/update-prebuilts", "Updating Prebuilts ...")
}

// UpdateFloorMaterials refreshes the floor material library.
func (d *Dispatcher) UpdateFloorMaterials(ctx context.Context) (Result, error) {
	return d.run(ctx, "tasks/update-floor-materials", "Updating Floor Materials ...")
}

func (d *Dispatcher) run(ctx context.Context, path, title string) (Result, error) {
	logger := logging.WithContext(ctx, d.logger)

	var result Result
	env, err := d.remote.Put(ctx, path, nil)
	if err == nil {
		if decodeErr := env.Decode(&result); decodeErr != nil {
			err = services.Wrap(services.ErrParse, "dispatch", path, "decode result", decodeErr)
		}
	}
	if err != nil {
		logging.ErrorWithContext(logger, "job dispatch failed", "dispatch_failed",
			logging.String("path", path),
			logging.Error(err),
		)
		d.notify(ctx, notifications.Notification{
			Event:   notifications.EventJobFailed,
			Title:   "Error",
			Message: err.Error(),
		})
		return Result{}, err
	}

	result.Message = strings.TrimSpace(result.Message)
	result.RedirectURL = strings.TrimSpace(result.RedirectURL)
	logger.Info("job dispatched",
		logging.String("path", path),
		logging.String("message", result.Message),
		logging.Bool("redirect", result.RedirectURL != ""),
		logging.String(logging.FieldEventType, "dispatch_sent"),
	)
	d.notify(ctx, notifications.Notification{
		Event:   notifications.EventJobDispatched,
		Title:   title,
		Message: result.Message,
	})
	return result, nil
}

func (d *Dispatcher) notify(ctx context.Context, n notifications.Notification) {
	if err := d.notifier.Notify(ctx, n); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, d.logger), "notification delivery failed", "notification_failed",
			logging.String("title", n.Title),
			logging.String(logging.FieldImpact, "operator may not see the notification"),
			logging.Error(err),
		)
	}
}
