package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"trisetra/internal/workorder"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration
	var maxPolls int

	cmd := &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Display a task and poll its work order status until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			cfg := ctx.configValue()
			if interval <= 0 {
				interval = cfg.WatchInterval()
			}
			if interval <= 0 {
				return errors.New("watch interval must be positive")
			}

			lock := flock.New(filepath.Join(cfg.Paths.StateDir, fmt.Sprintf("watch-%d.lock", taskID)))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !ok {
				return fmt.Errorf("task %d is already being watched", taskID)
			}
			defer func() { _ = lock.Unlock() }()

			ctl := ctx.controller(cmd)
			views, unsubscribe := ctl.Subscribe()
			printed := make(chan struct{})
			go func() {
				defer close(printed)
				printViewChanges(cmd, ctx, views)
			}()
			defer func() {
				unsubscribe()
				<-printed
			}()

			session := ctl.Open(cmd.Context(), taskID)
			defer session.Close()

			if !ctx.jsonMode() {
				if err := printGallery(cmd, ctx.pipeline().Load(session.Context(), taskID)); err != nil {
					return err
				}
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for polls := 1; ; polls++ {
				if _, err := session.FetchStatus(); errors.Is(err, workorder.ErrStaleSession) {
					return nil
				}
				if maxPolls > 0 && polls >= maxPolls {
					return nil
				}
				select {
				case <-session.Context().Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Polling interval (defaults to watch.interval_seconds)")
	cmd.Flags().IntVar(&maxPolls, "max-polls", 0, "Stop after this many status fetches (0 polls forever)")
	return cmd
}

// printViewChanges prints views whose visible state differs from the last
// printed one.
func printViewChanges(cmd *cobra.Command, ctx *commandContext, views <-chan workorder.View) {
	var last *workorder.View
	for view := range views {
		if last != nil && sameDisplay(*last, view) {
			continue
		}
		v := view
		last = &v
		_ = printWorkOrder(cmd, ctx, view)
	}
}

func sameDisplay(a, b workorder.View) bool {
	return a.Status == b.Status &&
		a.Text == b.Text &&
		a.HelpText == b.HelpText &&
		errorText(a.Err) == errorText(b.Err)
}
